package bot

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"Zoom-License-Bot/internal/admin"
	"Zoom-License-Bot/internal/catalog"
	"Zoom-License-Bot/internal/db"
	"Zoom-License-Bot/internal/logger"
	"Zoom-License-Bot/internal/telegram"
)

// showStartMenu renders the entry screen, editing the source message in
// place when there is one.
func (b *Bot) showStartMenu(user *db.User, chatID int64, editMsgID int) {
	b.renderScreen(chatID, editMsgID, menuText(user.FirstName), startMenuKeyboard())
}

// onMenuButton serves the start menu plus any stray entry-point button a
// user presses while idle, such as the "Buy license" follow-up sent after
// an accepted order.
func (b *Bot) onMenuButton(s *session, ev event) error {
	switch ev.payload {
	case callbackBuyCoins:
		b.showPlanCatalog(s, ev)
		s.stage = db.StagePlanCatalog
		s.draft = db.Draft{}
	case admin.CallbackRedeemPrompt:
		b.renderScreen(ev.chatID, ev.messageID, emailPrompt, nil)
		s.stage = db.StageAwaitingEmail
		s.draft = db.Draft{}
	case callbackBackToStart:
		b.showStartMenu(s.user, ev.chatID, ev.messageID)
		s.stage = db.StageMenuShown
		s.draft = db.Draft{}
	}
	return nil
}

// showPlanCatalog swaps the current screen for the promo photo with the
// plan buttons. Without a configured photo it falls back to plain text.
func (b *Bot) showPlanCatalog(s *session, ev event) {
	kb := planCatalogKeyboard()
	fileID, err := b.store.GetSetting(db.KeyPromoPhotoFileID)
	if err != nil {
		b.renderScreen(ev.chatID, ev.messageID, promoCaption(), kb)
		return
	}
	if err := b.api.EditMedia(ev.chatID, ev.messageID, fileID, promoCaption(), kb); err != nil {
		// Editing text into media is not allowed; replace the message.
		if derr := b.api.DeleteMessage(ev.chatID, ev.messageID); derr != nil {
			logger.Error("replace menu message", zap.Error(derr))
		}
		if _, serr := b.api.SendPhoto(ev.chatID, fileID, promoCaption(), &telegram.SendOpts{Keyboard: kb, HTML: true}); serr != nil {
			logger.Error("send promo photo", zap.Error(serr))
		}
	}
}

func (b *Bot) onPlanCatalogButton(s *session, ev event) error {
	if ev.payload == callbackBackToStart {
		b.showStartMenu(s.user, ev.chatID, ev.messageID)
		s.stage = db.StageMenuShown
		s.draft = db.Draft{}
		return nil
	}
	name, ok := strings.CutPrefix(ev.payload, prefixBuyCoin)
	if !ok {
		return nil
	}
	plan, ok := catalog.PlanByName(name)
	if !ok {
		s.ackText, s.ackAlert = "That plan is no longer available.", true
		return nil
	}
	s.draft = db.Draft{Plan: plan.Name, Days: plan.Days, Coins: plan.Coins, Price: plan.Price}
	b.renderScreen(ev.chatID, ev.messageID, planSummary(s.draft), paymentMethodKeyboard())
	s.stage = db.StagePaymentMethod
	return nil
}

func (b *Bot) onPaymentMethodButton(s *session, ev event) error {
	if ev.payload == callbackBackToPlans {
		// The chosen plan stays in the draft so stepping forward again does
		// not make the user re-enter it; only the method is dropped.
		s.draft.Method = ""
		b.showPlanCatalog(s, ev)
		s.stage = db.StagePlanCatalog
		return nil
	}
	name, ok := strings.CutPrefix(ev.payload, prefixPayMethod)
	if !ok {
		return nil
	}
	method, ok := catalog.MethodByName(name)
	if !ok {
		s.ackText, s.ackAlert = "That payment method is unavailable.", true
		return nil
	}
	s.draft.Method = method.Name
	b.renderScreen(ev.chatID, ev.messageID, paymentInstructions(s.draft, method), proofBackKeyboard(s.draft.Plan))
	s.stage = db.StageAwaitingProof
	return nil
}

// onAwaitingProofButton is the back edge from the receipt screen: the
// payload re-enters the plan, so the plan fields survive and only the
// chosen method is dropped.
func (b *Bot) onAwaitingProofButton(s *session, ev event) error {
	name, ok := strings.CutPrefix(ev.payload, prefixBuyCoin)
	if !ok || name != s.draft.Plan {
		return nil
	}
	s.draft.Method = ""
	b.renderScreen(ev.chatID, ev.messageID, planSummary(s.draft), paymentMethodKeyboard())
	s.stage = db.StagePaymentMethod
	return nil
}

// onPaymentProof records the receipt: an order row first, then the staff
// review card. A failed staff post must not lose the order, so it only
// escalates.
func (b *Bot) onPaymentProof(s *session, ev event) error {
	order := &db.Order{
		Reference: newRef(),
		UserID:    s.user.TgID,
		PlanName:  s.draft.Plan,
		Days:      s.draft.Days,
		Coins:     s.draft.Coins,
		Price:     s.draft.Price,
		Status:    db.OrderPending,
	}
	if err := b.store.CreateOrder(order); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	b.send(ev.chatID, orderReceived, nil)

	chatID, threadID := b.routeTarget(db.KeyOrderTopicID)
	if chatID == 0 {
		logger.NotifyAdmin(fmt.Sprintf("order %s created but no staff group is configured", order.Reference))
	} else {
		opts := &telegram.SendOpts{
			ThreadID: threadID,
			HTML:     true,
			Keyboard: orderReviewKeyboard(s.user.TgID, order.ID, order.Coins),
		}
		msgID, err := b.api.SendPhoto(chatID, ev.photoID, orderCaption(s.user, order), opts)
		if err != nil {
			logger.NotifyAdmin(fmt.Sprintf("order %s created but the review card failed: %v", order.Reference, err))
		} else if err := b.store.SetOrderProof(order.ID, msgID); err != nil {
			logger.Error("record proof message", zap.String("ref", order.Reference), zap.Error(err))
		}
	}

	s.stage = db.StageIdle
	s.draft = db.Draft{}
	return nil
}

func (b *Bot) onEmailText(s *session, ev event) error {
	addr := strings.TrimSpace(ev.text)
	if _, err := mail.ParseAddress(addr); err != nil {
		b.send(ev.chatID, "That does not look like a valid email address. Please try again.", nil)
		return nil
	}
	s.draft = db.Draft{Email: addr}
	b.send(ev.chatID, licensePlanPrompt(addr), &telegram.SendOpts{Keyboard: licensePlanKeyboard()})
	s.stage = db.StagePlanSelect
	return nil
}

func (b *Bot) onPlanSelectButton(s *session, ev event) error {
	if ev.payload == callbackBackToEmail {
		s.draft = db.Draft{}
		b.renderScreen(ev.chatID, ev.messageID, emailPrompt, nil)
		s.stage = db.StageAwaitingEmail
		return nil
	}
	name, ok := strings.CutPrefix(ev.payload, prefixSelectLicense)
	if !ok {
		return nil
	}
	plan, ok := catalog.PlanByName(name)
	if !ok {
		s.ackText, s.ackAlert = "That plan is no longer available.", true
		return nil
	}
	if s.user.CoinBalance < plan.Coins {
		s.ackText = insufficientBalanceText(plan.Coins, s.user.CoinBalance)
		s.ackAlert = true
		return nil
	}
	s.draft.Plan, s.draft.Days, s.draft.Coins, s.draft.Price = plan.Name, plan.Days, plan.Coins, plan.Price
	expires := time.Now().AddDate(0, 0, plan.Days)
	b.renderScreen(ev.chatID, ev.messageID, confirmRedeemText(s.draft, expires), confirmRedeemKeyboard())
	s.stage = db.StageConfirmRedeem
	return nil
}

// onConfirmRedeemButton files the license request. The balance check here is
// advisory only: the coins are debited when an admin finishes the license,
// so a race at this point costs nothing.
func (b *Bot) onConfirmRedeemButton(s *session, ev event) error {
	switch ev.payload {
	case callbackBackToLicPlans:
		s.draft = db.Draft{Email: s.draft.Email}
		b.renderScreen(ev.chatID, ev.messageID, licensePlanPrompt(s.draft.Email), licensePlanKeyboard())
		s.stage = db.StagePlanSelect
		return nil
	case callbackConfirmRedeem:
	default:
		return nil
	}

	if s.user.CoinBalance < s.draft.Coins {
		s.ackText = insufficientBalanceText(s.draft.Coins, s.user.CoinBalance)
		s.ackAlert = true
		return nil
	}

	lic := &db.License{
		Reference:  newRef(),
		UserID:     s.user.TgID,
		Email:      s.draft.Email,
		PlanName:   s.draft.Plan,
		CoinsSpent: s.draft.Coins,
		Days:       s.draft.Days,
		Status:     db.LicensePending,
		ExpiresAt:  time.Now().AddDate(0, 0, s.draft.Days),
	}
	if err := b.store.CreateLicense(lic); err != nil {
		return fmt.Errorf("create license: %w", err)
	}

	chatID, threadID := b.routeTarget(db.KeyLicenseTopicID)
	if chatID == 0 {
		logger.NotifyAdmin(fmt.Sprintf("license %s created but no staff group is configured", lic.Reference))
	} else {
		opts := &telegram.SendOpts{
			ThreadID: threadID,
			HTML:     true,
			Keyboard: licenseReviewKeyboard(s.user.TgID, lic.ID),
		}
		if _, err := b.api.SendText(chatID, licenseRecord(s.user, lic), opts); err != nil {
			logger.NotifyAdmin(fmt.Sprintf("license %s created but the review card failed: %v", lic.Reference, err))
		}
	}

	b.renderScreen(ev.chatID, ev.messageID, redeemSubmitted, nil)
	s.stage = db.StageIdle
	s.draft = db.Draft{}
	return nil
}

// onPromoPhoto stores the owner's new promo image.
func (b *Bot) onPromoPhoto(s *session, ev event) error {
	if s.user.TgID != b.ownerID {
		s.stage = db.StageIdle
		return nil
	}
	if err := b.store.SetSetting(db.KeyPromoPhotoFileID, ev.photoID); err != nil {
		return fmt.Errorf("save promo photo: %w", err)
	}
	b.send(ev.chatID, "Promo photo updated.", nil)
	s.stage = db.StageIdle
	s.draft = db.Draft{}
	return nil
}

// renderScreen edits the current screen in place, trying text first and
// caption second because the screen may be either a text or a photo
// message. When both edits fail (or there is nothing to edit) it falls
// back to a fresh message.
func (b *Bot) renderScreen(chatID int64, msgID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	if msgID != 0 {
		if err := b.api.EditText(chatID, msgID, text, kb); err == nil {
			return
		}
		if err := b.api.EditCaption(chatID, msgID, text, kb); err == nil {
			return
		}
	}
	if _, err := b.api.SendText(chatID, text, &telegram.SendOpts{Keyboard: kb}); err != nil {
		logger.Error("render screen", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// newRef mints a short human-quotable reference for staff records.
func newRef() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
