// Package admin owns the staff side of the bot: the approval protocol for
// orders and licenses, the chat-administrator role cache, the broadcast
// controller and the owner-only command surface.
package admin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"Zoom-License-Bot/internal/db"
	"Zoom-License-Bot/internal/logger"
	"Zoom-License-Bot/internal/telegram"
)

// ErrUnauthorized marks a non-admin attempting a staff action.
var ErrUnauthorized = errors.New("caller is not an administrator")

// Store is the slice of the data store the staff side needs.
type Store interface {
	GetUser(tgID int64) (*db.User, error)
	ListUsers() ([]db.User, error)
	UpdateSession(tgID int64, stage db.Stage, draft db.Draft) error
	UpdateProfile(tgID int64, firstName, username string) error
	GetOrder(id uint) (*db.Order, error)
	TransitionOrder(id uint, from, to string) error
	GetLicense(id uint) (*db.License, error)
	TransitionLicense(id uint, from, to string) error
	CreditCoins(tgID int64, amount int64) error
	DebitCoins(tgID int64, amount int64) error
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// Handler processes staff-group callbacks and owner commands.
type Handler struct {
	api        telegram.API
	store      Store
	roles      *RoleCache
	broadcasts *Broadcaster
	ownerID    int64
	dsn        string        // database DSN, used by the on-demand backup
	pace       time.Duration // delay between sequential outbound calls
}

func NewHandler(api telegram.API, store Store, roles *RoleCache, broadcasts *Broadcaster, ownerID int64, dsn string) *Handler {
	return &Handler{
		api:        api,
		store:      store,
		roles:      roles,
		broadcasts: broadcasts,
		ownerID:    ownerID,
		dsn:        dsn,
		pace:       300 * time.Millisecond,
	}
}

// HandleCallback runs a staff-group button press through the approval
// protocol. Every press is acknowledged exactly once, whatever the outcome.
func (h *Handler) HandleCallback(cb *tgbotapi.CallbackQuery) {
	text, alert := h.dispatchCallback(cb)
	if err := h.api.AnswerCallback(cb.ID, text, alert); err != nil {
		logger.Error("answer staff callback", zap.Error(err))
	}
}

func (h *Handler) dispatchCallback(cb *tgbotapi.CallbackQuery) (string, bool) {
	if cb.Message == nil || cb.Message.Chat == nil || cb.From == nil {
		return "", false
	}
	chatID := cb.Message.Chat.ID
	if groupID := h.chatSetting(db.KeyGroupID); groupID == 0 || groupID != chatID {
		return "", false
	}

	ok, err := h.roles.IsAdmin(chatID, cb.From.ID)
	if err != nil {
		logger.Error("admin check failed", zap.Error(err))
		return "Could not verify admin rights, try again.", false
	}
	if !ok {
		return "You are not an admin.", true
	}

	action, recordID, parsed := parseAction(cb.Data)
	if !parsed {
		logger.Error("malformed staff callback", zap.String("data", cb.Data))
		return "", false
	}
	defer logger.LogAdminAction(cb.From.ID, action, cb.Data)

	switch action {
	case actionAcceptOrder:
		return h.acceptOrder(cb, recordID)
	case actionDeclineOrder:
		return h.declineOrder(cb, recordID)
	case actionFinishLicense:
		return h.finishLicense(cb, recordID)
	case actionDeclineLicense:
		return h.declineLicense(cb, recordID)
	case actionBroadcastSend:
		return h.sendBroadcast(cb.From.ID)
	case actionBroadcastCancel:
		return h.cancelBroadcast(cb.From.ID)
	default:
		return "", false
	}
}

// acceptOrder credits the purchased coins and closes out the order.
// Ordering matters: status re-read, ledger credit, status persist. A ledger
// failure leaves the order pending so the admin can simply press again.
func (h *Handler) acceptOrder(cb *tgbotapi.CallbackQuery, orderID uint) (string, bool) {
	order, err := h.store.GetOrder(orderID)
	if errors.Is(err, db.ErrNotFound) {
		return "Order not found.", true
	}
	if err != nil {
		logger.Error("load order", zap.Uint("order_id", orderID), zap.Error(err))
		return "Could not load the order, try again.", false
	}
	if order.Status != db.OrderPending {
		return "Order already processed.", true
	}

	if err := h.store.CreditCoins(order.UserID, order.Coins); err != nil {
		logger.Error("credit coins", zap.Uint("order_id", orderID), zap.Error(err))
		return "Ledger update failed, try again.", true
	}
	if err := h.store.TransitionOrder(order.ID, db.OrderPending, db.OrderAccepted); err != nil {
		// Coins already landed; never re-credit. Escalate for manual review.
		logger.NotifyAdmin(fmt.Sprintf("order %s credited %d coins but status update failed: %v",
			order.Reference, order.Coins, err))
		return "Order state changed underneath, check it manually.", true
	}

	h.relocateStaffRecord(cb, "Order (Pending)", "Order (✅ Accepted)", db.KeyOrderFinishedTopicID)

	h.notify(order.UserID, fmt.Sprintf(
		"%d coins have been added to your balance.\n\nThank you for your purchase!\nCheck your balance any time with /balance.", order.Coins), nil)
	followUp := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Buy license", CallbackRedeemPrompt),
	))
	h.notify(order.UserID, "Ready to redeem? Press below to buy a Zoom license.", &telegram.SendOpts{Keyboard: &followUp})

	return "Order accepted.", false
}

func (h *Handler) declineOrder(cb *tgbotapi.CallbackQuery, orderID uint) (string, bool) {
	order, err := h.store.GetOrder(orderID)
	if errors.Is(err, db.ErrNotFound) {
		return "Order not found.", true
	}
	if err != nil {
		logger.Error("load order", zap.Uint("order_id", orderID), zap.Error(err))
		return "Could not load the order, try again.", false
	}
	if order.Status != db.OrderPending {
		return "Order already processed.", true
	}
	if err := h.store.TransitionOrder(order.ID, db.OrderPending, db.OrderDeclined); err != nil {
		if errors.Is(err, db.ErrAlreadyProcessed) {
			return "Order already processed.", true
		}
		logger.Error("decline order", zap.Uint("order_id", orderID), zap.Error(err))
		return "Could not update the order, try again.", false
	}

	h.relocateStaffRecord(cb, "Order (Pending)", "Order (❌ Declined)", "")
	h.notify(order.UserID, "Your order has been declined. Please contact an admin if you believe this is a mistake.", nil)
	return "Order declined.", false
}

// finishLicense is the claim-before-act edge of the redemption flow: the
// coins are debited here, not when the customer confirmed, so a declined
// license never needs a refund.
func (h *Handler) finishLicense(cb *tgbotapi.CallbackQuery, licenseID uint) (string, bool) {
	lic, err := h.store.GetLicense(licenseID)
	if errors.Is(err, db.ErrNotFound) {
		return "License not found.", true
	}
	if err != nil {
		logger.Error("load license", zap.Uint("license_id", licenseID), zap.Error(err))
		return "Could not load the license, try again.", false
	}
	if lic.Status != db.LicensePending {
		return "License already processed.", true
	}

	if err := h.store.DebitCoins(lic.UserID, lic.CoinsSpent); err != nil {
		if errors.Is(err, db.ErrInsufficientBalance) {
			user, uerr := h.store.GetUser(lic.UserID)
			have := int64(0)
			if uerr == nil {
				have = user.CoinBalance
			}
			return fmt.Sprintf("Customer balance too low: needs %d coins, has %d.", lic.CoinsSpent, have), true
		}
		logger.Error("debit coins", zap.Uint("license_id", licenseID), zap.Error(err))
		return "Ledger update failed, try again.", true
	}
	if err := h.store.TransitionLicense(lic.ID, db.LicensePending, db.LicenseActive); err != nil {
		logger.NotifyAdmin(fmt.Sprintf("license %s debited %d coins but status update failed: %v",
			lic.Reference, lic.CoinsSpent, err))
		return "License state changed underneath, check it manually.", true
	}

	h.relocateStaffRecord(cb, "License (Pending)", "License (✅ Active)", db.KeyLicenseFinishedTopicID)

	h.notify(lic.UserID, fmt.Sprintf(
		"Zoom License\n✉️: %s\n🛍️: %s\n🪙: %d Coins\n🗓️: %d Days\nExpire Date - %s",
		lic.Email, lic.PlanName, lic.CoinsSpent, lic.Days, telegram.FormatDate(lic.ExpiresAt)), nil)
	h.notify(lic.UserID,
		"Thank you for your purchase!\n\n/balance — check your coin balance\n/start — buy more coins\n/zoom — buy another license", nil)

	return "License activated.", false
}

func (h *Handler) declineLicense(cb *tgbotapi.CallbackQuery, licenseID uint) (string, bool) {
	lic, err := h.store.GetLicense(licenseID)
	if errors.Is(err, db.ErrNotFound) {
		return "License not found.", true
	}
	if err != nil {
		logger.Error("load license", zap.Uint("license_id", licenseID), zap.Error(err))
		return "Could not load the license, try again.", false
	}
	if lic.Status != db.LicensePending {
		return "License already processed.", true
	}
	if err := h.store.TransitionLicense(lic.ID, db.LicensePending, db.LicenseDeclined); err != nil {
		if errors.Is(err, db.ErrAlreadyProcessed) {
			return "License already processed.", true
		}
		logger.Error("decline license", zap.Uint("license_id", licenseID), zap.Error(err))
		return "Could not update the license, try again.", false
	}

	// No ledger effect: the coins were never debited for a pending license.
	h.relocateStaffRecord(cb, "License (Pending)", "License (❌ Declined)", "")
	h.notify(lic.UserID, "Your license request has been declined. Your coins were not spent. Please contact an admin.", nil)
	return "License declined.", false
}

// relocateStaffRecord rewrites the staff message's status line, drops its
// buttons and, when a finished topic is configured, forwards it there.
// These are presentation-side effects: failures are logged, not propagated,
// because the state transition has already committed.
func (h *Handler) relocateStaffRecord(cb *tgbotapi.CallbackQuery, from, to, finishedTopicKey string) {
	msg := cb.Message
	var err error
	if msg.Caption != "" {
		err = h.api.EditCaption(msg.Chat.ID, msg.MessageID, strings.Replace(msg.Caption, from, to, 1), telegram.EmptyKeyboard())
	} else {
		err = h.api.EditText(msg.Chat.ID, msg.MessageID, strings.Replace(msg.Text, from, to, 1), telegram.EmptyKeyboard())
	}
	if err != nil {
		logger.Error("edit staff record", zap.Error(err))
	}
	if finishedTopicKey == "" {
		return
	}
	if topicID := h.topicSetting(finishedTopicKey); topicID != 0 {
		if err := h.api.ForwardMessage(msg.Chat.ID, msg.Chat.ID, msg.MessageID, topicID); err != nil {
			logger.Error("forward to finished topic", zap.Error(err))
		}
	}
}

func (h *Handler) notify(chatID int64, text string, opts *telegram.SendOpts) {
	if _, err := h.api.SendText(chatID, text, opts); err != nil {
		logger.Error("notify user", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handler) chatSetting(key string) int64 {
	v, err := h.store.GetSetting(key)
	if err != nil {
		return 0
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func (h *Handler) topicSetting(key string) int {
	return int(h.chatSetting(key))
}
