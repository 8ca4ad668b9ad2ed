// Package bot hosts the customer-facing side: the update loop and the
// stage-driven conversation state machine.
package bot

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"Zoom-License-Bot/internal/admin"
	"Zoom-License-Bot/internal/db"
	"Zoom-License-Bot/internal/logger"
	"Zoom-License-Bot/internal/telegram"
)

// Store is the slice of the data store the conversation engine needs.
type Store interface {
	GetOrCreateUser(tgID int64, firstName, username string) (*db.User, bool, error)
	UpdateSession(tgID int64, stage db.Stage, draft db.Draft) error
	CreateOrder(order *db.Order) error
	SetOrderProof(orderID uint, messageID int) error
	CreateLicense(lic *db.License) error
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

type Bot struct {
	api     telegram.API
	store   Store
	admin   *admin.Handler
	limiter *RateLimiter
	ownerID int64
}

func New(api telegram.API, store Store, adminH *admin.Handler, ownerID int64) *Bot {
	return &Bot{
		api:     api,
		store:   store,
		admin:   adminH,
		limiter: NewRateLimiter(),
		ownerID: ownerID,
	}
}

// Run consumes the update channel. Each update gets its own goroutine so
// one user's slow external calls never block another user's handler; two
// rapid updates from the same user can still race on that user's session,
// an accepted limitation of the single-process design.
func (b *Bot) Run(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		go func(u tgbotapi.Update) {
			defer logger.NotifyOnPanic("handle update")
			b.HandleUpdate(u)
		}(update)
	}
}

func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	if msg.Chat.IsGroup() || msg.Chat.IsSuperGroup() {
		b.handleGroupMessage(msg)
		return
	}

	user, created, err := b.store.GetOrCreateUser(msg.From.ID, msg.From.FirstName, msg.From.UserName)
	if err != nil {
		logger.Error("load user", zap.Int64("tg_id", msg.From.ID), zap.Error(err))
		return
	}
	if created {
		b.announceNewCustomer(user)
	}

	if msg.IsCommand() {
		b.handleCommand(user, msg)
		return
	}

	switch {
	case len(msg.Photo) > 0:
		// Telegram sends several sizes; the last one is the largest.
		b.dispatch(user, event{
			kind:      eventPhoto,
			photoID:   msg.Photo[len(msg.Photo)-1].FileID,
			chatID:    msg.Chat.ID,
			messageID: msg.MessageID,
		}, "")
	case msg.Text != "":
		b.dispatch(user, event{
			kind:      eventText,
			text:      msg.Text,
			chatID:    msg.Chat.ID,
			messageID: msg.MessageID,
		}, "")
	}
}

// handleGroupMessage covers the staff group: commands go to the staff
// command surface, everything else may belong to an open broadcast job.
func (b *Bot) handleGroupMessage(msg *tgbotapi.Message) {
	if b.admin == nil {
		return
	}
	if msg.IsCommand() {
		b.admin.HandleCommand(msg)
		return
	}
	if msg.From != nil {
		b.admin.CollectBroadcast(msg.From.ID, msg.Chat.ID, msg.MessageID)
	}
}

func (b *Bot) handleCommand(user *db.User, msg *tgbotapi.Message) {
	if b.admin != nil && b.admin.HandleCommand(msg) {
		return
	}

	cmd := msg.Command()
	if user.TgID != b.ownerID && b.limiter.IsLimited(user.TgID, "/"+cmd) {
		b.send(msg.Chat.ID, "Not so fast! Please wait a couple of seconds…", nil)
		return
	}

	switch cmd {
	case "start":
		b.cmdStart(user, msg.Chat.ID)
	case "balance":
		b.cmdBalance(user, msg.Chat.ID)
	case "zoom":
		b.cmdRedeem(user, msg.Chat.ID)
	default:
		b.send(msg.Chat.ID, "Unknown command. Use /start to buy coins, /zoom to buy a license or /balance to check your coins.", nil)
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.From == nil {
		return
	}
	if cb.Message != nil && cb.Message.Chat != nil &&
		(cb.Message.Chat.IsGroup() || cb.Message.Chat.IsSuperGroup()) {
		if b.admin != nil {
			b.admin.HandleCallback(cb)
		}
		return
	}
	if cb.Message == nil || cb.Message.Chat == nil {
		// The source message is too old; nothing to act on, but the press
		// still has to be acknowledged.
		b.answer(cb.ID, "", false)
		return
	}

	user, created, err := b.store.GetOrCreateUser(cb.From.ID, cb.From.FirstName, cb.From.UserName)
	if err != nil {
		logger.Error("load user", zap.Int64("tg_id", cb.From.ID), zap.Error(err))
		b.answer(cb.ID, "Please try again.", false)
		return
	}
	if created {
		b.announceNewCustomer(user)
	}

	b.dispatch(user, event{
		kind:      eventButton,
		payload:   cb.Data,
		chatID:    cb.Message.Chat.ID,
		messageID: cb.Message.MessageID,
	}, cb.ID)
}

// cmdStart resets the session to the start menu. First contact has already
// been announced by the time this runs.
func (b *Bot) cmdStart(user *db.User, chatID int64) {
	b.showStartMenu(user, chatID, 0)
	if err := b.store.UpdateSession(user.TgID, db.StageMenuShown, db.Draft{}); err != nil {
		logger.Error("reset session", zap.Int64("tg_id", user.TgID), zap.Error(err))
	}
}

func (b *Bot) cmdBalance(user *db.User, chatID int64) {
	b.send(chatID, balanceText(user.CoinBalance), nil)
}

func (b *Bot) cmdRedeem(user *db.User, chatID int64) {
	b.send(chatID, emailPrompt, nil)
	if err := b.store.UpdateSession(user.TgID, db.StageAwaitingEmail, db.Draft{}); err != nil {
		logger.Error("start redemption", zap.Int64("tg_id", user.TgID), zap.Error(err))
	}
}

// announceNewCustomer posts the first-contact alert to the staff group.
func (b *Bot) announceNewCustomer(user *db.User) {
	chatID, threadID := b.routeTarget(db.KeyNewCustomerTopicID)
	if chatID == 0 {
		return
	}
	opts := &telegram.SendOpts{ThreadID: threadID, HTML: true}
	if _, err := b.api.SendText(chatID, newCustomerAlert(user), opts); err != nil {
		logger.Error("new customer alert", zap.Error(err))
	}
}

// routeTarget resolves the staff group id plus one of its topic ids.
func (b *Bot) routeTarget(topicKey string) (int64, int) {
	group, err := b.store.GetSetting(db.KeyGroupID)
	if err != nil {
		return 0, 0
	}
	chatID, err := strconv.ParseInt(group, 10, 64)
	if err != nil {
		return 0, 0
	}
	topic, err := b.store.GetSetting(topicKey)
	if err != nil {
		return chatID, 0
	}
	threadID, _ := strconv.Atoi(topic)
	return chatID, threadID
}

func (b *Bot) send(chatID int64, text string, opts *telegram.SendOpts) {
	if _, err := b.api.SendText(chatID, text, opts); err != nil {
		logger.Error("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) answer(callbackID, text string, alert bool) {
	if err := b.api.AnswerCallback(callbackID, text, alert); err != nil {
		logger.Error("answer callback", zap.Error(err))
	}
}
