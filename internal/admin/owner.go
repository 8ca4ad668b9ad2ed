package admin

import (
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

// routingCommands maps the owner's setup commands to setting keys.
var routingCommands = map[string]struct {
	key   string
	label string
}{
	"connectgp":       {db.KeyGroupID, "Connected group ID"},
	"newcus":          {db.KeyNewCustomerTopicID, "New customer topic ID"},
	"order":           {db.KeyOrderTopicID, "Order topic ID"},
	"orderfinished":   {db.KeyOrderFinishedTopicID, "Order finished topic ID"},
	"license":         {db.KeyLicenseTopicID, "License topic ID"},
	"licensefinished": {db.KeyLicenseFinishedTopicID, "License finished topic ID"},
	"licenseexpired":  {db.KeyLicenseExpiredTopicID, "Expired license topic ID"},
}

// HandleCommand processes the staff/owner command surface. Returns false
// when the command is not staff-facing so the caller can treat it as a
// customer command.
func (h *Handler) HandleCommand(msg *tgbotapi.Message) bool {
	if msg.From == nil {
		return false
	}
	cmd := msg.Command()

	if cmd == "broadcast" {
		h.startBroadcast(msg)
		return true
	}

	if msg.From.ID != h.ownerID {
		return false
	}

	if rc, ok := routingCommands[cmd]; ok {
		h.setRouting(msg, rc.key, rc.label)
		return true
	}

	switch cmd {
	case "setphoto":
		if err := h.store.UpdateSession(msg.From.ID, db.StageAwaitingPhoto, db.Draft{}); err != nil {
			logger.Error("setphoto stage", zap.Error(err))
			h.notify(msg.Chat.ID, "Could not start the photo update, try again.", nil)
			return true
		}
		h.notify(msg.Chat.ID, "OK, Owner. Please send me the new promo photo.", nil)
	case "users":
		h.listUsers(msg.Chat.ID)
	case "balances":
		h.listBalances(msg.Chat.ID)
	case "dm":
		h.directMessage(msg)
	case "refresh":
		go func() {
			defer logger.NotifyOnPanic("profile refresh")
			h.refreshProfiles(msg.Chat.ID)
		}()
		h.notify(msg.Chat.ID, "Refreshing user profiles…", nil)
	case "backup":
		h.handleBackup(msg.Chat.ID)
	default:
		return false
	}
	logger.LogAdminAction(msg.From.ID, cmd, msg.Text)
	return true
}

// startBroadcast opens a collecting job. Only valid inside the configured
// staff group and only for its administrators.
func (h *Handler) startBroadcast(msg *tgbotapi.Message) {
	groupID := h.chatSetting(db.KeyGroupID)
	if groupID == 0 || msg.Chat == nil || msg.Chat.ID != groupID {
		return
	}
	opts := &telegram.SendOpts{ReplyTo: msg.MessageID}

	ok, err := h.roles.IsAdmin(groupID, msg.From.ID)
	if err != nil {
		logger.Error("broadcast admin check", zap.Error(err))
		h.notify(groupID, "Could not verify admin rights, try again.", opts)
		return
	}
	if !ok {
		return
	}

	mode := ModeCopy
	if strings.TrimSpace(msg.CommandArguments()) == string(ModeForward) {
		mode = ModeForward
	}
	if err := h.broadcasts.Start(msg.From.ID, mode, groupID, msg.MessageID); err != nil {
		h.notify(groupID, "You already have a broadcast in progress. Send or cancel it first.", opts)
		return
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📤 Send", actionBroadcastSend),
		tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", actionBroadcastCancel),
	))
	opts.Keyboard = &kb
	h.notify(groupID, fmt.Sprintf(
		"Broadcast (%s) started. Every message you post here now is collected; press Send to deliver them to all users.", mode), opts)
}

func (h *Handler) setRouting(msg *tgbotapi.Message, key, label string) {
	id := strings.TrimSpace(msg.CommandArguments())
	if id == "" {
		h.notify(msg.Chat.ID, fmt.Sprintf("Please provide an ID. Usage: /%s [id]", msg.Command()), nil)
		return
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		h.notify(msg.Chat.ID, "The ID must be numeric.", nil)
		return
	}
	if err := h.store.SetSetting(key, id); err != nil {
		logger.Error("set routing id", zap.String("key", key), zap.Error(err))
		h.notify(msg.Chat.ID, "Could not save the setting, try again.", nil)
		return
	}
	h.notify(msg.Chat.ID, fmt.Sprintf("%s has been set to %s.", label, id), nil)
}

func (h *Handler) listUsers(chatID int64) {
	users, err := h.store.ListUsers()
	if err != nil {
		logger.Error("list users", zap.Error(err))
		h.notify(chatID, "Could not load users.", nil)
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Users: %d\n", len(users))
	for _, u := range users {
		handle := u.Username
		if handle == "" {
			handle = "N/A"
		}
		fmt.Fprintf(&sb, "%d — %s (@%s)\n", u.TgID, u.FirstName, handle)
	}
	h.notify(chatID, sb.String(), nil)
}

func (h *Handler) listBalances(chatID int64) {
	users, err := h.store.ListUsers()
	if err != nil {
		logger.Error("list balances", zap.Error(err))
		h.notify(chatID, "Could not load balances.", nil)
		return
	}
	var sb strings.Builder
	sb.WriteString("Coin balances:\n")
	for _, u := range users {
		if u.CoinBalance == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%d — %s: %d\n", u.TgID, u.FirstName, u.CoinBalance)
	}
	h.notify(chatID, sb.String(), nil)
}

func (h *Handler) directMessage(msg *tgbotapi.Message) {
	args := strings.SplitN(strings.TrimSpace(msg.CommandArguments()), " ", 2)
	if len(args) < 2 {
		h.notify(msg.Chat.ID, "Usage: /dm <tg_id> <text>", nil)
		return
	}
	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.notify(msg.Chat.ID, "The target ID must be numeric.", nil)
		return
	}
	if _, err := h.api.SendText(target, args[1], nil); err != nil {
		h.notify(msg.Chat.ID, "Delivery failed: "+err.Error(), nil)
		return
	}
	h.notify(msg.Chat.ID, "Delivered.", nil)
}

// refreshProfiles re-reads every user's current name and handle from
// Telegram, one paced call at a time so a big user table does not trip the
// API rate limits.
func (h *Handler) refreshProfiles(reportChatID int64) {
	users, err := h.store.ListUsers()
	if err != nil {
		logger.Error("refresh profiles: list users", zap.Error(err))
		return
	}
	var updated, failed int
	for i, u := range users {
		if i > 0 && h.pace > 0 {
			time.Sleep(h.pace)
		}
		chat, err := h.api.GetChat(u.TgID)
		if err != nil {
			failed++
			continue
		}
		if err := h.store.UpdateProfile(u.TgID, chat.FirstName, chat.UserName); err != nil {
			logger.Error("refresh profile", zap.Int64("user", u.TgID), zap.Error(err))
			failed++
			continue
		}
		updated++
	}
	h.notify(reportChatID, fmt.Sprintf("Profile refresh done. Updated: %d, failed: %d.", updated, failed), nil)
}
