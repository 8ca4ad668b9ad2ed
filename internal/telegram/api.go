// Package telegram is the messaging gateway: a thin layer over the Bot API
// that the rest of the bot talks to. It exists for two reasons: the typed
// configs in telegram-bot-api v5 predate forum topics, so topic-addressed
// calls go through MakeRequest with an explicit message_thread_id; and the
// interface lets tests substitute a fake transport.
package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SendOpts carries the optional pieces of an outbound message. ThreadID
// targets a forum topic; ReplyTo anchors the message under another one,
// which also keeps it inside that message's topic.
type SendOpts struct {
	ThreadID int
	ReplyTo  int
	Keyboard *tgbotapi.InlineKeyboardMarkup
	HTML     bool
}

// API is the outbound surface of the gateway.
type API interface {
	SendText(chatID int64, text string, opts *SendOpts) (messageID int, err error)
	SendPhoto(chatID int64, fileID, caption string, opts *SendOpts) (messageID int, err error)
	SendDocument(chatID int64, path, caption string) error
	EditText(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error
	EditCaption(chatID int64, messageID int, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) error
	EditMedia(chatID int64, messageID int, fileID, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) error
	DeleteMessage(chatID int64, messageID int) error
	ForwardMessage(toChatID, fromChatID int64, messageID, threadID int) error
	CopyMessage(toChatID, fromChatID int64, messageID int) error
	AnswerCallback(callbackID, text string, alert bool) error
	ChatAdministrators(chatID int64) ([]tgbotapi.ChatMember, error)
	GetChat(chatID int64) (*tgbotapi.Chat, error)
}

// EmptyKeyboard clears an inline keyboard when passed to the edit calls.
func EmptyKeyboard() *tgbotapi.InlineKeyboardMarkup {
	return &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
}
