package telegram

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Gateway implements API against a live BotAPI connection.
type Gateway struct {
	bot *tgbotapi.BotAPI
}

func NewGateway(bot *tgbotapi.BotAPI) *Gateway {
	return &Gateway{bot: bot}
}

func (g *Gateway) SendText(chatID int64, text string, opts *SendOpts) (int, error) {
	p := tgbotapi.Params{}
	p.AddNonZero64("chat_id", chatID)
	p["text"] = text
	if err := applyOpts(p, opts); err != nil {
		return 0, err
	}
	return messageID(g.bot.MakeRequest("sendMessage", p))
}

func (g *Gateway) SendPhoto(chatID int64, fileID, caption string, opts *SendOpts) (int, error) {
	p := tgbotapi.Params{}
	p.AddNonZero64("chat_id", chatID)
	p["photo"] = fileID
	p.AddNonEmpty("caption", caption)
	if err := applyOpts(p, opts); err != nil {
		return 0, err
	}
	return messageID(g.bot.MakeRequest("sendPhoto", p))
}

// SendDocument uploads a local file. Used only for database backups sent to
// the owner, so it goes through the typed config that knows multipart.
func (g *Gateway) SendDocument(chatID int64, path, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	if _, err := g.bot.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

func (g *Gateway) EditText(chatID int64, msgID int, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	p := tgbotapi.Params{}
	p.AddNonZero64("chat_id", chatID)
	p.AddNonZero("message_id", msgID)
	p["text"] = text
	if err := addKeyboard(p, kb); err != nil {
		return err
	}
	_, err := g.bot.MakeRequest("editMessageText", p)
	return err
}

func (g *Gateway) EditCaption(chatID int64, msgID int, caption string, kb *tgbotapi.InlineKeyboardMarkup) error {
	p := tgbotapi.Params{}
	p.AddNonZero64("chat_id", chatID)
	p.AddNonZero("message_id", msgID)
	p["caption"] = caption
	p["parse_mode"] = tgbotapi.ModeHTML
	if err := addKeyboard(p, kb); err != nil {
		return err
	}
	_, err := g.bot.MakeRequest("editMessageCaption", p)
	return err
}

// EditMedia turns an existing message into a photo message (or swaps the
// photo), keeping chat and message id.
func (g *Gateway) EditMedia(chatID int64, msgID int, fileID, caption string, kb *tgbotapi.InlineKeyboardMarkup) error {
	p := tgbotapi.Params{}
	p.AddNonZero64("chat_id", chatID)
	p.AddNonZero("message_id", msgID)
	media := map[string]string{
		"type":       "photo",
		"media":      fileID,
		"caption":    caption,
		"parse_mode": tgbotapi.ModeHTML,
	}
	if err := p.AddInterface("media", media); err != nil {
		return err
	}
	if err := addKeyboard(p, kb); err != nil {
		return err
	}
	_, err := g.bot.MakeRequest("editMessageMedia", p)
	return err
}

func (g *Gateway) DeleteMessage(chatID int64, msgID int) error {
	p := tgbotapi.Params{}
	p.AddNonZero64("chat_id", chatID)
	p.AddNonZero("message_id", msgID)
	_, err := g.bot.MakeRequest("deleteMessage", p)
	return err
}

func (g *Gateway) ForwardMessage(toChatID, fromChatID int64, msgID, threadID int) error {
	p := tgbotapi.Params{}
	p.AddNonZero64("chat_id", toChatID)
	p.AddNonZero64("from_chat_id", fromChatID)
	p.AddNonZero("message_id", msgID)
	p.AddNonZero("message_thread_id", threadID)
	_, err := g.bot.MakeRequest("forwardMessage", p)
	return err
}

// CopyMessage replays a message without the forwarding attribution.
func (g *Gateway) CopyMessage(toChatID, fromChatID int64, msgID int) error {
	p := tgbotapi.Params{}
	p.AddNonZero64("chat_id", toChatID)
	p.AddNonZero64("from_chat_id", fromChatID)
	p.AddNonZero("message_id", msgID)
	_, err := g.bot.MakeRequest("copyMessage", p)
	return err
}

func (g *Gateway) AnswerCallback(callbackID, text string, alert bool) error {
	p := tgbotapi.Params{}
	p["callback_query_id"] = callbackID
	p.AddNonEmpty("text", text)
	p.AddBool("show_alert", alert)
	_, err := g.bot.MakeRequest("answerCallbackQuery", p)
	return err
}

func (g *Gateway) ChatAdministrators(chatID int64) ([]tgbotapi.ChatMember, error) {
	return g.bot.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
}

func (g *Gateway) GetChat(chatID int64) (*tgbotapi.Chat, error) {
	chat, err := g.bot.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func applyOpts(p tgbotapi.Params, opts *SendOpts) error {
	if opts == nil {
		return nil
	}
	p.AddNonZero("message_thread_id", opts.ThreadID)
	p.AddNonZero("reply_to_message_id", opts.ReplyTo)
	if opts.HTML {
		p["parse_mode"] = tgbotapi.ModeHTML
	}
	return addKeyboard(p, opts.Keyboard)
}

func addKeyboard(p tgbotapi.Params, kb *tgbotapi.InlineKeyboardMarkup) error {
	if kb == nil {
		return nil
	}
	return p.AddInterface("reply_markup", kb)
}

func messageID(resp *tgbotapi.APIResponse, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	var msg tgbotapi.Message
	if uerr := json.Unmarshal(resp.Result, &msg); uerr != nil {
		return 0, fmt.Errorf("decode sent message: %w", uerr)
	}
	return msg.MessageID, nil
}
