package bot

import (
	"go.uber.org/zap"

	"Zoom-License-Bot/internal/db"
	"Zoom-License-Bot/internal/logger"
)

type eventKind int

const (
	eventText eventKind = iota
	eventPhoto
	eventButton
)

// event is one normalized inbound update from a private chat.
type event struct {
	kind      eventKind
	text      string
	photoID   string
	payload   string
	chatID    int64
	messageID int
}

type stageKey struct {
	stage db.Stage
	kind  eventKind
}

// session is the in-memory working copy of a user's conversation state.
// Handlers mutate it freely; the dispatcher persists it in one write only
// after the handler succeeds, so a failed handler leaves the stored stage
// untouched and the user can simply retry.
type session struct {
	user  *db.User
	stage db.Stage
	draft db.Draft

	// ackText/ackAlert feed the single AnswerCallback for button events.
	ackText  string
	ackAlert bool
}

type handlerFunc func(*Bot, *session, event) error

// stageHandlers keys the conversation table by (stage, event kind). An
// unmatched pair is silently ignored, which also covers stale buttons from
// screens the user already left.
var stageHandlers = map[stageKey]handlerFunc{
	{db.StageIdle, eventButton}:          (*Bot).onMenuButton,
	{db.StageMenuShown, eventButton}:     (*Bot).onMenuButton,
	{db.StagePlanCatalog, eventButton}:   (*Bot).onPlanCatalogButton,
	{db.StagePaymentMethod, eventButton}: (*Bot).onPaymentMethodButton,
	{db.StageAwaitingProof, eventButton}: (*Bot).onAwaitingProofButton,
	{db.StageAwaitingProof, eventPhoto}:  (*Bot).onPaymentProof,
	{db.StageAwaitingEmail, eventText}:   (*Bot).onEmailText,
	{db.StagePlanSelect, eventButton}:    (*Bot).onPlanSelectButton,
	{db.StageConfirmRedeem, eventButton}: (*Bot).onConfirmRedeemButton,
	{db.StageAwaitingPhoto, eventPhoto}:  (*Bot).onPromoPhoto,
}

// dispatch routes one event through the conversation table. For button
// events callbackID is non-empty and is answered exactly once, whatever
// path the event takes.
func (b *Bot) dispatch(user *db.User, ev event, callbackID string) {
	handler, ok := stageHandlers[stageKey{user.Stage, ev.kind}]
	if !ok {
		if callbackID != "" {
			b.answer(callbackID, "", false)
		}
		return
	}

	s := &session{user: user, stage: user.Stage, draft: user.Draft}
	if err := handler(b, s, ev); err != nil {
		logger.Error("stage handler",
			zap.Int64("tg_id", user.TgID),
			zap.String("stage", string(user.Stage)),
			zap.Error(err))
		b.reportFailure(ev, callbackID)
		return
	}

	if err := b.store.UpdateSession(user.TgID, s.stage, s.draft); err != nil {
		logger.Error("persist session",
			zap.Int64("tg_id", user.TgID),
			zap.String("stage", string(s.stage)),
			zap.Error(err))
		b.reportFailure(ev, callbackID)
		return
	}

	if callbackID != "" {
		b.answer(callbackID, s.ackText, s.ackAlert)
	}
}

func (b *Bot) reportFailure(ev event, callbackID string) {
	if callbackID != "" {
		b.answer(callbackID, "An error occurred. Please try again.", true)
		return
	}
	b.send(ev.chatID, "An error occurred. Please try again.", nil)
}
