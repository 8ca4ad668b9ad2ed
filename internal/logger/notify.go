package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	notifyMu sync.RWMutex
	sendFn   func(chatID int64, text string) error
	ownerID  int64
)

// InitNotifier wires critical-error notifications to the bot owner's chat.
// The send function is a thin closure over the messaging gateway so this
// package stays free of transport imports.
func InitNotifier(send func(chatID int64, text string) error, owner int64) {
	notifyMu.Lock()
	defer notifyMu.Unlock()
	sendFn = send
	ownerID = owner
}

// NotifyAdmin escalates a message to the bot owner besides logging it.
func NotifyAdmin(msg string) {
	Error("admin alert", zap.String("message", msg))
	notifyMu.RLock()
	send, owner := sendFn, ownerID
	notifyMu.RUnlock()
	if send == nil || owner == 0 {
		return
	}
	if err := send(owner, "[ALERT] "+msg); err != nil {
		Error("notify admin failed", zap.Error(err))
	}
}

// NotifyOnPanic recovers a panic, logs it and alerts the owner.
// Use as: defer logger.NotifyOnPanic("handle update").
func NotifyOnPanic(context string) {
	if r := recover(); r != nil {
		NotifyAdmin(fmt.Sprintf("Panic in %s: %v", context, r))
	}
}
