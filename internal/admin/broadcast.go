package admin

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"Zoom-License-Bot/internal/db"
	"Zoom-License-Bot/internal/logger"
	"Zoom-License-Bot/internal/telegram"
)

// Mode selects how collected messages are replayed to recipients.
type Mode string

const (
	// ModeCopy strips the forwarding attribution.
	ModeCopy Mode = "copy"
	// ModeForward keeps it.
	ModeForward Mode = "forward"
)

// ErrJobExists is returned when an admin starts a broadcast while already
// collecting one.
var ErrJobExists = errors.New("broadcast already in progress for this admin")

// UserLister is the only store access the fan-out needs.
type UserLister interface {
	ListUsers() ([]db.User, error)
}

type broadcastJob struct {
	mode     Mode
	chatID   int64 // staff group the messages were collected in
	replyTo  int   // start-command message; the summary replies to it
	messages []int
}

// Broadcaster holds at most one collect-then-send job per admin. Jobs live
// only in memory: a restart drops half-collected batches, which is fine.
type Broadcaster struct {
	api   telegram.API
	users UserLister
	pace  time.Duration

	mu   sync.Mutex
	jobs map[int64]*broadcastJob
}

func NewBroadcaster(api telegram.API, users UserLister, pace time.Duration) *Broadcaster {
	return &Broadcaster{
		api:   api,
		users: users,
		pace:  pace,
		jobs:  make(map[int64]*broadcastJob),
	}
}

// Start opens a collecting job for the admin.
func (b *Broadcaster) Start(adminID int64, mode Mode, chatID int64, replyTo int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.jobs[adminID]; exists {
		return ErrJobExists
	}
	b.jobs[adminID] = &broadcastJob{mode: mode, chatID: chatID, replyTo: replyTo}
	return nil
}

// Collect appends one message to the admin's open job. Returns false when
// the admin has no job or the message came from a different chat.
func (b *Broadcaster) Collect(adminID, chatID int64, messageID int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	job, ok := b.jobs[adminID]
	if !ok || job.chatID != chatID {
		return false
	}
	job.messages = append(job.messages, messageID)
	return true
}

// Cancel discards the admin's job without any fan-out.
func (b *Broadcaster) Cancel(adminID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.jobs[adminID]; !ok {
		return false
	}
	delete(b.jobs, adminID)
	return true
}

// take removes and returns the admin's job for sending.
func (b *Broadcaster) take(adminID int64) (*broadcastJob, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	job, ok := b.jobs[adminID]
	if ok {
		delete(b.jobs, adminID)
	}
	return job, ok
}

// run replays the collected messages to every known user, pacing each
// user-to-user step, then posts a summary back to the origin thread.
// Per-user failures are counted, never fatal.
func (b *Broadcaster) run(job *broadcastJob) {
	users, err := b.users.ListUsers()
	if err != nil {
		logger.Error("broadcast: list users", zap.Error(err))
		b.summary(job, 0, 0, "Broadcast failed: could not load the user list.")
		return
	}

	var sent, failed int
	for i, u := range users {
		if i > 0 && b.pace > 0 {
			time.Sleep(b.pace)
		}
		if err := b.deliver(job, u.TgID); err != nil {
			logger.Error("broadcast delivery failed", zap.Int64("user", u.TgID), zap.Error(err))
			failed++
			continue
		}
		sent++
	}
	b.summary(job, sent, failed, "")
}

func (b *Broadcaster) deliver(job *broadcastJob, userID int64) error {
	for _, msgID := range job.messages {
		var err error
		if job.mode == ModeForward {
			err = b.api.ForwardMessage(userID, job.chatID, msgID, 0)
		} else {
			err = b.api.CopyMessage(userID, job.chatID, msgID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *Broadcaster) summary(job *broadcastJob, sent, failed int, override string) {
	text := override
	if text == "" {
		text = fmt.Sprintf("Broadcast finished. Delivered: %d, failed: %d.", sent, failed)
	}
	if _, err := b.api.SendText(job.chatID, text, &telegram.SendOpts{ReplyTo: job.replyTo}); err != nil {
		logger.Error("broadcast summary", zap.Error(err))
	}
}

// sendBroadcast and cancelBroadcast back the Send/Cancel buttons.

func (h *Handler) sendBroadcast(adminID int64) (string, bool) {
	job, ok := h.broadcasts.take(adminID)
	if !ok {
		return "You have no broadcast in progress.", true
	}
	if len(job.messages) == 0 {
		return "Nothing collected, broadcast discarded.", true
	}
	go func() {
		defer logger.NotifyOnPanic("broadcast fan-out")
		h.broadcasts.run(job)
	}()
	return "Broadcast started.", false
}

func (h *Handler) cancelBroadcast(adminID int64) (string, bool) {
	if !h.broadcasts.Cancel(adminID) {
		return "You have no broadcast in progress.", true
	}
	return "Broadcast cancelled.", false
}

// CollectBroadcast is called by the update loop for every non-command
// message in the staff group.
func (h *Handler) CollectBroadcast(adminID, chatID int64, messageID int) bool {
	return h.broadcasts.Collect(adminID, chatID, messageID)
}
