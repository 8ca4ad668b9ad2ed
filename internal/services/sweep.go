// Package services holds the scheduled background jobs.
package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"Zoom-License-Bot/internal/db"
	"Zoom-License-Bot/internal/logger"
	"Zoom-License-Bot/internal/telegram"
)

// reminderWindow is how far ahead of expiry the renewal reminder goes out.
const reminderWindow = 24 * time.Hour

// Store is the slice of the data store the sweep needs.
type Store interface {
	GetUser(tgID int64) (*db.User, error)
	ExpiringLicenses(now time.Time, within time.Duration) ([]db.License, error)
	OverdueLicenses(now time.Time) ([]db.License, error)
	MarkLicenseReminded(id uint) error
	TransitionLicense(id uint, from, to string) error
	GetSetting(key string) (string, error)
}

// Sweeper walks active licenses on a schedule: soon-to-expire ones get a
// one-time renewal reminder, overdue ones are expired and logged to the
// staff group.
type Sweeper struct {
	api   telegram.API
	store Store
	now   func() time.Time
}

func NewSweeper(api telegram.API, store Store) *Sweeper {
	return &Sweeper{api: api, store: store, now: time.Now}
}

// Run executes one sweep pass. Safe to call concurrently with itself: every
// state change is claimed conditionally, so overlapping passes cannot
// double-send.
func (s *Sweeper) Run() {
	now := s.now()
	s.remindExpiring(now)
	s.expireOverdue(now)
}

func (s *Sweeper) remindExpiring(now time.Time) {
	lics, err := s.store.ExpiringLicenses(now, reminderWindow)
	if err != nil {
		logger.Error("sweep: list expiring", zap.Error(err))
		return
	}
	for _, lic := range lics {
		// Claim first, send second: a crash between the two loses one
		// reminder, the reverse order could spam the customer every hour.
		if err := s.store.MarkLicenseReminded(lic.ID); err != nil {
			if !errors.Is(err, db.ErrAlreadyProcessed) {
				logger.Error("sweep: mark reminded", zap.Uint("license_id", lic.ID), zap.Error(err))
			}
			continue
		}
		text := fmt.Sprintf(
			"⏰ Your Zoom license for %s expires on %s.\n\n"+
				"Renew in time to keep your meetings uninterrupted:\n"+
				"/start — buy coins\n/zoom — buy a new license",
			lic.Email, telegram.FormatDate(lic.ExpiresAt))
		if _, err := s.api.SendText(lic.UserID, text, nil); err != nil {
			logger.Error("sweep: send reminder", zap.Uint("license_id", lic.ID), zap.Error(err))
		}
	}
}

func (s *Sweeper) expireOverdue(now time.Time) {
	lics, err := s.store.OverdueLicenses(now)
	if err != nil {
		logger.Error("sweep: list overdue", zap.Error(err))
		return
	}
	for _, lic := range lics {
		if err := s.store.TransitionLicense(lic.ID, db.LicenseActive, db.LicenseExpired); err != nil {
			if !errors.Is(err, db.ErrAlreadyProcessed) {
				logger.Error("sweep: expire license", zap.Uint("license_id", lic.ID), zap.Error(err))
			}
			continue
		}

		text := fmt.Sprintf(
			"Your Zoom license for %s expired on %s.\n\n"+
				"/start — buy coins\n/zoom — buy a new license",
			lic.Email, telegram.FormatDate(lic.ExpiresAt))
		if _, err := s.api.SendText(lic.UserID, text, nil); err != nil {
			logger.Error("sweep: notify expiry", zap.Uint("license_id", lic.ID), zap.Error(err))
		}

		s.logExpiry(lic)
	}
}

// logExpiry posts the expired license to the staff group's expired topic.
func (s *Sweeper) logExpiry(lic db.License) {
	chatID, threadID := s.routeTarget(db.KeyLicenseExpiredTopicID)
	if chatID == 0 {
		return
	}
	name := "N/A"
	if user, err := s.store.GetUser(lic.UserID); err == nil {
		name = user.FirstName
	}
	text := fmt.Sprintf(
		"License (Expired)\n\n👤: %s\nID: %d\n✉️: %s\n🛍️: %s\nRef: %s\nExpire Date - %s",
		name, lic.UserID, lic.Email, lic.PlanName, lic.Reference, telegram.FormatDate(lic.ExpiresAt))
	if _, err := s.api.SendText(chatID, text, &telegram.SendOpts{ThreadID: threadID}); err != nil {
		logger.Error("sweep: staff expiry log", zap.Uint("license_id", lic.ID), zap.Error(err))
	}
}

func (s *Sweeper) routeTarget(topicKey string) (int64, int) {
	group, err := s.store.GetSetting(db.KeyGroupID)
	if err != nil {
		return 0, 0
	}
	chatID, err := strconv.ParseInt(group, 10, 64)
	if err != nil {
		return 0, 0
	}
	topic, err := s.store.GetSetting(topicKey)
	if err != nil {
		return chatID, 0
	}
	threadID, _ := strconv.Atoi(topic)
	return chatID, threadID
}
