package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GetUser looks a user up by Telegram id.
func (s *Store) GetUser(tgID int64) (*User, error) {
	var u User
	err := s.db.Where("tg_id = ?", tgID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", tgID, err)
	}
	return &u, nil
}

// GetOrCreateUser loads the user or creates one on first contact.
// The second return value reports whether the user is new.
func (s *Store) GetOrCreateUser(tgID int64, firstName, username string) (*User, bool, error) {
	var u User
	err := s.db.Where("tg_id = ?", tgID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u = User{TgID: tgID, FirstName: firstName, Username: username, Stage: StageIdle}
		if cerr := s.db.Create(&u).Error; cerr != nil {
			return nil, false, fmt.Errorf("create user %d: %w", tgID, cerr)
		}
		return &u, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get user %d: %w", tgID, err)
	}
	return &u, false, nil
}

// UpdateSession writes stage and draft back in a single update. Handlers
// mutate an in-memory session and the dispatcher persists the result here,
// so a failed handler never leaves a half-written session.
func (s *Store) UpdateSession(tgID int64, stage Stage, draft Draft) error {
	err := s.db.Model(&User{}).Where("tg_id = ?", tgID).
		Select("stage", "draft").
		Updates(&User{Stage: stage, Draft: draft}).Error
	if err != nil {
		return fmt.Errorf("update session %d: %w", tgID, err)
	}
	return nil
}

// UpdateProfile refreshes the display name and handle.
func (s *Store) UpdateProfile(tgID int64, firstName, username string) error {
	err := s.db.Model(&User{}).Where("tg_id = ?", tgID).
		Select("first_name", "username").
		Updates(&User{FirstName: firstName, Username: username}).Error
	if err != nil {
		return fmt.Errorf("update profile %d: %w", tgID, err)
	}
	return nil
}

// ListUsers returns every known user, oldest first.
func (s *Store) ListUsers() ([]User, error) {
	var users []User
	if err := s.db.Order("created_at asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
