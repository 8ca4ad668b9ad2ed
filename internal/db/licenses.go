package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

func (s *Store) CreateLicense(lic *License) error {
	if err := s.db.Create(lic).Error; err != nil {
		return fmt.Errorf("create license: %w", err)
	}
	return nil
}

func (s *Store) GetLicense(id uint) (*License, error) {
	var l License
	err := s.db.First(&l, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get license %d: %w", id, err)
	}
	return &l, nil
}

// TransitionLicense mirrors TransitionOrder: conditional on the current
// status, ErrAlreadyProcessed when the record has already moved on.
func (s *Store) TransitionLicense(id uint, from, to string) error {
	res := s.db.Model(&License{}).Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("transition license %d %s->%s: %w", id, from, to, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}

// ExpiringLicenses returns active, unreminded licenses expiring within the
// given window but not yet past.
func (s *Store) ExpiringLicenses(now time.Time, within time.Duration) ([]License, error) {
	var lics []License
	err := s.db.Where("status = ? AND reminded = false AND expires_at > ? AND expires_at <= ?",
		LicenseActive, now, now.Add(within)).Find(&lics).Error
	if err != nil {
		return nil, fmt.Errorf("list expiring licenses: %w", err)
	}
	return lics, nil
}

// OverdueLicenses returns active licenses whose expiry time has passed.
func (s *Store) OverdueLicenses(now time.Time) ([]License, error) {
	var lics []License
	err := s.db.Where("status = ? AND expires_at <= ?", LicenseActive, now).Find(&lics).Error
	if err != nil {
		return nil, fmt.Errorf("list overdue licenses: %w", err)
	}
	return lics, nil
}

// MarkLicenseReminded flips the reminded flag. Conditional on reminded being
// false so the reminder can fire at most once per license.
func (s *Store) MarkLicenseReminded(id uint) error {
	res := s.db.Model(&License{}).Where("id = ? AND reminded = false", id).
		Update("reminded", true)
	if res.Error != nil {
		return fmt.Errorf("mark license %d reminded: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}
