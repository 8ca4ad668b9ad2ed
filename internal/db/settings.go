package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Setting keys. The routing ids point the bot at the staff group and its
// topics; the owner assigns them with the /connectgp family of commands.
const (
	KeyGroupID                = "group_id"
	KeyNewCustomerTopicID     = "new_customer_topic_id"
	KeyOrderTopicID           = "order_topic_id"
	KeyOrderFinishedTopicID   = "order_finished_topic_id"
	KeyLicenseTopicID         = "license_topic_id"
	KeyLicenseFinishedTopicID = "license_finished_topic_id"
	KeyLicenseExpiredTopicID  = "license_expired_topic_id"
	KeyPromoPhotoFileID       = "promo_photo_file_id"
)

func (s *Store) GetSetting(key string) (string, error) {
	var st Setting
	err := s.db.Where("key = ?", key).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return st.Value, nil
}

func (s *Store) SetSetting(key, value string) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&Setting{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}
