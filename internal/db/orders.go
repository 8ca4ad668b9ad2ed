package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

func (s *Store) CreateOrder(order *Order) error {
	if err := s.db.Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (s *Store) GetOrder(id uint) (*Order, error) {
	var o Order
	err := s.db.First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return &o, nil
}

// SetOrderProof stores the staff-group message id carrying the payment proof.
func (s *Store) SetOrderProof(id uint, messageID int) error {
	err := s.db.Model(&Order{}).Where("id = ?", id).
		Update("proof_message_id", messageID).Error
	if err != nil {
		return fmt.Errorf("set order proof %d: %w", id, err)
	}
	return nil
}

// TransitionOrder moves an order from one status to another. The update is
// conditional on the current status, so a duplicate admin click loses the
// race and gets ErrAlreadyProcessed instead of a second transition.
func (s *Store) TransitionOrder(id uint, from, to string) error {
	res := s.db.Model(&Order{}).Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("transition order %d %s->%s: %w", id, from, to, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}
