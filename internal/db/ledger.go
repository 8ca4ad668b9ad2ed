package db

import (
	"fmt"

	"gorm.io/gorm"
)

// The ledger never computes a balance in application memory: both mutations
// are single conditional UPDATEs so concurrent credits/debits cannot lose
// writes or drive the balance negative.

// CreditCoins atomically adds amount to the user's coin balance.
func (s *Store) CreditCoins(tgID int64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	res := s.db.Model(&User{}).Where("tg_id = ?", tgID).
		UpdateColumn("coin_balance", gorm.Expr("coin_balance + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("credit %d coins to %d: %w", amount, tgID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DebitCoins atomically subtracts amount from the user's coin balance.
// Fails with ErrInsufficientBalance when the committed balance is lower
// than amount; the balance is left untouched in that case.
func (s *Store) DebitCoins(tgID int64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	res := s.db.Model(&User{}).Where("tg_id = ? AND coin_balance >= ?", tgID, amount).
		UpdateColumn("coin_balance", gorm.Expr("coin_balance - ?", amount))
	if res.Error != nil {
		return fmt.Errorf("debit %d coins from %d: %w", amount, tgID, res.Error)
	}
	if res.RowsAffected == 0 {
		// No row matched: either the user is gone or the balance is short.
		var n int64
		if err := s.db.Model(&User{}).Where("tg_id = ?", tgID).Count(&n).Error; err != nil {
			return fmt.Errorf("debit %d coins from %d: %w", amount, tgID, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrInsufficientBalance
	}
	return nil
}
