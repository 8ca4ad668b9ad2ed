package db

import "errors"

var (
	// ErrNotFound is returned for point lookups that match no record.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientBalance is returned by DebitCoins when the committed
	// balance is below the requested amount. The balance is unchanged.
	ErrInsufficientBalance = errors.New("insufficient coin balance")

	// ErrAlreadyProcessed is returned by the conditional status transitions
	// when the record has already left the expected state.
	ErrAlreadyProcessed = errors.New("record already processed")

	// ErrInvalidAmount is returned for non-positive ledger amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
)
