package domain

import "time"

// Balance is the current holding of one account in one currency.
// At most one row exists per (account, currency); the amount never goes
// below zero, enforced at the debit boundary.
type Balance struct {
	AccountID string
	Currency  string
	Amount    int64 // scaled 10^8
	UpdatedAt time.Time
}
