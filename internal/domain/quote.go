package domain

import "time"

type Side string
type QuoteStatus string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"

	QuoteOpen     QuoteStatus = "OPEN"
	QuoteExecuted QuoteStatus = "EXECUTED"
	QuoteExpired  QuoteStatus = "EXPIRED"
)

// Quote is a time-boxed price lock. Price and amounts are frozen at creation;
// only Status may change afterwards, and only OPEN -> EXECUTED or OPEN -> EXPIRED.
type Quote struct {
	ID          string
	AccountID   string
	BaseCcy     string
	QuoteCcy    string
	Side        Side
	BaseAmount  int64 // scaled 10^8
	QuoteAmount int64 // scaled 10^8
	Price       int64 // scaled 10^8, base -> quote
	Status      QuoteStatus
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

func (q *Quote) ExpiredAt(now time.Time) bool {
	return now.After(q.ExpiresAt)
}
