package domain

import "time"

type TradeType string

const (
	TradeMarket TradeType = "MARKET"
	TradeRFQ    TradeType = "RFQ"
)

// Trade is the immutable record of a settled exchange. An RFQ trade carries
// the originating quote's frozen price and amounts verbatim.
type Trade struct {
	ID          string
	AccountID   string
	QuoteID     string // empty for market trades
	Type        TradeType
	BaseCcy     string
	QuoteCcy    string
	Side        Side
	BaseAmount  int64 // scaled 10^8
	QuoteAmount int64 // scaled 10^8
	Price       int64 // scaled 10^8
	ExecutedAt  time.Time
	CreatedAt   time.Time
}
