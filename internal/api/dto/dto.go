package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

type CreateQuoteRequest struct {
	BaseCcy  string          `json:"base_ccy" binding:"required"`
	QuoteCcy string          `json:"quote_ccy" binding:"required"`
	Side     Side            `json:"side" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

type MarketTradeRequest struct {
	BaseCcy  string          `json:"base_ccy" binding:"required"`
	QuoteCcy string          `json:"quote_ccy" binding:"required"`
	Side     Side            `json:"side" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

type RfqTradeRequest struct {
	QuoteID string `json:"quote_id" binding:"required"`
}

type DepositRequest struct {
	Currency string          `json:"currency" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// Amounts render as fixed 8-digit decimal strings, never floats.
type Quote struct {
	ID          string    `json:"id"`
	BaseCcy     string    `json:"base_ccy"`
	QuoteCcy    string    `json:"quote_ccy"`
	Side        Side      `json:"side"`
	BaseAmount  string    `json:"base_amount"`
	QuoteAmount string    `json:"quote_amount"`
	Price       string    `json:"price"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Trade struct {
	ID          string    `json:"id"`
	QuoteID     string    `json:"quote_id,omitempty"`
	Type        string    `json:"type"`
	BaseCcy     string    `json:"base_ccy"`
	QuoteCcy    string    `json:"quote_ccy"`
	Side        Side      `json:"side"`
	BaseAmount  string    `json:"base_amount"`
	QuoteAmount string    `json:"quote_amount"`
	Price       string    `json:"price"`
	ExecutedAt  time.Time `json:"executed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type Balance struct {
	Currency  string    `json:"currency"`
	Amount    string    `json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TradeHistoryResponse struct {
	Trades []Trade `json:"trades"`
}

type BalancesResponse struct {
	Balances []Balance `json:"balances"`
}

type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
