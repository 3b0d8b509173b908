// Package binance resolves execution prices from Binance market data. It is
// the only component that talks to the venue; everything it hands the engine
// is already a scaled integer.
package binance

import (
	"context"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"github.com/currexhq/ledger/internal/apperr"
	"github.com/currexhq/ledger/internal/domain"
	"github.com/currexhq/ledger/internal/money"
	"github.com/currexhq/ledger/internal/port"
)

var _ port.PriceSource = (*PriceSource)(nil)

type PriceSource struct {
	client *binance.Client
	// spread markup as scaled multipliers: buyFactor = 1 + markup,
	// sellFactor = 1 - markup
	buyFactor  int64
	sellFactor int64
}

func NewPriceSource(apiKey, secretKey string, markup decimal.Decimal) (*PriceSource, error) {
	m, err := money.FromDecimal(markup)
	if err != nil || m < 0 || m >= money.Scale {
		return nil, apperr.New(apperr.KindValidation, "invalid spread markup %s", markup)
	}
	return &PriceSource{
		client:     binance.NewClient(apiKey, secretKey),
		buyFactor:  money.Scale + m,
		sellFactor: money.Scale - m,
	}, nil
}

// ExecutionPrice quotes the book's ask side plus markup for BUY and the bid
// side minus markup for SELL.
func (p *PriceSource) ExecutionPrice(ctx context.Context, pair domain.Pair, side domain.Side) (int64, error) {
	tickers, err := p.client.NewListBookTickersService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindPriceUnavailable, err, "book ticker for %s", pair)
	}
	if len(tickers) == 0 {
		return 0, apperr.New(apperr.KindPriceUnavailable, "empty book ticker for %s", pair)
	}

	raw, factor := tickers[0].BidPrice, p.sellFactor
	if side == domain.Buy {
		raw, factor = tickers[0].AskPrice, p.buyFactor
	}
	book, err := money.Parse(raw)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindPriceUnavailable, err, "book price for %s", pair)
	}
	price, err := money.Mul(book, factor)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindPriceUnavailable, err, "execution price for %s", pair)
	}
	return price, nil
}

// MarketPrice returns the venue's last price with no markup.
func (p *PriceSource) MarketPrice(ctx context.Context, pair domain.Pair) (int64, error) {
	prices, err := p.client.NewListPricesService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindPriceUnavailable, err, "list prices for %s", pair)
	}
	if len(prices) == 0 {
		return 0, apperr.New(apperr.KindPriceUnavailable, "empty prices for %s", pair)
	}
	price, err := money.Parse(prices[0].Price)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindPriceUnavailable, err, "last price for %s", pair)
	}
	return price, nil
}
