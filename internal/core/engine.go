package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/currexhq/ledger/internal/apperr"
	"github.com/currexhq/ledger/internal/domain"
	"github.com/currexhq/ledger/internal/money"
	"github.com/currexhq/ledger/internal/port"
)

// Engine implements the settlement core: quote lifecycle, trade execution,
// trade history and balance reads. It holds no mutable state of its own;
// concurrency correctness is delegated entirely to the repository's
// conditional updates and transactions.
type Engine struct {
	repo   port.Repository
	prices port.PriceSource
	pairs  map[string]domain.Pair
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewEngine(repo port.Repository, prices port.PriceSource, pairs []domain.Pair, quoteTTL time.Duration, log *zap.Logger) *Engine {
	m := make(map[string]domain.Pair, len(pairs))
	for _, p := range pairs {
		m[p.String()] = p
	}
	return &Engine{
		repo:   repo,
		prices: prices,
		pairs:  m,
		ttl:    quoteTTL,
		log:    log,
		now:    time.Now,
	}
}

// WithClock replaces the engine's time source. Expiry is observed against
// this clock, which lets tests simulate elapsed TTLs.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// CreateQuote locks an execution price for the pair. The returned quote is
// frozen: later market movement never changes it, only its status may move.
func (e *Engine) CreateQuote(ctx context.Context, accountID, baseCcy, quoteCcy string, side domain.Side, amount decimal.Decimal) (*domain.Quote, error) {
	pair, err := e.validate(baseCcy, quoteCcy, side)
	if err != nil {
		return nil, err
	}
	baseAmount, err := toPositiveScaled(amount)
	if err != nil {
		return nil, err
	}

	price, err := e.prices.ExecutionPrice(ctx, pair, side)
	if err != nil {
		return nil, err
	}
	quoteAmount, err := money.Mul(baseAmount, price)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "quote amount")
	}

	now := e.now()
	q := &domain.Quote{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		BaseCcy:     baseCcy,
		QuoteCcy:    quoteCcy,
		Side:        side,
		BaseAmount:  baseAmount,
		QuoteAmount: quoteAmount,
		Price:       price,
		Status:      domain.QuoteOpen,
		CreatedAt:   now,
		ExpiresAt:   now.Add(e.ttl),
	}
	if err := e.repo.SaveQuote(ctx, q); err != nil {
		return nil, err
	}

	e.log.Info("quote created",
		zap.String("quote_id", q.ID),
		zap.String("account_id", accountID),
		zap.String("pair", pair.String()),
		zap.String("side", string(side)),
		zap.String("price", money.Format(price)))
	return q, nil
}

// GetQuote returns the account's quote. An OPEN quote past its expiry is
// transitioned to EXPIRED as a side effect of the read; expiry is observed,
// never pushed by a timer.
func (e *Engine) GetQuote(ctx context.Context, accountID, quoteID string) (*domain.Quote, error) {
	q, err := e.repo.GetQuote(ctx, accountID, quoteID)
	if err != nil {
		return nil, err
	}
	if q.Status == domain.QuoteOpen && q.ExpiredAt(e.now()) {
		ok, err := e.repo.ExpireQuote(ctx, quoteID)
		if err != nil {
			return nil, err
		}
		if !ok {
			// lost the transition race; reread the terminal status
			return e.repo.GetQuote(ctx, accountID, quoteID)
		}
		q.Status = domain.QuoteExpired
	}
	return q, nil
}

// ExecuteMarketTrade settles a trade at a freshly resolved market price.
func (e *Engine) ExecuteMarketTrade(ctx context.Context, accountID, baseCcy, quoteCcy string, side domain.Side, amount decimal.Decimal) (*domain.Trade, error) {
	pair, err := e.validate(baseCcy, quoteCcy, side)
	if err != nil {
		return nil, err
	}
	baseAmount, err := toPositiveScaled(amount)
	if err != nil {
		return nil, err
	}

	price, err := e.prices.MarketPrice(ctx, pair)
	if err != nil {
		return nil, err
	}
	quoteAmount, err := money.Mul(baseAmount, price)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "quote amount")
	}

	return e.settle(ctx, settlement{
		accountID:   accountID,
		baseCcy:     baseCcy,
		quoteCcy:    quoteCcy,
		side:        side,
		baseAmount:  baseAmount,
		quoteAmount: quoteAmount,
		price:       price,
		tradeType:   domain.TradeMarket,
	})
}

// ExecuteRfqTrade settles a previously created quote at its frozen price.
// Ownership, status and expiry are checked before any balance is touched;
// a rejected quote leaves zero trace in the ledger.
func (e *Engine) ExecuteRfqTrade(ctx context.Context, accountID, quoteID string) (*domain.Trade, error) {
	q, err := e.repo.GetQuote(ctx, accountID, quoteID)
	if err != nil {
		return nil, err
	}
	switch {
	case q.Status == domain.QuoteExecuted:
		return nil, apperr.ErrQuoteAlreadyExecuted
	case q.Status == domain.QuoteExpired:
		return nil, apperr.ErrQuoteExpired
	case q.ExpiredAt(e.now()):
		if _, err := e.repo.ExpireQuote(ctx, quoteID); err != nil {
			return nil, err
		}
		return nil, apperr.ErrQuoteExpired
	}

	return e.settle(ctx, settlement{
		accountID:   accountID,
		baseCcy:     q.BaseCcy,
		quoteCcy:    q.QuoteCcy,
		side:        q.Side,
		baseAmount:  q.BaseAmount,
		quoteAmount: q.QuoteAmount,
		price:       q.Price,
		tradeType:   domain.TradeRFQ,
		quoteID:     q.ID,
	})
}

func (e *Engine) GetTradeHistory(ctx context.Context, accountID string) ([]*domain.Trade, error) {
	return e.repo.ListTrades(ctx, accountID)
}

func (e *Engine) GetTrade(ctx context.Context, accountID, tradeID string) (*domain.Trade, error) {
	return e.repo.GetTrade(ctx, accountID, tradeID)
}

func (e *Engine) GetBalances(ctx context.Context, accountID string) ([]domain.Balance, error) {
	return e.repo.ListBalances(ctx, accountID)
}

// Deposit credits an account directly. It exists for funding flows; the
// ledger itself only ever moves value through settle.
func (e *Engine) Deposit(ctx context.Context, accountID, currency string, amount decimal.Decimal) error {
	scaled, err := toPositiveScaled(amount)
	if err != nil {
		return err
	}
	if err := e.repo.Credit(ctx, accountID, currency, scaled); err != nil {
		return err
	}
	e.log.Info("deposit credited",
		zap.String("account_id", accountID),
		zap.String("currency", currency),
		zap.String("amount", money.Format(scaled)))
	return nil
}

type settlement struct {
	accountID   string
	baseCcy     string
	quoteCcy    string
	side        domain.Side
	baseAmount  int64
	quoteAmount int64
	price       int64
	tradeType   domain.TradeType
	quoteID     string
}

// settle is the one atomic unit that moves money: debit the paid leg,
// credit the received leg, transition the quote when present, insert the
// trade record. Any failure rolls the whole unit back.
func (e *Engine) settle(ctx context.Context, s settlement) (*domain.Trade, error) {
	payCcy, payAmount := s.quoteCcy, s.quoteAmount
	recvCcy, recvAmount := s.baseCcy, s.baseAmount
	if s.side == domain.Sell {
		payCcy, payAmount = s.baseCcy, s.baseAmount
		recvCcy, recvAmount = s.quoteCcy, s.quoteAmount
	}

	var trade *domain.Trade
	err := withTx(ctx, e.repo, func(tx port.Tx) error {
		if err := tx.Debit(ctx, s.accountID, payCcy, payAmount); err != nil {
			return err
		}
		if err := tx.Credit(ctx, s.accountID, recvCcy, recvAmount); err != nil {
			return err
		}
		if s.quoteID != "" {
			ok, err := tx.MarkQuoteExecuted(ctx, s.quoteID)
			if err != nil {
				return err
			}
			if !ok {
				// another execution or an expiry won the transition
				status, err := tx.QuoteStatus(ctx, s.quoteID)
				if err != nil {
					return err
				}
				if status == domain.QuoteExecuted {
					return apperr.ErrQuoteAlreadyExecuted
				}
				return apperr.ErrQuoteExpired
			}
		}
		now := e.now()
		trade = &domain.Trade{
			ID:          uuid.NewString(),
			AccountID:   s.accountID,
			QuoteID:     s.quoteID,
			Type:        s.tradeType,
			BaseCcy:     s.baseCcy,
			QuoteCcy:    s.quoteCcy,
			Side:        s.side,
			BaseAmount:  s.baseAmount,
			QuoteAmount: s.quoteAmount,
			Price:       s.price,
			ExecutedAt:  now,
			CreatedAt:   now,
		}
		return tx.SaveTrade(ctx, trade)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("trade settled",
		zap.String("trade_id", trade.ID),
		zap.String("account_id", s.accountID),
		zap.String("type", string(s.tradeType)),
		zap.String("side", string(s.side)),
		zap.String("base", money.Format(s.baseAmount)),
		zap.String("quote", money.Format(s.quoteAmount)))
	return trade, nil
}

func (e *Engine) validate(baseCcy, quoteCcy string, side domain.Side) (domain.Pair, error) {
	if side != domain.Buy && side != domain.Sell {
		return domain.Pair{}, apperr.New(apperr.KindValidation, "invalid side: %s", side)
	}
	if baseCcy == quoteCcy {
		return domain.Pair{}, apperr.New(apperr.KindValidation, "base and quote currency must differ")
	}
	pair, ok := e.pairs[domain.Pair{Base: baseCcy, Quote: quoteCcy}.String()]
	if !ok {
		return domain.Pair{}, apperr.New(apperr.KindValidation, "pair %s_%s not supported", baseCcy, quoteCcy)
	}
	return pair, nil
}

func toPositiveScaled(amount decimal.Decimal) (int64, error) {
	scaled, err := money.FromDecimal(amount)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindValidation, err, "invalid amount")
	}
	if scaled <= 0 {
		return 0, apperr.New(apperr.KindValidation, "amount must be positive")
	}
	return scaled, nil
}
