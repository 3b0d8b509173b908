package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/currexhq/ledger/internal/api/dto"
	"github.com/currexhq/ledger/internal/apperr"
	"github.com/currexhq/ledger/internal/core"
	"github.com/currexhq/ledger/internal/domain"
	"github.com/currexhq/ledger/internal/middleware"
	"github.com/currexhq/ledger/internal/money"
)

// HTTPServer exposes the settlement engine. Account identity arrives in the
// X-Account-ID header, already resolved and trusted by an upstream gateway.
type HTTPServer struct {
	Eng *core.Engine
	log *zap.Logger
	rl  *middleware.RateLimiter
}

func NewHTTPServer(eng *core.Engine, rl *middleware.RateLimiter, log *zap.Logger) *HTTPServer {
	return &HTTPServer{Eng: eng, log: log, rl: rl}
}

func (s *HTTPServer) Run(addr string) error {
	r := gin.Default()

	if s.rl != nil {
		r.Use(s.rl.Middleware())
	}
	r.Use(requireAccount())

	r.POST("/quotes", s.createQuote)
	r.GET("/quotes/:id", s.getQuote)
	r.POST("/trades/market", s.marketTrade)
	r.POST("/trades/rfq", s.rfqTrade)
	r.GET("/trades", s.tradeHistory)
	r.GET("/trades/:id", s.getTrade)
	r.GET("/balances", s.getBalances)
	r.POST("/balances/deposit", s.deposit)

	return r.Run(addr)
}

const accountKey = "account_id"

func requireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.GetHeader("X-Account-ID")
		if accountID == "" {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Code: string(apperr.KindValidation), Error: "X-Account-ID header required",
			})
			c.Abort()
			return
		}
		c.Set(accountKey, accountID)
		c.Next()
	}
}

func account(c *gin.Context) string {
	return c.GetString(accountKey)
}

func (s *HTTPServer) createQuote(c *gin.Context) {
	var req dto.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: string(apperr.KindValidation), Error: err.Error()})
		return
	}
	q, err := s.Eng.CreateQuote(c.Request.Context(), account(c), req.BaseCcy, req.QuoteCcy, domain.Side(req.Side), req.Amount)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, convertQuote(q))
}

func (s *HTTPServer) getQuote(c *gin.Context) {
	q, err := s.Eng.GetQuote(c.Request.Context(), account(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convertQuote(q))
}

func (s *HTTPServer) marketTrade(c *gin.Context) {
	var req dto.MarketTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: string(apperr.KindValidation), Error: err.Error()})
		return
	}
	t, err := s.Eng.ExecuteMarketTrade(c.Request.Context(), account(c), req.BaseCcy, req.QuoteCcy, domain.Side(req.Side), req.Amount)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, convertTrade(t))
}

func (s *HTTPServer) rfqTrade(c *gin.Context) {
	var req dto.RfqTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: string(apperr.KindValidation), Error: err.Error()})
		return
	}
	t, err := s.Eng.ExecuteRfqTrade(c.Request.Context(), account(c), req.QuoteID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, convertTrade(t))
}

func (s *HTTPServer) tradeHistory(c *gin.Context) {
	trades, err := s.Eng.GetTradeHistory(c.Request.Context(), account(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	res := make([]dto.Trade, len(trades))
	for i, t := range trades {
		res[i] = convertTrade(t)
	}
	c.JSON(http.StatusOK, dto.TradeHistoryResponse{Trades: res})
}

func (s *HTTPServer) getTrade(c *gin.Context) {
	t, err := s.Eng.GetTrade(c.Request.Context(), account(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convertTrade(t))
}

func (s *HTTPServer) getBalances(c *gin.Context) {
	balances, err := s.Eng.GetBalances(c.Request.Context(), account(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	res := make([]dto.Balance, len(balances))
	for i, b := range balances {
		res[i] = dto.Balance{
			Currency:  b.Currency,
			Amount:    money.Format(b.Amount),
			UpdatedAt: b.UpdatedAt,
		}
	}
	c.JSON(http.StatusOK, dto.BalancesResponse{Balances: res})
}

func (s *HTTPServer) deposit(c *gin.Context) {
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: string(apperr.KindValidation), Error: err.Error()})
		return
	}
	if err := s.Eng.Deposit(c.Request.Context(), account(c), req.Currency, req.Amount); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail maps engine error kinds to stable HTTP statuses.
func (s *HTTPServer) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindValidation, apperr.KindDivisionByZero:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindInsufficientBalance, apperr.KindQuoteExpired, apperr.KindQuoteAlreadyExecuted:
		status = http.StatusConflict
	case apperr.KindPriceUnavailable:
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, dto.ErrorResponse{Code: string(kind), Error: err.Error()})
}

func convertQuote(q *domain.Quote) dto.Quote {
	return dto.Quote{
		ID:          q.ID,
		BaseCcy:     q.BaseCcy,
		QuoteCcy:    q.QuoteCcy,
		Side:        dto.Side(q.Side),
		BaseAmount:  money.Format(q.BaseAmount),
		QuoteAmount: money.Format(q.QuoteAmount),
		Price:       money.Format(q.Price),
		Status:      string(q.Status),
		CreatedAt:   q.CreatedAt,
		ExpiresAt:   q.ExpiresAt,
	}
}

func convertTrade(t *domain.Trade) dto.Trade {
	return dto.Trade{
		ID:          t.ID,
		QuoteID:     t.QuoteID,
		Type:        string(t.Type),
		BaseCcy:     t.BaseCcy,
		QuoteCcy:    t.QuoteCcy,
		Side:        dto.Side(t.Side),
		BaseAmount:  money.Format(t.BaseAmount),
		QuoteAmount: money.Format(t.QuoteAmount),
		Price:       money.Format(t.Price),
		ExecutedAt:  t.ExecutedAt,
		CreatedAt:   t.CreatedAt,
	}
}
