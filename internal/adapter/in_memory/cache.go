package in_memory

import (
	"context"
	"sync"
	"time"

	"github.com/currexhq/ledger/internal/port"
)

var _ port.PriceCache = (*PriceCache)(nil)

type entry struct {
	price    int64
	storedAt time.Time
}

// PriceCache is a process-local port.PriceCache for single-node runs where
// Redis is not configured. Entries older than ttl read as misses.
type PriceCache struct {
	mu    sync.Mutex
	store map[string]entry
	ttl   time.Duration
}

func NewPriceCache(ttl time.Duration) *PriceCache {
	return &PriceCache{store: make(map[string]entry), ttl: ttl}
}

func (c *PriceCache) SetPrice(ctx context.Context, symbol string, price int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[symbol] = entry{price: price, storedAt: time.Now()}
	return nil
}

func (c *PriceCache) GetPrice(ctx context.Context, symbol string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.store[symbol]
	if !ok || time.Since(e.storedAt) > c.ttl {
		delete(c.store, symbol)
		return 0, false, nil
	}
	return e.price, true, nil
}
