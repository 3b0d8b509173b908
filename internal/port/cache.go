package port

import "context"

// PriceCache keeps recently resolved market prices. A miss is reported via
// the ok return, never as an error; cache failures must not break pricing.
type PriceCache interface {
	SetPrice(ctx context.Context, symbol string, price int64) error
	GetPrice(ctx context.Context, symbol string) (price int64, ok bool, err error)
}
