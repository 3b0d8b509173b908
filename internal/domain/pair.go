package domain

import "fmt"

// Pair is a supported (base, quote) currency pair, e.g. BTC/USDT.
type Pair struct {
	Base  string
	Quote string
}

func (p Pair) String() string {
	return fmt.Sprintf("%s_%s", p.Base, p.Quote)
}

// Symbol is the concatenated form used by upstream market-data venues.
func (p Pair) Symbol() string {
	return p.Base + p.Quote
}
