package pricing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is one simulated market observation for a symbol.
type Quote struct {
	Symbol       string
	Price        decimal.Decimal
	DayChangePct decimal.Decimal
	Timestamp    time.Time
}

// Source exposes quote generation for the market refresh.
type Source interface {
	NextQuote(ctx context.Context, symbol string, prev decimal.Decimal) (Quote, error)
}

// Simulator mocks a market data provider with deterministic pseudo-random
// quotes: the same symbol and hour always produce the same move, and a TTL
// cache keeps repeated refreshes within the window stable.
type Simulator struct {
	mu      sync.Mutex
	cache   map[string]Quote
	ttl     time.Duration
	nowFunc func() time.Time
}

func NewSimulator(ttl time.Duration) *Simulator {
	return &Simulator{
		cache:   make(map[string]Quote),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// NextQuote steps the symbol's price with a bounded random walk from prev.
// A zero prev (unpriced instrument) gets a fresh base price instead.
func (s *Simulator) NextQuote(ctx context.Context, symbol string, prev decimal.Decimal) (Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	if quote, ok := s.cache[symbol]; ok && now.Sub(quote.Timestamp) < s.ttl {
		return quote, nil
	}

	r := rand.New(rand.NewSource(seed(symbol, now)))
	var price, changePct decimal.Decimal
	if prev.Sign() <= 0 {
		// Price range between 80 and 2000 to mimic liquid stocks.
		price = decimal.NewFromFloat(80 + r.Float64()*1920).Round(2)
		changePct = decimal.Zero
	} else {
		// Daily move bounded to ±3%.
		drift := (r.Float64() - 0.5) * 0.06
		price = prev.Mul(decimal.NewFromFloat(1 + drift)).Round(2)
		changePct = decimal.NewFromFloat(drift * 100).Round(4)
	}

	quote := Quote{Symbol: symbol, Price: price, DayChangePct: changePct, Timestamp: now}
	s.cache[symbol] = quote
	return quote, nil
}

func seed(symbol string, t time.Time) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s-%d-%d", symbol, t.YearDay(), t.Hour())))
	return int64(h.Sum64())
}
