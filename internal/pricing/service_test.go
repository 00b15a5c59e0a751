package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextQuoteCachedWithinTTL(t *testing.T) {
	sim := NewSimulator(time.Hour)
	prev := decimal.NewFromInt(100)

	first, err := sim.NextQuote(context.Background(), "TCS", prev)
	require.NoError(t, err)
	second, err := sim.NextQuote(context.Background(), "TCS", prev)
	require.NoError(t, err)
	assert.True(t, first.Price.Equal(second.Price))
	assert.Equal(t, first.Timestamp, second.Timestamp)
}

func TestNextQuoteDeterministicPerHour(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	a := NewSimulator(0)
	a.nowFunc = func() time.Time { return now }
	b := NewSimulator(0)
	b.nowFunc = func() time.Time { return now }

	prev := decimal.NewFromInt(100)
	qa, err := a.NextQuote(context.Background(), "TCS", prev)
	require.NoError(t, err)
	qb, err := b.NextQuote(context.Background(), "TCS", prev)
	require.NoError(t, err)
	assert.True(t, qa.Price.Equal(qb.Price))
	assert.True(t, qa.DayChangePct.Equal(qb.DayChangePct))
}

func TestNextQuoteBoundedWalk(t *testing.T) {
	sim := NewSimulator(0)
	prev := decimal.NewFromInt(1000)

	quote, err := sim.NextQuote(context.Background(), "INFY", prev)
	require.NoError(t, err)
	assert.True(t, quote.Price.GreaterThanOrEqual(decimal.NewFromInt(970)), "price %s", quote.Price)
	assert.True(t, quote.Price.LessThanOrEqual(decimal.NewFromInt(1030)), "price %s", quote.Price)
}

func TestNextQuoteUnpricedInstrumentGetsBasePrice(t *testing.T) {
	sim := NewSimulator(0)
	quote, err := sim.NextQuote(context.Background(), "NEWCO", decimal.Zero)
	require.NoError(t, err)
	assert.True(t, quote.Price.GreaterThanOrEqual(decimal.NewFromInt(80)))
	assert.True(t, quote.Price.LessThanOrEqual(decimal.NewFromInt(2000)))
	assert.True(t, quote.DayChangePct.IsZero())
}
