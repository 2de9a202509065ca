package synthetic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetQuote_Ranges(t *testing.T) {
	c := NewClient(WithSeed(42))

	for i := 0; i < 200; i++ {
		q, err := c.GetQuote(context.Background(), "msft")
		require.NoError(t, err)
		assert.Equal(t, "MSFT", q.Symbol)
		assert.GreaterOrEqual(t, q.CurrentPrice, 100.0)
		assert.Less(t, q.CurrentPrice, 500.0)
		assert.GreaterOrEqual(t, q.Change, -10.0)
		assert.Less(t, q.Change, 10.0)
		assert.GreaterOrEqual(t, q.Volume, int64(1_000_000))
		assert.Less(t, q.Volume, int64(11_000_000))
		assert.InDelta(t, q.CurrentPrice-q.Change, q.PreviousClose, 1e-9)
		assert.Equal(t, "synthetic", q.Source)
	}
}

func TestGetQuote_SeedIsReproducible(t *testing.T) {
	a := NewClient(WithSeed(7))
	b := NewClient(WithSeed(7))

	qa, _ := a.GetQuote(context.Background(), "AAPL")
	qb, _ := b.GetQuote(context.Background(), "AAPL")
	assert.Equal(t, qa.CurrentPrice, qb.CurrentPrice)
	assert.Equal(t, qa.Volume, qb.Volume)
}

func TestGetQuote_Clock(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewClient(WithClock(func() time.Time { return fixed }))

	q, err := c.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, fixed, q.Timestamp)
}

func TestGetQuote_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient().GetQuote(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)
}
