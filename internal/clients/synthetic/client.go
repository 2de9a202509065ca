// Package synthetic provides a randomized QuoteSource for demos and for
// running without an API key.
package synthetic

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/stockverse/internal/interfaces"
	"github.com/bobmcallan/stockverse/internal/models"
)

// Client generates quotes from a seeded random source
type Client struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// Option configures the client
type Option func(*Client)

// WithSeed makes the generated sequence reproducible
func WithSeed(seed int64) Option {
	return func(c *Client) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a synthetic quote source
func NewClient(opts ...Option) *Client {
	c := &Client{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetQuote returns a random quote: price in [100, 500), change in [-10, 10)
// and volume in [1e6, 1.1e7).
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	price := 100 + c.rng.Float64()*400
	change := c.rng.Float64()*20 - 10
	volume := 1_000_000 + c.rng.Int63n(10_000_000)
	c.mu.Unlock()

	prev := price - change
	q := &models.Quote{
		Symbol:        strings.ToUpper(symbol),
		CurrentPrice:  price,
		PreviousClose: prev,
		Volume:        volume,
		Open:          prev,
		High:          maxf(price, prev),
		Low:           minf(price, prev),
		Change:        change,
		Timestamp:     c.now().UTC(),
		Source:        "synthetic",
	}
	if prev != 0 {
		q.ChangePercent = change / prev * 100
	}
	return q, nil
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

var _ interfaces.QuoteSource = (*Client)(nil)
