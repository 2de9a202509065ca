// Package quote provides validated quote lookups with an optional fallback
// source and a de-duplicating batch helper.
package quote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bobmcallan/stockverse/internal/common"
	"github.com/bobmcallan/stockverse/internal/interfaces"
	"github.com/bobmcallan/stockverse/internal/models"
)

const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultConcurrency  = 8
)

// ErrInvalidPrice is returned for a quote whose current price is not a
// positive finite number.
var ErrInvalidPrice = errors.New("quote has no usable price")

// Service wraps a primary QuoteSource. Every lookup is bounded by the fetch
// timeout and every failure comes back as a *common.FetchError.
type Service struct {
	primary     interfaces.QuoteSource
	fallback    interfaces.QuoteSource
	timeout     time.Duration
	concurrency int
	logger      *common.Logger
}

// Option configures the service
type Option func(*Service)

// WithFallback sets a source consulted when the primary fails
func WithFallback(src interfaces.QuoteSource) Option {
	return func(s *Service) {
		s.fallback = src
	}
}

// WithFetchTimeout sets the per-symbol timeout
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithConcurrency caps in-flight lookups during a batch
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService creates a quote service over the primary source
func NewService(primary interfaces.QuoteSource, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		primary:     primary,
		timeout:     DefaultFetchTimeout,
		concurrency: DefaultConcurrency,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeSymbol trims and upper-cases a ticker
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// GetQuote fetches one symbol from the primary source, trying the fallback
// if the primary fails.
func (s *Service) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, &common.FetchError{Symbol: symbol, Err: errors.New("empty symbol")}
	}

	quote, err := s.fetch(ctx, s.primary, symbol)
	if err == nil {
		return quote, nil
	}

	if s.fallback == nil || ctx.Err() != nil {
		return nil, &common.FetchError{Symbol: symbol, Err: err}
	}

	s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Primary quote source failed, trying fallback")

	fbQuote, fbErr := s.fetch(ctx, s.fallback, symbol)
	if fbErr != nil {
		return nil, &common.FetchError{Symbol: symbol, Err: errors.Join(err, fbErr)}
	}
	return fbQuote, nil
}

func (s *Service) fetch(ctx context.Context, src interfaces.QuoteSource, symbol string) (*models.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	quote, err := src.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, ErrInvalidPrice
	}
	if p := quote.CurrentPrice; p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrice, p)
	}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	return quote, nil
}

var _ interfaces.QuoteSource = (*Service)(nil)
