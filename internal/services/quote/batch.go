package quote

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bobmcallan/stockverse/internal/common"
	"github.com/bobmcallan/stockverse/internal/models"
)

// BatchResult holds the outcome of one batch lookup. Each requested symbol
// appears in exactly one of the two maps.
type BatchResult struct {
	Quotes  map[string]*models.Quote
	Errors  map[string]error
	Elapsed time.Duration
}

// Failed returns the failed symbols in sorted order
func (r BatchResult) Failed() []string {
	out := make([]string, 0, len(r.Errors))
	for sym := range r.Errors {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// UniqueSymbols normalises and de-duplicates symbols, preserving first-seen order.
func UniqueSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		sym = NormalizeSymbol(sym)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

// FetchAll looks up each distinct symbol once, in parallel. A slow or failing
// symbol does not hold up or fail the others; it lands in Errors instead.
func (s *Service) FetchAll(ctx context.Context, symbols []string) BatchResult {
	start := time.Now()
	unique := UniqueSymbols(symbols)

	result := BatchResult{
		Quotes: make(map[string]*models.Quote, len(unique)),
		Errors: make(map[string]error),
	}
	if len(unique) == 0 {
		return result
	}

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, symbol := range unique {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			mu.Lock()
			result.Errors[symbol] = &common.FetchError{Symbol: symbol, Err: ctx.Err()}
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			defer func() { <-sem }()

			quote, err := s.GetQuote(ctx, symbol)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors[symbol] = err
				return
			}
			result.Quotes[symbol] = quote
		}(symbol)
	}

	wg.Wait()
	result.Elapsed = time.Since(start)

	if len(result.Errors) > 0 {
		s.logger.Warn().
			Int("requested", len(unique)).
			Int("failed", len(result.Errors)).
			Strs("symbols", result.Failed()).
			Msg("Quote batch completed with errors")
	}

	return result
}
