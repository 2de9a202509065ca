// Package portfolio implements the holdings ledger: positions valued against
// periodically refreshed quotes, with aggregate summary and CSV export.
package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/stockverse/internal/common"
	"github.com/bobmcallan/stockverse/internal/interfaces"
	"github.com/bobmcallan/stockverse/internal/models"
	"github.com/bobmcallan/stockverse/internal/services/quote"
)

// Ledger owns the holding set. Holdings are kept in insertion order.
type Ledger struct {
	quotes *quote.Service
	store  interfaces.PersistenceStore
	sink   interfaces.NotificationSink
	logger *common.Logger
	now    func() time.Time

	mu       sync.Mutex
	holdings []*models.Holding
	dirty    bool

	refreshing atomic.Bool
}

// Option configures the ledger
type Option func(*Ledger)

// WithSink publishes refresh reports to a realtime sink
func WithSink(sink interfaces.NotificationSink) Option {
	return func(l *Ledger) {
		l.sink = sink
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// NewLedger creates an empty ledger. Call Load to restore persisted holdings.
func NewLedger(quotes *quote.Service, store interfaces.PersistenceStore, logger *common.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		quotes: quotes,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load restores holdings from the store
func (l *Ledger) Load(ctx context.Context) error {
	raw, found, err := l.store.Read(ctx, interfaces.KeyHoldings)
	if err != nil {
		return fmt.Errorf("read %s: %w", interfaces.KeyHoldings, err)
	}
	if !found || raw == "" {
		return nil
	}

	var holdings []*models.Holding
	if err := json.Unmarshal([]byte(raw), &holdings); err != nil {
		l.logger.Warn().Err(err).Str("key", interfaces.KeyHoldings).Msg("Discarding unreadable holdings")
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.holdings = l.holdings[:0]
	for _, h := range holdings {
		if h == nil || h.ID == "" {
			continue
		}
		l.holdings = append(l.holdings, h)
	}

	l.logger.Info().Int("holdings", len(l.holdings)).Msg("Holdings loaded")
	return nil
}

func validPositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AddHolding records a new position priced from a fresh quote. A failed
// quote never fails the add; the cost basis stands in as the current price.
func (l *Ledger) AddHolding(ctx context.Context, symbol string, quantity, costBasisPerUnit float64) (*models.Holding, error) {
	symbol = quote.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, common.NewValidationError("symbol", "must not be empty")
	}
	if !validPositive(quantity) {
		return nil, common.NewValidationError("quantity", "must be a positive number")
	}
	if !validPositive(costBasisPerUnit) {
		return nil, common.NewValidationError("cost_basis_per_unit", "must be a positive number")
	}

	now := l.now().UTC()
	h := &models.Holding{
		ID:               uuid.New().String(),
		Symbol:           symbol,
		Quantity:         quantity,
		CostBasisPerUnit: costBasisPerUnit,
		CurrentPrice:     costBasisPerUnit,
		CreatedAt:        now,
	}

	if q, err := l.quotes.GetQuote(ctx, symbol); err != nil {
		l.logger.Warn().Err(err).Str("symbol", symbol).Msg("Initial quote failed, using cost basis as current price")
	} else {
		h.CurrentPrice = q.CurrentPrice
		h.PriceUpdatedAt = now
	}

	l.mu.Lock()
	l.holdings = append(l.holdings, h)
	l.persistLocked(ctx)
	out := *h
	l.mu.Unlock()

	l.logger.Info().
		Str("id", h.ID).
		Str("symbol", symbol).
		Float64("quantity", quantity).
		Float64("cost_basis", costBasisPerUnit).
		Msg("Holding added")

	return &out, nil
}

// RemoveHolding deletes a holding. Unknown IDs are ignored.
func (l *Ledger) RemoveHolding(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, h := range l.holdings {
		if h.ID == id {
			l.holdings = append(l.holdings[:i], l.holdings[i+1:]...)
			l.logger.Info().Str("id", id).Str("symbol", h.Symbol).Msg("Holding removed")
			break
		}
	}

	l.persistLocked(ctx)
	return nil
}

// RefreshPrices fetches one quote per distinct symbol and applies it to every
// holding of that symbol. Holdings added after the pass started are left for
// the next pass; holdings removed during it are not resurrected. Failed
// symbols keep their last price. Overlapping calls are skipped.
func (l *Ledger) RefreshPrices(ctx context.Context) models.RefreshReport {
	if !l.refreshing.CompareAndSwap(false, true) {
		l.logger.Debug().Msg("Price refresh already running, skipping")
		return models.RefreshReport{Skipped: true}
	}
	defer l.refreshing.Store(false)

	start := time.Now()

	l.mu.Lock()
	ids := make([]string, len(l.holdings))
	symbols := make([]string, len(l.holdings))
	for i, h := range l.holdings {
		ids[i] = h.ID
		symbols[i] = h.Symbol
	}
	l.mu.Unlock()

	var report models.RefreshReport
	var batch quote.BatchResult
	if len(ids) > 0 {
		batch = l.quotes.FetchAll(ctx, symbols)
		report.Symbols = len(batch.Quotes) + len(batch.Errors)
		report.Updated = len(batch.Quotes)
		report.FailedSymbols = batch.Failed()
	}

	l.mu.Lock()
	now := l.now().UTC()
	changed := false
	for _, id := range ids {
		h := l.findLocked(id)
		if h == nil {
			continue
		}
		q, ok := batch.Quotes[h.Symbol]
		if !ok {
			continue
		}
		h.CurrentPrice = q.CurrentPrice
		h.PriceUpdatedAt = now
		report.HoldingsUpdated++
		changed = true
	}
	if changed || l.dirty {
		report.Persisted = l.persistLocked(ctx)
	}
	l.mu.Unlock()

	report.Elapsed = time.Since(start)

	if report.Symbols > 0 {
		l.logger.Info().
			Int("updated", report.Updated).
			Int("symbols", report.Symbols).
			Strs("failed", report.FailedSymbols).
			Dur("elapsed", report.Elapsed).
			Msgf("%d of %d symbols updated", report.Updated, report.Symbols)
	}

	if l.sink != nil && report.Symbols > 0 {
		l.sink.Publish(models.Event{Type: models.EventPortfolioRefreshed, Timestamp: now, Payload: report})
	}

	return report
}

func (l *Ledger) snapshot() []models.Holding {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Holding, len(l.holdings))
	for i, h := range l.holdings {
		out[i] = *h
	}
	return out
}

// Holdings returns every holding with derived fields, in insertion order
func (l *Ledger) Holdings() []models.HoldingView {
	holdings := l.snapshot()
	summary := models.Summarize(holdings)

	views := make([]models.HoldingView, len(holdings))
	for i, h := range holdings {
		views[i] = models.NewHoldingView(h, summary.TotalValue)
	}
	return views
}

// Summary recomputes the aggregate valuation from the current holdings
func (l *Ledger) Summary() models.PortfolioSummary {
	return models.Summarize(l.snapshot())
}

func (l *Ledger) findLocked(id string) *models.Holding {
	for _, h := range l.holdings {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// persistLocked writes the whole holding set; caller holds mu.
func (l *Ledger) persistLocked(ctx context.Context) bool {
	holdings := l.holdings
	if holdings == nil {
		holdings = []*models.Holding{}
	}
	data, err := json.Marshal(holdings)
	if err == nil {
		err = l.store.Write(ctx, interfaces.KeyHoldings, string(data))
	}
	if err != nil {
		perr := &common.PersistenceError{Key: interfaces.KeyHoldings, Err: err}
		l.logger.Warn().Err(perr).Msg("Failed to persist holdings")
		l.dirty = true
		return false
	}
	l.dirty = false
	return true
}

var _ interfaces.PortfolioService = (*Ledger)(nil)
