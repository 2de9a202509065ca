package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockverse/internal/common"
	"github.com/bobmcallan/stockverse/internal/interfaces"
	"github.com/bobmcallan/stockverse/internal/models"
	"github.com/bobmcallan/stockverse/internal/services/quote"
	"github.com/bobmcallan/stockverse/internal/storage"
)

// --- Fakes ---

type priceSource struct {
	mu      sync.Mutex
	prices  map[string]float64
	calls   map[string]int
	gate    chan struct{}
	entered chan struct{}
}

func newPriceSource(prices map[string]float64) *priceSource {
	if prices == nil {
		prices = make(map[string]float64)
	}
	return &priceSource{prices: prices, calls: make(map[string]int)}
}

func (p *priceSource) set(symbol string, price float64) {
	p.mu.Lock()
	p.prices[symbol] = price
	p.mu.Unlock()
}

func (p *priceSource) unset(symbol string) {
	p.mu.Lock()
	delete(p.prices, symbol)
	p.mu.Unlock()
}

func (p *priceSource) resetCalls() {
	p.mu.Lock()
	p.calls = make(map[string]int)
	p.mu.Unlock()
}

func (p *priceSource) callsFor(symbol string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[symbol]
}

func (p *priceSource) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	p.mu.Lock()
	p.calls[symbol]++
	gate, entered := p.gate, p.entered
	p.mu.Unlock()

	if gate != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	price, ok := p.prices[symbol]
	p.mu.Unlock()
	if !ok {
		return nil, errors.New("quote unavailable")
	}
	return &models.Quote{Symbol: symbol, CurrentPrice: price}, nil
}

type failingStore struct {
	*storage.MemoryStore
	mu   sync.Mutex
	fail bool
}

func (s *failingStore) Write(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("quota exceeded")
	}
	return s.MemoryStore.Write(ctx, key, value)
}

func newTestLedger(t *testing.T, src *priceSource, store interfaces.PersistenceStore) *Ledger {
	t.Helper()
	logger := common.NewSilentLogger()
	qs := quote.NewService(src, logger, quote.WithFetchTimeout(time.Second))
	return NewLedger(qs, store, logger)
}

// --- AddHolding / RemoveHolding ---

func TestAddHolding_UsesQuotePrice(t *testing.T) {
	src := newPriceSource(map[string]float64{"AAPL": 180})
	store := storage.NewMemoryStore()
	l := newTestLedger(t, src, store)

	h, err := l.AddHolding(context.Background(), "aapl", 10, 150)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", h.Symbol)
	assert.Equal(t, 180.0, h.CurrentPrice)
	assert.False(t, h.PriceUpdatedAt.IsZero())

	raw, found, _ := store.Read(context.Background(), interfaces.KeyHoldings)
	require.True(t, found)
	var saved []models.Holding
	require.NoError(t, json.Unmarshal([]byte(raw), &saved))
	require.Len(t, saved, 1)
	assert.Equal(t, h.ID, saved[0].ID)
}

func TestAddHolding_QuoteFailureFallsBackToCostBasis(t *testing.T) {
	l := newTestLedger(t, newPriceSource(nil), storage.NewMemoryStore())

	h, err := l.AddHolding(context.Background(), "XYZ", 3, 42.5)
	require.NoError(t, err)
	assert.Equal(t, 42.5, h.CurrentPrice)
	assert.True(t, h.PriceUpdatedAt.IsZero())
}

func TestAddHolding_Validation(t *testing.T) {
	l := newTestLedger(t, newPriceSource(nil), storage.NewMemoryStore())

	tests := []struct {
		name   string
		symbol string
		qty    float64
		cost   float64
		field  string
	}{
		{"empty symbol", "", 1, 1, "symbol"},
		{"zero quantity", "AAPL", 0, 1, "quantity"},
		{"negative quantity", "AAPL", -5, 1, "quantity"},
		{"NaN quantity", "AAPL", math.NaN(), 1, "quantity"},
		{"zero cost", "AAPL", 1, 0, "cost_basis_per_unit"},
		{"Inf cost", "AAPL", 1, math.Inf(1), "cost_basis_per_unit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := l.AddHolding(context.Background(), tt.symbol, tt.qty, tt.cost)
			assert.Nil(t, h)
			var ve *common.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
	assert.Empty(t, l.Holdings())
}

func TestAddHolding_SameSymbolTwiceIsTwoHoldings(t *testing.T) {
	l := newTestLedger(t, newPriceSource(map[string]float64{"AAPL": 100}), storage.NewMemoryStore())
	ctx := context.Background()

	_, _ = l.AddHolding(ctx, "AAPL", 10, 90)
	_, _ = l.AddHolding(ctx, "AAPL", 20, 95)

	assert.Len(t, l.Holdings(), 2)
}

func TestRemoveHolding_Idempotent(t *testing.T) {
	l := newTestLedger(t, newPriceSource(nil), storage.NewMemoryStore())
	ctx := context.Background()

	h, _ := l.AddHolding(ctx, "AAPL", 1, 100)
	require.NoError(t, l.RemoveHolding(ctx, h.ID))
	require.NoError(t, l.RemoveHolding(ctx, h.ID))
	assert.Empty(t, l.Holdings())
}

// --- RefreshPrices ---

func TestRefreshPrices_SharedSymbolFetchedOnce(t *testing.T) {
	src := newPriceSource(map[string]float64{"AAPL": 100})
	l := newTestLedger(t, src, storage.NewMemoryStore())
	ctx := context.Background()

	_, _ = l.AddHolding(ctx, "AAPL", 10, 90)
	_, _ = l.AddHolding(ctx, "AAPL", 20, 95)

	src.resetCalls()
	src.set("AAPL", 123.45)

	report := l.RefreshPrices(ctx)
	assert.Equal(t, 1, src.callsFor("AAPL"))
	assert.Equal(t, 1, report.Symbols)
	assert.Equal(t, 2, report.HoldingsUpdated)

	for _, v := range l.Holdings() {
		assert.Equal(t, 123.45, v.CurrentPrice)
	}
}

func TestRefreshPrices_PartialFailure(t *testing.T) {
	src := newPriceSource(map[string]float64{"AAPL": 100, "MSFT": 200, "GOOG": 300})
	l := newTestLedger(t, src, storage.NewMemoryStore())
	ctx := context.Background()

	_, _ = l.AddHolding(ctx, "AAPL", 1, 100)
	_, _ = l.AddHolding(ctx, "MSFT", 1, 200)
	_, _ = l.AddHolding(ctx, "GOOG", 1, 300)

	src.set("AAPL", 110)
	src.unset("MSFT")
	src.set("GOOG", 330)

	report := l.RefreshPrices(ctx)
	assert.False(t, report.Skipped)
	assert.Equal(t, 3, report.Symbols)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, []string{"MSFT"}, report.FailedSymbols)

	prices := map[string]float64{}
	for _, v := range l.Holdings() {
		prices[v.Symbol] = v.CurrentPrice
	}
	assert.Equal(t, 110.0, prices["AAPL"])
	assert.Equal(t, 200.0, prices["MSFT"], "failed symbol keeps its last price")
	assert.Equal(t, 330.0, prices["GOOG"])

	s := l.Summary()
	assert.InDelta(t, 640.0, s.TotalValue, 1e-9)
}

func TestRefreshPrices_OverlapSkipped(t *testing.T) {
	src := newPriceSource(map[string]float64{"AAPL": 100})
	l := newTestLedger(t, src, storage.NewMemoryStore())
	ctx := context.Background()

	_, _ = l.AddHolding(ctx, "AAPL", 1, 100)

	src.gate = make(chan struct{})
	src.entered = make(chan struct{}, 1)

	done := make(chan models.RefreshReport)
	go func() { done <- l.RefreshPrices(ctx) }()
	<-src.entered

	assert.True(t, l.RefreshPrices(ctx).Skipped)

	close(src.gate)
	assert.False(t, (<-done).Skipped)
}

func TestRefreshPrices_RemovedMidPassStaysRemoved(t *testing.T) {
	src := newPriceSource(map[string]float64{"AAPL": 100})
	store := storage.NewMemoryStore()
	l := newTestLedger(t, src, store)
	ctx := context.Background()

	h, _ := l.AddHolding(ctx, "AAPL", 1, 100)

	src.gate = make(chan struct{})
	src.entered = make(chan struct{}, 1)

	done := make(chan models.RefreshReport)
	go func() { done <- l.RefreshPrices(ctx) }()
	<-src.entered

	require.NoError(t, l.RemoveHolding(ctx, h.ID))
	close(src.gate)

	report := <-done
	assert.Equal(t, 0, report.HoldingsUpdated)
	assert.Empty(t, l.Holdings())

	raw, _, _ := store.Read(ctx, interfaces.KeyHoldings)
	assert.Equal(t, "[]", raw)
}

func TestRefreshPrices_EmptyLedger(t *testing.T) {
	src := newPriceSource(nil)
	l := newTestLedger(t, src, storage.NewMemoryStore())

	report := l.RefreshPrices(context.Background())
	assert.Equal(t, 0, report.Symbols)
	assert.Empty(t, src.calls)
}

func TestRefreshPrices_PersistenceFailureNonFatal(t *testing.T) {
	src := newPriceSource(map[string]float64{"AAPL": 100})
	store := &failingStore{MemoryStore: storage.NewMemoryStore()}
	l := newTestLedger(t, src, store)
	ctx := context.Background()

	_, _ = l.AddHolding(ctx, "AAPL", 1, 100)

	store.mu.Lock()
	store.fail = true
	store.mu.Unlock()

	src.set("AAPL", 150)
	report := l.RefreshPrices(ctx)
	assert.False(t, report.Persisted)
	assert.Equal(t, 150.0, l.Holdings()[0].CurrentPrice)

	store.mu.Lock()
	store.fail = false
	store.mu.Unlock()

	_, err := l.AddHolding(ctx, "MSFT", 1, 10)
	require.NoError(t, err)

	raw, _, _ := store.Read(ctx, interfaces.KeyHoldings)
	var saved []models.Holding
	require.NoError(t, json.Unmarshal([]byte(raw), &saved))
	require.Len(t, saved, 2)
	assert.Equal(t, 150.0, saved[0].CurrentPrice)
}

// --- Summary ---

func TestSummary_SumsBased(t *testing.T) {
	src := newPriceSource(map[string]float64{"AAPL": 200, "MSFT": 101})
	l := newTestLedger(t, src, storage.NewMemoryStore())
	ctx := context.Background()

	_, _ = l.AddHolding(ctx, "AAPL", 1, 100)
	_, _ = l.AddHolding(ctx, "MSFT", 100, 100)

	s := l.Summary()
	assert.InDelta(t, 10300.0, s.TotalValue, 1e-9)
	assert.InDelta(t, 10100.0, s.TotalInvestment, 1e-9)
	assert.InDelta(t, 1.98, s.TotalProfitLossPercent, 0.01)
}

// --- Load ---

func TestLoad_RestoresHoldingsInOrder(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	src := newPriceSource(map[string]float64{"AAPL": 100, "MSFT": 200})

	first := newTestLedger(t, src, store)
	a, _ := first.AddHolding(ctx, "MSFT", 1, 1)
	b, _ := first.AddHolding(ctx, "AAPL", 1, 1)

	second := newTestLedger(t, src, store)
	require.NoError(t, second.Load(ctx))
	views := second.Holdings()
	require.Len(t, views, 2)
	assert.Equal(t, a.ID, views[0].ID)
	assert.Equal(t, b.ID, views[1].ID)
}
