// Package alerts implements the watchlist alert engine: user-defined price
// rules evaluated against live quotes, with a queue of fired notifications.
package alerts

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

// Engine owns the alert rule set. All reads and writes of rules and
// notifications go through mu; quote fetches run with mu released.
type Engine struct {
	quotes *quote.Service
	store  interfaces.PersistenceStore
	sink   interfaces.NotificationSink
	logger *common.Logger
	now    func() time.Time

	mu            sync.Mutex
	rules         []*models.AlertRule // creation order
	notifications []models.FiredNotification
	dirty         bool // last persist failed

	evaluating atomic.Bool
}

// Option configures the engine
type Option func(*Engine)

// WithSink publishes fired alerts to a realtime sink
func WithSink(sink interfaces.NotificationSink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine with an empty rule set. Call Load to restore
// persisted rules.
func NewEngine(quotes *quote.Service, store interfaces.PersistenceStore, logger *common.Logger, opts ...Option) *Engine {
	e := &Engine{
		quotes: quotes,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load restores the rule set from the store. A missing key leaves the engine
// empty; unreadable content is logged and discarded.
func (e *Engine) Load(ctx context.Context) error {
	raw, found, err := e.store.Read(ctx, interfaces.KeyAlerts)
	if err != nil {
		return fmt.Errorf("read %s: %w", interfaces.KeyAlerts, err)
	}
	if !found || raw == "" {
		return nil
	}

	var rules []*models.AlertRule
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		e.logger.Warn().Err(err).Str("key", interfaces.KeyAlerts).Msg("Discarding unreadable alert rules")
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = e.rules[:0]
	for _, r := range rules {
		if r == nil || r.ID == "" {
			continue
		}
		e.rules = append(e.rules, r)
	}

	e.logger.Info().Int("rules", len(e.rules)).Msg("Alert rules loaded")
	return nil
}

// CreateRule validates and adds a rule. Percent-change rules take their
// reference price from a quote fetched now; if that fetch fails the first
// price seen during evaluation becomes the reference.
func (e *Engine) CreateRule(ctx context.Context, symbol string, kind models.AlertKind, threshold float64) (*models.AlertRule, error) {
	symbol = quote.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, common.NewValidationError("symbol", "must not be empty")
	}
	if !kind.Valid() {
		return nil, common.NewValidationError("kind", fmt.Sprintf("unknown alert kind %q", kind))
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, common.NewValidationError("threshold", "must be a finite number")
	}

	rule := &models.AlertRule{
		ID:        uuid.New().String(),
		Symbol:    symbol,
		Kind:      kind,
		Threshold: threshold,
		Status:    models.AlertActive,
		CreatedAt: e.now().UTC(),
	}

	if kind == models.AlertPercentChange {
		q, err := e.quotes.GetQuote(ctx, symbol)
		if err != nil {
			e.logger.Warn().Err(err).Str("symbol", symbol).Msg("No reference price for percent-change rule, will use first observed price")
		} else {
			ref := q.CurrentPrice
			rule.ReferencePrice = &ref
		}
	}

	e.mu.Lock()
	e.rules = append(e.rules, rule)
	e.persistLocked(ctx)
	out := *rule
	e.mu.Unlock()

	e.logger.Info().
		Str("id", rule.ID).
		Str("symbol", symbol).
		Str("kind", string(kind)).
		Float64("threshold", threshold).
		Msg("Alert rule created")

	return &out, nil
}

// RemoveRule deletes a rule in any state. Unknown IDs are ignored.
func (e *Engine) RemoveRule(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := false
	for i, r := range e.rules {
		if r.ID == id {
			e.rules = append(e.rules[:i], e.rules[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		e.logger.Info().Str("id", id).Msg("Alert rule removed")
	}

	e.persistLocked(ctx)
	return nil
}

// EvaluateAll checks every active rule against fresh quotes. Only one pass
// runs at a time; a call made while another is in flight returns a report
// with Skipped set.
func (e *Engine) EvaluateAll(ctx context.Context) models.EvaluationReport {
	if !e.evaluating.CompareAndSwap(false, true) {
		e.logger.Debug().Msg("Alert evaluation already running, skipping")
		return models.EvaluationReport{Skipped: true}
	}
	defer e.evaluating.Store(false)

	start := time.Now()

	// Snapshot the IDs to evaluate and the symbols they need
	e.mu.Lock()
	ids := make([]string, 0, len(e.rules))
	symbols := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		if r.IsActive() {
			ids = append(ids, r.ID)
			symbols = append(symbols, r.Symbol)
		}
	}
	e.mu.Unlock()

	report := models.EvaluationReport{RulesEvaluated: len(ids)}
	var batch quote.BatchResult
	if len(ids) > 0 {
		batch = e.quotes.FetchAll(ctx, symbols)
		report.Symbols = len(batch.Quotes) + len(batch.Errors)
		report.FailedSymbols = batch.Failed()
	}

	var fired []models.FiredNotification

	e.mu.Lock()
	changed := false
	for _, id := range ids {
		rule := e.findLocked(id)
		if rule == nil || !rule.IsActive() {
			continue // removed or fired since the snapshot
		}
		q, ok := batch.Quotes[rule.Symbol]
		if !ok {
			continue
		}

		price := q.CurrentPrice
		rule.LastObservedPrice = &price
		changed = true

		if rule.Kind == models.AlertPercentChange && rule.ReferencePrice == nil {
			ref := price
			rule.ReferencePrice = &ref
			continue
		}

		if !rule.Triggered(price) {
			continue
		}

		firedAt := e.now().UTC()
		rule.Status = models.AlertFired
		rule.FiredAt = &firedAt

		n := models.FiredNotification{
			ID:        uuid.New().String(),
			RuleID:    rule.ID,
			Symbol:    rule.Symbol,
			Kind:      rule.Kind,
			Threshold: rule.Threshold,
			Price:     price,
			Message:   fmt.Sprintf("%s, current $%.2f", rule.Describe(), price),
			FiredAt:   firedAt,
		}
		e.notifications = append(e.notifications, n)
		fired = append(fired, n)
		report.Fired = append(report.Fired, rule.ID)
	}

	if changed || e.dirty {
		report.Persisted = e.persistLocked(ctx)
	}
	e.mu.Unlock()

	for _, n := range fired {
		e.logger.Info().
			Str("rule_id", n.RuleID).
			Str("symbol", n.Symbol).
			Float64("price", n.Price).
			Msg("Alert fired")
		if e.sink != nil {
			e.sink.Publish(models.Event{Type: models.EventAlertFired, Timestamp: n.FiredAt, Payload: n})
		}
	}

	report.Elapsed = time.Since(start)
	if report.RulesEvaluated > 0 {
		e.logger.Debug().
			Int("rules", report.RulesEvaluated).
			Int("symbols", report.Symbols).
			Int("failed", len(report.FailedSymbols)).
			Int("fired", len(report.Fired)).
			Dur("elapsed", report.Elapsed).
			Msg("Alert evaluation complete")
	}

	return report
}

// DismissNotification drops a fired notification from the queue. The rule
// keeps its fired status.
func (e *Engine) DismissNotification(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, n := range e.notifications {
		if n.ID == id || n.RuleID == id {
			e.notifications = append(e.notifications[:i], e.notifications[i+1:]...)
			return true
		}
	}
	return false
}

// Rules returns a copy of the rule set in creation order
func (e *Engine) Rules() []models.AlertRule {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.AlertRule, len(e.rules))
	for i, r := range e.rules {
		out[i] = *r
	}
	return out
}

// Notifications returns a copy of the undismissed notifications, oldest first
func (e *Engine) Notifications() []models.FiredNotification {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.FiredNotification, len(e.notifications))
	copy(out, e.notifications)
	return out
}

// Counts returns the badge counts in one consistent read
func (e *Engine) Counts() models.AlertCounts {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := models.AlertCounts{Notifications: len(e.notifications)}
	for _, r := range e.rules {
		if r.IsActive() {
			c.Active++
		} else {
			c.Fired++
		}
	}
	c.Badge = c.Active + c.Notifications
	return c
}

func (e *Engine) ActiveCount() int { return e.Counts().Active }

func (e *Engine) FiredCount() int { return e.Counts().Fired }

func (e *Engine) findLocked(id string) *models.AlertRule {
	for _, r := range e.rules {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// persistLocked writes the whole rule set. A failure is logged and leaves
// the engine dirty so the next mutation or pass retries. Caller holds mu.
func (e *Engine) persistLocked(ctx context.Context) bool {
	rules := e.rules
	if rules == nil {
		rules = []*models.AlertRule{}
	}
	data, err := json.Marshal(rules)
	if err == nil {
		err = e.store.Write(ctx, interfaces.KeyAlerts, string(data))
	}
	if err != nil {
		perr := &common.PersistenceError{Key: interfaces.KeyAlerts, Err: err}
		e.logger.Warn().Err(perr).Msg("Failed to persist alert rules")
		e.dirty = true
		return false
	}
	e.dirty = false
	return true
}

var _ interfaces.AlertService = (*Engine)(nil)
