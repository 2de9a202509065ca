package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// AlertKind is the trigger condition of an alert rule
type AlertKind string

const (
	AlertPriceAbove    AlertKind = "price_above"
	AlertPriceBelow    AlertKind = "price_below"
	AlertPercentChange AlertKind = "percent_change"
)

// ParseAlertKind accepts the canonical names plus the short CLI spellings.
func ParseAlertKind(s string) (AlertKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "price_above", "above":
		return AlertPriceAbove, true
	case "price_below", "below":
		return AlertPriceBelow, true
	case "percent_change", "percent", "change":
		return AlertPercentChange, true
	}
	return "", false
}

// Valid reports whether k is a known kind
func (k AlertKind) Valid() bool {
	switch k {
	case AlertPriceAbove, AlertPriceBelow, AlertPercentChange:
		return true
	}
	return false
}

// AlertStatus is the lifecycle state of an alert rule. A rule moves from
// active to fired exactly once.
type AlertStatus string

const (
	AlertActive AlertStatus = "active"
	AlertFired  AlertStatus = "fired"
)

// AlertRule is a user-defined watch condition on one symbol.
type AlertRule struct {
	ID                string      `json:"id"`
	Symbol            string      `json:"symbol"`
	Kind              AlertKind   `json:"kind"`
	Threshold         float64     `json:"threshold"`
	Status            AlertStatus `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
	LastObservedPrice *float64    `json:"last_observed_price,omitempty"`
	ReferencePrice    *float64    `json:"reference_price,omitempty"` // percent_change baseline
	FiredAt           *time.Time  `json:"fired_at,omitempty"`
}

// IsActive reports whether the rule is still evaluated
func (r *AlertRule) IsActive() bool {
	return r.Status == AlertActive
}

// Triggered applies the rule's kind to an observed price. For percent_change
// the move is measured against ReferencePrice; without a usable reference the
// rule cannot trigger.
func (r *AlertRule) Triggered(price float64) bool {
	switch r.Kind {
	case AlertPriceAbove:
		return price > r.Threshold
	case AlertPriceBelow:
		return price < r.Threshold
	case AlertPercentChange:
		if r.ReferencePrice == nil || *r.ReferencePrice == 0 {
			return false
		}
		change := (price - *r.ReferencePrice) / *r.ReferencePrice * 100
		return math.Abs(change) > math.Abs(r.Threshold)
	}
	return false
}

// Describe renders the rule the way the alert list shows it
func (r *AlertRule) Describe() string {
	switch r.Kind {
	case AlertPriceAbove:
		return fmt.Sprintf("%s above $%g", r.Symbol, r.Threshold)
	case AlertPriceBelow:
		return fmt.Sprintf("%s below $%g", r.Symbol, r.Threshold)
	case AlertPercentChange:
		return fmt.Sprintf("%s changes by %g%%", r.Symbol, math.Abs(r.Threshold))
	}
	return r.Symbol
}

// FiredNotification is the in-memory record of a rule firing. It is never
// persisted; dismissing it leaves the rule untouched.
type FiredNotification struct {
	ID        string    `json:"id"`
	RuleID    string    `json:"rule_id"`
	Symbol    string    `json:"symbol"`
	Kind      AlertKind `json:"kind"`
	Threshold float64   `json:"threshold"`
	Price     float64   `json:"price"`
	Message   string    `json:"message"`
	FiredAt   time.Time `json:"fired_at"`
}

// EvaluationReport summarises one evaluation pass
type EvaluationReport struct {
	Skipped        bool          `json:"skipped"`
	RulesEvaluated int           `json:"rules_evaluated"`
	Symbols        int           `json:"symbols"`
	FailedSymbols  []string      `json:"failed_symbols,omitempty"`
	Fired          []string      `json:"fired,omitempty"` // rule IDs
	Persisted      bool          `json:"persisted"`
	Elapsed        time.Duration `json:"elapsed"`
}

// AlertCounts backs the badge on the alert button
type AlertCounts struct {
	Active        int `json:"active"`
	Fired         int `json:"fired"`
	Notifications int `json:"notifications"`
	Badge         int `json:"badge"`
}
