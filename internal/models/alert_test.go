package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestAlertRule_Triggered(t *testing.T) {
	tests := []struct {
		name  string
		rule  AlertRule
		price float64
		want  bool
	}{
		{"above crosses", AlertRule{Kind: AlertPriceAbove, Threshold: 100}, 100.01, true},
		{"above equal does not fire", AlertRule{Kind: AlertPriceAbove, Threshold: 100}, 100, false},
		{"below crosses", AlertRule{Kind: AlertPriceBelow, Threshold: 50}, 49.99, true},
		{"below equal does not fire", AlertRule{Kind: AlertPriceBelow, Threshold: 50}, 50, false},
		{"percent up", AlertRule{Kind: AlertPercentChange, Threshold: 5, ReferencePrice: ptr(100)}, 106, true},
		{"percent down", AlertRule{Kind: AlertPercentChange, Threshold: 5, ReferencePrice: ptr(100)}, 94, true},
		{"percent inside band", AlertRule{Kind: AlertPercentChange, Threshold: 5, ReferencePrice: ptr(100)}, 104, false},
		{"percent negative threshold", AlertRule{Kind: AlertPercentChange, Threshold: -5, ReferencePrice: ptr(100)}, 94, true},
		{"percent without reference", AlertRule{Kind: AlertPercentChange, Threshold: 5}, 500, false},
		{"unknown kind", AlertRule{Kind: "sideways", Threshold: 1}, 500, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Triggered(tt.price))
		})
	}
}

func TestParseAlertKind(t *testing.T) {
	k, ok := ParseAlertKind("Above")
	assert.True(t, ok)
	assert.Equal(t, AlertPriceAbove, k)

	k, ok = ParseAlertKind("percent_change")
	assert.True(t, ok)
	assert.Equal(t, AlertPercentChange, k)

	_, ok = ParseAlertKind("sideways")
	assert.False(t, ok)
}

func TestAlertRule_Describe(t *testing.T) {
	r := AlertRule{Symbol: "AAPL", Kind: AlertPriceAbove, Threshold: 150}
	assert.Equal(t, "AAPL above $150", r.Describe())

	r = AlertRule{Symbol: "TSLA", Kind: AlertPercentChange, Threshold: 5}
	assert.Equal(t, "TSLA changes by 5%", r.Describe())
}
