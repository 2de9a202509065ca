package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHolding_DerivedFields(t *testing.T) {
	h := Holding{Symbol: "AAPL", Quantity: 10, CostBasisPerUnit: 100, CurrentPrice: 110}

	assert.InDelta(t, 1100.0, h.MarketValue(), 1e-9)
	assert.InDelta(t, 1000.0, h.CostBasis(), 1e-9)
	assert.InDelta(t, 100.0, h.UnrealizedPL(), 1e-9)
	assert.InDelta(t, 10.0, h.UnrealizedPLPercent(), 1e-9)
}

func TestHolding_ZeroCostBasis(t *testing.T) {
	h := Holding{Symbol: "FREE", Quantity: 5, CostBasisPerUnit: 0, CurrentPrice: 3}
	assert.Equal(t, 0.0, h.UnrealizedPLPercent())
}

func TestSummarize_EqualWeights(t *testing.T) {
	s := Summarize([]Holding{
		{Symbol: "AAPL", Quantity: 10, CostBasisPerUnit: 100, CurrentPrice: 110},
		{Symbol: "MSFT", Quantity: 5, CostBasisPerUnit: 200, CurrentPrice: 190},
	})

	assert.Equal(t, 2, s.Holdings)
	assert.InDelta(t, 2050.0, s.TotalValue, 1e-9)
	assert.InDelta(t, 2000.0, s.TotalInvestment, 1e-9)
	assert.InDelta(t, 50.0, s.TotalProfitLoss, 1e-9)
	assert.InDelta(t, 2.5, s.TotalProfitLossPercent, 1e-9)
}

func TestSummarize_UsesSumsNotAverage(t *testing.T) {
	s := Summarize([]Holding{
		{Symbol: "AAPL", Quantity: 1, CostBasisPerUnit: 100, CurrentPrice: 200},   // +100%
		{Symbol: "MSFT", Quantity: 100, CostBasisPerUnit: 100, CurrentPrice: 101}, // +1%
	})

	// value 10300, invested 10100: (10300 - 10100) / 10100 * 100 = 1.98
	want := (10300.0 - 10100.0) / 10100.0 * 100
	assert.InDelta(t, want, s.TotalProfitLossPercent, 1e-9)
	assert.Less(t, s.TotalProfitLossPercent, 2.0)
	assert.NotInDelta(t, 50.5, s.TotalProfitLossPercent, 1.0)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, PortfolioSummary{}, s)
}

func TestNewHoldingView_Allocation(t *testing.T) {
	h := Holding{Symbol: "AAPL", Quantity: 10, CostBasisPerUnit: 100, CurrentPrice: 110}
	v := NewHoldingView(h, 2200)
	assert.InDelta(t, 50.0, v.Allocation, 1e-9)
	assert.InDelta(t, 1100.0, v.MarketValue, 1e-9)

	assert.Equal(t, 0.0, NewHoldingView(h, 0).Allocation)
}
