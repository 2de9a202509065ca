package models

import "time"

// Holding is one recorded position. Quantity and CostBasisPerUnit are fixed
// at creation; CurrentPrice is refreshed from quotes.
type Holding struct {
	ID               string    `json:"id"`
	Symbol           string    `json:"symbol"`
	Quantity         float64   `json:"quantity"`
	CostBasisPerUnit float64   `json:"cost_basis_per_unit"`
	CurrentPrice     float64   `json:"current_price"`
	CreatedAt        time.Time `json:"created_at"`
	PriceUpdatedAt   time.Time `json:"price_updated_at,omitempty"`
}

// CostBasis is the total amount invested in the holding
func (h Holding) CostBasis() float64 {
	return h.Quantity * h.CostBasisPerUnit
}

// MarketValue is quantity at the current price
func (h Holding) MarketValue() float64 {
	return h.Quantity * h.CurrentPrice
}

// UnrealizedPL is market value minus cost basis
func (h Holding) UnrealizedPL() float64 {
	return h.MarketValue() - h.CostBasis()
}

// UnrealizedPLPercent is the P/L relative to cost basis; 0 when cost is 0
func (h Holding) UnrealizedPLPercent() float64 {
	cost := h.CostBasis()
	if cost == 0 {
		return 0
	}
	return h.UnrealizedPL() / cost * 100
}

// HoldingView is a holding with its derived fields materialised for output.
type HoldingView struct {
	Holding
	MarketValue         float64 `json:"market_value"`
	CostBasis           float64 `json:"cost_basis"`
	UnrealizedPL        float64 `json:"unrealized_pl"`
	UnrealizedPLPercent float64 `json:"unrealized_pl_percent"`
	Allocation          float64 `json:"allocation"` // percent of total portfolio value
}

// NewHoldingView derives the view fields; totalValue feeds Allocation.
func NewHoldingView(h Holding, totalValue float64) HoldingView {
	v := HoldingView{
		Holding:             h,
		MarketValue:         h.MarketValue(),
		CostBasis:           h.CostBasis(),
		UnrealizedPL:        h.UnrealizedPL(),
		UnrealizedPLPercent: h.UnrealizedPLPercent(),
	}
	if totalValue > 0 {
		v.Allocation = v.MarketValue / totalValue * 100
	}
	return v
}

// PortfolioSummary aggregates all holdings. Percentages come from the sums,
// never from averaging per-holding percentages.
type PortfolioSummary struct {
	Holdings               int     `json:"holdings"`
	TotalValue             float64 `json:"total_value"`
	TotalInvestment        float64 `json:"total_investment"`
	TotalProfitLoss        float64 `json:"total_profit_loss"`
	TotalProfitLossPercent float64 `json:"total_profit_loss_percent"`
}

// Summarize computes the aggregate for a set of holdings
func Summarize(holdings []Holding) PortfolioSummary {
	var s PortfolioSummary
	for _, h := range holdings {
		s.TotalValue += h.MarketValue()
		s.TotalInvestment += h.CostBasis()
	}
	s.Holdings = len(holdings)
	s.TotalProfitLoss = s.TotalValue - s.TotalInvestment
	if s.TotalInvestment > 0 {
		s.TotalProfitLossPercent = s.TotalProfitLoss / s.TotalInvestment * 100
	}
	return s
}

// RefreshReport summarises one price refresh pass
type RefreshReport struct {
	Skipped         bool          `json:"skipped"`
	Symbols         int           `json:"symbols"`
	Updated         int           `json:"updated"`
	FailedSymbols   []string      `json:"failed_symbols,omitempty"`
	HoldingsUpdated int           `json:"holdings_updated"`
	Persisted       bool          `json:"persisted"`
	Elapsed         time.Duration `json:"elapsed"`
}
