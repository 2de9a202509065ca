package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/stockverse/internal/models"
)

func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatMoney(v float64) string {
	if v < 0 {
		return "-$" + fixed2(-v)
	}
	return "$" + fixed2(v)
}

func formatSignedMoney(v float64) string {
	if v >= 0 {
		return "+" + formatMoney(v)
	}
	return formatMoney(v)
}

func formatSignedPct(v float64) string {
	if v >= 0 {
		return "+" + fixed2(v) + "%"
	}
	return fixed2(v) + "%"
}

// formatQuote formats a single quote as markdown
func formatQuote(q *models.Quote) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", q.Symbol))
	sb.WriteString("| Field | Value |\n|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Price | %s |\n", formatMoney(q.CurrentPrice)))
	sb.WriteString(fmt.Sprintf("| Change | %s (%s) |\n", formatSignedMoney(q.Change), formatSignedPct(q.ChangePercent)))
	if q.PreviousClose > 0 {
		sb.WriteString(fmt.Sprintf("| Previous Close | %s |\n", formatMoney(q.PreviousClose)))
	}
	if q.High > 0 {
		sb.WriteString(fmt.Sprintf("| Day Range | %s - %s |\n", formatMoney(q.Low), formatMoney(q.High)))
	}
	sb.WriteString(fmt.Sprintf("| Volume | %d |\n", q.Volume))
	if q.Source != "" {
		sb.WriteString(fmt.Sprintf("| Source | %s |\n", q.Source))
	}
	return sb.String()
}

func formatSummary(s models.PortfolioSummary) string {
	var sb strings.Builder
	sb.WriteString("# Portfolio Summary\n\n")
	sb.WriteString(fmt.Sprintf("**Holdings:** %d\n", s.Holdings))
	sb.WriteString(fmt.Sprintf("**Total Value:** %s\n", formatMoney(s.TotalValue)))
	sb.WriteString(fmt.Sprintf("**Total Investment:** %s\n", formatMoney(s.TotalInvestment)))
	sb.WriteString(fmt.Sprintf("**Total P/L:** %s (%s)\n", formatSignedMoney(s.TotalProfitLoss), formatSignedPct(s.TotalProfitLossPercent)))
	return sb.String()
}

// formatHoldings formats holdings as a markdown table followed by the totals
func formatHoldings(views []models.HoldingView, summary models.PortfolioSummary) string {
	if len(views) == 0 {
		return "No holdings. Use add_holding to record one."
	}

	var sb strings.Builder
	sb.WriteString("# Holdings\n\n")
	sb.WriteString("| ID | Symbol | Qty | Cost | Price | Value | P/L | P/L % | Alloc |\n")
	sb.WriteString("|----|--------|-----|------|-------|-------|-----|-------|-------|\n")
	for _, v := range views {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s | %s%% |\n",
			v.ID, v.Symbol, fixed2(v.Quantity), formatMoney(v.CostBasisPerUnit), formatMoney(v.CurrentPrice),
			formatMoney(v.MarketValue), formatSignedMoney(v.UnrealizedPL), formatSignedPct(v.UnrealizedPLPercent),
			fixed2(v.Allocation)))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Total Value:** %s | **Invested:** %s | **P/L:** %s (%s)\n",
		formatMoney(summary.TotalValue), formatMoney(summary.TotalInvestment),
		formatSignedMoney(summary.TotalProfitLoss), formatSignedPct(summary.TotalProfitLossPercent)))
	return sb.String()
}

func formatRefreshReport(r models.RefreshReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Refreshed %d of %d symbols (%d holdings updated) in %s.\n",
		r.Updated, r.Symbols, r.HoldingsUpdated, r.Elapsed.Round(time.Millisecond)))
	if len(r.FailedSymbols) > 0 {
		sb.WriteString(fmt.Sprintf("Failed: %s\n", strings.Join(r.FailedSymbols, ", ")))
	}
	return sb.String()
}

// formatAlerts formats rules and pending notifications as markdown
func formatAlerts(rules []models.AlertRule, notes []models.FiredNotification, counts models.AlertCounts) string {
	var sb strings.Builder
	sb.WriteString("# Alerts\n\n")
	sb.WriteString(fmt.Sprintf("**Active:** %d | **Fired:** %d | **Unread:** %d\n\n", counts.Active, counts.Fired, counts.Notifications))

	if len(rules) == 0 {
		sb.WriteString("No alert rules. Use create_alert to add one.\n")
	} else {
		sb.WriteString("| ID | Status | Rule | Last Price |\n")
		sb.WriteString("|----|--------|------|------------|\n")
		for i := range rules {
			r := &rules[i]
			last := "-"
			if r.LastObservedPrice != nil {
				last = formatMoney(*r.LastObservedPrice)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", r.ID, r.Status, r.Describe(), last))
		}
	}

	if len(notes) > 0 {
		sb.WriteString("\n## Notifications\n\n")
		for _, n := range notes {
			sb.WriteString(fmt.Sprintf("- %s %s\n", n.FiredAt.Format("2006-01-02 15:04:05"), n.Message))
		}
	}
	return sb.String()
}

func formatEvaluationReport(r models.EvaluationReport, notes []models.FiredNotification) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Evaluated %d rules across %d symbols: %d fired.\n", r.RulesEvaluated, r.Symbols, len(r.Fired)))
	if len(r.FailedSymbols) > 0 {
		sb.WriteString(fmt.Sprintf("Quote failures: %s\n", strings.Join(r.FailedSymbols, ", ")))
	}

	fired := make(map[string]bool, len(r.Fired))
	for _, id := range r.Fired {
		fired[id] = true
	}
	for _, n := range notes {
		if fired[n.RuleID] {
			sb.WriteString(fmt.Sprintf("- %s\n", n.Message))
		}
	}
	return sb.String()
}
