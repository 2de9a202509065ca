package portfolio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/stockverse/internal/models"
)

// ExportHeader is the column layout of the holdings export
var ExportHeader = []string{"Symbol", "Quantity", "Buy Price", "Current Price", "Total Value", "P/L", "P/L %"}

func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// WriteSnapshot writes one CSV row per holding in insertion order. The
// summary is not part of the export.
func (l *Ledger) WriteSnapshot(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	for _, h := range l.snapshot() {
		row := []string{
			h.Symbol,
			fixed2(h.Quantity),
			fixed2(h.CostBasisPerUnit),
			fixed2(h.CurrentPrice),
			fixed2(h.MarketValue()),
			fixed2(h.UnrealizedPL()),
			fixed2(h.UnrealizedPLPercent()) + "%",
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write export row for %s: %w", h.Symbol, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportSnapshot renders WriteSnapshot to a string
func (l *Ledger) ExportSnapshot() (string, error) {
	var buf bytes.Buffer
	if err := l.WriteSnapshot(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SummaryRow renders the aggregate figures with the same formatting as the
// export, for CLI output.
func SummaryRow(s models.PortfolioSummary) []string {
	return []string{
		fmt.Sprintf("%d", s.Holdings),
		fixed2(s.TotalValue),
		fixed2(s.TotalInvestment),
		fixed2(s.TotalProfitLoss),
		fixed2(s.TotalProfitLossPercent) + "%",
	}
}
