package portfolio

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockverse/internal/models"
	"github.com/bobmcallan/stockverse/internal/storage"
)

func TestExportSnapshot_EmptyLedgerIsHeaderOnly(t *testing.T) {
	l := newTestLedger(t, newPriceSource(nil), storage.NewMemoryStore())

	out, err := l.ExportSnapshot()
	require.NoError(t, err)
	assert.Equal(t, "Symbol,Quantity,Buy Price,Current Price,Total Value,P/L,P/L %\n", out)
}

func TestExportSnapshot_RowsInInsertionOrder(t *testing.T) {
	src := newPriceSource(map[string]float64{"MSFT": 190, "AAPL": 110})
	l := newTestLedger(t, src, storage.NewMemoryStore())
	ctx := context.Background()

	_, err := l.AddHolding(ctx, "MSFT", 5, 200)
	require.NoError(t, err)
	_, err = l.AddHolding(ctx, "AAPL", 10, 100)
	require.NoError(t, err)

	out, err := l.ExportSnapshot()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "MSFT,5.00,200.00,190.00,950.00,-50.00,-5.00%", lines[1])
	assert.Equal(t, "AAPL,10.00,100.00,110.00,1100.00,100.00,10.00%", lines[2])
}

func TestExportSnapshot_RoundsToTwoDecimals(t *testing.T) {
	src := newPriceSource(map[string]float64{"BRK": 1.0 / 3.0})
	l := newTestLedger(t, src, storage.NewMemoryStore())

	_, err := l.AddHolding(context.Background(), "BRK", 1.5, 0.25)
	require.NoError(t, err)

	out, err := l.ExportSnapshot()
	require.NoError(t, err)

	fields := strings.Split(strings.Split(strings.TrimRight(out, "\n"), "\n")[1], ",")
	require.Len(t, fields, 7)
	for _, f := range fields[1:] {
		f = strings.TrimSuffix(f, "%")
		dot := strings.IndexByte(f, '.')
		require.NotEqual(t, -1, dot, f)
		assert.Len(t, f[dot+1:], 2, f)
	}
	assert.Equal(t, "0.33", fields[3])
}

func TestSummaryRow(t *testing.T) {
	row := SummaryRow(models.PortfolioSummary{
		Holdings:               2,
		TotalValue:             2050,
		TotalInvestment:        2000,
		TotalProfitLoss:        50,
		TotalProfitLossPercent: 2.5,
	})
	assert.Equal(t, []string{"2", "2050.00", "2000.00", "50.00", "2.50%"}, row)
}
