package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/stockverse/internal/app"
	"github.com/bobmcallan/stockverse/internal/services/portfolio"
)

type addHoldingCmd struct {
	symbol   string
	quantity float64
	cost     float64
}

func (*addHoldingCmd) Name() string     { return "add-holding" }
func (*addHoldingCmd) Synopsis() string { return "record a new holding" }
func (*addHoldingCmd) Usage() string {
	return `add-holding -symbol <ticker> -quantity <n> -cost <price>

  Records a position of <n> units bought at <price> per unit. The current
  price is fetched immediately; if that fails the cost is used until the
  next refresh. Adding a symbol twice creates two holdings.
`
}

func (c *addHoldingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "Ticker symbol (required)")
	f.Float64Var(&c.quantity, "quantity", 0, "Number of units (required, > 0)")
	f.Float64Var(&c.cost, "cost", 0, "Cost basis per unit (required, > 0)")
}

func (c *addHoldingCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		h, err := a.Portfolio.AddHolding(ctx, c.symbol, c.quantity, c.cost)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\t%s\t%g @ %.2f (current %.2f)\n", h.ID, h.Symbol, h.Quantity, h.CostBasisPerUnit, h.CurrentPrice)
		return nil
	})
}

type removeHoldingCmd struct{}

func (*removeHoldingCmd) Name() string             { return "remove-holding" }
func (*removeHoldingCmd) Synopsis() string         { return "remove a holding by id" }
func (*removeHoldingCmd) Usage() string            { return "remove-holding <id>...\n" }
func (*removeHoldingCmd) SetFlags(_ *flag.FlagSet) {}

func (c *removeHoldingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one holding id is required")
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		for _, id := range f.Args() {
			if err := a.Portfolio.RemoveHolding(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

type holdingsCmd struct{}

func (*holdingsCmd) Name() string             { return "holdings" }
func (*holdingsCmd) Synopsis() string         { return "list holdings with valuation" }
func (*holdingsCmd) Usage() string            { return "holdings\n" }
func (*holdingsCmd) SetFlags(_ *flag.FlagSet) {}

func (c *holdingsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		tw := newTable(stdout)
		fmt.Fprintln(tw, "ID\tSYMBOL\tQTY\tCOST\tPRICE\tVALUE\tP/L\tP/L %\tALLOC %")
		for _, v := range a.Portfolio.Holdings() {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f%%\t%.1f%%\n",
				v.ID, v.Symbol, v.Quantity, v.CostBasisPerUnit, v.CurrentPrice,
				v.MarketValue, v.UnrealizedPL, v.UnrealizedPLPercent, v.Allocation)
		}
		return tw.Flush()
	})
}

type refreshCmd struct{}

func (*refreshCmd) Name() string             { return "refresh" }
func (*refreshCmd) Synopsis() string         { return "refresh holding prices from the quote source" }
func (*refreshCmd) Usage() string            { return "refresh\n" }
func (*refreshCmd) SetFlags(_ *flag.FlagSet) {}

func (c *refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		report := a.Portfolio.RefreshPrices(ctx)
		fmt.Fprintf(stdout, "%d of %d symbols updated\n", report.Updated, report.Symbols)
		for _, sym := range report.FailedSymbols {
			fmt.Fprintf(stdout, "  failed: %s\n", sym)
		}
		return nil
	})
}

type summaryCmd struct{}

func (*summaryCmd) Name() string             { return "summary" }
func (*summaryCmd) Synopsis() string         { return "show aggregate portfolio value and P/L" }
func (*summaryCmd) Usage() string            { return "summary\n" }
func (*summaryCmd) SetFlags(_ *flag.FlagSet) {}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		row := portfolio.SummaryRow(a.Portfolio.Summary())
		tw := newTable(stdout)
		fmt.Fprintln(tw, "HOLDINGS\tVALUE\tINVESTED\tP/L\tP/L %")
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3], row[4])
		return tw.Flush()
	})
}

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export holdings as CSV" }
func (*exportCmd) Usage() string {
	return `export [-o portfolio.csv]

  Writes one CSV row per holding. Without -o the CSV goes to stdout.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file (default stdout)")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		if c.output == "" {
			return a.Portfolio.WriteSnapshot(stdout)
		}
		f, err := os.Create(c.output)
		if err != nil {
			return fmt.Errorf("create %s: %w", c.output, err)
		}
		if err := a.Portfolio.WriteSnapshot(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}
