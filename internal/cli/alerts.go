package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/stockverse/internal/app"
	"github.com/bobmcallan/stockverse/internal/common"
	"github.com/bobmcallan/stockverse/internal/models"
)

type addAlertCmd struct {
	symbol    string
	kind      string
	threshold float64
}

func (*addAlertCmd) Name() string     { return "add-alert" }
func (*addAlertCmd) Synopsis() string { return "create a price alert" }
func (*addAlertCmd) Usage() string {
	return `add-alert -symbol <ticker> -kind above|below|percent -threshold <value>

  above/below fire once the price crosses the threshold. percent fires once
  the price moves more than <value> percent, either way, from the price at
  creation.
`
}

func (c *addAlertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "Ticker symbol (required)")
	f.StringVar(&c.kind, "kind", "above", "Alert kind: above, below or percent")
	f.Float64Var(&c.threshold, "threshold", 0, "Price or percent threshold")
}

func (c *addAlertCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind, ok := models.ParseAlertKind(c.kind)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: %v\n", common.NewValidationError("kind", fmt.Sprintf("unknown alert kind %q", c.kind)))
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		rule, err := a.Alerts.CreateRule(ctx, c.symbol, kind, c.threshold)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\t%s\n", rule.ID, rule.Describe())
		return nil
	})
}

type removeAlertCmd struct{}

func (*removeAlertCmd) Name() string             { return "remove-alert" }
func (*removeAlertCmd) Synopsis() string         { return "remove an alert by id" }
func (*removeAlertCmd) Usage() string            { return "remove-alert <id>...\n" }
func (*removeAlertCmd) SetFlags(_ *flag.FlagSet) {}

func (c *removeAlertCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one alert id is required")
		return subcommands.ExitUsageError
	}
	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		for _, id := range f.Args() {
			if err := a.Alerts.RemoveRule(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

type alertsCmd struct{}

func (*alertsCmd) Name() string             { return "alerts" }
func (*alertsCmd) Synopsis() string         { return "list alert rules" }
func (*alertsCmd) Usage() string            { return "alerts\n" }
func (*alertsCmd) SetFlags(_ *flag.FlagSet) {}

func (c *alertsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		printRules(a.Alerts.Rules())
		return nil
	})
}

func printRules(rules []models.AlertRule) {
	tw := newTable(stdout)
	fmt.Fprintln(tw, "ID\tSTATUS\tRULE\tLAST PRICE")
	for _, r := range rules {
		last := "-"
		if r.LastObservedPrice != nil {
			last = fmt.Sprintf("%.2f", *r.LastObservedPrice)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Status, r.Describe(), last)
	}
	tw.Flush()
}

type evaluateCmd struct{}

func (*evaluateCmd) Name() string             { return "evaluate" }
func (*evaluateCmd) Synopsis() string         { return "evaluate active alerts once" }
func (*evaluateCmd) Usage() string            { return "evaluate\n" }
func (*evaluateCmd) SetFlags(_ *flag.FlagSet) {}

func (c *evaluateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		report := a.Alerts.EvaluateAll(ctx)
		for _, n := range a.Alerts.Notifications() {
			fmt.Fprintf(stdout, "FIRED\t%s\n", n.Message)
		}
		fmt.Fprintf(stdout, "%d rules evaluated, %d fired, %d symbols failed\n",
			report.RulesEvaluated, len(report.Fired), len(report.FailedSymbols))
		return nil
	})
}
