// Package cli implements the stockverse command line. Each command opens the
// configured store, performs one operation and exits.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/bobmcallan/stockverse/internal/app"
	"github.com/bobmcallan/stockverse/internal/common"
)

// Register the subcommands.
// A main package will call Register() and then Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&serveCmd{}, "server")

	c.Register(&addHoldingCmd{}, "portfolio")
	c.Register(&removeHoldingCmd{}, "portfolio")
	c.Register(&holdingsCmd{}, "portfolio")
	c.Register(&refreshCmd{}, "portfolio")
	c.Register(&summaryCmd{}, "portfolio")
	c.Register(&exportCmd{}, "portfolio")

	c.Register(&addAlertCmd{}, "alerts")
	c.Register(&removeAlertCmd{}, "alerts")
	c.Register(&alertsCmd{}, "alerts")
	c.Register(&evaluateCmd{}, "alerts")
}

// As a CLI application the lifecycle is short, so package-level flags are fine.
var (
	configPath = flag.String("config", "", "Path to stockverse.toml (default: $STOCKVERSE_CONFIG, then config/stockverse.toml)")
	logLevel   = flag.String("log-level", "warn", "Log level for CLI commands")
)

// stdout is swapped in tests
var stdout io.Writer = os.Stdout

// openApp loads the configuration and opens the store. The caller must Close it.
func openApp() (*app.App, error) {
	config, err := common.LoadConfig(app.ResolveConfigPath(*configPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := common.NewLogger(*logLevel)
	return app.NewAppWithConfig(config, logger)
}

// withApp runs fn against an opened App and maps errors to exit codes
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := fn(ctx, a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if common.IsValidation(err) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
