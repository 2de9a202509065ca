package cli

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCLI points the commands at a fresh sqlite file and synthetic quotes.
func setupCLI(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STOCKVERSE_STORAGE_BACKEND", "sqlite")
	t.Setenv("STOCKVERSE_DATA_PATH", filepath.Join(dir, "cli.db"))
	t.Setenv("STOCKVERSE_QUOTE_PROVIDER", "synthetic")
	t.Setenv("STOCKVERSE_CONFIG", "")

	old := *configPath
	*configPath = filepath.Join(dir, "absent.toml")
	t.Cleanup(func() { *configPath = old })
}

func run(t *testing.T, cmd subcommands.Command, args ...string) (subcommands.ExitStatus, string) {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse(args))

	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()

	status := cmd.Execute(context.Background(), fs)
	return status, buf.String()
}

func TestHoldingCommands_AddListRemove(t *testing.T) {
	setupCLI(t)

	status, out := run(t, &addHoldingCmd{}, "-symbol", "aapl", "-quantity", "10", "-cost", "150")
	require.Equal(t, subcommands.ExitSuccess, status)
	fields := strings.Split(out, "\t")
	require.NotEmpty(t, fields)
	id := fields[0]
	assert.Contains(t, out, "AAPL")

	// persisted across App instances
	status, out = run(t, &holdingsCmd{})
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "AAPL")

	status, out = run(t, &exportCmd{})
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.True(t, strings.HasPrefix(out, "Symbol,Quantity,Buy Price,Current Price,Total Value,P/L,P/L %"))
	assert.Contains(t, out, "AAPL,10.00,150.00,")

	status, _ = run(t, &removeHoldingCmd{}, id)
	require.Equal(t, subcommands.ExitSuccess, status)

	_, out = run(t, &holdingsCmd{})
	assert.NotContains(t, out, id)
}

func TestAddHolding_InvalidInputIsUsageError(t *testing.T) {
	setupCLI(t)

	status, _ := run(t, &addHoldingCmd{}, "-symbol", "AAPL", "-quantity", "0", "-cost", "150")
	assert.Equal(t, subcommands.ExitUsageError, status)

	_, out := run(t, &holdingsCmd{})
	assert.NotContains(t, out, "AAPL")
}

func TestRemoveCommands_RequireID(t *testing.T) {
	setupCLI(t)

	status, _ := run(t, &removeHoldingCmd{})
	assert.Equal(t, subcommands.ExitUsageError, status)

	status, _ = run(t, &removeAlertCmd{})
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestAlertCommands(t *testing.T) {
	setupCLI(t)

	status, _ := run(t, &addAlertCmd{}, "-symbol", "MSFT", "-kind", "sideways", "-threshold", "5")
	assert.Equal(t, subcommands.ExitUsageError, status)

	// synthetic prices are at least 100, so a 1.00 floor is crossed on the first pass
	status, out := run(t, &addAlertCmd{}, "-symbol", "msft", "-kind", "above", "-threshold", "1")
	require.Equal(t, subcommands.ExitSuccess, status)
	id := strings.Split(out, "\t")[0]

	_, out = run(t, &alertsCmd{})
	assert.Contains(t, out, id)
	assert.Contains(t, out, "active")

	status, out = run(t, &evaluateCmd{})
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "1 rules evaluated, 1 fired")

	_, out = run(t, &alertsCmd{})
	assert.Contains(t, out, "fired")

	status, _ = run(t, &removeAlertCmd{}, id)
	require.Equal(t, subcommands.ExitSuccess, status)

	_, out = run(t, &alertsCmd{})
	assert.NotContains(t, out, id)
}

func TestSummaryCommand_Empty(t *testing.T) {
	setupCLI(t)

	status, out := run(t, &summaryCmd{})
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "HOLDINGS")
	assert.Contains(t, out, "0.00")
}
