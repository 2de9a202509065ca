package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockverse/internal/common"
	"github.com/bobmcallan/stockverse/internal/models"
)

func testConfig(t *testing.T, backend string) *common.Config {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = backend
	cfg.Storage.Path = filepath.Join(t.TempDir(), "data")
	cfg.Quotes.Provider = "synthetic"
	return cfg
}

func TestNewAppWithConfig_StateSurvivesRestart(t *testing.T) {
	for _, backend := range []string{"badger", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)
			ctx := context.Background()

			a, err := NewAppWithConfig(cfg, common.NewSilentLogger())
			require.NoError(t, err)

			h, err := a.Portfolio.AddHolding(ctx, "AAPL", 10, 150)
			require.NoError(t, err)
			rule, err := a.Alerts.CreateRule(ctx, "MSFT", models.AlertPriceAbove, 1000)
			require.NoError(t, err)
			a.Close()

			b, err := NewAppWithConfig(cfg, common.NewSilentLogger())
			require.NoError(t, err)
			defer b.Close()

			holdings := b.Portfolio.Holdings()
			require.Len(t, holdings, 1)
			assert.Equal(t, h.ID, holdings[0].ID)

			rules := b.Alerts.Rules()
			require.Len(t, rules, 1)
			assert.Equal(t, rule.ID, rules[0].ID)
		})
	}
}

func TestNewAppWithConfig_UnknownProvider(t *testing.T) {
	cfg := testConfig(t, "memory")
	cfg.Quotes.Provider = "bloomberg"

	_, err := NewAppWithConfig(cfg, common.NewSilentLogger())
	assert.Error(t, err)
}

func TestNewAppWithConfig_FinnhubWithoutKey(t *testing.T) {
	cfg := testConfig(t, "memory")
	cfg.Quotes.Provider = "finnhub"
	cfg.Quotes.Finnhub.APIKey = ""

	_, err := NewAppWithConfig(cfg, common.NewSilentLogger())
	assert.Error(t, err)
}

func TestStartScheduler_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t, "memory")
	cfg.Alerts.Schedule = "whenever"

	a, err := NewAppWithConfig(cfg, common.NewSilentLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.Error(t, a.StartScheduler())
}

func TestStartScheduler_StartsAndCloses(t *testing.T) {
	a, err := NewAppWithConfig(testConfig(t, "memory"), common.NewSilentLogger())
	require.NoError(t, err)

	assert.NotNil(t, a.MCPServer)
	assert.NotNil(t, a.Analytics)

	require.NoError(t, a.StartScheduler())
	a.Close()
	assert.Nil(t, a.Store)
}

func TestResolveConfigPath_Env(t *testing.T) {
	t.Setenv("STOCKVERSE_CONFIG", "/etc/stockverse/custom.toml")
	assert.Equal(t, "/etc/stockverse/custom.toml", ResolveConfigPath(""))
	assert.Equal(t, "explicit.toml", ResolveConfigPath("explicit.toml"))
}
