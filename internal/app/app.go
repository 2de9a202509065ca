// Package app wires configuration, storage, quote sources and the alert and
// portfolio services into one App shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/stockverse/internal/clients/finnhub"
	"github.com/bobmcallan/stockverse/internal/clients/synthetic"
	"github.com/bobmcallan/stockverse/internal/common"
	"github.com/bobmcallan/stockverse/internal/interfaces"
	"github.com/bobmcallan/stockverse/internal/realtime"
	"github.com/bobmcallan/stockverse/internal/scheduler"
	"github.com/bobmcallan/stockverse/internal/services/alerts"
	"github.com/bobmcallan/stockverse/internal/services/analytics"
	"github.com/bobmcallan/stockverse/internal/services/portfolio"
	"github.com/bobmcallan/stockverse/internal/services/quote"
	"github.com/bobmcallan/stockverse/internal/storage"
	"github.com/bobmcallan/stockverse/internal/tools"
)

// App holds all initialized services and clients
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Store       interfaces.PersistenceStore
	Quotes      *quote.Service
	Alerts      *alerts.Engine
	Portfolio   *portfolio.Ledger
	Analytics   interfaces.AnalyticsProvider
	MCPServer   *server.MCPServer
	Hub         *realtime.Hub
	StartupTime time.Time

	scheduler *scheduler.Scheduler
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: explicit path, STOCKVERSE_CONFIG,
// stockverse.toml next to the binary, then config/stockverse.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("STOCKVERSE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "stockverse.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/stockverse.toml"
		}
	}
	return configPath
}

// NewApp loads configuration and initializes everything.
// configPath may be empty, in which case ResolveConfigPath decides.
func NewApp(configPath string) (*App, error) {
	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	return NewAppWithConfig(config, logger)
}

// NewAppWithConfig initializes the App from an already-loaded config
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	store, err := storage.NewStore(logger, config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	source, err := newQuoteSource(config, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	quoteOpts := []quote.Option{
		quote.WithFetchTimeout(config.Quotes.GetFetchTimeout()),
		quote.WithConcurrency(config.Quotes.Concurrency),
	}
	if strings.EqualFold(config.Quotes.Fallback, "synthetic") && config.Quotes.Provider != "synthetic" {
		quoteOpts = append(quoteOpts, quote.WithFallback(synthetic.NewClient()))
	}
	quotes := quote.NewService(source, logger, quoteOpts...)

	hub := realtime.NewHub(logger, config.Server.AllowedOrigins)
	go hub.Run()

	alertEngine := alerts.NewEngine(quotes, store, logger, alerts.WithSink(hub))
	ledger := portfolio.NewLedger(quotes, store, logger, portfolio.WithSink(hub))

	ctx := context.Background()
	if err := alertEngine.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to load alert rules, starting empty")
	}
	if err := ledger.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to load holdings, starting empty")
	}

	a := &App{
		Config:      config,
		Logger:      logger,
		Store:       store,
		Quotes:      quotes,
		Alerts:      alertEngine,
		Portfolio:   ledger,
		Analytics:   analytics.NewSynthetic(quotes, logger, time.Now().UnixNano()),
		Hub:         hub,
		MCPServer:   tools.NewMCPServer(quotes, alertEngine, ledger, logger),
		StartupTime: startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

func newQuoteSource(config *common.Config, logger *common.Logger) (interfaces.QuoteSource, error) {
	switch strings.ToLower(config.Quotes.Provider) {
	case "finnhub":
		fh := config.Quotes.Finnhub
		if fh.APIKey == "" {
			return nil, fmt.Errorf("finnhub provider selected but no API key configured")
		}
		return finnhub.NewClient(fh.APIKey,
			finnhub.WithBaseURL(fh.BaseURL),
			finnhub.WithLogger(logger),
			finnhub.WithRateLimit(fh.RateLimit),
			finnhub.WithTimeout(fh.GetTimeout()),
		), nil
	case "synthetic", "":
		logger.Warn().Msg("Using synthetic quotes - prices are random")
		return synthetic.NewClient(), nil
	default:
		return nil, fmt.Errorf("unknown quote provider %q", config.Quotes.Provider)
	}
}

// StartScheduler registers the alert evaluation and price refresh jobs and
// starts the cron scheduler.
func (a *App) StartScheduler() error {
	s := scheduler.New(a.Logger)

	if err := s.AddJob(a.Config.Alerts.Schedule, &scheduler.AlertEvaluationJob{Alerts: a.Alerts, Logger: a.Logger}); err != nil {
		return err
	}
	if err := s.AddJob(a.Config.Portfolio.RefreshSchedule, &scheduler.PriceRefreshJob{Portfolio: a.Portfolio, Logger: a.Logger}); err != nil {
		return err
	}

	s.Start()
	a.scheduler = s
	return nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, stop hub, close storage.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
		a.scheduler = nil
	}
	if a.Hub != nil {
		a.Hub.Stop()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close store")
		}
		a.Store = nil
	}
}
