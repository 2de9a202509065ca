package scheduler

import (
	"context"

	"github.com/bobmcallan/stockverse/internal/common"
	"github.com/bobmcallan/stockverse/internal/interfaces"
)

// AlertEvaluationJob runs one alert evaluation pass per tick
type AlertEvaluationJob struct {
	Alerts interfaces.AlertService
	Logger *common.Logger
}

func (j *AlertEvaluationJob) Name() string { return "alert_evaluation" }

func (j *AlertEvaluationJob) Run(ctx context.Context) error {
	report := j.Alerts.EvaluateAll(ctx)
	if report.Skipped {
		j.Logger.Debug().Msg("Alert evaluation: previous pass still running")
		return nil
	}
	if len(report.Fired) > 0 || len(report.FailedSymbols) > 0 {
		j.Logger.Info().
			Int("rules", report.RulesEvaluated).
			Int("fired", len(report.Fired)).
			Strs("failed_symbols", report.FailedSymbols).
			Dur("elapsed", report.Elapsed).
			Msg("Alert evaluation: complete")
	}
	return nil
}

// PriceRefreshJob refreshes holding prices per tick
type PriceRefreshJob struct {
	Portfolio interfaces.PortfolioService
	Logger    *common.Logger
}

func (j *PriceRefreshJob) Name() string { return "price_refresh" }

func (j *PriceRefreshJob) Run(ctx context.Context) error {
	report := j.Portfolio.RefreshPrices(ctx)
	if report.Skipped {
		j.Logger.Debug().Msg("Price refresh: previous pass still running")
	}
	return nil
}
