package interfaces

import (
	"context"
	"io"

	"github.com/bobmcallan/stockverse/internal/models"
)

// NotificationSink receives realtime events (fired alerts, refresh reports)
type NotificationSink interface {
	Publish(event models.Event)
}

// AlertService manages alert rules and their fired notifications
type AlertService interface {
	CreateRule(ctx context.Context, symbol string, kind models.AlertKind, threshold float64) (*models.AlertRule, error)
	RemoveRule(ctx context.Context, id string) error
	EvaluateAll(ctx context.Context) models.EvaluationReport
	DismissNotification(id string) bool
	Rules() []models.AlertRule
	Notifications() []models.FiredNotification
	Counts() models.AlertCounts
	ActiveCount() int
	FiredCount() int
}

// PortfolioService manages holdings and their valuation
type PortfolioService interface {
	AddHolding(ctx context.Context, symbol string, quantity, costBasisPerUnit float64) (*models.Holding, error)
	RemoveHolding(ctx context.Context, id string) error
	RefreshPrices(ctx context.Context) models.RefreshReport
	Holdings() []models.HoldingView
	Summary() models.PortfolioSummary
	ExportSnapshot() (string, error)
	WriteSnapshot(w io.Writer) error
}
