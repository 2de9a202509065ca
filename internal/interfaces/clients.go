// Package interfaces defines service contracts for StockVerse
package interfaces

import (
	"context"

	"github.com/bobmcallan/stockverse/internal/models"
)

// QuoteSource looks up the latest quote for a symbol. Implementations must
// be safe for concurrent use; a failed lookup returns an error and no quote.
type QuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// AnalyticsProvider supplies indicator, forecast and sentiment readings.
// The bundled implementation is synthetic; a real provider can be swapped in
// without touching callers.
type AnalyticsProvider interface {
	Indicators(ctx context.Context, symbol string) (*models.Indicators, error)
	Predict(ctx context.Context, symbol string, model models.PredictionModel, days int) (*models.Prediction, error)
	Sentiment(ctx context.Context, symbol string) (*models.Sentiment, error)
}
