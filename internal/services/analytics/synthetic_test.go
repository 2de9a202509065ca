package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockverse/internal/common"
	"github.com/bobmcallan/stockverse/internal/models"
)

type fixedSource struct {
	price float64
	err   error
}

func (f fixedSource) GetQuote(_ context.Context, symbol string) (*models.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Quote{Symbol: symbol, CurrentPrice: f.price}, nil
}

func TestIndicators_Ranges(t *testing.T) {
	p := NewSynthetic(fixedSource{price: 250}, common.NewSilentLogger(), 1)

	for i := 0; i < 100; i++ {
		ind, err := p.Indicators(context.Background(), "aapl")
		require.NoError(t, err)
		assert.Equal(t, "AAPL", ind.Symbol)
		assert.Equal(t, 250.0, ind.Price)
		assert.True(t, ind.Synthetic)
		assert.GreaterOrEqual(t, ind.RSI, 30.0)
		assert.LessOrEqual(t, ind.RSI, 70.0)
		assert.GreaterOrEqual(t, ind.MACD, -2.0)
		assert.LessOrEqual(t, ind.MACD, 2.0)
		assert.GreaterOrEqual(t, ind.BollingerUpper, 255.0)
		assert.LessOrEqual(t, ind.BollingerLower, 245.0)
		assert.GreaterOrEqual(t, ind.Bandwidth, 0.03)
		assert.LessOrEqual(t, ind.Bandwidth, 0.07)
	}
}

func TestIndicators_QuoteFailureUsesRandomBase(t *testing.T) {
	p := NewSynthetic(fixedSource{err: errors.New("offline")}, common.NewSilentLogger(), 1)

	ind, err := p.Indicators(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ind.Price, 100.0)
	assert.LessOrEqual(t, ind.Price, 500.0)
}

func TestIndicators_EmptySymbol(t *testing.T) {
	p := NewSynthetic(nil, common.NewSilentLogger(), 1)
	_, err := p.Indicators(context.Background(), " ")
	assert.True(t, common.IsValidation(err))
}

func TestPredict_Series(t *testing.T) {
	p := NewSynthetic(fixedSource{price: 100}, common.NewSilentLogger(), 3)
	p.now = func() time.Time { return time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC) }

	for _, model := range []models.PredictionModel{models.ModelLSTM, models.ModelLogistic} {
		pred, err := p.Predict(context.Background(), "MSFT", model, 0)
		require.NoError(t, err)
		require.Len(t, pred.Points, 30)
		assert.Equal(t, "2024-02-01", pred.Points[0].Date)
		assert.Equal(t, "2024-03-01", pred.Points[29].Date)

		for i, pt := range pred.Points {
			assert.Greater(t, pt.UpperBound, pt.Predicted)
			assert.Less(t, pt.LowerBound, pt.Predicted)
			assert.InDelta(t, 100, pt.Predicted, 5)
			if i > 0 {
				assert.LessOrEqual(t, pt.Confidence, pred.Points[i-1].Confidence)
			}
		}
	}
}

func TestPredict_Validation(t *testing.T) {
	p := NewSynthetic(nil, common.NewSilentLogger(), 1)

	_, err := p.Predict(context.Background(), "AAPL", models.PredictionModel("arima"), 10)
	assert.True(t, common.IsValidation(err))

	_, err = p.Predict(context.Background(), "AAPL", models.ModelLSTM, MaxPredictionDays+1)
	assert.True(t, common.IsValidation(err))
}

func TestSentiment_Bounds(t *testing.T) {
	p := NewSynthetic(fixedSource{price: 50}, common.NewSilentLogger(), 9)

	for i := 0; i < 50; i++ {
		s, err := p.Sentiment(context.Background(), "NVDA")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s.Score, -1.0)
		assert.LessOrEqual(t, s.Score, 1.0)
		assert.GreaterOrEqual(t, s.Scale, 1)
		assert.LessOrEqual(t, s.Scale, 10)
		assert.Contains(t, []string{"positive", "neutral", "negative"}, s.Label)
	}
}
