// Package analytics provides placeholder indicator, forecast and sentiment
// readings. Nothing here is computed from price history; every figure is
// drawn at random around the current quote and flagged Synthetic.
package analytics

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/bobmcallan/stockverse/internal/common"
	"github.com/bobmcallan/stockverse/internal/interfaces"
	"github.com/bobmcallan/stockverse/internal/models"
	"github.com/bobmcallan/stockverse/internal/services/quote"
)

// MaxPredictionDays caps the forecast horizon
const MaxPredictionDays = 90

// Synthetic is the bundled AnalyticsProvider
type Synthetic struct {
	quotes interfaces.QuoteSource
	logger *common.Logger
	now    func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthetic creates a provider anchored on live quotes from src. src may
// be nil, in which case base prices are random too.
func NewSynthetic(src interfaces.QuoteSource, logger *common.Logger, seed int64) *Synthetic {
	return &Synthetic{
		quotes: src,
		logger: logger,
		now:    time.Now,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (s *Synthetic) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Synthetic) basePrice(ctx context.Context, symbol string) float64 {
	if s.quotes != nil {
		q, err := s.quotes.GetQuote(ctx, symbol)
		if err == nil {
			return q.CurrentPrice
		}
		s.logger.Debug().Err(err).Str("symbol", symbol).Msg("No quote for analytics, using random base price")
	}
	return 100 + s.float()*400
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Indicators returns an RSI/MACD/Bollinger/SMA snapshot
func (s *Synthetic) Indicators(ctx context.Context, symbol string) (*models.Indicators, error) {
	symbol = quote.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, common.NewValidationError("symbol", "must not be empty")
	}
	price := s.basePrice(ctx, symbol)

	macd := (s.float() - 0.5) * 4
	signal := (s.float() - 0.5) * 3

	return &models.Indicators{
		Symbol:         symbol,
		Price:          round2(price),
		RSI:            round2(30 + s.float()*40),
		MACD:           round2(macd),
		MACDSignal:     round2(signal),
		MACDHistogram:  round2(macd - signal),
		BollingerUpper: round2(price + 5 + s.float()*15),
		BollingerMid:   round2(price),
		BollingerLower: round2(price - 5 - s.float()*15),
		Bandwidth:      round2((0.03+s.float()*0.04)*10000) / 10000,
		SMAShort:       round2(price - (s.float()-0.5)*10),
		SMALong:        round2(price - (s.float()-0.5)*20),
		GeneratedAt:    s.now().UTC(),
		Synthetic:      true,
	}, nil
}

// Predict returns a daily forecast series of the requested model family
func (s *Synthetic) Predict(ctx context.Context, symbol string, model models.PredictionModel, days int) (*models.Prediction, error) {
	symbol = quote.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, common.NewValidationError("symbol", "must not be empty")
	}
	if model != models.ModelLSTM && model != models.ModelLogistic {
		return nil, common.NewValidationError("model", "must be lstm or logistic")
	}
	if days <= 0 {
		days = 30
	}
	if days > MaxPredictionDays {
		return nil, common.NewValidationError("days", "must be at most 90")
	}

	base := s.basePrice(ctx, symbol)
	start := s.now().UTC()

	points := make([]models.PredictionPoint, days)
	for i := 0; i < days; i++ {
		var predicted, confidence, spread float64
		day := float64(i)

		switch model {
		case models.ModelLSTM:
			trend := math.Sin(day*0.1) * 0.02
			volatility := 0.03 + s.float()*0.02
			predicted = base * (1 + trend + (s.float()-0.5)*volatility)
			confidence = math.Max(60, 95-day*1.5)
			spread = predicted * (0.05 + day*0.002)
		case models.ModelLogistic:
			p := 1 / (1 + math.Exp(-(day-15)/10))
			direction := 1.0
			if p <= 0.5 {
				direction = -1
			}
			magnitude := math.Abs(p-0.5) * 0.04
			predicted = base * (1 + direction*magnitude + (s.float()-0.5)*0.02)
			confidence = math.Max(65, 90-day*1.2)
			spread = predicted * (0.04 + day*0.001)
		}

		points[i] = models.PredictionPoint{
			Date:       start.AddDate(0, 0, i+1).Format("2006-01-02"),
			Predicted:  round2(predicted),
			Confidence: math.Round(confidence*10) / 10,
			UpperBound: round2(predicted + spread),
			LowerBound: round2(predicted - spread),
		}
	}

	return &models.Prediction{
		Symbol:    symbol,
		Model:     model,
		BasePrice: round2(base),
		Points:    points,
		Synthetic: true,
	}, nil
}

// Sentiment scores the symbol from a fresh indicator snapshot: MACD above
// signal and a low RSI lean bullish.
func (s *Synthetic) Sentiment(ctx context.Context, symbol string) (*models.Sentiment, error) {
	ind, err := s.Indicators(ctx, symbol)
	if err != nil {
		return nil, err
	}

	score := 0.0
	if ind.MACD > ind.MACDSignal {
		score += 0.5
	} else {
		score -= 0.5
	}
	score += (50 - ind.RSI) / 40 // RSI 30..70 maps to +0.5..-0.5
	score = math.Max(-1, math.Min(1, score))

	label := "neutral"
	switch {
	case score > 0.2:
		label = "positive"
	case score < -0.2:
		label = "negative"
	}

	return &models.Sentiment{
		Symbol:    ind.Symbol,
		Score:     round2(score),
		Label:     label,
		Scale:     int(math.Round((score+1)*4.5)) + 1,
		Synthetic: true,
	}, nil
}

var _ interfaces.AnalyticsProvider = (*Synthetic)(nil)
