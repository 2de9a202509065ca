package models

import "time"

// Indicators is a technical indicator snapshot. Values produced by the
// synthetic provider are placeholders, not computed from price history.
type Indicators struct {
	Symbol         string    `json:"symbol"`
	Price          float64   `json:"price"`
	RSI            float64   `json:"rsi"`
	MACD           float64   `json:"macd"`
	MACDSignal     float64   `json:"macd_signal"`
	MACDHistogram  float64   `json:"macd_histogram"`
	BollingerUpper float64   `json:"bollinger_upper"`
	BollingerMid   float64   `json:"bollinger_middle"`
	BollingerLower float64   `json:"bollinger_lower"`
	Bandwidth      float64   `json:"bandwidth"`
	SMAShort       float64   `json:"sma_short"`
	SMALong        float64   `json:"sma_long"`
	GeneratedAt    time.Time `json:"generated_at"`
	Synthetic      bool      `json:"synthetic"`
}

// PredictionModel names the forecasting model family
type PredictionModel string

const (
	ModelLSTM     PredictionModel = "lstm"
	ModelLogistic PredictionModel = "logistic"
)

// PredictionPoint is one forecast day
type PredictionPoint struct {
	Date       string  `json:"date"`
	Predicted  float64 `json:"predicted"`
	Confidence float64 `json:"confidence"`
	UpperBound float64 `json:"upper_bound"`
	LowerBound float64 `json:"lower_bound"`
}

// Prediction is a forecast series for one symbol
type Prediction struct {
	Symbol    string            `json:"symbol"`
	Model     PredictionModel   `json:"model"`
	BasePrice float64           `json:"base_price"`
	Points    []PredictionPoint `json:"points"`
	Synthetic bool              `json:"synthetic"`
}

// Sentiment is a market sentiment reading for one symbol
type Sentiment struct {
	Symbol    string  `json:"symbol"`
	Score     float64 `json:"score"` // -1 (bearish) .. +1 (bullish)
	Label     string  `json:"label"`
	Scale     int     `json:"scale"` // 1..10 investment scale
	Synthetic bool    `json:"synthetic"`
}
