// Package models defines data structures for StockVerse
package models

import "time"

// Quote is a point-in-time snapshot of an instrument's price.
type Quote struct {
	Symbol        string    `json:"symbol"`
	CurrentPrice  float64   `json:"current_price"`
	PreviousClose float64   `json:"previous_close"`
	Volume        int64     `json:"volume"`
	Open          float64   `json:"open,omitempty"`
	High          float64   `json:"high,omitempty"`
	Low           float64   `json:"low,omitempty"`
	Change        float64   `json:"change,omitempty"`
	ChangePercent float64   `json:"change_percent,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source,omitempty"` // "finnhub", "synthetic"
}

// DayChangePercent returns the move against the previous close, or 0 when
// the previous close is unknown.
func (q Quote) DayChangePercent() float64 {
	if q.PreviousClose == 0 {
		return 0
	}
	return (q.CurrentPrice - q.PreviousClose) / q.PreviousClose * 100
}
