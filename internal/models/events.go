package models

import "time"

// Event types pushed to websocket subscribers
const (
	EventAlertFired         = "alert.fired"
	EventPortfolioRefreshed = "portfolio.refreshed"
)

// Event is the envelope pushed to realtime subscribers
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}
