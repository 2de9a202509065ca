package interfaces

import "context"

// Persistence keys. Each component owns one key.
const (
	KeyAlerts   = "watchlist-alerts"
	KeyHoldings = "portfolio-holdings"
)

// PersistenceStore is a process-local key-value mirror of component state.
// Read reports found=false for a missing key.
type PersistenceStore interface {
	Read(ctx context.Context, key string) (value string, found bool, err error)
	Write(ctx context.Context, key, value string) error
	Close() error
}
