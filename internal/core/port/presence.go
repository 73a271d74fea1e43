package port

import (
	"context"
	"time"
)

// Presence tracks which drivers hold a live connection. Reachability is
// deliberately not persisted on the driver record: a driver is a
// dispatch candidate only while present here.
type Presence interface {
	Track(ctx context.Context, driverID string, at time.Time) error
	Remove(ctx context.Context, driverID string) error
	IsOnline(ctx context.Context, driverID string) (bool, error)
}
