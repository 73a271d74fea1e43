package port

import (
	"context"

	"github.com/bmkl23/taxi-management-system/internal/core/domain"
)

// BookingStore owns booking records. Assignment and status are updated
// together through SetAssignment so the two fields can never drift apart.
type BookingStore interface {
	Create(ctx context.Context, b *domain.Booking) error
	Get(ctx context.Context, id string) (*domain.Booking, error)
	ListByRider(ctx context.Context, riderID string) ([]domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	SetAssignment(ctx context.Context, id string, driverID *string, status domain.BookingStatus) error
	SetStatus(ctx context.Context, id string, status domain.BookingStatus) error
	SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error
}

// DriverRegistry owns driver records and their availability state.
type DriverRegistry interface {
	Create(ctx context.Context, d *domain.Driver) error
	Get(ctx context.Context, id string) (*domain.Driver, error)
	GetByEmail(ctx context.Context, email string) (*domain.Driver, error)
	List(ctx context.Context) ([]domain.Driver, error)
	Update(ctx context.Context, d *domain.Driver) error
	Delete(ctx context.Context, id string) error

	// FindCandidate returns the reachable driver with the most recent
	// LastSeen that can take a ride and is not excluded, or nil when
	// no driver matches.
	FindCandidate(ctx context.Context, excluding map[string]bool) (*domain.Driver, error)

	// Reserve places a provisional hold. It succeeds only while the
	// driver is still available, so two concurrent dispatch attempts
	// can never hold the same driver; the loser gets
	// domain.ErrDriverUnavailable.
	Reserve(ctx context.Context, id string) error
	Release(ctx context.Context, id string) error

	SetAvailability(ctx context.Context, id string, available bool) (*domain.Driver, error)
	Touch(ctx context.Context, id string) error
}

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}
