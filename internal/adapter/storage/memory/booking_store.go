package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bmkl23/taxi-management-system/internal/core/domain"
)

// BookingStore is an in-memory booking store. It backs the STORE=memory
// dev mode and the service tests; writes to a single record are
// serialized by the store mutex, matching the single-document atomicity
// the postgres store gets from conditional updates.
type BookingStore struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking
}

func NewBookingStore() *BookingStore {
	return &BookingStore{bookings: make(map[string]*domain.Booking)}
}

func (s *BookingStore) Create(ctx context.Context, b *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *BookingStore) Get(ctx context.Context, id string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *BookingStore) ListByRider(ctx context.Context, riderID string) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Booking
	for _, b := range s.bookings {
		if b.UserID == riderID {
			out = append(out, *b)
		}
	}
	sortByCreatedDesc(out)
	return out, nil
}

func (s *BookingStore) ListAll(ctx context.Context) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, *b)
	}
	sortByCreatedDesc(out)
	return out, nil
}

func (s *BookingStore) SetAssignment(ctx context.Context, id string, driverID *string, status domain.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	if driverID != nil {
		d := *driverID
		b.AssignedDriver = &d
	} else {
		b.AssignedDriver = nil
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	return nil
}

func (s *BookingStore) SetStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	return nil
}

func (s *BookingStore) SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.PaymentStatus = status
	b.UpdatedAt = time.Now()
	return nil
}

func sortByCreatedDesc(bookings []domain.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}
