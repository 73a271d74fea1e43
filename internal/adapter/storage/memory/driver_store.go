package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bmkl23/taxi-management-system/internal/core/domain"
	"github.com/bmkl23/taxi-management-system/internal/core/port"
)

// DriverStore is an in-memory driver registry. Candidate ordering is
// most-recent LastSeen first with insertion order as the stable
// tie-break.
type DriverStore struct {
	presence port.Presence

	mu      sync.Mutex
	drivers map[string]*domain.Driver
	order   []string
}

func NewDriverStore(presence port.Presence) *DriverStore {
	return &DriverStore{
		presence: presence,
		drivers:  make(map[string]*domain.Driver),
	}
}

func (s *DriverStore) Create(ctx context.Context, d *domain.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.drivers {
		if existing.Email == d.Email {
			return domain.ErrEmailTaken
		}
	}
	cp := *d
	s.drivers[d.ID] = &cp
	s.order = append(s.order, d.ID)
	return nil
}

func (s *DriverStore) Get(ctx context.Context, id string) (*domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil, domain.ErrDriverNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *DriverStore) GetByEmail(ctx context.Context, email string) (*domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.drivers {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domain.ErrDriverNotFound
}

func (s *DriverStore) List(ctx context.Context) ([]domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Driver, 0, len(s.order))
	for _, id := range s.order {
		if d, ok := s.drivers[id]; ok {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *DriverStore) Update(ctx context.Context, d *domain.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drivers[d.ID]; !ok {
		return domain.ErrDriverNotFound
	}
	cp := *d
	cp.UpdatedAt = time.Now()
	s.drivers[d.ID] = &cp
	return nil
}

func (s *DriverStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drivers[id]; !ok {
		return domain.ErrDriverNotFound
	}
	delete(s.drivers, id)
	return nil
}

func (s *DriverStore) FindCandidate(ctx context.Context, excluding map[string]bool) (*domain.Driver, error) {
	s.mu.Lock()
	eligible := make([]domain.Driver, 0)
	for _, id := range s.order {
		d, ok := s.drivers[id]
		if !ok || excluding[id] || !d.CanTakeRide() {
			continue
		}
		eligible = append(eligible, *d)
	}
	s.mu.Unlock()

	var best *domain.Driver
	for i := range eligible {
		online, err := s.presence.IsOnline(ctx, eligible[i].ID)
		if err != nil {
			return nil, err
		}
		if !online {
			continue
		}
		if best == nil || eligible[i].LastSeen.After(best.LastSeen) {
			best = &eligible[i]
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (s *DriverStore) Reserve(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return domain.ErrDriverNotFound
	}
	if !d.IsAvailable {
		return domain.ErrDriverUnavailable
	}
	d.IsAvailable = false
	d.Status = domain.DriverStatusBusy
	d.UpdatedAt = time.Now()
	return nil
}

func (s *DriverStore) Release(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return domain.ErrDriverNotFound
	}
	d.IsAvailable = true
	d.Status = domain.DriverStatusAvailable
	d.UpdatedAt = time.Now()
	return nil
}

func (s *DriverStore) SetAvailability(ctx context.Context, id string, available bool) (*domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil, domain.ErrDriverNotFound
	}
	d.IsAvailable = available
	if available {
		d.Status = domain.DriverStatusAvailable
	} else {
		d.Status = domain.DriverStatusOffline
	}
	d.LastSeen = time.Now()
	d.UpdatedAt = d.LastSeen
	cp := *d
	return &cp, nil
}

func (s *DriverStore) Touch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return domain.ErrDriverNotFound
	}
	d.LastSeen = time.Now()
	d.UpdatedAt = d.LastSeen
	return nil
}
