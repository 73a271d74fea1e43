package memory

import (
	"context"
	"sync"
	"time"
)

// Presence is an in-process presence set for single-instance and test
// deployments. The redis adapter replaces it when instances share state.
type Presence struct {
	mu     sync.RWMutex
	online map[string]time.Time
}

func NewPresence() *Presence {
	return &Presence{online: make(map[string]time.Time)}
}

func (p *Presence) Track(ctx context.Context, driverID string, at time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[driverID] = at
	return nil
}

func (p *Presence) Remove(ctx context.Context, driverID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, driverID)
	return nil
}

func (p *Presence) IsOnline(ctx context.Context, driverID string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.online[driverID]
	return ok, nil
}
