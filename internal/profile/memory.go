package profile

import (
	"context"
	"sync"
	"time"

	"github.com/mkoval-dev/peercall/internal/common"
	"github.com/mkoval-dev/peercall/internal/domain"
)

// MemoryRepository is an in-process Repository for tests and offline
// development.
type MemoryRepository struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{profiles: make(map[string]domain.Profile)}
}

func (r *MemoryRepository) Exists(ctx context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.profiles[userID]
	return ok, nil
}

func (r *MemoryRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := p
	return &out, nil
}

func (r *MemoryRepository) Create(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.UserID]; ok {
		return nil, common.ErrorUserIDTaken
	}
	p.RegisteredAt = time.Now()
	r.profiles[p.UserID] = *p
	return p, nil
}
