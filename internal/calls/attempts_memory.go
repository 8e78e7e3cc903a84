package calls

import (
	"context"
	"sync"
	"time"

	"github.com/mkoval-dev/peercall/internal/domain"
)

// MemoryAttemptRepository is an in-process AttemptRepository for tests and
// offline development.
type MemoryAttemptRepository struct {
	mu       sync.Mutex
	attempts []domain.CallAttempt
}

func NewMemoryAttemptRepository() *MemoryAttemptRepository {
	return &MemoryAttemptRepository{}
}

func (r *MemoryAttemptRepository) Append(ctx context.Context, a *domain.CallAttempt) (*domain.CallAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.StartedAt = time.Now()
	r.attempts = append(r.attempts, *a)
	return a, nil
}

func (r *MemoryAttemptRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.attempts {
		if a.ID == id {
			r.attempts = append(r.attempts[:i], r.attempts[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *MemoryAttemptRepository) ListByCaller(ctx context.Context, callerID string) ([]domain.CallAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.CallAttempt
	for i := len(r.attempts) - 1; i >= 0; i-- {
		if r.attempts[i].CallerID == callerID {
			result = append(result, r.attempts[i])
		}
	}
	return result, nil
}

// All returns every stored attempt in append order. Test helper.
func (r *MemoryAttemptRepository) All() []domain.CallAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.CallAttempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}
