package guard

import (
	"context"
	"sync"

	"github.com/clubstake/platform/internal/domain"
)

// InflightGuard rejects a credit while another request with the same
// external id is still being processed. The ledger's unique index makes
// duplicates safe either way; this guard just turns a racing retry into a
// fast 409 instead of a lock wait.
type InflightGuard struct {
	mu     sync.Mutex
	active map[string]bool
}

// NewInflightGuard creates an in-memory in-flight guard.
func NewInflightGuard() *InflightGuard {
	return &InflightGuard{active: make(map[string]bool)}
}

// Begin claims the key for the duration of a request. A blank key is always
// allowed.
func (g *InflightGuard) Begin(_ context.Context, key string) domain.GuardResult {
	if key == "" {
		return domain.GuardResult{Allowed: true}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active[key] {
		return domain.GuardResult{
			Allowed: false,
			Reason:  "a request with this external id is already in flight",
			Guard:   "inflight",
		}
	}

	g.active[key] = true
	return domain.GuardResult{Allowed: true}
}

// End releases the key once the request finishes, success or not.
func (g *InflightGuard) End(key string) {
	if key == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, key)
}
