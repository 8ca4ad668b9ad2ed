package bot

import (
	"sync"
	"time"
)

const (
	commandInterval = 2 * time.Second
	limiterMaxSize  = 10000
)

type limiterKey struct {
	userID int64
	cmd    string
}

// RateLimiter throttles repeated commands per user. The map is pruned
// wholesale once it grows past limiterMaxSize; losing the timestamps just
// lets everyone through once.
type RateLimiter struct {
	mu   sync.Mutex
	seen map[limiterKey]time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{seen: make(map[limiterKey]time.Time)}
}

// IsLimited reports whether the user ran this command too recently and
// records the attempt otherwise.
func (r *RateLimiter) IsLimited(userID int64, cmd string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := limiterKey{userID: userID, cmd: cmd}
	now := time.Now()
	if last, ok := r.seen[key]; ok && now.Sub(last) < commandInterval {
		return true
	}
	if len(r.seen) >= limiterMaxSize {
		r.seen = make(map[limiterKey]time.Time)
	}
	r.seen[key] = now
	return false
}
