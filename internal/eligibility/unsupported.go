package eligibility

import "sync"

// UnsupportedPairs remembers pairs that lacked support on at least two
// exchanges. The set only grows within the process lifetime: a pair that
// later becomes listed somewhere is never re-discovered. That matches the
// reference behavior and keeps repeated cycles from re-querying known
// dead candidates.
type UnsupportedPairs struct {
	mu  sync.RWMutex
	set map[string]struct{}
}

func NewUnsupportedPairs() *UnsupportedPairs {
	return &UnsupportedPairs{set: make(map[string]struct{})}
}

func (u *UnsupportedPairs) Add(pair string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.set[pair] = struct{}{}
}

func (u *UnsupportedPairs) Contains(pair string) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	_, ok := u.set[pair]
	return ok
}

func (u *UnsupportedPairs) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.set)
}
