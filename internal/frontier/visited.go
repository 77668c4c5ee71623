package frontier

import (
	"hash/fnv"
	"sync"
)

// Visited is a set of keys (URLs, ids) already handled in this run.
type Visited struct {
	set map[uint64]struct{}
	mu  sync.Mutex
}

func NewVisited() *Visited {
	return &Visited{
		set: make(map[uint64]struct{}),
	}
}

func hash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// Add records u and reports whether it was new.
func (v *Visited) Add(u string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	k := hash(u)
	if _, ok := v.set[k]; ok {
		return false
	}
	v.set[k] = struct{}{}
	return true
}

func (v *Visited) Has(u string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.set[hash(u)]
	return ok
}

func (v *Visited) Size() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.set)
}
