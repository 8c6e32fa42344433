package memory

import (
	"hash/fnv"
	"sync"
)

const defaultStripes = 64

// stripedLock serializes work per key with a fixed pool of mutexes. Keys are
// mapped with consistent hashing so one key always uses the same mutex while
// different keys mostly proceed in parallel.
type stripedLock struct {
	stripes []sync.Mutex
}

func newStripedLock(n int) *stripedLock {
	if n <= 0 {
		n = defaultStripes
	}
	return &stripedLock{stripes: make([]sync.Mutex, n)}
}

func (l *stripedLock) forKey(key string) *sync.Mutex {
	return &l.stripes[l.index(key)]
}

func (l *stripedLock) index(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(l.stripes)))
}
