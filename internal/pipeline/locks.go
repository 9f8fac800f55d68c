package pipeline

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// stripedLock serializes work per key with a fixed set of mutexes
type stripedLock struct {
	stripes [lockStripes]sync.Mutex
}

// lock acquires the stripe for key and returns its unlock
func (l *stripedLock) lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	m := &l.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}
