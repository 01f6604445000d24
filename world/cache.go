package world

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/atomic"
)

var (
	levelCache = make(map[uint64]*CachedLevel)
	cMu        sync.Mutex
)

// CachedLevel is a parsed level shared by everyone who loaded the same file
// content. It is dropped from the cache once every subscriber released it.
type CachedLevel struct {
	*Level
	hash uint64
	subs atomic.Int64
}

// Cache parses the level data, or returns the already parsed level if the same
// data was cached before. The caller must Release the level when done with it.
func Cache(data []byte) (*CachedLevel, error) {
	hash := xxhash.Sum64(data)

	// Parsing happens under the lock so two loads of a new level do not both
	// parse and cache it.
	cMu.Lock()
	defer cMu.Unlock()

	if cached, ok := levelCache[hash]; ok {
		cached.subs.Inc()
		return cached, nil
	}
	l, err := ParseLevel(data)
	if err != nil {
		return nil, err
	}
	cached := &CachedLevel{Level: l, hash: hash}
	cached.subs.Store(1)
	levelCache[hash] = cached
	return cached, nil
}

// Hash returns the content hash of the level file.
func (cl *CachedLevel) Hash() uint64 {
	return cl.hash
}

// Release unsubscribes from the level.
func (cl *CachedLevel) Release() {
	if cl.subs.Dec() > 0 {
		return
	}
	cMu.Lock()
	if cl.subs.Load() <= 0 && levelCache[cl.hash] == cl {
		delete(levelCache, cl.hash)
	}
	cMu.Unlock()
}

// cachedLevels returns the number of levels in the cache.
func cachedLevels() int {
	cMu.Lock()
	defer cMu.Unlock()
	return len(levelCache)
}
