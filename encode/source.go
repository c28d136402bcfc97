package encode

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// NewCachingSource returns a new CachingSource, using source for cache misses.
func NewCachingSource(source Source) *CachingSource {
	return &CachingSource{
		cache:  make(map[reflect.Type]*Encodable),
		Source: source,
	}
}

// CachingSource provides a cache of Encodables, safe for concurrent use.
//
// A type is built at most once per miss. Before its Encodable is built, a placeholder is stored
// so that recursive types receive a reference to the Encodable being built instead of recursing forever.
type CachingSource struct {
	mutex sync.RWMutex
	cache map[reflect.Type]*Encodable
	Source
}

// NewEncodable implements Source.
func (src *CachingSource) NewEncodable(ty reflect.Type, _ Source) *Encodable {
	if enc, ok := src.lookup(ty); ok {
		return enc
	}

	b := &build{
		root:  src,
		local: make(map[reflect.Type]*Encodable),
	}
	enc := b.NewEncodable(ty, nil)
	b.done.Store(true)

	src.mutex.Lock()
	defer src.mutex.Unlock()
	for t, e := range b.local {
		if _, ok := src.cache[t]; !ok {
			src.cache[t] = e
		}
	}
	return enc
}

// Len returns the number of cached Encodables.
func (src *CachingSource) Len() int {
	src.mutex.RLock()
	defer src.mutex.RUnlock()
	return len(src.cache)
}

func (src *CachingSource) lookup(ty reflect.Type) (*Encodable, bool) {
	src.mutex.RLock()
	defer src.mutex.RUnlock()
	enc, ok := src.cache[ty]
	return enc, ok
}

// build holds the Encodables created by a single cache miss until they are complete.
// Encodables keep the build as their Source; once done it forwards to the cache.
type build struct {
	root  *CachingSource
	local map[reflect.Type]*Encodable
	done  atomic.Bool
}

func (b *build) NewEncodable(ty reflect.Type, _ Source) *Encodable {
	if b.done.Load() {
		return b.root.NewEncodable(ty, nil)
	}

	if enc, ok := b.root.lookup(ty); ok {
		return enc
	}
	if enc, ok := b.local[ty]; ok {
		return enc
	}

	placeholder := new(Encodable)
	b.local[ty] = placeholder
	*placeholder = *b.root.Source.NewEncodable(ty, b)
	return placeholder
}
