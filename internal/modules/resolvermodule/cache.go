package resolvermodule

import (
	"sync"
)

// cachedResolution is one ephemeral cache value.
type cachedResolution struct {
	NativeID string
	Title    string
}

// ResolutionCache is the ephemeral tier of the resolution cache: a
// process-lifetime map from (reference, provider) to the provider's
// native id. It sits in front of the durable mapping store purely as a
// latency optimization and is never persisted. Instances are injected
// into the resolver so tests can substitute a fresh one per case.
type ResolutionCache struct {
	mu      sync.RWMutex
	entries map[string]cachedResolution
}

// NewResolutionCache creates an empty resolution cache.
func NewResolutionCache() *ResolutionCache {
	return &ResolutionCache{
		entries: make(map[string]cachedResolution),
	}
}

func cacheKey(ref Reference, provider string) string {
	return ref.String() + "|" + provider
}

// Get returns the cached native id and title for a reference on a
// provider, if present.
func (c *ResolutionCache) Get(ref Reference, provider string) (nativeID, title string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[cacheKey(ref, provider)]
	return entry.NativeID, entry.Title, ok
}

// Put stores a resolution for the remainder of the process lifetime.
func (c *ResolutionCache) Put(ref Reference, provider, nativeID, title string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(ref, provider)] = cachedResolution{NativeID: nativeID, Title: title}
}

// Delete removes a cached resolution, if present.
func (c *ResolutionCache) Delete(ref Reference, provider string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, cacheKey(ref, provider))
}

// Len returns the number of cached resolutions.
func (c *ResolutionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
