package prover

import "sync"

// queryCache is the default per-Ask cache backing a coreEngine's
// ProverHandle implementation. It is intentionally private and
// unexported from the package's primitive-authoring surface: primitives
// already get a kb.Cache through kb.ProverHandle, and the
// github.com/gitrdm/judged/pkg/primitive package supplies the named
// eager/conservative key strategies that sit on top of it.
type queryCache struct {
	mu      sync.Mutex
	entries map[string]any
}

func newQueryCache() *queryCache {
	return &queryCache{entries: make(map[string]any)}
}

func (c *queryCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *queryCache) Set(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

func (c *queryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]any)
}
