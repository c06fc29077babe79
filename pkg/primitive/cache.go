// Package primitive implements the primitive predicate contract of spec
// section 6: the always-registered equality predicate, the per-query
// caching interface with its eager and conservative loading strategies,
// and a helper for wrapping a user generator with either strategy.
package primitive

import (
	"iter"
	"sync"

	"github.com/gitrdm/judged/pkg/kb"
	"github.com/gitrdm/judged/pkg/logic"
)

type iterSeq = iter.Seq[*logic.Clause]

// MapCache is a mutex-guarded in-memory kb.Cache. The prover does not
// use it: each Ask builds its own per-query cache.
type MapCache struct {
	mu      sync.Mutex
	entries map[string]any
}

// NewMapCache returns an empty, ready-to-use MapCache.
func NewMapCache() *MapCache {
	return &MapCache{entries: make(map[string]any)}
}

func (c *MapCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *MapCache) Set(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

func (c *MapCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]any)
}

// KeyFunc maps a literal to a cache key. EagerKey and ConservativeKey
// are the two named strategies of spec section 6.
type KeyFunc func(lit logic.Literal) string

// EagerKey caches by a fully-variabilised form of the literal: only the
// predicate identity matters, so every instantiation of that predicate
// shares one cache entry. Appropriate for primitives that load their
// entire answer set in one shot regardless of which arguments were
// bound in the query.
func EagerKey(lit logic.Literal) string {
	return "eager:" + lit.Pred.ID()
}

// ConservativeKey caches by the literal as it stands (its Tag, which is
// alpha-invariant but distinguishes constants): appropriate for
// primitives whose cost genuinely depends on which arguments are bound.
// The built-in equality primitive uses this strategy.
func ConservativeKey(lit logic.Literal) string {
	return "conservative:" + lit.Tag()
}

// Cached wraps inner so its results are memoized in the handle's cache
// under the key produced by key. If the handle reports no cache is
// configured, Cached degrades gracefully to calling inner directly; a
// caller that wants to observe and react to that condition should call
// prover.Cache() itself (see kb.ProverHandle), which is where
// jerr.CacheError actually surfaces (spec section 7).
func Cached(inner kb.Generator, key KeyFunc) kb.Generator {
	return func(lit logic.Literal, prover kb.ProverHandle) iterSeq {
		return func(yield func(*logic.Clause) bool) {
			cache, err := prover.Cache()
			if err != nil || cache == nil {
				for c := range inner(lit, prover) {
					if !yield(c) {
						return
					}
				}
				return
			}
			k := key(lit)
			if v, ok := cache.Get(k); ok {
				for _, c := range v.([]*logic.Clause) {
					if !yield(c) {
						return
					}
				}
				return
			}
			var collected []*logic.Clause
			for c := range inner(lit, prover) {
				collected = append(collected, c)
				if !yield(c) {
					return
				}
			}
			cache.Set(k, collected)
		}
	}
}
