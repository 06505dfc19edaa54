package ownership

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache holds compiled schemas keyed by project ID and schema version.
// Versioned keys keep concurrent resolutions on a consistent snapshot: a
// schema update bumps the version, so stale compiled entries are simply
// never hit again and expire on their own.
type Cache struct {
	c *cache.Cache
}

func NewCache(ttl, cleanupInterval time.Duration) *Cache {
	return &Cache{c: cache.New(ttl, cleanupInterval)}
}

func (sc *Cache) Get(projectID string, version int64) (*CompiledSchema, bool) {
	v, ok := sc.c.Get(cacheKey(projectID, version))
	if !ok {
		return nil, false
	}

	return v.(*CompiledSchema), true
}

func (sc *Cache) Put(projectID string, version int64, schema *CompiledSchema) {
	sc.c.SetDefault(cacheKey(projectID, version), schema)
}

func cacheKey(projectID string, version int64) string {
	return fmt.Sprintf("%s:%d", projectID, version)
}
