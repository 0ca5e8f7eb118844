package cache

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"bistro/internal/config"
	"bistro/internal/domain"
)

// Catalog is the read/write surface shared by the catalog service and this
// cache, so either can be handed to the controller and the order use case.
type Catalog interface {
	ListAll(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error)
	GetByID(ctx context.Context, id int) (*domain.MenuItem, error)
	ListByCuisine(ctx context.Context, cuisine domain.Cuisine) ([]domain.MenuItem, error)
	ValidateIDs(ctx context.Context, ids []int) ([]domain.MenuItem, []int, error)
	IsAvailable(ctx context.Context, id int) (bool, error)
	SetAvailability(ctx context.Context, id int, available bool) (*domain.MenuItem, error)
	InitializeDefaults(ctx context.Context) ([]domain.MenuItem, error)
}

const (
	keyPrefix          = "menu:"
	listPrefix         = "menu:list:"
	cuisinePrefix      = "menu:cuisine:"
	itemPrefix         = "menu:item:"
	availabilityPrefix = "menu:available:"
)

// CachedCatalog is a read-through cache in front of a Catalog. Query results
// and availability flags live in separate stores with their own TTLs. Writes
// drop only the keys they can have made stale.
type CachedCatalog struct {
	next         Catalog
	results      *expirable.LRU[string, []domain.MenuItem]
	availability *expirable.LRU[string, bool]
	logger       *zap.Logger

	// generation counts invalidations. A load that overlaps one is returned
	// to its caller but not stored.
	mu         sync.Mutex
	generation uint64
}

func NewCachedCatalog(next Catalog, cfg config.CacheConfig, logger *zap.Logger) *CachedCatalog {
	return &CachedCatalog{
		next:         next,
		results:      expirable.NewLRU[string, []domain.MenuItem](cfg.Size, nil, cfg.TTL),
		availability: expirable.NewLRU[string, bool](cfg.Size, nil, cfg.AvailabilityTTL),
		logger:       logger,
	}
}

func listKey(availableOnly bool) string {
	if availableOnly {
		return listPrefix + "available"
	}
	return listPrefix + "all"
}

func cuisineKey(c domain.Cuisine) string { return cuisinePrefix + string(c) }
func itemKey(id int) string              { return itemPrefix + strconv.Itoa(id) }
func availabilityKey(id int) string      { return availabilityPrefix + strconv.Itoa(id) }

func (c *CachedCatalog) ListAll(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error) {
	return c.readThrough(listKey(availableOnly), func() ([]domain.MenuItem, error) {
		return c.next.ListAll(ctx, availableOnly)
	})
}

func (c *CachedCatalog) ListByCuisine(ctx context.Context, cuisine domain.Cuisine) ([]domain.MenuItem, error) {
	return c.readThrough(cuisineKey(cuisine), func() ([]domain.MenuItem, error) {
		return c.next.ListByCuisine(ctx, cuisine)
	})
}

// GetByID caches hits only; a miss always reaches the catalog.
func (c *CachedCatalog) GetByID(ctx context.Context, id int) (*domain.MenuItem, error) {
	items, err := c.readThrough(itemKey(id), func() ([]domain.MenuItem, error) {
		item, err := c.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return []domain.MenuItem{*item}, nil
	})
	if err != nil {
		return nil, err
	}
	item := items[0]
	return &item, nil
}

// ValidateIDs is not cached: order placement must see the current catalog.
func (c *CachedCatalog) ValidateIDs(ctx context.Context, ids []int) ([]domain.MenuItem, []int, error) {
	return c.next.ValidateIDs(ctx, ids)
}

func (c *CachedCatalog) IsAvailable(ctx context.Context, id int) (bool, error) {
	key := availabilityKey(id)
	if v, ok := c.availability.Get(key); ok {
		c.logger.Debug("cache hit", zap.String("key", key))
		return v, nil
	}

	gen := c.currentGeneration()
	v, err := c.next.IsAvailable(ctx, id)
	if err != nil {
		return false, err
	}
	c.storeIfCurrent(gen, func() { c.availability.Add(key, v) })
	return v, nil
}

func (c *CachedCatalog) SetAvailability(ctx context.Context, id int, available bool) (*domain.MenuItem, error) {
	item, err := c.next.SetAvailability(ctx, id, available)
	if err != nil {
		return nil, err
	}

	c.invalidate(listPrefix, cuisinePrefix)
	c.results.Remove(itemKey(id))
	c.availability.Remove(availabilityKey(id))
	return item, nil
}

func (c *CachedCatalog) InitializeDefaults(ctx context.Context) ([]domain.MenuItem, error) {
	items, err := c.next.InitializeDefaults(ctx)
	if err != nil {
		return nil, err
	}

	c.invalidate(keyPrefix)
	return items, nil
}

func (c *CachedCatalog) readThrough(key string, load func() ([]domain.MenuItem, error)) ([]domain.MenuItem, error) {
	if items, ok := c.results.Get(key); ok {
		c.logger.Debug("cache hit", zap.String("key", key))
		return clone(items), nil
	}

	gen := c.currentGeneration()
	items, err := load()
	if err != nil {
		return nil, err
	}
	c.storeIfCurrent(gen, func() { c.results.Add(key, clone(items)) })
	return items, nil
}

func (c *CachedCatalog) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *CachedCatalog) storeIfCurrent(gen uint64, store func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		c.logger.Debug("discarding load that overlapped an invalidation")
		return
	}
	store()
}

// invalidate removes every key in both stores that starts with one of the
// prefixes.
func (c *CachedCatalog) invalidate(prefixes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++

	removed := 0
	for _, key := range c.results.Keys() {
		if hasAnyPrefix(key, prefixes) && c.results.Remove(key) {
			removed++
		}
	}
	for _, key := range c.availability.Keys() {
		if hasAnyPrefix(key, prefixes) && c.availability.Remove(key) {
			removed++
		}
	}
	c.logger.Debug("cache invalidated", zap.Strings("prefixes", prefixes), zap.Int("removed", removed))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func clone(items []domain.MenuItem) []domain.MenuItem {
	if items == nil {
		return nil
	}
	out := make([]domain.MenuItem, len(items))
	copy(out, items)
	return out
}
