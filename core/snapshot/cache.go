package snapshot

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"shipping-cost/internal/errors"
	"shipping-cost/internal/logging"
)

// Stale data is served only within MaxStale; after that callers get the
// reload error.

// Policy defines cache behavior
type Policy struct {
	// TTL between reloads
	TTL time.Duration

	// MaxStale bounds how old a snapshot may get while reloads fail.
	// Zero disables stale serving.
	MaxStale time.Duration

	// RefreshTimeout bounds a single reload
	RefreshTimeout time.Duration
}

// DefaultPolicy returns the default policy
func DefaultPolicy() Policy {
	return Policy{
		TTL:            5 * time.Minute,
		MaxStale:       time.Hour,
		RefreshTimeout: 30 * time.Second,
	}
}

// Cache holds the current snapshot and reloads it from a Source
type Cache struct {
	source Source
	policy Policy
	logger *zap.Logger
	now    func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	current  *Snapshot
	loadedAt time.Time
	stats    CacheStats
}

// CacheStats contains cache statistics
type CacheStats struct {
	SnapshotID ID        `json:"snapshot_id,omitempty"`
	LoadedAt   time.Time `json:"loaded_at,omitempty"`
	Reloads    int       `json:"reloads"`
	Failures   int       `json:"failures"`
	StaleHits  int       `json:"stale_hits"`
	LastError  string    `json:"last_error,omitempty"`
}

// NewCache creates a cache. A nil logger uses the package logger.
func NewCache(source Source, policy Policy, logger *zap.Logger) *Cache {
	if policy.TTL <= 0 {
		policy.TTL = DefaultPolicy().TTL
	}
	if policy.RefreshTimeout <= 0 {
		policy.RefreshTimeout = DefaultPolicy().RefreshTimeout
	}
	if logger == nil {
		logger = logging.Named("snapshot")
	}
	return &Cache{
		source: source,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the current snapshot, reloading it when the TTL has passed
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	if snap, ok := c.fresh(); ok {
		return snap, nil
	}
	return c.refresh(ctx, false)
}

// Refresh forces a reload
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	return c.refresh(ctx, true)
}

// Stats returns cache statistics
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func (c *Cache) fresh() (*Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current != nil && c.now().Sub(c.loadedAt) < c.policy.TTL {
		return c.current, true
	}
	return nil, false
}

func (c *Cache) refresh(ctx context.Context, force bool) (*Snapshot, error) {
	v, err, _ := c.group.Do("snapshot", func() (interface{}, error) {
		// a caller may have finished a reload while this one waited
		if !force {
			if snap, ok := c.fresh(); ok {
				return snap, nil
			}
		}
		return c.reload(ctx)
	})
	if err == nil {
		return v.(*Snapshot), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.policy.MaxStale > 0 && c.now().Sub(c.loadedAt) <= c.policy.MaxStale {
		c.stats.StaleHits++
		c.logger.Warn("serving stale snapshot",
			zap.String("snapshot_id", string(c.current.ID)),
			zap.Duration("age", c.now().Sub(c.loadedAt)),
			zap.Error(err))
		return c.current, nil
	}
	return nil, err
}

func (c *Cache) reload(ctx context.Context) (*Snapshot, error) {
	// shared by every coalesced caller, so it must outlive the first one
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.policy.RefreshTimeout)
	defer cancel()

	start := c.now()
	snap, err := c.source.Load(ctx)
	if err == nil && snap == nil {
		err = errors.Internal("snapshot source returned nothing", nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.stats.Failures++
		c.stats.LastError = err.Error()
		c.logger.Error("snapshot reload failed",
			zap.String("source", c.source.Name()),
			zap.Error(err))
		return nil, errors.Wrap(errors.TypeInternal, "failed to load snapshot from "+c.source.Name(), err)
	}

	changed := c.current == nil || c.current.ID != snap.ID
	c.current = snap
	c.loadedAt = c.now()
	c.stats.Reloads++
	c.stats.SnapshotID = snap.ID
	c.stats.LoadedAt = c.loadedAt
	c.stats.LastError = ""

	c.logger.Info("snapshot loaded",
		zap.String("source", c.source.Name()),
		zap.String("snapshot_id", string(snap.ID)),
		zap.Bool("changed", changed),
		zap.Int("destinations", snap.Locations.Len()),
		zap.Int("warnings", len(snap.Warnings)),
		zap.Duration("took", c.now().Sub(start)))
	return snap, nil
}
