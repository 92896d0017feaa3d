// Package snapshot provides immutable catalog + zone table snapshots with
// content hashing, and a TTL cache that reloads them from a Source.
package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"shipping-cost/core/calculator"
	"shipping-cost/core/catalog"
	"shipping-cost/core/location"
	"shipping-cost/core/types"
)

// ID identifies a snapshot by content
type ID string

// Source loads a complete snapshot
type Source interface {
	// Name describes the source for logs and snapshot info
	Name() string

	// Load reads the catalog and zone table
	Load(ctx context.Context) (*Snapshot, error)
}

// Snapshot is IMMUTABLE after creation. Calculations read it without locks.
type Snapshot struct {
	ID          ID
	ContentHash string
	Catalog     *catalog.Catalog
	Locations   *location.Table
	Source      string
	LoadedAt    time.Time

	// Warnings collected while loading (skipped rows, duplicate keys)
	Warnings []string
}

// Options configures snapshot construction
type Options struct {
	Source   string
	Strict   bool
	Warnings []string
	LoadedAt time.Time
}

// New builds a sealed snapshot. The zone table falls back to the catalog's
// fallback zone for untagged destinations.
func New(cat *catalog.Catalog, records []types.Destination, opts Options) *Snapshot {
	tbl := location.NewTable(records, location.Options{
		Strict:       opts.Strict,
		FallbackZone: cat.FallbackZone,
	})

	loadedAt := opts.LoadedAt
	if loadedAt.IsZero() {
		loadedAt = time.Now().UTC()
	}

	snap := &Snapshot{
		Catalog:   cat,
		Locations: tbl,
		Source:    opts.Source,
		LoadedAt:  loadedAt,
		Warnings:  append([]string(nil), opts.Warnings...),
	}
	snap.ContentHash = snap.computeHash()
	snap.ID = ID(snap.ContentHash[:16])
	return snap
}

// computeHash hashes catalog and zone table content. Load time and source
// are excluded so that reloading identical data keeps the same ID.
func (s *Snapshot) computeHash() string {
	h := sha256.New()
	enc := json.NewEncoder(h)

	// map keys are encoded sorted, slices keep registration order
	_ = enc.Encode(map[string]interface{}{
		"currency":        s.Catalog.Currency,
		"model":           s.Catalog.Model,
		"privileged_zone": s.Catalog.PrivilegedZone,
		"fallback_zone":   s.Catalog.FallbackZone,
		"origins":         s.Catalog.Origins(),
		"services":        s.Catalog.Services(),
		"items":           s.Catalog.Items(),
	})
	for _, d := range s.Locations.Records() {
		_ = enc.Encode(d)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Verify checks content hash integrity
func (s *Snapshot) Verify() bool {
	return s.computeHash() == s.ContentHash
}

// Quote computes a request against this snapshot and stamps the result with
// the snapshot ID.
func (s *Snapshot) Quote(calc *calculator.Calculator, req types.Request) (*types.Result, error) {
	res, err := calc.Compute(req, s.Catalog, s.Locations)
	if err != nil {
		return nil, err
	}
	res.SnapshotID = string(s.ID)
	return res, nil
}

// CompareOrigins prices a request from every origin in this snapshot
func (s *Snapshot) CompareOrigins(calc *calculator.Calculator, req types.Request) ([]calculator.OriginQuote, error) {
	quotes, err := calc.CompareOrigins(req, s.Catalog, s.Locations)
	if err != nil {
		return nil, err
	}
	for _, q := range quotes {
		q.Result.SnapshotID = string(s.ID)
	}
	return quotes, nil
}

// Info summarizes a snapshot
type Info struct {
	ID           ID                   `json:"id"`
	ContentHash  string               `json:"content_hash"`
	Source       string               `json:"source"`
	LoadedAt     time.Time            `json:"loaded_at"`
	Model        catalog.Model        `json:"model"`
	Currency     types.Currency       `json:"currency"`
	Catalog      catalog.CatalogStats `json:"catalog"`
	Destinations int                  `json:"destinations"`
	Duplicates   []string             `json:"duplicates,omitempty"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// Info returns the snapshot summary
func (s *Snapshot) Info() Info {
	return Info{
		ID:           s.ID,
		ContentHash:  s.ContentHash,
		Source:       s.Source,
		LoadedAt:     s.LoadedAt,
		Model:        s.Catalog.Model,
		Currency:     s.Catalog.Currency,
		Catalog:      s.Catalog.Stats(),
		Destinations: s.Locations.Len(),
		Duplicates:   s.Locations.Duplicates(),
		Warnings:     s.Warnings,
	}
}

// StaticSource always returns the same snapshot
type StaticSource struct {
	Snapshot *Snapshot
}

// Name implements Source
func (s StaticSource) Name() string { return "static" }

// Load implements Source
func (s StaticSource) Load(ctx context.Context) (*Snapshot, error) {
	return s.Snapshot, nil
}
