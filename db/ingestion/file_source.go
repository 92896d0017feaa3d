package ingestion

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shipping-cost/core/catalog"
	"shipping-cost/core/snapshot"
)

// FileSource loads a snapshot from a catalog file, a zone-table CSV and an
// optional item-rate CSV
type FileSource struct {
	// CatalogPath is a .hcl or .json catalog; empty uses the built-in one
	CatalogPath string

	// Model is used with the built-in catalog
	Model catalog.Model

	LocationsPath string
	ItemRatesPath string
	Delimiter     string
	Strict        bool

	Logger *zap.Logger
}

// Name implements snapshot.Source
func (s *FileSource) Name() string {
	return "file:" + s.LocationsPath
}

// Load implements snapshot.Source. The three files are read in parallel.
func (s *FileSource) Load(ctx context.Context) (*snapshot.Snapshot, error) {
	var (
		cat       *catalog.Catalog
		locations *RawTable
		itemRates *RawTable
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		cat, err = s.loadCatalog()
		return err
	})
	g.Go(func() error {
		var err error
		locations, err = ReadCSVFile(s.LocationsPath, s.Delimiter)
		return err
	})
	if s.ItemRatesPath != "" {
		g.Go(func() error {
			var err error
			itemRates, err = ReadCSVFile(s.ItemRatesPath, s.Delimiter)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch, err := normalize(s.Name(), cat, locations, itemRates)
	if err != nil {
		return nil, err
	}

	snap, _, err := NewPipeline(s.Strict, s.Logger).Build(ctx, batch)
	return snap, err
}

func (s *FileSource) loadCatalog() (*catalog.Catalog, error) {
	if s.CatalogPath == "" {
		return catalog.Default(s.Model), nil
	}
	return catalog.LoadFile(s.CatalogPath)
}

// normalize runs both normalizers over fetched tables
func normalize(source string, cat *catalog.Catalog, locations, itemRates *RawTable) (*Batch, error) {
	locBatch, err := NewLocationNormalizer(cat.Origins()).Normalize(locations)
	if err != nil {
		return nil, err
	}

	batch := &Batch{Source: source, Catalog: cat, Locations: locBatch}
	if itemRates != nil {
		items, warnings, err := NewItemRateNormalizer().Normalize(itemRates)
		if err != nil {
			return nil, err
		}
		batch.Items = items
		batch.Warnings = append(batch.Warnings, warnings...)
	}
	return batch, nil
}
