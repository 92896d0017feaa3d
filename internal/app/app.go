// Package app wires configuration into snapshot sources, caches and
// calculators for the CLI and the server.
package app

import (
	"shipping-cost/core/calculator"
	"shipping-cost/core/catalog"
	"shipping-cost/core/snapshot"
	"shipping-cost/db/ingestion"
	"shipping-cost/internal/config"
	"shipping-cost/internal/logging"
)

// NewSource builds the snapshot source described by cfg: PostgreSQL when a
// DSN is configured, the CSV exports otherwise. The returned close function
// releases the database pool.
func NewSource(cfg *config.Config) (snapshot.Source, func() error, error) {
	model, err := catalog.ParseModel(cfg.Calculator.Model)
	if err != nil {
		return nil, nil, err
	}

	if dsn := cfg.Locations.PostgresDSN; dsn != "" {
		db, err := ingestion.OpenPostgres(dsn)
		if err != nil {
			return nil, nil, err
		}
		return &ingestion.PostgresSource{
			DB:          db,
			CatalogPath: cfg.Catalog.Path,
			Model:       model,
			Strict:      cfg.Locations.StrictLookup,
			Logger:      logging.Named("ingestion"),
		}, db.Close, nil
	}

	return &ingestion.FileSource{
		CatalogPath:   cfg.Catalog.Path,
		Model:         model,
		LocationsPath: cfg.Locations.CSVPath,
		ItemRatesPath: cfg.Catalog.ItemRatesCSV,
		Delimiter:     cfg.Locations.Delimiter,
		Strict:        cfg.Locations.StrictLookup,
		Logger:        logging.Named("ingestion"),
	}, func() error { return nil }, nil
}

// NewCalculator builds a calculator from the calculator config section
func NewCalculator(cfg *config.Config) (*calculator.Calculator, error) {
	var model catalog.Model
	if cfg.Calculator.Model != "" {
		m, err := catalog.ParseModel(cfg.Calculator.Model)
		if err != nil {
			return nil, err
		}
		model = m
	}
	policy, err := calculator.ParseFreeRadiusPolicy(cfg.Calculator.FreeRadiusPolicy)
	if err != nil {
		return nil, err
	}
	return calculator.New(calculator.Options{Model: model, FreeRadius: policy}), nil
}

// NewCache wraps a source in a cache using the snapshot config section
func NewCache(cfg *config.Config, src snapshot.Source) *snapshot.Cache {
	return snapshot.NewCache(src, snapshot.Policy{
		TTL:            cfg.Snapshot.TTL(),
		MaxStale:       cfg.Snapshot.MaxStale(),
		RefreshTimeout: cfg.Snapshot.RefreshTimeout(),
	}, logging.Named("snapshot"))
}
