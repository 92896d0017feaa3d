// Package ingestion - Snapshot ingestion pipeline
// Strictly separated from calculation: fetch → normalize → validate → build
package ingestion

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"shipping-cost/core/catalog"
	"shipping-cost/core/snapshot"
	"shipping-cost/core/types"
	"shipping-cost/internal/errors"
	"shipping-cost/internal/logging"
)

// Batch is everything a source fetched and normalized
type Batch struct {
	Source    string
	Catalog   *catalog.Catalog
	Locations *LocationBatch

	// Items replaces the catalog's items when not nil
	Items []types.ItemCategory

	Warnings []string
}

// Pipeline validates batches and builds snapshots from them
type Pipeline struct {
	validator *IngestionValidator
	strict    bool
	logger    *zap.Logger
	now       func() time.Time
}

// NewPipeline creates a pipeline. Strict pipelines reject duplicate
// destinations and build snapshots with strict lookup.
func NewPipeline(strict bool, logger *zap.Logger) *Pipeline {
	contract := DefaultContract()
	contract.RejectDuplicates = strict
	if logger == nil {
		logger = logging.Named("ingestion")
	}
	return &Pipeline{
		validator: NewIngestionValidator(contract),
		strict:    strict,
		logger:    logger,
		now:       time.Now,
	}
}

// Build turns a batch into a sealed snapshot
func (p *Pipeline) Build(ctx context.Context, b *Batch) (*snapshot.Snapshot, *Run, error) {
	run := newRun(b.Source, p.now().UTC())
	log := p.logger.With(zap.String("run_id", run.ID.String()), zap.String("source", b.Source))

	fail := func(err error) (*snapshot.Snapshot, *Run, error) {
		run.finish(RunFailed, p.now().UTC(), err)
		log.Error("ingestion failed", zap.Error(err))
		return nil, run, err
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if b.Catalog == nil {
		return fail(errors.Internal("batch has no catalog", nil))
	}

	if b.Items != nil {
		b.Catalog.ReplaceItems(b.Items)
		if err := b.Catalog.Check(); err != nil {
			return fail(errors.Wrap(errors.TypeConfig, "item rates do not fit the catalog", err))
		}
	}

	validation := p.validator.Validate(b)
	run.Validation = validation
	run.Destinations = validation.Destinations
	run.Items = validation.Items
	if !validation.IsValid {
		return fail(errors.New(errors.TypeConfig, "ingestion contract violated: "+strings.Join(validation.Errors, "; ")))
	}

	var warnings []string
	warnings = append(warnings, b.Warnings...)
	if b.Locations != nil {
		warnings = append(warnings, b.Locations.Warnings...)
	}
	warnings = append(warnings, validation.Warnings...)

	var records []types.Destination
	if b.Locations != nil {
		records = b.Locations.Records
	}

	snap := snapshot.New(b.Catalog, records, snapshot.Options{
		Source:   b.Source,
		Strict:   p.strict,
		Warnings: warnings,
		LoadedAt: p.now().UTC(),
	})
	run.Checksum = snap.ContentHash
	run.finish(RunCompleted, p.now().UTC(), nil)

	for _, w := range warnings {
		log.Warn(w)
	}
	log.Info("ingestion completed",
		zap.String("snapshot_id", string(snap.ID)),
		zap.Int("destinations", run.Destinations),
		zap.Int("items", run.Items),
		zap.Int("warnings", len(warnings)))

	return snap, run, nil
}
