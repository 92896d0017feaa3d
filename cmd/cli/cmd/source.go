package cmd

import (
	"context"

	"shipping-cost/core/output"
	"shipping-cost/core/snapshot"
	"shipping-cost/internal/app"
	"shipping-cost/internal/config"
)

// loadSnapshot loads one snapshot for a single CLI invocation
func loadSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	cfg := config.Get()
	src, closeSource, err := app.NewSource(cfg)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	return app.NewCache(cfg, src).Get(ctx)
}

func formatter() (output.Formatter, error) {
	return output.New(outputFormat, output.Options{NoColor: noColor})
}
