// Package ingestion - Ingestion governance and validation
package ingestion

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"shipping-cost/core/catalog"
	"shipping-cost/core/types"
)

// IngestionContract defines what a batch must satisfy before it becomes a
// snapshot
type IngestionContract struct {
	// MinDestinations is the smallest acceptable zone table
	MinDestinations int

	// MaxSkippedRatio rejects exports where too many rows were unreadable
	MaxSkippedRatio float64

	// RejectDuplicates fails on repeated (city, postal code) pairs instead
	// of warning
	RejectDuplicates bool
}

// DefaultContract returns the default ingestion contract
func DefaultContract() IngestionContract {
	return IngestionContract{
		MinDestinations: 1,
		MaxSkippedRatio: 0.5,
	}
}

// RunStatus represents the state of an ingestion run
type RunStatus string

const (
	RunStarted   RunStatus = "started"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run tracks one ingestion
type Run struct {
	ID           uuid.UUID         `json:"id"`
	Source       string            `json:"source"`
	Status       RunStatus         `json:"status"`
	Destinations int               `json:"destinations"`
	Items        int               `json:"items"`
	Checksum     string            `json:"checksum,omitempty"`
	Validation   *ValidationResult `json:"validation,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
	StartedAt    time.Time         `json:"started_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

func newRun(source string, now time.Time) *Run {
	return &Run{
		ID:        uuid.New(),
		Source:    source,
		Status:    RunStarted,
		StartedAt: now,
	}
}

func (r *Run) finish(status RunStatus, now time.Time, err error) {
	r.Status = status
	r.CompletedAt = &now
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// IngestionValidator validates batches against a contract
type IngestionValidator struct {
	contract IngestionContract
}

// NewIngestionValidator creates a validator
func NewIngestionValidator(contract IngestionContract) *IngestionValidator {
	return &IngestionValidator{contract: contract}
}

// ValidationResult contains validation outcome
type ValidationResult struct {
	IsValid      bool     `json:"is_valid"`
	Destinations int      `json:"destinations"`
	Skipped      int      `json:"skipped"`
	Items        int      `json:"items"`
	Duplicates   []string `json:"duplicates,omitempty"`
	UnknownZones []string `json:"unknown_zones,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.IsValid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks a batch. The catalog must already hold its final items.
func (v *IngestionValidator) Validate(b *Batch) *ValidationResult {
	result := &ValidationResult{IsValid: true}
	cat := b.Catalog

	var records []types.Destination
	if b.Locations != nil {
		records = b.Locations.Records
		result.Skipped = b.Locations.Skipped
	}
	result.Destinations = len(records)
	result.Items = len(cat.Items())

	if len(records) < v.contract.MinDestinations {
		result.fail("zone table has %d destinations, need at least %d", len(records), v.contract.MinDestinations)
	}
	if total := len(records) + result.Skipped; total > 0 && v.contract.MaxSkippedRatio > 0 {
		if ratio := float64(result.Skipped) / float64(total); ratio > v.contract.MaxSkippedRatio {
			result.fail("%d of %d zone table rows were skipped", result.Skipped, total)
		}
	}

	seen := make(map[string]int)
	zones := make(map[types.ZoneTag]bool)
	noDistance := 0
	for _, d := range records {
		key := strings.ToLower(d.City) + "|" + d.PostalCode
		seen[key]++
		if seen[key] == 2 {
			result.Duplicates = append(result.Duplicates, key)
		}

		if d.Zone != "" && d.Zone != cat.PrivilegedZone && d.Zone != cat.FallbackZone && !zones[d.Zone] {
			zones[d.Zone] = true
			result.UnknownZones = append(result.UnknownZones, string(d.Zone))
		}

		hasDistance := false
		for _, dist := range d.Distances {
			if dist.IsPositive() {
				hasDistance = true
				break
			}
		}
		if !hasDistance {
			noDistance++
		}
	}
	sort.Strings(result.Duplicates)
	sort.Strings(result.UnknownZones)

	if len(result.Duplicates) > 0 {
		if v.contract.RejectDuplicates {
			result.fail("duplicate destinations: %s", strings.Join(result.Duplicates, ", "))
		} else {
			result.warn("%d duplicate destinations, first record wins: %s",
				len(result.Duplicates), strings.Join(result.Duplicates, ", "))
		}
	}
	for _, z := range result.UnknownZones {
		result.warn("zone %q is neither %s nor %s and is treated as non-privileged", z, cat.PrivilegedZone, cat.FallbackZone)
	}
	if noDistance > 0 {
		result.warn("%d destinations have no distance from any origin and are always within the free radius", noDistance)
	}

	for _, it := range cat.Items() {
		if cat.Model == catalog.ModelDistance && !it.PerKmRate.IsPositive() {
			result.warn("item %s has no per_km_rate", it.ID)
		}
		if cat.Model == catalog.ModelFlat && len(it.ServiceRates) == 0 {
			result.warn("item %s has no service rates", it.ID)
		}
	}
	if result.Items == 0 {
		result.warn("catalog has no items")
	}

	return result
}
