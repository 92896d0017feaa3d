// Package location resolves destination postal codes to distance,
// minimum-charge and zone figures for a given origin.
package location

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"shipping-cost/core/types"
	"shipping-cost/internal/errors"
)

// DefaultSearchLimit caps the listing returned for an empty search term
const DefaultSearchLimit = 50

// Resolved is a destination as seen from one origin
type Resolved struct {
	Destination *types.Destination `json:"destination"`
	Origin      types.OriginID     `json:"origin"`
	Distance    decimal.Decimal    `json:"distance_km"`
	MinCharge   decimal.Decimal    `json:"min_charge"`
	Zone        types.ZoneTag      `json:"zone"`
}

// Options configures lookup behaviour
type Options struct {
	// Strict rejects lookups matching more than one record. Otherwise the
	// first record in table order wins.
	Strict bool

	// FallbackZone is assigned to records without a zone tag
	FallbackZone types.ZoneTag
}

// Table is an immutable zone table indexed for lookup
type Table struct {
	records  []types.Destination
	byKey    map[string][]int
	byPostal map[string][]int
	opts     Options
}

// NewTable indexes destination records. The slice is copied.
func NewTable(records []types.Destination, opts Options) *Table {
	t := &Table{
		records:  make([]types.Destination, len(records)),
		byKey:    make(map[string][]int),
		byPostal: make(map[string][]int),
		opts:     opts,
	}
	copy(t.records, records)

	for i := range t.records {
		d := &t.records[i]
		postal := normalizePostal(d.PostalCode)
		key := recordKey(d.City, d.PostalCode)
		t.byKey[key] = append(t.byKey[key], i)
		t.byPostal[postal] = append(t.byPostal[postal], i)
	}
	return t
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns a copy of all records in table order
func (t *Table) Records() []types.Destination {
	result := make([]types.Destination, len(t.records))
	copy(result, t.records)
	return result
}

// Duplicates returns the (city, postal code) keys that occur more than once
func (t *Table) Duplicates() []string {
	var dups []string
	for key, idx := range t.byKey {
		if len(idx) > 1 {
			dups = append(dups, key)
		}
	}
	sort.Strings(dups)
	return dups
}

// Lookup finds the destination record for a city and postal code. An empty
// city matches the postal code in any city.
func (t *Table) Lookup(city, postalCode string) (*types.Destination, error) {
	var matches []int
	if strings.TrimSpace(city) == "" {
		matches = t.byPostal[normalizePostal(postalCode)]
	} else {
		matches = t.byKey[recordKey(city, postalCode)]
	}

	label := strings.TrimSpace(postalCode)
	if c := strings.TrimSpace(city); c != "" {
		label = c + " " + label
	}

	switch {
	case len(matches) == 0:
		return nil, errors.NotFound("destination", label)
	case len(matches) > 1 && t.opts.Strict:
		return nil, errors.Ambiguous(label, len(matches))
	}
	return &t.records[matches[0]], nil
}

// Resolve maps a destination to distance, minimum charge and zone for an
// origin. Missing figures resolve to zero; a missing zone resolves to the
// fallback zone.
func (t *Table) Resolve(city, postalCode string, origin types.OriginID) (Resolved, error) {
	d, err := t.Lookup(city, postalCode)
	if err != nil {
		return Resolved{}, err
	}
	return t.resolve(d, origin), nil
}

func (t *Table) resolve(d *types.Destination, origin types.OriginID) Resolved {
	return Resolved{
		Destination: d,
		Origin:      origin,
		Distance:    d.DistanceFrom(origin),
		MinCharge:   d.MinChargeFrom(origin),
		Zone:        t.ZoneOf(d),
	}
}

// ZoneOf returns a record's zone or the fallback zone
func (t *Table) ZoneOf(d *types.Destination) types.ZoneTag {
	if z := types.NormalizeZone(string(d.Zone)); z != "" {
		return z
	}
	return t.opts.FallbackZone
}

// Search returns records whose city or postal code contains term
// (case-insensitive). A limit of zero or less returns every match, except
// that an empty term lists at most DefaultSearchLimit records.
func (t *Table) Search(term string, limit int) []types.Destination {
	term = strings.ToLower(strings.TrimSpace(term))
	if limit <= 0 && term == "" {
		limit = DefaultSearchLimit
	}

	var result []types.Destination
	for _, d := range t.records {
		if limit > 0 && len(result) >= limit {
			break
		}
		if term == "" ||
			strings.Contains(strings.ToLower(d.City), term) ||
			strings.Contains(d.PostalCode, term) {
			result = append(result, d)
		}
	}
	return result
}

func normalizePostal(p string) string {
	return strings.TrimSpace(p)
}

func recordKey(city, postal string) string {
	return strings.Join(strings.Fields(strings.ToLower(city)), " ") + "|" + normalizePostal(postal)
}
