// Package ingestion - Zone table and item-rate normalizers
// Converts loosely formatted exports into strict domain types. Nothing
// downstream of this file guesses at column names or cell formats.
package ingestion

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"shipping-cost/core/types"
	"shipping-cost/internal/errors"
)

var (
	cityColumns   = []string{"city", "kota", "kabupaten_kota"}
	postalColumns = []string{"postal_code", "postal", "kode_pos", "zip"}
	zoneColumns   = []string{"zone_category", "zone", "zona"}
)

// LocationBatch is the normalized zone table
type LocationBatch struct {
	Records  []types.Destination
	Skipped  int
	Warnings []string
}

// LocationNormalizer normalizes zone-table exports. Origins name the
// distance and minimum-charge columns to read.
type LocationNormalizer struct {
	Origins []types.Origin
}

// NewLocationNormalizer creates a normalizer for the given origins
func NewLocationNormalizer(origins []types.Origin) *LocationNormalizer {
	return &LocationNormalizer{Origins: origins}
}

type originColumns struct {
	origin    types.OriginID
	distance  int
	minCharge int
}

// Normalize converts raw rows to destinations. Malformed cells become zero
// with a warning; rows too short to hold every origin column are skipped.
func (n *LocationNormalizer) Normalize(raw *RawTable) (*LocationBatch, error) {
	cityCol := firstColumn(raw, cityColumns)
	postalCol := firstColumn(raw, postalColumns)
	if cityCol < 0 || postalCol < 0 {
		return nil, errors.Newf(errors.TypeParsing, "%s: header must contain city and postal_code columns", raw.Name)
	}
	zoneCol := firstColumn(raw, zoneColumns)

	batch := &LocationBatch{}
	required := max(cityCol, postalCol)

	var cols []originColumns
	for _, o := range n.Origins {
		oc := originColumns{
			origin:    o.ID,
			distance:  raw.Column(o.DistanceColumn),
			minCharge: raw.Column(o.MinChargeColumn),
		}
		if oc.distance < 0 {
			return nil, errors.Newf(errors.TypeParsing, "%s: missing distance column %q for origin %s",
				raw.Name, CanonicalHeader(o.DistanceColumn), o.ID)
		}
		if oc.minCharge < 0 {
			batch.Warnings = append(batch.Warnings, fmt.Sprintf("%s: no minimum charge column %q for origin %s",
				raw.Name, CanonicalHeader(o.MinChargeColumn), o.ID))
		}
		required = max(required, oc.distance, oc.minCharge)
		cols = append(cols, oc)
	}

	firstRow := make(map[string]int)
	for i, row := range raw.Rows {
		line := i + 2
		if len(row) <= required {
			batch.Skipped++
			continue
		}

		d := types.Destination{
			City:       strings.TrimSpace(row[cityCol]),
			PostalCode: strings.TrimSpace(row[postalCol]),
			Distances:  make(map[types.OriginID]decimal.Decimal, len(cols)),
			MinCharges: make(map[types.OriginID]decimal.Decimal, len(cols)),
		}
		if d.PostalCode == "" {
			batch.Skipped++
			batch.Warnings = append(batch.Warnings, fmt.Sprintf("%s:%d: empty postal code", raw.Name, line))
			continue
		}

		var zoneFromMinCharge string
		for _, oc := range cols {
			dist, err := ParseDistance(row[oc.distance])
			if err != nil || dist.IsNegative() {
				batch.Warnings = append(batch.Warnings, fmt.Sprintf("%s:%d: invalid distance %q for %s, using 0",
					raw.Name, line, row[oc.distance], oc.origin))
				dist = decimal.Zero
			}
			d.Distances[oc.origin] = dist

			if oc.minCharge < 0 {
				continue
			}
			cell := row[oc.minCharge]
			// some exports put the zone tag in the minimum charge column
			if IsZoneLabel(cell) {
				if zoneFromMinCharge == "" {
					zoneFromMinCharge = cell
				}
				d.MinCharges[oc.origin] = decimal.Zero
				continue
			}
			minCharge, err := ParseAmount(cell)
			if err != nil || minCharge.IsNegative() {
				batch.Warnings = append(batch.Warnings, fmt.Sprintf("%s:%d: invalid minimum charge %q for %s, using 0",
					raw.Name, line, cell, oc.origin))
				minCharge = decimal.Zero
			}
			d.MinCharges[oc.origin] = minCharge
		}

		if zoneCol >= 0 && zoneCol < len(row) {
			d.Zone = types.NormalizeZone(row[zoneCol])
		}
		if d.Zone == "" {
			d.Zone = types.NormalizeZone(zoneFromMinCharge)
		}

		key := strings.ToLower(d.City) + "|" + d.PostalCode
		if prev, ok := firstRow[key]; ok {
			batch.Warnings = append(batch.Warnings, fmt.Sprintf("%s:%d: duplicate destination %s %s (first seen on line %d)",
				raw.Name, line, d.City, d.PostalCode, prev))
		} else {
			firstRow[key] = line
		}

		batch.Records = append(batch.Records, d)
	}

	if batch.Skipped > 0 {
		batch.Warnings = append(batch.Warnings, fmt.Sprintf("%s: skipped %d short or incomplete rows", raw.Name, batch.Skipped))
	}
	return batch, nil
}

// ItemRateNormalizer normalizes item-rate exports with the columns item,
// name, per_km_rate, handling_fee and one rate_<service> column per service.
type ItemRateNormalizer struct{}

// NewItemRateNormalizer creates an item-rate normalizer
func NewItemRateNormalizer() *ItemRateNormalizer {
	return &ItemRateNormalizer{}
}

// Normalize converts raw rows to item categories. A zero or empty rate cell
// leaves the service unpriced for that item.
func (n *ItemRateNormalizer) Normalize(raw *RawTable) ([]types.ItemCategory, []string, error) {
	itemCol := firstColumn(raw, []string{"item", "id", "item_id"})
	if itemCol < 0 {
		return nil, nil, errors.Newf(errors.TypeParsing, "%s: header must contain an item column", raw.Name)
	}
	nameCol := raw.Column("name")
	perKmCol := raw.Column("per_km_rate")
	handlingCol := raw.Column("handling_fee")

	rateCols := make(map[types.ServiceType]int)
	for i, h := range raw.Header {
		if svc, ok := strings.CutPrefix(h, "rate_"); ok && svc != "" {
			rateCols[types.ServiceType(svc)] = i
		}
	}

	var (
		items    []types.ItemCategory
		warnings []string
	)
	for i, row := range raw.Rows {
		line := i + 2
		id := cell(row, itemCol)
		if id == "" {
			warnings = append(warnings, fmt.Sprintf("%s:%d: empty item, row skipped", raw.Name, line))
			continue
		}

		it := types.ItemCategory{
			ID:           id,
			Name:         cell(row, nameCol),
			ServiceRates: make(map[types.ServiceType]decimal.Decimal),
		}

		var err error
		if it.PerKmRate, err = ParseAmount(cell(row, perKmCol)); err != nil {
			return nil, warnings, errors.Wrap(errors.TypeParsing, fmt.Sprintf("%s:%d: per_km_rate", raw.Name, line), err).WithItem(id)
		}
		if it.HandlingFee, err = ParseAmount(cell(row, handlingCol)); err != nil {
			return nil, warnings, errors.Wrap(errors.TypeParsing, fmt.Sprintf("%s:%d: handling_fee", raw.Name, line), err).WithItem(id)
		}
		for svc, col := range rateCols {
			rate, err := ParseAmount(cell(row, col))
			if err != nil {
				return nil, warnings, errors.Wrap(errors.TypeParsing, fmt.Sprintf("%s:%d: rate_%s", raw.Name, line, svc), err).WithItem(id)
			}
			if !rate.IsZero() {
				it.ServiceRates[svc] = rate
			}
		}
		items = append(items, it)
	}
	return items, warnings, nil
}

func firstColumn(raw *RawTable, names []string) int {
	for _, name := range names {
		if i := raw.Column(name); i >= 0 {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
