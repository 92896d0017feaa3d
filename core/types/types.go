// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OriginID identifies a warehouse shipments depart from
type OriginID string

// String returns the string representation
func (o OriginID) String() string {
	return string(o)
}

// Origin is a fixed warehouse location
type Origin struct {
	// ID is the catalog key (e.g. "banjaran")
	ID OriginID `json:"id"`

	// Name is the display name (e.g. "Bekasi/Kalimalang")
	Name string `json:"name"`

	// FreeKm is the distance waived from distance-based charging
	FreeKm decimal.Decimal `json:"free_km"`

	// DistanceColumn names the zone-table column holding distances from this origin
	DistanceColumn string `json:"distance_column,omitempty"`

	// MinChargeColumn names the zone-table column holding minimum charges from this origin
	MinChargeColumn string `json:"min_charge_column,omitempty"`
}

// ZoneTag is a coarse eligibility class on a destination ("ZONE 1")
type ZoneTag string

// String returns the string representation
func (z ZoneTag) String() string {
	return string(z)
}

// NormalizeZone canonicalizes a raw zone label: trimmed, upper-cased,
// single-spaced.
func NormalizeZone(raw string) ZoneTag {
	return ZoneTag(strings.Join(strings.Fields(strings.ToUpper(raw)), " "))
}

// Destination is one row of the zone table
type Destination struct {
	City       string                       `json:"city"`
	PostalCode string                       `json:"postal_code"`
	Distances  map[OriginID]decimal.Decimal `json:"distances"`
	MinCharges map[OriginID]decimal.Decimal `json:"min_charges"`
	Zone       ZoneTag                      `json:"zone,omitempty"`
}

// DistanceFrom returns the distance in km from an origin, zero when unknown
func (d *Destination) DistanceFrom(origin OriginID) decimal.Decimal {
	if v, ok := d.Distances[origin]; ok && v.IsPositive() {
		return v
	}
	return decimal.Zero
}

// MinChargeFrom returns the minimum charge from an origin, zero meaning no floor
func (d *Destination) MinChargeFrom(origin OriginID) decimal.Decimal {
	if v, ok := d.MinCharges[origin]; ok && v.IsPositive() {
		return v
	}
	return decimal.Zero
}

// ServiceType identifies a delivery service tier
type ServiceType string

const (
	// ServiceStandard is the plain delivery tier, available everywhere
	ServiceStandard ServiceType = "standard"
)

// String returns the string representation
func (s ServiceType) String() string {
	return string(s)
}

// Service describes a delivery service tier
type Service struct {
	Type  ServiceType `json:"type"`
	Label string      `json:"label"`

	// Fee is a flat charge per shipment
	Fee decimal.Decimal `json:"fee"`

	// Restricted services are only offered in the privileged zone
	Restricted bool `json:"restricted"`

	// RequiresRate services need a non-zero per-item rate
	RequiresRate bool `json:"requires_rate"`

	// Installation marks install tiers; missing rates mean "not installable"
	Installation bool `json:"installation"`
}

// ItemCategory is a catalog entry for a kind of good
type ItemCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// PerKmRate is charged per billable km (distance model)
	PerKmRate decimal.Decimal `json:"per_km_rate"`

	// HandlingFee is a flat charge per unit
	HandlingFee decimal.Decimal `json:"handling_fee"`

	// ServiceRates holds flat per-unit rates keyed by service tier
	ServiceRates map[ServiceType]decimal.Decimal `json:"service_rates,omitempty"`
}

// RateInfo is the resolved pricing of one item for one service
type RateInfo struct {
	Item        string          `json:"item"`
	Service     ServiceType     `json:"service"`
	PerKmRate   decimal.Decimal `json:"per_km_rate"`
	FlatRate    decimal.Decimal `json:"flat_rate"`
	HandlingFee decimal.Decimal `json:"handling_fee"`
}
