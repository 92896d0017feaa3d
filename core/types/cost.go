// Package types - Quote request and result types
package types

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code
type Currency string

const (
	CurrencyIDR Currency = "IDR"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Method identifies which branch of a calculation produced the final cost
type Method string

const (
	MethodFree           Method = "FREE"
	MethodDistanceCharge Method = "DISTANCE_CHARGE"
	MethodMinimumCharge  Method = "MINIMUM_CHARGE"
	MethodItemRateTotal  Method = "ITEM_RATE_TOTAL"
)

// String returns the string representation
func (m Method) String() string {
	return string(m)
}

// CartLine is one requested item
type CartLine struct {
	// Item is the item category ID
	Item string `json:"item"`

	// Quantity of 0 means "not selected"
	Quantity int `json:"quantity"`

	// Service overrides the request's service for this line
	Service ServiceType `json:"service,omitempty"`
}

// Request is a single quote request
type Request struct {
	Origin     OriginID    `json:"origin"`
	City       string      `json:"city,omitempty"`
	PostalCode string      `json:"postal_code"`
	Service    ServiceType `json:"service,omitempty"`
	Cart       []CartLine  `json:"cart"`
}

// BreakdownLine is one priced component of a result
type BreakdownLine struct {
	Component string          `json:"component"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Result is a computed quote
type Result struct {
	ID          string          `json:"id"`
	Origin      OriginID        `json:"origin"`
	City        string          `json:"city"`
	PostalCode  string          `json:"postal_code"`
	Zone        ZoneTag         `json:"zone"`
	Service     ServiceType     `json:"service"`
	Model       string          `json:"model"`
	Distance    decimal.Decimal `json:"distance_km"`
	MinCharge   decimal.Decimal `json:"min_charge"`
	Method      Method          `json:"method"`
	FinalCost   decimal.Decimal `json:"final_cost"`
	Currency    Currency        `json:"currency"`
	Breakdown   []BreakdownLine `json:"breakdown"`
	Explanation string          `json:"explanation"`
	SnapshotID  string          `json:"snapshot_id,omitempty"`
}

// Add appends a breakdown line
func (r *Result) Add(component string, unitPrice, quantity decimal.Decimal) {
	r.Breakdown = append(r.Breakdown, BreakdownLine{
		Component: component,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Subtotal:  unitPrice.Mul(quantity),
	})
}

// Summary renders the breakdown as human readable text
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s %s (%s km, %s)\n", r.Origin, r.City, r.PostalCode, r.Distance.String(), r.Zone)
	for _, line := range r.Breakdown {
		fmt.Fprintf(&b, "  %-32s %12s x %-6s = %s\n",
			line.Component, line.UnitPrice.StringFixed(0), line.Quantity.String(), line.Subtotal.StringFixed(0))
	}
	fmt.Fprintf(&b, "  %s: %s %s", r.Method, r.FinalCost.StringFixed(0), r.Currency)
	return b.String()
}
