package location

import (
	"github.com/shopspring/decimal"

	"shipping-cost/core/types"
)

// OriginOption is one origin's figures for a destination
type OriginOption struct {
	Origin    types.Origin    `json:"origin"`
	Distance  decimal.Decimal `json:"distance_km"`
	MinCharge decimal.Decimal `json:"min_charge"`
	Cheapest  bool            `json:"cheapest"`
	Closest   bool            `json:"closest"`
}

// Comparison lists every origin's distance and minimum charge for one
// destination, marking the cheapest and closest origins.
type Comparison struct {
	Destination types.Destination `json:"destination"`
	Zone        types.ZoneTag     `json:"zone"`
	Options     []OriginOption    `json:"options"`
}

// Compare builds a Comparison. Only origins with a non-zero minimum charge
// compete for cheapest and only origins with a non-zero distance compete for
// closest. Ties mark every tied origin.
func (t *Table) Compare(city, postalCode string, origins []types.Origin) (*Comparison, error) {
	d, err := t.Lookup(city, postalCode)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{Destination: *d, Zone: t.ZoneOf(d)}
	var (
		minCost  decimal.Decimal
		minDist  decimal.Decimal
		haveCost bool
		haveDist bool
	)
	for _, o := range origins {
		r := t.resolve(d, o.ID)
		cmp.Options = append(cmp.Options, OriginOption{Origin: o, Distance: r.Distance, MinCharge: r.MinCharge})

		if r.MinCharge.IsPositive() && (!haveCost || r.MinCharge.LessThan(minCost)) {
			minCost, haveCost = r.MinCharge, true
		}
		if r.Distance.IsPositive() && (!haveDist || r.Distance.LessThan(minDist)) {
			minDist, haveDist = r.Distance, true
		}
	}

	for i := range cmp.Options {
		opt := &cmp.Options[i]
		opt.Cheapest = haveCost && opt.MinCharge.Equal(minCost)
		opt.Closest = haveDist && opt.Distance.Equal(minDist)
	}
	return cmp, nil
}
