package calculator

import (
	"sort"
	"strings"

	"shipping-cost/core/catalog"
	"shipping-cost/core/location"
	"shipping-cost/core/types"
	"shipping-cost/internal/errors"
)

// Options configures a Calculator
type Options struct {
	// Model overrides the catalog's model when set
	Model catalog.Model

	// FreeRadius applies to the flat model; empty means WaiveOrder
	FreeRadius FreeRadiusPolicy
}

// ParseFreeRadiusPolicy parses a policy name; empty selects WaiveOrder
func ParseFreeRadiusPolicy(s string) (FreeRadiusPolicy, error) {
	switch FreeRadiusPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", WaiveOrder:
		return WaiveOrder, nil
	case WaiveDelivery:
		return WaiveDelivery, nil
	default:
		return "", errors.Newf(errors.TypeConfig, "unknown free radius policy %q (use waive_order or waive_delivery)", s)
	}
}

// Calculator computes quotes. It holds only configuration and is safe for
// concurrent use.
type Calculator struct {
	opts Options
}

// New creates a calculator
func New(opts Options) *Calculator {
	if opts.FreeRadius == "" {
		opts.FreeRadius = WaiveOrder
	}
	return &Calculator{opts: opts}
}

// Compute prices a request with the default options
func Compute(req types.Request, cat *catalog.Catalog, tbl *location.Table) (*types.Result, error) {
	return New(Options{}).Compute(req, cat, tbl)
}

// Compute prices a request. On error no partial result is returned.
func (c *Calculator) Compute(req types.Request, cat *catalog.Catalog, tbl *location.Table) (*types.Result, error) {
	calc := c.Run(req, cat, tbl)
	if calc.State == StateRejected {
		return nil, calc.Err
	}
	return calc.Result, nil
}

// Run drives a calculation through its states and returns it in either
// StateComputed or StateRejected.
func (c *Calculator) Run(req types.Request, cat *catalog.Catalog, tbl *location.Table) *Calculation {
	calc := &Calculation{State: StateAwaitingInput, Request: req}

	if cat == nil || tbl == nil {
		calc.State, calc.Err = StateRejected, errors.Internal("calculation requires a catalog and a zone table", nil)
		return calc
	}
	model := c.ModelFor(cat)
	if err := calc.validate(cat, tbl, model.Name()); err != nil {
		calc.State, calc.Err = StateRejected, err
		return calc
	}
	calc.State = StateValidated

	calc.Result = model.Price(calc, cat)
	calc.State = StateComputed
	return calc
}

// ModelFor returns the pricing model used for a catalog
func (c *Calculator) ModelFor(cat *catalog.Catalog) Model {
	name := c.opts.Model
	if name == "" {
		name = cat.Model
	}
	if name == catalog.ModelFlat {
		return FlatModel{FreeRadius: c.opts.FreeRadius}
	}
	return DistanceModel{}
}

// OriginQuote is one origin's outcome in a comparison
type OriginQuote struct {
	Origin   types.Origin  `json:"origin"`
	Result   *types.Result `json:"result"`
	Cheapest bool          `json:"cheapest"`
}

// CompareOrigins prices the request from every catalog origin, cheapest
// first. Validation does not depend on the origin, so the first rejection
// rejects the whole comparison.
func (c *Calculator) CompareOrigins(req types.Request, cat *catalog.Catalog, tbl *location.Table) ([]OriginQuote, error) {
	var quotes []OriginQuote
	for _, o := range cat.Origins() {
		r := req
		r.Origin = o.ID
		res, err := c.Compute(r, cat, tbl)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, OriginQuote{Origin: o, Result: res})
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Result.FinalCost.LessThan(quotes[j].Result.FinalCost)
	})

	if len(quotes) > 0 {
		best := quotes[0].Result.FinalCost
		for i := range quotes {
			quotes[i].Cheapest = quotes[i].Result.FinalCost.Equal(best)
		}
	}
	return quotes, nil
}
