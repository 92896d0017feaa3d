// Package calculator computes shipping quotes from an immutable catalog and
// zone table. Every computation is a pure function of its inputs: no I/O,
// no logging, no shared mutable state.
package calculator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shipping-cost/core/catalog"
	"shipping-cost/core/location"
	"shipping-cost/core/types"
	"shipping-cost/internal/errors"
)

// State is the lifecycle state of a calculation
type State int

const (
	StateAwaitingInput State = iota
	StateValidated
	StateComputed
	StateRejected
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateValidated:
		return "validated"
	case StateComputed:
		return "computed"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Line is a selected cart line with its resolved pricing
type Line struct {
	Item     *types.ItemCategory
	Quantity int
	Service  *types.Service
	Rate     types.RateInfo
}

// qty returns the quantity as a decimal
func (l Line) qty() decimal.Decimal {
	return decimal.NewFromInt(int64(l.Quantity))
}

// Calculation carries one request through validation and pricing
type Calculation struct {
	State    State
	Request  types.Request
	Origin   types.Origin
	Location location.Resolved
	Service  *types.Service
	Lines    []Line
	Result   *types.Result
	Err      error
}

// validate moves the calculation from AwaitingInput to Validated, or to
// Rejected with the first violation found. A rate the active model prices
// with must be positive: zero or absent means unavailable, never free.
func (c *Calculation) validate(cat *catalog.Catalog, tbl *location.Table, model catalog.Model) error {
	req := c.Request

	origin, ok := cat.Origin(req.Origin)
	if !ok {
		return errors.NotFound("origin", string(req.Origin))
	}
	c.Origin = origin

	loc, err := tbl.Resolve(req.City, req.PostalCode, origin.ID)
	if err != nil {
		return err
	}
	c.Location = loc

	svc, ok := cat.Service(req.Service)
	if !ok {
		return errors.NotFound("service", string(req.Service))
	}
	if !cat.ServiceAllowedIn(svc, loc.Zone) {
		return errors.ServiceNotAllowed(svc.Label, string(loc.Zone), string(cat.PrivilegedZone))
	}
	c.Service = svc

	for _, cl := range req.Cart {
		if cl.Quantity < 0 {
			return errors.Newf(errors.TypeInput, "quantity for %s must not be negative", cl.Item).WithItem(cl.Item)
		}
		if cl.Quantity == 0 {
			continue
		}

		item, ok := cat.Item(cl.Item)
		if !ok {
			return errors.NotFound("item", cl.Item).WithItem(cl.Item)
		}

		lineSvc := svc
		if cl.Service != "" {
			if lineSvc, ok = cat.Service(cl.Service); !ok {
				return errors.NotFound("service", string(cl.Service)).WithItem(item.ID)
			}
			if !cat.ServiceAllowedIn(lineSvc, loc.Zone) {
				return errors.ServiceNotAllowed(lineSvc.Label, string(loc.Zone), string(cat.PrivilegedZone)).WithItem(item.ID)
			}
		}

		rate, err := cat.RateFor(item.ID, lineSvc.Type)
		if err != nil {
			if lineSvc.Installation && errors.IsType(err, errors.TypeUnavailableRate) {
				return errors.ItemNotInstallable(item.ID, string(lineSvc.Type))
			}
			return err
		}
		if err := checkPricedRate(item.ID, lineSvc, rate, model); err != nil {
			return err
		}

		c.Lines = append(c.Lines, Line{Item: item, Quantity: cl.Quantity, Service: lineSvc, Rate: rate})
	}

	if len(c.Lines) == 0 {
		return errors.Input("cart has no items with a quantity above zero")
	}
	return nil
}

// checkPricedRate rejects a line whose rate for the active model is not positive
func checkPricedRate(item string, svc *types.Service, rate types.RateInfo, model catalog.Model) error {
	switch model {
	case catalog.ModelFlat:
		if rate.FlatRate.IsPositive() {
			return nil
		}
		if svc.Installation {
			return errors.ItemNotInstallable(item, string(svc.Type))
		}
		return errors.UnavailableRate(item, string(svc.Type))
	default:
		if rate.PerKmRate.IsPositive() {
			return nil
		}
		return errors.Newf(errors.TypeUnavailableRate, "no per-km rate configured for item %s", item).
			WithItem(item).
			WithContext("service", string(svc.Type))
	}
}

// withinFreeRadius reports whether the whole distance is waived
func (c *Calculation) withinFreeRadius() bool {
	return c.Location.Distance.LessThanOrEqual(c.Origin.FreeKm)
}

// newResult fills the request-derived fields of a result
func (c *Calculation) newResult(cat *catalog.Catalog, model catalog.Model) *types.Result {
	return &types.Result{
		ID:         resultID(c),
		Origin:     c.Origin.ID,
		City:       c.Location.Destination.City,
		PostalCode: c.Location.Destination.PostalCode,
		Zone:       c.Location.Zone,
		Service:    c.Service.Type,
		Model:      string(model),
		Distance:   c.Location.Distance,
		MinCharge:  c.Location.MinCharge,
		FinalCost:  decimal.Zero,
		Currency:   cat.Currency,
	}
}

// finish totals the breakdown into the final cost
func finish(res *types.Result) {
	total := decimal.Zero
	for _, line := range res.Breakdown {
		total = total.Add(line.Subtotal)
	}
	if total.IsNegative() {
		total = decimal.Zero
	}
	res.FinalCost = total
	res.Explanation = res.Summary()
}

// resultID derives a stable ID from the validated request so that equal
// inputs always produce equal results.
func resultID(c *Calculation) string {
	parts := []string{
		string(c.Origin.ID),
		strings.ToLower(c.Location.Destination.City),
		c.Location.Destination.PostalCode,
		string(c.Service.Type),
	}
	lines := make([]string, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, fmt.Sprintf("%s:%d:%s", l.Item.ID, l.Quantity, l.Service.Type))
	}
	sort.Strings(lines)
	parts = append(parts, lines...)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(parts, "|"))).String()
}
