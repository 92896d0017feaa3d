package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"shipping-cost/core/catalog"
	"shipping-cost/core/types"
)

// FreeRadiusPolicy decides what a free-radius delivery waives under the
// flat model.
type FreeRadiusPolicy string

const (
	// WaiveOrder makes the whole order free
	WaiveOrder FreeRadiusPolicy = "waive_order"
	// WaiveDelivery bills the item rates and waives only the minimum charge
	WaiveDelivery FreeRadiusPolicy = "waive_delivery"
)

// Model prices a validated calculation
type Model interface {
	Name() catalog.Model
	Price(c *Calculation, cat *catalog.Catalog) *types.Result
}

// DistanceModel charges billable kilometres at the largest per-km rate in the
// cart, floored by the destination's minimum charge, plus per-unit handling,
// service fees and per-item service rates.
type DistanceModel struct{}

// Name implements Model
func (DistanceModel) Name() catalog.Model { return catalog.ModelDistance }

// Price implements Model
func (m DistanceModel) Price(c *Calculation, cat *catalog.Catalog) *types.Result {
	res := c.newResult(cat, m.Name())

	if c.withinFreeRadius() {
		res.Method = types.MethodFree
		res.Add(freeRadiusLabel(c.Origin), decimal.Zero, c.Location.Distance)
		finish(res)
		return res
	}

	// one vehicle is sized to the largest item, so quantities do not matter
	maxRate := decimal.Zero
	maxItem := ""
	for _, l := range c.Lines {
		if l.Rate.PerKmRate.GreaterThan(maxRate) {
			maxRate = l.Rate.PerKmRate
			maxItem = l.Item.Name
		}
	}

	billable := decimal.Max(decimal.Zero, c.Location.Distance.Sub(c.Origin.FreeKm))
	distanceCost := billable.Mul(maxRate)
	minCharge := c.Location.MinCharge

	if minCharge.IsPositive() && minCharge.GreaterThan(distanceCost) {
		res.Method = types.MethodMinimumCharge
		res.Add("minimum charge", minCharge, decimal.NewFromInt(1))
	} else {
		res.Method = types.MethodDistanceCharge
		label := "distance over free radius"
		if maxItem != "" {
			label = fmt.Sprintf("distance over free radius (%s)", maxItem)
		}
		res.Add(label, maxRate, billable)
	}

	for _, l := range c.Lines {
		if l.Rate.HandlingFee.IsPositive() {
			res.Add("handling: "+l.Item.Name, l.Rate.HandlingFee, l.qty())
		}
	}
	for _, l := range c.Lines {
		if l.Service.RequiresRate {
			res.Add(l.Service.Label+": "+l.Item.Name, l.Rate.FlatRate, l.qty())
		}
	}
	for _, svc := range distinctServices(c) {
		if svc.Fee.IsPositive() {
			res.Add("service fee: "+svc.Label, svc.Fee, decimal.NewFromInt(1))
		}
	}

	finish(res)
	return res
}

// FlatModel charges a flat per-unit rate per item and service tier, floored
// by the destination's minimum charge.
type FlatModel struct {
	FreeRadius FreeRadiusPolicy
}

// Name implements Model
func (FlatModel) Name() catalog.Model { return catalog.ModelFlat }

// Price implements Model
func (m FlatModel) Price(c *Calculation, cat *catalog.Catalog) *types.Result {
	res := c.newResult(cat, m.Name())

	itemsTotal := decimal.Zero
	for _, l := range c.Lines {
		res.Add(l.Service.Label+": "+l.Item.Name, l.Rate.FlatRate, l.qty())
		itemsTotal = itemsTotal.Add(l.Rate.FlatRate.Mul(l.qty()))
	}

	if c.withinFreeRadius() {
		if m.FreeRadius == WaiveDelivery {
			res.Method = types.MethodItemRateTotal
			res.Add(freeRadiusLabel(c.Origin)+", delivery waived", decimal.Zero, decimal.NewFromInt(1))
		} else {
			res.Method = types.MethodFree
			res.Add(freeRadiusLabel(c.Origin)+", order waived", itemsTotal.Neg(), decimal.NewFromInt(1))
		}
		finish(res)
		return res
	}

	minCharge := c.Location.MinCharge
	if minCharge.IsPositive() && minCharge.GreaterThan(itemsTotal) {
		res.Method = types.MethodMinimumCharge
		res.Add("minimum charge top-up", minCharge.Sub(itemsTotal), decimal.NewFromInt(1))
	} else {
		res.Method = types.MethodItemRateTotal
	}

	finish(res)
	return res
}

func freeRadiusLabel(o types.Origin) string {
	return fmt.Sprintf("within %s km free radius of %s", o.FreeKm.String(), o.Name)
}

// distinctServices returns the services used by the calculation, request
// service first, in first-use order.
func distinctServices(c *Calculation) []*types.Service {
	seen := map[types.ServiceType]bool{c.Service.Type: true}
	result := []*types.Service{c.Service}
	for _, l := range c.Lines {
		if !seen[l.Service.Type] {
			seen[l.Service.Type] = true
			result = append(result, l.Service)
		}
	}
	return result
}
