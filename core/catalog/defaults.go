// Package catalog - Built-in catalog
// The warehouse set and service tiers used when no catalog file is configured.
package catalog

import (
	"github.com/shopspring/decimal"

	"shipping-cost/core/types"
)

// RegisterOrigins adds the three West Java warehouses. Column names match
// the distance.csv export: dist_<id> and min_charge_<id>.
func RegisterOrigins(c *Catalog) {
	c.AddOrigin(types.Origin{ID: "banjaran", Name: "Banjaran", FreeKm: decimal.NewFromInt(7)})
	c.AddOrigin(types.Origin{ID: "kopo", Name: "Kopo", FreeKm: decimal.NewFromInt(7)})
	c.AddOrigin(types.Origin{ID: "kalimalang", Name: "Bekasi/Kalimalang", FreeKm: decimal.NewFromInt(7)})
}

// RegisterServices adds the standard tier and the ZONE 1 only tiers
func RegisterServices(c *Catalog) {
	c.AddService(types.Service{Type: types.ServiceStandard, Label: "Standard Delivery"})
	c.AddService(types.Service{Type: "nextday", Label: "Next Day Delivery", RequiresRate: true})
	c.AddService(types.Service{Type: "trade_in", Label: "Trade In Delivery", Restricted: true, RequiresRate: true})
	c.AddService(types.Service{Type: "lite_install", Label: "Lite Install", Restricted: true, RequiresRate: true, Installation: true})
}

// Default returns a catalog with the built-in origins and services and no
// items. Items always come from a catalog file or an item-rate export.
func Default(model Model) *Catalog {
	c := NewCatalog(model, types.CurrencyIDR)
	RegisterOrigins(c)
	RegisterServices(c)
	return c
}
