// Package catalog - Catalog file loading
// Catalog files are HCL (.hcl) or HCL's JSON syntax (.json).
package catalog

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/shopspring/decimal"

	"shipping-cost/core/types"
	"shipping-cost/internal/errors"
)

// Amounts and distances decode as strings. HCL converts number literals to
// their exact decimal text, which keeps them off float64.
type catalogFile struct {
	Currency       string         `hcl:"currency,optional"`
	Model          string         `hcl:"model,optional"`
	PrivilegedZone string         `hcl:"privileged_zone,optional"`
	FallbackZone   string         `hcl:"fallback_zone,optional"`
	Origins        []originBlock  `hcl:"origin,block"`
	Services       []serviceBlock `hcl:"service,block"`
	Items          []itemBlock    `hcl:"item,block"`
}

type originBlock struct {
	ID              string `hcl:"id,label"`
	Name            string `hcl:"name,optional"`
	FreeKm          string `hcl:"free_km,optional"`
	DistanceColumn  string `hcl:"distance_column,optional"`
	MinChargeColumn string `hcl:"min_charge_column,optional"`
}

type serviceBlock struct {
	Type         string `hcl:"type,label"`
	Label        string `hcl:"label,optional"`
	Fee          string `hcl:"fee,optional"`
	Restricted   bool   `hcl:"restricted,optional"`
	RequiresRate bool   `hcl:"requires_rate,optional"`
	Installation bool   `hcl:"installation,optional"`
}

type itemBlock struct {
	ID          string            `hcl:"id,label"`
	Name        string            `hcl:"name,optional"`
	PerKmRate   string            `hcl:"per_km_rate,optional"`
	HandlingFee string            `hcl:"handling_fee,optional"`
	Rates       map[string]string `hcl:"rates,optional"`
}

// LoadFile reads and validates a catalog file
func LoadFile(path string) (*Catalog, error) {
	var f catalogFile
	if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
		return nil, errors.Parsing("failed to decode catalog "+path, err)
	}
	return build(&f)
}

// Parse decodes catalog source. The filename suffix selects the syntax.
func Parse(filename string, src []byte) (*Catalog, error) {
	var f catalogFile
	if err := hclsimple.Decode(filename, src, nil, &f); err != nil {
		return nil, errors.Parsing("failed to decode catalog "+filename, err)
	}
	return build(&f)
}

func build(f *catalogFile) (*Catalog, error) {
	model, err := ParseModel(f.Model)
	if err != nil {
		return nil, err
	}

	currency := types.CurrencyIDR
	if f.Currency != "" {
		currency = types.Currency(f.Currency)
	}

	c := NewCatalog(model, currency)
	if f.PrivilegedZone != "" {
		c.PrivilegedZone = types.NormalizeZone(f.PrivilegedZone)
	}
	if f.FallbackZone != "" {
		c.FallbackZone = types.NormalizeZone(f.FallbackZone)
	}

	for _, o := range f.Origins {
		freeKm, err := amount("origin "+o.ID+" free_km", o.FreeKm)
		if err != nil {
			return nil, err
		}
		c.AddOrigin(types.Origin{
			ID:              types.OriginID(o.ID),
			Name:            o.Name,
			FreeKm:          freeKm,
			DistanceColumn:  o.DistanceColumn,
			MinChargeColumn: o.MinChargeColumn,
		})
	}

	// standard delivery is implied when a catalog does not spell it out
	if !hasStandard(f.Services) {
		c.AddService(types.Service{Type: types.ServiceStandard, Label: "Standard Delivery"})
	}
	for _, s := range f.Services {
		fee, err := amount("service "+s.Type+" fee", s.Fee)
		if err != nil {
			return nil, err
		}
		c.AddService(types.Service{
			Type:         types.ServiceType(s.Type),
			Label:        s.Label,
			Fee:          fee,
			Restricted:   s.Restricted,
			RequiresRate: s.RequiresRate || s.Installation,
			Installation: s.Installation,
		})
	}

	for _, it := range f.Items {
		perKm, err := amount("item "+it.ID+" per_km_rate", it.PerKmRate)
		if err != nil {
			return nil, err
		}
		handling, err := amount("item "+it.ID+" handling_fee", it.HandlingFee)
		if err != nil {
			return nil, err
		}
		rates, err := serviceRates(it.ID, it.Rates)
		if err != nil {
			return nil, err
		}
		c.AddItem(types.ItemCategory{
			ID:           it.ID,
			Name:         it.Name,
			PerKmRate:    perKm,
			HandlingFee:  handling,
			ServiceRates: rates,
		})
	}

	if err := c.Check(); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "invalid catalog", err)
	}
	return c, nil
}

func hasStandard(services []serviceBlock) bool {
	for _, s := range services {
		if types.ServiceType(s.Type) == types.ServiceStandard {
			return true
		}
	}
	return false
}

func serviceRates(item string, raw map[string]string) (map[types.ServiceType]decimal.Decimal, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	rates := make(map[types.ServiceType]decimal.Decimal, len(raw))
	for k, v := range raw {
		rate, err := amount("item "+item+" rate "+k, v)
		if err != nil {
			return nil, err
		}
		rates[types.ServiceType(k)] = rate
	}
	return rates, nil
}

// amount parses a decoded number; an absent value is zero
func amount(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Parsing(fmt.Sprintf("%s: %q is not a number", field, raw), err)
	}
	return d, nil
}
