// Package catalog - Rate catalog
// Holds origins, delivery services, item categories and the zone policy.
// A catalog is read-only once it has been handed to a snapshot.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"shipping-cost/core/types"
	"shipping-cost/internal/errors"
)

// Model selects the calculation model a catalog is priced with
type Model string

const (
	// ModelDistance charges billable km at the largest per-km rate in the cart
	ModelDistance Model = "distance"
	// ModelFlat charges a flat per-unit rate per item and service tier
	ModelFlat Model = "flat"
)

// String returns string representation
func (m Model) String() string {
	return string(m)
}

// ParseModel parses a model name; empty selects ModelDistance
func ParseModel(s string) (Model, error) {
	switch Model(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModelDistance:
		return ModelDistance, nil
	case ModelFlat:
		return ModelFlat, nil
	default:
		return "", errors.Newf(errors.TypeConfig, "unknown calculation model %q (use distance or flat)", s)
	}
}

const (
	// DefaultPrivilegedZone is the only zone offering restricted services
	DefaultPrivilegedZone types.ZoneTag = "ZONE 1"
	// DefaultFallbackZone is assigned to destinations without a zone
	DefaultFallbackZone types.ZoneTag = "ZONE 2"
	// MaxOrigins bounds the number of warehouses
	MaxOrigins = 5
)

// Catalog is the rate catalog
type Catalog struct {
	Currency       types.Currency
	Model          Model
	PrivilegedZone types.ZoneTag
	FallbackZone   types.ZoneTag

	origins     []types.Origin
	originIndex map[types.OriginID]int

	services     []*types.Service
	serviceIndex map[string]*types.Service

	items     []*types.ItemCategory
	itemIndex map[string]*types.ItemCategory
}

// NewCatalog creates an empty catalog with default zone policy
func NewCatalog(model Model, currency types.Currency) *Catalog {
	return &Catalog{
		Currency:       currency,
		Model:          model,
		PrivilegedZone: DefaultPrivilegedZone,
		FallbackZone:   DefaultFallbackZone,
		originIndex:    make(map[types.OriginID]int),
		serviceIndex:   make(map[string]*types.Service),
		itemIndex:      make(map[string]*types.ItemCategory),
	}
}

// AddOrigin registers an origin. Missing column names default to the
// dist_<id> / min_charge_<id> headers of the zone table export.
func (c *Catalog) AddOrigin(origin types.Origin) {
	if origin.DistanceColumn == "" {
		origin.DistanceColumn = "dist_" + string(origin.ID)
	}
	if origin.MinChargeColumn == "" {
		origin.MinChargeColumn = "min_charge_" + string(origin.ID)
	}
	if origin.Name == "" {
		origin.Name = string(origin.ID)
	}
	if i, ok := c.originIndex[origin.ID]; ok {
		c.origins[i] = origin
		return
	}
	c.originIndex[origin.ID] = len(c.origins)
	c.origins = append(c.origins, origin)
}

// AddService registers a service tier, indexed by type and label
func (c *Catalog) AddService(service types.Service) {
	if service.Label == "" {
		service.Label = string(service.Type)
	}
	svc := &service
	if _, ok := c.serviceIndex[lookupKey(string(svc.Type))]; !ok {
		c.services = append(c.services, svc)
	} else {
		for i, existing := range c.services {
			if existing.Type == svc.Type {
				c.services[i] = svc
			}
		}
	}
	c.serviceIndex[lookupKey(string(svc.Type))] = svc
	c.serviceIndex[lookupKey(svc.Label)] = svc
}

// AddItem registers an item category, indexed by ID and name. Rate keys
// naming a registered service by label are stored under its type, so
// services must be added first. Unknown keys are kept for validation.
func (c *Catalog) AddItem(item types.ItemCategory) {
	if item.Name == "" {
		item.Name = item.ID
	}
	item.ServiceRates = c.canonicalRates(item.ServiceRates)
	it := &item
	if _, ok := c.itemIndex[lookupKey(it.ID)]; !ok {
		c.items = append(c.items, it)
	} else {
		for i, existing := range c.items {
			if existing.ID == it.ID {
				c.items[i] = it
			}
		}
	}
	c.itemIndex[lookupKey(it.ID)] = it
	c.itemIndex[lookupKey(it.Name)] = it
}

func (c *Catalog) canonicalRates(rates map[types.ServiceType]decimal.Decimal) map[types.ServiceType]decimal.Decimal {
	if len(rates) == 0 {
		return rates
	}
	result := make(map[types.ServiceType]decimal.Decimal, len(rates))
	for key, rate := range rates {
		if svc, ok := c.Service(key); ok && svc.Type != key {
			// an exact type key wins over a label naming the same service
			if _, exact := rates[svc.Type]; exact {
				continue
			}
			key = svc.Type
		}
		result[key] = rate
	}
	return result
}

// ReplaceItems drops all items and registers the given ones
func (c *Catalog) ReplaceItems(items []types.ItemCategory) {
	c.items = nil
	c.itemIndex = make(map[string]*types.ItemCategory)
	for _, it := range items {
		c.AddItem(it)
	}
}

// Origin returns an origin by ID
func (c *Catalog) Origin(id types.OriginID) (types.Origin, bool) {
	if i, ok := c.originIndex[id]; ok {
		return c.origins[i], true
	}
	// IDs are case-insensitive for callers typing them by hand
	for _, o := range c.origins {
		if strings.EqualFold(string(o.ID), string(id)) || strings.EqualFold(o.Name, string(id)) {
			return o, true
		}
	}
	return types.Origin{}, false
}

// Origins returns all origins in registration order
func (c *Catalog) Origins() []types.Origin {
	result := make([]types.Origin, len(c.origins))
	copy(result, c.origins)
	return result
}

// Service looks up a service by type or label ("trade_in", "Trade In Delivery")
func (c *Catalog) Service(name types.ServiceType) (*types.Service, bool) {
	if name == "" {
		name = types.ServiceStandard
	}
	svc, ok := c.serviceIndex[lookupKey(string(name))]
	return svc, ok
}

// Services returns all services in registration order
func (c *Catalog) Services() []types.Service {
	result := make([]types.Service, 0, len(c.services))
	for _, s := range c.services {
		result = append(result, *s)
	}
	return result
}

// Item looks up an item category by ID or name
func (c *Catalog) Item(name string) (*types.ItemCategory, bool) {
	it, ok := c.itemIndex[lookupKey(name)]
	return it, ok
}

// Items returns all item categories in registration order
func (c *Catalog) Items() []types.ItemCategory {
	result := make([]types.ItemCategory, 0, len(c.items))
	for _, it := range c.items {
		result = append(result, *it)
	}
	return result
}

// ServiceAllowedIn reports whether a service may be offered in a zone
func (c *Catalog) ServiceAllowedIn(svc *types.Service, zone types.ZoneTag) bool {
	if !svc.Restricted {
		return true
	}
	return types.NormalizeZone(string(zone)) == types.NormalizeZone(string(c.PrivilegedZone))
}

// RateFor resolves the pricing of one item for one service tier.
// A zero or absent flat rate is an error only for services that require a
// rate; plain distance shipping never fails here.
func (c *Catalog) RateFor(item string, service types.ServiceType) (types.RateInfo, error) {
	it, ok := c.Item(item)
	if !ok {
		return types.RateInfo{}, errors.NotFound("item", item).WithItem(item)
	}
	svc, ok := c.Service(service)
	if !ok {
		return types.RateInfo{}, errors.NotFound("service", string(service))
	}

	flat := it.ServiceRates[svc.Type]
	if svc.RequiresRate && !flat.IsPositive() {
		return types.RateInfo{}, errors.UnavailableRate(it.ID, string(svc.Type))
	}

	return types.RateInfo{
		Item:        it.ID,
		Service:     svc.Type,
		PerKmRate:   it.PerKmRate,
		FlatRate:    flat,
		HandlingFee: it.HandlingFee,
	}, nil
}

// Stats returns catalog statistics
func (c *Catalog) Stats() CatalogStats {
	stats := CatalogStats{
		Origins:  len(c.origins),
		Services: len(c.services),
		Items:    len(c.items),
	}
	for _, s := range c.services {
		if s.Restricted {
			stats.RestrictedServices++
		}
	}
	return stats
}

// CatalogStats holds catalog statistics
type CatalogStats struct {
	Origins            int `json:"origins"`
	Services           int `json:"services"`
	RestrictedServices int `json:"restricted_services"`
	Items              int `json:"items"`
}

func lookupKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
