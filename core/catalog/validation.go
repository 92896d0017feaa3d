// Package catalog - Catalog validation
// Ensures catalog integrity before a catalog is used for pricing.
package catalog

import (
	stderrors "errors"
	"fmt"

	"shipping-cost/core/types"
)

// ValidationRule is a catalog validation rule
type ValidationRule func(*Catalog) []error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateModel,
		validateOrigins,
		validateStandardService,
		validateZonePolicy,
		validateItemRates,
		validateInstallRates,
	}
}

// Validate checks a catalog against validation rules
func (c *Catalog) Validate(rules []ValidationRule) []error {
	var errs []error
	for _, rule := range rules {
		errs = append(errs, rule(c)...)
	}
	return errs
}

// Check runs the default rules and joins any violations into one error
func (c *Catalog) Check() error {
	return stderrors.Join(c.Validate(DefaultValidationRules())...)
}

func validateModel(c *Catalog) []error {
	if c.Model != ModelDistance && c.Model != ModelFlat {
		return []error{fmt.Errorf("model %q must be distance or flat", c.Model)}
	}
	return nil
}

// validateOrigins enforces the small fixed origin set and sane free radii
func validateOrigins(c *Catalog) []error {
	var errs []error
	if len(c.origins) == 0 {
		errs = append(errs, fmt.Errorf("catalog has no origins"))
	}
	if len(c.origins) > MaxOrigins {
		errs = append(errs, fmt.Errorf("catalog has %d origins, at most %d are supported", len(c.origins), MaxOrigins))
	}
	for _, o := range c.origins {
		if o.FreeKm.IsNegative() {
			errs = append(errs, fmt.Errorf("origin %s: free_km must not be negative", o.ID))
		}
	}
	return errs
}

func validateStandardService(c *Catalog) []error {
	svc, ok := c.Service(types.ServiceStandard)
	if !ok {
		return []error{fmt.Errorf("catalog has no %q service", types.ServiceStandard)}
	}
	if svc.Restricted {
		return []error{fmt.Errorf("service %q must not be restricted", types.ServiceStandard)}
	}
	return nil
}

func validateZonePolicy(c *Catalog) []error {
	var errs []error
	if c.PrivilegedZone == "" {
		errs = append(errs, fmt.Errorf("privileged_zone must be set"))
	}
	if c.FallbackZone == "" {
		errs = append(errs, fmt.Errorf("fallback_zone must be set"))
	}
	for _, s := range c.services {
		if s.Fee.IsNegative() {
			errs = append(errs, fmt.Errorf("service %s: fee must not be negative", s.Type))
		}
	}
	return errs
}

// validateItemRates rejects negative rates; zero means unavailable
func validateItemRates(c *Catalog) []error {
	var errs []error
	for _, it := range c.items {
		if it.PerKmRate.IsNegative() {
			errs = append(errs, fmt.Errorf("item %s: per_km_rate must not be negative", it.ID))
		}
		if it.HandlingFee.IsNegative() {
			errs = append(errs, fmt.Errorf("item %s: handling_fee must not be negative", it.ID))
		}
		for svc, rate := range it.ServiceRates {
			if rate.IsNegative() {
				errs = append(errs, fmt.Errorf("item %s: %s rate must not be negative", it.ID, svc))
			}
			if _, ok := c.Service(svc); !ok {
				errs = append(errs, fmt.Errorf("item %s: rate for unknown service %q", it.ID, svc))
			}
		}
	}
	return errs
}

// validateInstallRates ensures installation tiers are priced per item
func validateInstallRates(c *Catalog) []error {
	var errs []error
	for _, s := range c.services {
		if s.Installation && !s.RequiresRate {
			errs = append(errs, fmt.Errorf("service %s: installation services must set requires_rate", s.Type))
		}
	}
	return errs
}
