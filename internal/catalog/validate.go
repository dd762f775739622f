package catalog

import (
	"fmt"
	"strings"

	"github.com/starrysand/atelier-backend/internal/order"
)

// Validate checks semantic constraints of a loaded catalog. Violations are
// collected and reported together.
func Validate(c *Catalog) error {
	var errs []string

	seenSize := map[string]bool{}
	for i, s := range c.Sizes {
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("sizes[%d].name is required", i))
		}
		if seenSize[s.Name] {
			errs = append(errs, fmt.Sprintf("sizes[%d]: duplicate name %q", i, s.Name))
		}
		seenSize[s.Name] = true
		if s.PriceNum < 0 {
			errs = append(errs, fmt.Sprintf("sizes[%d].price_num must be >= 0", i))
		}
	}

	known := map[string]bool{}
	for _, cat := range order.KnownCategories {
		known[string(cat)] = true
	}
	seenAddon := map[string]bool{}
	for i, a := range c.Addons {
		if !known[a.Category] {
			errs = append(errs, fmt.Sprintf("addons[%d].category %q is unknown", i, a.Category))
		}
		key := a.Category + "/" + a.Name
		if seenAddon[key] {
			errs = append(errs, fmt.Sprintf("addons[%d]: duplicate (category, name) %q", i, key))
		}
		seenAddon[key] = true
		if a.PriceNum < 0 {
			errs = append(errs, fmt.Sprintf("addons[%d].price_num must be >= 0", i))
		}
		if a.Multiplier < 0 {
			errs = append(errs, fmt.Sprintf("addons[%d].multiplier must be >= 0", i))
		}
		if a.Multiplier > 0 && a.Category != string(order.CategoryStructure) {
			errs = append(errs, fmt.Sprintf("addons[%d]: only Structure items may carry a multiplier", i))
		}
	}

	for i, p := range c.Packages {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("packages[%d].id is required", i))
		}
		if p.Price < 0 {
			errs = append(errs, fmt.Sprintf("packages[%d].price must be >= 0", i))
		}
	}

	for i, r := range c.Rush {
		if r.ID == "" {
			errs = append(errs, fmt.Sprintf("rush[%d].id is required", i))
		}
		if r.Multiplier < 0 {
			errs = append(errs, fmt.Sprintf("rush[%d].multiplier must be >= 0", i))
		}
	}

	for i, p := range c.Packaging {
		if p.PriceNum < 0 {
			errs = append(errs, fmt.Sprintf("packaging[%d].price_num must be >= 0", i))
		}
	}

	seenCode := map[string]bool{}
	for i, d := range c.Discounts {
		if d.Code == "" {
			errs = append(errs, fmt.Sprintf("discounts[%d].code is required", i))
		}
		if d.Code != strings.ToUpper(strings.TrimSpace(d.Code)) {
			errs = append(errs, fmt.Sprintf("discounts[%d].code must be trimmed uppercase", i))
		}
		if seenCode[d.Code] {
			errs = append(errs, fmt.Sprintf("discounts[%d]: duplicate code %q", i, d.Code))
		}
		seenCode[d.Code] = true
		switch order.DiscountKind(d.Kind) {
		case order.DiscountPercent:
			if d.Value <= 0 || d.Value > 1 {
				errs = append(errs, fmt.Sprintf("discounts[%d].value must be in (0,1] for kind=percent", i))
			}
		case order.DiscountFixed:
			if d.Value <= 0 {
				errs = append(errs, fmt.Sprintf("discounts[%d].value must be > 0 for kind=fixed", i))
			}
		case order.DiscountThreshold:
			if d.Value <= 0 {
				errs = append(errs, fmt.Sprintf("discounts[%d].value must be > 0 for kind=threshold", i))
			}
			if d.Threshold <= 0 {
				errs = append(errs, fmt.Sprintf("discounts[%d].threshold must be > 0 for kind=threshold", i))
			}
		default:
			errs = append(errs, fmt.Sprintf("discounts[%d].kind must be one of: percent, fixed, threshold", i))
		}
	}

	for i, p := range c.Presets {
		if _, ok := c.FindSize(p.SizeName); !ok {
			errs = append(errs, fmt.Sprintf("presets[%d].size_name %q not in sizes", i, p.SizeName))
		}
		switch order.DecorationMode(p.Mode) {
		case order.ModePackage:
			if _, ok := c.FindPackage(p.PackageID); p.PackageID != "" && !ok {
				errs = append(errs, fmt.Sprintf("presets[%d].package_id %q not in packages", i, p.PackageID))
			}
		case order.ModeCustom:
			for _, name := range p.AddonNames {
				if !addonNameExists(c, name) {
					errs = append(errs, fmt.Sprintf("presets[%d]: addon %q not in addons", i, name))
				}
			}
		default:
			errs = append(errs, fmt.Sprintf("presets[%d].mode must be package or custom", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// addonNameExists matches presets by bare name; preset addon lists come
// from gallery records that never qualify the category.
func addonNameExists(c *Catalog, name string) bool {
	for _, a := range c.Addons {
		if a.Name == name {
			return true
		}
	}
	return false
}
