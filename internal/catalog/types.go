// types.go
package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/starrysand/atelier-backend/internal/order"
	"github.com/starrysand/atelier-backend/internal/pricing"
)

// Catalog is the studio's full product configuration, loaded from YAML.
// Prices appear twice on purpose: the display string the storefront shows
// (possibly non-numeric, e.g. "基础价x2") and the numeric value pricing uses.
type Catalog struct {
	Studio    string          `yaml:"studio,omitempty"`
	Version   string          `yaml:"version,omitempty"`
	Sizes     []SizeSpec      `yaml:"sizes"`
	Addons    []AddonSpec     `yaml:"addons"`
	Packages  []PackageSpec   `yaml:"packages"`
	Rush      []RushSpec      `yaml:"rush"`
	Packaging []PackagingSpec `yaml:"packaging"`
	Discounts []DiscountSpec  `yaml:"discounts"`
	Presets   []PresetSpec    `yaml:"presets,omitempty"`
	Notes     string          `yaml:"notes,omitempty"`
}

type SizeSpec struct {
	Name     string  `yaml:"name"`
	Size     string  `yaml:"size,omitempty"` // dimension label, e.g. "10×15cm"
	Price    string  `yaml:"price"`          // display price, e.g. "73r"
	PriceNum float64 `yaml:"price_num"`
	Small    bool    `yaml:"small,omitempty"` // small sizes halve decoration cost
	Desc     string  `yaml:"desc,omitempty"`
}

type AddonSpec struct {
	Category   string  `yaml:"category"` // one of order.KnownCategories
	Name       string  `yaml:"name"`
	Price      string  `yaml:"price"`
	PriceNum   float64 `yaml:"price_num"`
	Multiplier float64 `yaml:"multiplier,omitempty"` // structure items only
	Desc       string  `yaml:"desc,omitempty"`
}

type PackageSpec struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Price    float64  `yaml:"price"`
	Desc     string   `yaml:"desc,omitempty"`
	Features []string `yaml:"features,omitempty"`
}

type RushSpec struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Fee        string  `yaml:"fee"`        // display fee, e.g. "+30%"
	Multiplier float64 `yaml:"multiplier"` // fraction of discounted subtotal
	Time       string  `yaml:"time,omitempty"`
	Desc       string  `yaml:"desc,omitempty"`
}

type PackagingSpec struct {
	Title    string  `yaml:"title"`
	EngName  string  `yaml:"eng_name,omitempty"`
	Price    string  `yaml:"price"`
	PriceNum float64 `yaml:"price_num"`
	Upgrade  bool    `yaml:"upgrade,omitempty"`
	Desc     string  `yaml:"desc,omitempty"`
}

type DiscountSpec struct {
	Code      string  `yaml:"code"`
	Kind      string  `yaml:"kind"` // percent | fixed | threshold
	Value     float64 `yaml:"value"`
	Threshold float64 `yaml:"threshold,omitempty"`
	Exclusive bool    `yaml:"exclusive,omitempty"`
	Label     string  `yaml:"label"`
	Tag       string  `yaml:"tag,omitempty"`
}

// PresetSpec is a gallery piece's recorded configuration, applied as a
// starting point for "make me that one" orders.
type PresetSpec struct {
	ID         string   `yaml:"id"`
	CodeName   string   `yaml:"code_name,omitempty"`
	SizeName   string   `yaml:"size_name"`
	Mode       string   `yaml:"mode"` // package | custom
	PackageID  string   `yaml:"package_id,omitempty"`
	AddonNames []string `yaml:"addon_names,omitempty"`
	FluidDesc  string   `yaml:"fluid_desc,omitempty"`
}

// numPrice resolves a spec's numeric price: the explicit price_num when
// set, otherwise whatever number the display string carries. A prose
// price like "基础价x2" resolves to zero either way.
func numPrice(num float64, display string) decimal.Decimal {
	if num != 0 {
		return decimal.NewFromFloat(num)
	}
	return pricing.ParsePrice(display)
}

// Item converts the spec into the selection value the session stores.
func (s SizeSpec) Item() order.SizeItem {
	return order.SizeItem{
		Name:        s.Name,
		PriceStr:    s.Price,
		Price:       numPrice(s.PriceNum, s.Price),
		IsSmallSize: s.Small,
	}
}

func (a AddonSpec) Item() order.AddonItem {
	return order.AddonItem{
		Category:   order.AddonCategory(a.Category),
		Name:       a.Name,
		PriceStr:   a.Price,
		Price:      numPrice(a.PriceNum, a.Price),
		Multiplier: a.Multiplier,
	}
}

func (p PackageSpec) Item() order.DecorationPackage {
	return order.DecorationPackage{
		ID:    p.ID,
		Name:  p.Name,
		Price: decimal.NewFromFloat(p.Price),
	}
}

func (r RushSpec) Item() order.RushItem {
	return order.RushItem{
		ID:         r.ID,
		Name:       r.Name,
		Multiplier: r.Multiplier,
		FeeStr:     r.Fee,
	}
}

func (p PackagingSpec) Item() order.PackagingItem {
	return order.PackagingItem{
		Title: p.Title,
		Price: numPrice(p.PriceNum, p.Price),
	}
}

func (d DiscountSpec) Rule() order.DiscountRule {
	return order.DiscountRule{
		Code:      d.Code,
		Kind:      order.DiscountKind(d.Kind),
		Value:     decimal.NewFromFloat(d.Value),
		Threshold: decimal.NewFromFloat(d.Threshold),
		Exclusive: d.Exclusive,
		Label:     d.Label,
		Tag:       d.Tag,
	}
}

// DiscountRules converts the whole discount section for session creation.
func (c *Catalog) DiscountRules() []order.DiscountRule {
	rules := make([]order.DiscountRule, 0, len(c.Discounts))
	for _, d := range c.Discounts {
		rules = append(rules, d.Rule())
	}
	return rules
}

// FindSize looks a size up by display name.
func (c *Catalog) FindSize(name string) (SizeSpec, bool) {
	for _, s := range c.Sizes {
		if s.Name == name {
			return s, true
		}
	}
	return SizeSpec{}, false
}

// FindAddon looks an addon up by (category, name).
func (c *Catalog) FindAddon(category, name string) (AddonSpec, bool) {
	for _, a := range c.Addons {
		if a.Category == category && a.Name == name {
			return a, true
		}
	}
	return AddonSpec{}, false
}

// FindPackage looks a decoration package up by id.
func (c *Catalog) FindPackage(id string) (PackageSpec, bool) {
	for _, p := range c.Packages {
		if p.ID == id {
			return p, true
		}
	}
	return PackageSpec{}, false
}

// FindRush looks a rush tier up by id.
func (c *Catalog) FindRush(id string) (RushSpec, bool) {
	for _, r := range c.Rush {
		if r.ID == id {
			return r, true
		}
	}
	return RushSpec{}, false
}

// FindPackaging looks a packaging tier up by title.
func (c *Catalog) FindPackaging(title string) (PackagingSpec, bool) {
	for _, p := range c.Packaging {
		if p.Title == title {
			return p, true
		}
	}
	return PackagingSpec{}, false
}

// FindDiscount looks a discount rule up by code. Codes are stored trimmed
// uppercase, so callers normalize before lookup.
func (c *Catalog) FindDiscount(code string) (DiscountSpec, bool) {
	for _, d := range c.Discounts {
		if d.Code == code {
			return d, true
		}
	}
	return DiscountSpec{}, false
}

// FindPreset looks a gallery preset up by id.
func (c *Catalog) FindPreset(id string) (PresetSpec, bool) {
	for _, p := range c.Presets {
		if p.ID == id {
			return p, true
		}
	}
	return PresetSpec{}, false
}
