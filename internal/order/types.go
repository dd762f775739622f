// types.go
package order

import "github.com/shopspring/decimal"

// AddonCategory groups custom-mode items by where they act on the piece.
type AddonCategory string

const (
	CategoryStructure    AddonCategory = "Structure"    // physical build changes; may carry a base-price multiplier
	CategoryVisualEffect AddonCategory = "VisualEffect" // reflective / glow / color-shift effects
	CategoryHidden       AddonCategory = "Hidden"       // easter eggs sealed inside
	CategorySurface      AddonCategory = "Surface"      // films and surface finishes
	CategoryExternal     AddonCategory = "External"     // outer decorations, chains, gems
	CategoryCollage      AddonCategory = "Collage"      // flat / 3D collage work
	CategoryBaroque      AddonCategory = "Baroque"      // baroque stacking
)

// KnownCategories lists every category the engine accepts.
var KnownCategories = []AddonCategory{
	CategoryStructure, CategoryVisualEffect, CategoryHidden,
	CategorySurface, CategoryExternal, CategoryCollage, CategoryBaroque,
}

// AddonItem is one selected custom-mode item.
// Multiplier == 0 means "no multiplier" and prices the same as 1;
// only Structure items ever carry one.
type AddonItem struct {
	Category   AddonCategory
	Name       string
	PriceStr   string // display price, e.g. "+15r" or "基础价x2"
	Price      decimal.Decimal
	Multiplier float64
}

// SizeItem is the selected base size.
type SizeItem struct {
	Name        string
	PriceStr    string
	Price       decimal.Decimal
	IsSmallSize bool // small sizes get decorations at half price
}

// RushItem is the selected expedite tier.
// Multiplier is a fraction of the discounted subtotal, e.g. 0.3 for +30%.
type RushItem struct {
	ID         string
	Name       string
	Multiplier float64
	FeeStr     string // display fee, e.g. "+30%"
}

// PackagingItem is the selected shipping packaging tier.
type PackagingItem struct {
	Title string
	Price decimal.Decimal
}

// DecorationPackage is a bundled fixed-price decoration tier (package mode).
type DecorationPackage struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// DecorationMode selects which pricing path is authoritative.
type DecorationMode string

const (
	ModePackage DecorationMode = "package" // base + decoration package price
	ModeCustom  DecorationMode = "custom"  // base * structure multiplier + itemized addons
)

// Decoration holds both paths under one tag so pricing can branch on Mode
// and never read the inactive side.
type Decoration struct {
	Mode    DecorationMode
	Package *DecorationPackage // package mode only
	Addons  []AddonItem        // custom mode only
}

// FluidStrategy tags the fluid/recipe choice.
type FluidStrategy string

const (
	FluidBuddha   FluidStrategy = "buddha"   // leave it to the maker, optional note
	FluidSelf     FluidStrategy = "self"     // hand-picked materials, at most MaxSelfMaterials
	FluidSurprise FluidStrategy = "surprise" // full surprise
	FluidBlindbox FluidStrategy = "blindbox" // style wishes + required taboo list
)

// MaxSelfMaterials caps the self-mix material list.
const MaxSelfMaterials = 5

// FluidSelection is the tagged fluid/recipe variant. Only the fields of the
// active strategy are meaningful.
type FluidSelection struct {
	Strategy FluidStrategy
	Title    string
	Note     string   // buddha
	Materials []string // self
	StyleTags []string // blindbox
	StyleText string   // blindbox free-text style
	Taboo     string   // blindbox, required
}

// DiscountKind is the discount rule family.
type DiscountKind string

const (
	DiscountPercent   DiscountKind = "percent"   // value is a multiplier, 0.8 = 20% off
	DiscountFixed     DiscountKind = "fixed"     // value is a flat amount off
	DiscountThreshold DiscountKind = "threshold" // flat amount off once subtotal reaches Threshold
)

// DiscountRule is an immutable catalog entry for one code.
type DiscountRule struct {
	Code      string
	Kind      DiscountKind
	Value     decimal.Decimal
	Threshold decimal.Decimal // threshold kind only
	Exclusive bool            // cannot coexist with any other applied code
	Label     string
	Tag       string
}

// NotificationKind classifies a discount-action notification.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
)

// Notification is the single-slot, ephemeral message produced by discount
// actions. A new notification replaces the previous one.
type Notification struct {
	Kind    NotificationKind
	Message string
}
