package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/starrysand/atelier-backend/internal/order"
)

// Quote is the itemized price breakdown for one selection. It is derived,
// never stored: recompute from the current selection on every read.
type Quote struct {
	BaseTotal               decimal.Decimal // size price * craft multiplier
	CraftMultiplier         float64
	RawAddonsTotal          decimal.Decimal
	AddonDiscountMultiplier decimal.Decimal // 0.5 for small sizes, else 1
	AddonTotal              decimal.Decimal
	SubTotal                decimal.Decimal // after discount codes, before rush/packaging
	DiscountAmount          decimal.Decimal // saved by codes alone
	RushFeeAmount           decimal.Decimal
	PackagingFee            decimal.Decimal
	ThresholdErrors         []string
	TotalSavings            decimal.Decimal // small-size savings + code savings

	// FinalPrice is floor(SubTotal + RushFeeAmount + PackagingFee),
	// always a non-negative integer.
	FinalPrice int64
}

var (
	one  = decimal.NewFromInt(1)
	half = decimal.NewFromFloat(0.5)
)

// discountOrder fixes the stacking sequence: percentages read the largest
// base, thresholds are judged against the already-reduced total.
var discountOrder = map[order.DiscountKind]int{
	order.DiscountPercent:   1,
	order.DiscountFixed:     2,
	order.DiscountThreshold: 3,
}

// Compute prices a selection. Pure and deterministic: no side effects, no
// I/O, same selection in, same quote out. Cheap enough to call on every
// mutation.
func Compute(sel order.Selection) Quote {
	basePrice := decimal.Zero
	if sel.Size != nil {
		basePrice = sel.Size.Price
	}

	// Decoration cost depends on the active path only. In package mode the
	// addon list is dead weight; in custom mode the package is.
	craftMultiplier := 1.0
	rawAddonsTotal := decimal.Zero
	switch sel.Decoration.Mode {
	case order.ModePackage:
		if sel.Decoration.Package != nil {
			rawAddonsTotal = sel.Decoration.Package.Price
		}
	case order.ModeCustom:
		// Structural multipliers do not stack: the single largest wins.
		// A structure item still contributes its flat price to the sum.
		for _, a := range sel.Decoration.Addons {
			if a.Category == order.CategoryStructure && a.Multiplier > craftMultiplier {
				craftMultiplier = a.Multiplier
			}
			rawAddonsTotal = rawAddonsTotal.Add(a.Price)
		}
	}

	baseTotal := basePrice.Mul(decimal.NewFromFloat(craftMultiplier))

	// Small sizes get decorations at half price; the base craft fee is
	// never touched by this.
	addonDiscountMultiplier := one
	if sel.Size != nil && sel.Size.IsSmallSize {
		addonDiscountMultiplier = half
	}
	addonTotal := rawAddonsTotal.Mul(addonDiscountMultiplier)
	addonSavings := rawAddonsTotal.Sub(addonTotal)

	preDiscountTotal := baseTotal.Add(addonTotal)
	subTotal := preDiscountTotal
	var thresholdErrors []string

	sorted := append([]order.DiscountRule(nil), sel.Discounts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return discountOrder[sorted[i].Kind] < discountOrder[sorted[j].Kind]
	})

	for _, d := range sorted {
		switch d.Kind {
		case order.DiscountPercent:
			subTotal = subTotal.Mul(d.Value)
		case order.DiscountFixed:
			subTotal = clampZero(subTotal.Sub(d.Value))
		case order.DiscountThreshold:
			if subTotal.GreaterThanOrEqual(d.Threshold) {
				subTotal = clampZero(subTotal.Sub(d.Value))
			} else {
				gap := d.Threshold.Sub(subTotal).Floor()
				thresholdErrors = append(thresholdErrors,
					fmt.Sprintf("还差 ¥%s 才能用【%s】哦", gap, d.Label))
			}
		}
	}

	// Rush is a surcharge on the discounted subtotal, rounded up so the
	// studio is never under-paid by rounding.
	rushFee := decimal.Zero
	if sel.Rush != nil {
		rushFee = subTotal.Mul(decimal.NewFromFloat(sel.Rush.Multiplier)).Ceil()
	}

	packagingFee := decimal.Zero
	if sel.Packaging != nil {
		packagingFee = sel.Packaging.Price
	}

	discountAmount := preDiscountTotal.Sub(subTotal)
	totalSavings := addonSavings.Add(discountAmount)
	finalPrice := subTotal.Add(rushFee).Add(packagingFee).Floor().IntPart()

	return Quote{
		BaseTotal:               baseTotal,
		CraftMultiplier:         craftMultiplier,
		RawAddonsTotal:          rawAddonsTotal,
		AddonDiscountMultiplier: addonDiscountMultiplier,
		AddonTotal:              addonTotal,
		SubTotal:                subTotal,
		DiscountAmount:          discountAmount,
		RushFeeAmount:           rushFee,
		PackagingFee:            packagingFee,
		ThresholdErrors:         thresholdErrors,
		TotalSavings:            totalSavings,
		FinalPrice:              finalPrice,
	}
}

// HasComplexItems reports whether any selected size, addon or rush tier has
// a non-numeric display price. The storefront must then present the
// computed total as an estimate, not a final quote.
func HasComplexItems(sel order.Selection) bool {
	if sel.Size != nil && IsComplexPrice(sel.Size.PriceStr) {
		return true
	}
	for _, a := range sel.Decoration.Addons {
		if IsComplexPrice(a.PriceStr) {
			return true
		}
	}
	if sel.Rush != nil && IsComplexPrice(sel.Rush.FeeStr) {
		return true
	}
	return false
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
