package pricing

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/starrysand/atelier-backend/internal/order"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func size(price float64, small bool) *order.SizeItem {
	return &order.SizeItem{Name: "size", PriceStr: "63r", Price: dec(price), IsSmallSize: small}
}

func checkDec(t *testing.T, name string, got decimal.Decimal, want float64) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %v", name, got, want)
	}
}

func TestComputeBareSize(t *testing.T) {
	// size only, custom mode, nothing else
	sel := order.Selection{
		Size:       size(63, false),
		Decoration: order.Decoration{Mode: order.ModeCustom},
	}
	q := Compute(sel)
	checkDec(t, "baseTotal", q.BaseTotal, 63)
	checkDec(t, "addonTotal", q.AddonTotal, 0)
	checkDec(t, "subTotal", q.SubTotal, 63)
	if q.FinalPrice != 63 {
		t.Fatalf("finalPrice = %d, want 63", q.FinalPrice)
	}
}

func TestComputeStructureMultiplier(t *testing.T) {
	sel := order.Selection{
		Size: size(73, false),
		Decoration: order.Decoration{
			Mode: order.ModeCustom,
			Addons: []order.AddonItem{
				{Category: order.CategoryStructure, Name: "双层流麻", PriceStr: "基础价x2", Price: dec(0), Multiplier: 2},
				{Category: order.CategoryExternal, Name: "普通链条", PriceStr: "+2r", Price: dec(2)},
			},
		},
	}
	q := Compute(sel)
	if q.CraftMultiplier != 2 {
		t.Fatalf("craftMultiplier = %v, want 2", q.CraftMultiplier)
	}
	checkDec(t, "baseTotal", q.BaseTotal, 146)
	checkDec(t, "rawAddonsTotal", q.RawAddonsTotal, 2)
	checkDec(t, "addonTotal", q.AddonTotal, 2)
	checkDec(t, "subTotal", q.SubTotal, 148)
	if q.FinalPrice != 148 {
		t.Fatalf("finalPrice = %d, want 148", q.FinalPrice)
	}
}

func TestComputeMultipliersDoNotStack(t *testing.T) {
	// two structure multipliers: the largest wins, they never multiply
	sel := order.Selection{
		Size: size(50, false),
		Decoration: order.Decoration{
			Mode: order.ModeCustom,
			Addons: []order.AddonItem{
				{Category: order.CategoryStructure, Name: "a", Price: dec(0), Multiplier: 2},
				{Category: order.CategoryStructure, Name: "b", Price: dec(0), Multiplier: 3},
			},
		},
	}
	q := Compute(sel)
	if q.CraftMultiplier != 3 {
		t.Fatalf("craftMultiplier = %v, want 3 (max, not product)", q.CraftMultiplier)
	}
	checkDec(t, "baseTotal", q.BaseTotal, 150)
}

func TestComputeSmallSizeHalvesAddonsOnly(t *testing.T) {
	sel := order.Selection{
		Size: size(35, true),
		Decoration: order.Decoration{
			Mode: order.ModeCustom,
			Addons: []order.AddonItem{
				{Category: order.CategoryExternal, Name: "碎钻镶嵌", PriceStr: "+5r", Price: dec(5)},
			},
		},
	}
	q := Compute(sel)
	checkDec(t, "addonDiscountMultiplier", q.AddonDiscountMultiplier, 0.5)
	checkDec(t, "baseTotal", q.BaseTotal, 35)
	checkDec(t, "addonTotal", q.AddonTotal, 2.5)
	checkDec(t, "subTotal", q.SubTotal, 37.5)
	checkDec(t, "totalSavings", q.TotalSavings, 2.5)
	if q.FinalPrice != 37 {
		t.Fatalf("finalPrice = %d, want 37 (floor)", q.FinalPrice)
	}

	// big size: same selection, addons at full price, base unchanged
	sel.Size = size(35, false)
	q = Compute(sel)
	checkDec(t, "baseTotal", q.BaseTotal, 35)
	checkDec(t, "addonTotal", q.AddonTotal, 5)
}

func TestComputeModeExclusivity(t *testing.T) {
	pkg := &order.DecorationPackage{ID: "standard", Name: "标准装饰", Price: dec(25)}
	addons := []order.AddonItem{
		{Category: order.CategoryStructure, Name: "x", Price: dec(15), Multiplier: 2},
	}

	// package mode ignores the addon list entirely
	withAddons := order.Selection{
		Size:       size(73, false),
		Decoration: order.Decoration{Mode: order.ModePackage, Package: pkg, Addons: addons},
	}
	clean := order.Selection{
		Size:       size(73, false),
		Decoration: order.Decoration{Mode: order.ModePackage, Package: pkg},
	}
	if a, b := Compute(withAddons), Compute(clean); a.FinalPrice != b.FinalPrice {
		t.Fatalf("package mode priced addons: %d != %d", a.FinalPrice, b.FinalPrice)
	}
	if got := Compute(clean); got.CraftMultiplier != 1 {
		t.Fatalf("package mode craftMultiplier = %v, want 1", got.CraftMultiplier)
	}

	// custom mode ignores the package
	withPkg := order.Selection{
		Size:       size(73, false),
		Decoration: order.Decoration{Mode: order.ModeCustom, Package: pkg, Addons: addons},
	}
	noPkg := order.Selection{
		Size:       size(73, false),
		Decoration: order.Decoration{Mode: order.ModeCustom, Addons: addons},
	}
	if a, b := Compute(withPkg), Compute(noPkg); a.FinalPrice != b.FinalPrice {
		t.Fatalf("custom mode priced the package: %d != %d", a.FinalPrice, b.FinalPrice)
	}
}

func TestComputeDiscountOrdering(t *testing.T) {
	// applied in reverse order on purpose: percent must still run first
	sel := order.Selection{
		Size:       size(100, false),
		Decoration: order.Decoration{Mode: order.ModeCustom},
		Discounts: []order.DiscountRule{
			{Code: "MINUS10", Kind: order.DiscountFixed, Value: dec(10), Label: "减10"},
			{Code: "OFF20", Kind: order.DiscountPercent, Value: dec(0.8), Label: "8折"},
		},
	}
	q := Compute(sel)
	// percent first: 100*0.8 = 80, then 80-10 = 70 (not (100-10)*0.8 = 72)
	checkDec(t, "subTotal", q.SubTotal, 70)
	checkDec(t, "discountAmount", q.DiscountAmount, 30)
	if q.FinalPrice != 70 {
		t.Fatalf("finalPrice = %d, want 70", q.FinalPrice)
	}
}

func TestComputeThresholdShortfall(t *testing.T) {
	sel := order.Selection{
		Size:       size(100, false),
		Decoration: order.Decoration{Mode: order.ModeCustom},
		Discounts: []order.DiscountRule{
			{Code: "WOLF", Kind: order.DiscountFixed, Value: dec(5), Label: "萌新见面礼"},
			{Code: "RICH", Kind: order.DiscountThreshold, Value: dec(50), Threshold: dec(200), Label: "满200减50"},
		},
	}
	q := Compute(sel)
	// fixed applies (100 -> 95); threshold misses 200 by 105 and is skipped
	checkDec(t, "subTotal", q.SubTotal, 95)
	if len(q.ThresholdErrors) != 1 {
		t.Fatalf("thresholdErrors = %v, want exactly one", q.ThresholdErrors)
	}
	if !strings.Contains(q.ThresholdErrors[0], "105") || !strings.Contains(q.ThresholdErrors[0], "满200减50") {
		t.Fatalf("shortfall message %q should name the gap and the rule", q.ThresholdErrors[0])
	}
	if q.FinalPrice != 95 {
		t.Fatalf("finalPrice = %d, want 95", q.FinalPrice)
	}

	// once the subtotal clears the threshold it applies normally
	sel.Size = size(250, false)
	q = Compute(sel)
	checkDec(t, "subTotal", q.SubTotal, 195)
	if len(q.ThresholdErrors) != 0 {
		t.Fatalf("unexpected thresholdErrors: %v", q.ThresholdErrors)
	}
}

func TestComputeRushFeeCeil(t *testing.T) {
	sel := order.Selection{
		Size:       size(60, false),
		Decoration: order.Decoration{Mode: order.ModeCustom},
		Rush:       &order.RushItem{ID: "rush-priority", Name: "优先处理档", Multiplier: 0.3, FeeStr: "+30%"},
	}
	q := Compute(sel)
	checkDec(t, "rushFeeAmount", q.RushFeeAmount, 18)
	if q.FinalPrice != 78 {
		t.Fatalf("finalPrice = %d, want 78", q.FinalPrice)
	}

	// fractional fee rounds up, never down
	sel.Size = size(63, false)
	q = Compute(sel) // 63*0.3 = 18.9 -> 19
	checkDec(t, "rushFeeAmount", q.RushFeeAmount, 19)
}

func TestComputePackagingFlat(t *testing.T) {
	sel := order.Selection{
		Size:       size(35, true),
		Decoration: order.Decoration{Mode: order.ModeCustom},
		Packaging:  &order.PackagingItem{Title: "【星尘礼遇单元】", Price: dec(15)},
	}
	q := Compute(sel)
	// packaging is never halved by the small-size discount
	checkDec(t, "packagingFee", q.PackagingFee, 15)
	if q.FinalPrice != 50 {
		t.Fatalf("finalPrice = %d, want 50", q.FinalPrice)
	}
}

func TestComputeNeverNegative(t *testing.T) {
	sel := order.Selection{
		Size:       size(10, false),
		Decoration: order.Decoration{Mode: order.ModeCustom},
		Discounts: []order.DiscountRule{
			{Code: "A", Kind: order.DiscountFixed, Value: dec(20), Label: "a"},
			{Code: "B", Kind: order.DiscountFixed, Value: dec(20), Label: "b"},
		},
	}
	q := Compute(sel)
	checkDec(t, "subTotal", q.SubTotal, 0)
	if q.FinalPrice < 0 {
		t.Fatalf("finalPrice = %d, must never be negative", q.FinalPrice)
	}
}

func TestComputeDeterministic(t *testing.T) {
	sel := order.Selection{
		Size: size(73, true),
		Decoration: order.Decoration{
			Mode: order.ModeCustom,
			Addons: []order.AddonItem{
				{Category: order.CategoryStructure, Name: "双层流麻", Price: dec(0), Multiplier: 2},
				{Category: order.CategoryVisualEffect, Name: "夜光效果", Price: dec(6)},
			},
		},
		Rush: &order.RushItem{ID: "rush-stable", Multiplier: 0.1},
		Discounts: []order.DiscountRule{
			{Code: "WOLF", Kind: order.DiscountFixed, Value: dec(5), Label: "萌新见面礼"},
		},
	}
	a, b := Compute(sel), Compute(sel)
	if a.FinalPrice != b.FinalPrice || !a.SubTotal.Equal(b.SubTotal) {
		t.Fatalf("compute is not deterministic: %+v vs %+v", a, b)
	}
}

func TestHasComplexItems(t *testing.T) {
	sel := order.Selection{Decoration: order.Decoration{Mode: order.ModeCustom}}
	if HasComplexItems(sel) {
		t.Fatalf("empty selection should not be complex")
	}
	sel.Decoration.Addons = []order.AddonItem{
		{Category: order.CategoryStructure, Name: "双层流麻", PriceStr: "基础价x2", Price: dec(0), Multiplier: 2},
	}
	if !HasComplexItems(sel) {
		t.Fatalf("non-numeric addon price must flag the estimate")
	}
	sel.Decoration.Addons = nil
	sel.Rush = &order.RushItem{FeeStr: "+30%", Multiplier: 0.3}
	if HasComplexItems(sel) {
		t.Fatalf("a percentage fee is numeric, not complex")
	}
}
