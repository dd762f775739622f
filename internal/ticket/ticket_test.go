package ticket

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/starrysand/atelier-backend/internal/order"
	"github.com/starrysand/atelier-backend/internal/pricing"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestRenderCustomOrder(t *testing.T) {
	sel := order.Selection{
		Size: &order.SizeItem{Name: "记忆珍藏版", PriceStr: "73r", Price: dec(73)},
		Fluid: &order.FluidSelection{
			Strategy:  order.FluidSelf,
			Title:     "任性玩",
			Materials: []string{"01 银色细闪", "08 镭射六边形"},
		},
		Decoration: order.Decoration{
			Mode: order.ModeCustom,
			Addons: []order.AddonItem{
				{Category: order.CategoryStructure, Name: "双层流麻", PriceStr: "基础价x2", Price: dec(0), Multiplier: 2},
				{Category: order.CategoryExternal, Name: "普通链条", PriceStr: "+2r", Price: dec(2)},
			},
		},
		Rush:      &order.RushItem{Name: "优先处理档", Multiplier: 0.3, FeeStr: "+30%"},
		Packaging: &order.PackagingItem{Title: "【星尘礼遇单元】", Price: dec(15)},
		Discounts: []order.DiscountRule{
			{Code: "WOLF", Kind: order.DiscountFixed, Value: dec(5), Label: "萌新见面礼"},
		},
	}
	q := pricing.Compute(sel)
	text := Render(sel, q)

	for _, want := range []string{
		"记忆珍藏版 (73r)",
		"[材料: 01 银色细闪, 08 镭射六边形]",
		"双层流麻 (基础价x2)",
		"  - 普通链条 (+2r)",
		"优先处理档 (+30%)",
		"【星尘礼遇单元】 (+15r)",
		"萌新见面礼 [WOLF]",
		"1. 基础: 146r",
		"3. 折扣: -5r",
		"4. 小计: 143r",
		"6.包装费: +15r",
		"此为系统预估",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("ticket missing %q:\n%s", want, text)
		}
	}
	// the printed final must be the quote's final, 143 + ceil(143*0.3)=43 + 15
	if !strings.Contains(text, "最终报价：201r") {
		t.Fatalf("ticket final price wrong:\n%s", text)
	}
}

func TestRenderDefaultStructureLine(t *testing.T) {
	sel := order.Selection{
		Size: &order.SizeItem{Name: "手机伴侣款", PriceStr: "63r", Price: dec(63)},
		Decoration: order.Decoration{
			Mode: order.ModeCustom,
			Addons: []order.AddonItem{
				{Category: order.CategoryExternal, Name: "碎钻镶嵌", PriceStr: "+5r", Price: dec(5)},
			},
		},
	}
	text := Render(sel, pricing.Compute(sel))
	if !strings.Contains(text, "标准结构 (默认)") {
		t.Fatalf("no structure items should print the default line:\n%s", text)
	}
}

func TestRenderPackageMode(t *testing.T) {
	sel := order.Selection{
		Size: &order.SizeItem{Name: "手机伴侣款", PriceStr: "63r", Price: dec(63)},
		Decoration: order.Decoration{
			Mode:    order.ModePackage,
			Package: &order.DecorationPackage{ID: "standard", Name: "标准装饰 · 画面完整", Price: dec(25)},
		},
	}
	text := Render(sel, pricing.Compute(sel))
	if !strings.Contains(text, "套餐 · 标准装饰 · 画面完整 (25r)") {
		t.Fatalf("package line missing:\n%s", text)
	}
}

func TestRenderSmallSizeNote(t *testing.T) {
	sel := order.Selection{
		Size: &order.SizeItem{Name: "萌趣挂件系", PriceStr: "35r", Price: dec(35), IsSmallSize: true},
		Decoration: order.Decoration{
			Mode: order.ModeCustom,
			Addons: []order.AddonItem{
				{Category: order.CategoryExternal, Name: "碎钻镶嵌", PriceStr: "+5r", Price: dec(5)},
			},
		},
	}
	text := Render(sel, pricing.Compute(sel))
	if !strings.Contains(text, "2. 装饰: 2.5r (小尺寸半价)") {
		t.Fatalf("small-size note missing:\n%s", text)
	}
}

func TestRenderConsultationHidesAmounts(t *testing.T) {
	sel := order.Selection{
		Size:         &order.SizeItem{Name: "记忆珍藏版", PriceStr: "73r", Price: dec(73)},
		Consultation: true,
	}
	text := Render(sel, pricing.Compute(sel))
	if strings.Contains(text, "73") || strings.Contains(text, "最终报价") {
		t.Fatalf("consultation ticket must not show amounts:\n%s", text)
	}
	if !strings.Contains(text, "人工咨询") {
		t.Fatalf("consultation ticket should hand off to a human:\n%s", text)
	}
}

func TestRenderBlindboxRecipe(t *testing.T) {
	sel := order.Selection{
		Size: &order.SizeItem{Name: "手机伴侣款", PriceStr: "63r", Price: dec(63)},
		Fluid: &order.FluidSelection{
			Strategy:  order.FluidBlindbox,
			Title:     "随心盲盒",
			StyleTags: []string{"#梦幻粉紫", "#清透夏日"},
			Taboo:     "密集恐惧",
		},
		Decoration: order.Decoration{Mode: order.ModeCustom},
	}
	text := Render(sel, pricing.Compute(sel))
	if !strings.Contains(text, "【风格】: #梦幻粉紫 #清透夏日") || !strings.Contains(text, "【避雷】: 密集恐惧") {
		t.Fatalf("blindbox recipe missing:\n%s", text)
	}
}
