// Package ticket renders the plain-text order contract the customer copies
// into chat. Every amount comes from a single pricing.Quote so the ticket
// can never disagree with the live breakdown.
package ticket

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/starrysand/atelier-backend/internal/order"
	"github.com/starrysand/atelier-backend/internal/pricing"
)

const (
	intro     = "🦉 咚咚咚！来自 StarrySand 的信使到了！\n工坊主小狼，这是我的【定制契约】，请查收：\n"
	separator = "----------------\n"

	lineSize    = "🖼️ 尺寸："
	lineCraft   = "🛠️ 工艺："
	lineFluid   = "🧪 流沙："
	lineAddons  = "✨ 装饰/其他：\n"
	lineRush    = "🚀 加急："
	linePack    = "🎁 包装："
	lineCoupon  = "🎟️ 优惠券：\n"
	systemTitle = "[系统计价明细]\n"
	disclaimer  = "(此为系统预估，最终价格以沟通为准)"

	// consultTemplate replaces the whole ticket in consultation mode: no
	// amounts, just a hand-off to a human quote.
	consultTemplate = "[特殊委托] 客户申请深度定制/推荐服务，请接入人工咨询。"
)

// Render formats the order ticket for a selection and its quote.
func Render(sel order.Selection, q pricing.Quote) string {
	if sel.Consultation {
		return consultTemplate
	}

	var b strings.Builder
	b.WriteString(intro)
	b.WriteString(separator)

	if sel.Size != nil {
		fmt.Fprintf(&b, "%s%s (%s)\n", lineSize, sel.Size.Name, sel.Size.PriceStr)
	}
	if sel.Fluid != nil {
		fmt.Fprintf(&b, "%s%s\n", lineFluid, fluidText(sel.Fluid))
	}
	writeDecoration(&b, sel)
	if sel.Rush != nil {
		fmt.Fprintf(&b, "%s%s (%s)\n", lineRush, sel.Rush.Name, sel.Rush.FeeStr)
	}
	if sel.Packaging != nil && sel.Packaging.Price.IsPositive() {
		fmt.Fprintf(&b, "%s%s (+%sr)\n", linePack, sel.Packaging.Title, sel.Packaging.Price)
	}
	if len(sel.Discounts) > 0 {
		b.WriteString(lineCoupon)
		for _, d := range sel.Discounts {
			fmt.Fprintf(&b, "  - %s [%s]\n", d.Label, d.Code)
		}
	}

	b.WriteString(separator)
	b.WriteString(systemTitle)
	fmt.Fprintf(&b, "1. 基础: %sr\n", q.BaseTotal)
	smallNote := ""
	if q.AddonDiscountMultiplier.LessThan(decimal.NewFromInt(1)) {
		smallNote = " (小尺寸半价)"
	}
	fmt.Fprintf(&b, "2. 装饰: %sr%s\n", q.AddonTotal, smallNote)
	if q.DiscountAmount.IsPositive() {
		fmt.Fprintf(&b, "3. 折扣: -%sr\n", q.DiscountAmount.Floor())
	}
	fmt.Fprintf(&b, "4. 小计: %sr\n", q.SubTotal)
	if q.RushFeeAmount.IsPositive() {
		fmt.Fprintf(&b, "5. 加急费: +%sr\n", q.RushFeeAmount)
	}
	if q.PackagingFee.IsPositive() {
		fmt.Fprintf(&b, "6.包装费: +%sr\n", q.PackagingFee)
	}
	fmt.Fprintf(&b, "\n💰 最终报价：%dr\n%s", q.FinalPrice, disclaimer)
	return b.String()
}

// writeDecoration prints the craft line for the active path: the chosen
// package, or the structure items plus an itemized addon list.
func writeDecoration(b *strings.Builder, sel order.Selection) {
	if sel.Decoration.Mode == order.ModePackage {
		if sel.Decoration.Package != nil {
			fmt.Fprintf(b, "%s套餐 · %s (%sr)\n", lineCraft,
				sel.Decoration.Package.Name, sel.Decoration.Package.Price)
		}
		return
	}

	var structures, others []order.AddonItem
	for _, a := range sel.Decoration.Addons {
		if a.Category == order.CategoryStructure {
			structures = append(structures, a)
		} else {
			others = append(others, a)
		}
	}

	if len(structures) > 0 {
		parts := make([]string, 0, len(structures))
		for _, s := range structures {
			parts = append(parts, fmt.Sprintf("%s (%s)", s.Name, s.PriceStr))
		}
		fmt.Fprintf(b, "%s%s\n", lineCraft, strings.Join(parts, ", "))
	} else {
		fmt.Fprintf(b, "%s标准结构 (默认)\n", lineCraft)
	}

	if len(others) > 0 {
		b.WriteString(lineAddons)
		for _, a := range others {
			fmt.Fprintf(b, "  - %s (%s)\n", a.Name, a.PriceStr)
		}
	}
}

// fluidText formats the recipe line per strategy.
func fluidText(f *order.FluidSelection) string {
	switch f.Strategy {
	case order.FluidBuddha:
		if f.Note != "" {
			return fmt.Sprintf("%s [备注: %s]", f.Title, f.Note)
		}
	case order.FluidSelf:
		if len(f.Materials) > 0 {
			return fmt.Sprintf("%s [材料: %s]", f.Title, strings.Join(f.Materials, ", "))
		}
	case order.FluidBlindbox:
		style := strings.Join(f.StyleTags, " ")
		if f.StyleText != "" {
			if style != "" {
				style += " "
			}
			style += f.StyleText
		}
		return fmt.Sprintf("%s\n  【风格】: %s\n  【避雷】: %s", f.Title, style, f.Taboo)
	}
	return f.Title
}
