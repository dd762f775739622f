package order

// Selection is a snapshot of every choice the customer has made. The pricing
// engine computes from a Selection value only, so a quote is a pure function
// of it.
type Selection struct {
	Size       *SizeItem
	Fluid      *FluidSelection
	Decoration Decoration
	Rush       *RushItem
	Packaging  *PackagingItem
	Discounts  []DiscountRule

	// Consultation marks the deep-customization flow: the ticket hides all
	// amounts and asks for a human quote instead.
	Consultation bool
}

// Session owns the selection state of one storefront visitor. It is not
// safe for concurrent use; the transport layer serializes access per token.
type Session struct {
	rules []DiscountRule // valid code catalog, fixed at session start
	sel   Selection
	note  *Notification
}

// NewSession creates an empty session against the given discount catalog.
// The decoration mode starts in package mode, matching the storefront.
func NewSession(rules []DiscountRule) *Session {
	return &Session{
		rules: rules,
		sel:   Selection{Decoration: Decoration{Mode: ModePackage}},
	}
}

// Selection returns a snapshot safe to hand to the pricing engine: slice
// fields are copied so later mutations cannot alias into a held quote.
func (s *Session) Selection() Selection {
	sel := s.sel
	sel.Decoration.Addons = append([]AddonItem(nil), s.sel.Decoration.Addons...)
	sel.Discounts = append([]DiscountRule(nil), s.sel.Discounts...)
	return sel
}

// SelectSize replaces the size wholesale. Picking a size also leaves
// consultation mode, the customer is configuring again.
func (s *Session) SelectSize(item SizeItem) {
	s.sel.Size = &item
	s.sel.Consultation = false
}

// ToggleAddon adds the item, or removes it if an entry with the same
// (category, name) is already selected. This is the only way items enter
// the custom-mode list, so the list never holds duplicates.
func (s *Session) ToggleAddon(item AddonItem) {
	for i, a := range s.sel.Decoration.Addons {
		if a.Category == item.Category && a.Name == item.Name {
			s.sel.Decoration.Addons = append(
				s.sel.Decoration.Addons[:i], s.sel.Decoration.Addons[i+1:]...)
			s.sel.Consultation = false
			return
		}
	}
	s.sel.Decoration.Addons = append(s.sel.Decoration.Addons, item)
	s.sel.Consultation = false
}

// RemoveAddon removes the (category, name) entry if present.
func (s *Session) RemoveAddon(category AddonCategory, name string) {
	for i, a := range s.sel.Decoration.Addons {
		if a.Category == category && a.Name == name {
			s.sel.Decoration.Addons = append(
				s.sel.Decoration.Addons[:i], s.sel.Decoration.Addons[i+1:]...)
			return
		}
	}
}

// ClearAddons empties the custom-mode list.
func (s *Session) ClearAddons() {
	s.sel.Decoration.Addons = nil
}

// SelectRush toggles the rush tier: same tier again clears it, a different
// tier replaces it. At most one tier is active.
func (s *Session) SelectRush(item RushItem) {
	if s.sel.Rush != nil && s.sel.Rush.Name == item.Name {
		s.sel.Rush = nil
		return
	}
	s.sel.Rush = &item
}

// SelectPackaging replaces the packaging tier wholesale. Absence prices as
// the free default tier.
func (s *Session) SelectPackaging(item PackagingItem) {
	s.sel.Packaging = &item
}

// SelectFluid replaces the fluid recipe; nil clears it.
func (s *Session) SelectFluid(f *FluidSelection) {
	s.sel.Fluid = f
}

// SetDecorationMode sets the mode directly. Callers switching modes should
// go through SwitchDecorationMode, which enforces the data-loss policy.
func (s *Session) SetDecorationMode(mode DecorationMode) {
	s.sel.Decoration.Mode = mode
}

// SelectDecorationPackage sets the package-mode tier; nil clears it.
func (s *Session) SelectDecorationPackage(pkg *DecorationPackage) {
	s.sel.Decoration.Package = pkg
}

// SwitchDecorationMode moves between the two decoration paths.
//
// custom → package with accumulated addons is destructive: confirm is
// invoked and the switch only proceeds (clearing the addons) if it returns
// true. Every other transition is loss-free and switches directly.
// The return value reports whether the switch happened.
func (s *Session) SwitchDecorationMode(mode DecorationMode, confirm func() bool) bool {
	if mode == s.sel.Decoration.Mode {
		return true
	}
	switch mode {
	case ModeCustom:
		// package and addons are mutually exclusive, nothing to lose
		s.sel.Decoration.Package = nil
		s.sel.Decoration.Mode = ModeCustom
		return true
	case ModePackage:
		if len(s.sel.Decoration.Addons) > 0 {
			if confirm == nil || !confirm() {
				return false
			}
			s.ClearAddons()
		}
		s.sel.Decoration.Mode = ModePackage
		return true
	}
	return false
}

// SetConsultationMode flips the deep-customization flag.
func (s *Session) SetConsultationMode(on bool) {
	s.sel.Consultation = on
}

// ApplyPreset restores a gallery piece's configuration: size, decoration
// mode and either its package or its addon list. Previous decoration
// selections are dropped; rush, packaging, fluid and discounts are kept.
func (s *Session) ApplyPreset(size SizeItem, mode DecorationMode, pkg *DecorationPackage, addons []AddonItem) {
	s.SelectSize(size)
	s.sel.Decoration = Decoration{Mode: mode}
	if mode == ModePackage {
		s.sel.Decoration.Package = pkg
		return
	}
	for _, a := range addons {
		s.ToggleAddon(a)
	}
}

// ClearOrder resets the session to its initial empty form, discounts and
// any pending notification included.
func (s *Session) ClearOrder() {
	s.sel = Selection{Decoration: Decoration{Mode: ModePackage}}
	s.note = nil
}
