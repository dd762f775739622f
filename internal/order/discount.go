package order

import (
	"fmt"
	"strings"
)

// AddDiscount validates a code against the session's rule catalog and the
// stacking policy, then applies it. Problems are reported through the
// notification slot, never as errors; an empty code is a silent no-op.
//
// Stacking policy: an exclusive rule evicts everything already applied;
// a non-exclusive rule stacks unless an exclusive rule is in effect.
func (s *Session) AddDiscount(codeStr string) {
	code := strings.ToUpper(strings.TrimSpace(codeStr))
	if code == "" {
		return
	}

	for _, d := range s.sel.Discounts {
		if d.Code == code {
			s.note = &Notification{Kind: NotifyInfo, Message: "这个优惠码已经使用啦"}
			return
		}
	}

	var rule *DiscountRule
	for i := range s.rules {
		if s.rules[i].Code == code {
			rule = &s.rules[i]
			break
		}
	}
	if rule == nil {
		s.note = &Notification{Kind: NotifyError, Message: "无效的优惠码"}
		return
	}

	if rule.Exclusive {
		s.sel.Discounts = []DiscountRule{*rule}
		s.note = &Notification{
			Kind:    NotifySuccess,
			Message: fmt.Sprintf("大额优惠券不可叠加哦~ 已为您替换为: %s", rule.Label),
		}
		return
	}

	for _, d := range s.sel.Discounts {
		if d.Exclusive {
			s.note = &Notification{Kind: NotifyError, Message: "当前已使用互斥优惠，无法叠加小红包"}
			return
		}
	}
	s.sel.Discounts = append(s.sel.Discounts, *rule)
	s.note = &Notification{Kind: NotifySuccess, Message: fmt.Sprintf("成功添加优惠: %s", rule.Label)}
}

// RemoveDiscount removes the code if applied and clears any pending
// notification. Removing an absent code is a no-op.
func (s *Session) RemoveDiscount(code string) {
	for i, d := range s.sel.Discounts {
		if d.Code == code {
			s.sel.Discounts = append(s.sel.Discounts[:i], s.sel.Discounts[i+1:]...)
			break
		}
	}
	s.note = nil
}

// Notification returns the pending notification, or nil.
func (s *Session) Notification() *Notification {
	return s.note
}

// ClearNotification drops the pending notification. The storefront calls
// this when the checkout view closes.
func (s *Session) ClearNotification() {
	s.note = nil
}
