// internal/cards/hand.go
//
// Hand is the read-only snapshot of what one side was dealt for a round.
// Number slot i is the i-th number card dealt; callers track usage by slot
// index rather than by card identity.

package cards

import (
	"errors"
	"fmt"
	"strings"
)

// OpSet is a small bitmask of operators.
type OpSet uint8

// NewOpSet builds a set from ops.
func NewOpSet(ops ...Op) OpSet {
	var s OpSet
	for _, o := range ops {
		s = s.With(o)
	}
	return s
}

func (s OpSet) Has(o Op) bool      { return s&(1<<o) != 0 }
func (s OpSet) With(o Op) OpSet    { return s | 1<<o }
func (s OpSet) Without(o Op) OpSet { return s &^ (1 << o) }

// Ops returns the members in Op order.
func (s OpSet) Ops() []Op {
	var out []Op
	for o := OpAdd; o <= OpMultiply; o++ {
		if s.Has(o) {
			out = append(out, o)
		}
	}
	return out
}

func (s OpSet) String() string {
	ops := s.Ops()
	parts := make([]string, len(ops))
	for i, o := range ops {
		parts[i] = o.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Hand holds one side's dealt cards for a round.
type Hand struct {
	Numbers        []int // number values by slot index
	MultiplyBudget int   // ForcedMultiply specials held
	SqrtBudget     int   // SquareRoot specials held
	Disabled       OpSet // base operators disabled this round
}

// FromCards tallies a dealt card list into a Hand. Operator cards carry no
// budget and are skipped.
func FromCards(dealt []Card, disabled OpSet) Hand {
	h := Hand{Disabled: disabled.Without(OpMultiply)}
	for _, c := range dealt {
		switch c.Kind() {
		case KindNumber:
			h.Numbers = append(h.Numbers, c.Value())
		case KindSpecial:
			if c.Effect() == EffectSquareRoot {
				h.SqrtBudget++
			} else {
				h.MultiplyBudget++
			}
		}
	}
	return h
}

// Allowed reports whether op may be played. Multiply is governed by the
// multiply budget, never by the disabled set.
func (h Hand) Allowed(op Op) bool {
	if op == OpMultiply {
		return h.MultiplyBudget > 0
	}
	return !h.Disabled.Has(op)
}

// Available returns the non-disabled base operators in fixed order.
func (h Hand) Available() []Op {
	out := make([]Op, 0, len(BaseOps))
	for _, o := range BaseOps {
		if !h.Disabled.Has(o) {
			out = append(out, o)
		}
	}
	return out
}

// Slots is the number of operator positions when every number is used.
func (h Hand) Slots() int {
	if len(h.Numbers) == 0 {
		return 0
	}
	return len(h.Numbers) - 1
}

// Clone returns a deep copy.
func (h Hand) Clone() Hand {
	c := h
	c.Numbers = append([]int(nil), h.Numbers...)
	return c
}

// Cards renders the hand back into card values (numbers first, then specials).
func (h Hand) Cards() []Card {
	out := make([]Card, 0, len(h.Numbers)+h.MultiplyBudget+h.SqrtBudget)
	for _, v := range h.Numbers {
		out = append(out, Number(v))
	}
	for i := 0; i < h.MultiplyBudget; i++ {
		out = append(out, Special(EffectForcedMultiply))
	}
	for i := 0; i < h.SqrtBudget; i++ {
		out = append(out, Special(EffectSquareRoot))
	}
	return out
}

// Validate checks the snapshot is well formed.
func (h Hand) Validate() error {
	if h.MultiplyBudget < 0 || h.SqrtBudget < 0 {
		return errors.New("cards: budgets must be non-negative")
	}
	for i, v := range h.Numbers {
		if v < MinValue || v > MaxValue {
			return fmt.Errorf("cards: slot %d value %d outside [%d,%d]", i, v, MinValue, MaxValue)
		}
	}
	return nil
}
