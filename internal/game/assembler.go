// internal/game/assembler.go
//
// Assembler turns discrete card clicks into an Expression for the human
// side. Number cards are tracked by their slot index in the hand with a
// bool per slot; the same physical card cannot be played twice.
//
// Budgets are checked eagerly here (no more roots or multiplies than the
// hand holds). Using them fully is checked by the validator at submit.

package game

import (
	"errors"
	"fmt"

	"github.com/robalobadob/mathduel/internal/cards"
	"github.com/robalobadob/mathduel/internal/expr"
)

var (
	ErrSlotOutOfRange    = errors.New("game: no number card in that slot")
	ErrSlotUsed          = errors.New("game: number card already played")
	ErrSqrtExhausted     = errors.New("game: no square root cards left")
	ErrMultiplyExhausted = errors.New("game: no forced multiply cards left")
	ErrOperatorDisabled  = errors.New("game: operator disabled this round")
	ErrUnusedNumbers     = errors.New("game: every number card must be played")
)

// Assembler builds one expression from a hand.
type Assembler struct {
	hand     cards.Hand
	used     []bool
	order    []int // slots in the order they were played
	expr     *expr.Expression
	sqrtUsed int
	mulUsed  int
}

// NewAssembler starts an empty expression over hand.
func NewAssembler(hand cards.Hand) *Assembler {
	return &Assembler{
		hand: hand,
		used: make([]bool, len(hand.Numbers)),
		expr: expr.New(),
	}
}

// PlayNumber plays the number card in slot, optionally square-rooted.
func (a *Assembler) PlayNumber(slot int, sqrt bool) error {
	if slot < 0 || slot >= len(a.used) {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	if a.used[slot] {
		return fmt.Errorf("%w: slot %d", ErrSlotUsed, slot)
	}
	if sqrt && a.sqrtUsed >= a.hand.SqrtBudget {
		return ErrSqrtExhausted
	}
	if err := a.expr.AppendNumber(a.hand.Numbers[slot], sqrt); err != nil {
		return err
	}
	a.used[slot] = true
	a.order = append(a.order, slot)
	if sqrt {
		a.sqrtUsed++
	}
	return nil
}

// PlayOperator appends op. Multiply spends a forced-multiply card.
func (a *Assembler) PlayOperator(op cards.Op) error {
	switch {
	case op == cards.OpMultiply && a.mulUsed >= a.hand.MultiplyBudget:
		return ErrMultiplyExhausted
	case op != cards.OpMultiply && a.hand.Disabled.Has(op):
		return fmt.Errorf("%w: %s", ErrOperatorDisabled, op)
	}
	if err := a.expr.AppendOperator(op); err != nil {
		return err
	}
	if op == cards.OpMultiply {
		a.mulUsed++
	}
	return nil
}

// Reset clears the expression and returns every card to the hand.
func (a *Assembler) Reset() {
	a.expr.Clear()
	clear(a.used)
	a.order = a.order[:0]
	a.sqrtUsed, a.mulUsed = 0, 0
}

// Expression returns a copy safe to hand to scoring.
func (a *Assembler) Expression() *expr.Expression { return a.expr.Clone() }

// Used reports which slots have been played.
func (a *Assembler) Used() []bool { return append([]bool(nil), a.used...) }

// Order returns played slots in play order.
func (a *Assembler) Order() []int { return append([]int(nil), a.order...) }

// AllNumbersUsed is true once every number slot has been played.
func (a *Assembler) AllNumbersUsed() bool {
	for _, u := range a.used {
		if !u {
			return false
		}
	}
	return true
}

// Remaining returns unspent special budgets.
func (a *Assembler) Remaining() (sqrt, multiply int) {
	return a.hand.SqrtBudget - a.sqrtUsed, a.hand.MultiplyBudget - a.mulUsed
}
