package expr

import (
	"fmt"

	"github.com/robalobadob/mathduel/internal/cards"
)

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	Valid  bool
	Reason error
}

// Validate checks that e is complete and spends exactly the hand's special
// budgets with no disabled operator. Checks run in order:
//  1. non-empty and not ending on an operator
//  2. sqrt-flagged terms == hand.SqrtBudget
//  3. multiply operators == hand.MultiplyBudget
//  4. no disabled base operator
func Validate(e *Expression, hand cards.Hand) ValidationResult {
	if e == nil || e.IsEmpty() {
		return ValidationResult{Reason: ErrEmptyExpression}
	}
	if e.ExpectingNumber() {
		return ValidationResult{Reason: ErrDanglingOperator}
	}

	roots := 0
	for _, t := range e.terms {
		if t.Sqrt {
			roots++
		}
	}
	if roots != hand.SqrtBudget {
		return ValidationResult{Reason: fmt.Errorf("%w: used %d, hand grants %d",
			ErrSqrtBudgetMismatch, roots, hand.SqrtBudget)}
	}

	muls := 0
	for _, op := range e.ops {
		if op == cards.OpMultiply {
			muls++
		}
	}
	if muls != hand.MultiplyBudget {
		return ValidationResult{Reason: fmt.Errorf("%w: used %d, hand grants %d",
			ErrMultiplyBudgetMismatch, muls, hand.MultiplyBudget)}
	}

	for _, op := range e.ops {
		if op != cards.OpMultiply && hand.Disabled.Has(op) {
			return ValidationResult{Reason: fmt.Errorf("%w: %s", ErrDisabledOperator, op)}
		}
	}
	return ValidationResult{Valid: true}
}
