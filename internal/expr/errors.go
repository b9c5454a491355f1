package expr

import "errors"

var (
	ErrNotExpectingNumber   = errors.New("expr: expected an operator, got a number")
	ErrNotExpectingOperator = errors.New("expr: expected a number, got an operator")

	ErrEmptyExpression  = errors.New("expr: empty expression")
	ErrDanglingOperator = errors.New("expr: expression ends with an operator")

	ErrDivisionByZero      = errors.New("expr: division by zero")
	ErrNegativeSqrtOperand = errors.New("expr: square root of a negative number")

	ErrSqrtBudgetMismatch     = errors.New("expr: square roots used do not match the hand")
	ErrMultiplyBudgetMismatch = errors.New("expr: multiplies used do not match the hand")

	ErrDisabledOperator = errors.New("expr: operator disabled this round")

	// ErrNoFeasiblePlay is a normal search outcome, not a fault.
	ErrNoFeasiblePlay = errors.New("expr: no feasible expression for this hand")
)

// ErrorKind groups errors into the taxonomy reported to round resolution.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindStructural
	KindArithmetic
	KindBudgetMismatch
	KindDisabledOperator
	KindNoFeasiblePlay
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindStructural:
		return "structural"
	case KindArithmetic:
		return "arithmetic"
	case KindBudgetMismatch:
		return "budget_mismatch"
	case KindDisabledOperator:
		return "disabled_operator"
	case KindNoFeasiblePlay:
		return "no_feasible_play"
	}
	return "unknown"
}

// KindOf classifies err, following wrapped chains.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrEmptyExpression), errors.Is(err, ErrDanglingOperator),
		errors.Is(err, ErrNotExpectingNumber), errors.Is(err, ErrNotExpectingOperator):
		return KindStructural
	case errors.Is(err, ErrDivisionByZero), errors.Is(err, ErrNegativeSqrtOperand):
		return KindArithmetic
	case errors.Is(err, ErrSqrtBudgetMismatch), errors.Is(err, ErrMultiplyBudgetMismatch):
		return KindBudgetMismatch
	case errors.Is(err, ErrDisabledOperator):
		return KindDisabledOperator
	case errors.Is(err, ErrNoFeasiblePlay):
		return KindNoFeasiblePlay
	}
	return KindUnknown
}
