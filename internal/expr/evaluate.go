package expr

import (
	"math"

	"github.com/robalobadob/mathduel/internal/cards"
)

// EvaluationResult is the outcome of Evaluate. Value is meaningful only when
// Success is true.
type EvaluationResult struct {
	Success bool
	Value   float64
	Reason  error
}

func evalFail(err error) EvaluationResult { return EvaluationResult{Reason: err} }

// Evaluate folds e strictly left to right with no operator precedence:
// ((t0 op0 t1) op1 t2) ... Each term is rooted first when flagged. The first
// failing step is reported and no partial value is returned.
func Evaluate(e *Expression) EvaluationResult {
	if e == nil || e.IsEmpty() {
		return evalFail(ErrEmptyExpression)
	}
	if e.ExpectingNumber() {
		return evalFail(ErrDanglingOperator)
	}

	acc, err := termValue(e.terms[0])
	if err != nil {
		return evalFail(err)
	}
	for i, op := range e.ops {
		rhs, err := termValue(e.terms[i+1])
		if err != nil {
			return evalFail(err)
		}
		switch op {
		case cards.OpAdd:
			acc += rhs
		case cards.OpSubtract:
			acc -= rhs
		case cards.OpMultiply:
			acc *= rhs
		case cards.OpDivide:
			if rhs == 0 {
				return evalFail(ErrDivisionByZero)
			}
			acc /= rhs
		}
	}
	return EvaluationResult{Success: true, Value: acc}
}

func termValue(t Term) (float64, error) {
	v := float64(t.Value)
	if !t.Sqrt {
		return v, nil
	}
	if v < 0 {
		return 0, ErrNegativeSqrtOperand
	}
	return math.Sqrt(v), nil
}
