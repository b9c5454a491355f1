package expr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mathduel/internal/cards"
)

// build assembles alternating tokens: ints (or Term) for numbers, cards.Op for ops.
func build(t *testing.T, tokens ...any) *Expression {
	t.Helper()
	e := New()
	for _, tok := range tokens {
		switch v := tok.(type) {
		case int:
			require.NoError(t, e.AppendNumber(v, false))
		case Term:
			require.NoError(t, e.AppendNumber(v.Value, v.Sqrt))
		case cards.Op:
			require.NoError(t, e.AppendOperator(v))
		default:
			t.Fatalf("unexpected token %T", tok)
		}
	}
	return e
}

func TestAlternationInvariant(t *testing.T) {
	e := New()
	assert.True(t, e.IsEmpty())
	assert.True(t, e.ExpectingNumber())

	assert.ErrorIs(t, e.AppendOperator(cards.OpAdd), ErrNotExpectingOperator)
	require.NoError(t, e.AppendNumber(3, false))
	assert.False(t, e.ExpectingNumber())

	before := e.Len()
	assert.ErrorIs(t, e.AppendNumber(4, false), ErrNotExpectingNumber)
	assert.Equal(t, before, e.Len(), "failed append must not change the sequence")

	require.NoError(t, e.AppendOperator(cards.OpAdd))
	assert.ErrorIs(t, e.AppendOperator(cards.OpSubtract), ErrNotExpectingOperator)
	assert.Equal(t, 2, e.Len())

	e.Clear()
	assert.True(t, e.IsEmpty())
	assert.Equal(t, 0, e.Len())
}

func TestCloneIsIndependent(t *testing.T) {
	e := build(t, 2, cards.OpAdd, 3)
	c := e.Clone()
	require.NoError(t, e.AppendOperator(cards.OpSubtract))
	require.NoError(t, e.AppendNumber(1, false))

	assert.Equal(t, "2 + 3", c.String())
	assert.Equal(t, "2 + 3 - 1", e.String())
	if diff := cmp.Diff([]Term{{Value: 2}, {Value: 3}}, c.Terms()); diff != "" {
		t.Fatalf("terms mismatch (-want +got):\n%s", diff)
	}
}

func TestDisplayForm(t *testing.T) {
	e := build(t, Term{Value: 9, Sqrt: true}, cards.OpSubtract, 4, cards.OpMultiply, 2, cards.OpDivide, 1)
	assert.Equal(t, "√9 - 4 × 2 ÷ 1", e.String())
	assert.Equal(t, []string{"√9", "-", "4", "×", "2", "÷", "1"}, e.Tokens())
}

func TestEvaluateLeftToRight(t *testing.T) {
	res := Evaluate(build(t, 2, cards.OpAdd, 3, cards.OpMultiply, 4))
	require.True(t, res.Success, res.Reason)
	assert.Equal(t, 20.0, res.Value)

	res = Evaluate(build(t, 9, cards.OpSubtract, 3, cards.OpDivide, 2))
	require.True(t, res.Success)
	assert.Equal(t, 3.0, res.Value)
}

func TestEvaluateSqrt(t *testing.T) {
	res := Evaluate(build(t, Term{Value: 9, Sqrt: true}))
	require.True(t, res.Success)
	assert.Equal(t, 3.0, res.Value)
}

func TestEvaluateFailures(t *testing.T) {
	cases := []struct {
		name string
		expr *Expression
		want error
	}{
		{"empty", New(), ErrEmptyExpression},
		{"nil", nil, ErrEmptyExpression},
		{"dangling", build(t, 5, cards.OpAdd), ErrDanglingOperator},
		{"divide by zero", build(t, 5, cards.OpDivide, 0), ErrDivisionByZero},
		{"divide by rooted zero", build(t, 5, cards.OpDivide, Term{Value: 0, Sqrt: true}), ErrDivisionByZero},
		{"negative sqrt", &Expression{terms: []Term{{Value: -4, Sqrt: true}}}, ErrNegativeSqrtOperand},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Evaluate(tc.expr)
			assert.False(t, res.Success)
			assert.Zero(t, res.Value)
			assert.ErrorIs(t, res.Reason, tc.want)
		})
	}
}

func TestEvaluateStopsAtFirstFailure(t *testing.T) {
	e := &Expression{
		terms: []Term{{Value: 1}, {Value: 0}, {Value: -1, Sqrt: true}},
		ops:   []cards.Op{cards.OpDivide, cards.OpAdd},
	}
	assert.ErrorIs(t, Evaluate(e).Reason, ErrDivisionByZero)
}

func TestValidateSqrtBudgetExact(t *testing.T) {
	hand := cards.Hand{Numbers: []int{4, 9}, SqrtBudget: 1}

	none := build(t, 4, cards.OpAdd, 9)
	two := build(t, Term{Value: 4, Sqrt: true}, cards.OpAdd, Term{Value: 9, Sqrt: true})
	one := build(t, 4, cards.OpAdd, Term{Value: 9, Sqrt: true})

	assert.ErrorIs(t, Validate(none, hand).Reason, ErrSqrtBudgetMismatch)
	assert.ErrorIs(t, Validate(two, hand).Reason, ErrSqrtBudgetMismatch)
	assert.True(t, Validate(one, hand).Valid)

	// exactly one root is necessary, not sufficient
	bad := build(t, 4, cards.OpMultiply, Term{Value: 9, Sqrt: true})
	assert.False(t, Validate(bad, hand).Valid)
}

func TestValidateMultiplyBudgetExact(t *testing.T) {
	hand := cards.Hand{Numbers: []int{1, 2, 3}, MultiplyBudget: 1}
	assert.ErrorIs(t, Validate(build(t, 1, cards.OpAdd, 2, cards.OpAdd, 3), hand).Reason, ErrMultiplyBudgetMismatch)
	assert.ErrorIs(t, Validate(build(t, 1, cards.OpMultiply, 2, cards.OpMultiply, 3), hand).Reason, ErrMultiplyBudgetMismatch)
	assert.True(t, Validate(build(t, 1, cards.OpMultiply, 2, cards.OpAdd, 3), hand).Valid)
}

func TestValidateStructureAndDisabled(t *testing.T) {
	hand := cards.Hand{Numbers: []int{1, 2}, Disabled: cards.NewOpSet(cards.OpSubtract)}
	assert.ErrorIs(t, Validate(New(), hand).Reason, ErrEmptyExpression)
	assert.ErrorIs(t, Validate(build(t, 1, cards.OpAdd), hand).Reason, ErrDanglingOperator)

	res := Validate(build(t, 1, cards.OpSubtract, 2), hand)
	assert.ErrorIs(t, res.Reason, ErrDisabledOperator)
	assert.Equal(t, KindDisabledOperator, KindOf(res.Reason))
	assert.True(t, Validate(build(t, 1, cards.OpAdd, 2), hand).Valid)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindStructural, KindOf(ErrDanglingOperator))
	assert.Equal(t, KindArithmetic, KindOf(ErrDivisionByZero))
	assert.Equal(t, KindNoFeasiblePlay, KindOf(ErrNoFeasiblePlay))

	res := Validate(build(t, 3), cards.Hand{Numbers: []int{3}, SqrtBudget: 1})
	assert.Equal(t, KindBudgetMismatch, KindOf(res.Reason))
	assert.Equal(t, "budget_mismatch", KindOf(res.Reason).String())
}
