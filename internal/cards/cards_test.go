package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberClamps(t *testing.T) {
	assert.Equal(t, 0, Number(-3).Value())
	assert.Equal(t, 10, Number(42).Value())
	assert.Equal(t, 7, Number(7).Value())
	assert.Equal(t, KindNumber, Number(7).Kind())
}

func TestCardCopyIsIndependentValue(t *testing.T) {
	a := Special(EffectSquareRoot)
	b := a
	assert.Equal(t, a, b)
	assert.Equal(t, "√", b.String())
	assert.Equal(t, "×", Operator(OpMultiply).String())
}

func TestParseOp(t *testing.T) {
	for in, want := range map[string]Op{
		"+": OpAdd, "Sub": OpSubtract, "÷": OpDivide, "/": OpDivide, "x": OpMultiply,
	} {
		got, err := ParseOp(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseOp("%")
	assert.Error(t, err)
}

func TestFromCardsTalliesBudgets(t *testing.T) {
	h := FromCards([]Card{
		Number(4), Special(EffectSquareRoot), Number(9), Operator(OpAdd),
		Special(EffectForcedMultiply), Special(EffectSquareRoot),
	}, NewOpSet(OpDivide, OpMultiply))

	assert.Equal(t, []int{4, 9}, h.Numbers)
	assert.Equal(t, 2, h.SqrtBudget)
	assert.Equal(t, 1, h.MultiplyBudget)
	assert.True(t, h.Disabled.Has(OpDivide))
	assert.False(t, h.Disabled.Has(OpMultiply), "multiply is never disabled")
	assert.Equal(t, []Op{OpAdd, OpSubtract}, h.Available())
	assert.True(t, h.Allowed(OpMultiply))
	assert.False(t, h.Allowed(OpDivide))
}

func TestHandCloneIsDeep(t *testing.T) {
	h := Hand{Numbers: []int{1, 2, 3}}
	c := h.Clone()
	c.Numbers[0] = 9
	assert.Equal(t, 1, h.Numbers[0])
	assert.Equal(t, 2, h.Slots())
}

func TestHandValidate(t *testing.T) {
	require.NoError(t, Hand{Numbers: []int{0, 10}}.Validate())
	assert.Error(t, Hand{Numbers: []int{11}}.Validate())
	assert.Error(t, Hand{SqrtBudget: -1}.Validate())
}
