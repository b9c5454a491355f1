package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mathduel/assets"
	"github.com/robalobadob/mathduel/internal/cards"
)

func defaultRules(t *testing.T) Rules {
	t.Helper()
	raw, err := assets.DeckRules()
	require.NoError(t, err)
	r, err := ParseRules(raw)
	require.NoError(t, err)
	return r
}

func TestEmbeddedRulesParse(t *testing.T) {
	r := defaultRules(t)
	assert.Equal(t, 4, r.Numbers)
	assert.Equal(t, 1, r.DisabledPerRound)
	assert.LessOrEqual(t, r.TargetMin, r.TargetMax)
}

func TestParseRulesRejectsBadDecks(t *testing.T) {
	_, err := ParseRules([]byte("numbers: 30\ncopies: 1\n"))
	assert.Error(t, err)
	_, err = ParseRules([]byte("numbers: 2\ncopies: 1\ndisabled_per_round: 3\n"))
	assert.Error(t, err)
	_, err = ParseRules([]byte("numbers: [oops"))
	assert.Error(t, err)
}

func TestDealRoundShapes(t *testing.T) {
	r := defaultRules(t)
	d, err := DealRound(NewRand(42), r)
	require.NoError(t, err)

	assert.Len(t, d.Human.Numbers, r.Numbers)
	assert.Len(t, d.Opponent.Numbers, r.Numbers)
	assert.Equal(t, r.SpecialsPerHand, d.Human.SqrtBudget+d.Human.MultiplyBudget)
	assert.Equal(t, r.SpecialsPerHand, d.Opponent.SqrtBudget+d.Opponent.MultiplyBudget)
	assert.Len(t, d.Disabled.Ops(), r.DisabledPerRound)
	assert.Equal(t, d.Disabled, d.Human.Disabled)
	assert.False(t, d.Disabled.Has(cards.OpMultiply))
	assert.GreaterOrEqual(t, d.Target, r.TargetMin)
	assert.LessOrEqual(t, d.Target, r.TargetMax)
	require.NoError(t, d.Human.Validate())
}

func TestDealRoundDeterministic(t *testing.T) {
	r := defaultRules(t)
	a, err := DealRound(NewRand(7), r)
	require.NoError(t, err)
	b, err := DealRound(NewRand(7), r)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDealRoundRespectsCopies(t *testing.T) {
	r := Rules{Numbers: 5, Copies: 1, TargetMax: 5}
	d, err := DealRound(NewRand(1), r)
	require.NoError(t, err)

	seen := map[int]int{}
	for _, v := range append(d.Human.Numbers, d.Opponent.Numbers...) {
		seen[v]++
	}
	assert.Len(t, seen, 10, "single-copy deck never repeats a value")

	_, err = DealRound(NewRand(1), Rules{Numbers: 6, Copies: 1})
	assert.Error(t, err, "two hands of six need twelve cards")
}

func TestInitUsesEmbeddedDefault(t *testing.T) {
	t.Setenv("DECK_FILE", "")
	require.NoError(t, Init())
	assert.Equal(t, defaultRules(t), Loaded())
}
