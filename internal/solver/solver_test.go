package solver

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mathduel/internal/cards"
	"github.com/robalobadob/mathduel/internal/expr"
)

// oracle enumerates every slot permutation (duplicates included), every
// root mask and every operator over all four ops, keeping whatever the
// validator and evaluator accept. No pruning.
func oracle(t *testing.T, hand cards.Hand, target int) float64 {
	t.Helper()
	n := len(hand.Numbers)
	best := math.Inf(1)
	if n == 0 {
		return best
	}
	allOps := []cards.Op{cards.OpAdd, cards.OpSubtract, cards.OpDivide, cards.OpMultiply}

	var perms [][]int
	var permute func(cur []int, used []bool)
	permute = func(cur []int, used []bool) {
		if len(cur) == n {
			perms = append(perms, append([]int(nil), cur...))
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			permute(append(cur, hand.Numbers[i]), used)
			used[i] = false
		}
	}
	permute(nil, make([]bool, n))

	opCombos := 1
	for i := 0; i < n-1; i++ {
		opCombos *= len(allOps)
	}

	for _, p := range perms {
		for mask := 0; mask < 1<<n; mask++ {
			for combo := 0; combo < opCombos; combo++ {
				e := expr.New()
				c := combo
				for i, v := range p {
					if i > 0 {
						require.NoError(t, e.AppendOperator(allOps[c%len(allOps)]))
						c /= len(allOps)
					}
					require.NoError(t, e.AppendNumber(v, mask&(1<<i) != 0))
				}
				if !expr.Validate(e, hand).Valid {
					continue
				}
				res := expr.Evaluate(e)
				if !res.Success {
					continue
				}
				best = math.Min(best, math.Abs(res.Value-float64(target)))
			}
		}
	}
	return best
}

func TestSolveSumsToTarget(t *testing.T) {
	out := Solve(cards.Hand{Numbers: []int{2, 3, 5}}, 10)

	require.True(t, out.Found())
	assert.True(t, out.Complete)
	assert.Equal(t, 0.0, out.Distance)
	assert.Equal(t, 10.0, out.Value)
	assert.Equal(t, "2 + 3 + 5", out.Expression.String())
}

func TestSolveSqrtPlacement(t *testing.T) {
	hand := cards.Hand{Numbers: []int{4, 9}, SqrtBudget: 1}
	out := Solve(hand, 5)

	require.True(t, out.Found())
	assert.InDelta(t, oracle(t, hand, 5), out.Distance, 1e-12)
	assert.InDelta(t, 0.5, out.Distance, 1e-12)
	assert.Equal(t, "9 ÷ √4", out.Expression.String())
	assert.True(t, expr.Validate(out.Expression, hand).Valid)
}

func TestSolveMatchesOracle(t *testing.T) {
	cases := []struct {
		name   string
		hand   cards.Hand
		target int
	}{
		{"plain", cards.Hand{Numbers: []int{1, 7, 4}}, 23},
		{"duplicates", cards.Hand{Numbers: []int{3, 3, 3, 2}}, 17},
		{"forced multiply", cards.Hand{Numbers: []int{2, 6, 5}, MultiplyBudget: 1}, 41},
		{"two multiplies", cards.Hand{Numbers: []int{2, 3, 4, 1}, MultiplyBudget: 2}, 50},
		{"roots and multiply", cards.Hand{Numbers: []int{9, 4, 0, 7}, SqrtBudget: 2, MultiplyBudget: 1}, 13},
		{"disabled", cards.Hand{Numbers: []int{8, 2, 10}, Disabled: cards.NewOpSet(cards.OpAdd, cards.OpDivide)}, 30},
		{"zeros", cards.Hand{Numbers: []int{0, 0, 5}}, 3},
		{"single number", cards.Hand{Numbers: []int{9}, SqrtBudget: 1}, 2},
		{"all multiply", cards.Hand{Numbers: []int{2, 3, 4}, MultiplyBudget: 2,
			Disabled: cards.NewOpSet(cards.OpAdd, cards.OpSubtract, cards.OpDivide)}, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Solve(tc.hand, tc.target)
			want := oracle(t, tc.hand, tc.target)

			require.False(t, math.IsInf(want, 1), "oracle found nothing")
			require.True(t, out.Found())
			assert.InDelta(t, want, out.Distance, 1e-9)

			res := expr.Evaluate(out.Expression)
			require.True(t, res.Success)
			assert.InDelta(t, out.Value, res.Value, 1e-12)
			assert.True(t, expr.Validate(out.Expression, tc.hand).Valid)
		})
	}
}

func TestSolveDeterministic(t *testing.T) {
	hand := cards.Hand{Numbers: []int{5, 1, 5, 8}, SqrtBudget: 1, MultiplyBudget: 1}
	a := Solve(hand, 19)
	b := Solve(hand, 19)

	assert.Equal(t, a.Distance, b.Distance)
	assert.Equal(t, a.Leaves, b.Leaves)
	if diff := cmp.Diff(a.Expression.Terms(), b.Expression.Terms()); diff != "" {
		t.Fatalf("terms differ (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(a.Expression.Ops(), b.Expression.Ops()); diff != "" {
		t.Fatalf("ops differ (-a +b):\n%s", diff)
	}
}

func TestSolveCollapsesDuplicateArrangements(t *testing.T) {
	// three equal values have one distinct arrangement: 3 ops ^ 2 slots leaves
	out := Solve(cards.Hand{Numbers: []int{4, 4, 4}}, 100)
	assert.Equal(t, 9, out.Leaves)

	// 4,4,5 has 3 distinct arrangements
	out = Solve(cards.Hand{Numbers: []int{4, 4, 5}}, 100)
	assert.Equal(t, 27, out.Leaves)
}

func TestSolveInfeasibleHands(t *testing.T) {
	cases := map[string]cards.Hand{
		"empty":                   {},
		"multiply without slots":  {Numbers: []int{5}, MultiplyBudget: 1},
		"multiply exceeds slots":  {Numbers: []int{1, 2}, MultiplyBudget: 2},
		"roots exceed numbers":    {Numbers: []int{1, 2}, SqrtBudget: 3},
		"no operators at all":     {Numbers: []int{1, 2, 3}, MultiplyBudget: 1, Disabled: cards.NewOpSet(cards.OpAdd, cards.OpSubtract, cards.OpDivide)},
		"out of range card value": {Numbers: []int{12, 1}},
	}
	for name, hand := range cases {
		t.Run(name, func(t *testing.T) {
			out := Solve(hand, 7)
			assert.False(t, out.Found())
			assert.True(t, math.IsInf(out.Distance, 1))
			assert.True(t, out.Expression.IsEmpty())
			assert.Zero(t, out.Leaves)
			assert.ErrorIs(t, out.Err(), ErrNoFeasiblePlay)
		})
	}
}

func TestSolveNoValidLeaf(t *testing.T) {
	// every arrangement divides by zero
	hand := cards.Hand{Numbers: []int{0, 0}, Disabled: cards.NewOpSet(cards.OpAdd, cards.OpSubtract)}
	out := Solve(hand, 1)
	assert.True(t, out.Complete)
	assert.Equal(t, 1, out.Leaves)
	assert.False(t, out.Found())
	assert.Equal(t, expr.KindNoFeasiblePlay, expr.KindOf(out.Err()))
}

func TestSolveContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := New(nil).SolveContext(ctx, cards.Hand{Numbers: []int{1, 2, 3, 4, 5}}, 10)
	assert.False(t, out.Complete)
	assert.False(t, out.Found())
}

func TestSolveCompletesWithFrequentChecks(t *testing.T) {
	s := New(&Config{CheckEvery: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := s.SolveContext(ctx, cards.Hand{Numbers: []int{2, 3, 5}}, 10)
	assert.True(t, out.Complete)
	assert.Equal(t, 0.0, out.Distance)
}

func TestSolveContextDeadlineKeepsBestSoFar(t *testing.T) {
	hand := cards.Hand{Numbers: []int{1, 2, 3, 4, 5, 6, 7, 8}, SqrtBudget: 2, MultiplyBudget: 2}
	s := New(&Config{Timeout: 2 * time.Millisecond, CheckEvery: 1})

	out := s.SolveContext(context.Background(), hand, 37)
	require.False(t, out.Complete, "search over eight cards should not finish in 2ms")
	require.True(t, out.Found())
	assert.Positive(t, out.Leaves)

	v := expr.Validate(out.Expression, hand)
	assert.True(t, v.Valid, "best-so-far rejected: %v", v.Reason)
	ev := expr.Evaluate(out.Expression)
	require.True(t, ev.Success)
	assert.InDelta(t, math.Abs(ev.Value-37), out.Distance, 1e-9)
}
