package solver

import (
	"context"
	"math"

	"github.com/robalobadob/mathduel/internal/cards"
	"github.com/robalobadob/mathduel/internal/expr"
)

// valueCounts is the number multiset keyed by card value. It is passed by
// value so every arrangement branch owns its own snapshot.
type valueCounts [cards.MaxValue + 1]int

// search holds the per-call state. Buffers are indexed by depth, so a
// deeper level overwrites its own position and nothing needs undoing.
type search struct {
	ctx        context.Context
	hand       cards.Hand
	target     float64
	n          int
	counts     valueCounts
	base       []cards.Op
	checkEvery int
	untilCheck int

	arrangement []int
	roots       []bool
	ops         []cards.Op

	leaves  int
	stopped bool
	best    Outcome
}

func newSearch(ctx context.Context, hand cards.Hand, target, checkEvery int) *search {
	n := len(hand.Numbers)
	sr := &search{
		ctx:         ctx,
		hand:        hand,
		target:      float64(target),
		n:           n,
		base:        hand.Available(),
		checkEvery:  checkEvery,
		arrangement: make([]int, n),
		roots:       make([]bool, n),
		ops:         make([]cards.Op, max(n-1, 0)),
		best:        emptyOutcome(),
	}
	for _, v := range hand.Numbers {
		sr.counts[v]++
	}
	return sr
}

// arrange picks, for position pos, one value from those still remaining.
// Equal values are a single choice, so indistinguishable orders are never
// revisited.
func (sr *search) arrange(pos int, counts valueCounts) {
	if pos == sr.n {
		sr.distribute(0, sr.hand.SqrtBudget)
		return
	}
	for v := range counts {
		if counts[v] == 0 {
			continue
		}
		next := counts
		next[v]--
		sr.arrangement[pos] = v
		sr.arrange(pos+1, next)
		if sr.stopped {
			return
		}
	}
}

// distribute spends the square-root budget across positions. A term holds a
// single root flag, so each position takes 0 or 1.
func (sr *search) distribute(pos, remaining int) {
	if remaining > sr.n-pos {
		return
	}
	if pos == sr.n {
		sr.assign(0, sr.hand.MultiplyBudget)
		return
	}
	for k := 0; k <= min(remaining, 1); k++ {
		sr.roots[pos] = k == 1
		sr.distribute(pos+1, remaining-k)
		if sr.stopped {
			return
		}
	}
}

// assign fills operator slots. Forced multiplies are tried first, then the
// available base operators. A branch is cut once the multiplies still owed
// outnumber the slots left.
func (sr *search) assign(slot, mulLeft int) {
	slots := len(sr.ops)
	if mulLeft > slots-slot {
		return
	}
	if slot == slots {
		if mulLeft == 0 {
			sr.leaf()
		}
		return
	}
	if mulLeft > 0 {
		sr.ops[slot] = cards.OpMultiply
		sr.assign(slot+1, mulLeft-1)
		if sr.stopped {
			return
		}
	}
	for _, op := range sr.base {
		sr.ops[slot] = op
		sr.assign(slot+1, mulLeft)
		if sr.stopped {
			return
		}
	}
}

func (sr *search) leaf() {
	if sr.untilCheck == 0 {
		if sr.ctx.Err() != nil {
			sr.stopped = true
			return
		}
		sr.untilCheck = sr.checkEvery
	}
	sr.untilCheck--
	sr.leaves++

	e := sr.build()
	if !expr.Validate(e, sr.hand).Valid {
		return
	}
	res := expr.Evaluate(e)
	if !res.Success {
		return
	}
	if d := math.Abs(res.Value - sr.target); d < sr.best.Distance {
		sr.best.Expression = e
		sr.best.Value = res.Value
		sr.best.Distance = d
	}
}

// build goes through the public append API so candidates obey the same
// alternation rules as human input.
func (sr *search) build() *expr.Expression {
	e := expr.New()
	for i := 0; i < sr.n; i++ {
		if i > 0 {
			_ = e.AppendOperator(sr.ops[i-1])
		}
		_ = e.AppendNumber(sr.arrangement[i], sr.roots[i])
	}
	return e
}
