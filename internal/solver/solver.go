// internal/solver/solver.go
//
// Exhaustive opponent search. Given a hand and a target, enumerates every
// expression buildable from the hand's exact card budget and keeps the one
// closest to the target.
//
// Search stages (outer to inner):
//  1. distinct arrangements of the number multiset (duplicates collapsed)
//  2. distribution of the square-root budget across positions
//  3. operator assignment: forced multiplies plus available base operators
//  4. build, validate, evaluate, compare
//
// Enumeration order is fixed, so results are reproducible. Ties keep the
// first candidate found.

package solver

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mathduel/internal/cards"
	"github.com/robalobadob/mathduel/internal/expr"
)

// ErrNoFeasiblePlay is reported by Outcome.Err when no expression qualifies.
var ErrNoFeasiblePlay = expr.ErrNoFeasiblePlay

// Config configures a Solver.
type Config struct {
	// Timeout bounds SolveContext. Zero means no bound beyond ctx.
	Timeout time.Duration

	// CheckEvery is how many leaves pass between cancellation checks.
	CheckEvery int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:    0,
		CheckEvery: 512,
	}
}

// Solver is stateless between calls and safe for concurrent use.
type Solver struct {
	config *Config
}

// New creates a Solver. A nil config uses DefaultConfig().
func New(config *Config) *Solver {
	if config == nil {
		config = DefaultConfig()
	}
	if config.CheckEvery <= 0 {
		config.CheckEvery = DefaultConfig().CheckEvery
	}
	return &Solver{config: config}
}

// Outcome is the result of a search.
type Outcome struct {
	Expression *expr.Expression // empty when nothing was found
	Value      float64          // evaluated value of Expression
	Distance   float64          // |Value - target|, +Inf when nothing was found
	Leaves     int              // complete candidates examined
	Complete   bool             // false when the search stopped early
}

// Found reports whether a feasible expression was found.
func (o Outcome) Found() bool { return !math.IsInf(o.Distance, 1) }

// Err returns ErrNoFeasiblePlay when nothing was found.
func (o Outcome) Err() error {
	if o.Found() {
		return nil
	}
	return ErrNoFeasiblePlay
}

// Solve runs a full search with a default solver.
func Solve(hand cards.Hand, target int) Outcome {
	return New(nil).Solve(hand, target)
}

// Solve runs the full search to completion.
func (s *Solver) Solve(hand cards.Hand, target int) Outcome {
	return s.run(context.Background(), hand, target)
}

// SolveContext is the bounded variant: once ctx is done (or the configured
// timeout elapses) it returns the best expression found so far with
// Complete set to false.
func (s *Solver) SolveContext(ctx context.Context, hand cards.Hand, target int) Outcome {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}
	return s.run(ctx, hand, target)
}

func (s *Solver) run(ctx context.Context, hand cards.Hand, target int) Outcome {
	start := time.Now()
	out := emptyOutcome()

	if !feasible(hand) {
		out.Complete = true
		observe(resultInfeasible, 0, time.Since(start))
		log.Debug().Ints("numbers", hand.Numbers).Int("multiply", hand.MultiplyBudget).
			Int("sqrt", hand.SqrtBudget).Msg("solver: hand infeasible, search skipped")
		return out
	}

	sr := newSearch(ctx, hand, target, s.config.CheckEvery)
	sr.arrange(0, sr.counts)

	out = sr.best
	out.Leaves = sr.leaves
	out.Complete = !sr.stopped

	result := resultFound
	switch {
	case sr.stopped:
		result = resultDeadline
	case !out.Found():
		result = resultNone
	}
	observe(result, sr.leaves, time.Since(start))

	log.Debug().
		Ints("numbers", hand.Numbers).
		Int("target", target).
		Int("leaves", sr.leaves).
		Bool("complete", out.Complete).
		Str("best", out.Expression.String()).
		Float64("distance", out.Distance).
		Dur("elapsed", time.Since(start)).
		Msg("solver: search finished")
	return out
}

func emptyOutcome() Outcome {
	return Outcome{Expression: expr.New(), Distance: math.Inf(1)}
}

// feasible rejects hands whose budgets can never be spent exactly.
func feasible(h cards.Hand) bool {
	n := len(h.Numbers)
	if n == 0 {
		return false
	}
	if h.Validate() != nil {
		return false
	}
	if h.SqrtBudget > n {
		return false
	}
	if h.MultiplyBudget > h.Slots() {
		return false
	}
	// no base operator left: every slot must be a forced multiply
	if len(h.Available()) == 0 && h.MultiplyBudget != h.Slots() {
		return false
	}
	return true
}
