// internal/game/engine.go
//
// Round engine.
// Responsibilities:
//   - Create rounds from a dealt setup (hands, target, wager).
//   - Route human card clicks into the round's Assembler.
//   - Resolve: score the human expression and run the opponent solver
//     concurrently, compare distances, compute the payout.
//
// Notes:
//   - Human-side failures (unused cards, invalid or failing expressions)
//     score as +Inf distance; they never abort the round.
//   - The round mutex guards every exported method.

package game

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/mathduel/internal/cards"
	"github.com/robalobadob/mathduel/internal/expr"
	"github.com/robalobadob/mathduel/internal/solver"
)

var ErrRoundFinished = errors.New("game: round finished")

// Setup is everything a round is dealt with.
type Setup struct {
	Human    cards.Hand
	Opponent cards.Hand
	Target   int
	Wager    int
	Daily    string
}

// New constructs a round in the building phase.
func New(s Setup) *Round {
	return &Round{
		ID:        uuid.NewString(),
		Target:    s.Target,
		Wager:     s.Wager,
		Daily:     s.Daily,
		Started:   time.Now(),
		Human:     s.Human.Clone(),
		Opponent:  s.Opponent.Clone(),
		assembler: NewAssembler(s.Human.Clone()),
	}
}

// View is a read-only snapshot of a round for callers outside the lock.
type View struct {
	ID              string
	Target          int
	Wager           int
	Daily           string
	Hand            cards.Hand
	Used            []bool
	Expression      *expr.Expression
	ExpectingNumber bool
	SqrtLeft        int
	MultiplyLeft    int
	Finished        bool
	Result          *Result
}

// View returns a snapshot of the round.
func (r *Round) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked()
}

func (r *Round) viewLocked() View {
	e := r.assembler.Expression()
	sq, mul := r.assembler.Remaining()
	return View{
		ID:              r.ID,
		Target:          r.Target,
		Wager:           r.Wager,
		Daily:           r.Daily,
		Hand:            r.Human.Clone(),
		Used:            r.assembler.Used(),
		Expression:      e,
		ExpectingNumber: e.ExpectingNumber(),
		SqrtLeft:        sq,
		MultiplyLeft:    mul,
		Finished:        r.Finished,
		Result:          r.Result,
	}
}

// PlayNumber plays a human number card.
func (r *Round) PlayNumber(slot int, sqrt bool) (View, error) {
	return r.mutate(func(a *Assembler) error { return a.PlayNumber(slot, sqrt) })
}

// PlayOperator plays a human operator.
func (r *Round) PlayOperator(op cards.Op) (View, error) {
	return r.mutate(func(a *Assembler) error { return a.PlayOperator(op) })
}

// Reset returns all played cards to the human hand.
func (r *Round) Reset() (View, error) {
	return r.mutate(func(a *Assembler) error { a.Reset(); return nil })
}

func (r *Round) mutate(fn func(*Assembler) error) (View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Finished {
		return r.viewLocked(), ErrRoundFinished
	}
	err := fn(r.assembler)
	return r.viewLocked(), err
}

// Resolve scores both sides and finishes the round. The opponent search is
// bounded by ctx; on deadline the best expression found so far is used and
// Result.Complete is false.
func (r *Round) Resolve(ctx context.Context, s *solver.Solver) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Finished {
		return r.Result, ErrRoundFinished
	}

	humanExpr := r.assembler.Expression()
	allUsed := r.assembler.AllNumbersUsed()

	var human, opponent Score
	var complete bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if !allUsed {
			human = rejected(humanExpr, ErrUnusedNumbers)
			return nil
		}
		human = ScoreExpression(humanExpr, r.Human, r.Target)
		return nil
	})
	g.Go(func() error {
		out := s.SolveContext(gctx, r.Opponent, r.Target)
		opponent = ScoreOutcome(out)
		complete = out.Complete
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Human: human, Opponent: opponent, Complete: complete}
	res.Outcome = Compare(human.Distance, opponent.Distance)
	res.Payout = Payout(res.Outcome, r.Wager)

	r.Result = res
	r.Finished = true
	return res, nil
}

// ScoreExpression validates e against hand, then evaluates it.
func ScoreExpression(e *expr.Expression, hand cards.Hand, target int) Score {
	if v := expr.Validate(e, hand); !v.Valid {
		return rejected(e, v.Reason)
	}
	res := expr.Evaluate(e)
	if !res.Success {
		return rejected(e, res.Reason)
	}
	val := res.Value
	return Score{
		Expression: e.String(),
		Tokens:     e.Tokens(),
		Value:      &val,
		Distance:   math.Abs(val - float64(target)),
	}
}

// ScoreOutcome converts a solver outcome into a Score.
func ScoreOutcome(out solver.Outcome) Score {
	if !out.Found() {
		return rejected(out.Expression, out.Err())
	}
	val := out.Value
	return Score{
		Expression: out.Expression.String(),
		Tokens:     out.Expression.Tokens(),
		Value:      &val,
		Distance:   out.Distance,
	}
}

func rejected(e *expr.Expression, reason error) Score {
	return Score{
		Expression: e.String(),
		Tokens:     e.Tokens(),
		Distance:   math.Inf(1),
		Reason:     reason,
	}
}

// Compare decides the human outcome by distance; equal distances draw.
func Compare(human, opponent float64) Outcome {
	switch {
	case human < opponent:
		return OutcomeWin
	case human > opponent:
		return OutcomeLoss
	}
	return OutcomeDraw
}

// Payout is the human credit delta for an outcome.
func Payout(o Outcome, wager int) int {
	switch o {
	case OutcomeWin:
		return wager
	case OutcomeLoss:
		return -wager
	}
	return 0
}

// MarshalJSON reports an infinite distance as absent and the reason as text.
func (s Score) MarshalJSON() ([]byte, error) {
	type wire struct {
		Expression string   `json:"expression"`
		Tokens     []string `json:"tokens"`
		Value      *float64 `json:"value,omitempty"`
		Distance   *float64 `json:"distance,omitempty"`
		Reason     string   `json:"reason,omitempty"`
		Kind       string   `json:"kind,omitempty"`
	}
	w := wire{Expression: s.Expression, Tokens: s.Tokens, Value: s.Value}
	if w.Tokens == nil {
		w.Tokens = []string{}
	}
	if !math.IsInf(s.Distance, 1) {
		d := s.Distance
		w.Distance = &d
	}
	if s.Reason != nil {
		w.Reason = s.Reason.Error()
		if k := expr.KindOf(s.Reason); k != expr.KindUnknown {
			w.Kind = k.String()
		} else if errors.Is(s.Reason, ErrUnusedNumbers) {
			w.Kind = "unused_numbers"
		}
	}
	return json.Marshal(w)
}
