// internal/game/types.go
//
// Core type definitions for a single round.
// Defines:
//   - Outcome: human-side result of a resolved round (win/loss/draw).
//   - Score:   one side's scored expression.
//   - Result:  both sides' scores plus outcome and payout.
//   - Round:   state for a single in-progress or finished round.

package game

import (
	"sync"
	"time"

	"github.com/robalobadob/mathduel/internal/cards"
)

// Outcome is the round result from the human player's point of view.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

// Score is one side's expression and how close it came to the target.
// Distance is +Inf when the expression was rejected; Reason says why.
type Score struct {
	Expression string
	Tokens     []string
	Value      *float64
	Distance   float64
	Reason     error
}

// Result is filled in once a round is resolved.
type Result struct {
	Human    Score   `json:"human"`
	Opponent Score   `json:"opponent"`
	Outcome  Outcome `json:"outcome"`
	Payout   int     `json:"payout"` // credit delta for the human player
	Complete bool    `json:"complete"`
}

// Round holds the state of a single round.
type Round struct {
	mu sync.Mutex

	ID       string     // Unique round identifier (uuid).
	Target   int        // Number both sides aim for.
	Wager    int        // Credits at stake.
	Daily    string     // Date key when dealt from the daily seed, else "".
	Started  time.Time  // When the round was dealt.
	Human    cards.Hand // Human player's hand.
	Opponent cards.Hand // Computer opponent's hand.
	Finished bool       // True once resolved.
	Result   *Result    // Set when Finished.

	assembler *Assembler
}
