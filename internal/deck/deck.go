// internal/deck/deck.go
//
// Deck rules and dealing.
//
// Responsibilities:
//   - Load deck rules from a YAML file named by DECK_FILE, or fall back to
//     the embedded default (assets/deck.yaml).
//   - Deal both sides of a round from a shuffled deck: number cards,
//     special cards, round-wide disabled operators and a target.
//
// Initialization behavior (Init):
//   1. If DECK_FILE is set, parse that file.
//   2. Otherwise parse the embedded default.
//   Init runs once (sync.Once); Loaded() returns the result.
//
// Dealing is deterministic for a given rand source, so a seeded source
// reproduces the same round (daily challenge).

package deck

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/mathduel/assets"
	"github.com/robalobadob/mathduel/internal/cards"
)

// Rules describes deck composition and round parameters.
type Rules struct {
	Numbers          int `yaml:"numbers"`            // number cards per side
	Copies           int `yaml:"copies"`             // copies of each value 0..10
	ForcedMultiply   int `yaml:"forced_multiply"`    // forced-multiply cards in the special pile
	SquareRoot       int `yaml:"square_root"`        // square-root cards in the special pile
	SpecialsPerHand  int `yaml:"specials_per_hand"`  // specials drawn per side
	DisabledPerRound int `yaml:"disabled_per_round"` // base operators disabled for both sides
	TargetMin        int `yaml:"target_min"`
	TargetMax        int `yaml:"target_max"`
	Wager            int `yaml:"wager"` // default stake
}

// Validate checks the rules can deal two full hands.
func (r Rules) Validate() error {
	values := cards.MaxValue - cards.MinValue + 1
	switch {
	case r.Numbers < 1:
		return errors.New("deck: numbers must be at least 1")
	case r.Copies < 1:
		return errors.New("deck: copies must be at least 1")
	case 2*r.Numbers > values*r.Copies:
		return fmt.Errorf("deck: %d number cards cannot deal two hands of %d", values*r.Copies, r.Numbers)
	case r.ForcedMultiply < 0 || r.SquareRoot < 0 || r.SpecialsPerHand < 0:
		return errors.New("deck: special counts must be non-negative")
	case 2*r.SpecialsPerHand > r.ForcedMultiply+r.SquareRoot:
		return fmt.Errorf("deck: special pile too small for %d per hand", r.SpecialsPerHand)
	case r.DisabledPerRound < 0 || r.DisabledPerRound >= len(cards.BaseOps):
		return fmt.Errorf("deck: disabled_per_round must be in [0,%d]", len(cards.BaseOps)-1)
	case r.TargetMin > r.TargetMax:
		return errors.New("deck: target_min exceeds target_max")
	case r.Wager < 0:
		return errors.New("deck: wager must be non-negative")
	}
	return nil
}

// ParseRules decodes and validates YAML rules.
func ParseRules(b []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(b, &r); err != nil {
		return Rules{}, fmt.Errorf("deck: parse rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

var (
	initOnce   sync.Once
	loaded     Rules
	initialErr error
)

// Init loads the rules exactly once.
func Init() error {
	initOnce.Do(func() {
		var raw []byte
		if path := os.Getenv("DECK_FILE"); path != "" {
			raw, initialErr = os.ReadFile(path)
		} else {
			raw, initialErr = assets.DeckRules()
		}
		if initialErr != nil {
			return
		}
		loaded, initialErr = ParseRules(raw)
	})
	return initialErr
}

// Loaded returns the rules read by Init.
func Loaded() Rules { return loaded }

// Deal is one dealt round.
type Deal struct {
	Human         cards.Hand
	Opponent      cards.Hand
	HumanCards    []cards.Card
	OpponentCards []cards.Card
	Disabled      cards.OpSet
	Target        int
}

// NewRand returns a deterministic source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RandomSeed draws a seed from crypto/rand.
func RandomSeed() uint64 {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return binary.BigEndian.Uint64(b[:])
}

// DealRound deals both sides from a freshly shuffled deck.
func DealRound(rng *rand.Rand, r Rules) (Deal, error) {
	if err := r.Validate(); err != nil {
		return Deal{}, err
	}

	numbers := make([]cards.Card, 0, (cards.MaxValue+1)*r.Copies)
	for v := cards.MinValue; v <= cards.MaxValue; v++ {
		for c := 0; c < r.Copies; c++ {
			numbers = append(numbers, cards.Number(v))
		}
	}
	rng.Shuffle(len(numbers), func(i, j int) { numbers[i], numbers[j] = numbers[j], numbers[i] })

	specials := make([]cards.Card, 0, r.ForcedMultiply+r.SquareRoot)
	for i := 0; i < r.ForcedMultiply; i++ {
		specials = append(specials, cards.Special(cards.EffectForcedMultiply))
	}
	for i := 0; i < r.SquareRoot; i++ {
		specials = append(specials, cards.Special(cards.EffectSquareRoot))
	}
	rng.Shuffle(len(specials), func(i, j int) { specials[i], specials[j] = specials[j], specials[i] })

	ops := cards.BaseOps
	rng.Shuffle(len(ops), func(i, j int) { ops[i], ops[j] = ops[j], ops[i] })
	disabled := cards.NewOpSet(ops[:r.DisabledPerRound]...)

	n, s := r.Numbers, r.SpecialsPerHand
	human := append(append([]cards.Card(nil), numbers[:n]...), specials[:s]...)
	opponent := append(append([]cards.Card(nil), numbers[n:2*n]...), specials[s:2*s]...)

	return Deal{
		Human:         cards.FromCards(human, disabled),
		Opponent:      cards.FromCards(opponent, disabled),
		HumanCards:    human,
		OpponentCards: opponent,
		Disabled:      disabled,
		Target:        r.TargetMin + rng.IntN(r.TargetMax-r.TargetMin+1),
	}, nil
}
