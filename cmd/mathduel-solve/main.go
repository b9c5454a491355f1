// mathduel-solve runs the opponent search from the command line.
//
//	mathduel-solve --numbers 4,9 --target 5 --sqrt 1
//	mathduel-solve deal --seed 42
//	mathduel-solve deal --date 2026-03-01 --salt local_dev_salt
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/mathduel/assets"
	"github.com/robalobadob/mathduel/internal/cards"
	"github.com/robalobadob/mathduel/internal/daily"
	"github.com/robalobadob/mathduel/internal/deck"
	"github.com/robalobadob/mathduel/internal/game"
	"github.com/robalobadob/mathduel/internal/solver"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type solveFlags struct {
	numbers  []int
	target   int
	sqrt     int
	multiply int
	disable  []string
	timeout  time.Duration
	asJSON   bool
}

func newRootCmd() *cobra.Command {
	var f solveFlags
	root := &cobra.Command{
		Use:          "mathduel-solve",
		Short:        "Find the closest expression a hand can build for a target",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			hand := cards.Hand{Numbers: f.numbers, SqrtBudget: f.sqrt, MultiplyBudget: f.multiply}
			for _, name := range f.disable {
				op, err := cards.ParseOp(name)
				if err != nil {
					return err
				}
				if op == cards.OpMultiply {
					return fmt.Errorf("multiply cannot be disabled")
				}
				hand.Disabled = hand.Disabled.With(op)
			}
			if len(hand.Numbers) == 0 {
				return fmt.Errorf("--numbers is required")
			}
			if err := hand.Validate(); err != nil {
				return err
			}
			out := solver.New(&solver.Config{Timeout: f.timeout}).SolveContext(cmd.Context(), hand, f.target)
			return printOutcome(cmd.OutOrStdout(), "best", out, f.asJSON)
		},
	}
	root.Flags().IntSliceVar(&f.numbers, "numbers", nil, "number card values, e.g. 4,9")
	root.Flags().IntVar(&f.target, "target", 0, "target value")
	root.Flags().IntVar(&f.sqrt, "sqrt", 0, "square-root specials held")
	root.Flags().IntVar(&f.multiply, "multiply", 0, "forced-multiply specials held")
	root.Flags().StringSliceVar(&f.disable, "disable", nil, "disabled operators (add, subtract, divide)")
	root.PersistentFlags().DurationVar(&f.timeout, "timeout", 0, "stop the search after this long (0 = run to completion)")
	root.PersistentFlags().BoolVar(&f.asJSON, "json", false, "print JSON")

	root.AddCommand(newDealCmd(&f))
	return root
}

func newDealCmd(f *solveFlags) *cobra.Command {
	var (
		seed     uint64
		date     string
		salt     string
		deckFile string
	)
	cmd := &cobra.Command{
		Use:   "deal",
		Short: "Deal a round and solve both hands",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readRules(deckFile)
			if err != nil {
				return err
			}
			rules, err := deck.ParseRules(raw)
			if err != nil {
				return err
			}

			switch {
			case date != "":
				day, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("bad --date: %w", err)
				}
				seed = daily.Seed(day, salt)
			case !cmd.Flags().Changed("seed"):
				seed = deck.RandomSeed()
			}
			d, err := deck.DealRound(deck.NewRand(seed), rules)
			if err != nil {
				return err
			}
			log.Debug().Uint64("seed", seed).Int("target", d.Target).Msg("dealt")

			w := cmd.OutOrStdout()
			if !f.asJSON {
				fmt.Fprintf(w, "seed %d  target %d  disabled [%s]\n", seed, d.Target, d.Disabled)
				fmt.Fprintf(w, "human    %v\nopponent %v\n", d.HumanCards, d.OpponentCards)
			}
			sv := solver.New(&solver.Config{Timeout: f.timeout})
			if err := printOutcome(w, "human", sv.SolveContext(cmd.Context(), d.Human, d.Target), f.asJSON); err != nil {
				return err
			}
			return printOutcome(w, "opponent", sv.SolveContext(cmd.Context(), d.Opponent, d.Target), f.asJSON)
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "deal seed (random when unset)")
	cmd.Flags().StringVar(&date, "date", "", "deal the daily round for YYYY-MM-DD")
	cmd.Flags().StringVar(&salt, "salt", "local_dev_salt", "daily salt (DAILY_SALT on the server)")
	cmd.Flags().StringVar(&deckFile, "deck", "", "deck rules YAML (embedded default when empty)")
	return cmd
}

func readRules(path string) ([]byte, error) {
	if path == "" {
		return assets.DeckRules()
	}
	return os.ReadFile(path)
}

func printOutcome(w io.Writer, label string, out solver.Outcome, asJSON bool) error {
	score := game.ScoreOutcome(out)
	if asJSON {
		return json.NewEncoder(w).Encode(map[string]any{
			"label":    label,
			"best":     score,
			"leaves":   out.Leaves,
			"complete": out.Complete,
		})
	}
	if !out.Found() {
		_, err := fmt.Fprintf(w, "%-8s no feasible expression (%d leaves)\n", label, out.Leaves)
		return err
	}
	suffix := ""
	if !out.Complete {
		suffix = "  (timed out; best so far)"
	}
	_, err := fmt.Fprintf(w, "%-8s %s = %g  distance %g  (%d leaves)%s\n",
		label, out.Expression, out.Value, out.Distance, out.Leaves, suffix)
	return err
}
