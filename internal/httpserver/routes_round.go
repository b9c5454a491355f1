// internal/httpserver/routes_round.go
//
// HTTP routes for a single round against the computer opponent:
//   - POST /round/new     → deal a round (optional wager)
//   - GET  /round/{id}    → current state
//   - POST /round/play    → play a number, an operator, or reset the hand
//   - POST /round/submit  → resolve against the opponent, persist, settle credits
//   - POST /solve         → run the solver on an arbitrary hand (ENABLE_SOLVE only)
//
// Rounds live in the in-memory store; the rounds table keeps an owner row
// (user_id or anonymous_id) for history and stats.

package httpserver

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mathduel/internal/cards"
	"github.com/robalobadob/mathduel/internal/deck"
	"github.com/robalobadob/mathduel/internal/game"
)

func (s *Server) mountRounds(r chi.Router) {
	r.Post("/round/new", s.handleNewRound)
	r.Get("/round/{id}", s.handleGetRound)
	r.Post("/round/play", s.handlePlay)
	r.Post("/round/submit", s.handleSubmit)
	// /solve would hand players the answer to a live round or today's
	// daily hand, so it is only mounted for local tooling.
	if getEnvBool("ENABLE_SOLVE", false) {
		r.Post("/solve", s.handleSolve)
	}
}

// roundRes is the JSON shape of a round as the human player sees it.
type roundRes struct {
	RoundID         string       `json:"roundId"`
	Target          int          `json:"target"`
	Wager           int          `json:"wager"`
	Daily           string       `json:"daily,omitempty"`
	Numbers         []int        `json:"numbers"`
	Used            []bool       `json:"used"`
	SqrtLeft        int          `json:"sqrtLeft"`
	MultiplyLeft    int          `json:"multiplyLeft"`
	Disabled        []string     `json:"disabled"`
	Expression      string       `json:"expression"`
	Tokens          []string     `json:"tokens"`
	ExpectingNumber bool         `json:"expectingNumber"`
	Finished        bool         `json:"finished"`
	Result          *game.Result `json:"result,omitempty"`
}

func toRoundRes(v game.View) roundRes {
	disabled := []string{}
	for _, op := range v.Hand.Disabled.Ops() {
		disabled = append(disabled, op.String())
	}
	return roundRes{
		RoundID:         v.ID,
		Target:          v.Target,
		Wager:           v.Wager,
		Daily:           v.Daily,
		Numbers:         v.Hand.Numbers,
		Used:            v.Used,
		SqrtLeft:        v.SqrtLeft,
		MultiplyLeft:    v.MultiplyLeft,
		Disabled:        disabled,
		Expression:      v.Expression.String(),
		Tokens:          v.Expression.Tokens(),
		ExpectingNumber: v.ExpectingNumber,
		Finished:        v.Finished,
		Result:          v.Result,
	}
}

// ------------------------------ /round/new ---------------------------------

type newRoundReq struct {
	Wager *int `json:"wager" validate:"omitempty,min=0,max=10000"`
}

// handleNewRound deals a fresh round. A signed-in player's wager is
// reserved from their credits until the round is submitted; guest wagers
// are for show and never settle.
func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	var req newRoundReq
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	wager := s.rules.Wager
	if req.Wager != nil {
		wager = *req.Wager
	}

	deal, err := deck.DealRound(deck.NewRand(deck.RandomSeed()), s.rules)
	if err != nil {
		log.Error().Err(err).Msg("deal round")
		writeError(w, http.StatusInternalServerError, "deal_failed")
		return
	}
	rd := game.New(game.Setup{
		Human:    deal.Human,
		Opponent: deal.Opponent,
		Target:   deal.Target,
		Wager:    wager,
	})
	switch err := s.startRound(w, r, rd); {
	case errors.Is(err, errInsufficientCredits):
		writeError(w, http.StatusBadRequest, "insufficient_credits")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	writeJSON(w, http.StatusOK, toRoundRes(rd.View()))
}

var errInsufficientCredits = errors.New("insufficient_credits")

// startRound persists rd's owner row (user_id or anonymous_id) and stores
// it. For a signed-in player the wager is debited in the same transaction
// and recorded as the round's stake.
func (s *Server) startRound(w http.ResponseWriter, r *http.Request, rd *game.Round) error {
	ctx := r.Context()
	now := rd.Started.UTC().Format(time.RFC3339)
	if me := currentUser(r); me != nil {
		if err := s.stakeRound(ctx, me.ID, rd, now); err != nil {
			if !errors.Is(err, errInsufficientCredits) {
				log.Error().Err(err).Str("roundId", rd.ID).Msg("stake round")
			}
			return err
		}
	} else {
		anon := s.ensureAnonID(w, r)
		_, err := s.db.ExecContext(ctx, `INSERT INTO rounds (id, anonymous_id, target, wager, started_at, status)
		                     VALUES (?,?,?,?,?,?)`, rd.ID, anon, rd.Target, rd.Wager, now, "playing")
		if err != nil {
			log.Warn().Err(err).Str("roundId", rd.ID).Msg("insert anon round row")
		}
	}
	if err := s.store.Save(ctx, rd); err != nil {
		log.Error().Err(err).Msg("save round")
		return err
	}
	return nil
}

// stakeRound debits rd.Wager from userID and inserts the round row holding
// that stake. Fails with errInsufficientCredits when the balance is short.
func (s *Server) stakeRound(ctx context.Context, userID string, rd *game.Round, now string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	out, err := tx.ExecContext(ctx, `UPDATE users SET credits=credits-? WHERE id=? AND credits>=?`,
		rd.Wager, userID, rd.Wager)
	if err != nil {
		return err
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return errInsufficientCredits
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO rounds (id, user_id, target, wager, staked, started_at, status)
	                     VALUES (?,?,?,?,?,?,?)`, rd.ID, userID, rd.Target, rd.Wager, rd.Wager, now, "playing")
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ------------------------------ /round/{id} --------------------------------

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	rd, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, toRoundRes(rd.View()))
}

// ------------------------------ /round/play --------------------------------

type playReq struct {
	RoundID string `json:"roundId" validate:"required"`
	Kind    string `json:"kind" validate:"required,oneof=number operator reset"`
	Slot    *int   `json:"slot" validate:"required_if=Kind number"`
	Sqrt    bool   `json:"sqrt"`
	Op      string `json:"op" validate:"required_if=Kind operator"`
}

// handlePlay applies one click to the human expression. A rejected play
// leaves the round unchanged and is reported with the current state.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req playReq
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rd, err := s.store.Get(r.Context(), req.RoundID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	var v game.View
	switch req.Kind {
	case "number":
		v, err = rd.PlayNumber(*req.Slot, req.Sqrt)
	case "operator":
		op, perr := cards.ParseOp(req.Op)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		v, err = rd.PlayOperator(op)
	case "reset":
		v, err = rd.Reset()
	}

	switch {
	case errors.Is(err, game.ErrRoundFinished):
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "round": toRoundRes(v)})
	case err != nil:
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error(), "round": toRoundRes(v)})
	default:
		writeJSON(w, http.StatusOK, toRoundRes(v))
	}
}

// ----------------------------- /round/submit -------------------------------

type submitReq struct {
	RoundID string `json:"roundId" validate:"required"`
}

// handleSubmit resolves the round, then persists it and settles the wager in
// a best-effort transaction.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rd, err := s.store.Get(r.Context(), req.RoundID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	res, err := rd.Resolve(r.Context(), s.solver)
	if errors.Is(err, game.ErrRoundFinished) {
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "round": toRoundRes(rd.View())})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("roundId", rd.ID).Msg("resolve round")
		writeError(w, http.StatusInternalServerError, "resolve_failed")
		return
	}
	roundsResolved.WithLabelValues(string(res.Outcome)).Inc()
	log.Info().
		Str("roundId", rd.ID).
		Str("outcome", string(res.Outcome)).
		Float64("human", res.Human.Distance).
		Float64("opponent", res.Opponent.Distance).
		Bool("complete", res.Complete).
		Msg("round resolved")

	owner := s.playerID(w, r)
	s.finishRound(r.Context(), currentUser(r), owner, rd, res)
	if rd.Daily != "" {
		s.daily.record(r.Context(), owner, rd, res)
	}
	writeJSON(w, http.StatusOK, toRoundRes(rd.View()))
}

func nullDistance(d float64) sql.NullFloat64 {
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: d, Valid: true}
}

// finishRound writes the result to the owner's round row and, for a
// signed-in owner, bumps stats and settles the stake reserved at deal time.
func (s *Server) finishRound(ctx context.Context, me *authUser, owner string, rd *game.Round, res *game.Result) {
	ownerClause := `anonymous_id=?`
	if me != nil {
		ownerClause = `user_id=?`
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin finish round")
		return
	}
	defer func() { _ = tx.Rollback() }()

	var staked int
	err = tx.QueryRowContext(ctx, `SELECT staked FROM rounds WHERE id=? AND status='playing' AND `+ownerClause,
		rd.ID, owner).Scan(&staked)
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn().Str("roundId", rd.ID).Msg("round not owned by submitter; stats unchanged")
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("finish round")
		return
	}

	_, err = tx.ExecContext(ctx, `UPDATE rounds SET status=?, finished_at=?, human_expr=?, human_distance=?,
	                                 opponent_expr=?, opponent_distance=?, staked=0 WHERE id=?`,
		string(res.Outcome), time.Now().UTC().Format(time.RFC3339),
		res.Human.Expression, nullDistance(res.Human.Distance),
		res.Opponent.Expression, nullDistance(res.Opponent.Distance),
		rd.ID)
	if err != nil {
		log.Warn().Err(err).Msg("finish round")
		return
	}
	if me != nil {
		if err := bumpStats(ctx, tx, me.ID, res.Outcome, settlement(res.Outcome, staked)); err != nil {
			log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
			return
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit finish round")
	}
}

// settlement is the credit returned for a stake that was already debited:
// double on a win, the stake back on a draw, nothing on a loss.
func settlement(o game.Outcome, staked int) int {
	return staked + game.Payout(o, staked)
}

// bumpStats increments rounds played, updates wins and streak, and credits
// the settled stake.
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, o game.Outcome, credit int) error {
	var played, wins, streak int
	row := tx.QueryRowContext(ctx, `SELECT rounds_played, wins, streak FROM users WHERE id=?`, userID)
	if err := row.Scan(&played, &wins, &streak); err != nil {
		return err
	}
	played++
	switch o {
	case game.OutcomeWin:
		wins++
		streak++
	case game.OutcomeLoss:
		streak = 0
	}
	_, err := tx.ExecContext(ctx, `UPDATE users SET rounds_played=?, wins=?, streak=?, credits=credits+? WHERE id=?`,
		played, wins, streak, credit, userID)
	return err
}

// -------------------------------- /solve -----------------------------------

type solveReq struct {
	Numbers  []int    `json:"numbers" validate:"required,min=1,max=6,dive,min=0,max=10"`
	Target   int      `json:"target"`
	Sqrt     int      `json:"sqrt" validate:"min=0"`
	Multiply int      `json:"multiply" validate:"min=0"`
	Disabled []string `json:"disabled" validate:"dive,oneof=add subtract divide"`
}

type solveRes struct {
	Best     game.Score `json:"best"`
	Leaves   int        `json:"leaves"`
	Complete bool       `json:"complete"`
}

// handleSolve runs the opponent search on a hand supplied by the caller.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveReq
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hand := cards.Hand{Numbers: req.Numbers, SqrtBudget: req.Sqrt, MultiplyBudget: req.Multiply}
	for _, name := range req.Disabled {
		op, err := cards.ParseOp(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		hand.Disabled = hand.Disabled.With(op)
	}
	if err := hand.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := s.solver.SolveContext(r.Context(), hand, req.Target)
	writeJSON(w, http.StatusOK, solveRes{
		Best:     game.ScoreOutcome(out),
		Leaves:   out.Leaves,
		Complete: out.Complete,
	})
}
