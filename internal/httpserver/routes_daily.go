// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start today's round (creates or reuses session)
//   - GET  /daily/leaderboard → fetch top results for today (or a given date)
//
// Everyone gets the same deal for a date (seeded by HMAC(salt, date)).
// The round is then played through /round/play and /round/submit like any
// other round; the daily result is recorded on submit. Each player can
// record one result per day (enforced by DB + in-memory session).

package httpserver

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mathduel/internal/daily"
	"github.com/robalobadob/mathduel/internal/deck"
	"github.com/robalobadob/mathduel/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	day      string            // date key the sessions belong to
	sessions map[string]string // round IDs keyed by playerID for day
	mu       sync.Mutex        // guards day and sessions
}

// session returns uid's round ID for date.
func (d *dailyServer) session(uid, date string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if date != d.day {
		return "", false
	}
	id, ok := d.sessions[uid]
	return id, ok
}

// remember records uid's round for date. Sessions from earlier dates are
// dropped when the date rolls over.
func (d *dailyServer) remember(uid, date, roundID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if date != d.day {
		d.day = date
		clear(d.sessions)
	}
	d.sessions[uid] = roundID
}

// forget drops uid's session for date, e.g. once its round was pruned.
func (d *dailyServer) forget(uid, date string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if date == d.day {
		delete(d.sessions, uid)
	}
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	s.daily = &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     getEnv("DAILY_SALT", "local_dev_salt"),
		sessions: make(map[string]string),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.daily.handleNew)
		r.Get("/leaderboard", s.daily.handleLeaderboard)
	})
}

// dealFor deals the shared daily round for date.
func (d *dailyServer) dealFor(date time.Time) (deck.Deal, error) {
	return deck.DealRound(deck.NewRand(daily.Seed(date, d.salt)), d.srv.rules)
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	Date   string    `json:"date"`
	Played bool      `json:"played"`
	Round  *roundRes `json:"round,omitempty"`
}

// handleNew creates or reuses today's daily round.
//   - If the player already has a DB row for today → Played=true.
//   - Otherwise reuse the in-memory session or deal a new round.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.srv.playerID(w, r)
	now := time.Now().UTC()
	date := daily.DateKey(now)

	played, err := d.store.AlreadyPlayed(r.Context(), uid, date)
	if err != nil {
		log.Error().Err(err).Msg("daily already played")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	if id, ok := d.session(uid, date); ok {
		rd, err := d.srv.store.Get(r.Context(), id)
		if err == nil {
			res := toRoundRes(rd.View())
			writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Round: &res})
			return
		}
		d.forget(uid, date)
	}

	deal, err := d.dealFor(now)
	if err != nil {
		log.Error().Err(err).Msg("deal daily round")
		writeError(w, http.StatusInternalServerError, "deal_failed")
		return
	}
	rd := game.New(game.Setup{
		Human:    deal.Human,
		Opponent: deal.Opponent,
		Target:   deal.Target,
		Daily:    date,
	})
	if err := d.srv.startRound(w, r, rd); err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	d.remember(uid, date, rd.ID)

	res := toRoundRes(rd.View())
	writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Round: &res})
}

// record stores a finished daily round. Rejected expressions have no
// distance and are not ranked.
func (d *dailyServer) record(ctx context.Context, uid string, rd *game.Round, res *game.Result) {
	if math.IsInf(res.Human.Distance, 1) {
		log.Debug().Str("roundId", rd.ID).Msg("daily round rejected; not ranked")
		return
	}
	err := d.store.InsertResult(ctx, daily.Result{
		UserID:     uid,
		Date:       rd.Daily,
		RoundID:    rd.ID,
		Distance:   res.Human.Distance,
		Expression: res.Human.Expression,
		ElapsedMs:  int(time.Since(rd.Started).Milliseconds()),
	})
	if err != nil {
		log.Warn().Err(err).Str("roundId", rd.ID).Msg("insert daily result")
		return
	}
	dailyResults.Inc()
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	}
	if err := d.srv.validate.Var(date, "datetime=2006-01-02"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || d.srv.validate.Var(n, "min=1,max=100") != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	rows, err := d.store.Leaderboard(r.Context(), date, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
