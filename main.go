package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mathduel/internal/db"
	"github.com/robalobadob/mathduel/internal/deck"
	"github.com/robalobadob/mathduel/internal/httpserver"
	"github.com/robalobadob/mathduel/internal/solver"
	"github.com/robalobadob/mathduel/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := deck.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load deck rules")
	}

	conn, err := db.OpenMigrated(getEnv("DB_PATH", "./data/mathduel.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer conn.Close()

	timeout, err := time.ParseDuration(getEnv("SOLVER_TIMEOUT", "5s"))
	if err != nil {
		log.Fatal().Err(err).Msg("bad SOLVER_TIMEOUT")
	}
	cfg := solver.DefaultConfig()
	cfg.Timeout = timeout

	mem := store.NewMemoryStore()
	go pruneRounds(mem, 6*time.Hour)

	srv := httpserver.New(mem, conn, solver.New(cfg), deck.Loaded())
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Dur("solverTimeout", timeout).Msg("starting mathduel server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// pruneRounds drops abandoned rounds from memory once they are older than maxAge.
func pruneRounds(st store.Store, maxAge time.Duration) {
	t := time.NewTicker(maxAge / 6)
	defer t.Stop()
	for range t.C {
		if n := st.Prune(context.Background(), time.Now().Add(-maxAge)); n > 0 {
			log.Info().Int("rounds", n).Msg("pruned stale rounds")
		}
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
