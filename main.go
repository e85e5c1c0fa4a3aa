// main.go
//
// Entry point for the Quartiles puzzle server.
// Startup order:
//   - configuration (.env + environment) and log level
//   - dictionary, candidate words and the winnability oracle
//   - background puzzle queue and the session sweeper
//   - HTTP server, shut down gracefully on SIGINT/SIGTERM

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/quartiles/internal/config"
	"github.com/robalobadob/quartiles/internal/httpserver"
	"github.com/robalobadob/quartiles/internal/puzzle"
	"github.com/robalobadob/quartiles/internal/store"
	"github.com/robalobadob/quartiles/internal/words"
)

func main() {
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dict, err := words.Load(ctx, cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load dictionary")
	}
	candidates := dict.Candidates(puzzle.MinWordLen, puzzle.MaxWordLen)
	if len(candidates) < puzzle.NumWords {
		log.Warn().Int("candidates", len(candidates)).Msg("too few candidate words, new games will fail")
	}

	oracle := puzzle.NewOracle(dict.Words(), puzzle.WithWorkers(cfg.OracleWorkers))
	genOpts := []puzzle.Option{puzzle.WithMaxAttempts(cfg.GenMaxAttempts)}

	queue := puzzle.NewQueue(cfg.PregenWorkers, cfg.PregenQueue, candidates, oracle, genOpts...)
	queue.Start(ctx)
	defer queue.Stop()

	mem := store.NewMemoryStore()
	go sweepSessions(ctx, mem, cfg.SessionTTL)

	srv := httpserver.New(httpserver.Options{
		Store:        mem,
		Words:        dict,
		Candidates:   len(candidates),
		Puzzles:      queue,
		Daily:        httpserver.NewDailySource(cfg.DailySalt, candidates, oracle, genOpts...),
		JWTSecret:    []byte(cfg.JWTSecret),
		SessionTTL:   cfg.SessionTTL,
		ClientOrigin: cfg.ClientOrigin,
		GenTimeout:   cfg.GenTimeout,
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Int("words", dict.Len()).Int("candidates", len(candidates)).Msg("starting quartiles server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// sweepSessions evicts idle games until ctx ends.
func sweepSessions(ctx context.Context, mem *store.Memory, ttl time.Duration) {
	t := time.NewTicker(ttl / 4)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if n := mem.Sweep(ttl); n > 0 {
				log.Info().Int("evicted", n).Msg("swept idle games")
			}
		case <-ctx.Done():
			return
		}
	}
}
