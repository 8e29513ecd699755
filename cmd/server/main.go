package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayush/ticket-simulator/backend/internal/config"
	"github.com/ayush/ticket-simulator/backend/internal/logging"
	"github.com/ayush/ticket-simulator/backend/internal/server"
	"github.com/ayush/ticket-simulator/backend/internal/store"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	// ── Storage ──────────────────────────────────────────────
	// Chosen once. If the database is down at startup the process keeps
	// running on memory for its whole lifetime.
	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).
			Str("driver", cfg.DBDriver).
			Str("host", cfg.DBHost).
			Msg("database unreachable, falling back to in-memory store")
		st = store.NewMemoryStore()
	}
	defer st.Close()
	log.Info().Str("store", st.Name()).Msg("storage ready")

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(st, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Msgf("Backend listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
