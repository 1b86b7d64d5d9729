package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	router "github.com/githubayushraj/My-Lobby-Backend/internal/adapters/http"
	"github.com/githubayushraj/My-Lobby-Backend/internal/adapters/janus"
	"github.com/githubayushraj/My-Lobby-Backend/internal/adapters/memory"
	"github.com/githubayushraj/My-Lobby-Backend/internal/adapters/rtc"
	wssignal "github.com/githubayushraj/My-Lobby-Backend/internal/adapters/signal"
	"github.com/githubayushraj/My-Lobby-Backend/internal/app"
	"github.com/githubayushraj/My-Lobby-Backend/internal/app/orch"
	"github.com/githubayushraj/My-Lobby-Backend/internal/config"
	"github.com/githubayushraj/My-Lobby-Backend/internal/metrics"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.JSONLogs {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.Watch {
		cfg.OnChange(func(next *config.Config) {
			zerolog.SetGlobalLevel(next.Level())
			log.Info().Str("log_level", next.Level().String()).Msg("log level applied")
		})
	}

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	policy, err := app.PolicyByName(cfg.Backpressure)
	if err != nil {
		return err
	}
	m := metrics.New()
	o := orch.New(app.NewRegistry(), app.NewRoomDirectory(), app.NewDispatcher(policy, m), m)

	ws := wssignal.NewSignalWSController(o, wssignal.Options{
		ReadLimit:      cfg.ReadLimit,
		PingPeriod:     cfg.PingPeriod,
		PongWait:       cfg.PongWait,
		WriteWait:      cfg.WriteWait,
		SendBuffer:     cfg.SendBuffer,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
	})
	if cfg.JanusURL == "" {
		log.Warn().Msg("janus_url is empty, media room allocation is disabled")
	}
	meetings := app.NewMeetingService(
		memory.NewMeetingRepository(),
		janus.New(cfg.JanusURL, cfg.JanusPublishers, cfg.JanusTimeout),
	)

	r := router.SetupRouter(ctx, cfg, o, ws, meetings, rtc.ICEServers(cfg.ICEServers))
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Lobby server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
