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

	"lubripos/internal/config"
	"lubripos/internal/infra"
	"lubripos/internal/repository"
	"lubripos/internal/router"
	"lubripos/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// `server requeue-dlq` moves dead receipt/email jobs back to their queues and exits.
	if len(os.Args) > 1 && os.Args[1] == "requeue-dlq" {
		if rdb == nil {
			log.Fatal().Msg("requeue-dlq needs REDIS_URL")
		}
		for _, q := range []string{worker.QueueComprobantes, worker.QueueEmail} {
			n, err := worker.Requeue(ctx, rdb, q, 500)
			if err != nil {
				log.Fatal().Err(err).Str("queue", q).Msg("requeue failed")
			}
			log.Info().Str("queue", q).Int("moved", n).Msg("requeue done")
		}
		return
	}

	// Async receipts and the monitor are wired here (composition root).
	cajaRepo := repository.NewCajaRepository(db)
	if rdb != nil {
		comprobanteRepo := repository.NewComprobanteRepository(db)
		dispatcher := worker.NewDispatcher(rdb)

		pool := worker.NewPool(rdb)
		pool.Register(worker.QueueComprobantes, worker.NewComprobanteWorker(
			repository.NewVentaRepository(db),
			repository.NewServicioRepository(db),
			comprobanteRepo,
			dispatcher,
			cfg.PDFStoragePath,
			cfg.NegocioNombre,
		))
		mailer := infra.NewMailer(cfg)
		if mailer.Configured() {
			cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
			pool.Register(worker.QueueEmail, worker.NewEmailWorker(mailer, cb, comprobanteRepo, cfg.PDFStoragePath))
		} else {
			log.Warn().Msg("SMTP_HOST not set, receipts will not be emailed")
		}
		pool.Start(ctx, cfg.WorkerPoolSize)
	} else {
		log.Warn().Msg("REDIS_URL not set, async receipts disabled")
	}

	monitor := worker.NewMonitor(worker.MonitorConfig{
		Schedule:    cfg.MonitorCron,
		RDB:         rdb,
		Sesiones:    cajaRepo,
		AlertaHoras: cfg.CajaAlertaHoras,
	})
	if err := monitor.Start(ctx); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.MonitorCron).Msg("invalid MONITOR_CRON")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.New(cfg, db, rdb),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("lubripos backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	monitor.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
