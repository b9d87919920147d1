package worker

// monitor.go
// Periodic health checks: dead letter backlog and cash sessions left open
// past the configured threshold.

import (
	"context"
	"time"

	"lubripos/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SesionesAbiertasLister is the slice of the cash repository the monitor needs.
type SesionesAbiertasLister interface {
	ListSesionesAbiertasAntesDe(ctx context.Context, t time.Time) ([]model.SesionCaja, error)
}

type MonitorConfig struct {
	Schedule    string
	RDB         *redis.Client
	Sesiones    SesionesAbiertasLister
	AlertaHoras int
}

type Monitor struct {
	cron *cron.Cron
	cfg  MonitorConfig
	now  func() time.Time
}

func NewMonitor(cfg MonitorConfig) *Monitor {
	return &Monitor{cron: cron.New(cron.WithSeconds()), cfg: cfg, now: time.Now}
}

// Start registers the check on the schedule and starts the scheduler.
func (m *Monitor) Start(ctx context.Context) error {
	if _, err := m.cron.AddFunc(m.cfg.Schedule, func() { m.RunOnce(ctx) }); err != nil {
		return err
	}
	m.cron.Start()
	log.Info().Str("schedule", m.cfg.Schedule).Msg("monitor: started")
	return nil
}

// Stop waits for a running check to finish.
func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
	log.Info().Msg("monitor: stopped")
}

// RunOnce performs every check and returns the number of stale sessions.
func (m *Monitor) RunOnce(ctx context.Context) int {
	if m.cfg.RDB != nil {
		for _, q := range []string{QueueComprobantes, QueueEmail} {
			n, err := DLQLength(ctx, m.cfg.RDB, q)
			if err != nil {
				log.Warn().Err(err).Str("queue", q).Msg("monitor: DLQ length unavailable")
				continue
			}
			if n == 0 {
				continue
			}
			ev := log.Warn().Str("queue", q).Int64("dlq_length", n)
			if oldest, err := OldestDLQEntry(ctx, m.cfg.RDB, q); err == nil && oldest != nil {
				ev = ev.Time("oldest_failed_at", oldest.FailedAt).Str("oldest_reason", oldest.Reason)
			}
			ev.Msg("monitor: jobs waiting in DLQ")
		}
	}

	if m.cfg.Sesiones == nil || m.cfg.AlertaHoras <= 0 {
		return 0
	}
	limite := m.now().Add(-time.Duration(m.cfg.AlertaHoras) * time.Hour)
	sesiones, err := m.cfg.Sesiones.ListSesionesAbiertasAntesDe(ctx, limite)
	if err != nil {
		log.Error().Err(err).Msg("monitor: failed to list open sessions")
		return 0
	}
	for _, s := range sesiones {
		log.Warn().
			Str("sesion_caja_id", s.ID.String()).
			Str("sucursal_id", s.SucursalID.String()).
			Time("fecha_apertura", s.FechaApertura).
			Msg("monitor: caja abierta hace demasiado tiempo")
	}
	return len(sesiones)
}
