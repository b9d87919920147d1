package worker

import (
	"context"
	"testing"
	"time"

	"lubripos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSesiones struct {
	limite   time.Time
	sesiones []model.SesionCaja
}

func (f *fakeSesiones) ListSesionesAbiertasAntesDe(_ context.Context, t time.Time) ([]model.SesionCaja, error) {
	f.limite = t
	return f.sesiones, nil
}

func TestMonitor_RunOnceReportsStaleSessions(t *testing.T) {
	ahora := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	fake := &fakeSesiones{sesiones: []model.SesionCaja{{ID: uuid.New(), SucursalID: uuid.New(), FechaApertura: ahora.Add(-20 * time.Hour)}}}

	m := NewMonitor(MonitorConfig{Schedule: "@every 1m", Sesiones: fake, AlertaHoras: 16})
	m.now = func() time.Time { return ahora }

	assert.Equal(t, 1, m.RunOnce(context.Background()))
	assert.Equal(t, ahora.Add(-16*time.Hour), fake.limite)
}

func TestMonitor_DisabledThreshold(t *testing.T) {
	fake := &fakeSesiones{sesiones: []model.SesionCaja{{}}}
	m := NewMonitor(MonitorConfig{Sesiones: fake})
	assert.Equal(t, 0, m.RunOnce(context.Background()))
}

func TestMonitor_RejectsBadSchedule(t *testing.T) {
	m := NewMonitor(MonitorConfig{Schedule: "not a schedule"})
	require.Error(t, m.Start(context.Background()))
}
