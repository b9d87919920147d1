package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lubripos/internal/apierror"
	"lubripos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// notFound maps gorm.ErrRecordNotFound to a NotFound error with msg and
// passes any other error through.
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(msg)
	}
	return err
}

func parseID(raw, campo string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierror.Validation(fmt.Sprintf("%s inválido", campo))
	}
	return id, nil
}

func parseOptionalID(raw *string, campo string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := parseID(*raw, campo)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ── Sucursal ──────────────────────────────────────────────────────────────────

// sucursalResolver picks the branch a request acts on: the one it names, or
// the user's principal branch when it names none.
type sucursalResolver struct {
	usuarios repository.UsuarioRepository
}

func (r sucursalResolver) resolver(ctx context.Context, usuarioID uuid.UUID, sucursalID *uuid.UUID) (uuid.UUID, error) {
	if sucursalID == nil {
		id, err := r.usuarios.SucursalPrincipal(ctx, usuarioID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apierror.Validation("El usuario no tiene una sucursal asignada")
		}
		return id, err
	}
	ok, err := r.usuarios.TieneAcceso(ctx, usuarioID, *sucursalID)
	if err != nil {
		return uuid.Nil, err
	}
	if !ok {
		return uuid.Nil, apierror.Forbidden("No tiene acceso a esta sucursal")
	}
	return *sucursalID, nil
}

// ── Texto ─────────────────────────────────────────────────────────────────────

func motivoOrDefault(motivo *string) string {
	if motivo == nil || strings.TrimSpace(*motivo) == "" {
		return "Sin motivo"
	}
	return strings.TrimSpace(*motivo)
}

// appendObservacion never overwrites prior observations.
func appendObservacion(prev *string, suffix string) *string {
	s := suffix
	if prev != nil {
		s = *prev + suffix
	} else {
		s = strings.TrimLeft(suffix, " |\n")
	}
	return &s
}

func porcentaje(parte, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return parte.Div(total).Mul(cien).Round(2)
}
