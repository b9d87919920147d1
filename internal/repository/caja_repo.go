package repository

import (
	"context"
	"time"

	"lubripos/internal/dto"
	"lubripos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TotalMetodo is the ACTIVO income of a session for one payment method.
type TotalMetodo struct {
	MetodoPago string
	Total      decimal.Decimal
	Cantidad   int64
}

// TotalesSesion aggregates the cash ledger of a session. Compensating EGRESO
// rows (reversa_de_id set) are excluded: the rows they reverse are already
// CANCELADO and out of the income sum.
type TotalesSesion struct {
	Ingresos  decimal.Decimal
	Egresos   decimal.Decimal
	PorMetodo []TotalMetodo
}

type CajaRepository interface {
	CreateSesionTx(tx *gorm.DB, s *model.SesionCaja) error
	UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	// FindSesionByIDTx locks the row for the rest of the transaction.
	FindSesionByIDTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error)
	FindSesionAbierta(ctx context.Context, sucursalID uuid.UUID) (*model.SesionCaja, error)
	FindSesionAbiertaTx(tx *gorm.DB, sucursalID uuid.UUID) (*model.SesionCaja, error)
	ListSesiones(ctx context.Context, filter dto.HistorialCajaFilter) ([]model.SesionCaja, int64, error)
	ListSesionesAbiertasAntesDe(ctx context.Context, t time.Time) ([]model.SesionCaja, error)

	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error
	// FindIngresosActivosTx returns the ACTIVO INGRESO rows posted for a source record.
	FindIngresosActivosTx(tx *gorm.DB, refTipo string, refID uuid.UUID) ([]model.MovimientoCaja, error)
	CancelarMovimientosTx(tx *gorm.DB, ids []uuid.UUID) error
	ListMovimientos(ctx context.Context, sesionID uuid.UUID, filter dto.MovimientoCajaFilter) ([]model.MovimientoCaja, int64, error)
	ListMovimientosPorReferencia(ctx context.Context, refTipo string, refID uuid.UUID) ([]model.MovimientoCaja, error)
	ListIngresosActivos(ctx context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error)
	Totales(ctx context.Context, sesionID uuid.UUID) (*TotalesSesion, error)
	TotalesTx(tx *gorm.DB, sesionID uuid.UUID) (*TotalesSesion, error)

	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateSesionTx(tx *gorm.DB, s *model.SesionCaja) error {
	return tx.Create(s).Error
}

func (r *cajaRepo) UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error {
	return tx.Model(&model.SesionCaja{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"usuario_cierre_id":    s.UsuarioCierreID,
		"monto_final":          s.MontoFinal,
		"monto_sistema":        s.MontoSistema,
		"total_ingresos":       s.TotalIngresos,
		"total_egresos":        s.TotalEgresos,
		"diferencia":           s.Diferencia,
		"desglose_ingresos":    s.DesgloseIngresos,
		"observaciones_cierre": s.ObservacionesCierre,
		"estado":               s.Estado,
		"fecha_cierre":         s.FechaCierre,
	}).Error
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Preload("Sucursal").Preload("UsuarioApertura").Preload("UsuarioCierre").
		Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindSesionByIDTx(tx *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := forUpdate(tx).Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindSesionAbierta(ctx context.Context, sucursalID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Preload("Sucursal").Preload("UsuarioApertura").
		Where("sucursal_id = ? AND estado = ?", sucursalID, model.CajaAbierta).
		Order("fecha_apertura DESC").
		First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindSesionAbiertaTx(tx *gorm.DB, sucursalID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := forUpdate(tx).
		Where("sucursal_id = ? AND estado = ?", sucursalID, model.CajaAbierta).
		Order("fecha_apertura DESC").
		First(&s).Error
	return &s, err
}

func (r *cajaRepo) ListSesiones(ctx context.Context, filter dto.HistorialCajaFilter) ([]model.SesionCaja, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.SesionCaja{})
	if filter.SucursalID != "" {
		q = q.Where("sucursal_id = ?", filter.SucursalID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	desde, hasta := filter.Limites()
	if desde != nil {
		q = q.Where("fecha_apertura >= ?", *desde)
	}
	if hasta != nil {
		q = q.Where("fecha_apertura < ?", *hasta)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sesiones []model.SesionCaja
	err := q.Preload("Sucursal").Preload("UsuarioApertura").Preload("UsuarioCierre").
		Order("fecha_apertura DESC").
		Offset(filter.Offset()).Limit(filter.Limit).
		Find(&sesiones).Error
	return sesiones, total, err
}

func (r *cajaRepo) ListSesionesAbiertasAntesDe(ctx context.Context, t time.Time) ([]model.SesionCaja, error) {
	var sesiones []model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("estado = ? AND fecha_apertura < ?", model.CajaAbierta, t).
		Find(&sesiones).Error
	return sesiones, err
}

// ── Movimientos ───────────────────────────────────────────────────────────────
// Movements are append-only: the only mutation is the ACTIVO → CANCELADO flip.

func (r *cajaRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error {
	return tx.Create(m).Error
}

func (r *cajaRepo) FindIngresosActivosTx(tx *gorm.DB, refTipo string, refID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := forUpdate(tx).
		Where("referencia_tipo = ? AND referencia_id = ? AND tipo = ? AND estado = ?",
			refTipo, refID, model.MovimientoIngreso, model.EstadoActivo).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) CancelarMovimientosTx(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Model(&model.MovimientoCaja{}).
		Where("id IN ?", ids).
		Update("estado", model.EstadoCancelado).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, sesionID uuid.UUID, filter dto.MovimientoCajaFilter) ([]model.MovimientoCaja, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoCaja{}).Where("sesion_caja_id = ?", sesionID)
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movs []model.MovimientoCaja
	err := q.Order("created_at DESC").Offset(filter.Offset()).Limit(filter.Limit).Find(&movs).Error
	return movs, total, err
}

func (r *cajaRepo) ListMovimientosPorReferencia(ctx context.Context, refTipo string, refID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("referencia_tipo = ? AND referencia_id = ?", refTipo, refID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) ListIngresosActivos(ctx context.Context, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ? AND tipo = ? AND estado = ?", sesionID, model.MovimientoIngreso, model.EstadoActivo).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) Totales(ctx context.Context, sesionID uuid.UUID) (*TotalesSesion, error) {
	return r.TotalesTx(r.db.WithContext(ctx), sesionID)
}

func (r *cajaRepo) TotalesTx(tx *gorm.DB, sesionID uuid.UUID) (*TotalesSesion, error) {
	t := &TotalesSesion{Ingresos: decimal.Zero, Egresos: decimal.Zero}

	rows, err := tx.Raw(`
SELECT metodo_pago, COALESCE(SUM(monto), 0), COUNT(*)
FROM movimientos_caja
WHERE sesion_caja_id = ? AND tipo = ? AND estado = ?
GROUP BY metodo_pago
ORDER BY metodo_pago`, sesionID, model.MovimientoIngreso, model.EstadoActivo).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m TotalMetodo
		if err := rows.Scan(&m.MetodoPago, &m.Total, &m.Cantidad); err != nil {
			return nil, err
		}
		t.Ingresos = t.Ingresos.Add(m.Total)
		t.PorMetodo = append(t.PorMetodo, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = tx.Raw(`
SELECT COALESCE(SUM(monto), 0)
FROM movimientos_caja
WHERE sesion_caja_id = ? AND tipo = ? AND estado = ? AND reversa_de_id IS NULL`,
		sesionID, model.MovimientoEgreso, model.EstadoActivo).Row().Scan(&t.Egresos)
	if err != nil {
		return nil, err
	}
	return t, nil
}
