package repository

import (
	"context"
	"strings"
	"time"

	"lubripos/internal/dto"
	"lubripos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CancelacionMovimiento is the mutation applied to a reversed account movement.
type CancelacionMovimiento struct {
	CanceladoPor uuid.UUID
	Fecha        time.Time
	Motivo       *string
	ReversionID  uuid.UUID
}

type CuentaCorrienteRepository interface {
	FindByClienteID(ctx context.Context, clienteID uuid.UUID) (*model.CuentaCorriente, error)
	// FindOrCreateTx returns the customer's account locked, creating it on first use.
	FindOrCreateTx(tx *gorm.DB, clienteID uuid.UUID) (*model.CuentaCorriente, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.CuentaCorriente, error)
	UpdateSaldoTx(tx *gorm.DB, id uuid.UUID, saldo decimal.Decimal) error
	UpdateConfigTx(tx *gorm.DB, id uuid.UUID, limite decimal.Decimal, activo bool) error
	ListCuentas(ctx context.Context, filter dto.CuentaFilter) ([]model.CuentaCorriente, int64, error)

	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCuentaCorriente) error
	FindMovimientoByIDTx(tx *gorm.DB, id uuid.UUID) (*model.MovimientoCuentaCorriente, error)
	// FindCargoActivoTx returns the ACTIVO CARGO posted for a sale or service.
	FindCargoActivoTx(tx *gorm.DB, refTipo string, refID uuid.UUID) (*model.MovimientoCuentaCorriente, error)
	CancelarMovimientoTx(tx *gorm.DB, id uuid.UUID, c CancelacionMovimiento) error
	ListMovimientos(ctx context.Context, cuentaID uuid.UUID, p dto.Paginacion) ([]model.MovimientoCuentaCorriente, int64, error)

	DB() *gorm.DB
}

type cuentaCorrienteRepo struct{ db *gorm.DB }

func NewCuentaCorrienteRepository(db *gorm.DB) CuentaCorrienteRepository {
	return &cuentaCorrienteRepo{db: db}
}

func (r *cuentaCorrienteRepo) DB() *gorm.DB { return r.db }

func (r *cuentaCorrienteRepo) FindByClienteID(ctx context.Context, clienteID uuid.UUID) (*model.CuentaCorriente, error) {
	var c model.CuentaCorriente
	err := r.db.WithContext(ctx).Preload("Cliente").Where("cliente_id = ?", clienteID).First(&c).Error
	return &c, err
}

func (r *cuentaCorrienteRepo) FindOrCreateTx(tx *gorm.DB, clienteID uuid.UUID) (*model.CuentaCorriente, error) {
	nueva := model.CuentaCorriente{
		ClienteID:     clienteID,
		Saldo:         decimal.Zero,
		LimiteCredito: decimal.Zero,
		Activo:        true,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cliente_id"}},
		DoNothing: true,
	}).Create(&nueva).Error
	if err != nil {
		return nil, err
	}

	var c model.CuentaCorriente
	err = forUpdate(tx).Where("cliente_id = ?", clienteID).First(&c).Error
	return &c, err
}

func (r *cuentaCorrienteRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.CuentaCorriente, error) {
	var c model.CuentaCorriente
	err := forUpdate(tx).Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *cuentaCorrienteRepo) UpdateSaldoTx(tx *gorm.DB, id uuid.UUID, saldo decimal.Decimal) error {
	return tx.Model(&model.CuentaCorriente{}).Where("id = ?", id).Update("saldo", saldo).Error
}

func (r *cuentaCorrienteRepo) UpdateConfigTx(tx *gorm.DB, id uuid.UUID, limite decimal.Decimal, activo bool) error {
	return tx.Model(&model.CuentaCorriente{}).Where("id = ?", id).Updates(map[string]interface{}{
		"limite_credito": limite,
		"activo":         activo,
	}).Error
}

func (r *cuentaCorrienteRepo) ListCuentas(ctx context.Context, filter dto.CuentaFilter) ([]model.CuentaCorriente, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.CuentaCorriente{}).
		Joins("JOIN clientes ON clientes.id = cuentas_corrientes.cliente_id")
	if filter.Q != "" {
		q = q.Where("LOWER(clientes.nombre) LIKE ?", "%"+strings.ToLower(filter.Q)+"%")
	}
	if filter.ConSaldo {
		q = q.Where("cuentas_corrientes.saldo > 0")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cuentas []model.CuentaCorriente
	err := q.Preload("Cliente").
		Order("clientes.nombre ASC").
		Offset(filter.Offset()).Limit(filter.Limit).
		Find(&cuentas).Error
	return cuentas, total, err
}

// ── Movimientos ───────────────────────────────────────────────────────────────

func (r *cuentaCorrienteRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCuentaCorriente) error {
	return tx.Create(m).Error
}

func (r *cuentaCorrienteRepo) FindMovimientoByIDTx(tx *gorm.DB, id uuid.UUID) (*model.MovimientoCuentaCorriente, error) {
	var m model.MovimientoCuentaCorriente
	err := forUpdate(tx).Where("id = ?", id).First(&m).Error
	return &m, err
}

func (r *cuentaCorrienteRepo) FindCargoActivoTx(tx *gorm.DB, refTipo string, refID uuid.UUID) (*model.MovimientoCuentaCorriente, error) {
	var m model.MovimientoCuentaCorriente
	err := forUpdate(tx).
		Where("referencia_tipo = ? AND referencia_id = ? AND tipo = ? AND estado = ? AND reversa_de_id IS NULL",
			refTipo, refID, model.CuentaCargo, model.EstadoActivo).
		First(&m).Error
	return &m, err
}

func (r *cuentaCorrienteRepo) CancelarMovimientoTx(tx *gorm.DB, id uuid.UUID, c CancelacionMovimiento) error {
	return tx.Model(&model.MovimientoCuentaCorriente{}).Where("id = ?", id).Updates(map[string]interface{}{
		"estado":                  model.EstadoCancelado,
		"cancelado_por":           c.CanceladoPor,
		"fecha_cancelacion":       c.Fecha,
		"motivo_cancelacion":      c.Motivo,
		"movimiento_reversion_id": c.ReversionID,
	}).Error
}

func (r *cuentaCorrienteRepo) ListMovimientos(ctx context.Context, cuentaID uuid.UUID, p dto.Paginacion) ([]model.MovimientoCuentaCorriente, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoCuentaCorriente{}).Where("cuenta_corriente_id = ?", cuentaID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movs []model.MovimientoCuentaCorriente
	err := q.Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&movs).Error
	return movs, total, err
}
