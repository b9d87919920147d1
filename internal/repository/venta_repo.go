package repository

import (
	"context"
	"time"

	"lubripos/internal/dto"
	"lubripos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cancelacion is the header mutation shared by sales and services.
type Cancelacion struct {
	CanceladoPor  uuid.UUID
	Fecha         time.Time
	Observaciones *string
}

func (c Cancelacion) columns() map[string]interface{} {
	return map[string]interface{}{
		"estado":            model.TransaccionCancelada,
		"cancelado_por":     c.CanceladoPor,
		"fecha_cancelacion": c.Fecha,
		"observaciones":     c.Observaciones,
	}
}

type VentaRepository interface {
	CreateTx(tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	// FindByIDTx locks the header and loads its lines.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error)
	CancelarTx(tx *gorm.DB, id uuid.UUID, c Cancelacion) error
	List(ctx context.Context, filter dto.TransaccionFilter) ([]model.Venta, int64, error)
	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Detalles.Producto").Preload("Cliente").Preload("Sucursal").
		Where("id = ?", id).First(&v).Error
	return &v, err
}

func (r *ventaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	if err := forUpdate(tx).Where("id = ?", id).First(&v).Error; err != nil {
		return &v, err
	}
	err := tx.Where("venta_id = ?", id).Find(&v.Detalles).Error
	return &v, err
}

func (r *ventaRepo) CancelarTx(tx *gorm.DB, id uuid.UUID, c Cancelacion) error {
	return tx.Model(&model.Venta{}).Where("id = ?", id).Updates(c.columns()).Error
}

func (r *ventaRepo) List(ctx context.Context, filter dto.TransaccionFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64

	q := applyTransaccionFilter(r.db.WithContext(ctx).Model(&model.Venta{}), filter)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Cliente").
		Order("created_at DESC").
		Offset(filter.Offset()).Limit(filter.Limit).
		Find(&ventas).Error
	return ventas, total, err
}

func applyTransaccionFilter(q *gorm.DB, filter dto.TransaccionFilter) *gorm.DB {
	if filter.SucursalID != "" {
		q = q.Where("sucursal_id = ?", filter.SucursalID)
	}
	if filter.ClienteID != "" {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	desde, hasta := filter.Limites()
	if desde != nil {
		q = q.Where("created_at >= ?", *desde)
	}
	if hasta != nil {
		q = q.Where("created_at < ?", *hasta)
	}
	return q
}
