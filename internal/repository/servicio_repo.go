package repository

import (
	"context"

	"lubripos/internal/dto"
	"lubripos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServicioRepository interface {
	CreateTx(tx *gorm.DB, s *model.Servicio) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Servicio, error)
	// FindByIDTx locks the header and loads its items and their products.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Servicio, error)
	CancelarTx(tx *gorm.DB, id uuid.UUID, c Cancelacion) error
	List(ctx context.Context, filter dto.TransaccionFilter) ([]model.Servicio, int64, error)
	DB() *gorm.DB
}

type servicioRepo struct{ db *gorm.DB }

func NewServicioRepository(db *gorm.DB) ServicioRepository { return &servicioRepo{db: db} }

func (r *servicioRepo) DB() *gorm.DB { return r.db }

// CreateTx inserts the header with its items and item products. Employees
// are linked through the join table only; the rows must already exist.
func (r *servicioRepo) CreateTx(tx *gorm.DB, s *model.Servicio) error {
	return tx.Omit("Empleados.*").Create(s).Error
}

func (r *servicioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Servicio, error) {
	var s model.Servicio
	err := r.db.WithContext(ctx).
		Preload("Items.Productos.Producto").Preload("Empleados").
		Preload("Cliente").Preload("Vehiculo").Preload("Sucursal").
		Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *servicioRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Servicio, error) {
	var s model.Servicio
	if err := forUpdate(tx).Where("id = ?", id).First(&s).Error; err != nil {
		return &s, err
	}
	err := tx.Preload("Productos").Where("servicio_id = ?", id).Find(&s.Items).Error
	return &s, err
}

func (r *servicioRepo) CancelarTx(tx *gorm.DB, id uuid.UUID, c Cancelacion) error {
	return tx.Model(&model.Servicio{}).Where("id = ?", id).Updates(c.columns()).Error
}

func (r *servicioRepo) List(ctx context.Context, filter dto.TransaccionFilter) ([]model.Servicio, int64, error) {
	var servicios []model.Servicio
	var total int64

	q := applyTransaccionFilter(r.db.WithContext(ctx).Model(&model.Servicio{}), filter)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Cliente").Preload("Vehiculo").
		Order("created_at DESC").
		Offset(filter.Offset()).Limit(filter.Limit).
		Find(&servicios).Error
	return servicios, total, err
}
