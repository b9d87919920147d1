package repository

import (
	"context"

	"lubripos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TarjetaRepository interface {
	FindTarjetaTx(tx *gorm.DB, id uuid.UUID) (*model.TarjetaCredito, error)
	FindCuotaTx(tx *gorm.DB, tarjetaID uuid.UUID, numeroCuotas int) (*model.TarjetaCuota, error)
	// ListPorSucursal returns the active cards of the branch plus the global
	// ones, each with its active installment tiers.
	ListPorSucursal(ctx context.Context, sucursalID uuid.UUID) ([]model.TarjetaCredito, error)
}

type tarjetaRepo struct{ db *gorm.DB }

func NewTarjetaRepository(db *gorm.DB) TarjetaRepository { return &tarjetaRepo{db: db} }

func (r *tarjetaRepo) FindTarjetaTx(tx *gorm.DB, id uuid.UUID) (*model.TarjetaCredito, error) {
	var t model.TarjetaCredito
	err := tx.Where("id = ?", id).First(&t).Error
	return &t, err
}

func (r *tarjetaRepo) FindCuotaTx(tx *gorm.DB, tarjetaID uuid.UUID, numeroCuotas int) (*model.TarjetaCuota, error) {
	var c model.TarjetaCuota
	err := tx.Where("tarjeta_id = ? AND numero_cuotas = ? AND activo = ?", tarjetaID, numeroCuotas, true).
		First(&c).Error
	return &c, err
}

func (r *tarjetaRepo) ListPorSucursal(ctx context.Context, sucursalID uuid.UUID) ([]model.TarjetaCredito, error) {
	var tarjetas []model.TarjetaCredito
	err := r.db.WithContext(ctx).
		Preload("Cuotas", func(db *gorm.DB) *gorm.DB {
			return db.Where("activo = ?", true).Order("numero_cuotas ASC")
		}).
		Where("activo = ? AND (sucursal_id = ? OR sucursal_id IS NULL)", true, sucursalID).
		Order("nombre ASC").
		Find(&tarjetas).Error
	return tarjetas, err
}
