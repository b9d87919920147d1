package repository

import (
	"context"

	"lubripos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ComprobanteRepository interface {
	// Upsert creates or refreshes the receipt of an origin record.
	Upsert(ctx context.Context, c *model.Comprobante) error
	FindByOrigen(ctx context.Context, origenTipo string, origenID uuid.UUID) (*model.Comprobante, error)
	UpdateEstado(ctx context.Context, id uuid.UUID, estado string, lastError *string) error
}

type comprobanteRepo struct{ db *gorm.DB }

func NewComprobanteRepository(db *gorm.DB) ComprobanteRepository {
	return &comprobanteRepo{db: db}
}

func (r *comprobanteRepo) Upsert(ctx context.Context, c *model.Comprobante) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "origen_tipo"}, {Name: "origen_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"numero", "estado", "pdf_path", "email", "last_error", "updated_at"}),
	}).Create(c).Error
	if err != nil {
		return err
	}
	// On conflict the generated id is not the stored one: reload into a fresh
	// value so the stale primary key stays out of the WHERE clause.
	var stored model.Comprobante
	err = r.db.WithContext(ctx).
		Where("origen_tipo = ? AND origen_id = ?", c.OrigenTipo, c.OrigenID).
		First(&stored).Error
	if err != nil {
		return err
	}
	*c = stored
	return nil
}

func (r *comprobanteRepo) FindByOrigen(ctx context.Context, origenTipo string, origenID uuid.UUID) (*model.Comprobante, error) {
	var c model.Comprobante
	err := r.db.WithContext(ctx).Where("origen_tipo = ? AND origen_id = ?", origenTipo, origenID).First(&c).Error
	return &c, err
}

func (r *comprobanteRepo) UpdateEstado(ctx context.Context, id uuid.UUID, estado string, lastError *string) error {
	return r.db.WithContext(ctx).Model(&model.Comprobante{}).Where("id = ?", id).Updates(map[string]interface{}{
		"estado":     estado,
		"last_error": lastError,
		"intentos":   gorm.Expr("intentos + 1"),
	}).Error
}
