package repository

import (
	"context"

	"lubripos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
	// SucursalPrincipal returns the branch flagged es_principal for the user.
	SucursalPrincipal(ctx context.Context, usuarioID uuid.UUID) (uuid.UUID, error)
	TieneAcceso(ctx context.Context, usuarioID, sucursalID uuid.UUID) (bool, error)
	FindSucursal(ctx context.Context, id uuid.UUID) (*model.Sucursal, error)
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).Preload("Sucursales").Where("id = ?", id).First(&u).Error
	return &u, err
}

func (r *usuarioRepo) SucursalPrincipal(ctx context.Context, usuarioID uuid.UUID) (uuid.UUID, error) {
	var us model.UsuarioSucursal
	err := r.db.WithContext(ctx).
		Where("usuario_id = ?", usuarioID).
		Order("es_principal DESC").
		First(&us).Error
	return us.SucursalID, err
}

func (r *usuarioRepo) TieneAcceso(ctx context.Context, usuarioID, sucursalID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.UsuarioSucursal{}).
		Where("usuario_id = ? AND sucursal_id = ?", usuarioID, sucursalID).
		Count(&n).Error
	return n > 0, err
}

func (r *usuarioRepo) FindSucursal(ctx context.Context, id uuid.UUID) (*model.Sucursal, error) {
	var s model.Sucursal
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	return &s, err
}
