package model

import (
	"time"

	"github.com/google/uuid"
)

// Sucursal is a branch of the business. Every product, card plan and till
// session belongs to exactly one.
type Sucursal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre    string    `gorm:"not null"`
	Direccion *string
	Activo    bool `gorm:"not null"`
	CreatedAt time.Time
}

func (Sucursal) TableName() string { return "sucursales" }

// Usuario stores system users with role-based access.
// Rol: "cajero" | "supervisor" | "administrador"
type Usuario struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre    string    `gorm:"not null"`
	Email     string    `gorm:"uniqueIndex;not null"`
	Rol       string    `gorm:"type:varchar(20);not null"`
	Activo    bool      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Sucursales []UsuarioSucursal `gorm:"foreignKey:UsuarioID"`
}

// UsuarioSucursal grants a user access to a branch. EsPrincipal marks the
// branch used when a request does not name one.
type UsuarioSucursal struct {
	UsuarioID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	SucursalID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	EsPrincipal bool      `gorm:"not null"`

	Sucursal *Sucursal `gorm:"foreignKey:SucursalID"`
}

func (UsuarioSucursal) TableName() string { return "usuario_sucursales" }

// Empleado is a workshop employee that can be assigned to a service.
type Empleado struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SucursalID uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre     string    `gorm:"not null"`
	Activo     bool      `gorm:"not null"`
}
