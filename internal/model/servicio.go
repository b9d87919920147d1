package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TipoServicio is a catalog entry ("Cambio de aceite", "Alineación", …).
type TipoServicio struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre string    `gorm:"not null"`
	Activo bool      `gorm:"not null"`
}

func (TipoServicio) TableName() string { return "tipos_servicios" }

// Servicio is a workshop job header. Same lifecycle as Venta.
type Servicio struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Numero       string     `gorm:"type:varchar(30);uniqueIndex;not null"`
	SucursalID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClienteID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	VehiculoID   *uuid.UUID `gorm:"type:uuid;index"`
	UsuarioID    uuid.UUID  `gorm:"type:uuid;not null"`
	SesionCajaID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Importes     `gorm:"embedded"`

	Estado           string `gorm:"type:varchar(20);not null"`
	Observaciones    *string
	CanceladoPor     *uuid.UUID `gorm:"type:uuid"`
	FechaCancelacion *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Items     []ServicioItem `gorm:"foreignKey:ServicioID"`
	Empleados []Empleado     `gorm:"many2many:servicio_empleados"`
	Cliente   *Cliente       `gorm:"foreignKey:ClienteID"`
	Vehiculo  *Vehiculo      `gorm:"foreignKey:VehiculoID"`
	Sucursal  *Sucursal      `gorm:"foreignKey:SucursalID"`
}

// ServicioItem is one job line. Subtotal is the sum of its products or, for
// pure labor lines, the flat amount charged.
type ServicioItem struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ServicioID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	TipoServicioID *uuid.UUID `gorm:"type:uuid"`
	Descripcion    string     `gorm:"not null"`
	Observaciones  *string
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Productos []ServicioItemProducto `gorm:"foreignKey:ServicioItemID"`
}

// ServicioItemProducto is a product consumed by a service item.
type ServicioItemProducto struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ServicioItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnidadMedida   string          `gorm:"type:varchar(20);not null"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (ServicioItemProducto) TableName() string { return "detalle_servicio_productos" }
