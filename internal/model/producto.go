package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnidadPieza is the unit that only accepts integral quantities.
// Any other unit ("litro", "kg", …) allows fractions.
const UnidadPieza = "unidad"

// Producto is stocked per branch. Stock is fractional because lubricants are
// sold by the liter; it may go negative after a sale (see service.PoliticaStock).
type Producto struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SucursalID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Codigo       *string         `gorm:"index"`
	Nombre       string          `gorm:"index;not null"`
	Descripcion  *string
	UnidadMedida string          `gorm:"type:varchar(20);not null"`
	Precio       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock        decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	StockMinimo  decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	Activo       bool            `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Tipos de movimiento de stock.
const (
	StockEntrada = "ENTRADA"
	StockSalida  = "SALIDA"
	StockAjuste  = "AJUSTE"
)

// MovimientoStock registra cada cambio de stock de un producto.
// Se crea al vender, al consumir en un servicio, al cancelar y al ajustar.
type MovimientoStock struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo           string          `gorm:"type:varchar(10);not null"`
	UnidadMedida   string          `gorm:"type:varchar(20);not null"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(12,3);not null"` // always positive; Tipo gives the direction
	StockAnterior  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	StockNuevo     decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Motivo         string
	ReferenciaTipo string     `gorm:"type:varchar(40);not null"`
	ReferenciaID   *uuid.UUID `gorm:"type:uuid;index"`
	UsuarioID      uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt      time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }

// TarjetaCredito is a card accepted at a branch. A nil SucursalID makes the
// card available at every branch.
type TarjetaCredito struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SucursalID *uuid.UUID `gorm:"type:uuid;index"`
	Nombre     string     `gorm:"not null"`
	Activo     bool       `gorm:"not null"`

	Cuotas []TarjetaCuota `gorm:"foreignKey:TarjetaID"`
}

func (TarjetaCredito) TableName() string { return "tarjetas_credito" }

// TarjetaCuota is one installment tier of a card with its surcharge rate (percent).
type TarjetaCuota struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TarjetaID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_tarjeta_cuotas"`
	NumeroCuotas int             `gorm:"not null;uniqueIndex:uq_tarjeta_cuotas"`
	TasaInteres  decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	Activo       bool            `gorm:"not null"`
}
