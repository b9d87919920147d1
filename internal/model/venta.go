package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de pago.
const (
	PagoEfectivo        = "EFECTIVO"
	PagoTarjetaCredito  = "TARJETA_CREDITO"
	PagoTransferencia   = "TRANSFERENCIA"
	PagoCuentaCorriente = "CUENTA_CORRIENTE"
	// PagoMultiple is only ever stored on a header; it is never a posting method.
	PagoMultiple = "PAGO_MULTIPLE"
)

// Estados de venta y servicio.
const (
	TransaccionCompletada = "COMPLETADA"
	TransaccionCancelada  = "CANCELADA"
)

// Importes holds the pricing and payment columns shared by sale and service
// headers. Total is the base total (after discount / system interest); the
// card surcharge only shows up in TotalConInteresTarjeta.
type Importes struct {
	Subtotal                 decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Descuento                decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	InteresSistemaPorcentaje decimal.Decimal  `gorm:"type:decimal(8,2);not null;default:0"`
	InteresSistemaMonto      decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	InteresTarjetaPorcentaje decimal.Decimal  `gorm:"type:decimal(8,2);not null;default:0"`
	InteresTarjetaMonto      decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Total                    decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	TotalConInteresTarjeta   *decimal.Decimal `gorm:"type:decimal(12,2)"`

	TipoPago  string     `gorm:"type:varchar(30);not null"`
	TarjetaID *uuid.UUID `gorm:"type:uuid"`
	Cuotas    *int

	// Split payment (TipoPago = PAGO_MULTIPLE)
	MetodoPago1 *string          `gorm:"type:varchar(30);column:metodo_pago_1"`
	MontoPago1  *decimal.Decimal `gorm:"type:decimal(12,2);column:monto_pago_1"`
	MetodoPago2 *string          `gorm:"type:varchar(30);column:metodo_pago_2"`
	MontoPago2  *decimal.Decimal `gorm:"type:decimal(12,2);column:monto_pago_2"`
	TarjetaID2  *uuid.UUID       `gorm:"type:uuid;column:tarjeta_id_2"`
	Cuotas2     *int             `gorm:"column:cuotas_2"`
}

// TotalCaja is what the cash ledger received for the transaction.
func (i Importes) TotalCaja() decimal.Decimal {
	if i.TotalConInteresTarjeta != nil {
		return *i.TotalConInteresTarjeta
	}
	return i.Total
}

// Venta is a sale header. Mutated only by cancellation; never deleted.
type Venta struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Numero       string    `gorm:"type:varchar(30);uniqueIndex;not null"`
	SucursalID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ClienteID    uuid.UUID `gorm:"type:uuid;not null;index"`
	UsuarioID    uuid.UUID `gorm:"type:uuid;not null"`
	SesionCajaID uuid.UUID `gorm:"type:uuid;not null;index"`
	Importes     `gorm:"embedded"`

	Estado           string `gorm:"type:varchar(20);not null"`
	Observaciones    *string
	CanceladoPor     *uuid.UUID `gorm:"type:uuid"`
	FechaCancelacion *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Detalles []DetalleVenta `gorm:"foreignKey:VentaID"`
	Cliente  *Cliente       `gorm:"foreignKey:ClienteID"`
	Sucursal *Sucursal      `gorm:"foreignKey:SucursalID"`
}

// DetalleVenta is a sale line. PrecioUnitario is the price actually charged,
// which may differ from the product's list price.
type DetalleVenta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnidadMedida   string          `gorm:"type:varchar(20);not null"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleVenta) TableName() string { return "detalle_ventas" }
