package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de sesión de caja.
const (
	CajaAbierta = "ABIERTA"
	CajaCerrada = "CERRADA"
)

// Tipos y estados de movimiento (caja y cuenta corriente).
const (
	MovimientoIngreso = "INGRESO"
	MovimientoEgreso  = "EGRESO"

	EstadoActivo    = "ACTIVO"
	EstadoCancelado = "CANCELADO"
)

// Referencias de los movimientos de caja, cuenta corriente y stock.
const (
	RefVenta                 = "VENTA"
	RefServicio              = "SERVICIO"
	RefManual                = "MANUAL"
	RefPagoCuentaCorriente   = "PAGO_CUENTA_CORRIENTE"
	RefVentaCancelada        = "VENTA_CANCELADA"
	RefServicioCancelado     = "SERVICIO_CANCELADO"
	RefCancelacionPagoCuenta = "CANCELACION_PAGO_CUENTA_CORRIENTE"
	RefAjusteManual          = "AJUSTE_MANUAL"
)

// SesionCaja is the lifecycle of a till session for one branch.
// Estado: "ABIERTA" → "CERRADA" (terminal). At most one ABIERTA row per
// sucursal, enforced by a partial unique index (see infra.schemaPatches).
type SesionCaja struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SucursalID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioAperturaID     uuid.UUID       `gorm:"type:uuid;not null"`
	MontoInicial          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ObservacionesApertura *string
	UsuarioCierreID       *uuid.UUID       `gorm:"type:uuid"`
	MontoFinal            *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MontoSistema          *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalIngresos         decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	TotalEgresos          decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Diferencia            decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	// DesgloseIngresos is the JSON form of map[metodo_pago]{total, cantidad}
	DesgloseIngresos    *string `gorm:"type:text"`
	ObservacionesCierre *string
	Estado              string    `gorm:"type:varchar(20);not null;default:'ABIERTA'"`
	FechaApertura       time.Time `gorm:"not null;index"`
	FechaCierre         *time.Time

	Sucursal        *Sucursal `gorm:"foreignKey:SucursalID"`
	UsuarioApertura *Usuario  `gorm:"foreignKey:UsuarioAperturaID"`
	UsuarioCierre   *Usuario  `gorm:"foreignKey:UsuarioCierreID"`
}

func (SesionCaja) TableName() string { return "sesiones_caja" }

// MovimientoCaja is an append-only row in the cash ledger.
// Rows are never deleted. A cancellation flips the original to CANCELADO and
// posts a compensating EGRESO whose ReversaDeID points back at it; those
// compensating rows stay out of session totals.
type MovimientoCaja struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SesionCajaID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo           string          `gorm:"type:varchar(10);not null"`
	Concepto       string          `gorm:"not null"`
	Monto          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago     string          `gorm:"type:varchar(30);not null"`
	ReferenciaTipo string          `gorm:"type:varchar(40);not null;index:idx_mov_caja_ref"`
	ReferenciaID   *uuid.UUID      `gorm:"type:uuid;index:idx_mov_caja_ref"`
	UsuarioID      uuid.UUID       `gorm:"type:uuid;not null"`
	Estado         string          `gorm:"type:varchar(20);not null;default:'ACTIVO'"`
	Observaciones  *string
	ReversaDeID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }
