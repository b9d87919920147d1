package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NombreConsumidorFinal is the display name of the synthetic walk-in customer.
const NombreConsumidorFinal = "Consumidor Final"

// Cliente is a customer. Exactly one row may carry EsConsumidorFinal, the
// walk-in customer used when a sale names nobody; it is created on first use.
type Cliente struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre            string    `gorm:"not null;index"`
	Documento         *string
	Email             *string
	Telefono          *string
	EsConsumidorFinal bool `gorm:"not null"`
	Activo            bool `gorm:"not null"`
	CreatedAt         time.Time
}

// Vehiculo belongs to a customer; services may reference one.
type Vehiculo struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClienteID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Patente     string    `gorm:"not null"`
	Marca       *string
	Modelo      *string
	Kilometraje *int
}

// Tipos de movimiento de cuenta corriente.
const (
	CuentaCargo = "CARGO"
	CuentaPago  = "PAGO"
)

// CuentaCorriente is a customer's running credit balance. One per customer.
// Saldo always equals the sum of ACTIVO non-reversal CARGO rows minus the
// ACTIVO non-reversal PAGO rows of the account.
type CuentaCorriente struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClienteID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Saldo         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LimiteCredito decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Activo        bool            `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Cliente *Cliente `gorm:"foreignKey:ClienteID"`
}

func (CuentaCorriente) TableName() string { return "cuentas_corrientes" }

// MovimientoCuentaCorriente is an append-only row of an account.
// A cancelled PAGO keeps its row: Estado flips to CANCELADO and
// MovimientoReversionID points at the compensating CARGO, whose ReversaDeID
// points back.
type MovimientoCuentaCorriente struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CuentaCorrienteID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo                  string          `gorm:"type:varchar(10);not null"`
	Monto                 decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaldoAnterior         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaldoNuevo            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Concepto              string          `gorm:"not null"`
	ReferenciaTipo        string          `gorm:"type:varchar(40);not null"`
	ReferenciaID          *uuid.UUID      `gorm:"type:uuid;index"`
	MetodoPago            *string         `gorm:"type:varchar(30)"`
	SesionCajaID          *uuid.UUID      `gorm:"type:uuid"`
	UsuarioID             uuid.UUID       `gorm:"type:uuid;not null"`
	Estado                string          `gorm:"type:varchar(20);not null;default:'ACTIVO'"`
	Observaciones         *string
	CanceladoPor          *uuid.UUID `gorm:"type:uuid"`
	FechaCancelacion      *time.Time
	MotivoCancelacion     *string
	MovimientoReversionID *uuid.UUID `gorm:"type:uuid"`
	ReversaDeID           *uuid.UUID `gorm:"type:uuid"`
	CreatedAt             time.Time
}

func (MovimientoCuentaCorriente) TableName() string { return "movimientos_cuenta_corriente" }
