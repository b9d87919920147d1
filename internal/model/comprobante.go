package model

import (
	"time"

	"github.com/google/uuid"
)

// Estados de comprobante.
const (
	ComprobantePendiente = "pendiente"
	ComprobanteGenerado  = "generado"
	ComprobanteEnviado   = "enviado"
	ComprobanteError     = "error"
)

// Comprobante tracks the internal PDF ticket of a sale or service.
// OrigenTipo: "VENTA" | "SERVICIO". Written only by the async workers.
type Comprobante struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrigenTipo string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_comprobante_origen"`
	OrigenID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_comprobante_origen"`
	Numero     string    `gorm:"type:varchar(30);not null"`
	Estado     string    `gorm:"type:varchar(20);not null"`
	// PDFPath is relative to PDF_STORAGE_PATH
	PDFPath   *string `gorm:"column:pdf_path"`
	Email     *string
	Intentos  int `gorm:"not null;default:0"`
	LastError *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contador is a named monotonically increasing counter used for
// human-readable numbering. Incremented with an upsert inside the caller's
// transaction, so two writers never observe the same value.
type Contador struct {
	Clave string `gorm:"type:varchar(40);primaryKey"`
	Valor int64  `gorm:"not null"`
}

// TableName is referenced by the increment expression in ContadorRepository.
func (Contador) TableName() string { return "contadores" }
