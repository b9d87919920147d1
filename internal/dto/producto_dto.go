package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	SucursalID   string          `json:"sucursal_id"   validate:"required,uuid"`
	Codigo       *string         `json:"codigo"        validate:"omitempty,max=40"`
	Nombre       string          `json:"nombre"        validate:"required,min=2,max=120"`
	Descripcion  *string         `json:"descripcion"`
	UnidadMedida string          `json:"unidad_medida" validate:"required,max=20"`
	Precio       decimal.Decimal `json:"precio"        validate:"min=0"`
	Stock        decimal.Decimal `json:"stock"         validate:"min=0"`
	StockMinimo  decimal.Decimal `json:"stock_minimo"  validate:"min=0"`
}

// AjustarStockRequest applies a signed correction; the result is an AJUSTE
// stock movement.
type AjustarStockRequest struct {
	Cantidad decimal.Decimal `json:"cantidad"`
	Motivo   string          `json:"motivo" validate:"required,min=3,max=200"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ProductoFilter struct {
	SucursalID       string `form:"sucursal_id" validate:"omitempty,uuid"`
	Q                string `form:"q"`
	IncluirInactivos bool   `form:"incluir_inactivos"`
	Paginacion
}

type MovimientoStockFilter struct {
	ProductoID string `form:"producto_id" validate:"omitempty,uuid"`
	Tipo       string `form:"tipo"        validate:"omitempty,oneof=ENTRADA SALIDA AJUSTE"`
	Paginacion
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID           string          `json:"id"`
	SucursalID   string          `json:"sucursal_id"`
	Codigo       *string         `json:"codigo"`
	Nombre       string          `json:"nombre"`
	Descripcion  *string         `json:"descripcion"`
	UnidadMedida string          `json:"unidad_medida"`
	Precio       decimal.Decimal `json:"precio"`
	Stock        decimal.Decimal `json:"stock"`
	StockMinimo  decimal.Decimal `json:"stock_minimo"`
	Activo       bool            `json:"activo"`
}

type MovimientoStockResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	Tipo           string          `json:"tipo"`
	UnidadMedida   string          `json:"unidad_medida"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	StockAnterior  decimal.Decimal `json:"stock_anterior"`
	StockNuevo     decimal.Decimal `json:"stock_nuevo"`
	Motivo         string          `json:"motivo"`
	ReferenciaTipo string          `json:"referencia_tipo"`
	ReferenciaID   *string         `json:"referencia_id"`
	UsuarioID      string          `json:"usuario_id"`
	CreatedAt      string          `json:"created_at"`
}

// Acciones de eliminación.
const (
	AccionEliminado   = "eliminado"
	AccionDesactivado = "desactivado"
)

// ResultadoEliminacion reports what a delete request actually did: rows that
// something references are deactivated, the rest are removed.
type ResultadoEliminacion struct {
	ID     string `json:"id"`
	Accion string `json:"accion"`
}

// ─── Tarjetas ────────────────────────────────────────────────────────────────

type CuotaResponse struct {
	NumeroCuotas int             `json:"numero_cuotas"`
	TasaInteres  decimal.Decimal `json:"tasa_interes"`
}

type TarjetaPlanResponse struct {
	ID         string          `json:"id"`
	Nombre     string          `json:"nombre"`
	SucursalID *string         `json:"sucursal_id"`
	Cuotas     []CuotaResponse `json:"cuotas"`
}
