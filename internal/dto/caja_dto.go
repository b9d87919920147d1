package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	SucursalID    string          `json:"sucursalId"    validate:"required,uuid"`
	MontoInicial  decimal.Decimal `json:"montoInicial"  validate:"min=0"`
	Observaciones *string         `json:"observaciones" validate:"omitempty,max=500"`
}

type CerrarCajaRequest struct {
	MontoFinal    decimal.Decimal `json:"montoFinal"    validate:"min=0"`
	Observaciones *string         `json:"observaciones" validate:"omitempty,max=500"`
}

type MovimientoManualRequest struct {
	SesionCajaID  string          `json:"sesion_caja_id" validate:"required,uuid"`
	Tipo          string          `json:"tipo"           validate:"required,oneof=INGRESO EGRESO"`
	MetodoPago    string          `json:"metodo_pago"    validate:"required,oneof=EFECTIVO TARJETA_CREDITO TRANSFERENCIA"`
	Monto         decimal.Decimal `json:"monto"          validate:"gt=0"`
	Concepto      string          `json:"concepto"       validate:"required,min=3,max=200"`
	Observaciones *string         `json:"observaciones"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

// HistorialCajaFilter is bound from the query string of GET /v1/caja/historial.
type HistorialCajaFilter struct {
	SucursalID string `form:"sucursal_id" validate:"omitempty,uuid"`
	Estado     string `form:"estado"      validate:"omitempty,oneof=ABIERTA CERRADA"`
	RangoFechas
	Paginacion
}

type MovimientoCajaFilter struct {
	Tipo   string `form:"tipo"   validate:"omitempty,oneof=INGRESO EGRESO"`
	Estado string `form:"estado" validate:"omitempty,oneof=ACTIVO CANCELADO"`
	Paginacion
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// DesgloseMetodo is one entry of the per-payment-method income breakdown.
type DesgloseMetodo struct {
	Total    decimal.Decimal `json:"total"`
	Cantidad int64           `json:"cantidad"`
}

type SesionCajaResponse struct {
	ID                    string                    `json:"id"`
	SucursalID            string                    `json:"sucursal_id"`
	SucursalNombre        string                    `json:"sucursal_nombre,omitempty"`
	UsuarioAperturaID     string                    `json:"usuario_apertura_id"`
	UsuarioAperturaNombre string                    `json:"usuario_apertura_nombre,omitempty"`
	MontoInicial          decimal.Decimal           `json:"monto_inicial"`
	ObservacionesApertura *string                   `json:"observaciones_apertura"`
	UsuarioCierreID       *string                   `json:"usuario_cierre_id"`
	UsuarioCierreNombre   *string                   `json:"usuario_cierre_nombre,omitempty"`
	MontoFinal            *decimal.Decimal          `json:"monto_final"`
	MontoSistema          *decimal.Decimal          `json:"monto_sistema"`
	TotalIngresos         decimal.Decimal           `json:"total_ingresos"`
	TotalEgresos          decimal.Decimal           `json:"total_egresos"`
	Diferencia            decimal.Decimal           `json:"diferencia"`
	DesgloseIngresos      map[string]DesgloseMetodo `json:"desglose_ingresos,omitempty"`
	ObservacionesCierre   *string                   `json:"observaciones_cierre"`
	Estado                string                    `json:"estado"`
	FechaApertura         string                    `json:"fecha_apertura"`
	FechaCierre           *string                   `json:"fecha_cierre"`
}

type MovimientoCajaResponse struct {
	ID             string          `json:"id"`
	SesionCajaID   string          `json:"sesion_caja_id"`
	Tipo           string          `json:"tipo"`
	Concepto       string          `json:"concepto"`
	Monto          decimal.Decimal `json:"monto"`
	MetodoPago     string          `json:"metodo_pago"`
	ReferenciaTipo string          `json:"referencia_tipo"`
	ReferenciaID   *string         `json:"referencia_id"`
	UsuarioID      string          `json:"usuario_id"`
	Estado         string          `json:"estado"`
	Observaciones  *string         `json:"observaciones"`
	ReversaDeID    *string         `json:"reversa_de_id"`
	CreatedAt      string          `json:"created_at"`
}

type ResumenMetodoResponse struct {
	MetodoPago string          `json:"metodo_pago"`
	Total      decimal.Decimal `json:"total"`
	Cantidad   int64           `json:"cantidad"`
	Porcentaje decimal.Decimal `json:"porcentaje"`
}

// ResumenCajaResponse is the live summary of a session (open or closed).
type ResumenCajaResponse struct {
	MontoInicial  decimal.Decimal         `json:"monto_inicial"`
	TotalIngresos decimal.Decimal         `json:"total_ingresos"`
	TotalEgresos  decimal.Decimal         `json:"total_egresos"`
	MontoEsperado decimal.Decimal         `json:"monto_esperado"`
	PorMetodo     []ResumenMetodoResponse `json:"por_metodo"`
}

type DetalleSesionResponse struct {
	Sesion  SesionCajaResponse  `json:"sesion"`
	Resumen ResumenCajaResponse `json:"resumen"`
}

type IngresosMetodoResponse struct {
	ResumenMetodoResponse
	Movimientos []MovimientoCajaResponse `json:"movimientos"`
}

type DetalleIngresosResponse struct {
	SesionCajaID  string                   `json:"sesion_caja_id"`
	TotalIngresos decimal.Decimal          `json:"total_ingresos"`
	Metodos       []IngresosMetodoResponse `json:"metodos"`
}
