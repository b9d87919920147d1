package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemProductoRequest is a product line of a sale or of a service item.
// PrecioUnitario is the price charged, not necessarily the list price.
type ItemProductoRequest struct {
	ProductoID     string          `json:"producto_id"     validate:"required,uuid"`
	Cantidad       decimal.Decimal `json:"cantidad"        validate:"gt=0"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
}

// PagoDivididoRequest turns the payment into PAGO_MULTIPLE. The primary
// method is CobroRequest.TipoPago with Monto1; the secondary is TipoPago2.
type PagoDivididoRequest struct {
	TipoPago2  string          `json:"tipo_pago_2"  validate:"required,oneof=EFECTIVO TARJETA_CREDITO TRANSFERENCIA"`
	Monto1     decimal.Decimal `json:"monto_1"      validate:"gt=0"`
	Monto2     decimal.Decimal `json:"monto_2"      validate:"gt=0"`
	TarjetaID2 *string         `json:"tarjeta_id_2" validate:"omitempty,uuid"`
	Cuotas2    *int            `json:"cuotas_2"     validate:"omitempty,min=1"`
}

// CobroRequest carries the pricing adjustment and payment fields shared by
// sales and services.
type CobroRequest struct {
	TipoPago  string  `json:"tipo_pago"  validate:"required,oneof=EFECTIVO TARJETA_CREDITO TRANSFERENCIA CUENTA_CORRIENTE"`
	TarjetaID *string `json:"tarjeta_id" validate:"omitempty,uuid"`
	Cuotas    *int    `json:"cuotas"     validate:"omitempty,min=1"`

	Descuento           decimal.Decimal `json:"descuento"             validate:"min=0"`
	TipoInteresSistema  string          `json:"tipo_interes_sistema"  validate:"omitempty,oneof=porcentaje monto"`
	ValorInteresSistema decimal.Decimal `json:"valor_interes_sistema" validate:"min=0"`

	PagoDividido *PagoDivididoRequest `json:"pago_dividido"`
}

type CrearVentaRequest struct {
	SucursalID *string               `json:"sucursal_id" validate:"omitempty,uuid"`
	ClienteID  *string               `json:"cliente_id"  validate:"omitempty,uuid"`
	Items      []ItemProductoRequest `json:"items"       validate:"required,min=1,dive"`
	CobroRequest
	Observaciones *string `json:"observaciones" validate:"omitempty,max=1000"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

// TransaccionFilter is bound from the query string of GET /v1/ventas and
// GET /v1/servicios.
type TransaccionFilter struct {
	SucursalID string `form:"sucursal_id" validate:"omitempty,uuid"`
	ClienteID  string `form:"cliente_id"  validate:"omitempty,uuid"`
	Estado     string `form:"estado"      validate:"omitempty,oneof=COMPLETADA CANCELADA"`
	RangoFechas
	Paginacion
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PagoDivididoResponse struct {
	MetodoPago1 string          `json:"metodo_pago_1"`
	MontoPago1  decimal.Decimal `json:"monto_pago_1"`
	MetodoPago2 string          `json:"metodo_pago_2"`
	MontoPago2  decimal.Decimal `json:"monto_pago_2"`
	TarjetaID2  *string         `json:"tarjeta_id_2,omitempty"`
	Cuotas2     *int            `json:"cuotas_2,omitempty"`
}

// ImportesResponse mirrors model.Importes.
type ImportesResponse struct {
	Subtotal                 decimal.Decimal       `json:"subtotal"`
	Descuento                decimal.Decimal       `json:"descuento"`
	InteresSistemaPorcentaje decimal.Decimal       `json:"interes_sistema_porcentaje"`
	InteresSistemaMonto      decimal.Decimal       `json:"interes_sistema_monto"`
	InteresTarjetaPorcentaje decimal.Decimal       `json:"interes_tarjeta_porcentaje"`
	InteresTarjetaMonto      decimal.Decimal       `json:"interes_tarjeta_monto"`
	Total                    decimal.Decimal       `json:"total"`
	TotalConInteresTarjeta   *decimal.Decimal      `json:"total_con_interes_tarjeta"`
	TipoPago                 string                `json:"tipo_pago"`
	TarjetaID                *string               `json:"tarjeta_id"`
	Cuotas                   *int                  `json:"cuotas"`
	PagoDividido             *PagoDivididoResponse `json:"pago_dividido,omitempty"`
}

type DetalleVentaResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	ProductoNombre string          `json:"producto_nombre,omitempty"`
	UnidadMedida   string          `json:"unidad_medida"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID            string `json:"id"`
	Numero        string `json:"numero"`
	SucursalID    string `json:"sucursal_id"`
	ClienteID     string `json:"cliente_id"`
	ClienteNombre string `json:"cliente_nombre,omitempty"`
	UsuarioID     string `json:"usuario_id"`
	SesionCajaID  string `json:"sesion_caja_id"`
	ImportesResponse
	Estado           string                   `json:"estado"`
	Observaciones    *string                  `json:"observaciones"`
	CanceladoPor     *string                  `json:"cancelado_por"`
	FechaCancelacion *string                  `json:"fecha_cancelacion"`
	CreatedAt        string                   `json:"created_at"`
	Detalles         []DetalleVentaResponse   `json:"detalles"`
	Pagos            []MovimientoCajaResponse `json:"pagos,omitempty"`
}
