package dto

import "github.com/shopspring/decimal"

type RegistrarPagoRequest struct {
	Monto         decimal.Decimal `json:"monto"          validate:"gt=0"`
	MetodoPago    string          `json:"metodo_pago"    validate:"required,oneof=EFECTIVO TARJETA_CREDITO TRANSFERENCIA"`
	SesionCajaID  string          `json:"sesion_caja_id" validate:"required,uuid"`
	Observaciones *string         `json:"observaciones"  validate:"omitempty,max=500"`
}

// ConfigurarCuentaRequest updates the credit limit and/or the active flag.
// A zero limit means "no limit".
type ConfigurarCuentaRequest struct {
	LimiteCredito *decimal.Decimal `json:"limite_credito"`
	Activo        *bool            `json:"activo"`
}

type CuentaFilter struct {
	Q        string `form:"q"`
	ConSaldo bool   `form:"con_saldo"`
	Paginacion
}

type CuentaCorrienteResponse struct {
	ID                string           `json:"id"`
	ClienteID         string           `json:"cliente_id"`
	ClienteNombre     string           `json:"cliente_nombre,omitempty"`
	Saldo             decimal.Decimal  `json:"saldo"`
	LimiteCredito     decimal.Decimal  `json:"limite_credito"`
	CreditoDisponible *decimal.Decimal `json:"credito_disponible"`
	Activo            bool             `json:"activo"`
}

type MovimientoCuentaResponse struct {
	ID                    string          `json:"id"`
	CuentaCorrienteID     string          `json:"cuenta_corriente_id"`
	Tipo                  string          `json:"tipo"`
	Monto                 decimal.Decimal `json:"monto"`
	SaldoAnterior         decimal.Decimal `json:"saldo_anterior"`
	SaldoNuevo            decimal.Decimal `json:"saldo_nuevo"`
	Concepto              string          `json:"concepto"`
	ReferenciaTipo        string          `json:"referencia_tipo"`
	ReferenciaID          *string         `json:"referencia_id"`
	MetodoPago            *string         `json:"metodo_pago"`
	SesionCajaID          *string         `json:"sesion_caja_id"`
	Estado                string          `json:"estado"`
	Observaciones         *string         `json:"observaciones"`
	CanceladoPor          *string         `json:"cancelado_por"`
	FechaCancelacion      *string         `json:"fecha_cancelacion"`
	MotivoCancelacion     *string         `json:"motivo_cancelacion"`
	MovimientoReversionID *string         `json:"movimiento_reversion_id"`
	ReversaDeID           *string         `json:"reversa_de_id"`
	CreatedAt             string          `json:"created_at"`
}

type PagoCuentaResponse struct {
	Movimiento     MovimientoCuentaResponse `json:"movimiento"`
	MovimientoCaja MovimientoCajaResponse   `json:"movimiento_caja"`
	Saldo          decimal.Decimal          `json:"saldo"`
}
