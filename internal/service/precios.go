package service

import (
	"lubripos/internal/apierror"
	"lubripos/internal/dto"

	"github.com/shopspring/decimal"
)

var cien = decimal.NewFromInt(100)

// redondear rounds money to cents, half away from zero.
func redondear(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// ── AjustePrecio ─────────────────────────────────────────────────────────────
// A transaction carries at most one price adjustment: a discount or a system
// interest, never both. The variant makes the combination unrepresentable
// past ajusteDesdeCobro.

type AjustePrecio interface {
	ajustePrecio()
}

type SinAjuste struct{}

// Descuento subtracts a flat amount from the subtotal.
type Descuento struct {
	Monto decimal.Decimal
}

type TipoInteres string

const (
	InteresPorcentaje TipoInteres = "porcentaje"
	InteresMonto      TipoInteres = "monto"
)

// InteresSistema adds a surcharge: a percent of the subtotal or a flat amount.
type InteresSistema struct {
	Tipo  TipoInteres
	Valor decimal.Decimal
}

func (SinAjuste) ajustePrecio()      {}
func (Descuento) ajustePrecio()      {}
func (InteresSistema) ajustePrecio() {}

// ajusteDesdeCobro builds the adjustment from the request fields.
func ajusteDesdeCobro(req dto.CobroRequest) (AjustePrecio, error) {
	if req.Descuento.IsNegative() || req.ValorInteresSistema.IsNegative() {
		return nil, apierror.Validation("El descuento y el interés no pueden ser negativos")
	}
	hayDescuento := req.Descuento.IsPositive()
	hayInteres := req.ValorInteresSistema.IsPositive()

	switch {
	case hayDescuento && hayInteres:
		return nil, apierror.Validation("No se puede aplicar descuento e interés del sistema simultáneamente")
	case hayDescuento:
		return Descuento{Monto: req.Descuento}, nil
	case hayInteres:
		tipo := TipoInteres(req.TipoInteresSistema)
		if tipo == "" {
			tipo = InteresPorcentaje
		}
		if tipo != InteresPorcentaje && tipo != InteresMonto {
			return nil, apierror.Validation("tipo_interes_sistema debe ser 'porcentaje' o 'monto'")
		}
		return InteresSistema{Tipo: tipo, Valor: req.ValorInteresSistema}, nil
	default:
		return SinAjuste{}, nil
	}
}

// Totales is the priced header of a transaction before card interest.
type Totales struct {
	Subtotal                 decimal.Decimal
	Descuento                decimal.Decimal
	InteresSistemaPorcentaje decimal.Decimal
	InteresSistemaMonto      decimal.Decimal
	// Total is the base total: subtotal − descuento + interés del sistema.
	Total decimal.Decimal
}

// CalcularTotales applies the adjustment to the subtotal. A percent interest
// applies to the subtotal; a flat one back-computes its percent for display.
func CalcularTotales(subtotal decimal.Decimal, ajuste AjustePrecio) (Totales, error) {
	t := Totales{
		Subtotal:                 redondear(subtotal),
		Descuento:                decimal.Zero,
		InteresSistemaPorcentaje: decimal.Zero,
		InteresSistemaMonto:      decimal.Zero,
	}

	switch a := ajuste.(type) {
	case nil, SinAjuste:
	case Descuento:
		t.Descuento = redondear(a.Monto)
		if t.Descuento.GreaterThan(t.Subtotal) {
			return Totales{}, apierror.Validation("El descuento no puede superar el subtotal")
		}
	case InteresSistema:
		switch a.Tipo {
		case InteresMonto:
			t.InteresSistemaMonto = redondear(a.Valor)
			t.InteresSistemaPorcentaje = porcentaje(t.InteresSistemaMonto, t.Subtotal)
		default:
			t.InteresSistemaPorcentaje = a.Valor
			t.InteresSistemaMonto = redondear(t.Subtotal.Mul(a.Valor).Div(cien))
		}
	}

	t.Total = t.Subtotal.Sub(t.Descuento).Add(t.InteresSistemaMonto)
	return t, nil
}

// InteresTarjeta is the card surcharge on monto at tasa percent.
func InteresTarjeta(monto, tasa decimal.Decimal) decimal.Decimal {
	if !tasa.IsPositive() {
		return decimal.Zero
	}
	return redondear(monto.Mul(tasa).Div(cien))
}

// subtotalLinea is precio × cantidad rounded to cents.
func subtotalLinea(precio, cantidad decimal.Decimal) decimal.Decimal {
	return redondear(precio.Mul(cantidad))
}
