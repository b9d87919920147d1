package service

import (
	"errors"
	"fmt"

	"lubripos/internal/apierror"
	"lubripos/internal/dto"
	"lubripos/internal/model"
	"lubripos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Plan de cobro ─────────────────────────────────────────────────────────────

// Porcion is one payment method's share of a transaction. Monto is part of
// the base total; Interes is the card surcharge on top of it.
type Porcion struct {
	MetodoPago string
	Monto      decimal.Decimal
	Interes    decimal.Decimal
	Tasa       decimal.Decimal
	TarjetaID  *uuid.UUID
	Cuotas     *int
}

// Cobrado is what the cash ledger receives for the portion.
func (p Porcion) Cobrado() decimal.Decimal { return p.Monto.Add(p.Interes) }

// PlanCobro is the resolved payment of a transaction: one portion, or two
// for a split payment.
type PlanCobro struct {
	Base      decimal.Decimal
	Porciones []Porcion
}

func (p PlanCobro) Dividido() bool { return len(p.Porciones) == 2 }

func (p PlanCobro) ACuenta() bool {
	return len(p.Porciones) == 1 && p.Porciones[0].MetodoPago == model.PagoCuentaCorriente
}

func (p PlanCobro) InteresTotal() decimal.Decimal {
	total := decimal.Zero
	for _, por := range p.Porciones {
		total = total.Add(por.Interes)
	}
	return total
}

// aplicar copies the plan into the header columns.
func (p PlanCobro) aplicar(imp *model.Importes) {
	interes := p.InteresTotal()
	imp.InteresTarjetaMonto = interes
	imp.InteresTarjetaPorcentaje = decimal.Zero
	imp.TotalConInteresTarjeta = nil
	if interes.IsPositive() {
		conInteres := p.Base.Add(interes)
		imp.TotalConInteresTarjeta = &conInteres
	}

	primera := p.Porciones[0]
	imp.TarjetaID = primera.TarjetaID
	imp.Cuotas = primera.Cuotas

	if !p.Dividido() {
		imp.TipoPago = primera.MetodoPago
		imp.InteresTarjetaPorcentaje = primera.Tasa
		return
	}

	segunda := p.Porciones[1]
	imp.TipoPago = model.PagoMultiple
	// With two portions the percent is the effective rate over the base.
	imp.InteresTarjetaPorcentaje = porcentaje(interes, p.Base)
	imp.MetodoPago1 = &primera.MetodoPago
	imp.MontoPago1 = &primera.Monto
	imp.MetodoPago2 = &segunda.MetodoPago
	imp.MontoPago2 = &segunda.Monto
	imp.TarjetaID2 = segunda.TarjetaID
	imp.Cuotas2 = segunda.Cuotas
}

// validarCobro checks the request shape before anything is read or written.
func validarCobro(req dto.CobroRequest) error {
	switch req.TipoPago {
	case model.PagoEfectivo, model.PagoTarjetaCredito, model.PagoTransferencia, model.PagoCuentaCorriente:
	default:
		return apierror.Validation(fmt.Sprintf("Tipo de pago inválido: %s", req.TipoPago))
	}
	div := req.PagoDividido
	if div == nil {
		return nil
	}
	if div.TipoPago2 == "" || !div.Monto1.IsPositive() || !div.Monto2.IsPositive() {
		return apierror.Validation("El pago dividido requiere tipo_pago_2, monto_1 y monto_2")
	}
	if req.TipoPago == model.PagoCuentaCorriente || div.TipoPago2 == model.PagoCuentaCorriente {
		return apierror.Validation("La cuenta corriente no puede combinarse en un pago dividido")
	}
	switch div.TipoPago2 {
	case model.PagoEfectivo, model.PagoTarjetaCredito, model.PagoTransferencia:
	default:
		return apierror.Validation(fmt.Sprintf("Tipo de pago inválido: %s", div.TipoPago2))
	}
	return nil
}

// ── Payment Recorder ─────────────────────────────────────────────────────────

// registradorPagos resolves card interest and posts the money rows of a new
// sale or service inside the caller's transaction.
type registradorPagos struct {
	caja     repository.CajaRepository
	cuentas  repository.CuentaCorrienteRepository
	tarjetas repository.TarjetaRepository
}

// planificarTx resolves the payment of a transaction whose base total is
// base. The split amounts must add up to base exactly.
// Card interest is computed per portion and added on top of those amounts,
// so callers send monto_1/monto_2 without interest.
func (r registradorPagos) planificarTx(tx *gorm.DB, sucursalID uuid.UUID, base decimal.Decimal, req dto.CobroRequest) (*PlanCobro, error) {
	if err := validarCobro(req); err != nil {
		return nil, err
	}
	plan := &PlanCobro{Base: base}

	if req.PagoDividido == nil {
		por, err := r.porcionTx(tx, sucursalID, req.TipoPago, base, req.TarjetaID, req.Cuotas)
		if err != nil {
			return nil, err
		}
		plan.Porciones = []Porcion{por}
		return plan, nil
	}

	div := req.PagoDividido
	suma := redondear(div.Monto1).Add(redondear(div.Monto2))
	if !suma.Equal(base) {
		return nil, apierror.Validation(fmt.Sprintf(
			"La suma de los pagos (%s) no coincide con el total (%s)", suma.StringFixed(2), base.StringFixed(2)))
	}
	p1, err := r.porcionTx(tx, sucursalID, req.TipoPago, redondear(div.Monto1), req.TarjetaID, req.Cuotas)
	if err != nil {
		return nil, err
	}
	p2, err := r.porcionTx(tx, sucursalID, div.TipoPago2, redondear(div.Monto2), div.TarjetaID2, div.Cuotas2)
	if err != nil {
		return nil, err
	}
	plan.Porciones = []Porcion{p1, p2}
	return plan, nil
}

func (r registradorPagos) porcionTx(tx *gorm.DB, sucursalID uuid.UUID, metodo string, monto decimal.Decimal, tarjetaRaw *string, cuotas *int) (Porcion, error) {
	por := Porcion{MetodoPago: metodo, Monto: monto, Interes: decimal.Zero, Tasa: decimal.Zero}
	if metodo != model.PagoTarjetaCredito {
		return por, nil
	}
	tarjetaID, err := parseOptionalID(tarjetaRaw, "tarjeta_id")
	if err != nil || tarjetaID == nil {
		return por, err
	}

	tarjeta, err := r.tarjetas.FindTarjetaTx(tx, *tarjetaID)
	if err != nil {
		return por, notFound(err, "Tarjeta no encontrada")
	}
	if !tarjeta.Activo || (tarjeta.SucursalID != nil && *tarjeta.SucursalID != sucursalID) {
		return por, apierror.Validation(fmt.Sprintf("La tarjeta %s no está habilitada en esta sucursal", tarjeta.Nombre))
	}

	n := 1
	if cuotas != nil {
		n = *cuotas
	}
	if n < 1 {
		return por, apierror.Validation("La cantidad de cuotas debe ser mayor a cero")
	}
	por.TarjetaID = tarjetaID
	por.Cuotas = &n

	plan, err := r.tarjetas.FindCuotaTx(tx, *tarjetaID, n)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound) && n == 1:
		// one installment without a configured tier carries no surcharge
		return por, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return por, apierror.Validation(fmt.Sprintf("La tarjeta %s no tiene plan de %d cuotas", tarjeta.Nombre, n))
	case err != nil:
		return por, err
	}

	por.Tasa = plan.TasaInteres
	por.Interes = InteresTarjeta(monto, plan.TasaInteres)
	return por, nil
}

// Asiento identifies the transaction a payment is posted for.
type Asiento struct {
	SesionCajaID   uuid.UUID
	ReferenciaTipo string
	ReferenciaID   uuid.UUID
	// Etiqueta and Numero build the concept, e.g. "Venta V-20240101-001".
	Etiqueta  string
	Numero    string
	ClienteID uuid.UUID
	UsuarioID uuid.UUID
}

func (a Asiento) concepto() string { return fmt.Sprintf("%s %s", a.Etiqueta, a.Numero) }

// Posteo is what registrarTx wrote: cash rows, or one account CARGO.
type Posteo struct {
	Movimientos []model.MovimientoCaja
	Cargo       *model.MovimientoCuentaCorriente
}

func (r registradorPagos) registrarTx(tx *gorm.DB, plan *PlanCobro, a Asiento) (*Posteo, error) {
	if plan.ACuenta() {
		cargo, err := r.cargarCuentaTx(tx, plan.Base, a)
		if err != nil {
			return nil, err
		}
		return &Posteo{Cargo: cargo}, nil
	}

	posteo := &Posteo{}
	for i, por := range plan.Porciones {
		concepto := fmt.Sprintf("%s - %s", a.concepto(), por.MetodoPago)
		if plan.Dividido() {
			concepto = fmt.Sprintf("%s (Pago %d/%d)", concepto, i+1, len(plan.Porciones))
		}
		refID := a.ReferenciaID
		mov := model.MovimientoCaja{
			SesionCajaID:   a.SesionCajaID,
			Tipo:           model.MovimientoIngreso,
			Concepto:       concepto,
			Monto:          por.Cobrado(),
			MetodoPago:     por.MetodoPago,
			ReferenciaTipo: a.ReferenciaTipo,
			ReferenciaID:   &refID,
			UsuarioID:      a.UsuarioID,
			Estado:         model.EstadoActivo,
		}
		if err := r.caja.CreateMovimientoTx(tx, &mov); err != nil {
			return nil, err
		}
		posteo.Movimientos = append(posteo.Movimientos, mov)
	}
	return posteo, nil
}

// cargarCuentaTx posts a CARGO for monto, creating the account on first use.
func (r registradorPagos) cargarCuentaTx(tx *gorm.DB, monto decimal.Decimal, a Asiento) (*model.MovimientoCuentaCorriente, error) {
	cuenta, err := r.cuentas.FindOrCreateTx(tx, a.ClienteID)
	if err != nil {
		return nil, err
	}
	if !cuenta.Activo {
		return nil, apierror.Validation("La cuenta corriente del cliente está inactiva")
	}
	nuevo := cuenta.Saldo.Add(monto)
	if cuenta.LimiteCredito.IsPositive() && nuevo.GreaterThan(cuenta.LimiteCredito) {
		return nil, apierror.Validation(fmt.Sprintf(
			"Límite de crédito excedido. Disponible: %s", cuenta.LimiteCredito.Sub(cuenta.Saldo).StringFixed(2)))
	}

	refID := a.ReferenciaID
	sesionID := a.SesionCajaID
	cargo := &model.MovimientoCuentaCorriente{
		CuentaCorrienteID: cuenta.ID,
		Tipo:              model.CuentaCargo,
		Monto:             monto,
		SaldoAnterior:     cuenta.Saldo,
		SaldoNuevo:        nuevo,
		Concepto:          a.concepto(),
		ReferenciaTipo:    a.ReferenciaTipo,
		ReferenciaID:      &refID,
		SesionCajaID:      &sesionID,
		UsuarioID:         a.UsuarioID,
		Estado:            model.EstadoActivo,
	}
	if err := r.cuentas.CreateMovimientoTx(tx, cargo); err != nil {
		return nil, err
	}
	if err := r.cuentas.UpdateSaldoTx(tx, cuenta.ID, nuevo); err != nil {
		return nil, err
	}
	return cargo, nil
}
