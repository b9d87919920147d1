package service

import (
	"fmt"
	"time"

	"lubripos/internal/apierror"
	"lubripos/internal/model"
	"lubripos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Cancellation / Reversal ──────────────────────────────────────────────────
// Every reversal posts compensating rows instead of editing amounts: the
// original is flipped to CANCELADO and the compensating row points back at it
// through reversa_de_id. Compensating rows stay out of totals and balances.

type reversor struct {
	caja    repository.CajaRepository
	cuentas repository.CuentaCorrienteRepository
	stock   stockLedger
}

// exigirSesionAbiertaTx locks the session and rejects reversals against a
// session that is no longer ABIERTA.
func (r reversor) exigirSesionAbiertaTx(tx *gorm.DB, sesionID uuid.UUID, msg string) error {
	sesion, err := r.caja.FindSesionByIDTx(tx, sesionID)
	if err != nil {
		return notFound(err, "Sesión de caja no encontrada")
	}
	if sesion.Estado != model.CajaAbierta {
		return apierror.SesionNoAbierta(msg)
	}
	return nil
}

// Reversion identifies what is being undone and who is undoing it.
type Reversion struct {
	ReferenciaTipo string    // reference of the rows to reverse
	ReferenciaID   uuid.UUID // id of the source record
	RefCancelacion string    // reference type of the compensating rows
	Concepto       string
	Motivo         string
	UsuarioID      uuid.UUID
	Fecha          time.Time
}

// revertirIngresosTx mirrors every ACTIVO INGRESO of the source with an
// EGRESO of the same method and amount, then flips the originals.
func (r reversor) revertirIngresosTx(tx *gorm.DB, rev Reversion) ([]model.MovimientoCaja, error) {
	ingresos, err := r.caja.FindIngresosActivosTx(tx, rev.ReferenciaTipo, rev.ReferenciaID)
	if err != nil {
		return nil, err
	}

	egresos := make([]model.MovimientoCaja, 0, len(ingresos))
	ids := make([]uuid.UUID, 0, len(ingresos))
	for _, ing := range ingresos {
		origen := ing.ID
		refID := rev.ReferenciaID
		motivo := rev.Motivo
		egreso := model.MovimientoCaja{
			SesionCajaID:   ing.SesionCajaID,
			Tipo:           model.MovimientoEgreso,
			Concepto:       rev.Concepto,
			Monto:          ing.Monto,
			MetodoPago:     ing.MetodoPago,
			ReferenciaTipo: rev.RefCancelacion,
			ReferenciaID:   &refID,
			UsuarioID:      rev.UsuarioID,
			Estado:         model.EstadoActivo,
			Observaciones:  &motivo,
			ReversaDeID:    &origen,
		}
		if err := r.caja.CreateMovimientoTx(tx, &egreso); err != nil {
			return nil, err
		}
		egresos = append(egresos, egreso)
		ids = append(ids, ing.ID)
	}
	if err := r.caja.CancelarMovimientosTx(tx, ids); err != nil {
		return nil, err
	}
	return egresos, nil
}

// revertirCargoTx reverses the CARGO a credit sale or service posted: a
// compensating PAGO lowers the balance by the same amount.
func (r reversor) revertirCargoTx(tx *gorm.DB, rev Reversion) (*model.MovimientoCuentaCorriente, error) {
	cargo, err := r.cuentas.FindCargoActivoTx(tx, rev.ReferenciaTipo, rev.ReferenciaID)
	if err != nil {
		return nil, fmt.Errorf("cargo de cuenta corriente de %s %s: %w", rev.ReferenciaTipo, rev.ReferenciaID, err)
	}
	cuenta, err := r.cuentas.FindByIDTx(tx, cargo.CuentaCorrienteID)
	if err != nil {
		return nil, err
	}

	nuevo := cuenta.Saldo.Sub(cargo.Monto)
	origen := cargo.ID
	refID := rev.ReferenciaID
	motivo := rev.Motivo
	pago := &model.MovimientoCuentaCorriente{
		CuentaCorrienteID: cuenta.ID,
		Tipo:              model.CuentaPago,
		Monto:             cargo.Monto,
		SaldoAnterior:     cuenta.Saldo,
		SaldoNuevo:        nuevo,
		Concepto:          rev.Concepto,
		ReferenciaTipo:    rev.RefCancelacion,
		ReferenciaID:      &refID,
		SesionCajaID:      cargo.SesionCajaID,
		UsuarioID:         rev.UsuarioID,
		Estado:            model.EstadoActivo,
		Observaciones:     &motivo,
		ReversaDeID:       &origen,
	}
	if err := r.cuentas.CreateMovimientoTx(tx, pago); err != nil {
		return nil, err
	}
	err = r.cuentas.CancelarMovimientoTx(tx, cargo.ID, repository.CancelacionMovimiento{
		CanceladoPor: rev.UsuarioID,
		Fecha:        rev.Fecha,
		Motivo:       &motivo,
		ReversionID:  pago.ID,
	})
	if err != nil {
		return nil, err
	}
	if err := r.cuentas.UpdateSaldoTx(tx, cuenta.ID, nuevo); err != nil {
		return nil, err
	}
	return pago, nil
}

// lineaConsumida is a product quantity a transaction took out of stock.
type lineaConsumida struct {
	ProductoID uuid.UUID
	Cantidad   decimal.Decimal
}

// restaurarStockTx posts one ENTRADA per consumed line.
func (r reversor) restaurarStockTx(tx *gorm.DB, lineas []lineaConsumida, rev Reversion) error {
	refID := rev.ReferenciaID
	for _, l := range lineas {
		_, err := r.stock.aplicarTx(tx, movimientoStock{
			ProductoID:     l.ProductoID,
			Delta:          l.Cantidad,
			Tipo:           model.StockEntrada,
			Motivo:         fmt.Sprintf("%s - %s", rev.Concepto, rev.Motivo),
			ReferenciaTipo: rev.RefCancelacion,
			ReferenciaID:   &refID,
			UsuarioID:      rev.UsuarioID,
			Politica:       PermitirNegativo,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
