package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lubripos/internal/apierror"
	"lubripos/internal/dto"
	"lubripos/internal/model"
	"lubripos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CuentaCorrienteService interface {
	// ObtenerSaldo returns the customer's account, creating it on first use.
	ObtenerSaldo(ctx context.Context, clienteID uuid.UUID) (*dto.CuentaCorrienteResponse, error)
	Configurar(ctx context.Context, clienteID uuid.UUID, req dto.ConfigurarCuentaRequest) (*dto.CuentaCorrienteResponse, error)
	ListarCuentas(ctx context.Context, filter dto.CuentaFilter) (*dto.ListResponse[dto.CuentaCorrienteResponse], error)
	ListarMovimientos(ctx context.Context, clienteID uuid.UUID, p dto.Paginacion) (*dto.ListResponse[dto.MovimientoCuentaResponse], error)

	RegistrarPago(ctx context.Context, usuarioID, clienteID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.PagoCuentaResponse, error)
	CancelarPago(ctx context.Context, usuarioID, movimientoID uuid.UUID, motivo *string) error
}

type cuentaCorrienteService struct {
	repo     repository.CuentaCorrienteRepository
	caja     repository.CajaRepository
	clientes repository.ClienteRepository
	reversor reversor
}

func NewCuentaCorrienteService(
	repo repository.CuentaCorrienteRepository,
	caja repository.CajaRepository,
	clientes repository.ClienteRepository,
) CuentaCorrienteService {
	return &cuentaCorrienteService{
		repo:     repo,
		caja:     caja,
		clientes: clientes,
		reversor: reversor{caja: caja, cuentas: repo},
	}
}

// ── Cuenta ────────────────────────────────────────────────────────────────────

func (s *cuentaCorrienteService) ObtenerSaldo(ctx context.Context, clienteID uuid.UUID) (*dto.CuentaCorrienteResponse, error) {
	if err := s.exigirCliente(ctx, clienteID); err != nil {
		return nil, err
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		_, err := s.repo.FindOrCreateTx(tx, clienteID)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.obtener(ctx, clienteID)
}

// Configurar changes the credit limit and/or the active flag. An account with
// pending balance cannot be deactivated.
func (s *cuentaCorrienteService) Configurar(ctx context.Context, clienteID uuid.UUID, req dto.ConfigurarCuentaRequest) (*dto.CuentaCorrienteResponse, error) {
	if req.LimiteCredito != nil && req.LimiteCredito.IsNegative() {
		return nil, apierror.Validation("El límite de crédito no puede ser negativo")
	}
	if err := s.exigirCliente(ctx, clienteID); err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		cuenta, err := s.repo.FindOrCreateTx(tx, clienteID)
		if err != nil {
			return err
		}
		limite := cuenta.LimiteCredito
		if req.LimiteCredito != nil {
			limite = redondear(*req.LimiteCredito)
		}
		activo := cuenta.Activo
		if req.Activo != nil {
			activo = *req.Activo
		}
		if !activo && cuenta.Saldo.IsPositive() {
			return apierror.Validation(fmt.Sprintf(
				"No se puede desactivar una cuenta con saldo pendiente (%s)", cuenta.Saldo.StringFixed(2)))
		}
		return s.repo.UpdateConfigTx(tx, cuenta.ID, limite, activo)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("cliente_id", clienteID.String()).Msg("cuenta corriente configurada")
	return s.obtener(ctx, clienteID)
}

func (s *cuentaCorrienteService) ListarCuentas(ctx context.Context, filter dto.CuentaFilter) (*dto.ListResponse[dto.CuentaCorrienteResponse], error) {
	filter.Normalize()
	cuentas, total, err := s.repo.ListCuentas(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CuentaCorrienteResponse, 0, len(cuentas))
	for i := range cuentas {
		items = append(items, *cuentaToResponse(&cuentas[i]))
	}
	resp := dto.NewListResponse(items, filter.Paginacion, total)
	return &resp, nil
}

// ListarMovimientos answers an empty page for customers that never used
// their account.
func (s *cuentaCorrienteService) ListarMovimientos(ctx context.Context, clienteID uuid.UUID, p dto.Paginacion) (*dto.ListResponse[dto.MovimientoCuentaResponse], error) {
	p.Normalize()
	if err := s.exigirCliente(ctx, clienteID); err != nil {
		return nil, err
	}
	cuenta, err := s.repo.FindByClienteID(ctx, clienteID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		resp := dto.NewListResponse([]dto.MovimientoCuentaResponse{}, p, 0)
		return &resp, nil
	}
	if err != nil {
		return nil, err
	}

	movs, total, err := s.repo.ListMovimientos(ctx, cuenta.ID, p)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovimientoCuentaResponse, 0, len(movs))
	for i := range movs {
		items = append(items, movimientoCuentaToResponse(&movs[i]))
	}
	resp := dto.NewListResponse(items, p, total)
	return &resp, nil
}

// ── Pagos ─────────────────────────────────────────────────────────────────────
// A payment lowers the balance and is money entering the till: one PAGO on the
// account and one INGRESO on the session, referencing the PAGO.

func (s *cuentaCorrienteService) RegistrarPago(ctx context.Context, usuarioID, clienteID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.PagoCuentaResponse, error) {
	if !req.Monto.IsPositive() {
		return nil, apierror.Validation("El monto debe ser mayor a cero")
	}
	switch req.MetodoPago {
	case model.PagoEfectivo, model.PagoTarjetaCredito, model.PagoTransferencia:
	default:
		return nil, apierror.Validation(fmt.Sprintf("Método de pago inválido: %s", req.MetodoPago))
	}
	sesionID, err := parseID(req.SesionCajaID, "sesion_caja_id")
	if err != nil {
		return nil, err
	}
	cliente, err := s.clientes.FindByID(ctx, clienteID)
	if err != nil {
		return nil, notFound(err, "Cliente no encontrado")
	}

	monto := redondear(req.Monto)
	var (
		pago    *model.MovimientoCuentaCorriente
		ingreso *model.MovimientoCaja
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.caja.FindSesionByIDTx(tx, sesionID)
		if err != nil {
			return notFound(err, "Sesión de caja no encontrada")
		}
		if sesion.Estado != model.CajaAbierta {
			return apierror.CajaCerrada("La sesión de caja no está abierta")
		}

		cuenta, err := s.repo.FindOrCreateTx(tx, clienteID)
		if err != nil {
			return err
		}
		if monto.GreaterThan(cuenta.Saldo) {
			return apierror.Validation(fmt.Sprintf(
				"El monto (%s) supera el saldo pendiente (%s)", monto.StringFixed(2), cuenta.Saldo.StringFixed(2)))
		}

		nuevo := cuenta.Saldo.Sub(monto)
		metodo := req.MetodoPago
		pago = &model.MovimientoCuentaCorriente{
			CuentaCorrienteID: cuenta.ID,
			Tipo:              model.CuentaPago,
			Monto:             monto,
			SaldoAnterior:     cuenta.Saldo,
			SaldoNuevo:        nuevo,
			Concepto:          "Pago de cuenta corriente",
			ReferenciaTipo:    model.RefPagoCuentaCorriente,
			MetodoPago:        &metodo,
			SesionCajaID:      &sesion.ID,
			UsuarioID:         usuarioID,
			Estado:            model.EstadoActivo,
			Observaciones:     req.Observaciones,
		}
		if err := s.repo.CreateMovimientoTx(tx, pago); err != nil {
			return err
		}
		if err := s.repo.UpdateSaldoTx(tx, cuenta.ID, nuevo); err != nil {
			return err
		}

		ingreso = &model.MovimientoCaja{
			SesionCajaID:   sesion.ID,
			Tipo:           model.MovimientoIngreso,
			Concepto:       fmt.Sprintf("Pago cuenta corriente - %s", cliente.Nombre),
			Monto:          monto,
			MetodoPago:     metodo,
			ReferenciaTipo: model.RefPagoCuentaCorriente,
			ReferenciaID:   &pago.ID,
			UsuarioID:      usuarioID,
			Estado:         model.EstadoActivo,
			Observaciones:  req.Observaciones,
		}
		return s.caja.CreateMovimientoTx(tx, ingreso)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("cliente_id", clienteID.String()).
		Str("movimiento_id", pago.ID.String()).
		Str("monto", monto.StringFixed(2)).
		Str("saldo", pago.SaldoNuevo.StringFixed(2)).
		Msg("pago de cuenta corriente registrado")

	return &dto.PagoCuentaResponse{
		Movimiento:     movimientoCuentaToResponse(pago),
		MovimientoCaja: movimientoCajaToResponse(ingreso),
		Saldo:          pago.SaldoNuevo,
	}, nil
}

// CancelarPago reverses a payment: a compensating CARGO raises the balance
// back and the till money it brought in leaves through an EGRESO.
func (s *cuentaCorrienteService) CancelarPago(ctx context.Context, usuarioID, movimientoID uuid.UUID, motivo *string) error {
	razon := motivoOrDefault(motivo)

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		pago, err := s.repo.FindMovimientoByIDTx(tx, movimientoID)
		if err != nil {
			return notFound(err, "Movimiento no encontrado")
		}
		if pago.Tipo != model.CuentaPago {
			return apierror.Validation("Solo se pueden cancelar pagos")
		}
		if pago.ReversaDeID != nil {
			return apierror.Validation("No se puede cancelar un movimiento de reversión")
		}
		if pago.Estado == model.EstadoCancelado {
			return apierror.Conflict("El pago ya está cancelado")
		}
		const msgCerrada = "No se puede cancelar un pago de una sesión de caja cerrada"
		if pago.SesionCajaID == nil {
			return apierror.SesionNoAbierta(msgCerrada)
		}
		if err := s.reversor.exigirSesionAbiertaTx(tx, *pago.SesionCajaID, msgCerrada); err != nil {
			return err
		}

		cuenta, err := s.repo.FindByIDTx(tx, pago.CuentaCorrienteID)
		if err != nil {
			return err
		}
		nuevo := cuenta.Saldo.Add(pago.Monto)
		origen := pago.ID
		cargo := &model.MovimientoCuentaCorriente{
			CuentaCorrienteID: cuenta.ID,
			Tipo:              model.CuentaCargo,
			Monto:             pago.Monto,
			SaldoAnterior:     cuenta.Saldo,
			SaldoNuevo:        nuevo,
			Concepto:          "Cancelación de pago de cuenta corriente",
			ReferenciaTipo:    model.RefCancelacionPagoCuenta,
			ReferenciaID:      &origen,
			MetodoPago:        pago.MetodoPago,
			SesionCajaID:      pago.SesionCajaID,
			UsuarioID:         usuarioID,
			Estado:            model.EstadoActivo,
			Observaciones:     &razon,
			ReversaDeID:       &origen,
		}
		if err := s.repo.CreateMovimientoTx(tx, cargo); err != nil {
			return err
		}

		ahora := time.Now()
		err = s.repo.CancelarMovimientoTx(tx, pago.ID, repository.CancelacionMovimiento{
			CanceladoPor: usuarioID,
			Fecha:        ahora,
			Motivo:       &razon,
			ReversionID:  cargo.ID,
		})
		if err != nil {
			return err
		}
		if err := s.repo.UpdateSaldoTx(tx, cuenta.ID, nuevo); err != nil {
			return err
		}

		_, err = s.reversor.revertirIngresosTx(tx, Reversion{
			ReferenciaTipo: model.RefPagoCuentaCorriente,
			ReferenciaID:   pago.ID,
			RefCancelacion: model.RefCancelacionPagoCuenta,
			Concepto:       "Cancelación de pago de cuenta corriente",
			Motivo:         razon,
			UsuarioID:      usuarioID,
			Fecha:          ahora,
		})
		return err
	})
	if txErr != nil {
		return txErr
	}

	log.Info().
		Str("movimiento_id", movimientoID.String()).
		Str("motivo", razon).
		Msg("pago de cuenta corriente cancelado")
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *cuentaCorrienteService) exigirCliente(ctx context.Context, clienteID uuid.UUID) error {
	_, err := s.clientes.FindByID(ctx, clienteID)
	return notFound(err, "Cliente no encontrado")
}

func (s *cuentaCorrienteService) obtener(ctx context.Context, clienteID uuid.UUID) (*dto.CuentaCorrienteResponse, error) {
	cuenta, err := s.repo.FindByClienteID(ctx, clienteID)
	if err != nil {
		return nil, notFound(err, "Cuenta corriente no encontrada")
	}
	return cuentaToResponse(cuenta), nil
}
