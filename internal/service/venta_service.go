package service

import (
	"context"
	"fmt"
	"time"

	"lubripos/internal/apierror"
	"lubripos/internal/dto"
	"lubripos/internal/model"
	"lubripos/internal/repository"
	"lubripos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const msgVentaSinCaja = "No hay una caja abierta en esta sucursal. Debe abrir la caja antes de realizar ventas"

type VentaService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearVentaRequest) (*dto.VentaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	Listar(ctx context.Context, filter dto.TransaccionFilter) (*dto.ListResponse[dto.VentaResponse], error)
	Cancelar(ctx context.Context, usuarioID, id uuid.UUID, motivo *string) error
}

type ventaService struct {
	repo repository.VentaRepository
	nucleo
}

func NewVentaService(repo repository.VentaRepository, repos Repos, dispatcher *worker.Dispatcher) VentaService {
	return &ventaService{repo: repo, nucleo: newNucleo(repos, dispatcher)}
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// One ACID transaction:
//   1. Lock the branch's open session
//   2. Resolve the customer (walk-in by default)
//   3. Validate and price each line
//   4. Apply the price adjustment, resolve card interest
//   5. Number, insert header + lines, post SALIDA stock movements
//   6. Post the payment (cash rows or account CARGO)
//   7. COMMIT, then enqueue the receipt

func (s *ventaService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearVentaRequest) (*dto.VentaResponse, error) {
	pedida, err := parseOptionalID(req.SucursalID, "sucursal_id")
	if err != nil {
		return nil, err
	}
	clienteID, err := parseOptionalID(req.ClienteID, "cliente_id")
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, apierror.Validation("La venta debe tener al menos un producto")
	}
	if err := validarCobro(req.CobroRequest); err != nil {
		return nil, err
	}
	ajuste, err := ajusteDesdeCobro(req.CobroRequest)
	if err != nil {
		return nil, err
	}
	sucursalID, err := s.sucursales.resolver(ctx, usuarioID, pedida)
	if err != nil {
		return nil, err
	}

	var venta *model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.sesionAbiertaTx(tx, sucursalID, msgVentaSinCaja)
		if err != nil {
			return err
		}
		cliente, err := s.clienteTx(tx, clienteID, req.TipoPago)
		if err != nil {
			return err
		}

		detalles := make([]model.DetalleVenta, 0, len(req.Items))
		consumidas := make([]lineaConsumida, 0, len(req.Items))
		subtotal := decimal.Zero
		for _, item := range req.Items {
			prod, l, err := s.lineaProductoTx(tx, sucursalID, item.ProductoID, item.Cantidad, item.PrecioUnitario)
			if err != nil {
				return err
			}
			detalles = append(detalles, model.DetalleVenta{
				ProductoID:     prod.ID,
				UnidadMedida:   prod.UnidadMedida,
				Cantidad:       l.cantidad,
				PrecioUnitario: l.precio,
				Subtotal:       l.subtotal,
			})
			consumidas = append(consumidas, lineaConsumida{ProductoID: prod.ID, Cantidad: l.cantidad})
			subtotal = subtotal.Add(l.subtotal)
		}

		totales, err := CalcularTotales(subtotal, ajuste)
		if err != nil {
			return err
		}
		plan, err := s.pagos.planificarTx(tx, sucursalID, totales.Total, req.CobroRequest)
		if err != nil {
			return err
		}

		dia := time.Now().Format("20060102")
		numero, err := s.numeroTx(tx, "V-"+dia, "V-"+dia+"-%03d")
		if err != nil {
			return err
		}

		venta = &model.Venta{
			Numero:        numero,
			SucursalID:    sucursalID,
			ClienteID:     cliente.ID,
			UsuarioID:     usuarioID,
			SesionCajaID:  sesion.ID,
			Importes:      importesDe(totales),
			Estado:        model.TransaccionCompletada,
			Observaciones: req.Observaciones,
			Detalles:      detalles,
		}
		plan.aplicar(&venta.Importes)
		if err := s.repo.CreateTx(tx, venta); err != nil {
			return err
		}

		motivo := "Venta " + numero
		if err := s.consumirTx(tx, consumidas, PermitirNegativo, model.RefVenta, venta.ID, motivo, usuarioID); err != nil {
			return err
		}
		_, err = s.pagos.registrarTx(tx, plan, Asiento{
			SesionCajaID:   sesion.ID,
			ReferenciaTipo: model.RefVenta,
			ReferenciaID:   venta.ID,
			Etiqueta:       "Venta",
			Numero:         numero,
			ClienteID:      cliente.ID,
			UsuarioID:      usuarioID,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.encolarComprobante(ctx, model.RefVenta, venta.ID)

	log.Info().
		Str("venta_id", venta.ID.String()).
		Str("numero", venta.Numero).
		Str("tipo_pago", venta.TipoPago).
		Str("total", venta.TotalCaja().StringFixed(2)).
		Msg("venta registrada")

	return s.Obtener(ctx, venta.ID)
}

// ── Obtener / Listar ──────────────────────────────────────────────────────────

func (s *ventaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Venta no encontrada")
	}
	pagos, err := s.caja.ListMovimientosPorReferencia(ctx, model.RefVenta, id)
	if err != nil {
		return nil, err
	}
	return ventaToResponse(venta, pagos), nil
}

func (s *ventaService) Listar(ctx context.Context, filter dto.TransaccionFilter) (*dto.ListResponse[dto.VentaResponse], error) {
	filter.Normalize()
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		items = append(items, *ventaToResponse(&ventas[i], nil))
	}
	resp := dto.NewListResponse(items, filter.Paginacion, total)
	return &resp, nil
}

// ── Cancelar ──────────────────────────────────────────────────────────────────
// Restores stock, marks the header and reverses the money in one transaction.
// Only allowed while the sale's session is still ABIERTA.

func (s *ventaService) Cancelar(ctx context.Context, usuarioID, id uuid.UUID, motivo *string) error {
	razon := motivoOrDefault(motivo)
	var numero string

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		venta, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFound(err, "Venta no encontrada")
		}
		if venta.Estado == model.TransaccionCancelada {
			return apierror.Conflict("La venta ya está cancelada")
		}
		if err := s.reversor.exigirSesionAbiertaTx(tx, venta.SesionCajaID,
			"No se puede cancelar una venta de una sesión de caja cerrada"); err != nil {
			return err
		}
		numero = venta.Numero

		rev := Reversion{
			ReferenciaTipo: model.RefVenta,
			ReferenciaID:   venta.ID,
			RefCancelacion: model.RefVentaCancelada,
			Concepto:       fmt.Sprintf("Cancelación Venta %s", venta.Numero),
			Motivo:         razon,
			UsuarioID:      usuarioID,
			Fecha:          time.Now(),
		}

		lineas := make([]lineaConsumida, 0, len(venta.Detalles))
		for _, d := range venta.Detalles {
			lineas = append(lineas, lineaConsumida{ProductoID: d.ProductoID, Cantidad: d.Cantidad})
		}
		if err := s.reversor.restaurarStockTx(tx, lineas, rev); err != nil {
			return err
		}

		err = s.repo.CancelarTx(tx, venta.ID, repository.Cancelacion{
			CanceladoPor:  usuarioID,
			Fecha:         rev.Fecha,
			Observaciones: appendObservacion(venta.Observaciones, " | Cancelada: "+razon),
		})
		if err != nil {
			return err
		}
		return s.revertirPagoTx(tx, venta.TipoPago, rev)
	})
	if txErr != nil {
		return txErr
	}

	log.Info().
		Str("venta_id", id.String()).
		Str("numero", numero).
		Str("motivo", razon).
		Msg("venta cancelada")
	return nil
}
