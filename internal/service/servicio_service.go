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

const msgServicioSinCaja = "No hay una caja abierta en esta sucursal. Debe abrir la caja antes de realizar servicios"

type ServicioService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearServicioRequest) (*dto.ServicioResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ServicioResponse, error)
	Listar(ctx context.Context, filter dto.TransaccionFilter) (*dto.ListResponse[dto.ServicioResponse], error)
	Cancelar(ctx context.Context, usuarioID, id uuid.UUID, motivo *string) error
}

type servicioService struct {
	repo repository.ServicioRepository
	nucleo
}

func NewServicioService(repo repository.ServicioRepository, repos Repos, dispatcher *worker.Dispatcher) ServicioService {
	return &servicioService{repo: repo, nucleo: newNucleo(repos, dispatcher)}
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// Same shape as a sale. Differences: items may be pure labor, stock may not go
// negative, and a vehicle and employees can be attached.

func (s *servicioService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearServicioRequest) (*dto.ServicioResponse, error) {
	pedida, err := parseOptionalID(req.SucursalID, "sucursal_id")
	if err != nil {
		return nil, err
	}
	clienteID, err := parseOptionalID(req.ClienteID, "cliente_id")
	if err != nil {
		return nil, err
	}
	vehiculoID, err := parseOptionalID(req.VehiculoID, "vehiculo_id")
	if err != nil {
		return nil, err
	}
	empleadoIDs := make([]uuid.UUID, 0, len(req.Empleados))
	vistos := make(map[uuid.UUID]bool, len(req.Empleados))
	for _, raw := range req.Empleados {
		id, err := parseID(raw, "empleado_id")
		if err != nil {
			return nil, err
		}
		if !vistos[id] {
			vistos[id] = true
			empleadoIDs = append(empleadoIDs, id)
		}
	}
	if len(req.Items) == 0 {
		return nil, apierror.Validation("El servicio debe tener al menos un item")
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

	var servicio *model.Servicio
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.sesionAbiertaTx(tx, sucursalID, msgServicioSinCaja)
		if err != nil {
			return err
		}
		cliente, err := s.clienteTx(tx, clienteID, req.TipoPago)
		if err != nil {
			return err
		}
		if vehiculoID != nil {
			vehiculo, err := s.clientes.FindVehiculoTx(tx, *vehiculoID)
			if err != nil {
				return notFound(err, "Vehículo no encontrado")
			}
			if clienteID != nil && vehiculo.ClienteID != cliente.ID {
				return apierror.Validation("El vehículo no pertenece al cliente")
			}
		}
		empleados, err := s.clientes.FindEmpleadosTx(tx, empleadoIDs)
		if err != nil {
			return err
		}
		if len(empleados) != len(empleadoIDs) {
			return apierror.NotFound("Uno o más empleados no existen o están inactivos")
		}

		items, consumidas, subtotal, err := s.itemsTx(tx, sucursalID, req.Items)
		if err != nil {
			return err
		}
		totales, err := CalcularTotales(subtotal, ajuste)
		if err != nil {
			return err
		}
		plan, err := s.pagos.planificarTx(tx, sucursalID, totales.Total, req.CobroRequest)
		if err != nil {
			return err
		}
		numero, err := s.numeroTx(tx, "SERV", "SERV-%05d")
		if err != nil {
			return err
		}

		servicio = &model.Servicio{
			Numero:        numero,
			SucursalID:    sucursalID,
			ClienteID:     cliente.ID,
			VehiculoID:    vehiculoID,
			UsuarioID:     usuarioID,
			SesionCajaID:  sesion.ID,
			Importes:      importesDe(totales),
			Estado:        model.TransaccionCompletada,
			Observaciones: req.Observaciones,
			Items:         items,
			Empleados:     empleados,
		}
		plan.aplicar(&servicio.Importes)
		if err := s.repo.CreateTx(tx, servicio); err != nil {
			return err
		}

		motivo := "Servicio " + numero
		if err := s.consumirTx(tx, consumidas, BloquearNegativo, model.RefServicio, servicio.ID, motivo, usuarioID); err != nil {
			return err
		}
		_, err = s.pagos.registrarTx(tx, plan, Asiento{
			SesionCajaID:   sesion.ID,
			ReferenciaTipo: model.RefServicio,
			ReferenciaID:   servicio.ID,
			Etiqueta:       "Servicio",
			Numero:         numero,
			ClienteID:      cliente.ID,
			UsuarioID:      usuarioID,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.encolarComprobante(ctx, model.RefServicio, servicio.ID)

	log.Info().
		Str("servicio_id", servicio.ID.String()).
		Str("numero", servicio.Numero).
		Str("tipo_pago", servicio.TipoPago).
		Str("total", servicio.TotalCaja().StringFixed(2)).
		Msg("servicio registrado")

	return s.Obtener(ctx, servicio.ID)
}

// itemsTx prices every job line. An item without products is charged its
// flat total.
func (s *servicioService) itemsTx(tx *gorm.DB, sucursalID uuid.UUID, reqs []dto.ItemServicioRequest) ([]model.ServicioItem, []lineaConsumida, decimal.Decimal, error) {
	items := make([]model.ServicioItem, 0, len(reqs))
	var consumidas []lineaConsumida
	subtotal := decimal.Zero

	for _, r := range reqs {
		tipoID, err := parseOptionalID(r.TipoServicioID, "tipo_servicio_id")
		if err != nil {
			return nil, nil, decimal.Zero, err
		}
		item := model.ServicioItem{
			TipoServicioID: tipoID,
			Descripcion:    r.Descripcion,
			Observaciones:  r.Observaciones,
		}

		if len(r.Productos) == 0 {
			if r.Total.IsNegative() {
				return nil, nil, decimal.Zero, apierror.Validation(fmt.Sprintf("El total del item %s no puede ser negativo", r.Descripcion))
			}
			item.Subtotal = redondear(r.Total)
		} else {
			item.Subtotal = decimal.Zero
			for _, p := range r.Productos {
				prod, l, err := s.lineaProductoTx(tx, sucursalID, p.ProductoID, p.Cantidad, p.PrecioUnitario)
				if err != nil {
					return nil, nil, decimal.Zero, err
				}
				item.Productos = append(item.Productos, model.ServicioItemProducto{
					ProductoID:     prod.ID,
					UnidadMedida:   prod.UnidadMedida,
					Cantidad:       l.cantidad,
					PrecioUnitario: l.precio,
					Subtotal:       l.subtotal,
				})
				consumidas = append(consumidas, lineaConsumida{ProductoID: prod.ID, Cantidad: l.cantidad})
				item.Subtotal = item.Subtotal.Add(l.subtotal)
			}
		}

		subtotal = subtotal.Add(item.Subtotal)
		items = append(items, item)
	}
	return items, consumidas, subtotal, nil
}

// ── Obtener / Listar ──────────────────────────────────────────────────────────

func (s *servicioService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ServicioResponse, error) {
	servicio, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Servicio no encontrado")
	}
	pagos, err := s.caja.ListMovimientosPorReferencia(ctx, model.RefServicio, id)
	if err != nil {
		return nil, err
	}
	return servicioToResponse(servicio, pagos), nil
}

func (s *servicioService) Listar(ctx context.Context, filter dto.TransaccionFilter) (*dto.ListResponse[dto.ServicioResponse], error) {
	filter.Normalize()
	servicios, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ServicioResponse, 0, len(servicios))
	for i := range servicios {
		items = append(items, *servicioToResponse(&servicios[i], nil))
	}
	resp := dto.NewListResponse(items, filter.Paginacion, total)
	return &resp, nil
}

// ── Cancelar ──────────────────────────────────────────────────────────────────

func (s *servicioService) Cancelar(ctx context.Context, usuarioID, id uuid.UUID, motivo *string) error {
	razon := motivoOrDefault(motivo)
	var numero string

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		servicio, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFound(err, "Servicio no encontrado")
		}
		if servicio.Estado == model.TransaccionCancelada {
			return apierror.Conflict("El servicio ya está cancelado")
		}
		if err := s.reversor.exigirSesionAbiertaTx(tx, servicio.SesionCajaID,
			"No se puede cancelar un servicio de una sesión de caja cerrada"); err != nil {
			return err
		}
		numero = servicio.Numero

		rev := Reversion{
			ReferenciaTipo: model.RefServicio,
			ReferenciaID:   servicio.ID,
			RefCancelacion: model.RefServicioCancelado,
			Concepto:       fmt.Sprintf("Cancelación Servicio %s", servicio.Numero),
			Motivo:         razon,
			UsuarioID:      usuarioID,
			Fecha:          time.Now(),
		}

		var lineas []lineaConsumida
		for _, it := range servicio.Items {
			for _, p := range it.Productos {
				lineas = append(lineas, lineaConsumida{ProductoID: p.ProductoID, Cantidad: p.Cantidad})
			}
		}
		if err := s.reversor.restaurarStockTx(tx, lineas, rev); err != nil {
			return err
		}

		err = s.repo.CancelarTx(tx, servicio.ID, repository.Cancelacion{
			CanceladoPor:  usuarioID,
			Fecha:         rev.Fecha,
			Observaciones: appendObservacion(servicio.Observaciones, "\n[CANCELADO] "+razon),
		})
		if err != nil {
			return err
		}
		return s.revertirPagoTx(tx, servicio.TipoPago, rev)
	})
	if txErr != nil {
		return txErr
	}

	log.Info().
		Str("servicio_id", id.String()).
		Str("numero", numero).
		Str("motivo", razon).
		Msg("servicio cancelado")
	return nil
}
