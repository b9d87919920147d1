package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lubripos/internal/apierror"
	"lubripos/internal/dto"
	"lubripos/internal/model"
	"lubripos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const msgCajaYaAbierta = "Ya existe una caja abierta en esta sucursal"

type CajaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	// GetActiva returns nil, nil when the branch has no open session.
	GetActiva(ctx context.Context, usuarioID uuid.UUID, sucursalID *uuid.UUID) (*dto.SesionCajaResponse, error)
	Cerrar(ctx context.Context, usuarioID, sesionID uuid.UUID, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error)
	Historial(ctx context.Context, filter dto.HistorialCajaFilter) (*dto.ListResponse[dto.SesionCajaResponse], error)

	RegistrarMovimiento(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.MovimientoCajaResponse, error)
	ListarMovimientos(ctx context.Context, sesionID uuid.UUID, filter dto.MovimientoCajaFilter) (*dto.ListResponse[dto.MovimientoCajaResponse], error)
	Detalle(ctx context.Context, sesionID uuid.UUID) (*dto.DetalleSesionResponse, error)
	DetalleIngresos(ctx context.Context, sesionID uuid.UUID) (*dto.DetalleIngresosResponse, error)
}

type cajaService struct {
	repo       repository.CajaRepository
	sucursales sucursalResolver
}

func NewCajaService(repo repository.CajaRepository, usuarios repository.UsuarioRepository) CajaService {
	return &cajaService{repo: repo, sucursales: sucursalResolver{usuarios: usuarios}}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// The in-transaction check answers the common case; the partial unique index
// uq_sesiones_caja_abierta rejects the loser of a concurrent race.

func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	if req.MontoInicial.IsNegative() {
		return nil, apierror.Validation("El monto inicial no puede ser negativo")
	}
	sucursalID, err := parseID(req.SucursalID, "sucursalId")
	if err != nil {
		return nil, err
	}
	if _, err := s.sucursales.resolver(ctx, usuarioID, &sucursalID); err != nil {
		return nil, err
	}

	sesion := &model.SesionCaja{
		SucursalID:            sucursalID,
		UsuarioAperturaID:     usuarioID,
		MontoInicial:          redondear(req.MontoInicial),
		ObservacionesApertura: req.Observaciones,
		TotalIngresos:         decimal.Zero,
		TotalEgresos:          decimal.Zero,
		Diferencia:            decimal.Zero,
		Estado:                model.CajaAbierta,
		FechaApertura:         time.Now(),
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		_, err := s.repo.FindSesionAbiertaTx(tx, sucursalID)
		if err == nil {
			return apierror.Conflict(msgCajaYaAbierta)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return s.repo.CreateSesionTx(tx, sesion)
	})
	if errors.Is(txErr, gorm.ErrDuplicatedKey) {
		return nil, apierror.Conflict(msgCajaYaAbierta)
	}
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("sesion_id", sesion.ID.String()).
		Str("sucursal_id", sucursalID.String()).
		Str("monto_inicial", sesion.MontoInicial.StringFixed(2)).
		Msg("caja abierta")

	return s.obtener(ctx, sesion.ID)
}

// ── GetActiva ─────────────────────────────────────────────────────────────────

func (s *cajaService) GetActiva(ctx context.Context, usuarioID uuid.UUID, sucursalID *uuid.UUID) (*dto.SesionCajaResponse, error) {
	id, err := s.sucursales.resolver(ctx, usuarioID, sucursalID)
	if err != nil {
		return nil, err
	}
	sesion, err := s.repo.FindSesionAbierta(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sesionToResponse(sesion), nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Terminal: a CERRADA session never reopens.

func (s *cajaService) Cerrar(ctx context.Context, usuarioID, sesionID uuid.UUID, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error) {
	if req.MontoFinal.IsNegative() {
		return nil, apierror.Validation("El monto final no puede ser negativo")
	}

	var sesion *model.SesionCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		sesion, err = s.repo.FindSesionByIDTx(tx, sesionID)
		if err != nil || sesion.Estado != model.CajaAbierta {
			return notFound(orNotFound(err), "No se encontró una caja abierta con ese ID")
		}

		totales, err := s.repo.TotalesTx(tx, sesionID)
		if err != nil {
			return err
		}
		desglose, err := json.Marshal(desgloseDe(totales))
		if err != nil {
			return err
		}

		final := redondear(req.MontoFinal)
		esperado := sesion.MontoInicial.Add(totales.Ingresos).Sub(totales.Egresos)
		ahora := time.Now()
		desgloseStr := string(desglose)

		sesion.UsuarioCierreID = &usuarioID
		sesion.MontoFinal = &final
		sesion.MontoSistema = &esperado
		sesion.TotalIngresos = totales.Ingresos
		sesion.TotalEgresos = totales.Egresos
		sesion.Diferencia = final.Sub(esperado)
		sesion.DesgloseIngresos = &desgloseStr
		sesion.ObservacionesCierre = req.Observaciones
		sesion.Estado = model.CajaCerrada
		sesion.FechaCierre = &ahora
		return s.repo.UpdateSesionTx(tx, sesion)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("sesion_id", sesionID.String()).
		Str("monto_sistema", sesion.MontoSistema.StringFixed(2)).
		Str("diferencia", sesion.Diferencia.StringFixed(2)).
		Msg("caja cerrada")

	return s.obtener(ctx, sesionID)
}

// ── Historial ─────────────────────────────────────────────────────────────────

func (s *cajaService) Historial(ctx context.Context, filter dto.HistorialCajaFilter) (*dto.ListResponse[dto.SesionCajaResponse], error) {
	filter.Normalize()
	sesiones, total, err := s.repo.ListSesiones(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SesionCajaResponse, 0, len(sesiones))
	for i := range sesiones {
		items = append(items, *sesionToResponse(&sesiones[i]))
	}
	resp := dto.NewListResponse(items, filter.Paginacion, total)
	return &resp, nil
}

// ── Movimientos manuales ──────────────────────────────────────────────────────

func (s *cajaService) RegistrarMovimiento(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.MovimientoCajaResponse, error) {
	sesionID, err := parseID(req.SesionCajaID, "sesion_caja_id")
	if err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, apierror.Validation("El monto debe ser mayor a cero")
	}
	if req.Tipo != model.MovimientoIngreso && req.Tipo != model.MovimientoEgreso {
		return nil, apierror.Validation("El tipo debe ser INGRESO o EGRESO")
	}

	mov := &model.MovimientoCaja{
		SesionCajaID:   sesionID,
		Tipo:           req.Tipo,
		Concepto:       req.Concepto,
		Monto:          redondear(req.Monto),
		MetodoPago:     req.MetodoPago,
		ReferenciaTipo: model.RefManual,
		UsuarioID:      usuarioID,
		Estado:         model.EstadoActivo,
		Observaciones:  req.Observaciones,
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.repo.FindSesionByIDTx(tx, sesionID)
		if err != nil {
			return notFound(err, "Sesión de caja no encontrada")
		}
		if sesion.Estado != model.CajaAbierta {
			return apierror.CajaCerrada("La sesión de caja no está abierta")
		}
		return s.repo.CreateMovimientoTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("sesion_id", sesionID.String()).
		Str("tipo", mov.Tipo).
		Str("monto", mov.Monto.StringFixed(2)).
		Msg("movimiento manual de caja registrado")

	resp := movimientoCajaToResponse(mov)
	return &resp, nil
}

func (s *cajaService) ListarMovimientos(ctx context.Context, sesionID uuid.UUID, filter dto.MovimientoCajaFilter) (*dto.ListResponse[dto.MovimientoCajaResponse], error) {
	if _, err := s.repo.FindSesionByID(ctx, sesionID); err != nil {
		return nil, notFound(err, "Sesión de caja no encontrada")
	}
	filter.Normalize()
	movs, total, err := s.repo.ListMovimientos(ctx, sesionID, filter)
	if err != nil {
		return nil, err
	}
	resp := dto.NewListResponse(movimientosCajaToResponse(movs), filter.Paginacion, total)
	return &resp, nil
}

// ── Detalle ───────────────────────────────────────────────────────────────────

func (s *cajaService) Detalle(ctx context.Context, sesionID uuid.UUID) (*dto.DetalleSesionResponse, error) {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, notFound(err, "Sesión de caja no encontrada")
	}
	totales, err := s.repo.Totales(ctx, sesionID)
	if err != nil {
		return nil, err
	}

	resumen := dto.ResumenCajaResponse{
		MontoInicial:  sesion.MontoInicial,
		TotalIngresos: totales.Ingresos,
		TotalEgresos:  totales.Egresos,
		MontoEsperado: sesion.MontoInicial.Add(totales.Ingresos).Sub(totales.Egresos),
		PorMetodo:     make([]dto.ResumenMetodoResponse, 0, len(totales.PorMetodo)),
	}
	for _, m := range totales.PorMetodo {
		resumen.PorMetodo = append(resumen.PorMetodo, resumenMetodo(m, totales.Ingresos))
	}
	return &dto.DetalleSesionResponse{Sesion: *sesionToResponse(sesion), Resumen: resumen}, nil
}

func (s *cajaService) DetalleIngresos(ctx context.Context, sesionID uuid.UUID) (*dto.DetalleIngresosResponse, error) {
	if _, err := s.repo.FindSesionByID(ctx, sesionID); err != nil {
		return nil, notFound(err, "Sesión de caja no encontrada")
	}
	totales, err := s.repo.Totales(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	movs, err := s.repo.ListIngresosActivos(ctx, sesionID)
	if err != nil {
		return nil, err
	}

	porMetodo := make(map[string][]dto.MovimientoCajaResponse)
	for i := range movs {
		porMetodo[movs[i].MetodoPago] = append(porMetodo[movs[i].MetodoPago], movimientoCajaToResponse(&movs[i]))
	}

	resp := &dto.DetalleIngresosResponse{
		SesionCajaID:  sesionID.String(),
		TotalIngresos: totales.Ingresos,
		Metodos:       make([]dto.IngresosMetodoResponse, 0, len(totales.PorMetodo)),
	}
	for _, m := range totales.PorMetodo {
		resp.Metodos = append(resp.Metodos, dto.IngresosMetodoResponse{
			ResumenMetodoResponse: resumenMetodo(m, totales.Ingresos),
			Movimientos:           porMetodo[m.MetodoPago],
		})
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *cajaService) obtener(ctx context.Context, id uuid.UUID) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repo.FindSesionByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Sesión de caja no encontrada")
	}
	return sesionToResponse(sesion), nil
}

func desgloseDe(t *repository.TotalesSesion) map[string]dto.DesgloseMetodo {
	desglose := make(map[string]dto.DesgloseMetodo, len(t.PorMetodo))
	for _, m := range t.PorMetodo {
		desglose[m.MetodoPago] = dto.DesgloseMetodo{Total: m.Total, Cantidad: m.Cantidad}
	}
	return desglose
}

func resumenMetodo(m repository.TotalMetodo, ingresos decimal.Decimal) dto.ResumenMetodoResponse {
	return dto.ResumenMetodoResponse{
		MetodoPago: m.MetodoPago,
		Total:      m.Total,
		Cantidad:   m.Cantidad,
		Porcentaje: porcentaje(m.Total, ingresos),
	}
}

// orNotFound turns a nil error into gorm.ErrRecordNotFound, for lookups that
// succeed but return a row in the wrong state.
func orNotFound(err error) error {
	if err == nil {
		return gorm.ErrRecordNotFound
	}
	return err
}
