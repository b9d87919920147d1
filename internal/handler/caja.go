package handler

import (
	"net/http"

	"lubripos/internal/apierror"
	"lubripos/internal/dto"
	"lubripos/internal/middleware"
	"lubripos/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Abrir godoc
// @Summary Abre una sesión de caja en la sucursal
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Datos de apertura"
// @Success 201 {object} dto.SesionCajaResponse
// @Failure 400 {object} apierror.Response
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), middleware.GetUsuarioID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, resp, "Caja abierta exitosamente")
}

// Cerrar godoc
// @Summary Cierra la sesión y calcula la diferencia contra el monto declarado
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesión"
// @Param body body dto.CerrarCajaRequest true "Monto contado"
// @Success 200 {object} dto.SesionCajaResponse
// @Failure 404 {object} apierror.Response
// @Router /v1/caja/{id}/cerrar [patch]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), middleware.GetUsuarioID(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, resp, "Caja cerrada exitosamente")
}

// GetActiva returns the open session of ?sucursal_id (or the user's main branch).
func (h *CajaHandler) GetActiva(c *gin.Context) {
	sucursalID, ok := queryID(c, "sucursal_id")
	if !ok {
		return
	}
	resp, err := h.svc.GetActiva(c.Request.Context(), middleware.GetUsuarioID(c), sucursalID)
	if err != nil {
		fail(c, err)
		return
	}
	if resp == nil {
		fail(c, apierror.NotFound("No hay una caja abierta en esta sucursal"))
		return
	}
	okStatus(c, resp)
}

func (h *CajaHandler) Historial(c *gin.Context) {
	var filter dto.HistorialCajaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	okStatus(c, resp)
}

func (h *CajaHandler) Detalle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Detalle(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	okStatus(c, resp)
}

func (h *CajaHandler) DetalleIngresos(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.DetalleIngresos(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	okStatus(c, resp)
}

func (h *CajaHandler) ListarMovimientos(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var filter dto.MovimientoCajaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), id, filter)
	if err != nil {
		fail(c, err)
		return
	}
	okStatus(c, resp)
}

// RegistrarMovimiento godoc
// @Summary Registra un ingreso o egreso manual en caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimientoManualRequest true "Movimiento manual"
// @Success 201 {object} dto.MovimientoCajaResponse
// @Failure 400 {object} apierror.Response
// @Router /v1/caja/movimientos [post]
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMovimiento(c.Request.Context(), middleware.GetUsuarioID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, resp, "Movimiento registrado")
}
