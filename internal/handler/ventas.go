package handler

import (
	"net/http"

	"lubripos/internal/dto"
	"lubripos/internal/middleware"
	"lubripos/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// Crear godoc
// @Summary      Registrar una nueva venta
// @Description  Crea la venta en una transacción: valida la caja abierta, descuenta stock y registra el cobro.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearVentaRequest true "Detalle de la venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      400  {object} apierror.Response
// @Router       /v1/ventas [post]
func (h *VentasHandler) Crear(c *gin.Context) {
	var req dto.CrearVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.GetUsuarioID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, resp, "Venta registrada exitosamente")
}

func (h *VentasHandler) Listar(c *gin.Context) {
	var filter dto.TransaccionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	okStatus(c, resp)
}

func (h *VentasHandler) Obtener(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	okStatus(c, resp)
}

// Cancelar godoc
// @Summary      Cancelar venta
// @Description  Restaura stock y revierte el cobro. Solo mientras la sesión de caja siga abierta.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string               true "UUID de la venta"
// @Param        body body     dto.CancelarRequest  false "Motivo"
// @Success      200
// @Failure      400  {object} apierror.Response
// @Router       /v1/ventas/{id}/cancelar [patch]
func (h *VentasHandler) Cancelar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelarRequest
	if !bindOptional(c, &req) {
		return
	}
	if err := h.svc.Cancelar(c.Request.Context(), middleware.GetUsuarioID(c), id, req.Motivo); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Venta cancelada exitosamente")
}

// ── Servicios ─────────────────────────────────────────────────────────────────

type ServiciosHandler struct{ svc service.ServicioService }

func NewServiciosHandler(svc service.ServicioService) *ServiciosHandler {
	return &ServiciosHandler{svc: svc}
}

func (h *ServiciosHandler) Crear(c *gin.Context) {
	var req dto.CrearServicioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.GetUsuarioID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, resp, "Servicio registrado exitosamente")
}

func (h *ServiciosHandler) Listar(c *gin.Context) {
	var filter dto.TransaccionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	okStatus(c, resp)
}

func (h *ServiciosHandler) Obtener(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	okStatus(c, resp)
}

func (h *ServiciosHandler) Cancelar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelarRequest
	if !bindOptional(c, &req) {
		return
	}
	if err := h.svc.Cancelar(c.Request.Context(), middleware.GetUsuarioID(c), id, req.Motivo); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Servicio cancelado exitosamente")
}

// ── Comprobantes ──────────────────────────────────────────────────────────────

type ComprobantesHandler struct{ svc service.ComprobanteService }

func NewComprobantesHandler(svc service.ComprobanteService) *ComprobantesHandler {
	return &ComprobantesHandler{svc: svc}
}

// Routes returns the three receipt endpoints for one origin type.
func (h *ComprobantesHandler) Routes(origenTipo string) (obtener, pdf, regenerar gin.HandlerFunc) {
	obtener = func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		resp, err := h.svc.Obtener(c.Request.Context(), origenTipo, id)
		if err != nil {
			fail(c, err)
			return
		}
		okStatus(c, resp)
	}
	pdf = func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		path, err := h.svc.ObtenerPDFPath(c.Request.Context(), origenTipo, id)
		if err != nil {
			fail(c, err)
			return
		}
		c.Header("Content-Type", "application/pdf")
		c.File(path)
	}
	regenerar = func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		if err := h.svc.Regenerar(c.Request.Context(), origenTipo, id); err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusAccepted, nil, "Comprobante en proceso de generación")
	}
	return obtener, pdf, regenerar
}
