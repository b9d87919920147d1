package handler

import (
	"net/http"

	"lubripos/internal/apierror"
	"lubripos/internal/dto"
	"lubripos/internal/middleware"
	"lubripos/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ svc service.ProductoService }

func NewProductosHandler(svc service.ProductoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, resp, "Producto creado")
}

func (h *ProductosHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
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

func (h *ProductosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	okStatus(c, resp)
}

// AjustarStock applies a signed correction (cantidad < 0 removes stock).
func (h *ProductosHandler) AjustarStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AjustarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarStock(c.Request.Context(), middleware.GetUsuarioID(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, resp, "Stock ajustado")
}

// Eliminar hard-deletes or deactivates depending on references; the response
// says which.
func (h *ProductosHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Eliminar(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	msg := "Producto eliminado"
	if resp.Accion == dto.AccionDesactivado {
		msg = "El producto tiene movimientos registrados y fue desactivado"
	}
	respond(c, http.StatusOK, resp, msg)
}

func (h *ProductosHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoStockFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientosStock(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	okStatus(c, resp)
}

// ── Tarjetas ──────────────────────────────────────────────────────────────────

type TarjetasHandler struct{ svc service.TarjetaService }

func NewTarjetasHandler(svc service.TarjetaService) *TarjetasHandler {
	return &TarjetasHandler{svc: svc}
}

func (h *TarjetasHandler) ListarPlanes(c *gin.Context) {
	sucursalID, ok := queryID(c, "sucursal_id")
	if !ok {
		return
	}
	if sucursalID == nil {
		fail(c, apierror.Validation("El parámetro sucursal_id es obligatorio"))
		return
	}
	resp, err := h.svc.ListarPlanes(c.Request.Context(), *sucursalID)
	if err != nil {
		fail(c, err)
		return
	}
	okStatus(c, resp)
}
