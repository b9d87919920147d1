package handler

import (
	"net/http"

	"lubripos/internal/dto"
	"lubripos/internal/middleware"
	"lubripos/internal/service"

	"github.com/gin-gonic/gin"
)

type CuentasHandler struct{ svc service.CuentaCorrienteService }

func NewCuentasHandler(svc service.CuentaCorrienteService) *CuentasHandler {
	return &CuentasHandler{svc: svc}
}

func (h *CuentasHandler) ListarCuentas(c *gin.Context) {
	var filter dto.CuentaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarCuentas(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	okStatus(c, resp)
}

// ObtenerSaldo creates the account on first access.
func (h *CuentasHandler) ObtenerSaldo(c *gin.Context) {
	clienteID, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerSaldo(c.Request.Context(), clienteID)
	if err != nil {
		fail(c, err)
		return
	}
	okStatus(c, resp)
}

func (h *CuentasHandler) Configurar(c *gin.Context) {
	clienteID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ConfigurarCuentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Configurar(c.Request.Context(), clienteID, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, resp, "Cuenta actualizada")
}

func (h *CuentasHandler) ListarMovimientos(c *gin.Context) {
	clienteID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p dto.Paginacion
	if !bindQuery(c, &p) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), clienteID, p)
	if err != nil {
		fail(c, err)
		return
	}
	okStatus(c, resp)
}

// RegistrarPago godoc
// @Summary      Registrar pago de cuenta corriente
// @Description  Descuenta el saldo del cliente e ingresa el dinero en la sesión de caja abierta.
// @Tags         cuentas-corrientes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "UUID del cliente"
// @Param        body body dto.RegistrarPagoRequest true "Pago"
// @Success      201  {object} dto.PagoCuentaResponse
// @Failure      400  {object} apierror.Response
// @Router       /v1/cuentas-corrientes/cliente/{id}/pago [post]
func (h *CuentasHandler) RegistrarPago(c *gin.Context) {
	clienteID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.RegistrarPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarPago(c.Request.Context(), middleware.GetUsuarioID(c), clienteID, req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, resp, "Pago registrado exitosamente")
}

func (h *CuentasHandler) CancelarPago(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelarRequest
	if !bindOptional(c, &req) {
		return
	}
	if err := h.svc.CancelarPago(c.Request.Context(), middleware.GetUsuarioID(c), id, req.Motivo); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Pago cancelado exitosamente")
}
