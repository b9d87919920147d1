package dto

import "github.com/shopspring/decimal"

// ItemServicioRequest is one job line. When Productos is empty the line is
// pure labor and Total is charged as-is.
type ItemServicioRequest struct {
	TipoServicioID *string               `json:"tipo_servicio_id" validate:"omitempty,uuid"`
	Descripcion    string                `json:"descripcion"      validate:"required,max=300"`
	Observaciones  *string               `json:"observaciones"`
	Total          decimal.Decimal       `json:"total"            validate:"min=0"`
	Productos      []ItemProductoRequest `json:"productos"        validate:"dive"`
}

type CrearServicioRequest struct {
	SucursalID *string               `json:"sucursal_id" validate:"omitempty,uuid"`
	ClienteID  *string               `json:"cliente_id"  validate:"omitempty,uuid"`
	VehiculoID *string               `json:"vehiculo_id" validate:"omitempty,uuid"`
	Empleados  []string              `json:"empleados"   validate:"dive,uuid"`
	Items      []ItemServicioRequest `json:"items"       validate:"required,min=1,dive"`
	CobroRequest
	Observaciones *string `json:"observaciones" validate:"omitempty,max=1000"`
}

type ItemProductoResponse = DetalleVentaResponse

type ServicioItemResponse struct {
	ID             string                 `json:"id"`
	TipoServicioID *string                `json:"tipo_servicio_id"`
	Descripcion    string                 `json:"descripcion"`
	Observaciones  *string                `json:"observaciones"`
	Subtotal       decimal.Decimal        `json:"subtotal"`
	Productos      []ItemProductoResponse `json:"productos"`
}

type EmpleadoResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

type ServicioResponse struct {
	ID            string  `json:"id"`
	Numero        string  `json:"numero"`
	SucursalID    string  `json:"sucursal_id"`
	ClienteID     string  `json:"cliente_id"`
	ClienteNombre string  `json:"cliente_nombre,omitempty"`
	VehiculoID    *string `json:"vehiculo_id"`
	Patente       *string `json:"patente,omitempty"`
	UsuarioID     string  `json:"usuario_id"`
	SesionCajaID  string  `json:"sesion_caja_id"`
	ImportesResponse
	Estado           string                   `json:"estado"`
	Observaciones    *string                  `json:"observaciones"`
	CanceladoPor     *string                  `json:"cancelado_por"`
	FechaCancelacion *string                  `json:"fecha_cancelacion"`
	CreatedAt        string                   `json:"created_at"`
	Items            []ServicioItemResponse   `json:"items"`
	Empleados        []EmpleadoResponse       `json:"empleados"`
	Pagos            []MovimientoCajaResponse `json:"pagos,omitempty"`
}
