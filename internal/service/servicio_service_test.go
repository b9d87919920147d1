package service

import (
	"testing"

	"lubripos/internal/apierror"
	"lubripos/internal/dto"
	"lubripos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) cambioDeAceite(litros string, cobro dto.CobroRequest) (*dto.ServicioResponse, error) {
	return f.servicios.Crear(f.ctx, f.usuario.ID, dto.CrearServicioRequest{
		ClienteID:  strPtr(f.cliente.ID.String()),
		VehiculoID: strPtr(f.vehiculo.ID.String()),
		Empleados:  []string{f.empleado.ID.String(), f.empleado.ID.String()},
		Items: []dto.ItemServicioRequest{
			{
				Descripcion: "Cambio de aceite",
				Productos: []dto.ItemProductoRequest{
					{ProductoID: f.aceite.ID.String(), Cantidad: dec(litros), PrecioUnitario: dec("1000")},
					{ProductoID: f.filtro.ID.String(), Cantidad: dec("1"), PrecioUnitario: dec("500")},
				},
			},
			{Descripcion: "Mano de obra", Total: dec("2000")},
		},
		CobroRequest: cobro,
	})
}

func TestServicio_Crear(t *testing.T) {
	f := newFixture(t)
	sesion := f.abrirCaja("0")

	serv, err := f.cambioDeAceite("4", efectivo())
	require.NoError(t, err)

	assert.Equal(t, "SERV-00001", serv.Numero)
	assert.Equal(t, "6500.00", serv.Subtotal.StringFixed(2))
	assert.Equal(t, "6500.00", serv.Total.StringFixed(2))
	require.Len(t, serv.Items, 2)
	items := map[string]dto.ServicioItemResponse{}
	for _, it := range serv.Items {
		items[it.Descripcion] = it
	}
	assert.Equal(t, "4500.00", items["Cambio de aceite"].Subtotal.StringFixed(2))
	assert.Len(t, items["Cambio de aceite"].Productos, 2)
	assert.Equal(t, "2000.00", items["Mano de obra"].Subtotal.StringFixed(2))
	assert.Empty(t, items["Mano de obra"].Productos)
	require.Len(t, serv.Empleados, 1, "empleados repetidos se registran una vez")
	require.NotNil(t, serv.Patente)
	assert.Equal(t, f.vehiculo.Patente, *serv.Patente)

	assert.Equal(t, "16", f.stock(f.aceite).String())
	assert.Equal(t, "4", f.stock(f.filtro).String())
	assert.Equal(t, "6500.00", f.totales(sesion.ID).Ingresos.StringFixed(2))

	movs := f.movimientosCaja(model.RefServicio, serv.ID)
	require.Len(t, movs, 1)
	assert.Contains(t, movs[0].Concepto, "Servicio SERV-00001")
}

func TestServicio_SoloManoDeObra(t *testing.T) {
	f := newFixture(t)
	f.abrirCaja("0")

	serv, err := f.servicios.Crear(f.ctx, f.usuario.ID, dto.CrearServicioRequest{
		Items:        []dto.ItemServicioRequest{{Descripcion: "Diagnóstico", Total: dec("1500")}},
		CobroRequest: efectivo(),
	})
	require.NoError(t, err)
	assert.Equal(t, "1500.00", serv.Total.StringFixed(2))
	assert.Equal(t, model.NombreConsumidorFinal, serv.ClienteNombre)
	assert.EqualValues(t, 0, f.count(&model.MovimientoStock{}))
}

func TestServicio_NoPermiteStockNegativo(t *testing.T) {
	f := newFixture(t)
	f.abrirCaja("0")

	_, err := f.cambioDeAceite("25", efectivo())
	e := requireKind(t, err, apierror.KindValidation)
	assert.Contains(t, e.Message, "Stock insuficiente")

	assert.EqualValues(t, 0, f.count(&model.Servicio{}))
	assert.EqualValues(t, 0, f.count(&model.MovimientoCaja{}))
	assert.Equal(t, "20", f.stock(f.aceite).String())
	assert.Equal(t, "5", f.stock(f.filtro).String())
}

func TestServicio_VehiculoDeOtroCliente(t *testing.T) {
	f := newFixture(t)
	f.abrirCaja("0")

	otro := model.Cliente{Nombre: "Ana Gómez", Activo: true}
	f.create(&otro)

	_, err := f.servicios.Crear(f.ctx, f.usuario.ID, dto.CrearServicioRequest{
		ClienteID:    strPtr(otro.ID.String()),
		VehiculoID:   strPtr(f.vehiculo.ID.String()),
		Items:        []dto.ItemServicioRequest{{Descripcion: "Lavado", Total: dec("100")}},
		CobroRequest: efectivo(),
	})
	requireKind(t, err, apierror.KindValidation)
}

func TestServicio_EmpleadoInexistente(t *testing.T) {
	f := newFixture(t)
	f.abrirCaja("0")

	_, err := f.servicios.Crear(f.ctx, f.usuario.ID, dto.CrearServicioRequest{
		Empleados:    []string{uuid.NewString()},
		Items:        []dto.ItemServicioRequest{{Descripcion: "Lavado", Total: dec("100")}},
		CobroRequest: efectivo(),
	})
	requireKind(t, err, apierror.KindNotFound)
}

func TestServicio_SinItems(t *testing.T) {
	f := newFixture(t)
	f.abrirCaja("0")

	_, err := f.servicios.Crear(f.ctx, f.usuario.ID, dto.CrearServicioRequest{CobroRequest: efectivo()})
	requireKind(t, err, apierror.KindValidation)
}

func TestServicio_CancelarRestauraStockYCaja(t *testing.T) {
	f := newFixture(t)
	sesion := f.abrirCaja("0")

	serv, err := f.cambioDeAceite("4", dto.CobroRequest{
		TipoPago:  model.PagoTarjetaCredito,
		TarjetaID: strPtr(f.tarjeta.ID.String()),
		Cuotas:    intPtr(3),
	})
	require.NoError(t, err)
	require.NotNil(t, serv.TotalConInteresTarjeta)
	assert.Equal(t, "7150.00", serv.TotalConInteresTarjeta.StringFixed(2))

	require.NoError(t, f.servicios.Cancelar(f.ctx, f.usuario.ID, uuid.MustParse(serv.ID), strPtr("error de carga")))

	assert.Equal(t, "20", f.stock(f.aceite).String())
	assert.Equal(t, "5", f.stock(f.filtro).String())
	tot := f.totales(sesion.ID)
	assert.True(t, tot.Ingresos.IsZero())
	assert.True(t, tot.Egresos.IsZero())

	var espejo model.MovimientoCaja
	require.NoError(t, f.db.Where("referencia_tipo = ?", model.RefServicioCancelado).First(&espejo).Error)
	assert.Equal(t, "7150.00", espejo.Monto.StringFixed(2))

	cancelado, err := f.servicios.Obtener(f.ctx, uuid.MustParse(serv.ID))
	require.NoError(t, err)
	assert.Equal(t, model.TransaccionCancelada, cancelado.Estado)
	require.NotNil(t, cancelado.Observaciones)
	assert.Contains(t, *cancelado.Observaciones, "[CANCELADO] error de carga")

	err = f.servicios.Cancelar(f.ctx, f.usuario.ID, uuid.MustParse(serv.ID), nil)
	requireKind(t, err, apierror.KindConflict)
}

func TestServicio_CancelarConCajaCerrada(t *testing.T) {
	f := newFixture(t)
	sesion := f.abrirCaja("0")

	serv, err := f.cambioDeAceite("1", efectivo())
	require.NoError(t, err)
	f.cerrarCaja(sesion.ID, "3500")

	err = f.servicios.Cancelar(f.ctx, f.usuario.ID, uuid.MustParse(serv.ID), nil)
	requireKind(t, err, apierror.KindConflict)
	assert.Equal(t, "19", f.stock(f.aceite).String())
}

func TestServicio_Listar(t *testing.T) {
	f := newFixture(t)
	f.abrirCaja("0")

	_, err := f.cambioDeAceite("1", efectivo())
	require.NoError(t, err)

	res, err := f.servicios.Listar(f.ctx, dto.TransaccionFilter{ClienteID: f.cliente.ID.String()})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "SERV-00001", res.Items[0].Numero)
}
