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

// ventaACuenta leaves the fixture customer owing monto.
func (f *fixture) ventaACuenta(monto string) *dto.VentaResponse {
	f.t.Helper()
	v, err := f.ventas.Crear(f.ctx, f.usuario.ID, dto.CrearVentaRequest{
		ClienteID: strPtr(f.cliente.ID.String()),
		Items: []dto.ItemProductoRequest{{
			ProductoID: f.aceite.ID.String(), Cantidad: dec("1"), PrecioUnitario: dec(monto),
		}},
		CobroRequest: dto.CobroRequest{TipoPago: model.PagoCuentaCorriente},
	})
	require.NoError(f.t, err)
	return v
}

func TestCuenta_ObtenerSaldoCreaLaCuenta(t *testing.T) {
	f := newFixture(t)

	cuenta, err := f.cuentas.ObtenerSaldo(f.ctx, f.cliente.ID)
	require.NoError(t, err)
	assert.True(t, cuenta.Saldo.IsZero())
	assert.True(t, cuenta.Activo)
	assert.Equal(t, f.cliente.ID.String(), cuenta.ClienteID)

	_, err = f.cuentas.ObtenerSaldo(f.ctx, uuid.New())
	requireKind(t, err, apierror.KindNotFound)
}

func TestCuenta_RegistrarPago(t *testing.T) {
	f := newFixture(t)
	sesion := f.abrirCaja("0")
	f.ventaACuenta("1000")

	res, err := f.cuentas.RegistrarPago(f.ctx, f.usuario.ID, f.cliente.ID, dto.RegistrarPagoRequest{
		Monto:        dec("400"),
		MetodoPago:   model.PagoEfectivo,
		SesionCajaID: sesion.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "600.00", res.Saldo.StringFixed(2))
	assert.Equal(t, model.CuentaPago, res.Movimiento.Tipo)
	assert.Equal(t, "1000.00", res.Movimiento.SaldoAnterior.StringFixed(2))
	assert.Equal(t, model.MovimientoIngreso, res.MovimientoCaja.Tipo)
	require.NotNil(t, res.MovimientoCaja.ReferenciaID)
	assert.Equal(t, res.Movimiento.ID, *res.MovimientoCaja.ReferenciaID)

	assert.Equal(t, "400.00", f.totales(sesion.ID).Ingresos.StringFixed(2))

	movs, err := f.cuentas.ListarMovimientos(f.ctx, f.cliente.ID, dto.Paginacion{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, movs.Pagination.Total)
}

func TestCuenta_PagoMayorAlSaldo(t *testing.T) {
	f := newFixture(t)
	sesion := f.abrirCaja("0")
	f.ventaACuenta("300")

	_, err := f.cuentas.RegistrarPago(f.ctx, f.usuario.ID, f.cliente.ID, dto.RegistrarPagoRequest{
		Monto:        dec("300.01"),
		MetodoPago:   model.PagoEfectivo,
		SesionCajaID: sesion.ID,
	})
	requireKind(t, err, apierror.KindValidation)
	assert.True(t, f.totales(sesion.ID).Ingresos.IsZero())
}

func TestCuenta_PagoContraCajaCerrada(t *testing.T) {
	f := newFixture(t)
	sesion := f.abrirCaja("0")
	f.ventaACuenta("300")
	f.cerrarCaja(sesion.ID, "0")

	_, err := f.cuentas.RegistrarPago(f.ctx, f.usuario.ID, f.cliente.ID, dto.RegistrarPagoRequest{
		Monto:        dec("100"),
		MetodoPago:   model.PagoEfectivo,
		SesionCajaID: sesion.ID,
	})
	e := requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, apierror.CodeCajaCerrada, e.Code)
}

func TestCuenta_CancelarPago(t *testing.T) {
	f := newFixture(t)
	sesion := f.abrirCaja("0")
	f.ventaACuenta("1000")

	res, err := f.cuentas.RegistrarPago(f.ctx, f.usuario.ID, f.cliente.ID, dto.RegistrarPagoRequest{
		Monto:        dec("400"),
		MetodoPago:   model.PagoTransferencia,
		SesionCajaID: sesion.ID,
	})
	require.NoError(t, err)
	pagoID := uuid.MustParse(res.Movimiento.ID)

	require.NoError(t, f.cuentas.CancelarPago(f.ctx, f.usuario.ID, pagoID, strPtr("transferencia rechazada")))

	cuenta, err := f.cuentas.ObtenerSaldo(f.ctx, f.cliente.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", cuenta.Saldo.StringFixed(2))

	tot := f.totales(sesion.ID)
	assert.True(t, tot.Ingresos.IsZero())
	assert.True(t, tot.Egresos.IsZero())

	var pago model.MovimientoCuentaCorriente
	require.NoError(t, f.db.First(&pago, "id = ?", pagoID).Error)
	assert.Equal(t, model.EstadoCancelado, pago.Estado)
	require.NotNil(t, pago.MovimientoReversionID)
	require.NotNil(t, pago.MotivoCancelacion)
	assert.Equal(t, "transferencia rechazada", *pago.MotivoCancelacion)

	err = f.cuentas.CancelarPago(f.ctx, f.usuario.ID, pagoID, nil)
	requireKind(t, err, apierror.KindConflict)

	err = f.cuentas.CancelarPago(f.ctx, f.usuario.ID, *pago.MovimientoReversionID, nil)
	requireKind(t, err, apierror.KindValidation)
}

func TestCuenta_CancelarCargoRechazado(t *testing.T) {
	f := newFixture(t)
	f.abrirCaja("0")
	venta := f.ventaACuenta("1000")

	var cargo model.MovimientoCuentaCorriente
	require.NoError(t, f.db.Where("referencia_id = ?", venta.ID).First(&cargo).Error)

	err := f.cuentas.CancelarPago(f.ctx, f.usuario.ID, cargo.ID, nil)
	e := requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, "Solo se pueden cancelar pagos", e.Message)
}

func TestCuenta_CancelarPagoConCajaCerrada(t *testing.T) {
	f := newFixture(t)
	sesion := f.abrirCaja("0")
	f.ventaACuenta("1000")

	res, err := f.cuentas.RegistrarPago(f.ctx, f.usuario.ID, f.cliente.ID, dto.RegistrarPagoRequest{
		Monto:        dec("1000"),
		MetodoPago:   model.PagoEfectivo,
		SesionCajaID: sesion.ID,
	})
	require.NoError(t, err)
	f.cerrarCaja(sesion.ID, "1000")

	err = f.cuentas.CancelarPago(f.ctx, f.usuario.ID, uuid.MustParse(res.Movimiento.ID), nil)
	requireKind(t, err, apierror.KindConflict)

	cuenta, err := f.cuentas.ObtenerSaldo(f.ctx, f.cliente.ID)
	require.NoError(t, err)
	assert.True(t, cuenta.Saldo.IsZero())
}

func TestCuenta_Configurar(t *testing.T) {
	f := newFixture(t)
	f.abrirCaja("0")

	limite := dec("5000")
	cuenta, err := f.cuentas.Configurar(f.ctx, f.cliente.ID, dto.ConfigurarCuentaRequest{LimiteCredito: &limite})
	require.NoError(t, err)
	assert.Equal(t, "5000.00", cuenta.LimiteCredito.StringFixed(2))

	negativo := dec("-1")
	_, err = f.cuentas.Configurar(f.ctx, f.cliente.ID, dto.ConfigurarCuentaRequest{LimiteCredito: &negativo})
	requireKind(t, err, apierror.KindValidation)

	f.ventaACuenta("100")
	inactiva := false
	_, err = f.cuentas.Configurar(f.ctx, f.cliente.ID, dto.ConfigurarCuentaRequest{Activo: &inactiva})
	e := requireKind(t, err, apierror.KindValidation)
	assert.Contains(t, e.Message, "saldo pendiente")
}

func TestCuenta_ListarCuentas(t *testing.T) {
	f := newFixture(t)
	f.abrirCaja("0")
	f.ventaACuenta("250")

	res, err := f.cuentas.ListarCuentas(f.ctx, dto.CuentaFilter{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "250.00", res.Items[0].Saldo.StringFixed(2))
	assert.Equal(t, f.cliente.Nombre, res.Items[0].ClienteNombre)
}
