package service

import (
	"sync"
	"testing"

	"lubripos/internal/apierror"
	"lubripos/internal/dto"
	"lubripos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaja_AbrirYCerrarSinMovimientos(t *testing.T) {
	f := newFixture(t)

	sesion := f.abrirCaja("1000")
	assert.Equal(t, model.CajaAbierta, sesion.Estado)
	assert.Equal(t, "1000.00", sesion.MontoInicial.StringFixed(2))

	cerrada := f.cerrarCaja(sesion.ID, "1000")
	assert.Equal(t, model.CajaCerrada, cerrada.Estado)
	require.NotNil(t, cerrada.MontoSistema)
	assert.Equal(t, "1000.00", cerrada.MontoSistema.StringFixed(2))
	assert.True(t, cerrada.Diferencia.IsZero())
	assert.True(t, cerrada.TotalIngresos.IsZero())
	assert.True(t, cerrada.TotalEgresos.IsZero())
	assert.NotNil(t, cerrada.FechaCierre)
}

func TestCaja_SegundaAperturaRechazada(t *testing.T) {
	f := newFixture(t)
	f.abrirCaja("0")

	_, err := f.caja.Abrir(f.ctx, f.usuario.ID, dto.AbrirCajaRequest{
		SucursalID:   f.sucursal.ID.String(),
		MontoInicial: dec("50"),
	})
	requireKind(t, err, apierror.KindConflict)
	assert.EqualValues(t, 1, f.count(&model.SesionCaja{}))
}

func TestCaja_AperturaConcurrente_UnaSolaGana(t *testing.T) {
	f := newFixture(t)

	const n = 5
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rechazos int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.caja.Abrir(f.ctx, f.usuario.ID, dto.AbrirCajaRequest{
				SucursalID:   f.sucursal.ID.String(),
				MontoInicial: dec("100"),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if apierror.IsKind(err, apierror.KindConflict) {
				rechazos++
			} else {
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, rechazos)
	assert.EqualValues(t, 1, f.count(&model.SesionCaja{}))
}

func TestCaja_SucursalesIndependientes(t *testing.T) {
	f := newFixture(t)
	f.create(&model.UsuarioSucursal{UsuarioID: f.usuario.ID, SucursalID: f.otra.ID})

	f.abrirCaja("0")
	_, err := f.caja.Abrir(f.ctx, f.usuario.ID, dto.AbrirCajaRequest{SucursalID: f.otra.ID.String()})
	require.NoError(t, err)
}

func TestCaja_SucursalSinAcceso(t *testing.T) {
	f := newFixture(t)
	_, err := f.caja.Abrir(f.ctx, f.usuario.ID, dto.AbrirCajaRequest{SucursalID: f.otra.ID.String()})
	requireKind(t, err, apierror.KindForbidden)
}

func TestCaja_MontoInicialNegativo(t *testing.T) {
	f := newFixture(t)
	_, err := f.caja.Abrir(f.ctx, f.usuario.ID, dto.AbrirCajaRequest{
		SucursalID:   f.sucursal.ID.String(),
		MontoInicial: dec("-1"),
	})
	requireKind(t, err, apierror.KindValidation)
}

func TestCaja_GetActiva(t *testing.T) {
	f := newFixture(t)

	activa, err := f.caja.GetActiva(f.ctx, f.usuario.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, activa)

	sesion := f.abrirCaja("10")
	activa, err = f.caja.GetActiva(f.ctx, f.usuario.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, activa)
	assert.Equal(t, sesion.ID, activa.ID)
}

func TestCaja_CerrarDosVeces(t *testing.T) {
	f := newFixture(t)
	sesion := f.abrirCaja("0")
	f.cerrarCaja(sesion.ID, "0")

	_, err := f.caja.Cerrar(f.ctx, f.usuario.ID, uuid.MustParse(sesion.ID), dto.CerrarCajaRequest{})
	requireKind(t, err, apierror.KindNotFound)
}

func TestCaja_CierreConVentaCalculaEsperado(t *testing.T) {
	f := newFixture(t)
	sesion := f.abrirCaja("1000")

	_, err := f.ventas.Crear(f.ctx, f.usuario.ID, dto.CrearVentaRequest{
		Items: []dto.ItemProductoRequest{{
			ProductoID:     f.filtro.ID.String(),
			Cantidad:       dec("1"),
			PrecioUnitario: dec("500"),
		}},
		CobroRequest: efectivo(),
	})
	require.NoError(t, err)

	cerrada := f.cerrarCaja(sesion.ID, "1450")
	assert.Equal(t, "500.00", cerrada.TotalIngresos.StringFixed(2))
	assert.Equal(t, "1500.00", cerrada.MontoSistema.StringFixed(2))
	assert.Equal(t, "-50.00", cerrada.Diferencia.StringFixed(2))
	require.Contains(t, cerrada.DesgloseIngresos, model.PagoEfectivo)
	assert.Equal(t, "500.00", cerrada.DesgloseIngresos[model.PagoEfectivo].Total.StringFixed(2))
}

func TestCaja_MovimientosManuales(t *testing.T) {
	f := newFixture(t)
	sesion := f.abrirCaja("100")

	_, err := f.caja.RegistrarMovimiento(f.ctx, f.usuario.ID, dto.MovimientoManualRequest{
		SesionCajaID: sesion.ID,
		Tipo:         model.MovimientoEgreso,
		MetodoPago:   model.PagoEfectivo,
		Monto:        dec("30"),
		Concepto:     "Compra de insumos",
	})
	require.NoError(t, err)

	detalle, err := f.caja.Detalle(f.ctx, uuid.MustParse(sesion.ID))
	require.NoError(t, err)
	assert.Equal(t, "30.00", detalle.Resumen.TotalEgresos.StringFixed(2))
	assert.Equal(t, "70.00", detalle.Resumen.MontoEsperado.StringFixed(2))

	f.cerrarCaja(sesion.ID, "70")
	_, err = f.caja.RegistrarMovimiento(f.ctx, f.usuario.ID, dto.MovimientoManualRequest{
		SesionCajaID: sesion.ID,
		Tipo:         model.MovimientoIngreso,
		MetodoPago:   model.PagoEfectivo,
		Monto:        dec("5"),
		Concepto:     "Ajuste",
	})
	e := requireKind(t, err, apierror.KindValidation)
	assert.Equal(t, apierror.CodeCajaCerrada, e.Code)
}

func TestCaja_DetalleIngresosPorMetodo(t *testing.T) {
	f := newFixture(t)
	sesion := f.abrirCaja("0")

	_, err := f.ventaAceite("1", dto.CobroRequest{
		TipoPago: model.PagoEfectivo,
		PagoDividido: &dto.PagoDivididoRequest{
			TipoPago2: model.PagoTransferencia,
			Monto1:    dec("600"),
			Monto2:    dec("400"),
		},
	})
	require.NoError(t, err)

	det, err := f.caja.DetalleIngresos(f.ctx, uuid.MustParse(sesion.ID))
	require.NoError(t, err)
	assert.Equal(t, "1000.00", det.TotalIngresos.StringFixed(2))
	require.Len(t, det.Metodos, 2)
	for _, m := range det.Metodos {
		require.Len(t, m.Movimientos, 1)
		switch m.MetodoPago {
		case model.PagoEfectivo:
			assert.Equal(t, "600.00", m.Total.StringFixed(2))
		case model.PagoTransferencia:
			assert.Equal(t, "400.00", m.Total.StringFixed(2))
		default:
			t.Fatalf("método inesperado %s", m.MetodoPago)
		}
	}
}

func TestCaja_Historial(t *testing.T) {
	f := newFixture(t)
	s1 := f.abrirCaja("0")
	f.cerrarCaja(s1.ID, "0")
	f.abrirCaja("0")

	res, err := f.caja.Historial(f.ctx, dto.HistorialCajaFilter{Estado: model.CajaCerrada})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, s1.ID, res.Items[0].ID)

	res, err = f.caja.Historial(f.ctx, dto.HistorialCajaFilter{SucursalID: f.sucursal.ID.String()})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Pagination.Total)
}
