package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"lubripos/internal/apierror"
	"lubripos/internal/dto"
	"lubripos/internal/infra"
	"lubripos/internal/model"
	"lubripos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ── Fixture ───────────────────────────────────────────────────────────────────
// Every test gets its own SQLite file. _txlock=immediate makes each
// transaction take the write lock on BEGIN, which serializes concurrent writers
// the way the row locks do on PostgreSQL.

type fixture struct {
	t   *testing.T
	ctx context.Context
	db  *gorm.DB

	sucursal model.Sucursal
	otra     model.Sucursal
	usuario  model.Usuario
	empleado model.Empleado
	aceite   model.Producto // litro, 20 en stock, 1000 c/u
	filtro   model.Producto // unidad, 5 en stock, 500 c/u
	tarjeta  model.TarjetaCredito
	cliente  model.Cliente
	vehiculo model.Vehiculo

	repos        Repos
	ventasRepo   repository.VentaRepository
	serviciosRep repository.ServicioRepository

	caja      CajaService
	ventas    VentaService
	servicios ServicioService
	cuentas   CuentaCorrienteService
	productos ProductoService
	tarjetas  TarjetaService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate",
		filepath.Join(t.TempDir(), "pos.db"))
	db, err := gorm.Open(sqlite.Open(dsn), infra.GormConfig())
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{t: t, ctx: context.Background(), db: db}
	f.seed()

	f.repos = Repos{
		Caja:            repository.NewCajaRepository(db),
		Clientes:        repository.NewClienteRepository(db),
		Contadores:      repository.NewContadorRepository(),
		Usuarios:        repository.NewUsuarioRepository(db),
		Productos:       repository.NewProductoRepository(db),
		MovimientoStock: repository.NewMovimientoStockRepository(db),
		Cuentas:         repository.NewCuentaCorrienteRepository(db),
		Tarjetas:        repository.NewTarjetaRepository(db),
	}
	f.ventasRepo = repository.NewVentaRepository(db)
	f.serviciosRep = repository.NewServicioRepository(db)

	f.caja = NewCajaService(f.repos.Caja, f.repos.Usuarios)
	f.ventas = NewVentaService(f.ventasRepo, f.repos, nil)
	f.servicios = NewServicioService(f.serviciosRep, f.repos, nil)
	f.cuentas = NewCuentaCorrienteService(f.repos.Cuentas, f.repos.Caja, f.repos.Clientes)
	f.productos = NewProductoService(f.repos.Productos, f.repos.MovimientoStock, f.repos.Usuarios)
	f.tarjetas = NewTarjetaService(f.repos.Tarjetas, nil, 0)
	return f
}

func (f *fixture) seed() {
	f.sucursal = model.Sucursal{Nombre: "Casa Central", Activo: true}
	f.otra = model.Sucursal{Nombre: "Sucursal Norte", Activo: true}
	f.create(&f.sucursal, &f.otra)

	f.usuario = model.Usuario{Nombre: "Cajero", Email: "cajero@test.local", Rol: "cajero", Activo: true}
	f.create(&f.usuario)
	f.create(&model.UsuarioSucursal{UsuarioID: f.usuario.ID, SucursalID: f.sucursal.ID, EsPrincipal: true})

	f.empleado = model.Empleado{SucursalID: f.sucursal.ID, Nombre: "Mecánico", Activo: true}
	f.aceite = model.Producto{
		SucursalID: f.sucursal.ID, Nombre: "Aceite 10W40", UnidadMedida: "litro",
		Precio: dec("1000"), Stock: dec("20"), StockMinimo: dec("2"), Activo: true,
	}
	f.filtro = model.Producto{
		SucursalID: f.sucursal.ID, Nombre: "Filtro de aceite", UnidadMedida: model.UnidadPieza,
		Precio: dec("500"), Stock: dec("5"), StockMinimo: dec("1"), Activo: true,
	}
	f.create(&f.empleado, &f.aceite, &f.filtro)

	f.tarjeta = model.TarjetaCredito{
		SucursalID: &f.sucursal.ID, Nombre: "Visa", Activo: true,
		Cuotas: []model.TarjetaCuota{
			{NumeroCuotas: 1, TasaInteres: dec("0"), Activo: true},
			{NumeroCuotas: 3, TasaInteres: dec("10"), Activo: true},
		},
	}
	f.create(&f.tarjeta)

	email := "cliente@test.local"
	f.cliente = model.Cliente{Nombre: "Juan Pérez", Email: &email, Activo: true}
	f.create(&f.cliente)
	f.vehiculo = model.Vehiculo{ClienteID: f.cliente.ID, Patente: "AB123CD"}
	f.create(&f.vehiculo)
}

func (f *fixture) create(values ...interface{}) {
	f.t.Helper()
	for _, v := range values {
		require.NoError(f.t, f.db.Create(v).Error)
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func requireKind(t *testing.T, err error, k apierror.Kind) *apierror.Error {
	t.Helper()
	require.Error(t, err)
	e, ok := apierror.As(err)
	require.True(t, ok, "expected *apierror.Error, got %T: %v", err, err)
	require.Equal(t, k, e.Kind, e.Message)
	return e
}

func (f *fixture) abrirCaja(monto string) *dto.SesionCajaResponse {
	f.t.Helper()
	s, err := f.caja.Abrir(f.ctx, f.usuario.ID, dto.AbrirCajaRequest{
		SucursalID:   f.sucursal.ID.String(),
		MontoInicial: dec(monto),
	})
	require.NoError(f.t, err)
	return s
}

func (f *fixture) cerrarCaja(sesionID string, final string) *dto.SesionCajaResponse {
	f.t.Helper()
	s, err := f.caja.Cerrar(f.ctx, f.usuario.ID, uuid.MustParse(sesionID), dto.CerrarCajaRequest{MontoFinal: dec(final)})
	require.NoError(f.t, err)
	return s
}

func (f *fixture) ventaAceite(cantidad string, cobro dto.CobroRequest) (*dto.VentaResponse, error) {
	return f.ventas.Crear(f.ctx, f.usuario.ID, dto.CrearVentaRequest{
		Items: []dto.ItemProductoRequest{{
			ProductoID:     f.aceite.ID.String(),
			Cantidad:       dec(cantidad),
			PrecioUnitario: f.aceite.Precio,
		}},
		CobroRequest: cobro,
	})
}

func (f *fixture) stock(p model.Producto) decimal.Decimal {
	f.t.Helper()
	var prod model.Producto
	require.NoError(f.t, f.db.First(&prod, "id = ?", p.ID).Error)
	return prod.Stock
}

func (f *fixture) totales(sesionID string) *repository.TotalesSesion {
	f.t.Helper()
	tot, err := f.repos.Caja.Totales(f.ctx, uuid.MustParse(sesionID))
	require.NoError(f.t, err)
	return tot
}

func (f *fixture) movimientosCaja(refTipo string, refID string) []model.MovimientoCaja {
	f.t.Helper()
	var movs []model.MovimientoCaja
	require.NoError(f.t, f.db.Where("referencia_tipo = ? AND referencia_id = ?", refTipo, refID).
		Order("created_at").Find(&movs).Error)
	return movs
}

func (f *fixture) count(m interface{}) int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.db.Model(m).Count(&n).Error)
	return n
}

func efectivo() dto.CobroRequest { return dto.CobroRequest{TipoPago: model.PagoEfectivo} }
