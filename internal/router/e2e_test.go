//go:build integration

package router_test

// End-to-end tests against real PostgreSQL + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"lubripos/internal/config"
	"lubripos/internal/infra"
	"lubripos/internal/middleware"
	"lubripos/internal/model"
	"lubripos/internal/repository"
	"lubripos/internal/router"
	"lubripos/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

// ── Suite Setup ──────────────────────────────────────────────────────────────

type e2eEnv struct {
	server   *httptest.Server
	db       *gorm.DB
	rdb      *redis.Client
	token    string
	sucursal model.Sucursal
	producto model.Producto
	cliente  model.Cliente
}

func setupE2E(t *testing.T) *e2eEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("lubripos_test"),
		tcPostgres.WithUsername("lubripos"),
		tcPostgres.WithPassword("lubripos"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                     "test",
		JWTSecret:               testSecret,
		DatabaseURL:             pgURL,
		RedisURL:                rdURL,
		WorkerPoolSize:          1,
		PDFStoragePath:          t.TempDir(),
		NegocioNombre:           "Lubricentro E2E",
		TarjetasCacheTTLMinutes: 5,
	}

	// NewDatabase migrates, including the partial unique indexes.
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	require.NoError(t, err)

	workerCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	pool := worker.NewPool(rdb)
	pool.Register(worker.QueueComprobantes, worker.NewComprobanteWorker(
		repository.NewVentaRepository(db),
		repository.NewServicioRepository(db),
		repository.NewComprobanteRepository(db),
		worker.NewDispatcher(rdb),
		cfg.PDFStoragePath,
		cfg.NegocioNombre,
	))
	pool.Start(workerCtx, cfg.WorkerPoolSize)

	env := &e2eEnv{db: db, rdb: rdb}
	env.sucursal = model.Sucursal{Nombre: "Casa Central", Activo: true}
	require.NoError(t, db.Create(&env.sucursal).Error)
	usuario := model.Usuario{Nombre: "Admin E2E", Email: "admin@e2e.test", Rol: "administrador", Activo: true}
	require.NoError(t, db.Create(&usuario).Error)
	require.NoError(t, db.Create(&model.UsuarioSucursal{
		UsuarioID:   usuario.ID,
		SucursalID:  env.sucursal.ID,
		EsPrincipal: true,
	}).Error)
	env.producto = model.Producto{
		SucursalID:   env.sucursal.ID,
		Nombre:       "Aceite 20W50",
		UnidadMedida: "litro",
		Precio:       decimal.NewFromInt(1000),
		Stock:        decimal.NewFromInt(50),
		Activo:       true,
	}
	require.NoError(t, db.Create(&env.producto).Error)
	env.cliente = model.Cliente{Nombre: "Transportes del Sur", Activo: true}
	require.NoError(t, db.Create(&env.cliente).Error)

	env.server = httptest.NewServer(router.New(cfg, db, rdb))
	t.Cleanup(env.server.Close)

	env.token, err = middleware.IssueToken(testSecret, usuario.ID, usuario.Email, time.Hour)
	require.NoError(t, err)
	return env
}

func (e *e2eEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	if dest != nil {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
}

func (e *e2eEnv) abrirCaja(t *testing.T) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/v1/caja/abrir", map[string]any{
		"sucursalId":   e.sucursal.ID.String(),
		"montoInicial": "1000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sesion struct {
		ID string `json:"id"`
	}
	decodeData(t, resp, &sesion)
	return sesion.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_AperturaConcurrente(t *testing.T) {
	env := setupE2E(t)

	const n = 8
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := env.do(t, http.MethodPost, "/v1/caja/abrir", map[string]any{
				"sucursalId":   env.sucursal.ID.String(),
				"montoInicial": "0",
			})
			codes[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	created := 0
	for _, c := range codes {
		if c == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusBadRequest, c)
		}
	}
	assert.Equal(t, 1, created)
}

func TestE2E_VentaGeneraComprobante(t *testing.T) {
	env := setupE2E(t)
	env.abrirCaja(t)

	resp := env.do(t, http.MethodPost, "/v1/ventas", map[string]any{
		"items": []map[string]any{{
			"producto_id":     env.producto.ID.String(),
			"cantidad":        "4",
			"precio_unitario": "1000",
		}},
		"tipo_pago": model.PagoEfectivo,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var venta struct {
		ID string `json:"id"`
	}
	decodeData(t, resp, &venta)

	// The worker renders the PDF asynchronously.
	require.Eventually(t, func() bool {
		resp := env.do(t, http.MethodGet, "/v1/ventas/"+venta.ID+"/comprobante", nil)
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return false
		}
		var comp struct {
			Estado string `json:"estado"`
		}
		decodeData(t, resp, &comp)
		return comp.Estado == model.ComprobanteGenerado
	}, 20*time.Second, 250*time.Millisecond)

	resp = env.do(t, http.MethodGet, "/v1/ventas/"+venta.ID+"/comprobante/pdf", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}

func TestE2E_CuentaCorrienteYCancelacion(t *testing.T) {
	env := setupE2E(t)
	sesionID := env.abrirCaja(t)

	resp := env.do(t, http.MethodPost, "/v1/ventas", map[string]any{
		"cliente_id": env.cliente.ID.String(),
		"items": []map[string]any{{
			"producto_id":     env.producto.ID.String(),
			"cantidad":        "2.5",
			"precio_unitario": "1000",
		}},
		"tipo_pago": model.PagoCuentaCorriente,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/v1/cuentas-corrientes/cliente/"+env.cliente.ID.String()+"/pago", map[string]any{
		"monto":          "1000",
		"metodo_pago":    model.PagoEfectivo,
		"sesion_caja_id": sesionID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var pago struct {
		Saldo      decimal.Decimal `json:"saldo"`
		Movimiento struct {
			ID string `json:"id"`
		} `json:"movimiento"`
	}
	decodeData(t, resp, &pago)
	assert.Equal(t, "1500.00", pago.Saldo.StringFixed(2))

	resp = env.do(t, http.MethodPatch, "/v1/cuentas-corrientes/movimiento/"+pago.Movimiento.ID+"/cancelar", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/v1/cuentas-corrientes/cliente/"+env.cliente.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cuenta struct {
		Saldo decimal.Decimal `json:"saldo"`
	}
	decodeData(t, resp, &cuenta)
	assert.Equal(t, "2500.00", cuenta.Saldo.StringFixed(2))

	// Cash nets to the opening amount: the payment and its reversal cancel out.
	resp = env.do(t, http.MethodGet, "/v1/caja/sesiones/"+sesionID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detalle struct {
		Resumen struct {
			MontoEsperado decimal.Decimal `json:"monto_esperado"`
		} `json:"resumen"`
	}
	decodeData(t, resp, &detalle)
	assert.Equal(t, "1000.00", detalle.Resumen.MontoEsperado.StringFixed(2))
}

func TestE2E_RequeueDesdeDLQ(t *testing.T) {
	env := setupE2E(t)
	ctx := context.Background()

	venta := model.Venta{
		Numero:       "V-DLQ-1",
		SucursalID:   env.sucursal.ID,
		ClienteID:    env.cliente.ID,
		UsuarioID:    uuid.New(),
		SesionCajaID: uuid.New(),
		Importes: model.Importes{
			Subtotal: decimal.NewFromInt(1000),
			Total:    decimal.NewFromInt(1000),
			TipoPago: model.PagoEfectivo,
		},
		Estado: model.TransaccionCompletada,
	}
	require.NoError(t, env.db.Create(&venta).Error)

	payload, err := json.Marshal(worker.ComprobanteJobPayload{OrigenTipo: model.RefVenta, OrigenID: venta.ID.String()})
	require.NoError(t, err)
	entry, err := json.Marshal(worker.DLQEntry{
		Queue:    worker.QueueComprobantes,
		JobType:  worker.JobComprobante,
		Payload:  payload,
		Reason:   "disco lleno",
		Attempts: worker.MaxJobAttempts,
		FailedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, env.rdb.LPush(ctx, "dlq:"+worker.QueueComprobantes, entry).Err())

	oldest, err := worker.OldestDLQEntry(ctx, env.rdb, worker.QueueComprobantes)
	require.NoError(t, err)
	require.NotNil(t, oldest)
	assert.Equal(t, "disco lleno", oldest.Reason)

	moved, err := worker.Requeue(ctx, env.rdb, worker.QueueComprobantes, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	n, err := worker.DLQLength(ctx, env.rdb, worker.QueueComprobantes)
	require.NoError(t, err)
	assert.Zero(t, n)

	comprobantes := repository.NewComprobanteRepository(env.db)
	require.Eventually(t, func() bool {
		comp, err := comprobantes.FindByOrigen(ctx, model.RefVenta, venta.ID)
		return err == nil && comp.Estado == model.ComprobanteGenerado
	}, 20*time.Second, 250*time.Millisecond)
}
