package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"lubripos/internal/apierror"
	"lubripos/internal/config"
	"lubripos/internal/infra"
	"lubripos/internal/middleware"
	"lubripos/internal/model"
	"lubripos/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "router-test-secret"

func init() { gin.SetMode(gin.TestMode) }

// ── Helpers ──────────────────────────────────────────────────────────────────

type apiEnv struct {
	engine   *gin.Engine
	db       *gorm.DB
	token    string
	sucursal model.Sucursal
	producto model.Producto
}

func setupAPI(t *testing.T) *apiEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open("file:"+filepath.Join(dir, "pos.db")+"?_busy_timeout=5000&_txlock=immediate"), infra.GormConfig())
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &apiEnv{db: db}
	env.sucursal = model.Sucursal{Nombre: "Casa Central", Activo: true}
	require.NoError(t, db.Create(&env.sucursal).Error)
	usuario := model.Usuario{Nombre: "Cajero", Email: "cajero@test.local", Rol: "cajero", Activo: true}
	require.NoError(t, db.Create(&usuario).Error)
	require.NoError(t, db.Create(&model.UsuarioSucursal{
		UsuarioID:   usuario.ID,
		SucursalID:  env.sucursal.ID,
		EsPrincipal: true,
	}).Error)
	env.producto = model.Producto{
		SucursalID:   env.sucursal.ID,
		Nombre:       "Aceite 15W40",
		UnidadMedida: "litro",
		Precio:       decimal.NewFromInt(900),
		Stock:        decimal.NewFromInt(10),
		Activo:       true,
	}
	require.NoError(t, db.Create(&env.producto).Error)

	cfg := &config.Config{
		Env:                     "test",
		JWTSecret:               testSecret,
		PDFStoragePath:          filepath.Join(dir, "pdf"),
		TarjetasCacheTTLMinutes: 1,
	}
	env.engine = router.New(cfg, db, nil)

	env.token, err = middleware.IssueToken(testSecret, usuario.ID, usuario.Email, time.Hour)
	require.NoError(t, err)
	return env
}

func (e *apiEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// envelope decodes the response and unmarshals its data into dest.
func envelope(t *testing.T, w *httptest.ResponseRecorder, dest any) apierror.Response {
	t.Helper()
	var raw struct {
		apierror.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if dest != nil {
		require.NoError(t, json.Unmarshal(raw.Data, dest))
	}
	return raw.Response
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := setupAPI(t)
	env.token = ""

	w := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
}

func TestRutasProtegidas(t *testing.T) {
	env := setupAPI(t)
	env.token = ""

	w := env.do(t, http.MethodGet, "/v1/caja/sesion-activa", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := envelope(t, w, nil)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, apierror.CodeUnauthorized, resp.Error.Code)
}

func TestCicloDeVenta(t *testing.T) {
	env := setupAPI(t)

	// 1. venta sin caja abierta
	venta := map[string]any{
		"items": []map[string]any{{
			"producto_id":     env.producto.ID.String(),
			"cantidad":        "2",
			"precio_unitario": "900",
		}},
		"tipo_pago": model.PagoEfectivo,
	}
	w := env.do(t, http.MethodPost, "/v1/ventas", venta)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := envelope(t, w, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, apierror.CodeCajaCerrada, resp.Error.Code)

	// 2. abrir caja
	w = env.do(t, http.MethodPost, "/v1/caja/abrir", map[string]any{
		"sucursalId":   env.sucursal.ID.String(),
		"montoInicial": "500",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sesion struct {
		ID     string `json:"id"`
		Estado string `json:"estado"`
	}
	envelope(t, w, &sesion)
	assert.Equal(t, model.CajaAbierta, sesion.Estado)

	w = env.do(t, http.MethodPost, "/v1/caja/abrir", map[string]any{
		"sucursalId":   env.sucursal.ID.String(),
		"montoInicial": "0",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 3. registrar venta
	w = env.do(t, http.MethodPost, "/v1/ventas", venta)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var creada struct {
		ID           string          `json:"id"`
		Total        decimal.Decimal `json:"total"`
		SesionCajaID string          `json:"sesion_caja_id"`
	}
	envelope(t, w, &creada)
	assert.Equal(t, "1800.00", creada.Total.StringFixed(2))
	assert.Equal(t, sesion.ID, creada.SesionCajaID)

	// 4. cancelar
	w = env.do(t, http.MethodPatch, "/v1/ventas/"+creada.ID+"/cancelar", map[string]any{"motivo": "cliente desistió"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPatch, "/v1/ventas/"+creada.ID+"/cancelar", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var prod model.Producto
	require.NoError(t, env.db.First(&prod, "id = ?", env.producto.ID).Error)
	assert.Equal(t, "10", prod.Stock.String())

	// 5. cerrar caja: solo queda el monto inicial
	w = env.do(t, http.MethodPatch, "/v1/caja/"+sesion.ID+"/cerrar", map[string]any{"montoFinal": "500"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cerrada struct {
		Estado       string           `json:"estado"`
		MontoSistema *decimal.Decimal `json:"monto_sistema"`
		Diferencia   decimal.Decimal  `json:"diferencia"`
	}
	envelope(t, w, &cerrada)
	assert.Equal(t, model.CajaCerrada, cerrada.Estado)
	require.NotNil(t, cerrada.MontoSistema)
	assert.Equal(t, "500.00", cerrada.MontoSistema.StringFixed(2))
	assert.True(t, cerrada.Diferencia.IsZero())
}

func TestValidacionDeEntrada(t *testing.T) {
	env := setupAPI(t)

	w := env.do(t, http.MethodPost, "/v1/ventas", map[string]any{"tipo_pago": "BITCOIN"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := envelope(t, w, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, apierror.CodeValidation, resp.Error.Code)

	w = env.do(t, http.MethodGet, "/v1/ventas/no-es-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/v1/ventas/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductosYMovimientosDeStock(t *testing.T) {
	env := setupAPI(t)

	w := env.do(t, http.MethodPatch, "/v1/productos/"+env.producto.ID.String()+"/stock", map[string]any{
		"cantidad": "-1.5",
		"motivo":   "Derrame",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/v1/productos/movimientos-stock?producto_id="+env.producto.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page struct {
		Items []struct {
			Tipo string `json:"tipo"`
		} `json:"items"`
	}
	envelope(t, w, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, model.StockAjuste, page.Items[0].Tipo)

	w = env.do(t, http.MethodGet, "/v1/productos?sucursal_id="+env.sucursal.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
