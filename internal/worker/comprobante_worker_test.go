package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lubripos/internal/infra"
	"lubripos/internal/model"
	"lubripos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type comprobanteFixture struct {
	db      *gorm.DB
	storage string
	worker  *ComprobanteWorker
	repo    repository.ComprobanteRepository
}

func newComprobanteFixture(t *testing.T) *comprobanteFixture {
	t.Helper()
	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open("file:"+filepath.Join(dir, "pos.db")+"?_busy_timeout=5000"), infra.GormConfig())
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	storage := filepath.Join(dir, "pdf")
	repo := repository.NewComprobanteRepository(db)
	w := NewComprobanteWorker(
		repository.NewVentaRepository(db),
		repository.NewServicioRepository(db),
		repo, nil, storage, "Lubricentro Test",
	)
	return &comprobanteFixture{db: db, storage: storage, worker: w, repo: repo}
}

// venta inserts a committed two-line sale paid in two parts.
func (f *comprobanteFixture) venta(t *testing.T, email *string) *model.Venta {
	t.Helper()
	suc := model.Sucursal{Nombre: "Casa Central", Activo: true}
	require.NoError(t, f.db.Create(&suc).Error)
	cli := model.Cliente{Nombre: "María López", Email: email, Activo: true}
	require.NoError(t, f.db.Create(&cli).Error)
	prod := model.Producto{
		SucursalID: suc.ID, Nombre: "Aceite sintético 5W30", UnidadMedida: "litro",
		Precio: decimal.NewFromInt(1200), Stock: decimal.NewFromInt(10), Activo: true,
	}
	require.NoError(t, f.db.Create(&prod).Error)

	m1, m2 := model.PagoEfectivo, model.PagoTransferencia
	p1, p2 := decimal.NewFromInt(1000), decimal.NewFromInt(1400)
	v := &model.Venta{
		Numero:       "V-20260101-007",
		SucursalID:   suc.ID,
		ClienteID:    cli.ID,
		UsuarioID:    uuid.New(),
		SesionCajaID: uuid.New(),
		Importes: model.Importes{
			Subtotal:    decimal.NewFromInt(2400),
			Total:       decimal.NewFromInt(2400),
			TipoPago:    model.PagoMultiple,
			MetodoPago1: &m1,
			MontoPago1:  &p1,
			MetodoPago2: &m2,
			MontoPago2:  &p2,
		},
		Estado: model.TransaccionCompletada,
		Detalles: []model.DetalleVenta{{
			ProductoID: prod.ID, UnidadMedida: "litro",
			Cantidad: decimal.NewFromInt(2), PrecioUnitario: decimal.NewFromInt(1200), Subtotal: decimal.NewFromInt(2400),
		}},
	}
	require.NoError(t, f.db.Create(v).Error)
	return v
}

func comprobantePayload(t *testing.T, tipo string, id uuid.UUID) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(ComprobanteJobPayload{OrigenTipo: tipo, OrigenID: id.String()})
	require.NoError(t, err)
	return raw
}

func TestComprobanteWorker_GeneraPDFYRegistra(t *testing.T) {
	f := newComprobanteFixture(t)
	email := "maria@test.local"
	v := f.venta(t, &email)

	require.NoError(t, f.worker.Process(context.Background(), comprobantePayload(t, model.RefVenta, v.ID)))

	comp, err := f.repo.FindByOrigen(context.Background(), model.RefVenta, v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ComprobanteGenerado, comp.Estado)
	assert.Equal(t, v.Numero, comp.Numero)
	require.NotNil(t, comp.Email)
	assert.Equal(t, email, *comp.Email)
	require.NotNil(t, comp.PDFPath)
	assert.Equal(t, "venta_V-20260101-007.pdf", *comp.PDFPath)

	info, err := os.Stat(filepath.Join(f.storage, *comp.PDFPath))
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// reprocessing (a retried job or a regenerate request) keeps the same row
	require.NoError(t, f.worker.Process(context.Background(), comprobantePayload(t, model.RefVenta, v.ID)))
	var n int64
	require.NoError(t, f.db.Model(&model.Comprobante{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	again, err := f.repo.FindByOrigen(context.Background(), model.RefVenta, v.ID)
	require.NoError(t, err)
	assert.Equal(t, comp.ID, again.ID)
	assert.Equal(t, model.ComprobanteGenerado, again.Estado)
}

func TestComprobanteWorker_SinEmail(t *testing.T) {
	f := newComprobanteFixture(t)
	v := f.venta(t, nil)

	require.NoError(t, f.worker.Process(context.Background(), comprobantePayload(t, model.RefVenta, v.ID)))
	comp, err := f.repo.FindByOrigen(context.Background(), model.RefVenta, v.ID)
	require.NoError(t, err)
	assert.Nil(t, comp.Email)
}

func TestComprobanteWorker_OrigenInexistenteSeDescarta(t *testing.T) {
	f := newComprobanteFixture(t)

	require.NoError(t, f.worker.Process(context.Background(), comprobantePayload(t, model.RefServicio, uuid.New())))
	require.NoError(t, f.worker.Process(context.Background(), json.RawMessage(`{"origen_tipo":"VENTA","origen_id":"x"}`)))
	require.NoError(t, f.worker.Process(context.Background(), json.RawMessage(`not json`)))
}

func TestComprobanteWorker_GiveUpMarcaError(t *testing.T) {
	f := newComprobanteFixture(t)
	v := f.venta(t, nil)
	raw := comprobantePayload(t, model.RefVenta, v.ID)
	require.NoError(t, f.worker.Process(context.Background(), raw))

	f.worker.GiveUp(context.Background(), raw, errors.New("disco lleno"))

	comp, err := f.repo.FindByOrigen(context.Background(), model.RefVenta, v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ComprobanteError, comp.Estado)
	require.NotNil(t, comp.LastError)
	assert.Equal(t, "disco lleno", *comp.LastError)
}

func TestBaseDoc_PagoDividido(t *testing.T) {
	m1, m2 := model.PagoEfectivo, model.PagoTarjetaCredito
	p1, p2 := decimal.NewFromInt(400), decimal.NewFromInt(600)
	conInteres := decimal.NewFromInt(1060)
	doc := baseDoc(model.RefVenta, "V-1", model.TransaccionCancelada, model.Importes{
		Subtotal:               decimal.NewFromInt(1000),
		Total:                  decimal.NewFromInt(1000),
		InteresTarjetaMonto:    decimal.NewFromInt(60),
		TotalConInteresTarjeta: &conInteres,
		TipoPago:               model.PagoMultiple,
		MetodoPago1:            &m1,
		MontoPago1:             &p1,
		MetodoPago2:            &m2,
		MontoPago2:             &p2,
	}, nil, &model.Cliente{Nombre: model.NombreConsumidorFinal, EsConsumidorFinal: true})

	assert.True(t, doc.Cancelado)
	assert.Empty(t, doc.Cliente)
	assert.Equal(t, "1060", doc.Total.String())
	assert.Equal(t, "60", doc.Recargo.String())
	require.Len(t, doc.Pagos, 2)
	assert.Equal(t, model.PagoTarjetaCredito, doc.Pagos[1].Metodo)
}
