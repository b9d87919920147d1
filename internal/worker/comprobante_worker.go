package worker

// comprobante_worker.go
// Renders the internal PDF ticket of a committed sale or service, records it
// in comprobantes and, when the customer has an email, enqueues delivery.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lubripos/internal/infra"
	"lubripos/internal/model"
	"lubripos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ComprobanteWorker struct {
	ventas       repository.VentaRepository
	servicios    repository.ServicioRepository
	comprobantes repository.ComprobanteRepository
	dispatcher   *Dispatcher
	storagePath  string
	negocio      string
}

func NewComprobanteWorker(
	ventas repository.VentaRepository,
	servicios repository.ServicioRepository,
	comprobantes repository.ComprobanteRepository,
	dispatcher *Dispatcher,
	storagePath, negocio string,
) *ComprobanteWorker {
	return &ComprobanteWorker{
		ventas:       ventas,
		servicios:    servicios,
		comprobantes: comprobantes,
		dispatcher:   dispatcher,
		storagePath:  storagePath,
		negocio:      negocio,
	}
}

// Process is idempotent: a second run overwrites the file and the row.
func (w *ComprobanteWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ComprobanteJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("comprobante_worker: invalid payload")
		return nil
	}
	id, err := uuid.Parse(payload.OrigenID)
	if err != nil {
		log.Error().Str("origen_id", payload.OrigenID).Msg("comprobante_worker: invalid origen_id")
		return nil
	}

	doc, email, err := w.cargar(ctx, payload.OrigenTipo, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Str("origen_tipo", payload.OrigenTipo).Str("origen_id", payload.OrigenID).
			Msg("comprobante_worker: origin no longer exists, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	rel, err := infra.GenerateComprobantePDF(*doc, w.negocio, w.storagePath)
	if err != nil {
		return err
	}

	comp := &model.Comprobante{
		OrigenTipo: payload.OrigenTipo,
		OrigenID:   id,
		Numero:     doc.Numero,
		Estado:     model.ComprobanteGenerado,
		PDFPath:    &rel,
		Email:      email,
	}
	if err := w.comprobantes.Upsert(ctx, comp); err != nil {
		return err
	}
	log.Info().
		Str("comprobante_id", comp.ID.String()).
		Str("numero", comp.Numero).
		Str("pdf", rel).
		Msg("comprobante_worker: PDF generado")

	if email == nil || w.dispatcher == nil {
		return nil
	}
	job := EmailJobPayload{
		ComprobanteID: comp.ID.String(),
		ToEmail:       *email,
		Subject:       fmt.Sprintf("%s - Comprobante %s", w.negocio, doc.Numero),
		Body:          fmt.Sprintf("Adjuntamos el comprobante %s. ¡Gracias por elegirnos!", doc.Numero),
		PDFPath:       rel,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, job); err != nil {
		log.Warn().Err(err).Str("email", *email).Msg("comprobante_worker: failed to enqueue email")
	}
	return nil
}

// GiveUp flags an existing receipt row as failed.
func (w *ComprobanteWorker) GiveUp(ctx context.Context, raw json.RawMessage, cause error) {
	var payload ComprobanteJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}
	id, err := uuid.Parse(payload.OrigenID)
	if err != nil {
		return
	}
	comp, err := w.comprobantes.FindByOrigen(ctx, payload.OrigenTipo, id)
	if err != nil {
		log.Error().Err(cause).Str("origen_id", payload.OrigenID).Msg("comprobante_worker: gave up, no receipt row")
		return
	}
	msg := cause.Error()
	if err := w.comprobantes.UpdateEstado(ctx, comp.ID, model.ComprobanteError, &msg); err != nil {
		log.Error().Err(err).Str("comprobante_id", comp.ID.String()).Msg("comprobante_worker: failed to flag error")
	}
}

func (w *ComprobanteWorker) cargar(ctx context.Context, origenTipo string, id uuid.UUID) (*infra.ComprobanteDoc, *string, error) {
	switch origenTipo {
	case model.RefVenta:
		v, err := w.ventas.FindByID(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		doc := baseDoc(origenTipo, v.Numero, v.Estado, v.Importes, v.Sucursal, v.Cliente)
		doc.Fecha = v.CreatedAt
		for _, d := range v.Detalles {
			doc.Lineas = append(doc.Lineas, infra.LineaComprobante{
				Descripcion: nombreProducto(d.Producto),
				Cantidad:    d.Cantidad.String(),
				Subtotal:    d.Subtotal,
			})
		}
		return doc, emailDe(v.Cliente), nil

	case model.RefServicio:
		s, err := w.servicios.FindByID(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		doc := baseDoc(origenTipo, s.Numero, s.Estado, s.Importes, s.Sucursal, s.Cliente)
		doc.Fecha = s.CreatedAt
		if s.Vehiculo != nil {
			doc.Vehiculo = s.Vehiculo.Patente
		}
		for _, it := range s.Items {
			doc.Lineas = append(doc.Lineas, infra.LineaComprobante{Descripcion: it.Descripcion, Cantidad: "1", Subtotal: it.Subtotal})
		}
		return doc, emailDe(s.Cliente), nil
	}
	return nil, nil, fmt.Errorf("comprobante_worker: origen_tipo desconocido %q", origenTipo)
}

func baseDoc(tipo, numero, estado string, imp model.Importes, suc *model.Sucursal, cli *model.Cliente) *infra.ComprobanteDoc {
	doc := &infra.ComprobanteDoc{
		Tipo:      tipo,
		Numero:    numero,
		Subtotal:  imp.Subtotal,
		Descuento: imp.Descuento,
		Recargo:   imp.InteresSistemaMonto.Add(imp.InteresTarjetaMonto),
		Total:     imp.TotalCaja(),
		Cancelado: estado == model.TransaccionCancelada,
	}
	if suc != nil {
		doc.Sucursal = suc.Nombre
	}
	if cli != nil && !cli.EsConsumidorFinal {
		doc.Cliente = cli.Nombre
	}
	if imp.TipoPago == model.PagoMultiple && imp.MetodoPago1 != nil && imp.MetodoPago2 != nil {
		doc.Pagos = []infra.PagoComprobante{
			{Metodo: *imp.MetodoPago1, Monto: derefDecimal(imp.MontoPago1)},
			{Metodo: *imp.MetodoPago2, Monto: derefDecimal(imp.MontoPago2)},
		}
	} else {
		doc.Pagos = []infra.PagoComprobante{{Metodo: imp.TipoPago, Monto: imp.TotalCaja()}}
	}
	return doc
}

func nombreProducto(p *model.Producto) string {
	if p == nil {
		return ""
	}
	return p.Nombre
}

func emailDe(c *model.Cliente) *string {
	if c == nil || c.EsConsumidorFinal || c.Email == nil || *c.Email == "" {
		return nil
	}
	return c.Email
}

func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
