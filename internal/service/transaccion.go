package service

import (
	"context"
	"errors"
	"fmt"

	"lubripos/internal/apierror"
	"lubripos/internal/model"
	"lubripos/internal/repository"
	"lubripos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Transaction core ─────────────────────────────────────────────────────────
// Sales and services share the same steps: resolve the open session and the
// customer, number the header, price it, move stock, post the money. Each
// caller runs them inside its own transaction.

type nucleo struct {
	caja       repository.CajaRepository
	clientes   repository.ClienteRepository
	contadores repository.ContadorRepository
	sucursales sucursalResolver
	pagos      registradorPagos
	stock      stockLedger
	reversor   reversor
	dispatcher *worker.Dispatcher
}

// Repos groups the repositories the sale and service services share.
type Repos struct {
	Caja            repository.CajaRepository
	Clientes        repository.ClienteRepository
	Contadores      repository.ContadorRepository
	Usuarios        repository.UsuarioRepository
	Productos       repository.ProductoRepository
	MovimientoStock repository.MovimientoStockRepository
	Cuentas         repository.CuentaCorrienteRepository
	Tarjetas        repository.TarjetaRepository
}

func newNucleo(r Repos, dispatcher *worker.Dispatcher) nucleo {
	stock := stockLedger{productos: r.Productos, movimientos: r.MovimientoStock}
	return nucleo{
		caja:       r.Caja,
		clientes:   r.Clientes,
		contadores: r.Contadores,
		sucursales: sucursalResolver{usuarios: r.Usuarios},
		pagos:      registradorPagos{caja: r.Caja, cuentas: r.Cuentas, tarjetas: r.Tarjetas},
		stock:      stock,
		reversor:   reversor{caja: r.Caja, cuentas: r.Cuentas, stock: stock},
		dispatcher: dispatcher,
	}
}

// lineaImporte is the priced quantity of a product line.
type lineaImporte struct {
	cantidad decimal.Decimal
	precio   decimal.Decimal
	subtotal decimal.Decimal
}

// sesionAbiertaTx locks the branch's open session so a close cannot
// interleave with the transaction being written against it.
func (n nucleo) sesionAbiertaTx(tx *gorm.DB, sucursalID uuid.UUID, msg string) (*model.SesionCaja, error) {
	sesion, err := n.caja.FindSesionAbiertaTx(tx, sucursalID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.CajaCerrada(msg)
	}
	return sesion, err
}

// clienteTx returns the named customer or the walk-in one. Credit sales need
// a real customer.
func (n nucleo) clienteTx(tx *gorm.DB, clienteID *uuid.UUID, tipoPago string) (*model.Cliente, error) {
	var (
		cliente *model.Cliente
		err     error
	)
	if clienteID == nil {
		cliente, err = n.clientes.ConsumidorFinalTx(tx)
	} else {
		cliente, err = n.clientes.FindByIDTx(tx, *clienteID)
		err = notFound(err, "Cliente no encontrado")
	}
	if err != nil {
		return nil, err
	}
	if tipoPago == model.PagoCuentaCorriente && cliente.EsConsumidorFinal {
		return nil, apierror.Validation("Debe seleccionar un cliente para operar en cuenta corriente")
	}
	return cliente, nil
}

// lineaProductoTx validates one product line and prices it.
func (n nucleo) lineaProductoTx(tx *gorm.DB, sucursalID uuid.UUID, rawID string, cantidad, precio decimal.Decimal) (*model.Producto, lineaImporte, error) {
	productoID, err := parseID(rawID, "producto_id")
	if err != nil {
		return nil, lineaImporte{}, err
	}
	prod, err := n.stock.productos.FindByIDTx(tx, productoID)
	if err != nil {
		return nil, lineaImporte{}, notFound(err, fmt.Sprintf("Producto %s no encontrado", rawID))
	}
	if err := validarLinea(prod, sucursalID, cantidad); err != nil {
		return nil, lineaImporte{}, err
	}
	if precio.IsNegative() {
		return nil, lineaImporte{}, apierror.Validation(fmt.Sprintf("El precio de %s no puede ser negativo", prod.Nombre))
	}
	return prod, lineaImporte{cantidad: cantidad, precio: precio, subtotal: subtotalLinea(precio, cantidad)}, nil
}

func (n nucleo) numeroTx(tx *gorm.DB, clave, formato string) (string, error) {
	valor, err := n.contadores.NextTx(tx, clave)
	if err != nil {
		return "", fmt.Errorf("numeración %s: %w", clave, err)
	}
	return fmt.Sprintf(formato, valor), nil
}

// consumirTx posts a SALIDA for every line.
func (n nucleo) consumirTx(tx *gorm.DB, lineas []lineaConsumida, politica PoliticaStock, refTipo string, refID uuid.UUID, motivo string, usuarioID uuid.UUID) error {
	for _, l := range lineas {
		_, err := n.stock.aplicarTx(tx, movimientoStock{
			ProductoID:     l.ProductoID,
			Delta:          l.Cantidad.Neg(),
			Tipo:           model.StockSalida,
			Motivo:         motivo,
			ReferenciaTipo: refTipo,
			ReferenciaID:   &refID,
			UsuarioID:      usuarioID,
			Politica:       politica,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// revertirPagoTx undoes the money side of a sale or service.
func (n nucleo) revertirPagoTx(tx *gorm.DB, tipoPago string, rev Reversion) error {
	if tipoPago == model.PagoCuentaCorriente {
		_, err := n.reversor.revertirCargoTx(tx, rev)
		return err
	}
	_, err := n.reversor.revertirIngresosTx(tx, rev)
	return err
}

// encolarComprobante is best effort: the transaction is already committed.
func (n nucleo) encolarComprobante(ctx context.Context, origenTipo string, id uuid.UUID) {
	if n.dispatcher == nil {
		return
	}
	payload := worker.ComprobanteJobPayload{OrigenTipo: origenTipo, OrigenID: id.String()}
	if err := n.dispatcher.EnqueueComprobante(ctx, payload); err != nil {
		log.Warn().Err(err).
			Str("origen_tipo", origenTipo).
			Str("origen_id", id.String()).
			Msg("no se pudo encolar el comprobante")
	}
}

func importesDe(t Totales) model.Importes {
	return model.Importes{
		Subtotal:                 t.Subtotal,
		Descuento:                t.Descuento,
		InteresSistemaPorcentaje: t.InteresSistemaPorcentaje,
		InteresSistemaMonto:      t.InteresSistemaMonto,
		Total:                    t.Total,
	}
}
