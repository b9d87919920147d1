package service

import (
	"fmt"

	"lubripos/internal/apierror"
	"lubripos/internal/model"
	"lubripos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PoliticaStock decides whether an outgoing movement may leave a product
// with negative stock. Sales permit it; services and manual adjustments don't.
type PoliticaStock int

const (
	PermitirNegativo PoliticaStock = iota
	BloquearNegativo
)

func (p PoliticaStock) verificar(prod *model.Producto, delta decimal.Decimal) error {
	if p == PermitirNegativo || !delta.IsNegative() {
		return nil
	}
	if prod.Stock.Add(delta).IsNegative() {
		return apierror.Validation(fmt.Sprintf(
			"Stock insuficiente para %s (disponible: %s, requerido: %s)",
			prod.Nombre, prod.Stock.String(), delta.Neg().String()))
	}
	return nil
}

// validarLinea checks that prod can be sold at sucursalID in cantidad units.
func validarLinea(prod *model.Producto, sucursalID uuid.UUID, cantidad decimal.Decimal) error {
	if !prod.Activo {
		return apierror.NotFound(fmt.Sprintf("Producto %s no encontrado", prod.ID))
	}
	if prod.SucursalID != sucursalID {
		return apierror.Validation(fmt.Sprintf("El producto %s no pertenece a la sucursal", prod.Nombre))
	}
	if !cantidad.IsPositive() {
		return apierror.Validation(fmt.Sprintf("La cantidad de %s debe ser mayor a cero", prod.Nombre))
	}
	if err := validarUnidad(prod.Nombre, prod.UnidadMedida, cantidad); err != nil {
		return err
	}
	return nil
}

// validarUnidad rejects fractional quantities of products sold by the piece.
func validarUnidad(nombre, unidad string, cantidad decimal.Decimal) error {
	if unidad == model.UnidadPieza && !cantidad.Equal(cantidad.Truncate(0)) {
		return apierror.Validation(fmt.Sprintf("%s se vende por unidad: la cantidad debe ser entera", nombre))
	}
	return nil
}

// movimientoStock describes one stock change. Delta is signed.
type movimientoStock struct {
	ProductoID     uuid.UUID
	Delta          decimal.Decimal
	Tipo           string
	Motivo         string
	ReferenciaTipo string
	ReferenciaID   *uuid.UUID
	UsuarioID      uuid.UUID
	Politica       PoliticaStock
}

// stockLedger applies stock changes and records their movement rows.
type stockLedger struct {
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
}

// aplicarTx locks the product, checks the policy against its current stock
// and applies the delta. Repeated products within one transaction see the
// stock left by the previous line.
func (l stockLedger) aplicarTx(tx *gorm.DB, m movimientoStock) (*model.MovimientoStock, error) {
	prod, err := l.productos.FindByIDTx(tx, m.ProductoID)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("Producto %s no encontrado", m.ProductoID))
	}
	if err := m.Politica.verificar(prod, m.Delta); err != nil {
		return nil, err
	}
	if err := l.productos.UpdateStockTx(tx, prod.ID, m.Delta); err != nil {
		return nil, err
	}

	mov := &model.MovimientoStock{
		ProductoID:     prod.ID,
		Tipo:           m.Tipo,
		UnidadMedida:   prod.UnidadMedida,
		Cantidad:       m.Delta.Abs(),
		StockAnterior:  prod.Stock,
		StockNuevo:     prod.Stock.Add(m.Delta),
		Motivo:         m.Motivo,
		ReferenciaTipo: m.ReferenciaTipo,
		ReferenciaID:   m.ReferenciaID,
		UsuarioID:      m.UsuarioID,
	}
	if err := l.movimientos.CreateTx(tx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}
