package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDs are assigned in Go rather than by a database default so that the same
// schema runs on PostgreSQL and SQLite.

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (m *Sucursal) BeforeCreate(*gorm.DB) error                  { ensureID(&m.ID); return nil }
func (m *Usuario) BeforeCreate(*gorm.DB) error                   { ensureID(&m.ID); return nil }
func (m *Empleado) BeforeCreate(*gorm.DB) error                  { ensureID(&m.ID); return nil }
func (m *Cliente) BeforeCreate(*gorm.DB) error                   { ensureID(&m.ID); return nil }
func (m *Vehiculo) BeforeCreate(*gorm.DB) error                  { ensureID(&m.ID); return nil }
func (m *CuentaCorriente) BeforeCreate(*gorm.DB) error           { ensureID(&m.ID); return nil }
func (m *MovimientoCuentaCorriente) BeforeCreate(*gorm.DB) error { ensureID(&m.ID); return nil }
func (m *Producto) BeforeCreate(*gorm.DB) error                  { ensureID(&m.ID); return nil }
func (m *MovimientoStock) BeforeCreate(*gorm.DB) error           { ensureID(&m.ID); return nil }
func (m *TarjetaCredito) BeforeCreate(*gorm.DB) error            { ensureID(&m.ID); return nil }
func (m *TarjetaCuota) BeforeCreate(*gorm.DB) error              { ensureID(&m.ID); return nil }
func (m *SesionCaja) BeforeCreate(*gorm.DB) error                { ensureID(&m.ID); return nil }
func (m *MovimientoCaja) BeforeCreate(*gorm.DB) error            { ensureID(&m.ID); return nil }
func (m *Venta) BeforeCreate(*gorm.DB) error                     { ensureID(&m.ID); return nil }
func (m *DetalleVenta) BeforeCreate(*gorm.DB) error              { ensureID(&m.ID); return nil }
func (m *TipoServicio) BeforeCreate(*gorm.DB) error              { ensureID(&m.ID); return nil }
func (m *Servicio) BeforeCreate(*gorm.DB) error                  { ensureID(&m.ID); return nil }
func (m *ServicioItem) BeforeCreate(*gorm.DB) error              { ensureID(&m.ID); return nil }
func (m *ServicioItemProducto) BeforeCreate(*gorm.DB) error      { ensureID(&m.ID); return nil }
func (m *Comprobante) BeforeCreate(*gorm.DB) error               { ensureID(&m.ID); return nil }

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Sucursal{},
		&Usuario{},
		&UsuarioSucursal{},
		&Empleado{},
		&Cliente{},
		&Vehiculo{},
		&CuentaCorriente{},
		&MovimientoCuentaCorriente{},
		&Producto{},
		&MovimientoStock{},
		&TarjetaCredito{},
		&TarjetaCuota{},
		&SesionCaja{},
		&MovimientoCaja{},
		&Venta{},
		&DetalleVenta{},
		&TipoServicio{},
		&Servicio{},
		&ServicioItem{},
		&ServicioItemProducto{},
		&Comprobante{},
		&Contador{},
	}
}
