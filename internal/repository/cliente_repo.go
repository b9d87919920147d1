package repository

import (
	"context"
	"errors"

	"lubripos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClienteRepository reads the customer-side rows the transaction core refers to.
type ClienteRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Cliente, error)
	// ConsumidorFinalTx returns the walk-in customer, creating it on first use.
	ConsumidorFinalTx(tx *gorm.DB) (*model.Cliente, error)
	FindVehiculoTx(tx *gorm.DB, id uuid.UUID) (*model.Vehiculo, error)
	FindEmpleadosTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Empleado, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *clienteRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := tx.Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *clienteRepo) ConsumidorFinalTx(tx *gorm.DB) (*model.Cliente, error) {
	var c model.Cliente
	err := tx.Where("es_consumidor_final = ?", true).First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// A concurrent writer may win the insert; the partial unique index turns
	// ours into a no-op and the re-select picks up theirs.
	nuevo := model.Cliente{Nombre: model.NombreConsumidorFinal, EsConsumidorFinal: true, Activo: true}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&nuevo).Error; err != nil {
		return nil, err
	}
	err = tx.Where("es_consumidor_final = ?", true).First(&c).Error
	return &c, err
}

func (r *clienteRepo) FindVehiculoTx(tx *gorm.DB, id uuid.UUID) (*model.Vehiculo, error) {
	var v model.Vehiculo
	err := tx.Where("id = ?", id).First(&v).Error
	return &v, err
}

func (r *clienteRepo) FindEmpleadosTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Empleado, error) {
	var empleados []model.Empleado
	if len(ids) == 0 {
		return empleados, nil
	}
	err := tx.Where("id IN ? AND activo = ?", ids, true).Find(&empleados).Error
	return empleados, err
}
