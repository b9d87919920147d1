package repository

import (
	"lubripos/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContadorRepository hands out human-readable sequence numbers.
type ContadorRepository interface {
	// NextTx increments the counter and returns the new value. The upsert
	// holds the row lock until tx ends, so concurrent callers serialize.
	NextTx(tx *gorm.DB, clave string) (int64, error)
}

type contadorRepo struct{}

func NewContadorRepository() ContadorRepository { return contadorRepo{} }

func (contadorRepo) NextTx(tx *gorm.DB, clave string) (int64, error) {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "clave"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"valor": gorm.Expr("contadores.valor + 1")}),
	}).Create(&model.Contador{Clave: clave, Valor: 1}).Error
	if err != nil {
		return 0, err
	}

	var c model.Contador
	if err := tx.Where("clave = ?", clave).First(&c).Error; err != nil {
		return 0, err
	}
	return c.Valor, nil
}
