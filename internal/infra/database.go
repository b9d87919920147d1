package infra

import (
	"fmt"

	"lubripos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the
// schema up to date (see Migrate).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// GormConfig is shared by the PostgreSQL connection and the SQLite test
// connections. TranslateError turns driver unique violations into
// gorm.ErrDuplicatedKey, which the services rely on.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
}

// Migrate runs AutoMigrate for every model, then applies the idempotent SQL
// patches GORM cannot express (partial unique indexes).
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches creates indexes that back business invariants.
// Every statement is written so that it runs unchanged on PostgreSQL and
// SQLite and is a no-op when re-applied.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one ABIERTA session per branch. The service also checks
		// inside its transaction; this index settles concurrent opens.
		{"uq_sesiones_caja_abierta", `
CREATE UNIQUE INDEX IF NOT EXISTS uq_sesiones_caja_abierta
  ON sesiones_caja (sucursal_id)
  WHERE estado = 'ABIERTA'`},

		// A single synthetic walk-in customer.
		{"uq_clientes_consumidor_final", `
CREATE UNIQUE INDEX IF NOT EXISTS uq_clientes_consumidor_final
  ON clientes (es_consumidor_final)
  WHERE es_consumidor_final = true`},

		{"idx_movimientos_caja_sesion_estado", `
CREATE INDEX IF NOT EXISTS idx_movimientos_caja_sesion_estado
  ON movimientos_caja (sesion_caja_id, estado, tipo)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("%s: %w", p.descr, err)
		}
	}
	return nil
}
