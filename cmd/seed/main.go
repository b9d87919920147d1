// cmd/seed: loads demo data (branch, user, employee, products, card, customer)
// and prints a signed JWT for the demo user.
// Uso: go run ./cmd/seed
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"lubripos/internal/config"
	"lubripos/internal/infra"
	"lubripos/internal/middleware"
	"lubripos/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	var usuario model.Usuario
	err = db.Transaction(func(tx *gorm.DB) error {
		var e error
		usuario, e = seed(tx)
		return e
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	token, err := middleware.IssueToken(cfg.JWTSecret, usuario.ID, usuario.Email,
		time.Duration(cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to sign token")
	}
	log.Info().Str("usuario_id", usuario.ID.String()).Msg("seed completed")
	fmt.Println(token)
}

const demoEmail = "admin@lubripos.local"

func seed(tx *gorm.DB) (model.Usuario, error) {
	var usuario model.Usuario
	err := tx.Where("email = ?", demoEmail).First(&usuario).Error
	if err == nil {
		log.Info().Msg("demo data already present")
		return usuario, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return usuario, err
	}

	sucursal := model.Sucursal{Nombre: "Casa Central", Activo: true}
	if err := tx.Create(&sucursal).Error; err != nil {
		return usuario, err
	}
	usuario = model.Usuario{Nombre: "Admin Demo", Email: demoEmail, Rol: "administrador", Activo: true}
	if err := tx.Create(&usuario).Error; err != nil {
		return usuario, err
	}
	acceso := model.UsuarioSucursal{UsuarioID: usuario.ID, SucursalID: sucursal.ID, EsPrincipal: true}
	if err := tx.Create(&acceso).Error; err != nil {
		return usuario, err
	}
	if err := tx.Create(&model.Empleado{SucursalID: sucursal.ID, Nombre: "Mecánico Demo", Activo: true}).Error; err != nil {
		return usuario, err
	}

	productos := []model.Producto{
		{SucursalID: sucursal.ID, Nombre: "Aceite 10W40 (litro)", UnidadMedida: "litro",
			Precio: decimal.NewFromInt(9500), Stock: decimal.NewFromInt(200), StockMinimo: decimal.NewFromInt(20), Activo: true},
		{SucursalID: sucursal.ID, Nombre: "Filtro de aceite", UnidadMedida: model.UnidadPieza,
			Precio: decimal.NewFromInt(7800), Stock: decimal.NewFromInt(40), StockMinimo: decimal.NewFromInt(5), Activo: true},
	}
	if err := tx.Create(&productos).Error; err != nil {
		return usuario, err
	}

	tarjeta := model.TarjetaCredito{Nombre: "Visa", Activo: true, Cuotas: []model.TarjetaCuota{
		{NumeroCuotas: 1, TasaInteres: decimal.Zero, Activo: true},
		{NumeroCuotas: 3, TasaInteres: decimal.NewFromInt(10), Activo: true},
		{NumeroCuotas: 6, TasaInteres: decimal.NewFromInt(20), Activo: true},
	}}
	if err := tx.Create(&tarjeta).Error; err != nil {
		return usuario, err
	}

	email := "cliente@example.com"
	cliente := model.Cliente{Nombre: "Cliente Demo", Email: &email, Activo: true}
	if err := tx.Create(&cliente).Error; err != nil {
		return usuario, err
	}
	return usuario, tx.Create(&model.Vehiculo{ClienteID: cliente.ID, Patente: "AB123CD"}).Error
}
