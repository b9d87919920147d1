package router

import (
	"time"

	"lubripos/internal/config"
	"lubripos/internal/handler"
	"lubripos/internal/middleware"
	"lubripos/internal/model"
	"lubripos/internal/repository"
	"lubripos/internal/service"
	"lubripos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// rdb may be nil: receipts are then not enqueued and card plans are not cached.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler(cfg.IsDevelopment()))
	r.Use(middleware.RateLimiter(1000, time.Minute))

	var dispatcher *worker.Dispatcher
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	repos := service.Repos{
		Caja:            repository.NewCajaRepository(db),
		Clientes:        repository.NewClienteRepository(db),
		Contadores:      repository.NewContadorRepository(),
		Usuarios:        repository.NewUsuarioRepository(db),
		Productos:       repository.NewProductoRepository(db),
		MovimientoStock: repository.NewMovimientoStockRepository(db),
		Cuentas:         repository.NewCuentaCorrienteRepository(db),
		Tarjetas:        repository.NewTarjetaRepository(db),
	}
	ventaRepo := repository.NewVentaRepository(db)
	servicioRepo := repository.NewServicioRepository(db)
	comprobanteRepo := repository.NewComprobanteRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	cajaSvc := service.NewCajaService(repos.Caja, repos.Usuarios)
	ventaSvc := service.NewVentaService(ventaRepo, repos, dispatcher)
	servicioSvc := service.NewServicioService(servicioRepo, repos, dispatcher)
	cuentaSvc := service.NewCuentaCorrienteService(repos.Cuentas, repos.Caja, repos.Clientes)
	productoSvc := service.NewProductoService(repos.Productos, repos.MovimientoStock, repos.Usuarios)
	tarjetaSvc := service.NewTarjetaService(repos.Tarjetas, rdb, time.Duration(cfg.TarjetasCacheTTLMinutes)*time.Minute)
	comprobanteSvc := service.NewComprobanteService(comprobanteRepo, dispatcher, cfg.PDFStoragePath)

	// ── Handlers ─────────────────────────────────────────────────────────────
	cajaH := handler.NewCajaHandler(cajaSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	serviciosH := handler.NewServiciosHandler(servicioSvc)
	cuentasH := handler.NewCuentasHandler(cuentaSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	tarjetasH := handler.NewTarjetasHandler(tarjetaSvc)
	comprobantesH := handler.NewComprobantesHandler(comprobanteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))

	caja := v1.Group("/caja")
	{
		caja.POST("/abrir", cajaH.Abrir)
		caja.PATCH("/:id/cerrar", cajaH.Cerrar)
		caja.GET("/sesion-activa", cajaH.GetActiva)
		caja.GET("/historial", cajaH.Historial)
		caja.GET("/sesiones/:id", cajaH.Detalle)
		caja.GET("/sesiones/:id/detalle-ingresos", cajaH.DetalleIngresos)
		caja.GET("/sesiones/:id/movimientos", cajaH.ListarMovimientos)
		caja.POST("/movimientos", cajaH.RegistrarMovimiento)
	}

	ventas := v1.Group("/ventas")
	{
		ventas.POST("", ventasH.Crear)
		ventas.GET("", ventasH.Listar)
		ventas.GET("/:id", ventasH.Obtener)
		ventas.PATCH("/:id/cancelar", ventasH.Cancelar)

		obtener, pdf, regenerar := comprobantesH.Routes(model.RefVenta)
		ventas.GET("/:id/comprobante", obtener)
		ventas.GET("/:id/comprobante/pdf", pdf)
		ventas.POST("/:id/comprobante/regenerar", regenerar)
	}

	servicios := v1.Group("/servicios")
	{
		servicios.POST("", serviciosH.Crear)
		servicios.GET("", serviciosH.Listar)
		servicios.GET("/:id", serviciosH.Obtener)
		servicios.PATCH("/:id/cancelar", serviciosH.Cancelar)

		obtener, pdf, regenerar := comprobantesH.Routes(model.RefServicio)
		servicios.GET("/:id/comprobante", obtener)
		servicios.GET("/:id/comprobante/pdf", pdf)
		servicios.POST("/:id/comprobante/regenerar", regenerar)
	}

	cc := v1.Group("/cuentas-corrientes")
	{
		cc.GET("/clientes", cuentasH.ListarCuentas)
		cc.GET("/cliente/:id", cuentasH.ObtenerSaldo)
		cc.PUT("/cliente/:id", cuentasH.Configurar)
		cc.GET("/cliente/:id/movimientos", cuentasH.ListarMovimientos)
		cc.POST("/cliente/:id/pago", cuentasH.RegistrarPago)
		cc.PATCH("/movimiento/:id/cancelar", cuentasH.CancelarPago)
	}

	prods := v1.Group("/productos")
	{
		prods.POST("", productosH.Crear)
		prods.GET("", productosH.Listar)
		prods.GET("/movimientos-stock", productosH.ListarMovimientos)
		prods.GET("/:id", productosH.ObtenerPorID)
		prods.PATCH("/:id/stock", productosH.AjustarStock)
		prods.DELETE("/:id", productosH.Eliminar)
	}

	v1.GET("/tarjetas", tarjetasH.ListarPlanes)

	return r
}
