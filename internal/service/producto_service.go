package service

import (
	"context"
	"strings"

	"lubripos/internal/apierror"
	"lubripos/internal/dto"
	"lubripos/internal/model"
	"lubripos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ListResponse[dto.ProductoResponse], error)
	AjustarStock(ctx context.Context, usuarioID, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error)
	// Eliminar hard-deletes unreferenced products and deactivates the rest.
	Eliminar(ctx context.Context, id uuid.UUID) (*dto.ResultadoEliminacion, error)
	ListarMovimientosStock(ctx context.Context, filter dto.MovimientoStockFilter) (*dto.ListResponse[dto.MovimientoStockResponse], error)
}

type productoService struct {
	repo        repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
	usuarios    repository.UsuarioRepository
	stock       stockLedger
}

func NewProductoService(
	repo repository.ProductoRepository,
	movimientos repository.MovimientoStockRepository,
	usuarios repository.UsuarioRepository,
) ProductoService {
	return &productoService{
		repo:        repo,
		movimientos: movimientos,
		usuarios:    usuarios,
		stock:       stockLedger{productos: repo, movimientos: movimientos},
	}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	sucursalID, err := parseID(req.SucursalID, "sucursal_id")
	if err != nil {
		return nil, err
	}
	if _, err := s.usuarios.FindSucursal(ctx, sucursalID); err != nil {
		return nil, notFound(err, "Sucursal no encontrada")
	}
	if req.Precio.IsNegative() || req.Stock.IsNegative() || req.StockMinimo.IsNegative() {
		return nil, apierror.Validation("Precio y stock no pueden ser negativos")
	}
	unidad := strings.ToLower(strings.TrimSpace(req.UnidadMedida))
	if err := validarUnidad(req.Nombre, unidad, req.Stock); err != nil {
		return nil, err
	}

	p := &model.Producto{
		SucursalID:   sucursalID,
		Codigo:       req.Codigo,
		Nombre:       strings.TrimSpace(req.Nombre),
		Descripcion:  req.Descripcion,
		UnidadMedida: unidad,
		Precio:       redondear(req.Precio),
		Stock:        req.Stock,
		StockMinimo:  req.StockMinimo,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Str("producto_id", p.ID.String()).Str("nombre", p.Nombre).Msg("producto creado")
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Producto no encontrado")
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ListResponse[dto.ProductoResponse], error) {
	filter.Normalize()
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		items = append(items, *productoToResponse(&productos[i]))
	}
	resp := dto.NewListResponse(items, filter.Paginacion, total)
	return &resp, nil
}

// AjustarStock applies a signed manual correction. Unlike a sale, an
// adjustment never leaves stock negative.
func (s *productoService) AjustarStock(ctx context.Context, usuarioID, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error) {
	if req.Cantidad.IsZero() {
		return nil, apierror.Validation("La cantidad del ajuste no puede ser cero")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		prod, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return notFound(err, "Producto no encontrado")
		}
		if err := validarUnidad(prod.Nombre, prod.UnidadMedida, req.Cantidad.Abs()); err != nil {
			return err
		}
		_, err = s.stock.aplicarTx(tx, movimientoStock{
			ProductoID:     prod.ID,
			Delta:          req.Cantidad,
			Tipo:           model.StockAjuste,
			Motivo:         req.Motivo,
			ReferenciaTipo: model.RefAjusteManual,
			UsuarioID:      usuarioID,
			Politica:       BloquearNegativo,
		})
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("producto_id", id.String()).
		Str("cantidad", req.Cantidad.String()).
		Msg("stock ajustado")
	return s.ObtenerPorID(ctx, id)
}

func (s *productoService) Eliminar(ctx context.Context, id uuid.UUID) (*dto.ResultadoEliminacion, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFound(err, "Producto no encontrado")
	}
	referenciado, err := s.repo.IsReferenced(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &dto.ResultadoEliminacion{ID: id.String()}
	if referenciado {
		if err := s.repo.Deactivate(ctx, id); err != nil {
			return nil, err
		}
		res.Accion = dto.AccionDesactivado
	} else {
		if err := s.repo.Delete(ctx, id); err != nil {
			return nil, err
		}
		res.Accion = dto.AccionEliminado
	}

	log.Info().Str("producto_id", id.String()).Str("accion", res.Accion).Msg("producto eliminado")
	return res, nil
}

func (s *productoService) ListarMovimientosStock(ctx context.Context, filter dto.MovimientoStockFilter) (*dto.ListResponse[dto.MovimientoStockResponse], error) {
	filter.Normalize()
	movs, total, err := s.movimientos.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovimientoStockResponse, 0, len(movs))
	for i := range movs {
		items = append(items, movimientoStockToResponse(&movs[i]))
	}
	resp := dto.NewListResponse(items, filter.Paginacion, total)
	return &resp, nil
}
