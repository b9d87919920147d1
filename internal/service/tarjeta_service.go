package service

import (
	"context"
	"encoding/json"
	"time"

	"lubripos/internal/dto"
	"lubripos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const tarjetasCachePrefix = "tarjetas:planes:"

type TarjetaService interface {
	// ListarPlanes returns the active cards usable at the branch, global ones
	// included, with their active installment tiers.
	ListarPlanes(ctx context.Context, sucursalID uuid.UUID) ([]dto.TarjetaPlanResponse, error)
}

type tarjetaService struct {
	repo repository.TarjetaRepository
	rdb  *redis.Client
	ttl  time.Duration
}

// NewTarjetaService caches plans in Redis when rdb is non-nil.
func NewTarjetaService(repo repository.TarjetaRepository, rdb *redis.Client, ttl time.Duration) TarjetaService {
	return &tarjetaService{repo: repo, rdb: rdb, ttl: ttl}
}

func (s *tarjetaService) ListarPlanes(ctx context.Context, sucursalID uuid.UUID) ([]dto.TarjetaPlanResponse, error) {
	cacheKey := tarjetasCachePrefix + sucursalID.String()

	// 1. Try Redis cache
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp []dto.TarjetaPlanResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return resp, nil
			}
		}
	}

	// 2. Cache miss, query DB
	tarjetas, err := s.repo.ListPorSucursal(ctx, sucursalID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TarjetaPlanResponse, 0, len(tarjetas))
	for _, t := range tarjetas {
		plan := dto.TarjetaPlanResponse{
			ID:         t.ID.String(),
			Nombre:     t.Nombre,
			SucursalID: dto.UUIDPtr(t.SucursalID),
			Cuotas:     make([]dto.CuotaResponse, 0, len(t.Cuotas)),
		}
		for _, c := range t.Cuotas {
			plan.Cuotas = append(plan.Cuotas, dto.CuotaResponse{NumeroCuotas: c.NumeroCuotas, TasaInteres: c.TasaInteres})
		}
		resp = append(resp, plan)
	}

	// 3. Populate cache, best effort
	if s.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			if err := s.rdb.Set(context.Background(), cacheKey, b, s.ttl).Err(); err != nil {
				log.Warn().Err(err).Str("key", cacheKey).Msg("no se pudo cachear planes de tarjeta")
			}
		}
	}
	return resp, nil
}
