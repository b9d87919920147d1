package service

import (
	"context"
	"fmt"
	"path/filepath"

	"lubripos/internal/apierror"
	"lubripos/internal/dto"
	"lubripos/internal/model"
	"lubripos/internal/repository"
	"lubripos/internal/worker"

	"github.com/google/uuid"
)

// ComprobanteService exposes the receipts the async worker produces.
type ComprobanteService interface {
	Obtener(ctx context.Context, origenTipo string, origenID uuid.UUID) (*dto.ComprobanteResponse, error)
	// ObtenerPDFPath returns the absolute path of the generated PDF.
	ObtenerPDFPath(ctx context.Context, origenTipo string, origenID uuid.UUID) (string, error)
	// Regenerar enqueues a fresh receipt job for the record.
	Regenerar(ctx context.Context, origenTipo string, origenID uuid.UUID) error
}

type comprobanteService struct {
	repo        repository.ComprobanteRepository
	dispatcher  *worker.Dispatcher
	storagePath string
}

func NewComprobanteService(repo repository.ComprobanteRepository, dispatcher *worker.Dispatcher, storagePath string) ComprobanteService {
	return &comprobanteService{repo: repo, dispatcher: dispatcher, storagePath: storagePath}
}

func (s *comprobanteService) Obtener(ctx context.Context, origenTipo string, origenID uuid.UUID) (*dto.ComprobanteResponse, error) {
	comp, err := s.repo.FindByOrigen(ctx, origenTipo, origenID)
	if err != nil {
		return nil, notFound(err, "Comprobante no encontrado")
	}
	return comprobanteToResponse(comp), nil
}

func (s *comprobanteService) ObtenerPDFPath(ctx context.Context, origenTipo string, origenID uuid.UUID) (string, error) {
	comp, err := s.repo.FindByOrigen(ctx, origenTipo, origenID)
	if err != nil {
		return "", notFound(err, "Comprobante no encontrado")
	}
	if comp.PDFPath == nil || *comp.PDFPath == "" {
		return "", apierror.NotFound(fmt.Sprintf("PDF no disponible, el comprobante está en estado '%s'", comp.Estado))
	}
	return filepath.Join(s.storagePath, filepath.Clean("/"+*comp.PDFPath)), nil
}

func (s *comprobanteService) Regenerar(ctx context.Context, origenTipo string, origenID uuid.UUID) error {
	if s.dispatcher == nil {
		return apierror.Validation("La generación de comprobantes no está disponible")
	}
	return s.dispatcher.EnqueueComprobante(ctx, worker.ComprobanteJobPayload{
		OrigenTipo: origenTipo,
		OrigenID:   origenID.String(),
	})
}

func comprobanteToResponse(c *model.Comprobante) *dto.ComprobanteResponse {
	resp := &dto.ComprobanteResponse{
		ID:         c.ID.String(),
		OrigenTipo: c.OrigenTipo,
		OrigenID:   c.OrigenID.String(),
		Numero:     c.Numero,
		Estado:     c.Estado,
		Email:      c.Email,
		Intentos:   c.Intentos,
		LastError:  c.LastError,
		CreatedAt:  dto.FormatTime(c.CreatedAt),
		UpdatedAt:  dto.FormatTime(c.UpdatedAt),
	}
	if c.PDFPath != nil && *c.PDFPath != "" {
		u := fmt.Sprintf("/v1/%s/%s/comprobante/pdf", rutaOrigen(c.OrigenTipo), c.OrigenID)
		resp.PDFUrl = &u
	}
	return resp
}

func rutaOrigen(origenTipo string) string {
	if origenTipo == model.RefServicio {
		return "servicios"
	}
	return "ventas"
}
