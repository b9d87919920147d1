package dto

import (
	"time"

	"github.com/google/uuid"
)

const fechaLayout = "2006-01-02"

// Paginacion is bound from ?page=&limit= on every list endpoint.
type Paginacion struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=20"`
}

// Normalize clamps page/limit to their defaults when out of range.
func (p *Paginacion) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 20
	}
}

func (p Paginacion) Offset() int { return (p.Page - 1) * p.Limit }

type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// ListResponse is the data payload of every paginated endpoint.
type ListResponse[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

func NewListResponse[T any](items []T, p Paginacion, total int64) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	pages := int64(0)
	if p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return ListResponse[T]{
		Items:      items,
		Pagination: PaginationMeta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages},
	}
}

// RangoFechas holds an optional inclusive date range from the query string.
type RangoFechas struct {
	FechaDesde string `form:"fecha_desde" validate:"omitempty,datetime=2006-01-02"`
	FechaHasta string `form:"fecha_hasta" validate:"omitempty,datetime=2006-01-02"`
}

// Limites returns [desde, hasta) in local time; hasta is the day after
// FechaHasta so the whole last day is included. Unparseable values are ignored.
func (r RangoFechas) Limites() (desde, hasta *time.Time) {
	if t, err := time.ParseInLocation(fechaLayout, r.FechaDesde, time.Local); err == nil {
		desde = &t
	}
	if t, err := time.ParseInLocation(fechaLayout, r.FechaHasta, time.Local); err == nil {
		t = t.AddDate(0, 0, 1)
		hasta = &t
	}
	return desde, hasta
}

// CancelarRequest is the body of every cancel endpoint.
type CancelarRequest struct {
	Motivo *string `json:"motivo" validate:"omitempty,max=500"`
}

func FormatTime(t time.Time) string { return t.Format(time.RFC3339) }

func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}

func UUIDPtr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
