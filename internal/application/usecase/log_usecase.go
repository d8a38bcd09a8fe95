package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/facturacion-api/internal/application/dto"
	"github.com/jhoicas/facturacion-api/internal/application/validation"
	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

// Fuentes de bitácora consultables.
const (
	LogSourceBilling = "facturacion"
	LogSourceSystem  = "sistema"
	LogSourceDB      = "db"
)

// LogUseCase consulta las bitácoras persistidas (flujos documentales y tabla relacional).
type LogUseCase struct {
	sources map[string]repository.LogRepository
}

// NewLogUseCase construye el caso de uso. Las fuentes nil se ignoran (no configuradas).
func NewLogUseCase(sources map[string]repository.LogRepository) *LogUseCase {
	clean := make(map[string]repository.LogRepository, len(sources))
	for name, repo := range sources {
		if repo != nil {
			clean[name] = repo
		}
	}
	return &LogUseCase{sources: clean}
}

// List devuelve los eventos más recientes de la fuente indicada.
func (uc *LogUseCase) List(ctx context.Context, source string, q dto.LogQuery) (*dto.LogListResponse, error) {
	if err := validation.Struct(q); err != nil {
		return nil, err
	}
	repo, ok := uc.sources[source]
	if !ok {
		return nil, fmt.Errorf("%w: bitácora %q no configurada", domain.ErrNotFound, source)
	}
	q.DefaultLimit()

	filter := entity.LogFilter{
		Level:     entity.LogLevel(q.Level),
		Module:    q.Module,
		InvoiceID: q.InvoiceID,
		Limit:     q.Limit,
	}
	switch source {
	case LogSourceBilling:
		filter.Category = entity.CategoryBilling
	case LogSourceSystem:
		filter.Category = entity.CategorySystem
	}

	events, err := repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: consultar bitácora %s: %v", domain.ErrStorageUnavailable, source, err)
	}
	resp := &dto.LogListResponse{Source: source, Count: len(events), Events: make([]dto.LogEventResponse, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, dto.LogEventResponse{
			Timestamp: e.Timestamp,
			Level:     string(e.Level),
			Category:  string(e.Category),
			Module:    e.Module,
			Message:   e.Message,
			Error:     e.ErrorDetail,
			InvoiceID: e.InvoiceID,
			Phase:     e.Phase,
			RequestID: e.RequestID,
			Data:      e.Data,
		})
	}
	return resp, nil
}
