package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-api/internal/application/dto"
	"github.com/jhoicas/facturacion-api/internal/application/usecase"
	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

type stubLogs struct {
	got    entity.LogFilter
	events []*entity.LogEvent
	err    error
}

func (s *stubLogs) Insert(context.Context, *entity.LogEvent) error { return nil }

func (s *stubLogs) List(_ context.Context, f entity.LogFilter) ([]*entity.LogEvent, error) {
	s.got = f
	return s.events, s.err
}

func TestLogUseCase_List(t *testing.T) {
	ts := time.Date(2024, 5, 10, 14, 30, 5, 0, time.UTC)
	mongo := &stubLogs{events: []*entity.LogEvent{{
		Timestamp: ts, Level: entity.LevelInfo, Category: entity.CategoryBilling,
		Module: "factura_flow", Message: "folio asignado", InvoiceID: "FAC-1", Phase: "FOLIO_ASIGNADO",
	}}}
	uc := usecase.NewLogUseCase(map[string]repository.LogRepository{usecase.LogSourceBilling: mongo})

	resp, err := uc.List(context.Background(), usecase.LogSourceBilling, dto.LogQuery{Level: "INFO"})
	require.NoError(t, err)

	assert.Equal(t, 100, mongo.got.Limit)
	assert.Equal(t, entity.CategoryBilling, mongo.got.Category)
	assert.Equal(t, entity.LevelInfo, mongo.got.Level)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "FAC-1", resp.Events[0].InvoiceID)
	assert.Equal(t, "FOLIO_ASIGNADO", resp.Events[0].Phase)
}

func TestLogUseCase_DBSourceHasNoCategory(t *testing.T) {
	pg := &stubLogs{}
	uc := usecase.NewLogUseCase(map[string]repository.LogRepository{usecase.LogSourceDB: pg, usecase.LogSourceSystem: nil})

	_, err := uc.List(context.Background(), usecase.LogSourceDB, dto.LogQuery{Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, pg.got.Category)
	assert.Equal(t, 5, pg.got.Limit)

	_, err = uc.List(context.Background(), usecase.LogSourceSystem, dto.LogQuery{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLogUseCase_Errors(t *testing.T) {
	uc := usecase.NewLogUseCase(map[string]repository.LogRepository{
		usecase.LogSourceSystem: &stubLogs{err: errors.New("timeout")},
	})

	_, err := uc.List(context.Background(), usecase.LogSourceSystem, dto.LogQuery{})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	_, err = uc.List(context.Background(), usecase.LogSourceSystem, dto.LogQuery{Limit: 5000})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.List(context.Background(), usecase.LogSourceSystem, dto.LogQuery{Level: "VERBOSE"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
