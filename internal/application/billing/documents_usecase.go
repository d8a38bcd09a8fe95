package billing

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/facturacion-api/internal/application/dto"
	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
	"golang.org/x/sync/errgroup"
)

const recentDocuments = 10

// DocumentsUseCase listados y diagnóstico de documentos emitidos.
type DocumentsUseCase struct {
	artifacts ArtifactStore
	docs      repository.DocumentRepository
}

// NewDocumentsUseCase construye el caso de uso. docs puede ser nil si no hay base de datos.
func NewDocumentsUseCase(artifacts ArtifactStore, docs repository.DocumentRepository) *DocumentsUseCase {
	return &DocumentsUseCase{artifacts: artifacts, docs: docs}
}

// ListPending devuelve los XML del área de pendientes, del más reciente al más antiguo.
func (uc *DocumentsUseCase) ListPending(ctx context.Context) ([]dto.PendingInvoiceResponse, error) {
	infos, err := uc.artifacts.List(ctx, entity.AreaPending)
	if err != nil {
		return nil, fmt.Errorf("listar pendientes: %w", err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ModifiedAt.After(infos[j].ModifiedAt) })

	out := make([]dto.PendingInvoiceResponse, 0, len(infos))
	for _, info := range infos {
		if !strings.HasSuffix(info.Name, ".xml") {
			continue
		}
		out = append(out, dto.PendingInvoiceResponse{
			File:       info.Name,
			InvoiceID:  strings.TrimSuffix(info.Name, ".xml"),
			Size:       info.Size,
			ModifiedAt: info.ModifiedAt,
		})
	}
	return out, nil
}

// Stats cuenta documentos y trae los últimos en paralelo.
func (uc *DocumentsUseCase) Stats(ctx context.Context) (*dto.DocumentStatsResponse, error) {
	if uc.docs == nil {
		return nil, fmt.Errorf("%w: almacén de documentos no configurado", domain.ErrStorageUnavailable)
	}
	var (
		counts *entity.DocumentStats
		recent []entity.DocumentSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := uc.docs.Counts(gctx)
		counts = c
		return err
	})
	g.Go(func() error {
		r, err := uc.docs.Recent(gctx, recentDocuments)
		recent = r
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("estadísticas de documentos: %w", err)
	}

	resp := &dto.DocumentStatsResponse{
		Total:        counts.Total,
		WithExchange: counts.WithExchange,
		WithBlob:     counts.WithBlob,
		WithBase64:   counts.WithBase64,
		Recent:       make([]dto.DocumentSummaryResponse, 0, len(recent)),
	}
	for _, r := range recent {
		resp.Recent = append(resp.Recent, dto.DocumentSummaryResponse{
			InvoiceID:   r.Identifier,
			DBID:        r.InvoiceID,
			HasExchange: r.HasExchange,
			HasBlob:     r.HasBlob,
			HasBase64:   r.HasBase64,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return resp, nil
}
