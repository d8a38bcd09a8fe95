package http

import (
	"context"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/internal/application/dto"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

// Contratos mínimos que los handlers necesitan de los casos de uso.

type InvoiceIssuer interface {
	Issue(ctx context.Context, in dto.IssueInvoiceRequest) (*billing.IssueResult, error)
}

type CartCanceller interface {
	Cancel(ctx context.Context, in dto.CancelCartRequest) error
}

type PendingLister interface {
	ListPending(ctx context.Context) ([]dto.PendingInvoiceResponse, error)
}

type DocumentStatsReader interface {
	Stats(ctx context.Context) (*dto.DocumentStatsResponse, error)
}

type PrintableFetcher interface {
	FetchPrintable(ctx context.Context, identifier string) (*entity.PrintableArtifact, error)
}

type LogLister interface {
	List(ctx context.Context, source string, q dto.LogQuery) (*dto.LogListResponse, error)
}
