package billing

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"

	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeText = "text/plain; charset=utf-8"
)

var identifierPattern = regexp.MustCompile(`^[A-Z0-9]+-[0-9]+$`)

// RetrievalResolver obtiene el PDF de una factura recorriendo, en orden: archivo en disco, PDF en el
// almacén de documentos (binario o base64), regeneración desde el XML guardado, regeneración desde el
// XML pendiente en disco y recibo de texto. El primer paso que produce algo gana; un paso que falla
// cuenta como ausente.
type RetrievalResolver struct {
	artifacts   ArtifactStore
	docs        repository.DocumentRepository
	printer     PrintableRenderer
	validator   PrintableValidator
	coordinator *PersistenceCoordinator
	events      EventLogger
	metrics     Metrics
}

// NewRetrievalResolver construye el resolvedor. docs y validator pueden ser nil.
func NewRetrievalResolver(
	artifacts ArtifactStore,
	docs repository.DocumentRepository,
	printer PrintableRenderer,
	validator PrintableValidator,
	coordinator *PersistenceCoordinator,
	events EventLogger,
	metrics Metrics,
) *RetrievalResolver {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &RetrievalResolver{
		artifacts:   artifacts,
		docs:        docs,
		printer:     printer,
		validator:   validator,
		coordinator: coordinator,
		events:      events,
		metrics:     metrics,
	}
}

// FetchPrintable devuelve el PDF (o el recibo de texto) de la factura, o domain.ErrNotFound.
func (r *RetrievalResolver) FetchPrintable(ctx context.Context, identifier string) (*entity.PrintableArtifact, error) {
	if !identifierPattern.MatchString(identifier) {
		r.metrics.PrintableServed(entity.SourceNotFound)
		return nil, fmt.Errorf("%w: identificador inválido", domain.ErrNotFound)
	}

	if a := r.fromFilesystem(ctx, identifier); a != nil {
		return r.served(ctx, identifier, a), nil
	}
	doc := r.loadDocument(ctx, identifier)
	if a := r.fromStoredPrintable(ctx, identifier, doc); a != nil {
		return r.served(ctx, identifier, a), nil
	}
	if a := r.regenerateFromStored(ctx, identifier, doc); a != nil {
		return r.served(ctx, identifier, a), nil
	}
	if a := r.regenerateFromPending(ctx, identifier); a != nil {
		return r.served(ctx, identifier, a), nil
	}
	if a := r.fromTextReceipt(ctx, identifier); a != nil {
		return r.served(ctx, identifier, a), nil
	}

	r.metrics.PrintableServed(entity.SourceNotFound)
	r.events.Flow(ctx, entity.LevelWarning, identifier, PhaseDownload, "documento no encontrado en ningún almacén", nil)
	return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, identifier)
}

func (r *RetrievalResolver) served(ctx context.Context, identifier string, a *entity.PrintableArtifact) *entity.PrintableArtifact {
	r.metrics.PrintableServed(a.Source)
	r.events.Flow(ctx, entity.LevelInfo, identifier, PhaseDownload, "documento entregado", map[string]any{
		"source": string(a.Source),
		"bytes":  len(a.Content),
	})
	return a
}

func (r *RetrievalResolver) fromFilesystem(ctx context.Context, identifier string) *entity.PrintableArtifact {
	for _, name := range []string{identifier + ".pdf", identifier + "_copy.pdf"} {
		data, err := r.artifacts.Get(ctx, entity.AreaPrintable, name)
		if err != nil {
			r.absent(ctx, identifier, "pdf en disco", err)
			continue
		}
		if len(data) == 0 {
			continue
		}
		return pdfArtifact(identifier, data, entity.SourceFilesystem)
	}
	return nil
}

func (r *RetrievalResolver) loadDocument(ctx context.Context, identifier string) *entity.InvoiceDocument {
	if r.docs == nil {
		return nil
	}
	doc, err := r.docs.GetByIdentifier(ctx, identifier)
	if err != nil {
		r.absent(ctx, identifier, "almacén de documentos", err)
		return nil
	}
	return doc
}

func (r *RetrievalResolver) fromStoredPrintable(ctx context.Context, identifier string, doc *entity.InvoiceDocument) *entity.PrintableArtifact {
	if doc == nil {
		return nil
	}
	if len(doc.PrintableBlob) > 0 {
		if err := r.validate(doc.PrintableBlob); err != nil {
			r.events.Warn(ctx, moduleBilling, "pdf binario corrupto en almacén de documentos: "+identifier, err)
		} else {
			return pdfArtifact(identifier, doc.PrintableBlob, entity.SourceBlob)
		}
	}
	if doc.PrintableBase64 != nil && *doc.PrintableBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(*doc.PrintableBase64)
		if err == nil {
			err = r.validate(data)
		}
		if err != nil {
			r.events.Warn(ctx, moduleBilling, "pdf base64 corrupto en almacén de documentos: "+identifier, err)
			return nil
		}
		return pdfArtifact(identifier, data, entity.SourceBase64)
	}
	return nil
}

func (r *RetrievalResolver) regenerateFromStored(ctx context.Context, identifier string, doc *entity.InvoiceDocument) *entity.PrintableArtifact {
	if doc == nil || doc.ExchangeText == nil || *doc.ExchangeText == "" {
		return nil
	}
	if err := r.parseable([]byte(*doc.ExchangeText)); err != nil {
		r.events.Warn(ctx, moduleBilling, "xml guardado ilegible: "+identifier, err)
		return nil
	}
	data, _, err := r.printer.Render(ctx, []byte(*doc.ExchangeText))
	if err != nil {
		r.events.Warn(ctx, moduleBilling, "no se pudo regenerar el pdf desde el xml guardado: "+identifier, err)
		return nil
	}
	if r.coordinator != nil {
		if err := r.coordinator.PersistDocuments(ctx, identifier, nil, nil, data); err != nil {
			r.events.Warn(ctx, moduleBilling, "no se pudo guardar el pdf regenerado: "+identifier, err)
		}
	}
	return pdfArtifact(identifier, data, entity.SourceRegeneratedDB)
}

func (r *RetrievalResolver) regenerateFromPending(ctx context.Context, identifier string) *entity.PrintableArtifact {
	exchange, err := r.artifacts.Get(ctx, entity.AreaPending, identifier+".xml")
	if err != nil || len(exchange) == 0 {
		r.absent(ctx, identifier, "xml pendiente en disco", err)
		return nil
	}
	if err := r.parseable(exchange); err != nil {
		r.events.Warn(ctx, moduleBilling, "xml pendiente ilegible: "+identifier, err)
		return nil
	}
	data, _, err := r.printer.Render(ctx, exchange)
	if err != nil {
		r.events.Warn(ctx, moduleBilling, "no se pudo regenerar el pdf desde el xml en disco: "+identifier, err)
		return nil
	}
	if err := r.artifacts.Put(ctx, entity.AreaPrintable, identifier+".pdf", data); err != nil {
		r.events.Warn(ctx, moduleBilling, "no se pudo guardar el pdf regenerado en disco: "+identifier, err)
	}
	return pdfArtifact(identifier, data, entity.SourceRegeneratedFS)
}

func (r *RetrievalResolver) fromTextReceipt(ctx context.Context, identifier string) *entity.PrintableArtifact {
	data, err := r.artifacts.Get(ctx, entity.AreaPending, identifier+".txt")
	if err != nil || len(data) == 0 {
		r.absent(ctx, identifier, "recibo de texto", err)
		return nil
	}
	return &entity.PrintableArtifact{
		Content:     data,
		Filename:    identifier + ".txt",
		ContentType: contentTypeText,
		Source:      entity.SourceText,
	}
}

// parseable descarta un XML corrupto antes de regenerar: ese paso cuenta como ausente.
func (r *RetrievalResolver) parseable(exchange []byte) error {
	if r.coordinator == nil || r.coordinator.codec == nil {
		return nil
	}
	_, err := r.coordinator.codec.Parse(exchange)
	return err
}

func (r *RetrievalResolver) validate(data []byte) error {
	if r.validator == nil {
		return nil
	}
	return r.validator.Validate(data)
}

// absent registra por qué un paso no produjo nada. La ausencia simple no se registra.
func (r *RetrievalResolver) absent(ctx context.Context, identifier, step string, err error) {
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return
	}
	r.events.Warn(ctx, moduleBilling, fmt.Sprintf("paso de recuperación omitido (%s): %s", step, identifier), err)
}

func pdfArtifact(identifier string, data []byte, source entity.RetrievalSource) *entity.PrintableArtifact {
	return &entity.PrintableArtifact{
		Content:     data,
		Filename:    identifier + ".pdf",
		ContentType: contentTypePDF,
		Source:      source,
	}
}
