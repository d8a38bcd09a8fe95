package billing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jhoicas/facturacion-api/internal/application/dto"
	"github.com/jhoicas/facturacion-api/internal/application/validation"
	"github.com/jhoicas/facturacion-api/internal/domain"
	domainbilling "github.com/jhoicas/facturacion-api/internal/domain/billing"
	domaindian "github.com/jhoicas/facturacion-api/internal/domain/dian"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/pkg/dian"
	"github.com/jhoicas/facturacion-api/pkg/requestid"
	"github.com/shopspring/decimal"
)

// IssueConfig reglas fijas de emisión.
type IssueConfig struct {
	Prefix   string
	TaxRate  decimal.Decimal
	Currency string
	Issuer   entity.Issuer
	DueDays  int
}

// IssueResult resultado de una emisión. Outcome dice si todo quedó guardado o qué faltó.
type IssueResult struct {
	Folio         entity.Folio
	Identifier    string
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	AmountInWords string
	InvoiceDBID   int64 // 0 si la factura no se guardó
	PrintableName string
	Outcome       Outcome
}

// IssueInvoiceUseCase orquesta la emisión: folio, composición, XML, PDF, persistencia y cola DIAN.
// Corre de forma síncrona dentro de la solicitud.
type IssueInvoiceUseCase struct {
	allocator   *FolioAllocator
	coordinator *PersistenceCoordinator
	codec       ExchangeCodec
	printer     PrintableRenderer
	artifacts   ArtifactStore
	submissions SubmissionQueue
	events      EventLogger
	metrics     Metrics
	cfg         IssueConfig
	now         func() time.Time
}

// IssueOption configura dependencias opcionales del caso de uso.
type IssueOption func(*IssueInvoiceUseCase)

// WithSubmissionQueue habilita la cola de envío a la DIAN.
func WithSubmissionQueue(q SubmissionQueue) IssueOption {
	return func(uc *IssueInvoiceUseCase) { uc.submissions = q }
}

// WithIssueMetrics registra el resultado de cada emisión.
func WithIssueMetrics(m Metrics) IssueOption {
	return func(uc *IssueInvoiceUseCase) { uc.metrics = m }
}

// WithClock fija el reloj (tests).
func WithClock(now func() time.Time) IssueOption {
	return func(uc *IssueInvoiceUseCase) { uc.now = now }
}

// NewIssueInvoiceUseCase construye el caso de uso.
func NewIssueInvoiceUseCase(
	allocator *FolioAllocator,
	coordinator *PersistenceCoordinator,
	codec ExchangeCodec,
	printer PrintableRenderer,
	artifacts ArtifactStore,
	events EventLogger,
	cfg IssueConfig,
	opts ...IssueOption,
) *IssueInvoiceUseCase {
	uc := &IssueInvoiceUseCase{
		allocator:   allocator,
		coordinator: coordinator,
		codec:       codec,
		printer:     printer,
		artifacts:   artifacts,
		events:      events,
		metrics:     nopMetrics{},
		cfg:         cfg,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Issue emite una factura. Solo devuelve error si la entrada es inválida (domain.ErrInvalidInput)
// o si no se pudo componer la factura; los fallos de almacenamiento o de render quedan en Outcome.
func (uc *IssueInvoiceUseCase) Issue(ctx context.Context, in dto.IssueInvoiceRequest) (*IssueResult, error) {
	ctx, _ = requestid.Ensure(ctx)
	uc.events.Flow(ctx, entity.LevelInfo, "", PhaseStart, "recepción de datos para generar factura",
		map[string]any{"carrito_items": len(in.Cart)})

	// ── 1. Validar entrada (antes de asignar folio) ───────────────────────────
	items, err := uc.validate(in)
	if err != nil {
		uc.events.Flow(ctx, entity.LevelWarning, "", PhaseValidation, "solicitud rechazada", map[string]any{"error": err.Error()})
		uc.metrics.InvoiceIssued(string(OutcomeFailed))
		return nil, err
	}

	// ── 2. Folio ──────────────────────────────────────────────────────────────
	folio := uc.allocator.Next(ctx)
	identifier := folio.Identifier(uc.cfg.Prefix)
	uc.events.Flow(ctx, entity.LevelInfo, identifier, PhaseFolio, "folio asignado", map[string]any{"folio": int64(folio)})

	// ── 3. Factura canónica ───────────────────────────────────────────────────
	invoice, err := domainbilling.Compose(domainbilling.ComposeInput{
		Folio:  folio,
		Prefix: uc.cfg.Prefix,
		Issuer: uc.cfg.Issuer,
		Party: entity.Party{
			TaxID:   in.Party.TaxID,
			DocType: dian.IdentificationTypeFor(in.Party.TaxID),
			Name:    in.Party.Name,
			Email:   in.Party.Email,
		},
		Items:    items,
		TaxRate:  uc.cfg.TaxRate,
		Currency: uc.cfg.Currency,
		IssuedAt: uc.now(),
		DueDays:  uc.cfg.DueDays,
	})
	if err == nil {
		err = domaindian.ValidateInvoice(invoice)
	}
	if err != nil {
		uc.events.Flow(ctx, entity.LevelError, identifier, PhaseError, "no se pudo componer la factura", map[string]any{"error": err.Error()})
		uc.metrics.InvoiceIssued(string(OutcomeFailed))
		return nil, fmt.Errorf("componer factura %s: %w", identifier, err)
	}

	result := &IssueResult{
		Folio:         folio,
		Identifier:    identifier,
		Subtotal:      invoice.Subtotal,
		Tax:           invoice.Tax,
		Total:         invoice.Total,
		AmountInWords: invoice.AmountInWords,
		Outcome:       Outcome{Status: OutcomeOK},
	}

	// ── 4. Documento de intercambio ───────────────────────────────────────────
	exchange := uc.renderExchange(ctx, invoice, &result.Outcome)

	// ── 5. PDF (o recibo de texto si falla) ───────────────────────────────────
	printable := uc.renderPrintable(ctx, invoice, exchange, result)

	// ── 6. Persistencia relacional (transacción única) ────────────────────────
	var dbID *int64
	id, err := uc.coordinator.PersistInvoice(ctx, invoice, exchange)
	if err != nil {
		uc.events.Flow(ctx, entity.LevelError, identifier, PhaseError, "no se insertó la factura en BD", map[string]any{"error": err.Error()})
		result.Outcome.Degrade(ReasonInvoiceNotStored)
		uc.keepFailed(ctx, identifier, exchange)
	} else {
		dbID = &id
		result.InvoiceDBID = id
		uc.events.Flow(ctx, entity.LevelInfo, identifier, PhaseInvoiceDB, "factura insertada en BD", map[string]any{"factura_db_id": id})
	}

	// ── 7. Almacén de documentos (independiente de la transacción) ───────────
	if err := uc.coordinator.PersistDocuments(ctx, identifier, dbID, exchange, printable); err != nil {
		uc.events.Flow(ctx, entity.LevelError, identifier, PhaseError, "fallo guardando documentos", map[string]any{"error": err.Error()})
		result.Outcome.Degrade(ReasonDocumentsNotStored)
	} else {
		uc.events.Flow(ctx, entity.LevelInfo, identifier, PhaseDocumentDB, "documento almacenado",
			map[string]any{"xml": exchange != nil, "pdf": printable != nil})
	}

	// ── 8. Cola de envío DIAN ─────────────────────────────────────────────────
	if uc.submissions != nil && exchange != nil {
		ref, err := uc.submissions.Enqueue(ctx, identifier, exchange)
		if err != nil {
			uc.events.Flow(ctx, entity.LevelWarning, identifier, PhaseSubmission, "no se pudo encolar el envío DIAN", map[string]any{"error": err.Error()})
			result.Outcome.Degrade(ReasonSubmissionNotQueued)
		} else {
			uc.events.Flow(ctx, entity.LevelInfo, identifier, PhaseSubmission, "documento pendiente de envío", map[string]any{"ref": ref})
		}
	}

	uc.events.Flow(ctx, entity.LevelInfo, identifier, PhaseDone, "proceso completado", map[string]any{
		"total":   invoice.Total.String(),
		"outcome": string(result.Outcome.Status),
		"reasons": result.Outcome.Reasons,
	})
	uc.metrics.InvoiceIssued(string(result.Outcome.Status))
	return result, nil
}

func (uc *IssueInvoiceUseCase) validate(in dto.IssueInvoiceRequest) ([]domainbilling.CartItem, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	items := make([]domainbilling.CartItem, 0, len(in.Cart))
	for i, c := range in.Cart {
		if c.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: carrito[%d].precio no puede ser negativo", domain.ErrInvalidInput, i)
		}
		items = append(items, domainbilling.CartItem{
			Description: c.Description,
			Quantity:    decimal.NewFromInt(c.Quantity),
			UnitPrice:   c.UnitPrice,
		})
	}
	return items, nil
}

func (uc *IssueInvoiceUseCase) renderExchange(ctx context.Context, invoice *entity.Invoice, outcome *Outcome) []byte {
	exchange, err := uc.codec.Render(invoice)
	if err != nil {
		uc.events.Flow(ctx, entity.LevelError, invoice.Identifier, PhaseError, "fallo generando XML", map[string]any{"error": err.Error()})
		outcome.Degrade(ReasonExchangeNotRendered)
		return nil
	}
	name := invoice.Identifier + ".xml"
	if err := uc.artifacts.Put(ctx, entity.AreaPending, name, exchange); err != nil {
		uc.events.Flow(ctx, entity.LevelError, invoice.Identifier, PhaseError, "fallo guardando XML", map[string]any{"error": err.Error()})
		outcome.Degrade(ReasonExchangeNotStored)
		return exchange
	}
	uc.events.Flow(ctx, entity.LevelInfo, invoice.Identifier, PhaseExchange, "XML generado y almacenado",
		map[string]any{"xml_file": name, "xml_len": len(exchange)})
	return exchange
}

// renderPrintable genera y guarda el PDF. Si el archivo está bloqueado reintenta una vez como
// {id}_copy.pdf. Si no hay PDF deja un recibo de texto para la descarga.
func (uc *IssueInvoiceUseCase) renderPrintable(ctx context.Context, invoice *entity.Invoice, exchange []byte, result *IssueResult) []byte {
	id := invoice.Identifier
	var printable []byte
	var err error
	if exchange == nil {
		err = fmt.Errorf("%w: sin documento de intercambio", domain.ErrRender)
	} else {
		printable, _, err = uc.printer.Render(ctx, exchange)
	}
	if err != nil {
		uc.events.Flow(ctx, entity.LevelError, id, PhaseError, "fallo generando PDF", map[string]any{"error": err.Error()})
		result.Outcome.Degrade(ReasonPrintableNotRendered)
		uc.writeReceipt(ctx, invoice)
		return nil
	}

	name := id + ".pdf"
	err = uc.artifacts.Put(ctx, entity.AreaPrintable, name, printable)
	if err != nil && errors.Is(err, fs.ErrPermission) {
		name = id + "_copy.pdf"
		retryErr := uc.artifacts.Put(ctx, entity.AreaPrintable, name, printable)
		if retryErr == nil {
			uc.events.Flow(ctx, entity.LevelWarning, id, PhasePrintable, "PDF bloqueado, se generó copia", map[string]any{"pdf": name})
			result.PrintableName = name
			return printable
		}
		err = errors.Join(err, retryErr)
	}
	if err != nil {
		uc.events.Flow(ctx, entity.LevelError, id, PhaseError, "fallo guardando PDF", map[string]any{"error": err.Error()})
		result.Outcome.Degrade(ReasonPrintableNotStored)
		return printable
	}
	result.PrintableName = name
	uc.events.Flow(ctx, entity.LevelInfo, id, PhasePrintable, "PDF generado", map[string]any{"pdf": name, "bytes": len(printable)})
	return printable
}

func (uc *IssueInvoiceUseCase) writeReceipt(ctx context.Context, invoice *entity.Invoice) {
	if err := uc.artifacts.Put(ctx, entity.AreaPending, invoice.Identifier+".txt", RenderTextReceipt(invoice)); err != nil {
		uc.events.Error(ctx, moduleBilling, "no se pudo guardar el recibo de texto "+invoice.Identifier, err)
	}
}

// keepFailed copia el XML al área de error para reproceso manual cuando la factura no se guardó.
func (uc *IssueInvoiceUseCase) keepFailed(ctx context.Context, identifier string, exchange []byte) {
	if exchange == nil {
		return
	}
	if err := uc.artifacts.Put(ctx, entity.AreaFailed, identifier+".xml", exchange); err != nil {
		uc.events.Error(ctx, moduleBilling, "no se pudo copiar el XML al área de error "+identifier, err)
	}
}
