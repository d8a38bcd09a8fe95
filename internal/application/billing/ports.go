package billing

import (
	"context"
	"time"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción con los repos relacionales de facturación.
// Si fn retorna error se hace rollback de todo.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		partyRepo repository.PartyRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
		taxRepo repository.TaxRepository,
	) error) error
}

// FolioCounter contador durable del último folio emitido.
type FolioCounter interface {
	Read() (int64, error)
	Write(value int64) error
}

// FolioReader autoridad relacional del folio (mayor folio guardado).
type FolioReader interface {
	MaxFolio(ctx context.Context) (int64, error)
}

// FolioLocker candado entre procesos para la asignación de folios. Es opcional.
type FolioLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// ExchangeCodec genera y lee el documento de intercambio (XML).
type ExchangeCodec interface {
	Render(invoice *entity.Invoice) ([]byte, error)
	Parse(data []byte) (*entity.ExchangeDocument, error)
}

// PrintableRenderer genera el PDF a partir del documento de intercambio.
type PrintableRenderer interface {
	Render(ctx context.Context, exchange []byte) (pdf []byte, b64 string, err error)
}

// PrintableValidator verifica que unos bytes sean un PDF utilizable.
type PrintableValidator interface {
	Validate(data []byte) error
}

// ArtifactStore almacén de archivos (disco, S3 o GCS). Get devuelve domain.ErrNotFound si no existe.
type ArtifactStore interface {
	Put(ctx context.Context, area entity.ArtifactArea, name string, data []byte) error
	Get(ctx context.Context, area entity.ArtifactArea, name string) ([]byte, error)
	List(ctx context.Context, area entity.ArtifactArea) ([]entity.ArtifactInfo, error)
}

// SubmissionQueue deja el documento listo para un envío futuro a la DIAN. Devuelve la referencia creada.
type SubmissionQueue interface {
	Enqueue(ctx context.Context, identifier string, exchange []byte) (string, error)
}

// EventLogger bitácora estructurada. Nunca devuelve errores: fallar al registrar no afecta el flujo.
type EventLogger interface {
	Flow(ctx context.Context, level entity.LogLevel, invoiceID, phase, msg string, data map[string]any)
	Info(ctx context.Context, module, msg string, data map[string]any)
	Warn(ctx context.Context, module, msg string, err error)
	Error(ctx context.Context, module, msg string, err error)
}

// Metrics contadores de negocio.
type Metrics interface {
	FolioAllocated()
	InvoiceIssued(outcome string)
	PrintableServed(source entity.RetrievalSource)
}

// Fases registradas en el flujo de facturación.
const (
	PhaseStart      = "INICIO_SOLICITUD"
	PhaseValidation = "VALIDACION"
	PhaseFolio      = "FOLIO_ASIGNADO"
	PhaseExchange   = "XML_GENERADO"
	PhasePrintable  = "PDF_GENERADO"
	PhaseInvoiceDB  = "FACTURA_DB"
	PhaseDocumentDB = "DOCUMENTO_DB"
	PhaseSubmission = "PENDIENTE_DIAN"
	PhaseDone       = "FINALIZADO"
	PhaseError      = "ERROR"
	PhaseCancel     = "CANCELACION"
	PhaseDownload   = "DESCARGA"
)

// Módulo de los eventos de sistema emitidos por este paquete.
const moduleBilling = "facturacion"

type nopMetrics struct{}

func (nopMetrics) FolioAllocated()                        {}
func (nopMetrics) InvoiceIssued(string)                   {}
func (nopMetrics) PrintableServed(entity.RetrievalSource) {}
