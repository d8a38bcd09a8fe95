package billing

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
	"github.com/jhoicas/facturacion-api/pkg/dian"
)

// PersistenceCoordinator escribe la factura en el esquema relacional y sus artefactos en el
// almacén de documentos. Son dos unidades de trabajo independientes.
type PersistenceCoordinator struct {
	txRunner BillingTxRunner
	docs     repository.DocumentRepository
	codec    ExchangeCodec
	encoding entity.PrintableEncoding
	events   EventLogger
}

// NewPersistenceCoordinator construye el coordinador. encoding es el contrato de almacenamiento del PDF.
// txRunner y docs pueden ser nil si no hay base de datos: las escrituras devuelven domain.ErrStorageUnavailable.
func NewPersistenceCoordinator(
	txRunner BillingTxRunner,
	docs repository.DocumentRepository,
	codec ExchangeCodec,
	encoding entity.PrintableEncoding,
	events EventLogger,
) *PersistenceCoordinator {
	return &PersistenceCoordinator{
		txRunner: txRunner,
		docs:     docs,
		codec:    codec,
		encoding: encoding,
		events:   events,
	}
}

// PersistInvoice guarda receptor, cabecera, vínculo, líneas (con productos) e impuestos en una sola
// transacción y devuelve el id de la factura. Cualquier error revierte todo.
// exchange puede ser nil; en ese caso el impuesto se toma de los totales de la cabecera.
func (c *PersistenceCoordinator) PersistInvoice(ctx context.Context, invoice *entity.Invoice, exchange []byte) (int64, error) {
	if invoice == nil {
		return 0, fmt.Errorf("%w: factura nula", domain.ErrInvalidInput)
	}
	if c.txRunner == nil {
		return 0, fmt.Errorf("persistir factura %s: %w", invoice.Identifier, domain.ErrStorageUnavailable)
	}
	taxes := c.taxLines(ctx, invoice, exchange)

	var invoiceID int64
	err := c.txRunner.RunBilling(ctx, func(
		partyRepo repository.PartyRepository,
		productRepo repository.ProductRepository,
		invoiceRepo repository.InvoiceRepository,
		taxRepo repository.TaxRepository,
	) error {
		party := invoice.Party
		partyID, err := partyRepo.Upsert(ctx, &party)
		if err != nil {
			return fmt.Errorf("receptor: %w", err)
		}

		id, err := invoiceRepo.Create(ctx, invoice)
		if err != nil {
			return fmt.Errorf("cabecera: %w", err)
		}
		if err := invoiceRepo.LinkParty(ctx, id, partyID); err != nil {
			return fmt.Errorf("vínculo receptor: %w", err)
		}

		for i := range invoice.Lines {
			line := invoice.Lines[i]
			productID, err := productRepo.Upsert(ctx, &entity.Product{
				Code:           line.ProductCode,
				Description:    line.Description,
				Price:          line.UnitPrice,
				DefaultTaxRate: invoice.TaxRatePercent(),
			})
			if err != nil {
				return fmt.Errorf("producto %s: %w", line.ProductCode, err)
			}
			line.ProductID = productID
			if err := invoiceRepo.CreateLine(ctx, id, &line); err != nil {
				return fmt.Errorf("línea %d: %w", line.Position, err)
			}
		}

		for _, t := range taxes {
			taxTypeID, err := taxRepo.UpsertType(ctx, t.Type, t.Rate)
			if err != nil {
				return fmt.Errorf("tipo de impuesto %s: %w", t.Type, err)
			}
			if _, err := taxRepo.LinkInvoice(ctx, id, taxTypeID, t); err != nil {
				return fmt.Errorf("impuesto %s: %w", t.Type, err)
			}
		}

		invoiceID = id
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("persistir factura %s: %w", invoice.Identifier, err)
	}
	return invoiceID, nil
}

// PersistDocuments inserta o actualiza la fila de documentos por identificador. Solo los artefactos
// provistos (no nil) se escriben; lo demás conserva su valor. Una fila con solo el identificador es válida.
func (c *PersistenceCoordinator) PersistDocuments(ctx context.Context, identifier string, invoiceID *int64, exchange, printable []byte) error {
	if identifier == "" {
		return fmt.Errorf("%w: identificador vacío", domain.ErrInvalidInput)
	}
	if c.docs == nil {
		return fmt.Errorf("persistir documentos %s: %w", identifier, domain.ErrStorageUnavailable)
	}
	doc := &entity.InvoiceDocument{Identifier: identifier, InvoiceID: invoiceID}
	if exchange != nil {
		text := string(exchange)
		doc.ExchangeText = &text
	}
	if printable != nil {
		if c.encoding.StoresBinary() {
			doc.PrintableBlob = printable
		}
		if c.encoding.StoresBase64() {
			encoded := base64.StdEncoding.EncodeToString(printable)
			doc.PrintableBase64 = &encoded
		}
	}
	if err := c.docs.Upsert(ctx, doc); err != nil {
		return fmt.Errorf("persistir documentos %s: %w", identifier, err)
	}
	return nil
}

// taxLines obtiene el desglose de impuestos: primero del XML (<Impuestos>), luego de los totales de
// su encabezado y, si no hay XML utilizable, de la cabecera canónica.
func (c *PersistenceCoordinator) taxLines(ctx context.Context, invoice *entity.Invoice, exchange []byte) []entity.TaxLine {
	rate := invoice.TaxRatePercent()
	if len(exchange) > 0 && c.codec != nil {
		doc, err := c.codec.Parse(exchange)
		switch {
		case err != nil:
			c.events.Warn(ctx, moduleBilling, "no se pudo leer el impuesto del XML, se usa la cabecera", err)
		case len(doc.Taxes) > 0:
			return doc.Taxes
		case !doc.TaxBase.IsZero() || !doc.TaxTotal.IsZero():
			return []entity.TaxLine{{
				Type:   entity.TaxTypeIVA,
				Code:   dian.TaxCodeIVA,
				Rate:   rate,
				Base:   doc.TaxBase,
				Amount: doc.TaxTotal,
			}}
		}
	}
	return []entity.TaxLine{{
		Type:   entity.TaxTypeIVA,
		Code:   dian.TaxCodeIVA,
		Rate:   rate,
		Base:   invoice.Subtotal,
		Amount: invoice.Tax,
	}}
}
