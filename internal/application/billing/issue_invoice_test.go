package billing_test

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/internal/application/dto"
	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/infrastructure/dian"
)

type issueFixture struct {
	counter   *memCounter
	db        *memDB
	docs      *memDocs
	artifacts *memArtifacts
	printer   *fakePrinter
	queue     *fakeQueue
	events    *recEvents
	metrics   *countMetrics
	uc        *billing.IssueInvoiceUseCase
}

func newIssueFixture() *issueFixture {
	f := &issueFixture{
		counter:   &memCounter{},
		db:        newMemDB(),
		docs:      newMemDocs(),
		artifacts: newMemArtifacts(),
		printer:   &fakePrinter{},
		queue:     &fakeQueue{},
		events:    &recEvents{},
		metrics:   newCountMetrics(),
	}
	codec := dian.NewExchangeCodec()
	allocator := billing.NewFolioAllocator(f.counter, f.db, f.events)
	coord := billing.NewPersistenceCoordinator(f.db, f.docs, codec, entity.EncodingBoth, f.events)
	f.uc = billing.NewIssueInvoiceUseCase(allocator, coord, codec, f.printer, f.artifacts, f.events,
		billing.IssueConfig{
			Prefix:   "FAC",
			TaxRate:  decimal.RequireFromString("0.19"),
			Currency: "COP",
			Issuer:   entity.Issuer{NIT: "22222222", Name: "Pizzeria", BranchCode: "Pizzeria 1", ResolutionPrefix: "PZZA"},
		},
		billing.WithSubmissionQueue(f.queue),
		billing.WithIssueMetrics(f.metrics),
		billing.WithClock(func() time.Time { return time.Date(2024, 5, 10, 14, 30, 5, 0, time.UTC) }),
	)
	return f
}

func validRequest() dto.IssueInvoiceRequest {
	return dto.IssueInvoiceRequest{
		Party: dto.PartyRequest{Name: "Ana Pérez", TaxID: "1020304050", Email: "ana@example.com"},
		Cart: []dto.CartItemRequest{
			{Description: "Pizza Hawaiana", Quantity: 2, UnitPrice: decimal.NewFromInt(35000)},
			{Description: "Gaseosa", Quantity: 1, UnitPrice: decimal.NewFromInt(8000)},
		},
	}
}

func TestIssue_HappyPath(t *testing.T) {
	f := newIssueFixture()

	res, err := f.uc.Issue(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, entity.Folio(1), res.Folio)
	assert.Equal(t, "FAC-1", res.Identifier)
	assert.True(t, res.Subtotal.Equal(decimal.NewFromInt(78000)))
	assert.True(t, res.Tax.Equal(decimal.NewFromInt(14820)))
	assert.True(t, res.Total.Equal(decimal.NewFromInt(92820)))
	assert.NotEmpty(t, res.AmountInWords)
	assert.True(t, res.Outcome.OK(), "razones: %v", res.Outcome.Reasons)
	assert.NotZero(t, res.InvoiceDBID)
	assert.Equal(t, "FAC-1.pdf", res.PrintableName)

	assert.True(t, f.artifacts.has(entity.AreaPending, "FAC-1.xml"))
	assert.True(t, f.artifacts.has(entity.AreaPrintable, "FAC-1.pdf"))
	assert.Equal(t, []string{"FAC-1"}, f.queue.queue)

	row := f.docs.rows["FAC-1"]
	require.NotNil(t, row)
	assert.NotNil(t, row.ExchangeText)
	assert.NotNil(t, row.PrintableBlob)
	assert.Equal(t, res.InvoiceDBID, *row.InvoiceID)

	assert.Equal(t, []string{
		billing.PhaseStart, billing.PhaseFolio, billing.PhaseExchange, billing.PhasePrintable,
		billing.PhaseInvoiceDB, billing.PhaseDocumentDB, billing.PhaseSubmission, billing.PhaseDone,
	}, f.events.phases())
	assert.Equal(t, 1, f.metrics.issued["ok"])
}

func TestIssue_ConsecutiveFolios(t *testing.T) {
	f := newIssueFixture()

	first, err := f.uc.Issue(context.Background(), validRequest())
	require.NoError(t, err)
	second, err := f.uc.Issue(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, first.Folio+1, second.Folio)
	assert.Len(t, f.db.state.parties, 1)
}

func TestIssue_ValidationRejectsBeforeAllocation(t *testing.T) {
	f := newIssueFixture()

	req := validRequest()
	req.Cart = nil
	_, err := f.uc.Issue(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	req = validRequest()
	req.Party.Name = ""
	_, err = f.uc.Issue(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	req = validRequest()
	req.Cart[0].UnitPrice = decimal.NewFromInt(-1)
	_, err = f.uc.Issue(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Empty(t, f.counter.writes)
	assert.Empty(t, f.db.state.invoices)
	assert.Empty(t, f.docs.rows)
	assert.Equal(t, 3, f.metrics.issued["failed"])
}

func TestIssue_RelationalOutageDegrades(t *testing.T) {
	f := newIssueFixture()
	f.db.failBegin = errors.New("conexión rechazada")

	res, err := f.uc.Issue(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, billing.OutcomeDegraded, res.Outcome.Status)
	assert.Contains(t, res.Outcome.Reasons, billing.ReasonInvoiceNotStored)
	assert.Zero(t, res.InvoiceDBID)
	assert.Empty(t, f.db.state.invoices)

	// los artefactos se guardan igual y el XML queda en el área de error
	assert.True(t, f.artifacts.has(entity.AreaFailed, "FAC-1.xml"))
	row := f.docs.rows["FAC-1"]
	require.NotNil(t, row)
	assert.Nil(t, row.InvoiceID)
	assert.NotNil(t, row.ExchangeText)
	assert.Contains(t, f.events.phases(), billing.PhaseError)
}

func TestIssue_PrintableFailureLeavesTextReceipt(t *testing.T) {
	f := newIssueFixture()
	f.printer.err = domain.ErrRender

	res, err := f.uc.Issue(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Contains(t, res.Outcome.Reasons, billing.ReasonPrintableNotRendered)
	assert.True(t, f.artifacts.has(entity.AreaPending, "FAC-1.txt"))
	assert.NotZero(t, res.InvoiceDBID)
	assert.Nil(t, f.docs.rows["FAC-1"].PrintableBlob)
}

func TestIssue_LockedPrintableRetriesAsCopy(t *testing.T) {
	f := newIssueFixture()
	f.artifacts.putErrs["FAC-1.pdf"] = fs.ErrPermission

	res, err := f.uc.Issue(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, res.Outcome.OK())
	assert.Equal(t, "FAC-1_copy.pdf", res.PrintableName)
	assert.True(t, f.artifacts.has(entity.AreaPrintable, "FAC-1_copy.pdf"))
}

func TestIssue_DocumentStoreOutageDegrades(t *testing.T) {
	f := newIssueFixture()
	f.docs.err = errors.New("tabla bloqueada")
	f.queue.err = errors.New("disco lleno")

	res, err := f.uc.Issue(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, billing.OutcomeDegraded, res.Outcome.Status)
	assert.ElementsMatch(t, []string{billing.ReasonDocumentsNotStored, billing.ReasonSubmissionNotQueued}, res.Outcome.Reasons)
	assert.NotZero(t, res.InvoiceDBID)
}
