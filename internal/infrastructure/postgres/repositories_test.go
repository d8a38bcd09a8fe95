package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/facturacion-api/internal/domain"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
	"github.com/jhoicas/facturacion-api/internal/infrastructure/postgres"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestPartyRepo_Upsert(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO parties .* ON CONFLICT \(tax_id\)`).
		WithArgs("900123456", entity.DocTypeNIT, "Cliente SA", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	party := &entity.Party{TaxID: "900123456", DocType: entity.DocTypeNIT, Name: "Cliente SA"}
	id, err := postgres.NewPartyRepository(mock).Upsert(context.Background(), party)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, int64(7), party.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_Create_FolioDuplicado(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO invoices`).
		WithArgs(anyArgs(invoiceColumns)...).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	inv := &entity.Invoice{Folio: 12, Identifier: "FAC-12", Prefix: "FAC"}
	_, err := postgres.NewInvoiceRepository(mock).Create(context.Background(), inv)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_MaxFolio(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(folio\), 0\) FROM invoices`).
		WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow(int64(41)))

	max, err := postgres.NewInvoiceRepository(mock).MaxFolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(41), max)
}

func TestTaxRepo_LinkInvoice_InsertOrIgnore(t *testing.T) {
	mock := newMock(t)
	line := entity.TaxLine{Type: entity.TaxTypeIVA, Rate: decimal.NewFromInt(19), Base: decimal.NewFromInt(78000), Amount: decimal.NewFromInt(14820)}

	mock.ExpectExec(`INSERT INTO invoice_taxes .* ON CONFLICT \(invoice_id, tax_type_id\) DO NOTHING`).
		WithArgs(int64(1), int64(3), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO invoice_taxes`).
		WithArgs(int64(1), int64(3), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	repo := postgres.NewTaxRepository(mock)
	inserted, err := repo.LinkInvoice(context.Background(), 1, 3, line)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.LinkInvoice(context.Background(), 1, 3, line)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_Upsert_Coalesce(t *testing.T) {
	mock := newMock(t)
	text := "<Factura/>"
	mock.ExpectExec(`ON CONFLICT \(identifier\) DO UPDATE SET\s+invoice_id\s+= COALESCE`).
		WithArgs("FAC-1", pgxmock.AnyArg(), &text, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := postgres.NewDocumentRepository(mock).Upsert(context.Background(), &entity.InvoiceDocument{
		Identifier:   "FAC-1",
		ExchangeText: &text,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepo_GetByIdentifier_NoExiste(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM invoice_documents WHERE identifier = \$1`).
		WithArgs("FAC-99").
		WillReturnRows(pgxmock.NewRows([]string{"id", "identifier", "invoice_id", "exchange_text", "printable_blob", "printable_base64", "created_at", "updated_at"}))

	_, err := postgres.NewDocumentRepository(mock).GetByIdentifier(context.Background(), "FAC-99")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentRepo_Recent(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	id := int64(5)
	mock.ExpectQuery(`ORDER BY updated_at DESC`).
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{"identifier", "invoice_id", "e", "b", "b64", "updated_at"}).
			AddRow("FAC-5", &id, true, false, true, now).
			AddRow("FAC-4", (*int64)(nil), false, false, false, now))

	list, err := postgres.NewDocumentRepository(mock).Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "FAC-5", list[0].Identifier)
	assert.True(t, list[0].HasBase64)
	assert.Nil(t, list[1].InvoiceID)
}

func TestLogRepo_List_Filtros(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM logs WHERE level = \$1 AND invoice_id = \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs("ERROR", "FAC-3", 100).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "level", "category", "module", "message", "error_detail", "invoice_id", "phase", "request_id", "data"}).
			AddRow(time.Now(), "ERROR", "facturacion", "factura_flow", "falló", nil, ptr("FAC-3"), ptr("FACTURA_DB"), nil, map[string]any{"k": "v"}))

	events, err := postgres.NewLogRepository(mock).List(context.Background(), entity.LogFilter{Level: entity.LevelError, InvoiceID: "FAC-3"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "FACTURA_DB", events[0].Phase)
	assert.Empty(t, events[0].ErrorDetail)
	assert.Equal(t, entity.CategoryBilling, events[0].Category)
}

func TestTxRunner_RollbackOnError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO parties`).
		WithArgs(anyArgs(4)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(`INSERT INTO invoices`).
		WithArgs(anyArgs(invoiceColumns)...).
		WillReturnError(errors.New("conexión perdida"))
	mock.ExpectRollback()

	err := postgres.NewTxRunner(mock).RunBilling(context.Background(), func(
		parties repository.PartyRepository,
		_ repository.ProductRepository,
		invoices repository.InvoiceRepository,
		_ repository.TaxRepository,
	) error {
		if _, err := parties.Upsert(context.Background(), &entity.Party{TaxID: "1", Name: "x"}); err != nil {
			return err
		}
		_, err := invoices.Create(context.Background(), &entity.Invoice{Folio: 1})
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conexión perdida")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_Commit(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO invoice_parties`).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := postgres.NewTxRunner(mock).RunBilling(context.Background(), func(
		_ repository.PartyRepository,
		_ repository.ProductRepository,
		invoices repository.InvoiceRepository,
		_ repository.TaxRepository,
	) error {
		return invoices.LinkParty(context.Background(), 1, 2)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func ptr(s string) *string { return &s }

// columnas enlazadas por InvoiceRepo.Create
const invoiceColumns = 15

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}
