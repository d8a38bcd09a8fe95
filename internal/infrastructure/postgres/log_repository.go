package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/internal/domain/repository"
)

var _ repository.LogRepository = (*LogRepo)(nil)

// LogRepo sumidero relacional de la bitácora (tabla logs).
type LogRepo struct {
	q Querier
}

// NewLogRepository construye el adaptador.
func NewLogRepository(q Querier) *LogRepo {
	return &LogRepo{q: q}
}

// Insert agrega un evento.
func (r *LogRepo) Insert(ctx context.Context, e *entity.LogEvent) error {
	query := `
		INSERT INTO logs (created_at, level, category, module, message, error_detail, invoice_id, phase, request_id, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	var data map[string]any
	if len(e.Data) > 0 {
		data = e.Data
	}
	_, err := r.q.Exec(ctx, query,
		e.Timestamp, string(e.Level), string(e.Category), e.Module, e.Message,
		nullIfEmpty(e.ErrorDetail), nullIfEmpty(e.InvoiceID), nullIfEmpty(e.Phase), nullIfEmpty(e.RequestID),
		data,
	)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

// List eventos más recientes primero, filtrados por los campos no vacíos.
func (r *LogRepo) List(ctx context.Context, f entity.LogFilter) ([]*entity.LogEvent, error) {
	var (
		conds []string
		args  []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if f.Category != "" {
		add("category", string(f.Category))
	}
	if f.Level != "" {
		add("level", string(f.Level))
	}
	if f.Module != "" {
		add("module", f.Module)
	}
	if f.InvoiceID != "" {
		add("invoice_id", f.InvoiceID)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	query := `SELECT created_at, level, category, module, message, error_detail, invoice_id, phase, request_id, data FROM logs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var list []*entity.LogEvent
	for rows.Next() {
		var (
			e                                  entity.LogEvent
			level, category                    string
			errDetail, invoiceID, phase, reqID *string
		)
		if err := rows.Scan(&e.Timestamp, &level, &category, &e.Module, &e.Message,
			&errDetail, &invoiceID, &phase, &reqID, &e.Data); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		e.Level = entity.LogLevel(level)
		e.Category = entity.LogCategory(category)
		e.ErrorDetail = derefStr(errDetail)
		e.InvoiceID = derefStr(invoiceID)
		e.Phase = derefStr(phase)
		e.RequestID = derefStr(reqID)
		list = append(list, &e)
	}
	return list, rows.Err()
}
