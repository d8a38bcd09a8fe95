package mongo

import (
	"time"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

// eventModel forma del documento guardado en las colecciones de bitácora.
type eventModel struct {
	Timestamp time.Time      `bson:"ts"`
	Level     string         `bson:"level"`
	Module    string         `bson:"module"`
	Message   string         `bson:"message"`
	Error     string         `bson:"error,omitempty"`
	InvoiceID string         `bson:"uuid,omitempty"`
	Phase     string         `bson:"fase,omitempty"`
	RequestID string         `bson:"request_id,omitempty"`
	Data      map[string]any `bson:"data,omitempty"`
}

func toEventModel(e *entity.LogEvent) *eventModel {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return &eventModel{
		Timestamp: ts.UTC(),
		Level:     string(e.Level),
		Module:    e.Module,
		Message:   e.Message,
		Error:     e.ErrorDetail,
		InvoiceID: e.InvoiceID,
		Phase:     e.Phase,
		RequestID: e.RequestID,
		Data:      e.Data,
	}
}

func fromEventModel(m *eventModel, category entity.LogCategory) *entity.LogEvent {
	return &entity.LogEvent{
		Timestamp:   m.Timestamp,
		Level:       entity.LogLevel(m.Level),
		Category:    category,
		Module:      m.Module,
		Message:     m.Message,
		ErrorDetail: m.Error,
		InvoiceID:   m.InvoiceID,
		Phase:       m.Phase,
		RequestID:   m.RequestID,
		Data:        m.Data,
	}
}
