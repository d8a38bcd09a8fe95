package dto

import "time"

// LogQuery filtros de GET /api/logs/:source.
type LogQuery struct {
	Limit     int    `query:"limit" validate:"min=0,max=1000"`
	Level     string `query:"level" validate:"omitempty,oneof=DEBUG INFO WARNING ERROR CRITICAL"`
	Module    string `query:"module" validate:"omitempty,max=100"`
	InvoiceID string `query:"invoice" validate:"omitempty,max=40"`
}

// DefaultLimit aplica el límite por defecto.
func (q *LogQuery) DefaultLimit() {
	if q.Limit <= 0 {
		q.Limit = 100
	}
}

// LogEventResponse evento de bitácora.
type LogEventResponse struct {
	Timestamp time.Time      `json:"ts"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Module    string         `json:"module"`
	Message   string         `json:"message"`
	Error     string         `json:"error,omitempty"`
	InvoiceID string         `json:"uuid,omitempty"`
	Phase     string         `json:"fase,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// LogListResponse respuesta de consulta de bitácora.
type LogListResponse struct {
	Source string             `json:"source"`
	Count  int                `json:"count"`
	Events []LogEventResponse `json:"events"`
}
