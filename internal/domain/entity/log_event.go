package entity

import "time"

// LogLevel severidad de un evento.
type LogLevel string

const (
	LevelDebug    LogLevel = "DEBUG"
	LevelInfo     LogLevel = "INFO"
	LevelWarning  LogLevel = "WARNING"
	LevelError    LogLevel = "ERROR"
	LevelCritical LogLevel = "CRITICAL"
)

// LogCategory separa los dos flujos de eventos.
type LogCategory string

const (
	CategoryBilling LogCategory = "facturacion"
	CategorySystem  LogCategory = "sistema"
)

// LogEvent registro inmutable de la bitácora.
type LogEvent struct {
	Timestamp   time.Time
	Level       LogLevel
	Category    LogCategory
	Module      string
	Message     string
	ErrorDetail string
	InvoiceID   string
	Phase       string
	RequestID   string
	Data        map[string]any
}

// LogFilter criterios de consulta de la bitácora.
type LogFilter struct {
	Category  LogCategory
	Level     LogLevel
	Module    string
	InvoiceID string
	Limit     int
}
