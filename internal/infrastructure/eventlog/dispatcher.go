// Package eventlog implementa la bitácora estructurada del servicio: cada evento se escribe en
// zerolog y se replica a los sumideros configurados (tabla logs en Postgres, flujos capados en Mongo).
package eventlog

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
	"github.com/jhoicas/facturacion-api/pkg/logger"
	"github.com/jhoicas/facturacion-api/pkg/requestid"
)

var _ billing.EventLogger = (*Dispatcher)(nil)

// ModuleFlow módulo con el que se registran los eventos del flujo de facturación.
const ModuleFlow = "factura_flow"

// ModuleSystem módulo por defecto de los eventos de sistema.
const ModuleSystem = "sistema"

const defaultSinkTimeout = 2 * time.Second

// Sink destino de eventos.
type Sink interface {
	Insert(ctx context.Context, e *entity.LogEvent) error
}

// SinkErrorCounter cuenta los eventos que un sumidero no pudo guardar.
type SinkErrorCounter interface {
	SinkError(sink string)
}

type namedSink struct {
	name string
	sink Sink
}

// Dispatcher se construye una vez en main y se inyecta en los componentes que registran eventos.
// Nunca devuelve errores: una falla de un sumidero queda en zerolog y en métricas.
type Dispatcher struct {
	log     *logger.Logger
	sinks   []namedSink
	errs    SinkErrorCounter
	timeout time.Duration
	now     func() time.Time
}

// Option configura el Dispatcher.
type Option func(*Dispatcher)

// WithSink agrega un sumidero. Un sink nil se ignora.
func WithSink(name string, s Sink) Option {
	return func(d *Dispatcher) {
		if s != nil {
			d.sinks = append(d.sinks, namedSink{name: name, sink: s})
		}
	}
}

// WithSinkErrors registra las fallas de los sumideros.
func WithSinkErrors(c SinkErrorCounter) Option {
	return func(d *Dispatcher) { d.errs = c }
}

// WithTimeout tiempo máximo de cada escritura a un sumidero.
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.timeout = t
		}
	}
}

// WithClock reloj para las marcas de tiempo (pruebas).
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// New construye el Dispatcher. Con log nil escribe en logger.Nop().
func New(log *logger.Logger, opts ...Option) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	d := &Dispatcher{
		log:     log,
		timeout: defaultSinkTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Flow evento del flujo de facturación.
func (d *Dispatcher) Flow(ctx context.Context, level entity.LogLevel, invoiceID, phase, msg string, data map[string]any) {
	d.emit(ctx, &entity.LogEvent{
		Level:     level,
		Category:  entity.CategoryBilling,
		Module:    ModuleFlow,
		Message:   msg,
		InvoiceID: invoiceID,
		Phase:     phase,
		Data:      data,
	})
}

// Debug evento de sistema con datos de diagnóstico. module vacío usa ModuleSystem.
func (d *Dispatcher) Debug(ctx context.Context, module, msg string, data map[string]any) {
	d.system(ctx, entity.LevelDebug, module, msg, nil, data)
}

// Info evento de sistema informativo.
func (d *Dispatcher) Info(ctx context.Context, module, msg string, data map[string]any) {
	d.system(ctx, entity.LevelInfo, module, msg, nil, data)
}

// Warn evento de sistema con el error que no detuvo la operación.
func (d *Dispatcher) Warn(ctx context.Context, module, msg string, err error) {
	d.system(ctx, entity.LevelWarning, module, msg, err, nil)
}

// Error evento de sistema por una operación fallida.
func (d *Dispatcher) Error(ctx context.Context, module, msg string, err error) {
	d.system(ctx, entity.LevelError, module, msg, err, nil)
}

// Critical evento de sistema que requiere atención inmediata.
func (d *Dispatcher) Critical(ctx context.Context, module, msg string, err error) {
	d.system(ctx, entity.LevelCritical, module, msg, err, nil)
}

func (d *Dispatcher) system(ctx context.Context, level entity.LogLevel, module, msg string, err error, data map[string]any) {
	if module == "" {
		module = ModuleSystem
	}
	e := &entity.LogEvent{
		Level:    level,
		Category: entity.CategorySystem,
		Module:   module,
		Message:  msg,
		Data:     data,
	}
	if err != nil {
		e.ErrorDetail = truncate(err.Error())
	}
	d.emit(ctx, e)
}

func (d *Dispatcher) emit(ctx context.Context, e *entity.LogEvent) {
	if ctx == nil {
		ctx = context.Background()
	}
	e.Timestamp = d.now().UTC()
	e.RequestID = requestid.From(ctx)
	e.Message = truncate(e.Message)
	e.Data = Summarize(e.Data)

	d.write(e)

	for _, s := range d.sinks {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		err := s.sink.Insert(sctx, e)
		cancel()
		if err != nil {
			if d.errs != nil {
				d.errs.SinkError(s.name)
			}
			d.log.Warn().Err(err).Str("sink", s.name).Str("module", e.Module).Msg("bitácora: no se pudo guardar el evento")
		}
	}
}

func (d *Dispatcher) write(e *entity.LogEvent) {
	var ev *zerolog.Event
	switch e.Level {
	case entity.LevelDebug:
		ev = d.log.Debug()
	case entity.LevelWarning:
		ev = d.log.Warn()
	case entity.LevelError, entity.LevelCritical:
		ev = d.log.Error()
	default:
		ev = d.log.Info()
	}
	ev = ev.Str("category", string(e.Category)).Str("module", e.Module)
	if e.Level == entity.LevelCritical {
		ev = ev.Bool("critical", true)
	}
	if e.InvoiceID != "" {
		ev = ev.Str("invoice", e.InvoiceID)
	}
	if e.Phase != "" {
		ev = ev.Str("fase", e.Phase)
	}
	if e.RequestID != "" {
		ev = ev.Str("request_id", e.RequestID)
	}
	if e.ErrorDetail != "" {
		ev = ev.Str("error", e.ErrorDetail)
	}
	if len(e.Data) > 0 {
		ev = ev.Interface("data", e.Data)
	}
	ev.Msg(e.Message)
}
