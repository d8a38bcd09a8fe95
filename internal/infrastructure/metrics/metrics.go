// Package metrics expone los contadores de negocio del servicio en formato Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

const namespace = "facturacion"

var _ billing.Metrics = (*Metrics)(nil)

// Metrics contadores de facturación, descargas y bitácora.
type Metrics struct {
	registry        *prometheus.Registry
	foliosAllocated prometheus.Counter
	invoicesIssued  *prometheus.CounterVec
	retrievals      *prometheus.CounterVec
	sinkErrors      *prometheus.CounterVec
}

// New registra los contadores en un registro propio, junto con los colectores de proceso y runtime.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		foliosAllocated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "folios_allocated_total",
			Help:      "Folios asignados.",
		}),
		invoicesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_issued_total",
			Help:      "Solicitudes de facturación por resultado (ok, degraded, failed).",
		}, []string{"outcome"}),
		retrievals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrievals_total",
			Help:      "Descargas de PDF por fuente que resolvió la solicitud.",
		}, []string{"source"}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eventlog_sink_errors_total",
			Help:      "Eventos de bitácora que un sumidero no pudo guardar.",
		}, []string{"sink"}),
	}
	reg.MustRegister(
		m.foliosAllocated,
		m.invoicesIssued,
		m.retrievals,
		m.sinkErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry registro para el handler /metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) FolioAllocated() { m.foliosAllocated.Inc() }

func (m *Metrics) InvoiceIssued(outcome string) {
	m.invoicesIssued.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PrintableServed(source entity.RetrievalSource) {
	m.retrievals.WithLabelValues(string(source)).Inc()
}

// SinkError implementa eventlog.SinkErrorCounter.
func (m *Metrics) SinkError(sink string) {
	m.sinkErrors.WithLabelValues(sink).Inc()
}
