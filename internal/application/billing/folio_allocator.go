package billing

import (
	"context"
	"time"

	"github.com/jhoicas/facturacion-api/internal/domain/entity"
)

const (
	folioLockKey      = "facturacion:folio"
	folioLockAttempts = 20
	folioLockBackoff  = 25 * time.Millisecond
)

// FolioAllocator asigna el siguiente folio combinando el contador en archivo y el máximo
// folio registrado en la base de datos: next = max(archivo, db) + 1.
// La reserva es de mejor esfuerzo: el folio solo queda consumido cuando se inserta la cabecera.
type FolioAllocator struct {
	counter  FolioCounter
	invoices FolioReader
	locker   FolioLocker
	lockTTL  time.Duration
	events   EventLogger
	metrics  Metrics
}

// AllocatorOption configura opciones del asignador.
type AllocatorOption func(*FolioAllocator)

// WithFolioLocker serializa la lectura y escritura del contador entre procesos.
func WithFolioLocker(locker FolioLocker, ttl time.Duration) AllocatorOption {
	return func(a *FolioAllocator) {
		a.locker = locker
		a.lockTTL = ttl
	}
}

// WithAllocatorMetrics registra cada asignación.
func WithAllocatorMetrics(m Metrics) AllocatorOption {
	return func(a *FolioAllocator) { a.metrics = m }
}

// NewFolioAllocator construye el asignador. invoices puede ser nil si no hay base de datos.
func NewFolioAllocator(counter FolioCounter, invoices FolioReader, events EventLogger, opts ...AllocatorOption) *FolioAllocator {
	a := &FolioAllocator{
		counter:  counter,
		invoices: invoices,
		events:   events,
		metrics:  nopMetrics{},
		lockTTL:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Next devuelve el siguiente folio. Nunca falla: una autoridad inaccesible cuenta como 0.
func (a *FolioAllocator) Next(ctx context.Context) entity.Folio {
	if a.locker != nil {
		if token, ok := a.lock(ctx); ok {
			defer func() {
				if err := a.locker.Release(context.WithoutCancel(ctx), folioLockKey, token); err != nil {
					a.events.Warn(ctx, moduleBilling, "no se pudo liberar el candado de folio", err)
				}
			}()
		}
	}

	fileValue, err := a.counter.Read()
	if err != nil {
		a.events.Warn(ctx, moduleBilling, "contador de folio ilegible, se asume 0", err)
		fileValue = 0
	}

	var dbValue int64
	if a.invoices != nil {
		dbValue, err = a.invoices.MaxFolio(ctx)
		if err != nil {
			a.events.Warn(ctx, moduleBilling, "no se pudo consultar el máximo folio, se asume 0", err)
			dbValue = 0
		}
	}

	next := max(fileValue, dbValue) + 1
	if err := a.counter.Write(next); err != nil {
		a.events.Error(ctx, moduleBilling, "no se pudo actualizar el contador de folio", err)
	}
	a.metrics.FolioAllocated()
	return entity.Folio(next)
}

func (a *FolioAllocator) lock(ctx context.Context) (string, bool) {
	for attempt := 0; attempt < folioLockAttempts; attempt++ {
		token, ok, err := a.locker.TryLock(ctx, folioLockKey, a.lockTTL)
		if err != nil {
			a.events.Warn(ctx, moduleBilling, "candado de folio no disponible, se continúa sin él", err)
			return "", false
		}
		if ok {
			return token, true
		}
		select {
		case <-ctx.Done():
			return "", false
		case <-time.After(folioLockBackoff):
		}
	}
	a.events.Warn(ctx, moduleBilling, "candado de folio ocupado, se continúa sin él", nil)
	return "", false
}
