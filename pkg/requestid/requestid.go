// Package requestid propaga el identificador de solicitud por context.Context.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// With devuelve un contexto que lleva el id.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From devuelve el id del contexto o "" si no hay.
func From(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Ensure garantiza que el contexto tenga un id, generando uno nuevo si falta.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := From(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return With(ctx, id), id
}
