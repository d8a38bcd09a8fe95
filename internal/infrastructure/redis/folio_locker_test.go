package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-api/internal/infrastructure/redis"
	"github.com/jhoicas/facturacion-api/pkg/config"
)

func TestNewFolioLocker_SinCliente(t *testing.T) {
	assert.Nil(t, redis.NewFolioLocker(nil))

	var l *redis.FolioLocker
	_, ok, err := l.TryLock(context.Background(), "k", time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.NoError(t, l.Release(context.Background(), "k", "t"))
}

func TestTryLock_ArgumentosInvalidos(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })
	l := redis.NewFolioLocker(client)
	require.NotNil(t, l)

	_, _, err := l.TryLock(context.Background(), "", time.Second)
	assert.Error(t, err)
	_, _, err = l.TryLock(context.Background(), "facturacion:folio", 0)
	assert.Error(t, err)
	// token vacío: no hay nada que liberar y no se contacta al servidor
	assert.NoError(t, l.Release(context.Background(), "facturacion:folio", ""))
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.FolioLocker) {
	t.Helper()
	srv := miniredis.RunT(t)
	client, err := redis.NewClient(context.Background(), config.RedisConfig{Addr: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return srv, redis.NewFolioLocker(client)
}

func TestTryLock_Exclusivo(t *testing.T) {
	srv, l := newMiniredis(t)
	ctx := context.Background()

	token, ok, err := l.TryLock(ctx, "facturacion:folio", 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, token)

	got, err := srv.Get("facturacion:folio")
	require.NoError(t, err)
	assert.Equal(t, token, got)
	assert.Equal(t, 5*time.Second, srv.TTL("facturacion:folio"))

	// otro proceso no puede tomarla mientras exista
	_, ok, err = l.TryLock(ctx, "facturacion:folio", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, "facturacion:folio", token))
	assert.False(t, srv.Exists("facturacion:folio"))

	_, ok, err = l.TryLock(ctx, "facturacion:folio", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRelease_TokenAjenoNoBorra(t *testing.T) {
	srv, l := newMiniredis(t)
	ctx := context.Background()

	token, ok, err := l.TryLock(ctx, "facturacion:folio", 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Release(ctx, "facturacion:folio", "otro-token"))
	got, err := srv.Get("facturacion:folio")
	require.NoError(t, err)
	assert.Equal(t, token, got)
}

func TestTryLock_ExpiraPorTTL(t *testing.T) {
	srv, l := newMiniredis(t)
	ctx := context.Background()

	_, ok, err := l.TryLock(ctx, "facturacion:folio", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	srv.FastForward(2 * time.Second)

	_, ok, err = l.TryLock(ctx, "facturacion:folio", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewClient_ServidorCaido(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	_, err := redis.NewClient(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}
