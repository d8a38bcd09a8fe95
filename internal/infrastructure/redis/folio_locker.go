package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/facturacion-api/internal/application/billing"
	"github.com/jhoicas/facturacion-api/pkg/config"
)

var _ billing.FolioLocker = (*FolioLocker)(nil)

// Borra la llave solo si sigue siendo nuestra.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// FolioLocker candado SETNX con token para serializar la asignación de folios entre procesos.
type FolioLocker struct {
	client *goredis.Client
	script *goredis.Script
}

// NewClient crea el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// NewFolioLocker devuelve nil si no hay cliente.
func NewFolioLocker(client *goredis.Client) *FolioLocker {
	if client == nil {
		return nil
	}
	return &FolioLocker{client: client, script: goredis.NewScript(releaseScript)}
}

// TryLock intenta tomar la llave; ok=false si otro proceso la tiene.
func (l *FolioLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("redis: candado no configurado")
	}
	if key == "" {
		return "", false, errors.New("redis: llave vacía")
	}
	if ttl <= 0 {
		return "", false, errors.New("redis: ttl debe ser positivo")
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis: setnx: %w", err)
	}
	return token, ok, nil
}

// Release libera la llave si el token coincide.
func (l *FolioLocker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil || key == "" || token == "" {
		return nil
	}
	if err := l.script.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("redis: release: %w", err)
	}
	return nil
}
