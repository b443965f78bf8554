// Package redis bloqueo distribuido de importaciones sobre Redis (bsm/redislock).
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var _ inventory.BatchLocker = (*Locker)(nil)

// NewClient conecta a Redis y verifica con PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Locker implementa inventory.BatchLocker. Un segundo Obtain sobre la misma clave
// falla de inmediato con ConflictError mientras el primero no libere o expire el TTL.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewLocker construye el locker sobre un cliente go-redis ya conectado.
func NewLocker(rdb goredis.UniversalClient, ttl time.Duration, log zerolog.Logger) *Locker {
	return &Locker{
		client: redislock.New(rdb),
		ttl:    ttl,
		log:    logger.Component(log, "import_lock"),
	}
}

// Obtain toma el bloqueo sin reintentos.
func (l *Locker) Obtain(ctx context.Context, key string) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		l.log.Warn().Str("key", key).Msg("importación en curso para la misma clave")
		return nil, domain.NewConflictError("import", "hay otra importación en curso para %s", key)
	}
	if err != nil {
		return nil, domain.NewStorageError("obtain import lock", err)
	}
	return func(ctx context.Context) error {
		err := lock.Release(ctx)
		if err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Error().Err(err).Str("key", key).Msg("no se pudo liberar el bloqueo")
			return domain.NewStorageError("release import lock", err)
		}
		return nil
	}, nil
}
