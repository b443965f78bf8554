package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/redis"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// Requiere un Redis real en TEST_REDIS_ADDR; sin la variable el test se omite.
func TestLocker_SegundoObtainEsConflicto(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR no definido")
	}
	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	locker := redis.NewLocker(rdb, 10*time.Second, zerolog.Nop())
	key := "stock-import:test-" + uuid.NewString()

	release, err := locker.Obtain(ctx, key)
	require.NoError(t, err)

	_, err = locker.Obtain(ctx, key)
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, release(ctx))
	require.NoError(t, release(ctx), "liberar dos veces no es error")

	release2, err := locker.Obtain(ctx, key)
	require.NoError(t, err)
	require.NoError(t, release2(ctx))
}
