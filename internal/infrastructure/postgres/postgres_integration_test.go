package postgres_test

import (
	"context"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
)

// openPool conecta a TEST_DATABASE_URL y aplica migraciones; sin la variable el test se omite.
func openPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	cfg, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

type pgFixture struct {
	engine     *inventory.MovementEngine
	stock      *postgres.StockRepo
	warehouses *postgres.WarehouseRepo
	product    *entity.Product
	from, to   string
}

func newPgFixture(t *testing.T, pool *pgxpool.Pool) *pgFixture {
	t.Helper()
	ctx := context.Background()
	products := postgres.NewProductRepository(pool)
	warehouses := postgres.NewWarehouseRepository(pool)
	now := time.Now().UTC()

	suffix := uuid.NewString()[:8]
	p := &entity.Product{
		ID: uuid.NewString(), SKU: "IT-" + suffix, Name: "Producto de prueba",
		CreatedAt: now, UpdatedAt: now,
	}
	base := entity.Unit{ID: uuid.NewString(), ProductID: p.ID, Type: entity.UnitTypeUnit, Name: "Unidad",
		ConversionFactor: decimal.NewFromInt(1), Prices: map[string]decimal.Decimal{"USD": decimal.RequireFromString("1.25")}}
	box := entity.Unit{ID: uuid.NewString(), ProductID: p.ID, Type: entity.UnitTypeBox, Name: "Caja",
		ConversionFactor: decimal.NewFromInt(12)}
	p.BaseUnitID = base.ID
	p.Units = []entity.Unit{base, box}
	require.NoError(t, products.Create(ctx, p))

	from := &entity.Warehouse{ID: uuid.NewString(), Name: "IT origen " + suffix, Kind: entity.WarehouseKindWarehouse, CreatedAt: now, UpdatedAt: now}
	to := &entity.Warehouse{ID: uuid.NewString(), Name: "IT destino " + suffix, Kind: entity.WarehouseKindWarehouse, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, warehouses.Create(ctx, from))
	require.NoError(t, warehouses.Create(ctx, to))

	stock := postgres.NewStockRepository(pool)
	engine := inventory.NewMovementEngine(postgres.NewTxRunner(pool), products, warehouses, stock,
		postgres.NewStockMovementRepository(pool), zerolog.Nop())
	return &pgFixture{engine: engine, stock: stock, warehouses: warehouses, product: p, from: from.ID, to: to.ID}
}

func TestPostgres_CicloCompleto(t *testing.T) {
	pool := openPool(t)
	f := newPgFixture(t, pool)
	ctx := context.Background()
	unit := f.product.BaseUnitID

	_, err := f.engine.Submit(ctx, inventory.MovementRequest{
		Type: entity.MovementTypeInitial, ProductID: f.product.ID, ToWarehouseID: f.from,
		Items: []entity.MovementItem{{UnitID: unit, Quantity: 30}}, Mode: inventory.ModeCompleted,
	})
	require.NoError(t, err)

	mov, err := f.engine.Submit(ctx, inventory.MovementRequest{
		Type: entity.MovementTypeTransferWarehouse, ProductID: f.product.ID,
		FromWarehouseID: f.from, ToWarehouseID: f.to,
		Items: []entity.MovementItem{{UnitID: unit, Quantity: 10}},
	})
	require.NoError(t, err)
	_, err = f.engine.Apply(ctx, mov.ID)
	require.NoError(t, err)
	_, err = f.engine.Apply(ctx, mov.ID)
	require.NoError(t, err)

	q, err := f.stock.GetQuantity(ctx, f.product.ID, f.from, unit)
	require.NoError(t, err)
	assert.Equal(t, int64(20), q)
	q, err = f.stock.GetQuantity(ctx, f.product.ID, f.to, unit)
	require.NoError(t, err)
	assert.Equal(t, int64(10), q)

	got, err := f.engine.Get(ctx, mov.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusCompleted, got.Status)
	assert.Len(t, got.Items, 1)

	_, err = f.engine.Reverse(ctx, mov.ID)
	require.NoError(t, err)
	q, err = f.stock.GetQuantity(ctx, f.product.ID, f.to, unit)
	require.NoError(t, err)
	assert.Zero(t, q)

	err = f.warehouses.Delete(ctx, f.from)
	assert.ErrorIs(t, err, domain.ErrConflict, "tiene existencias")
}

func TestPostgres_VentasConcurrentes(t *testing.T) {
	pool := openPool(t)
	f := newPgFixture(t, pool)
	ctx := context.Background()
	unit := f.product.BaseUnitID

	_, err := f.engine.Submit(ctx, inventory.MovementRequest{
		Type: entity.MovementTypeInitial, ProductID: f.product.ID, ToWarehouseID: f.from,
		Items: []entity.MovementItem{{UnitID: unit, Quantity: 5}}, Mode: inventory.ModeCompleted,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Submit(ctx, inventory.MovementRequest{
				Type: entity.MovementTypeSale, ProductID: f.product.ID, FromWarehouseID: f.from,
				Items: []entity.MovementItem{{UnitID: unit, Quantity: 1}}, Mode: inventory.ModeCompleted,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 5, ok)
	q, err := f.stock.GetQuantity(ctx, f.product.ID, f.from, unit)
	require.NoError(t, err)
	assert.Zero(t, q)
}

func TestPostgres_ApplyDeltaRechazosDeRango(t *testing.T) {
	pool := openPool(t)
	f := newPgFixture(t, pool)
	ctx := context.Background()
	unit := f.product.BaseUnitID

	err := f.stock.ApplyDelta(ctx, f.product.ID, f.from, unit, -3)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.NotContains(t, err.Error(), "disponible 0")
	assert.False(t, domain.IsRetryable(err))

	require.NoError(t, f.stock.ApplyDelta(ctx, f.product.ID, f.from, unit, math.MaxInt64))
	err = f.stock.ApplyDelta(ctx, f.product.ID, f.from, unit, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStockOverflow)
	assert.False(t, domain.IsRetryable(err))

	// el motor lo detecta antes de tocar el ledger
	_, err = f.engine.Submit(ctx, inventory.MovementRequest{
		Type: entity.MovementTypePurchase, ProductID: f.product.ID, ToWarehouseID: f.from,
		Items: []entity.MovementItem{{UnitID: unit, Quantity: 1}, {UnitID: unit, Quantity: 1}}, Mode: inventory.ModeCompleted,
	})
	assert.ErrorIs(t, err, domain.ErrStockOverflow)

	q, err := f.stock.GetQuantity(ctx, f.product.ID, f.from, unit)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), q)
}

func TestPostgres_UnidadRepetidaEnItems(t *testing.T) {
	pool := openPool(t)
	f := newPgFixture(t, pool)
	ctx := context.Background()
	unit := f.product.BaseUnitID

	mov, err := f.engine.Submit(ctx, inventory.MovementRequest{
		Type: entity.MovementTypeInitial, ProductID: f.product.ID, ToWarehouseID: f.to,
		Items: []entity.MovementItem{{UnitID: unit, Quantity: 2}, {UnitID: unit, Quantity: 3}}, Mode: inventory.ModeCompleted,
	})
	require.NoError(t, err)

	got, err := f.engine.Get(ctx, mov.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, int64(2), got.Items[0].Quantity)
	assert.Equal(t, int64(3), got.Items[1].Quantity)

	q, err := f.stock.GetQuantity(ctx, f.product.ID, f.to, unit)
	require.NoError(t, err)
	assert.Equal(t, int64(5), q)
}
