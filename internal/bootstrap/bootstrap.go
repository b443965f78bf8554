// Package bootstrap arma los casos de uso sobre el almacenamiento configurado.
// Lo comparten la API HTTP y el comando de importación.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/stock-ledger/internal/infrastructure/redis"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// Services casos de uso listos para exponer.
type Services struct {
	Inventory  *inventory.InventoryUseCase
	Products   *usecase.ProductUseCase
	Warehouses *usecase.WarehouseUseCase

	closers []func()
}

// Close libera pool y conexiones en orden inverso.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

type backend struct {
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	stock      repository.StockReader
	movements  repository.MovementReader
	txRunner   inventory.TxRunner
}

// New conecta el almacenamiento (postgres con migraciones o memoria), el bloqueo de
// importación (Redis si hay REDIS_ADDR) y construye los casos de uso.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Services, error) {
	svc := &Services{}

	var b backend
	if cfg.Storage.UseMemory() {
		store := memory.NewStore()
		b = backend{store.Products(), store.Warehouses(), store.Stock(), store.Movements(), store.TxRunner()}
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		svc.closers = append(svc.closers, pool.Close)
		if err := postgres.Migrate(ctx, pool); err != nil {
			svc.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		b = backend{
			products:   postgres.NewProductRepository(pool),
			warehouses: postgres.NewWarehouseRepository(pool),
			stock:      postgres.NewStockRepository(pool),
			movements:  postgres.NewStockMovementRepository(pool),
			txRunner:   postgres.NewTxRunner(pool),
		}
	}

	var locker inventory.BatchLocker = inventory.NoopLocker{}
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.closers = append(svc.closers, func() { _ = rdb.Close() })
		locker = infraredis.NewLocker(rdb, cfg.Import.LockTTL(), log)
	}

	engine := inventory.NewMovementEngine(b.txRunner, b.products, b.warehouses, b.stock, b.movements, log)
	importer := inventory.NewImportBatchUseCase(engine, b.products, locker, log)

	svc.Inventory = inventory.NewInventoryUseCase(engine, importer)
	svc.Products = usecase.NewProductUseCase(b.products)
	svc.Warehouses = usecase.NewWarehouseUseCase(b.warehouses, b.stock)
	return svc, nil
}
