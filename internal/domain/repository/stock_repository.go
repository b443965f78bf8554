package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockReader consultas del ledger fuera de transacción.
type StockReader interface {
	// GetQuantity devuelve 0 si la entrada no existe.
	GetQuantity(ctx context.Context, productID, warehouseID, unitID string) (int64, error)
	ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.StockEntry, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockEntry, error)
	HasNonZeroStock(ctx context.Context, warehouseID string) (bool, error)
}

// StockRepository puerto del ledger. ApplyDelta es la única primitiva de mutación y
// solo se invoca dentro de una transacción del motor de movimientos.
type StockRepository interface {
	StockReader
	// LockForUpdate bloquea las entradas (creándolas en cero si faltan) y devuelve sus cantidades.
	LockForUpdate(ctx context.Context, keys []entity.StockKey) (map[entity.StockKey]int64, error)
	ApplyDelta(ctx context.Context, productID, warehouseID, unitID string, delta int64) error
}
