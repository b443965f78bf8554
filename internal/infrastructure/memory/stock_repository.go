package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.StockReader     = (*StockRepo)(nil)
	_ repository.StockRepository = (*TxStockRepo)(nil)
)

// StockRepo lecturas del ledger confirmado.
type StockRepo struct {
	s *Store
}

// GetQuantity devuelve 0 si la entrada no existe.
func (r *StockRepo) GetQuantity(_ context.Context, productID, warehouseID, unitID string) (int64, error) {
	r.s.ledgerMu.RLock()
	defer r.s.ledgerMu.RUnlock()
	return r.s.quantityLocked(entity.StockKey{ProductID: productID, WarehouseID: warehouseID, UnitID: unitID}), nil
}

// ListByWarehouse entradas de una bodega.
func (r *StockRepo) ListByWarehouse(_ context.Context, warehouseID string) ([]*entity.StockEntry, error) {
	r.s.ledgerMu.RLock()
	defer r.s.ledgerMu.RUnlock()
	return r.s.entriesLocked(func(k entity.StockKey) bool { return k.WarehouseID == warehouseID }), nil
}

// ListByProduct entradas de un producto.
func (r *StockRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockEntry, error) {
	r.s.ledgerMu.RLock()
	defer r.s.ledgerMu.RUnlock()
	return r.s.entriesLocked(func(k entity.StockKey) bool { return k.ProductID == productID }), nil
}

// HasNonZeroStock indica si la bodega tiene alguna entrada distinta de cero.
func (r *StockRepo) HasNonZeroStock(_ context.Context, warehouseID string) (bool, error) {
	r.s.ledgerMu.RLock()
	defer r.s.ledgerMu.RUnlock()
	return r.s.hasNonZeroLocked(warehouseID), nil
}

// TxStockRepo ledger visto desde una transacción: base confirmada + overlay.
type TxStockRepo struct {
	tx *Tx
}

func (r *TxStockRepo) GetQuantity(_ context.Context, productID, warehouseID, unitID string) (int64, error) {
	return r.tx.quantity(entity.StockKey{ProductID: productID, WarehouseID: warehouseID, UnitID: unitID}), nil
}

func (r *TxStockRepo) ListByWarehouse(_ context.Context, warehouseID string) ([]*entity.StockEntry, error) {
	return r.merged(func(k entity.StockKey) bool { return k.WarehouseID == warehouseID }), nil
}

func (r *TxStockRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockEntry, error) {
	return r.merged(func(k entity.StockKey) bool { return k.ProductID == productID }), nil
}

func (r *TxStockRepo) HasNonZeroStock(_ context.Context, warehouseID string) (bool, error) {
	for _, e := range r.merged(func(k entity.StockKey) bool { return k.WarehouseID == warehouseID }) {
		if e.Quantity != 0 {
			return true, nil
		}
	}
	return false, nil
}

// LockForUpdate el Store ya está bloqueado en exclusiva; solo lee las cantidades actuales.
func (r *TxStockRepo) LockForUpdate(_ context.Context, keys []entity.StockKey) (map[entity.StockKey]int64, error) {
	out := make(map[entity.StockKey]int64, len(keys))
	for _, k := range keys {
		out[k] = r.tx.quantity(k)
	}
	return out, nil
}

// ApplyDelta suma delta a la entrada (creándola si falta). La bodega debe seguir existiendo.
func (r *TxStockRepo) ApplyDelta(_ context.Context, productID, warehouseID, unitID string, delta int64) error {
	if productID == "" || warehouseID == "" || unitID == "" {
		return domain.NewValidationError("stock", "tripleta incompleta")
	}
	if !r.tx.s.warehouseExists(warehouseID) {
		return domain.NewNotFoundError("warehouse", warehouseID)
	}
	k := entity.StockKey{ProductID: productID, WarehouseID: warehouseID, UnitID: unitID}
	q, ok := domain.AddQuantity(r.tx.quantity(k), delta)
	if !ok {
		return domain.NewStockOverflowError(productID, warehouseID, unitID, delta)
	}
	r.tx.stock[k] = q
	return nil
}

func (r *TxStockRepo) merged(match func(entity.StockKey) bool) []*entity.StockEntry {
	base := r.tx.s.entriesLocked(match)
	seen := make(map[entity.StockKey]bool, len(base))
	for _, e := range base {
		if q, ok := r.tx.stock[e.StockKey]; ok {
			e.Quantity = q
		}
		seen[e.StockKey] = true
	}
	for k, q := range r.tx.stock {
		if !seen[k] && match(k) {
			base = append(base, &entity.StockEntry{StockKey: k, Quantity: q})
		}
	}
	return base
}
