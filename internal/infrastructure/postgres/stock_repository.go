package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
// LockForUpdate y ApplyDelta solo tienen sentido con una tx.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetQuantity cantidad de la tripleta; 0 si la fila no existe.
func (r *StockRepo) GetQuantity(ctx context.Context, productID, warehouseID, unitID string) (int64, error) {
	query := `
		SELECT quantity FROM stock
		WHERE product_id = $1 AND warehouse_id = $2 AND unit_id = $3`
	var qty int64
	err := r.q.QueryRow(ctx, query, productID, warehouseID, unitID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, domain.NewStorageError("get stock", err)
	}
	return qty, nil
}

// ListByWarehouse entradas de una bodega ordenadas por producto y unidad.
func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.StockEntry, error) {
	return r.list(ctx, "list stock by warehouse", `
		SELECT product_id, warehouse_id, unit_id, quantity, updated_at
		FROM stock WHERE warehouse_id = $1
		ORDER BY product_id, unit_id`, warehouseID)
}

// ListByProduct entradas de un producto en todas las bodegas.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockEntry, error) {
	return r.list(ctx, "list stock by product", `
		SELECT product_id, warehouse_id, unit_id, quantity, updated_at
		FROM stock WHERE product_id = $1
		ORDER BY warehouse_id, unit_id`, productID)
}

func (r *StockRepo) list(ctx context.Context, op, query string, arg string) ([]*entity.StockEntry, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	defer rows.Close()
	list := make([]*entity.StockEntry, 0)
	for rows.Next() {
		var e entity.StockEntry
		if err := rows.Scan(&e.ProductID, &e.WarehouseID, &e.UnitID, &e.Quantity, &e.UpdatedAt); err != nil {
			return nil, domain.NewStorageError(op, err)
		}
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	return list, nil
}

// HasNonZeroStock indica si la bodega tiene alguna fila con cantidad distinta de cero.
func (r *StockRepo) HasNonZeroStock(ctx context.Context, warehouseID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock WHERE warehouse_id = $1 AND quantity <> 0)`,
		warehouseID,
	).Scan(&exists)
	if err != nil {
		return false, domain.NewStorageError("check warehouse stock", err)
	}
	return exists, nil
}

// LockForUpdate asegura que cada fila exista y la bloquea (SELECT FOR UPDATE) en el orden recibido.
// El motor pasa las claves ordenadas, así dos transacciones nunca se bloquean en orden cruzado.
func (r *StockRepo) LockForUpdate(ctx context.Context, keys []entity.StockKey) (map[entity.StockKey]int64, error) {
	out := make(map[entity.StockKey]int64, len(keys))
	for _, k := range keys {
		_, err := r.q.Exec(ctx, `
			INSERT INTO stock (product_id, warehouse_id, unit_id, quantity, updated_at)
			VALUES ($1, $2, $3, 0, now())
			ON CONFLICT (product_id, warehouse_id, unit_id) DO NOTHING`,
			k.ProductID, k.WarehouseID, k.UnitID,
		)
		if err != nil {
			return nil, domain.NewStorageError("ensure stock row", err)
		}
		var qty int64
		err = r.q.QueryRow(ctx, `
			SELECT quantity FROM stock
			WHERE product_id = $1 AND warehouse_id = $2 AND unit_id = $3
			FOR UPDATE`,
			k.ProductID, k.WarehouseID, k.UnitID,
		).Scan(&qty)
		if err != nil {
			return nil, domain.NewStorageError("lock stock row", err)
		}
		out[k] = qty
	}
	return out, nil
}

// ApplyDelta quantity = quantity + delta (crea la fila si falta).
func (r *StockRepo) ApplyDelta(ctx context.Context, productID, warehouseID, unitID string, delta int64) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, warehouse_id, unit_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, warehouse_id, unit_id)
		DO UPDATE SET quantity = stock.quantity + EXCLUDED.quantity, updated_at = now()`,
		productID, warehouseID, unitID, delta,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.NewDebitRejectedError(productID, warehouseID, unitID, -delta)
		}
		if isOutOfRange(err) {
			return domain.NewStockOverflowError(productID, warehouseID, unitID, delta)
		}
		return domain.NewStorageError("apply stock delta", err)
	}
	return nil
}
