package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

const warehouseColumns = `id, name, kind, location, COALESCE(parent_id, ''), is_default, created_at, updated_at`

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create persiste una nueva bodega.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (id, name, kind, location, parent_id, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		w.ID, w.Name, w.Kind, w.Location, nullIfEmpty(w.ParentID), w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("warehouse %s: %w", w.ID, domain.ErrDuplicate)
		}
		if isForeignKeyViolation(err) {
			return domain.NewNotFoundError("warehouse", w.ParentID)
		}
		return domain.NewStorageError("insert warehouse", err)
	}
	if w.IsDefault {
		return r.SetDefault(ctx, w.ID)
	}
	return nil
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE id = $1`
	w, err := scanWarehouse(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("get warehouse", err)
	}
	return w, nil
}

// List todas las ubicaciones. El orden por nombre lo aplica la capa de aplicación (colación en español).
func (r *WarehouseRepo) List(ctx context.Context) ([]*entity.Warehouse, error) {
	return r.list(ctx, `SELECT `+warehouseColumns+` FROM warehouses ORDER BY id`)
}

// ListChildren hijas directas de parentID.
func (r *WarehouseRepo) ListChildren(ctx context.Context, parentID string) ([]*entity.Warehouse, error) {
	return r.list(ctx, `SELECT `+warehouseColumns+` FROM warehouses WHERE parent_id = $1 AND id <> $1 ORDER BY id`, parentID)
}

func (r *WarehouseRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Warehouse, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStorageError("list warehouses", err)
	}
	defer rows.Close()
	list := make([]*entity.Warehouse, 0)
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, domain.NewStorageError("scan warehouse", err)
		}
		list = append(list, w)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list warehouses", err)
	}
	return list, nil
}

// SetDefault mueve la marca por defecto en una transacción: primero se limpia, luego se asigna,
// porque el índice único parcial no admite dos filas marcadas ni de forma transitoria.
func (r *WarehouseRepo) SetDefault(ctx context.Context, id string) error {
	err := pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE warehouses SET is_default = FALSE, updated_at = now() WHERE is_default AND id <> $1`, id,
		); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `UPDATE warehouses SET is_default = TRUE, updated_at = now() WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.NewNotFoundError("warehouse", id)
		}
		return nil
	})
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return err
		}
		return domain.NewStorageError("set default warehouse", err)
	}
	return nil
}

// Delete borra la bodega solo si no es la por defecto, no tiene hijas ni existencias.
// Las condiciones se verifican en la misma sentencia; las filas de stock en cero se van en cascada.
func (r *WarehouseRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `
		DELETE FROM warehouses w
		WHERE w.id = $1
		  AND NOT w.is_default
		  AND NOT EXISTS (SELECT 1 FROM warehouses c WHERE c.parent_id = w.id)
		  AND NOT EXISTS (SELECT 1 FROM stock s WHERE s.warehouse_id = w.id AND s.quantity <> 0)`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewConflictError("warehouse", "%s tiene movimientos registrados", id)
		}
		return domain.NewStorageError("delete warehouse", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	w, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if w == nil {
		return domain.NewNotFoundError("warehouse", id)
	}
	return domain.NewConflictError("warehouse", "%s es la bodega por defecto, tiene hijas o existencias", id)
}

func scanWarehouse(row pgx.Row) (*entity.Warehouse, error) {
	var w entity.Warehouse
	if err := row.Scan(&w.ID, &w.Name, &w.Kind, &w.Location, &w.ParentID, &w.IsDefault, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}
