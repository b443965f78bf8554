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

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `
	id, type, date, product_id, COALESCE(from_warehouse_id, ''), COALESCE(to_warehouse_id, ''),
	document_ref, notes, status, created_by, applied_at, reversed_at, created_at, updated_at`

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste el movimiento y sus ítems.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, type, date, product_id, from_warehouse_id, to_warehouse_id,
			document_ref, notes, status, created_by, applied_at, reversed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Type, m.Date, m.ProductID, nullIfEmpty(m.FromWarehouseID), nullIfEmpty(m.ToWarehouseID),
		m.DocumentRef, m.Notes, m.Status, m.CreatedBy, m.AppliedAt, m.ReversedAt, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movement %s: %w", m.ID, domain.ErrDuplicate)
		}
		return domain.NewStorageError("insert movement", err)
	}
	for i, it := range m.Items {
		_, err := r.q.Exec(ctx,
			`INSERT INTO movement_items (movement_id, unit_id, position, quantity) VALUES ($1, $2, $3, $4)`,
			m.ID, it.UnitID, i, it.Quantity,
		)
		if err != nil {
			return domain.NewStorageError("insert movement item", err)
		}
	}
	return nil
}

// GetByID obtiene un movimiento por ID con sus ítems.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.get(ctx, `SELECT`+movementColumns+` FROM stock_movements WHERE id = $1`, id)
}

// GetForUpdate obtiene el movimiento bloqueando su fila (SELECT FOR UPDATE).
func (r *StockMovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.get(ctx, `SELECT`+movementColumns+` FROM stock_movements WHERE id = $1 FOR UPDATE`, id)
}

func (r *StockMovementRepo) get(ctx context.Context, query, id string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("get movement", err)
	}
	if err := r.loadItems(ctx, []*entity.StockMovement{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// List lista movimientos (más recientes primero) filtrando por producto, bodega (origen o destino) y estado.
func (r *StockMovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.StockMovement, error) {
	query := `SELECT` + movementColumns + ` FROM stock_movements WHERE TRUE`
	args := []any{}
	pos := 1
	if f.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, f.ProductID)
		pos++
	}
	if f.WarehouseID != "" {
		query += fmt.Sprintf(" AND (from_warehouse_id = $%d OR to_warehouse_id = $%d)", pos, pos)
		args = append(args, f.WarehouseID)
		pos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	query += " ORDER BY date DESC, created_at DESC, id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, f.Limit)
		pos++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", pos)
		args = append(args, f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStorageError("list movements", err)
	}
	list := make([]*entity.StockMovement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			rows.Close()
			return nil, domain.NewStorageError("scan movement", err)
		}
		list = append(list, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list movements", err)
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus guarda la transición de estado.
func (r *StockMovementRepo) UpdateStatus(ctx context.Context, m *entity.StockMovement) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_movements
		SET status = $2, applied_at = $3, reversed_at = $4, updated_at = $5
		WHERE id = $1`,
		m.ID, m.Status, m.AppliedAt, m.ReversedAt, m.UpdatedAt,
	)
	if err != nil {
		return domain.NewStorageError("update movement status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("movement", m.ID)
	}
	return nil
}

func (r *StockMovementRepo) loadItems(ctx context.Context, list []*entity.StockMovement) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.StockMovement, len(list))
	ids := make([]string, 0, len(list))
	for _, m := range list {
		byID[m.ID] = m
		ids = append(ids, m.ID)
		m.Items = []entity.MovementItem{}
	}
	rows, err := r.q.Query(ctx, `
		SELECT movement_id, unit_id, quantity
		FROM movement_items WHERE movement_id = ANY($1)
		ORDER BY movement_id, position`, ids)
	if err != nil {
		return domain.NewStorageError("list movement items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var movementID string
		var it entity.MovementItem
		if err := rows.Scan(&movementID, &it.UnitID, &it.Quantity); err != nil {
			return domain.NewStorageError("scan movement item", err)
		}
		if m, ok := byID[movementID]; ok {
			m.Items = append(m.Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return domain.NewStorageError("list movement items", err)
	}
	return nil
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.Type, &m.Date, &m.ProductID, &m.FromWarehouseID, &m.ToWarehouseID,
		&m.DocumentRef, &m.Notes, &m.Status, &m.CreatedBy, &m.AppliedAt, &m.ReversedAt,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
