package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.MovementReader          = (*MovementRepo)(nil)
	_ repository.StockMovementRepository = (*TxMovementRepo)(nil)
)

// MovementRepo lecturas de movimientos confirmados.
type MovementRepo struct {
	s *Store
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	r.s.ledgerMu.RLock()
	defer r.s.ledgerMu.RUnlock()
	return cloneMovement(r.s.movements[id]), nil
}

func (r *MovementRepo) List(_ context.Context, filter entity.MovementFilter) ([]*entity.StockMovement, error) {
	r.s.ledgerMu.RLock()
	defer r.s.ledgerMu.RUnlock()
	return filterMovements(r.s.movements, filter), nil
}

// TxMovementRepo movimientos vistos desde una transacción.
type TxMovementRepo struct {
	tx *Tx
}

func (r *TxMovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	return cloneMovement(r.tx.movement(id)), nil
}

// GetForUpdate el Store ya está bloqueado en exclusiva durante la transacción.
func (r *TxMovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.GetByID(ctx, id)
}

func (r *TxMovementRepo) List(_ context.Context, filter entity.MovementFilter) ([]*entity.StockMovement, error) {
	all := make(map[string]*entity.StockMovement, len(r.tx.s.movements)+len(r.tx.movements))
	for id, m := range r.tx.s.movements {
		all[id] = m
	}
	for id, m := range r.tx.movements {
		all[id] = m
	}
	return filterMovements(all, filter), nil
}

func (r *TxMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if r.tx.movement(m.ID) != nil {
		return domain.ErrDuplicate
	}
	for _, id := range []string{m.FromWarehouseID, m.ToWarehouseID} {
		if id != "" && !r.tx.s.warehouseExists(id) {
			return domain.NewNotFoundError("warehouse", id)
		}
	}
	r.tx.movements[m.ID] = cloneMovement(m)
	return nil
}

func (r *TxMovementRepo) UpdateStatus(_ context.Context, m *entity.StockMovement) error {
	cur := r.tx.movement(m.ID)
	if cur == nil {
		return domain.NewNotFoundError("movement", m.ID)
	}
	next := cloneMovement(cur)
	upd := cloneMovement(m)
	next.Status = upd.Status
	next.AppliedAt = upd.AppliedAt
	next.ReversedAt = upd.ReversedAt
	next.UpdatedAt = upd.UpdatedAt
	r.tx.movements[m.ID] = next
	return nil
}
