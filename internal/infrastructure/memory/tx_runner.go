package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// Run ejecuta fn con repositorios atados a la transacción: si fn devuelve error nada se publica.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	tx, commit, rollback, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			rollback()
		}
	}()
	if err := fn(tx.Movements(), tx.Stock()); err != nil {
		return err
	}
	commit()
	committed = true
	return nil
}
