package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn devuelve error no queda ningún cambio.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// BatchLocker serializa importaciones concurrentes sobre la misma clave.
// release libera el bloqueo; debe llamarse aunque la importación falle.
type BatchLocker interface {
	Obtain(ctx context.Context, key string) (release func(context.Context) error, err error)
}

// NoopLocker no bloquea (una sola instancia o sin Redis configurado).
type NoopLocker struct{}

// Obtain siempre concede el bloqueo.
func (NoopLocker) Obtain(context.Context, string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
