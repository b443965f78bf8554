package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementReader consultas de movimientos.
type MovementReader interface {
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.StockMovement, error)
}

// StockMovementRepository define el puerto de persistencia para movimientos de inventario (DIP).
type StockMovementRepository interface {
	MovementReader
	// Create persiste el movimiento con sus ítems.
	Create(ctx context.Context, movement *entity.StockMovement) error
	// GetForUpdate obtiene el movimiento bloqueando su fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error)
	// UpdateStatus guarda Status, AppliedAt, ReversedAt y UpdatedAt.
	UpdateStatus(ctx context.Context, movement *entity.StockMovement) error
}
