package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// WarehouseCatalog lectura de ubicaciones usada por el motor.
type WarehouseCatalog interface {
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
}

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	WarehouseCatalog
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	List(ctx context.Context) ([]*entity.Warehouse, error)
	ListChildren(ctx context.Context, parentID string) ([]*entity.Warehouse, error)
	// SetDefault marca id como única bodega por defecto.
	SetDefault(ctx context.Context, id string) error
	// Delete elimina la bodega solo si no es la por defecto, no tiene hijas y su stock es cero.
	// Devuelve un domain.ConflictError si alguna condición falla al momento de borrar.
	Delete(ctx context.Context, id string) error
}
