package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductCatalog lectura del catálogo de productos (consumido por el motor, nunca mutado por él).
// Los métodos devuelven (nil, nil) cuando no hay coincidencia.
type ProductCatalog interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetByUnitID devuelve el producto dueño de la unidad.
	GetByUnitID(ctx context.Context, unitID string) (*entity.Product, error)
	// GetByBarcode devuelve el producto que tiene alguna unidad con ese código.
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
}

// ProductRepository define el puerto de persistencia para Product y sus unidades (DIP).
type ProductRepository interface {
	ProductCatalog
	// Create persiste el producto con todas sus unidades. Devuelve domain.ErrDuplicate si SKU o barcode ya existen.
	Create(ctx context.Context, product *entity.Product) error
	BarcodeExists(ctx context.Context, barcode string) (bool, error)
}
