package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
)

// ProductRepo catálogo de productos en memoria.
type ProductRepo struct {
	s *Store
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.catMu.RLock()
	defer r.s.catMu.RUnlock()
	return cloneProduct(r.s.products[id]), nil
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.s.catMu.RLock()
	defer r.s.catMu.RUnlock()
	for _, p := range r.s.products {
		if p.SKU == sku {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) GetByUnitID(_ context.Context, unitID string) (*entity.Product, error) {
	r.s.catMu.RLock()
	defer r.s.catMu.RUnlock()
	for _, p := range r.s.products {
		if _, ok := p.Unit(unitID); ok {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	r.s.catMu.RLock()
	defer r.s.catMu.RUnlock()
	for _, p := range r.s.products {
		if _, ok := p.UnitByBarcode(barcode); ok {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) BarcodeExists(ctx context.Context, barcode string) (bool, error) {
	p, err := r.GetByBarcode(ctx, barcode)
	return p != nil, err
}

// Create inserta el producto con sus unidades. ErrDuplicate si choca el SKU, un ID de unidad o un barcode.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.catMu.Lock()
	defer r.s.catMu.Unlock()
	if _, ok := r.s.products[product.ID]; ok {
		return fmt.Errorf("product %s: %w", product.ID, domain.ErrDuplicate)
	}
	for _, p := range r.s.products {
		if p.SKU == product.SKU {
			return fmt.Errorf("sku %s: %w", product.SKU, domain.ErrDuplicate)
		}
		for _, u := range product.Units {
			if _, ok := p.Unit(u.ID); ok {
				return fmt.Errorf("unit %s: %w", u.ID, domain.ErrDuplicate)
			}
			if _, ok := p.UnitByBarcode(u.Barcode); ok {
				return fmt.Errorf("barcode %s: %w", u.Barcode, domain.ErrDuplicate)
			}
		}
	}
	r.s.products[product.ID] = cloneProduct(product)
	return nil
}

// WarehouseRepo tiendas y bodegas en memoria.
type WarehouseRepo struct {
	s *Store
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.catMu.RLock()
	defer r.s.catMu.RUnlock()
	return cloneWarehouse(r.s.warehouses[id]), nil
}

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	r.s.catMu.Lock()
	defer r.s.catMu.Unlock()
	if _, ok := r.s.warehouses[w.ID]; ok {
		return fmt.Errorf("warehouse %s: %w", w.ID, domain.ErrDuplicate)
	}
	if w.IsDefault {
		for _, other := range r.s.warehouses {
			other.IsDefault = false
		}
	}
	r.s.warehouses[w.ID] = cloneWarehouse(w)
	return nil
}

func (r *WarehouseRepo) List(_ context.Context) ([]*entity.Warehouse, error) {
	r.s.catMu.RLock()
	defer r.s.catMu.RUnlock()
	out := make([]*entity.Warehouse, 0, len(r.s.warehouses))
	for _, w := range r.s.warehouses {
		out = append(out, cloneWarehouse(w))
	}
	return out, nil
}

func (r *WarehouseRepo) ListChildren(_ context.Context, parentID string) ([]*entity.Warehouse, error) {
	r.s.catMu.RLock()
	defer r.s.catMu.RUnlock()
	out := make([]*entity.Warehouse, 0)
	for _, w := range r.s.warehouses {
		if w.ParentID == parentID && w.ID != parentID {
			out = append(out, cloneWarehouse(w))
		}
	}
	return out, nil
}

func (r *WarehouseRepo) SetDefault(_ context.Context, id string) error {
	r.s.catMu.Lock()
	defer r.s.catMu.Unlock()
	target, ok := r.s.warehouses[id]
	if !ok {
		return domain.NewNotFoundError("warehouse", id)
	}
	now := r.s.now()
	for _, w := range r.s.warehouses {
		if w.IsDefault {
			w.IsDefault = false
			w.UpdatedAt = now
		}
	}
	target.IsDefault = true
	target.UpdatedAt = now
	return nil
}

// Delete verifica de nuevo las condiciones con ambos bloqueos tomados.
func (r *WarehouseRepo) Delete(_ context.Context, id string) error {
	r.s.ledgerMu.Lock()
	defer r.s.ledgerMu.Unlock()
	r.s.catMu.Lock()
	defer r.s.catMu.Unlock()

	w, ok := r.s.warehouses[id]
	if !ok {
		return domain.NewNotFoundError("warehouse", id)
	}
	if w.IsDefault {
		return domain.NewConflictError("warehouse", "%s es la bodega por defecto", id)
	}
	for _, other := range r.s.warehouses {
		if other.ParentID == id && other.ID != id {
			return domain.NewConflictError("warehouse", "%s tiene ubicaciones hijas", id)
		}
	}
	if r.s.hasNonZeroLocked(id) {
		return domain.NewConflictError("warehouse", "%s tiene existencias", id)
	}
	for _, m := range r.s.movements {
		if m.FromWarehouseID == id || m.ToWarehouseID == id {
			return domain.NewConflictError("warehouse", "%s tiene movimientos registrados", id)
		}
	}
	for k := range r.s.stock {
		if k.WarehouseID == id {
			delete(r.s.stock, k)
		}
	}
	delete(r.s.warehouses, id)
	return nil
}
