// Package memory implementa los puertos de persistencia en memoria (desarrollo, demos y tests).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Bodega creada al iniciar un Store vacío.
const (
	DefaultWarehouseID   = "default"
	DefaultWarehouseName = "Almacén Principal"
)

// Store catálogo + ledger + movimientos en mapas.
// catMu protege productos y bodegas; ledgerMu protege stock y movimientos y se toma
// en exclusiva durante toda una transacción. Orden de bloqueo: ledgerMu antes que catMu.
type Store struct {
	catMu      sync.RWMutex
	products   map[string]*entity.Product
	warehouses map[string]*entity.Warehouse

	ledgerMu  sync.RWMutex
	stock     map[entity.StockKey]*entity.StockEntry
	movements map[string]*entity.StockMovement

	now func() time.Time
}

// NewStore crea un Store con la bodega por defecto.
func NewStore() *Store {
	now := time.Now().UTC()
	return &Store{
		products: map[string]*entity.Product{},
		warehouses: map[string]*entity.Warehouse{
			DefaultWarehouseID: {
				ID:        DefaultWarehouseID,
				Name:      DefaultWarehouseName,
				Kind:      entity.WarehouseKindWarehouse,
				IsDefault: true,
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
		stock:     map[entity.StockKey]*entity.StockEntry{},
		movements: map[string]*entity.StockMovement{},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Products repositorio de productos sobre este Store.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Warehouses repositorio de bodegas sobre este Store.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s: s} }

// Stock lecturas del ledger fuera de transacción.
func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }

// Movements lecturas de movimientos fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// TxRunner unidad de trabajo sobre este Store.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// ── lecturas compartidas (el llamador sostiene ledgerMu) ─────────────────────

func (s *Store) quantityLocked(k entity.StockKey) int64 {
	if e, ok := s.stock[k]; ok {
		return e.Quantity
	}
	return 0
}

func (s *Store) entriesLocked(match func(entity.StockKey) bool) []*entity.StockEntry {
	out := make([]*entity.StockEntry, 0)
	for k, e := range s.stock {
		if match(k) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StockKey.Less(out[j].StockKey) })
	return out
}

func (s *Store) hasNonZeroLocked(warehouseID string) bool {
	for k, e := range s.stock {
		if k.WarehouseID == warehouseID && e.Quantity != 0 {
			return true
		}
	}
	return false
}

// warehouseExists el llamador sostiene ledgerMu, así que un Delete no puede correr en paralelo.
func (s *Store) warehouseExists(id string) bool {
	s.catMu.RLock()
	defer s.catMu.RUnlock()
	_, ok := s.warehouses[id]
	return ok
}

func filterMovements(all map[string]*entity.StockMovement, f entity.MovementFilter) []*entity.StockMovement {
	out := make([]*entity.StockMovement, 0)
	for _, m := range all {
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.WarehouseID != "" && m.FromWarehouseID != f.WarehouseID && m.ToWarehouseID != f.WarehouseID {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		out = append(out, cloneMovement(m))
	}
	// Más recientes primero, como el listado SQL.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return out[:0]
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Items = append([]entity.MovementItem(nil), m.Items...)
	if m.AppliedAt != nil {
		t := *m.AppliedAt
		cp.AppliedAt = &t
	}
	if m.ReversedAt != nil {
		t := *m.ReversedAt
		cp.ReversedAt = &t
	}
	return &cp
}

func cloneProduct(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Units = append([]entity.Unit(nil), p.Units...)
	return &cp
}

func cloneWarehouse(w *entity.Warehouse) *entity.Warehouse {
	if w == nil {
		return nil
	}
	cp := *w
	return &cp
}

// ── TxRunner ─────────────────────────────────────────────────────────────────

// Tx repositorios atados a una unidad de trabajo en curso. Las escrituras quedan en
// un overlay que solo se publica si fn termina sin error.
type Tx struct {
	s         *Store
	stock     map[entity.StockKey]int64
	movements map[string]*entity.StockMovement
}

// TxRunner serializa las unidades de trabajo sobre ledgerMu.
type TxRunner struct {
	s *Store
}

// Begin toma el bloqueo exclusivo del ledger. commit publica el overlay; rollback lo descarta.
// Ambos liberan el bloqueo y solo uno debe llamarse.
func (r *TxRunner) Begin(ctx context.Context) (tx *Tx, commit func(), rollback func(), err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, domain.NewStorageError("begin transaction", err)
	}
	s := r.s
	s.ledgerMu.Lock()
	tx = &Tx{s: s, stock: map[entity.StockKey]int64{}, movements: map[string]*entity.StockMovement{}}
	commit = func() {
		defer s.ledgerMu.Unlock()
		now := s.now()
		for k, q := range tx.stock {
			s.stock[k] = &entity.StockEntry{StockKey: k, Quantity: q, UpdatedAt: now}
		}
		for id, m := range tx.movements {
			s.movements[id] = m
		}
	}
	rollback = func() { s.ledgerMu.Unlock() }
	return tx, commit, rollback, nil
}

// Movements repositorio de movimientos dentro de la transacción.
func (tx *Tx) Movements() *TxMovementRepo { return &TxMovementRepo{tx: tx} }

// Stock repositorio del ledger dentro de la transacción.
func (tx *Tx) Stock() *TxStockRepo { return &TxStockRepo{tx: tx} }

func (tx *Tx) quantity(k entity.StockKey) int64 {
	if q, ok := tx.stock[k]; ok {
		return q
	}
	return tx.s.quantityLocked(k)
}

func (tx *Tx) movement(id string) *entity.StockMovement {
	if m, ok := tx.movements[id]; ok {
		return m
	}
	return tx.s.movements[id]
}
