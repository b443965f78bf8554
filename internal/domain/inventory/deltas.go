package inventory

import (
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Delta cambio a aplicar sobre una entrada del ledger.
type Delta struct {
	entity.StockKey
	Amount int64
}

// MovementDeltas traduce los ítems del movimiento a deltas, en orden de ítem:
// -cantidad en el origen (si hay) y +cantidad en el destino (si hay).
func MovementDeltas(m *entity.StockMovement) []Delta {
	out := make([]Delta, 0, len(m.Items)*2)
	for _, item := range m.Items {
		if m.FromWarehouseID != "" {
			out = append(out, Delta{
				StockKey: entity.StockKey{ProductID: m.ProductID, WarehouseID: m.FromWarehouseID, UnitID: item.UnitID},
				Amount:   -item.Quantity,
			})
		}
		if m.ToWarehouseID != "" {
			out = append(out, Delta{
				StockKey: entity.StockKey{ProductID: m.ProductID, WarehouseID: m.ToWarehouseID, UnitID: item.UnitID},
				Amount:   item.Quantity,
			})
		}
	}
	return out
}

// InverseDeltas deltas que deshacen ds.
func InverseDeltas(ds []Delta) []Delta {
	out := make([]Delta, len(ds))
	for i, d := range ds {
		out[i] = Delta{StockKey: d.StockKey, Amount: -d.Amount}
	}
	return out
}

// SortedKeys entradas distintas tocadas por ds, en orden de bloqueo.
func SortedKeys(ds []Delta) []entity.StockKey {
	seen := make(map[entity.StockKey]bool, len(ds))
	keys := make([]entity.StockKey, 0, len(ds))
	for _, d := range ds {
		if !seen[d.StockKey] {
			seen[d.StockKey] = true
			keys = append(keys, d.StockKey)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// CheckAvailability rechaza los deltas que dejarían alguna entrada en negativo
// o por encima del máximo representable. current son las cantidades leídas bajo bloqueo.
func CheckAvailability(ds []Delta, current map[entity.StockKey]int64) error {
	net := make(map[entity.StockKey]int64, len(ds))
	for _, d := range ds {
		sum, ok := domain.AddQuantity(net[d.StockKey], d.Amount)
		if !ok {
			return domain.NewStockOverflowError(d.ProductID, d.WarehouseID, d.UnitID, d.Amount)
		}
		net[d.StockKey] = sum
	}
	for _, key := range SortedKeys(ds) {
		n, have := net[key], current[key]
		if n < 0 && have+n < 0 {
			return domain.NewInsufficientStockError(key.ProductID, key.WarehouseID, key.UnitID, have, -n)
		}
		if _, ok := domain.AddQuantity(have, n); !ok {
			return domain.NewStockOverflowError(key.ProductID, key.WarehouseID, key.UnitID, n)
		}
	}
	return nil
}
