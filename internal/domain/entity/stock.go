package entity

import "time"

// StockKey identifica una entrada del ledger.
type StockKey struct {
	ProductID   string
	WarehouseID string
	UnitID      string
}

// Less orden total usado para bloquear filas siempre en la misma secuencia.
func (k StockKey) Less(o StockKey) bool {
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	if k.WarehouseID != o.WarehouseID {
		return k.WarehouseID < o.WarehouseID
	}
	return k.UnitID < o.UnitID
}

// StockEntry cantidad disponible de un producto, en una unidad, dentro de una bodega.
// Se crea al primer movimiento que toca la tripleta; su ausencia equivale a cero.
// Cada unidad es un balde independiente: no hay conversión implícita entre unidades.
type StockEntry struct {
	StockKey
	Quantity  int64
	UpdatedAt time.Time
}
