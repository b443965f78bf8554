package entity

import "time"

// Clases de ubicación.
const (
	WarehouseKindStore     = "store"
	WarehouseKindWarehouse = "warehouse"
)

// Warehouse representa una tienda o bodega donde se almacena inventario (multi-bodega).
// ParentID forma un bosque: las tiendas son raíces y las bodegas/sububicaciones cuelgan de ellas.
type Warehouse struct {
	ID        string
	Name      string
	Kind      string // store | warehouse
	Location  string
	ParentID  string // vacío = raíz
	IsDefault bool   // solo una puede serlo; no se puede eliminar
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidWarehouseKind indica si kind es una clase de ubicación conocida.
func ValidWarehouseKind(kind string) bool {
	return kind == WarehouseKindStore || kind == WarehouseKindWarehouse
}
