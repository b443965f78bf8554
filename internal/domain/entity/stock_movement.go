package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeInitial           = "initial"            // carga inicial / importación
	MovementTypePurchase          = "purchase"           // compra recibida
	MovementTypePurchaseOrder     = "purchase_order"     // recepción de orden de compra
	MovementTypeSale              = "sale"               // venta (sale del sistema)
	MovementTypeTransferWarehouse = "transfer_warehouse" // traslado entre bodegas
	MovementTypeTransferStore     = "transfer_store"     // traslado entre tiendas
	MovementTypeAdjustment        = "adjustment"         // ajuste (+ con destino, - con origen)
)

// Estados del movimiento.
const (
	MovementStatusPending   = "pending"
	MovementStatusCompleted = "completed"
	MovementStatusCancelled = "cancelled"
)

// MovementItem cantidad de una unidad. Quantity > 0; la dirección la da el tipo de movimiento.
type MovementItem struct {
	UnitID   string
	Quantity int64
}

// StockMovement registro de un movimiento de inventario y su estado.
// Una vez completed solo cambia mediante una reversión explícita del motor.
type StockMovement struct {
	ID              string
	Type            string
	Date            time.Time
	ProductID       string
	FromWarehouseID string // vacío si no debita
	ToWarehouseID   string // vacío si no acredita
	DocumentRef     string
	Notes           string
	Items           []MovementItem
	Status          string
	CreatedBy       string
	AppliedAt       *time.Time // commit de los deltas
	ReversedAt      *time.Time // commit de los deltas inversos
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MovementFilter criterios para listar movimientos.
type MovementFilter struct {
	ProductID   string
	WarehouseID string // origen o destino
	Status      string
	Limit       int
	Offset      int
}

// ValidMovementType indica si t es un tipo de movimiento conocido.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeInitial, MovementTypePurchase, MovementTypePurchaseOrder, MovementTypeSale,
		MovementTypeTransferWarehouse, MovementTypeTransferStore, MovementTypeAdjustment:
		return true
	}
	return false
}

// IsTransfer indica si el tipo mueve stock entre dos ubicaciones.
func IsTransfer(t string) bool {
	return t == MovementTypeTransferWarehouse || t == MovementTypeTransferStore
}
