package dto

import "time"

// MovementItemRequest cantidad de una unidad del producto.
type MovementItemRequest struct {
	UnitID   string `json:"unit_id" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gt=0"`
}

// SubmitMovementRequest body para POST /api/inventory/movements.
// Mode: pending (por defecto) o completed.
type SubmitMovementRequest struct {
	Type            string                `json:"type" validate:"required"`
	ProductID       string                `json:"product_id" validate:"required"`
	FromWarehouseID string                `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string                `json:"to_warehouse_id,omitempty"`
	Date            *time.Time            `json:"date,omitempty"`
	DocumentRef     string                `json:"document_ref,omitempty" validate:"max=100"`
	Notes           string                `json:"notes,omitempty" validate:"max=500"`
	Items           []MovementItemRequest `json:"items" validate:"required,min=1,dive"`
	Mode            string                `json:"mode,omitempty" validate:"omitempty,oneof=pending completed"`
}

// MovementListRequest filtros de GET /api/inventory/movements.
type MovementListRequest struct {
	ProductID   string `query:"product_id"`
	WarehouseID string `query:"warehouse_id"`
	Status      string `query:"status" validate:"omitempty,oneof=pending completed cancelled"`
	PageRequest
}

// MovementItemResponse ítem en respuestas.
type MovementItemResponse struct {
	UnitID   string `json:"unit_id"`
	Quantity int64  `json:"quantity"`
}

// MovementResponse movimiento de inventario en respuestas.
type MovementResponse struct {
	ID              string                 `json:"id"`
	Type            string                 `json:"type"`
	Date            time.Time              `json:"date"`
	ProductID       string                 `json:"product_id"`
	FromWarehouseID string                 `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string                 `json:"to_warehouse_id,omitempty"`
	DocumentRef     string                 `json:"document_ref,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	Items           []MovementItemResponse `json:"items"`
	Status          string                 `json:"status"`
	CreatedBy       string                 `json:"created_by,omitempty"`
	AppliedAt       *time.Time             `json:"applied_at,omitempty"`
	ReversedAt      *time.Time             `json:"reversed_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockQueryRequest parámetros de GET /api/inventory/stock.
type StockQueryRequest struct {
	ProductID   string `query:"product_id" validate:"required"`
	WarehouseID string `query:"warehouse_id" validate:"required"`
	UnitID      string `query:"unit_id" validate:"required"`
}

// StockQuantityResponse cantidad disponible de una tripleta.
type StockQuantityResponse struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	UnitID      string `json:"unit_id"`
	Quantity    int64  `json:"quantity"`
}

// StockEntryResponse entrada del ledger.
type StockEntryResponse struct {
	ProductID   string    `json:"product_id"`
	WarehouseID string    `json:"warehouse_id"`
	UnitID      string    `json:"unit_id"`
	Quantity    int64     `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}
