package dto

import "time"

// CreateWarehouseRequest entrada para crear una tienda o bodega.
type CreateWarehouseRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Kind      string `json:"kind" validate:"required,oneof=store warehouse"`
	Location  string `json:"location,omitempty"`
	ParentID  string `json:"parent_id,omitempty"`
	IsDefault bool   `json:"is_default,omitempty"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Location  string    `json:"location,omitempty"`
	ParentID  string    `json:"parent_id,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse lista de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
}

// WarehouseNodeResponse nodo del árbol de ubicaciones.
type WarehouseNodeResponse struct {
	WarehouseResponse
	Children []WarehouseNodeResponse `json:"children"`
}
