package dto

// ImportRowRequest fila de carga masiva. Line es opcional; si falta se usa la posición (1-based).
type ImportRowRequest struct {
	Line        int    `json:"line,omitempty"`
	SKU         string `json:"sku"`
	Quantity    int64  `json:"quantity"`
	WarehouseID string `json:"warehouse_id"`
	UnitID      string `json:"unit_id"`
}

// ImportRequest body para POST /api/inventory/import.
type ImportRequest struct {
	Source string             `json:"source" validate:"required,oneof=csv xlsx woocommerce other"`
	Rows   []ImportRowRequest `json:"rows" validate:"required,min=1"`
}

// RowOutcomeResponse resultado por fila.
type RowOutcomeResponse struct {
	Line       int    `json:"line"`
	SKU        string `json:"sku"`
	Status     string `json:"status"`
	MovementID string `json:"movement_id,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// BatchReportResponse resultado de la importación.
type BatchReportResponse struct {
	Source  string               `json:"source"`
	Applied []RowOutcomeResponse `json:"applied"`
	Skipped []RowOutcomeResponse `json:"skipped"`
}
