package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateUnitRequest unidad de medida al crear un producto.
// GenerateBarcode pide un EAN-13 interno; External marca un código asignado por el fabricante
// (se acepta aunque su dígito verificador no cuadre).
type CreateUnitRequest struct {
	Type             string                     `json:"type" validate:"required,oneof=unit pack box case"`
	Name             string                     `json:"name" validate:"required,max=100"`
	Barcode          string                     `json:"barcode,omitempty" validate:"omitempty,numeric,max=20"`
	External         bool                       `json:"external,omitempty"`
	GenerateBarcode  bool                       `json:"generate_barcode,omitempty"`
	ConversionFactor decimal.Decimal            `json:"conversion_factor"`
	Prices           map[string]decimal.Decimal `json:"prices,omitempty"`
}

// CreateProductRequest entrada para crear un producto con sus unidades.
type CreateProductRequest struct {
	SKU         string              `json:"sku" validate:"required,min=1,max=100"`
	Name        string              `json:"name" validate:"required,min=1,max=200"`
	Description string              `json:"description"`
	CategoryID  string              `json:"category_id,omitempty"`
	MinStock    int64               `json:"min_stock" validate:"min=0"`
	MaxStock    int64               `json:"max_stock" validate:"min=0"`
	Units       []CreateUnitRequest `json:"units" validate:"required,min=1,dive"`
}

// UnitResponse unidad de medida en respuestas.
type UnitResponse struct {
	ID               string                     `json:"id"`
	ProductID        string                     `json:"product_id"`
	Type             string                     `json:"type"`
	Name             string                     `json:"name"`
	Barcode          string                     `json:"barcode,omitempty"`
	ConversionFactor decimal.Decimal            `json:"conversion_factor"`
	Prices           map[string]decimal.Decimal `json:"prices,omitempty"`
	IsGenerated      bool                       `json:"is_generated"`
	IsBase           bool                       `json:"is_base"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string         `json:"id"`
	SKU         string         `json:"sku"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CategoryID  string         `json:"category_id,omitempty"`
	MinStock    int64          `json:"min_stock"`
	MaxStock    int64          `json:"max_stock"`
	BaseUnitID  string         `json:"base_unit_id"`
	Units       []UnitResponse `json:"units"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ResolvedUnitResponse resultado de resolver un código o ID de unidad.
type ResolvedUnitResponse struct {
	Product ProductResponse `json:"product"`
	Unit    UnitResponse    `json:"unit"`
}

// GenerateBarcodeRequest body para POST /api/units/barcodes.
type GenerateBarcodeRequest struct {
	Prefix string `json:"prefix,omitempty" validate:"omitempty,numeric,max=11"`
}

// BarcodeResponse código generado o validado.
type BarcodeResponse struct {
	Barcode string `json:"barcode"`
	Valid   bool   `json:"valid"`
}
