package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de unidad de medida.
const (
	UnitTypeUnit = "unit"
	UnitTypePack = "pack"
	UnitTypeBox  = "box"
	UnitTypeCase = "case"
)

// Product representa un producto o SKU del catálogo. Es de solo lectura para el motor de movimientos.
// El stock no vive aquí: se consulta en el ledger por (producto, bodega, unidad).
type Product struct {
	ID          string
	SKU         string // único en el catálogo
	Name        string
	Description string
	CategoryID  string
	MinStock    int64
	MaxStock    int64
	BaseUnitID  string
	Units       []Unit // incluye la unidad base
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Unit unidad de medida de un producto. ConversionFactor = cuántas unidades base representa (base = 1).
type Unit struct {
	ID               string
	ProductID        string
	Type             string
	Name             string
	Barcode          string                     // opcional, único en todo el catálogo
	ConversionFactor decimal.Decimal
	Prices           map[string]decimal.Decimal // por código de moneda (USD, VES...)
	IsGenerated      bool                       // barcode generado internamente (no asignado por el fabricante)
}

// IsBase indica si la unidad es la unidad base (factor 1).
func (u Unit) IsBase() bool {
	return u.ConversionFactor.Equal(decimal.NewFromInt(1))
}

// Unit devuelve la unidad del producto con ese ID.
func (p *Product) Unit(unitID string) (*Unit, bool) {
	for i := range p.Units {
		if p.Units[i].ID == unitID {
			return &p.Units[i], true
		}
	}
	return nil, false
}

// UnitByBarcode devuelve la unidad del producto con ese código de barras.
func (p *Product) UnitByBarcode(barcode string) (*Unit, bool) {
	if barcode == "" {
		return nil, false
	}
	for i := range p.Units {
		if p.Units[i].Barcode == barcode {
			return &p.Units[i], true
		}
	}
	return nil, false
}

// BaseUnit devuelve la unidad base del producto.
func (p *Product) BaseUnit() (*Unit, bool) {
	if p.BaseUnitID != "" {
		return p.Unit(p.BaseUnitID)
	}
	for i := range p.Units {
		if p.Units[i].IsBase() {
			return &p.Units[i], true
		}
	}
	return nil, false
}
