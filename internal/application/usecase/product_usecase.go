package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// maxBarcodeAttempts intentos para encontrar un código generado que no esté en uso.
const maxBarcodeAttempts = 10

// ProductUseCase registro de productos con sus unidades y resolución de códigos de barras.
// El stock no se toca aquí: se maneja vía movimientos.
type ProductUseCase struct {
	repo     repository.ProductRepository
	generate func(prefix string) (string, error)
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, generate: inventory.GenerateBarcode}
}

// Create registra un producto. Exige exactamente una unidad base (factor 1), genera los códigos
// pedidos y valida los suministrados.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.SKU == "" {
		return nil, domain.NewValidationError("sku", "es requerido")
	}
	if in.Name == "" {
		return nil, domain.NewValidationError("name", "es requerido")
	}
	if len(in.Units) == 0 {
		return nil, domain.NewValidationError("units", "debe tener al menos una unidad")
	}
	if in.MaxStock > 0 && in.MinStock > in.MaxStock {
		return nil, domain.NewValidationError("min_stock", "no puede superar max_stock")
	}
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewConflictError("sku", "el SKU %s ya existe", in.SKU)
	}

	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		MinStock:    in.MinStock,
		MaxStock:    in.MaxStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	one := decimal.NewFromInt(1)
	seen := make(map[string]bool, len(in.Units))
	for i, u := range in.Units {
		field := fmt.Sprintf("units[%d]", i)
		if !u.ConversionFactor.IsPositive() {
			return nil, domain.NewValidationError(field+".conversion_factor", "debe ser mayor que cero")
		}
		unit := entity.Unit{
			ID:               uuid.New().String(),
			ProductID:        product.ID,
			Type:             u.Type,
			Name:             u.Name,
			ConversionFactor: u.ConversionFactor,
			Prices:           u.Prices,
		}
		switch {
		case u.GenerateBarcode && u.Barcode != "":
			return nil, domain.NewValidationError(field+".barcode", "no se puede enviar código y pedir uno generado")
		case u.GenerateBarcode:
			code, err := uc.uniqueBarcode(ctx, "", seen)
			if err != nil {
				return nil, err
			}
			unit.Barcode, unit.IsGenerated = code, true
		case u.Barcode != "":
			if !u.External && !inventory.ValidateBarcode(u.Barcode) {
				return nil, domain.NewInvalidBarcodeError(field+".barcode", u.Barcode)
			}
			if seen[u.Barcode] {
				return nil, domain.NewConflictError("barcode", "el código %s está repetido", u.Barcode)
			}
			taken, err := uc.repo.BarcodeExists(ctx, u.Barcode)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, domain.NewConflictError("barcode", "el código %s ya está asignado", u.Barcode)
			}
			unit.Barcode = u.Barcode
		}
		if unit.Barcode != "" {
			seen[unit.Barcode] = true
		}
		if u.ConversionFactor.Equal(one) {
			if product.BaseUnitID != "" {
				return nil, domain.NewValidationError(field+".conversion_factor", "solo puede haber una unidad base")
			}
			product.BaseUnitID = unit.ID
		}
		product.Units = append(product.Units, unit)
	}
	if product.BaseUnitID == "" {
		return nil, domain.NewValidationError("units", "debe haber exactamente una unidad base (factor 1)")
	}

	if err := uc.repo.Create(ctx, product); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewConflictError("product", "SKU o código de barras duplicado")
		}
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFoundError("product", id)
	}
	return ToProductResponse(product), nil
}

// ResolveUnit busca primero por ID de unidad y luego por código de barras.
func (uc *ProductUseCase) ResolveUnit(ctx context.Context, code string) (*entity.Product, *entity.Unit, error) {
	if code == "" {
		return nil, nil, domain.NewValidationError("code", "es requerido")
	}
	product, err := uc.repo.GetByUnitID(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if product != nil {
		if unit, ok := product.Unit(code); ok {
			return product, unit, nil
		}
	}
	product, err = uc.repo.GetByBarcode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if product != nil {
		if unit, ok := product.UnitByBarcode(code); ok {
			return product, unit, nil
		}
	}
	return nil, nil, domain.NewNotFoundError("unit", code)
}

// Resolve igual que ResolveUnit pero en forma de DTO.
func (uc *ProductUseCase) Resolve(ctx context.Context, code string) (*dto.ResolvedUnitResponse, error) {
	product, unit, err := uc.ResolveUnit(ctx, code)
	if err != nil {
		return nil, err
	}
	return &dto.ResolvedUnitResponse{Product: *ToProductResponse(product), Unit: toUnitResponse(*unit)}, nil
}

// GenerateBarcode genera un EAN-13 con el prefijo dado que no esté asignado a ninguna unidad.
func (uc *ProductUseCase) GenerateBarcode(ctx context.Context, prefix string) (*dto.BarcodeResponse, error) {
	code, err := uc.uniqueBarcode(ctx, prefix, nil)
	if err != nil {
		return nil, err
	}
	return &dto.BarcodeResponse{Barcode: code, Valid: true}, nil
}

// ValidateBarcode verifica longitud y dígito verificador.
func (uc *ProductUseCase) ValidateBarcode(code string) *dto.BarcodeResponse {
	return &dto.BarcodeResponse{Barcode: code, Valid: inventory.ValidateBarcode(code)}
}

func (uc *ProductUseCase) uniqueBarcode(ctx context.Context, prefix string, reserved map[string]bool) (string, error) {
	for i := 0; i < maxBarcodeAttempts; i++ {
		code, err := uc.generate(prefix)
		if err != nil {
			return "", err
		}
		if reserved[code] {
			continue
		}
		taken, err := uc.repo.BarcodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", domain.NewConflictError("barcode", "no se encontró un código libre tras %d intentos", maxBarcodeAttempts)
}

// ToProductResponse mapea la entidad al DTO de salida.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	units := make([]dto.UnitResponse, 0, len(p.Units))
	for _, u := range p.Units {
		units = append(units, toUnitResponse(u))
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		MinStock:    p.MinStock,
		MaxStock:    p.MaxStock,
		BaseUnitID:  p.BaseUnitID,
		Units:       units,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toUnitResponse(u entity.Unit) dto.UnitResponse {
	return dto.UnitResponse{
		ID:               u.ID,
		ProductID:        u.ProductID,
		Type:             u.Type,
		Name:             u.Name,
		Barcode:          u.Barcode,
		ConversionFactor: u.ConversionFactor,
		Prices:           u.Prices,
		IsGenerated:      u.IsGenerated,
		IsBase:           u.IsBase(),
	}
}
