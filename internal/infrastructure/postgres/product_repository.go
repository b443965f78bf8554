package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste el producto y sus unidades en una sola transacción (savepoint si q ya es una tx).
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	err := pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO products (id, sku, name, description, category_id, min_stock, max_stock, base_unit_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			product.ID, product.SKU, product.Name, product.Description, product.CategoryID,
			product.MinStock, product.MaxStock, product.BaseUnitID, product.CreatedAt, product.UpdatedAt,
		)
		if err != nil {
			return err
		}
		for _, u := range product.Units {
			prices := u.Prices
			if prices == nil {
				prices = map[string]decimal.Decimal{}
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO product_units (id, product_id, type, name, barcode, conversion_factor, prices, is_generated)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				u.ID, product.ID, u.Type, u.Name, nullIfEmpty(u.Barcode), u.ConversionFactor, prices, u.IsGenerated,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product %s: %w", product.SKU, domain.ErrDuplicate)
		}
		return domain.NewStorageError("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID con sus unidades.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `WHERE p.id = $1`, id)
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, `WHERE p.sku = $1`, sku)
}

// GetByUnitID producto dueño de la unidad.
func (r *ProductRepo) GetByUnitID(ctx context.Context, unitID string) (*entity.Product, error) {
	return r.getOne(ctx, `WHERE p.id = (SELECT product_id FROM product_units WHERE id = $1)`, unitID)
}

// GetByBarcode producto con alguna unidad que tenga ese código.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	return r.getOne(ctx, `WHERE p.id = (SELECT product_id FROM product_units WHERE barcode = $1)`, barcode)
}

// BarcodeExists indica si el código ya está asignado a alguna unidad.
func (r *ProductRepo) BarcodeExists(ctx context.Context, barcode string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM product_units WHERE barcode = $1)`, barcode).Scan(&exists)
	if err != nil {
		return false, domain.NewStorageError("check barcode", err)
	}
	return exists, nil
}

func (r *ProductRepo) getOne(ctx context.Context, where string, arg string) (*entity.Product, error) {
	query := `
		SELECT p.id, p.sku, p.name, p.description, p.category_id, p.min_stock, p.max_stock, p.base_unit_id, p.created_at, p.updated_at
		FROM products p ` + where
	var p entity.Product
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.CategoryID, &p.MinStock, &p.MaxStock,
		&p.BaseUnitID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("get product", err)
	}
	units, err := r.units(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Units = units
	return &p, nil
}

func (r *ProductRepo) units(ctx context.Context, productID string) ([]entity.Unit, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, type, name, COALESCE(barcode, ''), conversion_factor, prices, is_generated
		FROM product_units WHERE product_id = $1
		ORDER BY conversion_factor, id`, productID)
	if err != nil {
		return nil, domain.NewStorageError("list product units", err)
	}
	defer rows.Close()
	units := make([]entity.Unit, 0)
	for rows.Next() {
		var u entity.Unit
		if err := rows.Scan(&u.ID, &u.ProductID, &u.Type, &u.Name, &u.Barcode, &u.ConversionFactor, &u.Prices, &u.IsGenerated); err != nil {
			return nil, domain.NewStorageError("scan product unit", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list product units", err)
	}
	return units, nil
}
