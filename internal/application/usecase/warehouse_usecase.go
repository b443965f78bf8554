package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// WarehouseUseCase tiendas, bodegas y su jerarquía.
type WarehouseUseCase struct {
	repo  repository.WarehouseRepository
	stock repository.StockReader
}

// NewWarehouseUseCase construye el caso de uso. stock se usa para impedir borrar bodegas con existencias.
func NewWarehouseUseCase(repo repository.WarehouseRepository, stock repository.StockReader) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo, stock: stock}
}

// Create crea una tienda o bodega. Si trae padre, este debe existir.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if in.Name == "" {
		return nil, domain.NewValidationError("name", "es requerido")
	}
	if !entity.ValidWarehouseKind(in.Kind) {
		return nil, domain.NewValidationError("kind", "debe ser %s o %s", entity.WarehouseKindStore, entity.WarehouseKindWarehouse)
	}
	if in.ParentID != "" {
		parent, err := uc.repo.GetByID(ctx, in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, domain.NewNotFoundError("warehouse", in.ParentID)
		}
	}
	now := time.Now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Kind:      in.Kind,
		Location:  in.Location,
		ParentID:  in.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	if in.IsDefault {
		if err := uc.repo.SetDefault(ctx, warehouse.ID); err != nil {
			return nil, err
		}
		warehouse.IsDefault = true
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista todas las ubicaciones ordenadas por nombre.
func (uc *WarehouseUseCase) List(ctx context.Context) (*dto.WarehouseListResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	inventory.SortByName(list)
	return &dto.WarehouseListResponse{Items: toWarehouseResponses(list)}, nil
}

// GetChildren hijas directas de warehouseID, ordenadas por nombre.
func (uc *WarehouseUseCase) GetChildren(ctx context.Context, warehouseID string) (*dto.WarehouseListResponse, error) {
	if _, err := uc.get(ctx, warehouseID); err != nil {
		return nil, err
	}
	children, err := uc.repo.ListChildren(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	inventory.SortByName(children)
	return &dto.WarehouseListResponse{Items: toWarehouseResponses(children)}, nil
}

// GetHierarchy bosque de ubicaciones con raíz en las tiendas sin padre.
func (uc *WarehouseUseCase) GetHierarchy(ctx context.Context) ([]dto.WarehouseNodeResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	forest := inventory.BuildHierarchy(list)
	out := make([]dto.WarehouseNodeResponse, 0, len(forest))
	for _, n := range forest {
		out = append(out, toNodeResponse(n))
	}
	return out, nil
}

// SetDefault marca la bodega como la única por defecto.
func (uc *WarehouseUseCase) SetDefault(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !warehouse.IsDefault {
		if err := uc.repo.SetDefault(ctx, id); err != nil {
			return nil, err
		}
		warehouse.IsDefault = true
	}
	return toWarehouseResponse(warehouse), nil
}

// Delete elimina una bodega. Conflict si es la por defecto, tiene existencias o ubicaciones hijas.
func (uc *WarehouseUseCase) Delete(ctx context.Context, id string) error {
	warehouse, err := uc.get(ctx, id)
	if err != nil {
		return err
	}
	if warehouse.IsDefault {
		return domain.NewConflictError("warehouse", "%s es la bodega por defecto", id)
	}
	hasStock, err := uc.stock.HasNonZeroStock(ctx, id)
	if err != nil {
		return err
	}
	if hasStock {
		return domain.NewConflictError("warehouse", "%s tiene existencias", id)
	}
	children, err := uc.repo.ListChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return domain.NewConflictError("warehouse", "%s tiene %d ubicaciones hijas", id, len(children))
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *WarehouseUseCase) get(ctx context.Context, id string) (*entity.Warehouse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.NewNotFoundError("warehouse", id)
	}
	return warehouse, nil
}

func toWarehouseResponses(list []*entity.Warehouse) []dto.WarehouseResponse {
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return items
}

func toNodeResponse(n *inventory.HierarchyNode) dto.WarehouseNodeResponse {
	node := dto.WarehouseNodeResponse{
		WarehouseResponse: *toWarehouseResponse(n.Warehouse),
		Children:          make([]dto.WarehouseNodeResponse, 0, len(n.Children)),
	}
	for _, c := range n.Children {
		node.Children = append(node.Children, toNodeResponse(c))
	}
	return node
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:        w.ID,
		Name:      w.Name,
		Kind:      w.Kind,
		Location:  w.Location,
		ParentID:  w.ParentID,
		IsDefault: w.IsDefault,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
