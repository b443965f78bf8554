package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// InventoryUseCase fachada DTO sobre el motor y la importación (consumida por HTTP y CLI).
type InventoryUseCase struct {
	engine   *MovementEngine
	importer *ImportBatchUseCase
}

// NewInventoryUseCase construye el caso de uso.
func NewInventoryUseCase(engine *MovementEngine, importer *ImportBatchUseCase) *InventoryUseCase {
	return &InventoryUseCase{engine: engine, importer: importer}
}

// SubmitMovement registra (y opcionalmente aplica) un movimiento a nombre de userID.
func (uc *InventoryUseCase) SubmitMovement(ctx context.Context, userID string, in dto.SubmitMovementRequest) (*dto.MovementResponse, error) {
	req := MovementRequest{
		Type:            in.Type,
		ProductID:       in.ProductID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		DocumentRef:     in.DocumentRef,
		Notes:           in.Notes,
		CreatedBy:       userID,
		Mode:            in.Mode,
	}
	if in.Date != nil {
		req.Date = *in.Date
	}
	for _, it := range in.Items {
		req.Items = append(req.Items, entity.MovementItem{UnitID: it.UnitID, Quantity: it.Quantity})
	}
	mov, err := uc.engine.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// ApplyMovement aplica un movimiento pending.
func (uc *InventoryUseCase) ApplyMovement(ctx context.Context, id string) (*dto.MovementResponse, error) {
	mov, err := uc.engine.Apply(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// CancelMovement cancela un movimiento pending.
func (uc *InventoryUseCase) CancelMovement(ctx context.Context, id string) (*dto.MovementResponse, error) {
	mov, err := uc.engine.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// ReverseMovement revierte un movimiento completed.
func (uc *InventoryUseCase) ReverseMovement(ctx context.Context, id string) (*dto.MovementResponse, error) {
	mov, err := uc.engine.Reverse(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// GetMovement obtiene un movimiento.
func (uc *InventoryUseCase) GetMovement(ctx context.Context, id string) (*dto.MovementResponse, error) {
	mov, err := uc.engine.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// ListMovements lista movimientos con filtros.
func (uc *InventoryUseCase) ListMovements(ctx context.Context, in dto.MovementListRequest) (*dto.MovementListResponse, error) {
	in.DefaultPage()
	list, err := uc.engine.List(ctx, entity.MovementFilter{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Status:      in.Status,
		Limit:       in.Limit,
		Offset:      in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// GetQuantity cantidad disponible de la tripleta.
func (uc *InventoryUseCase) GetQuantity(ctx context.Context, in dto.StockQueryRequest) (*dto.StockQuantityResponse, error) {
	qty, err := uc.engine.GetQuantity(ctx, in.ProductID, in.WarehouseID, in.UnitID)
	if err != nil {
		return nil, err
	}
	return &dto.StockQuantityResponse{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		UnitID:      in.UnitID,
		Quantity:    qty,
	}, nil
}

// ListWarehouseStock entradas del ledger de una bodega.
func (uc *InventoryUseCase) ListWarehouseStock(ctx context.Context, warehouseID string) ([]dto.StockEntryResponse, error) {
	entries, err := uc.engine.stock.ListByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.StockEntryResponse{
			ProductID:   e.ProductID,
			WarehouseID: e.WarehouseID,
			UnitID:      e.UnitID,
			Quantity:    e.Quantity,
			UpdatedAt:   e.UpdatedAt,
		})
	}
	return out, nil
}

// Import importa filas JSON.
func (uc *InventoryUseCase) Import(ctx context.Context, userID string, in dto.ImportRequest) (*dto.BatchReportResponse, error) {
	rows := make([]ImportRow, 0, len(in.Rows))
	for i, r := range in.Rows {
		line := r.Line
		if line == 0 {
			line = i + 1
		}
		rows = append(rows, ImportRow{
			Line:        line,
			SKU:         r.SKU,
			Quantity:    r.Quantity,
			WarehouseID: r.WarehouseID,
			UnitID:      r.UnitID,
		})
	}
	return uc.ImportRows(ctx, ImportRequest{Source: in.Source, CreatedBy: userID, Rows: rows})
}

// ImportRows importa filas ya leídas (archivo subido o CLI).
func (uc *InventoryUseCase) ImportRows(ctx context.Context, req ImportRequest) (*dto.BatchReportResponse, error) {
	report, err := uc.importer.ImportBatch(ctx, req)
	if err != nil {
		return nil, err
	}
	return ToBatchReportResponse(report), nil
}

// ToMovementResponse mapea la entidad al DTO de salida.
func ToMovementResponse(m *entity.StockMovement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	items := make([]dto.MovementItemResponse, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, dto.MovementItemResponse{UnitID: it.UnitID, Quantity: it.Quantity})
	}
	return &dto.MovementResponse{
		ID:              m.ID,
		Type:            m.Type,
		Date:            m.Date,
		ProductID:       m.ProductID,
		FromWarehouseID: m.FromWarehouseID,
		ToWarehouseID:   m.ToWarehouseID,
		DocumentRef:     m.DocumentRef,
		Notes:           m.Notes,
		Items:           items,
		Status:          m.Status,
		CreatedBy:       m.CreatedBy,
		AppliedAt:       m.AppliedAt,
		ReversedAt:      m.ReversedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ToBatchReportResponse mapea el reporte de importación.
func ToBatchReportResponse(r *BatchReport) *dto.BatchReportResponse {
	conv := func(in []RowOutcome) []dto.RowOutcomeResponse {
		out := make([]dto.RowOutcomeResponse, 0, len(in))
		for _, o := range in {
			out = append(out, dto.RowOutcomeResponse{
				Line: o.Line, SKU: o.SKU, Status: o.Status, MovementID: o.MovementID, Reason: o.Reason,
			})
		}
		return out
	}
	return &dto.BatchReportResponse{Source: r.Source, Applied: conv(r.Applied), Skipped: conv(r.Skipped)}
}
