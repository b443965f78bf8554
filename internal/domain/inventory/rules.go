package inventory

import (
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CheckRoute valida origen/destino según el tipo de movimiento.
//   - initial, purchase, purchase_order: sin origen, destino obligatorio.
//   - sale: origen obligatorio, sin destino.
//   - transfer_*: ambos obligatorios y distintos.
//   - adjustment: exactamente uno (destino = aumenta, origen = disminuye).
func CheckRoute(movementType, fromWarehouseID, toWarehouseID string) error {
	switch movementType {
	case entity.MovementTypeInitial, entity.MovementTypePurchase, entity.MovementTypePurchaseOrder:
		if fromWarehouseID != "" {
			return domain.NewValidationError("from_warehouse_id", "no aplica para movimientos %s", movementType)
		}
		if toWarehouseID == "" {
			return domain.NewValidationError("to_warehouse_id", "es requerido")
		}
	case entity.MovementTypeSale:
		if fromWarehouseID == "" {
			return domain.NewValidationError("from_warehouse_id", "es requerido")
		}
		if toWarehouseID != "" {
			return domain.NewValidationError("to_warehouse_id", "no aplica para ventas")
		}
	case entity.MovementTypeTransferWarehouse, entity.MovementTypeTransferStore:
		if fromWarehouseID == "" {
			return domain.NewValidationError("from_warehouse_id", "es requerido")
		}
		if toWarehouseID == "" {
			return domain.NewValidationError("to_warehouse_id", "es requerido")
		}
		if fromWarehouseID == toWarehouseID {
			return domain.NewValidationError("to_warehouse_id", "debe ser distinto del origen")
		}
	case entity.MovementTypeAdjustment:
		if fromWarehouseID == "" && toWarehouseID == "" {
			return domain.NewValidationError("to_warehouse_id", "se requiere origen o destino")
		}
		if fromWarehouseID != "" && toWarehouseID != "" {
			return domain.NewValidationError("from_warehouse_id", "un ajuste tiene origen o destino, no ambos")
		}
	default:
		return domain.NewValidationError("type", "tipo de movimiento desconocido %q", movementType)
	}
	return nil
}

// RequiredKind clase de ubicación exigida a ambos extremos de un traslado.
func RequiredKind(movementType string) (string, bool) {
	switch movementType {
	case entity.MovementTypeTransferWarehouse:
		return entity.WarehouseKindWarehouse, true
	case entity.MovementTypeTransferStore:
		return entity.WarehouseKindStore, true
	}
	return "", false
}

// CheckItems valida la lista de ítems: no vacía, unidad presente y cantidades > 0.
// Una unidad puede repetirse en varias líneas; sus cantidades se suman.
func CheckItems(items []entity.MovementItem) error {
	if len(items) == 0 {
		return domain.NewValidationError("items", "debe tener al menos un ítem")
	}
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if item.UnitID == "" {
			return domain.NewValidationError(field+".unit_id", "es requerido")
		}
		if item.Quantity <= 0 {
			return domain.NewValidationError(field+".quantity", "debe ser mayor que cero")
		}
	}
	return nil
}
