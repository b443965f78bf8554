package inventory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestCheckRoute(t *testing.T) {
	tests := []struct {
		name      string
		movType   string
		from, to  string
		wantField string // vacío = válido
	}{
		{"inicial ok", entity.MovementTypeInitial, "", "w1", ""},
		{"compra con origen", entity.MovementTypePurchase, "w2", "w1", "from_warehouse_id"},
		{"orden de compra sin destino", entity.MovementTypePurchaseOrder, "", "", "to_warehouse_id"},
		{"venta ok", entity.MovementTypeSale, "w1", "", ""},
		{"venta sin origen", entity.MovementTypeSale, "", "", "from_warehouse_id"},
		{"venta con destino", entity.MovementTypeSale, "w1", "w2", "to_warehouse_id"},
		{"traslado ok", entity.MovementTypeTransferWarehouse, "w1", "w2", ""},
		{"traslado misma bodega", entity.MovementTypeTransferWarehouse, "w1", "w1", "to_warehouse_id"},
		{"traslado tienda sin origen", entity.MovementTypeTransferStore, "", "s1", "from_warehouse_id"},
		{"ajuste positivo", entity.MovementTypeAdjustment, "", "w1", ""},
		{"ajuste negativo", entity.MovementTypeAdjustment, "w1", "", ""},
		{"ajuste sin extremos", entity.MovementTypeAdjustment, "", "", "to_warehouse_id"},
		{"ajuste con ambos", entity.MovementTypeAdjustment, "w1", "w2", "from_warehouse_id"},
		{"tipo desconocido", "gift", "", "w1", "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRoute(tt.movType, tt.from, tt.to)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve), "se esperaba ValidationError, recibido %v", err)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestRequiredKind(t *testing.T) {
	k, ok := RequiredKind(entity.MovementTypeTransferWarehouse)
	assert.True(t, ok)
	assert.Equal(t, entity.WarehouseKindWarehouse, k)
	k, ok = RequiredKind(entity.MovementTypeTransferStore)
	assert.True(t, ok)
	assert.Equal(t, entity.WarehouseKindStore, k)
	_, ok = RequiredKind(entity.MovementTypeSale)
	assert.False(t, ok)
}

func TestCheckItems(t *testing.T) {
	var ve *domain.ValidationError

	require.True(t, errors.As(CheckItems(nil), &ve))
	assert.Equal(t, "items", ve.Field)

	require.True(t, errors.As(CheckItems([]entity.MovementItem{{UnitID: "u", Quantity: 0}}), &ve))
	assert.Equal(t, "items[0].quantity", ve.Field)

	require.True(t, errors.As(CheckItems([]entity.MovementItem{{UnitID: "u", Quantity: 1}, {UnitID: "", Quantity: 2}}), &ve))
	assert.Equal(t, "items[1].unit_id", ve.Field)

	assert.NoError(t, CheckItems([]entity.MovementItem{{UnitID: "u", Quantity: 1}, {UnitID: "u", Quantity: 2}}), "unidad repetida se suma")

	assert.NoError(t, CheckItems([]entity.MovementItem{{UnitID: "u", Quantity: 1}, {UnitID: "b", Quantity: 2}}))
}
