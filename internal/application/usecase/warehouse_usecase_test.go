package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

func newWarehouseUC() (*WarehouseUseCase, *memory.Store) {
	store := memory.NewStore()
	return NewWarehouseUseCase(store.Warehouses(), store.Stock()), store
}

func TestWarehouseUseCase_CreateYOrden(t *testing.T) {
	ctx := context.Background()
	uc, _ := newWarehouseUC()

	zona, err := uc.Create(ctx, dto.CreateWarehouseRequest{Name: "Zona Norte", Kind: "store"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateWarehouseRequest{Name: "Ñandú", Kind: "warehouse", ParentID: zona.ID})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateWarehouseRequest{Name: "Norte 2", Kind: "warehouse", ParentID: zona.ID})
	require.NoError(t, err)

	children, err := uc.GetChildren(ctx, zona.ID)
	require.NoError(t, err)
	require.Len(t, children.Items, 2)
	assert.Equal(t, "Norte 2", children.Items[0].Name)
	assert.Equal(t, "Ñandú", children.Items[1].Name, "Ñ ordena después de N")

	_, err = uc.Create(ctx, dto.CreateWarehouseRequest{Name: "x", Kind: "warehouse", ParentID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.Create(ctx, dto.CreateWarehouseRequest{Name: "x", Kind: "depot"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.GetChildren(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWarehouseUseCase_SetDefault(t *testing.T) {
	ctx := context.Background()
	uc, _ := newWarehouseUC()
	w, err := uc.Create(ctx, dto.CreateWarehouseRequest{Name: "Nueva", Kind: "warehouse", IsDefault: true})
	require.NoError(t, err)
	assert.True(t, w.IsDefault)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	defaults := 0
	for _, it := range list.Items {
		if it.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)

	_, err = uc.SetDefault(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWarehouseUseCase_Delete(t *testing.T) {
	ctx := context.Background()
	uc, store := newWarehouseUC()
	parent, err := uc.Create(ctx, dto.CreateWarehouseRequest{Name: "Tienda", Kind: "store"})
	require.NoError(t, err)
	child, err := uc.Create(ctx, dto.CreateWarehouseRequest{Name: "Bodega", Kind: "warehouse", ParentID: parent.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Delete(ctx, memory.DefaultWarehouseID), domain.ErrConflict)
	assert.ErrorIs(t, uc.Delete(ctx, parent.ID), domain.ErrConflict)

	require.NoError(t, store.TxRunner().Run(ctx, func(_ repository.StockMovementRepository, st repository.StockRepository) error {
		return st.ApplyDelta(ctx, "p", child.ID, "u", 2)
	}))
	assert.ErrorIs(t, uc.Delete(ctx, child.ID), domain.ErrConflict)

	require.NoError(t, store.TxRunner().Run(ctx, func(_ repository.StockMovementRepository, st repository.StockRepository) error {
		return st.ApplyDelta(ctx, "p", child.ID, "u", -2)
	}))
	require.NoError(t, uc.Delete(ctx, child.ID))
	require.NoError(t, uc.Delete(ctx, parent.ID))
	assert.ErrorIs(t, uc.Delete(ctx, parent.ID), domain.ErrNotFound)
}
