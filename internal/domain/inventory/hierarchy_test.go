package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func wh(id, name, kind, parent string) *entity.Warehouse {
	return &entity.Warehouse{ID: id, Name: name, Kind: kind, ParentID: parent}
}

func names(ws []*entity.Warehouse) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Name
	}
	return out
}

func TestSortByName_ColacionEspanol(t *testing.T) {
	ws := []*entity.Warehouse{
		wh("1", "Zona Norte", entity.WarehouseKindWarehouse, ""),
		wh("2", "Ñapa", entity.WarehouseKindWarehouse, ""),
		wh("3", "almacén", entity.WarehouseKindWarehouse, ""),
		wh("4", "Nube", entity.WarehouseKindWarehouse, ""),
		wh("5", "Bodega", entity.WarehouseKindWarehouse, ""),
	}
	SortByName(ws)
	assert.Equal(t, []string{"almacén", "Bodega", "Nube", "Ñapa", "Zona Norte"}, names(ws))
}

func TestBuildHierarchy(t *testing.T) {
	all := []*entity.Warehouse{
		wh("default", "Almacén Principal", entity.WarehouseKindWarehouse, ""),
		wh("s2", "Tienda Este", entity.WarehouseKindStore, ""),
		wh("s1", "Tienda Centro", entity.WarehouseKindStore, ""),
		wh("w1", "Depósito", entity.WarehouseKindWarehouse, "s1"),
		wh("w1a", "Estante 2", entity.WarehouseKindWarehouse, "w1"),
		wh("w1b", "Estante 1", entity.WarehouseKindWarehouse, "w1"),
	}
	forest := BuildHierarchy(all)
	require.Len(t, forest, 2, "solo tiendas sin padre son raíces")
	assert.Equal(t, "Tienda Centro", forest[0].Warehouse.Name)
	assert.Equal(t, "Tienda Este", forest[1].Warehouse.Name)
	require.Len(t, forest[0].Children, 1)
	dep := forest[0].Children[0]
	assert.Equal(t, "w1", dep.Warehouse.ID)
	require.Len(t, dep.Children, 2)
	assert.Equal(t, "Estante 1", dep.Children[0].Warehouse.Name)
	assert.Empty(t, forest[1].Children)
}

func TestBuildHierarchy_CicloNoCuelga(t *testing.T) {
	all := []*entity.Warehouse{
		wh("s1", "Tienda", entity.WarehouseKindStore, ""),
		wh("a", "A", entity.WarehouseKindWarehouse, "s1"),
		wh("b", "B", entity.WarehouseKindWarehouse, "a"),
		wh("s1", "Tienda", entity.WarehouseKindStore, "b"),
	}
	forest := BuildHierarchy(all)
	require.Len(t, forest, 1)
	require.Len(t, forest[0].Children, 1)
}
