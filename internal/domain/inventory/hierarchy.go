package inventory

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// HierarchyNode ubicación con sus hijas (árbol para la UI y filtros de traslado).
type HierarchyNode struct {
	Warehouse *entity.Warehouse
	Children  []*HierarchyNode
}

// SortByName ordena por nombre con colación en español (ñ después de n, sin distinguir mayúsculas).
// Empates por ID para un orden estable.
func SortByName(ws []*entity.Warehouse) {
	// collate.Collator no es seguro para uso concurrente: uno por llamada.
	c := collate.New(language.Spanish, collate.IgnoreCase)
	sort.SliceStable(ws, func(i, j int) bool {
		if r := c.CompareString(ws[i].Name, ws[j].Name); r != 0 {
			return r < 0
		}
		return ws[i].ID < ws[j].ID
	})
}

// BuildHierarchy arma el bosque con raíz en las tiendas sin padre.
// Bodegas sin padre que no son tienda quedan fuera del árbol.
func BuildHierarchy(all []*entity.Warehouse) []*HierarchyNode {
	byParent := make(map[string][]*entity.Warehouse, len(all))
	var roots []*entity.Warehouse
	for _, w := range all {
		if w.ParentID == "" {
			if w.Kind == entity.WarehouseKindStore {
				roots = append(roots, w)
			}
			continue
		}
		byParent[w.ParentID] = append(byParent[w.ParentID], w)
	}
	SortByName(roots)

	visited := make(map[string]bool, len(all))
	var build func(w *entity.Warehouse) *HierarchyNode
	build = func(w *entity.Warehouse) *HierarchyNode {
		visited[w.ID] = true
		node := &HierarchyNode{Warehouse: w, Children: []*HierarchyNode{}}
		children := byParent[w.ID]
		SortByName(children)
		for _, child := range children {
			if visited[child.ID] {
				continue // ciclo en parent_id
			}
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	forest := make([]*HierarchyNode, 0, len(roots))
	for _, r := range roots {
		forest = append(forest, build(r))
	}
	return forest
}
