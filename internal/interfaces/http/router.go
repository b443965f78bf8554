package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InventoryUC    *inventory.InventoryUseCase
	ProductUC      *usecase.ProductUseCase
	WarehouseUC    *usecase.WarehouseUseCase
	JWTSecret      string
	ImportEncoding string
}

// Router registra las rutas de la API. Todas exigen Bearer Token.
// Lecturas: cualquier rol. Movimientos: admin, bodeguero y vendedor.
// Catálogo e importación: admin y bodeguero. Borrar o cambiar la bodega por defecto: admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(RoleAdmin, RoleBodeguero, RoleVendedor)
	stockRoles := RequireRole(RoleAdmin, RoleBodeguero)
	adminOnly := RequireRole(RoleAdmin)

	// Inventory
	inv := api.Group("/inventory", anyRole)
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	inv.Post("/movements", inventoryHandler.SubmitMovement)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/movements/:id", inventoryHandler.GetMovement)
	inv.Post("/movements/:id/apply", inventoryHandler.ApplyMovement)
	inv.Post("/movements/:id/cancel", inventoryHandler.CancelMovement)
	inv.Post("/movements/:id/reverse", stockRoles, inventoryHandler.ReverseMovement)
	inv.Get("/stock", inventoryHandler.GetQuantity)
	inv.Get("/stock/warehouses/:id", inventoryHandler.ListWarehouseStock)

	importHandler := NewImportHandler(deps.InventoryUC, deps.ImportEncoding)
	inv.Post("/import", stockRoles, importHandler.Import)
	inv.Post("/import/file", stockRoles, importHandler.ImportFile)

	// Products & units
	productHandler := NewProductHandler(deps.ProductUC)
	products := api.Group("/products", anyRole)
	products.Post("/", stockRoles, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)

	units := api.Group("/units", anyRole)
	units.Get("/resolve/:code", productHandler.ResolveUnit)
	units.Post("/barcodes", stockRoles, productHandler.GenerateBarcode)
	units.Get("/barcodes/:code/validate", productHandler.ValidateBarcode)

	// Warehouses
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses := api.Group("/warehouses", anyRole)
	warehouses.Post("/", stockRoles, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/hierarchy", warehouseHandler.GetHierarchy)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Get("/:id/children", warehouseHandler.GetChildren)
	warehouses.Put("/:id/default", adminOnly, warehouseHandler.SetDefault)
	warehouses.Delete("/:id", adminOnly, warehouseHandler.Delete)
}
