package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
)

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	engine := inventory.NewMovementEngine(store.TxRunner(), store.Products(), store.Warehouses(),
		store.Stock(), store.Movements(), zerolog.Nop())
	importer := inventory.NewImportBatchUseCase(engine, store.Products(), nil, zerolog.Nop())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		InventoryUC:    inventory.NewInventoryUseCase(engine, importer),
		ProductUC:      usecase.NewProductUseCase(store.Products()),
		WarehouseUC:    usecase.NewWarehouseUseCase(store.Warehouses(), store.Stock()),
		JWTSecret:      testJWTSecret,
		ImportEncoding: "utf-8",
	})
	return &apiFixture{app: app, store: store}
}

func (f *apiFixture) do(t *testing.T, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", tokenForRole(t, role))
	return f.send(t, req)
}

func (f *apiFixture) send(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

// seedCatalog crea un producto (unidad + caja x12) y una bodega vía API.
func (f *apiFixture) seedCatalog(t *testing.T) (dto.ProductResponse, dto.WarehouseResponse) {
	t.Helper()
	resp, raw := f.do(t, http.MethodPost, "/api/products", "admin", map[string]any{
		"sku": "HAR-01", "name": "Harina",
		"units": []map[string]any{
			{"type": "unit", "name": "Unidad", "conversion_factor": "1", "generate_barcode": true},
			{"type": "box", "name": "Caja x12", "conversion_factor": "12"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(raw, &p))

	resp, raw = f.do(t, http.MethodPost, "/api/warehouses", "bodeguero", dto.CreateWarehouseRequest{Name: "Depósito Norte", Kind: "warehouse"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var w dto.WarehouseResponse
	require.NoError(t, json.Unmarshal(raw, &w))
	return p, w
}

func decodeError(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e), string(raw))
	return e
}

func TestAPI_MovimientoCompletadoYConsulta(t *testing.T) {
	f := newAPI(t)
	p, w := f.seedCatalog(t)
	require.Len(t, p.Units, 2)
	require.NotEmpty(t, p.Units[0].Barcode)

	resp, raw := f.do(t, http.MethodPost, "/api/inventory/movements", "vendedor", dto.SubmitMovementRequest{
		Type: "initial", ProductID: p.ID, ToWarehouseID: w.ID, Mode: "completed",
		Items: []dto.MovementItemRequest{{UnitID: p.BaseUnitID, Quantity: 10}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var mov dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &mov))
	assert.Equal(t, "completed", mov.Status)
	assert.Equal(t, testUserID, mov.CreatedBy)
	assert.NotNil(t, mov.AppliedAt)

	resp, raw = f.do(t, http.MethodGet, "/api/inventory/stock?product_id="+p.ID+"&warehouse_id="+w.ID+"&unit_id="+p.BaseUnitID, "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var q dto.StockQuantityResponse
	require.NoError(t, json.Unmarshal(raw, &q))
	assert.Equal(t, int64(10), q.Quantity)

	resp, raw = f.do(t, http.MethodGet, "/api/inventory/movements/"+mov.ID, "vendedor", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, raw = f.do(t, http.MethodGet, "/api/inventory/movements?status=completed&product_id="+p.ID, "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var list dto.MovementListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 50, list.Page.Limit)

	resp, raw = f.do(t, http.MethodGet, "/api/units/resolve/"+p.Units[0].Barcode, "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var resolved dto.ResolvedUnitResponse
	require.NoError(t, json.Unmarshal(raw, &resolved))
	assert.Equal(t, p.ID, resolved.Product.ID)
}

func TestAPI_PendienteAplicarYRevertir(t *testing.T) {
	f := newAPI(t)
	p, w := f.seedCatalog(t)

	resp, raw := f.do(t, http.MethodPost, "/api/inventory/movements", "bodeguero", dto.SubmitMovementRequest{
		Type: "purchase", ProductID: p.ID, ToWarehouseID: w.ID,
		Items: []dto.MovementItemRequest{{UnitID: p.BaseUnitID, Quantity: 4}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var mov dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &mov))
	assert.Equal(t, "pending", mov.Status)

	resp, _ = f.do(t, http.MethodPost, "/api/inventory/movements/"+mov.ID+"/apply", "bodeguero", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, http.MethodPost, "/api/inventory/movements/"+mov.ID+"/apply", "bodeguero", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "aplicar dos veces es idempotente")

	resp, raw = f.do(t, http.MethodPost, "/api/inventory/movements/"+mov.ID+"/cancel", "bodeguero", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(raw))

	resp, _ = f.do(t, http.MethodPost, "/api/inventory/movements/"+mov.ID+"/reverse", "vendedor", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = f.do(t, http.MethodPost, "/api/inventory/movements/"+mov.ID+"/reverse", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &mov))
	assert.Equal(t, "cancelled", mov.Status)
	assert.NotNil(t, mov.ReversedAt)
}

func TestAPI_Errores(t *testing.T) {
	f := newAPI(t)
	p, w := f.seedCatalog(t)

	t.Run("validación de campos", func(t *testing.T) {
		resp, raw := f.do(t, http.MethodPost, "/api/inventory/movements", "admin", dto.SubmitMovementRequest{
			Type: "sale", ProductID: p.ID, FromWarehouseID: w.ID,
			Items: []dto.MovementItemRequest{{UnitID: p.BaseUnitID, Quantity: 0}},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		e := decodeError(t, raw)
		assert.Equal(t, "VALIDATION", e.Code)
		assert.Equal(t, "items[0].quantity", e.Field)
	})

	t.Run("stock insuficiente", func(t *testing.T) {
		resp, raw := f.do(t, http.MethodPost, "/api/inventory/movements", "admin", dto.SubmitMovementRequest{
			Type: "sale", ProductID: p.ID, FromWarehouseID: w.ID, Mode: "completed",
			Items: []dto.MovementItemRequest{{UnitID: p.BaseUnitID, Quantity: 1}},
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "INSUFFICIENT_STOCK", decodeError(t, raw).Code)
	})

	t.Run("crédito que desborda el ledger", func(t *testing.T) {
		resp, raw := f.do(t, http.MethodPost, "/api/inventory/movements", "admin", dto.SubmitMovementRequest{
			Type: "purchase", ProductID: p.ID, ToWarehouseID: w.ID, Mode: "completed",
			Items: []dto.MovementItemRequest{
				{UnitID: p.BaseUnitID, Quantity: math.MaxInt64},
				{UnitID: p.BaseUnitID, Quantity: 1},
			},
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode, string(raw))
		e := decodeError(t, raw)
		assert.Equal(t, "CONFLICT", e.Code)
		assert.Equal(t, "stock", e.Field)
	})

	t.Run("transferencia a la misma bodega", func(t *testing.T) {
		resp, raw := f.do(t, http.MethodPost, "/api/inventory/movements", "admin", dto.SubmitMovementRequest{
			Type: "transfer_warehouse", ProductID: p.ID, FromWarehouseID: w.ID, ToWarehouseID: w.ID,
			Items: []dto.MovementItemRequest{{UnitID: p.BaseUnitID, Quantity: 1}},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))
	})

	t.Run("movimiento inexistente", func(t *testing.T) {
		resp, raw := f.do(t, http.MethodGet, "/api/inventory/movements/nope", "admin", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, raw).Code)
	})

	t.Run("SKU duplicado", func(t *testing.T) {
		resp, _ := f.do(t, http.MethodPost, "/api/products", "admin", map[string]any{
			"sku": "HAR-01", "name": "Otra",
			"units": []map[string]any{{"type": "unit", "name": "Unidad", "conversion_factor": "1"}},
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("barcode inválido", func(t *testing.T) {
		resp, raw := f.do(t, http.MethodPost, "/api/products", "admin", map[string]any{
			"sku": "X-1", "name": "X",
			"units": []map[string]any{{"type": "unit", "name": "Unidad", "conversion_factor": "1", "barcode": "2991234567890"}},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BARCODE", decodeError(t, raw).Code)
	})

	t.Run("borrar bodega por defecto", func(t *testing.T) {
		resp, _ := f.do(t, http.MethodDelete, "/api/warehouses/"+memory.DefaultWarehouseID, "bodeguero", nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp, raw := f.do(t, http.MethodDelete, "/api/warehouses/"+memory.DefaultWarehouseID, "admin", nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode, string(raw))
	})

	t.Run("sin token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/warehouses", nil)
		resp, _ := f.send(t, req)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAPI_Bodegas(t *testing.T) {
	f := newAPI(t)
	resp, raw := f.do(t, http.MethodPost, "/api/warehouses", "admin", dto.CreateWarehouseRequest{Name: "Tienda Centro", Kind: "store"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var store dto.WarehouseResponse
	require.NoError(t, json.Unmarshal(raw, &store))

	resp, raw = f.do(t, http.MethodPost, "/api/warehouses", "admin", dto.CreateWarehouseRequest{Name: "Bodega trasera", Kind: "warehouse", ParentID: store.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var child dto.WarehouseResponse
	require.NoError(t, json.Unmarshal(raw, &child))

	resp, raw = f.do(t, http.MethodGet, "/api/warehouses/hierarchy", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var forest []dto.WarehouseNodeResponse
	require.NoError(t, json.Unmarshal(raw, &forest))
	require.Len(t, forest, 1)
	assert.Equal(t, store.ID, forest[0].ID)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, child.ID, forest[0].Children[0].ID)

	resp, raw = f.do(t, http.MethodGet, "/api/warehouses/"+store.ID+"/children", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, raw = f.do(t, http.MethodPut, "/api/warehouses/"+store.ID+"/default", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var def dto.WarehouseResponse
	require.NoError(t, json.Unmarshal(raw, &def))
	assert.True(t, def.IsDefault)

	resp, _ = f.do(t, http.MethodDelete, "/api/warehouses/"+child.ID, "admin", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAPI_ImportarArchivoCSV(t *testing.T) {
	f := newAPI(t)
	p, w := f.seedCatalog(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "stock.csv")
	require.NoError(t, err)
	_, err = io.WriteString(fw, "sku,quantity,warehouse_id,unit_id\n"+
		"HAR-01,3,"+w.ID+","+p.BaseUnitID+"\n"+
		"HAR-01,2,"+w.ID+","+p.BaseUnitID+"\n"+
		"NOPE,1,"+w.ID+","+p.BaseUnitID+"\n"+
		"HAR-01,x,"+w.ID+","+p.BaseUnitID+"\n")
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("source", "woocommerce"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/inventory/import/file", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", tokenForRole(t, "bodeguero"))
	resp, raw := f.send(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var report dto.BatchReportResponse
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, "woocommerce", report.Source)
	require.Len(t, report.Applied, 2)
	assert.Equal(t, report.Applied[0].MovementID, report.Applied[1].MovementID, "mismo producto y bodega: un movimiento")
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, 4, report.Skipped[0].Line)
	assert.Equal(t, 5, report.Skipped[1].Line)

	q, err := f.store.Stock().GetQuantity(context.Background(), p.ID, w.ID, p.BaseUnitID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), q)
}
