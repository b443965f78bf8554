package http

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/spreadsheet"
)

// ImportHandler cargas masivas de inventario (JSON o archivo).
type ImportHandler struct {
	uc              *inventory.InventoryUseCase
	defaultEncoding string
}

// NewImportHandler construye el handler. defaultEncoding aplica a CSV sin campo encoding.
func NewImportHandler(uc *inventory.InventoryUseCase, defaultEncoding string) *ImportHandler {
	return &ImportHandler{uc: uc, defaultEncoding: defaultEncoding}
}

// Import godoc
// @Summary      Importar filas de inventario
// @Description  Agrupa por producto y bodega y registra un movimiento initial completado por grupo.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ImportRequest  true  "source y filas sku, quantity, warehouse_id, unit_id"
// @Success      200   {object}  dto.BatchReportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/import [post]
func (h *ImportHandler) Import(c *fiber.Ctx) error {
	var in dto.ImportRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Import(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ImportFile godoc
// @Summary      Importar archivo CSV o XLSX
// @Description  Primera fila de encabezado; columnas sku, quantity, warehouse_id, unit_id.
// @Tags         inventory
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file      formData  file    true   "Archivo .csv o .xlsx"
// @Param        source    formData  string  false  "csv | xlsx | woocommerce | other (por defecto según extensión)"
// @Param        encoding  formData  string  false  "utf-8 | windows-1252 | iso-8859-1 (solo CSV)"
// @Param        sheet     formData  string  false  "Hoja del XLSX (por defecto la primera)"
// @Success      200  {object}  dto.BatchReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/import/file [post]
func (h *ImportHandler) ImportFile(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, domain.NewValidationError("file", "archivo requerido"))
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != ".csv" && ext != ".xlsx" {
		return respondError(c, domain.NewValidationError("file", "solo se aceptan archivos .csv o .xlsx"))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, domain.NewValidationError("file", "no se pudo abrir el archivo: %v", err))
	}
	defer f.Close()

	var res *spreadsheet.Result
	if ext == ".xlsx" {
		res, err = spreadsheet.ReadXLSX(f, c.FormValue("sheet"))
	} else {
		enc := c.FormValue("encoding", h.defaultEncoding)
		res, err = spreadsheet.ReadCSV(f, enc)
	}
	if err != nil {
		return respondError(c, err)
	}

	source := c.FormValue("source", strings.TrimPrefix(ext, "."))
	out, err := h.uc.ImportRows(c.Context(), inventory.ImportRequest{
		Source:    source,
		CreatedBy: GetUserID(c),
		Rows:      res.Rows,
		Rejected:  res.Rejected,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
