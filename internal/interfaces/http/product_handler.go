package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
)

// ProductHandler productos, unidades y códigos de barras (protegido).
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create godoc
// @Summary      Crear producto
// @Description  Exactamente una unidad con conversion_factor 1 (unidad base).
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto y sus unidades"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ResolveUnit godoc
// @Summary      Resolver unidad por ID o código de barras
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "ID de unidad o código de barras"
// @Success      200  {object}  dto.ResolvedUnitResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/units/resolve/{code} [get]
func (h *ProductHandler) ResolveUnit(c *fiber.Ctx) error {
	out, err := h.uc.Resolve(c.Context(), c.Params("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GenerateBarcode godoc
// @Summary      Generar código EAN-13 interno
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateBarcodeRequest  false  "Prefijo numérico opcional"
// @Success      201  {object}  dto.BarcodeResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/units/barcodes [post]
func (h *ProductHandler) GenerateBarcode(c *fiber.Ctx) error {
	var in dto.GenerateBarcodeRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return respondError(c, err)
		}
	}
	out, err := h.uc.GenerateBarcode(c.Context(), in.Prefix)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ValidateBarcode godoc
// @Summary      Validar dígito verificador EAN-13
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código a validar"
// @Success      200  {object}  dto.BarcodeResponse
// @Router       /api/units/barcodes/{code}/validate [get]
func (h *ProductHandler) ValidateBarcode(c *fiber.Ctx) error {
	return c.JSON(h.uc.ValidateBarcode(c.Params("code")))
}
