package inventory

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Orígenes aceptados para una importación masiva.
const (
	ImportSourceCSV         = "csv"
	ImportSourceXLSX        = "xlsx"
	ImportSourceWooCommerce = "woocommerce"
	ImportSourceOther       = "other"
)

// Estados de una fila importada.
const (
	RowApplied = "applied"
	RowSkipped = "skipped"
)

// Motivos de rechazo de fila.
const (
	ReasonSKURequired      = "sku requerido"
	ReasonSKUNotFound      = "sku no encontrado"
	ReasonInvalidQuantity  = "cantidad debe ser mayor que cero"
	ReasonWarehouseMissing = "bodega requerida"
	ReasonUnitMissing      = "unidad requerida"
	ReasonUnitNotInProduct = "la unidad no pertenece al producto"
	ReasonQuantityOverflow = "cantidad acumulada excede el máximo"
)

// ImportRow fila tipada de una carga masiva. Line es el número de línea en el origen (para el reporte).
type ImportRow struct {
	Line        int
	SKU         string
	Quantity    int64
	WarehouseID string
	UnitID      string
}

// RowOutcome resultado de una fila: MovementID si se aplicó, Reason si se omitió.
type RowOutcome struct {
	Line       int
	SKU        string
	Status     string
	MovementID string
	Reason     string
}

// ImportRequest lote a importar. Rejected son filas que el lector no pudo interpretar.
type ImportRequest struct {
	Source    string
	CreatedBy string
	Rows      []ImportRow
	Rejected  []RowOutcome
}

// BatchReport resultado del lote, ordenado por línea.
type BatchReport struct {
	Source  string
	Applied []RowOutcome
	Skipped []RowOutcome
}

// MovementSubmitter lo que la importación necesita del motor.
type MovementSubmitter interface {
	Submit(ctx context.Context, req MovementRequest) (*entity.StockMovement, error)
}

// ImportBatchUseCase convierte filas de una carga masiva en movimientos initial.
// Nunca toca el ledger directamente: todo pasa por el motor.
type ImportBatchUseCase struct {
	engine   MovementSubmitter
	products repository.ProductCatalog
	locker   BatchLocker
	log      zerolog.Logger
}

// NewImportBatchUseCase construye el caso de uso. locker nil = sin bloqueo entre procesos.
func NewImportBatchUseCase(engine MovementSubmitter, products repository.ProductCatalog, locker BatchLocker, log zerolog.Logger) *ImportBatchUseCase {
	if locker == nil {
		locker = NoopLocker{}
	}
	return &ImportBatchUseCase{
		engine:   engine,
		products: products,
		locker:   locker,
		log:      logger.Component(log, "import_batch"),
	}
}

// importGroup filas que terminan en el mismo movimiento (producto, bodega destino).
type importGroup struct {
	product     *entity.Product
	warehouseID string
	units       []string // orden de primera aparición
	qty         map[string]int64
	rows        []ImportRow
}

// ImportBatch agrupa las filas válidas por producto y bodega y registra un movimiento initial
// completed por grupo. Un grupo que falla solo marca como omitidas sus propias filas.
func (uc *ImportBatchUseCase) ImportBatch(ctx context.Context, req ImportRequest) (*BatchReport, error) {
	if !validImportSource(req.Source) {
		return nil, domain.NewValidationError("source", "origen desconocido %q", req.Source)
	}

	release, err := uc.locker.Obtain(ctx, "stock-import:"+req.Source)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.log.Warn().Err(err).Str("source", req.Source).Msg("liberar bloqueo de importación")
		}
	}()

	report := &BatchReport{Source: req.Source}
	report.Skipped = append(report.Skipped, req.Rejected...)

	skip := func(row ImportRow, reason string) {
		uc.log.Warn().Int("line", row.Line).Str("sku", row.SKU).Str("reason", reason).Msg("fila omitida")
		report.Skipped = append(report.Skipped, RowOutcome{Line: row.Line, SKU: row.SKU, Status: RowSkipped, Reason: reason})
	}

	bySKU := make(map[string]*entity.Product)
	var groups []*importGroup
	groupIdx := make(map[[2]string]int)

	for _, row := range req.Rows {
		switch {
		case row.SKU == "":
			skip(row, ReasonSKURequired)
			continue
		case row.Quantity <= 0:
			skip(row, ReasonInvalidQuantity)
			continue
		case row.WarehouseID == "":
			skip(row, ReasonWarehouseMissing)
			continue
		case row.UnitID == "":
			skip(row, ReasonUnitMissing)
			continue
		}

		product, cached := bySKU[row.SKU]
		if !cached {
			product, err = uc.products.GetBySKU(ctx, row.SKU)
			if err != nil {
				// Un fallo del catálogo aborta el lote; lo ya registrado queda aplicado.
				return nil, err
			}
			bySKU[row.SKU] = product
		}
		if product == nil {
			skip(row, ReasonSKUNotFound)
			continue
		}
		if _, ok := product.Unit(row.UnitID); !ok {
			skip(row, ReasonUnitNotInProduct)
			continue
		}

		k := [2]string{product.ID, row.WarehouseID}
		i, ok := groupIdx[k]
		if !ok {
			i = len(groups)
			groupIdx[k] = i
			groups = append(groups, &importGroup{product: product, warehouseID: row.WarehouseID, qty: make(map[string]int64)})
		}
		g := groups[i]
		merged, ok := domain.AddQuantity(g.qty[row.UnitID], row.Quantity)
		if !ok {
			skip(row, ReasonQuantityOverflow)
			continue
		}
		if _, seen := g.qty[row.UnitID]; !seen {
			g.units = append(g.units, row.UnitID)
		}
		g.qty[row.UnitID] = merged
		g.rows = append(g.rows, row)
	}

	for _, g := range groups {
		items := make([]entity.MovementItem, 0, len(g.units))
		for _, u := range g.units {
			items = append(items, entity.MovementItem{UnitID: u, Quantity: g.qty[u]})
		}
		mov, err := uc.engine.Submit(ctx, MovementRequest{
			Type:          entity.MovementTypeInitial,
			ProductID:     g.product.ID,
			ToWarehouseID: g.warehouseID,
			Notes:         "Importado desde " + req.Source,
			Items:         items,
			CreatedBy:     req.CreatedBy,
			Mode:          ModeCompleted,
		})
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil, err
			}
			for _, row := range g.rows {
				skip(row, err.Error())
			}
			continue
		}
		for _, row := range g.rows {
			report.Applied = append(report.Applied, RowOutcome{
				Line: row.Line, SKU: row.SKU, Status: RowApplied, MovementID: mov.ID,
			})
		}
	}

	sortOutcomes(report.Applied)
	sortOutcomes(report.Skipped)
	uc.log.Info().
		Str("source", req.Source).
		Int("movements", len(groups)).
		Int("applied", len(report.Applied)).
		Int("skipped", len(report.Skipped)).
		Msg("importación procesada")
	return report, nil
}

func validImportSource(s string) bool {
	switch s {
	case ImportSourceCSV, ImportSourceXLSX, ImportSourceWooCommerce, ImportSourceOther:
		return true
	}
	return false
}

func sortOutcomes(out []RowOutcome) {
	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
}
