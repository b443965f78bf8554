package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	invdomain "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Modos de alta de un movimiento.
const (
	ModePending   = "pending"   // se registra sin tocar el ledger
	ModeCompleted = "completed" // se registra y se aplica
)

// MovementRequest entrada para registrar un movimiento de inventario.
// Para initial/purchase/purchase_order: ToWarehouseID. Para sale: FromWarehouseID.
// Para transfer_*: ambos. Para adjustment: uno de los dos (destino aumenta, origen disminuye).
type MovementRequest struct {
	Type            string
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Date            time.Time // cero = ahora
	DocumentRef     string
	Notes           string
	Items           []entity.MovementItem
	CreatedBy       string
	Mode            string // pending (por defecto) | completed
}

// MovementEngine valida movimientos, los persiste y es el único que muta el ledger.
// Cada aplicación o reversión ocurre en una sola transacción con las filas bloqueadas
// (SELECT FOR UPDATE) en orden determinista.
type MovementEngine struct {
	txRunner   TxRunner
	products   repository.ProductCatalog
	warehouses repository.WarehouseCatalog
	stock      repository.StockReader
	movements  repository.MovementReader
	log        zerolog.Logger
	now        func() time.Time
}

// NewMovementEngine construye el motor con sus dependencias explícitas.
func NewMovementEngine(
	txRunner TxRunner,
	products repository.ProductCatalog,
	warehouses repository.WarehouseCatalog,
	stock repository.StockReader,
	movements repository.MovementReader,
	log zerolog.Logger,
) *MovementEngine {
	return &MovementEngine{
		txRunner:   txRunner,
		products:   products,
		warehouses: warehouses,
		stock:      stock,
		movements:  movements,
		log:        logger.Component(log, "movement_engine"),
		now:        time.Now,
	}
}

// Submit valida y registra el movimiento como pending. En modo completed lo registra y
// aplica sus deltas en la misma transacción: si algo falla no queda ni el movimiento ni
// cambio alguno en el ledger.
func (e *MovementEngine) Submit(ctx context.Context, req MovementRequest) (*entity.StockMovement, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModePending
	}
	if mode != ModePending && mode != ModeCompleted {
		return nil, domain.NewValidationError("mode", "debe ser %s o %s", ModePending, ModeCompleted)
	}
	if err := e.validate(ctx, req); err != nil {
		return nil, err
	}

	now := e.now()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	mov := &entity.StockMovement{
		ID:              uuid.New().String(),
		Type:            req.Type,
		Date:            date,
		ProductID:       req.ProductID,
		FromWarehouseID: req.FromWarehouseID,
		ToWarehouseID:   req.ToWarehouseID,
		DocumentRef:     req.DocumentRef,
		Notes:           req.Notes,
		Items:           append([]entity.MovementItem(nil), req.Items...),
		Status:          entity.MovementStatusPending,
		CreatedBy:       req.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := e.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, stockRepo repository.StockRepository) error {
		if mode == ModePending {
			return movRepo.Create(ctx, mov)
		}
		if err := applyDeltas(ctx, stockRepo, invdomain.MovementDeltas(mov)); err != nil {
			return err
		}
		mov.Status = entity.MovementStatusCompleted
		mov.AppliedAt = &now
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		e.logFailure(err, "", "registrar movimiento")
		return nil, err
	}
	e.log.Info().
		Str("movement_id", mov.ID).
		Str("type", mov.Type).
		Str("product_id", mov.ProductID).
		Str("status", mov.Status).
		Msg("movimiento registrado")
	return mov, nil
}

// Apply pasa un movimiento pending a completed aplicando sus deltas en una transacción.
// Es idempotente: sobre un movimiento ya completed no hace nada.
func (e *MovementEngine) Apply(ctx context.Context, movementID string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	changed := false
	err := e.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, stockRepo repository.StockRepository) error {
		mov, err := lockMovement(ctx, movRepo, movementID)
		if err != nil {
			return err
		}
		switch mov.Status {
		case entity.MovementStatusCompleted:
			out = mov
			return nil
		case entity.MovementStatusCancelled:
			return domain.NewConflictError("movement", "el movimiento %s está cancelado", mov.ID)
		}

		if err := applyDeltas(ctx, stockRepo, invdomain.MovementDeltas(mov)); err != nil {
			return err
		}
		now := e.now()
		mov.Status = entity.MovementStatusCompleted
		mov.AppliedAt = &now
		mov.UpdatedAt = now
		if err := movRepo.UpdateStatus(ctx, mov); err != nil {
			return err
		}
		out, changed = mov, true
		return nil
	})
	if err != nil {
		e.logFailure(err, movementID, "aplicar movimiento")
		return nil, err
	}
	if changed {
		e.log.Info().Str("movement_id", out.ID).Str("type", out.Type).Int("items", len(out.Items)).Msg("movimiento aplicado")
	}
	return out, nil
}

// Cancel pasa un movimiento pending a cancelled sin efecto en el ledger.
// Un movimiento completed solo puede revertirse (Reverse).
func (e *MovementEngine) Cancel(ctx context.Context, movementID string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := e.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, _ repository.StockRepository) error {
		mov, err := lockMovement(ctx, movRepo, movementID)
		if err != nil {
			return err
		}
		switch mov.Status {
		case entity.MovementStatusCancelled:
			out = mov
			return nil
		case entity.MovementStatusCompleted:
			return domain.NewConflictError("movement", "el movimiento %s ya fue aplicado; use la reversión", mov.ID)
		}
		mov.Status = entity.MovementStatusCancelled
		mov.UpdatedAt = e.now()
		if err := movRepo.UpdateStatus(ctx, mov); err != nil {
			return err
		}
		out = mov
		return nil
	})
	if err != nil {
		e.logFailure(err, movementID, "cancelar movimiento")
		return nil, err
	}
	e.log.Info().Str("movement_id", out.ID).Str("status", out.Status).Msg("movimiento cancelado")
	return out, nil
}

// Reverse pasa un movimiento completed a cancelled aplicando los deltas inversos en una transacción.
// Revertir un movimiento ya cancelado no hace nada.
func (e *MovementEngine) Reverse(ctx context.Context, movementID string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	changed := false
	err := e.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, stockRepo repository.StockRepository) error {
		mov, err := lockMovement(ctx, movRepo, movementID)
		if err != nil {
			return err
		}
		switch mov.Status {
		case entity.MovementStatusCancelled:
			out = mov
			return nil
		case entity.MovementStatusPending:
			return domain.NewConflictError("movement", "el movimiento %s no ha sido aplicado; use la cancelación", mov.ID)
		}

		inverse := invdomain.InverseDeltas(invdomain.MovementDeltas(mov))
		if err := applyDeltas(ctx, stockRepo, inverse); err != nil {
			return err
		}
		now := e.now()
		mov.Status = entity.MovementStatusCancelled
		mov.ReversedAt = &now
		mov.UpdatedAt = now
		if err := movRepo.UpdateStatus(ctx, mov); err != nil {
			return err
		}
		out, changed = mov, true
		return nil
	})
	if err != nil {
		e.logFailure(err, movementID, "revertir movimiento")
		return nil, err
	}
	if changed {
		e.log.Info().Str("movement_id", out.ID).Str("type", out.Type).Msg("movimiento revertido")
	}
	return out, nil
}

// Get obtiene un movimiento por ID.
func (e *MovementEngine) Get(ctx context.Context, movementID string) (*entity.StockMovement, error) {
	mov, err := e.movements.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.NewNotFoundError("movement", movementID)
	}
	return mov, nil
}

// List lista movimientos con filtros y paginación.
func (e *MovementEngine) List(ctx context.Context, filter entity.MovementFilter) ([]*entity.StockMovement, error) {
	if filter.Status != "" && filter.Status != entity.MovementStatusPending &&
		filter.Status != entity.MovementStatusCompleted && filter.Status != entity.MovementStatusCancelled {
		return nil, domain.NewValidationError("status", "estado desconocido %q", filter.Status)
	}
	return e.movements.List(ctx, filter)
}

// GetQuantity cantidad disponible de la tripleta; 0 si nunca hubo movimientos.
func (e *MovementEngine) GetQuantity(ctx context.Context, productID, warehouseID, unitID string) (int64, error) {
	switch {
	case productID == "":
		return 0, domain.NewValidationError("product_id", "es requerido")
	case warehouseID == "":
		return 0, domain.NewValidationError("warehouse_id", "es requerido")
	case unitID == "":
		return 0, domain.NewValidationError("unit_id", "es requerido")
	}
	return e.stock.GetQuantity(ctx, productID, warehouseID, unitID)
}

// validate aplica las reglas de tipo, ítems, unidades y bodegas. Nunca toca el ledger.
func (e *MovementEngine) validate(ctx context.Context, req MovementRequest) error {
	if !entity.ValidMovementType(req.Type) {
		return domain.NewValidationError("type", "tipo de movimiento desconocido %q", req.Type)
	}
	if req.ProductID == "" {
		return domain.NewValidationError("product_id", "es requerido")
	}
	if err := invdomain.CheckRoute(req.Type, req.FromWarehouseID, req.ToWarehouseID); err != nil {
		return err
	}
	if err := invdomain.CheckItems(req.Items); err != nil {
		return err
	}

	product, err := e.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.NewNotFoundError("product", req.ProductID)
	}
	for i, item := range req.Items {
		if _, ok := product.Unit(item.UnitID); !ok {
			return domain.NewValidationError(fmt.Sprintf("items[%d].unit_id", i),
				"la unidad %s no pertenece al producto %s", item.UnitID, product.ID)
		}
	}

	kind, isTransfer := invdomain.RequiredKind(req.Type)
	for _, side := range []struct{ field, id string }{
		{"from_warehouse_id", req.FromWarehouseID},
		{"to_warehouse_id", req.ToWarehouseID},
	} {
		if side.id == "" {
			continue
		}
		wh, err := e.warehouses.GetByID(ctx, side.id)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.NewNotFoundError("warehouse", side.id)
		}
		if isTransfer && wh.Kind != kind {
			return domain.NewConflictError(side.field, "la ubicación %s es de clase %s; %s requiere %s",
				wh.ID, wh.Kind, req.Type, kind)
		}
	}
	return nil
}

func (e *MovementEngine) logFailure(err error, movementID, msg string) {
	ev := e.log.Warn()
	if domain.IsRetryable(err) {
		ev = e.log.Error()
	}
	ev.Err(err).Str("movement_id", movementID).Msg(msg)
}

// lockMovement bloquea la fila del movimiento; así dos Apply concurrentes se serializan.
func lockMovement(ctx context.Context, movRepo repository.StockMovementRepository, id string) (*entity.StockMovement, error) {
	if id == "" {
		return nil, domain.NewValidationError("movement_id", "es requerido")
	}
	mov, err := movRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.NewNotFoundError("movement", id)
	}
	return mov, nil
}

// applyDeltas bloquea las entradas tocadas, verifica que ninguna quede en negativo y aplica los deltas.
func applyDeltas(ctx context.Context, stockRepo repository.StockRepository, ds []invdomain.Delta) error {
	current, err := stockRepo.LockForUpdate(ctx, invdomain.SortedKeys(ds))
	if err != nil {
		return err
	}
	if err := invdomain.CheckAvailability(ds, current); err != nil {
		return err
	}
	for _, d := range ds {
		if err := stockRepo.ApplyDelta(ctx, d.ProductID, d.WarehouseID, d.UnitID, d.Amount); err != nil {
			return err
		}
	}
	return nil
}
