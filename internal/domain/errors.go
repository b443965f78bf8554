package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrStockOverflow     = errors.New("cantidad fuera de rango")
	ErrInvalidBarcode    = errors.New("código de barras inválido")
	ErrStorage           = errors.New("fallo de almacenamiento")
)

// ValidationError entrada rechazada antes de tocar el almacenamiento. Field nombra el campo ofensor.
type ValidationError struct {
	Field   string
	Message string
	cause   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is permite errors.Is(err, ErrInvalidInput) y, para barcodes, errors.Is(err, ErrInvalidBarcode).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput || (e.cause != nil && target == e.cause)
}

// NewValidationError construye un error de validación sobre un campo.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidBarcodeError error de validación para un código EAN-13 con dígito verificador incorrecto.
func NewInvalidBarcodeError(field, barcode string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("código %q no es un EAN-13 válido", barcode),
		cause:   ErrInvalidBarcode,
	}
}

// NotFoundError producto, unidad, bodega o movimiento inexistente.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q no encontrado", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError construye un NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError la operación choca con el estado actual (bodega por defecto, stock no nulo, tipo de bodega...).
type ConflictError struct {
	Resource string
	Reason   string
	cause    error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Reason)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict || (e.cause != nil && target == e.cause)
}

// NewConflictError construye un ConflictError.
func NewConflictError(resource, format string, args ...any) *ConflictError {
	return &ConflictError{Resource: resource, Reason: fmt.Sprintf(format, args...)}
}

// NewInsufficientStockError conflicto por un débito que dejaría la entrada del ledger en negativo.
func NewInsufficientStockError(productID, warehouseID, unitID string, available, requested int64) *ConflictError {
	return &ConflictError{
		Resource: "stock",
		Reason: fmt.Sprintf("producto %s, bodega %s, unidad %s: disponible %d, solicitado %d",
			productID, warehouseID, unitID, available, requested),
		cause: ErrInsufficientStock,
	}
}

// NewDebitRejectedError débito rechazado por el almacenamiento sin conocer la cantidad disponible.
func NewDebitRejectedError(productID, warehouseID, unitID string, requested int64) *ConflictError {
	return &ConflictError{
		Resource: "stock",
		Reason: fmt.Sprintf("producto %s, bodega %s, unidad %s: solicitado %d excede lo disponible",
			productID, warehouseID, unitID, requested),
		cause: ErrInsufficientStock,
	}
}

// NewStockOverflowError conflicto por un crédito que supera el máximo representable de la entrada.
func NewStockOverflowError(productID, warehouseID, unitID string, adding int64) *ConflictError {
	return &ConflictError{
		Resource: "stock",
		Reason: fmt.Sprintf("producto %s, bodega %s, unidad %s: sumar %d excede el máximo",
			productID, warehouseID, unitID, adding),
		cause: ErrStockOverflow,
	}
}

// AddQuantity suma dos cantidades y reporta false si el resultado se desborda.
func AddQuantity(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// StorageError fallo de transacción o commit. Siempre reintentable por el llamador.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Retryable indica que el llamador puede reintentar (Apply es idempotente).
func (e *StorageError) Retryable() bool { return true }

// NewStorageError envuelve un error del driver. Devuelve nil si err es nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsRetryable indica si err es un fallo de almacenamiento reintentable.
func IsRetryable(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Retryable()
}
