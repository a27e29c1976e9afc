package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrUserNotFound           = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists     = errors.New("el email ya está registrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidMovement        = errors.New("movimiento de stock inválido")
	ErrNothingToReverse       = errors.New("la referencia no tiene movimientos que reversar")
	ErrConcurrentModification = errors.New("modificación concurrente detectada, reintente la operación")
)

// InsufficientStockError lleva el detalle por línea de un faltante de stock:
// qué medicamento, cuánto se pidió y cuánto había disponible.
// Envuelve ErrInsufficientStock para que errors.Is siga funcionando.
type InsufficientStockError struct {
	MedicationID string
	SiteID       string // vacío cuando el faltante es del pool global
	Requested    int64
	Available    int64
}

func (e *InsufficientStockError) Error() string {
	if e.SiteID != "" {
		return fmt.Sprintf("stock insuficiente en sede %s para medicamento %s: solicitado %d, disponible %d",
			e.SiteID, e.MedicationID, e.Requested, e.Available)
	}
	return fmt.Sprintf("stock global insuficiente para medicamento %s: solicitado %d, disponible %d",
		e.MedicationID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
