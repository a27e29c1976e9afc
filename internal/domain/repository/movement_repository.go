package repository

import (
	"time"

	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
)

// MovementFilter acota las consultas de resumen del libro de movimientos.
// Los campos en nil/vacío no filtran.
type MovementFilter struct {
	MedicationID  string
	SiteID        *string
	Type          string
	ReferenceType string
	From          *time.Time
	To            *time.Time
}

// MovementSummary agrega el libro por tipo de movimiento.
type MovementSummary struct {
	Type          string
	Count         int64
	TotalQuantity int64
}

// MovementRepository define el puerto de persistencia del libro de movimientos.
// Las filas son inmutables: solo se insertan y se leen.
type MovementRepository interface {
	Create(entry *entity.MovementEntry) error
	GetByID(id string) (*entity.MovementEntry, error)
	// FindByReference devuelve los movimientos de una referencia en orden de libro
	// (created_at, id ascendente). Es la base de la reversión.
	FindByReference(referenceType, referenceID string) ([]*entity.MovementEntry, error)
	ListByMedication(medicationID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error)
	Summarize(filter MovementFilter) ([]MovementSummary, error)
}
