package entity

import "time"

// Estados de una fórmula médica (dispensación a paciente desde una sede).
const (
	PrescriptionStatusPending   = "PENDING"
	PrescriptionStatusPreparing = "PREPARING"
	PrescriptionStatusPrepared  = "PREPARED" // terminal
	PrescriptionStatusCancelled = "CANCELLED"
)

// Prescription representa una fórmula médica a dispensar en una sede.
// PREPARED debita el stock de la sede vía el motor de stock; el pool global
// no se toca.
type Prescription struct {
	ID              string
	SiteID          string
	PatientDocument string
	PatientName     string
	PrescriberName  string
	Status          string
	Lines           []PrescriptionLine
	Notes           string
	CreatedBy       string
	PreparedBy      string
	PreparedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PrescriptionLine es una línea (medicamento, cantidad) de la fórmula.
type PrescriptionLine struct {
	MedicationID string
	Quantity     int64
	Directions   string  // posología, ej: "1 tableta cada 8 horas"
	MovementID   *string // movimiento OUT de sede generado al preparar
}

// CanTransitionTo valida la máquina de estados:
// PENDING → PREPARING → PREPARED, con CANCELLED alcanzable antes de PREPARED.
func (p *Prescription) CanTransitionTo(next string) bool {
	switch p.Status {
	case PrescriptionStatusPending:
		return next == PrescriptionStatusPreparing || next == PrescriptionStatusCancelled
	case PrescriptionStatusPreparing:
		return next == PrescriptionStatusPrepared || next == PrescriptionStatusCancelled
	}
	return false
}
