package entity

import "time"

// Estados de una distribución (pool global → sede).
const (
	DistributionStatusPending     = "PENDING"
	DistributionStatusDistributed = "DISTRIBUTED" // terminal
	DistributionStatusCancelled   = "CANCELLED"
)

// Distribution representa un envío de medicamentos del pool global a una sede.
// El débito/crédito real lo ejecuta el motor de transferencias; aquí solo viven
// el estado y la trazabilidad hacia los movimientos generados.
type Distribution struct {
	ID        string
	SiteID    string
	Status    string
	Lines     []DistributionLine
	Notes     string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DistributionLine es una línea (medicamento, cantidad) de la distribución.
// Los IDs de movimiento se persisten tras distribuir, solo para trazabilidad.
type DistributionLine struct {
	MedicationID  string
	Quantity      int64
	OutMovementID *string // débito al pool global
	InMovementID  *string // crédito a la sede
}

// CanCancel indica si la distribución admite cancelación (solo antes de distribuir).
func (d *Distribution) CanCancel() bool {
	return d.Status == DistributionStatusPending
}

// IsTerminal indica si la distribución alcanzó un estado inmutable.
func (d *Distribution) IsTerminal() bool {
	return d.Status == DistributionStatusDistributed || d.Status == DistributionStatusCancelled
}
