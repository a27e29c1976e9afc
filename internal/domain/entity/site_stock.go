package entity

import "time"

// SiteStock representa el stock de un medicamento en una sede concreta.
// Se crea de forma perezosa con la primera transferencia hacia la sede y nunca
// se elimina implícitamente. MaxStock es un techo consultivo: superarlo produce
// una advertencia, no un error.
type SiteStock struct {
	SiteID       string
	MedicationID string
	Quantity     int64 // siempre >= 0
	MinStock     int64
	MaxStock     *int64 // nil = sin techo
	UpdatedAt    time.Time
}
