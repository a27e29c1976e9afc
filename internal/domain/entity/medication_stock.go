package entity

import "time"

// Estados del stock global de un medicamento.
const (
	StockStatusActive       = "ACTIVE"
	StockStatusInactive     = "INACTIVE"
	StockStatusDiscontinued = "DISCONTINUED"
)

// MedicationStock representa el stock global (pool central) de un medicamento:
// la cantidad aún no asignada a ninguna sede. Una fila por medicamento.
// Solo se muta a través del motor de transferencias o de un ajuste administrativo
// explícito; nunca queda por debajo de cero.
type MedicationStock struct {
	MedicationID string
	Quantity     int64 // unidades enteras de dispensación, siempre >= 0
	MinStock     int64 // umbral de reorden (advertencia, no bloqueo)
	Status       string
	UpdatedAt    time.Time
}

// ValidStockStatus indica si s pertenece a la enumeración cerrada de estados.
func ValidStockStatus(s string) bool {
	switch s {
	case StockStatusActive, StockStatusInactive, StockStatusDiscontinued:
		return true
	}
	return false
}
