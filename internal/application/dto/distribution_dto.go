package dto

import "time"

// DistributionLineRequest una línea (medicamento, cantidad) de una distribución.
type DistributionLineRequest struct {
	MedicationID string `json:"medication_id" validate:"required,uuid"`
	Quantity     int64  `json:"quantity" validate:"required,gt=0"`
}

// CreateDistributionRequest body para crear una distribución (queda PENDING;
// el stock no se toca hasta distribuir).
type CreateDistributionRequest struct {
	SiteID string                    `json:"site_id" validate:"required,uuid"`
	Lines  []DistributionLineRequest `json:"lines" validate:"required,min=1,dive"`
	Notes  string                    `json:"notes,omitempty" validate:"max=500"`
}

// DistributionLineResponse línea de distribución con su rastro de movimientos.
type DistributionLineResponse struct {
	MedicationID  string  `json:"medication_id"`
	Quantity      int64   `json:"quantity"`
	OutMovementID *string `json:"out_movement_id,omitempty"`
	InMovementID  *string `json:"in_movement_id,omitempty"`
}

// DistributionResponse salida de una distribución.
type DistributionResponse struct {
	ID        string                     `json:"id"`
	SiteID    string                     `json:"site_id"`
	Status    string                     `json:"status"`
	Lines     []DistributionLineResponse `json:"lines"`
	Notes     string                     `json:"notes,omitempty"`
	CreatedBy string                     `json:"created_by"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// DistributionListResponse listado paginado de distribuciones.
type DistributionListResponse struct {
	Items []DistributionResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}
