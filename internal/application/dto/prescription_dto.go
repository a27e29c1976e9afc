package dto

import "time"

// PrescriptionLineRequest una línea (medicamento, cantidad, posología) de una fórmula.
type PrescriptionLineRequest struct {
	MedicationID string `json:"medication_id" validate:"required,uuid"`
	Quantity     int64  `json:"quantity" validate:"required,gt=0"`
	Directions   string `json:"directions,omitempty" validate:"max=300"`
}

// CreatePrescriptionRequest body para registrar una fórmula médica en una sede.
type CreatePrescriptionRequest struct {
	SiteID          string                    `json:"site_id" validate:"required,uuid"`
	PatientDocument string                    `json:"patient_document" validate:"required,max=20"`
	PatientName     string                    `json:"patient_name" validate:"required,max=200"`
	PrescriberName  string                    `json:"prescriber_name" validate:"omitempty,max=200"`
	Lines           []PrescriptionLineRequest `json:"lines" validate:"required,min=1,dive"`
	Notes           string                    `json:"notes,omitempty" validate:"max=500"`
}

// PrescriptionLineResponse línea de fórmula con su rastro de movimiento.
type PrescriptionLineResponse struct {
	MedicationID string  `json:"medication_id"`
	Quantity     int64   `json:"quantity"`
	Directions   string  `json:"directions,omitempty"`
	MovementID   *string `json:"movement_id,omitempty"`
}

// PrescriptionResponse salida de una fórmula médica.
type PrescriptionResponse struct {
	ID              string                     `json:"id"`
	SiteID          string                     `json:"site_id"`
	PatientDocument string                     `json:"patient_document"`
	PatientName     string                     `json:"patient_name"`
	PrescriberName  string                     `json:"prescriber_name,omitempty"`
	Status          string                     `json:"status"`
	Lines           []PrescriptionLineResponse `json:"lines"`
	Notes           string                     `json:"notes,omitempty"`
	CreatedBy       string                     `json:"created_by"`
	PreparedBy      string                     `json:"prepared_by,omitempty"`
	PreparedAt      *time.Time                 `json:"prepared_at,omitempty"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

// PrescriptionListResponse listado paginado de fórmulas.
type PrescriptionListResponse struct {
	Items []PrescriptionResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}
