package dto

import "time"

// TransferLineRequest una línea (medicamento, cantidad) de una transferencia.
type TransferLineRequest struct {
	MedicationID string `json:"medication_id" validate:"required,uuid"`
	Quantity     int64  `json:"quantity" validate:"required,gt=0"`
}

// TransferRequest body para POST /api/stock/transfers y su validación previa.
type TransferRequest struct {
	SiteID string                `json:"site_id" validate:"required,uuid"`
	Lines  []TransferLineRequest `json:"lines" validate:"required,min=1,dive"`
	Notes  string                `json:"notes,omitempty" validate:"max=500"`
}

// ReverseRequest body para revertir los movimientos de una referencia.
type ReverseRequest struct {
	ReferenceType string `json:"reference_type" validate:"required"`
	ReferenceID   string `json:"reference_id" validate:"required"`
	Notes         string `json:"notes,omitempty" validate:"max=500"`
}

// AdjustStockRequest ajuste administrativo con signo al pool global.
type AdjustStockRequest struct {
	Delta int64  `json:"delta" validate:"required"`
	Notes string `json:"notes,omitempty" validate:"max=500"`
}

// StockResponse stock global de un medicamento.
type StockResponse struct {
	MedicationID string    `json:"medication_id"`
	Quantity     int64     `json:"quantity"`
	MinStock     int64     `json:"min_stock"`
	Status       string    `json:"status"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SiteStockResponse stock de un medicamento en una sede.
type SiteStockResponse struct {
	SiteID       string    `json:"site_id"`
	MedicationID string    `json:"medication_id"`
	Quantity     int64     `json:"quantity"`
	MinStock     int64     `json:"min_stock"`
	MaxStock     *int64    `json:"max_stock,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MovementResponse una fila del libro de movimientos.
type MovementResponse struct {
	ID            string    `json:"id"`
	MedicationID  string    `json:"medication_id"`
	Type          string    `json:"type"`
	Quantity      int64     `json:"quantity"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   string    `json:"reference_id,omitempty"`
	SiteID        *string   `json:"site_id,omitempty"`
	FromSiteID    *string   `json:"from_site_id,omitempty"`
	ToSiteID      *string   `json:"to_site_id,omitempty"`
	UserID        string    `json:"user_id"`
	ReversalOf    *string   `json:"reversal_of,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// MovementSummaryResponse agregado del libro por tipo de movimiento.
type MovementSummaryResponse struct {
	Type          string `json:"type"`
	Count         int64  `json:"count"`
	TotalQuantity int64  `json:"total_quantity"`
}
