package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest una línea (medicamento, cantidad, costo) de una orden de compra.
type OrderLineRequest struct {
	MedicationID string          `json:"medication_id" validate:"required,uuid"`
	Quantity     int64           `json:"quantity" validate:"required,gt=0"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
}

// CreateOrderRequest body para crear una orden de compra a proveedor.
type CreateOrderRequest struct {
	SupplierID string             `json:"supplier_id" validate:"required,uuid"`
	Lines      []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
	Notes      string             `json:"notes,omitempty" validate:"max=500"`
}

// OrderLineResponse línea de orden con su rastro de movimiento.
type OrderLineResponse struct {
	MedicationID string          `json:"medication_id"`
	Quantity     int64           `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	MovementID   *string         `json:"movement_id,omitempty"`
}

// OrderResponse salida de una orden de compra.
type OrderResponse struct {
	ID          string              `json:"id"`
	SupplierID  string              `json:"supplier_id"`
	Status      string              `json:"status"`
	Lines       []OrderLineResponse `json:"lines"`
	Total       decimal.Decimal     `json:"total"`
	Notes       string              `json:"notes,omitempty"`
	CreatedBy   string              `json:"created_by"`
	ApprovedBy  string              `json:"approved_by,omitempty"`
	DeliveredAt *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// OrderListResponse listado paginado de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
