package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMedicationRequest entrada para registrar un medicamento en el catálogo.
// El registro crea también su fila de stock global, con InitialQuantity como
// cantidad de partida.
type CreateMedicationRequest struct {
	CUM             string          `json:"cum" validate:"required,max=20"`
	Name            string          `json:"name" validate:"required,min=1,max=200"`
	Presentation    string          `json:"presentation" validate:"required,max=200"`
	Unit            string          `json:"unit" validate:"required,max=50"`
	Price           decimal.Decimal `json:"price"`
	SupplierID      string          `json:"supplier_id" validate:"omitempty,uuid"`
	MinStock        int64           `json:"min_stock" validate:"min=0"`
	InitialQuantity int64           `json:"initial_quantity" validate:"min=0"`
}

// UpdateMedicationRequest entrada para actualizar un medicamento (campos opcionales).
type UpdateMedicationRequest struct {
	Name         *string          `json:"name,omitempty"`
	Presentation *string          `json:"presentation,omitempty"`
	Unit         *string          `json:"unit,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	SupplierID   *string          `json:"supplier_id,omitempty"`
	MinStock     *int64           `json:"min_stock,omitempty"`
	StockStatus  *string          `json:"stock_status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE DISCONTINUED"`
}

// MedicationResponse salida de un medicamento con su stock global.
type MedicationResponse struct {
	ID           string          `json:"id"`
	CUM          string          `json:"cum"`
	Name         string          `json:"name"`
	Presentation string          `json:"presentation"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	SupplierID   string          `json:"supplier_id,omitempty"`
	Quantity     int64           `json:"quantity"`
	MinStock     int64           `json:"min_stock"`
	StockStatus  string          `json:"stock_status,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// MedicationListResponse listado paginado de medicamentos.
type MedicationListResponse struct {
	Items []MedicationResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
