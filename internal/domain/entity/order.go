package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra a proveedor.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusApproved  = "APPROVED"
	OrderStatusInTransit = "IN_TRANSIT"
	OrderStatusDelivered = "DELIVERED" // terminal
	OrderStatusCancelled = "CANCELLED"
)

// Order representa una orden de compra a un proveedor. La entrega (DELIVERED)
// acredita el pool global vía el motor de stock; ninguna sede interviene.
type Order struct {
	ID          string
	SupplierID  string
	Status      string
	Lines       []OrderLine
	Notes       string
	CreatedBy   string
	ApprovedBy  string
	DeliveredAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderLine es una línea (medicamento, cantidad, costo unitario) de la orden.
type OrderLine struct {
	MedicationID string
	Quantity     int64
	UnitCost     decimal.Decimal
	MovementID   *string // movimiento IN generado en la entrega
}

// Total devuelve el costo total de la orden (suma de cantidad * costo unitario).
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(decimal.NewFromInt(l.Quantity).Mul(l.UnitCost))
	}
	return total
}

// CanTransitionTo valida la máquina de estados de la orden:
// PENDING → APPROVED → IN_TRANSIT → DELIVERED, con CANCELLED alcanzable desde
// cualquier estado no terminal. DELIVERED es inmutable.
func (o *Order) CanTransitionTo(next string) bool {
	switch o.Status {
	case OrderStatusPending:
		return next == OrderStatusApproved || next == OrderStatusCancelled
	case OrderStatusApproved:
		return next == OrderStatusInTransit || next == OrderStatusCancelled
	case OrderStatusInTransit:
		return next == OrderStatusDelivered || next == OrderStatusCancelled
	}
	return false
}
