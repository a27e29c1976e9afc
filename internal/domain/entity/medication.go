package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medication representa un medicamento del catálogo (identificado por código CUM).
type Medication struct {
	ID           string
	CUM          string // Código Único de Medicamento (INVIMA)
	Name         string
	Presentation string // ej: "tableta 500 mg", "jarabe 120 ml"
	Unit         string // unidad de dispensación: tableta, ampolla, frasco...
	Price        decimal.Decimal
	SupplierID   string // proveedor habitual, vacío si no aplica
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
