package entity

import "time"

// Supplier representa un proveedor/laboratorio farmacéutico.
type Supplier struct {
	ID        string
	NIT       string // NIT colombiano (con o sin dígito de verificación)
	Name      string
	Phone     string
	Email     string
	Status    string // active, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
