package entity

import "time"

// Site representa una sede de distribución (farmacia satélite, punto de dispensación).
type Site struct {
	ID        string
	Code      string // código corto único, ej: "SEDE-NORTE"
	Name      string
	Address   string
	City      string
	Status    string // active, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
