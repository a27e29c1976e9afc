package entity

import "time"

// Roles de usuario.
const (
	RoleAdmin    = "admin"
	RoleQuimico  = "quimico"  // químico farmacéutico: aprueba y dispensa
	RoleAuxiliar = "auxiliar" // auxiliar de farmacia: operaciones de sede
)

// ValidRole indica si r pertenece a la enumeración cerrada de roles.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleQuimico, RoleAuxiliar:
		return true
	}
	return false
}

// User representa un usuario del sistema (actor de los movimientos de stock).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
