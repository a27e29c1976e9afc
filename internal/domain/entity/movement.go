package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/FarmaStock-api/internal/domain"
)

// Tipos de movimiento de stock. La cantidad del movimiento es siempre positiva;
// la dirección la lleva el tipo.
const (
	MovementTypeIN          = "IN"           // entrada al pool global o a una sede
	MovementTypeOUT         = "OUT"          // salida del pool global o de una sede
	MovementTypeTRANSFERIN  = "TRANSFER_IN"  // crédito a una sede por transferencia
	MovementTypeTRANSFEROUT = "TRANSFER_OUT" // débito al pool global por transferencia
	MovementTypeADJUSTMENT  = "ADJUSTMENT"   // ajuste positivo (reconciliación, corrección)
)

// Tipos de referencia: el registro de dominio que originó el movimiento.
const (
	ReferenceDistribution = "DISTRIBUTION"
	ReferenceOrder        = "ORDER"
	ReferencePrescription = "PRESCRIPTION"
	ReferenceAdjustment   = "ADJUSTMENT"
	ReferenceTransfer     = "TRANSFER"
)

// MovementEntry es un registro inmutable del libro de movimientos: un cambio de
// cantidad, su tipo, su referencia de dominio y el actor que lo causó.
// La secuencia de movimientos de un medicamento debe poder reproducirse para
// reconstruir su cantidad actual (ver domain/stock.ReplayGlobal).
type MovementEntry struct {
	ID            string
	MedicationID  string
	Type          string
	Quantity      int64 // estrictamente > 0, sin signo
	ReferenceType string
	ReferenceID   string  // vacío solo para movimientos puramente administrativos
	SiteID        *string // sede afectada; nil cuando el movimiento es contra el pool global
	FromSiteID    *string
	ToSiteID      *string
	UserID        string  // actor autenticado
	ReversalOf    *string // ID del movimiento original cuando este es compensatorio
	Notes         string
	CreatedAt     time.Time
}

// ValidMovementType indica si t pertenece a la enumeración cerrada.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeIN, MovementTypeOUT, MovementTypeTRANSFERIN, MovementTypeTRANSFEROUT, MovementTypeADJUSTMENT:
		return true
	}
	return false
}

// ValidReferenceType indica si t pertenece a la enumeración cerrada.
func ValidReferenceType(t string) bool {
	switch t {
	case ReferenceDistribution, ReferenceOrder, ReferencePrescription, ReferenceAdjustment, ReferenceTransfer:
		return true
	}
	return false
}

// Validate verifica las reglas del libro antes de aceptar un movimiento:
// cantidad positiva, tipos dentro de las enumeraciones cerradas, sede presente
// para los tipos TRANSFER_* y actor presente.
func (m *MovementEntry) Validate() error {
	if m.Quantity <= 0 {
		return errInvalid("cantidad debe ser positiva")
	}
	if !ValidMovementType(m.Type) {
		return errInvalid("tipo de movimiento desconocido: " + m.Type)
	}
	if !ValidReferenceType(m.ReferenceType) {
		return errInvalid("tipo de referencia desconocido: " + m.ReferenceType)
	}
	if m.MedicationID == "" {
		return errInvalid("medication_id requerido")
	}
	if m.UserID == "" {
		return errInvalid("user_id requerido")
	}
	switch m.Type {
	case MovementTypeTRANSFERIN:
		if m.SiteID == nil && m.ToSiteID == nil {
			return errInvalid("TRANSFER_IN requiere la sede destino")
		}
	case MovementTypeTRANSFEROUT:
		if m.FromSiteID == nil && m.ToSiteID == nil {
			return errInvalid("TRANSFER_OUT requiere la sede origen o destino")
		}
	}
	return nil
}

func errInvalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidMovement, msg)
}

// AffectsGlobal indica si el movimiento cambia la cantidad del pool global.
// Un movimiento afecta al global cuando no está dirigido a una sede (SiteID nil).
func (m *MovementEntry) AffectsGlobal() bool {
	return m.SiteID == nil
}

// GlobalDelta devuelve el efecto con signo sobre el pool global
// (IN/ADJUSTMENT suman, OUT/TRANSFER_OUT restan). Cero si no lo afecta.
func (m *MovementEntry) GlobalDelta() int64 {
	if !m.AffectsGlobal() {
		return 0
	}
	switch m.Type {
	case MovementTypeIN, MovementTypeADJUSTMENT:
		return m.Quantity
	case MovementTypeOUT, MovementTypeTRANSFEROUT:
		return -m.Quantity
	}
	return 0
}

// SiteDelta devuelve el efecto con signo sobre la sede SiteID
// (TRANSFER_IN/IN/ADJUSTMENT suman, OUT/TRANSFER_OUT restan). Cero si es global.
func (m *MovementEntry) SiteDelta() int64 {
	if m.SiteID == nil {
		return 0
	}
	switch m.Type {
	case MovementTypeTRANSFERIN, MovementTypeIN, MovementTypeADJUSTMENT:
		return m.Quantity
	case MovementTypeOUT, MovementTypeTRANSFEROUT:
		return -m.Quantity
	}
	return 0
}
