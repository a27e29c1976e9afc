package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
)

func strPtr(s string) *string { return &s }

func validEntry() *entity.MovementEntry {
	return &entity.MovementEntry{
		ID:            "mov-1",
		MedicationID:  "med-1",
		Type:          entity.MovementTypeIN,
		Quantity:      10,
		ReferenceType: entity.ReferenceOrder,
		ReferenceID:   "ord-1",
		UserID:        "user-1",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Validate: reglas del libro de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_MovimientoValido(t *testing.T) {
	require.NoError(t, validEntry().Validate())
}

func TestValidate_CantidadNoPositiva(t *testing.T) {
	e := validEntry()
	e.Quantity = 0
	assert.ErrorIs(t, e.Validate(), domain.ErrInvalidMovement,
		"cantidad cero debe rechazarse: el libro guarda cantidades sin signo > 0")

	e.Quantity = -5
	assert.ErrorIs(t, e.Validate(), domain.ErrInvalidMovement,
		"cantidad negativa debe rechazarse")
}

func TestValidate_TipoDesconocido(t *testing.T) {
	e := validEntry()
	e.Type = "TELEPORT"
	assert.ErrorIs(t, e.Validate(), domain.ErrInvalidMovement)
}

func TestValidate_ReferenciaDesconocida(t *testing.T) {
	e := validEntry()
	e.ReferenceType = "FACTURA"
	assert.ErrorIs(t, e.Validate(), domain.ErrInvalidMovement)
}

func TestValidate_ActorRequerido(t *testing.T) {
	e := validEntry()
	e.UserID = ""
	assert.ErrorIs(t, e.Validate(), domain.ErrInvalidMovement)
}

func TestValidate_TransferInRequiereSede(t *testing.T) {
	e := validEntry()
	e.Type = entity.MovementTypeTRANSFERIN
	assert.ErrorIs(t, e.Validate(), domain.ErrInvalidMovement,
		"TRANSFER_IN sin sede destino debe rechazarse")

	e.SiteID = strPtr("site-1")
	assert.NoError(t, e.Validate())
}

func TestValidate_TransferOutRequiereSede(t *testing.T) {
	e := validEntry()
	e.Type = entity.MovementTypeTRANSFEROUT
	assert.ErrorIs(t, e.Validate(), domain.ErrInvalidMovement)

	e.ToSiteID = strPtr("site-1")
	assert.NoError(t, e.Validate())
}

// ──────────────────────────────────────────────────────────────────────────────
// GlobalDelta / SiteDelta: proyección con signo de cada tipo de movimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestGlobalDelta_MovimientosGlobales(t *testing.T) {
	cases := []struct {
		tipo string
		want int64
	}{
		{entity.MovementTypeIN, 10},
		{entity.MovementTypeADJUSTMENT, 10},
		{entity.MovementTypeOUT, -10},
		{entity.MovementTypeTRANSFEROUT, -10},
		{entity.MovementTypeTRANSFERIN, 0},
	}
	for _, tc := range cases {
		e := validEntry()
		e.Type = tc.tipo
		assert.Equal(t, tc.want, e.GlobalDelta(), "GlobalDelta de %s", tc.tipo)
	}
}

func TestGlobalDelta_MovimientoDeSedeNoAfectaGlobal(t *testing.T) {
	e := validEntry()
	e.Type = entity.MovementTypeOUT
	e.SiteID = strPtr("site-1")
	assert.Zero(t, e.GlobalDelta(),
		"un movimiento dirigido a una sede nunca cambia el pool global")
}

func TestSiteDelta_MovimientosDeSede(t *testing.T) {
	cases := []struct {
		tipo string
		want int64
	}{
		{entity.MovementTypeTRANSFERIN, 7},
		{entity.MovementTypeIN, 7},
		{entity.MovementTypeADJUSTMENT, 7},
		{entity.MovementTypeOUT, -7},
		{entity.MovementTypeTRANSFEROUT, -7},
	}
	for _, tc := range cases {
		e := validEntry()
		e.Type = tc.tipo
		e.Quantity = 7
		e.SiteID = strPtr("site-1")
		assert.Equal(t, tc.want, e.SiteDelta(), "SiteDelta de %s", tc.tipo)
	}
}

func TestSiteDelta_MovimientoGlobalEsCeroParaSede(t *testing.T) {
	e := validEntry()
	e.Type = entity.MovementTypeTRANSFEROUT
	e.ToSiteID = strPtr("site-1")
	assert.Zero(t, e.SiteDelta(),
		"el débito global de una transferencia (SiteID nil) no proyecta sobre la sede")
}
