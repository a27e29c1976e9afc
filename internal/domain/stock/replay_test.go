package stock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/stock"
)

func strPtr(s string) *string { return &s }

// ──────────────────────────────────────────────────────────────────────────────
// Replay: la cantidad vigente debe ser derivable del libro
// ──────────────────────────────────────────────────────────────────────────────

func TestReplayGlobal_SecuenciaCompleta(t *testing.T) {
	site := "site-1"
	entries := []*entity.MovementEntry{
		{Type: entity.MovementTypeIN, Quantity: 100},                    // orden recibida: +100
		{Type: entity.MovementTypeTRANSFEROUT, Quantity: 30, ToSiteID: &site}, // transferencia a sede: -30
		{Type: entity.MovementTypeTRANSFERIN, Quantity: 30, SiteID: &site},    // crédito de sede: global 0
		{Type: entity.MovementTypeADJUSTMENT, Quantity: 5},             // ajuste positivo: +5
		{Type: entity.MovementTypeOUT, Quantity: 10},                   // ajuste negativo: -10
	}
	assert.Equal(t, int64(65), stock.ReplayGlobal(0, entries),
		"100 - 30 + 5 - 10 = 65; el crédito de sede no toca el global")
}

func TestReplaySite_SoloMovimientosDeLaSede(t *testing.T) {
	site := "site-1"
	otra := "site-2"
	entries := []*entity.MovementEntry{
		{Type: entity.MovementTypeTRANSFERIN, Quantity: 30, SiteID: &site},
		{Type: entity.MovementTypeTRANSFERIN, Quantity: 99, SiteID: &otra},
		{Type: entity.MovementTypeOUT, Quantity: 8, SiteID: &site},
		{Type: entity.MovementTypeTRANSFEROUT, Quantity: 30, ToSiteID: &site}, // débito global, no de sede
	}
	assert.Equal(t, int64(22), stock.ReplaySite(site, 0, entries),
		"30 - 8 = 22; los movimientos de otras sedes y los globales no cuentan")
}

func TestReplay_SinMovimientosConservaInicial(t *testing.T) {
	assert.Equal(t, int64(42), stock.ReplayGlobal(42, nil))
	assert.Equal(t, int64(42), stock.ReplaySite("site-1", 42, nil))
}
