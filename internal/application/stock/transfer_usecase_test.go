package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/FarmaStock-api/internal/application/stock"
	"github.com/jhoicas/FarmaStock-api/internal/application/stock/stocktest"
	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	domainstock "github.com/jhoicas/FarmaStock-api/internal/domain/stock"
)

const (
	medA    = "00000000-0000-0000-0000-00000000000a"
	medB    = "00000000-0000-0000-0000-00000000000b"
	siteUno = "00000000-0000-0000-0000-000000000101"
	actorID = "00000000-0000-0000-0000-000000000001"
)

// newEngine construye el motor de transferencias sobre los dobles en memoria.
func newEngine() (*stock.TransferUseCase, *stocktest.FakeTxRunner) {
	runner := stocktest.NewFakeTxRunner()
	uc := stock.NewTransferUseCase(runner, runner.Global, runner.Sites)
	return uc, runner
}

func globalQty(t *testing.T, runner *stocktest.FakeTxRunner, medicationID string) int64 {
	t.Helper()
	gs, err := runner.Global.Get(medicationID)
	require.NoError(t, err)
	require.NotNil(t, gs, "debe existir la fila global de %s", medicationID)
	return gs.Quantity
}

func siteQty(t *testing.T, runner *stocktest.FakeTxRunner, siteID, medicationID string) int64 {
	t.Helper()
	ss, err := runner.Sites.Get(siteID, medicationID)
	require.NoError(t, err)
	if ss == nil {
		return 0
	}
	return ss.Quantity
}

// ──────────────────────────────────────────────────────────────────────────────
// PerformTransfer: débito global / crédito de sede como unidad atómica
// ──────────────────────────────────────────────────────────────────────────────

func TestPerformTransfer_ParDeMovimientosYConservacion(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 100, 10)

	res, err := uc.PerformTransfer(context.Background(), stock.TransferInput{
		SiteID: siteUno,
		Lines:  []stock.TransferLine{{MedicationID: medA, Quantity: 30}},
		UserID: actorID,
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Len(t, res.Movements, 1)

	assert.Equal(t, int64(70), globalQty(t, runner, medA))
	assert.Equal(t, int64(30), siteQty(t, runner, siteUno, medA))
	assert.Equal(t, int64(70), res.Movements[0].GlobalAfter)
	assert.Equal(t, int64(30), res.Movements[0].SiteAfter)

	// Cada línea deja el par TRANSFER_OUT (global) + TRANSFER_IN (sede).
	require.Len(t, runner.Movements.Entries, 2)
	out, in := runner.Movements.Entries[0], runner.Movements.Entries[1]
	assert.Equal(t, entity.MovementTypeTRANSFEROUT, out.Type)
	assert.Nil(t, out.SiteID, "el débito global no lleva SiteID")
	require.NotNil(t, out.ToSiteID)
	assert.Equal(t, siteUno, *out.ToSiteID)
	assert.Equal(t, entity.MovementTypeTRANSFERIN, in.Type)
	require.NotNil(t, in.SiteID)
	assert.Equal(t, siteUno, *in.SiteID)
	assert.Equal(t, out.ReferenceID, in.ReferenceID, "ambos comparten la referencia")

	// La cantidad vigente debe ser derivable del libro (conservación).
	assert.Equal(t, int64(70), domainstock.ReplayGlobal(100, runner.Movements.Entries))
	assert.Equal(t, int64(30), domainstock.ReplaySite(siteUno, 0, runner.Movements.Entries))
}

func TestPerformTransfer_MultilineaAtomica(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 10, 0)
	runner.Global.Seed(medB, 100, 0)

	res, err := uc.PerformTransfer(context.Background(), stock.TransferInput{
		SiteID: siteUno,
		Lines: []stock.TransferLine{
			{MedicationID: medA, Quantity: 10},
			{MedicationID: medB, Quantity: 99999},
		},
		UserID: actorID,
	})
	require.NoError(t, err, "los fallos por línea viajan dentro del resultado")
	require.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, medB, res.Errors[0].MedicationID)
	assert.Equal(t, int64(99999), res.Errors[0].Requested)
	assert.Equal(t, int64(100), res.Errors[0].Available)

	// Nada se aplicó: ni la línea válida ni la inválida.
	assert.Equal(t, int64(10), globalQty(t, runner, medA))
	assert.Equal(t, int64(100), globalQty(t, runner, medB))
	assert.Zero(t, siteQty(t, runner, siteUno, medA))
	assert.Empty(t, runner.Movements.Entries)
}

func TestPerformTransfer_MedicamentoInexistente(t *testing.T) {
	uc, runner := newEngine()

	res, err := uc.PerformTransfer(context.Background(), stock.TransferInput{
		SiteID: siteUno,
		Lines:  []stock.TransferLine{{MedicationID: medA, Quantity: 5}},
		UserID: actorID,
	})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "medicamento no encontrado", res.Errors[0].Error)
	assert.Empty(t, runner.Movements.Entries)
}

func TestPerformTransfer_LineasRepetidasProyectanConsumo(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 10, 0)

	// Dos líneas de 6 sobre 10 disponibles: la segunda debe ver solo 4.
	res, err := uc.PerformTransfer(context.Background(), stock.TransferInput{
		SiteID: siteUno,
		Lines: []stock.TransferLine{
			{MedicationID: medA, Quantity: 6},
			{MedicationID: medA, Quantity: 6},
		},
		UserID: actorID,
	})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, int64(4), res.Errors[0].Available)
	assert.Equal(t, int64(10), globalQty(t, runner, medA))
}

func TestPerformTransfer_EntradaInvalida(t *testing.T) {
	uc, _ := newEngine()

	_, err := uc.PerformTransfer(context.Background(), stock.TransferInput{
		SiteID: siteUno,
		UserID: actorID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas no hay transferencia")

	_, err = uc.PerformTransfer(context.Background(), stock.TransferInput{
		SiteID: siteUno,
		Lines:  []stock.TransferLine{{MedicationID: medA, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el actor es obligatorio")
}

// ──────────────────────────────────────────────────────────────────────────────
// ValidateTransfer: pre-chequeo consultivo
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateTransfer_AdvertenciaUmbralDeReorden(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 100, 80)

	v, err := uc.ValidateTransfer(context.Background(), siteUno,
		[]stock.TransferLine{{MedicationID: medA, Quantity: 30}})
	require.NoError(t, err)
	assert.True(t, v.IsValid, "las advertencias no invalidan")
	assert.Empty(t, v.Errors)
	require.Len(t, v.Warnings, 1)
	assert.Equal(t, medA, v.Warnings[0].MedicationID)

	// Consultivo: no muta nada.
	assert.Equal(t, int64(100), globalQty(t, runner, medA))
	assert.Empty(t, runner.Movements.Entries)
}

func TestValidateTransfer_TechoDeSedeSoloAdvierte(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 100, 0)
	runner.Sites.Seed(siteUno, medA, 40)
	max := int64(50)
	runner.Sites.Stocks[siteUno+"/"+medA].MaxStock = &max

	v, err := uc.ValidateTransfer(context.Background(), siteUno,
		[]stock.TransferLine{{MedicationID: medA, Quantity: 20}})
	require.NoError(t, err)
	assert.True(t, v.IsValid)
	require.Len(t, v.Warnings, 1, "40 + 20 supera el techo de 50")
}

func TestValidateTransfer_AcumulaErroresPorLinea(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 5, 0)

	v, err := uc.ValidateTransfer(context.Background(), siteUno, []stock.TransferLine{
		{MedicationID: medA, Quantity: 10},
		{MedicationID: medB, Quantity: 1},
		{MedicationID: medA, Quantity: 0},
	})
	require.NoError(t, err)
	assert.False(t, v.IsValid)
	require.Len(t, v.Errors, 3)
	assert.Equal(t, "stock global insuficiente", v.Errors[0].Error)
	assert.Equal(t, "medicamento no encontrado", v.Errors[1].Error)
	assert.Equal(t, "cantidad debe ser positiva", v.Errors[2].Error)
	assert.Equal(t, int64(5), globalQty(t, runner, medA))
}

// ──────────────────────────────────────────────────────────────────────────────
// ReverseTransfer: compensación inversa por referencia
// ──────────────────────────────────────────────────────────────────────────────

func TestReverseTransfer_RoundTrip(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 100, 0)

	res, err := uc.PerformTransfer(context.Background(), stock.TransferInput{
		SiteID: siteUno,
		Lines:  []stock.TransferLine{{MedicationID: medA, Quantity: 30}},
		UserID: actorID,
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	refID := runner.Movements.Entries[0].ReferenceID

	rev, err := uc.ReverseTransfer(context.Background(), stock.ReversalInput{
		ReferenceType: entity.ReferenceTransfer,
		ReferenceID:   refID,
		UserID:        actorID,
	})
	require.NoError(t, err)
	require.Len(t, rev.Movements, 2, "un compensatorio por cada movimiento original")

	// El estado vuelve exactamente a antes de la transferencia.
	assert.Equal(t, int64(100), globalQty(t, runner, medA))
	assert.Zero(t, siteQty(t, runner, siteUno, medA))

	// Los originales se preservan; los compensatorios apuntan a ellos.
	require.Len(t, runner.Movements.Entries, 4)
	for i, comp := range runner.Movements.Entries[2:] {
		assert.Equal(t, entity.ReferenceAdjustment, comp.ReferenceType)
		require.NotNil(t, comp.ReversalOf)
		assert.Equal(t, runner.Movements.Entries[i].ID, *comp.ReversalOf)
		assert.Contains(t, comp.Notes, "reversa del movimiento")
	}
}

func TestReverseTransfer_SegundaReversionNoAplicaDosVeces(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 100, 0)
	// La sede retiene unidades de otra fuente: la no-negatividad por sí sola
	// no frenaría una segunda reversión.
	runner.Sites.Seed(siteUno, medA, 50)

	res, err := uc.PerformTransfer(context.Background(), stock.TransferInput{
		SiteID: siteUno,
		Lines:  []stock.TransferLine{{MedicationID: medA, Quantity: 30}},
		UserID: actorID,
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	refID := runner.Movements.Entries[0].ReferenceID

	input := stock.ReversalInput{
		ReferenceType: entity.ReferenceTransfer,
		ReferenceID:   refID,
		UserID:        actorID,
	}
	_, err = uc.ReverseTransfer(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, int64(100), globalQty(t, runner, medA))
	require.Equal(t, int64(50), siteQty(t, runner, siteUno, medA))
	entriesBefore := len(runner.Movements.Entries)

	// Reversar lo ya reversado falla, no acuña unidades en el pool global.
	_, err = uc.ReverseTransfer(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrNothingToReverse)
	assert.Equal(t, int64(100), globalQty(t, runner, medA))
	assert.Equal(t, int64(50), siteQty(t, runner, siteUno, medA))
	assert.Len(t, runner.Movements.Entries, entriesBefore)
}

func TestReverseTransfer_NadaQueReversar(t *testing.T) {
	uc, _ := newEngine()

	_, err := uc.ReverseTransfer(context.Background(), stock.ReversalInput{
		ReferenceType: entity.ReferenceDistribution,
		ReferenceID:   "dist-inexistente",
		UserID:        actorID,
	})
	assert.ErrorIs(t, err, domain.ErrNothingToReverse)
}

func TestReverseTransfer_ReferenciaInvalida(t *testing.T) {
	uc, _ := newEngine()

	_, err := uc.ReverseTransfer(context.Background(), stock.ReversalInput{
		ReferenceType: "FACTURA",
		ReferenceID:   "x",
		UserID:        actorID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
}

func TestReverseTransfer_SedeYaNoRetieneLoSuficiente(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 100, 0)

	res, err := uc.PerformTransfer(context.Background(), stock.TransferInput{
		SiteID: siteUno,
		Lines:  []stock.TransferLine{{MedicationID: medA, Quantity: 30}},
		UserID: actorID,
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	refID := runner.Movements.Entries[0].ReferenceID

	// La sede dispensa 15 unidades; revertir exigiría quitarle 30.
	_, err = uc.DispenseInTx(runner.Movements, runner.Sites, siteUno,
		[]stock.DispenseLine{{MedicationID: medA, Quantity: 15}},
		entity.ReferencePrescription, "rx-1", actorID, "")
	require.NoError(t, err)
	entriesBefore := len(runner.Movements.Entries)

	_, err = uc.ReverseTransfer(context.Background(), stock.ReversalInput{
		ReferenceType: entity.ReferenceTransfer,
		ReferenceID:   refID,
		UserID:        actorID,
	})
	require.Error(t, err)
	var shortfall *domain.InsufficientStockError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, siteUno, shortfall.SiteID)
	assert.Equal(t, int64(15), shortfall.Available)

	// Todo o nada: la reversión fallida no deja efectos parciales.
	assert.Equal(t, int64(70), globalQty(t, runner, medA))
	assert.Equal(t, int64(15), siteQty(t, runner, siteUno, medA))
	assert.Len(t, runner.Movements.Entries, entriesBefore)
}

// ──────────────────────────────────────────────────────────────────────────────
// Synchronize: el pool global es la fuente autoritativa
// ──────────────────────────────────────────────────────────────────────────────

func TestSynchronize_CorrigeDesviacionesConMovimiento(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 70, 0)
	runner.Sites.Seed(siteUno, medA, 100)

	adjs, err := uc.Synchronize(context.Background(), siteUno, actorID)
	require.NoError(t, err)
	require.Len(t, adjs, 1)
	assert.Equal(t, int64(100), adjs[0].OldQuantity)
	assert.Equal(t, int64(70), adjs[0].NewQuantity)

	assert.Equal(t, int64(70), siteQty(t, runner, siteUno, medA))
	assert.Equal(t, int64(70), globalQty(t, runner, medA), "el global no se toca")

	require.Len(t, runner.Movements.Entries, 1)
	mov := runner.Movements.Entries[0]
	assert.Equal(t, entity.MovementTypeOUT, mov.Type, "la sede baja, el ajuste es un OUT")
	assert.Equal(t, int64(30), mov.Quantity)
	assert.Equal(t, entity.ReferenceAdjustment, mov.ReferenceType)
	assert.Equal(t, siteUno, mov.ReferenceID)
	require.NotNil(t, mov.SiteID)
	assert.Contains(t, mov.Notes, "sincronización de sede: 100 -> 70")
}

func TestSynchronize_SedeAlineadaNoGeneraAjustes(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 70, 0)
	runner.Sites.Seed(siteUno, medA, 70)

	adjs, err := uc.Synchronize(context.Background(), siteUno, actorID)
	require.NoError(t, err)
	assert.Empty(t, adjs)
	assert.Empty(t, runner.Movements.Entries)
}

func TestSynchronize_SinContraparteGlobalSeOmite(t *testing.T) {
	uc, runner := newEngine()
	runner.Sites.Seed(siteUno, medA, 50)

	adjs, err := uc.Synchronize(context.Background(), siteUno, actorID)
	require.NoError(t, err)
	assert.Empty(t, adjs, "sin fila global no hay valor autoritativo")
	assert.Equal(t, int64(50), siteQty(t, runner, siteUno, medA))
}

// ──────────────────────────────────────────────────────────────────────────────
// AdjustGlobal: ajuste administrativo con rastro
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustGlobal_PositivoDejaMovimientoADJUSTMENT(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 10, 0)

	gs, err := uc.AdjustGlobal(context.Background(), medA, 5, actorID, "conteo físico")
	require.NoError(t, err)
	assert.Equal(t, int64(15), gs.Quantity)

	require.Len(t, runner.Movements.Entries, 1)
	mov := runner.Movements.Entries[0]
	assert.Equal(t, entity.MovementTypeADJUSTMENT, mov.Type)
	assert.Equal(t, int64(5), mov.Quantity)
	assert.Equal(t, entity.ReferenceAdjustment, mov.ReferenceType)
}

func TestAdjustGlobal_NegativoDejaMovimientoOUT(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 10, 0)

	gs, err := uc.AdjustGlobal(context.Background(), medA, -3, actorID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(7), gs.Quantity)

	mov := runner.Movements.Entries[0]
	assert.Equal(t, entity.MovementTypeOUT, mov.Type)
	assert.Equal(t, int64(3), mov.Quantity, "el libro guarda la cantidad sin signo")
}

func TestAdjustGlobal_NuncaDejaNegativo(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 10, 0)

	_, err := uc.AdjustGlobal(context.Background(), medA, -11, actorID, "")
	var shortfall *domain.InsufficientStockError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, int64(10), shortfall.Available)
	assert.Equal(t, int64(10), globalQty(t, runner, medA))
	assert.Empty(t, runner.Movements.Entries)
}

func TestAdjustGlobal_DeltaCeroRechazado(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 10, 0)

	_, err := uc.AdjustGlobal(context.Background(), medA, 0, actorID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
	assert.Empty(t, runner.Movements.Entries)
}

// ──────────────────────────────────────────────────────────────────────────────
// ReceiveInTx / DispenseInTx: entradas de pedido y salidas de fórmula
// ──────────────────────────────────────────────────────────────────────────────

func TestReceiveInTx_AcreditaGlobalConMovimientoIN(t *testing.T) {
	uc, runner := newEngine()
	runner.Global.Seed(medA, 10, 0)

	ids, err := uc.ReceiveInTx(runner.Movements, runner.Global,
		[]stock.ReceiveLine{{MedicationID: medA, Quantity: 50}},
		entity.ReferenceOrder, "ord-1", actorID, "")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	assert.Equal(t, int64(60), globalQty(t, runner, medA))
	mov := runner.Movements.Entries[0]
	assert.Equal(t, entity.MovementTypeIN, mov.Type)
	assert.Equal(t, entity.ReferenceOrder, mov.ReferenceType)
	assert.Equal(t, "ord-1", mov.ReferenceID)
	assert.Nil(t, mov.SiteID)
}

func TestReceiveInTx_MedicamentoSinFilaGlobal(t *testing.T) {
	uc, runner := newEngine()

	_, err := uc.ReceiveInTx(runner.Movements, runner.Global,
		[]stock.ReceiveLine{{MedicationID: medA, Quantity: 50}},
		entity.ReferenceOrder, "ord-1", actorID, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDispenseInTx_DebitaSedeConMovimientoOUT(t *testing.T) {
	uc, runner := newEngine()
	runner.Sites.Seed(siteUno, medA, 8)

	ids, err := uc.DispenseInTx(runner.Movements, runner.Sites, siteUno,
		[]stock.DispenseLine{{MedicationID: medA, Quantity: 5}},
		entity.ReferencePrescription, "rx-1", actorID, "")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	assert.Equal(t, int64(3), siteQty(t, runner, siteUno, medA))
	mov := runner.Movements.Entries[0]
	assert.Equal(t, entity.MovementTypeOUT, mov.Type)
	require.NotNil(t, mov.SiteID)
	assert.Equal(t, siteUno, *mov.SiteID)
}

func TestDispenseInTx_InsuficienteEnSede(t *testing.T) {
	uc, runner := newEngine()
	runner.Sites.Seed(siteUno, medA, 5)

	_, err := uc.DispenseInTx(runner.Movements, runner.Sites, siteUno,
		[]stock.DispenseLine{{MedicationID: medA, Quantity: 8}},
		entity.ReferencePrescription, "rx-1", actorID, "")
	var shortfall *domain.InsufficientStockError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, int64(5), shortfall.Available)
	assert.Equal(t, int64(8), shortfall.Requested)
}
