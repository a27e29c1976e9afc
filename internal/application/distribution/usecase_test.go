package distribution_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/FarmaStock-api/internal/application/distribution"
	"github.com/jhoicas/FarmaStock-api/internal/application/dto"
	"github.com/jhoicas/FarmaStock-api/internal/application/stock"
	"github.com/jhoicas/FarmaStock-api/internal/application/stock/stocktest"
	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
)

const (
	medA    = "00000000-0000-0000-0000-00000000000a"
	medB    = "00000000-0000-0000-0000-00000000000b"
	siteUno = "00000000-0000-0000-0000-000000000101"
	actorID = "00000000-0000-0000-0000-000000000001"
)

// newFlow arma el flujo de distribución completo sobre los dobles en memoria.
func newFlow() (*distribution.UseCase, *stocktest.FakeTxRunner, *stocktest.FakeSiteRepo) {
	runner := stocktest.NewFakeTxRunner()
	sites := stocktest.NewFakeSiteRepo()
	transfer := stock.NewTransferUseCase(runner, runner.Global, runner.Sites)
	uc := distribution.NewUseCase(runner, runner.Distributions, sites, transfer)
	return uc, runner, sites
}

func createPending(t *testing.T, uc *distribution.UseCase, lines []dto.DistributionLineRequest) *dto.DistributionResponse {
	t.Helper()
	d, err := uc.Create(context.Background(), actorID, dto.CreateDistributionRequest{
		SiteID: siteUno,
		Lines:  lines,
		Notes:  "envío semanal",
	})
	require.NoError(t, err)
	require.NotNil(t, d)
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_QuedaPendienteSinTocarStock(t *testing.T) {
	uc, runner, sites := newFlow()
	sites.Seed(siteUno, "SEDE-NORTE", "Sede Norte")
	runner.Global.Seed(medA, 100, 10)

	d := createPending(t, uc, []dto.DistributionLineRequest{{MedicationID: medA, Quantity: 30}})

	assert.Equal(t, entity.DistributionStatusPending, d.Status)
	assert.Equal(t, siteUno, d.SiteID)
	require.Len(t, d.Lines, 1)
	assert.Nil(t, d.Lines[0].OutMovementID)
	assert.Nil(t, d.Lines[0].InMovementID)

	gs, err := runner.Global.Get(medA)
	require.NoError(t, err)
	assert.Equal(t, int64(100), gs.Quantity, "crear no debe mover stock")
	assert.Empty(t, runner.Movements.Entries)
}

func TestCreate_SedeInexistente(t *testing.T) {
	uc, _, _ := newFlow()

	_, err := uc.Create(context.Background(), actorID, dto.CreateDistributionRequest{
		SiteID: siteUno,
		Lines:  []dto.DistributionLineRequest{{MedicationID: medA, Quantity: 10}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_EntradaInvalida(t *testing.T) {
	uc, _, sites := newFlow()
	sites.Seed(siteUno, "SEDE-NORTE", "Sede Norte")

	_, err := uc.Create(context.Background(), actorID, dto.CreateDistributionRequest{SiteID: siteUno})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, err = uc.Create(context.Background(), actorID, dto.CreateDistributionRequest{
		SiteID: siteUno,
		Lines:  []dto.DistributionLineRequest{{MedicationID: medA, Quantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = uc.Create(context.Background(), "", dto.CreateDistributionRequest{
		SiteID: siteUno,
		Lines:  []dto.DistributionLineRequest{{MedicationID: medA, Quantity: 5}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin actor")
}

// ──────────────────────────────────────────────────────────────────────────────
// Distribute
// ──────────────────────────────────────────────────────────────────────────────

func TestDistribute_AplicaLineasYEnlazaMovimientos(t *testing.T) {
	uc, runner, sites := newFlow()
	sites.Seed(siteUno, "SEDE-NORTE", "Sede Norte")
	runner.Global.Seed(medA, 100, 10)
	runner.Global.Seed(medB, 40, 5)

	d := createPending(t, uc, []dto.DistributionLineRequest{
		{MedicationID: medA, Quantity: 30},
		{MedicationID: medB, Quantity: 15},
	})

	res, err := uc.Distribute(context.Background(), d.ID, actorID)
	require.NoError(t, err)
	require.NotNil(t, res.Distribution)
	require.True(t, res.Transfer.Success)

	assert.Equal(t, entity.DistributionStatusDistributed, res.Distribution.Status)
	require.Len(t, res.Distribution.Lines, 2)
	for _, l := range res.Distribution.Lines {
		assert.NotNil(t, l.OutMovementID, "línea %s sin movimiento de salida", l.MedicationID)
		assert.NotNil(t, l.InMovementID, "línea %s sin movimiento de entrada", l.MedicationID)
	}

	gsA, _ := runner.Global.Get(medA)
	gsB, _ := runner.Global.Get(medB)
	assert.Equal(t, int64(70), gsA.Quantity)
	assert.Equal(t, int64(25), gsB.Quantity)
	ssA, _ := runner.Sites.Get(siteUno, medA)
	ssB, _ := runner.Sites.Get(siteUno, medB)
	assert.Equal(t, int64(30), ssA.Quantity)
	assert.Equal(t, int64(15), ssB.Quantity)

	// par TRANSFER_OUT/TRANSFER_IN por línea, referenciando la distribución
	require.Len(t, runner.Movements.Entries, 4)
	for _, e := range runner.Movements.Entries {
		assert.Equal(t, entity.ReferenceDistribution, e.ReferenceType)
		assert.Equal(t, d.ID, e.ReferenceID)
	}
}

func TestDistribute_StockInsuficienteDejaTodoPendiente(t *testing.T) {
	uc, runner, sites := newFlow()
	sites.Seed(siteUno, "SEDE-NORTE", "Sede Norte")
	runner.Global.Seed(medA, 100, 10)
	runner.Global.Seed(medB, 5, 5)

	d := createPending(t, uc, []dto.DistributionLineRequest{
		{MedicationID: medA, Quantity: 30},
		{MedicationID: medB, Quantity: 50},
	})

	res, err := uc.Distribute(context.Background(), d.ID, actorID)
	require.NoError(t, err, "los fallos por línea no son error del caso de uso")
	require.NotNil(t, res)
	require.NotNil(t, res.Transfer)
	assert.False(t, res.Transfer.Success)
	assert.Nil(t, res.Distribution)

	// nada se aplicó: ni stock, ni movimientos, ni estado
	gsA, _ := runner.Global.Get(medA)
	assert.Equal(t, int64(100), gsA.Quantity)
	ss, _ := runner.Sites.Get(siteUno, medA)
	assert.Nil(t, ss)
	assert.Empty(t, runner.Movements.Entries)

	cur, err := uc.GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DistributionStatusPending, cur.Status)
	for _, l := range cur.Lines {
		assert.Nil(t, l.OutMovementID)
		assert.Nil(t, l.InMovementID)
	}
}

func TestDistribute_SoloDesdePendiente(t *testing.T) {
	uc, runner, sites := newFlow()
	sites.Seed(siteUno, "SEDE-NORTE", "Sede Norte")
	runner.Global.Seed(medA, 100, 10)

	d := createPending(t, uc, []dto.DistributionLineRequest{{MedicationID: medA, Quantity: 10}})
	_, err := uc.Distribute(context.Background(), d.ID, actorID)
	require.NoError(t, err)

	_, err = uc.Distribute(context.Background(), d.ID, actorID)
	assert.ErrorIs(t, err, domain.ErrConflict, "una distribución DISTRIBUTED es inmutable")

	gs, _ := runner.Global.Get(medA)
	assert.Equal(t, int64(90), gs.Quantity, "el reintento no debe debitar de nuevo")
}

func TestDistribute_Inexistente(t *testing.T) {
	uc, _, _ := newFlow()
	_, err := uc.Distribute(context.Background(), "no-existe", actorID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancel
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_SoloPendiente(t *testing.T) {
	uc, runner, sites := newFlow()
	sites.Seed(siteUno, "SEDE-NORTE", "Sede Norte")
	runner.Global.Seed(medA, 100, 10)

	d := createPending(t, uc, []dto.DistributionLineRequest{{MedicationID: medA, Quantity: 10}})
	require.NoError(t, uc.Cancel(context.Background(), d.ID))

	_, err := uc.GetByID(context.Background(), d.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	d2 := createPending(t, uc, []dto.DistributionLineRequest{{MedicationID: medA, Quantity: 10}})
	_, err = uc.Distribute(context.Background(), d2.ID, actorID)
	require.NoError(t, err)
	err = uc.Cancel(context.Background(), d2.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "una distribución aplicada no se cancela, se reversa")
}

// ──────────────────────────────────────────────────────────────────────────────
// List
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltraPorSede(t *testing.T) {
	uc, runner, sites := newFlow()
	otraSede := "00000000-0000-0000-0000-000000000102"
	sites.Seed(siteUno, "SEDE-NORTE", "Sede Norte")
	sites.Seed(otraSede, "SEDE-SUR", "Sede Sur")
	runner.Global.Seed(medA, 100, 10)

	createPending(t, uc, []dto.DistributionLineRequest{{MedicationID: medA, Quantity: 5}})
	_, err := uc.Create(context.Background(), actorID, dto.CreateDistributionRequest{
		SiteID: otraSede,
		Lines:  []dto.DistributionLineRequest{{MedicationID: medA, Quantity: 5}},
	})
	require.NoError(t, err)

	list, err := uc.List(context.Background(), siteUno, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, siteUno, list.Items[0].SiteID)

	all, err := uc.List(context.Background(), "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
}
