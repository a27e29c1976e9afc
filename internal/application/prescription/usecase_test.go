package prescription_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/FarmaStock-api/internal/application/dto"
	"github.com/jhoicas/FarmaStock-api/internal/application/prescription"
	"github.com/jhoicas/FarmaStock-api/internal/application/stock"
	"github.com/jhoicas/FarmaStock-api/internal/application/stock/stocktest"
	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
)

const (
	medA      = "00000000-0000-0000-0000-00000000000a"
	medB      = "00000000-0000-0000-0000-00000000000b"
	siteUno   = "00000000-0000-0000-0000-000000000101"
	actorID   = "00000000-0000-0000-0000-000000000001"
	quimicoID = "00000000-0000-0000-0000-000000000002"
)

// newFlow arma el flujo de fórmulas completo sobre los dobles en memoria.
func newFlow() (*prescription.UseCase, *stocktest.FakeTxRunner, *stocktest.FakeSiteRepo) {
	runner := stocktest.NewFakeTxRunner()
	sites := stocktest.NewFakeSiteRepo()
	transfer := stock.NewTransferUseCase(runner, runner.Global, runner.Sites)
	uc := prescription.NewUseCase(runner, runner.Prescriptions, sites, transfer)
	return uc, runner, sites
}

func createPending(t *testing.T, uc *prescription.UseCase, lines []dto.PrescriptionLineRequest) *dto.PrescriptionResponse {
	t.Helper()
	p, err := uc.Create(context.Background(), actorID, dto.CreatePrescriptionRequest{
		SiteID:          siteUno,
		PatientDocument: "CC-1032456789",
		PatientName:     "María Rodríguez",
		PrescriberName:  "Dr. Gómez",
		Lines:           lines,
	})
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_QuedaPendienteSinTocarStock(t *testing.T) {
	uc, runner, sites := newFlow()
	sites.Seed(siteUno, "SEDE-NORTE", "Sede Norte")
	runner.Sites.Seed(siteUno, medA, 20)

	p := createPending(t, uc, []dto.PrescriptionLineRequest{
		{MedicationID: medA, Quantity: 2, Directions: "1 tableta cada 12 horas"},
	})

	assert.Equal(t, entity.PrescriptionStatusPending, p.Status)
	assert.Equal(t, "CC-1032456789", p.PatientDocument)
	require.Len(t, p.Lines, 1)
	assert.Nil(t, p.Lines[0].MovementID)

	ss, err := runner.Sites.Get(siteUno, medA)
	require.NoError(t, err)
	assert.Equal(t, int64(20), ss.Quantity, "crear no debe dispensar")
	assert.Empty(t, runner.Movements.Entries)
}

func TestCreate_SedeInexistente(t *testing.T) {
	uc, _, _ := newFlow()

	_, err := uc.Create(context.Background(), actorID, dto.CreatePrescriptionRequest{
		SiteID:          siteUno,
		PatientDocument: "CC-1032456789",
		Lines:           []dto.PrescriptionLineRequest{{MedicationID: medA, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_EntradaInvalida(t *testing.T) {
	uc, _, sites := newFlow()
	sites.Seed(siteUno, "SEDE-NORTE", "Sede Norte")

	_, err := uc.Create(context.Background(), actorID, dto.CreatePrescriptionRequest{
		SiteID: siteUno,
		Lines:  []dto.PrescriptionLineRequest{{MedicationID: medA, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin documento del paciente")

	_, err = uc.Create(context.Background(), actorID, dto.CreatePrescriptionRequest{
		SiteID:          siteUno,
		PatientDocument: "CC-1032456789",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, err = uc.Create(context.Background(), actorID, dto.CreatePrescriptionRequest{
		SiteID:          siteUno,
		PatientDocument: "CC-1032456789",
		Lines:           []dto.PrescriptionLineRequest{{MedicationID: medA, Quantity: -1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad negativa")
}

// ──────────────────────────────────────────────────────────────────────────────
// Máquina de estados
// ──────────────────────────────────────────────────────────────────────────────

func TestMarkPreparing_DesdePendiente(t *testing.T) {
	uc, runner, sites := newFlow()
	sites.Seed(siteUno, "SEDE-NORTE", "Sede Norte")
	runner.Sites.Seed(siteUno, medA, 20)

	p := createPending(t, uc, []dto.PrescriptionLineRequest{{MedicationID: medA, Quantity: 2}})

	p2, err := uc.MarkPreparing(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PrescriptionStatusPreparing, p2.Status)
	assert.Empty(t, runner.Movements.Entries, "preparar aún no dispensa")

	_, err = uc.MarkPreparing(context.Background(), p.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCancel_AntesDePreparada(t *testing.T) {
	uc, runner, sites := newFlow()
	sites.Seed(siteUno, "SEDE-NORTE", "Sede Norte")
	runner.Sites.Seed(siteUno, medA, 20)

	p := createPending(t, uc, []dto.PrescriptionLineRequest{{MedicationID: medA, Quantity: 2}})
	_, err := uc.MarkPreparing(context.Background(), p.ID)
	require.NoError(t, err)

	p2, err := uc.Cancel(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PrescriptionStatusCancelled, p2.Status)

	// CANCELLED es terminal
	_, err = uc.MarkPreparing(context.Background(), p.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = uc.MarkPrepared(context.Background(), p.ID, quimicoID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// MarkPrepared: dispensación desde la sede
// ──────────────────────────────────────────────────────────────────────────────

func TestMarkPrepared_DebitaLaSede(t *testing.T) {
	uc, runner, sites := newFlow()
	sites.Seed(siteUno, "SEDE-NORTE", "Sede Norte")
	runner.Global.Seed(medA, 100, 10)
	runner.Sites.Seed(siteUno, medA, 20)
	runner.Sites.Seed(siteUno, medB, 8)

	p := createPending(t, uc, []dto.PrescriptionLineRequest{
		{MedicationID: medA, Quantity: 3},
		{MedicationID: medB, Quantity: 2},
	})
	_, err := uc.MarkPreparing(context.Background(), p.ID)
	require.NoError(t, err)

	res, err := uc.MarkPrepared(context.Background(), p.ID, quimicoID)
	require.NoError(t, err)
	assert.Equal(t, entity.PrescriptionStatusPrepared, res.Status)
	assert.Equal(t, quimicoID, res.PreparedBy)
	require.NotNil(t, res.PreparedAt)
	for _, l := range res.Lines {
		assert.NotNil(t, l.MovementID, "línea %s sin rastro de movimiento", l.MedicationID)
	}

	ssA, _ := runner.Sites.Get(siteUno, medA)
	ssB, _ := runner.Sites.Get(siteUno, medB)
	assert.Equal(t, int64(17), ssA.Quantity)
	assert.Equal(t, int64(6), ssB.Quantity)

	gs, _ := runner.Global.Get(medA)
	assert.Equal(t, int64(100), gs.Quantity, "dispensar no toca el pool global")

	require.Len(t, runner.Movements.Entries, 2)
	for _, e := range runner.Movements.Entries {
		assert.Equal(t, entity.MovementTypeOUT, e.Type)
		assert.Equal(t, entity.ReferencePrescription, e.ReferenceType)
		assert.Equal(t, p.ID, e.ReferenceID)
		require.NotNil(t, e.SiteID)
		assert.Equal(t, siteUno, *e.SiteID)
	}
}

func TestMarkPrepared_StockInsuficienteQuedaEnPreparacion(t *testing.T) {
	uc, runner, sites := newFlow()
	sites.Seed(siteUno, "SEDE-NORTE", "Sede Norte")
	runner.Sites.Seed(siteUno, medA, 20)
	runner.Sites.Seed(siteUno, medB, 5)

	p := createPending(t, uc, []dto.PrescriptionLineRequest{
		{MedicationID: medA, Quantity: 3},
		{MedicationID: medB, Quantity: 8},
	})
	_, err := uc.MarkPreparing(context.Background(), p.ID)
	require.NoError(t, err)

	_, err = uc.MarkPrepared(context.Background(), p.ID, quimicoID)
	require.Error(t, err)
	var insErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insErr)
	assert.Equal(t, medB, insErr.MedicationID)
	assert.Equal(t, int64(8), insErr.Requested)
	assert.Equal(t, int64(5), insErr.Available)

	// rollback total: ni débito parcial, ni cambio de estado
	ssA, _ := runner.Sites.Get(siteUno, medA)
	assert.Equal(t, int64(20), ssA.Quantity)
	assert.Empty(t, runner.Movements.Entries)
	cur, err := uc.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PrescriptionStatusPreparing, cur.Status)
	assert.Nil(t, cur.Lines[0].MovementID)
}

func TestMarkPrepared_EsTerminal(t *testing.T) {
	uc, runner, sites := newFlow()
	sites.Seed(siteUno, "SEDE-NORTE", "Sede Norte")
	runner.Sites.Seed(siteUno, medA, 20)

	p := createPending(t, uc, []dto.PrescriptionLineRequest{{MedicationID: medA, Quantity: 3}})
	_, err := uc.MarkPreparing(context.Background(), p.ID)
	require.NoError(t, err)
	_, err = uc.MarkPrepared(context.Background(), p.ID, quimicoID)
	require.NoError(t, err)

	_, err = uc.MarkPrepared(context.Background(), p.ID, quimicoID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = uc.Cancel(context.Background(), p.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "una fórmula dispensada no se cancela")

	ss, _ := runner.Sites.Get(siteUno, medA)
	assert.Equal(t, int64(17), ss.Quantity, "el reintento no debe dispensar de nuevo")
}

// ──────────────────────────────────────────────────────────────────────────────
// List
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltraPorSedeYEstado(t *testing.T) {
	uc, runner, sites := newFlow()
	otraSede := "00000000-0000-0000-0000-000000000102"
	sites.Seed(siteUno, "SEDE-NORTE", "Sede Norte")
	sites.Seed(otraSede, "SEDE-SUR", "Sede Sur")
	runner.Sites.Seed(siteUno, medA, 20)

	p1 := createPending(t, uc, []dto.PrescriptionLineRequest{{MedicationID: medA, Quantity: 1}})
	_, err := uc.Create(context.Background(), actorID, dto.CreatePrescriptionRequest{
		SiteID:          otraSede,
		PatientDocument: "CC-987654321",
		PatientName:     "Juan Pérez",
		Lines:           []dto.PrescriptionLineRequest{{MedicationID: medA, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = uc.MarkPreparing(context.Background(), p1.ID)
	require.NoError(t, err)

	preparing, err := uc.List(context.Background(), siteUno, entity.PrescriptionStatusPreparing, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, preparing.Items, 1)
	assert.Equal(t, p1.ID, preparing.Items[0].ID)

	all, err := uc.List(context.Background(), "", "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
}
