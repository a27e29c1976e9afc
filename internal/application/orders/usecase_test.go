package orders_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/FarmaStock-api/internal/application/dto"
	"github.com/jhoicas/FarmaStock-api/internal/application/orders"
	"github.com/jhoicas/FarmaStock-api/internal/application/stock"
	"github.com/jhoicas/FarmaStock-api/internal/application/stock/stocktest"
	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
)

const (
	medA       = "00000000-0000-0000-0000-00000000000a"
	medB       = "00000000-0000-0000-0000-00000000000b"
	supplierID = "00000000-0000-0000-0000-000000000201"
	actorID    = "00000000-0000-0000-0000-000000000001"
	quimicoID  = "00000000-0000-0000-0000-000000000002"
)

// newFlow arma el flujo de órdenes completo sobre los dobles en memoria.
func newFlow() (*orders.UseCase, *stocktest.FakeTxRunner, *stocktest.FakeSupplierRepo) {
	runner := stocktest.NewFakeTxRunner()
	suppliers := stocktest.NewFakeSupplierRepo()
	transfer := stock.NewTransferUseCase(runner, runner.Global, runner.Sites)
	uc := orders.NewUseCase(runner, runner.Orders, suppliers, transfer)
	return uc, runner, suppliers
}

func createPending(t *testing.T, uc *orders.UseCase, lines []dto.OrderLineRequest) *dto.OrderResponse {
	t.Helper()
	o, err := uc.Create(context.Background(), actorID, dto.CreateOrderRequest{
		SupplierID: supplierID,
		Lines:      lines,
		Notes:      "compra mensual",
	})
	require.NoError(t, err)
	require.NotNil(t, o)
	return o
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_QuedaPendienteConTotal(t *testing.T) {
	uc, _, suppliers := newFlow()
	suppliers.Seed(supplierID, "900123456-7", "Laboratorios Andinos")

	o := createPending(t, uc, []dto.OrderLineRequest{
		{MedicationID: medA, Quantity: 100, UnitCost: decimal.NewFromFloat(2.50)},
		{MedicationID: medB, Quantity: 10, UnitCost: decimal.NewFromInt(30)},
	})

	assert.Equal(t, entity.OrderStatusPending, o.Status)
	assert.Equal(t, supplierID, o.SupplierID)
	require.Len(t, o.Lines, 2)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(550)), "total = 100*2.50 + 10*30, fue %s", o.Total)
}

func TestCreate_ProveedorInexistente(t *testing.T) {
	uc, _, _ := newFlow()

	_, err := uc.Create(context.Background(), actorID, dto.CreateOrderRequest{
		SupplierID: supplierID,
		Lines:      []dto.OrderLineRequest{{MedicationID: medA, Quantity: 10}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_EntradaInvalida(t *testing.T) {
	uc, _, suppliers := newFlow()
	suppliers.Seed(supplierID, "900123456-7", "Laboratorios Andinos")

	_, err := uc.Create(context.Background(), actorID, dto.CreateOrderRequest{SupplierID: supplierID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, err = uc.Create(context.Background(), actorID, dto.CreateOrderRequest{
		SupplierID: supplierID,
		Lines:      []dto.OrderLineRequest{{MedicationID: medA, Quantity: 10, UnitCost: decimal.NewFromInt(-1)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "costo negativo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Máquina de estados sin efectos de stock
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_RegistraQuienAprueba(t *testing.T) {
	uc, runner, suppliers := newFlow()
	suppliers.Seed(supplierID, "900123456-7", "Laboratorios Andinos")

	o := createPending(t, uc, []dto.OrderLineRequest{{MedicationID: medA, Quantity: 10}})

	o, err := uc.Approve(context.Background(), o.ID, quimicoID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusApproved, o.Status)
	assert.Equal(t, quimicoID, o.ApprovedBy)
	assert.Empty(t, runner.Movements.Entries, "aprobar no toca stock")
}

func TestTransiciones_IlegalesDevuelvenConflicto(t *testing.T) {
	uc, _, suppliers := newFlow()
	suppliers.Seed(supplierID, "900123456-7", "Laboratorios Andinos")

	o := createPending(t, uc, []dto.OrderLineRequest{{MedicationID: medA, Quantity: 10}})

	// PENDING no puede saltar a IN_TRANSIT ni a DELIVERED
	_, err := uc.MarkInTransit(context.Background(), o.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = uc.MarkDelivered(context.Background(), o.ID, actorID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.Approve(context.Background(), o.ID, quimicoID)
	require.NoError(t, err)
	o2, err := uc.MarkInTransit(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusInTransit, o2.Status)

	// IN_TRANSIT no se vuelve a aprobar
	_, err = uc.Approve(context.Background(), o.ID, quimicoID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCancel_DesdeNoTerminal(t *testing.T) {
	uc, _, suppliers := newFlow()
	suppliers.Seed(supplierID, "900123456-7", "Laboratorios Andinos")

	o := createPending(t, uc, []dto.OrderLineRequest{{MedicationID: medA, Quantity: 10}})
	_, err := uc.Approve(context.Background(), o.ID, quimicoID)
	require.NoError(t, err)

	o2, err := uc.Cancel(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, o2.Status)

	// CANCELLED es terminal
	_, err = uc.Approve(context.Background(), o.ID, quimicoID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = uc.Cancel(context.Background(), o.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// MarkDelivered: entrada al pool global
// ──────────────────────────────────────────────────────────────────────────────

func deliverReady(t *testing.T, uc *orders.UseCase, lines []dto.OrderLineRequest) *dto.OrderResponse {
	t.Helper()
	o := createPending(t, uc, lines)
	_, err := uc.Approve(context.Background(), o.ID, quimicoID)
	require.NoError(t, err)
	_, err = uc.MarkInTransit(context.Background(), o.ID)
	require.NoError(t, err)
	return o
}

func TestMarkDelivered_AcreditaPoolGlobal(t *testing.T) {
	uc, runner, suppliers := newFlow()
	suppliers.Seed(supplierID, "900123456-7", "Laboratorios Andinos")
	runner.Global.Seed(medA, 100, 10)
	runner.Global.Seed(medB, 0, 5)

	o := deliverReady(t, uc, []dto.OrderLineRequest{
		{MedicationID: medA, Quantity: 50, UnitCost: decimal.NewFromInt(2)},
		{MedicationID: medB, Quantity: 20, UnitCost: decimal.NewFromInt(3)},
	})

	res, err := uc.MarkDelivered(context.Background(), o.ID, actorID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, res.Status)
	require.NotNil(t, res.DeliveredAt)
	for _, l := range res.Lines {
		assert.NotNil(t, l.MovementID, "línea %s sin rastro de movimiento", l.MedicationID)
	}

	gsA, _ := runner.Global.Get(medA)
	gsB, _ := runner.Global.Get(medB)
	assert.Equal(t, int64(150), gsA.Quantity)
	assert.Equal(t, int64(20), gsB.Quantity)

	require.Len(t, runner.Movements.Entries, 2)
	for _, e := range runner.Movements.Entries {
		assert.Equal(t, entity.MovementTypeIN, e.Type)
		assert.Equal(t, entity.ReferenceOrder, e.ReferenceType)
		assert.Equal(t, o.ID, e.ReferenceID)
		assert.Nil(t, e.SiteID, "la entrega solo acredita el pool global")
	}
}

func TestMarkDelivered_MedicamentoSinFilaGlobal(t *testing.T) {
	uc, runner, suppliers := newFlow()
	suppliers.Seed(supplierID, "900123456-7", "Laboratorios Andinos")
	runner.Global.Seed(medA, 100, 10)

	o := deliverReady(t, uc, []dto.OrderLineRequest{
		{MedicationID: medA, Quantity: 50},
		{MedicationID: medB, Quantity: 20},
	})

	_, err := uc.MarkDelivered(context.Background(), o.ID, actorID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// rollback total: ni crédito parcial, ni cambio de estado
	gs, _ := runner.Global.Get(medA)
	assert.Equal(t, int64(100), gs.Quantity)
	assert.Empty(t, runner.Movements.Entries)
	cur, err := uc.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusInTransit, cur.Status)
}

func TestMarkDelivered_EsTerminal(t *testing.T) {
	uc, runner, suppliers := newFlow()
	suppliers.Seed(supplierID, "900123456-7", "Laboratorios Andinos")
	runner.Global.Seed(medA, 0, 10)

	o := deliverReady(t, uc, []dto.OrderLineRequest{{MedicationID: medA, Quantity: 50}})
	_, err := uc.MarkDelivered(context.Background(), o.ID, actorID)
	require.NoError(t, err)

	_, err = uc.MarkDelivered(context.Background(), o.ID, actorID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = uc.Cancel(context.Background(), o.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	gs, _ := runner.Global.Get(medA)
	assert.Equal(t, int64(50), gs.Quantity, "la reentrega no debe acreditar de nuevo")
}

// ──────────────────────────────────────────────────────────────────────────────
// List
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltraPorEstado(t *testing.T) {
	uc, _, suppliers := newFlow()
	suppliers.Seed(supplierID, "900123456-7", "Laboratorios Andinos")

	o1 := createPending(t, uc, []dto.OrderLineRequest{{MedicationID: medA, Quantity: 10}})
	createPending(t, uc, []dto.OrderLineRequest{{MedicationID: medB, Quantity: 5}})
	_, err := uc.Approve(context.Background(), o1.ID, quimicoID)
	require.NoError(t, err)

	pending, err := uc.List(context.Background(), entity.OrderStatusPending, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, entity.OrderStatusPending, pending.Items[0].Status)

	all, err := uc.List(context.Background(), "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
}
