package stocktest

import (
	"context"

	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

// FakeTxRunner emula el TxRunner de postgres sobre los fakes en memoria:
// toma una instantánea antes de ejecutar fn y la restaura si fn devuelve
// error, imitando el rollback de una transacción real.
type FakeTxRunner struct {
	Movements     *FakeMovementRepo
	Global        *FakeMedicationStockRepo
	Sites         *FakeSiteStockRepo
	Distributions *FakeDistributionRepo
	Orders        *FakeOrderRepo
	Prescriptions *FakePrescriptionRepo
}

// NewFakeTxRunner crea el runner con fakes vacíos para todos los puertos.
func NewFakeTxRunner() *FakeTxRunner {
	return &FakeTxRunner{
		Movements:     NewFakeMovementRepo(),
		Global:        NewFakeMedicationStockRepo(),
		Sites:         NewFakeSiteStockRepo(),
		Distributions: NewFakeDistributionRepo(),
		Orders:        NewFakeOrderRepo(),
		Prescriptions: NewFakePrescriptionRepo(),
	}
}

type snapshot struct {
	movements     []*entity.MovementEntry
	global        map[string]*entity.MedicationStock
	sites         map[string]*entity.SiteStock
	distributions map[string]*entity.Distribution
	orders        map[string]*entity.Order
	prescriptions map[string]*entity.Prescription
}

func (r *FakeTxRunner) take() snapshot {
	s := snapshot{
		movements:     make([]*entity.MovementEntry, len(r.Movements.Entries)),
		global:        map[string]*entity.MedicationStock{},
		sites:         map[string]*entity.SiteStock{},
		distributions: map[string]*entity.Distribution{},
		orders:        map[string]*entity.Order{},
		prescriptions: map[string]*entity.Prescription{},
	}
	for i, e := range r.Movements.Entries {
		cp := *e
		s.movements[i] = &cp
	}
	for k, v := range r.Global.Stocks {
		cp := *v
		s.global[k] = &cp
	}
	for k, v := range r.Sites.Stocks {
		cp := *v
		s.sites[k] = &cp
	}
	for k, v := range r.Distributions.Distributions {
		s.distributions[k] = copyDistribution(v)
	}
	for k, v := range r.Orders.Orders {
		s.orders[k] = copyOrder(v)
	}
	for k, v := range r.Prescriptions.Prescriptions {
		s.prescriptions[k] = copyPrescription(v)
	}
	return s
}

func (r *FakeTxRunner) restore(s snapshot) {
	r.Movements.Entries = s.movements
	r.Global.Stocks = s.global
	r.Sites.Stocks = s.sites
	r.Distributions.Distributions = s.distributions
	r.Orders.Orders = s.orders
	r.Prescriptions.Prescriptions = s.prescriptions
}

func (r *FakeTxRunner) inTx(fn func() error) error {
	snap := r.take()
	if err := fn(); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

// Run implementa stock.TxRunner.
func (r *FakeTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	globalRepo repository.MedicationStockRepository,
	siteRepo repository.SiteStockRepository,
) error) error {
	return r.inTx(func() error { return fn(r.Movements, r.Global, r.Sites) })
}

// RunDistribution implementa distribution.TxRunner.
func (r *FakeTxRunner) RunDistribution(ctx context.Context, fn func(
	distRepo repository.DistributionRepository,
	movRepo repository.MovementRepository,
	globalRepo repository.MedicationStockRepository,
	siteRepo repository.SiteStockRepository,
) error) error {
	return r.inTx(func() error { return fn(r.Distributions, r.Movements, r.Global, r.Sites) })
}

// RunOrder implementa orders.TxRunner.
func (r *FakeTxRunner) RunOrder(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	movRepo repository.MovementRepository,
	globalRepo repository.MedicationStockRepository,
) error) error {
	return r.inTx(func() error { return fn(r.Orders, r.Movements, r.Global) })
}

// RunPrescription implementa prescription.TxRunner.
func (r *FakeTxRunner) RunPrescription(ctx context.Context, fn func(
	rxRepo repository.PrescriptionRepository,
	movRepo repository.MovementRepository,
	siteRepo repository.SiteStockRepository,
) error) error {
	return r.inTx(func() error { return fn(r.Prescriptions, r.Movements, r.Sites) })
}
