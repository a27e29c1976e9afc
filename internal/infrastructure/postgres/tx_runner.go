package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/FarmaStock-api/internal/application/distribution"
	"github.com/jhoicas/FarmaStock-api/internal/application/orders"
	"github.com/jhoicas/FarmaStock-api/internal/application/prescription"
	"github.com/jhoicas/FarmaStock-api/internal/application/stock"
	"github.com/jhoicas/FarmaStock-api/internal/application/usecase"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

var _ stock.TxRunner = (*TxRunner)(nil)
var _ distribution.TxRunner = (*TxRunner)(nil)
var _ orders.TxRunner = (*TxRunner)(nil)
var _ prescription.TxRunner = (*TxRunner)(nil)
var _ usecase.CatalogTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Los errores
// de la transacción se traducen a los sentinelas del dominio (duplicados,
// fallos de serialización).
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) inTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return translateError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return translateError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// Run inicia una transacción con los repos del motor de stock.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	globalRepo repository.MedicationStockRepository,
	siteRepo repository.SiteStockRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewMovementRepository(q), NewMedicationStockRepository(q), NewSiteStockRepository(q))
	})
}

// RunDistribution inicia una transacción con los repos del flujo de distribución.
func (r *TxRunner) RunDistribution(ctx context.Context, fn func(
	distRepo repository.DistributionRepository,
	movRepo repository.MovementRepository,
	globalRepo repository.MedicationStockRepository,
	siteRepo repository.SiteStockRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewDistributionRepository(q), NewMovementRepository(q),
			NewMedicationStockRepository(q), NewSiteStockRepository(q))
	})
}

// RunOrder inicia una transacción con los repos del flujo de órdenes.
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	movRepo repository.MovementRepository,
	globalRepo repository.MedicationStockRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewOrderRepository(q), NewMovementRepository(q), NewMedicationStockRepository(q))
	})
}

// RunPrescription inicia una transacción con los repos del flujo de fórmulas.
func (r *TxRunner) RunPrescription(ctx context.Context, fn func(
	rxRepo repository.PrescriptionRepository,
	movRepo repository.MovementRepository,
	siteRepo repository.SiteStockRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewPrescriptionRepository(q), NewMovementRepository(q), NewSiteStockRepository(q))
	})
}

// RunCatalog inicia una transacción con los repos del catálogo (el registro de
// un medicamento crea también su fila de stock global).
func (r *TxRunner) RunCatalog(ctx context.Context, fn func(
	medRepo repository.MedicationRepository,
	globalRepo repository.MedicationStockRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewMedicationRepository(q), NewMedicationStockRepository(q))
	})
}
