package stock

import (
	"context"

	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de stock:
// o se aplican todos los pasos de una transferencia o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		globalRepo repository.MedicationStockRepository,
		siteRepo repository.SiteStockRepository,
	) error) error
}
