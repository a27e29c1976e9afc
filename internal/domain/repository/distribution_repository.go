package repository

import "github.com/jhoicas/FarmaStock-api/internal/domain/entity"

// DistributionRepository define el puerto de persistencia para distribuciones.
type DistributionRepository interface {
	// Create inserta la distribución con sus líneas.
	Create(distribution *entity.Distribution) error
	// GetByID devuelve la distribución con sus líneas; nil si no existe.
	GetByID(id string) (*entity.Distribution, error)
	UpdateStatus(id, status string) error
	// SetLineMovements persiste los IDs de movimiento generados para una línea.
	SetLineMovements(distributionID, medicationID, outMovementID, inMovementID string) error
	Delete(id string) error
	List(siteID string, limit, offset int) ([]*entity.Distribution, error)
}
