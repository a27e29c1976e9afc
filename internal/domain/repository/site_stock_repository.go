package repository

import "github.com/jhoicas/FarmaStock-api/internal/domain/entity"

// SiteStockRepository define el puerto para el stock por (sede, medicamento).
// La ausencia de fila es un estado válido: Get/GetForUpdate devuelven nil sin error.
type SiteStockRepository interface {
	Get(siteID, medicationID string) (*entity.SiteStock, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); nil si no existe.
	GetForUpdate(siteID, medicationID string) (*entity.SiteStock, error)
	Upsert(stock *entity.SiteStock) error
	ListBySite(siteID string) ([]*entity.SiteStock, error)
}
