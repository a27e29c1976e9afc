package stock

import (
	"context"
	"time"

	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

// QueryUseCase expone las lecturas de stock y del libro de movimientos.
// No abre transacciones: lee directamente del pool.
type QueryUseCase struct {
	globalRepo repository.MedicationStockRepository
	siteRepo   repository.SiteStockRepository
	movRepo    repository.MovementRepository
}

// NewQueryUseCase crea el caso de uso de consultas de stock.
func NewQueryUseCase(
	globalRepo repository.MedicationStockRepository,
	siteRepo repository.SiteStockRepository,
	movRepo repository.MovementRepository,
) *QueryUseCase {
	return &QueryUseCase{globalRepo: globalRepo, siteRepo: siteRepo, movRepo: movRepo}
}

// GetGlobal devuelve el stock global de un medicamento.
func (uc *QueryUseCase) GetGlobal(ctx context.Context, medicationID string) (*entity.MedicationStock, error) {
	if medicationID == "" {
		return nil, domain.ErrInvalidInput
	}
	gs, err := uc.globalRepo.Get(medicationID)
	if err != nil {
		return nil, err
	}
	if gs == nil {
		return nil, domain.ErrNotFound
	}
	return gs, nil
}

// GetSiteStock devuelve el stock de un medicamento en una sede. La ausencia de
// fila se reporta como cantidad cero, no como error.
func (uc *QueryUseCase) GetSiteStock(ctx context.Context, siteID, medicationID string) (*entity.SiteStock, error) {
	if siteID == "" || medicationID == "" {
		return nil, domain.ErrInvalidInput
	}
	ss, err := uc.siteRepo.Get(siteID, medicationID)
	if err != nil {
		return nil, err
	}
	if ss == nil {
		return &entity.SiteStock{SiteID: siteID, MedicationID: medicationID}, nil
	}
	return ss, nil
}

// ListSiteStocks devuelve todas las filas de stock de una sede.
func (uc *QueryUseCase) ListSiteStocks(ctx context.Context, siteID string) ([]*entity.SiteStock, error) {
	if siteID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.siteRepo.ListBySite(siteID)
}

// ListLowStock devuelve los medicamentos cuyo stock global está en o por
// debajo de su mínimo.
func (uc *QueryUseCase) ListLowStock(ctx context.Context, limit, offset int) ([]*entity.MedicationStock, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return uc.globalRepo.ListBelowMin(limit, offset)
}

// MovementsByReference devuelve los movimientos de una referencia en orden de libro.
func (uc *QueryUseCase) MovementsByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.MovementEntry, error) {
	if referenceID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidReferenceType(referenceType) {
		return nil, domain.ErrInvalidMovement
	}
	return uc.movRepo.FindByReference(referenceType, referenceID)
}

// MovementHistory devuelve la historia de movimientos de un medicamento,
// opcionalmente acotada por fechas, en páginas de hasta limit filas.
func (uc *QueryUseCase) MovementHistory(ctx context.Context, medicationID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	if medicationID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return uc.movRepo.ListByMedication(medicationID, from, to, limit, offset)
}

// SummarizeMovements agrega el libro por tipo de movimiento según el filtro.
func (uc *QueryUseCase) SummarizeMovements(ctx context.Context, filter repository.MovementFilter) ([]repository.MovementSummary, error) {
	return uc.movRepo.Summarize(filter)
}
