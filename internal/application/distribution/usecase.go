// Package distribution implementa el flujo de distribución de medicamentos
// del pool global hacia las sedes. El adaptador maneja el registro y su
// máquina de estados; el débito/crédito real lo ejecuta el motor de stock
// dentro de la misma transacción.
package distribution

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/FarmaStock-api/internal/application/dto"
	"github.com/jhoicas/FarmaStock-api/internal/application/stock"
	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con los repositorios que el
// flujo de distribución necesita.
type TxRunner interface {
	RunDistribution(ctx context.Context, fn func(
		distRepo repository.DistributionRepository,
		movRepo repository.MovementRepository,
		globalRepo repository.MedicationStockRepository,
		siteRepo repository.SiteStockRepository,
	) error) error
}

// UseCase casos de uso del flujo de distribución.
type UseCase struct {
	txRunner TxRunner
	distRepo repository.DistributionRepository
	siteRepo repository.SiteRepository
	transfer *stock.TransferUseCase
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	distRepo repository.DistributionRepository,
	siteRepo repository.SiteRepository,
	transfer *stock.TransferUseCase,
) *UseCase {
	return &UseCase{txRunner: txRunner, distRepo: distRepo, siteRepo: siteRepo, transfer: transfer}
}

// Create registra una distribución en estado PENDING. El stock no se toca:
// el débito/crédito ocurre al distribuir.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateDistributionRequest) (*dto.DistributionResponse, error) {
	if userID == "" || in.SiteID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	site, err := uc.siteRepo.GetByID(in.SiteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, domain.ErrNotFound
	}
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now()
	d := &entity.Distribution{
		ID:        uuid.New().String(),
		SiteID:    in.SiteID,
		Status:    entity.DistributionStatusPending,
		Notes:     in.Notes,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, l := range in.Lines {
		d.Lines = append(d.Lines, entity.DistributionLine{
			MedicationID: l.MedicationID,
			Quantity:     l.Quantity,
		})
	}
	if err := uc.distRepo.Create(d); err != nil {
		return nil, err
	}
	return toDistributionResponse(d), nil
}

// DistributeResult resultado de distribuir: la distribución cuando todas las
// líneas se aplicaron, o el detalle de fallos por línea cuando ninguna lo hizo.
type DistributeResult struct {
	Distribution *dto.DistributionResponse `json:"distribution,omitempty"`
	Transfer     *stock.TransferResult     `json:"transfer"`
}

// Distribute ejecuta la transferencia global → sede de todas las líneas como
// unidad atómica y pasa la distribución a DISTRIBUTED. Si alguna línea no tiene
// stock global suficiente nada se aplica, la distribución sigue PENDING y el
// resultado trae el detalle por línea.
func (uc *UseCase) Distribute(ctx context.Context, id, userID string) (*DistributeResult, error) {
	if id == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *DistributeResult
	err := uc.txRunner.RunDistribution(ctx, func(
		distRepo repository.DistributionRepository,
		movRepo repository.MovementRepository,
		globalRepo repository.MedicationStockRepository,
		siteRepo repository.SiteStockRepository,
	) error {
		d, err := distRepo.GetByID(id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		if d.Status != entity.DistributionStatusPending {
			return domain.ErrConflict
		}

		input := stock.TransferInput{
			SiteID:        d.SiteID,
			UserID:        userID,
			ReferenceType: entity.ReferenceDistribution,
			ReferenceID:   d.ID,
			Notes:         d.Notes,
		}
		for _, l := range d.Lines {
			input.Lines = append(input.Lines, stock.TransferLine{
				MedicationID: l.MedicationID,
				Quantity:     l.Quantity,
			})
		}
		tr, err := uc.transfer.PerformTransferInTx(movRepo, globalRepo, siteRepo, input)
		if err != nil {
			if tr != nil && !tr.Success {
				result = &DistributeResult{Transfer: tr}
			}
			return err
		}

		for _, m := range tr.Movements {
			if err := distRepo.SetLineMovements(d.ID, m.MedicationID, m.OutMovementID, m.InMovementID); err != nil {
				return err
			}
		}
		if err := distRepo.UpdateStatus(d.ID, entity.DistributionStatusDistributed); err != nil {
			return err
		}

		d, err = distRepo.GetByID(d.ID)
		if err != nil {
			return err
		}
		result = &DistributeResult{Distribution: toDistributionResponse(d), Transfer: tr}
		return nil
	})
	if err != nil {
		// Los fallos por línea ya vienen en el resultado; el error solo forzó
		// el rollback.
		if result != nil && result.Transfer != nil && !result.Transfer.Success {
			return result, nil
		}
		return nil, err
	}
	return result, nil
}

// Cancel elimina una distribución PENDING. Como aún no generó movimientos no
// queda nada que revertir; los estados terminales son inmutables.
func (uc *UseCase) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	d, err := uc.distRepo.GetByID(id)
	if err != nil {
		return err
	}
	if d == nil {
		return domain.ErrNotFound
	}
	if !d.CanCancel() {
		return domain.ErrConflict
	}
	return uc.distRepo.Delete(d.ID)
}

// GetByID obtiene una distribución con sus líneas.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.DistributionResponse, error) {
	d, err := uc.distRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	return toDistributionResponse(d), nil
}

// List lista distribuciones, opcionalmente por sede, con paginación.
func (uc *UseCase) List(ctx context.Context, siteID string, page dto.PageRequest) (*dto.DistributionListResponse, error) {
	page.DefaultPage()
	list, err := uc.distRepo.List(siteID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DistributionResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *toDistributionResponse(d))
	}
	return &dto.DistributionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toDistributionResponse(d *entity.Distribution) *dto.DistributionResponse {
	if d == nil {
		return nil
	}
	resp := &dto.DistributionResponse{
		ID:        d.ID,
		SiteID:    d.SiteID,
		Status:    d.Status,
		Notes:     d.Notes,
		CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, l := range d.Lines {
		resp.Lines = append(resp.Lines, dto.DistributionLineResponse{
			MedicationID:  l.MedicationID,
			Quantity:      l.Quantity,
			OutMovementID: l.OutMovementID,
			InMovementID:  l.InMovementID,
		})
	}
	return resp
}
