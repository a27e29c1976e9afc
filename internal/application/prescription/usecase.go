// Package prescription implementa el flujo de fórmulas médicas: dispensación
// de medicamentos a pacientes desde el stock de una sede. PREPARED debita la
// sede a través del motor de stock; el pool global no se toca.
package prescription

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
// flujo de fórmulas necesita.
type TxRunner interface {
	RunPrescription(ctx context.Context, fn func(
		rxRepo repository.PrescriptionRepository,
		movRepo repository.MovementRepository,
		siteRepo repository.SiteStockRepository,
	) error) error
}

// UseCase casos de uso del flujo de fórmulas médicas.
type UseCase struct {
	txRunner TxRunner
	rxRepo   repository.PrescriptionRepository
	siteRepo repository.SiteRepository
	transfer *stock.TransferUseCase
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	rxRepo repository.PrescriptionRepository,
	siteRepo repository.SiteRepository,
	transfer *stock.TransferUseCase,
) *UseCase {
	return &UseCase{txRunner: txRunner, rxRepo: rxRepo, siteRepo: siteRepo, transfer: transfer}
}

// Create registra una fórmula médica en estado PENDING.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error) {
	if userID == "" || in.SiteID == "" || in.PatientDocument == "" || len(in.Lines) == 0 {
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
	p := &entity.Prescription{
		ID:              uuid.New().String(),
		SiteID:          in.SiteID,
		PatientDocument: in.PatientDocument,
		PatientName:     in.PatientName,
		PrescriberName:  in.PrescriberName,
		Status:          entity.PrescriptionStatusPending,
		Notes:           in.Notes,
		CreatedBy:       userID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, l := range in.Lines {
		p.Lines = append(p.Lines, entity.PrescriptionLine{
			MedicationID: l.MedicationID,
			Quantity:     l.Quantity,
			Directions:   l.Directions,
		})
	}
	if err := uc.rxRepo.Create(p); err != nil {
		return nil, err
	}
	return toPrescriptionResponse(p), nil
}

// MarkPreparing pasa la fórmula de PENDING a PREPARING.
func (uc *UseCase) MarkPreparing(ctx context.Context, id string) (*dto.PrescriptionResponse, error) {
	return uc.transition(ctx, id, entity.PrescriptionStatusPreparing, nil)
}

// Cancel cancela la fórmula antes de PREPARED. No toca stock.
func (uc *UseCase) Cancel(ctx context.Context, id string) (*dto.PrescriptionResponse, error) {
	return uc.transition(ctx, id, entity.PrescriptionStatusCancelled, nil)
}

// MarkPrepared dispensa la fórmula: re-verifica la suficiencia de cada línea
// en la sede, debita el stock (movimientos OUT con referencia a la fórmula) y
// pasa a PREPARED, todo en una transacción. Si alguna línea no alcanza, nada
// se dispensa y la fórmula queda en PREPARING.
func (uc *UseCase) MarkPrepared(ctx context.Context, id, userID string) (*dto.PrescriptionResponse, error) {
	if id == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	var resp *dto.PrescriptionResponse
	err := uc.txRunner.RunPrescription(ctx, func(
		rxRepo repository.PrescriptionRepository,
		movRepo repository.MovementRepository,
		siteRepo repository.SiteStockRepository,
	) error {
		p, err := rxRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if !p.CanTransitionTo(entity.PrescriptionStatusPrepared) {
			return domain.ErrConflict
		}

		lines := make([]stock.DispenseLine, 0, len(p.Lines))
		for _, l := range p.Lines {
			lines = append(lines, stock.DispenseLine{MedicationID: l.MedicationID, Quantity: l.Quantity})
		}
		movementIDs, err := uc.transfer.DispenseInTx(movRepo, siteRepo, p.SiteID, lines,
			entity.ReferencePrescription, p.ID, userID, p.Notes)
		if err != nil {
			return err
		}
		for i, l := range p.Lines {
			if err := rxRepo.SetLineMovement(p.ID, l.MedicationID, movementIDs[i]); err != nil {
				return err
			}
		}

		now := time.Now()
		p.Status = entity.PrescriptionStatusPrepared
		p.PreparedBy = userID
		p.PreparedAt = &now
		p.UpdatedAt = now
		if err := rxRepo.Update(p); err != nil {
			return err
		}
		p, err = rxRepo.GetByID(p.ID)
		if err != nil {
			return err
		}
		resp = toPrescriptionResponse(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetByID obtiene una fórmula con sus líneas.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.PrescriptionResponse, error) {
	p, err := uc.rxRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toPrescriptionResponse(p), nil
}

// List lista fórmulas por sede y/o estado con paginación.
func (uc *UseCase) List(ctx context.Context, siteID, status string, page dto.PageRequest) (*dto.PrescriptionListResponse, error) {
	page.DefaultPage()
	list, err := uc.rxRepo.List(siteID, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PrescriptionResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPrescriptionResponse(p))
	}
	return &dto.PrescriptionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func (uc *UseCase) transition(ctx context.Context, id, next string, mutate func(*entity.Prescription)) (*dto.PrescriptionResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	var resp *dto.PrescriptionResponse
	err := uc.txRunner.RunPrescription(ctx, func(
		rxRepo repository.PrescriptionRepository,
		movRepo repository.MovementRepository,
		siteRepo repository.SiteStockRepository,
	) error {
		p, err := rxRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if !p.CanTransitionTo(next) {
			return domain.ErrConflict
		}
		p.Status = next
		if mutate != nil {
			mutate(p)
		}
		p.UpdatedAt = time.Now()
		if err := rxRepo.Update(p); err != nil {
			return err
		}
		resp = toPrescriptionResponse(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func toPrescriptionResponse(p *entity.Prescription) *dto.PrescriptionResponse {
	if p == nil {
		return nil
	}
	resp := &dto.PrescriptionResponse{
		ID:              p.ID,
		SiteID:          p.SiteID,
		PatientDocument: p.PatientDocument,
		PatientName:     p.PatientName,
		PrescriberName:  p.PrescriberName,
		Status:          p.Status,
		Notes:           p.Notes,
		CreatedBy:       p.CreatedBy,
		PreparedBy:      p.PreparedBy,
		PreparedAt:      p.PreparedAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	for _, l := range p.Lines {
		resp.Lines = append(resp.Lines, dto.PrescriptionLineResponse{
			MedicationID: l.MedicationID,
			Quantity:     l.Quantity,
			Directions:   l.Directions,
			MovementID:   l.MovementID,
		})
	}
	return resp
}
