package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/FarmaStock-api/internal/application/dto"
	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

// CatalogTxRunner ejecuta fn dentro de una transacción con los repositorios del
// catálogo: el registro de un medicamento crea también su fila de stock global
// y ambas inserciones deben confirmar juntas.
type CatalogTxRunner interface {
	RunCatalog(ctx context.Context, fn func(
		medRepo repository.MedicationRepository,
		globalRepo repository.MedicationStockRepository,
	) error) error
}

// MedicationUseCase casos de uso del catálogo de medicamentos.
type MedicationUseCase struct {
	txRunner   CatalogTxRunner
	medRepo    repository.MedicationRepository
	globalRepo repository.MedicationStockRepository
}

// NewMedicationUseCase construye el caso de uso.
func NewMedicationUseCase(
	txRunner CatalogTxRunner,
	medRepo repository.MedicationRepository,
	globalRepo repository.MedicationStockRepository,
) *MedicationUseCase {
	return &MedicationUseCase{txRunner: txRunner, medRepo: medRepo, globalRepo: globalRepo}
}

// Create registra un medicamento y su fila de stock global en una transacción.
// El CUM es único en el catálogo.
func (uc *MedicationUseCase) Create(ctx context.Context, in dto.CreateMedicationRequest) (*dto.MedicationResponse, error) {
	if in.CUM == "" || in.Name == "" || in.MinStock < 0 || in.InitialQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	med := &entity.Medication{
		ID:           uuid.New().String(),
		CUM:          in.CUM,
		Name:         in.Name,
		Presentation: in.Presentation,
		Unit:         in.Unit,
		Price:        in.Price,
		SupplierID:   in.SupplierID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	gs := &entity.MedicationStock{
		MedicationID: med.ID,
		Quantity:     in.InitialQuantity,
		MinStock:     in.MinStock,
		Status:       entity.StockStatusActive,
		UpdatedAt:    now,
	}

	err := uc.txRunner.RunCatalog(ctx, func(
		medRepo repository.MedicationRepository,
		globalRepo repository.MedicationStockRepository,
	) error {
		existing, err := medRepo.GetByCUM(in.CUM)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		if err := medRepo.Create(med); err != nil {
			return err
		}
		return globalRepo.Create(gs)
	})
	if err != nil {
		return nil, err
	}
	return toMedicationResponse(med, gs), nil
}

// GetByID obtiene un medicamento con su stock global.
func (uc *MedicationUseCase) GetByID(ctx context.Context, id string) (*dto.MedicationResponse, error) {
	med, err := uc.medRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, domain.ErrNotFound
	}
	gs, err := uc.globalRepo.Get(id)
	if err != nil {
		return nil, err
	}
	return toMedicationResponse(med, gs), nil
}

// GetByCUM obtiene un medicamento por su código CUM.
func (uc *MedicationUseCase) GetByCUM(ctx context.Context, cum string) (*dto.MedicationResponse, error) {
	med, err := uc.medRepo.GetByCUM(cum)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, domain.ErrNotFound
	}
	gs, err := uc.globalRepo.Get(med.ID)
	if err != nil {
		return nil, err
	}
	return toMedicationResponse(med, gs), nil
}

// Update actualiza los campos de catálogo y los umbrales de stock. La cantidad
// nunca se edita por aquí: eso es territorio del motor de stock.
func (uc *MedicationUseCase) Update(ctx context.Context, id string, in dto.UpdateMedicationRequest) (*dto.MedicationResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.StockStatus != nil && !entity.ValidStockStatus(*in.StockStatus) {
		return nil, domain.ErrInvalidInput
	}

	var med *entity.Medication
	var gs *entity.MedicationStock
	err := uc.txRunner.RunCatalog(ctx, func(
		medRepo repository.MedicationRepository,
		globalRepo repository.MedicationStockRepository,
	) error {
		var err error
		med, err = medRepo.GetByID(id)
		if err != nil {
			return err
		}
		if med == nil {
			return domain.ErrNotFound
		}
		if in.Name != nil {
			med.Name = *in.Name
		}
		if in.Presentation != nil {
			med.Presentation = *in.Presentation
		}
		if in.Unit != nil {
			med.Unit = *in.Unit
		}
		if in.Price != nil {
			med.Price = *in.Price
		}
		if in.SupplierID != nil {
			med.SupplierID = *in.SupplierID
		}
		med.UpdatedAt = time.Now()
		if err := medRepo.Update(med); err != nil {
			return err
		}

		if in.MinStock != nil || in.StockStatus != nil {
			gs, err = globalRepo.GetForUpdate(id)
			if err != nil {
				return err
			}
			if gs == nil {
				return domain.ErrNotFound
			}
			if in.MinStock != nil {
				gs.MinStock = *in.MinStock
			}
			if in.StockStatus != nil {
				gs.Status = *in.StockStatus
			}
			gs.UpdatedAt = med.UpdatedAt
			return globalRepo.Save(gs)
		}
		gs, err = globalRepo.Get(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toMedicationResponse(med, gs), nil
}

// List lista el catálogo con paginación, adjuntando el stock global de cada uno.
func (uc *MedicationUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.MedicationListResponse, error) {
	page.DefaultPage()
	list, err := uc.medRepo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MedicationResponse, 0, len(list))
	for _, med := range list {
		gs, err := uc.globalRepo.Get(med.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, *toMedicationResponse(med, gs))
	}
	return &dto.MedicationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toMedicationResponse(m *entity.Medication, gs *entity.MedicationStock) *dto.MedicationResponse {
	if m == nil {
		return nil
	}
	resp := &dto.MedicationResponse{
		ID:           m.ID,
		CUM:          m.CUM,
		Name:         m.Name,
		Presentation: m.Presentation,
		Unit:         m.Unit,
		Price:        m.Price,
		SupplierID:   m.SupplierID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if gs != nil {
		resp.Quantity = gs.Quantity
		resp.MinStock = gs.MinStock
		resp.StockStatus = gs.Status
	}
	return resp
}
