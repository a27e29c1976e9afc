// Package orders implementa el flujo de órdenes de compra a proveedor. La
// entrega (DELIVERED) acredita el pool global a través del motor de stock;
// ninguna sede interviene en este flujo.
package orders

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
// flujo de órdenes necesita.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		movRepo repository.MovementRepository,
		globalRepo repository.MedicationStockRepository,
	) error) error
}

// UseCase casos de uso del flujo de órdenes de compra.
type UseCase struct {
	txRunner     TxRunner
	orderRepo    repository.OrderRepository
	supplierRepo repository.SupplierRepository
	transfer     *stock.TransferUseCase
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	supplierRepo repository.SupplierRepository,
	transfer *stock.TransferUseCase,
) *UseCase {
	return &UseCase{txRunner: txRunner, orderRepo: orderRepo, supplierRepo: supplierRepo, transfer: transfer}
}

// Create registra una orden de compra en estado PENDING.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if userID == "" || in.SupplierID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	supplier, err := uc.supplierRepo.GetByID(in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	for _, l := range in.Lines {
		if l.Quantity <= 0 || l.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now()
	o := &entity.Order{
		ID:         uuid.New().String(),
		SupplierID: in.SupplierID,
		Status:     entity.OrderStatusPending,
		Notes:      in.Notes,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, l := range in.Lines {
		o.Lines = append(o.Lines, entity.OrderLine{
			MedicationID: l.MedicationID,
			Quantity:     l.Quantity,
			UnitCost:     l.UnitCost,
		})
	}
	if err := uc.orderRepo.Create(o); err != nil {
		return nil, err
	}
	return toOrderResponse(o), nil
}

// Approve pasa la orden de PENDING a APPROVED registrando quién aprueba.
func (uc *UseCase) Approve(ctx context.Context, id, userID string) (*dto.OrderResponse, error) {
	return uc.transition(ctx, id, entity.OrderStatusApproved, func(o *entity.Order) {
		o.ApprovedBy = userID
	})
}

// MarkInTransit pasa la orden de APPROVED a IN_TRANSIT.
func (uc *UseCase) MarkInTransit(ctx context.Context, id string) (*dto.OrderResponse, error) {
	return uc.transition(ctx, id, entity.OrderStatusInTransit, nil)
}

// Cancel cancela la orden desde cualquier estado no terminal. No toca stock:
// nada se acreditó todavía.
func (uc *UseCase) Cancel(ctx context.Context, id string) (*dto.OrderResponse, error) {
	return uc.transition(ctx, id, entity.OrderStatusCancelled, nil)
}

// MarkDelivered registra la entrega: acredita el pool global con cada línea
// (movimientos IN con referencia a la orden) y pasa a DELIVERED, todo en una
// transacción. DELIVERED es terminal e inmutable.
func (uc *UseCase) MarkDelivered(ctx context.Context, id, userID string) (*dto.OrderResponse, error) {
	if id == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	var resp *dto.OrderResponse
	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		movRepo repository.MovementRepository,
		globalRepo repository.MedicationStockRepository,
	) error {
		o, err := orderRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if !o.CanTransitionTo(entity.OrderStatusDelivered) {
			return domain.ErrConflict
		}

		lines := make([]stock.ReceiveLine, 0, len(o.Lines))
		for _, l := range o.Lines {
			lines = append(lines, stock.ReceiveLine{MedicationID: l.MedicationID, Quantity: l.Quantity})
		}
		movementIDs, err := uc.transfer.ReceiveInTx(movRepo, globalRepo, lines,
			entity.ReferenceOrder, o.ID, userID, o.Notes)
		if err != nil {
			return err
		}
		for i, l := range o.Lines {
			if err := orderRepo.SetLineMovement(o.ID, l.MedicationID, movementIDs[i]); err != nil {
				return err
			}
		}

		now := time.Now()
		o.Status = entity.OrderStatusDelivered
		o.DeliveredAt = &now
		o.UpdatedAt = now
		if err := orderRepo.Update(o); err != nil {
			return err
		}
		o, err = orderRepo.GetByID(o.ID)
		if err != nil {
			return err
		}
		resp = toOrderResponse(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetByID obtiene una orden con sus líneas.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := uc.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return toOrderResponse(o), nil
}

// List lista órdenes, opcionalmente por estado, con paginación.
func (uc *UseCase) List(ctx context.Context, status string, page dto.PageRequest) (*dto.OrderListResponse, error) {
	page.DefaultPage()
	list, err := uc.orderRepo.List(status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOrderResponse(o))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// transition aplica un cambio de estado sin efectos de stock, validando la
// máquina de estados bajo bloqueo de fila.
func (uc *UseCase) transition(ctx context.Context, id, next string, mutate func(*entity.Order)) (*dto.OrderResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	var resp *dto.OrderResponse
	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		movRepo repository.MovementRepository,
		globalRepo repository.MedicationStockRepository,
	) error {
		o, err := orderRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if !o.CanTransitionTo(next) {
			return domain.ErrConflict
		}
		o.Status = next
		if mutate != nil {
			mutate(o)
		}
		o.UpdatedAt = time.Now()
		if err := orderRepo.Update(o); err != nil {
			return err
		}
		resp = toOrderResponse(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	resp := &dto.OrderResponse{
		ID:          o.ID,
		SupplierID:  o.SupplierID,
		Status:      o.Status,
		Total:       o.Total(),
		Notes:       o.Notes,
		CreatedBy:   o.CreatedBy,
		ApprovedBy:  o.ApprovedBy,
		DeliveredAt: o.DeliveredAt,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			MedicationID: l.MedicationID,
			Quantity:     l.Quantity,
			UnitCost:     l.UnitCost,
			MovementID:   l.MovementID,
		})
	}
	return resp
}
