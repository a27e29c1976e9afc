package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

// ReversalInput parámetros de una reversión por referencia.
type ReversalInput struct {
	ReferenceType string
	ReferenceID   string
	UserID        string
	Notes         string
}

// ReversedMovement vincula un movimiento original con su compensatorio.
type ReversedMovement struct {
	MedicationID           string `json:"medication_id"`
	OriginalMovementID     string `json:"original_movement_id"`
	CompensatingMovementID string `json:"compensating_movement_id"`
}

// ReversalResult resultado de una reversión completa.
type ReversalResult struct {
	ReferenceType string             `json:"reference_type"`
	ReferenceID   string             `json:"reference_id"`
	Movements     []ReversedMovement `json:"movements"`
}

// ReverseTransfer deshace el efecto neto de todos los movimientos de una
// referencia, reproduciendo su inverso como unidad atómica. Los originales
// nunca se mutan ni borran: por cada uno se añade un movimiento compensatorio
// con reference_type ADJUSTMENT apuntando al original vía reversal_of. Si
// algún paso dejaría una cantidad negativa, la reversión completa falla con
// InsufficientStock. La reversión es idempotente en el sentido estricto: un
// movimiento que ya tiene compensatorio se omite, y si todos lo tienen la
// operación falla con ErrNothingToReverse en lugar de aplicarse dos veces.
func (uc *TransferUseCase) ReverseTransfer(ctx context.Context, input ReversalInput) (*ReversalResult, error) {
	var result *ReversalResult
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		globalRepo repository.MedicationStockRepository,
		siteRepo repository.SiteStockRepository,
	) error {
		r, err := uc.ReverseTransferInTx(movRepo, globalRepo, siteRepo, input)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReverseTransferInTx ejecuta la reversión sobre repositorios ya atados a la
// transacción del caller.
func (uc *TransferUseCase) ReverseTransferInTx(
	movRepo repository.MovementRepository,
	globalRepo repository.MedicationStockRepository,
	siteRepo repository.SiteStockRepository,
	input ReversalInput,
) (*ReversalResult, error) {
	if input.UserID == "" || input.ReferenceID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidReferenceType(input.ReferenceType) {
		return nil, domain.ErrInvalidMovement
	}

	entries, err := movRepo.FindByReference(input.ReferenceType, input.ReferenceID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, domain.ErrNothingToReverse
	}

	// Los compensatorios previos de esta referencia viven bajo ADJUSTMENT y
	// apuntan al original vía reversal_of; un original ya compensado no se
	// vuelve a revertir.
	compensated := map[string]bool{}
	adjustments, err := movRepo.FindByReference(entity.ReferenceAdjustment, input.ReferenceID)
	if err != nil {
		return nil, err
	}
	for _, c := range adjustments {
		if c.ReversalOf != nil {
			compensated[*c.ReversalOf] = true
		}
	}

	now := time.Now()
	result := &ReversalResult{
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
	}

	for _, e := range entries {
		if e.ReversalOf != nil || compensated[e.ID] {
			continue
		}
		var comp *entity.MovementEntry

		if e.AffectsGlobal() {
			delta := e.GlobalDelta()
			gs, err := globalRepo.GetForUpdate(e.MedicationID)
			if err != nil {
				return nil, err
			}
			if gs == nil {
				return nil, domain.ErrNotFound
			}
			newQty := gs.Quantity - delta
			if newQty < 0 {
				return nil, &domain.InsufficientStockError{
					MedicationID: e.MedicationID,
					Requested:    delta,
					Available:    gs.Quantity,
				}
			}
			gs.Quantity = newQty
			gs.UpdatedAt = now
			if err := globalRepo.Save(gs); err != nil {
				return nil, err
			}
			compType := entity.MovementTypeIN
			if delta > 0 {
				compType = entity.MovementTypeOUT
			}
			comp = &entity.MovementEntry{
				MedicationID:  e.MedicationID,
				Type:          compType,
				Quantity:      e.Quantity,
				ReferenceType: entity.ReferenceAdjustment,
				ReferenceID:   input.ReferenceID,
				UserID:        input.UserID,
				ReversalOf:    &e.ID,
				Notes:         reversalNotes(input.Notes, e.ID),
				CreatedAt:     now,
			}
		} else {
			delta := e.SiteDelta()
			siteID := *e.SiteID
			ss, err := siteRepo.GetForUpdate(siteID, e.MedicationID)
			if err != nil {
				return nil, err
			}
			var avail int64
			if ss != nil {
				avail = ss.Quantity
			}
			newQty := avail - delta
			if newQty < 0 {
				// La sede ya no retiene lo suficiente (p.ej. fue redistribuido);
				// la reversión falla completa, nunca recorta a cero.
				return nil, &domain.InsufficientStockError{
					MedicationID: e.MedicationID,
					SiteID:       siteID,
					Requested:    delta,
					Available:    avail,
				}
			}
			if ss == nil {
				ss = &entity.SiteStock{SiteID: siteID, MedicationID: e.MedicationID}
			}
			ss.Quantity = newQty
			ss.UpdatedAt = now
			if err := siteRepo.Upsert(ss); err != nil {
				return nil, err
			}
			compType := entity.MovementTypeIN
			if delta > 0 {
				compType = entity.MovementTypeOUT
			}
			comp = &entity.MovementEntry{
				MedicationID:  e.MedicationID,
				Type:          compType,
				Quantity:      e.Quantity,
				ReferenceType: entity.ReferenceAdjustment,
				ReferenceID:   input.ReferenceID,
				SiteID:        &siteID,
				UserID:        input.UserID,
				ReversalOf:    &e.ID,
				Notes:         reversalNotes(input.Notes, e.ID),
				CreatedAt:     now,
			}
		}

		if err := appendMovement(movRepo, comp); err != nil {
			return nil, err
		}
		result.Movements = append(result.Movements, ReversedMovement{
			MedicationID:           e.MedicationID,
			OriginalMovementID:     e.ID,
			CompensatingMovementID: comp.ID,
		})
	}
	if len(result.Movements) == 0 {
		return nil, domain.ErrNothingToReverse
	}
	return result, nil
}

func reversalNotes(notes, originalID string) string {
	if notes == "" {
		return fmt.Sprintf("reversa del movimiento %s", originalID)
	}
	return fmt.Sprintf("%s (reversa del movimiento %s)", notes, originalID)
}
