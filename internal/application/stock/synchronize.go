package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

// SyncAdjustment describe una corrección aplicada durante la sincronización.
type SyncAdjustment struct {
	MedicationID string `json:"medication_id"`
	OldQuantity  int64  `json:"old_quantity"`
	NewQuantity  int64  `json:"new_quantity"`
	MovementID   string `json:"movement_id"`
}

// Synchronize reconcilia el stock de una sede contra el pool global. El pool
// global es la fuente autoritativa: cada fila de sede cuyo valor difiera del
// registrado globalmente se fuerza al valor global, dejando un movimiento de
// ajuste que documenta la corrección. El pool global no se toca.
func (uc *TransferUseCase) Synchronize(ctx context.Context, siteID, userID string) ([]SyncAdjustment, error) {
	if siteID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}

	var adjustments []SyncAdjustment
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		globalRepo repository.MedicationStockRepository,
		siteRepo repository.SiteStockRepository,
	) error {
		rows, err := siteRepo.ListBySite(siteID)
		if err != nil {
			return err
		}
		now := time.Now()

		for _, row := range rows {
			gs, err := globalRepo.Get(row.MedicationID)
			if err != nil {
				return err
			}
			if gs == nil {
				// Sin contraparte global no hay valor autoritativo.
				continue
			}
			if row.Quantity == gs.Quantity {
				continue
			}

			old := row.Quantity
			diff := gs.Quantity - old
			mType := entity.MovementTypeADJUSTMENT
			qty := diff
			if diff < 0 {
				mType = entity.MovementTypeOUT
				qty = -diff
			}
			sid := row.SiteID
			mov := &entity.MovementEntry{
				MedicationID:  row.MedicationID,
				Type:          mType,
				Quantity:      qty,
				ReferenceType: entity.ReferenceAdjustment,
				ReferenceID:   siteID,
				SiteID:        &sid,
				UserID:        userID,
				Notes:         fmt.Sprintf("sincronización de sede: %d -> %d", old, gs.Quantity),
				CreatedAt:     now,
			}
			if err := appendMovement(movRepo, mov); err != nil {
				return err
			}

			row.Quantity = gs.Quantity
			row.UpdatedAt = now
			if err := siteRepo.Upsert(row); err != nil {
				return err
			}
			adjustments = append(adjustments, SyncAdjustment{
				MedicationID: row.MedicationID,
				OldQuantity:  old,
				NewQuantity:  gs.Quantity,
				MovementID:   mov.ID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}
