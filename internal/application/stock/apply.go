package stock

import (
	"context"
	"time"

	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

// ReceiveLine una línea de mercancía entrante al pool global.
type ReceiveLine struct {
	MedicationID string
	Quantity     int64
}

// ReceiveInTx acredita el pool global por la llegada de mercancía (entrega de
// un pedido a proveedor) y deja un movimiento IN por línea. Devuelve los IDs
// de movimiento en el orden de las líneas.
func (uc *TransferUseCase) ReceiveInTx(
	movRepo repository.MovementRepository,
	globalRepo repository.MedicationStockRepository,
	lines []ReceiveLine,
	referenceType, referenceID, userID, notes string,
) ([]string, error) {
	if len(lines) == 0 || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	movementIDs := make([]string, 0, len(lines))

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidMovement
		}
		gs, err := globalRepo.GetForUpdate(line.MedicationID)
		if err != nil {
			return nil, err
		}
		if gs == nil {
			return nil, domain.ErrNotFound
		}
		gs.Quantity += line.Quantity
		gs.UpdatedAt = now
		if err := globalRepo.Save(gs); err != nil {
			return nil, err
		}
		mov := &entity.MovementEntry{
			MedicationID:  line.MedicationID,
			Type:          entity.MovementTypeIN,
			Quantity:      line.Quantity,
			ReferenceType: referenceType,
			ReferenceID:   referenceID,
			UserID:        userID,
			Notes:         notes,
			CreatedAt:     now,
		}
		if err := appendMovement(movRepo, mov); err != nil {
			return nil, err
		}
		movementIDs = append(movementIDs, mov.ID)
	}
	return movementIDs, nil
}

// DispenseLine una línea a descontar del stock de una sede.
type DispenseLine struct {
	MedicationID string
	Quantity     int64
}

// DispenseInTx debita el stock de una sede (dispensación de una fórmula) y
// deja un movimiento OUT por línea. Si alguna línea excede lo disponible en la
// sede toda la operación falla; el pool global no participa.
func (uc *TransferUseCase) DispenseInTx(
	movRepo repository.MovementRepository,
	siteRepo repository.SiteStockRepository,
	siteID string,
	lines []DispenseLine,
	referenceType, referenceID, userID, notes string,
) ([]string, error) {
	if len(lines) == 0 || siteID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	movementIDs := make([]string, 0, len(lines))

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidMovement
		}
		ss, err := siteRepo.GetForUpdate(siteID, line.MedicationID)
		if err != nil {
			return nil, err
		}
		var avail int64
		if ss != nil {
			avail = ss.Quantity
		}
		if avail < line.Quantity {
			return nil, &domain.InsufficientStockError{
				MedicationID: line.MedicationID,
				SiteID:       siteID,
				Requested:    line.Quantity,
				Available:    avail,
			}
		}
		ss.Quantity -= line.Quantity
		ss.UpdatedAt = now
		if err := siteRepo.Upsert(ss); err != nil {
			return nil, err
		}
		sid := siteID
		mov := &entity.MovementEntry{
			MedicationID:  line.MedicationID,
			Type:          entity.MovementTypeOUT,
			Quantity:      line.Quantity,
			ReferenceType: referenceType,
			ReferenceID:   referenceID,
			SiteID:        &sid,
			UserID:        userID,
			Notes:         notes,
			CreatedAt:     now,
		}
		if err := appendMovement(movRepo, mov); err != nil {
			return nil, err
		}
		movementIDs = append(movementIDs, mov.ID)
	}
	return movementIDs, nil
}

// AdjustGlobal aplica un ajuste administrativo con signo al pool global y deja
// el movimiento correspondiente (ADJUSTMENT si suma, OUT si resta). Reservado
// a administradores; el delta no puede ser cero ni dejar la cantidad negativa.
func (uc *TransferUseCase) AdjustGlobal(ctx context.Context, medicationID string, delta int64, userID, notes string) (*entity.MedicationStock, error) {
	if medicationID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	if delta == 0 {
		return nil, domain.ErrInvalidMovement
	}

	var updated *entity.MedicationStock
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		globalRepo repository.MedicationStockRepository,
		siteRepo repository.SiteStockRepository,
	) error {
		gs, err := globalRepo.GetForUpdate(medicationID)
		if err != nil {
			return err
		}
		if gs == nil {
			return domain.ErrNotFound
		}
		newQty := gs.Quantity + delta
		if newQty < 0 {
			return &domain.InsufficientStockError{
				MedicationID: medicationID,
				Requested:    -delta,
				Available:    gs.Quantity,
			}
		}
		gs.Quantity = newQty
		gs.UpdatedAt = time.Now()
		if err := globalRepo.Save(gs); err != nil {
			return err
		}

		mType := entity.MovementTypeADJUSTMENT
		qty := delta
		if delta < 0 {
			mType = entity.MovementTypeOUT
			qty = -delta
		}
		mov := &entity.MovementEntry{
			MedicationID:  medicationID,
			Type:          mType,
			Quantity:      qty,
			ReferenceType: entity.ReferenceAdjustment,
			ReferenceID:   medicationID,
			UserID:        userID,
			Notes:         notes,
			CreatedAt:     gs.UpdatedAt,
		}
		if err := appendMovement(movRepo, mov); err != nil {
			return err
		}
		updated = gs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
