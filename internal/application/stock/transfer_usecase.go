package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

// TransferUseCase es el motor de transferencias y reconciliación: mueve cantidad
// entre el pool global y las sedes, registra cada cambio en el libro de
// movimientos y garantiza no-negatividad y conservación dentro de una única
// transacción. Los repositorios del constructor están atados al pool y solo se
// usan para lecturas consultivas (ValidateTransfer); toda mutación ocurre sobre
// los repositorios atados a la tx que entrega el TxRunner.
type TransferUseCase struct {
	txRunner   TxRunner
	globalRepo repository.MedicationStockRepository
	siteRepo   repository.SiteStockRepository
}

// NewTransferUseCase construye el motor.
func NewTransferUseCase(
	txRunner TxRunner,
	globalRepo repository.MedicationStockRepository,
	siteRepo repository.SiteStockRepository,
) *TransferUseCase {
	return &TransferUseCase{txRunner: txRunner, globalRepo: globalRepo, siteRepo: siteRepo}
}

// TransferLine es una línea (medicamento, cantidad) de una transferencia.
type TransferLine struct {
	MedicationID string
	Quantity     int64
}

// LineError describe el fallo de una línea: medicamento, pedido y disponible.
type LineError struct {
	MedicationID string `json:"medication_id"`
	Error        string `json:"error"`
	Requested    int64  `json:"requested,omitempty"`
	Available    int64  `json:"available,omitempty"`
}

// LineWarning es una advertencia consultiva; la transferencia procede igual.
type LineWarning struct {
	MedicationID string `json:"medication_id"`
	Warning      string `json:"warning"`
}

// TransferValidation es el resultado de la validación consultiva.
type TransferValidation struct {
	IsValid  bool          `json:"is_valid"`
	Errors   []LineError   `json:"errors"`
	Warnings []LineWarning `json:"warnings"`
}

// TransferInput parámetros de una transferencia global → sede.
type TransferInput struct {
	SiteID        string
	Lines         []TransferLine
	UserID        string
	ReferenceType string // vacío = TRANSFER independiente
	ReferenceID   string
	Notes         string
}

// AppliedMovement es el rastro de una línea aplicada: los dos movimientos
// generados y las cantidades resultantes.
type AppliedMovement struct {
	MedicationID  string `json:"medication_id"`
	OutMovementID string `json:"out_movement_id"`
	InMovementID  string `json:"in_movement_id"`
	GlobalAfter   int64  `json:"global_after"`
	SiteAfter     int64  `json:"site_after"`
}

// TransferResult resultado de PerformTransfer: o todas las líneas aplicadas
// (Success true) o ninguna (Success false con el detalle por línea).
type TransferResult struct {
	Success   bool              `json:"success"`
	Movements []AppliedMovement `json:"movements"`
	Errors    []LineError       `json:"errors"`
}

// ValidateTransfer valida una transferencia sin mutar nada: acumula faltantes
// como errores y umbrales de reorden / techos de sede como advertencias.
// Cubre solo la dirección pool global → sede, la única con ventana de
// insuficiencia previa; la dirección entrante (mercancía al pool) la valida
// ReceiveInTx al aplicar. Es un pre-chequeo consultivo; PerformTransfer
// revalida dentro de la transacción para cerrar la ventana frente a
// transferencias concurrentes.
func (uc *TransferUseCase) ValidateTransfer(ctx context.Context, siteID string, lines []TransferLine) (*TransferValidation, error) {
	if len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	v := &TransferValidation{Errors: []LineError{}, Warnings: []LineWarning{}}

	// Proyección por medicamento para que líneas repetidas no validen dos veces
	// contra la misma cantidad.
	projected := make(map[string]int64)

	for _, line := range lines {
		if line.Quantity <= 0 {
			v.Errors = append(v.Errors, LineError{MedicationID: line.MedicationID, Error: "cantidad debe ser positiva"})
			continue
		}
		gs, err := uc.globalRepo.Get(line.MedicationID)
		if err != nil {
			return nil, err
		}
		if gs == nil {
			v.Errors = append(v.Errors, LineError{MedicationID: line.MedicationID, Error: "medicamento no encontrado"})
			continue
		}
		avail, seen := projected[line.MedicationID]
		if !seen {
			avail = gs.Quantity
		}
		if avail < line.Quantity {
			v.Errors = append(v.Errors, LineError{
				MedicationID: line.MedicationID,
				Error:        "stock global insuficiente",
				Requested:    line.Quantity,
				Available:    avail,
			})
			continue
		}
		remaining := avail - line.Quantity
		projected[line.MedicationID] = remaining

		if remaining <= gs.MinStock {
			v.Warnings = append(v.Warnings, LineWarning{
				MedicationID: line.MedicationID,
				Warning:      fmt.Sprintf("el stock global quedará en %d, en o bajo el umbral de reorden (%d)", remaining, gs.MinStock),
			})
		}
		if siteID != "" {
			ss, err := uc.siteRepo.Get(siteID, line.MedicationID)
			if err != nil {
				return nil, err
			}
			if ss != nil && ss.MaxStock != nil && ss.Quantity+line.Quantity > *ss.MaxStock {
				v.Warnings = append(v.Warnings, LineWarning{
					MedicationID: line.MedicationID,
					Warning:      fmt.Sprintf("la sede superará su techo de stock (%d)", *ss.MaxStock),
				})
			}
		}
	}
	v.IsValid = len(v.Errors) == 0
	return v, nil
}

// PerformTransfer ejecuta la transferencia como unidad atómica: abre la
// transacción, revalida bajo bloqueo de fila y aplica el par débito global /
// crédito de sede por línea. Si alguna línea falla, nada se aplica y el
// resultado trae el detalle por línea con Success=false.
func (uc *TransferUseCase) PerformTransfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	var result *TransferResult
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		globalRepo repository.MedicationStockRepository,
		siteRepo repository.SiteStockRepository,
	) error {
		r, err := uc.PerformTransferInTx(movRepo, globalRepo, siteRepo, input)
		result = r
		return err
	})
	if err != nil {
		// Los fallos por línea viajan dentro del resultado; el error solo forzó
		// el rollback de la transacción.
		if result != nil && !result.Success {
			return result, nil
		}
		return nil, err
	}
	return result, nil
}

// PerformTransferInTx ejecuta la transferencia usando repositorios ya atados a
// la transacción del caller (composición con los adaptadores de flujo).
// Devuelve error no-nil siempre que el caller deba abortar su transacción.
func (uc *TransferUseCase) PerformTransferInTx(
	movRepo repository.MovementRepository,
	globalRepo repository.MedicationStockRepository,
	siteRepo repository.SiteStockRepository,
	input TransferInput,
) (*TransferResult, error) {
	if input.SiteID == "" || input.UserID == "" || len(input.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	refType := input.ReferenceType
	refID := input.ReferenceID
	if refType == "" {
		refType = entity.ReferenceTransfer
		refID = uuid.New().String()
	}
	if !entity.ValidReferenceType(refType) {
		return nil, domain.ErrInvalidMovement
	}

	// Fase 1: revalidación bajo SELECT FOR UPDATE. Bloquea cada fila global una
	// sola vez y proyecta el consumo acumulado de líneas repetidas.
	locked := make(map[string]*entity.MedicationStock)
	remaining := make(map[string]int64)
	var lineErrs []LineError
	var firstShortfall *domain.InsufficientStockError

	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			lineErrs = append(lineErrs, LineError{MedicationID: line.MedicationID, Error: "cantidad debe ser positiva"})
			continue
		}
		gs, ok := locked[line.MedicationID]
		if !ok {
			var err error
			gs, err = globalRepo.GetForUpdate(line.MedicationID)
			if err != nil {
				return nil, err
			}
			if gs == nil {
				lineErrs = append(lineErrs, LineError{MedicationID: line.MedicationID, Error: "medicamento no encontrado"})
				continue
			}
			locked[line.MedicationID] = gs
			remaining[line.MedicationID] = gs.Quantity
		}
		if gs == nil {
			lineErrs = append(lineErrs, LineError{MedicationID: line.MedicationID, Error: "medicamento no encontrado"})
			continue
		}
		avail := remaining[line.MedicationID]
		if avail < line.Quantity {
			lineErrs = append(lineErrs, LineError{
				MedicationID: line.MedicationID,
				Error:        "stock global insuficiente",
				Requested:    line.Quantity,
				Available:    avail,
			})
			if firstShortfall == nil {
				firstShortfall = &domain.InsufficientStockError{
					MedicationID: line.MedicationID,
					Requested:    line.Quantity,
					Available:    avail,
				}
			}
			continue
		}
		remaining[line.MedicationID] = avail - line.Quantity
	}

	if len(lineErrs) > 0 {
		res := &TransferResult{Success: false, Errors: lineErrs, Movements: []AppliedMovement{}}
		if firstShortfall != nil {
			return res, firstShortfall
		}
		return res, domain.ErrNotFound
	}

	// Fase 2: aplicar el par débito global / crédito de sede por línea.
	now := time.Now()
	result := &TransferResult{Success: true, Errors: []LineError{}}
	for _, line := range input.Lines {
		gs := locked[line.MedicationID]
		gs.Quantity -= line.Quantity
		gs.UpdatedAt = now
		if err := globalRepo.Save(gs); err != nil {
			return nil, err
		}

		ss, err := siteRepo.GetForUpdate(input.SiteID, line.MedicationID)
		if err != nil {
			return nil, err
		}
		if ss == nil {
			// Creación perezosa: la fila de sede nace con la primera transferencia,
			// sembrada con el umbral de reorden del medicamento.
			ss = &entity.SiteStock{
				SiteID:       input.SiteID,
				MedicationID: line.MedicationID,
				MinStock:     gs.MinStock,
			}
		}
		ss.Quantity += line.Quantity
		ss.UpdatedAt = now
		if err := siteRepo.Upsert(ss); err != nil {
			return nil, err
		}

		outMov := &entity.MovementEntry{
			MedicationID:  line.MedicationID,
			Type:          entity.MovementTypeTRANSFEROUT,
			Quantity:      line.Quantity,
			ReferenceType: refType,
			ReferenceID:   refID,
			ToSiteID:      &input.SiteID,
			UserID:        input.UserID,
			Notes:         input.Notes,
			CreatedAt:     now,
		}
		if err := appendMovement(movRepo, outMov); err != nil {
			return nil, err
		}
		inMov := &entity.MovementEntry{
			MedicationID:  line.MedicationID,
			Type:          entity.MovementTypeTRANSFERIN,
			Quantity:      line.Quantity,
			ReferenceType: refType,
			ReferenceID:   refID,
			SiteID:        &input.SiteID,
			UserID:        input.UserID,
			Notes:         input.Notes,
			CreatedAt:     now,
		}
		if err := appendMovement(movRepo, inMov); err != nil {
			return nil, err
		}

		result.Movements = append(result.Movements, AppliedMovement{
			MedicationID:  line.MedicationID,
			OutMovementID: outMov.ID,
			InMovementID:  inMov.ID,
			GlobalAfter:   gs.Quantity,
			SiteAfter:     ss.Quantity,
		})
	}
	return result, nil
}

// appendMovement valida el movimiento contra las reglas del libro y lo persiste.
// Un rechazo aquí es un error de programación del adaptador que llama.
func appendMovement(movRepo repository.MovementRepository, e *entity.MovementEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return movRepo.Create(e)
}

// IsLineFailure indica si err representa fallos por línea ya reportados dentro
// de un TransferResult (insuficiencia o medicamento inexistente).
func IsLineFailure(err error) bool {
	return errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrNotFound)
}
