package repository

import "github.com/jhoicas/FarmaStock-api/internal/domain/entity"

// PrescriptionRepository define el puerto de persistencia para fórmulas médicas.
type PrescriptionRepository interface {
	Create(prescription *entity.Prescription) error
	GetByID(id string) (*entity.Prescription, error)
	// GetForUpdate bloquea la fila de la fórmula para serializar transiciones de estado.
	GetForUpdate(id string) (*entity.Prescription, error)
	Update(prescription *entity.Prescription) error
	SetLineMovement(prescriptionID, medicationID, movementID string) error
	List(siteID, status string, limit, offset int) ([]*entity.Prescription, error)
}
