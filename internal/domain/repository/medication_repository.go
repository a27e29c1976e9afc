package repository

import "github.com/jhoicas/FarmaStock-api/internal/domain/entity"

// MedicationRepository define el puerto de persistencia para el catálogo de medicamentos.
type MedicationRepository interface {
	Create(medication *entity.Medication) error
	GetByID(id string) (*entity.Medication, error)
	GetByCUM(cum string) (*entity.Medication, error)
	Update(medication *entity.Medication) error
	List(limit, offset int) ([]*entity.Medication, error)
}
