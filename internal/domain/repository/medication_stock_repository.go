package repository

import "github.com/jhoicas/FarmaStock-api/internal/domain/entity"

// MedicationStockRepository define el puerto para el stock global (pool central).
// Dentro de transacciones se usa GetForUpdate para serializar transferencias
// concurrentes sobre el mismo medicamento.
type MedicationStockRepository interface {
	Create(stock *entity.MedicationStock) error
	Get(medicationID string) (*entity.MedicationStock, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(medicationID string) (*entity.MedicationStock, error)
	Save(stock *entity.MedicationStock) error
	// ListBelowMin devuelve los medicamentos con cantidad <= min_stock.
	ListBelowMin(limit, offset int) ([]*entity.MedicationStock, error)
}
