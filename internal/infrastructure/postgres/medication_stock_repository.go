package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

var _ repository.MedicationStockRepository = (*MedicationStockRepo)(nil)

// MedicationStockRepo implementación del stock global sobre PostgreSQL
// (usable con pool o tx).
type MedicationStockRepo struct {
	q Querier
}

// NewMedicationStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMedicationStockRepository(q Querier) *MedicationStockRepo {
	return &MedicationStockRepo{q: q}
}

// Create inserta la fila de stock global de un medicamento recién registrado.
func (r *MedicationStockRepo) Create(stock *entity.MedicationStock) error {
	query := `
		INSERT INTO medication_stock (medication_id, quantity, min_stock, status, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		stock.MedicationID, stock.Quantity, stock.MinStock, stock.Status, stock.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create medication stock: %w", err)
	}
	return nil
}

// Get obtiene el stock global de un medicamento; nil si no existe.
func (r *MedicationStockRepo) Get(medicationID string) (*entity.MedicationStock, error) {
	return r.get(medicationID, false)
}

// GetForUpdate obtiene el stock global y bloquea la fila (SELECT FOR UPDATE).
func (r *MedicationStockRepo) GetForUpdate(medicationID string) (*entity.MedicationStock, error) {
	return r.get(medicationID, true)
}

func (r *MedicationStockRepo) get(medicationID string, forUpdate bool) (*entity.MedicationStock, error) {
	query := `
		SELECT medication_id, quantity, min_stock, status, updated_at
		FROM medication_stock WHERE medication_id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var s entity.MedicationStock
	err := r.q.QueryRow(context.Background(), query, medicationID).Scan(
		&s.MedicationID, &s.Quantity, &s.MinStock, &s.Status, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get medication stock: %w", err)
	}
	return &s, nil
}

// Save persiste la cantidad y los umbrales del stock global.
func (r *MedicationStockRepo) Save(stock *entity.MedicationStock) error {
	query := `
		UPDATE medication_stock
		SET quantity = $2, min_stock = $3, status = $4, updated_at = $5
		WHERE medication_id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		stock.MedicationID, stock.Quantity, stock.MinStock, stock.Status, stock.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save medication stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save medication stock %s: fila no existe", stock.MedicationID)
	}
	return nil
}

// ListBelowMin lista los medicamentos con cantidad <= min_stock (reporte de
// stock bajo), los más cortos primero.
func (r *MedicationStockRepo) ListBelowMin(limit, offset int) ([]*entity.MedicationStock, error) {
	query := `
		SELECT medication_id, quantity, min_stock, status, updated_at
		FROM medication_stock
		WHERE quantity <= min_stock AND status = 'ACTIVE'
		ORDER BY quantity - min_stock ASC, medication_id
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list below min: %w", err)
	}
	defer rows.Close()
	var list []*entity.MedicationStock
	for rows.Next() {
		var s entity.MedicationStock
		if err := rows.Scan(&s.MedicationID, &s.Quantity, &s.MinStock, &s.Status, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan medication stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
