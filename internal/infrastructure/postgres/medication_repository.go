package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

var _ repository.MedicationRepository = (*MedicationRepo)(nil)

// MedicationRepo implementación del catálogo sobre PostgreSQL (usable con pool o tx).
type MedicationRepo struct {
	q Querier
}

// NewMedicationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMedicationRepository(q Querier) *MedicationRepo {
	return &MedicationRepo{q: q}
}

const medicationColumns = `id, cum, name, presentation, unit, price, supplier_id, created_at, updated_at`

// Create inserta un medicamento. El CUM es único: duplicado -> ErrDuplicate.
func (r *MedicationRepo) Create(medication *entity.Medication) error {
	if medication.ID == "" {
		medication.ID = uuid.New().String()
	}
	query := `
		INSERT INTO medications (` + medicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	supplierID := (*string)(nil)
	if medication.SupplierID != "" {
		supplierID = &medication.SupplierID
	}
	_, err := r.q.Exec(context.Background(), query,
		medication.ID, medication.CUM, medication.Name, medication.Presentation,
		medication.Unit, medication.Price, supplierID, medication.CreatedAt, medication.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create medication: %w", err)
	}
	return nil
}

// GetByID obtiene un medicamento por ID; nil si no existe.
func (r *MedicationRepo) GetByID(id string) (*entity.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE id = $1`
	return r.getOne(query, id)
}

// GetByCUM obtiene un medicamento por código CUM; nil si no existe.
func (r *MedicationRepo) GetByCUM(cum string) (*entity.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE cum = $1`
	return r.getOne(query, cum)
}

func (r *MedicationRepo) getOne(query string, arg any) (*entity.Medication, error) {
	var m entity.Medication
	var supplierID *string
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&m.ID, &m.CUM, &m.Name, &m.Presentation, &m.Unit, &m.Price,
		&supplierID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get medication: %w", err)
	}
	if supplierID != nil {
		m.SupplierID = *supplierID
	}
	return &m, nil
}

// Update actualiza los campos de catálogo de un medicamento.
func (r *MedicationRepo) Update(medication *entity.Medication) error {
	query := `
		UPDATE medications
		SET name = $2, presentation = $3, unit = $4, price = $5, supplier_id = $6, updated_at = $7
		WHERE id = $1`
	supplierID := (*string)(nil)
	if medication.SupplierID != "" {
		supplierID = &medication.SupplierID
	}
	tag, err := r.q.Exec(context.Background(), query,
		medication.ID, medication.Name, medication.Presentation, medication.Unit,
		medication.Price, supplierID, medication.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update medication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista el catálogo con paginación, ordenado por nombre.
func (r *MedicationRepo) List(limit, offset int) ([]*entity.Medication, error) {
	query := `
		SELECT ` + medicationColumns + ` FROM medications
		ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()
	var list []*entity.Medication
	for rows.Next() {
		var m entity.Medication
		var supplierID *string
		if err := rows.Scan(&m.ID, &m.CUM, &m.Name, &m.Presentation, &m.Unit, &m.Price,
			&supplierID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan medication: %w", err)
		}
		if supplierID != nil {
			m.SupplierID = *supplierID
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
