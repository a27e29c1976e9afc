package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Las filas son inmutables: solo INSERT y SELECT.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, medication_id, type, quantity, reference_type, reference_id,
	site_id, from_site_id, to_site_id, user_id, reversal_of, notes, created_at`

// Create persiste un movimiento del libro.
func (r *MovementRepo) Create(entry *entity.MovementEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	refID := (*string)(nil)
	if entry.ReferenceID != "" {
		refID = &entry.ReferenceID
	}
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.MedicationID, entry.Type, entry.Quantity, entry.ReferenceType, refID,
		entry.SiteID, entry.FromSiteID, entry.ToSiteID, entry.UserID, entry.ReversalOf,
		entry.Notes, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; nil si no existe.
func (r *MovementRepo) GetByID(id string) (*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// FindByReference devuelve los movimientos de una referencia en orden de libro
// (created_at, id ascendente).
func (r *MovementRepo) FindByReference(referenceType, referenceID string) ([]*entity.MovementEntry, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("find by reference: %w", err)
	}
	return collectMovements(rows)
}

// ListByMedication lista la historia de un medicamento, lo más reciente primero.
func (r *MovementRepo) ListByMedication(medicationID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE medication_id = $1`
	args := []any{medicationID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by medication: %w", err)
	}
	return collectMovements(rows)
}

// Summarize agrega el libro por tipo de movimiento según el filtro.
func (r *MovementRepo) Summarize(filter repository.MovementFilter) ([]repository.MovementSummary, error) {
	query := `
		SELECT type, COUNT(*), COALESCE(SUM(quantity), 0)
		FROM movements WHERE 1=1`
	var args []any
	pos := 1
	if filter.MedicationID != "" {
		query += fmt.Sprintf(" AND medication_id = $%d", pos)
		args = append(args, filter.MedicationID)
		pos++
	}
	if filter.SiteID != nil {
		query += fmt.Sprintf(" AND site_id = $%d", pos)
		args = append(args, *filter.SiteID)
		pos++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, filter.Type)
		pos++
	}
	if filter.ReferenceType != "" {
		query += fmt.Sprintf(" AND reference_type = $%d", pos)
		args = append(args, filter.ReferenceType)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	query += " GROUP BY type ORDER BY type"

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("summarize movements: %w", err)
	}
	defer rows.Close()
	var list []repository.MovementSummary
	for rows.Next() {
		var s repository.MovementSummary
		if err := rows.Scan(&s.Type, &s.Count, &s.TotalQuantity); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.MovementEntry, error) {
	var m entity.MovementEntry
	var refID *string
	if err := row.Scan(
		&m.ID, &m.MedicationID, &m.Type, &m.Quantity, &m.ReferenceType, &refID,
		&m.SiteID, &m.FromSiteID, &m.ToSiteID, &m.UserID, &m.ReversalOf,
		&m.Notes, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	if refID != nil {
		m.ReferenceID = *refID
	}
	return &m, nil
}

func collectMovements(rows pgx.Rows) ([]*entity.MovementEntry, error) {
	defer rows.Close()
	var list []*entity.MovementEntry
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
