package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/FarmaStock-api/internal/domain"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

var _ repository.PrescriptionRepository = (*PrescriptionRepo)(nil)

// PrescriptionRepo implementación de fórmulas médicas sobre PostgreSQL
// (usable con pool o tx).
type PrescriptionRepo struct {
	q Querier
}

// NewPrescriptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPrescriptionRepository(q Querier) *PrescriptionRepo {
	return &PrescriptionRepo{q: q}
}

const prescriptionColumns = `id, site_id, patient_document, patient_name, prescriber_name,
	status, notes, created_by, prepared_by, prepared_at, created_at, updated_at`

// Create inserta la fórmula con sus líneas.
func (r *PrescriptionRepo) Create(p *entity.Prescription) error {
	ctx := context.Background()
	query := `
		INSERT INTO prescriptions (` + prescriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	preparedBy := (*string)(nil)
	if p.PreparedBy != "" {
		preparedBy = &p.PreparedBy
	}
	if _, err := r.q.Exec(ctx, query,
		p.ID, p.SiteID, p.PatientDocument, p.PatientName, p.PrescriberName,
		p.Status, p.Notes, p.CreatedBy, preparedBy, p.PreparedAt, p.CreatedAt, p.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create prescription: %w", err)
	}
	lineQuery := `
		INSERT INTO prescription_lines (prescription_id, medication_id, quantity, directions)
		VALUES ($1, $2, $3, $4)`
	for _, l := range p.Lines {
		if _, err := r.q.Exec(ctx, lineQuery, p.ID, l.MedicationID, l.Quantity, l.Directions); err != nil {
			return fmt.Errorf("create prescription line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la fórmula con sus líneas; nil si no existe.
func (r *PrescriptionRepo) GetByID(id string) (*entity.Prescription, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene la fórmula bloqueando su fila (SELECT FOR UPDATE) para
// serializar transiciones de estado concurrentes.
func (r *PrescriptionRepo) GetForUpdate(id string) (*entity.Prescription, error) {
	return r.get(id, true)
}

func (r *PrescriptionRepo) get(id string, forUpdate bool) (*entity.Prescription, error) {
	ctx := context.Background()
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	p, err := r.scanOne(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get prescription: %w", err)
	}
	if err := r.loadLines(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PrescriptionRepo) scanOne(row pgx.Row) (*entity.Prescription, error) {
	var p entity.Prescription
	var preparedBy *string
	if err := row.Scan(
		&p.ID, &p.SiteID, &p.PatientDocument, &p.PatientName, &p.PrescriberName,
		&p.Status, &p.Notes, &p.CreatedBy, &preparedBy, &p.PreparedAt, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if preparedBy != nil {
		p.PreparedBy = *preparedBy
	}
	return &p, nil
}

func (r *PrescriptionRepo) loadLines(ctx context.Context, p *entity.Prescription) error {
	query := `
		SELECT medication_id, quantity, directions, movement_id
		FROM prescription_lines WHERE prescription_id = $1
		ORDER BY medication_id`
	rows, err := r.q.Query(ctx, query, p.ID)
	if err != nil {
		return fmt.Errorf("load prescription lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.PrescriptionLine
		if err := rows.Scan(&l.MedicationID, &l.Quantity, &l.Directions, &l.MovementID); err != nil {
			return fmt.Errorf("scan prescription line: %w", err)
		}
		p.Lines = append(p.Lines, l)
	}
	return rows.Err()
}

// Update persiste el estado y los campos de cierre de la fórmula.
func (r *PrescriptionRepo) Update(p *entity.Prescription) error {
	query := `
		UPDATE prescriptions
		SET status = $2, notes = $3, prepared_by = $4, prepared_at = $5, updated_at = $6
		WHERE id = $1`
	preparedBy := (*string)(nil)
	if p.PreparedBy != "" {
		preparedBy = &p.PreparedBy
	}
	tag, err := r.q.Exec(context.Background(), query,
		p.ID, p.Status, p.Notes, preparedBy, p.PreparedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update prescription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetLineMovement persiste el ID del movimiento OUT generado para una línea.
func (r *PrescriptionRepo) SetLineMovement(prescriptionID, medicationID, movementID string) error {
	query := `
		UPDATE prescription_lines SET movement_id = $3
		WHERE prescription_id = $1 AND medication_id = $2`
	tag, err := r.q.Exec(context.Background(), query, prescriptionID, medicationID, movementID)
	if err != nil {
		return fmt.Errorf("set prescription line movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista fórmulas por sede y/o estado, las más recientes primero.
func (r *PrescriptionRepo) List(siteID, status string, limit, offset int) ([]*entity.Prescription, error) {
	ctx := context.Background()
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions WHERE 1=1`
	var args []any
	pos := 1
	if siteID != "" {
		query += fmt.Sprintf(" AND site_id = $%d", pos)
		args = append(args, siteID)
		pos++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Prescription
	for rows.Next() {
		p, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prescription: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range list {
		if err := r.loadLines(ctx, p); err != nil {
			return nil, err
		}
	}
	return list, nil
}
