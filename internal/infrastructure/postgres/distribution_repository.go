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

var _ repository.DistributionRepository = (*DistributionRepo)(nil)

// DistributionRepo implementación de distribuciones sobre PostgreSQL
// (usable con pool o tx).
type DistributionRepo struct {
	q Querier
}

// NewDistributionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDistributionRepository(q Querier) *DistributionRepo {
	return &DistributionRepo{q: q}
}

// Create inserta la distribución con sus líneas.
func (r *DistributionRepo) Create(d *entity.Distribution) error {
	ctx := context.Background()
	query := `
		INSERT INTO distributions (id, site_id, status, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.q.Exec(ctx, query,
		d.ID, d.SiteID, d.Status, d.Notes, d.CreatedBy, d.CreatedAt, d.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create distribution: %w", err)
	}
	lineQuery := `
		INSERT INTO distribution_lines (distribution_id, medication_id, quantity)
		VALUES ($1, $2, $3)`
	for _, l := range d.Lines {
		if _, err := r.q.Exec(ctx, lineQuery, d.ID, l.MedicationID, l.Quantity); err != nil {
			return fmt.Errorf("create distribution line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la distribución con sus líneas; nil si no existe.
func (r *DistributionRepo) GetByID(id string) (*entity.Distribution, error) {
	ctx := context.Background()
	query := `
		SELECT id, site_id, status, notes, created_by, created_at, updated_at
		FROM distributions WHERE id = $1`
	var d entity.Distribution
	err := r.q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.SiteID, &d.Status, &d.Notes, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get distribution: %w", err)
	}
	if err := r.loadLines(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DistributionRepo) loadLines(ctx context.Context, d *entity.Distribution) error {
	query := `
		SELECT medication_id, quantity, out_movement_id, in_movement_id
		FROM distribution_lines WHERE distribution_id = $1
		ORDER BY medication_id`
	rows, err := r.q.Query(ctx, query, d.ID)
	if err != nil {
		return fmt.Errorf("load distribution lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.DistributionLine
		if err := rows.Scan(&l.MedicationID, &l.Quantity, &l.OutMovementID, &l.InMovementID); err != nil {
			return fmt.Errorf("scan distribution line: %w", err)
		}
		d.Lines = append(d.Lines, l)
	}
	return rows.Err()
}

// UpdateStatus cambia el estado de la distribución.
func (r *DistributionRepo) UpdateStatus(id, status string) error {
	query := `UPDATE distributions SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update distribution status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetLineMovements persiste los IDs de movimiento generados para una línea.
func (r *DistributionRepo) SetLineMovements(distributionID, medicationID, outMovementID, inMovementID string) error {
	query := `
		UPDATE distribution_lines
		SET out_movement_id = $3, in_movement_id = $4
		WHERE distribution_id = $1 AND medication_id = $2`
	tag, err := r.q.Exec(context.Background(), query, distributionID, medicationID, outMovementID, inMovementID)
	if err != nil {
		return fmt.Errorf("set distribution line movements: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra la distribución y sus líneas (cancelación antes de distribuir).
func (r *DistributionRepo) Delete(id string) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, `DELETE FROM distribution_lines WHERE distribution_id = $1`, id); err != nil {
		return fmt.Errorf("delete distribution lines: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM distributions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete distribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista distribuciones, opcionalmente por sede, las más recientes primero.
func (r *DistributionRepo) List(siteID string, limit, offset int) ([]*entity.Distribution, error) {
	ctx := context.Background()
	query := `
		SELECT id, site_id, status, notes, created_by, created_at, updated_at
		FROM distributions`
	var args []any
	pos := 1
	if siteID != "" {
		query += fmt.Sprintf(" WHERE site_id = $%d", pos)
		args = append(args, siteID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list distributions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Distribution
	for rows.Next() {
		var d entity.Distribution
		if err := rows.Scan(&d.ID, &d.SiteID, &d.Status, &d.Notes, &d.CreatedBy,
			&d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		list = append(list, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, d := range list {
		if err := r.loadLines(ctx, d); err != nil {
			return nil, err
		}
	}
	return list, nil
}
