package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/FarmaStock-api/internal/domain/entity"
	"github.com/jhoicas/FarmaStock-api/internal/domain/repository"
)

var _ repository.SiteStockRepository = (*SiteStockRepo)(nil)

// SiteStockRepo implementación del stock por sede sobre PostgreSQL
// (usable con pool o tx).
type SiteStockRepo struct {
	q Querier
}

// NewSiteStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSiteStockRepository(q Querier) *SiteStockRepo {
	return &SiteStockRepo{q: q}
}

// Get obtiene el stock de un medicamento en una sede; nil si no existe la fila.
func (r *SiteStockRepo) Get(siteID, medicationID string) (*entity.SiteStock, error) {
	return r.get(siteID, medicationID, false)
}

// GetForUpdate obtiene el stock de sede y bloquea la fila (SELECT FOR UPDATE);
// nil si no existe.
func (r *SiteStockRepo) GetForUpdate(siteID, medicationID string) (*entity.SiteStock, error) {
	return r.get(siteID, medicationID, true)
}

func (r *SiteStockRepo) get(siteID, medicationID string, forUpdate bool) (*entity.SiteStock, error) {
	query := `
		SELECT site_id, medication_id, quantity, min_stock, max_stock, updated_at
		FROM site_stock WHERE site_id = $1 AND medication_id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var s entity.SiteStock
	err := r.q.QueryRow(context.Background(), query, siteID, medicationID).Scan(
		&s.SiteID, &s.MedicationID, &s.Quantity, &s.MinStock, &s.MaxStock, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get site stock: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la fila de stock de la sede. La fila nace con la
// primera transferencia hacia la sede.
func (r *SiteStockRepo) Upsert(stock *entity.SiteStock) error {
	query := `
		INSERT INTO site_stock (site_id, medication_id, quantity, min_stock, max_stock, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (site_id, medication_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		stock.SiteID, stock.MedicationID, stock.Quantity, stock.MinStock, stock.MaxStock, stock.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert site stock: %w", err)
	}
	return nil
}

// ListBySite lista todas las filas de stock de una sede.
func (r *SiteStockRepo) ListBySite(siteID string) ([]*entity.SiteStock, error) {
	query := `
		SELECT site_id, medication_id, quantity, min_stock, max_stock, updated_at
		FROM site_stock WHERE site_id = $1
		ORDER BY medication_id`
	rows, err := r.q.Query(context.Background(), query, siteID)
	if err != nil {
		return nil, fmt.Errorf("list site stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.SiteStock
	for rows.Next() {
		var s entity.SiteStock
		if err := rows.Scan(&s.SiteID, &s.MedicationID, &s.Quantity, &s.MinStock, &s.MaxStock, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan site stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
