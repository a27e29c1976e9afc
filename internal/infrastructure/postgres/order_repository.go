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

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de órdenes de compra sobre PostgreSQL
// (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta la orden con sus líneas.
func (r *OrderRepo) Create(o *entity.Order) error {
	ctx := context.Background()
	query := `
		INSERT INTO orders (id, supplier_id, status, notes, created_by, approved_by, delivered_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	approvedBy := (*string)(nil)
	if o.ApprovedBy != "" {
		approvedBy = &o.ApprovedBy
	}
	if _, err := r.q.Exec(ctx, query,
		o.ID, o.SupplierID, o.Status, o.Notes, o.CreatedBy, approvedBy, o.DeliveredAt,
		o.CreatedAt, o.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	lineQuery := `
		INSERT INTO order_lines (order_id, medication_id, quantity, unit_cost)
		VALUES ($1, $2, $3, $4)`
	for _, l := range o.Lines {
		if _, err := r.q.Exec(ctx, lineQuery, o.ID, l.MedicationID, l.Quantity, l.UnitCost); err != nil {
			return fmt.Errorf("create order line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus líneas; nil si no existe.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene la orden bloqueando su fila (SELECT FOR UPDATE) para
// serializar transiciones de estado concurrentes.
func (r *OrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	return r.get(id, true)
}

func (r *OrderRepo) get(id string, forUpdate bool) (*entity.Order, error) {
	ctx := context.Background()
	query := `
		SELECT id, supplier_id, status, notes, created_by, approved_by, delivered_at, created_at, updated_at
		FROM orders WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var o entity.Order
	var approvedBy *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.SupplierID, &o.Status, &o.Notes, &o.CreatedBy, &approvedBy,
		&o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if approvedBy != nil {
		o.ApprovedBy = *approvedBy
	}
	if err := r.loadLines(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) loadLines(ctx context.Context, o *entity.Order) error {
	query := `
		SELECT medication_id, quantity, unit_cost, movement_id
		FROM order_lines WHERE order_id = $1
		ORDER BY medication_id`
	rows, err := r.q.Query(ctx, query, o.ID)
	if err != nil {
		return fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.MedicationID, &l.Quantity, &l.UnitCost, &l.MovementID); err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

// Update persiste el estado y los campos de cierre de la orden.
func (r *OrderRepo) Update(o *entity.Order) error {
	query := `
		UPDATE orders
		SET status = $2, notes = $3, approved_by = $4, delivered_at = $5, updated_at = $6
		WHERE id = $1`
	approvedBy := (*string)(nil)
	if o.ApprovedBy != "" {
		approvedBy = &o.ApprovedBy
	}
	tag, err := r.q.Exec(context.Background(), query,
		o.ID, o.Status, o.Notes, approvedBy, o.DeliveredAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetLineMovement persiste el ID del movimiento IN generado para una línea.
func (r *OrderRepo) SetLineMovement(orderID, medicationID, movementID string) error {
	query := `
		UPDATE order_lines SET movement_id = $3
		WHERE order_id = $1 AND medication_id = $2`
	tag, err := r.q.Exec(context.Background(), query, orderID, medicationID, movementID)
	if err != nil {
		return fmt.Errorf("set order line movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista órdenes, opcionalmente por estado, las más recientes primero.
func (r *OrderRepo) List(status string, limit, offset int) ([]*entity.Order, error) {
	ctx := context.Background()
	query := `
		SELECT id, supplier_id, status, notes, created_by, approved_by, delivered_at, created_at, updated_at
		FROM orders`
	var args []any
	pos := 1
	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		var approvedBy *string
		if err := rows.Scan(&o.ID, &o.SupplierID, &o.Status, &o.Notes, &o.CreatedBy,
			&approvedBy, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if approvedBy != nil {
			o.ApprovedBy = *approvedBy
		}
		list = append(list, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range list {
		if err := r.loadLines(ctx, o); err != nil {
			return nil, err
		}
	}
	return list, nil
}
