package repository

import "github.com/jhoicas/FarmaStock-api/internal/domain/entity"

// OrderRepository define el puerto de persistencia para órdenes de compra.
type OrderRepository interface {
	Create(order *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	// GetForUpdate bloquea la fila de la orden para serializar transiciones de estado.
	GetForUpdate(id string) (*entity.Order, error)
	Update(order *entity.Order) error
	SetLineMovement(orderID, medicationID, movementID string) error
	List(status string, limit, offset int) ([]*entity.Order, error)
}
