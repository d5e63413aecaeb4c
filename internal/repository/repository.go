// Package repository defines the persistence contracts for purchase orders,
// sales orders, and returns. The cost layer contract lives in the costing
// package, next to the engine that consumes it.
package repository

import (
	"context"
	"errors"

	"github.com/stocklens/backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type PurchaseOrderRepository interface {
	CreatePurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error
	GetPurchaseOrderByID(ctx context.Context, id int64) (*domain.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context) ([]*domain.PurchaseOrder, error)
	UpdatePurchaseOrderStatus(ctx context.Context, id int64, status int) error

	// IncomingQuantities sums ordered quantity per SKU across purchase
	// orders that are on the way but not yet delivered (the non-layer
	// incoming counter).
	IncomingQuantities(ctx context.Context) (map[string]int, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	MarkFulfilled(ctx context.Context, id int64) error
}

type ReturnRepository interface {
	CreateReturn(ctx context.Context, ret *domain.Return) error
	GetReturnByID(ctx context.Context, id int64) (*domain.Return, error)
	ListReturns(ctx context.Context) ([]*domain.Return, error)
	UpdateReturnStatus(ctx context.Context, id int64, status int) error
}
