package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/repository"
)

type orderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		header := `
			INSERT INTO orders (reference, customer, total_amount, tax_amount, shipping_cost, fulfilled, placed_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, FALSE, $6, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, header,
			order.Reference, order.Customer, order.TotalAmount, order.TaxAmount, order.ShippingCost, order.PlacedAt,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		line := `
			INSERT INTO order_lines (order_id, sku, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		for i := range order.Lines {
			order.Lines[i].OrderID = order.ID
			err := tx.QueryRowContext(ctx, line,
				order.ID, order.Lines[i].SKU, order.Lines[i].Quantity, order.Lines[i].UnitPrice, order.Lines[i].TotalPrice,
			).Scan(&order.Lines[i].ID)
			if err != nil {
				return fmt.Errorf("failed to insert order line: %w", err)
			}
		}

		return nil
	})
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `
		SELECT id, reference, customer, total_amount, tax_amount, shipping_cost, fulfilled, placed_at, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order domain.Order
	if err := sqlx.GetContext(ctx, r.db, &order, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	lines := `
		SELECT id, order_id, sku, quantity, unit_price, total_price
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id
	`
	if err := sqlx.SelectContext(ctx, r.db, &order.Lines, lines, id); err != nil {
		return nil, fmt.Errorf("failed to get order lines: %w", err)
	}

	return &order, nil
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	query := `
		SELECT id, reference, customer, total_amount, tax_amount, shipping_cost, fulfilled, placed_at, created_at, updated_at
		FROM orders
		ORDER BY id
	`

	var orders []*domain.Order
	if err := sqlx.SelectContext(ctx, r.db, &orders, query); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	lines := `
		SELECT id, order_id, sku, quantity, unit_price, total_price
		FROM order_lines
		ORDER BY order_id, id
	`
	var allLines []domain.OrderLine
	if err := sqlx.SelectContext(ctx, r.db, &allLines, lines); err != nil {
		return nil, fmt.Errorf("failed to list order lines: %w", err)
	}

	byOrder := make(map[int64][]domain.OrderLine)
	for _, line := range allLines {
		byOrder[line.OrderID] = append(byOrder[line.OrderID], line)
	}
	for _, order := range orders {
		order.Lines = byOrder[order.ID]
	}

	return orders, nil
}

func (r *orderRepository) MarkFulfilled(ctx context.Context, id int64) error {
	query := `
		UPDATE orders
		SET fulfilled = TRUE, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark order fulfilled: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
