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

type purchaseOrderRepository struct {
	db *DB
}

func NewPurchaseOrderRepository(db *DB) repository.PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

func (r *purchaseOrderRepository) CreatePurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		header := `
			INSERT INTO purchase_orders (reference, supplier, status, delivery_cost, ordered_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, header,
			po.Reference, po.Supplier, po.Status, po.DeliveryCost, po.OrderedAt,
		).Scan(&po.ID, &po.CreatedAt, &po.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert purchase order: %w", err)
		}

		line := `
			INSERT INTO purchase_order_lines (purchase_order_id, sku, product_name, quantity, unit_cost)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		for i := range po.Lines {
			po.Lines[i].PurchaseOrderID = po.ID
			err := tx.QueryRowContext(ctx, line,
				po.ID, po.Lines[i].SKU, po.Lines[i].ProductName, po.Lines[i].Quantity, po.Lines[i].UnitCost,
			).Scan(&po.Lines[i].ID)
			if err != nil {
				return fmt.Errorf("failed to insert purchase order line: %w", err)
			}
		}

		return nil
	})
}

func (r *purchaseOrderRepository) GetPurchaseOrderByID(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	query := `
		SELECT id, reference, supplier, status, delivery_cost, ordered_at, created_at, updated_at
		FROM purchase_orders
		WHERE id = $1
	`

	var po domain.PurchaseOrder
	if err := sqlx.GetContext(ctx, r.db, &po, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}

	lines := `
		SELECT id, purchase_order_id, sku, product_name, quantity, unit_cost
		FROM purchase_order_lines
		WHERE purchase_order_id = $1
		ORDER BY id
	`
	if err := sqlx.SelectContext(ctx, r.db, &po.Lines, lines, id); err != nil {
		return nil, fmt.Errorf("failed to get purchase order lines: %w", err)
	}

	return &po, nil
}

func (r *purchaseOrderRepository) ListPurchaseOrders(ctx context.Context) ([]*domain.PurchaseOrder, error) {
	query := `
		SELECT id, reference, supplier, status, delivery_cost, ordered_at, created_at, updated_at
		FROM purchase_orders
		ORDER BY id
	`

	var pos []*domain.PurchaseOrder
	if err := sqlx.SelectContext(ctx, r.db, &pos, query); err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	if len(pos) == 0 {
		return pos, nil
	}

	lines := `
		SELECT id, purchase_order_id, sku, product_name, quantity, unit_cost
		FROM purchase_order_lines
		ORDER BY purchase_order_id, id
	`
	var allLines []domain.PurchaseOrderLine
	if err := sqlx.SelectContext(ctx, r.db, &allLines, lines); err != nil {
		return nil, fmt.Errorf("failed to list purchase order lines: %w", err)
	}

	byPO := make(map[int64][]domain.PurchaseOrderLine)
	for _, line := range allLines {
		byPO[line.PurchaseOrderID] = append(byPO[line.PurchaseOrderID], line)
	}
	for _, po := range pos {
		po.Lines = byPO[po.ID]
	}

	return pos, nil
}

func (r *purchaseOrderRepository) UpdatePurchaseOrderStatus(ctx context.Context, id int64, status int) error {
	query := `
		UPDATE purchase_orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update purchase order status: %w", err)
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

func (r *purchaseOrderRepository) IncomingQuantities(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT l.sku, SUM(l.quantity) AS quantity
		FROM purchase_order_lines l
		JOIN purchase_orders po ON po.id = l.purchase_order_id
		WHERE po.status IN ($1, $2)
		GROUP BY l.sku
	`

	rows, err := r.db.QueryContext(ctx, query, domain.POStatusPending, domain.POStatusInTransit)
	if err != nil {
		return nil, fmt.Errorf("failed to sum incoming quantities: %w", err)
	}
	defer rows.Close()

	incoming := make(map[string]int)
	for rows.Next() {
		var sku string
		var qty int
		if err := rows.Scan(&sku, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan incoming quantity: %w", err)
		}
		incoming[sku] = qty
	}

	return incoming, rows.Err()
}
