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

type returnRepository struct {
	db *DB
}

func NewReturnRepository(db *DB) repository.ReturnRepository {
	return &returnRepository{db: db}
}

func (r *returnRepository) CreateReturn(ctx context.Context, ret *domain.Return) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		header := `
			INSERT INTO returns (reference, order_id, status, received_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, header,
			ret.Reference, ret.OrderID, ret.Status, ret.ReceivedAt,
		).Scan(&ret.ID, &ret.CreatedAt, &ret.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert return: %w", err)
		}

		line := `
			INSERT INTO return_lines (return_id, sku, quantity)
			VALUES ($1, $2, $3)
			RETURNING id
		`
		for i := range ret.Lines {
			ret.Lines[i].ReturnID = ret.ID
			err := tx.QueryRowContext(ctx, line,
				ret.ID, ret.Lines[i].SKU, ret.Lines[i].Quantity,
			).Scan(&ret.Lines[i].ID)
			if err != nil {
				return fmt.Errorf("failed to insert return line: %w", err)
			}
		}

		return nil
	})
}

func (r *returnRepository) GetReturnByID(ctx context.Context, id int64) (*domain.Return, error) {
	query := `
		SELECT id, reference, order_id, status, received_at, created_at, updated_at
		FROM returns
		WHERE id = $1
	`

	var ret domain.Return
	if err := sqlx.GetContext(ctx, r.db, &ret, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get return: %w", err)
	}

	lines := `
		SELECT id, return_id, sku, quantity
		FROM return_lines
		WHERE return_id = $1
		ORDER BY id
	`
	if err := sqlx.SelectContext(ctx, r.db, &ret.Lines, lines, id); err != nil {
		return nil, fmt.Errorf("failed to get return lines: %w", err)
	}

	return &ret, nil
}

func (r *returnRepository) ListReturns(ctx context.Context) ([]*domain.Return, error) {
	query := `
		SELECT id, reference, order_id, status, received_at, created_at, updated_at
		FROM returns
		ORDER BY id
	`

	var rets []*domain.Return
	if err := sqlx.SelectContext(ctx, r.db, &rets, query); err != nil {
		return nil, fmt.Errorf("failed to list returns: %w", err)
	}
	if len(rets) == 0 {
		return rets, nil
	}

	lines := `
		SELECT id, return_id, sku, quantity
		FROM return_lines
		ORDER BY return_id, id
	`
	var allLines []domain.ReturnLine
	if err := sqlx.SelectContext(ctx, r.db, &allLines, lines); err != nil {
		return nil, fmt.Errorf("failed to list return lines: %w", err)
	}

	byReturn := make(map[int64][]domain.ReturnLine)
	for _, line := range allLines {
		byReturn[line.ReturnID] = append(byReturn[line.ReturnID], line)
	}
	for _, ret := range rets {
		ret.Lines = byReturn[ret.ID]
	}

	return rets, nil
}

func (r *returnRepository) UpdateReturnStatus(ctx context.Context, id int64, status int) error {
	query := `
		UPDATE returns
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update return status: %w", err)
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
