package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/stocklens/backend/internal/costing"
	"github.com/stocklens/backend/internal/domain"
)

// LayerRepository persists cost layers. It satisfies costing.LayerRepository.
type LayerRepository struct {
	db *DB
}

func NewLayerRepository(db *DB) *LayerRepository {
	return &LayerRepository{db: db}
}

func (r *LayerRepository) LayersBySKU(ctx context.Context, sku string) ([]domain.CostLayer, error) {
	query := `
		SELECT id, sku, origin_id, quantity, unit_cost, acquired_at, created_at
		FROM cost_layers
		WHERE sku = $1
		ORDER BY acquired_at ASC, id ASC
	`

	var layers []domain.CostLayer
	if err := sqlx.SelectContext(ctx, r.db, &layers, query, sku); err != nil {
		return nil, fmt.Errorf("failed to load cost layers: %w", err)
	}

	return layers, nil
}

func (r *LayerRepository) InsertLayer(ctx context.Context, layer *domain.CostLayer) error {
	query := `
		INSERT INTO cost_layers (sku, origin_id, quantity, unit_cost, acquired_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		layer.SKU, layer.OriginID, layer.Quantity, layer.UnitCost, layer.AcquiredAt,
	).Scan(&layer.ID, &layer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cost layer: %w", err)
	}

	return nil
}

// ApplyTakes decrements layer quantities inside one transaction. The guard
// in the UPDATE keeps quantities from going negative; a take that matches
// no row aborts the whole batch.
func (r *LayerRepository) ApplyTakes(ctx context.Context, sku string, takes []costing.LayerTake) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE cost_layers
			SET quantity = quantity - $1
			WHERE id = $2 AND sku = $3 AND quantity >= $1
		`

		for _, take := range takes {
			res, err := tx.ExecContext(ctx, query, take.Quantity, take.LayerID, sku)
			if err != nil {
				return fmt.Errorf("failed to decrement layer %d: %w", take.LayerID, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read affected rows: %w", err)
			}
			if affected != 1 {
				return fmt.Errorf("layer %d changed concurrently or has insufficient quantity", take.LayerID)
			}
		}

		return nil
	})
}

func (r *LayerRepository) DeleteByOrigin(ctx context.Context, sku, originID string) (int, error) {
	query := `
		DELETE FROM cost_layers
		WHERE sku = $1 AND origin_id = $2
		RETURNING quantity
	`

	var quantities []int
	if err := sqlx.SelectContext(ctx, r.db, &quantities, query, sku, originID); err != nil {
		return 0, fmt.Errorf("failed to delete layers by origin: %w", err)
	}

	removed := 0
	for _, q := range quantities {
		removed += q
	}
	return removed, nil
}

func (r *LayerRepository) SKUs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT sku FROM cost_layers ORDER BY sku`

	var skus []string
	if err := sqlx.SelectContext(ctx, r.db, &skus, query); err != nil {
		return nil, fmt.Errorf("failed to list skus: %w", err)
	}

	return skus, nil
}
