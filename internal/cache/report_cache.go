// Package cache provides a Redis-backed cache for the read-heavy reporting
// endpoints. Every ledger mutation invalidates the whole report prefix;
// valuation and top-product figures are cheap to rebuild and must never be
// served stale across a mutation.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stocklens/backend/internal/config"
	"github.com/stocklens/backend/internal/domain"
)

const (
	reportKeyPrefix     = "reports:"
	valuationKey        = reportKeyPrefix + "valuation"
	topProductsKey      = reportKeyPrefix + "top_products"
	reportScanBatchSize = 100
)

type ReportCache interface {
	GetValuation(ctx context.Context) (*domain.ValuationReport, bool, error)
	SetValuation(ctx context.Context, report *domain.ValuationReport) error
	GetTopProducts(ctx context.Context, limit int) ([]domain.ProductRevenue, bool, error)
	SetTopProducts(ctx context.Context, limit int, items []domain.ProductRevenue) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{client: client, ttl: ttl}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) GetValuation(ctx context.Context) (*domain.ValuationReport, bool, error) {
	payload, err := c.client.Get(ctx, valuationKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.ValuationReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode valuation cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisReportCache) SetValuation(ctx context.Context, report *domain.ValuationReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode valuation cache: %w", err)
	}

	if err := c.client.Set(ctx, valuationKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) GetTopProducts(ctx context.Context, limit int) ([]domain.ProductRevenue, bool, error) {
	payload, err := c.client.Get(ctx, topProductsCacheKey(limit)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var items []domain.ProductRevenue
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false, fmt.Errorf("decode top products cache: %w", err)
	}

	return items, true, nil
}

func (c *redisReportCache) SetTopProducts(ctx context.Context, limit int, items []domain.ProductRevenue) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode top products cache: %w", err)
	}

	if err := c.client.Set(ctx, topProductsCacheKey(limit), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, reportKeyPrefix, reportScanBatchSize)
}

func (n *noopReportCache) GetValuation(ctx context.Context) (*domain.ValuationReport, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetValuation(ctx context.Context, report *domain.ValuationReport) error {
	return nil
}

func (n *noopReportCache) GetTopProducts(ctx context.Context, limit int) ([]domain.ProductRevenue, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetTopProducts(ctx context.Context, limit int, items []domain.ProductRevenue) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func topProductsCacheKey(limit int) string {
	return fmt.Sprintf("%s:%d", topProductsKey, limit)
}
