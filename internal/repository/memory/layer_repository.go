package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/stocklens/backend/internal/costing"
	"github.com/stocklens/backend/internal/domain"
)

// LayersBySKU returns copies of the SKU's layers, oldest acquisition first.
func (s *Store) LayersBySKU(ctx context.Context, sku string) ([]domain.CostLayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.layersBySKU[sku]
	layers := make([]domain.CostLayer, 0, len(stored))
	for _, layer := range stored {
		layers = append(layers, *layer)
	}
	return layers, nil
}

func (s *Store) InsertLayer(ctx context.Context, layer *domain.CostLayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextLayerID++
	layer.ID = s.nextLayerID
	layer.CreatedAt = time.Now()

	stored := *layer
	s.layersBySKU[layer.SKU] = append(s.layersBySKU[layer.SKU], &stored)
	sortLayers(s.layersBySKU[layer.SKU])
	return nil
}

// ApplyTakes decrements layer quantities in one critical section. Every
// take is validated before any is applied, so a bad batch changes nothing.
func (s *Store) ApplyTakes(ctx context.Context, sku string, takes []costing.LayerTake) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[int64]*domain.CostLayer)
	for _, layer := range s.layersBySKU[sku] {
		byID[layer.ID] = layer
	}

	for _, take := range takes {
		layer, ok := byID[take.LayerID]
		if !ok {
			return fmt.Errorf("layer %d not found for sku %s", take.LayerID, sku)
		}
		if take.Quantity <= 0 || take.Quantity > layer.Quantity {
			return fmt.Errorf("layer %d: take %d exceeds remaining %d", take.LayerID, take.Quantity, layer.Quantity)
		}
	}

	for _, take := range takes {
		byID[take.LayerID].Quantity -= take.Quantity
	}
	return nil
}

func (s *Store) DeleteByOrigin(ctx context.Context, sku, originID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.layersBySKU[sku][:0]
	removed := 0
	for _, layer := range s.layersBySKU[sku] {
		if layer.OriginID == originID {
			removed += layer.Quantity
			continue
		}
		kept = append(kept, layer)
	}

	if len(kept) == 0 {
		delete(s.layersBySKU, sku)
	} else {
		s.layersBySKU[sku] = kept
	}
	return removed, nil
}

func (s *Store) SKUs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	skus := make([]string, 0, len(s.layersBySKU))
	for sku := range s.layersBySKU {
		skus = append(skus, sku)
	}
	return skus, nil
}
