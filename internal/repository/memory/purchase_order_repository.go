package memory

import (
	"context"
	"sort"
	"time"

	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/repository"
)

func (s *Store) CreatePurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPOID++
	po.ID = s.nextPOID
	now := time.Now()
	po.CreatedAt = now
	po.UpdatedAt = now
	for i := range po.Lines {
		po.Lines[i].ID = int64(i + 1)
		po.Lines[i].PurchaseOrderID = po.ID
	}

	stored := clonePO(po)
	s.purchaseOrders[po.ID] = stored
	return nil
}

func (s *Store) GetPurchaseOrderByID(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	po, ok := s.purchaseOrders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePO(po), nil
}

func (s *Store) ListPurchaseOrders(ctx context.Context) ([]*domain.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos := make([]*domain.PurchaseOrder, 0, len(s.purchaseOrders))
	for _, po := range s.purchaseOrders {
		pos = append(pos, clonePO(po))
	}
	sort.Slice(pos, func(i, j int) bool { return pos[i].ID < pos[j].ID })
	return pos, nil
}

func (s *Store) UpdatePurchaseOrderStatus(ctx context.Context, id int64, status int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	po, ok := s.purchaseOrders[id]
	if !ok {
		return repository.ErrNotFound
	}
	po.Status = status
	po.UpdatedAt = time.Now()
	return nil
}

func (s *Store) IncomingQuantities(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	incoming := make(map[string]int)
	for _, po := range s.purchaseOrders {
		if po.Status == domain.POStatusDelivered || po.Status == domain.POStatusDraft {
			continue
		}
		for _, line := range po.Lines {
			incoming[line.SKU] += line.Quantity
		}
	}
	return incoming, nil
}

func clonePO(po *domain.PurchaseOrder) *domain.PurchaseOrder {
	clone := *po
	clone.Lines = append([]domain.PurchaseOrderLine(nil), po.Lines...)
	return &clone
}
