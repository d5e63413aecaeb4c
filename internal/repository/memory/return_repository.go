package memory

import (
	"context"
	"sort"
	"time"

	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/repository"
)

func (s *Store) CreateReturn(ctx context.Context, ret *domain.Return) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextReturnID++
	ret.ID = s.nextReturnID
	now := time.Now()
	ret.CreatedAt = now
	ret.UpdatedAt = now
	for i := range ret.Lines {
		ret.Lines[i].ID = int64(i + 1)
		ret.Lines[i].ReturnID = ret.ID
	}

	s.returns[ret.ID] = cloneReturn(ret)
	return nil
}

func (s *Store) GetReturnByID(ctx context.Context, id int64) (*domain.Return, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret, ok := s.returns[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneReturn(ret), nil
}

func (s *Store) ListReturns(ctx context.Context) ([]*domain.Return, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rets := make([]*domain.Return, 0, len(s.returns))
	for _, ret := range s.returns {
		rets = append(rets, cloneReturn(ret))
	}
	sort.Slice(rets, func(i, j int) bool { return rets[i].ID < rets[j].ID })
	return rets, nil
}

func (s *Store) UpdateReturnStatus(ctx context.Context, id int64, status int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret, ok := s.returns[id]
	if !ok {
		return repository.ErrNotFound
	}
	ret.Status = status
	ret.UpdatedAt = time.Now()
	return nil
}

func cloneReturn(ret *domain.Return) *domain.Return {
	clone := *ret
	clone.Lines = append([]domain.ReturnLine(nil), ret.Lines...)
	return &clone
}
