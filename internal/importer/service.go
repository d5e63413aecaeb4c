package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/service"
)

// ImportResult summarizes one import run.
type ImportResult struct {
	Created    int      `json:"created"`
	References []string `json:"references"`
}

// Service turns parsed CSV rows into stored purchase orders. Orders are
// created in Draft; delivery (and thus the cost ledger) is driven through
// the status API afterwards.
type Service struct {
	poService *service.PurchaseOrderService
}

func NewService(poService *service.PurchaseOrderService) *Service {
	return &Service{poService: poService}
}

func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	requests, err := ParsePurchaseOrders(r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, req := range requests {
		po, err := s.createOrder(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to import %s: %w", req.Reference, err)
		}
		result.Created++
		result.References = append(result.References, po.Reference)
	}

	log.Info().Int("created", result.Created).Msg("purchase order import completed")
	return result, nil
}

func (s *Service) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	return s.Import(ctx, file)
}

func (s *Service) createOrder(ctx context.Context, req *domain.CreatePurchaseOrderRequest) (*domain.PurchaseOrder, error) {
	return s.poService.Create(ctx, req)
}

// NamedReader pairs an upload with its filename for error reporting.
type NamedReader struct {
	Name   string
	Reader io.Reader
}

// ImportAll processes several CSV files concurrently and merges their
// results. Any file failing fails the whole batch; files that already
// imported are not rolled back.
func (s *Service) ImportAll(ctx context.Context, files []NamedReader) (*ImportResult, error) {
	var (
		wg       sync.WaitGroup
		resultCh = make(chan *ImportResult, len(files))
		errCh    = make(chan error, len(files))
	)

	for _, file := range files {
		wg.Add(1)
		go func(f NamedReader) {
			defer wg.Done()

			result, err := s.Import(ctx, f.Reader)
			if err != nil {
				errCh <- fmt.Errorf("error importing file %s: %w", f.Name, err)
				return
			}

			resultCh <- result
		}(file)
	}

	go func() {
		wg.Wait()
		close(resultCh)
		close(errCh)
	}()

	merged := &ImportResult{}
	for result := range resultCh {
		merged.Created += result.Created
		merged.References = append(merged.References, result.References...)
	}

	if len(errCh) > 0 {
		var errs []error
		for err := range errCh {
			errs = append(errs, err)
		}
		return nil, fmt.Errorf("errors importing files: %v", errs)
	}

	return merged, nil
}
