package checkout

import (
	"context"
	"errors"
	"fmt"

	"goldrefinery/m/domain"
	"goldrefinery/m/internal/policy"
	"goldrefinery/m/internal/store"
)

// ListSales returns a page of sales newest first, scoped to the caller's
// tenant unless the caller is an admin.
func (s *Service) ListSales(ctx context.Context, caller policy.Subject, page store.Page) ([]domain.SaleDetail, int64, error) {
	if err := policy.Authorize(caller, policy.ViewSales, nil); err != nil {
		return nil, 0, err
	}
	sales, total, err := store.ListSales(ctx, s.db, policy.Scope(caller), page)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	return sales, total, nil
}

// GetSale loads one sale with its lines inside the caller's scope.
func (s *Service) GetSale(ctx context.Context, caller policy.Subject, id int64) (*domain.SaleDetail, error) {
	if err := policy.Authorize(caller, policy.ViewSales, nil); err != nil {
		return nil, err
	}
	sale, err := store.GetSale(ctx, s.db, policy.Scope(caller), id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("get sale %d: %w", id, err)
	}
	return sale, nil
}
