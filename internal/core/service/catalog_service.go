package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
	"github.com/rl1809/shop-backoffice/internal/port"
)

type CatalogService struct {
	repo port.CatalogRepository
}

func NewCatalogService(repo port.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

// ListItems filters by category when categoryID is non-empty.
func (s *CatalogService) ListItems(ctx context.Context, categoryID string) ([]domain.Item, error) {
	items, err := s.repo.ListItems(ctx, categoryID)
	if err != nil {
		return nil, errors.Wrapf(err, "list items (category %q)", categoryID)
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

func (s *CatalogService) ListAllItems(ctx context.Context) ([]domain.ItemListing, error) {
	items, err := s.repo.ListAllItems(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list all items")
	}
	if items == nil {
		items = []domain.ItemListing{}
	}
	return items, nil
}
