package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
)

type mockCatalogRepo struct {
	items []domain.Item
	err   error
}

func (m *mockCatalogRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return nil, m.err
}

func (m *mockCatalogRepo) ListItems(ctx context.Context, categoryID string) ([]domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Item
	for _, it := range m.items {
		if categoryID == "" || it.CategoryID == categoryID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) ListAllItems(ctx context.Context) ([]domain.ItemListing, error) {
	return nil, m.err
}

func TestCatalogService(t *testing.T) {
	repo := &mockCatalogRepo{items: []domain.Item{
		{ID: "i-1", CategoryID: "c-1"},
		{ID: "i-2", CategoryID: "c-2"},
	}}
	svc := NewCatalogService(repo)
	ctx := context.Background()

	items, err := svc.ListItems(ctx, "c-2")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "i-2", items[0].ID)

	items, err = svc.ListItems(ctx, "")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{}, categories)

	listing, err := svc.ListAllItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.ItemListing{}, listing)
}

func TestCatalogService_Errors(t *testing.T) {
	svc := NewCatalogService(&mockCatalogRepo{err: errStorage})
	ctx := context.Background()

	_, err := svc.ListCategories(ctx)
	assert.ErrorIs(t, err, errStorage)
	_, err = svc.ListItems(ctx, "")
	assert.ErrorIs(t, err, errStorage)
	_, err = svc.ListAllItems(ctx)
	assert.ErrorIs(t, err, errStorage)
}
