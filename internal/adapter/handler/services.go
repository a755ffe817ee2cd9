package handler

import (
	"context"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
)

type CatalogService interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListItems(ctx context.Context, categoryID string) ([]domain.Item, error)
	ListAllItems(ctx context.Context) ([]domain.ItemListing, error)
}

type LedgerService interface {
	ListTransactions(ctx context.Context, itemID string) ([]domain.Transaction, error)
	RecordTransaction(ctx context.Context, itemID string, delta int, note, actor string) (*domain.Transaction, error)
}

type OrderService interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrderView(ctx context.Context, orderID string) (*domain.OrderView, error)
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, name string, priceCents int64, tags []string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, productID string, patch domain.ProductPatch) (*domain.Product, error)
	ListTags(ctx context.Context) ([]string, error)
}

type PaymentService interface {
	BeginAuthorization(ctx context.Context) (string, error)
	HandleCallback(ctx context.Context, cb domain.ProviderCallback) error
}

type SessionService interface {
	Resolve(ctx context.Context, sessionID string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// Services bundles what the HTTP and gRPC handlers call into.
type Services struct {
	Catalog  CatalogService
	Ledger   LedgerService
	Orders   OrderService
	Products ProductService
	Payments PaymentService
	Sessions SessionService
}
