package port

import (
	"context"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
)

type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// ListItems returns every item, or only those of categoryID when it is non-empty
	ListItems(ctx context.Context, categoryID string) ([]domain.Item, error)

	// ListAllItems returns the flat item listing joined with category names
	ListAllItems(ctx context.Context) ([]domain.ItemListing, error)
}

type LedgerRepository interface {
	// ListTransactions returns an item's ledger in insertion order
	ListTransactions(ctx context.Context, itemID string) ([]domain.Transaction, error)

	// AppendTransaction inserts the movement and applies its delta to the item
	// atomically, failing with domain.ErrInsufficientStock if stock would go negative
	AppendTransaction(ctx context.Context, tx domain.Transaction) error
}

type OrderRepository interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)

	// GetOrder returns domain.ErrOrderNotFound when the id is unknown
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)

	// TransitionOrderStatus moves the order to status only if its current status is
	// one of from; it reports whether a row changed
	TransitionOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, from []domain.OrderStatus) (bool, error)
}

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// GetProduct returns domain.ErrProductNotFound when the id is unknown
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) error
	UpdateProduct(ctx context.Context, product domain.Product) error

	ListUniqueTags(ctx context.Context) ([]string, error)
}

type PaymentRepository interface {
	// UpsertPayment inserts or overwrites the payment keyed by its provider id
	UpsertPayment(ctx context.Context, payment domain.Payment) error

	// RecordWebhookEvent stores a delivery once; it reports false for a repeat
	RecordWebhookEvent(ctx context.Context, n domain.Notification) (bool, error)

	SaveCredentials(ctx context.Context, creds domain.ProviderCredentials) error

	// LatestCredentials returns domain.ErrNotConnected when no account is linked
	LatestCredentials(ctx context.Context) (*domain.ProviderCredentials, error)
}
