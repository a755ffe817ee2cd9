package handler

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
	"github.com/rl1809/shop-backoffice/internal/core/service"
)

type fakeCatalog struct {
	err error
}

func (f *fakeCatalog) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: "c-1", Name: "Panadería"}}, f.err
}

func (f *fakeCatalog) ListItems(ctx context.Context, categoryID string) ([]domain.Item, error) {
	return []domain.Item{{ID: "i-1", CategoryID: categoryID}}, f.err
}

func (f *fakeCatalog) ListAllItems(ctx context.Context) ([]domain.ItemListing, error) {
	return []domain.ItemListing{{ID: "i-1", CategoryName: "Panadería"}}, f.err
}

type fakeLedger struct {
	mu       sync.Mutex
	txs      map[string][]domain.Transaction
	err      error
	recorded []domain.Transaction
}

func (f *fakeLedger) ListTransactions(ctx context.Context, itemID string) ([]domain.Transaction, error) {
	if itemID == "" {
		return nil, service.ErrMissingItemID
	}
	if f.err != nil {
		return nil, f.err
	}
	txs := f.txs[itemID]
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return txs, nil
}

func (f *fakeLedger) RecordTransaction(ctx context.Context, itemID string, delta int, note, actor string) (*domain.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	tx := domain.Transaction{ID: "tx-1", ItemID: itemID, Delta: delta, Note: note, CreatedBy: actor}
	f.mu.Lock()
	f.recorded = append(f.recorded, tx)
	f.mu.Unlock()
	return &tx, nil
}

type fakeOrders struct {
	views map[string]*domain.OrderView
}

func (f *fakeOrders) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return []domain.Order{}, nil
}

func (f *fakeOrders) GetOrderView(ctx context.Context, orderID string) (*domain.OrderView, error) {
	v, ok := f.views[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return v, nil
}

type fakeProducts struct {
	created []string
}

func (f *fakeProducts) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return []domain.Product{}, nil
}

func (f *fakeProducts) CreateProduct(ctx context.Context, name string, priceCents int64, tags []string) (*domain.Product, error) {
	if name == "" {
		return nil, service.ErrMissingProductName
	}
	f.created = append(f.created, name)
	return &domain.Product{ID: "p-1", Name: name, PriceCents: priceCents, Tags: tags}, nil
}

func (f *fakeProducts) UpdateProduct(ctx context.Context, productID string, patch domain.ProductPatch) (*domain.Product, error) {
	if productID != "p-1" {
		return nil, domain.ErrProductNotFound
	}
	return &domain.Product{ID: productID}, nil
}

func (f *fakeProducts) ListTags(ctx context.Context) ([]string, error) {
	return []string{"dulce", "pan"}, nil
}

type fakePayments struct {
	mu        sync.Mutex
	callbacks []domain.ProviderCallback
	err       error
}

func (f *fakePayments) BeginAuthorization(ctx context.Context) (string, error) {
	return "https://auth.example.test/authorization?state=s-1", nil
}

func (f *fakePayments) HandleCallback(ctx context.Context, cb domain.ProviderCallback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, cb)
	if f.err != nil {
		return f.err
	}
	if cb.Code == "" && cb.Notification == nil {
		return service.ErrInvalidCallback
	}
	return nil
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	deleted  []string
}

func (f *fakeSessions) Resolve(ctx context.Context, sessionID string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (f *fakeSessions) Logout(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	f.deleted = append(f.deleted, sessionID)
	return nil
}

type testDeps struct {
	catalog  *fakeCatalog
	ledger   *fakeLedger
	orders   *fakeOrders
	products *fakeProducts
	payments *fakePayments
	sessions *fakeSessions
	hook     *test.Hook
}

func newTestDeps() *testDeps {
	return &testDeps{
		catalog:  &fakeCatalog{},
		ledger:   &fakeLedger{txs: map[string][]domain.Transaction{}},
		orders:   &fakeOrders{views: map[string]*domain.OrderView{}},
		products: &fakeProducts{},
		payments: &fakePayments{},
		sessions: &fakeSessions{sessions: map[string]domain.Session{
			"staff-session":   {ID: "staff-session", UserID: "u-staff", Role: domain.RoleStaff},
			"manager-session": {ID: "manager-session", UserID: "u-manager", Role: domain.RoleManager},
			"admin-session":   {ID: "admin-session", UserID: "u-admin", Role: domain.RoleAdmin},
			"none-session":    {ID: "none-session", UserID: "u-none", Role: domain.RoleNone},
		}},
	}
}

func (d *testDeps) services() Services {
	return Services{
		Catalog:  d.catalog,
		Ledger:   d.ledger,
		Orders:   d.orders,
		Products: d.products,
		Payments: d.payments,
		Sessions: d.sessions,
	}
}

func (d *testDeps) logger() *logrus.Logger {
	logger, hook := test.NewNullLogger()
	d.hook = hook
	return logger
}

func (d *testDeps) errorEntries() int {
	n := 0
	for _, e := range d.hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			n++
		}
	}
	return n
}
