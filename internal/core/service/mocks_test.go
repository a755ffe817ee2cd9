package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
)

var errStorage = errors.New("storage unavailable")

func newTestLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

// Mock LedgerRepository
type mockLedgerRepo struct {
	mu       sync.Mutex
	stock    map[string]int
	txs      map[string][]domain.Transaction
	listErr  error
	listHits int
}

func newMockLedgerRepo() *mockLedgerRepo {
	return &mockLedgerRepo{stock: map[string]int{}, txs: map[string][]domain.Transaction{}}
}

func (m *mockLedgerRepo) ListTransactions(ctx context.Context, itemID string) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listHits++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.txs[itemID], nil
}

func (m *mockLedgerRepo) AppendTransaction(ctx context.Context, tx domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stock[tx.ItemID]+tx.Delta < 0 {
		return domain.ErrInsufficientStock
	}
	m.stock[tx.ItemID] += tx.Delta
	tx.Seq = int64(len(m.txs[tx.ItemID]) + 1)
	m.txs[tx.ItemID] = append(m.txs[tx.ItemID], tx)
	return nil
}

// Mock OrderRepository
type mockOrderRepo struct {
	mu       sync.Mutex
	orders   map[string]*domain.Order
	items    map[string][]domain.OrderItem
	itemsErr error
	delay    time.Duration
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: map[string]*domain.Order{}, items: map[string][]domain.OrderItem{}}
}

func (m *mockOrderRepo) ListOrders(ctx context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderRepo) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}
	return m.items[orderID], nil
}

func (m *mockOrderRepo) TransitionOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, from []domain.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if o.Status == f {
			o.Status = status
			return true, nil
		}
	}
	return false, nil
}

func (m *mockOrderRepo) status(orderID string) domain.OrderStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[orderID].Status
}

// Mock ProductRepository
type mockProductRepo struct {
	mu       sync.Mutex
	products map[string]domain.Product
	tagHits  int
	tagsErr  error
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: map[string]domain.Product{}}
}

func (m *mockProductRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProductRepo) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) CreateProduct(ctx context.Context, product domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) UpdateProduct(ctx context.Context, product domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) ListUniqueTags(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tagHits++
	if m.tagsErr != nil {
		return nil, m.tagsErr
	}
	var out []string
	for _, p := range m.products {
		out = append(out, p.Tags...)
	}
	return out, nil
}

// Mock TagCache
type mockTagCache struct {
	mu          sync.Mutex
	tags        []string
	err         error
	invalidated int
}

func (m *mockTagCache) GetTags(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.tags, nil
}

func (m *mockTagCache) SetTags(ctx context.Context, tags []string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.tags = tags
	return nil
}

func (m *mockTagCache) InvalidateTags(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated++
	m.tags = nil
	return m.err
}

// Mock IdempotencyStore and OAuthStateStore
type mockKeyStore struct {
	mu     sync.Mutex
	claims map[string]bool
	states map[string]bool
}

func newMockKeyStore() *mockKeyStore {
	return &mockKeyStore{claims: map[string]bool{}, states: map[string]bool{}}
}

func (m *mockKeyStore) SetIdempotency(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claims[key] {
		return false, nil
	}
	m.claims[key] = true
	return true, nil
}

func (m *mockKeyStore) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, key)
	return nil
}

func (m *mockKeyStore) SaveState(ctx context.Context, state string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state] = true
	return nil
}

func (m *mockKeyStore) ConsumeState(ctx context.Context, state string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.states[state] {
		return false, nil
	}
	delete(m.states, state)
	return true, nil
}

// Mock PaymentRepository
type mockPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]domain.Payment
	events   map[string]bool
	creds    *domain.ProviderCredentials
	saves    int
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: map[string]domain.Payment{}, events: map[string]bool{}}
}

func (m *mockPaymentRepo) UpsertPayment(ctx context.Context, payment domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.payments[payment.ProviderID]; ok && payment.UpdatedAt.Before(cur.UpdatedAt) {
		return nil
	}
	m.payments[payment.ProviderID] = payment
	return nil
}

func (m *mockPaymentRepo) RecordWebhookEvent(ctx context.Context, n domain.Notification) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.events[n.Key()] {
		return false, nil
	}
	m.events[n.Key()] = true
	return true, nil
}

func (m *mockPaymentRepo) SaveCredentials(ctx context.Context, creds domain.ProviderCredentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.creds = &creds
	return nil
}

func (m *mockPaymentRepo) LatestCredentials(ctx context.Context) (*domain.ProviderCredentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds == nil {
		return nil, domain.ErrNotConnected
	}
	cp := *m.creds
	return &cp, nil
}

// Mock PaymentProvider
type mockProvider struct {
	mu          sync.Mutex
	payments    map[string]domain.Payment
	exchangeErr error
	fetchErr    error
	exchanges   int
}

func newMockProvider() *mockProvider {
	return &mockProvider{payments: map[string]domain.Payment{}}
}

func (m *mockProvider) AuthorizationURL(state string) string {
	return "https://auth.example.test/authorization?state=" + state
}

func (m *mockProvider) ExchangeCode(ctx context.Context, code string) (*domain.ProviderCredentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchanges++
	if m.exchangeErr != nil {
		return nil, m.exchangeErr
	}
	return &domain.ProviderCredentials{ProviderUserID: "seller-1", AccessToken: "token-" + code}, nil
}

func (m *mockProvider) GetPayment(ctx context.Context, accessToken, paymentID string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	p, ok := m.payments[paymentID]
	if !ok {
		return nil, errors.New("payment not found at provider")
	}
	return &p, nil
}

// Mock SessionStore
type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	err      error
}

func (m *mockSessionStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *mockSessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.sessions, sessionID)
	return nil
}
