package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
)

type MySQLAdapter struct {
	db *sqlx.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: sqlx.NewDb(db, "mysql")}
}

func (m *MySQLAdapter) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	if err := m.db.SelectContext(ctx, &categories, `SELECT id, name FROM categories ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "query categories")
	}
	return categories, nil
}

func (m *MySQLAdapter) ListItems(ctx context.Context, categoryID string) ([]domain.Item, error) {
	query := `
		SELECT id, category_id, name, sku, quantity, created_at, updated_at
		FROM items`
	var args []any
	if categoryID != "" {
		query += ` WHERE category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY name`

	items := []domain.Item{}
	if err := m.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, errors.Wrap(err, "query items")
	}
	return items, nil
}

func (m *MySQLAdapter) ListAllItems(ctx context.Context) ([]domain.ItemListing, error) {
	items := []domain.ItemListing{}
	err := m.db.SelectContext(ctx, &items, `
		SELECT i.id, i.name, i.sku, i.quantity, i.category_id, c.name AS category_name
		FROM items i
		JOIN categories c ON c.id = i.category_id
		ORDER BY c.name, i.name`)
	if err != nil {
		return nil, errors.Wrap(err, "query item listing")
	}
	return items, nil
}

func (m *MySQLAdapter) ListTransactions(ctx context.Context, itemID string) ([]domain.Transaction, error) {
	txs := []domain.Transaction{}
	err := m.db.SelectContext(ctx, &txs, `
		SELECT seq, id, item_id, delta, note, created_by, created_at
		FROM inventory_transactions
		WHERE item_id = ?
		ORDER BY seq`, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "query transactions")
	}
	return txs, nil
}

// AppendTransaction writes the ledger row and moves the item quantity in one
// transaction. The quantity update is guarded so stock never goes negative.
func (m *MySQLAdapter) AppendTransaction(ctx context.Context, t domain.Transaction) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE items
		SET quantity = quantity + ?, updated_at = ?
		WHERE id = ? AND quantity + ? >= 0`,
		t.Delta, t.CreatedAt, t.ItemID, t.Delta,
	)
	if err != nil {
		return errors.Wrap(err, "update item quantity")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "item rows affected")
	}
	if rows == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM items WHERE id = ?)`, t.ItemID); err != nil {
			return errors.Wrap(err, "check item")
		}
		if !exists {
			return domain.ErrItemNotFound
		}
		return domain.ErrInsufficientStock
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO inventory_transactions (id, item_id, delta, note, created_by, created_at)
		VALUES (:id, :item_id, :delta, :note, :created_by, :created_at)`, t)
	if err != nil {
		return errors.Wrap(err, "insert transaction")
	}

	return errors.Wrap(tx.Commit(), "commit")
}

func (m *MySQLAdapter) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders := []domain.Order{}
	err := m.db.SelectContext(ctx, &orders, `
		SELECT id, customer_name, status, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	return orders, nil
}

func (m *MySQLAdapter) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	err := m.db.GetContext(ctx, &order, `
		SELECT id, customer_name, status, created_at, updated_at
		FROM orders WHERE id = ?`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query order")
	}
	return &order, nil
}

// ListOrderItems reads the price snapshot stored on each line, not the
// current product price.
func (m *MySQLAdapter) ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	items := []domain.OrderItem{}
	err := m.db.SelectContext(ctx, &items, `
		SELECT oi.id, oi.order_id, oi.product_id,
		       COALESCE(NULLIF(oi.product_name, ''), p.name, '') AS product_name,
		       oi.quantity, oi.unit_price_cents
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "query order items")
	}
	return items, nil
}

func (m *MySQLAdapter) TransitionOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, from []domain.OrderStatus) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	query, args, err := sqlx.In(`
		UPDATE orders SET status = ?, updated_at = ?
		WHERE id = ? AND status IN (?)`,
		string(status), time.Now().UTC(), orderID, allowed)
	if err != nil {
		return false, errors.Wrap(err, "build status update")
	}

	result, err := m.db.ExecContext(ctx, m.db.Rebind(query), args...)
	if err != nil {
		return false, errors.Wrap(err, "update order status")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "order rows affected")
	}
	return rows > 0, nil
}

type productTag struct {
	ProductID string `db:"product_id"`
	Tag       string `db:"tag"`
}

func (m *MySQLAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	err := m.db.SelectContext(ctx, &products, `
		SELECT id, name, price_cents, created_at, updated_at
		FROM products ORDER BY name, id`)
	if err != nil {
		return nil, errors.Wrap(err, "query products")
	}

	var tags []productTag
	if err := m.db.SelectContext(ctx, &tags, `SELECT product_id, tag FROM product_tags ORDER BY tag`); err != nil {
		return nil, errors.Wrap(err, "query product tags")
	}
	byProduct := make(map[string][]string, len(products))
	for _, t := range tags {
		byProduct[t.ProductID] = append(byProduct[t.ProductID], t.Tag)
	}
	for i := range products {
		products[i].Tags = byProduct[products[i].ID]
	}
	return products, nil
}

func (m *MySQLAdapter) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var product domain.Product
	err := m.db.GetContext(ctx, &product, `
		SELECT id, name, price_cents, created_at, updated_at
		FROM products WHERE id = ?`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query product")
	}

	if err := m.db.SelectContext(ctx, &product.Tags,
		`SELECT tag FROM product_tags WHERE product_id = ? ORDER BY tag`, productID); err != nil {
		return nil, errors.Wrap(err, "query product tags")
	}
	return &product, nil
}

func (m *MySQLAdapter) CreateProduct(ctx context.Context, product domain.Product) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO products (id, name, price_cents, created_at, updated_at)
		VALUES (:id, :name, :price_cents, :created_at, :updated_at)`, product)
	if err != nil {
		return errors.Wrap(err, "insert product")
	}
	if err := insertTags(ctx, tx, product.ID, product.Tags); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "commit")
}

// UpdateProduct overwrites the product row and replaces its tag set.
func (m *MySQLAdapter) UpdateProduct(ctx context.Context, product domain.Product) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	result, err := tx.NamedExecContext(ctx, `
		UPDATE products
		SET name = :name, price_cents = :price_cents, updated_at = :updated_at
		WHERE id = :id`, product)
	if err != nil {
		return errors.Wrap(err, "update product")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "product rows affected")
	}
	if rows == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, product.ID); err != nil {
			return errors.Wrap(err, "check product")
		}
		if !exists {
			return domain.ErrProductNotFound
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_tags WHERE product_id = ?`, product.ID); err != nil {
		return errors.Wrap(err, "clear product tags")
	}
	if err := insertTags(ctx, tx, product.ID, product.Tags); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "commit")
}

func insertTags(ctx context.Context, tx *sqlx.Tx, productID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	rows := make([]productTag, len(tags))
	for i, tag := range tags {
		rows[i] = productTag{ProductID: productID, Tag: tag}
	}
	_, err := tx.NamedExecContext(ctx, `
		INSERT IGNORE INTO product_tags (product_id, tag)
		VALUES (:product_id, :tag)`, rows)
	return errors.Wrap(err, "insert product tags")
}

func (m *MySQLAdapter) ListUniqueTags(ctx context.Context) ([]string, error) {
	tags := []string{}
	if err := m.db.SelectContext(ctx, &tags, `SELECT DISTINCT tag FROM product_tags ORDER BY tag`); err != nil {
		return nil, errors.Wrap(err, "query tags")
	}
	return tags, nil
}

// UpsertPayment keeps the row with the newest provider update time. The
// updated_at assignment must stay last: MySQL applies the list in order.
func (m *MySQLAdapter) UpsertPayment(ctx context.Context, payment domain.Payment) error {
	_, err := m.db.NamedExecContext(ctx, `
		INSERT INTO payments (provider_id, order_id, status, status_detail, amount_cents, currency, approved_at, updated_at)
		VALUES (:provider_id, :order_id, :status, :status_detail, :amount_cents, :currency, :approved_at, :updated_at)
		ON DUPLICATE KEY UPDATE
			order_id = IF(VALUES(updated_at) >= updated_at, VALUES(order_id), order_id),
			status = IF(VALUES(updated_at) >= updated_at, VALUES(status), status),
			status_detail = IF(VALUES(updated_at) >= updated_at, VALUES(status_detail), status_detail),
			amount_cents = IF(VALUES(updated_at) >= updated_at, VALUES(amount_cents), amount_cents),
			currency = IF(VALUES(updated_at) >= updated_at, VALUES(currency), currency),
			approved_at = IF(VALUES(updated_at) >= updated_at, VALUES(approved_at), approved_at),
			updated_at = GREATEST(updated_at, VALUES(updated_at))`, payment)
	return errors.Wrap(err, "upsert payment")
}

func (m *MySQLAdapter) RecordWebhookEvent(ctx context.Context, n domain.Notification) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT IGNORE INTO webhook_events (delivery_key, topic, action, resource_id, received_at)
		VALUES (?, ?, ?, ?, ?)`,
		n.Key(), string(n.Topic), n.Action, n.ResourceID, time.Now().UTC(),
	)
	if err != nil {
		return false, errors.Wrap(err, "insert webhook event")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "webhook event rows affected")
	}
	return rows == 1, nil
}

func (m *MySQLAdapter) SaveCredentials(ctx context.Context, creds domain.ProviderCredentials) error {
	_, err := m.db.NamedExecContext(ctx, `
		INSERT INTO provider_credentials
			(provider_user_id, access_token, refresh_token, public_key, scope, live_mode, expires_at, updated_at)
		VALUES
			(:provider_user_id, :access_token, :refresh_token, :public_key, :scope, :live_mode, :expires_at, :updated_at)
		ON DUPLICATE KEY UPDATE
			access_token = VALUES(access_token),
			refresh_token = VALUES(refresh_token),
			public_key = VALUES(public_key),
			scope = VALUES(scope),
			live_mode = VALUES(live_mode),
			expires_at = VALUES(expires_at),
			updated_at = VALUES(updated_at)`, creds)
	return errors.Wrap(err, "upsert provider credentials")
}

func (m *MySQLAdapter) LatestCredentials(ctx context.Context) (*domain.ProviderCredentials, error) {
	var creds domain.ProviderCredentials
	err := m.db.GetContext(ctx, &creds, `
		SELECT provider_user_id, access_token, refresh_token, public_key, scope, live_mode, expires_at, updated_at
		FROM provider_credentials
		ORDER BY updated_at DESC
		LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotConnected
	}
	if err != nil {
		return nil, errors.Wrap(err, "query provider credentials")
	}
	return &creds, nil
}
