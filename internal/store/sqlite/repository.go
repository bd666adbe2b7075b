// Package sqlite provides the SQLite-backed implementation of store.Store.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa — the HTTP handlers read while mutations write. The foreign_keys
// pragma is on so the schema's ON DELETE CASCADE rules hold: removing a
// customer removes that customer's orders.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/crm-records/internal/domain"
	"github.com/jcmexdev/crm-records/internal/store"

	// Register the pure-Go SQLite driver.
	// modernc.org/sqlite instead of mattn/go-sqlite3 avoids CGO, which keeps
	// the Docker (Alpine) build trivial.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup.
//
// Monetary amounts (price, total_amount) are stored as exact decimal TEXT,
// the same idiom as the RFC3339 TEXT timestamps: SQLite's REAL type would
// reintroduce the floating-point drift the decimal columns exist to avoid.
// Range filters over these columns CAST to REAL, which is fine for
// filtering; aggregation always happens on the parsed decimals.
const schema = `
CREATE TABLE IF NOT EXISTS customers (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    email       TEXT NOT NULL UNIQUE,
    phone       TEXT,
    created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    price       TEXT NOT NULL,
    stock       INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
    created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id            TEXT PRIMARY KEY,
    customer_id   TEXT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
    order_date    TEXT NOT NULL,
    total_amount  TEXT NOT NULL
);

-- Many-to-many association between orders and products. Rows are written in
-- the same transaction as the order row, so an order is never observable
-- without its products.
CREATE TABLE IF NOT EXISTS order_products (
    order_id    TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id  TEXT NOT NULL REFERENCES products(id),
    PRIMARY KEY (order_id, product_id)
);

CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id);
CREATE INDEX IF NOT EXISTS idx_orders_order_date  ON orders(order_date);
`

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Every statement in this package goes through it, so the same methods work
// both standalone and inside InTransaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository is the SQLite implementation of store.Store.
type Repository struct {
	db *sql.DB
	q  querier
}

var _ store.Store = (*Repository)(nil)

// Open opens (or creates) the SQLite database at the given path and applies
// the schema.
//
//	repo, err := sqlite.Open("./data/crm.db")
func Open(path string) (*Repository, error) {
	// The pure-Go driver takes _pragma query parameters. WAL enables
	// concurrent readers; foreign_keys enforces the cascade rules;
	// busy_timeout waits for locks instead of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3", for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db, q: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// InTransaction implements the atomic multi-write boundary. Reads through
// the tx-scoped store see the transaction's own uncommitted writes, which is
// what makes sequential duplicate-email checks inside a bulk create catch
// duplicates introduced earlier in the same batch.
func (r *Repository) InTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	if _, ok := r.q.(*sql.Tx); ok {
		// Already transactional; run against the enclosing transaction.
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}

	if err := fn(&Repository{db: r.db, q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// ── Customers ────────────────────────────────────────────────────────────────

func (r *Repository) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	const q = `INSERT INTO customers (id, name, email, phone, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := r.q.ExecContext(ctx, q, c.ID, c.Name, c.Email, nullableString(c.Phone), formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: create customer %q: %w", c.Email, err)
	}
	return nil
}

func (r *Repository) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	const q = `
		SELECT id, name, email, COALESCE(phone, ''), created_at
		FROM   customers
		WHERE  id = ?`

	c, err := scanCustomer(r.q.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get customer %q: %w", id, err)
	}
	return c, nil
}

func (r *Repository) CustomerEmailExists(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM customers WHERE email = ?)`

	var exists bool
	if err := r.q.QueryRowContext(ctx, q, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("sqlite: email exists %q: %w", email, err)
	}
	return exists, nil
}

func (r *Repository) ListCustomers(ctx context.Context, f store.CustomerFilter) ([]domain.Customer, error) {
	var where []string
	var args []any

	if f.NameContains != "" {
		where = append(where, "instr(lower(name), lower(?)) > 0")
		args = append(args, f.NameContains)
	}
	if f.EmailContains != "" {
		where = append(where, "instr(lower(email), lower(?)) > 0")
		args = append(args, f.EmailContains)
	}
	if f.PhonePrefix != "" {
		where = append(where, "substr(COALESCE(phone, ''), 1, length(?)) = ?")
		args = append(args, f.PhonePrefix, f.PhonePrefix)
	}
	if f.CreatedAtGte != nil {
		where = append(where, "created_at >= ?")
		args = append(args, formatTime(*f.CreatedAtGte))
	}
	if f.CreatedAtLte != nil {
		where = append(where, "created_at <= ?")
		args = append(args, formatTime(*f.CreatedAtLte))
	}

	q := `SELECT id, name, email, COALESCE(phone, ''), created_at FROM customers` +
		whereClause(where) + ` ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list customers: %w", err)
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: list customers: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// ── Products ─────────────────────────────────────────────────────────────────

func (r *Repository) CreateProduct(ctx context.Context, p *domain.Product) error {
	const q = `INSERT INTO products (id, name, price, stock, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := r.q.ExecContext(ctx, q, p.ID, p.Name, p.Price.String(), p.Stock, formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: create product %q: %w", p.Name, err)
	}
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	const q = `SELECT id, name, price, stock, created_at FROM products WHERE id = ?`

	p, err := scanProduct(r.q.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get product %q: %w", id, err)
	}
	return p, nil
}

func (r *Repository) ListProducts(ctx context.Context, f store.ProductFilter) ([]domain.Product, error) {
	var where []string
	var args []any

	if f.NameContains != "" {
		where = append(where, "instr(lower(name), lower(?)) > 0")
		args = append(args, f.NameContains)
	}
	if f.PriceGte != nil {
		where = append(where, "CAST(price AS REAL) >= ?")
		args = append(args, f.PriceGte.InexactFloat64())
	}
	if f.PriceLte != nil {
		where = append(where, "CAST(price AS REAL) <= ?")
		args = append(args, f.PriceLte.InexactFloat64())
	}
	if f.StockGte != nil {
		where = append(where, "stock >= ?")
		args = append(args, *f.StockGte)
	}
	if f.StockLte != nil {
		where = append(where, "stock <= ?")
		args = append(args, *f.StockLte)
	}
	if f.LowStock {
		where = append(where, "stock < ?")
		args = append(args, lowStockThreshold)
	}

	q := `SELECT id, name, price, stock, created_at FROM products` +
		whereClause(where) + ` ORDER BY name`

	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: list products: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// lowStockThreshold is the stock level below which a product counts as
// low-stock, both for the low_stock filter and the restock pass.
const lowStockThreshold = 10

func (r *Repository) RestockLowProducts(ctx context.Context, threshold, increment int) ([]domain.Product, error) {
	var updated []domain.Product

	err := r.InTransaction(ctx, func(s store.Store) error {
		tx := s.(*Repository)

		const sel = `SELECT id, name, price, stock, created_at FROM products WHERE stock < ? ORDER BY name`
		rows, err := tx.q.QueryContext(ctx, sel, threshold)
		if err != nil {
			return fmt.Errorf("sqlite: select low-stock products: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return fmt.Errorf("sqlite: select low-stock products: %w", err)
			}
			updated = append(updated, *p)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		const upd = `UPDATE products SET stock = stock + ? WHERE stock < ?`
		if _, err := tx.q.ExecContext(ctx, upd, increment, threshold); err != nil {
			return fmt.Errorf("sqlite: restock products: %w", err)
		}

		// The transaction holds the write lock, so patching the snapshot is
		// equivalent to re-reading the rows.
		for i := range updated {
			updated[i].Stock += increment
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (r *Repository) CreateOrder(ctx context.Context, o *domain.Order) error {
	return r.InTransaction(ctx, func(s store.Store) error {
		tx := s.(*Repository)

		const q = `INSERT INTO orders (id, customer_id, order_date, total_amount) VALUES (?, ?, ?, ?)`
		if _, err := tx.q.ExecContext(ctx, q, o.ID, o.CustomerID, formatTime(o.OrderDate), o.TotalAmount.String()); err != nil {
			return fmt.Errorf("sqlite: create order: %w", err)
		}

		const assoc = `INSERT INTO order_products (order_id, product_id) VALUES (?, ?)`
		for _, p := range o.Products {
			if _, err := tx.q.ExecContext(ctx, assoc, o.ID, p.ID); err != nil {
				return fmt.Errorf("sqlite: associate product %q with order: %w", p.ID, err)
			}
		}
		return nil
	})
}

func (r *Repository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
		SELECT o.id, o.customer_id, o.order_date, o.total_amount,
		       c.id, c.name, c.email, COALESCE(c.phone, ''), c.created_at
		FROM   orders o
		JOIN   customers c ON c.id = o.customer_id
		WHERE  o.id = ?`

	o, err := scanOrder(r.q.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order %q: %w", id, err)
	}

	if o.Products, err = r.orderProducts(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repository) ListOrders(ctx context.Context, f store.OrderFilter) ([]domain.Order, error) {
	var where []string
	var args []any

	if f.TotalAmountGte != nil {
		where = append(where, "CAST(o.total_amount AS REAL) >= ?")
		args = append(args, f.TotalAmountGte.InexactFloat64())
	}
	if f.TotalAmountLte != nil {
		where = append(where, "CAST(o.total_amount AS REAL) <= ?")
		args = append(args, f.TotalAmountLte.InexactFloat64())
	}
	if f.OrderDateGte != nil {
		where = append(where, "o.order_date >= ?")
		args = append(args, formatTime(*f.OrderDateGte))
	}
	if f.OrderDateLte != nil {
		where = append(where, "o.order_date <= ?")
		args = append(args, formatTime(*f.OrderDateLte))
	}
	if f.CustomerID != "" {
		where = append(where, "o.customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if f.CustomerNameContains != "" {
		where = append(where, "instr(lower(c.name), lower(?)) > 0")
		args = append(args, f.CustomerNameContains)
	}
	if f.ProductNameContains != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM order_products op
			JOIN products p ON p.id = op.product_id
			WHERE op.order_id = o.id AND instr(lower(p.name), lower(?)) > 0)`)
		args = append(args, f.ProductNameContains)
	}
	if f.ProductID != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM order_products op
			WHERE op.order_id = o.id AND op.product_id = ?)`)
		args = append(args, f.ProductID)
	}

	q := `
		SELECT o.id, o.customer_id, o.order_date, o.total_amount,
		       c.id, c.name, c.email, COALESCE(c.phone, ''), c.created_at
		FROM   orders o
		JOIN   customers c ON c.id = o.customer_id` +
		whereClause(where) + ` ORDER BY o.order_date DESC`

	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: list orders: %w", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Products, err = r.orderProducts(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// orderProducts loads the products referenced by an order.
func (r *Repository) orderProducts(ctx context.Context, orderID string) ([]domain.Product, error) {
	const q = `
		SELECT p.id, p.name, p.price, p.stock, p.created_at
		FROM   products p
		JOIN   order_products op ON op.product_id = p.id
		WHERE  op.order_id = ?
		ORDER BY p.name`

	rows, err := r.q.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: order products %q: %w", orderID, err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: order products %q: %w", orderID, err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// ── Row scanning ─────────────────────────────────────────────────────────────

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(s scanner) (*domain.Customer, error) {
	var c domain.Customer
	var createdAt string
	if err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanProduct(s scanner) (*domain.Product, error) {
	var p domain.Product
	var price, createdAt string
	if err := s.Scan(&p.ID, &p.Name, &price, &p.Stock, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("sqlite: parse price %q: %w", price, err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanOrder(s scanner) (*domain.Order, error) {
	var o domain.Order
	var c domain.Customer
	var orderDate, total, customerCreatedAt string
	if err := s.Scan(&o.ID, &o.CustomerID, &orderDate, &total,
		&c.ID, &c.Name, &c.Email, &c.Phone, &customerCreatedAt); err != nil {
		return nil, err
	}
	var err error
	if o.OrderDate, err = parseTime(orderDate); err != nil {
		return nil, err
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("sqlite: parse total %q: %w", total, err)
	}
	if c.CreatedAt, err = parseTime(customerCreatedAt); err != nil {
		return nil, err
	}
	o.Customer = &c
	return &o, nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// nullableString maps "" to NULL so optional columns stay NULL rather than
// storing empty strings.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
