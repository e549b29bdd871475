package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// MigrateMySQL applies the embedded schema. It opens its own connection from
// dsn because the migrate driver closes the database it is given. The DSN
// must allow multiple statements.
func MigrateMySQL(dsn string) error {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("open mysql: %w", err)
	}

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		db.Close()
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "mysql", driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("migrate init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// RecordOrder writes the order and its lines in one transaction.
func (m *MySQLAdapter) RecordOrder(ctx context.Context, order domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	c := order.Customer
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, status, first_name, last_name, email, phone, address, city, state, zip_code,
			card_last_four, subtotal, tax, shipping, total, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.Status, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.City, c.State, c.ZipCode,
		c.CardLastFour, order.Totals.Subtotal, order.Totals.Tax, order.Totals.Shipping, order.Totals.Total,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, l := range order.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, line_no, product_id, selected_size, selected_color, name, unit_price, quantity)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			order.ID, i+1, l.ProductID, l.SelectedSize, l.SelectedColor, l.Name, l.Price, l.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order line %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// GetOrder returns the stored summary of an order, or nil when it does not exist.
func (m *MySQLAdapter) GetOrder(ctx context.Context, orderID string) (*domain.OrderSummary, error) {
	var o domain.OrderSummary
	err := m.db.QueryRowContext(ctx, `
		SELECT o.id, o.status, o.subtotal, o.tax, o.shipping, o.total, o.created_at,
			(SELECT COALESCE(SUM(l.quantity), 0) FROM order_lines l WHERE l.order_id = o.id)
		FROM orders o WHERE o.id = ?`, orderID,
	).Scan(&o.ID, &o.Status, &o.Subtotal, &o.Tax, &o.Shipping, &o.Total, &o.CreatedAt, &o.ItemCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return &o, nil
}

// LoadProducts reads the catalog table in display order.
func (m *MySQLAdapter) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, category, price, original_price, rating, reviews, brand, description,
			image, images, sizes, colors, in_stock
		FROM products ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p                     domain.Product
			original              decimal.NullDecimal
			images, sizes, colors []byte
		)
		err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &original, &p.Rating, &p.Reviews, &p.Brand,
			&p.Description, &p.Image, &images, &sizes, &colors, &p.InStock)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if original.Valid {
			p.OriginalPrice = &original.Decimal
		}
		for _, col := range []struct {
			raw []byte
			dst *[]string
		}{{images, &p.Images}, {sizes, &p.Sizes}, {colors, &p.Colors}} {
			if len(col.raw) == 0 {
				continue
			}
			if err := json.Unmarshal(col.raw, col.dst); err != nil {
				return nil, fmt.Errorf("product %d: decode list column: %w", p.ID, err)
			}
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}
