// Package postgres implements the backend record store over Postgres.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MouraVocal/vendas-pascoa/internal/backend"
	"github.com/MouraVocal/vendas-pascoa/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type Repository struct {
	db *sql.DB
}

var _ backend.RecordStore = (*Repository)(nil)

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := migratepg.WithInstance(r.db, &migratepg.Config{
		MigrationsTable: "storefront_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT id, name, description, price, image_url, is_highlighted, created_at, updated_at, updated_by
	          FROM products ORDER BY created_at DESC`
	return r.queryProducts(ctx, query)
}

func (r *Repository) FetchHighlightedProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT id, name, description, price, image_url, is_highlighted, created_at, updated_at, updated_by
	          FROM products WHERE is_highlighted = true ORDER BY created_at DESC`
	return r.queryProducts(ctx, query)
}

func (r *Repository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var updatedBy sql.NullString
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.ImageURL,
			&p.IsHighlighted,
			&p.CreatedAt,
			&p.UpdatedAt,
			&updatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		p.UpdatedBy = updatedBy.String
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *Repository) FetchSiteSettings(ctx context.Context) (domain.SiteSettings, error) {
	query := `SELECT id, title, subtitle, whatsapp_number FROM site_settings LIMIT 1`

	var s domain.SiteSettings
	err := r.db.QueryRowContext(ctx, query).Scan(&s.ID, &s.Title, &s.Subtitle, &s.WhatsappNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SiteSettings{}, backend.ErrSettingsNotFound
	}
	if err != nil {
		return domain.SiteSettings{}, fmt.Errorf("query site settings: %w", err)
	}

	return s, nil
}

func (r *Repository) CreateOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	order.ID = uuid.NewString()
	order.Status = domain.OrderStatusCreated

	query := `INSERT INTO orders (id, user_id, full_price, status, updated_by, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	          RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		order.ID,
		order.UserID,
		order.FullPrice,
		order.Status,
		order.UpdatedBy,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	return order, nil
}

func (r *Repository) AddOrderItems(ctx context.Context, orderID string, items []domain.OrderItem) error {
	query := `INSERT INTO order_product ("order", product_id, product_quantity) VALUES ($1, $2, $3)`

	for _, item := range items {
		if _, err := r.db.ExecContext(ctx, query, orderID, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *Repository) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `SELECT id, user_id, full_price, status, updated_by, created_at, updated_at
	          FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.FullPrice,
			&o.Status,
			&o.UpdatedBy,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for i := range orders {
		items, err := r.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *Repository) orderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `SELECT "order", product_id, product_quantity FROM order_product WHERE "order" = $1`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.OrderID, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
