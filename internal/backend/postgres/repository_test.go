package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/MouraVocal/vendas-pascoa/internal/backend"
	"github.com/MouraVocal/vendas-pascoa/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cred := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	repo, err := NewRepository(cred)
	require.NoError(t, err)

	err = repo.RunMigrations(cred)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func insertProduct(t *testing.T, repo *Repository, name string, price float64, highlighted bool, createdAt time.Time) string {
	id := uuid.NewString()
	_, err := repo.db.Exec(
		`INSERT INTO products (id, name, description, price, image_url, is_highlighted, created_at, updated_at)
		 VALUES ($1, $2, '', $3, '', $4, $5, $5)`,
		id, name, price, highlighted, createdAt)
	require.NoError(t, err)
	return id
}

func TestFetchProducts_NewestFirst(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Now()
	insertProduct(t, repo, "Barra", 34.50, false, now.Add(-time.Hour))
	insertProduct(t, repo, "Ovo de colher", 59.90, true, now)

	products, err := repo.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Ovo de colher", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.NewFromFloat(59.90)))
	assert.Equal(t, "Barra", products[1].Name)
}

func TestFetchHighlightedProducts(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Now()
	insertProduct(t, repo, "Barra", 34.50, false, now)
	highlightedID := insertProduct(t, repo, "Ovo de colher", 59.90, true, now)

	products, err := repo.FetchHighlightedProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, highlightedID, products[0].ID)
}

func TestFetchSiteSettings_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.FetchSiteSettings(context.Background())
	assert.ErrorIs(t, err, backend.ErrSettingsNotFound)
}

func TestFetchSiteSettings_Success(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.db.Exec(
		`INSERT INTO site_settings (id, title, subtitle, whatsapp_number) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), "Vendas de Páscoa", "Ovos artesanais", int64(5511999999999))
	require.NoError(t, err)

	settings, err := repo.FetchSiteSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Vendas de Páscoa", settings.Title)
	assert.Equal(t, int64(5511999999999), settings.WhatsappNumber)
}

func TestCreateOrder_GeneratesIDAndStatus(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.CreateOrder(context.Background(), domain.Order{
		UserID:    "user-123",
		FullPrice: decimal.NewFromFloat(45.90),
		UpdatedBy: "user-123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.OrderStatusCreated, created.Status)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestCreateOrderWithItems_ListedNewestFirst(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	productID := insertProduct(t, repo, "Ovo de colher", 59.90, false, time.Now())

	first, err := repo.CreateOrder(ctx, domain.Order{
		UserID:    "user-123",
		FullPrice: decimal.NewFromFloat(59.90),
		UpdatedBy: "user-123",
	})
	require.NoError(t, err)
	require.NoError(t, repo.AddOrderItems(ctx, first.ID, []domain.OrderItem{
		{OrderID: first.ID, ProductID: productID, Quantity: 1},
	}))

	time.Sleep(10 * time.Millisecond)

	second, err := repo.CreateOrder(ctx, domain.Order{
		UserID:    "user-123",
		FullPrice: decimal.NewFromFloat(119.80),
		UpdatedBy: "user-123",
	})
	require.NoError(t, err)
	require.NoError(t, repo.AddOrderItems(ctx, second.ID, []domain.OrderItem{
		{OrderID: second.ID, ProductID: productID, Quantity: 2},
	}))

	orders, err := repo.ListOrdersByUser(ctx, "user-123")
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, second.ID, orders[0].ID)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)

	assert.Equal(t, first.ID, orders[1].ID)
	require.Len(t, orders[1].Items, 1)
	assert.Equal(t, productID, orders[1].Items[0].ProductID)
}

func TestListOrdersByUser_FiltersByUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, err := repo.CreateOrder(ctx, domain.Order{
		UserID:    "user-a",
		FullPrice: decimal.NewFromFloat(10),
		UpdatedBy: "user-a",
	})
	require.NoError(t, err)

	orders, err := repo.ListOrdersByUser(ctx, "user-b")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

// An order header with no items is still listed: the client accepts
// this inconsistency window and shows the header in history.
func TestListOrdersByUser_OrphanedHeaderVisible(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	created, err := repo.CreateOrder(ctx, domain.Order{
		UserID:    "user-123",
		FullPrice: decimal.NewFromFloat(45.90),
		UpdatedBy: "user-123",
	})
	require.NoError(t, err)

	orders, err := repo.ListOrdersByUser(ctx, "user-123")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, created.ID, orders[0].ID)
	assert.Empty(t, orders[0].Items)
}
