package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/MouraVocal/vendas-pascoa/internal/backend"
	"github.com/MouraVocal/vendas-pascoa/internal/backend/memory"
	pgstore "github.com/MouraVocal/vendas-pascoa/internal/backend/postgres"
	"github.com/MouraVocal/vendas-pascoa/internal/cart"
	"github.com/MouraVocal/vendas-pascoa/internal/catalog"
	"github.com/MouraVocal/vendas-pascoa/internal/domain"
	"github.com/MouraVocal/vendas-pascoa/internal/feed"
	"github.com/MouraVocal/vendas-pascoa/internal/prefs"
	"github.com/MouraVocal/vendas-pascoa/internal/storefront"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func main() {
	storeBackend := getEnv("STORE_BACKEND", "memory")
	feedBackend := getEnv("FEED_BACKEND", "memory")
	sessionID := getEnv("SESSION_ID", uuid.NewString())

	ctx := context.Background()

	var (
		records backend.RecordStore
		auth    backend.Authenticator
		source  feed.Source
		saver   cart.Saver
	)

	mem := memory.New()

	var redisClient *redis.Client
	if storeBackend != "memory" || feedBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Redis connection failed:", err)
		}
		log.Printf("Redis ping succeeded")
	}

	switch storeBackend {
	case "memory":
		seedDemoData(mem)
		records = mem
	case "postgres":
		port, err := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
		if err != nil {
			log.Fatalf("invalid POSTGRES_PORT: %v", err)
		}
		cred := &pgstore.Credentials{
			Host:              getEnv("POSTGRES_HOST", "localhost"),
			Port:              port,
			User:              getEnv("POSTGRES_USER", "postgres"),
			Password:          getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:            getEnv("POSTGRES_DB", "storefront"),
			MigrationsDirPath: getEnv("MIGRATIONS_DIR", "./internal/backend/postgres/migrations"),
		}
		repo, err := pgstore.NewRepository(cred)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer repo.Close()
		if err := repo.RunMigrations(cred); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Printf("Connected to Postgres at %s", cred.Host)
		records = repo
	default:
		log.Fatalf("unknown STORE_BACKEND %q", storeBackend)
	}

	// Authentication always goes through the in-process backend; the
	// hosted service's credential store is not part of this client.
	auth = mem

	switch feedBackend {
	case "memory":
		source = mem
	case "redis":
		source = feed.NewRedisSource(redisClient)
	case "kafka":
		brokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
		source = feed.NewKafkaSource(brokers...)
	default:
		log.Fatalf("unknown FEED_BACKEND %q", feedBackend)
	}

	if redisClient != nil {
		saver = cart.NewRedisSaver(redisClient, sessionID)

		prefStore := prefs.NewStore(redisClient, sessionID)
		dark, err := prefStore.DarkMode(ctx)
		if err != nil {
			log.Printf("failed to load display preference: %v", err)
		}
		log.Printf("dark mode: %v", dark)
	} else {
		saver = memorySaver{}
	}

	session, err := storefront.New(ctx, storefront.Deps{
		Records: records,
		Auth:    auth,
		Feed:    source,
		Saver:   saver,
	})
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	defer session.Close()

	settings := session.Catalog.Settings()
	log.Printf("%s — %s", settings.Title, settings.Subtitle)
	log.Printf("catalog loaded with %d products (%d in cart)",
		len(session.Catalog.Products()), session.Cart.ItemCount())

	session.Catalog.OnChange(func(ch catalog.Change) {
		log.Printf("catalog change: %s product %s", ch.Type, ch.ProductID)
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down storefront session...")
}

func seedDemoData(mem *memory.Backend) {
	now := time.Now()
	mem.SeedSettings(domain.SiteSettings{
		ID:       uuid.NewString(),
		Title:    "Vendas de Páscoa",
		Subtitle: "Ovos artesanais por encomenda",
	})
	mem.SeedProduct(domain.Product{
		ID:            uuid.NewString(),
		Name:          "Ovo de colher",
		Description:   "Chocolate ao leite com recheio de brigadeiro",
		Price:         decimal.NewFromFloat(59.90),
		IsHighlighted: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	mem.SeedProduct(domain.Product{
		ID:          uuid.NewString(),
		Name:        "Barra recheada",
		Description: "Chocolate meio amargo com castanhas",
		Price:       decimal.NewFromFloat(34.50),
		CreatedAt:   now.Add(-time.Minute),
		UpdatedAt:   now.Add(-time.Minute),
	})
}

// memorySaver keeps the cart in process memory when no Redis is
// configured. State is lost on exit.
type memorySaver struct{}

func (memorySaver) Load(context.Context) ([]domain.CartLine, error) {
	return nil, cart.ErrNoSavedCart
}

func (memorySaver) Save(context.Context, []domain.CartLine) error {
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
