package integration

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/otp"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testJWTSecret = "integration-jwt-secret"
	testAPIKey    = "test-api-key"
	// testOTP is issued for every delivery and password reset code.
	testOTP = "246810"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the storefront schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Sized for the concurrency tests.
	dbConfig := config.DatabaseConfig{
		MaxConnections:  20,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProducts inserts the test catalogue.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	products := []model.Product{
		{ID: "P001", Name: "Bamboo Toothbrush", Price: decimal.RequireFromString("4.50"), Category: "bamboo", Stock: 10, IsAvailable: true},
		{ID: "P002", Name: "Steel Bottle", Price: decimal.RequireFromString("20.00"), Category: "kitchen", Stock: 10, IsAvailable: true},
		{ID: "P003", Name: "Bamboo Towel", Price: decimal.RequireFromString("18.75"), Category: "bamboo", Stock: 3, IsAvailable: true},
		{ID: "P004", Name: "Compost Bin", Price: decimal.RequireFromString("24.50"), Category: "garden", Stock: 5, IsAvailable: false},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx,
			"INSERT INTO products (id, name, price, category, stock, is_available) VALUES ($1, $2, $3, $4, $5, $6)",
			p.ID, p.Name, p.Price, p.Category, p.Stock, p.IsAvailable,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.ID, err)
		}
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"TRUNCATE order_lines, orders, cart_items, carts, vendors, products CASCADE")
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}

// StockOf returns the current stock of a product.
func StockOf(t *testing.T, pool *pgxpool.Pool, productID string) int {
	t.Helper()

	var stock int
	if err := pool.QueryRow(context.Background(), "SELECT stock FROM products WHERE id = $1", productID).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock of %s: %v", productID, err)
	}
	return stock
}

// Mailbox is a notify.Mailer that keeps every message.
type Mailbox struct {
	mu       sync.Mutex
	messages []notify.Message
}

// Send records msg.
func (m *Mailbox) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

// To returns the messages sent to address.
func (m *Mailbox) To(address string) []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []notify.Message
	for _, msg := range m.messages {
		if msg.To == address {
			out = append(out, msg)
		}
	}
	return out
}

// TestServer is the full HTTP stack over a test database.
type TestServer struct {
	Handler    http.Handler
	Mailbox    *Mailbox
	Dispatcher *notify.Dispatcher
}

// WaitForDispatches blocks until background notifications have run.
func (s *TestServer) WaitForDispatches(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Dispatcher.Wait(ctx); err != nil {
		t.Fatalf("dispatches did not finish: %v", err)
	}
}

// NewTestServer wires repositories, services and the router over testDB.
func NewTestServer(t *testing.T, testDB *TestDB) *TestServer {
	t.Helper()

	logger := zerolog.Nop()

	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	cartRepo := repository.NewCartRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	vendorRepo := repository.NewVendorRepository(testDB.Pool, logger)

	orderCfg := config.OrderConfig{
		DeliveryOTPTTL:   10 * time.Minute,
		PasswordOTPTTL:   10 * time.Minute,
		OTPDigits:        6,
		Scopes:           map[string][]string{"bamboo": {"bamboo"}},
		DefaultListLimit: 20,
		MaximumListLimit: 100,
	}

	m := metrics.New("storefront")
	mailbox := &Mailbox{}
	notifier := notify.NewNotifier(mailbox, logger)
	dispatcher := notify.NewDispatcher(5*time.Second, logger, m.DispatchFailed)
	generator := otp.Static{Code: testOTP}

	catalogService := service.NewCatalogService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(service.OrderDependencies{
		Orders:     orderRepo,
		Products:   productRepo,
		Carts:      cartRepo,
		Vendors:    vendorRepo,
		OTP:        generator,
		Notifier:   notifier,
		Publisher:  events.NopPublisher{},
		Dispatcher: dispatcher,
		Metrics:    m,
		Config:     orderCfg,
	}, logger)
	vendorService := service.NewVendorService(vendorRepo, generator, notifier, dispatcher, orderCfg, nil, logger)

	h := router.New(router.Handlers{
		Health:  handler.NewHealthHandler(testDB.Pool, logger),
		Product: handler.NewProductHandler(catalogService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Vendor:  handler.NewVendorHandler(vendorService, logger),
	}, config.AuthConfig{JWTSecret: testJWTSecret, APIKey: testAPIKey}, 10*time.Second, m, logger)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = dispatcher.Wait(ctx)
	})

	return &TestServer{Handler: h, Mailbox: mailbox, Dispatcher: dispatcher}
}

// CustomerToken returns a bearer header value for customer userID.
func CustomerToken(t *testing.T, userID string) string {
	t.Helper()

	token, err := middleware.IssueToken(testJWTSecret, userID, userID+"@example.com", "customer", time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return "Bearer " + token
}
