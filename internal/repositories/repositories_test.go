package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"sportshop/internal/database"
	"sportshop/internal/models"
	"sportshop/internal/pricing"
	"sportshop/internal/repositories"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory SQLite database for one test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedProducts(t *testing.T, repo repositories.ProductRepository, products ...models.Product) []models.Product {
	t.Helper()
	for i := range products {
		require.NoError(t, repo.Create(context.Background(), &products[i]))
	}
	return products
}

func TestGORMProductRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(newTestDB(t))
	seeded := seedProducts(t, repo,
		models.Product{Name: "Ballon", Price: 10000, Stock: 5, Category: "football", Subcategory: "ballons", Featured: true},
		models.Product{Name: "Raquette", Price: 45000, Stock: 2, Category: "tennis"},
		models.Product{Name: "Crampons", Price: 60000, Stock: 1, Category: "football", Subcategory: "chaussures"},
	)

	all, err := repo.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	football, err := repo.List(ctx, models.ProductFilter{Category: "football"})
	require.NoError(t, err)
	assert.Len(t, football, 2)

	shoes, err := repo.List(ctx, models.ProductFilter{Category: "football", Subcategory: "chaussures"})
	require.NoError(t, err)
	require.Len(t, shoes, 1)
	assert.Equal(t, "Crampons", shoes[0].Name)

	featured, err := repo.List(ctx, models.ProductFilter{FeaturedOnly: true})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, seeded[0].ID, featured[0].ID)

	byIDs, err := repo.GetByIDs(ctx, []uint{seeded[0].ID, seeded[2].ID, 999})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)
	assert.Contains(t, byIDs, seeded[2].ID)

	zero, off := 0, false
	p, err := repo.Update(ctx, seeded[0].ID, models.ProductPatch{Stock: &zero, Featured: &off})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	assert.False(t, p.Featured)
	assert.Equal(t, "Ballon", p.Name)
	p, err = repo.GetByID(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, "ballons", p.Subcategory)

	p, err = repo.Update(ctx, seeded[2].ID, models.ProductPatch{})
	require.NoError(t, err)
	assert.Equal(t, "Crampons", p.Name)

	require.NoError(t, repo.Delete(ctx, seeded[1].ID))
	_, err = repo.GetByID(ctx, seeded[1].ID)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, seeded[1].ID), models.ErrProductNotFound)
	name := "Ghost"
	_, err = repo.Update(ctx, 999, models.ProductPatch{Name: &name})
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestGORMProductRepository_UpdateKeepsCheckoutDecrement(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	products := repositories.NewGORMProductRepository(db)
	orders := repositories.NewGORMOrderRepository(db)
	seeded := seedProducts(t, products,
		models.Product{Name: "Ballon", Price: 10000, Stock: 5, Category: "football"},
	)

	// The admin screen was loaded before the sale.
	before, err := products.GetByID(ctx, seeded[0].ID)
	require.NoError(t, err)
	require.Equal(t, 5, before.Stock)

	require.NoError(t, orders.Create(ctx, newOrder(
		models.OrderItem{ProductID: seeded[0].ID, Quantity: 1, PriceAtPurchase: 10000},
	)))

	name := "Ballon Pro"
	price := int64(11000)
	updated, err := products.Update(ctx, seeded[0].ID, models.ProductPatch{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Ballon Pro", updated.Name)
	assert.Equal(t, int64(11000), updated.Price)
	assert.Equal(t, 4, updated.Stock)

	stored, err := products.GetByID(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Stock)
}

func TestGORMUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(newTestDB(t))

	admin := &models.User{Username: "admin", Email: "admin@example.com", Password: "x", IsAdmin: true}
	customer := &models.User{Username: "karim", Email: "karim@example.com", Password: "x"}
	require.NoError(t, repo.Create(ctx, admin))
	require.NoError(t, repo.Create(ctx, customer))

	got, err := repo.GetByUsername(ctx, "karim")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, got.ID)
	got, err = repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	customers, err := repo.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "karim", customers[0].Username)

	// Duplicate usernames are rejected by the unique index.
	assert.Error(t, repo.Create(ctx, &models.User{Username: "karim", Email: "other@example.com", Password: "x"}))

	require.NoError(t, repo.Delete(ctx, customer.ID))
	assert.ErrorIs(t, repo.Delete(ctx, customer.ID), models.ErrUserNotFound)
}

func newOrder(items ...models.OrderItem) *models.Order {
	var total int64
	for _, it := range items {
		total += it.PriceAtPurchase * int64(it.Quantity)
	}
	return &models.Order{
		Reference:       fmt.Sprintf("ref-%d", time.Now().UnixNano()),
		Status:          models.OrderStatusPending,
		TotalAmount:     total,
		CustomerName:    "Salma",
		CustomerEmail:   "salma@example.com",
		CustomerPhone:   "0600000000",
		ShippingAddress: "5 avenue Hassan II, Casablanca",
		Items:           items,
	}
}

func TestGORMOrderRepository_CreateDecrementsStock(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	products := repositories.NewGORMProductRepository(db)
	orders := repositories.NewGORMOrderRepository(db)
	seeded := seedProducts(t, products,
		models.Product{Name: "Ballon", Price: 10000, Stock: 5, Category: "football"},
		models.Product{Name: "Gourde", Price: 2500, Stock: 1, Category: "running"},
	)

	uid := uint(3)
	order := newOrder(
		models.OrderItem{ProductID: seeded[0].ID, Quantity: 2, PriceAtPurchase: 10000},
		models.OrderItem{ProductID: seeded[1].ID, Quantity: 1, PriceAtPurchase: 2500},
	)
	order.UserID = &uid
	require.NoError(t, orders.Create(ctx, order))
	assert.NotZero(t, order.ID)

	got, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(22500), got.TotalAmount)
	require.Len(t, got.Items, 2)
	assert.Equal(t, seeded[0].ID, got.Items[0].ProductID)

	p, _ := products.GetByID(ctx, seeded[0].ID)
	assert.Equal(t, 3, p.Stock)
	p, _ = products.GetByID(ctx, seeded[1].ID)
	assert.Equal(t, 0, p.Stock)

	mine, err := orders.ListByUser(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	none, err := orders.ListByUser(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGORMOrderRepository_CreateRollsBack(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	products := repositories.NewGORMProductRepository(db)
	orders := repositories.NewGORMOrderRepository(db)
	seeded := seedProducts(t, products,
		models.Product{Name: "Ballon", Price: 10000, Stock: 5, Category: "football"},
		models.Product{Name: "Gourde", Price: 2500, Stock: 1, Category: "running"},
	)

	order := newOrder(
		models.OrderItem{ProductID: seeded[0].ID, Quantity: 2, PriceAtPurchase: 10000},
		models.OrderItem{ProductID: seeded[1].ID, Quantity: 2, PriceAtPurchase: 2500},
	)
	err := orders.Create(ctx, order)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&count).Error)
	assert.Zero(t, count)

	p, _ := products.GetByID(ctx, seeded[0].ID)
	assert.Equal(t, 5, p.Stock)
	p, _ = products.GetByID(ctx, seeded[1].ID)
	assert.Equal(t, 1, p.Stock)
}

func TestGORMOrderRepository_ConcurrentCreateForLastUnit(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	products := repositories.NewGORMProductRepository(db)
	orders := repositories.NewGORMOrderRepository(db)
	seeded := seedProducts(t, products,
		models.Product{Name: "Raquette B", Price: 10000, Discount: 20, Stock: 1, Category: "tennis"},
	)
	unitPrice := pricing.EffectiveUnitPrice(seeded[0])
	require.Equal(t, int64(8000), unitPrice)

	const buyers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order := newOrder(models.OrderItem{ProductID: seeded[0].ID, Quantity: 1, PriceAtPurchase: unitPrice})
			order.Reference = fmt.Sprintf("race-%d", i)
			err := orders.Create(ctx, order)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, models.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected checkout error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, buyers-1, rejected)

	p, err := products.GetByID(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var items []models.OrderItem
	require.NoError(t, db.Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, int64(8000), items[0].PriceAtPurchase)
	assert.Equal(t, 1, items[0].Quantity)
}

// createWithDeletedProduct checks that both order backends report a product
// deleted before checkout as insufficient stock and leave other stock alone.
func createWithDeletedProduct(t *testing.T, products repositories.ProductRepository, orders repositories.OrderRepository) {
	ctx := context.Background()
	seeded := seedProducts(t, products,
		models.Product{Name: "Ballon", Price: 10000, Stock: 5, Category: "football"},
		models.Product{Name: "Gourde", Price: 2500, Stock: 3, Category: "running"},
	)
	require.NoError(t, products.Delete(ctx, seeded[1].ID))

	err := orders.Create(ctx, newOrder(
		models.OrderItem{ProductID: seeded[0].ID, Quantity: 1, PriceAtPurchase: 10000},
		models.OrderItem{ProductID: seeded[1].ID, Quantity: 2, PriceAtPurchase: 2500},
	))
	assert.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.NotErrorIs(t, err, models.ErrProductNotFound)
	var stockErr *models.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, seeded[1].ID, stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 0, stockErr.Available)

	p, err := products.GetByID(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
}

func TestMockOrderRepository_CreateWithDeletedProduct(t *testing.T) {
	products := repositories.NewMockProductRepository()
	createWithDeletedProduct(t, products, repositories.NewMockOrderRepository(products))
}

func TestGORMOrderRepository_CreateWithDeletedProduct(t *testing.T) {
	db := newTestDB(t)
	createWithDeletedProduct(t, repositories.NewGORMProductRepository(db), repositories.NewGORMOrderRepository(db))
}

func TestGORMOrderRepository_UpdateStatusAndStats(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	products := repositories.NewGORMProductRepository(db)
	orders := repositories.NewGORMOrderRepository(db)
	users := repositories.NewGORMUserRepository(db)
	seeded := seedProducts(t, products,
		models.Product{Name: "Ballon", Price: 10000, Stock: 50, Category: "football"},
		models.Product{Name: "Gourde", Price: 2500, Stock: 50, Category: "running"},
	)
	require.NoError(t, users.Create(ctx, &models.User{Username: "admin", Email: "a@example.com", Password: "x", IsAdmin: true}))
	require.NoError(t, users.Create(ctx, &models.User{Username: "karim", Email: "k@example.com", Password: "x"}))

	first := newOrder(models.OrderItem{ProductID: seeded[0].ID, Quantity: 3, PriceAtPurchase: 10000})
	require.NoError(t, orders.Create(ctx, first))
	second := newOrder(
		models.OrderItem{ProductID: seeded[0].ID, Quantity: 1, PriceAtPurchase: 10000},
		models.OrderItem{ProductID: seeded[1].ID, Quantity: 2, PriceAtPurchase: 2500},
	)
	require.NoError(t, orders.Create(ctx, second))

	updated, err := orders.UpdateStatus(ctx, second.ID, models.OrderStatusPending, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)

	// The compare-and-set fails once the status moved on.
	_, err = orders.UpdateStatus(ctx, second.ID, models.OrderStatusPending, models.OrderStatusShipped)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = orders.UpdateStatus(ctx, 999, models.OrderStatusPending, models.OrderStatusShipped)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	stats, err := orders.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.TotalCustomers)
	assert.Equal(t, int64(30000), stats.TotalSales)
	assert.Equal(t, int64(30000), stats.SalesByMonth[time.Now().UTC().Format("2006-01")])
	require.Len(t, stats.PopularProducts, 2)
	assert.Equal(t, "Ballon", stats.PopularProducts[0].Name)
	assert.Equal(t, int64(4), stats.PopularProducts[0].Sales)

	all, err := orders.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
}

// cartStoreContract runs the behaviour every CartStore backend must share.
func cartStoreContract(t *testing.T, store repositories.CartStore) {
	ctx := context.Background()
	owner := "guest:contract"

	lines, err := store.Lines(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, lines)

	require.NoError(t, store.Add(ctx, owner, 2, 1))
	require.NoError(t, store.Add(ctx, owner, 1, 2))
	require.NoError(t, store.Add(ctx, owner, 1, 3))
	lines, err = store.Lines(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, uint(1), lines[0].ProductID)
	assert.Equal(t, 5, lines[0].Quantity)

	require.NoError(t, store.Decrement(ctx, owner, 1))
	require.NoError(t, store.Decrement(ctx, owner, 2))
	require.NoError(t, store.Decrement(ctx, owner, 42))
	lines, err = store.Lines(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)

	require.NoError(t, store.Remove(ctx, owner, 1))
	require.NoError(t, store.Remove(ctx, owner, 1))
	lines, err = store.Lines(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// Concurrent adds to one line lose no units.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Add(ctx, owner, 7, 1))
		}()
	}
	wg.Wait()
	lines, err = store.Lines(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 20, lines[0].Quantity)

	require.NoError(t, store.Add(ctx, "user:1", 7, 1))
	require.NoError(t, store.Clear(ctx, owner))
	require.NoError(t, store.Clear(ctx, owner))
	lines, err = store.Lines(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, lines)
	lines, err = store.Lines(ctx, "user:1")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	require.NoError(t, store.Clear(ctx, "user:1"))
}

func TestMemoryCartStore(t *testing.T) {
	cartStoreContract(t, repositories.NewMemoryCartStore())
}

func TestGORMCartStore(t *testing.T) {
	cartStoreContract(t, repositories.NewGORMCartStore(newTestDB(t)))
}

func TestGORMCartStore_PurgeStale(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := repositories.NewGORMCartStore(db)

	require.NoError(t, store.Add(ctx, "guest:old", 1, 1))
	require.NoError(t, store.Add(ctx, "user:5", 1, 1))
	require.NoError(t, db.Model(&models.CartLine{}).Where("1 = 1").
		Update("updated_at", time.Now().UTC().Add(-48*time.Hour)).Error)
	require.NoError(t, store.Add(ctx, "guest:fresh", 1, 1))

	purged, err := store.PurgeStale(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	lines, _ := store.Lines(ctx, "user:5")
	assert.Len(t, lines, 1)
	lines, _ = store.Lines(ctx, "guest:fresh")
	assert.Len(t, lines, 1)
}

// TestRedisCartStore needs a live server; set REDIS_TEST_ADDRESS to run it.
func TestRedisCartStore(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDRESS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	store := repositories.NewRedisCartStore(client, time.Hour)
	cartStoreContract(t, store)

	// Decrement refreshes the guest expiry in the same script call.
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, "guest:ttl", 3, 2))
	require.NoError(t, client.Persist(ctx, "cart:guest:ttl").Err())
	require.NoError(t, store.Decrement(ctx, "guest:ttl", 3))
	ttl, err := client.PTTL(ctx, "cart:guest:ttl").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	require.NoError(t, store.Add(ctx, "user:ttl", 3, 2))
	require.NoError(t, store.Decrement(ctx, "user:ttl", 3))
	ttl, err = client.PTTL(ctx, "cart:user:ttl").Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)

	require.NoError(t, store.Clear(ctx, "guest:ttl"))
	require.NoError(t, store.Clear(ctx, "user:ttl"))
}
