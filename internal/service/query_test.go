package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/crm-records/internal/store/sqlite"
)

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu      sync.Mutex
	entries map[string]string
	sets    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]string)}
}

func (m *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value.(string)
	m.sets++
	return nil
}

func (m *memCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[key], nil
}

func (m *memCache) GenerateKey(kind, id string) string {
	return "test:" + kind + ":" + id
}

func TestQueryMissIsAbsentNotError(t *testing.T) {
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	q := NewQueryService(repo, nil)

	c, err := q.Customer(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, c)

	o, err := q.Order(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, o)
}

func TestQueryCustomerUsesCache(t *testing.T) {
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	m := NewMutationService(repo)
	res, err := m.CreateCustomer(context.Background(), CustomerInput{Name: "Alice", Email: "alice@x.com"})
	require.NoError(t, err)

	c := newMemCache()
	q := NewQueryService(repo, c)

	first, err := q.Customer(context.Background(), res.Customer.ID)
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", first.Email)
	require.Equal(t, 1, c.sets)

	// Second lookup is served from the cache; no extra Set happens.
	second, err := q.Customer(context.Background(), res.Customer.ID)
	require.NoError(t, err)
	require.Equal(t, first.Email, second.Email)
	require.Equal(t, 1, c.sets)
}

func TestQueryOrderCacheRoundTripsDecimal(t *testing.T) {
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	m := NewMutationService(repo)
	ctx := context.Background()
	cRes, err := m.CreateCustomer(ctx, CustomerInput{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)
	pRes, err := m.CreateProduct(ctx, ProductInput{Name: "W", Price: decimal.RequireFromString("10.00")})
	require.NoError(t, err)
	oRes, err := m.CreateOrder(ctx, OrderInput{CustomerID: cRes.Customer.ID, ProductIDs: []string{pRes.Product.ID}})
	require.NoError(t, err)

	q := NewQueryService(repo, newMemCache())
	warm, err := q.Order(ctx, oRes.Order.ID)
	require.NoError(t, err)
	cached, err := q.Order(ctx, oRes.Order.ID)
	require.NoError(t, err)
	require.True(t, warm.TotalAmount.Equal(cached.TotalAmount))
	require.Equal(t, warm.Customer.Email, cached.Customer.Email)
}
