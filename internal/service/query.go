package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jcmexdev/crm-records/internal/domain"
	"github.com/jcmexdev/crm-records/internal/pkg/cache"
	"github.com/jcmexdev/crm-records/internal/store"
)

// cacheTTL bounds staleness for cached records. Customers and orders are
// immutable once created, so the TTL only limits memory held for records
// nobody reads anymore.
const cacheTTL = 5 * time.Minute

// QueryService answers read requests. Single-record lookups return
// (nil, nil) on a miss — callers distinguish "not found" from "query
// failed".
//
// cache may be nil, in which case every lookup goes to the store. Products
// are never cached: the restock pass mutates their stock.
type QueryService struct {
	store store.Store
	cache cache.Cache
}

func NewQueryService(s store.Store, c cache.Cache) *QueryService {
	return &QueryService{store: s, cache: c}
}

func (q *QueryService) Customer(ctx context.Context, id string) (*domain.Customer, error) {
	if c := cachedGet[domain.Customer](ctx, q.cache, "customer", id); c != nil {
		return c, nil
	}
	c, err := q.store.GetCustomer(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	cachedSet(ctx, q.cache, "customer", id, c)
	return c, nil
}

func (q *QueryService) Product(ctx context.Context, id string) (*domain.Product, error) {
	return q.store.GetProduct(ctx, id)
}

func (q *QueryService) Order(ctx context.Context, id string) (*domain.Order, error) {
	if o := cachedGet[domain.Order](ctx, q.cache, "order", id); o != nil {
		return o, nil
	}
	o, err := q.store.GetOrder(ctx, id)
	if err != nil || o == nil {
		return nil, err
	}
	cachedSet(ctx, q.cache, "order", id, o)
	return o, nil
}

func (q *QueryService) Customers(ctx context.Context, f store.CustomerFilter) ([]domain.Customer, error) {
	return q.store.ListCustomers(ctx, f)
}

func (q *QueryService) Products(ctx context.Context, f store.ProductFilter) ([]domain.Product, error) {
	return q.store.ListProducts(ctx, f)
}

func (q *QueryService) Orders(ctx context.Context, f store.OrderFilter) ([]domain.Order, error) {
	return q.store.ListOrders(ctx, f)
}

// cachedGet returns the cached record or nil. Cache failures are logged and
// treated as misses — the store remains the source of truth.
func cachedGet[T any](ctx context.Context, c cache.Cache, kind, id string) *T {
	if c == nil {
		return nil
	}
	raw, err := c.Get(ctx, c.GenerateKey(kind, id))
	if err != nil {
		slog.WarnContext(ctx, "cache read failed", "kind", kind, "id", id, "error", err)
		return nil
	}
	if raw == "" {
		return nil
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		slog.WarnContext(ctx, "cache entry corrupt", "kind", kind, "id", id, "error", err)
		return nil
	}
	return &v
}

func cachedSet[T any](ctx context.Context, c cache.Cache, kind, id string, v *T) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Set(ctx, c.GenerateKey(kind, id), string(raw), cacheTTL); err != nil {
		slog.WarnContext(ctx, "cache write failed", "kind", kind, "id", id, "error", err)
	}
}
