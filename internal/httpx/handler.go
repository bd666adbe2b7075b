package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/crm-records/internal/service"
	"github.com/jcmexdev/crm-records/internal/store"
)

// Handler serves the API boundary: the query and mutation operations that
// both external callers and the scheduled jobs go through.
type Handler struct {
	mutations *service.MutationService
	queries   *service.QueryService
}

func NewHandler(m *service.MutationService, q *service.QueryService) *Handler {
	return &Handler{mutations: m, queries: q}
}

// Hello is the trivial liveness query used by the heartbeat probe.
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HelloResponse{Hello: true})
}

// ── Mutations ────────────────────────────────────────────────────────────────

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	res, err := h.mutations.CreateCustomer(r.Context(), service.CustomerInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		h.storeFailure(w, r, "create customer", err)
		return
	}

	writeJSON(w, http.StatusOK, CustomerResponse{
		Customer: customerPayload(res.Customer),
		Message:  res.Message,
		Errors:   res.Errors,
	})
}

func (h *Handler) BulkCreateCustomers(w http.ResponseWriter, r *http.Request) {
	var req []CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	rows := make([]service.CustomerInput, len(req))
	for i, in := range req {
		rows[i] = service.CustomerInput{Name: in.Name, Email: in.Email, Phone: in.Phone}
	}

	res, err := h.mutations.BulkCreateCustomers(r.Context(), rows)
	if err != nil {
		h.storeFailure(w, r, "bulk create customers", err)
		return
	}

	writeJSON(w, http.StatusOK, BulkCustomersResponse{
		Customers: customerPayloads(res.Customers),
		Message:   res.Message,
		Errors:    res.Errors,
	})
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	res, err := h.mutations.CreateProduct(r.Context(), service.ProductInput{
		Name:  req.Name,
		Price: req.Price,
		Stock: req.Stock,
	})
	if err != nil {
		h.storeFailure(w, r, "create product", err)
		return
	}

	writeJSON(w, http.StatusOK, ProductResponse{
		Product: productPayload(res.Product),
		Message: res.Message,
		Errors:  res.Errors,
	})
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	res, err := h.mutations.CreateOrder(r.Context(), service.OrderInput{
		CustomerID: req.CustomerID,
		ProductIDs: req.ProductIDs,
		OrderDate:  req.OrderDate,
	})
	if err != nil {
		h.storeFailure(w, r, "create order", err)
		return
	}

	writeJSON(w, http.StatusOK, OrderResponse{
		Order:   orderPayload(res.Order),
		Message: res.Message,
		Errors:  res.Errors,
	})
}

func (h *Handler) UpdateLowStockProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.mutations.UpdateLowStockProducts(r.Context())
	if err != nil {
		h.storeFailure(w, r, "update low-stock products", err)
		return
	}

	writeJSON(w, http.StatusOK, LowStockResponse{
		Success:      res.Success,
		Message:      res.Message,
		UpdatedCount: res.UpdatedCount,
		Products:     productPayloads(res.Products),
	})
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.queries.Customer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "customer_not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, customerPayload(c))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.queries.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "product_not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, productPayload(p))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.queries.Order(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "order_not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, orderPayload(o))
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.CustomerFilter{
		NameContains:  q.Get("name"),
		EmailContains: q.Get("email"),
		PhonePrefix:   q.Get("phone_prefix"),
	}

	var err error
	if f.CreatedAtGte, err = timeParam(q.Get("created_at_gte")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	if f.CreatedAtLte, err = timeParam(q.Get("created_at_lte")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	customers, err := h.queries.Customers(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, customerPayloads(customers))
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.ProductFilter{
		NameContains: q.Get("name"),
		LowStock:     q.Get("low_stock") == "true",
	}

	var err error
	if f.PriceGte, err = decimalParam(q.Get("price_gte")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	if f.PriceLte, err = decimalParam(q.Get("price_lte")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	if f.StockGte, err = intParam(q.Get("stock_gte")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	if f.StockLte, err = intParam(q.Get("stock_lte")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	products, err := h.queries.Products(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, productPayloads(products))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.OrderFilter{
		CustomerID:           q.Get("customer_id"),
		CustomerNameContains: q.Get("customer_name"),
		ProductNameContains:  q.Get("product_name"),
		ProductID:            q.Get("product_id"),
	}

	var err error
	if f.TotalAmountGte, err = decimalParam(q.Get("total_amount_gte")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	if f.TotalAmountLte, err = decimalParam(q.Get("total_amount_lte")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	if f.OrderDateGte, err = timeParam(q.Get("order_date_gte")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	if f.OrderDateLte, err = timeParam(q.Get("order_date_lte")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	orders, err := h.queries.Orders(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, orderPayloads(orders))
}

// storeFailure reports a store-level mutation failure. The body is still the
// structured envelope so callers never have to parse anything else.
func (h *Handler) storeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.ErrorContext(r.Context(), "mutation failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "store_error", err.Error())
}

// ── Param parsing ────────────────────────────────────────────────────────────

func timeParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// Accept a bare date for convenience; it means midnight UTC.
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func decimalParam(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func intParam(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
