// Package fake serves an in-memory commerce API with the same routes and JSON shapes as the
// real backend. It backs the client, checkout and CLI tests and the fakeapi command.
package fake

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nikolayk812/storefront/internal/commerce"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	PathPrefix    = "/api"
	SessionCookie = "client_session"
)

type Server struct {
	mu sync.Mutex

	stores    map[string]*storeData
	countries []commerce.CountryDTO
	accounts  map[string]*account // by email
	sessions  map[string]string   // token -> customer ID
	orders    []commerce.OrderDTO

	router *mux.Router
	logger *zap.Logger
}

type storeData struct {
	store      commerce.StoreDTO
	categories []commerce.CategoryDTO
	products   []commerce.ProductDTO
}

type account struct {
	customer commerce.CustomerDTO
	hash     []byte
}

func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		stores:   make(map[string]*storeData),
		accounts: make(map[string]*account),
		sessions: make(map[string]string),
		logger:   logger,
	}
	s.router = s.routes()

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r.PathPrefix(PathPrefix).Subrouter()

	catalog := api.PathPrefix("/client").Subrouter()
	catalog.HandleFunc("/categories", s.requireStore(s.listCategories)).Methods(http.MethodGet)
	catalog.HandleFunc("/categories/{id}", s.requireStore(s.getCategory)).Methods(http.MethodGet)
	catalog.HandleFunc("/products", s.requireStore(s.listProducts)).Methods(http.MethodGet)
	catalog.HandleFunc("/products/{id}", s.requireStore(s.getProduct)).Methods(http.MethodGet)
	catalog.HandleFunc("/orders", s.requireStore(s.placeOrder)).Methods(http.MethodPost)
	catalog.HandleFunc("/stores/by-slug/{slug}", s.getStoreBySlug).Methods(http.MethodGet)
	catalog.HandleFunc("/countries", s.listCountries).Methods(http.MethodGet)

	auth := api.PathPrefix("/auth/client").Subrouter()
	auth.HandleFunc("/sign-up", s.signUp).Methods(http.MethodPost)
	auth.HandleFunc("/sign-in", s.signIn).Methods(http.MethodPost)
	auth.HandleFunc("/logout", s.logout).Methods(http.MethodPost)
	auth.HandleFunc("/current", s.current).Methods(http.MethodGet)
	auth.HandleFunc("/profile/{id}", s.updateProfile).Methods(http.MethodPut)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("store", r.Header.Get(commerce.HeaderStoreSlug)),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

type storeHandler func(w http.ResponseWriter, r *http.Request, store *storeData)

// requireStore resolves the X-Store-Slug header into the store the request is scoped to.
func (s *Server) requireStore(h storeHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.Header.Get(commerce.HeaderStoreSlug)
		if slug == "" {
			writeError(w, http.StatusBadRequest, "X-Store-Slug header is required")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		store, ok := s.stores[slug]
		if !ok {
			writeError(w, http.StatusNotFound, "store not found")
			return
		}

		h(w, r, store)
	}
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request, store *storeData) {
	writeJSON(w, http.StatusOK, nonNil(store.categories))
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request, store *storeData) {
	id := mux.Vars(r)["id"]

	idx := slices.IndexFunc(store.categories, func(c commerce.CategoryDTO) bool { return c.ID == id })
	if idx < 0 {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	writeJSON(w, http.StatusOK, store.categories[idx])
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request, store *storeData) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), 0)
	if err != nil || page < 0 {
		writeError(w, http.StatusBadRequest, "page must be a non-negative integer")
		return
	}
	limit, err := intParam(q.Get("limit"), commerce.DefaultPageLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	limit = commerce.NormalizeLimit(limit)

	query := strings.ToLower(strings.TrimSpace(q.Get("query")))
	categoryName := ""
	if categoryID := q.Get("categoryFilter"); categoryID != "" {
		idx := slices.IndexFunc(store.categories, func(c commerce.CategoryDTO) bool { return c.ID == categoryID })
		if idx < 0 {
			writeJSON(w, http.StatusOK, commerce.ProductPageDTO{Items: []commerce.ProductDTO{}, Page: page, Limit: limit})
			return
		}
		categoryName = store.categories[idx].Name
	}

	var matched []commerce.ProductDTO
	for _, p := range store.products {
		if categoryName != "" && !strings.EqualFold(p.CategoryName, categoryName) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Title), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		matched = append(matched, p)
	}

	from, to := len(matched), len(matched)
	if page < (len(matched)+limit-1)/limit {
		from = page * limit
		to = min(from+limit, len(matched))
	}

	writeJSON(w, http.StatusOK, commerce.ProductPageDTO{
		Items: nonNil(matched[from:to]),
		Total: len(matched),
		Page:  page,
		Limit: limit,
	})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request, store *storeData) {
	id := mux.Vars(r)["id"]

	idx := slices.IndexFunc(store.products, func(p commerce.ProductDTO) bool { return p.ID == id })
	if idx < 0 {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	writeJSON(w, http.StatusOK, store.products[idx])
}

func (s *Server) getStoreBySlug(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	s.mu.Lock()
	defer s.mu.Unlock()

	store, ok := s.stores[slug]
	if !ok {
		writeError(w, http.StatusNotFound, "store not found")
		return
	}

	writeJSON(w, http.StatusOK, store.store)
}

func (s *Server) listCountries(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, nonNil(s.countries))
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request, store *storeData) {
	customerID, ok := s.sessionCustomer(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var order commerce.OrderDTO
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if msgs := validateOrder(order, store); len(msgs) > 0 {
		writeError(w, http.StatusBadRequest, msgs...)
		return
	}
	if order.Customer.ID != customerID {
		writeError(w, http.StatusForbidden, "order customer does not match the session")
		return
	}

	now := time.Now().UTC()
	order.ID = uuid.NewString()
	order.Status = "pending"
	order.CreatedAt = &now
	s.orders = append(s.orders, order)

	writeJSON(w, http.StatusCreated, order)
}

func validateOrder(order commerce.OrderDTO, store *storeData) []string {
	var msgs []string

	if len(order.OrderItems) == 0 {
		msgs = append(msgs, "orderItems should not be empty")
	}
	if order.DeliveryAddress.Street == "" || order.DeliveryAddress.City == "" {
		msgs = append(msgs, "deliveryAddress is incomplete")
	}

	subTotal := decimal.Zero
	for _, item := range order.OrderItems {
		if item.Quantity <= 0 {
			msgs = append(msgs, "quantity must be a positive number")
			continue
		}
		if !slices.ContainsFunc(store.products, func(p commerce.ProductDTO) bool { return p.ID == item.ProductID }) {
			msgs = append(msgs, "product "+item.ProductID+" not found")
			continue
		}

		want := item.UnitPrice.Decimal().Mul(decimal.NewFromInt(int64(item.Quantity)))
		if !want.Equal(item.Total.Decimal()) {
			msgs = append(msgs, "item total does not match unit price times quantity")
		}
		subTotal = subTotal.Add(item.Total.Decimal())
	}

	if !subTotal.Equal(order.SubTotal.Decimal()) {
		msgs = append(msgs, "subTotal does not match the items")
	}

	return msgs
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError mirrors the backend's error envelope. Several messages go out as a list.
func writeError(w http.ResponseWriter, status int, msgs ...string) {
	body := map[string]any{
		"statusCode": status,
		"error":      http.StatusText(status),
	}
	if len(msgs) == 1 {
		body["message"] = msgs[0]
	} else {
		body["message"] = msgs
	}

	writeJSON(w, status, body)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
