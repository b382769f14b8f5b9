package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrUnknownShipping = errors.New("unknown shipping method")
	ErrNotSignedIn     = errors.New("customer is not signed in")
	ErrInvalidAddress  = errors.New("delivery address is incomplete")
)

var DefaultTaxRate = decimal.RequireFromString("0.08")

type ShippingMethod struct {
	ID       string
	Name     string
	Duration string
	Price    decimal.Decimal
}

func DefaultShippingMethods() []ShippingMethod {
	return []ShippingMethod{
		{ID: "standard", Name: "Standard Shipping", Duration: "5-7 business days", Price: decimal.RequireFromString("4.99")},
		{ID: "express", Name: "Express Shipping", Duration: "2-3 business days", Price: decimal.RequireFromString("9.99")},
		{ID: "next-day", Name: "Next Day Delivery", Duration: "Next business day", Price: decimal.RequireFromString("19.99")},
	}
}

type Quote struct {
	Shipping ShippingMethod
	SubTotal domain.Money
	Tax      domain.Money
	Total    domain.Money
}

// PriceChange is a cart line whose product changed since it was added.
type PriceChange struct {
	Key              string
	Title            string
	CartUnitPrice    decimal.Decimal
	CurrentUnitPrice decimal.Decimal
	Unavailable      bool
}

// Carts is the part of the cart service checkout needs.
type Carts interface {
	Get(ctx context.Context, ownerID string) (domain.Cart, error)
	Clear(ctx context.Context, ownerID string) error
}

type PlaceOrderRequest struct {
	OwnerID    string
	Customer   *domain.Customer
	Address    domain.Address
	ShippingID string
}

type Service struct {
	carts   Carts
	catalog port.Catalog
	orders  port.Orders
	logger  *zap.Logger

	shipping      []ShippingMethod
	taxRate       decimal.Decimal
	maxConcurrent int
}

type Option func(*Service)

func WithTaxRate(rate decimal.Decimal) Option {
	return func(s *Service) {
		s.taxRate = rate
	}
}

func WithShippingMethods(methods []ShippingMethod) Option {
	return func(s *Service) {
		s.shipping = methods
	}
}

func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(carts Carts, catalog port.Catalog, orders port.Orders, opts ...Option) (*Service, error) {
	if carts == nil || catalog == nil || orders == nil {
		return nil, fmt.Errorf("carts, catalog and orders are required")
	}

	s := &Service{
		carts:         carts,
		catalog:       catalog,
		orders:        orders,
		logger:        zap.NewNop(),
		shipping:      DefaultShippingMethods(),
		taxRate:       DefaultTaxRate,
		maxConcurrent: 4,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Service) ShippingMethods() []ShippingMethod {
	return s.shipping
}

// Quote prices the cart with the chosen shipping method. An empty shippingID picks the first method.
func (s *Service) Quote(cart domain.Cart, shippingID string) (Quote, error) {
	if cart.IsEmpty() {
		return Quote{}, ErrEmptyCart
	}

	method, err := s.shippingMethod(shippingID)
	if err != nil {
		return Quote{}, err
	}

	subTotal := cart.Subtotal()
	tax := subTotal.Amount.Mul(s.taxRate).Round(2)
	total := subTotal.Amount.Add(method.Price).Add(tax)

	return Quote{
		Shipping: method,
		SubTotal: subTotal,
		Tax:      domain.Money{Amount: tax, Currency: cart.Currency},
		Total:    domain.Money{Amount: total, Currency: cart.Currency},
	}, nil
}

// Verify re-reads every product in the cart and reports lines whose price moved or whose
// product is gone or out of stock.
func (s *Service) Verify(ctx context.Context, cart domain.Cart) ([]PriceChange, error) {
	ids := make([]uuid.UUID, 0, len(cart.Items))
	seen := make(map[uuid.UUID]bool, len(cart.Items))
	for _, item := range cart.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	var (
		mu       sync.Mutex
		products = make(map[uuid.UUID]*domain.Product, len(ids))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for _, id := range ids {
		g.Go(func() error {
			product, err := s.catalog.Product(ctx, id)
			if errors.Is(err, port.ErrNotFound) {
				mu.Lock()
				products[id] = nil
				mu.Unlock()
				return nil
			}
			if err != nil {
				return fmt.Errorf("catalog.Product[%s]: %w", id, err)
			}

			mu.Lock()
			products[id] = &product
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var changes []PriceChange
	for _, item := range cart.Items {
		product := products[item.ProductID]
		if product == nil || !product.InStock {
			changes = append(changes, PriceChange{
				Key:           item.Key,
				Title:         item.Title,
				CartUnitPrice: item.UnitPrice(),
				Unavailable:   true,
			})
			continue
		}

		current := currentUnitPrice(*product, item)
		if !current.Equal(item.UnitPrice()) {
			changes = append(changes, PriceChange{
				Key:              item.Key,
				Title:            item.Title,
				CartUnitPrice:    item.UnitPrice(),
				CurrentUnitPrice: current,
			})
		}
	}

	return changes, nil
}

// PlaceOrder submits the cart as an order and clears it once the order is accepted.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (domain.Order, error) {
	if req.Customer == nil || req.Customer.ID == "" {
		return domain.Order{}, ErrNotSignedIn
	}
	if err := validateAddress(req.Address); err != nil {
		return domain.Order{}, err
	}

	cart, err := s.carts.Get(ctx, req.OwnerID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("carts.Get: %w", err)
	}

	quote, err := s.Quote(cart, req.ShippingID)
	if err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		Customer:        *req.Customer,
		SubTotal:        quote.SubTotal.Amount,
		ShippingMethod:  quote.Shipping.ID,
		ShippingCost:    quote.Shipping.Price,
		Tax:             quote.Tax.Amount,
		Total:           quote.Total.Amount,
		DeliveryAddress: req.Address,
		Source:          domain.OrderSourceMobile,
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, domain.OrderItemFromCart(item))
	}

	placed, err := s.orders.PlaceOrder(ctx, order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.PlaceOrder: %w", err)
	}

	s.logger.Info("order placed",
		zap.String("owner", req.OwnerID),
		zap.String("order", placed.ID),
		zap.String("total", quote.Total.String()),
	)

	if err := s.carts.Clear(ctx, req.OwnerID); err != nil {
		s.logger.Error("cart not cleared after order", zap.String("order", placed.ID), zap.Error(err))
	}

	return placed, nil
}

func (s *Service) shippingMethod(id string) (ShippingMethod, error) {
	if id == "" && len(s.shipping) > 0 {
		return s.shipping[0], nil
	}

	for _, m := range s.shipping {
		if m.ID == id {
			return m, nil
		}
	}

	return ShippingMethod{}, fmt.Errorf("shipping[%s]: %w", id, ErrUnknownShipping)
}

func validateAddress(a domain.Address) error {
	var missing []string
	if strings.TrimSpace(a.FullName) == "" {
		missing = append(missing, "full name")
	}
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		missing = append(missing, "postal code")
	}
	if strings.TrimSpace(a.CountryID) == "" {
		missing = append(missing, "country")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidAddress, strings.Join(missing, ", "))
	}
	return nil
}

// currentUnitPrice reprices a cart line against the product as it is now. Options that
// no longer exist contribute nothing.
func currentUnitPrice(product domain.Product, item domain.CartItem) decimal.Decimal {
	prices := make(map[string]decimal.Decimal)
	for _, group := range product.Variants {
		for _, v := range group.Options {
			prices[v.ID] = v.Price
		}
	}
	for _, group := range product.OptionGroups {
		for _, o := range group.Options {
			prices[o.ID] = o.Price
		}
	}

	price := product.BasePrice
	for _, opt := range item.SelectedOptions {
		price = price.Add(prices[opt.ID])
	}

	return price
}
