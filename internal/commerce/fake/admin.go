package fake

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/commerce"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/currency"
)

const DemoStoreSlug = "techgadget-12345"

func (s *Server) AddStore(store domain.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if store.ID == "" {
		store.ID = uuid.NewString()
	}
	s.stores[store.Slug] = &storeData{store: commerce.NewStoreDTO(store)}
}

func (s *Server) AddCategory(slug string, category domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, ok := s.stores[slug]
	if !ok {
		return fmt.Errorf("store[%s] not found", slug)
	}

	store.categories = append(store.categories, commerce.NewCategoryDTO(category))
	return nil
}

func (s *Server) AddProduct(slug string, product domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, ok := s.stores[slug]
	if !ok {
		return fmt.Errorf("store[%s] not found", slug)
	}

	store.products = append(store.products, commerce.NewProductDTO(product))
	return nil
}

// SetProductPrice changes a product's base price, as a merchant would between cart and checkout.
func (s *Server) SetProductPrice(slug string, productID uuid.UUID, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.product(slug, productID)
	if err != nil {
		return err
	}

	p.BasePrice = commerce.NewAmount(price)
	return nil
}

func (s *Server) RemoveProduct(slug string, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, ok := s.stores[slug]
	if !ok {
		return fmt.Errorf("store[%s] not found", slug)
	}

	before := len(store.products)
	store.products = slices.DeleteFunc(store.products, func(p commerce.ProductDTO) bool {
		return p.ID == productID.String()
	})
	if len(store.products) == before {
		return fmt.Errorf("product[%s] not found", productID)
	}

	return nil
}

func (s *Server) SetCountries(countries []domain.Country) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.countries = s.countries[:0]
	for _, c := range countries {
		s.countries = append(s.countries, commerce.NewCountryDTO(c))
	}
}

// AddCustomer registers an account directly, bypassing sign-up validation.
func (s *Server) AddCustomer(customer domain.Customer, password string) (domain.Customer, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("bcrypt.GenerateFromPassword: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	s.accounts[strings.ToLower(customer.Email)] = &account{customer: commerce.NewCustomerDTO(customer), hash: hash}

	return customer, nil
}

// Orders returns the orders placed so far, oldest first.
func (s *Server) Orders() ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.Order, 0, len(s.orders))
	for _, dto := range s.orders {
		o, err := dto.ToDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}

	return result, nil
}

// product returns a pointer into the store's product slice. Caller holds s.mu.
func (s *Server) product(slug string, productID uuid.UUID) (*commerce.ProductDTO, error) {
	store, ok := s.stores[slug]
	if !ok {
		return nil, fmt.Errorf("store[%s] not found", slug)
	}

	idx := slices.IndexFunc(store.products, func(p commerce.ProductDTO) bool {
		return p.ID == productID.String()
	})
	if idx < 0 {
		return nil, fmt.Errorf("product[%s] not found", productID)
	}

	return &store.products[idx], nil
}

// Demo product IDs are fixed so a shopper can type them from the listing.
var (
	DemoHeadphonesID = uuid.MustParse("0b8f6c1e-3f2a-4c6d-9a41-2d7e5b9c1a01")
	DemoChargerID    = uuid.MustParse("0b8f6c1e-3f2a-4c6d-9a41-2d7e5b9c1a02")
	DemoCaseID       = uuid.MustParse("0b8f6c1e-3f2a-4c6d-9a41-2d7e5b9c1a03")
)

// NewDemo returns a server seeded with one store, a few products and countries.
func NewDemo(logger *zap.Logger) *Server {
	s := New(logger)

	s.AddStore(domain.Store{
		Name:        "TechGadget",
		Slug:        DemoStoreSlug,
		Description: "Gadgets and accessories",
		Currency:    currency.USD,
	})

	audio := domain.Category{ID: "c-audio", Name: "Audio", Icon: "headset-outline"}
	power := domain.Category{ID: "c-power", Name: "Power", Icon: "battery-charging-outline"}
	cases := domain.Category{ID: "c-cases", Name: "Cases", Icon: "phone-portrait-outline"}
	for _, c := range []domain.Category{audio, power, cases} {
		_ = s.AddCategory(DemoStoreSlug, c)
	}

	products := []domain.Product{
		{
			ID:           DemoHeadphonesID,
			Title:        "Wireless Headphones",
			Description:  "Over-ear headphones with noise cancelling",
			CategoryName: audio.Name,
			BasePrice:    decimal.RequireFromString("10"),
			MediaURLs:    []string{"uploads/headphones.jpg"},
			InStock:      true,
			Variants: []domain.VariantGroup{
				{Name: "Size", Options: []domain.Variant{
					{ID: "v-size-s", Value: "Small", Price: decimal.Zero},
					{ID: "v-size-l", Value: "Large", Price: decimal.RequireFromString("2")},
				}},
			},
			OptionGroups: []domain.OptionGroup{
				{Name: "Extras", Options: []domain.Option{
					{ID: "o-case", Name: "Travel case", Price: decimal.RequireFromString("4.50")},
					{ID: "o-cable", Name: "Spare cable", Price: decimal.RequireFromString("1.25")},
				}},
			},
		},
		{
			ID:              DemoChargerID,
			Title:           "USB-C Charger",
			Description:     "65W fast charger",
			CategoryName:    power.Name,
			BasePrice:       decimal.RequireFromString("29.99"),
			DiscountedPrice: decimal.NewNullDecimal(decimal.RequireFromString("24.99")),
			InStock:         true,
			Variants: []domain.VariantGroup{
				{Name: "Plug", Options: []domain.Variant{
					{ID: "v-plug-us", Value: "US", Price: decimal.Zero},
					{ID: "v-plug-eu", Value: "EU", Price: decimal.Zero},
					{ID: "v-plug-uk", Value: "UK", Price: decimal.RequireFromString("1")},
				}},
			},
		},
		{
			ID:           DemoCaseID,
			Title:        "Phone Case",
			Description:  "Shockproof silicone case",
			CategoryName: cases.Name,
			BasePrice:    decimal.RequireFromString("12.50"),
			InStock:      false,
		},
	}
	for _, p := range products {
		_ = s.AddProduct(DemoStoreSlug, p)
	}

	s.SetCountries([]domain.Country{
		{ID: "US", Name: "United States", Code: "US"},
		{ID: "DE", Name: "Germany", Code: "DE"},
		{ID: "GB", Name: "United Kingdom", Code: "GB"},
	})

	return s
}
