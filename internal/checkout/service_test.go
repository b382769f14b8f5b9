package checkout_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/commerce"
	"github.com/nikolayk812/storefront/internal/commerce/fake"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/currency"
)

type staticSession struct {
	slug  string
	token string
}

func (s *staticSession) StoreSlug(_ context.Context) (string, error) {
	return s.slug, nil
}

func (s *staticSession) AccessToken(_ context.Context) (string, error) {
	return s.token, nil
}

type checkoutSuite struct {
	suite.Suite

	api     *fake.Server
	srv     *httptest.Server
	session *staticSession
	client  *commerce.Client
	carts   *cart.Service
	service *checkout.Service
	closeDB func()
}

func TestCheckoutSuite(t *testing.T) {
	suite.Run(t, new(checkoutSuite))
}

func (suite *checkoutSuite) SetupTest() {
	t := suite.T()
	logger := zaptest.NewLogger(t)

	suite.api = fake.NewDemo(logger)
	suite.srv = httptest.NewServer(suite.api.Handler())

	suite.session = &staticSession{slug: fake.DemoStoreSlug}

	var err error
	suite.client, err = commerce.New(suite.srv.URL+fake.PathPrefix,
		commerce.WithSlugSource(suite.session),
		commerce.WithTokenSource(suite.session),
		commerce.WithLogger(logger),
	)
	suite.Require().NoError(err)

	repo, closeDB, err := repository.Open(t.Context(), filepath.Join(t.TempDir(), "cart.db"))
	suite.Require().NoError(err)
	suite.closeDB = closeDB

	suite.carts, err = cart.NewService(repo, currency.USD, logger)
	suite.Require().NoError(err)

	suite.service, err = checkout.NewService(suite.carts, suite.client, suite.client,
		checkout.WithLogger(logger),
		checkout.WithMaxConcurrent(2),
	)
	suite.Require().NoError(err)
}

func (suite *checkoutSuite) TearDownTest() {
	suite.client.Close()
	suite.srv.Close()
	suite.closeDB()
}

func (suite *checkoutSuite) TestQuote() {
	large := domain.Cart{Currency: currency.USD}
	large.AddItem(largeItem(2))

	tests := []struct {
		name       string
		cart       domain.Cart
		shippingID string
		wantTotal  string
		wantTax    string
		wantErr    error
	}{
		{
			name:       "standard shipping",
			cart:       large,
			shippingID: "standard",
			wantTax:    "1.92",
			wantTotal:  "30.91",
		},
		{
			name:      "default shipping is the first method",
			cart:      large,
			wantTax:   "1.92",
			wantTotal: "30.91",
		},
		{
			name:       "next-day shipping",
			cart:       large,
			shippingID: "next-day",
			wantTax:    "1.92",
			wantTotal:  "45.91",
		},
		{
			name:       "unknown shipping",
			cart:       large,
			shippingID: "teleport",
			wantErr:    checkout.ErrUnknownShipping,
		},
		{
			name:       "empty cart",
			cart:       domain.Cart{Currency: currency.USD},
			shippingID: "standard",
			wantErr:    checkout.ErrEmptyCart,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()

			quote, err := suite.service.Quote(tt.cart, tt.shippingID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, "24.00 USD", quote.SubTotal.String())
			assert.True(t, quote.Tax.Amount.Equal(decimal.RequireFromString(tt.wantTax)))
			assert.True(t, quote.Total.Amount.Equal(decimal.RequireFromString(tt.wantTotal)))
			assert.Equal(t, currency.USD, quote.Total.Currency)
		})
	}
}

func (suite *checkoutSuite) TestVerify() {
	t := suite.T()
	ctx := t.Context()

	c := domain.Cart{Currency: currency.USD}
	for _, id := range []uuid.UUID{fake.DemoHeadphonesID, fake.DemoChargerID, fake.DemoCaseID} {
		product, err := suite.client.Product(ctx, id)
		require.NoError(t, err)

		selection := domain.NewSelection(product)
		c.AddItem(selection.CartItem(1, ""))
	}

	changes, err := suite.service.Verify(ctx, c)
	require.NoError(t, err)
	require.Len(t, changes, 1, "only the out of stock case is reported")
	assert.Equal(t, "Phone Case", changes[0].Title)
	assert.True(t, changes[0].Unavailable)

	require.NoError(t, suite.api.SetProductPrice(fake.DemoStoreSlug, fake.DemoHeadphonesID, decimal.RequireFromString("11")))
	require.NoError(t, suite.api.RemoveProduct(fake.DemoStoreSlug, fake.DemoChargerID))

	changes, err = suite.service.Verify(ctx, c)
	require.NoError(t, err)

	byTitle := make(map[string]checkout.PriceChange)
	for _, change := range changes {
		byTitle[change.Title] = change
	}
	require.Len(t, byTitle, 3)

	headphones := byTitle["Wireless Headphones"]
	assert.False(t, headphones.Unavailable)
	assert.True(t, headphones.CartUnitPrice.Equal(decimal.NewFromInt(10)))
	assert.True(t, headphones.CurrentUnitPrice.Equal(decimal.NewFromInt(11)))

	assert.True(t, byTitle["USB-C Charger"].Unavailable)
	assert.True(t, byTitle["Phone Case"].Unavailable)
}

func (suite *checkoutSuite) TestPlaceOrder() {
	t := suite.T()
	ctx := t.Context()

	customer, err := suite.api.AddCustomer(domain.Customer{
		Email:     gofakeit.Email(),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
	}, "secret123")
	require.NoError(t, err)

	auth, err := suite.client.SignIn(ctx, domain.SignIn{Email: customer.Email, Password: "secret123"})
	require.NoError(t, err)
	suite.session.token = auth.AccessToken

	product, err := suite.client.Product(ctx, fake.DemoHeadphonesID)
	require.NoError(t, err)

	selection := domain.NewSelection(product)
	require.NoError(t, selection.SelectVariant("Size", "v-size-l"))
	_, err = selection.ToggleOption("o-case")
	require.NoError(t, err)

	_, _, err = suite.carts.Add(ctx, fake.DemoStoreSlug, selection.CartItem(2, ""))
	require.NoError(t, err)

	address := domain.Address{
		FullName:   customer.FullName(),
		Street:     gofakeit.Street(),
		City:       gofakeit.City(),
		PostalCode: gofakeit.Zip(),
		CountryID:  "US",
	}

	_, err = suite.service.PlaceOrder(ctx, checkout.PlaceOrderRequest{OwnerID: fake.DemoStoreSlug, Address: address})
	require.ErrorIs(t, err, checkout.ErrNotSignedIn)

	_, err = suite.service.PlaceOrder(ctx, checkout.PlaceOrderRequest{
		OwnerID:  fake.DemoStoreSlug,
		Customer: &auth.Customer,
		Address:  domain.Address{FullName: "No Street"},
	})
	require.ErrorIs(t, err, checkout.ErrInvalidAddress)

	placed, err := suite.service.PlaceOrder(ctx, checkout.PlaceOrderRequest{
		OwnerID:    fake.DemoStoreSlug,
		Customer:   &auth.Customer,
		Address:    address,
		ShippingID: "express",
	})
	require.NoError(t, err)

	// (10 + 2 + 4.50) * 2 = 33, tax 2.64, express 9.99
	assert.NotEmpty(t, placed.ID)
	assert.Equal(t, domain.OrderSourceMobile, placed.Source)
	assert.Equal(t, "express", placed.ShippingMethod)
	assert.True(t, placed.SubTotal.Equal(decimal.NewFromInt(33)))
	assert.True(t, placed.Tax.Equal(decimal.RequireFromString("2.64")))
	assert.True(t, placed.Total.Equal(decimal.RequireFromString("45.63")))
	require.Len(t, placed.Items, 1)
	assert.Equal(t, 2, placed.Items[0].Quantity)
	assert.True(t, placed.Items[0].UnitPrice.Equal(decimal.RequireFromString("16.5")))

	c, err := suite.carts.Get(ctx, fake.DemoStoreSlug)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty(), "cart is cleared after the order is placed")

	_, err = suite.service.PlaceOrder(ctx, checkout.PlaceOrderRequest{
		OwnerID:  fake.DemoStoreSlug,
		Customer: &auth.Customer,
		Address:  address,
	})
	require.ErrorIs(t, err, checkout.ErrEmptyCart)
}

func (suite *checkoutSuite) TestPlaceOrder_NilLogger() {
	t := suite.T()
	ctx := t.Context()

	service, err := checkout.NewService(suite.carts, suite.client, suite.client, checkout.WithLogger(nil))
	require.NoError(t, err)

	customer, err := suite.api.AddCustomer(domain.Customer{
		Email:     gofakeit.Email(),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
	}, "secret123")
	require.NoError(t, err)

	auth, err := suite.client.SignIn(ctx, domain.SignIn{Email: customer.Email, Password: "secret123"})
	require.NoError(t, err)
	suite.session.token = auth.AccessToken

	product, err := suite.client.Product(ctx, fake.DemoChargerID)
	require.NoError(t, err)

	_, _, err = suite.carts.Add(ctx, fake.DemoStoreSlug, domain.NewSelection(product).CartItem(1, ""))
	require.NoError(t, err)

	placed, err := service.PlaceOrder(ctx, checkout.PlaceOrderRequest{
		OwnerID:  fake.DemoStoreSlug,
		Customer: &auth.Customer,
		Address: domain.Address{
			FullName:   customer.FullName(),
			Street:     gofakeit.Street(),
			City:       gofakeit.City(),
			PostalCode: gofakeit.Zip(),
			CountryID:  "DE",
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, placed.ID)
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := checkout.NewService(nil, nil, nil)
	require.Error(t, err)
}

func largeItem(quantity int) domain.CartItem {
	return domain.CartItem{
		ProductID:     uuid.MustParse("6d3e2b1a-5c4f-4e8d-9a7b-1c2d3e4f5a6b"),
		Title:         "P",
		UnitBasePrice: decimal.NewFromInt(10),
		Quantity:      quantity,
		VariantIDs:    []string{"large"},
		SelectedOptions: []domain.SelectedOption{
			{ID: "large", Label: "Size: Large", ExtraPrice: decimal.NewFromInt(2)},
		},
	}
}
