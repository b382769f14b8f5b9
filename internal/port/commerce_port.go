package port

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

var (
	// ErrNotFound is matched by errors.Is when a remote resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoStore is returned by store slug sources before a store is selected.
	ErrNoStore = errors.New("no store selected")
)

type Catalog interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Category(ctx context.Context, id string) (domain.Category, error)
	Products(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error)
	Product(ctx context.Context, id uuid.UUID) (domain.Product, error)
	StoreBySlug(ctx context.Context, slug string) (domain.Store, error)
	Countries(ctx context.Context) ([]domain.Country, error)
}

type Auth interface {
	SignUp(ctx context.Context, req domain.SignUp) (domain.Auth, error)
	SignIn(ctx context.Context, req domain.SignIn) (domain.Auth, error)
	Logout(ctx context.Context) error
	CurrentCustomer(ctx context.Context) (domain.Customer, error)
	UpdateProfile(ctx context.Context, customerID string, update domain.ProfileUpdate) (domain.Customer, error)
}

type Orders interface {
	PlaceOrder(ctx context.Context, order domain.Order) (domain.Order, error)
}
