package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

// CartRepository persists one cart per owner. SaveCart replaces the stored lines.
type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)
	SaveCart(ctx context.Context, cart domain.Cart) error
	DeleteCart(ctx context.Context, ownerID string) (bool, error)
}
