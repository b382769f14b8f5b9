package commerce

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nikolayk812/storefront/internal/domain"
)

func (c *Client) PlaceOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if len(order.Items) == 0 {
		return domain.Order{}, fmt.Errorf("order has no items")
	}

	var out OrderDTO
	if err := c.do(ctx, http.MethodPost, "/client/orders", nil, NewOrderDTO(order), &out); err != nil {
		return domain.Order{}, err
	}

	placed, err := out.ToDomain()
	if err != nil {
		return domain.Order{}, fmt.Errorf("dto.ToDomain: %w", err)
	}

	return placed, nil
}
