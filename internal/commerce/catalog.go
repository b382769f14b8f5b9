package commerce

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

var (
	_ port.Catalog = (*Client)(nil)
	_ port.Auth    = (*Client)(nil)
	_ port.Orders  = (*Client)(nil)
)

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var dtos []CategoryDTO
	if err := c.get(ctx, "/client/categories", nil, &dtos); err != nil {
		return nil, err
	}

	result := make([]domain.Category, 0, len(dtos))
	for _, dto := range dtos {
		result = append(result, dto.ToDomain())
	}

	return result, nil
}

func (c *Client) Category(ctx context.Context, id string) (domain.Category, error) {
	if id == "" {
		return domain.Category{}, fmt.Errorf("id is empty")
	}

	var dto CategoryDTO
	if err := c.get(ctx, "/client/categories/"+url.PathEscape(id), nil, &dto); err != nil {
		return domain.Category{}, err
	}

	return dto.ToDomain(), nil
}

func (c *Client) Products(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error) {
	var dto ProductPageDTO
	if err := c.get(ctx, "/client/products", productQuery(filter), &dto); err != nil {
		return domain.ProductPage{}, err
	}

	page, err := dto.ToDomain()
	if err != nil {
		return domain.ProductPage{}, fmt.Errorf("dto.ToDomain: %w", err)
	}

	return page, nil
}

func (c *Client) Product(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	if id == uuid.Nil {
		return domain.Product{}, fmt.Errorf("id is empty")
	}

	var dto ProductDTO
	if err := c.get(ctx, "/client/products/"+id.String(), nil, &dto); err != nil {
		return domain.Product{}, err
	}

	product, err := dto.ToDomain()
	if err != nil {
		return domain.Product{}, fmt.Errorf("dto.ToDomain: %w", err)
	}

	return product, nil
}

func (c *Client) StoreBySlug(ctx context.Context, slug string) (domain.Store, error) {
	if slug == "" {
		return domain.Store{}, fmt.Errorf("slug is empty")
	}

	var dto StoreDTO
	if err := c.get(ctx, "/client/stores/by-slug/"+url.PathEscape(slug), nil, &dto); err != nil {
		return domain.Store{}, err
	}

	store, err := dto.ToDomain()
	if err != nil {
		return domain.Store{}, fmt.Errorf("dto.ToDomain: %w", err)
	}

	return store, nil
}

func (c *Client) Countries(ctx context.Context) ([]domain.Country, error) {
	var dtos []CountryDTO
	if err := c.get(ctx, "/client/countries", nil, &dtos); err != nil {
		return nil, err
	}

	result := make([]domain.Country, 0, len(dtos))
	for _, dto := range dtos {
		result = append(result, dto.ToDomain())
	}

	return result, nil
}

// NormalizeLimit clamps a page size to 1..MaxPageLimit, defaulting to DefaultPageLimit.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageLimit
	case limit > MaxPageLimit:
		return MaxPageLimit
	default:
		return limit
	}
}

func productQuery(filter domain.ProductFilter) url.Values {
	page := max(filter.Page, 0)

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(NormalizeLimit(filter.Limit)))
	if filter.Query != "" {
		q.Set("query", filter.Query)
	}
	if filter.CategoryID != "" {
		q.Set("categoryFilter", filter.CategoryID)
	}
	return q
}
