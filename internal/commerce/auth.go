package commerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nikolayk812/storefront/internal/domain"
)

func (c *Client) SignUp(ctx context.Context, req domain.SignUp) (domain.Auth, error) {
	in := SignUpDTO{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
	}

	var out AuthResponseDTO
	if err := c.do(ctx, http.MethodPost, "/auth/client/sign-up", nil, in, &out); err != nil {
		return domain.Auth{}, err
	}

	return out.ToDomain(), nil
}

func (c *Client) SignIn(ctx context.Context, req domain.SignIn) (domain.Auth, error) {
	in := SignInDTO{Email: req.Email, Password: req.Password}

	var out AuthResponseDTO
	if err := c.do(ctx, http.MethodPost, "/auth/client/sign-in", nil, in, &out); err != nil {
		return domain.Auth{}, err
	}

	return out.ToDomain(), nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/client/logout", nil, struct{}{}, nil)
}

func (c *Client) CurrentCustomer(ctx context.Context) (domain.Customer, error) {
	var out CustomerDTO
	if err := c.get(ctx, "/auth/client/current", nil, &out); err != nil {
		return domain.Customer{}, err
	}

	return out.ToDomain(), nil
}

func (c *Client) UpdateProfile(ctx context.Context, customerID string, update domain.ProfileUpdate) (domain.Customer, error) {
	if customerID == "" {
		return domain.Customer{}, fmt.Errorf("customerID is empty")
	}

	in := ProfileUpdateDTO{
		FirstName: update.FirstName,
		LastName:  update.LastName,
		Email:     update.Email,
		Phone:     update.Phone,
	}

	var out CustomerDTO
	path := "/auth/client/profile/" + url.PathEscape(customerID)
	if err := c.do(ctx, http.MethodPut, path, nil, in, &out); err != nil {
		return domain.Customer{}, err
	}

	return out.ToDomain(), nil
}
