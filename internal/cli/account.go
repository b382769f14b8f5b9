package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/storefront/internal/commerce"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/session"
	"go.uber.org/zap"
)

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "register")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password, at least 6 characters")
	confirm := fs.String("confirm", "", "password again")
	phone := fs.String("phone", "", "phone number")

	positional, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 0 {
		return errUsage
	}

	req := domain.SignUp{
		FirstName: *first,
		LastName:  *last,
		Email:     *email,
		Password:  *password,
		Phone:     *phone,
	}
	if err := domain.ValidateSignUp(req, *confirm); err != nil {
		return err
	}

	auth, err := a.client.SignUp(ctx, req)
	if err != nil {
		return err
	}

	if err := a.saveAuth(auth); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Welcome, %s\n", auth.Customer.FullName())
	return nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "login")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")

	positional, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 0 || *email == "" || *password == "" {
		return errUsage
	}

	auth, err := a.client.SignIn(ctx, domain.SignIn{Email: *email, Password: *password})
	if errors.Is(err, commerce.ErrUnauthorized) {
		return fmt.Errorf("invalid email or password")
	}
	if err != nil {
		return err
	}

	if err := a.saveAuth(auth); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Signed in as %s\n", auth.Customer.Email)
	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return errUsage
	}

	// the local session is dropped even if the server no longer knows the token
	if err := a.client.Logout(ctx); err != nil && !errors.Is(err, commerce.ErrUnauthorized) {
		a.logger.Warn("remote logout failed", zap.Error(err))
	}

	_, err := a.session.Update(func(s *session.State) {
		s.AccessToken = ""
		s.Customer = nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, "Signed out")
	return nil
}

func runProfile(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "profile")
	first := fs.String("first", "", "new first name")
	last := fs.String("last", "", "new last name")
	email := fs.String("email", "", "new email")
	phone := fs.String("phone", "", "new phone number")

	positional, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 0 {
		return errUsage
	}

	state, err := a.session.Load()
	if err != nil {
		return err
	}
	if !state.SignedIn() {
		return commerce.ErrUnauthorized
	}

	update := domain.ProfileUpdate{FirstName: *first, LastName: *last, Email: *email, Phone: *phone}

	var customer domain.Customer
	if update == (domain.ProfileUpdate{}) {
		customer, err = a.client.CurrentCustomer(ctx)
	} else {
		customer, err = a.client.UpdateProfile(ctx, state.Customer.ID, update)
	}
	if err != nil {
		return err
	}

	if _, err := a.session.Update(func(s *session.State) { s.Customer = &customer }); err != nil {
		return err
	}

	renderCustomer(a.stdout, customer)
	return nil
}

func (a *app) saveAuth(auth domain.Auth) error {
	_, err := a.session.Update(func(s *session.State) {
		s.AccessToken = auth.AccessToken
		s.Customer = &auth.Customer
	})
	return err
}
