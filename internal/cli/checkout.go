package cli

import (
	"context"
	"fmt"

	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/domain"
)

func runCheckout(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "checkout")
	shipping := fs.String("shipping", "", "shipping method id (default: first listed)")
	place := fs.Bool("place", false, "place the order")
	name := fs.String("name", "", "recipient full name (default: your profile name)")
	street := fs.String("street", "", "street address")
	city := fs.String("city", "", "city")
	postal := fs.String("postal", "", "postal code")
	country := fs.String("country", "", "country id, see: storefront countries")
	phone := fs.String("phone", "", "contact phone (default: your profile phone)")

	positional, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 0 {
		return errUsage
	}

	state, err := a.requireStore()
	if err != nil {
		return err
	}

	service, err := a.checkoutService(ctx, state)
	if err != nil {
		return err
	}

	cart, err := a.carts.Get(ctx, state.StoreSlug)
	if err != nil {
		return err
	}

	quote, err := service.Quote(cart, *shipping)
	if err != nil {
		return err
	}

	changes, err := service.Verify(ctx, cart)
	if err != nil {
		return err
	}

	renderCart(a.stdout, cart)
	fmt.Fprintln(a.stdout)
	renderShippingMethods(a.stdout, service.ShippingMethods(), cart.Currency)
	fmt.Fprintln(a.stdout)
	renderQuote(a.stdout, quote)
	renderPriceChanges(a.stdout, changes, cart.Currency)

	if !*place {
		fmt.Fprintln(a.stdout, "\nrun again with -place and a delivery address to order")
		return nil
	}
	if len(changes) > 0 {
		return fmt.Errorf("cart is out of date, update or remove the listed lines first")
	}
	if !state.SignedIn() {
		return checkout.ErrNotSignedIn
	}

	address := domain.Address{
		FullName:   *name,
		Street:     *street,
		City:       *city,
		PostalCode: *postal,
		CountryID:  *country,
		Phone:      *phone,
	}
	if address.FullName == "" {
		address.FullName = state.Customer.FullName()
	}
	if address.Phone == "" {
		address.Phone = state.Customer.Phone
	}

	order, err := service.PlaceOrder(ctx, checkout.PlaceOrderRequest{
		OwnerID:    state.StoreSlug,
		Customer:   state.Customer,
		Address:    address,
		ShippingID: *shipping,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "\nOrder %s placed, total %s\n", order.ID, money(order.Total, cart.Currency))
	return nil
}
