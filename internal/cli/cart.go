package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
)

func runAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "add")
	var variants, options stringList
	fs.Var(&variants, "variant", "variant choice as group=id, repeatable")
	fs.Var(&options, "option", "add-on id, repeatable")
	qty := fs.Int("qty", 1, "quantity")

	positional, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return errUsage
	}

	state, err := a.requireStore()
	if err != nil {
		return err
	}
	if *qty < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}

	product, err := a.fetchProduct(ctx, positional[0])
	if err != nil {
		return err
	}
	if !product.InStock {
		return fmt.Errorf("%s is out of stock", product.Title)
	}

	selection := domain.NewSelection(product)
	for _, v := range variants {
		group, id, ok := strings.Cut(v, "=")
		if !ok {
			return fmt.Errorf("variant[%s] must be group=id", v)
		}
		if err := selection.SelectVariant(group, id); err != nil {
			return err
		}
	}
	for _, id := range options {
		if _, err := selection.ToggleOption(id); err != nil {
			return err
		}
	}

	image := ""
	if len(product.MediaURLs) > 0 {
		image = a.client.MediaURL(product.MediaURLs[0])
	}

	carts, err := a.cartService(ctx, state)
	if err != nil {
		return err
	}

	line, cart, err := carts.Add(ctx, state.StoreSlug, selection.CartItem(*qty, image))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Added %d x %s", *qty, line.Title)
	if labels := optionLabels(line.SelectedOptions); labels != "" {
		fmt.Fprintf(a.stdout, " (%s)", labels)
	}
	fmt.Fprintf(a.stdout, " at %s each\n", money(line.UnitPrice(), cart.Currency))
	fmt.Fprintf(a.stdout, "line %s now has %d, cart subtotal %s\n", shortKey(line.Key), line.Quantity, cart.Subtotal())

	return nil
}

func runCart(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return errUsage
	}

	state, err := a.requireStore()
	if err != nil {
		return err
	}

	carts, err := a.cartService(ctx, state)
	if err != nil {
		return err
	}

	cart, err := carts.Get(ctx, state.StoreSlug)
	if err != nil {
		return err
	}

	renderCart(a.stdout, cart)
	return nil
}

func runQty(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errUsage
	}

	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("quantity[%s] is not a number", args[1])
	}

	state, err := a.requireStore()
	if err != nil {
		return err
	}

	carts, err := a.cartService(ctx, state)
	if err != nil {
		return err
	}

	cart, err := carts.SetQuantity(ctx, state.StoreSlug, args[0], qty)
	if err != nil {
		return err
	}

	renderCart(a.stdout, cart)
	return nil
}

func runRemove(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	state, err := a.requireStore()
	if err != nil {
		return err
	}

	carts, err := a.cartService(ctx, state)
	if err != nil {
		return err
	}

	cart, removed, err := carts.Remove(ctx, state.StoreSlug, args[0])
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(a.stdout, "No line matches %s\n", args[0])
	}

	renderCart(a.stdout, cart)
	return nil
}

func runClear(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return errUsage
	}

	state, err := a.requireStore()
	if err != nil {
		return err
	}

	carts, err := a.cartService(ctx, state)
	if err != nil {
		return err
	}

	if err := carts.Clear(ctx, state.StoreSlug); err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, "Cart cleared")
	return nil
}
