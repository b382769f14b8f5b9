package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/session"
	"golang.org/x/text/currency"
)

func runConnect(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	slug, err := session.ParseStoreCode(args[0])
	if err != nil {
		return err
	}

	store, err := a.client.StoreBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("store %s: %w", slug, err)
	}

	_, err = a.session.Update(func(s *session.State) {
		s.StoreSlug = slug
		s.StoreName = store.Name
		s.StoreCurrency = ""
		if store.Currency != (currency.Unit{}) {
			s.StoreCurrency = store.Currency.String()
		}
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Connected to %s (%s)\n", store.Name, slug)
	return nil
}

func runCategories(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	if _, err := a.requireStore(); err != nil {
		return err
	}

	categories, err := a.client.Categories(ctx)
	if err != nil {
		return err
	}

	t := newTable(a.stdout)
	fmt.Fprintln(t, "ID\tNAME")
	for _, c := range categories {
		fmt.Fprintf(t, "%s\t%s\n", c.ID, c.Name)
	}
	return t.Flush()
}

func runProducts(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "products")
	query := fs.String("query", "", "search text")
	category := fs.String("category", "", "category id")
	page := fs.Int("page", 0, "page number, starting at 0")
	limit := fs.Int("limit", 20, "page size, at most 100")

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

	result, err := a.client.Products(ctx, domain.ProductFilter{
		Page:       *page,
		Limit:      *limit,
		Query:      *query,
		CategoryID: *category,
	})
	if err != nil {
		return err
	}

	renderProducts(a.stdout, result, a.storeCurrency(state))
	return nil
}

func runProduct(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	state, err := a.requireStore()
	if err != nil {
		return err
	}

	product, err := a.fetchProduct(ctx, args[0])
	if err != nil {
		return err
	}

	media := ""
	if len(product.MediaURLs) > 0 {
		media = a.client.MediaURL(product.MediaURLs[0])
	}

	renderProduct(a.stdout, product, a.storeCurrency(state), media)
	return nil
}

func runCountries(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return errUsage
	}

	countries, err := a.client.Countries(ctx)
	if err != nil {
		return err
	}

	t := newTable(a.stdout)
	fmt.Fprintln(t, "ID\tCODE\tNAME")
	for _, c := range countries {
		fmt.Fprintf(t, "%s\t%s\t%s\n", c.ID, c.Code, c.Name)
	}
	return t.Flush()
}

func (a *app) fetchProduct(ctx context.Context, rawID string) (domain.Product, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product id[%s] is not valid", rawID)
	}

	product, err := a.client.Product(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, err)
	}

	return product, nil
}

func (a *app) storeCurrency(state session.State) currency.Unit {
	for _, code := range []string{state.StoreCurrency, a.cfg.Cart.Currency} {
		if unit, err := currency.ParseISO(code); err == nil {
			return unit
		}
	}
	return currency.USD
}
