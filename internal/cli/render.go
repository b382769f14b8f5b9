package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const shortKeyLen = 8

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func money(amount decimal.Decimal, unit currency.Unit) string {
	return domain.Money{Amount: amount, Currency: unit}.String()
}

// delta renders an option price change, e.g. "+2.00"; zero renders empty.
func delta(amount decimal.Decimal) string {
	if amount.IsZero() {
		return ""
	}
	if amount.IsPositive() {
		return "+" + amount.StringFixed(2)
	}
	return amount.StringFixed(2)
}

func shortKey(key string) string {
	if len(key) <= shortKeyLen {
		return key
	}
	return key[:shortKeyLen]
}

func optionLabels(options []domain.SelectedOption) string {
	labels := make([]string, 0, len(options))
	for _, opt := range options {
		labels = append(labels, opt.Label)
	}
	return strings.Join(labels, ", ")
}

func renderProducts(w io.Writer, page domain.ProductPage, unit currency.Unit) {
	t := newTable(w)
	fmt.Fprintln(t, "ID\tTITLE\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range page.Items {
		stock := "in stock"
		if !p.InStock {
			stock = "out of stock"
		}
		fmt.Fprintf(t, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.CategoryName, productPrice(p, unit), stock)
	}
	_ = t.Flush()

	fmt.Fprintf(w, "\npage %d, %d of %d products\n", page.Page, len(page.Items), page.Total)
}

func productPrice(p domain.Product, unit currency.Unit) string {
	price := money(p.BasePrice, unit)
	if p.DiscountedPrice.Valid {
		price += " (now " + money(p.DiscountedPrice.Decimal, unit) + ")"
	}
	return price
}

func renderProduct(w io.Writer, p domain.Product, unit currency.Unit, media string) {
	fmt.Fprintf(w, "%s\n", p.Title)
	fmt.Fprintf(w, "id:       %s\n", p.ID)
	if p.CategoryName != "" {
		fmt.Fprintf(w, "category: %s\n", p.CategoryName)
	}
	fmt.Fprintf(w, "price:    %s\n", productPrice(p, unit))
	if p.ReviewCount > 0 {
		fmt.Fprintf(w, "rating:   %.1f (%d reviews)\n", p.AverageRating, p.ReviewCount)
	}
	if !p.InStock {
		fmt.Fprintln(w, "stock:    out of stock")
	}
	if media != "" {
		fmt.Fprintf(w, "image:    %s\n", media)
	}
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}

	for _, group := range p.Variants {
		fmt.Fprintf(w, "\n%s (choose one, -variant \"%s=<id>\")\n", group.Name, group.Name)
		t := newTable(w)
		for _, v := range group.Options {
			fmt.Fprintf(t, "  %s\t%s\t%s\n", v.ID, v.Value, delta(v.Price))
		}
		_ = t.Flush()
	}

	for _, group := range p.OptionGroups {
		fmt.Fprintf(w, "\n%s (add-ons, -option <id>)\n", group.Name)
		t := newTable(w)
		for _, o := range group.Options {
			fmt.Fprintf(t, "  %s\t%s\t%s\n", o.ID, o.Name, delta(o.Price))
		}
		_ = t.Flush()
	}
}

func renderCart(w io.Writer, cart domain.Cart) {
	if cart.IsEmpty() {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}

	t := newTable(w)
	fmt.Fprintln(t, "#\tLINE\tTITLE\tOPTIONS\tQTY\tUNIT\tTOTAL")
	for i, item := range cart.Items {
		fmt.Fprintf(t, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			i+1,
			shortKey(item.Key),
			item.Title,
			optionLabels(item.SelectedOptions),
			item.Quantity,
			money(item.UnitPrice(), cart.Currency),
			money(item.LineTotal(), cart.Currency),
		)
	}
	_ = t.Flush()

	fmt.Fprintf(w, "\nitems:    %d\n", cart.ItemCount())
	fmt.Fprintf(w, "subtotal: %s\n", cart.Subtotal())
}

func renderQuote(w io.Writer, q checkout.Quote) {
	t := newTable(w)
	fmt.Fprintf(t, "subtotal\t%s\n", q.SubTotal)
	fmt.Fprintf(t, "shipping\t%s\t%s, %s\n", money(q.Shipping.Price, q.Total.Currency), q.Shipping.Name, q.Shipping.Duration)
	fmt.Fprintf(t, "tax\t%s\n", q.Tax)
	fmt.Fprintf(t, "total\t%s\n", q.Total)
	_ = t.Flush()
}

func renderShippingMethods(w io.Writer, methods []checkout.ShippingMethod, unit currency.Unit) {
	t := newTable(w)
	fmt.Fprintln(t, "SHIPPING\tNAME\tDELIVERY\tPRICE")
	for _, m := range methods {
		fmt.Fprintf(t, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Duration, money(m.Price, unit))
	}
	_ = t.Flush()
}

func renderPriceChanges(w io.Writer, changes []checkout.PriceChange, unit currency.Unit) {
	if len(changes) == 0 {
		return
	}

	fmt.Fprintln(w, "some cart lines changed since they were added:")
	for _, c := range changes {
		if c.Unavailable {
			fmt.Fprintf(w, "  %s  %s is no longer available\n", shortKey(c.Key), c.Title)
			continue
		}
		fmt.Fprintf(w, "  %s  %s: %s -> %s\n", shortKey(c.Key), c.Title, money(c.CartUnitPrice, unit), money(c.CurrentUnitPrice, unit))
	}
}

func renderCustomer(w io.Writer, c domain.Customer) {
	t := newTable(w)
	fmt.Fprintf(t, "name\t%s\n", c.FullName())
	fmt.Fprintf(t, "email\t%s\n", c.Email)
	if c.Phone != "" {
		fmt.Fprintf(t, "phone\t%s\n", c.Phone)
	}
	fmt.Fprintf(t, "id\t%s\n", c.ID)
	_ = t.Flush()
}
