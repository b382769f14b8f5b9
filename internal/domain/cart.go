package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// lineKeyNamespace seeds the name-based UUIDs used as cart line keys.
var lineKeyNamespace = uuid.MustParse("6f1c7e64-8d0a-4f3b-9a52-3c1e2b7d9f10")

// Cart is the set of line items a customer collected in one store.
// OwnerID is the store slug the cart belongs to.
type Cart struct {
	OwnerID  string
	Currency currency.Unit
	Items    []CartItem
}

// CartItem is one cart line: a product with a specific option selection and quantity.
type CartItem struct {
	Key             string
	ProductID       uuid.UUID
	Title           string
	UnitBasePrice   decimal.Decimal
	Image           string
	Quantity        int
	VariantIDs      []string
	OptionIDs       []string
	SelectedOptions []SelectedOption

	CreatedAt time.Time
}

type SelectedOption struct {
	ID         string
	Label      string
	ExtraPrice decimal.Decimal
}

// LineKey derives the identity of a cart line from the product and its selected
// variant and option IDs. The ID sets are order-insensitive.
func LineKey(productID uuid.UUID, variantIDs, optionIDs []string) string {
	variants := slices.Clone(variantIDs)
	slices.Sort(variants)
	options := slices.Clone(optionIDs)
	slices.Sort(options)

	var name strings.Builder
	name.WriteString(productID.String())
	writeIDs(&name, variants)
	writeIDs(&name, options)

	return uuid.NewSHA1(lineKeyNamespace, []byte(name.String())).String()
}

// writeIDs appends a length-prefixed ID list, so no ID content can mimic a separator.
func writeIDs(b *strings.Builder, ids []string) {
	b.WriteString("|" + strconv.Itoa(len(ids)))
	for _, id := range ids {
		b.WriteString(":" + strconv.Itoa(len(id)) + ":" + id)
	}
}

// UnitPrice is the base price plus every selected option's extra price.
func (i CartItem) UnitPrice() decimal.Decimal {
	price := i.UnitBasePrice
	for _, opt := range i.SelectedOptions {
		price = price.Add(opt.ExtraPrice)
	}
	return price
}

// LineTotal is always derived from the unit price and quantity, never stored.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AddItem merges the candidate into the line with the same key, or appends it
// as a new line. It returns the resulting line.
func (c *Cart) AddItem(candidate CartItem) CartItem {
	if candidate.Quantity <= 0 {
		candidate.Quantity = 1
	}
	candidate.Key = LineKey(candidate.ProductID, candidate.VariantIDs, candidate.OptionIDs)

	if idx := c.indexOf(candidate.Key); idx >= 0 {
		c.Items[idx].Quantity += candidate.Quantity
		return c.Items[idx]
	}

	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = time.Now().UTC()
	}
	c.Items = append(c.Items, candidate)

	return candidate
}

// SetQuantity updates the quantity of the line with the given key.
// A quantity of zero or less removes the line.
// It reports whether a line with the key was found.
func (c *Cart) SetQuantity(key string, quantity int) bool {
	idx := c.indexOf(key)
	if idx < 0 {
		return false
	}

	if quantity <= 0 {
		c.Items = slices.Delete(c.Items, idx, idx+1)
		return true
	}

	c.Items[idx].Quantity = quantity
	return true
}

// RemoveItem deletes the line with the given key. Removing an absent key is a no-op.
func (c *Cart) RemoveItem(key string) bool {
	idx := c.indexOf(key)
	if idx < 0 {
		return false
	}

	c.Items = slices.Delete(c.Items, idx, idx+1)
	return true
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) Item(key string) (CartItem, bool) {
	idx := c.indexOf(key)
	if idx < 0 {
		return CartItem{}, false
	}
	return c.Items[idx], true
}

func (c *Cart) Subtotal() Money {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}

	return Money{Amount: total, Currency: c.Currency}
}

// ItemCount is the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) indexOf(key string) int {
	return slices.IndexFunc(c.Items, func(item CartItem) bool {
		return item.Key == key
	})
}
