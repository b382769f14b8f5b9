package domain

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownVariant = errors.New("unknown variant")
	ErrUnknownOption  = errors.New("unknown option")
)

// Selection tracks the options a shopper picked on a product before adding it
// to the cart. Variant groups are single-select, add-ons are toggled.
type Selection struct {
	product  Product
	variants map[string]string
	options  map[string]bool
}

// NewSelection starts with the first option of every variant group selected.
func NewSelection(product Product) *Selection {
	s := &Selection{
		product:  product,
		variants: make(map[string]string),
		options:  make(map[string]bool),
	}

	for _, group := range product.Variants {
		if len(group.Options) > 0 {
			s.variants[group.Name] = group.Options[0].ID
		}
	}

	return s
}

func (s *Selection) Product() Product {
	return s.product
}

// SelectVariant replaces the selection within the named variant group.
func (s *Selection) SelectVariant(groupName, variantID string) error {
	idx := slices.IndexFunc(s.product.Variants, func(g VariantGroup) bool {
		return g.Name == groupName
	})
	if idx < 0 {
		return fmt.Errorf("variant group[%s]: %w", groupName, ErrUnknownVariant)
	}

	group := s.product.Variants[idx]
	if !slices.ContainsFunc(group.Options, func(v Variant) bool { return v.ID == variantID }) {
		return fmt.Errorf("variant[%s] in group[%s]: %w", variantID, groupName, ErrUnknownVariant)
	}

	s.variants[groupName] = variantID
	return nil
}

// ToggleOption flips the membership of an add-on and reports whether it is now selected.
func (s *Selection) ToggleOption(optionID string) (bool, error) {
	if !s.hasOption(optionID) {
		return false, fmt.Errorf("option[%s]: %w", optionID, ErrUnknownOption)
	}

	if s.options[optionID] {
		delete(s.options, optionID)
		return false, nil
	}

	s.options[optionID] = true
	return true, nil
}

// SelectedVariantIDs returns the chosen variant IDs in product group order.
func (s *Selection) SelectedVariantIDs() []string {
	var ids []string
	for _, group := range s.product.Variants {
		if id, ok := s.variants[group.Name]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// SelectedOptionIDs returns the toggled add-on IDs in product group order.
func (s *Selection) SelectedOptionIDs() []string {
	var ids []string
	for _, group := range s.product.OptionGroups {
		for _, opt := range group.Options {
			if s.options[opt.ID] {
				ids = append(ids, opt.ID)
			}
		}
	}
	return ids
}

// SelectedOptions lists every priced choice: variants first, then add-ons.
func (s *Selection) SelectedOptions() []SelectedOption {
	var selected []SelectedOption

	for _, group := range s.product.Variants {
		id, ok := s.variants[group.Name]
		if !ok {
			continue
		}
		for _, v := range group.Options {
			if v.ID == id {
				selected = append(selected, SelectedOption{
					ID:         v.ID,
					Label:      group.Name + ": " + v.Value,
					ExtraPrice: v.Price,
				})
			}
		}
	}

	for _, group := range s.product.OptionGroups {
		for _, opt := range group.Options {
			if s.options[opt.ID] {
				selected = append(selected, SelectedOption{
					ID:         opt.ID,
					Label:      group.Name + ": " + opt.Name,
					ExtraPrice: opt.Price,
				})
			}
		}
	}

	return selected
}

// UnitPrice is the base price plus the deltas of the chosen variants and add-ons.
func (s *Selection) UnitPrice() decimal.Decimal {
	price := s.product.BasePrice
	for _, opt := range s.SelectedOptions() {
		price = price.Add(opt.ExtraPrice)
	}
	return price
}

func (s *Selection) Total(quantity int) decimal.Decimal {
	return s.UnitPrice().Mul(decimal.NewFromInt(int64(quantity)))
}

// CartItem builds the add-to-cart candidate for this selection.
func (s *Selection) CartItem(quantity int, image string) CartItem {
	title := s.product.Title
	if title == "" {
		title = "Unnamed Product"
	}

	variantIDs := s.SelectedVariantIDs()
	optionIDs := s.SelectedOptionIDs()

	return CartItem{
		Key:             LineKey(s.product.ID, variantIDs, optionIDs),
		ProductID:       s.product.ID,
		Title:           title,
		UnitBasePrice:   s.product.BasePrice,
		Image:           image,
		Quantity:        quantity,
		VariantIDs:      variantIDs,
		OptionIDs:       optionIDs,
		SelectedOptions: s.SelectedOptions(),
	}
}

func (s *Selection) hasOption(optionID string) bool {
	for _, group := range s.product.OptionGroups {
		if slices.ContainsFunc(group.Options, func(o Option) bool { return o.ID == optionID }) {
			return true
		}
	}
	return false
}
