package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Category struct {
	ID   string
	Name string
	Icon string
}

type Product struct {
	ID              uuid.UUID
	Title           string
	Description     string
	CategoryName    string
	BasePrice       decimal.Decimal
	DiscountedPrice decimal.NullDecimal
	MediaURLs       []string
	AverageRating   float64
	ReviewCount     int
	InStock         bool
	Variants        []VariantGroup
	OptionGroups    []OptionGroup
}

// VariantGroup is a set of mutually exclusive options, e.g. sizes.
type VariantGroup struct {
	Name    string
	Options []Variant
}

type Variant struct {
	ID    string
	Value string
	Price decimal.Decimal
}

// OptionGroup is a set of independently toggleable add-ons.
type OptionGroup struct {
	Name    string
	Options []Option
}

type Option struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

type ProductPage struct {
	Items []Product
	Total int
	Page  int
	Limit int
}

// ProductFilter holds the catalog list query parameters.
type ProductFilter struct {
	Page       int
	Limit      int
	Query      string
	CategoryID string
}

type Store struct {
	ID          string
	Name        string
	Slug        string
	Description string
	LogoURL     string
	Currency    currency.Unit
}

type Country struct {
	ID   string
	Name string
	Code string
}
