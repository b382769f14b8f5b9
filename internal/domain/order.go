package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const OrderSourceMobile = "mobile"

type Address struct {
	FullName   string
	Street     string
	City       string
	PostalCode string
	CountryID  string
	Phone      string
}

type OrderItem struct {
	ProductID uuid.UUID
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
	Options   []SelectedOption
	Total     decimal.Decimal
}

type Order struct {
	ID              string
	Items           []OrderItem
	Customer        Customer
	SubTotal        decimal.Decimal
	ShippingMethod  string
	ShippingCost    decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	DeliveryAddress Address
	Status          string
	Source          string

	CreatedAt time.Time
}

// OrderItemFromCart freezes a cart line into an order line.
func OrderItemFromCart(item CartItem) OrderItem {
	return OrderItem{
		ProductID: item.ProductID,
		Title:     item.Title,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice(),
		Options:   item.SelectedOptions,
		Total:     item.LineTotal(),
	}
}
