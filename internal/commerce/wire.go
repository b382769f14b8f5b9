package commerce

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Amount is a decimal that travels as a bare JSON number, the way the API sends prices.
type Amount decimal.Decimal

func NewAmount(d decimal.Decimal) Amount {
	return Amount(d)
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.Decimal(a)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*a = Amount(d)
	return nil
}

type CategoryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

type ProductDTO struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	CategoryName    string            `json:"categoryName,omitempty"`
	BasePrice       Amount            `json:"basePrice"`
	DiscountedPrice *Amount           `json:"discountedPrice,omitempty"`
	MediasURLs      []string          `json:"mediasUrls"`
	AverageRating   float64           `json:"averageRating"`
	ReviewCount     int               `json:"reviewCount"`
	InStock         bool              `json:"inStock"`
	Variants        []VariantGroupDTO `json:"variants"`
	OptionGroups    []OptionGroupDTO  `json:"optionGroups"`
}

type VariantGroupDTO struct {
	VariantName string       `json:"variantName"`
	Options     []VariantDTO `json:"options"`
}

type VariantDTO struct {
	VariantID    string `json:"variantId"`
	VariantValue string `json:"variantValue"`
	VariantPrice Amount `json:"variantPrice"`
}

type OptionGroupDTO struct {
	Name    string      `json:"name"`
	Options []OptionDTO `json:"options"`
}

type OptionDTO struct {
	OptionID    string `json:"optionId"`
	OptionName  string `json:"optionName"`
	OptionPrice Amount `json:"optionPrice"`
}

type ProductPageDTO struct {
	Items []ProductDTO `json:"items"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

type StoreDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

type CountryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

type CustomerDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

type AuthResponseDTO struct {
	AccessToken string      `json:"accessToken"`
	User        CustomerDTO `json:"user"`
}

type SignUpDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone,omitempty"`
}

type SignInDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileUpdateDTO struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type AddressDTO struct {
	FullName   string `json:"fullName"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	CountryID  string `json:"countryId"`
	Phone      string `json:"phone,omitempty"`
}

type OrderOptionDTO struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	ExtraPrice Amount `json:"extraPrice"`
}

type OrderItemDTO struct {
	ProductID string           `json:"productId"`
	Title     string           `json:"title"`
	Quantity  int              `json:"quantity"`
	UnitPrice Amount           `json:"unitPrice"`
	Options   []OrderOptionDTO `json:"options,omitempty"`
	Total     Amount           `json:"total"`
}

type OrderDTO struct {
	ID              string         `json:"id,omitempty"`
	OrderItems      []OrderItemDTO `json:"orderItems"`
	Customer        CustomerDTO    `json:"customer"`
	SubTotal        Amount         `json:"subTotal"`
	ShippingMethod  string         `json:"shippingMethod,omitempty"`
	ShippingCost    Amount         `json:"shippingCost"`
	Tax             Amount         `json:"tax"`
	Total           Amount         `json:"total"`
	DeliveryAddress AddressDTO     `json:"deliveryAddress"`
	Status          string         `json:"status,omitempty"`
	CreatedAt       *time.Time     `json:"createdAt,omitempty"`
	Source          string         `json:"source"`
}

func NewCategoryDTO(c domain.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, Icon: c.Icon}
}

func (d CategoryDTO) ToDomain() domain.Category {
	return domain.Category{ID: d.ID, Name: d.Name, Icon: d.Icon}
}

func NewProductDTO(p domain.Product) ProductDTO {
	dto := ProductDTO{
		ID:            p.ID.String(),
		Title:         p.Title,
		Description:   p.Description,
		CategoryName:  p.CategoryName,
		BasePrice:     Amount(p.BasePrice),
		MediasURLs:    p.MediaURLs,
		AverageRating: p.AverageRating,
		ReviewCount:   p.ReviewCount,
		InStock:       p.InStock,
	}

	if p.DiscountedPrice.Valid {
		discounted := Amount(p.DiscountedPrice.Decimal)
		dto.DiscountedPrice = &discounted
	}

	for _, group := range p.Variants {
		g := VariantGroupDTO{VariantName: group.Name}
		for _, v := range group.Options {
			g.Options = append(g.Options, VariantDTO{VariantID: v.ID, VariantValue: v.Value, VariantPrice: Amount(v.Price)})
		}
		dto.Variants = append(dto.Variants, g)
	}

	for _, group := range p.OptionGroups {
		g := OptionGroupDTO{Name: group.Name}
		for _, o := range group.Options {
			g.Options = append(g.Options, OptionDTO{OptionID: o.ID, OptionName: o.Name, OptionPrice: Amount(o.Price)})
		}
		dto.OptionGroups = append(dto.OptionGroups, g)
	}

	return dto
}

func (d ProductDTO) ToDomain() (domain.Product, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product id[%s] is not valid: %w", d.ID, err)
	}

	p := domain.Product{
		ID:            id,
		Title:         d.Title,
		Description:   d.Description,
		CategoryName:  d.CategoryName,
		BasePrice:     d.BasePrice.Decimal(),
		MediaURLs:     d.MediasURLs,
		AverageRating: d.AverageRating,
		ReviewCount:   d.ReviewCount,
		InStock:       d.InStock,
	}

	if d.DiscountedPrice != nil {
		p.DiscountedPrice = decimal.NewNullDecimal(d.DiscountedPrice.Decimal())
	}

	for _, group := range d.Variants {
		g := domain.VariantGroup{Name: group.VariantName}
		for _, v := range group.Options {
			g.Options = append(g.Options, domain.Variant{ID: v.VariantID, Value: v.VariantValue, Price: v.VariantPrice.Decimal()})
		}
		p.Variants = append(p.Variants, g)
	}

	for _, group := range d.OptionGroups {
		g := domain.OptionGroup{Name: group.Name}
		for _, o := range group.Options {
			g.Options = append(g.Options, domain.Option{ID: o.OptionID, Name: o.OptionName, Price: o.OptionPrice.Decimal()})
		}
		p.OptionGroups = append(p.OptionGroups, g)
	}

	return p, nil
}

func (d ProductPageDTO) ToDomain() (domain.ProductPage, error) {
	page := domain.ProductPage{
		Total: d.Total,
		Page:  d.Page,
		Limit: d.Limit,
		Items: make([]domain.Product, 0, len(d.Items)),
	}

	for _, item := range d.Items {
		p, err := item.ToDomain()
		if err != nil {
			return domain.ProductPage{}, err
		}
		page.Items = append(page.Items, p)
	}

	return page, nil
}

func NewStoreDTO(s domain.Store) StoreDTO {
	dto := StoreDTO{
		ID:          s.ID,
		Name:        s.Name,
		Slug:        s.Slug,
		Description: s.Description,
		LogoURL:     s.LogoURL,
	}
	if s.Currency != (currency.Unit{}) {
		dto.Currency = s.Currency.String()
	}
	return dto
}

func (d StoreDTO) ToDomain() (domain.Store, error) {
	s := domain.Store{
		ID:          d.ID,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		LogoURL:     d.LogoURL,
	}

	if d.Currency != "" {
		unit, err := currency.ParseISO(strings.ToUpper(d.Currency))
		if err != nil {
			return domain.Store{}, fmt.Errorf("currency[%s] is not valid: %w", d.Currency, err)
		}
		s.Currency = unit
	}

	return s, nil
}

func NewCountryDTO(c domain.Country) CountryDTO {
	return CountryDTO{ID: c.ID, Name: c.Name, Code: c.Code}
}

func (d CountryDTO) ToDomain() domain.Country {
	return domain.Country{ID: d.ID, Name: d.Name, Code: d.Code}
}

func NewCustomerDTO(c domain.Customer) CustomerDTO {
	return CustomerDTO{
		ID:        c.ID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
	}
}

func (d CustomerDTO) ToDomain() domain.Customer {
	return domain.Customer{
		ID:        d.ID,
		Email:     d.Email,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Phone:     d.Phone,
	}
}

func (d AuthResponseDTO) ToDomain() domain.Auth {
	return domain.Auth{AccessToken: d.AccessToken, Customer: d.User.ToDomain()}
}

func NewAddressDTO(a domain.Address) AddressDTO {
	return AddressDTO{
		FullName:   a.FullName,
		Street:     a.Street,
		City:       a.City,
		PostalCode: a.PostalCode,
		CountryID:  a.CountryID,
		Phone:      a.Phone,
	}
}

func (d AddressDTO) ToDomain() domain.Address {
	return domain.Address{
		FullName:   d.FullName,
		Street:     d.Street,
		City:       d.City,
		PostalCode: d.PostalCode,
		CountryID:  d.CountryID,
		Phone:      d.Phone,
	}
}

func NewOrderDTO(o domain.Order) OrderDTO {
	dto := OrderDTO{
		ID:              o.ID,
		Customer:        NewCustomerDTO(o.Customer),
		SubTotal:        Amount(o.SubTotal),
		ShippingMethod:  o.ShippingMethod,
		ShippingCost:    Amount(o.ShippingCost),
		Tax:             Amount(o.Tax),
		Total:           Amount(o.Total),
		DeliveryAddress: NewAddressDTO(o.DeliveryAddress),
		Status:          o.Status,
		Source:          o.Source,
		OrderItems:      make([]OrderItemDTO, 0, len(o.Items)),
	}

	if !o.CreatedAt.IsZero() {
		createdAt := o.CreatedAt
		dto.CreatedAt = &createdAt
	}

	for _, item := range o.Items {
		line := OrderItemDTO{
			ProductID: item.ProductID.String(),
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: Amount(item.UnitPrice),
			Total:     Amount(item.Total),
		}
		for _, opt := range item.Options {
			line.Options = append(line.Options, OrderOptionDTO{ID: opt.ID, Label: opt.Label, ExtraPrice: Amount(opt.ExtraPrice)})
		}
		dto.OrderItems = append(dto.OrderItems, line)
	}

	return dto
}

func (d OrderDTO) ToDomain() (domain.Order, error) {
	o := domain.Order{
		ID:              d.ID,
		Customer:        d.Customer.ToDomain(),
		SubTotal:        d.SubTotal.Decimal(),
		ShippingMethod:  d.ShippingMethod,
		ShippingCost:    d.ShippingCost.Decimal(),
		Tax:             d.Tax.Decimal(),
		Total:           d.Total.Decimal(),
		DeliveryAddress: d.DeliveryAddress.ToDomain(),
		Status:          d.Status,
		Source:          d.Source,
	}

	if d.CreatedAt != nil {
		o.CreatedAt = *d.CreatedAt
	}

	for _, item := range d.OrderItems {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("order item product id[%s] is not valid: %w", item.ProductID, err)
		}

		line := domain.OrderItem{
			ProductID: productID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.Decimal(),
			Total:     item.Total.Decimal(),
		}
		for _, opt := range item.Options {
			line.Options = append(line.Options, domain.SelectedOption{ID: opt.ID, Label: opt.Label, ExtraPrice: opt.ExtraPrice.Decimal()})
		}
		o.Items = append(o.Items, line)
	}

	return o, nil
}
