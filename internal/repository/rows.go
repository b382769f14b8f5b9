package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type cartItemRow struct {
	LineKey       string
	ProductID     string
	Title         string
	UnitBasePrice string
	Image         string
	Quantity      int
	VariantIDs    []string
	OptionIDs     []string
	Options       []byte
	CreatedAt     time.Time
}

type optionRecord struct {
	ID         string          `json:"id"`
	Label      string          `json:"label"`
	ExtraPrice decimal.Decimal `json:"extraPrice"`
}

func mapCartItemRowToDomain(row cartItemRow) (domain.CartItem, error) {
	productID, err := uuid.Parse(row.ProductID)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("productID[%s] is not valid: %w", row.ProductID, err)
	}

	price, err := decimal.NewFromString(row.UnitBasePrice)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("unitBasePrice[%s] is not valid: %w", row.UnitBasePrice, err)
	}

	var records []optionRecord
	if len(row.Options) > 0 {
		if err := json.Unmarshal(row.Options, &records); err != nil {
			return domain.CartItem{}, fmt.Errorf("json.Unmarshal options: %w", err)
		}
	}

	options := make([]domain.SelectedOption, 0, len(records))
	for _, r := range records {
		options = append(options, domain.SelectedOption{ID: r.ID, Label: r.Label, ExtraPrice: r.ExtraPrice})
	}

	return domain.CartItem{
		Key:             row.LineKey,
		ProductID:       productID,
		Title:           row.Title,
		UnitBasePrice:   price,
		Image:           row.Image,
		Quantity:        row.Quantity,
		VariantIDs:      row.VariantIDs,
		OptionIDs:       row.OptionIDs,
		SelectedOptions: options,
		CreatedAt:       row.CreatedAt,
	}, nil
}

func mapCartItemRowsToDomain(rows []cartItemRow) ([]domain.CartItem, error) {
	var items []domain.CartItem

	for _, row := range rows {
		item, err := mapCartItemRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapCartItemRowToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}

func marshalOptions(options []domain.SelectedOption) ([]byte, error) {
	records := make([]optionRecord, 0, len(options))
	for _, opt := range options {
		records = append(records, optionRecord{ID: opt.ID, Label: opt.Label, ExtraPrice: opt.ExtraPrice})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal options: %w", err)
	}
	return data, nil
}

func createdAt(item domain.CartItem) time.Time {
	if item.CreatedAt.IsZero() {
		return time.Now().UTC()
	}
	return item.CreatedAt
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
