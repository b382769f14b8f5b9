package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"golang.org/x/text/currency"
)

const (
	liteGetCartSQL = `SELECT currency FROM carts WHERE owner_id = ?`

	liteGetCartItemsSQL = `
SELECT line_key, product_id, title, unit_base_price, image, quantity,
       variant_ids, option_ids, options, created_at
FROM cart_items
WHERE owner_id = ?
ORDER BY position`

	liteUpsertCartSQL = `
INSERT INTO carts (owner_id, currency, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (owner_id) DO UPDATE SET currency = excluded.currency, updated_at = excluded.updated_at`

	liteDeleteCartItemsSQL = `DELETE FROM cart_items WHERE owner_id = ?`

	liteInsertCartItemSQL = `
INSERT INTO cart_items (owner_id, line_key, position, product_id, title, unit_base_price, image,
                        quantity, variant_ids, option_ids, options, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	liteDeleteCartSQL = `DELETE FROM carts WHERE owner_id = ?`
)

// localCartRepository keeps carts in a SQLite file on the shopper's machine.
type localCartRepository struct {
	db *sql.DB
}

func NewLocalCart(db *sql.DB) (port.CartRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	return &localCartRepository{db: db}, nil
}

func (r *localCartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	var code string
	err := r.db.QueryRowContext(ctx, liteGetCartSQL, ownerID).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{OwnerID: ownerID}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("db.GetCart: %w", err)
	}

	parsedCurrency, err := currency.ParseISO(code)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}

	dbItems, err := r.getCartItems(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, err
	}

	items, err := mapCartItemRowsToDomain(dbItems)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapCartItemRowsToDomain: %w", err)
	}

	return domain.Cart{
		OwnerID:  ownerID,
		Currency: parsedCurrency,
		Items:    items,
	}, nil
}

func (r *localCartRepository) getCartItems(ctx context.Context, ownerID string) ([]cartItemRow, error) {
	rows, err := r.db.QueryContext(ctx, liteGetCartItemsSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db.GetCartItems: %w", err)
	}
	defer rows.Close()

	var result []cartItemRow
	for rows.Next() {
		var (
			item                  cartItemRow
			variantIDs, optionIDs string
			options               string
		)

		err := rows.Scan(&item.LineKey, &item.ProductID, &item.Title, &item.UnitBasePrice, &item.Image,
			&item.Quantity, &variantIDs, &optionIDs, &options, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		if err := json.Unmarshal([]byte(variantIDs), &item.VariantIDs); err != nil {
			return nil, fmt.Errorf("json.Unmarshal variant_ids: %w", err)
		}
		if err := json.Unmarshal([]byte(optionIDs), &item.OptionIDs); err != nil {
			return nil, fmt.Errorf("json.Unmarshal option_ids: %w", err)
		}
		item.Options = []byte(options)

		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return result, nil
}

func (r *localCartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	if cart.OwnerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	_, err := withSQLTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		now := time.Now().UTC()

		if _, err := tx.ExecContext(ctx, liteUpsertCartSQL, cart.OwnerID, cart.Currency.String(), now); err != nil {
			return struct{}{}, fmt.Errorf("tx.UpsertCart: %w", err)
		}

		if _, err := tx.ExecContext(ctx, liteDeleteCartItemsSQL, cart.OwnerID); err != nil {
			return struct{}{}, fmt.Errorf("tx.DeleteCartItems: %w", err)
		}

		for i, item := range cart.Items {
			options, err := marshalOptions(item.SelectedOptions)
			if err != nil {
				return struct{}{}, err
			}

			variantIDs, err := json.Marshal(nonNil(item.VariantIDs))
			if err != nil {
				return struct{}{}, fmt.Errorf("json.Marshal variant_ids: %w", err)
			}
			optionIDs, err := json.Marshal(nonNil(item.OptionIDs))
			if err != nil {
				return struct{}{}, fmt.Errorf("json.Marshal option_ids: %w", err)
			}

			_, err = tx.ExecContext(ctx, liteInsertCartItemSQL,
				cart.OwnerID,
				item.Key,
				i,
				item.ProductID.String(),
				item.Title,
				item.UnitBasePrice.String(),
				item.Image,
				item.Quantity,
				string(variantIDs),
				string(optionIDs),
				string(options),
				createdAt(item),
			)
			if err != nil {
				return struct{}{}, fmt.Errorf("tx.InsertCartItem[%s]: %w", item.Key, err)
			}
		}

		return struct{}{}, nil
	})

	return err
}

func (r *localCartRepository) DeleteCart(ctx context.Context, ownerID string) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	return withSQLTx(ctx, r.db, func(tx *sql.Tx) (bool, error) {
		if _, err := tx.ExecContext(ctx, liteDeleteCartItemsSQL, ownerID); err != nil {
			return false, fmt.Errorf("tx.DeleteCartItems: %w", err)
		}

		res, err := tx.ExecContext(ctx, liteDeleteCartSQL, ownerID)
		if err != nil {
			return false, fmt.Errorf("tx.DeleteCart: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("res.RowsAffected: %w", err)
		}

		return affected > 0, nil
	})
}
