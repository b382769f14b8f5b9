package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"golang.org/x/text/currency"
)

const (
	pgGetCartSQL = `SELECT currency FROM carts WHERE owner_id = $1`

	pgGetCartItemsSQL = `
SELECT line_key, product_id::text, title, unit_base_price::text, image, quantity,
       variant_ids, option_ids, options, created_at
FROM cart_items
WHERE owner_id = $1
ORDER BY position`

	pgUpsertCartSQL = `
INSERT INTO carts (owner_id, currency, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (owner_id) DO UPDATE SET currency = EXCLUDED.currency, updated_at = now()`

	pgDeleteCartItemsSQL = `DELETE FROM cart_items WHERE owner_id = $1`

	pgInsertCartItemSQL = `
INSERT INTO cart_items (owner_id, line_key, position, product_id, title, unit_base_price, image,
                        quantity, variant_ids, option_ids, options, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	pgDeleteCartSQL = `DELETE FROM carts WHERE owner_id = $1`
)

type cartRepository struct {
	q    dbtx
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) (port.CartRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &cartRepository{
		q:    pool,
		pool: pool,
	}, nil
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    tx,
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, fmt.Errorf("ownerID is empty")
	}

	var code string
	err := r.q.QueryRow(ctx, pgGetCartSQL, ownerID).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{OwnerID: ownerID}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCart: %w", err)
	}

	parsedCurrency, err := currency.ParseISO(code)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}

	rows, err := r.q.Query(ctx, pgGetCartItemsSQL, ownerID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCartItems: %w", err)
	}

	dbItems, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (cartItemRow, error) {
		var item cartItemRow
		err := row.Scan(&item.LineKey, &item.ProductID, &item.Title, &item.UnitBasePrice, &item.Image,
			&item.Quantity, &item.VariantIDs, &item.OptionIDs, &item.Options, &item.CreatedAt)
		return item, err
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("pgx.CollectRows: %w", err)
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

func (r *cartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	if cart.OwnerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	_, err := withTx(ctx, r.pool, r.q, func(q dbtx) (struct{}, error) {
		if _, err := q.Exec(ctx, pgUpsertCartSQL, cart.OwnerID, cart.Currency.String()); err != nil {
			return struct{}{}, fmt.Errorf("q.UpsertCart: %w", err)
		}

		if _, err := q.Exec(ctx, pgDeleteCartItemsSQL, cart.OwnerID); err != nil {
			return struct{}{}, fmt.Errorf("q.DeleteCartItems: %w", err)
		}

		for i, item := range cart.Items {
			options, err := marshalOptions(item.SelectedOptions)
			if err != nil {
				return struct{}{}, err
			}

			_, err = q.Exec(ctx, pgInsertCartItemSQL,
				cart.OwnerID,
				item.Key,
				i,
				item.ProductID.String(),
				item.Title,
				item.UnitBasePrice.String(),
				item.Image,
				item.Quantity,
				nonNil(item.VariantIDs),
				nonNil(item.OptionIDs),
				options,
				createdAt(item),
			)
			if err != nil {
				return struct{}{}, fmt.Errorf("q.InsertCartItem[%s]: %w", item.Key, err)
			}
		}

		return struct{}{}, nil
	})

	return err
}

func (r *cartRepository) DeleteCart(ctx context.Context, ownerID string) (bool, error) {
	if ownerID == "" {
		return false, fmt.Errorf("ownerID is empty")
	}

	tag, err := r.q.Exec(ctx, pgDeleteCartSQL, ownerID)
	if err != nil {
		return false, fmt.Errorf("q.DeleteCart: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
