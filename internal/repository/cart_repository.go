package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// GetOrCreate returns the cart of an owner, creating an empty one if needed.
// The unique owner_id constraint keeps concurrent first requests on one cart.
func (r *cartRepository) GetOrCreate(ctx context.Context, ownerID string) (*model.Cart, error) {
	insert := `
		INSERT INTO carts (id, owner_id)
		VALUES ($1, $2)
		ON CONFLICT (owner_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, insert, uuid.New(), ownerID); err != nil {
		r.logger.Error().Err(err).Str("owner_id", ownerID).Msg("failed to create cart")
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	cart, err := r.load(ctx, r.pool, ownerID, false)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("cart for owner %s vanished after creation", ownerID)
	}

	return cart, nil
}

// GetByOwner returns the cart of an owner with its lines, or nil.
func (r *cartRepository) GetByOwner(ctx context.Context, ownerID string) (*model.Cart, error) {
	return r.load(ctx, r.pool, ownerID, false)
}

// GetForUpdate returns the cart of an owner with its lines, locking the cart row.
func (r *cartRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, ownerID string) (*model.Cart, error) {
	return r.load(ctx, tx, ownerID, true)
}

func (r *cartRepository) load(ctx context.Context, q querier, ownerID string, lock bool) (*model.Cart, error) {
	query := `
		SELECT id, owner_id, created_at, updated_at
		FROM carts
		WHERE owner_id = $1
	`
	if lock {
		query += ` FOR UPDATE`
	}

	var cart model.Cart
	err := q.QueryRow(ctx, query, ownerID).Scan(&cart.ID, &cart.OwnerID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("owner_id", ownerID).Msg("cart not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("owner_id", ownerID).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	itemsQuery := `
		SELECT product_id, quantity, unit_price, category, added_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY added_at, product_id
	`

	rows, err := q.Query(ctx, itemsQuery, cart.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	cart.Items = []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice, &item.Category, &item.AddedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return &cart, nil
}

// UpsertItem adds a line or merges quantity into an existing line.
func (r *cartRepository) UpsertItem(ctx context.Context, cartID uuid.UUID, item model.CartItem, maxQuantity int) (bool, error) {
	// The sum is taken as BIGINT so an oversized merge fails the guard
	// instead of overflowing the column type.
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, category)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cart_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity
		WHERE cart_items.quantity::BIGINT + EXCLUDED.quantity <= $6
	`

	tag, err := r.pool.Exec(ctx, query, cartID, item.ProductID, item.Quantity, item.UnitPrice, item.Category, maxQuantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", item.ProductID).
			Msg("failed to upsert cart item")
		return false, fmt.Errorf("failed to upsert cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	r.touch(ctx, r.pool, cartID)
	return true, nil
}

// SetItemQuantity replaces the quantity of an existing line.
func (r *cartRepository) SetItemQuantity(ctx context.Context, cartID uuid.UUID, productID string, quantity int) (bool, error) {
	query := `
		UPDATE cart_items
		SET quantity = $3
		WHERE cart_id = $1 AND product_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, cartID, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID).
			Msg("failed to update cart item")
		return false, fmt.Errorf("failed to update cart item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return false, nil
	}

	r.touch(ctx, r.pool, cartID)
	return true, nil
}

// RemoveItem deletes a line if present.
func (r *cartRepository) RemoveItem(ctx context.Context, cartID uuid.UUID, productID string) error {
	query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`

	if _, err := r.pool.Exec(ctx, query, cartID, productID); err != nil {
		r.logger.Error().Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID).
			Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	r.touch(ctx, r.pool, cartID)
	return nil
}

// Clear deletes every line of a cart.
func (r *cartRepository) Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	var q querier = r.pool
	if tx != nil {
		q = tx
	}

	if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	r.touch(ctx, q, cartID)
	return nil
}

// touch bumps updated_at. Failures are logged only; the line change already landed.
func (r *cartRepository) touch(ctx context.Context, q querier, cartID uuid.UUID) {
	if _, err := q.Exec(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		r.logger.Warn().Err(err).Str("cart_id", cartID.String()).Msg("failed to touch cart")
	}
}
