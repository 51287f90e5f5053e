package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, owner_id, contact_email, total, status, delivery_otp_code, delivery_otp_expires_at, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func (r *orderRepository) q(tx pgx.Tx) querier {
	if tx != nil {
		return tx
	}
	return r.pool
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, owner_id, contact_email, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.OwnerID,
		order.ContactEmail,
		order.Total,
		string(order.Status),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderLines inserts multiple order lines within the provided transaction.
func (r *orderRepository) CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_lines (id, order_id, product_id, product_name, quantity, unit_price, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(query, l.ID, l.OrderID, l.ProductID, l.Name, l.Quantity, l.UnitPrice, l.Category)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(lines); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", lines[i].OrderID.String()).
				Str("product_id", lines[i].ProductID).
				Msg("failed to create order line")
			return fmt.Errorf("failed to create order line: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(lines)).
		Msg("order lines created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its lines.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.get(ctx, r.pool, id, false)
}

// GetForUpdate retrieves an order and its lines, locking the order row.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	return r.get(ctx, tx, id, true)
}

func (r *orderRepository) get(ctx context.Context, q querier, id uuid.UUID, lock bool) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	order, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	lines, err := r.linesFor(ctx, q, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	order.Lines = lines[id]

	return order, nil
}

// ListByOwner retrieves the orders of one owner, newest first.
func (r *orderRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]model.Order, error) {
	return r.List(ctx, model.OrderFilter{OwnerID: ownerID, Limit: limit, Offset: offset})
}

// List retrieves orders matching filter, newest first. Category matching is
// case-insensitive and selects orders with at least one matching line.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	var (
		where []string
		args  []any
	)

	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		where = append(where, fmt.Sprintf("o.owner_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if len(filter.Categories) > 0 {
		cats := make([]string, len(filter.Categories))
		for i, c := range filter.Categories {
			cats[i] = strings.ToLower(c)
		}
		args = append(args, cats)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM order_lines l WHERE l.order_id = o.id AND LOWER(l.category) = ANY($%d))", len(args)))
	}

	query := `SELECT o.` + strings.ReplaceAll(orderColumns, ", ", ", o.") + ` FROM orders o`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY o.created_at DESC, o.id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	var ids []uuid.UUID
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(ids) == 0 {
		return orders, nil
	}

	lines, err := r.linesFor(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}

	return orders, nil
}

func (r *orderRepository) linesFor(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID][]model.OrderLine, error) {
	query := `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, category
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY order_id, product_id
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("orders", len(ids)).Msg("failed to query order lines")
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]model.OrderLine, len(ids))
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Name, &l.Quantity, &l.UnitPrice, &l.Category); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line row")
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		out[l.OrderID] = append(out[l.OrderID], l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order line rows")
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}

	return out, nil
}

// UpdateStatus is a compare-and-swap on status.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to model.OrderStatus, now time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET status = $3,
			delivery_otp_code = CASE WHEN $3 = 'out_for_delivery' THEN delivery_otp_code END,
			delivery_otp_expires_at = CASE WHEN $3 = 'out_for_delivery' THEN delivery_otp_expires_at END,
			updated_at = $4
		WHERE id = $1 AND status = $2
	`

	tag, err := r.q(tx).Exec(ctx, query, id, string(from), string(to), now)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", id.String()).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("failed to update order status")
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// SetDeliveryOTP stores a delivery code while the order is out for delivery.
func (r *orderRepository) SetDeliveryOTP(ctx context.Context, tx pgx.Tx, id uuid.UUID, otp model.DeliveryOTP, now time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET delivery_otp_code = $2,
			delivery_otp_expires_at = $3,
			updated_at = $4
		WHERE id = $1 AND status = 'out_for_delivery'
	`

	tag, err := r.q(tx).Exec(ctx, query, id, otp.Code, otp.ExpiresAt, now)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to set delivery otp")
		return false, fmt.Errorf("failed to set delivery otp: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// ConsumeDeliveryOTP validates and consumes a delivery code in one
// statement, so a code can complete at most one delivery.
func (r *orderRepository) ConsumeDeliveryOTP(ctx context.Context, id uuid.UUID, code string, now time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET status = 'delivered',
			delivery_otp_code = NULL,
			delivery_otp_expires_at = NULL,
			updated_at = $3
		WHERE id = $1
			AND status = 'out_for_delivery'
			AND delivery_otp_code = $2
			AND delivery_otp_expires_at > $3
	`

	tag, err := r.pool.Exec(ctx, query, id, code, now)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to consume delivery otp")
		return false, fmt.Errorf("failed to consume delivery otp: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o         model.Order
		status    string
		code      *string
		expiresAt *time.Time
	)

	err := row.Scan(
		&o.ID,
		&o.OwnerID,
		&o.ContactEmail,
		&o.Total,
		&status,
		&code,
		&expiresAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = model.OrderStatus(status)
	if code != nil && expiresAt != nil {
		o.DeliveryOTP = &model.DeliveryOTP{Code: *code, ExpiresAt: *expiresAt}
	}

	return &o, nil
}
