package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/otp"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OrderDependencies collects the collaborators of the order service.
type OrderDependencies struct {
	Orders   repository.OrderRepository
	Products repository.ProductRepository
	Carts    repository.CartRepository
	Vendors  repository.VendorRepository

	OTP        otp.Generator
	Notifier   notify.Notifier
	Publisher  events.Publisher
	Dispatcher *notify.Dispatcher
	Metrics    *metrics.Metrics

	Config config.OrderConfig
	// Now defaults to time.Now.
	Now func() time.Time
}

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	vendorRepo  repository.VendorRepository
	otp         otp.Generator
	notifier    notify.Notifier
	publisher   events.Publisher
	dispatcher  *notify.Dispatcher
	metrics     *metrics.Metrics
	cfg         config.OrderConfig
	now         func() time.Time
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(deps OrderDependencies, logger zerolog.Logger) OrderService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &orderService{
		orderRepo:   deps.Orders,
		productRepo: deps.Products,
		cartRepo:    deps.Carts,
		vendorRepo:  deps.Vendors,
		otp:         deps.OTP,
		notifier:    deps.Notifier,
		publisher:   deps.Publisher,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		cfg:         deps.Config,
		now:         now,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder converts the caller's cart into a pending order in one
// transaction: the cart row is locked, each line's stock is taken with a
// conditional decrement, lines are snapshotted from the catalogue at this
// moment, and the cart is cleared. Any failure rolls everything back.
func (s *orderService) CreateOrder(ctx context.Context, p model.Principal) (*model.Order, error) {
	if err := requireCustomer(p); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, dependency("begin transaction", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	cart, err := s.cartRepo.GetForUpdate(ctx, tx, p.ID)
	if err != nil {
		return nil, dependency("lock cart", err)
	}
	if cart.IsEmpty() {
		return nil, model.ErrEmptyCart
	}

	// Fixed lock order across concurrent orders touching the same products.
	items := slices.Clone(cart.Items)
	slices.SortFunc(items, func(a, b model.CartItem) int { return strings.Compare(a.ProductID, b.ProductID) })

	now := s.now().UTC()
	order := &model.Order{
		ID:           uuid.New(),
		OwnerID:      p.ID,
		ContactEmail: p.Email,
		Lines:        make([]model.OrderLine, 0, len(items)),
		Total:        decimal.Zero,
		Status:       model.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for _, item := range items {
		product, err := s.productRepo.AdjustStock(ctx, tx, item.ProductID, -item.Quantity)
		if err != nil {
			return nil, dependency("reserve stock", err)
		}
		if product == nil {
			return nil, s.stockRejection(ctx, item)
		}

		line := model.OrderLine{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Category:  product.Category,
		}
		order.Lines = append(order.Lines, line)
		order.Total = order.Total.Add(line.Subtotal())
	}

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, dependency("create order", err)
	}
	if err := s.orderRepo.CreateOrderLines(ctx, tx, order.Lines); err != nil {
		return nil, dependency("create order lines", err)
	}
	if err := s.cartRepo.Clear(ctx, tx, cart.ID); err != nil {
		return nil, dependency("clear cart", err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, dependency("commit order", err)
	}
	committed = true

	s.metrics.OrdersCreated.Inc()
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("owner_id", p.ID).
		Int("line_count", len(order.Lines)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order created successfully")

	s.publish(model.EventOrderCreated, order, "")

	return order, nil
}

// stockRejection explains why a conditional decrement matched no row.
func (s *orderService) stockRejection(ctx context.Context, item model.CartItem) error {
	product, err := s.productRepo.GetByID(ctx, item.ProductID)
	if err != nil {
		return dependency("get product", err)
	}

	switch {
	case product == nil:
		s.metrics.StockRejections.WithLabelValues("not_found").Inc()
		return model.NewDomainError(model.ErrCodeNotFound, fmt.Sprintf("Product %s no longer exists", item.ProductID))
	case !product.IsAvailable:
		s.metrics.StockRejections.WithLabelValues("unavailable").Inc()
		return model.NewDomainError(model.ErrCodeUnavailable, fmt.Sprintf("Product %s is unavailable", product.ID))
	default:
		s.metrics.StockRejections.WithLabelValues("out_of_stock").Inc()
		return model.NewDomainError(model.ErrCodeOutOfStock,
			fmt.Sprintf("Insufficient stock for product %s: requested %d, available %d", product.ID, item.Quantity, product.Stock))
	}
}

// GetOrder returns an order visible to the caller.
func (s *orderService) GetOrder(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, dependency("get order", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !p.CanAccess(order.OwnerID) {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("principal", p.ID).
			Msg("order access denied")
		return nil, model.ErrForbidden
	}

	return order, nil
}

// ListOrdersForCustomer returns the caller's own orders, newest first.
func (s *orderService) ListOrdersForCustomer(ctx context.Context, p model.Principal, limit, offset int) ([]model.Order, error) {
	if err := requireCustomer(p); err != nil {
		return nil, err
	}

	limit, offset = s.page(limit, offset)
	orders, err := s.orderRepo.ListByOwner(ctx, p.ID, limit, offset)
	if err != nil {
		return nil, dependency("list orders", err)
	}

	return orders, nil
}

// ListAllOrders returns orders matching filter.
func (s *orderService) ListAllOrders(ctx context.Context, p model.Principal, filter model.OrderFilter) ([]model.Order, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	filter.Limit, filter.Offset = s.page(filter.Limit, filter.Offset)
	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, dependency("list orders", err)
	}

	return orders, nil
}

// ListOrdersByCategory returns orders with at least one line in categories.
func (s *orderService) ListOrdersByCategory(ctx context.Context, p model.Principal, categories []string, limit, offset int) ([]model.Order, error) {
	if len(categories) == 0 {
		return nil, model.Validationf("at least one category is required")
	}

	return s.ListAllOrders(ctx, p, model.OrderFilter{Categories: categories, Limit: limit, Offset: offset})
}

// ListOrdersByScope resolves a named scope such as "bamboo" from configuration.
func (s *orderService) ListOrdersByScope(ctx context.Context, p model.Principal, scope string, limit, offset int) ([]model.Order, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	categories, ok := s.cfg.Scopes[strings.ToLower(strings.TrimSpace(scope))]
	if !ok || len(categories) == 0 {
		return nil, model.NewDomainError(model.ErrCodeNotFound, fmt.Sprintf("Unknown order scope %q", scope))
	}

	return s.ListOrdersByCategory(ctx, p, categories, limit, offset)
}

// ListOrdersByVendor scopes orders to the categories a vendor supplies.
func (s *orderService) ListOrdersByVendor(ctx context.Context, p model.Principal, vendorID string, limit, offset int) ([]model.Order, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	vendor, err := s.vendorRepo.GetByID(ctx, vendorID)
	if err != nil {
		return nil, dependency("get vendor", err)
	}
	if vendor == nil {
		return nil, model.ErrVendorNotFound
	}
	if len(vendor.Categories) == 0 {
		return []model.Order{}, nil
	}

	return s.ListOrdersByCategory(ctx, p, vendor.Categories, limit, offset)
}

func (s *orderService) page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = s.cfg.DefaultListLimit
	}
	if limit > s.cfg.MaximumListLimit {
		limit = s.cfg.MaximumListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// publish sends an order event in the background. Delivery is best-effort.
func (s *orderService) publish(eventType string, order *model.Order, prev model.OrderStatus) {
	event := model.OrderEvent{
		EventID:    uuid.New(),
		Type:       eventType,
		OrderID:    order.ID,
		OwnerID:    order.OwnerID,
		Status:     order.Status,
		PrevStatus: prev,
		OccurredAt: order.UpdatedAt,
	}

	s.dispatcher.Go("publish_"+eventType, func(ctx context.Context) error {
		return s.publisher.Publish(ctx, event)
	})
}
