package service

import (
	"context"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// GetCart returns the caller's cart, creating an empty one if needed.
func (s *cartService) GetCart(ctx context.Context, p model.Principal) (*model.CartResponse, error) {
	if err := requireCustomer(p); err != nil {
		return nil, err
	}

	return s.current(ctx, p.ID)
}

// AddItem snapshots the product's current price and category on a new line,
// or increments the quantity of an existing line.
func (s *cartService) AddItem(ctx context.Context, p model.Principal, req *model.AddCartItemRequest) (*model.CartResponse, error) {
	if err := requireCustomer(p); err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.ProductID) == "" {
		return nil, model.Validationf("productId is required")
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity <= 0 || quantity > model.MaxLineQuantity {
		return nil, model.ErrInvalidQuantity
	}

	productID := strings.TrimSpace(req.ProductID)
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, dependency("get product", err)
	}
	if product == nil {
		s.logger.Debug().Str("product_id", productID).Msg("cannot add unknown product")
		return nil, model.ErrProductNotFound
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, p.ID)
	if err != nil {
		return nil, dependency("get cart", err)
	}

	item := model.CartItem{
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.Price,
		Category:  product.Category,
	}
	ok, err := s.cartRepo.UpsertItem(ctx, cart.ID, item, model.MaxLineQuantity)
	if err != nil {
		return nil, dependency("add cart item", err)
	}
	if !ok {
		s.logger.Debug().
			Str("owner_id", p.ID).
			Str("product_id", product.ID).
			Int("quantity", quantity).
			Msg("merged cart line would exceed maximum quantity")
		return nil, model.ErrInvalidQuantity
	}

	s.logger.Debug().
		Str("owner_id", p.ID).
		Str("product_id", product.ID).
		Int("quantity", quantity).
		Msg("item added to cart")

	return s.current(ctx, p.ID)
}

// UpdateItemQuantity replaces the quantity of an existing line.
func (s *cartService) UpdateItemQuantity(ctx context.Context, p model.Principal, productID string, quantity int) (*model.CartResponse, error) {
	if err := requireCustomer(p); err != nil {
		return nil, err
	}
	if quantity <= 0 || quantity > model.MaxLineQuantity {
		return nil, model.ErrInvalidQuantity
	}

	cart, err := s.cartRepo.GetByOwner(ctx, p.ID)
	if err != nil {
		return nil, dependency("get cart", err)
	}
	if cart == nil {
		return nil, model.ErrCartNotFound
	}

	ok, err := s.cartRepo.SetItemQuantity(ctx, cart.ID, productID, quantity)
	if err != nil {
		return nil, dependency("update cart item", err)
	}
	if !ok {
		return nil, model.ErrCartItemNotFound
	}

	return s.current(ctx, p.ID)
}

// RemoveItem removes a line if present.
func (s *cartService) RemoveItem(ctx context.Context, p model.Principal, productID string) (*model.CartResponse, error) {
	if err := requireCustomer(p); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, p.ID)
	if err != nil {
		return nil, dependency("get cart", err)
	}

	if err := s.cartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
		return nil, dependency("remove cart item", err)
	}

	return s.current(ctx, p.ID)
}

// ClearCart removes every line. The cart itself is kept.
func (s *cartService) ClearCart(ctx context.Context, p model.Principal) (*model.CartResponse, error) {
	if err := requireCustomer(p); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, p.ID)
	if err != nil {
		return nil, dependency("get cart", err)
	}

	if err := s.cartRepo.Clear(ctx, nil, cart.ID); err != nil {
		return nil, dependency("clear cart", err)
	}

	return s.current(ctx, p.ID)
}

func (s *cartService) current(ctx context.Context, ownerID string) (*model.CartResponse, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, dependency("get cart", err)
	}

	return s.resolve(ctx, cart)
}

// resolve attaches the live catalogue record to each line. The subtotal is
// computed from the line snapshots, not current prices.
func (s *cartService) resolve(ctx context.Context, cart *model.Cart) (*model.CartResponse, error) {
	resp := &model.CartResponse{
		ID:       cart.ID,
		OwnerID:  cart.OwnerID,
		Items:    make([]model.CartItemResponse, 0, len(cart.Items)),
		Subtotal: decimal.Zero,
	}
	if cart.IsEmpty() {
		return resp, nil
	}

	ids := make([]string, len(cart.Items))
	for i, item := range cart.Items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, dependency("get products", err)
	}
	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, item := range cart.Items {
		resp.Items = append(resp.Items, model.CartItemResponse{CartItem: item, Product: byID[item.ProductID]})
		resp.Subtotal = resp.Subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return resp, nil
}
