package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// UpdateOrderStatus applies an administrator transition. Forward moves
// follow Pending, Confirmed, Shipped, OutForDelivery one step at a time;
// Delivered is only reachable through VerifyDeliveryOTP; Cancelled is
// delegated to CancelOrder so stock is restored.
func (s *orderService) UpdateOrderStatus(ctx context.Context, p model.Principal, id uuid.UUID, status string) (*model.Order, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	next, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	if next == model.StatusCancelled {
		return s.CancelOrder(ctx, p, id)
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, dependency("get order", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	prev := order.Status
	if err := prev.CheckAdvance(next); err != nil {
		s.logger.Debug().
			Str("order_id", id.String()).
			Str("from", string(prev)).
			Str("to", string(next)).
			Msg("transition rejected")
		return nil, err
	}

	now := s.now().UTC()
	if next == model.StatusOutForDelivery {
		if err := s.dispatchForDelivery(ctx, order, now); err != nil {
			return nil, err
		}
	} else {
		ok, err := s.orderRepo.UpdateStatus(ctx, nil, id, prev, next, now)
		if err != nil {
			return nil, dependency("update order status", err)
		}
		if !ok {
			return nil, errConcurrentTransition(id)
		}
		order.Status = next
		order.UpdatedAt = now
	}

	s.metrics.OrderTransitions.WithLabelValues(string(prev), string(next)).Inc()
	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(prev)).
		Str("to", string(next)).
		Msg("order status updated")

	s.publish(model.EventOrderStatusChanged, order, prev)

	return order, nil
}

// dispatchForDelivery moves an order to OutForDelivery and attaches a fresh
// delivery code in one transaction, then sends the code best-effort.
func (s *orderService) dispatchForDelivery(ctx context.Context, order *model.Order, now time.Time) error {
	code, err := s.otp.Generate()
	if err != nil {
		return fmt.Errorf("failed to issue delivery otp: %w", err)
	}
	issued := model.DeliveryOTP{Code: code, ExpiresAt: now.Add(s.cfg.DeliveryOTPTTL)}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return dependency("begin transaction", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	ok, err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, order.Status, model.StatusOutForDelivery, now)
	if err != nil {
		return dependency("update order status", err)
	}
	if !ok {
		return errConcurrentTransition(order.ID)
	}

	if _, err := s.orderRepo.SetDeliveryOTP(ctx, tx, order.ID, issued, now); err != nil {
		return dependency("set delivery otp", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return dependency("commit status change", err)
	}
	committed = true

	order.Status = model.StatusOutForDelivery
	order.DeliveryOTP = &issued
	order.UpdatedAt = now

	s.sendDeliveryOTP(order, issued)
	return nil
}

// CancelOrder cancels an order and returns every line's quantity to stock
// in the same transaction. Owners may cancel before shipment; administrators
// may cancel any non-terminal order.
func (s *orderService) CancelOrder(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Order, error) {
	if p.ID == "" && !p.Admin {
		return nil, model.ErrUnauthorised
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

	order, err := s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, dependency("lock order", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !p.CanAccess(order.OwnerID) {
		return nil, model.ErrForbidden
	}

	prev := order.Status
	if err := prev.CheckCancel(p.Admin); err != nil {
		s.logger.Debug().
			Str("order_id", id.String()).
			Str("status", string(prev)).
			Bool("admin", p.Admin).
			Msg("cancellation rejected")
		return nil, err
	}

	lines := slices.Clone(order.Lines)
	slices.SortFunc(lines, func(a, b model.OrderLine) int { return strings.Compare(a.ProductID, b.ProductID) })

	for _, line := range lines {
		product, err := s.productRepo.AdjustStock(ctx, tx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, dependency("restore stock", err)
		}
		if product == nil {
			return nil, fmt.Errorf("failed to restore stock for product %s", line.ProductID)
		}
	}

	now := s.now().UTC()
	ok, err := s.orderRepo.UpdateStatus(ctx, tx, id, prev, model.StatusCancelled, now)
	if err != nil {
		return nil, dependency("update order status", err)
	}
	if !ok {
		return nil, errConcurrentTransition(id)
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to commit transaction")
		return nil, dependency("commit cancellation", err)
	}
	committed = true

	order.Status = model.StatusCancelled
	order.DeliveryOTP = nil
	order.UpdatedAt = now

	s.metrics.OrderTransitions.WithLabelValues(string(prev), string(model.StatusCancelled)).Inc()
	s.logger.Info().
		Str("order_id", id.String()).
		Str("from", string(prev)).
		Bool("admin", p.Admin).
		Msg("order cancelled")

	s.publish(model.EventOrderCancelled, order, prev)

	return order, nil
}

func errConcurrentTransition(id uuid.UUID) error {
	return model.NewDomainError(model.ErrCodeInvalidTransition,
		fmt.Sprintf("Order %s changed status concurrently, reload and retry", id))
}
