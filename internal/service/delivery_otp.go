package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// IssueDeliveryOTP replaces the delivery code of an order that is out for
// delivery. The code is sent to the order's contact address, never returned.
func (s *orderService) IssueDeliveryOTP(ctx context.Context, p model.Principal, id uuid.UUID) (*model.DeliveryOTPResponse, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, dependency("get order", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if order.Status != model.StatusOutForDelivery {
		return nil, errNotOutForDelivery(order.Status)
	}

	code, err := s.otp.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to issue delivery otp: %w", err)
	}

	now := s.now().UTC()
	issued := model.DeliveryOTP{Code: code, ExpiresAt: now.Add(s.cfg.DeliveryOTPTTL)}

	ok, err := s.orderRepo.SetDeliveryOTP(ctx, nil, id, issued, now)
	if err != nil {
		return nil, dependency("set delivery otp", err)
	}
	if !ok {
		// Status moved between the read and the write.
		return nil, errNotOutForDelivery("")
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Time("expires_at", issued.ExpiresAt).
		Msg("delivery otp issued")

	s.sendDeliveryOTP(order, issued)

	return &model.DeliveryOTPResponse{OrderID: id, ExpiresAt: issued.ExpiresAt}, nil
}

// VerifyDeliveryOTP consumes a delivery code and marks the order delivered
// in a single conditional write, so concurrent attempts with the same code
// succeed at most once. Missing, mismatched and expired codes all fail
// the same way.
func (s *orderService) VerifyDeliveryOTP(ctx context.Context, p model.Principal, id uuid.UUID, code string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, dependency("get order", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !p.CanAccess(order.OwnerID) {
		return nil, model.ErrForbidden
	}

	code = strings.TrimSpace(code)
	if code == "" {
		s.metrics.OTPVerifications.WithLabelValues("rejected").Inc()
		return nil, model.ErrInvalidOrExpiredOTP
	}

	now := s.now().UTC()
	ok, err := s.orderRepo.ConsumeDeliveryOTP(ctx, id, code, now)
	if err != nil {
		return nil, dependency("consume delivery otp", err)
	}
	if !ok {
		s.metrics.OTPVerifications.WithLabelValues("rejected").Inc()
		s.logger.Warn().Str("order_id", id.String()).Msg("delivery otp rejected")
		return nil, model.ErrInvalidOrExpiredOTP
	}

	prev := order.Status
	order.Status = model.StatusDelivered
	order.DeliveryOTP = nil
	order.UpdatedAt = now

	s.metrics.OTPVerifications.WithLabelValues("accepted").Inc()
	s.metrics.OrderTransitions.WithLabelValues(string(prev), string(model.StatusDelivered)).Inc()
	s.logger.Info().Str("order_id", id.String()).Msg("order delivered")

	s.publish(model.EventOrderDelivered, order, prev)

	return order, nil
}

// sendDeliveryOTP hands the code to the notifier in the background. A send
// failure leaves the issued code in place; an administrator can re-issue.
func (s *orderService) sendDeliveryOTP(order *model.Order, issued model.DeliveryOTP) {
	to, orderID := order.ContactEmail, order.ID
	s.dispatcher.Go("delivery_otp", func(ctx context.Context) error {
		return s.notifier.SendDeliveryOTP(ctx, to, orderID, issued.Code, issued.ExpiresAt)
	})
}

func errNotOutForDelivery(status model.OrderStatus) error {
	if status == "" {
		return model.NewDomainError(model.ErrCodeInvalidTransition, "Delivery OTP can only be issued while the order is out for delivery")
	}
	return model.NewDomainError(model.ErrCodeInvalidTransition,
		fmt.Sprintf("Delivery OTP can only be issued while the order is out for delivery (current status %s)", status))
}
