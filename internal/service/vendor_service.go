package service

import (
	"context"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/otp"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt rejects longer input
)

// vendorService implements VendorService.
type vendorService struct {
	repo       repository.VendorRepository
	otp        otp.Generator
	notifier   notify.Notifier
	dispatcher *notify.Dispatcher
	ttl        time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

// NewVendorService creates a new vendor service. now may be nil.
func NewVendorService(
	repo repository.VendorRepository,
	generator otp.Generator,
	notifier notify.Notifier,
	dispatcher *notify.Dispatcher,
	cfg config.OrderConfig,
	now func() time.Time,
	logger zerolog.Logger,
) VendorService {
	if now == nil {
		now = time.Now
	}

	return &vendorService{
		repo:       repo,
		otp:        generator,
		notifier:   notifier,
		dispatcher: dispatcher,
		ttl:        cfg.PasswordOTPTTL,
		now:        now,
		logger:     logger.With().Str("service", "vendor").Logger(),
	}
}

// RequestPasswordOTP stores a fresh reset code and emails it. The code is
// kept even if the email cannot be sent.
func (s *vendorService) RequestPasswordOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.Validationf("email is required")
	}

	vendor, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return dependency("get vendor", err)
	}
	if vendor == nil || !vendor.IsActive {
		return model.ErrVendorNotFound
	}

	code, err := s.otp.Generate()
	if err != nil {
		return err
	}
	expiresAt := s.now().UTC().Add(s.ttl)

	if err := s.repo.SetResetOTP(ctx, vendor.ID, code, expiresAt); err != nil {
		return dependency("store reset otp", err)
	}

	s.logger.Info().Str("vendor_id", vendor.ID).Msg("password reset otp issued")

	to, name := vendor.Email, vendor.Name
	s.dispatcher.Go("password_reset_otp", func(ctx context.Context) error {
		return s.notifier.SendPasswordResetOTP(ctx, to, name, code, expiresAt)
	})

	return nil
}

// VerifyPasswordOTP checks a reset code without consuming it.
func (s *vendorService) VerifyPasswordOTP(ctx context.Context, email, code string) error {
	email, code = strings.TrimSpace(email), strings.TrimSpace(code)
	if email == "" || code == "" {
		return model.Validationf("email and otp are required")
	}

	ok, err := s.repo.CheckResetOTP(ctx, email, code, s.now().UTC())
	if err != nil {
		return dependency("check reset otp", err)
	}
	if !ok {
		return model.ErrInvalidOrExpiredOTP
	}

	return nil
}

// ResetPassword consumes a reset code and stores a bcrypt hash of the new
// password in one conditional write.
func (s *vendorService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email, code = strings.TrimSpace(email), strings.TrimSpace(code)
	if email == "" || code == "" || newPassword == "" {
		return model.Validationf("email, otp and newPassword are required")
	}
	if len(newPassword) < minPasswordLength {
		return model.Validationf("newPassword must be at least %d characters", minPasswordLength)
	}
	if len(newPassword) > maxPasswordBytes {
		return model.Validationf("newPassword must be at most %d bytes", maxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	ok, err := s.repo.ConsumeResetOTP(ctx, email, code, s.now().UTC(), string(hash))
	if err != nil {
		return dependency("reset password", err)
	}
	if !ok {
		return model.ErrInvalidOrExpiredOTP
	}

	vendor, err := s.repo.GetByEmail(ctx, email)
	if err != nil || vendor == nil {
		s.logger.Warn().Err(err).Msg("password reset, vendor lookup for confirmation failed")
		return nil
	}

	s.logger.Info().Str("vendor_id", vendor.ID).Msg("vendor password reset")

	to, name := vendor.Email, vendor.Name
	s.dispatcher.Go("password_reset_confirmation", func(ctx context.Context) error {
		return s.notifier.SendPasswordResetConfirmation(ctx, to, name)
	})

	return nil
}
