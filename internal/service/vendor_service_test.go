package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/otp"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newVendorFixture() (VendorService, *MockVendorRepository, *MockNotifier, *notify.Dispatcher) {
	repo := new(MockVendorRepository)
	notifier := new(MockNotifier)
	dispatcher := notify.NewDispatcher(time.Second, zerolog.Nop(), nil)

	service := NewVendorService(
		repo,
		otp.Static{Code: "654321"},
		notifier,
		dispatcher,
		config.OrderConfig{PasswordOTPTTL: 15 * time.Minute},
		func() time.Time { return fixedNow },
		zerolog.Nop(),
	)

	return service, repo, notifier, dispatcher
}

func testVendor() *model.Vendor {
	return &model.Vendor{
		ID:         "V1",
		Name:       "Bamboo Co",
		Email:      "sales@bamboo.example",
		Categories: []string{"bamboo"},
		IsActive:   true,
	}
}

func TestVendorService_RequestPasswordOTP(t *testing.T) {
	ctx := context.Background()
	expiresAt := fixedNow.Add(15 * time.Minute)

	inactive := testVendor()
	inactive.IsActive = false

	tests := []struct {
		name        string
		email       string
		found       *model.Vendor
		lookupErr   error
		expectedErr error
	}{
		{name: "Active vendor", email: "sales@bamboo.example", found: testVendor()},
		{name: "Unknown email", email: "nobody@example.com", expectedErr: model.ErrVendorNotFound},
		{name: "Inactive vendor", email: "sales@bamboo.example", found: inactive, expectedErr: model.ErrVendorNotFound},
		{name: "Empty email", email: "  ", expectedErr: model.ErrValidation},
		{name: "Lookup failure", email: "sales@bamboo.example", lookupErr: errors.New("timeout"), expectedErr: model.ErrDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, notifier, dispatcher := newVendorFixture()

			repo.On("GetByEmail", ctx, tt.email).Return(tt.found, tt.lookupErr).Maybe()
			if tt.expectedErr == nil {
				repo.On("SetResetOTP", ctx, "V1", "654321", expiresAt).Return(nil)
				notifier.On("SendPasswordResetOTP", mock.Anything, "sales@bamboo.example", "Bamboo Co", "654321", expiresAt).Return(nil)
			}

			err := service.RequestPasswordOTP(ctx, tt.email)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				repo.AssertNotCalled(t, "SetResetOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
			}

			require.NoError(t, dispatcher.Wait(ctx))
			repo.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}

func TestVendorService_VerifyPasswordOTP(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		code        string
		valid       bool
		expectedErr error
	}{
		{name: "Live code", code: "654321", valid: true},
		{name: "Wrong or expired code", code: "111111", valid: false, expectedErr: model.ErrInvalidOrExpiredOTP},
		{name: "Missing code", code: "", expectedErr: model.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _, _ := newVendorFixture()
			if tt.code != "" {
				repo.On("CheckResetOTP", ctx, "sales@bamboo.example", tt.code, fixedNow).Return(tt.valid, nil)
			}

			err := service.VerifyPasswordOTP(ctx, "sales@bamboo.example", tt.code)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			repo.AssertNotCalled(t, "ConsumeResetOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestVendorService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	email := "sales@bamboo.example"

	hashOf := func(password string) any {
		return mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
		})
	}

	t.Run("Consumes code and stores hash", func(t *testing.T) {
		service, repo, notifier, dispatcher := newVendorFixture()
		repo.On("ConsumeResetOTP", ctx, email, "654321", fixedNow, hashOf("correct-horse")).Return(true, nil)
		repo.On("GetByEmail", ctx, email).Return(testVendor(), nil)
		notifier.On("SendPasswordResetConfirmation", mock.Anything, email, "Bamboo Co").Return(nil)

		err := service.ResetPassword(ctx, email, "654321", "correct-horse")

		require.NoError(t, err)
		require.NoError(t, dispatcher.Wait(ctx))
		repo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("Code already used", func(t *testing.T) {
		service, repo, notifier, _ := newVendorFixture()
		repo.On("ConsumeResetOTP", ctx, email, "654321", fixedNow, mock.AnythingOfType("string")).Return(false, nil)

		err := service.ResetPassword(ctx, email, "654321", "correct-horse")

		assert.ErrorIs(t, err, model.ErrInvalidOrExpiredOTP)
		repo.AssertExpectations(t)
		notifier.AssertNotCalled(t, "SendPasswordResetConfirmation", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Short password", func(t *testing.T) {
		service, repo, _, _ := newVendorFixture()

		err := service.ResetPassword(ctx, email, "654321", "short")

		assert.ErrorIs(t, err, model.ErrValidation)
		repo.AssertNotCalled(t, "ConsumeResetOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Password longer than bcrypt accepts", func(t *testing.T) {
		service, repo, _, _ := newVendorFixture()

		err := service.ResetPassword(ctx, email, "654321", strings.Repeat("p", 80))

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
		repo.AssertNotCalled(t, "ConsumeResetOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Storage failure", func(t *testing.T) {
		service, repo, _, _ := newVendorFixture()
		repo.On("ConsumeResetOTP", ctx, email, "654321", fixedNow, mock.AnythingOfType("string")).
			Return(false, errors.New("connection reset"))

		err := service.ResetPassword(ctx, email, "654321", "correct-horse")

		assert.ErrorIs(t, err, model.ErrDependency)
	})
}
