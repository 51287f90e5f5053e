package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const vendorColumns = `id, name, email, password_hash, categories, is_active, created_at, updated_at`

// vendorRepository implements the VendorRepository interface using PostgreSQL.
type vendorRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewVendorRepository creates a new PostgreSQL-backed vendor repository.
func NewVendorRepository(pool *pgxpool.Pool, logger zerolog.Logger) VendorRepository {
	return &vendorRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "vendor").Logger(),
	}
}

// GetByID retrieves a vendor by ID.
func (r *vendorRepository) GetByID(ctx context.Context, id string) (*model.Vendor, error) {
	return r.getOne(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id)
}

// GetByEmail retrieves a vendor by email, case-insensitively.
func (r *vendorRepository) GetByEmail(ctx context.Context, email string) (*model.Vendor, error) {
	return r.getOne(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *vendorRepository) getOne(ctx context.Context, query string, arg string) (*model.Vendor, error) {
	var v model.Vendor
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&v.ID,
		&v.Name,
		&v.Email,
		&v.PasswordHash,
		&v.Categories,
		&v.IsActive,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("key", arg).Msg("vendor not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query vendor")
		return nil, fmt.Errorf("failed to query vendor: %w", err)
	}

	return &v, nil
}

// Create inserts a vendor.
func (r *vendorRepository) Create(ctx context.Context, vendor *model.Vendor) error {
	query := `
		INSERT INTO vendors (id, name, email, password_hash, categories, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	categories := vendor.Categories
	if categories == nil {
		categories = []string{}
	}

	_, err := r.pool.Exec(ctx, query,
		vendor.ID,
		vendor.Name,
		vendor.Email,
		vendor.PasswordHash,
		categories,
		vendor.IsActive,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("vendor_id", vendor.ID).Msg("failed to create vendor")
		return fmt.Errorf("failed to create vendor: %w", err)
	}

	return nil
}

// SetResetOTP stores a password reset code, replacing any previous one
// and its failed attempt count.
func (r *vendorRepository) SetResetOTP(ctx context.Context, vendorID string, code string, expiresAt time.Time) error {
	query := `
		UPDATE vendors
		SET reset_otp = $2, reset_otp_expires_at = $3, reset_otp_attempts = 0, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, vendorID, code, expiresAt); err != nil {
		r.logger.Error().Err(err).Str("vendor_id", vendorID).Msg("failed to set reset otp")
		return fmt.Errorf("failed to set reset otp: %w", err)
	}

	return nil
}

// CheckResetOTP reports whether code is the live reset code for email.
// A wrong code counts as a failed attempt.
func (r *vendorRepository) CheckResetOTP(ctx context.Context, email, code string, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM vendors
			WHERE LOWER(email) = LOWER($1)
				AND reset_otp = $2
				AND reset_otp_expires_at > $3
				AND reset_otp_attempts < $4
		)
	`

	var ok bool
	if err := r.pool.QueryRow(ctx, query, email, code, now, model.MaxResetOTPAttempts).Scan(&ok); err != nil {
		r.logger.Error().Err(err).Msg("failed to check reset otp")
		return false, fmt.Errorf("failed to check reset otp: %w", err)
	}
	if !ok {
		return false, r.recordFailedAttempt(ctx, email, code, now)
	}

	return true, nil
}

// ConsumeResetOTP swaps the password hash and clears the code in one statement.
// A wrong code counts as a failed attempt.
func (r *vendorRepository) ConsumeResetOTP(ctx context.Context, email, code string, now time.Time, passwordHash string) (bool, error) {
	query := `
		UPDATE vendors
		SET password_hash = $4,
			reset_otp = NULL,
			reset_otp_expires_at = NULL,
			reset_otp_attempts = 0,
			updated_at = NOW()
		WHERE LOWER(email) = LOWER($1)
			AND reset_otp = $2
			AND reset_otp_expires_at > $3
			AND reset_otp_attempts < $5
	`

	tag, err := r.pool.Exec(ctx, query, email, code, now, passwordHash, model.MaxResetOTPAttempts)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to consume reset otp")
		return false, fmt.Errorf("failed to consume reset otp: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, r.recordFailedAttempt(ctx, email, code, now)
	}

	return true, nil
}

// recordFailedAttempt counts a wrong guess against the live code of email,
// discarding the code once the attempt limit is reached.
func (r *vendorRepository) recordFailedAttempt(ctx context.Context, email, code string, now time.Time) error {
	query := `
		UPDATE vendors
		SET reset_otp_attempts = reset_otp_attempts + 1,
			reset_otp = CASE WHEN reset_otp_attempts + 1 >= $4 THEN NULL ELSE reset_otp END,
			reset_otp_expires_at = CASE WHEN reset_otp_attempts + 1 >= $4 THEN NULL ELSE reset_otp_expires_at END,
			updated_at = NOW()
		WHERE LOWER(email) = LOWER($1)
			AND reset_otp IS NOT NULL
			AND reset_otp <> $2
			AND reset_otp_expires_at > $3
	`

	tag, err := r.pool.Exec(ctx, query, email, code, now, model.MaxResetOTPAttempts)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to record reset otp attempt")
		return fmt.Errorf("failed to record reset otp attempt: %w", err)
	}
	if tag.RowsAffected() > 0 {
		r.logger.Debug().Msg("wrong reset otp recorded")
	}

	return nil
}
