package model

import "time"

// MaxResetOTPAttempts is the number of wrong guesses after which a
// password reset code is discarded.
const MaxResetOTPAttempts = 5

// Vendor is a supplier whose categories scope an administrative order view.
type Vendor struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Categories   []string  `json:"categories" db:"categories"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// PasswordOTPRequest requests a password reset code.
type PasswordOTPRequest struct {
	Email string `json:"email"`
}

// VerifyPasswordOTPRequest checks a reset code without consuming it.
type VerifyPasswordOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// ResetPasswordRequest consumes a reset code and sets a new password.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
