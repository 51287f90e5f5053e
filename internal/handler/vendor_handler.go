package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// VendorHandler handles vendor account recovery requests.
type VendorHandler struct {
	service service.VendorService
	logger  zerolog.Logger
}

// NewVendorHandler creates a new vendor handler.
func NewVendorHandler(service service.VendorService, logger zerolog.Logger) *VendorHandler {
	return &VendorHandler{
		service: service,
		logger:  logger.With().Str("handler", "vendor").Logger(),
	}
}

// RequestPasswordOTP handles POST /api/vendors/password/otp.
func (h *VendorHandler) RequestPasswordOTP(w http.ResponseWriter, r *http.Request) {
	var req model.PasswordOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.RequestPasswordOTP(r.Context(), req.Email); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "OTP sent to email"})
}

// VerifyPasswordOTP handles POST /api/vendors/password/verify-otp.
func (h *VendorHandler) VerifyPasswordOTP(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyPasswordOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.VerifyPasswordOTP(r.Context(), req.Email, req.OTP); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "OTP verified"})
}

// ResetPassword handles POST /api/vendors/password/reset.
func (h *VendorHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Password reset successfully"})
}
