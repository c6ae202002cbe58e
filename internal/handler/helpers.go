package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hmoraes/bankist-api/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var invalidCreds *domain.ErrInvalidCredentials
	var locked *domain.ErrAccountLocked
	var noSession *domain.ErrNoSession
	var invalidTransfer *domain.ErrInvalidTransfer
	var invalidLoan *domain.ErrInvalidLoan
	var invalidClosure *domain.ErrInvalidClosure
	var insufficientFunds *domain.ErrInsufficientFunds
	var validation *domain.ErrValidation
	var unauthorized *domain.ErrUnauthorized

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &invalidCreds):
		logger.Warn("invalid credentials")
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &locked):
		logger.Warn("account locked", zap.String("user_id", locked.UserID))
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.As(err, &noSession):
		logger.Debug("no active session")
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &invalidTransfer):
		logger.Warn("invalid transfer", zap.String("error", err.Error()))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &invalidLoan):
		logger.Warn("invalid loan", zap.String("error", err.Error()))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &invalidClosure):
		logger.Warn("invalid closure")
		writeError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &insufficientFunds):
		logger.Warn("insufficient funds",
			zap.Float64("available", insufficientFunds.Available),
			zap.Float64("required", insufficientFunds.Required),
		)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
