package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bank-microservices/account-service/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data any) {
	writeJSON(w, status, domain.Envelope{Success: success, Message: message, Data: data})
}

func writeSuccess(w http.ResponseWriter, message string, data any) {
	writeEnvelope(w, http.StatusOK, true, message, data)
}

// decodeRequest parses the JSON body into dst. On failure it writes a 400
// error envelope and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Debug("malformed request body", zap.Error(err))
		writeEnvelope(w, http.StatusBadRequest, false, "malformed request body", nil)
		return false
	}
	return true
}

// handleServiceError maps domain errors to envelope responses. Business
// rejections answer 200 with the error's message; only a missing resource
// changes the status code. Infrastructure failures keep their detail in
// the logs and answer with a generic message.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var invalidCustomer *domain.ErrInvalidCustomer
	var duplicate *domain.ErrDuplicateAccountNumber
	var noCreditCard *domain.ErrNoCreditCard
	var eligibility *domain.ErrEligibility
	var customerValidation *domain.ErrCustomerValidation
	var circuitOpen *domain.ErrCircuitOpen
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeEnvelope(w, http.StatusNotFound, false, err.Error(), nil)
	case errors.As(err, &eligibility):
		logger.Warn("eligibility rejected", zap.String("error", err.Error()))
		writeEnvelope(w, http.StatusOK, false, err.Error(), nil)
	case errors.As(err, &invalidCustomer):
		logger.Warn("invalid customer", zap.String("error", err.Error()))
		writeEnvelope(w, http.StatusOK, false, err.Error(), nil)
	case errors.As(err, &duplicate):
		logger.Debug("duplicate account number", zap.String("error", err.Error()))
		writeEnvelope(w, http.StatusOK, false, err.Error(), nil)
	case errors.As(err, &noCreditCard):
		logger.Debug("no active credit card", zap.String("error", err.Error()))
		writeEnvelope(w, http.StatusOK, false, err.Error(), nil)
	case errors.As(err, &customerValidation):
		logger.Error("customer validation failed", zap.Error(err))
		writeEnvelope(w, http.StatusOK, false, err.Error(), nil)
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeEnvelope(w, http.StatusOK, false, "request could not be processed", nil)
	case errors.As(err, &external):
		logger.Error("external service failure", zap.Error(err))
		writeEnvelope(w, http.StatusOK, false, "request could not be processed", nil)
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeEnvelope(w, http.StatusOK, false, "request could not be processed", nil)
	}
}
