package handler

import (
	"net/http"

	"github.com/bank-microservices/account-service/internal/domain"
	"github.com/bank-microservices/account-service/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Accounts — POST/GET/PUT/DELETE /accounts
// ============================================================

func createAccountHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /accounts")
		defer span.End()

		var req domain.AccountRequest
		if !decodeRequest(w, r, &req, logger) {
			return
		}

		account, err := svc.CreateAccount(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, "bank account created", account)
	}
}

func listAccountsHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /accounts")
		defer span.End()

		var (
			accounts []domain.Account
			err      error
		)
		if customerID := r.URL.Query().Get("customerId"); customerID != "" {
			accounts, err = svc.ListAccountsByCustomer(ctx, customerID)
		} else {
			accounts, err = svc.ListAccounts(ctx)
		}
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, "bank accounts retrieved", accounts)
	}
}

func getAccountHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /accounts/{accountId}")
		defer span.End()

		account, err := svc.GetAccount(ctx, chi.URLParam(r, "accountId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, "bank account found", account)
	}
}

func updateAccountHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /accounts/{accountId}")
		defer span.End()

		var req domain.AccountRequest
		if !decodeRequest(w, r, &req, logger) {
			return
		}

		account, err := svc.UpdateAccount(ctx, chi.URLParam(r, "accountId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, "bank account updated", account)
	}
}

func deleteAccountHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /accounts/{accountId}")
		defer span.End()

		if err := svc.DeleteAccount(ctx, chi.URLParam(r, "accountId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, "bank account deleted", nil)
	}
}

// ============================================================
// Privileged creation flows — POST /accounts/vip, /accounts/pyme
// ============================================================

func createVIPAccountHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /accounts/vip")
		defer span.End()

		var req domain.AccountRequest
		if !decodeRequest(w, r, &req, logger) {
			return
		}

		account, err := svc.CreateVIPAccount(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, "VIP account created", account)
	}
}

func createPymeAccountHandler(svc *service.AccountService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /accounts/pyme")
		defer span.End()

		var req domain.AccountRequest
		if !decodeRequest(w, r, &req, logger) {
			return
		}

		account, err := svc.CreatePymeAccount(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, "PYME account created", account)
	}
}
