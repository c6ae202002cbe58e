package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hmoraes/bankist-api/internal/domain"
	"github.com/hmoraes/bankist-api/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Ledger views — dashboard, movements, balance, summary
// ============================================================

func dashboardHandler(bankSvc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		dashboard, err := bankSvc.Dashboard(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, dashboard)
	}
}

func movementsHandler(bankSvc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/movements")
		defer span.End()

		sorted := false
		if v := r.URL.Query().Get("sorted"); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				sorted = b
			}
		}

		rows, err := bankSvc.Movements(ctx, UserIDFromContext(ctx), sorted)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"movements": rows,
			"sorted":    sorted,
		})
	}
}

func balanceHandler(bankSvc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/balance")
		defer span.End()

		balance, err := bankSvc.Balance(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, balance)
	}
}

func summaryHandler(bankSvc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/summary")
		defer span.End()

		summary, err := bankSvc.Summary(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

// sortToggleHandler is the sort-toggle click: flips the session's sort
// order and returns the re-rendered movements.
func sortToggleHandler(bankSvc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/movements/sort")
		defer span.End()

		userID := UserIDFromContext(ctx)
		sorted, err := bankSvc.ToggleSort(ctx, userID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		rows, err := bankSvc.Movements(ctx, userID, sorted)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"movements": rows,
			"sorted":    sorted,
		})
	}
}

// ============================================================
// Transfers / Loans / Closure
// ============================================================

func transferHandler(bankSvc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transfers")
		defer span.End()

		var req domain.TransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := bankSvc.Transfer(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

func loanHandler(bankSvc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/loans")
		defer span.End()

		var req domain.LoanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := bankSvc.RequestLoan(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		// 202: the loan is approved but the credit lands after the
		// processing delay.
		writeJSON(w, http.StatusAccepted, resp)
	}
}

func closeAccountHandler(bankSvc *service.BankService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/account")
		defer span.End()

		var req domain.CloseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := bankSvc.CloseAccount(ctx, UserIDFromContext(ctx), &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
