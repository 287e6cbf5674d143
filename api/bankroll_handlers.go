package api

import (
	"net/http"
	"strconv"

	"stacktrack/models"
	"stacktrack/service"

	"github.com/shopspring/decimal"
)

type initializeBankrollRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}

type applyTransactionRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
	Notes  string          `json:"notes"`
}

// userID pulls the authenticated caller from the context; the auth
// middleware guarantees it on every /api route
func userID(r *http.Request) (string, error) {
	id, ok := UserIDFrom(r.Context())
	if !ok {
		return "", service.ErrUnauthorized
	}
	return id, nil
}

func (s *Server) handleGetBankrollSummary(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	summary, err := s.bankrollService.GetSummary(r.Context(), uid)
	if err != nil {
		respondError(w, err)
		return
	}
	if summary == nil {
		respondError(w, service.NewNotFoundError("bankroll"))
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleInitializeBankroll(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req initializeBankrollRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	bankroll, err := s.bankrollService.Initialize(r.Context(), uid, req.Amount, req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, bankroll)
}

func (s *Server) handleApplyTransaction(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req applyTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	bankroll, err := s.bankrollService.ApplyTransaction(r.Context(), uid, req.Amount, models.TransactionType(req.Type), req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, bankroll)
}

func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, service.NewValidationError("days", "must be an integer"))
			return
		}
		days = parsed
	}

	transactions, err := s.bankrollService.RecentTransactions(r.Context(), uid, days)
	if err != nil {
		respondError(w, err)
		return
	}
	if transactions == nil {
		transactions = []*models.BankrollTransaction{}
	}

	respondJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleReconcileBankroll(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	reconciliation, err := s.bankrollService.Reconcile(r.Context(), uid)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, reconciliation)
}
