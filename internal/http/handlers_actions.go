package http

import (
	"net/http"
	"strconv"
	"strings"

	"omnibudget/internal/core"
)

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request, user core.User) {
	typ := core.TransactionType(strings.TrimSpace(r.Form.Get("type")))
	category := sanitizeInput(r.Form.Get("category"))
	description := sanitizeInput(r.Form.Get("description"))

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(r.Form.Get("amount")))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, actionResponse{Error: "invalid amount"})
		return
	}

	_, awarded, err := s.finance.RecordTransaction(r.Context(), user, typ, category, cents, description)
	if err != nil {
		actionError(w, r, err)
		return
	}
	s.invalidateDashboards(user.ID)

	resp := actionResponse{Success: true, Message: "Transaction recorded"}
	if awarded != nil {
		resp.Badge = awarded.Name
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddBudget(w http.ResponseWriter, r *http.Request, user core.User) {
	category := sanitizeInput(r.Form.Get("category"))

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(r.Form.Get("amount")))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, actionResponse{Error: "invalid amount"})
		return
	}

	if _, err := s.finance.UpsertBudget(r.Context(), user, category, cents); err != nil {
		actionError(w, r, err)
		return
	}
	s.invalidateDashboards(user.ID)
	writeJSON(w, http.StatusOK, actionResponse{Success: true, Message: "Budget saved"})
}

func (s *Server) handleAddSavingsGoal(w http.ResponseWriter, r *http.Request, user core.User) {
	name := sanitizeInput(r.Form.Get("name"))

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(r.Form.Get("target_amount")))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, actionResponse{Error: "invalid amount"})
		return
	}

	if _, err := s.finance.CreateSavingsGoal(r.Context(), user, name, cents); err != nil {
		actionError(w, r, err)
		return
	}
	s.invalidateDashboards(user.ID)
	writeJSON(w, http.StatusOK, actionResponse{Success: true, Message: "Savings goal created"})
}

func (s *Server) handleUpdateSavingsGoal(w http.ResponseWriter, r *http.Request, user core.User) {
	goalID, err := strconv.ParseInt(strings.TrimSpace(r.Form.Get("goal_id")), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, actionResponse{Error: "invalid goal id"})
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(r.Form.Get("amount")))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, actionResponse{Error: "invalid amount"})
		return
	}

	if err := s.finance.ContributeToGoal(r.Context(), user, goalID, cents); err != nil {
		actionError(w, r, err)
		return
	}
	s.invalidateDashboards(user.ID)
	writeJSON(w, http.StatusOK, actionResponse{Success: true, Message: "Contribution added"})
}
