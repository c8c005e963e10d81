package http

import (
	"net/http"

	"retailtracker/internal/core"
	applog "retailtracker/internal/log"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	f := entryFailure("expense", "create")
	var in core.ExpenseInput
	if err := DecodeJSON(r, &in); err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	expense, err := s.entries.CreateExpense(r.Context(), userID(r), in)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	s.logExpense(r, applog.OpCreate, expense)
	NewJSONResponse().Body(expense).Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	f := entryFailure("expense", "fetch")
	f.invalid = "Invalid date range"
	f.failed += "s"
	dr, err := ParseDateRange(r)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	expenses, err := s.entries.GetExpenses(r.Context(), userID(r), dr)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	NewJSONResponse().Body(expenses).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	f := entryFailure("expense", "fetch")
	id, err := ParseID(r)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	expense, err := s.entries.GetExpense(r.Context(), userID(r), id)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	NewJSONResponse().Body(expense).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	f := entryFailure("expense", "update")
	id, err := ParseID(r)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	var patch core.ExpensePatch
	if err := DecodeJSON(r, &patch); err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	expense, err := s.entries.UpdateExpense(r.Context(), userID(r), id, patch)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	s.logExpense(r, applog.OpUpdate, expense)
	NewJSONResponse().Body(expense).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	f := entryFailure("expense", "delete")
	id, err := ParseID(r)
	if err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	if err := s.entries.DeleteExpense(r.Context(), userID(r), id); err != nil {
		ErrorFor(r, err, f).Write(w)
		return
	}
	s.logEntry(r, applog.OpDelete, core.KindExpense, id, "", "", "")
	NewJSONResponse().Message("Expense deleted successfully").Write(w)
}

func (s *Server) logExpense(r *http.Request, op string, e core.Expense) {
	s.logEntry(r, op, core.KindExpense, e.ID, e.Amount.String(), string(e.Type), string(e.Date))
}
