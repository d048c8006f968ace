package http

import (
	"context"
	"net/http"

	"moneylite/internal/core"
	applog "moneylite/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	items, err := s.ledger.ListExpenses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []core.ExpenseRecord{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var body textBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.mutations.Lock()
	rec, err := s.ledger.RecordExpense(r.Context(), body.Text)
	if err == nil {
		s.invalidate()
	}
	s.mutations.Unlock()

	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, "expense", s.ledger.DeleteExpense)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	items, err := s.ledger.ListIncomes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []core.IncomeRecord{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var body textBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.mutations.Lock()
	rec, err := s.ledger.RecordIncome(r.Context(), body.Text)
	if err == nil {
		s.invalidate()
	}
	s.mutations.Unlock()

	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, "income", s.ledger.DeleteIncome)
}

func (s *Server) handleListFixedExpenses(w http.ResponseWriter, r *http.Request) {
	items, err := s.ledger.ListFixedExpenses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []core.FixedExpenseRecord{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateFixedExpense(w http.ResponseWriter, r *http.Request) {
	var body fixedExpenseBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.mutations.Lock()
	rec, err := s.ledger.AddFixedExpense(r.Context(), body.Name, body.Amount)
	if err == nil {
		s.invalidate()
	}
	s.mutations.Unlock()

	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleDeleteFixedExpense(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, "fixed_expense", s.ledger.DeleteFixedExpense)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, kind string, del func(ctx context.Context, id int64) error) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.mutations.Lock()
	err = del(r.Context(), id)
	if err == nil {
		s.invalidate()
	}
	s.mutations.Unlock()

	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Record deleted",
		applog.FieldRecordKind, kind,
		applog.FieldRecordID, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetBalance(w http.ResponseWriter, r *http.Request) {
	var body balanceBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if body.Balance == nil {
		writeError(w, http.StatusUnprocessableEntity, "balance is required")
		return
	}

	s.mutations.Lock()
	p, err := s.ledger.SetPaydayBalance(r.Context(), *body.Balance)
	if err == nil {
		s.invalidate()
	}
	s.mutations.Unlock()

	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleSummary serves the cached snapshot, recomputing on a miss. Reads
// hold the mutation lock shared so a refill cannot race an invalidation.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mutations.RLock()
	defer s.mutations.RUnlock()

	if snap, ok := s.summaryCache.Get(summaryKey); ok {
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, http.StatusOK, snap)
		return
	}
	snap, err := s.ledger.Summary(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.summaryCache.Set(summaryKey, snap)
	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, snap)
}
