package http

import (
	"net/http"
	"strconv"

	"aiwealth/internal/services"
	"aiwealth/internal/storage"

	"github.com/shopspring/decimal"
)

type createExpenseRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"required,notblank"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := validateStruct(req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	id, err := s.ledger.RecordExpense(r.Context(), services.ExpenseInput{
		Amount:      decimalFrom(req.Amount),
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.ExpenseFilter{
		Category: q.Get("category"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	page, err := s.reports.ListExpenses(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.ledger.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reports.Summary(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleBudgetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.reports.BudgetOverview(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

type setBudgetRequest struct {
	Category string  `json:"category" validate:"required,notblank"`
	Limit    float64 `json:"limit" validate:"gte=0"`
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := validateStruct(req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.ledger.SetBudget(r.Context(), req.Category, decimalFrom(req.Limit)); err != nil {
		writeError(w, r, err)
		return
	}

	insight, err := s.reports.BudgetInsights(r.Context(), req.Category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insight)
}

func (s *Server) handleBudgetInsights(w http.ResponseWriter, r *http.Request) {
	// Without a category the insights view is the full overview.
	category := r.URL.Query().Get("category")
	if category == "" {
		s.handleBudgetOverview(w, r)
		return
	}
	insight, err := s.reports.BudgetInsights(r.Context(), category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insight)
}

type createGoalRequest struct {
	GoalName     string  `json:"goal_name" validate:"required,notblank"`
	TargetAmount float64 `json:"target_amount" validate:"required,gt=0"`
	Deadline     string  `json:"deadline"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := validateStruct(req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	id, err := s.goals.CreateGoal(r.Context(), req.GoalName, decimalFrom(req.TargetAmount), req.Deadline)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

type updateGoalRequest struct {
	ID             int64    `json:"id"`
	GoalName       string   `json:"goal_name"`
	CurrentSavings *float64 `json:"current_savings"`
	TargetAmount   *float64 `json:"target_amount"`
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req updateGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	var current, target *decimal.Decimal
	if req.CurrentSavings != nil {
		d := decimalFrom(*req.CurrentSavings)
		current = &d
	}
	if req.TargetAmount != nil {
		d := decimalFrom(*req.TargetAmount)
		target = &d
	}

	updated, err := s.goals.UpdateGoal(r.Context(), req.ID, req.GoalName, current, target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": updated})
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.ListGoals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 5
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	includeRead := q.Get("include_read") == "true"

	notifications, err := s.notifications.List(r.Context(), limit, includeRead)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.notifications.MarkRead(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"read": id})
}
