package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"aiwealth/internal/advisor"
	"aiwealth/internal/chat"
	"aiwealth/internal/services"
	"aiwealth/internal/storage"

	"github.com/shopspring/decimal"
)

const sessionCookie = "session_id"

// session returns the chat session id from the request cookie, minting
// a new one (and setting the cookie) when absent.
func (s *Server) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := chat.NewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// handleChat is the assistant entry point. Expense and budget commands
// are executed directly; everything else goes to the language model
// with the session's history as context.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusOK, chatResponse{Response: "No message provided"})
		return
	}

	sessionID := s.session(w, r)
	reply := s.answer(r, sessionID, req.Message)

	s.sessions.Append(sessionID, chat.Turn{Role: chat.RoleUser, Text: req.Message})
	s.sessions.Append(sessionID, chat.Turn{Role: chat.RoleModel, Text: reply})

	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

func (s *Server) answer(r *http.Request, sessionID, message string) string {
	ctx := r.Context()

	if intent, ok := chat.ParseExpense(message); ok {
		_, err := s.ledger.RecordExpense(ctx, intentToInput(intent))
		if err != nil {
			slog.ErrorContext(ctx, "Chat expense failed", "error", err)
			return "I couldn't record that expense. Please check the amount and try again."
		}
		amount, _ := intent.Amount.Float64()
		return fmt.Sprintf("I've added your expense of $%.2f for %s in the %s category. You can view your spending breakdown in the dashboard.",
			amount, intent.Description, intent.Category)
	}

	if intent, ok := chat.ParseBudget(message); ok {
		if err := s.ledger.SetBudget(ctx, intent.Category, intent.Limit); err != nil {
			slog.ErrorContext(ctx, "Chat budget failed", "error", err)
			return "I couldn't set that budget. Please check the category and amount."
		}
		limit, _ := intent.Limit.Float64()
		return fmt.Sprintf("I've set your budget for %s to $%.2f.", intent.Category, limit)
	}

	history := s.sessions.History(sessionID)
	return s.advisor.Chat(ctx, history, message)
}

// handleAnalyze builds an expense summary and asks the model to narrate it.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reports.Summary(r.Context(), "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if summary.TotalExpenses == 0 {
		writeJSON(w, http.StatusOK, chatResponse{Response: "No expense data available to analyze"})
		return
	}

	prompt := advisor.BuildAnalysisPrompt(summary)
	reply := s.advisor.AnalyzeExpenses(r.Context(), prompt)
	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

func intentToInput(intent chat.ExpenseIntent) services.ExpenseInput {
	return services.ExpenseInput{
		Amount:      intent.Amount,
		Description: intent.Description,
		Category:    intent.Category.String(),
	}
}

// dashboardData is the full template payload for the dashboard page.
type dashboardData struct {
	HasData       bool
	Error         string
	Summary       services.Summary
	Budgets       services.BudgetOverview
	Expenses      []services.ExpenseRecord
	Goals         []services.GoalView
	Notifications []services.NotificationView
	Generated     string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", nil); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleDashboard renders the spending dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	summary, err := s.reports.Summary(ctx, r.URL.Query().Get("period"))
	if err != nil {
		slog.ErrorContext(ctx, "Dashboard summary failed", "error", err)
		s.renderDashboardError(w, r)
		return
	}
	overview, err := s.reports.BudgetOverview(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Dashboard budget overview failed", "error", err)
		s.renderDashboardError(w, r)
		return
	}
	page, err := s.reports.ListExpenses(ctx, storage.ExpenseFilter{Limit: 20})
	if err != nil {
		slog.ErrorContext(ctx, "Dashboard expense list failed", "error", err)
		s.renderDashboardError(w, r)
		return
	}
	goals, err := s.goals.ListGoals(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Dashboard goals failed", "error", err)
		s.renderDashboardError(w, r)
		return
	}
	notifications, err := s.notifications.List(ctx, 5, false)
	if err != nil {
		slog.ErrorContext(ctx, "Dashboard notifications failed", "error", err)
		s.renderDashboardError(w, r)
		return
	}

	data := dashboardData{
		HasData:       summary.TotalExpenses > 0,
		Summary:       summary,
		Budgets:       overview,
		Expenses:      page.Expenses,
		Goals:         goals,
		Notifications: notifications,
		Generated:     time.Now().Format("Jan 02, 2006 15:04"),
	}
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		slog.ErrorContext(ctx, "Dashboard template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) renderDashboardError(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{HasData: false, Error: "Error generating dashboard"}
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Dashboard template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// pathID parses the {id} path segment as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id '%s'", raw)
	}
	return id, nil
}

// decimalFrom converts a JSON float into the exact decimal the ledger
// expects, preserving the two digits users actually type.
func decimalFrom(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
