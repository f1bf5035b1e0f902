package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiwealth/internal/advisor"
	"aiwealth/internal/chat"
	"aiwealth/internal/services"
	"aiwealth/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sessions := chat.NewSessionStore(time.Minute)
	t.Cleanup(sessions.Stop)

	ledger := services.NewLedger(store, nil)
	reports := services.NewReports(store)
	goals := services.NewGoals(store)
	notifications := services.NewNotifications(store)

	// nil advisor: the assistant answers with its limited-mode fallback.
	srv := NewServer(":0", ledger, reports, goals, notifications, nil, sessions)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestCreateAndListExpenses(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"amount":      45.5,
		"description": "weekly groceries",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/expenses", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	page := decodeBody[services.ExpensePage](t, rec)
	require.Len(t, page.Expenses, 1)
	assert.Equal(t, 1, page.Pagination.Total)
	assert.Equal(t, "weekly groceries", page.Expenses[0].Description)
	assert.Equal(t, "food", page.Expenses[0].Category, "blank category is classified from the description")
	assert.InDelta(t, 45.5, page.Expenses[0].Amount, 0.001)
}

func TestCreateExpenseValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"amount": 10.0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"amount":      0,
		"description": "free lunch",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/expenses", bytes.NewBufferString("{not json"))
	rec2 := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}

func TestDeleteExpense(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"amount":      20.0,
		"description": "taxi ride",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[map[string]int64](t, rec)

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", created["id"]), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", created["id"]), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/expenses/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetBudgetAndInsights(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/budgets", map[string]any{
		"category": "food",
		"limit":    800.0,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	insight := decodeBody[services.BudgetInsight](t, rec)
	assert.Equal(t, "food", insight.Category)
	assert.InDelta(t, 800.0, insight.LimitAmount, 0.001)
	assert.Equal(t, "good", insight.Status)

	rec = doJSON(t, srv, http.MethodGet, "/api/budgets/insights?category=nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// No category: the full overview comes back instead of an error.
	rec = doJSON(t, srv, http.MethodGet, "/api/budgets/insights", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	overview := decodeBody[services.BudgetOverview](t, rec)
	assert.Len(t, overview.Categories, 7)
	byCategory := make(map[string]float64)
	for _, line := range overview.Categories {
		byCategory[line.Category] = line.Limit
	}
	assert.InDelta(t, 800.0, byCategory["food"], 0.001)

	rec = doJSON(t, srv, http.MethodPost, "/api/budgets", map[string]any{
		"category": "   ",
		"limit":    100.0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBudgetOverviewEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/budgets", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	overview := decodeBody[services.BudgetOverview](t, rec)
	assert.Len(t, overview.Categories, 7, "default budgets are seeded on first start")
}

func TestSummaryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"amount":      60.0,
		"description": "groceries",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/summary?period=month", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decodeBody[services.Summary](t, rec)
	assert.Equal(t, "month", summary.Period)
	assert.InDelta(t, 60.0, summary.TotalExpenses, 0.001)
}

func TestGoalsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/goals", map[string]any{
		"goal_name":     "Emergency Fund",
		"target_amount": 5000.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPatch, "/api/goals", map[string]any{
		"goal_name":       "Emergency Fund",
		"current_savings": 2500.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	patched := decodeBody[map[string]bool](t, rec)
	assert.True(t, patched["updated"])

	rec = doJSON(t, srv, http.MethodGet, "/api/goals", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed struct {
		Goals []services.GoalView `json:"goals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Goals, 1)
	assert.InDelta(t, 50.0, listed.Goals[0].Progress, 0.001)

	// Duplicate name is a validation failure.
	rec = doJSON(t, srv, http.MethodPost, "/api/goals", map[string]any{
		"goal_name":     "Emergency Fund",
		"target_amount": 100.0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Update without id or name.
	rec = doJSON(t, srv, http.MethodPatch, "/api/goals", map[string]any{
		"current_savings": 10.0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/budgets", map[string]any{
		"category": "food",
		"limit":    50.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"amount":      70.0,
		"description": "groceries",
		"category":    "food",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed struct {
		Notifications []services.NotificationView `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Notifications, 1)

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", listed.Notifications[0].ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed.Notifications = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed.Notifications)
}

func TestChatExpenseCommand(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/chat", map[string]any{
		"message": "add $45 for groceries",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	reply := decodeBody[chatResponse](t, rec)
	assert.Equal(t, "I've added your expense of $45.00 for groceries in the food category. You can view your spending breakdown in the dashboard.", reply.Response)

	rec = doJSON(t, srv, http.MethodGet, "/api/expenses", nil)
	page := decodeBody[services.ExpensePage](t, rec)
	require.Len(t, page.Expenses, 1)
	assert.Equal(t, "food", page.Expenses[0].Category)
}

func TestChatBudgetCommand(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/chat", map[string]any{
		"message": "set budget for travel to 1000",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	reply := decodeBody[chatResponse](t, rec)
	assert.Equal(t, "I've set your budget for travel to $1000.00.", reply.Response)

	rec = doJSON(t, srv, http.MethodGet, "/api/budgets/insights?category=travel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	insight := decodeBody[services.BudgetInsight](t, rec)
	assert.InDelta(t, 1000.0, insight.LimitAmount, 0.001)
}

func TestChatFallbackWithoutAdvisor(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/chat", map[string]any{
		"message": "how should I invest my savings?",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	reply := decodeBody[chatResponse](t, rec)
	assert.Equal(t, advisor.FallbackMessage, reply.Response)
}

func TestChatEmptyMessage(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/chat", map[string]any{"message": ""})
	require.Equal(t, http.StatusOK, rec.Code)

	reply := decodeBody[chatResponse](t, rec)
	assert.Equal(t, "No message provided", reply.Response)
}

func TestAnalyzeWithoutData(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/analyze", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	reply := decodeBody[chatResponse](t, rec)
	assert.Equal(t, "No expense data available to analyze", reply.Response)
}

func TestAnalyzeFallbackWithoutAdvisor(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"amount":      60.0,
		"description": "groceries",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/analyze", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	reply := decodeBody[chatResponse](t, rec)
	assert.Equal(t, advisor.AnalysisFallback, reply.Response)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/summary", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestIndexPageRenders(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AIWealth")
}

func TestDashboardPageRenders(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"amount":      42.0,
		"description": "groceries",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "groceries")
}
