// Package advisor wraps the Gemini generative language API behind a
// small interface with graceful fallbacks. The LLM is a fallible remote
// collaborator: any failure degrades to a canned message instead of
// surfacing an error to the chat user.
package advisor

import (
	"context"
	"fmt"
	"log/slog"

	gl "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"

	"aiwealth/internal/chat"
)

// Canned responses used when the model is unconfigured or unreachable.
const (
	FallbackMessage  = "I'm currently running in limited mode. Please configure a Gemini API key to enable all features."
	AnalysisFallback = "AI analysis is currently unavailable. Please configure a Gemini API key to enable this feature."
	errorMessage     = "I'm sorry, I encountered an error processing your request."
	analysisError    = "I'm sorry, I encountered an error while analyzing your expenses."
)

// Advisor talks to the Gemini API. A nil *Advisor is valid and answers
// every request with the fallback message.
type Advisor struct {
	svc   *gl.Service
	model string
}

// New builds an advisor for the given model (e.g. "gemini-2.0-flash").
func New(ctx context.Context, apiKey, model string) (*Advisor, error) {
	svc, err := gl.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create generative language service: %w", err)
	}
	return &Advisor{svc: svc, model: model}, nil
}

// Chat sends the conversation history plus the new message to the model
// and returns its reply, or a fallback on any failure.
func (a *Advisor) Chat(ctx context.Context, history []chat.Turn, message string) string {
	if a == nil {
		return FallbackMessage
	}

	contents := make([]*gl.Content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, &gl.Content{
			Role:  turn.Role,
			Parts: []*gl.Part{{Text: turn.Text}},
		})
	}
	contents = append(contents, &gl.Content{
		Role:  chat.RoleUser,
		Parts: []*gl.Part{{Text: message}},
	})

	return a.generate(ctx, systemPrompt, contents, errorMessage)
}

// AnalyzeExpenses asks the model to narrate an expense summary.
func (a *Advisor) AnalyzeExpenses(ctx context.Context, prompt string) string {
	if a == nil {
		return AnalysisFallback
	}

	contents := []*gl.Content{{
		Role:  chat.RoleUser,
		Parts: []*gl.Part{{Text: prompt}},
	}}

	return a.generate(ctx, analysisInstruction, contents, analysisError)
}

func (a *Advisor) generate(ctx context.Context, instruction string, contents []*gl.Content, onError string) string {
	req := &gl.GenerateContentRequest{
		SystemInstruction: &gl.Content{
			Parts: []*gl.Part{{Text: instruction}},
		},
		Contents: contents,
	}

	resp, err := a.svc.Models.GenerateContent("models/"+a.model, req).Context(ctx).Do()
	if err != nil {
		slog.ErrorContext(ctx, "Gemini request failed", "model", a.model, "error", err)
		return onError
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		slog.WarnContext(ctx, "Gemini returned no candidates", "model", a.model)
		return onError
	}
	return resp.Candidates[0].Content.Parts[0].Text
}
