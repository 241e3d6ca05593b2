// Package assistant wraps the dining-assistant chat endpoint with
// client-side conversation memory, and exposes personalized meal
// recommendations.
package assistant

import (
	"context"
	"strings"
	"sync"

	"github.com/quickplate/quickplate-go/core"
)

// Backend is the slice of the API client the assistant depends on.
type Backend interface {
	Chat(ctx context.Context, message string, history []core.ChatExchange) (string, error)
	Recommendations(ctx context.Context, userID int) ([]core.Recommendation, error)
}

// Assistant keeps the running chat transcript and replays it with every
// request so the backend can answer with context. Safe for concurrent use.
type Assistant struct {
	backend Backend
	logger  core.Logger

	mu      sync.Mutex
	history []core.ChatExchange
}

// New creates an assistant over the given backend
func New(backend Backend, logger core.Logger) *Assistant {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	if cal, ok := logger.(core.ComponentAwareLogger); ok {
		logger = cal.WithComponent("quickplate/assistant")
	}
	return &Assistant{
		backend: backend,
		logger:  logger,
	}
}

// Send submits a user message together with the accumulated transcript and
// returns the assistant's reply. Blank messages are rejected locally. The
// exchange is appended to the transcript only when the backend answers;
// a failed call leaves the history exactly as it was.
func (a *Assistant) Send(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", &core.ClientError{
			Op:      "assistant.Send",
			Kind:    "validation",
			Message: "Message must not be empty",
			Err:     core.ErrValidation,
		}
	}

	a.mu.Lock()
	history := make([]core.ChatExchange, len(a.history))
	copy(history, a.history)
	a.mu.Unlock()

	reply, err := a.backend.Chat(ctx, message, history)
	if err != nil {
		a.logger.Warn("Chat request failed", map[string]interface{}{
			"operation":    "assistant_send",
			"history_size": len(history),
			"error":        err.Error(),
		})
		return "", err
	}

	a.mu.Lock()
	a.history = append(a.history, core.ChatExchange{User: message, Assistant: reply})
	size := len(a.history)
	a.mu.Unlock()

	a.logger.Debug("Chat exchange recorded", map[string]interface{}{
		"operation":    "assistant_send",
		"history_size": size,
	})
	return reply, nil
}

// History returns a copy of the transcript so far
func (a *Assistant) History() []core.ChatExchange {
	a.mu.Lock()
	defer a.mu.Unlock()

	history := make([]core.ChatExchange, len(a.history))
	copy(history, a.history)
	return history
}

// Reset discards the transcript, starting a fresh conversation
func (a *Assistant) Reset() {
	a.mu.Lock()
	a.history = nil
	a.mu.Unlock()
}

// Recommendations fetches personalized meal suggestions for the user,
// derived from their order history on the backend.
func (a *Assistant) Recommendations(ctx context.Context, userID int) ([]core.Recommendation, error) {
	recs, err := a.backend.Recommendations(ctx, userID)
	if err != nil {
		a.logger.Warn("Recommendations request failed", map[string]interface{}{
			"operation": "assistant_recommendations",
			"user_id":   userID,
			"error":     err.Error(),
		})
		return nil, err
	}
	return recs, nil
}
