// Package notify pushes terminal download messages to a Gotify server.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmagar/workshop-cli/internal/model"
)

var httpClient = &http.Client{Timeout: 5 * time.Second}

type gotifyMessage struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

// Priority maps a message severity to a Gotify priority.
func Priority(severity int) int {
	switch severity {
	case model.SeverityError:
		return 8
	case model.SeverityWarning:
		return 5
	default:
		return 3
	}
}

// Send posts a message to a Gotify server.
// Returns nil immediately if url or token are empty.
func Send(ctx context.Context, serverURL, token, title, message string, priority int) error {
	if serverURL == "" || token == "" {
		return nil
	}

	url := strings.TrimRight(serverURL, "/") + "/message"

	body, err := json.Marshal(gotifyMessage{Title: title, Message: message, Priority: priority})
	if err != nil {
		return fmt.Errorf("gotify: marshal failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gotify: create request failed: %w", err)
	}
	req.Header.Set("X-Gotify-Token", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gotify: send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gotify: server returned %d", resp.StatusCode)
	}
	return nil
}

// Notifier pushes one host message.
type Notifier func(ctx context.Context, severity int, title, message string) error

// BuildNotifier returns a Notifier wired to the given Gotify server.
// Returns nil (disabling notifications) if url or token are empty.
func BuildNotifier(serverURL, token string) Notifier {
	if serverURL == "" || token == "" {
		return nil
	}
	return func(ctx context.Context, severity int, title, message string) error {
		return Send(ctx, serverURL, token, title, message, Priority(severity))
	}
}
