package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notifier is the interface for sending transactional SMS messages.
type Notifier interface {
	// Send delivers a message to the given phone number.
	Send(ctx context.Context, phone, message string) error
}

// --- HTTP Gateway Notifier (generic JSON gateway, e.g. MSG91/Textlocal style) ---

type httpNotifier struct {
	endpoint string
	apiKey   string
	sender   string
	client   *http.Client
}

// NewHTTPNotifier creates a notifier that POSTs messages to an SMS gateway.
func NewHTTPNotifier(endpoint, apiKey, sender string) Notifier {
	return &httpNotifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		sender:   sender,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *httpNotifier) Send(ctx context.Context, phone, message string) error {
	payload, err := json.Marshal(map[string]string{
		"to":      phone,
		"from":    n.sender,
		"message": message,
	})
	if err != nil {
		return fmt.Errorf("sms: failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sms: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms: gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// --- Null Notifier (no-op, used when SMS is not configured) ---

type nullNotifier struct{}

// NewNullNotifier creates a no-op notifier for environments without a gateway.
func NewNullNotifier() Notifier {
	return &nullNotifier{}
}

func (n *nullNotifier) Send(ctx context.Context, phone, message string) error {
	return nil
}

// NewNotifierFromConfig creates the appropriate Notifier based on provider.
//
//	provider: "http" or "none"
func NewNotifierFromConfig(provider, endpoint, apiKey, sender string) (Notifier, error) {
	switch provider {
	case "http":
		if endpoint == "" {
			return nil, fmt.Errorf("sms: endpoint is required for http provider")
		}
		return NewHTTPNotifier(endpoint, apiKey, sender), nil
	case "none", "":
		return NewNullNotifier(), nil
	default:
		return nil, fmt.Errorf("sms: unknown provider %q (use http or none)", provider)
	}
}
