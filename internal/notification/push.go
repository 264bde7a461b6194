package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TokenLookup resolves a user's registered device push tokens. Users with
// notifications disabled resolve to an empty slice.
type TokenLookup func(ctx context.Context, userID string) ([]string, error)

// PushSender delivers notifications through an Expo-compatible push gateway.
type PushSender struct {
	gatewayURL string
	tokens     TokenLookup
	client     *http.Client
}

// NewPushSender constructs a gateway-backed Sender.
func NewPushSender(gatewayURL string, tokens TokenLookup) *PushSender {
	return &PushSender{
		gatewayURL: gatewayURL,
		tokens:     tokens,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type pushMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Send pushes the message to every registered device token. A partial failure
// returns the last error after attempting all tokens.
func (p *PushSender) Send(ctx context.Context, userID, title, body string, data map[string]string) error {
	tokens, err := p.tokens(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve push tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	var lastErr error
	for _, token := range tokens {
		if err := p.deliver(ctx, pushMessage{To: token, Title: title, Body: body, Data: data}); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (p *PushSender) deliver(ctx context.Context, msg pushMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode push message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("push gateway responded %d", res.StatusCode)
	}
	return nil
}
