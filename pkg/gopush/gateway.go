package gopush

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GatewayClient POSTs a trigger to the web-push gateway that holds the
// device subscriptions. Subscription storage and the web-push crypto are the
// gateway's problem, not ours.
type GatewayClient struct {
	BaseURL string            `yaml:"baseURL"`
	APIKey  string            `yaml:"apiKey"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

func NewGatewayClient(baseURL, apiKey string) *GatewayClient {
	return &GatewayClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Timeout: 10 * time.Second,
	}
}

func (g *GatewayClient) Deliver(ctx context.Context, event TriggerEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.BaseURL+"/v1/push", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.APIKey)
	}
	for k, v := range g.Headers {
		req.Header.Set(k, v)
	}

	timeout := g.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("push gateway error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push gateway error: %d", resp.StatusCode)
	}
	return nil
}

// Trigger lets the gateway client double as a Pusher for deployments that
// skip the Kafka hop.
func (g *GatewayClient) Trigger(ctx context.Context, recipientRef string) error {
	return g.Deliver(ctx, GenericEvent(recipientRef))
}
