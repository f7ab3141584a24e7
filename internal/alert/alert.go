package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"park-ticketing/internal/logger"
)

// Client posts operational alerts to a chat webhook. Alerting is strictly
// best-effort: a failed or unconfigured sink is logged and never propagates.
type Client struct {
	webhookURL string
	httpClient *http.Client
	log        *logger.Logger
}

func NewClient(webhookURL string, log *logger.Logger) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (c *Client) Send(ctx context.Context, message string) {
	if c == nil || c.webhookURL == "" {
		return
	}

	payload, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		c.log.Error("ALERT", "Failed to marshal alert payload: "+err.Error())
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		c.log.Error("ALERT", "Failed to build alert request: "+err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("ALERT", "Failed to deliver alert: "+err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.log.Warn("ALERT", fmt.Sprintf("Alert webhook answered %d", resp.StatusCode))
	}
}
