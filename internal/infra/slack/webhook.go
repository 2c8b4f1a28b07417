package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voice-scene/internal/infra"
)

// Client posts messages to a Slack incoming webhook.
type Client struct {
	webhookURL string
	channel    string
	username   string
	prefix     string
	httpClient *http.Client
}

type Options struct {
	Channel  string
	Username string
	Prefix   string
}

func NewClient(webhookURL string, opts Options) *Client {
	return &Client{
		webhookURL: webhookURL,
		channel:    opts.Channel,
		username:   opts.Username,
		prefix:     opts.Prefix,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type payload struct {
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
	Text     string `json:"text"`
}

func (c *Client) Notify(ctx context.Context, message string) error {
	if c.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(payload{
		Channel:  c.channel,
		Username: c.username,
		Text:     c.prefix + message,
	})
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	return infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending notification: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return infra.StatusError("slack", resp.StatusCode, respBody)
		}

		return nil
	})
}
