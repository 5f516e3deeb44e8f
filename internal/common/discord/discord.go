package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

const (
	colorSuccess = 0x2ECC71 // Green
	colorFailure = 0xFF0000 // Red
)

type WebhookMessage struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

type Embed struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Color       int       `json:"color"`
	Timestamp   time.Time `json:"timestamp"`
	Fields      []Field   `json:"fields,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Client posts messages to a Discord webhook. A client without a webhook URL
// silently drops everything.
type Client struct {
	webhookURL string
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// Enabled reports whether a webhook URL is configured.
func (c *Client) Enabled() bool {
	return c.webhookURL != ""
}

func (c *Client) SendMessage(ctx context.Context, msg WebhookMessage) error {
	if c.webhookURL == "" {
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook request failed with status: %d", resp.StatusCode)
	}

	return nil
}

// Notify posts a single embed. Fields are listed in key order so repeated
// notifications look alike.
func (c *Client) Notify(ctx context.Context, title, message string, fields map[string]interface{}) error {
	color := colorSuccess
	if _, failed := fields["error"]; failed {
		color = colorFailure
	}

	embed := Embed{
		Title:       title,
		Description: message,
		Color:       color,
		Timestamp:   c.now(),
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		embed.Fields = append(embed.Fields, Field{
			Name:   key,
			Value:  fmt.Sprintf("%v", fields[key]),
			Inline: true,
		})
	}

	return c.SendMessage(ctx, WebhookMessage{Embeds: []Embed{embed}})
}
