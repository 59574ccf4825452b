// Package telegram is the notification channel: a thin Bot API client
// for outbound alerts plus a long-poll listener for the read-only
// account commands. Notifications are fire-and-forget; a failed send is
// logged and never fatal to the driver loop.
package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const apiBase = "https://api.telegram.org"

// Client talks to one bot/chat pair. Credentials come in through the
// constructor, not the environment.
type Client struct {
	token      string
	chatID     string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client. With empty credentials every send becomes
// a logged no-op, so the bot runs fine without Telegram configured.
func NewClient(token, chatID string) *Client {
	return &Client{
		token:   token,
		chatID:  chatID,
		baseURL: apiBase,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// Enabled reports whether credentials are configured.
func (c *Client) Enabled() bool {
	return c.token != "" && c.chatID != ""
}

// Notify sends a Markdown message to the configured chat and swallows
// every failure after logging it.
func (c *Client) Notify(text string) {
	if !c.Enabled() {
		log.Println("Warning: Telegram credentials missing, skipping notification")
		return
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	payload := map[string]string{
		"chat_id":    c.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	body, _ := json.Marshal(payload)

	resp, err := c.httpClient.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		log.Printf("Telegram alert failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Telegram API error: status %s", resp.Status)
	}
}
