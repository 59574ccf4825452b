package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Update is a Telegram Update object (partial schema).
type Update struct {
	UpdateID int `json:"update_id"`
	Message  struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From struct {
			Username string `json:"username"`
		} `json:"from"`
	} `json:"message"`
}

type updateResponse struct {
	Ok          bool     `json:"ok"`
	Result      []Update `json:"result"`
	Description string   `json:"description"`
	ErrorCode   int      `json:"error_code"`
}

// CommandHandler processes one slash command and returns the reply text.
type CommandHandler func(command string) string

// Listen long-polls for commands from the authorized chat until the
// context is cancelled. It blocks, so callers run it in a goroutine.
// Only the configured chat is answered; anything else is logged and
// ignored without a reply.
func (c *Client) Listen(ctx context.Context, handler CommandHandler) {
	if !c.Enabled() {
		log.Println("Telegram listener: credentials missing, disabled")
		return
	}

	authChatID, err := strconv.ParseInt(c.chatID, 10, 64)
	if err != nil {
		log.Printf("Telegram listener: bad chat id %q, disabled", c.chatID)
		return
	}

	log.Println("Telegram listener: started")
	offset := 0

	for {
		if ctx.Err() != nil {
			log.Println("Telegram listener: stopping")
			return
		}

		updates, err := c.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Telegram listener error: %v", err)
			sleepCtx(ctx, 5*time.Second)
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1

			if update.Message.Chat.ID != authChatID {
				log.Printf("⚠️ Unauthorized access attempt: user %s (ID: %d) tried: %s",
					update.Message.From.Username, update.Message.Chat.ID, update.Message.Text)
				continue
			}

			text := strings.TrimSpace(update.Message.Text)
			if !strings.HasPrefix(text, "/") {
				continue
			}
			log.Printf("Command received: %s", text)
			c.Notify(handler(text))
		}
	}
}

func (c *Client) getUpdates(ctx context.Context, offset int) ([]Update, error) {
	// Long-poll timeout stays under the HTTP client's 30s limit.
	url := fmt.Sprintf("%s/bot%s/getUpdates?offset=%d&timeout=25", c.baseURL, c.token, offset)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result updateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if !result.Ok {
		return nil, fmt.Errorf("API error: %s (code %d)", result.Description, result.ErrorCode)
	}
	return result.Result, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
