package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"syllabus-service/internal/domain"
)

// DiscordNotifier posts an embed to a Discord-compatible webhook whenever an
// admin adds content. Delivery is fire-and-forget: failures are logged and
// never surfaced to the caller.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewDiscordNotifier(webhookURL string) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

type embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

func (n *DiscordNotifier) ContentAdded(ctx context.Context, note domain.ContentNotification) {
	var description string
	switch note.Type {
	case "quiz":
		description = fmt.Sprintf("New quiz **%s** added to **%s**", note.QuizTitle, note.SubjectName)
	default:
		description = fmt.Sprintf("New subject **%s** added", note.SubjectName)
	}

	payload := webhookPayload{Embeds: []embed{{
		Title:       "Content update",
		Description: description,
		Color:       0x2b579a,
	}}}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("notify: encode webhook payload: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		log.Printf("notify: build webhook request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		log.Printf("notify: deliver webhook: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("notify: webhook returned status %d", resp.StatusCode)
	}
}
