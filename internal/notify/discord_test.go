package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"syllabus-service/internal/domain"
)

func TestContentAddedPostsEmbed(t *testing.T) {
	var received webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier := NewDiscordNotifier(server.URL)
	notifier.ContentAdded(context.Background(), domain.ContentNotification{
		Type:        "quiz",
		SubjectName: "Algebra",
		QuizTitle:   "Linear Equations",
	})

	if len(received.Embeds) != 1 {
		t.Fatalf("expected one embed, got %+v", received)
	}
	desc := received.Embeds[0].Description
	if !strings.Contains(desc, "Linear Equations") || !strings.Contains(desc, "Algebra") {
		t.Fatalf("embed missing content names: %q", desc)
	}
}

func TestDeliveryFailuresAreSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := NewDiscordNotifier(server.URL)
	// Must not panic or surface the failure.
	notifier.ContentAdded(context.Background(), domain.ContentNotification{Type: "subject", SubjectName: "X"})

	unreachable := NewDiscordNotifier("http://127.0.0.1:1/webhook")
	unreachable.ContentAdded(context.Background(), domain.ContentNotification{Type: "subject", SubjectName: "Y"})
}
