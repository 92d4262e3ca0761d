package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"syllabus-service/internal/app"
	"syllabus-service/internal/domain"
	"syllabus-service/internal/infra/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewStore()
	store.Seed([]domain.Subject{
		{ID: "s1", Name: "Algebra", Order: 1, Quizzes: []domain.Quiz{
			{ID: "qz1", Title: "Linear Equations", Questions: []domain.Question{{
				Text:             "What is 2 + 2?",
				Type:             domain.QuestionSingle,
				Options:          []domain.Option{{ID: "a", Text: "3"}, {ID: "b", Text: "4"}},
				CorrectOptionIDs: []string{"b"},
				Explanation:      "Two plus two equals four.",
			}}},
		}},
	})

	auth := app.NewAuthService(store, []byte("test-secret"), time.Hour)
	mistakes := app.NewMistakeService(store)
	admin := app.NewAdminService(store, store, nil)

	server := httptest.NewServer(NewRouter(NewWSHandler(auth, store, mistakes, admin), NewAuthHandler(auth)))
	t.Cleanup(server.Close)
	return server
}

func signUp(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": "hunter22"})
	resp, err := http.Post(server.URL+"/api/signup", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sign up status %d", resp.StatusCode)
	}
	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return parsed.Token
}

func dialSession(t *testing.T, server *httptest.Server, token string, width int) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?token=" + token + "&width=" + strconv.Itoa(width)
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil skips messages until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type == want {
			return msg.Payload
		}
	}
	t.Fatalf("no %s message received", want)
	return nil
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func TestRejectsMissingToken(t *testing.T) {
	server := newTestServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws?width=1024"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}
}

func TestDesktopSessionWindowFlow(t *testing.T) {
	server := newTestServer(t)
	token := signUp(t, server, "alice@example.com")
	conn := dialSession(t, server, token, 1024)

	state := readUntil(t, conn, "state")
	if state["presentation"] != "desktop" {
		t.Fatalf("expected desktop presentation, got %v", state["presentation"])
	}

	send(t, conn, "openWindow", map[string]any{"windowType": "subjects"})
	state = readUntil(t, conn, "state")
	desktop := state["desktop"].(map[string]any)
	windows := desktop["windows"].([]any)
	if len(windows) != 1 {
		t.Fatalf("expected one window, got %d", len(windows))
	}

	send(t, conn, "startMenu", map[string]any{"open": true})
	state = readUntil(t, conn, "state")
	if open := state["desktop"].(map[string]any)["startMenuOpen"]; open != true {
		t.Fatalf("start menu not open: %v", open)
	}
}

func TestDesktopQuizAttemptRecordsMistakes(t *testing.T) {
	server := newTestServer(t)
	token := signUp(t, server, "bob@example.com")
	conn := dialSession(t, server, token, 1024)
	readUntil(t, conn, "state")

	send(t, conn, "openWindow", map[string]any{
		"windowType": "browser",
		"subjectId":  "s1",
		"quizId":     "qz1",
	})
	readUntil(t, conn, "state")

	send(t, conn, "quizSelect", map[string]any{"question": 0, "optionId": "a"})
	readUntil(t, conn, "state")
	send(t, conn, "quizFinish", map[string]any{})

	result := readUntil(t, conn, "quizFinished")
	if result["mistakeCount"].(float64) != 1 || result["total"].(float64) != 1 {
		t.Fatalf("unexpected result: %v", result)
	}

	// The live subscription pushes the updated badge counts.
	counts := readUntil(t, conn, "counts")
	if counts["s1"].(float64) != 1 {
		t.Fatalf("expected s1 count 1, got %v", counts)
	}
}

func TestMobileSessionNavigation(t *testing.T) {
	server := newTestServer(t)
	token := signUp(t, server, "carol@example.com")
	conn := dialSession(t, server, token, 375)

	state := readUntil(t, conn, "state")
	if state["presentation"] != "menu" {
		t.Fatalf("expected mobile presentation, got %v", state["presentation"])
	}

	send(t, conn, "openApp", map[string]any{"app": "my-files"})
	readUntil(t, conn, "state")

	send(t, conn, "confirm", map[string]any{"subjectId": "s1", "subjectName": "Algebra"})
	state = readUntil(t, conn, "state")
	mobile := state["mobile"].(map[string]any)
	screens := mobile["screens"].([]any)
	top := screens[len(screens)-1].(map[string]any)
	if top["kind"] != "quizzes" {
		t.Fatalf("expected quizzes screen, got %v", top["kind"])
	}

	send(t, conn, "confirm", map[string]any{"quizId": "qz1"})
	state = readUntil(t, conn, "state")
	screens = state["mobile"].(map[string]any)["screens"].([]any)
	top = screens[len(screens)-1].(map[string]any)
	if top["kind"] != "active-quiz" {
		t.Fatalf("expected active quiz screen, got %v", top["kind"])
	}
}

func TestMobileEmptyMistakesSendsNotice(t *testing.T) {
	server := newTestServer(t)
	token := signUp(t, server, "dave@example.com")
	conn := dialSession(t, server, token, 375)
	readUntil(t, conn, "state")

	send(t, conn, "openApp", map[string]any{"app": "mistakes"})
	readUntil(t, conn, "state")

	send(t, conn, "confirm", map[string]any{"subjectId": "s1", "subjectName": "Algebra"})
	notice := readUntil(t, conn, "notice")
	if notice["message"] == "" {
		t.Fatalf("expected a notice message")
	}
}

func TestAdminCommandsRequireRole(t *testing.T) {
	server := newTestServer(t)
	token := signUp(t, server, "eve@example.com")
	conn := dialSession(t, server, token, 1024)
	readUntil(t, conn, "state")

	send(t, conn, "adminAddSubject", map[string]any{"name": "Chemistry", "order": 3})
	errMsg := readUntil(t, conn, "error")
	if errMsg["message"] == "" {
		t.Fatalf("expected an error message")
	}
}

func TestEntryRedirectByViewport(t *testing.T) {
	server := newTestServer(t)
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	resp, err := client.Get(server.URL + "/?width=375")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if loc := resp.Header.Get("Location"); loc != "/menu" {
		t.Fatalf("narrow viewport redirected to %q", loc)
	}

	resp, err = client.Get(server.URL + "/?width=1280")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if loc := resp.Header.Get("Location"); loc != "/desktop" {
		t.Fatalf("wide viewport redirected to %q", loc)
	}
}
