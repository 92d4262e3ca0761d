package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"syllabus-service/internal/app"
	"syllabus-service/internal/domain"
)

// WSHandler upgrades authenticated requests to websockets and runs one
// session per connection. All interface state lives server-side; the client
// sends commands and renders the state snapshots pushed back.
type WSHandler struct {
	auth     *app.AuthService
	content  app.ContentStore
	mistakes *app.MistakeService
	admin    *app.AdminService
	upgrader websocket.Upgrader
}

func NewWSHandler(auth *app.AuthService, content app.ContentStore, mistakes *app.MistakeService, admin *app.AdminService) *WSHandler {
	return &WSHandler{
		auth:     auth,
		content:  content,
		mistakes: mistakes,
		admin:    admin,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type noticePayload struct {
	Message string `json:"message"`
}

// ServeWS authenticates via the token query parameter, picks the
// presentation from the reported viewport width, and enters the command
// loop. A banned or invalid token never reaches the upgrade.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	profile, err := h.auth.Verify(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, domain.ErrUserBanned) {
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}
	width, _ := strconv.Atoi(r.URL.Query().Get("width"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sess := app.NewSession(profile, app.PresentationFor(width), h.content, h.mistakes)
	defer sess.Close()

	if sess.Desktop() != nil {
		err = sess.Desktop().Load(r.Context())
	} else {
		err = sess.Navigator().Load(r.Context())
	}
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	counts, cancelCounts, err := h.mistakes.Subscribe(r.Context(), profile.UID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancelCounts()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	countsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(countsDone)
		for {
			select {
			case update, ok := <-counts:
				if !ok {
					return
				}
				if d := sess.Desktop(); d != nil {
					d.SetMistakeCounts(update)
				}
				select {
				case send <- outboundMessage[any]{Type: "counts", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	ws := &wsSession{handler: h, sess: sess, send: send}
	ws.pushState()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if inbound.Type == "signOut" {
			break
		}
		ws.dispatch(r.Context(), inbound)
	}

	close(closeSignals)
	<-countsDone
	close(send)
	<-writerDone
}

// wsSession is the per-connection command dispatcher. The read loop is the
// only goroutine that mutates session state, so dispatch needs no lock of
// its own.
type wsSession struct {
	handler *WSHandler
	sess    *app.Session
	send    chan outboundMessage[any]

	// Desktop quiz attempts run in the browser window; the mobile
	// presentation carries its attempt on the active-quiz screen instead.
	attempt *app.Attempt
	editor  *app.AdminEditor
}

func (ws *wsSession) dispatch(ctx context.Context, msg inboundMessage) {
	var err error
	switch {
	case ws.sess.Desktop() != nil && ws.dispatchDesktop(ctx, msg, &err):
	case ws.sess.Navigator() != nil && ws.dispatchMobile(ctx, msg, &err):
	case ws.dispatchQuiz(ctx, msg, &err):
	case ws.dispatchAdmin(ctx, msg, &err):
	default:
		ws.sendError("unsupported message type: " + msg.Type)
		return
	}
	if err != nil {
		if errors.Is(err, domain.ErrNoMistakes) {
			ws.sendNotice("No mistakes recorded for this subject yet.")
			return
		}
		ws.sendError(err.Error())
		return
	}
	ws.pushState()
}

type openWindowPayload struct {
	WindowType  string `json:"windowType"`
	SubjectID   string `json:"subjectId"`
	SubjectName string `json:"subjectName"`
	QuizID      string `json:"quizId"`
	View        string `json:"view"`
}

type windowRefPayload struct {
	ID string `json:"id"`
}

type moveWindowPayload struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

type selectIconPayload struct {
	ID string `json:"id"`
}

type startMenuPayload struct {
	Open bool `json:"open"`
}

func (ws *wsSession) dispatchDesktop(ctx context.Context, msg inboundMessage, outErr *error) bool {
	desktop := ws.sess.Desktop()
	switch msg.Type {
	case "openWindow":
		var p openWindowPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		*outErr = ws.openWindow(ctx, desktop, p)
	case "closeWindow":
		var p windowRefPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		desktop.CloseWindow(p.ID)
	case "minimize":
		var p windowRefPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		desktop.ToggleMinimize(p.ID)
	case "maximize":
		var p windowRefPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		desktop.ToggleMaximize(p.ID)
	case "focus":
		var p windowRefPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		desktop.FocusWindow(p.ID)
	case "move":
		var p moveWindowPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		desktop.MoveWindow(p.ID, p.X, p.Y)
	case "selectIcon":
		var p selectIconPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		desktop.SelectIcon(p.ID)
	case "startMenu":
		var p startMenuPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		desktop.SetStartMenu(p.Open)
	default:
		return false
	}
	return true
}

// openWindow resolves the content target before handing off to the window
// manager. Opening a quiz in the browser also starts the attempt.
func (ws *wsSession) openWindow(ctx context.Context, desktop *app.Desktop, p openWindowPayload) error {
	req := app.OpenRequest{
		SubjectID:   p.SubjectID,
		SubjectName: p.SubjectName,
		View:        app.BrowserView(p.View),
	}
	typ := app.WindowType(p.WindowType)
	if typ == app.WindowBrowser && p.QuizID != "" {
		quiz, err := ws.handler.content.GetQuizDetail(ctx, p.SubjectID, p.QuizID)
		if err != nil {
			return err
		}
		req.Quiz = &quiz
		ws.attempt = app.NewAttempt(p.SubjectID, quiz)
	}
	_, err := desktop.OpenWindow(ctx, typ, req)
	return err
}

type openAppPayload struct {
	App string `json:"app"`
}

type selectRowPayload struct {
	Row int `json:"row"`
}

type confirmPayload struct {
	SubjectID   string `json:"subjectId"`
	SubjectName string `json:"subjectName"`
	QuizID      string `json:"quizId"`
}

type navigatePayload struct {
	URL string `json:"url"`
}

func (ws *wsSession) dispatchMobile(ctx context.Context, msg inboundMessage, outErr *error) bool {
	nav := ws.sess.Navigator()
	switch msg.Type {
	case "openApp":
		var p openAppPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		nav.OpenApp(p.App)
	case "select":
		var p selectRowPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		nav.SelectRow(p.Row)
	case "confirm":
		var p confirmPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		*outErr = nav.Confirm(ctx, app.Selection{
			SubjectID:   p.SubjectID,
			SubjectName: p.SubjectName,
			QuizID:      p.QuizID,
		})
	case "back":
		nav.Back()
	case "home":
		nav.Home()
	case "navigate":
		var p navigatePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		nav.Navigate(p.URL)
	default:
		return false
	}
	return true
}

type quizSelectPayload struct {
	Question int    `json:"question"`
	OptionID string `json:"optionId"`
}

type quizQuestionPayload struct {
	Question int `json:"question"`
}

type quizFinishedPayload struct {
	MistakeCount int `json:"mistakeCount"`
	Total        int `json:"total"`
}

func (ws *wsSession) dispatchQuiz(ctx context.Context, msg inboundMessage, outErr *error) bool {
	attempt := ws.currentAttempt()
	if attempt == nil {
		return false
	}
	switch msg.Type {
	case "quizSelect":
		var p quizSelectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		attempt.SelectOption(p.Question, p.OptionID)
	case "quizCheck":
		var p quizQuestionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		attempt.CheckAnswer(p.Question)
	case "quizNext":
		attempt.Advance()
	case "quizPrev":
		attempt.Retreat()
	case "quizFinish":
		mistakes := attempt.Finish()
		if err := ws.handler.mistakes.Record(ctx, ws.sess.Profile.UID, attempt.MistakeGroup(mistakes)); err != nil {
			*outErr = err
			return true
		}
		ws.send <- outboundMessage[any]{Type: "quizFinished", Payload: quizFinishedPayload{
			MistakeCount: len(mistakes),
			Total:        len(attempt.Quiz().Questions),
		}}
	default:
		return false
	}
	return true
}

// currentAttempt resolves the attempt the quiz commands apply to: the
// browser-window attempt on desktop, the active-quiz screen on mobile.
func (ws *wsSession) currentAttempt() *app.Attempt {
	if ws.sess.Desktop() != nil {
		return ws.attempt
	}
	if screen, ok := ws.sess.Navigator().Current().(app.ActiveQuizScreen); ok {
		return screen.Attempt
	}
	return nil
}

type adminOpenPayload struct {
	Screen    string `json:"screen"`
	SubjectID string `json:"subjectId"`
	QuizID    string `json:"quizId"`
}

type adminSubjectPayload struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type adminQuizPayload struct {
	SubjectID   string `json:"subjectId"`
	SubjectName string `json:"subjectName"`
	Title       string `json:"title"`
}

type adminQuestionPayload struct {
	SubjectID string          `json:"subjectId"`
	QuizID    string          `json:"quizId"`
	Question  domain.Question `json:"question"`
}

type adminImportPayload struct {
	SubjectID string          `json:"subjectId"`
	QuizID    string          `json:"quizId"`
	Questions json.RawMessage `json:"questions"`
}

type adminUserPayload struct {
	UID    string `json:"uid"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

type adminDeletePayload struct {
	Kind      string `json:"kind"`
	SubjectID string `json:"subjectId"`
	QuizID    string `json:"quizId"`
	UID       string `json:"uid"`
}

func (ws *wsSession) dispatchAdmin(ctx context.Context, msg inboundMessage, outErr *error) bool {
	switch msg.Type {
	case "adminOpen", "adminBack", "adminAddSubject", "adminAddQuiz", "adminAddQuestion",
		"adminImport", "adminListUsers", "adminSetRole", "adminSetStatus",
		"adminRequestDelete", "adminCancelDelete", "adminConfirmDelete":
	default:
		return false
	}

	if ws.editor == nil {
		editor, err := app.NewAdminEditor(ws.sess.Profile, ws.handler.admin)
		if err != nil {
			*outErr = err
			return true
		}
		ws.editor = editor
	}

	switch msg.Type {
	case "adminOpen":
		var p adminOpenPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		*outErr = ws.editor.Open(app.AdminScreen(p.Screen), p.SubjectID, p.QuizID)
	case "adminBack":
		ws.editor.Back()
	case "adminAddSubject":
		var p adminSubjectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		subjects, err := ws.handler.admin.AddSubject(ctx, ws.sess.Profile, p.Name, p.Order)
		if err != nil {
			*outErr = err
			return true
		}
		ws.send <- outboundMessage[any]{Type: "adminSubjects", Payload: subjects}
	case "adminAddQuiz":
		var p adminQuizPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		quizzes, err := ws.handler.admin.AddQuiz(ctx, ws.sess.Profile, p.SubjectID, p.SubjectName, p.Title)
		if err != nil {
			*outErr = err
			return true
		}
		ws.send <- outboundMessage[any]{Type: "adminQuizzes", Payload: quizzes}
	case "adminAddQuestion":
		var p adminQuestionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		*outErr = ws.handler.admin.AppendQuestion(ctx, ws.sess.Profile, p.SubjectID, p.QuizID, p.Question)
	case "adminImport":
		var p adminImportPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		*outErr = ws.handler.admin.ImportQuestions(ctx, ws.sess.Profile, p.SubjectID, p.QuizID, p.Questions)
	case "adminListUsers":
		users, err := ws.handler.admin.ListUsers(ctx, ws.sess.Profile)
		if err != nil {
			*outErr = err
			return true
		}
		ws.send <- outboundMessage[any]{Type: "adminUsers", Payload: users}
	case "adminSetRole":
		var p adminUserPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		users, err := ws.handler.admin.SetUserRole(ctx, ws.sess.Profile, p.UID, domain.Role(p.Role))
		if err != nil {
			*outErr = err
			return true
		}
		ws.send <- outboundMessage[any]{Type: "adminUsers", Payload: users}
	case "adminSetStatus":
		var p adminUserPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		users, err := ws.handler.admin.SetUserStatus(ctx, ws.sess.Profile, p.UID, domain.Status(p.Status))
		if err != nil {
			*outErr = err
			return true
		}
		ws.send <- outboundMessage[any]{Type: "adminUsers", Payload: users}
	case "adminRequestDelete":
		var p adminDeletePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			*outErr = err
			return true
		}
		var prompt string
		switch p.Kind {
		case "subject":
			prompt = ws.editor.RequestDeleteSubject(p.SubjectID)
		case "quiz":
			prompt = ws.editor.RequestDeleteQuiz(p.SubjectID, p.QuizID)
		case "user":
			prompt = ws.editor.RequestDeleteUser(p.UID)
		default:
			ws.sendError("unknown delete kind: " + p.Kind)
			return true
		}
		ws.send <- outboundMessage[any]{Type: "confirmPrompt", Payload: noticePayload{Message: prompt}}
	case "adminCancelDelete":
		ws.editor.CancelDelete()
	case "adminConfirmDelete":
		*outErr = ws.editor.ConfirmDelete(ctx)
	}
	return true
}

func (ws *wsSession) sendError(message string) {
	ws.send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}

func (ws *wsSession) sendNotice(message string) {
	ws.send <- outboundMessage[any]{Type: "notice", Payload: noticePayload{Message: message}}
}

func (ws *wsSession) pushState() {
	ws.send <- outboundMessage[any]{Type: "state", Payload: snapshotSession(ws.sess, ws.editor)}
}
