package app

import (
	"context"
	"sync"

	"syllabus-service/internal/domain"
)

// ScreenKind tags a navigation entry.
type ScreenKind string

const (
	ScreenHome       ScreenKind = "home"
	ScreenSubjects   ScreenKind = "subjects"
	ScreenQuizzes    ScreenKind = "quizzes"
	ScreenActiveQuiz ScreenKind = "active-quiz"
	ScreenBrowser    ScreenKind = "browser"
	ScreenAbout      ScreenKind = "about"
)

// SubjectsMode selects how a subjects screen reacts to a selection: normal
// mode drills into the quiz list, mistakes mode jumps straight to the
// subject's mistakes report.
type SubjectsMode string

const (
	ModeNormal   SubjectsMode = "normal"
	ModeMistakes SubjectsMode = "mistakes"
)

// Screen is a navigation entry. Each concrete screen carries only the fields
// valid for its kind.
type Screen interface {
	Kind() ScreenKind
}

type HomeScreen struct{}

func (HomeScreen) Kind() ScreenKind { return ScreenHome }

type AboutScreen struct{}

func (AboutScreen) Kind() ScreenKind { return ScreenAbout }

type SubjectsScreen struct {
	Mode SubjectsMode
}

func (SubjectsScreen) Kind() ScreenKind { return ScreenSubjects }

type QuizzesScreen struct {
	SubjectID   string
	SubjectName string
	Quizzes     []domain.Quiz
}

func (QuizzesScreen) Kind() ScreenKind { return ScreenQuizzes }

type ActiveQuizScreen struct {
	SubjectID string
	Attempt   *Attempt
	URL       string
}

func (ActiveQuizScreen) Kind() ScreenKind { return ScreenActiveQuiz }

type BrowserScreen struct {
	URL      string
	Mistakes *domain.SubjectMistakes
}

func (BrowserScreen) Kind() ScreenKind { return ScreenBrowser }

// MistakesFolderID is the synthetic entry appended to a quiz list when the
// subject has recorded mistakes.
const MistakesFolderID = "mistakes"

// Navigator is the linear back-stack router for the small-screen
// presentation. The stack bottom is always the home screen and its depth
// never drops below one. Mutations replace the whole stack slice.
type Navigator struct {
	mu       sync.Mutex
	userID   string
	content  ContentStore
	mistakes *MistakeService

	stack    []Screen
	selected int
	busy     bool

	subjects     []domain.Subject
	counts       map[string]int
	countsCancel func()
	closed       bool
}

func NewNavigator(userID string, content ContentStore, mistakes *MistakeService) *Navigator {
	return &Navigator{
		userID:   userID,
		content:  content,
		mistakes: mistakes,
		stack:    []Screen{HomeScreen{}},
		selected: -1,
		counts:   make(map[string]int),
	}
}

// Load fetches the subject list once and starts the live mistake-count
// subscription that badges folders without manual refresh.
func (n *Navigator) Load(ctx context.Context) error {
	subjects, err := n.content.ListSubjects(ctx)
	if err != nil {
		return err
	}

	ch, cancel, err := n.mistakes.Subscribe(ctx, n.userID)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.subjects = subjects
	n.countsCancel = cancel
	n.mu.Unlock()

	go func() {
		for counts := range ch {
			n.mu.Lock()
			if n.closed {
				// Late update after teardown: drop it.
				n.mu.Unlock()
				continue
			}
			n.counts = counts
			n.mu.Unlock()
		}
	}()
	return nil
}

// Close cancels the count subscription. Further updates are ignored.
func (n *Navigator) Close() {
	n.mu.Lock()
	cancel := n.countsCancel
	n.countsCancel = nil
	n.closed = true
	n.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Current returns the visible screen (the stack top).
func (n *Navigator) Current() Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stack[len(n.stack)-1]
}

// Depth returns the stack depth.
func (n *Navigator) Depth() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.stack)
}

// Stack returns the screens bottom to top.
func (n *Navigator) Stack() []Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Screen(nil), n.stack...)
}

// Subjects returns the loaded subject list.
func (n *Navigator) Subjects() []domain.Subject {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Subject(nil), n.subjects...)
}

// MistakeCount returns the live badge count for a subject.
func (n *Navigator) MistakeCount(subjectID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.counts[subjectID]
}

// SelectedRow returns the highlighted list row, -1 for none.
func (n *Navigator) SelectedRow() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.selected
}

// SelectRow highlights a list row on the current screen.
func (n *Navigator) SelectRow(i int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.selected = i
}

// OpenApp handles home-screen app launches.
func (n *Navigator) OpenApp(app string) {
	switch app {
	case "my-files":
		n.push(SubjectsScreen{Mode: ModeNormal})
	case "mistakes":
		n.push(SubjectsScreen{Mode: ModeMistakes})
	case "browser":
		n.push(BrowserScreen{URL: "about:home"})
	case "about":
		n.push(AboutScreen{})
	}
}

// Back pops the top entry. On a stack of just the home screen it is a
// no-op.
func (n *Navigator) Back() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.stack) <= 1 {
		return
	}
	n.stack = append([]Screen(nil), n.stack[:len(n.stack)-1]...)
	n.selected = -1
}

// Home truncates the stack to just the home screen.
func (n *Navigator) Home() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = []Screen{HomeScreen{}}
	n.selected = -1
}

// Selection identifies the row confirmed on the current screen.
type Selection struct {
	SubjectID   string
	SubjectName string
	QuizID      string
}

// Confirm runs the screen-specific forward transition for a selection. A
// fetch error aborts the push and leaves the stack unchanged. Re-entrant
// calls while a transition's fetch is in flight are dropped.
func (n *Navigator) Confirm(ctx context.Context, sel Selection) error {
	n.mu.Lock()
	if n.busy {
		n.mu.Unlock()
		return nil
	}
	n.busy = true
	current := n.stack[len(n.stack)-1]
	n.mu.Unlock()
	defer func() {
		n.mu.Lock()
		n.busy = false
		n.mu.Unlock()
	}()

	switch screen := current.(type) {
	case SubjectsScreen:
		if screen.Mode == ModeMistakes {
			// Jump straight to the report, skipping the quiz list.
			mistakes, err := n.mistakes.FetchForSubject(ctx, n.userID, sel.SubjectID)
			if err != nil {
				return err
			}
			if mistakes == nil || len(mistakes.Quizzes) == 0 {
				return domain.ErrNoMistakes
			}
			n.push(BrowserScreen{
				URL:      mistakesReportURL(sel.SubjectName),
				Mistakes: mistakes,
			})
			return nil
		}
		quizzes, err := n.content.ListQuizzes(ctx, sel.SubjectID)
		if err != nil {
			return err
		}
		n.push(QuizzesScreen{SubjectID: sel.SubjectID, SubjectName: sel.SubjectName, Quizzes: quizzes})
		return nil

	case QuizzesScreen:
		if sel.QuizID == MistakesFolderID {
			mistakes, err := n.mistakes.FetchForSubject(ctx, n.userID, screen.SubjectID)
			if err != nil {
				return err
			}
			if mistakes == nil || len(mistakes.Quizzes) == 0 {
				return domain.ErrNoMistakes
			}
			n.push(BrowserScreen{
				URL:      mistakesReportURL(screen.SubjectName),
				Mistakes: mistakes,
			})
			return nil
		}
		quiz, err := n.content.GetQuizDetail(ctx, screen.SubjectID, sel.QuizID)
		if err != nil {
			return err
		}
		n.push(ActiveQuizScreen{
			SubjectID: screen.SubjectID,
			Attempt:   NewAttempt(screen.SubjectID, quiz),
			URL:       "https://syllabus.edu/quiz/" + quiz.ID,
		})
		return nil
	}
	return nil
}

// Navigate updates the URL of a browser screen in place; no-op on other
// screens.
func (n *Navigator) Navigate(url string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	top := len(n.stack) - 1
	browser, ok := n.stack[top].(BrowserScreen)
	if !ok {
		return
	}
	browser.URL = url
	next := append([]Screen(nil), n.stack...)
	next[top] = browser
	n.stack = next
}

func (n *Navigator) push(s Screen) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stack = append(append([]Screen(nil), n.stack...), s)
	n.selected = -1
}

func mistakesReportURL(subjectName string) string {
	return "file:///C:/My Files/" + subjectName + "/Mistakes.pdf"
}
