package app

import (
	"context"
	"sync"

	"syllabus-service/internal/domain"
)

// WindowType binds a window to its content.
type WindowType string

const (
	WindowSubjects WindowType = "subjects"
	WindowQuizzes  WindowType = "quizzes"
	WindowMistakes WindowType = "mistakes"
	WindowBrowser  WindowType = "browser"
	WindowAbout    WindowType = "about"
)

// BrowserView selects what the browser window renders.
type BrowserView string

const (
	BrowserQuiz         BrowserView = "quiz"
	BrowserMistakesView BrowserView = "mistakes"
)

// Cascade placement for newly opened windows.
const (
	baseWindowX   = 100
	baseWindowY   = 80
	cascadeOffset = 25

	browserTitle  = "Syllabus Browser"
	subjectsTitle = "Subjects"
	aboutTitle    = "About Syllabus"
	mistakesTitle = "Mistakes"
)

// WindowContent carries the payload fetched for a window; only the fields
// valid for the window's type are set.
type WindowContent struct {
	SubjectID   string                  `json:"subjectId,omitempty"`
	SubjectName string                  `json:"subjectName,omitempty"`
	Quizzes     []domain.Quiz           `json:"quizzes,omitempty"`
	Quiz        *domain.Quiz            `json:"quiz,omitempty"`
	View        BrowserView             `json:"view,omitempty"`
	Mistakes    *domain.SubjectMistakes `json:"mistakes,omitempty"`
}

// Window is one open pane on the desktop. Stacking order is the position in
// the desktop's window slice: later entries render on top.
type Window struct {
	ID        string        `json:"id"`
	Type      WindowType    `json:"type"`
	Title     string        `json:"title"`
	X         int           `json:"x"`
	Y         int           `json:"y"`
	Maximized bool          `json:"maximized"`
	Minimized bool          `json:"minimized"`
	Content   WindowContent `json:"content"`
}

// OpenRequest names the content target for OpenWindow.
type OpenRequest struct {
	SubjectID   string
	SubjectName string
	Quiz        *domain.Quiz
	View        BrowserView
}

// Desktop is the multi-window manager for the large-screen presentation.
// All state belongs to one user session; mutations replace the whole window
// slice rather than splicing in place so renders never observe a torn list.
type Desktop struct {
	mu       sync.Mutex
	userID   string
	content  ContentStore
	mistakes *MistakeService

	windows       []Window
	subjects      []domain.Subject
	counts        map[string]int
	selectedIcon  string
	startMenuOpen bool
}

func NewDesktop(userID string, content ContentStore, mistakes *MistakeService) *Desktop {
	return &Desktop{
		userID:   userID,
		content:  content,
		mistakes: mistakes,
		counts:   make(map[string]int),
	}
}

// Load fetches the subject list and the per-subject mistake badge counts.
func (d *Desktop) Load(ctx context.Context) error {
	subjects, err := d.content.ListSubjects(ctx)
	if err != nil {
		return err
	}
	counts := make(map[string]int, len(subjects))
	for _, s := range subjects {
		n, err := d.mistakes.CountForSubject(ctx, d.userID, s.ID)
		if err != nil {
			return err
		}
		counts[s.ID] = n
	}
	d.mu.Lock()
	d.subjects = subjects
	d.counts = counts
	d.mu.Unlock()
	return nil
}

// Subjects returns the loaded subject list.
func (d *Desktop) Subjects() []domain.Subject {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Subject(nil), d.subjects...)
}

// MistakeCount returns the badge count for a subject.
func (d *Desktop) MistakeCount(subjectID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[subjectID]
}

// SetMistakeCounts replaces the badge counts (fed by the live subscription).
func (d *Desktop) SetMistakeCounts(counts map[string]int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	next := make(map[string]int, len(counts))
	for k, v := range counts {
		next[k] = v
	}
	d.counts = next
}

// OpenWindow opens (or focuses) the window for a content target. The id is
// derived from type plus target so re-opening the same logical content
// focuses the existing window instead of duplicating it. Data required by
// the content type is fetched before the window is constructed; a fetch
// failure aborts the open and leaves the desktop unchanged.
func (d *Desktop) OpenWindow(ctx context.Context, typ WindowType, req OpenRequest) (Window, error) {
	id := windowID(typ, req)
	title := windowTitle(typ, req)
	content := WindowContent{SubjectID: req.SubjectID, SubjectName: req.SubjectName}

	switch typ {
	case WindowQuizzes:
		if existing, ok := d.find(id); ok {
			return d.focusExisting(existing.ID), nil
		}
		quizzes, err := d.content.ListQuizzes(ctx, req.SubjectID)
		if err != nil {
			return Window{}, err
		}
		content.Quizzes = quizzes

	case WindowMistakes:
		// Mistakes are re-fetched on every open so the report reflects the
		// latest attempt.
		mistakes, err := d.mistakes.FetchForSubject(ctx, d.userID, req.SubjectID)
		if err != nil {
			return Window{}, err
		}
		content.Mistakes = mistakes
		if existing, ok := d.find(id); ok {
			return d.replaceContent(existing.ID, title, content), nil
		}

	case WindowBrowser:
		view := req.View
		if view == "" {
			view = BrowserQuiz
		}
		content.Quiz = req.Quiz
		content.View = view
		if view == BrowserMistakesView && req.Quiz != nil {
			mistakes, err := d.mistakes.FetchForSubject(ctx, d.userID, req.SubjectID)
			if err != nil {
				return Window{}, err
			}
			content.Mistakes = mistakes
		}
		// At most one browser window: sequential opens replace its content
		// instead of stacking.
		if existing, ok := d.find(id); ok {
			return d.replaceContent(existing.ID, title, content), nil
		}

	default:
		if existing, ok := d.find(id); ok {
			return d.focusExisting(existing.ID), nil
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	offset := len(d.windows) * cascadeOffset
	win := Window{
		ID:      id,
		Type:    typ,
		Title:   title,
		X:       baseWindowX + offset,
		Y:       baseWindowY + offset,
		Content: content,
	}
	d.windows = append(append([]Window(nil), d.windows...), win)
	return win, nil
}

// CloseWindow removes the window. Destructive and immediate.
func (d *Desktop) CloseWindow(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	next := make([]Window, 0, len(d.windows))
	for _, w := range d.windows {
		if w.ID != id {
			next = append(next, w)
		}
	}
	d.windows = next
}

// ToggleMaximize flips the maximized flag.
func (d *Desktop) ToggleMaximize(id string) {
	d.mutate(id, func(w *Window) { w.Maximized = !w.Maximized })
}

// ToggleMinimize flips the minimized flag; minimized windows stay in the
// taskbar but are excluded from rendering.
func (d *Desktop) ToggleMinimize(id string) {
	d.mutate(id, func(w *Window) { w.Minimized = !w.Minimized })
}

// FocusWindow moves the window to the top of the stacking order and clears
// its minimized flag.
func (d *Desktop) FocusWindow(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.raiseLocked(id)
}

// MoveWindow updates a window's position.
func (d *Desktop) MoveWindow(id string, x, y int) {
	d.mutate(id, func(w *Window) { w.X, w.Y = x, y })
}

// Windows returns the open windows in stacking order (last is on top).
func (d *Desktop) Windows() []Window {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Window(nil), d.windows...)
}

// StackOrder returns window ids bottom to top.
func (d *Desktop) StackOrder() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, len(d.windows))
	for i, w := range d.windows {
		ids[i] = w.ID
	}
	return ids
}

// SelectIcon highlights a desktop icon; empty clears the selection.
func (d *Desktop) SelectIcon(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selectedIcon = id
}

// SelectedIcon returns the highlighted icon id.
func (d *Desktop) SelectedIcon() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selectedIcon
}

// SetStartMenu opens or closes the start menu.
func (d *Desktop) SetStartMenu(open bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.startMenuOpen = open
}

// StartMenuOpen reports the start-menu flag.
func (d *Desktop) StartMenuOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.startMenuOpen
}

func (d *Desktop) find(id string) (Window, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, w := range d.windows {
		if w.ID == id {
			return w, true
		}
	}
	return Window{}, false
}

func (d *Desktop) focusExisting(id string) Window {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.raiseLocked(id)
}

func (d *Desktop) replaceContent(id, title string, content WindowContent) Window {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.windows {
		if d.windows[i].ID == id {
			d.windows[i].Title = title
			d.windows[i].Content = content
			d.windows[i].Minimized = false
			break
		}
	}
	return d.raiseLocked(id)
}

// raiseLocked re-appends the window at the end of the slice (top of stack)
// and un-minimizes it.
func (d *Desktop) raiseLocked(id string) Window {
	var target Window
	next := make([]Window, 0, len(d.windows))
	found := false
	for _, w := range d.windows {
		if w.ID == id {
			target = w
			found = true
			continue
		}
		next = append(next, w)
	}
	if !found {
		return Window{}
	}
	target.Minimized = false
	d.windows = append(next, target)
	return target
}

func (d *Desktop) mutate(id string, fn func(*Window)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	next := append([]Window(nil), d.windows...)
	for i := range next {
		if next[i].ID == id {
			fn(&next[i])
			break
		}
	}
	d.windows = next
}

func windowID(typ WindowType, req OpenRequest) string {
	switch typ {
	case WindowQuizzes:
		return "quizzes-" + req.SubjectID
	case WindowMistakes:
		return "mistakes-" + req.SubjectID
	default:
		return string(typ)
	}
}

func windowTitle(typ WindowType, req OpenRequest) string {
	switch typ {
	case WindowSubjects:
		return subjectsTitle
	case WindowQuizzes:
		if req.SubjectName != "" {
			return req.SubjectName
		}
		return "Quizzes"
	case WindowMistakes:
		return mistakesTitle
	case WindowBrowser:
		if req.Quiz != nil {
			return browserTitle + " - " + req.Quiz.Title
		}
		return browserTitle
	case WindowAbout:
		return aboutTitle
	}
	return string(typ)
}
