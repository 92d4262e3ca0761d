package http

import (
	"syllabus-service/internal/app"
	"syllabus-service/internal/domain"
)

// stateView is the full session snapshot pushed after every accepted
// command. Exactly one of Desktop and Mobile is set.
type stateView struct {
	Presentation string       `json:"presentation"`
	Profile      profileView  `json:"profile"`
	Desktop      *desktopView `json:"desktop,omitempty"`
	Mobile       *mobileView  `json:"mobile,omitempty"`
	Admin        *adminView   `json:"admin,omitempty"`
}

type profileView struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type desktopView struct {
	Windows       []app.Window     `json:"windows"`
	Subjects      []domain.Subject `json:"subjects"`
	Counts        map[string]int   `json:"counts"`
	SelectedIcon  string           `json:"selectedIcon,omitempty"`
	StartMenuOpen bool             `json:"startMenuOpen"`
}

type mobileView struct {
	Screens     []screenView     `json:"screens"`
	SelectedRow int              `json:"selectedRow"`
	Subjects    []domain.Subject `json:"subjects"`
	Counts      map[string]int   `json:"counts"`
}

// screenView flattens the concrete screen types into one wire shape; only
// the fields valid for Kind are set.
type screenView struct {
	Kind        string                  `json:"kind"`
	Mode        string                  `json:"mode,omitempty"`
	SubjectID   string                  `json:"subjectId,omitempty"`
	SubjectName string                  `json:"subjectName,omitempty"`
	Quizzes     []domain.Quiz           `json:"quizzes,omitempty"`
	URL         string                  `json:"url,omitempty"`
	Mistakes    *domain.SubjectMistakes `json:"mistakes,omitempty"`
	Attempt     *attemptView            `json:"attempt,omitempty"`
}

type attemptView struct {
	Quiz      domain.Quiz `json:"quiz"`
	Index     int         `json:"index"`
	Selected  []string    `json:"selected,omitempty"`
	Checked   bool        `json:"checked"`
	Completed bool        `json:"completed"`
}

type adminView struct {
	Screen    string `json:"screen"`
	SubjectID string `json:"subjectId,omitempty"`
	QuizID    string `json:"quizId,omitempty"`
}

func snapshotSession(sess *app.Session, editor *app.AdminEditor) stateView {
	view := stateView{
		Presentation: string(sess.Presentation),
		Profile: profileView{
			UID:   sess.Profile.UID,
			Email: sess.Profile.Email,
			Role:  string(sess.Profile.Role),
		},
	}
	if d := sess.Desktop(); d != nil {
		view.Desktop = snapshotDesktop(d)
	}
	if n := sess.Navigator(); n != nil {
		view.Mobile = snapshotNavigator(n)
	}
	if editor != nil {
		subjectID, quizID := editor.Context()
		view.Admin = &adminView{
			Screen:    string(editor.Current()),
			SubjectID: subjectID,
			QuizID:    quizID,
		}
	}
	return view
}

func snapshotDesktop(d *app.Desktop) *desktopView {
	subjects := d.Subjects()
	counts := make(map[string]int, len(subjects))
	for _, s := range subjects {
		counts[s.ID] = d.MistakeCount(s.ID)
	}
	return &desktopView{
		Windows:       d.Windows(),
		Subjects:      subjects,
		Counts:        counts,
		SelectedIcon:  d.SelectedIcon(),
		StartMenuOpen: d.StartMenuOpen(),
	}
}

func snapshotNavigator(n *app.Navigator) *mobileView {
	subjects := n.Subjects()
	counts := make(map[string]int, len(subjects))
	for _, s := range subjects {
		counts[s.ID] = n.MistakeCount(s.ID)
	}
	screens := make([]screenView, 0, n.Depth())
	for _, screen := range n.Stack() {
		screens = append(screens, snapshotScreen(screen))
	}
	return &mobileView{
		Screens:     screens,
		SelectedRow: n.SelectedRow(),
		Subjects:    subjects,
		Counts:      counts,
	}
}

func snapshotScreen(screen app.Screen) screenView {
	view := screenView{Kind: string(screen.Kind())}
	switch s := screen.(type) {
	case app.SubjectsScreen:
		view.Mode = string(s.Mode)
	case app.QuizzesScreen:
		view.SubjectID = s.SubjectID
		view.SubjectName = s.SubjectName
		view.Quizzes = s.Quizzes
	case app.ActiveQuizScreen:
		view.SubjectID = s.SubjectID
		view.URL = s.URL
		view.Attempt = snapshotAttempt(s.Attempt)
	case app.BrowserScreen:
		view.URL = s.URL
		view.Mistakes = s.Mistakes
	}
	return view
}

func snapshotAttempt(a *app.Attempt) *attemptView {
	if a == nil {
		return nil
	}
	return &attemptView{
		Quiz:      a.Quiz(),
		Index:     a.Index(),
		Selected:  a.Selected(a.Index()),
		Checked:   a.Checked(a.Index()),
		Completed: a.Completed(),
	}
}
