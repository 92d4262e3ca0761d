package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"syllabus-service/internal/domain"
)

// AdminService executes content and user management against the stores.
// Every mutation re-fetches the affected list so callers render consistent
// state instead of patching locally.
type AdminService struct {
	content  ContentStore
	users    UserStore
	notifier Notifier
}

func NewAdminService(content ContentStore, users UserStore, notifier Notifier) *AdminService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &AdminService{content: content, users: users, notifier: notifier}
}

func requireRole(actor domain.UserProfile, min domain.Role) error {
	if !actor.Role.AtLeast(min) {
		return domain.ErrForbidden
	}
	return nil
}

// ListSubjects is the admin read of the subject catalogue.
func (s *AdminService) ListSubjects(ctx context.Context, actor domain.UserProfile) ([]domain.Subject, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.content.ListSubjects(ctx)
}

// ListQuizzes is the admin read of a subject's quizzes.
func (s *AdminService) ListQuizzes(ctx context.Context, actor domain.UserProfile, subjectID string) ([]domain.Quiz, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.content.ListQuizzes(ctx, subjectID)
}

// AddSubject creates a subject, fires the content notification and returns
// the refreshed subject list.
func (s *AdminService) AddSubject(ctx context.Context, actor domain.UserProfile, name string, order int) ([]domain.Subject, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("subject name must not be empty")
	}
	if _, err := s.content.CreateSubject(ctx, name, order); err != nil {
		return nil, err
	}
	s.notifier.ContentAdded(ctx, domain.ContentNotification{Type: "subject", SubjectName: name})
	return s.content.ListSubjects(ctx)
}

// DeleteSubject removes a subject and returns the refreshed list.
func (s *AdminService) DeleteSubject(ctx context.Context, actor domain.UserProfile, subjectID string) ([]domain.Subject, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.content.DeleteSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	return s.content.ListSubjects(ctx)
}

// AddQuiz creates an empty quiz under a subject, fires the notification and
// returns the refreshed quiz list.
func (s *AdminService) AddQuiz(ctx context.Context, actor domain.UserProfile, subjectID, subjectName, title string) ([]domain.Quiz, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, fmt.Errorf("quiz title must not be empty")
	}
	if _, err := s.content.CreateQuiz(ctx, subjectID, title); err != nil {
		return nil, err
	}
	s.notifier.ContentAdded(ctx, domain.ContentNotification{Type: "quiz", SubjectName: subjectName, QuizTitle: title})
	return s.content.ListQuizzes(ctx, subjectID)
}

// DeleteQuiz removes a quiz and returns the refreshed quiz list.
func (s *AdminService) DeleteQuiz(ctx context.Context, actor domain.UserProfile, subjectID, quizID string) ([]domain.Quiz, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.content.DeleteQuiz(ctx, subjectID, quizID); err != nil {
		return nil, err
	}
	return s.content.ListQuizzes(ctx, subjectID)
}

// AppendQuestion validates and appends a question to a quiz. Authoring is
// additive only: existing questions are never edited or reordered here.
func (s *AdminService) AppendQuestion(ctx context.Context, actor domain.UserProfile, subjectID, quizID string, q domain.Question) error {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}
	quiz, err := s.content.GetQuizDetail(ctx, subjectID, quizID)
	if err != nil {
		return err
	}
	questions := append(append([]domain.Question(nil), quiz.Questions...), q)
	return s.content.ReplaceQuizQuestions(ctx, subjectID, quizID, questions)
}

// ImportQuestions parses a JSON array of questions, validates every entry
// before any persistence call, and replaces the quiz's question list
// wholesale.
func (s *AdminService) ImportQuestions(ctx context.Context, actor domain.UserProfile, subjectID, quizID string, raw []byte) error {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return err
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return fmt.Errorf("invalid import payload: %w", err)
	}
	if len(questions) == 0 {
		return fmt.Errorf("invalid import payload: empty question list")
	}
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	if _, err := s.content.GetQuizDetail(ctx, subjectID, quizID); err != nil {
		return err
	}
	return s.content.ReplaceQuizQuestions(ctx, subjectID, quizID, questions)
}

// ListUsers is restricted to the owner role.
func (s *AdminService) ListUsers(ctx context.Context, actor domain.UserProfile) ([]domain.UserProfile, error) {
	if err := requireRole(actor, domain.RoleOwner); err != nil {
		return nil, err
	}
	return s.users.ListUsers(ctx)
}

// SetUserRole changes a user's role and returns the refreshed user list.
func (s *AdminService) SetUserRole(ctx context.Context, actor domain.UserProfile, uid string, role domain.Role) ([]domain.UserProfile, error) {
	if err := requireRole(actor, domain.RoleOwner); err != nil {
		return nil, err
	}
	if err := s.users.SetRole(ctx, uid, role); err != nil {
		return nil, err
	}
	return s.users.ListUsers(ctx)
}

// SetUserStatus bans or reactivates a user and returns the refreshed list.
func (s *AdminService) SetUserStatus(ctx context.Context, actor domain.UserProfile, uid string, status domain.Status) ([]domain.UserProfile, error) {
	if err := requireRole(actor, domain.RoleOwner); err != nil {
		return nil, err
	}
	if err := s.users.SetStatus(ctx, uid, status); err != nil {
		return nil, err
	}
	return s.users.ListUsers(ctx)
}

// DeleteUser removes a user record and returns the refreshed list.
func (s *AdminService) DeleteUser(ctx context.Context, actor domain.UserProfile, uid string) ([]domain.UserProfile, error) {
	if err := requireRole(actor, domain.RoleOwner); err != nil {
		return nil, err
	}
	if err := s.users.DeleteProfile(ctx, uid); err != nil {
		return nil, err
	}
	return s.users.ListUsers(ctx)
}

// AdminScreen tags an editor screen.
type AdminScreen string

const (
	AdminHome          AdminScreen = "home"
	AdminUsers         AdminScreen = "users"
	AdminSubjects      AdminScreen = "subjects"
	AdminSubjectDetail AdminScreen = "subject-detail"
	AdminQuizDetail    AdminScreen = "quiz-detail"
	AdminAddQuestion   AdminScreen = "add-question"
)

// adminFlow lists the legal parent of each screen; pushes outside this map
// are rejected.
var adminFlow = map[AdminScreen]map[AdminScreen]bool{
	AdminHome:          {AdminUsers: true, AdminSubjects: true},
	AdminSubjects:      {AdminSubjectDetail: true},
	AdminSubjectDetail: {AdminQuizDetail: true},
	AdminQuizDetail:    {AdminAddQuestion: true},
}

// pendingDelete holds a destructive call awaiting explicit confirmation.
type pendingDelete struct {
	kind      string // "subject", "quiz" or "user"
	subjectID string
	quizID    string
	uid       string
}

// AdminEditor is the guarded navigable stack over the management screens:
// home -> {users, subjects} -> subject-detail -> quiz-detail -> add-question.
// Deletions are two-phase: RequestDelete* stages the call, ConfirmDelete
// issues it, CancelDelete drops it.
type AdminEditor struct {
	mu      sync.Mutex
	actor   domain.UserProfile
	service *AdminService

	stack     []AdminScreen
	subjectID string
	quizID    string
	pending   *pendingDelete
}

// NewAdminEditor refuses actors below the admin role.
func NewAdminEditor(actor domain.UserProfile, service *AdminService) (*AdminEditor, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return &AdminEditor{
		actor:   actor,
		service: service,
		stack:   []AdminScreen{AdminHome},
	}, nil
}

// Current returns the visible editor screen.
func (e *AdminEditor) Current() AdminScreen {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stack[len(e.stack)-1]
}

// Context returns the subject and quiz the editor is focused on.
func (e *AdminEditor) Context() (subjectID, quizID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.subjectID, e.quizID
}

// Open pushes a child screen of the current one. The users screen is
// reserved for the owner role.
func (e *AdminEditor) Open(screen AdminScreen, subjectID, quizID string) error {
	if screen == AdminUsers && !e.actor.Role.AtLeast(domain.RoleOwner) {
		return domain.ErrForbidden
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	current := e.stack[len(e.stack)-1]
	if !adminFlow[current][screen] {
		return fmt.Errorf("cannot open %s from %s", screen, current)
	}
	switch screen {
	case AdminSubjectDetail:
		e.subjectID = subjectID
	case AdminQuizDetail:
		e.quizID = quizID
	}
	e.stack = append(append([]AdminScreen(nil), e.stack...), screen)
	e.pending = nil
	return nil
}

// Back pops one screen; no-op at home. Any staged deletion is dropped.
func (e *AdminEditor) Back() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.stack) <= 1 {
		return
	}
	switch e.stack[len(e.stack)-1] {
	case AdminSubjectDetail:
		e.subjectID = ""
	case AdminQuizDetail:
		e.quizID = ""
	}
	e.stack = append([]AdminScreen(nil), e.stack[:len(e.stack)-1]...)
	e.pending = nil
}

// RequestDeleteSubject stages a subject deletion and returns the prompt to
// show the actor.
func (e *AdminEditor) RequestDeleteSubject(subjectID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = &pendingDelete{kind: "subject", subjectID: subjectID}
	return "Delete this subject? This action cannot be undone."
}

// RequestDeleteQuiz stages a quiz deletion.
func (e *AdminEditor) RequestDeleteQuiz(subjectID, quizID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = &pendingDelete{kind: "quiz", subjectID: subjectID, quizID: quizID}
	return "Delete this quiz?"
}

// RequestDeleteUser stages a user-record deletion.
func (e *AdminEditor) RequestDeleteUser(uid string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = &pendingDelete{kind: "user", uid: uid}
	return "Are you sure you want to delete this user record?"
}

// CancelDelete drops the staged deletion without issuing it.
func (e *AdminEditor) CancelDelete() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = nil
}

// ConfirmDelete issues the staged destructive call. Without a staged
// deletion it is a no-op.
func (e *AdminEditor) ConfirmDelete(ctx context.Context) error {
	e.mu.Lock()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()
	if pending == nil {
		return nil
	}
	switch pending.kind {
	case "subject":
		_, err := e.service.DeleteSubject(ctx, e.actor, pending.subjectID)
		return err
	case "quiz":
		_, err := e.service.DeleteQuiz(ctx, e.actor, pending.subjectID, pending.quizID)
		return err
	case "user":
		_, err := e.service.DeleteUser(ctx, e.actor, pending.uid)
		return err
	}
	return nil
}
