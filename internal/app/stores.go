package app

import (
	"context"

	"syllabus-service/internal/domain"
)

// ContentStore abstracts subject/quiz persistence (document DB, Postgres
// JSONB, in-memory, or a caching decorator over any of these).
type ContentStore interface {
	// ListSubjects returns all subjects sorted by display order ascending.
	ListSubjects(ctx context.Context) ([]domain.Subject, error)
	// ListQuizzes returns the quizzes of a subject; question bodies may be
	// omitted. Returns domain.ErrSubjectNotFound for unknown subjects.
	ListQuizzes(ctx context.Context, subjectID string) ([]domain.Quiz, error)
	// GetQuizDetail returns the full quiz including questions, or
	// domain.ErrQuizNotFound.
	GetQuizDetail(ctx context.Context, subjectID, quizID string) (domain.Quiz, error)

	CreateSubject(ctx context.Context, name string, order int) (domain.Subject, error)
	DeleteSubject(ctx context.Context, subjectID string) error
	CreateQuiz(ctx context.Context, subjectID, title string) (domain.Quiz, error)
	DeleteQuiz(ctx context.Context, subjectID, quizID string) error
	ReplaceQuizQuestions(ctx context.Context, subjectID, quizID string, questions []domain.Question) error
}

// UserStore persists account profiles.
type UserStore interface {
	GetProfile(ctx context.Context, uid string) (domain.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (domain.UserProfile, error)
	CreateProfile(ctx context.Context, profile domain.UserProfile) error
	ListUsers(ctx context.Context) ([]domain.UserProfile, error)
	SetRole(ctx context.Context, uid string, role domain.Role) error
	SetStatus(ctx context.Context, uid string, status domain.Status) error
	DeleteProfile(ctx context.Context, uid string) error
}

// MistakeStore persists per-(user, subject, quiz) mistake groups with
// last-attempt-wins overwrite semantics.
type MistakeStore interface {
	// UpsertGroup fully replaces any prior group for the same key.
	UpsertGroup(ctx context.Context, userID string, group domain.MistakeGroup) error
	// CountGroups returns the number of distinct quiz groups for a subject,
	// not the total mistake-question count.
	CountGroups(ctx context.Context, userID, subjectID string) (int, error)
	// GetSubjectMistakes returns nil (no error) when nothing is recorded.
	GetSubjectMistakes(ctx context.Context, userID, subjectID string) (*domain.SubjectMistakes, error)
	// CountAllGroups returns subjectID -> group count for every subject the
	// user has mistakes in.
	CountAllGroups(ctx context.Context, userID string) (map[string]int, error)
}

// Notifier is the outbound hook fired when content is created. Delivery
// failures are swallowed by implementations; callers never see them.
type Notifier interface {
	ContentAdded(ctx context.Context, n domain.ContentNotification)
}

// NopNotifier discards notifications; used when no webhook is configured.
type NopNotifier struct{}

func (NopNotifier) ContentAdded(context.Context, domain.ContentNotification) {}
