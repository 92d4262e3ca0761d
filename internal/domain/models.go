package domain

import "time"

// QuestionType distinguishes single-answer from multi-answer questions.
type QuestionType string

const (
	QuestionSingle QuestionType = "single"
	QuestionMulti  QuestionType = "multi"
)

// Option is one selectable answer within a question.
type Option struct {
	ID   string `json:"id" bson:"id"`
	Text string `json:"text" bson:"text"`
}

// Question is an MCQ question. For QuestionSingle the correct set holds
// exactly one option id; for QuestionMulti one or more.
type Question struct {
	Text             string       `json:"text" bson:"text"`
	Type             QuestionType `json:"type" bson:"type"`
	Options          []Option     `json:"options" bson:"options"`
	CorrectOptionIDs []string     `json:"correctOptionIds" bson:"correctOptionIds"`
	Explanation      string       `json:"explanation" bson:"explanation"`
}

// Validate enforces the authoring invariants: non-empty text and explanation,
// and a non-empty correct set that is a subset of the question's own options.
func (q Question) Validate() error {
	if q.Text == "" {
		return ErrQuestionText
	}
	if q.Explanation == "" {
		return ErrQuestionExplanation
	}
	if len(q.CorrectOptionIDs) == 0 {
		return ErrQuestionCorrectSet
	}
	if q.Type == QuestionSingle && len(q.CorrectOptionIDs) != 1 {
		return ErrQuestionCorrectSet
	}
	known := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		known[opt.ID] = true
	}
	for _, id := range q.CorrectOptionIDs {
		if !known[id] {
			return ErrQuestionCorrectSet
		}
	}
	return nil
}

// Quiz is an ordered sequence of questions under a subject.
type Quiz struct {
	ID        string     `json:"id" bson:"_id"`
	Title     string     `json:"title" bson:"title"`
	Questions []Question `json:"questions,omitempty" bson:"questions"`
}

// Subject groups quizzes. Order defines ascending list sort only; values
// need not be contiguous.
type Subject struct {
	ID      string `json:"id" bson:"_id"`
	Name    string `json:"name" bson:"name"`
	Order   int    `json:"order" bson:"order"`
	Quizzes []Quiz `json:"quizzes,omitempty" bson:"-"`
}

// MistakeQuestion snapshots a missed question at submission time so later
// edits to the source question cannot alter the historical record.
type MistakeQuestion struct {
	QuestionText      string   `json:"questionText" bson:"questionText"`
	Options           []Option `json:"options" bson:"options"`
	SelectedOptionIDs []string `json:"selectedOptionIds" bson:"selectedOptionIds"`
	CorrectOptionIDs  []string `json:"correctOptionIds" bson:"correctOptionIds"`
	Explanation       string   `json:"explanation" bson:"explanation"`
}

// MistakeGroup holds all mistakes from one user's latest attempt at one
// quiz. A new attempt with mistakes fully replaces the previous group.
type MistakeGroup struct {
	SubjectID string            `json:"subjectId" bson:"subjectId"`
	QuizID    string            `json:"quizId" bson:"quizId"`
	QuizTitle string            `json:"quizTitle" bson:"quizTitle"`
	Questions []MistakeQuestion `json:"questions" bson:"questions"`
	UpdatedAt time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// SubjectMistakes is the read-side aggregate of a user's mistake groups for
// one subject. It is derived by query, never stored.
type SubjectMistakes struct {
	SubjectID string         `json:"subjectId"`
	Quizzes   []MistakeGroup `json:"quizzes"`
}

// Role is an ordered privilege level: owner covers admin covers user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

var roleRank = map[Role]int{RoleUser: 0, RoleAdmin: 1, RoleOwner: 2}

// AtLeast reports whether r grants the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// Status marks an account active or banned. Banned users are forcibly
// signed out on every session-start check.
type Status string

const (
	StatusActive Status = "active"
	StatusBanned Status = "banned"
)

// UserProfile is the stored account record tied to the auth identity.
type UserProfile struct {
	UID          string    `json:"uid" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	DisplayName  string    `json:"displayName,omitempty" bson:"displayName,omitempty"`
	Role         Role      `json:"role" bson:"role"`
	Status       Status    `json:"status" bson:"status"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// ContentNotification is the payload of the outbound webhook fired when an
// admin creates a subject or quiz.
type ContentNotification struct {
	Type        string `json:"type"` // "subject" or "quiz"
	SubjectName string `json:"subjectName"`
	QuizTitle   string `json:"quizTitle,omitempty"`
}
