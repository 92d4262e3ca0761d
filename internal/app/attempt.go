package app

import (
	"time"

	"syllabus-service/internal/domain"
)

// Attempt is the state machine over a single quiz-taking session. It moves
// from in-progress to completed exactly once; a completed attempt can only
// be exited via navigation, never resumed.
//
// Answers live only inside the attempt and are discarded with it; the only
// durable output is the mistake snapshot produced by Finish.
type Attempt struct {
	subjectID string
	quiz      domain.Quiz

	index     int
	answers   map[int][]string
	checked   map[int]bool
	completed bool
	now       func() time.Time
}

// NewAttempt starts an attempt at the given quiz.
func NewAttempt(subjectID string, quiz domain.Quiz) *Attempt {
	return &Attempt{
		subjectID: subjectID,
		quiz:      quiz,
		answers:   make(map[int][]string),
		checked:   make(map[int]bool),
		now:       time.Now,
	}
}

// Quiz returns the quiz under attempt.
func (a *Attempt) Quiz() domain.Quiz { return a.quiz }

// SubjectID returns the parent subject id.
func (a *Attempt) SubjectID() string { return a.subjectID }

// Index returns the current question index.
func (a *Attempt) Index() int { return a.index }

// Completed reports whether the attempt reached its terminal state.
func (a *Attempt) Completed() bool { return a.completed }

// Question returns the current question, or false when the quiz is empty.
func (a *Attempt) Question() (domain.Question, bool) {
	if a.index < 0 || a.index >= len(a.quiz.Questions) {
		return domain.Question{}, false
	}
	return a.quiz.Questions[a.index], true
}

// Selected returns the submitted option ids for a question index, in
// selection order. Nil means no answer was submitted.
func (a *Attempt) Selected(questionIndex int) []string {
	sel := a.answers[questionIndex]
	out := make([]string, len(sel))
	copy(out, sel)
	if len(out) == 0 && sel == nil {
		return nil
	}
	return out
}

// Checked reports whether the question was checked and is frozen.
func (a *Attempt) Checked(questionIndex int) bool {
	return a.checked[questionIndex]
}

// SelectOption records a selection. Single-type questions replace the stored
// answer; multi-type toggle membership. No-op once the question is checked
// or the attempt completed.
func (a *Attempt) SelectOption(questionIndex int, optionID string) {
	if a.completed || a.checked[questionIndex] {
		return
	}
	if questionIndex < 0 || questionIndex >= len(a.quiz.Questions) {
		return
	}
	q := a.quiz.Questions[questionIndex]
	if q.Type == domain.QuestionSingle {
		a.answers[questionIndex] = []string{optionID}
		return
	}
	current := a.answers[questionIndex]
	for i, id := range current {
		if id == optionID {
			a.answers[questionIndex] = append(current[:i:i], current[i+1:]...)
			return
		}
	}
	a.answers[questionIndex] = append(current, optionID)
}

// CheckAnswer freezes the question's answer and reveals correctness and
// explanation to the caller. Checking is irreversible within the attempt and
// requires a submitted answer. A multi answer toggled back to empty still
// counts as submitted; only a never-touched question cannot be checked.
func (a *Attempt) CheckAnswer(questionIndex int) {
	if a.completed {
		return
	}
	if _, ok := a.answers[questionIndex]; !ok {
		return
	}
	a.checked[questionIndex] = true
}

// Advance moves to the next question unless already at the last index.
func (a *Attempt) Advance() {
	if a.completed {
		return
	}
	if a.index < len(a.quiz.Questions)-1 {
		a.index++
	}
}

// Retreat moves back one question unless already at the first index.
func (a *Attempt) Retreat() {
	if a.completed {
		return
	}
	if a.index > 0 {
		a.index--
	}
}

// Finish transitions the attempt to completed and grades every question by
// exact set equality between submitted and correct option ids. A question
// that was never answered is skipped entirely: not counted wrong, not
// counted right. A submitted-then-emptied multi answer is still an answer
// and grades against the correct set like any other. Calling Finish again
// returns nil.
func (a *Attempt) Finish() []domain.MistakeQuestion {
	if a.completed {
		return nil
	}
	a.completed = true

	var mistakes []domain.MistakeQuestion
	for i, q := range a.quiz.Questions {
		submitted, ok := a.answers[i]
		if !ok {
			continue
		}
		if sameIDSet(submitted, q.CorrectOptionIDs) {
			continue
		}
		mistakes = append(mistakes, domain.MistakeQuestion{
			QuestionText:      q.Text,
			Options:           snapshotOptions(q.Options),
			SelectedOptionIDs: append([]string(nil), submitted...),
			CorrectOptionIDs:  append([]string(nil), q.CorrectOptionIDs...),
			Explanation:       q.Explanation,
		})
	}
	return mistakes
}

// MistakeGroup wraps Finish's output into a persistable group for this quiz.
func (a *Attempt) MistakeGroup(mistakes []domain.MistakeQuestion) domain.MistakeGroup {
	return domain.MistakeGroup{
		SubjectID: a.subjectID,
		QuizID:    a.quiz.ID,
		QuizTitle: a.quiz.Title,
		Questions: mistakes,
		UpdatedAt: a.now(),
	}
}

// sameIDSet compares two id slices as sets: order-independent, and any
// proper subset or superset counts as unequal.
func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(b))
	for _, id := range b {
		set[id] = true
	}
	for _, id := range a {
		if !set[id] {
			return false
		}
	}
	return true
}

func snapshotOptions(opts []domain.Option) []domain.Option {
	out := make([]domain.Option, len(opts))
	copy(out, opts)
	return out
}
