package app_test

import (
	"context"
	"errors"

	"syllabus-service/internal/domain"
	"syllabus-service/internal/infra/memory"
)

func seededStore() *memory.Store {
	store := memory.NewStore()
	store.Seed([]domain.Subject{
		{
			ID:    "s1",
			Name:  "Algebra",
			Order: 1,
			Quizzes: []domain.Quiz{
				{ID: "qz1", Title: "Linear Equations", Questions: []domain.Question{
					singleQuestion(),
					multiQuestion(),
				}},
				{ID: "qz2", Title: "Quadratics", Questions: []domain.Question{
					singleQuestion(),
				}},
			},
		},
		{
			ID:    "s2",
			Name:  "Physics",
			Order: 2,
			Quizzes: []domain.Quiz{
				{ID: "qz3", Title: "Kinematics", Questions: []domain.Question{
					singleQuestion(),
				}},
			},
		},
	})
	return store
}

func singleQuestion() domain.Question {
	return domain.Question{
		Text: "What is 2 + 2?",
		Type: domain.QuestionSingle,
		Options: []domain.Option{
			{ID: "a", Text: "3"},
			{ID: "b", Text: "4"},
			{ID: "c", Text: "5"},
		},
		CorrectOptionIDs: []string{"b"},
		Explanation:      "Two plus two equals four.",
	}
}

func multiQuestion() domain.Question {
	return domain.Question{
		Text: "Which of these are prime?",
		Type: domain.QuestionMulti,
		Options: []domain.Option{
			{ID: "a", Text: "2"},
			{ID: "b", Text: "4"},
			{ID: "c", Text: "5"},
		},
		CorrectOptionIDs: []string{"a", "c"},
		Explanation:      "2 and 5 are prime; 4 is not.",
	}
}

// failingContent returns the given error from every read; mutations are not
// used by the consumers under test.
type failingContent struct {
	err error
}

func (f failingContent) ListSubjects(context.Context) ([]domain.Subject, error) {
	return nil, f.err
}

func (f failingContent) ListQuizzes(context.Context, string) ([]domain.Quiz, error) {
	return nil, f.err
}

func (f failingContent) GetQuizDetail(context.Context, string, string) (domain.Quiz, error) {
	return domain.Quiz{}, f.err
}

func (f failingContent) CreateSubject(context.Context, string, int) (domain.Subject, error) {
	return domain.Subject{}, f.err
}

func (f failingContent) DeleteSubject(context.Context, string) error { return f.err }

func (f failingContent) CreateQuiz(context.Context, string, string) (domain.Quiz, error) {
	return domain.Quiz{}, f.err
}

func (f failingContent) DeleteQuiz(context.Context, string, string) error { return f.err }

func (f failingContent) ReplaceQuizQuestions(context.Context, string, string, []domain.Question) error {
	return f.err
}

var errBackend = errors.New("backend unavailable")
