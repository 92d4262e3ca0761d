package domain

import (
	"errors"
	"testing"
)

func validQuestion() Question {
	return Question{
		Text: "Pick one",
		Type: QuestionSingle,
		Options: []Option{
			{ID: "a", Text: "first"},
			{ID: "b", Text: "second"},
		},
		CorrectOptionIDs: []string{"a"},
		Explanation:      "a is right",
	}
}

func TestQuestionValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Question)
		want   error
	}{
		{"valid single", func(q *Question) {}, nil},
		{"valid multi", func(q *Question) {
			q.Type = QuestionMulti
			q.CorrectOptionIDs = []string{"a", "b"}
		}, nil},
		{"empty text", func(q *Question) { q.Text = "" }, ErrQuestionText},
		{"empty explanation", func(q *Question) { q.Explanation = "" }, ErrQuestionExplanation},
		{"no correct option", func(q *Question) { q.CorrectOptionIDs = nil }, ErrQuestionCorrectSet},
		{"single with two answers", func(q *Question) { q.CorrectOptionIDs = []string{"a", "b"} }, ErrQuestionCorrectSet},
		{"correct id not an option", func(q *Question) { q.CorrectOptionIDs = []string{"z"} }, ErrQuestionCorrectSet},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := validQuestion()
			tc.mutate(&q)
			if err := q.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRoleOrdering(t *testing.T) {
	if !RoleOwner.AtLeast(RoleAdmin) || !RoleAdmin.AtLeast(RoleUser) {
		t.Fatalf("higher roles must cover lower ones")
	}
	if RoleUser.AtLeast(RoleAdmin) || RoleAdmin.AtLeast(RoleOwner) {
		t.Fatalf("lower roles must not cover higher ones")
	}
	if !RoleUser.AtLeast(RoleUser) {
		t.Fatalf("a role covers itself")
	}
}
