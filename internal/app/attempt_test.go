package app_test

import (
	"testing"

	"syllabus-service/internal/app"
	"syllabus-service/internal/domain"
)

func twoQuestionQuiz() domain.Quiz {
	return domain.Quiz{ID: "qz1", Title: "Linear Equations", Questions: []domain.Question{
		singleQuestion(),
		multiQuestion(),
	}}
}

func TestSelectOptionSingleReplaces(t *testing.T) {
	attempt := app.NewAttempt("s1", twoQuestionQuiz())

	attempt.SelectOption(0, "a")
	attempt.SelectOption(0, "b")

	sel := attempt.Selected(0)
	if len(sel) != 1 || sel[0] != "b" {
		t.Fatalf("expected single selection b, got %v", sel)
	}
}

func TestSelectOptionMultiToggles(t *testing.T) {
	attempt := app.NewAttempt("s1", twoQuestionQuiz())

	attempt.SelectOption(1, "a")
	attempt.SelectOption(1, "c")
	attempt.SelectOption(1, "a") // toggle off

	sel := attempt.Selected(1)
	if len(sel) != 1 || sel[0] != "c" {
		t.Fatalf("expected only c selected, got %v", sel)
	}
}

func TestCheckAnswerRequiresSelection(t *testing.T) {
	attempt := app.NewAttempt("s1", twoQuestionQuiz())

	attempt.CheckAnswer(0)
	if attempt.Checked(0) {
		t.Fatalf("check without a selection should be ignored")
	}

	attempt.SelectOption(0, "a")
	attempt.CheckAnswer(0)
	if !attempt.Checked(0) {
		t.Fatalf("expected question to be checked")
	}

	// Checked questions are frozen.
	attempt.SelectOption(0, "b")
	if sel := attempt.Selected(0); sel[0] != "a" {
		t.Fatalf("selection changed after check: %v", sel)
	}
}

func TestAdvanceRetreatBounds(t *testing.T) {
	attempt := app.NewAttempt("s1", twoQuestionQuiz())

	attempt.Retreat()
	if attempt.Index() != 0 {
		t.Fatalf("retreat at first question moved index to %d", attempt.Index())
	}
	attempt.Advance()
	attempt.Advance()
	if attempt.Index() != 1 {
		t.Fatalf("advance past last question moved index to %d", attempt.Index())
	}
}

func TestFinishGradesBySetEquality(t *testing.T) {
	cases := []struct {
		name     string
		selected []string
		mistake  bool
	}{
		{"exact match", []string{"a", "c"}, false},
		{"order ignored", []string{"c", "a"}, false},
		{"proper subset", []string{"a"}, true},
		{"superset", []string{"a", "b", "c"}, true},
		{"disjoint", []string{"b"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quiz := domain.Quiz{ID: "qz", Questions: []domain.Question{multiQuestion()}}
			attempt := app.NewAttempt("s1", quiz)
			for _, id := range tc.selected {
				attempt.SelectOption(0, id)
			}
			mistakes := attempt.Finish()
			if got := len(mistakes) == 1; got != tc.mistake {
				t.Fatalf("selected %v: mistake=%v, want %v", tc.selected, got, tc.mistake)
			}
		})
	}
}

func TestFinishSkipsUnanswered(t *testing.T) {
	attempt := app.NewAttempt("s1", twoQuestionQuiz())
	attempt.SelectOption(0, "a") // wrong; question 1 left unanswered

	mistakes := attempt.Finish()
	if len(mistakes) != 1 {
		t.Fatalf("expected only the answered wrong question, got %d mistakes", len(mistakes))
	}
	if mistakes[0].QuestionText != singleQuestion().Text {
		t.Fatalf("unexpected mistake snapshot: %+v", mistakes[0])
	}
}

func TestFinishGradesEmptiedMultiAnswer(t *testing.T) {
	attempt := app.NewAttempt("s1", twoQuestionQuiz())
	attempt.SelectOption(1, "a")
	attempt.SelectOption(1, "a") // toggle back off

	mistakes := attempt.Finish()
	if len(mistakes) != 1 {
		t.Fatalf("emptied answer should grade as a mistake, got %d", len(mistakes))
	}
	if mistakes[0].QuestionText != multiQuestion().Text {
		t.Fatalf("unexpected mistake snapshot: %+v", mistakes[0])
	}
	if len(mistakes[0].SelectedOptionIDs) != 0 {
		t.Fatalf("snapshot should record the empty submission, got %v", mistakes[0].SelectedOptionIDs)
	}
}

func TestCheckAnswerAllowsEmptiedMultiAnswer(t *testing.T) {
	attempt := app.NewAttempt("s1", twoQuestionQuiz())
	attempt.SelectOption(1, "a")
	attempt.SelectOption(1, "a") // toggle back off

	attempt.CheckAnswer(1)
	if !attempt.Checked(1) {
		t.Fatalf("submitted-then-emptied answer should be checkable")
	}
}

func TestFinishSnapshotsQuestion(t *testing.T) {
	attempt := app.NewAttempt("s1", twoQuestionQuiz())
	attempt.SelectOption(0, "a")

	mistakes := attempt.Finish()
	m := mistakes[0]
	if len(m.Options) != 3 || m.Explanation == "" {
		t.Fatalf("snapshot missing options or explanation: %+v", m)
	}
	if len(m.SelectedOptionIDs) != 1 || m.SelectedOptionIDs[0] != "a" {
		t.Fatalf("snapshot lost the submitted answer: %v", m.SelectedOptionIDs)
	}
	if len(m.CorrectOptionIDs) != 1 || m.CorrectOptionIDs[0] != "b" {
		t.Fatalf("snapshot lost the correct set: %v", m.CorrectOptionIDs)
	}
}

func TestFinishIsTerminal(t *testing.T) {
	attempt := app.NewAttempt("s1", twoQuestionQuiz())
	attempt.SelectOption(0, "a")

	first := attempt.Finish()
	if len(first) != 1 {
		t.Fatalf("expected one mistake, got %d", len(first))
	}
	if again := attempt.Finish(); again != nil {
		t.Fatalf("second finish should return nil, got %v", again)
	}
	if !attempt.Completed() {
		t.Fatalf("attempt should be completed")
	}

	// Completed attempts ignore further input.
	attempt.SelectOption(1, "a")
	attempt.Advance()
	if attempt.Selected(1) != nil || attempt.Index() != 0 {
		t.Fatalf("completed attempt accepted input")
	}
}

func TestMistakeGroupWrapsQuizIdentity(t *testing.T) {
	attempt := app.NewAttempt("s1", twoQuestionQuiz())
	attempt.SelectOption(0, "a")

	group := attempt.MistakeGroup(attempt.Finish())
	if group.SubjectID != "s1" || group.QuizID != "qz1" || group.QuizTitle != "Linear Equations" {
		t.Fatalf("group lost quiz identity: %+v", group)
	}
	if group.UpdatedAt.IsZero() {
		t.Fatalf("group missing timestamp")
	}
}
