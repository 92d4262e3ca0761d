package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"syllabus-service/internal/app"
	"syllabus-service/internal/domain"
)

func newNavigator(t *testing.T) (*app.Navigator, *app.MistakeService) {
	t.Helper()
	store := seededStore()
	mistakes := app.NewMistakeService(store)
	nav := app.NewNavigator("u1", store, mistakes)
	if err := nav.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	t.Cleanup(nav.Close)
	return nav, mistakes
}

func TestStackStartsAtHomeAndBackFloors(t *testing.T) {
	nav, _ := newNavigator(t)

	if nav.Depth() != 1 || nav.Current().Kind() != app.ScreenHome {
		t.Fatalf("expected home at depth 1, got depth=%d kind=%s", nav.Depth(), nav.Current().Kind())
	}

	nav.Back()
	if nav.Depth() != 1 {
		t.Fatalf("back at home must be a no-op, depth=%d", nav.Depth())
	}
}

func TestOpenAppAndHome(t *testing.T) {
	nav, _ := newNavigator(t)

	nav.OpenApp("my-files")
	subjects, ok := nav.Current().(app.SubjectsScreen)
	if !ok || subjects.Mode != app.ModeNormal {
		t.Fatalf("expected normal subjects screen, got %+v", nav.Current())
	}

	nav.OpenApp("about")
	if nav.Depth() != 3 {
		t.Fatalf("expected depth 3, got %d", nav.Depth())
	}

	nav.Home()
	if nav.Depth() != 1 || nav.Current().Kind() != app.ScreenHome {
		t.Fatalf("home should reset the stack, got depth=%d", nav.Depth())
	}
}

func TestConfirmSubjectOpensQuizList(t *testing.T) {
	nav, _ := newNavigator(t)
	ctx := context.Background()

	nav.OpenApp("my-files")
	if err := nav.Confirm(ctx, app.Selection{SubjectID: "s1", SubjectName: "Algebra"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	screen, ok := nav.Current().(app.QuizzesScreen)
	if !ok {
		t.Fatalf("expected quizzes screen, got %+v", nav.Current())
	}
	if screen.SubjectID != "s1" || len(screen.Quizzes) != 2 {
		t.Fatalf("unexpected quiz list: %+v", screen)
	}
}

func TestConfirmQuizStartsAttempt(t *testing.T) {
	nav, _ := newNavigator(t)
	ctx := context.Background()

	nav.OpenApp("my-files")
	_ = nav.Confirm(ctx, app.Selection{SubjectID: "s1", SubjectName: "Algebra"})
	if err := nav.Confirm(ctx, app.Selection{QuizID: "qz1"}); err != nil {
		t.Fatalf("confirm quiz: %v", err)
	}

	screen, ok := nav.Current().(app.ActiveQuizScreen)
	if !ok {
		t.Fatalf("expected active quiz screen, got %+v", nav.Current())
	}
	if screen.Attempt == nil || screen.Attempt.Quiz().ID != "qz1" {
		t.Fatalf("attempt not started: %+v", screen)
	}
	if !strings.HasSuffix(screen.URL, "/quiz/qz1") {
		t.Fatalf("unexpected quiz URL %q", screen.URL)
	}
}

func TestMistakesModeSkipsQuizList(t *testing.T) {
	nav, mistakes := newNavigator(t)
	ctx := context.Background()
	_ = mistakes.Record(ctx, "u1", mistakeGroup("s1", "qz1", 1))

	nav.OpenApp("mistakes")
	if err := nav.Confirm(ctx, app.Selection{SubjectID: "s1", SubjectName: "Algebra"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	screen, ok := nav.Current().(app.BrowserScreen)
	if !ok {
		t.Fatalf("mistakes mode should jump to the report, got %+v", nav.Current())
	}
	if screen.Mistakes == nil || len(screen.Mistakes.Quizzes) != 1 {
		t.Fatalf("report missing mistakes: %+v", screen.Mistakes)
	}
	if !strings.Contains(screen.URL, "Algebra") || !strings.HasSuffix(screen.URL, "Mistakes.pdf") {
		t.Fatalf("unexpected report URL %q", screen.URL)
	}
}

func TestEmptyMistakesSuppressNavigation(t *testing.T) {
	nav, _ := newNavigator(t)
	ctx := context.Background()

	nav.OpenApp("mistakes")
	depth := nav.Depth()

	err := nav.Confirm(ctx, app.Selection{SubjectID: "s1", SubjectName: "Algebra"})
	if !errors.Is(err, domain.ErrNoMistakes) {
		t.Fatalf("expected ErrNoMistakes, got %v", err)
	}
	if nav.Depth() != depth {
		t.Fatalf("failed confirm must leave the stack unchanged")
	}
}

func TestMistakesFolderFromQuizList(t *testing.T) {
	nav, mistakes := newNavigator(t)
	ctx := context.Background()
	_ = mistakes.Record(ctx, "u1", mistakeGroup("s1", "qz1", 2))

	nav.OpenApp("my-files")
	_ = nav.Confirm(ctx, app.Selection{SubjectID: "s1", SubjectName: "Algebra"})
	if err := nav.Confirm(ctx, app.Selection{QuizID: app.MistakesFolderID}); err != nil {
		t.Fatalf("confirm mistakes folder: %v", err)
	}

	screen, ok := nav.Current().(app.BrowserScreen)
	if !ok || screen.Mistakes == nil {
		t.Fatalf("expected mistakes report, got %+v", nav.Current())
	}
}

func TestConfirmFetchFailureLeavesStack(t *testing.T) {
	store := seededStore()
	mistakes := app.NewMistakeService(store)
	nav := app.NewNavigator("u1", failingContent{err: errBackend}, mistakes)
	ctx := context.Background()

	nav.OpenApp("my-files")
	depth := nav.Depth()
	if err := nav.Confirm(ctx, app.Selection{SubjectID: "s1"}); !errors.Is(err, errBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if nav.Depth() != depth {
		t.Fatalf("stack changed after failed fetch")
	}
}

func TestNavigateUpdatesBrowserInPlace(t *testing.T) {
	nav, _ := newNavigator(t)

	nav.OpenApp("browser")
	depth := nav.Depth()

	nav.Navigate("https://example.com")
	screen, ok := nav.Current().(app.BrowserScreen)
	if !ok || screen.URL != "https://example.com" {
		t.Fatalf("navigate did not update URL: %+v", nav.Current())
	}
	if nav.Depth() != depth {
		t.Fatalf("navigate must not push")
	}

	// On non-browser screens navigate is ignored.
	nav.Home()
	nav.Navigate("https://example.com")
	if nav.Current().Kind() != app.ScreenHome {
		t.Fatalf("navigate mutated a non-browser screen")
	}
}

func TestRowSelectionResetsOnPush(t *testing.T) {
	nav, _ := newNavigator(t)

	nav.OpenApp("my-files")
	nav.SelectRow(2)
	if nav.SelectedRow() != 2 {
		t.Fatalf("selection lost")
	}
	nav.OpenApp("about")
	if nav.SelectedRow() != -1 {
		t.Fatalf("selection should reset on push, got %d", nav.SelectedRow())
	}
}

func TestLiveCountsReachNavigator(t *testing.T) {
	nav, mistakes := newNavigator(t)
	ctx := context.Background()

	_ = mistakes.Record(ctx, "u1", mistakeGroup("s1", "qz1", 1))

	deadline := time.After(time.Second)
	for nav.MistakeCount("s1") != 1 {
		select {
		case <-deadline:
			t.Fatalf("count update never arrived")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
