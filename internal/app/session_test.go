package app_test

import (
	"testing"

	"syllabus-service/internal/app"
	"syllabus-service/internal/domain"
)

func TestPresentationForBreakpoint(t *testing.T) {
	cases := []struct {
		width int
		want  app.Presentation
	}{
		{0, app.PresentationMobile},
		{375, app.PresentationMobile},
		{767, app.PresentationMobile},
		{768, app.PresentationDesktop},
		{1920, app.PresentationDesktop},
	}
	for _, tc := range cases {
		if got := app.PresentationFor(tc.width); got != tc.want {
			t.Fatalf("width %d: got %s, want %s", tc.width, got, tc.want)
		}
	}
}

func TestSessionBuildsMatchingStateMachine(t *testing.T) {
	store := seededStore()
	mistakes := app.NewMistakeService(store)
	profile := domain.UserProfile{UID: "u1", Role: domain.RoleUser}

	desktop := app.NewSession(profile, app.PresentationDesktop, store, mistakes)
	if desktop.Desktop() == nil || desktop.Navigator() != nil {
		t.Fatalf("desktop session built wrong state machine")
	}

	mobile := app.NewSession(profile, app.PresentationMobile, store, mistakes)
	if mobile.Navigator() == nil || mobile.Desktop() != nil {
		t.Fatalf("mobile session built wrong state machine")
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	store := seededStore()
	mistakes := app.NewMistakeService(store)
	sess := app.NewSession(domain.UserProfile{UID: "u1"}, app.PresentationMobile, store, mistakes)

	sess.Close()
	sess.Close()
	if !sess.Closed() {
		t.Fatalf("session should report closed")
	}
}
