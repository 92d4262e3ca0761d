package app

import (
	"sync"

	"syllabus-service/internal/domain"
)

// Presentation selects the session's skin.
type Presentation string

const (
	PresentationDesktop Presentation = "desktop"
	PresentationMobile  Presentation = "menu"
)

// MobileBreakpoint is the viewport width below which the mobile
// presentation is served. Presentation routing only; it gates no data
// operation.
const MobileBreakpoint = 768

// PresentationFor maps a reported viewport width to a presentation.
func PresentationFor(width int) Presentation {
	if width < MobileBreakpoint {
		return PresentationMobile
	}
	return PresentationDesktop
}

// Session is the explicitly constructed per-sign-in state holder: it owns
// the user's presentation state machine and the live mistake subscription,
// and is torn down at sign-out or disconnect. There is no ambient global
// equivalent.
type Session struct {
	Profile      domain.UserProfile
	Presentation Presentation

	mu        sync.Mutex
	desktop   *Desktop
	navigator *Navigator
	closed    bool
}

// NewSession builds the session with its presentation state machine.
func NewSession(profile domain.UserProfile, presentation Presentation, content ContentStore, mistakes *MistakeService) *Session {
	s := &Session{Profile: profile, Presentation: presentation}
	if presentation == PresentationMobile {
		s.navigator = NewNavigator(profile.UID, content, mistakes)
	} else {
		s.desktop = NewDesktop(profile.UID, content, mistakes)
	}
	return s
}

// Desktop returns the window manager, or nil for mobile sessions.
func (s *Session) Desktop() *Desktop { return s.desktop }

// Navigator returns the nav-stack router, or nil for desktop sessions.
func (s *Session) Navigator() *Navigator { return s.navigator }

// Closed reports whether the session was torn down; late async results
// against a closed session must be dropped.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close tears the session down, cancelling any live subscription.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	if s.navigator != nil {
		s.navigator.Close()
	}
}
