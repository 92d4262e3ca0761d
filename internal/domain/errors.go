package domain

import "errors"

var (
	// ErrSubjectNotFound indicates the subject does not (or no longer) exist.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUserNotFound indicates no profile exists for the given identity.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned on sign-up with an already registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers unknown email or wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserBanned is fatal to the session: the client must sign out.
	ErrUserBanned = errors.New("account is banned")
	// ErrForbidden is returned when the actor's role does not cover an
	// admin operation.
	ErrForbidden = errors.New("operation not permitted for this role")
	// ErrNoMistakes signals an empty mistake aggregate; callers render an
	// explicit empty state instead of navigating.
	ErrNoMistakes = errors.New("no mistakes recorded for this subject")

	// Question authoring validation failures, rejected before persistence.
	ErrQuestionText        = errors.New("question text must not be empty")
	ErrQuestionExplanation = errors.New("question explanation must not be empty")
	ErrQuestionCorrectSet  = errors.New("correct option set is empty or references unknown options")
)
