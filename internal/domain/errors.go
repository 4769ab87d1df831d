package domain

import "errors"

var (
	// ErrTestNotFound indicates the question bank has no test for the identifier.
	ErrTestNotFound = errors.New("test not found")
	// ErrEmptyTest indicates the question bank returned a test without questions.
	ErrEmptyTest = errors.New("test has no questions")
	// ErrInvalidQuestion indicates malformed question content.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrSessionNotFound is returned when a test session is unknown to the caller.
	ErrSessionNotFound = errors.New("test session not found")
	// ErrUserNotFound is returned when a user acts before signing in.
	ErrUserNotFound = errors.New("user not signed in")
	// ErrEmptyName is returned when signing in with a blank name.
	ErrEmptyName = errors.New("name is required")
	// ErrResultNotFound indicates the user has not completed the test yet.
	ErrResultNotFound = errors.New("result not found")
)
