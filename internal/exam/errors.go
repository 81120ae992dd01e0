package exam

import "errors"

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrUserNotFound     = errors.New("user not found")
	ErrExamNotFound     = errors.New("exam not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrForbidden        = errors.New("forbidden")
	ErrExamNotStarted   = errors.New("exam has not started yet")
	ErrExamEnded        = errors.New("exam has already ended")
	ErrAlreadyCompleted = errors.New("exam already completed")
	ErrMissingExamCode  = errors.New("exam code is required")

	// ErrDuplicateAttempt is returned by Store.CreateAttempt when the
	// (exam, student) pair already has an attempt row. The join flow
	// resolves it by re-reading the winner.
	ErrDuplicateAttempt = errors.New("attempt already exists")
)
