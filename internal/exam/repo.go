package exam

import (
	"context"
	"time"
)

// Store is the persistence boundary for the join and result flows. The
// SQL store backs the server; the in-memory store backs tests.
type Store interface {
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	PutUser(ctx context.Context, u User) error

	PutExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error)
	// FindExamByCode looks an exam up by its join code. With
	// publishedOnly set, non-published exams read as absent.
	FindExamByCode(ctx context.Context, code string, publishedOnly bool) (Exam, error)
	// FindExamByIDOwnedBy reads as absent unless teacherID created the
	// exam; non-owners cannot distinguish "not mine" from "not there".
	FindExamByIDOwnedBy(ctx context.Context, examID, teacherID string) (Exam, error)

	GetAttempt(ctx context.Context, examID, studentID string) (Attempt, error)
	// CreateAttempt returns ErrDuplicateAttempt when an attempt for the
	// same (exam, student) pair already exists.
	CreateAttempt(ctx context.Context, a Attempt) error
	// CompleteAttempt marks an attempt COMPLETED with the given end
	// time. Driven by the submission flow, not by the join handlers.
	CompleteAttempt(ctx context.Context, attemptID string, at time.Time) error
	GetAttemptWithAnswers(ctx context.Context, examID, studentID string) (AttemptDetail, error)
	// ListAttemptsForExam returns roster rows ordered by submission
	// time, most recent first. Score and answer count are aggregated
	// per attempt; TotalMarks is left for the caller to fill in.
	ListAttemptsForExam(ctx context.Context, examID string) ([]RosterRow, error)

	PutAnswer(ctx context.Context, a Answer) error
}
