package exam

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	unknownStudentName = "Unknown Student"
	unknownEmail       = "No Email"
)

type Service struct {
	store Store
	now   func() time.Time
}

// NewService builds the exam service; pass nil to use the wall clock.
func NewService(store Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now}
}

// Join runs the student join flow for an exam code. It enforces the
// published status and the [StartAt, EndAt] window against wall-clock
// time, blocks re-joining a completed attempt, and is idempotent for an
// attempt already in progress. A new attempt is only written when none
// exists for the (exam, student) pair.
func (s *Service) Join(ctx context.Context, examCode, studentID string) (Exam, Attempt, error) {
	if examCode == "" {
		return Exam{}, Attempt{}, ErrMissingExamCode
	}
	e, err := s.store.FindExamByCode(ctx, examCode, true)
	if err != nil {
		return Exam{}, Attempt{}, err
	}
	now := s.now()
	if now.Before(e.StartAt) {
		return Exam{}, Attempt{}, ErrExamNotStarted
	}
	if now.After(e.EndAt) {
		return Exam{}, Attempt{}, ErrExamEnded
	}

	a, err := s.store.GetAttempt(ctx, e.ID, studentID)
	switch {
	case err == nil:
		if a.Status == AttemptCompleted {
			return Exam{}, Attempt{}, ErrAlreadyCompleted
		}
		return e, a, nil
	case !errors.Is(err, ErrAttemptNotFound):
		return Exam{}, Attempt{}, err
	}

	a = Attempt{
		ID:        uuid.NewString(),
		ExamID:    e.ID,
		StudentID: studentID,
		Status:    AttemptInProgress,
		StartedAt: now,
	}
	if err := s.store.CreateAttempt(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicateAttempt) {
			// Lost a concurrent join; the winner's attempt stands.
			a, err = s.store.GetAttempt(ctx, e.ID, studentID)
			if err != nil {
				return Exam{}, Attempt{}, err
			}
			if a.Status == AttemptCompleted {
				return Exam{}, Attempt{}, ErrAlreadyCompleted
			}
			return e, a, nil
		}
		return Exam{}, Attempt{}, err
	}
	return e, a, nil
}

// Instructions returns the pre-join exam summary for a student. The
// window is not checked here so students can read instructions before
// the exam opens, but a completed attempt blocks the view.
func (s *Service) Instructions(ctx context.Context, examCode, studentID string) (Exam, error) {
	if examCode == "" {
		return Exam{}, ErrMissingExamCode
	}
	e, err := s.store.FindExamByCode(ctx, examCode, true)
	if err != nil {
		return Exam{}, err
	}
	a, err := s.store.GetAttempt(ctx, e.ID, studentID)
	if err == nil && a.Status == AttemptCompleted {
		return Exam{}, ErrAlreadyCompleted
	}
	if err != nil && !errors.Is(err, ErrAttemptNotFound) {
		return Exam{}, err
	}
	return e, nil
}

// StudentResult returns one student's exam and attempt with answers and
// aggregated score.
func (s *Service) StudentResult(ctx context.Context, examID, studentID string) (Exam, AttemptDetail, error) {
	e, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return Exam{}, AttemptDetail{}, err
	}
	return s.attemptDetail(ctx, e, studentID)
}

// StudentResultOwned is the teacher-scoped variant: the exam lookup is
// ownership-scoped, so a teacher who did not create the exam sees it as
// absent.
func (s *Service) StudentResultOwned(ctx context.Context, examID, teacherID, studentID string) (Exam, AttemptDetail, error) {
	e, err := s.store.FindExamByIDOwnedBy(ctx, examID, teacherID)
	if err != nil {
		return Exam{}, AttemptDetail{}, err
	}
	return s.attemptDetail(ctx, e, studentID)
}

func (s *Service) attemptDetail(ctx context.Context, e Exam, studentID string) (Exam, AttemptDetail, error) {
	det, err := s.store.GetAttemptWithAnswers(ctx, e.ID, studentID)
	if err != nil {
		return Exam{}, AttemptDetail{}, err
	}
	det.Score = SumMarks(det.Answers)
	return e, det, nil
}

// TeacherRoster returns the full roster for an exam the teacher owns,
// most recent submission first.
func (s *Service) TeacherRoster(ctx context.Context, examID, teacherID string) (Exam, []RosterRow, error) {
	e, err := s.store.FindExamByIDOwnedBy(ctx, examID, teacherID)
	if err != nil {
		return Exam{}, nil, err
	}
	rows, err := s.roster(ctx, e)
	return e, rows, err
}

// RosterByCode is the by-code roster view. The endpoint requires the
// teacher role only; a join code already scopes access to the class.
func (s *Service) RosterByCode(ctx context.Context, examCode string) (Exam, []RosterRow, error) {
	if examCode == "" {
		return Exam{}, nil, ErrMissingExamCode
	}
	e, err := s.store.FindExamByCode(ctx, examCode, false)
	if err != nil {
		return Exam{}, nil, err
	}
	rows, err := s.roster(ctx, e)
	return e, rows, err
}

func (s *Service) roster(ctx context.Context, e Exam) ([]RosterRow, error) {
	rows, err := s.store.ListAttemptsForExam(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].TotalMarks = e.TotalMarks
		if rows[i].StudentName == "" {
			rows[i].StudentName = unknownStudentName
		}
		if rows[i].StudentEmail == "" {
			rows[i].StudentEmail = unknownEmail
		}
	}
	return rows, nil
}

// SumMarks totals marksObtained across answers, treating absent marks
// as zero.
func SumMarks(answers []Answer) float64 {
	total := 0.0
	for _, a := range answers {
		if a.MarksObtained != nil {
			total += *a.MarksObtained
		}
	}
	return total
}
