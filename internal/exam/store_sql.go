package exam

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role FROM users WHERE id=$1`, id)
	return scanUser(row)
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, role FROM users WHERE email=$1`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Role = NormalizeRole(role)
	return u, nil
}

func (s *SQLStore) PutUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role) VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, email=EXCLUDED.email,
		   password_hash=EXCLUDED.password_hash, role=EXCLUDED.role`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(NormalizeRole(string(u.Role))))
	return err
}

const examColumns = `id, teacher_id, exam_code, title, description, exam_type, status,
	start_at, end_at, duration_min, total_marks, questions_count, created_at`

func (s *SQLStore) PutExam(ctx context.Context, e Exam) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exams (`+examColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
		   status=EXCLUDED.status, start_at=EXCLUDED.start_at, end_at=EXCLUDED.end_at,
		   duration_min=EXCLUDED.duration_min, total_marks=EXCLUDED.total_marks,
		   questions_count=EXCLUDED.questions_count`,
		e.ID, e.TeacherID, e.Code, e.Title, e.Description, e.Type,
		string(NormalizeExamStatus(string(e.Status))),
		e.StartAt.Unix(), e.EndAt.Unix(), e.DurationMin, e.TotalMarks,
		e.QuestionsCount, time.Now().Unix())
	return err
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id=$1`, id)
	return scanExam(row)
}

func (s *SQLStore) FindExamByCode(ctx context.Context, code string, publishedOnly bool) (Exam, error) {
	q := `SELECT ` + examColumns + ` FROM exams WHERE exam_code=$1`
	if publishedOnly {
		q += ` AND status='PUBLISHED'`
	}
	return scanExam(s.db.QueryRowContext(ctx, q, code))
}

func (s *SQLStore) FindExamByIDOwnedBy(ctx context.Context, examID, teacherID string) (Exam, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id=$1 AND teacher_id=$2`, examID, teacherID)
	return scanExam(row)
}

func scanExam(row *sql.Row) (Exam, error) {
	var e Exam
	var status string
	var startAt, endAt, createdAt int64
	if err := row.Scan(&e.ID, &e.TeacherID, &e.Code, &e.Title, &e.Description, &e.Type,
		&status, &startAt, &endAt, &e.DurationMin, &e.TotalMarks, &e.QuestionsCount, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrExamNotFound
		}
		return Exam{}, fmt.Errorf("scan exam: %w", err)
	}
	e.Status = NormalizeExamStatus(status)
	e.StartAt = time.Unix(startAt, 0)
	e.EndAt = time.Unix(endAt, 0)
	e.CreatedAt = time.Unix(createdAt, 0)
	return e, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, examID, studentID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, exam_id, student_id, status, started_at, ended_at
		 FROM attempts WHERE exam_id=$1 AND student_id=$2`, examID, studentID)
	var a Attempt
	var status string
	var startedAt int64
	var endedAt sql.NullInt64
	if err := row.Scan(&a.ID, &a.ExamID, &a.StudentID, &status, &startedAt, &endedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, fmt.Errorf("scan attempt: %w", err)
	}
	a.Status = NormalizeAttemptStatus(status)
	a.StartedAt = time.Unix(startedAt, 0)
	if endedAt.Valid {
		t := time.Unix(endedAt.Int64, 0)
		a.EndedAt = &t
	}
	return a, nil
}

func (s *SQLStore) CreateAttempt(ctx context.Context, a Attempt) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, exam_id, student_id, status, started_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.ExamID, a.StudentID, string(NormalizeAttemptStatus(string(a.Status))), a.StartedAt.Unix())
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateAttempt
	}
	return err
}

func (s *SQLStore) CompleteAttempt(ctx context.Context, attemptID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE attempts SET status='COMPLETED', ended_at=$1 WHERE id=$2`,
		at.Unix(), attemptID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAttemptNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}

func (s *SQLStore) GetAttemptWithAnswers(ctx context.Context, examID, studentID string) (AttemptDetail, error) {
	a, err := s.GetAttempt(ctx, examID, studentID)
	if err != nil {
		return AttemptDetail{}, err
	}
	det := AttemptDetail{Attempt: a}

	if u, err := s.GetUser(ctx, studentID); err == nil {
		det.Student = User{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
	} else if !errors.Is(err, ErrUserNotFound) {
		return AttemptDetail{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, attempt_id, question_no, marks_obtained
		 FROM answers WHERE attempt_id=$1 ORDER BY question_no`, a.ID)
	if err != nil {
		return AttemptDetail{}, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ans Answer
		var marks sql.NullFloat64
		if err := rows.Scan(&ans.ID, &ans.AttemptID, &ans.QuestionNo, &marks); err != nil {
			return AttemptDetail{}, fmt.Errorf("scan answer: %w", err)
		}
		if marks.Valid {
			m := marks.Float64
			ans.MarksObtained = &m
		}
		det.Answers = append(det.Answers, ans)
	}
	return det, rows.Err()
}

func (s *SQLStore) ListAttemptsForExam(ctx context.Context, examID string) ([]RosterRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.student_id, COALESCE(u.name,''), COALESCE(u.email,''), a.status, a.ended_at,
		        COALESCE(SUM(ans.marks_obtained),0), COUNT(ans.id)
		 FROM attempts a
		 LEFT JOIN users u ON u.id = a.student_id
		 LEFT JOIN answers ans ON ans.attempt_id = a.id
		 WHERE a.exam_id=$1
		 GROUP BY a.id, a.student_id, u.name, u.email, a.status, a.ended_at
		 ORDER BY a.ended_at DESC`, examID)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	var out []RosterRow
	for rows.Next() {
		var r RosterRow
		var status string
		var endedAt sql.NullInt64
		if err := rows.Scan(&r.AttemptID, &r.StudentID, &r.StudentName, &r.StudentEmail,
			&status, &endedAt, &r.Score, &r.AnsweredCount); err != nil {
			return nil, fmt.Errorf("scan roster row: %w", err)
		}
		r.Status = NormalizeAttemptStatus(status)
		if endedAt.Valid {
			t := time.Unix(endedAt.Int64, 0)
			r.SubmittedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutAnswer(ctx context.Context, a Answer) error {
	var marks sql.NullFloat64
	if a.MarksObtained != nil {
		marks = sql.NullFloat64{Float64: *a.MarksObtained, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO answers (id, attempt_id, question_no, marks_obtained)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (id) DO UPDATE SET marks_obtained=EXCLUDED.marks_obtained`,
		a.ID, a.AttemptID, a.QuestionNo, marks)
	return err
}
