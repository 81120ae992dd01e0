package exam_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/examgate/examgate/internal/db"
	"github.com/examgate/examgate/internal/exam"
)

func openSQLiteStore(t *testing.T) (*exam.SQLStore, *sql.DB) {
	t.Helper()
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return exam.NewSQLStore(dbh), dbh
}

func seedSQL(t *testing.T, st *exam.SQLStore) {
	t.Helper()
	ctx := context.Background()
	users := []exam.User{
		{ID: "t1", Name: "Ada Teacher", Email: "ada@school.test", PasswordHash: "x", Role: exam.RoleTeacher},
		{ID: "s1", Name: "Sam Student", Email: "sam@school.test", PasswordHash: "x", Role: exam.RoleStudent},
	}
	for _, u := range users {
		if err := st.PutUser(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	if err := st.PutExam(ctx, exam.Exam{
		ID: "e1", TeacherID: "t1", Code: "MATH101", Title: "Midterm",
		Status: exam.ExamPublished,
		StartAt: testNow.Add(-time.Hour), EndAt: testNow.Add(time.Hour),
		TotalMarks: 20, QuestionsCount: 3,
	}); err != nil {
		t.Fatalf("seed exam: %v", err)
	}
}

func TestSQLStore_JoinRoundTrip(t *testing.T) {
	st, _ := openSQLiteStore(t)
	seedSQL(t, st)
	ctx := context.Background()
	svc := exam.NewService(st, func() time.Time { return testNow })

	_, a, err := svc.Join(ctx, "MATH101", "s1")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	got, err := st.GetAttempt(ctx, "e1", "s1")
	if err != nil {
		t.Fatalf("get attempt: %v", err)
	}
	if got.ID != a.ID || got.Status != exam.AttemptInProgress {
		t.Fatalf("unexpected attempt: %+v", got)
	}
}

func TestSQLStore_DuplicateAttemptRejected(t *testing.T) {
	st, _ := openSQLiteStore(t)
	seedSQL(t, st)
	ctx := context.Background()

	first := exam.Attempt{ID: "a1", ExamID: "e1", StudentID: "s1", Status: exam.AttemptInProgress, StartedAt: testNow}
	if err := st.CreateAttempt(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := exam.Attempt{ID: "a2", ExamID: "e1", StudentID: "s1", Status: exam.AttemptInProgress, StartedAt: testNow}
	if err := st.CreateAttempt(ctx, dup); !errors.Is(err, exam.ErrDuplicateAttempt) {
		t.Fatalf("expected ErrDuplicateAttempt, got %v", err)
	}
}

func TestSQLStore_FindExamByCodeFilters(t *testing.T) {
	st, _ := openSQLiteStore(t)
	seedSQL(t, st)
	ctx := context.Background()

	if err := st.PutExam(ctx, exam.Exam{
		ID: "e2", TeacherID: "t1", Code: "DRAFT1", Status: exam.ExamDraft,
		StartAt: testNow, EndAt: testNow.Add(time.Hour),
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := st.FindExamByCode(ctx, "DRAFT1", true); !errors.Is(err, exam.ErrExamNotFound) {
		t.Fatalf("expected draft hidden from published lookup, got %v", err)
	}
	if _, err := st.FindExamByCode(ctx, "DRAFT1", false); err != nil {
		t.Fatalf("expected unfiltered lookup to find draft, got %v", err)
	}
	if _, err := st.FindExamByIDOwnedBy(ctx, "e1", "s1"); !errors.Is(err, exam.ErrExamNotFound) {
		t.Fatalf("expected ownership-scoped miss, got %v", err)
	}
}

func TestSQLStore_RosterAggregation(t *testing.T) {
	st, _ := openSQLiteStore(t)
	seedSQL(t, st)
	ctx := context.Background()

	att := exam.Attempt{ID: "a1", ExamID: "e1", StudentID: "s1", Status: exam.AttemptInProgress, StartedAt: testNow}
	if err := st.CreateAttempt(ctx, att); err != nil {
		t.Fatal(err)
	}
	if err := st.CompleteAttempt(ctx, "a1", testNow.Add(30*time.Minute)); err != nil {
		t.Fatal(err)
	}
	for _, a := range []exam.Answer{
		{ID: "an1", AttemptID: "a1", QuestionNo: 1, MarksObtained: marks(2)},
		{ID: "an2", AttemptID: "a1", QuestionNo: 2},
		{ID: "an3", AttemptID: "a1", QuestionNo: 3, MarksObtained: marks(3)},
	} {
		if err := st.PutAnswer(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := st.ListAttemptsForExam(ctx, "e1")
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Score != 5 || r.AnsweredCount != 3 {
		t.Fatalf("expected score 5 over 3 answers, got %v over %d", r.Score, r.AnsweredCount)
	}
	if r.Status != exam.AttemptCompleted {
		t.Fatalf("expected COMPLETED, got %s", r.Status)
	}
	if r.SubmittedAt == nil {
		t.Fatal("expected submittedAt set")
	}
	if r.StudentName != "Sam Student" || r.StudentEmail != "sam@school.test" {
		t.Fatalf("unexpected student fields: %q %q", r.StudentName, r.StudentEmail)
	}

	det, err := st.GetAttemptWithAnswers(ctx, "e1", "s1")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if len(det.Answers) != 3 {
		t.Fatalf("expected 3 answers, got %d", len(det.Answers))
	}
	if exam.SumMarks(det.Answers) != 5 {
		t.Fatalf("expected summed score 5, got %v", exam.SumMarks(det.Answers))
	}
}

func TestSQLStore_NormalizesLegacyStatusCase(t *testing.T) {
	st, dbh := openSQLiteStore(t)
	seedSQL(t, st)
	ctx := context.Background()

	// Simulate a legacy row written with a lowercase status, bypassing
	// the store's write-side normalization.
	if _, err := dbh.ExecContext(ctx,
		`INSERT INTO attempts (id, exam_id, student_id, status, started_at)
		 VALUES ('a1','e1','s1','completed',$1)`, testNow.Unix()); err != nil {
		t.Fatal(err)
	}
	a, err := st.GetAttempt(ctx, "e1", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != exam.AttemptCompleted {
		t.Fatalf("expected normalized COMPLETED, got %s", a.Status)
	}
}
