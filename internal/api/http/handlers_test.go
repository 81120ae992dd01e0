package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/exam"
	"github.com/examgate/examgate/internal/rbac"
)

func newTestRouter(t *testing.T) (chi.Router, exam.Store) {
	t.Helper()
	st := exam.NewInMemoryStore()
	ctx := context.Background()
	now := time.Now()

	users := []exam.User{
		{ID: "t1", Name: "Ada Teacher", Email: "ada@school.test", Role: exam.RoleTeacher},
		{ID: "t2", Name: "Eve Teacher", Email: "eve@school.test", Role: exam.RoleTeacher},
		{ID: "s1", Name: "Sam Student", Email: "sam@school.test", Role: exam.RoleStudent},
		{ID: "s2", Name: "Kim Student", Email: "kim@school.test", Role: exam.RoleStudent},
	}
	for _, u := range users {
		if err := st.PutUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.PutExam(ctx, exam.Exam{
		ID: "e1", TeacherID: "t1", Code: "MATH101", Title: "Midterm",
		Status: exam.ExamPublished, StartAt: now.Add(-time.Hour), EndAt: now.Add(time.Hour),
		TotalMarks: 10, QuestionsCount: 3,
	}); err != nil {
		t.Fatal(err)
	}

	// s1 already has a completed attempt with answers worth 5 marks.
	att := exam.Attempt{ID: "a1", ExamID: "e1", StudentID: "s1", Status: exam.AttemptInProgress, StartedAt: now.Add(-30 * time.Minute)}
	if err := st.CreateAttempt(ctx, att); err != nil {
		t.Fatal(err)
	}
	if err := st.CompleteAttempt(ctx, "a1", now.Add(-10*time.Minute)); err != nil {
		t.Fatal(err)
	}
	two, three := 2.0, 3.0
	for _, a := range []exam.Answer{
		{ID: "an1", AttemptID: "a1", QuestionNo: 1, MarksObtained: &two},
		{ID: "an2", AttemptID: "a1", QuestionNo: 2},
		{ID: "an3", AttemptID: "a1", QuestionNo: 3, MarksObtained: &three},
	} {
		if err := st.PutAnswer(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	svc := exam.NewService(st, nil)
	guard := rbac.NewGuard(st)

	r := chi.NewRouter()
	r.Route("/api", func(ar chi.Router) {
		ar.Post("/exams/join", JoinExamHandler(svc, guard))
		ar.Get("/exams/code/{examCode}", ExamInstructionsHandler(svc, guard))
		ar.Get("/students/{studentID}/result", StudentResultByQueryHandler(svc, guard))
		ar.Get("/exams/code/{examCode}/attempts", RosterByCodeHandler(svc, guard))
		ar.Get("/exams/{examID}/results", ExamResultsHandler(svc, guard))
		ar.Get("/exams/{examID}/students/{studentID}", StudentResultHandler(svc, guard))
	})
	return r, st
}

func doAs(t *testing.T, r chi.Router, id auth.Identity, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req = req.WithContext(auth.WithIdentity(req.Context(), id))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestStudentResult_OtherStudentForbidden(t *testing.T) {
	r, _ := newTestRouter(t)
	other := auth.Identity{UserID: "s2", Role: exam.RoleStudent}

	for _, target := range []string{
		"/api/exams/e1/students/s1",
		"/api/students/s1/result?examId=e1",
	} {
		rec := doAs(t, r, other, http.MethodGet, target, "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d (%s)", target, rec.Code, rec.Body.String())
		}
		if msg := decodeBody(t, rec)["message"]; msg == "" {
			t.Fatalf("%s: expected error message body", target)
		}
	}
}

func TestStudentResult_OwnResultOK(t *testing.T) {
	r, _ := newTestRouter(t)
	self := auth.Identity{UserID: "s1", Role: exam.RoleStudent}

	for _, target := range []string{
		"/api/exams/e1/students/s1",
		"/api/students/s1/result?examId=e1",
	} {
		rec := doAs(t, r, self, http.MethodGet, target, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d (%s)", target, rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		attempt, ok := body["attempt"].(map[string]interface{})
		if !ok {
			t.Fatalf("%s: expected attempt object, got %v", target, body)
		}
		if attempt["score"] != 5.0 {
			t.Fatalf("%s: expected score 5, got %v", target, attempt["score"])
		}
	}
}

func TestStudentResult_TeacherOwnerOK(t *testing.T) {
	r, _ := newTestRouter(t)
	owner := auth.Identity{UserID: "t1", Role: exam.RoleTeacher}
	rec := doAs(t, r, owner, http.MethodGet, "/api/exams/e1/students/s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owning teacher, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestStudentResult_TeacherNonOwnerNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	stranger := auth.Identity{UserID: "t2", Role: exam.RoleTeacher}
	rec := doAs(t, r, stranger, http.MethodGet, "/api/exams/e1/students/s1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-owning teacher, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestExamResults_NonOwnerNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	stranger := auth.Identity{UserID: "t2", Role: exam.RoleTeacher}
	rec := doAs(t, r, stranger, http.MethodGet, "/api/exams/e1/results", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestExamResults_OwnerSeesRoster(t *testing.T) {
	r, _ := newTestRouter(t)
	owner := auth.Identity{UserID: "t1", Role: exam.RoleTeacher}
	rec := doAs(t, r, owner, http.MethodGet, "/api/exams/e1/results", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["examId"] != "e1" || body["title"] != "Midterm" {
		t.Fatalf("unexpected envelope: %v", body)
	}
	results, ok := body["results"].([]interface{})
	if !ok || len(results) != 1 {
		t.Fatalf("expected one roster row, got %v", body["results"])
	}
	row := results[0].(map[string]interface{})
	if row["score"] != 5.0 || row["totalMarks"] != 10.0 {
		t.Fatalf("expected score 5 of 10, got %v of %v", row["score"], row["totalMarks"])
	}
}

func TestJoin_MissingCode(t *testing.T) {
	r, _ := newTestRouter(t)
	student := auth.Identity{UserID: "s2", Role: exam.RoleStudent}
	rec := doAs(t, r, student, http.MethodPost, "/api/exams/join", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
	if msg, _ := decodeBody(t, rec)["message"].(string); !strings.Contains(msg, "exam code") {
		t.Fatalf("expected exam-code message, got %q", msg)
	}
}

func TestJoin_StudentSucceeds(t *testing.T) {
	r, _ := newTestRouter(t)
	student := auth.Identity{UserID: "s2", Role: exam.RoleStudent}
	rec := doAs(t, r, student, http.MethodPost, "/api/exams/join", `{"examCode":"MATH101"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["examCode"] != "MATH101" {
		t.Fatalf("expected examCode echoed, got %v", body)
	}
}

func TestJoin_TeacherForbidden(t *testing.T) {
	r, _ := newTestRouter(t)
	teacher := auth.Identity{UserID: "t1", Role: exam.RoleTeacher}
	rec := doAs(t, r, teacher, http.MethodPost, "/api/exams/join", `{"examCode":"MATH101"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestInstructions_StudentOK(t *testing.T) {
	r, _ := newTestRouter(t)
	student := auth.Identity{UserID: "s2", Role: exam.RoleStudent}
	rec := doAs(t, r, student, http.MethodGet, "/api/exams/code/MATH101", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["questionsCount"] != 3.0 {
		t.Fatalf("expected questionsCount 3, got %v", body["questionsCount"])
	}
}

func TestRosterByCode_TeacherOK(t *testing.T) {
	r, _ := newTestRouter(t)
	teacher := auth.Identity{UserID: "t2", Role: exam.RoleTeacher}
	rec := doAs(t, r, teacher, http.MethodGet, "/api/exams/code/MATH101/attempts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if _, ok := body["exam"]; !ok {
		t.Fatalf("expected exam in envelope, got %v", body)
	}
	attempts, ok := body["attempts"].([]interface{})
	if !ok || len(attempts) != 1 {
		t.Fatalf("expected one attempt, got %v", body["attempts"])
	}
}

func TestUnauthenticatedRequest(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := doAs(t, r, auth.Identity{}, http.MethodGet, "/api/exams/e1/results", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (%s)", rec.Code, rec.Body.String())
	}
}
