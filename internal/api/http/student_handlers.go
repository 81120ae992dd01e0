package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/exam"
	"github.com/examgate/examgate/internal/rbac"
)

var validate = validator.New()

type joinRequest struct {
	ExamCode string `json:"examCode" validate:"required"`
}

// POST /api/exams/join  { "examCode": "..." }
func JoinExamHandler(svc *exam.Service, guard *rbac.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.IdentityFromContext(r.Context())
		caller, err := guard.Authorize(r.Context(), id, rbac.Options{Role: exam.RoleStudent})
		if err != nil {
			respondErr(w, err, "failed to join exam")
			return
		}

		var req joinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.ExamCode = strings.TrimSpace(req.ExamCode)
		if err := validate.Struct(req); err != nil {
			respondErr(w, exam.ErrMissingExamCode, "failed to join exam")
			return
		}

		_, _, err = svc.Join(r.Context(), req.ExamCode, caller.ID)
		if err != nil {
			respondErr(w, err, "failed to join exam")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message":  "joined exam successfully",
			"examCode": req.ExamCode,
		})
	}
}

// GET /api/exams/code/{examCode}
func ExamInstructionsHandler(svc *exam.Service, guard *rbac.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.IdentityFromContext(r.Context())
		caller, err := guard.Authorize(r.Context(), id, rbac.Options{Role: exam.RoleStudent})
		if err != nil {
			respondErr(w, err, "failed to fetch exam details")
			return
		}

		code := chi.URLParam(r, "examCode")
		e, err := svc.Instructions(r.Context(), code, caller.ID)
		if err != nil {
			respondErr(w, err, "failed to fetch exam details")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":             e.ID,
			"title":          e.Title,
			"description":    e.Description,
			"type":           e.Type,
			"duration":       e.DurationMin,
			"totalMarks":     e.TotalMarks,
			"startDate":      e.StartAt,
			"endDate":        e.EndAt,
			"questionsCount": e.QuestionsCount,
		})
	}
}

// GET /api/exams/{examID}/students/{studentID}
func StudentResultHandler(svc *exam.Service, guard *rbac.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		studentID := chi.URLParam(r, "studentID")
		serveStudentResult(w, r, svc, guard, examID, studentID)
	}
}

// GET /api/students/{studentID}/result?examId=...
func StudentResultByQueryHandler(svc *exam.Service, guard *rbac.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentID")
		examID := strings.TrimSpace(r.URL.Query().Get("examId"))
		if examID == "" {
			writeMessage(w, http.StatusBadRequest, "examId is required")
			return
		}
		serveStudentResult(w, r, svc, guard, examID, studentID)
	}
}

// Visible to the exam's teacher and to the student themself. Teachers
// go through the ownership-scoped lookup, so a non-owner sees 404.
func serveStudentResult(w http.ResponseWriter, r *http.Request, svc *exam.Service, guard *rbac.Guard, examID, studentID string) {
	id, _ := auth.IdentityFromContext(r.Context())
	caller, err := guard.Authorize(r.Context(), id, rbac.Options{Role: exam.RoleTeacher, SelfID: studentID})
	if err != nil {
		respondErr(w, err, "failed to fetch exam result")
		return
	}

	var (
		e   exam.Exam
		det exam.AttemptDetail
	)
	if caller.Role == exam.RoleTeacher {
		e, det, err = svc.StudentResultOwned(r.Context(), examID, caller.ID, studentID)
	} else {
		e, det, err = svc.StudentResult(r.Context(), examID, studentID)
	}
	if err != nil {
		respondErr(w, err, "failed to fetch exam result")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"exam":    e,
		"attempt": det,
	})
}
