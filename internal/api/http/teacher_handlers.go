package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/exam"
	"github.com/examgate/examgate/internal/rbac"
)

// GET /api/exams/{examID}/results
// Ownership is folded into the lookup: a teacher who did not create the
// exam gets 404, not 403.
func ExamResultsHandler(svc *exam.Service, guard *rbac.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.IdentityFromContext(r.Context())
		caller, err := guard.Authorize(r.Context(), id, rbac.Options{Role: exam.RoleTeacher})
		if err != nil {
			respondErr(w, err, "failed to fetch exam results")
			return
		}

		examID := chi.URLParam(r, "examID")
		e, rows, err := svc.TeacherRoster(r.Context(), examID, caller.ID)
		if err != nil {
			respondErr(w, err, "failed to fetch exam results")
			return
		}
		if rows == nil {
			rows = []exam.RosterRow{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"examId":  e.ID,
			"title":   e.Title,
			"results": rows,
		})
	}
}

// GET /api/exams/code/{examCode}/attempts
func RosterByCodeHandler(svc *exam.Service, guard *rbac.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.IdentityFromContext(r.Context())
		if _, err := guard.Authorize(r.Context(), id, rbac.Options{Role: exam.RoleTeacher}); err != nil {
			respondErr(w, err, "failed to fetch exam attempts")
			return
		}

		code := chi.URLParam(r, "examCode")
		e, rows, err := svc.RosterByCode(r.Context(), code)
		if err != nil {
			respondErr(w, err, "failed to fetch exam attempts")
			return
		}
		if rows == nil {
			rows = []exam.RosterRow{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"exam":     e,
			"attempts": rows,
		})
	}
}
