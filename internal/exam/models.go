package exam

import (
	"strings"
	"time"
)

type Role string

const (
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

type ExamStatus string

const (
	ExamDraft     ExamStatus = "DRAFT"
	ExamPublished ExamStatus = "PUBLISHED"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptCompleted  AttemptStatus = "COMPLETED"
)

// NormalizeRole and NormalizeAttemptStatus are the single case-folding
// step for values read from the store. Legacy rows carry mixed-case
// status values; everything past the scan boundary compares canonical
// constants only.
func NormalizeRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TEACHER":
		return RoleTeacher
	default:
		return RoleStudent
	}
}

func NormalizeAttemptStatus(s string) AttemptStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "COMPLETED":
		return AttemptCompleted
	default:
		return AttemptInProgress
	}
}

func NormalizeExamStatus(s string) ExamStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PUBLISHED":
		return ExamPublished
	default:
		return ExamDraft
	}
}

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"`
}

type Exam struct {
	ID             string     `json:"id"`
	TeacherID      string     `json:"teacherId"`
	Code           string     `json:"examCode"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Type           string     `json:"type"`
	Status         ExamStatus `json:"status"`
	StartAt        time.Time  `json:"startDate"`
	EndAt          time.Time  `json:"endDate"`
	DurationMin    int        `json:"duration"`
	TotalMarks     float64    `json:"totalMarks"`
	QuestionsCount int        `json:"questionsCount"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type Attempt struct {
	ID        string        `json:"id"`
	ExamID    string        `json:"examId"`
	StudentID string        `json:"studentId"`
	Status    AttemptStatus `json:"status"`
	StartedAt time.Time     `json:"startedAt"`
	EndedAt   *time.Time    `json:"endedAt,omitempty"`
}

type Answer struct {
	ID            string   `json:"id"`
	AttemptID     string   `json:"attemptId"`
	QuestionNo    int      `json:"questionNo"`
	MarksObtained *float64 `json:"marksObtained,omitempty"`
}

// AttemptDetail is the student-facing result view: the attempt with its
// answers, the attempter's profile fields and the aggregated score.
type AttemptDetail struct {
	Attempt
	Student User     `json:"student"`
	Answers []Answer `json:"answers"`
	Score   float64  `json:"score"`
}

// RosterRow is one line of the teacher's roster view.
type RosterRow struct {
	AttemptID     string        `json:"attemptId"`
	StudentID     string        `json:"studentId"`
	StudentName   string        `json:"studentName"`
	StudentEmail  string        `json:"studentEmail"`
	Score         float64       `json:"score"`
	TotalMarks    float64       `json:"totalMarks"`
	AnsweredCount int           `json:"answeredCount"`
	SubmittedAt   *time.Time    `json:"submittedAt,omitempty"`
	Status        AttemptStatus `json:"status"`
}
