package exam

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memoryStore implements Store for tests and dev mode.
type memoryStore struct {
	mu       sync.RWMutex
	users    map[string]User
	exams    map[string]Exam
	attempts map[string]Attempt // keyed by attempt ID
	answers  map[string][]Answer
}

func NewInMemoryStore() Store {
	return &memoryStore{
		users:    map[string]User{},
		exams:    map[string]Exam{},
		attempts: map[string]Attempt{},
		answers:  map[string][]Answer{},
	}
}

func (m *memoryStore) GetUser(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *memoryStore) GetUserByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (m *memoryStore) PutUser(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Role = NormalizeRole(string(u.Role))
	m.users[u.ID] = u
	return nil
}

func (m *memoryStore) PutExam(_ context.Context, e Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.Status = NormalizeExamStatus(string(e.Status))
	m.exams[e.ID] = e
	return nil
}

func (m *memoryStore) GetExam(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, ErrExamNotFound
	}
	return e, nil
}

func (m *memoryStore) FindExamByCode(_ context.Context, code string, publishedOnly bool) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.exams {
		if e.Code == code {
			if publishedOnly && e.Status != ExamPublished {
				break
			}
			return e, nil
		}
	}
	return Exam{}, ErrExamNotFound
}

func (m *memoryStore) FindExamByIDOwnedBy(_ context.Context, examID, teacherID string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[examID]
	if !ok || e.TeacherID != teacherID {
		return Exam{}, ErrExamNotFound
	}
	return e, nil
}

func (m *memoryStore) GetAttempt(_ context.Context, examID, studentID string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.findAttempt(examID, studentID)
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, nil
}

func (m *memoryStore) findAttempt(examID, studentID string) (Attempt, bool) {
	for _, a := range m.attempts {
		if a.ExamID == examID && a.StudentID == studentID {
			return a, true
		}
	}
	return Attempt{}, false
}

func (m *memoryStore) CreateAttempt(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.findAttempt(a.ExamID, a.StudentID); exists {
		return ErrDuplicateAttempt
	}
	a.Status = NormalizeAttemptStatus(string(a.Status))
	m.attempts[a.ID] = a
	return nil
}

func (m *memoryStore) CompleteAttempt(_ context.Context, attemptID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return ErrAttemptNotFound
	}
	a.Status = AttemptCompleted
	a.EndedAt = &at
	m.attempts[attemptID] = a
	return nil
}

func (m *memoryStore) GetAttemptWithAnswers(ctx context.Context, examID, studentID string) (AttemptDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.findAttempt(examID, studentID)
	if !ok {
		return AttemptDetail{}, ErrAttemptNotFound
	}
	det := AttemptDetail{Attempt: a}
	if u, ok := m.users[studentID]; ok {
		det.Student = User{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
	}
	det.Answers = append(det.Answers, m.answers[a.ID]...)
	return det, nil
}

func (m *memoryStore) ListAttemptsForExam(_ context.Context, examID string) ([]RosterRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []RosterRow
	for _, a := range m.attempts {
		if a.ExamID != examID {
			continue
		}
		r := RosterRow{
			AttemptID:     a.ID,
			StudentID:     a.StudentID,
			Score:         SumMarks(m.answers[a.ID]),
			AnsweredCount: len(m.answers[a.ID]),
			SubmittedAt:   a.EndedAt,
			Status:        a.Status,
		}
		if u, ok := m.users[a.StudentID]; ok {
			r.StudentName = u.Name
			r.StudentEmail = u.Email
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].SubmittedAt, out[j].SubmittedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
	return out, nil
}

func (m *memoryStore) PutAnswer(_ context.Context, a Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers[a.AttemptID] = append(m.answers[a.AttemptID], a)
	return nil
}
