package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"syllabus-service/internal/domain"
)

// Store is an in-memory implementation of the content, user and mistake
// stores. It backs tests and the demo mode used when no database is
// configured.
type Store struct {
	mu       sync.RWMutex
	subjects map[string]domain.Subject
	quizzes  map[string]map[string]domain.Quiz // subjectID -> quizID -> quiz
	users    map[string]domain.UserProfile
	mistakes map[string]map[string]domain.MistakeGroup // userID -> subjectID_quizID -> group
	nextID   int
}

func NewStore() *Store {
	return &Store{
		subjects: make(map[string]domain.Subject),
		quizzes:  make(map[string]map[string]domain.Quiz),
		users:    make(map[string]domain.UserProfile),
		mistakes: make(map[string]map[string]domain.MistakeGroup),
	}
}

// Seed inserts subjects with their quizzes, keeping given ids.
func (s *Store) Seed(subjects []domain.Subject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, subject := range subjects {
		quizzes := subject.Quizzes
		subject.Quizzes = nil
		s.subjects[subject.ID] = subject
		bucket := make(map[string]domain.Quiz, len(quizzes))
		for _, quiz := range quizzes {
			bucket[quiz.ID] = quiz
		}
		s.quizzes[subject.ID] = bucket
	}
}

func (s *Store) ListSubjects(_ context.Context) ([]domain.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Subject, 0, len(s.subjects))
	for _, subject := range s.subjects {
		out = append(out, subject)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) ListQuizzes(_ context.Context, subjectID string) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.quizzes[subjectID]
	if !ok {
		return nil, domain.ErrSubjectNotFound
	}
	out := make([]domain.Quiz, 0, len(bucket))
	for _, quiz := range bucket {
		// List views carry titles only; question bodies load lazily.
		quiz.Questions = nil
		out = append(out, quiz)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetQuizDetail(_ context.Context, subjectID, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[subjectID][quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Store) CreateSubject(_ context.Context, name string, order int) (domain.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	subject := domain.Subject{ID: fmt.Sprintf("subject-%d", s.nextID), Name: name, Order: order}
	s.subjects[subject.ID] = subject
	s.quizzes[subject.ID] = make(map[string]domain.Quiz)
	return subject, nil
}

func (s *Store) DeleteSubject(_ context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[subjectID]; !ok {
		return domain.ErrSubjectNotFound
	}
	delete(s.subjects, subjectID)
	delete(s.quizzes, subjectID)
	return nil
}

func (s *Store) CreateQuiz(_ context.Context, subjectID, title string) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.quizzes[subjectID]
	if !ok {
		return domain.Quiz{}, domain.ErrSubjectNotFound
	}
	s.nextID++
	quiz := domain.Quiz{ID: fmt.Sprintf("quiz-%d", s.nextID), Title: title, Questions: []domain.Question{}}
	bucket[quiz.ID] = quiz
	return quiz, nil
}

func (s *Store) DeleteQuiz(_ context.Context, subjectID, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.quizzes[subjectID]
	if !ok {
		return domain.ErrSubjectNotFound
	}
	if _, ok := bucket[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(bucket, quizID)
	return nil
}

func (s *Store) ReplaceQuizQuestions(_ context.Context, subjectID, quizID string, questions []domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[subjectID][quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	quiz.Questions = append([]domain.Question(nil), questions...)
	s.quizzes[subjectID][quizID] = quiz
	return nil
}

func (s *Store) GetProfile(_ context.Context, uid string) (domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.users[uid]
	if !ok {
		return domain.UserProfile{}, domain.ErrUserNotFound
	}
	return profile, nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, profile := range s.users {
		if strings.EqualFold(profile.Email, email) {
			return profile, nil
		}
	}
	return domain.UserProfile{}, domain.ErrUserNotFound
}

func (s *Store) CreateProfile(_ context.Context, profile domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[profile.UID] = profile
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserProfile, 0, len(s.users))
	for _, profile := range s.users {
		out = append(out, profile)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *Store) SetRole(_ context.Context, uid string, role domain.Role) error {
	return s.updateUser(uid, func(p *domain.UserProfile) { p.Role = role })
}

func (s *Store) SetStatus(_ context.Context, uid string, status domain.Status) error {
	return s.updateUser(uid, func(p *domain.UserProfile) { p.Status = status })
}

func (s *Store) DeleteProfile(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[uid]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, uid)
	return nil
}

func (s *Store) updateUser(uid string, fn func(*domain.UserProfile)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.users[uid]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(&profile)
	s.users[uid] = profile
	return nil
}

func (s *Store) UpsertGroup(_ context.Context, userID string, group domain.MistakeGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.mistakes[userID]
	if !ok {
		bucket = make(map[string]domain.MistakeGroup)
		s.mistakes[userID] = bucket
	}
	bucket[group.SubjectID+"_"+group.QuizID] = group
	return nil
}

func (s *Store) CountGroups(_ context.Context, userID, subjectID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, group := range s.mistakes[userID] {
		if group.SubjectID == subjectID {
			n++
		}
	}
	return n, nil
}

func (s *Store) GetSubjectMistakes(_ context.Context, userID, subjectID string) (*domain.SubjectMistakes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var groups []domain.MistakeGroup
	for _, group := range s.mistakes[userID] {
		if group.SubjectID == subjectID {
			groups = append(groups, group)
		}
	}
	if len(groups) == 0 {
		return nil, nil
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].QuizID < groups[j].QuizID })
	return &domain.SubjectMistakes{SubjectID: subjectID, Quizzes: groups}, nil
}

func (s *Store) CountAllGroups(_ context.Context, userID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, group := range s.mistakes[userID] {
		counts[group.SubjectID]++
	}
	return counts, nil
}
