package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"syllabus-service/internal/domain"
)

// ContentStore keeps subjects and quizzes as JSONB rows for self-hosted
// deployments without a document database.
type ContentStore struct {
	pool  *pgxpool.Pool
	newID func() string
}

func NewContentStore(pool *pgxpool.Pool, newID func() string) *ContentStore {
	return &ContentStore{pool: pool, newID: newID}
}

func (s *ContentStore) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM subjects ORDER BY (data->>'order')::int ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()
	var subjects []domain.Subject
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		var subject domain.Subject
		if err := json.Unmarshal(raw, &subject); err != nil {
			return nil, fmt.Errorf("unmarshal subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}

func (s *ContentStore) ListQuizzes(ctx context.Context, subjectID string) ([]domain.Quiz, error) {
	if err := s.subjectExists(ctx, subjectID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT data - 'questions' FROM quizzes WHERE subject_id=$1 ORDER BY id ASC`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()
	var quizzes []domain.Quiz
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err != nil {
			return nil, fmt.Errorf("unmarshal quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func (s *ContentStore) GetQuizDetail(ctx context.Context, subjectID, quizID string) (domain.Quiz, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM quizzes WHERE id=$1 AND subject_id=$2`, quizID, subjectID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}

func (s *ContentStore) CreateSubject(ctx context.Context, name string, order int) (domain.Subject, error) {
	subject := domain.Subject{ID: s.newID(), Name: name, Order: order}
	data, err := json.Marshal(subject)
	if err != nil {
		return domain.Subject{}, fmt.Errorf("marshal subject: %w", err)
	}
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO subjects (id, data) VALUES ($1, $2::jsonb)`, subject.ID, data); err != nil {
		return domain.Subject{}, fmt.Errorf("create subject: %w", err)
	}
	return subject, nil
}

func (s *ContentStore) DeleteSubject(ctx context.Context, subjectID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM subjects WHERE id=$1`, subjectID)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubjectNotFound
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE subject_id=$1`, subjectID); err != nil {
		return fmt.Errorf("delete subject quizzes: %w", err)
	}
	return nil
}

func (s *ContentStore) CreateQuiz(ctx context.Context, subjectID, title string) (domain.Quiz, error) {
	if err := s.subjectExists(ctx, subjectID); err != nil {
		return domain.Quiz{}, err
	}
	quiz := domain.Quiz{ID: s.newID(), Title: title, Questions: []domain.Question{}}
	data, err := json.Marshal(quiz)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("marshal quiz: %w", err)
	}
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO quizzes (id, subject_id, data) VALUES ($1, $2, $3::jsonb)`,
		quiz.ID, subjectID, data); err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

func (s *ContentStore) DeleteQuiz(ctx context.Context, subjectID, quizID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM quizzes WHERE id=$1 AND subject_id=$2`, quizID, subjectID)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *ContentStore) ReplaceQuizQuestions(ctx context.Context, subjectID, quizID string, questions []domain.Question) error {
	encoded, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE quizzes SET data = jsonb_set(data, '{questions}', $3::jsonb) WHERE id=$1 AND subject_id=$2`,
		quizID, subjectID, encoded)
	if err != nil {
		return fmt.Errorf("replace questions: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

// SeedSubject writes a full subject (with quizzes) for the seed command and
// tests; existing rows are replaced.
func (s *ContentStore) SeedSubject(ctx context.Context, subject domain.Subject) error {
	quizzes := subject.Quizzes
	subject.Quizzes = nil
	data, err := json.Marshal(subject)
	if err != nil {
		return fmt.Errorf("marshal subject: %w", err)
	}
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO subjects (id, data) VALUES ($1, $2::jsonb)
		 ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, subject.ID, data); err != nil {
		return fmt.Errorf("seed subject: %w", err)
	}
	for _, quiz := range quizzes {
		encoded, err := json.Marshal(quiz)
		if err != nil {
			return fmt.Errorf("marshal quiz: %w", err)
		}
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO quizzes (id, subject_id, data) VALUES ($1, $2, $3::jsonb)
			 ON CONFLICT (id) DO UPDATE SET subject_id=EXCLUDED.subject_id, data=EXCLUDED.data`,
			quiz.ID, subject.ID, encoded); err != nil {
			return fmt.Errorf("seed quiz: %w", err)
		}
	}
	return nil
}

func (s *ContentStore) subjectExists(ctx context.Context, subjectID string) error {
	var one int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM subjects WHERE id=$1`, subjectID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrSubjectNotFound
	}
	if err != nil {
		return fmt.Errorf("check subject: %w", err)
	}
	return nil
}
