package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"syllabus-service/internal/domain"
)

// ContentStore persists subjects and quizzes in the document database.
// Quizzes live in their own collection with a subjectId field; the original
// nested-collection layout has no Mongo equivalent.
type ContentStore struct {
	subjects *mongo.Collection
	quizzes  *mongo.Collection
	newID    func() string
}

func NewContentStore(db *mongo.Database, newID func() string) *ContentStore {
	return &ContentStore{
		subjects: db.Collection("subjects"),
		quizzes:  db.Collection("quizzes"),
		newID:    newID,
	}
}

type quizDoc struct {
	ID        string            `bson:"_id"`
	SubjectID string            `bson:"subjectId"`
	Title     string            `bson:"title"`
	Questions []domain.Question `bson:"questions"`
}

func (s *ContentStore) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cur, err := s.subjects.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer cur.Close(ctx)
	var subjects []domain.Subject
	for cur.Next(ctx) {
		var subject domain.Subject
		if err := cur.Decode(&subject); err != nil {
			return nil, fmt.Errorf("decode subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	return subjects, cur.Err()
}

func (s *ContentStore) ListQuizzes(ctx context.Context, subjectID string) ([]domain.Quiz, error) {
	if err := s.subjectExists(ctx, subjectID); err != nil {
		return nil, err
	}
	// Question bodies load lazily via GetQuizDetail.
	opts := options.Find().SetProjection(bson.M{"questions": 0})
	cur, err := s.quizzes.Find(ctx, bson.M{"subjectId": subjectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer cur.Close(ctx)
	var quizzes []domain.Quiz
	for cur.Next(ctx) {
		var doc quizDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode quiz: %w", err)
		}
		quizzes = append(quizzes, domain.Quiz{ID: doc.ID, Title: doc.Title})
	}
	return quizzes, cur.Err()
}

func (s *ContentStore) GetQuizDetail(ctx context.Context, subjectID, quizID string) (domain.Quiz, error) {
	var doc quizDoc
	err := s.quizzes.FindOne(ctx, bson.M{"_id": quizID, "subjectId": subjectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	return domain.Quiz{ID: doc.ID, Title: doc.Title, Questions: doc.Questions}, nil
}

func (s *ContentStore) CreateSubject(ctx context.Context, name string, order int) (domain.Subject, error) {
	subject := domain.Subject{ID: s.newID(), Name: name, Order: order}
	if _, err := s.subjects.InsertOne(ctx, subject); err != nil {
		return domain.Subject{}, fmt.Errorf("create subject: %w", err)
	}
	return subject, nil
}

func (s *ContentStore) DeleteSubject(ctx context.Context, subjectID string) error {
	res, err := s.subjects.DeleteOne(ctx, bson.M{"_id": subjectID})
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSubjectNotFound
	}
	// Orphaned quizzes are removed with their parent.
	_, err = s.quizzes.DeleteMany(ctx, bson.M{"subjectId": subjectID})
	if err != nil {
		return fmt.Errorf("delete subject quizzes: %w", err)
	}
	return nil
}

func (s *ContentStore) CreateQuiz(ctx context.Context, subjectID, title string) (domain.Quiz, error) {
	if err := s.subjectExists(ctx, subjectID); err != nil {
		return domain.Quiz{}, err
	}
	doc := quizDoc{ID: s.newID(), SubjectID: subjectID, Title: title, Questions: []domain.Question{}}
	if _, err := s.quizzes.InsertOne(ctx, doc); err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	return domain.Quiz{ID: doc.ID, Title: doc.Title, Questions: doc.Questions}, nil
}

func (s *ContentStore) DeleteQuiz(ctx context.Context, subjectID, quizID string) error {
	res, err := s.quizzes.DeleteOne(ctx, bson.M{"_id": quizID, "subjectId": subjectID})
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *ContentStore) ReplaceQuizQuestions(ctx context.Context, subjectID, quizID string, questions []domain.Question) error {
	res, err := s.quizzes.UpdateOne(ctx,
		bson.M{"_id": quizID, "subjectId": subjectID},
		bson.M{"$set": bson.M{"questions": questions}},
	)
	if err != nil {
		return fmt.Errorf("replace questions: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *ContentStore) subjectExists(ctx context.Context, subjectID string) error {
	err := s.subjects.FindOne(ctx, bson.M{"_id": subjectID}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrSubjectNotFound
	}
	if err != nil {
		return fmt.Errorf("check subject: %w", err)
	}
	return nil
}
