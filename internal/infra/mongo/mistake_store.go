package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"syllabus-service/internal/domain"
)

// MistakeStore keeps one document per (user, subject, quiz) mistake group,
// flat-keyed as userID:subjectID_quizID so replays replace rather than
// append.
type MistakeStore struct {
	col *mongo.Collection
}

func NewMistakeStore(db *mongo.Database) *MistakeStore {
	return &MistakeStore{col: db.Collection("mistakes")}
}

type mistakeDoc struct {
	ID                  string `bson:"_id"`
	UserID              string `bson:"userId"`
	domain.MistakeGroup `bson:",inline"`
}

func groupKey(userID string, group domain.MistakeGroup) string {
	return userID + ":" + group.SubjectID + "_" + group.QuizID
}

func (s *MistakeStore) UpsertGroup(ctx context.Context, userID string, group domain.MistakeGroup) error {
	doc := mistakeDoc{ID: groupKey(userID, group), UserID: userID, MistakeGroup: group}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return fmt.Errorf("upsert mistake group: %w", err)
	}
	return nil
}

func (s *MistakeStore) CountGroups(ctx context.Context, userID, subjectID string) (int, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"userId": userID, "subjectId": subjectID})
	if err != nil {
		return 0, fmt.Errorf("count mistake groups: %w", err)
	}
	return int(n), nil
}

func (s *MistakeStore) GetSubjectMistakes(ctx context.Context, userID, subjectID string) (*domain.SubjectMistakes, error) {
	groups, err := s.findGroups(ctx, bson.M{"userId": userID, "subjectId": subjectID})
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, nil
	}
	return &domain.SubjectMistakes{SubjectID: subjectID, Quizzes: groups}, nil
}

func (s *MistakeStore) CountAllGroups(ctx context.Context, userID string) (map[string]int, error) {
	groups, err := s.findGroups(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(groups))
	for _, group := range groups {
		counts[group.SubjectID]++
	}
	return counts, nil
}

func (s *MistakeStore) findGroups(ctx context.Context, filter bson.M) ([]domain.MistakeGroup, error) {
	cur, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "quizId", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find mistake groups: %w", err)
	}
	defer cur.Close(ctx)
	var groups []domain.MistakeGroup
	for cur.Next(ctx) {
		var doc mistakeDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode mistake group: %w", err)
		}
		groups = append(groups, doc.MistakeGroup)
	}
	return groups, cur.Err()
}
