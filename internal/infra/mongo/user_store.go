package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"syllabus-service/internal/domain"
)

// UserStore persists account profiles, keyed by uid.
type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection("users")}
}

func (s *UserStore) GetProfile(ctx context.Context, uid string) (domain.UserProfile, error) {
	var profile domain.UserProfile
	err := s.col.FindOne(ctx, bson.M{"_id": uid}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.UserProfile{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (domain.UserProfile, error) {
	var profile domain.UserProfile
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.UserProfile{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("get profile by email: %w", err)
	}
	return profile, nil
}

func (s *UserStore) CreateProfile(ctx context.Context, profile domain.UserProfile) error {
	if _, err := s.col.InsertOne(ctx, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *UserStore) ListUsers(ctx context.Context) ([]domain.UserProfile, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)
	var users []domain.UserProfile
	for cur.Next(ctx) {
		var profile domain.UserProfile
		if err := cur.Decode(&profile); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		users = append(users, profile)
	}
	return users, cur.Err()
}

func (s *UserStore) SetRole(ctx context.Context, uid string, role domain.Role) error {
	return s.update(ctx, uid, bson.M{"role": role})
}

func (s *UserStore) SetStatus(ctx context.Context, uid string, status domain.Status) error {
	return s.update(ctx, uid, bson.M{"status": status})
}

func (s *UserStore) DeleteProfile(ctx context.Context, uid string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": uid})
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) update(ctx context.Context, uid string, fields bson.M) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
