package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"syllabus-service/internal/app"
	"syllabus-service/internal/domain"
)

// ContentCache is a read-through Redis decorator over a ContentStore.
// Reads are served from cache and filled from the backing store on miss;
// mutations pass through and invalidate the affected keys.
type ContentCache struct {
	client *redis.Client
	store  app.ContentStore
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

var _ app.ContentStore = (*ContentCache)(nil)

func NewContentCache(client *redis.Client, store app.ContentStore, ttl time.Duration) *ContentCache {
	return &ContentCache{
		client: client,
		store:  store,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ContentCache) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	var subjects []domain.Subject
	err := c.getThrough(ctx, subjectsKey, &subjects, func() (interface{}, error) {
		return c.store.ListSubjects(ctx)
	})
	return subjects, err
}

func (c *ContentCache) ListQuizzes(ctx context.Context, subjectID string) ([]domain.Quiz, error) {
	var quizzes []domain.Quiz
	err := c.getThrough(ctx, quizzesKey(subjectID), &quizzes, func() (interface{}, error) {
		return c.store.ListQuizzes(ctx, subjectID)
	})
	return quizzes, err
}

func (c *ContentCache) GetQuizDetail(ctx context.Context, subjectID, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := c.getThrough(ctx, quizKey(subjectID, quizID), &quiz, func() (interface{}, error) {
		return c.store.GetQuizDetail(ctx, subjectID, quizID)
	})
	return quiz, err
}

func (c *ContentCache) CreateSubject(ctx context.Context, name string, order int) (domain.Subject, error) {
	subject, err := c.store.CreateSubject(ctx, name, order)
	if err != nil {
		return domain.Subject{}, err
	}
	c.invalidate(ctx, subjectsKey)
	return subject, nil
}

func (c *ContentCache) DeleteSubject(ctx context.Context, subjectID string) error {
	if err := c.store.DeleteSubject(ctx, subjectID); err != nil {
		return err
	}
	c.invalidate(ctx, subjectsKey, quizzesKey(subjectID))
	return nil
}

func (c *ContentCache) CreateQuiz(ctx context.Context, subjectID, title string) (domain.Quiz, error) {
	quiz, err := c.store.CreateQuiz(ctx, subjectID, title)
	if err != nil {
		return domain.Quiz{}, err
	}
	c.invalidate(ctx, quizzesKey(subjectID))
	return quiz, nil
}

func (c *ContentCache) DeleteQuiz(ctx context.Context, subjectID, quizID string) error {
	if err := c.store.DeleteQuiz(ctx, subjectID, quizID); err != nil {
		return err
	}
	c.invalidate(ctx, quizzesKey(subjectID), quizKey(subjectID, quizID))
	return nil
}

func (c *ContentCache) ReplaceQuizQuestions(ctx context.Context, subjectID, quizID string, questions []domain.Question) error {
	if err := c.store.ReplaceQuizQuestions(ctx, subjectID, quizID, questions); err != nil {
		return err
	}
	c.invalidate(ctx, quizKey(subjectID, quizID), quizzesKey(subjectID))
	return nil
}

// getThrough serves key from Redis, falling back to load on miss. The
// singleflight group collapses concurrent misses into one load per key.
func (c *ContentCache) getThrough(ctx context.Context, key string, out interface{}, load func() (interface{}, error)) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(raw, out)
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		raw, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return raw, nil
		}
		value, err := load()
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		// Best-effort fill; a failed SET only costs the next reader a load.
		_ = c.client.Set(ctx, key, encoded, c.ttlWithJitter()).Err()
		return encoded, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(result.([]byte), out)
}

func (c *ContentCache) invalidate(ctx context.Context, keys ...string) {
	_ = c.client.Del(ctx, keys...).Err()
}

const subjectsKey = "content:subjects"

func quizzesKey(subjectID string) string {
	return "content:subject:" + subjectID + ":quizzes"
}

func quizKey(subjectID, quizID string) string {
	return "content:quiz:" + subjectID + ":" + quizID
}

func (c *ContentCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
