package app

import (
	"context"
	"sync"
	"time"

	"syllabus-service/internal/domain"
)

// MistakeService aggregates per-quiz mistake submissions into per-subject
// reports and pushes live per-subject counts to subscribers.
type MistakeService struct {
	store MistakeStore
	now   func() time.Time

	mu          sync.Mutex
	subscribers map[string]map[chan map[string]int]struct{}
}

func NewMistakeService(store MistakeStore) *MistakeService {
	return &MistakeService{
		store:       store,
		now:         time.Now,
		subscribers: make(map[string]map[chan map[string]int]struct{}),
	}
}

// Record upserts one mistake group keyed by (user, subject, quiz), fully
// replacing any prior content for that key. An empty mistake list is a
// no-op: an all-correct attempt leaves no trace and clears nothing, so a
// stale group from an earlier imperfect attempt survives a perfect retake.
func (s *MistakeService) Record(ctx context.Context, userID string, group domain.MistakeGroup) error {
	if len(group.Questions) == 0 {
		return nil
	}
	if group.UpdatedAt.IsZero() {
		group.UpdatedAt = s.now()
	}
	if err := s.store.UpsertGroup(ctx, userID, group); err != nil {
		return err
	}
	s.broadcast(ctx, userID)
	return nil
}

// CountForSubject returns the number of distinct quiz groups with recorded
// mistakes for the subject. Used as a badge count.
func (s *MistakeService) CountForSubject(ctx context.Context, userID, subjectID string) (int, error) {
	return s.store.CountGroups(ctx, userID, subjectID)
}

// FetchForSubject returns the full aggregate, or nil when none exists.
func (s *MistakeService) FetchForSubject(ctx context.Context, userID, subjectID string) (*domain.SubjectMistakes, error) {
	return s.store.GetSubjectMistakes(ctx, userID, subjectID)
}

// Subscribe delivers the current per-subject counts immediately and again
// after every Record for the user. The caller must invoke the returned
// cancel function when its view is torn down, or updates keep flowing
// against a stale consumer.
func (s *MistakeService) Subscribe(ctx context.Context, userID string) (<-chan map[string]int, func(), error) {
	initial, err := s.store.CountAllGroups(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan map[string]int, 8)

	s.mu.Lock()
	subs, ok := s.subscribers[userID]
	if !ok {
		subs = make(map[chan map[string]int]struct{})
		s.subscribers[userID] = subs
	}
	subs[ch] = struct{}{}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if subs, ok := s.subscribers[userID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(s.subscribers, userID)
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

func (s *MistakeService) broadcast(ctx context.Context, userID string) {
	s.mu.Lock()
	n := len(s.subscribers[userID])
	s.mu.Unlock()
	if n == 0 {
		return
	}

	counts, err := s.store.CountAllGroups(ctx, userID)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers[userID] {
		select {
		case ch <- counts:
		default:
			// Drop the stale snapshot so a slow consumer never blocks Record.
			select {
			case <-ch:
			default:
			}
			ch <- counts
		}
	}
}
