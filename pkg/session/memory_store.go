package session

import (
	"context"
	"sync"
	"time"

	"partner-incentives-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in an expiring in-process cache. Used when no
// redis URL is configured (local runs, tests). A single mutex serializes
// mutations; go-cache handles the sliding expiry.
type MemoryStore struct {
	mu    sync.Mutex
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		cache: cache.New(ttl, 10*time.Minute),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryStore) Ensure(_ context.Context, sessionId string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionId != "" {
		if _, found := s.cache.Get(sessionId); found {
			return sessionId, nil
		}
	}
	sid := sessionId
	if sid == "" {
		sid = uuid.NewString()
	}
	s.cache.Set(sid, &entity.Session{Id: sid}, s.ttl)
	return sid, nil
}

func (s *MemoryStore) Append(_ context.Context, sessionId, role, text string) error {
	return s.mutate(sessionId, func(sess *entity.Session) {
		sess.AppendMessage(role, text, s.now())
	})
}

func (s *MemoryStore) SetTopic(_ context.Context, sessionId, topic string) error {
	return s.mutate(sessionId, func(sess *entity.Session) {
		sess.CurrentTopic = topic
	})
}

func (s *MemoryStore) SetPendingCalculation(_ context.Context, sessionId, engagement string) error {
	return s.mutate(sessionId, func(sess *entity.Session) {
		sess.PendingCalculation = engagement
	})
}

func (s *MemoryStore) Tail(_ context.Context, sessionId string, n int) ([]entity.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(sessionId)
	if err != nil {
		return nil, err
	}
	return sess.Tail(n), nil
}

func (s *MemoryStore) Topic(_ context.Context, sessionId string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(sessionId)
	if err != nil {
		return "", err
	}
	return sess.CurrentTopic, nil
}

func (s *MemoryStore) PendingCalculation(_ context.Context, sessionId string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.get(sessionId)
	if err != nil {
		return "", err
	}
	return sess.PendingCalculation, nil
}

func (s *MemoryStore) get(sessionId string) (*entity.Session, error) {
	raw, found := s.cache.Get(sessionId)
	if !found {
		return nil, ErrNotFound
	}
	return raw.(*entity.Session), nil
}

func (s *MemoryStore) mutate(sessionId string, apply func(*entity.Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.get(sessionId)
	if err != nil {
		if err != ErrNotFound {
			return err
		}
		sess = &entity.Session{Id: sessionId}
	}
	apply(sess)
	s.cache.Set(sessionId, sess, s.ttl)
	return nil
}
