package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"partner-incentives-be/internal/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "sess:"

	// maxTxRetries bounds the optimistic-concurrency loop when two turns
	// race on the same session key.
	maxTxRetries = 5
)

// RedisStore persists sessions as JSON blobs under sess:{id} with a sliding
// TTL. Mutations go through WATCH so a concurrent append cannot be lost.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func (s *RedisStore) Ensure(ctx context.Context, sessionId string) (string, error) {
	if sessionId != "" {
		ok, err := s.client.Exists(ctx, keyPrefix+sessionId).Result()
		if err != nil {
			return "", fmt.Errorf("session exists check: %w", err)
		}
		if ok > 0 {
			if err := s.client.Expire(ctx, keyPrefix+sessionId, s.ttl).Err(); err != nil {
				return "", fmt.Errorf("session ttl refresh: %w", err)
			}
			return sessionId, nil
		}
	}

	sid := sessionId
	if sid == "" {
		sid = uuid.NewString()
	}
	raw, err := json.Marshal(&entity.Session{Id: sid})
	if err != nil {
		return "", err
	}
	// SetNX so a concurrent Ensure for the same id cannot clobber history.
	if err := s.client.SetNX(ctx, keyPrefix+sid, raw, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	return sid, nil
}

func (s *RedisStore) Append(ctx context.Context, sessionId, role, text string) error {
	return s.mutate(ctx, sessionId, func(sess *entity.Session) {
		sess.AppendMessage(role, text, s.now())
	})
}

func (s *RedisStore) SetTopic(ctx context.Context, sessionId, topic string) error {
	return s.mutate(ctx, sessionId, func(sess *entity.Session) {
		sess.CurrentTopic = topic
	})
}

func (s *RedisStore) SetPendingCalculation(ctx context.Context, sessionId, engagement string) error {
	return s.mutate(ctx, sessionId, func(sess *entity.Session) {
		sess.PendingCalculation = engagement
	})
}

func (s *RedisStore) Tail(ctx context.Context, sessionId string, n int) ([]entity.Message, error) {
	sess, err := s.load(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return sess.Tail(n), nil
}

func (s *RedisStore) Topic(ctx context.Context, sessionId string) (string, error) {
	sess, err := s.load(ctx, sessionId)
	if err != nil {
		return "", err
	}
	return sess.CurrentTopic, nil
}

func (s *RedisStore) PendingCalculation(ctx context.Context, sessionId string) (string, error) {
	sess, err := s.load(ctx, sessionId)
	if err != nil {
		return "", err
	}
	return sess.PendingCalculation, nil
}

func (s *RedisStore) load(ctx context.Context, sessionId string) (*entity.Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+sessionId).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}
	var sess entity.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &sess, nil
}

// mutate runs a read-modify-write under WATCH and retries on conflict so
// concurrent turns on one session cannot drop each other's updates.
func (s *RedisStore) mutate(ctx context.Context, sessionId string, apply func(*entity.Session)) error {
	key := keyPrefix + sessionId

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		var sess entity.Session
		switch {
		case errors.Is(err, redis.Nil):
			sess = entity.Session{Id: sessionId}
		case err != nil:
			return err
		default:
			if err := json.Unmarshal([]byte(raw), &sess); err != nil {
				return err
			}
		}

		apply(&sess)

		updated, err := json.Marshal(&sess)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, s.ttl)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = s.client.Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("session write: %w", err)
	}
	return nil
}
