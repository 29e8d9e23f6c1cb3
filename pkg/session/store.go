// Package session keeps TTL-bound conversation state. Two implementations
// exist: a redis-backed store for deployments and a go-cache in-memory store
// for local runs. Both carry the current topic as an explicit session field
// updated alongside message appends.
package session

import (
	"context"
	"errors"
	"time"

	"partner-incentives-be/internal/entity"
)

// DefaultTTL is the sliding session expiration; every write resets it.
const DefaultTTL = 6 * time.Hour

var ErrNotFound = errors.New("session not found")

// Store is the conversation-memory contract used by the assistant service.
type Store interface {
	// Ensure returns the id of an existing session, or mints and persists a
	// new one when sessionId is empty or unknown.
	Ensure(ctx context.Context, sessionId string) (string, error)

	// Append adds a message to the session history (append-only, capped to
	// the most recent entity.MaxSessionMessages) and resets the TTL.
	Append(ctx context.Context, sessionId, role, text string) error

	// Tail returns the last n messages, oldest first.
	Tail(ctx context.Context, sessionId string, n int) ([]entity.Message, error)

	// SetTopic records the inferred conversation subject for the next turn.
	SetTopic(ctx context.Context, sessionId, topic string) error

	// Topic returns the stored subject, empty when none was derived yet.
	Topic(ctx context.Context, sessionId string) (string, error)

	// SetPendingCalculation marks an engagement whose payout form awaits a
	// country answer; empty clears the marker.
	SetPendingCalculation(ctx context.Context, sessionId, engagement string) error

	// PendingCalculation returns the marked engagement, empty when none.
	PendingCalculation(ctx context.Context, sessionId string) (string, error)
}
