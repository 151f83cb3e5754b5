// Package contextstore persists multi-turn conversation state in Redis,
// keyed by the caller-supplied context identifier. It stores conversation
// turns only, never completion responses keyed by input.
package contextstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/hearth/internal/domain"
	"github.com/davidbz/hearth/internal/observability"
)

const keyPrefix = "hearth:context:"

// Store implements the domain.ContextStore interface over Redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Redis-backed context store. Each context expires ttl after
// its last append.
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// History returns the stored turns for a context, oldest first. An unknown
// context yields an empty history, not an error.
func (s *Store) History(ctx context.Context, contextID string) ([]domain.Message, error) {
	raw, err := s.client.LRange(ctx, keyPrefix+contextID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read context %s: %w", contextID, err)
	}

	turns := make([]domain.Message, 0, len(raw))
	for _, item := range raw {
		var turn domain.Message
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("failed to decode context turn: %w", err)
		}
		turns = append(turns, turn)
	}

	return turns, nil
}

// Append adds turns to a context's history and refreshes its expiry.
func (s *Store) Append(ctx context.Context, contextID string, turns ...domain.Message) error {
	if len(turns) == 0 {
		return nil
	}

	key := keyPrefix + contextID

	items := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		encoded, err := json.Marshal(turn)
		if err != nil {
			return fmt.Errorf("failed to encode context turn: %w", err)
		}
		items = append(items, encoded)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, items...)
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to context %s: %w", contextID, err)
	}

	observability.FromContext(ctx).Debug("context turns stored",
		observability.String("context_id", contextID),
		observability.Int("turns", len(turns)),
	)

	return nil
}
