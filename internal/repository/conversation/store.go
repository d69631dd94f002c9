package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/curalink/internal/db"
	"github.com/kailas-cloud/curalink/internal/domain"
)

// DefaultTTL is how long an idle conversation is kept.
const DefaultTTL = 24 * time.Hour

var keyPrefix = domain.KeyPrefix + "conversation:"

// store is the consumer interface for conversations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store keeps assistant conversations as JSON documents with a sliding TTL.
type Store struct {
	store store
	ttl   time.Duration
}

// New creates a conversation store. A non-positive ttl selects DefaultTTL.
func New(s store, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{store: s, ttl: ttl}
}

// Load returns the stored turns. An unknown or expired id yields no turns.
func (s *Store) Load(ctx context.Context, id string) ([]domain.ChatMessage, error) {
	data, err := s.store.Get(ctx, keyPrefix+id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load conversation %s: %w", id, err)
	}
	var turns []domain.ChatMessage
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	return turns, nil
}

// Save replaces the stored turns and refreshes the TTL.
func (s *Store) Save(ctx context.Context, id string, turns []domain.ChatMessage) error {
	data, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", id, err)
	}
	if err := s.store.SetWithTTL(ctx, keyPrefix+id, data, s.ttl); err != nil {
		return fmt.Errorf("save conversation %s: %w", id, err)
	}
	return nil
}
