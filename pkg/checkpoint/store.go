package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound indicates no checkpoint is stored for the key
	ErrNotFound = errors.New("checkpoint not found")

	// ErrInvalidCheckpoint indicates the stored value is corrupted
	ErrInvalidCheckpoint = errors.New("invalid checkpoint")
)

// Checkpoint is the resume position of an activity listing.
type Checkpoint struct {
	// Cursor is the cursor of the next page to fetch.
	Cursor string `json:"cursor"`

	// Exported is how many activities had been written when it was saved.
	Exported int `json:"exported"`

	// RunID identifies the export run that saved it.
	RunID string `json:"run_id"`

	// UpdatedAt is when the checkpoint was saved.
	UpdatedAt time.Time `json:"updated_at"`

	// Done marks a listing that was written to the end. Cursor is empty.
	Done bool `json:"done,omitempty"`
}

// Store persists checkpoints in Redis.
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewStore creates a checkpoint store. A ttl of zero keeps checkpoints
// until they are deleted.
func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Store{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Get loads the checkpoint for key.
// Returns ErrNotFound if none is stored.
func (s *Store) Get(ctx context.Context, key Key) (*Checkpoint, error) {
	data, err := s.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CheckpointMisses.Inc()
			return nil, ErrNotFound
		}
		CheckpointErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		CheckpointErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidCheckpoint, err)
	}

	CheckpointHits.Inc()
	return &cp, nil
}

// Set stores cp under key, overwriting any previous checkpoint.
func (s *Store) Set(ctx context.Context, key Key, cp *Checkpoint) error {
	if cp == nil {
		return fmt.Errorf("checkpoint cannot be nil")
	}
	if cp.Cursor == "" && !cp.Done {
		return fmt.Errorf("checkpoint cursor cannot be empty")
	}

	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(cp)
	if err != nil {
		CheckpointErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	if err := s.redis.Set(ctx, key.String(), data, s.ttl).Err(); err != nil {
		CheckpointErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CheckpointWrites.Inc()
	return nil
}

// Delete removes the checkpoint for key. Deleting a missing key is not an
// error.
func (s *Store) Delete(ctx context.Context, key Key) error {
	if err := s.redis.Del(ctx, key.String()).Err(); err != nil {
		CheckpointErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
