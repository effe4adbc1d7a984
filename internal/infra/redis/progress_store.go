package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MegatronPika/question-bank-system/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ProgressStore is a Redis-backed implementation of app.ProgressRepository.
// Each user's state is one JSON value:
//
//	SET trainer:user:{userID} {UserState JSON}
//
// Keys are written without expiry; progress is durable history, not a cache.
type ProgressStore struct {
	client *redis.Client
}

func NewProgressStore(client *redis.Client) *ProgressStore {
	return &ProgressStore{client: client}
}

func (s *ProgressStore) LoadUser(ctx context.Context, userID string) (domain.UserState, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewUserState(), nil
	}
	if err != nil {
		return domain.UserState{}, fmt.Errorf("load user state: %w", err)
	}
	var state domain.UserState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.UserState{}, fmt.Errorf("decode user state: %w", err)
	}
	state.Progress.Normalize()
	return state, nil
}

func (s *ProgressStore) SaveUser(ctx context.Context, userID string, state domain.UserState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode user state: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("save user state: %w", err)
	}
	return nil
}

func (s *ProgressStore) key(userID string) string {
	return "trainer:user:" + userID
}
