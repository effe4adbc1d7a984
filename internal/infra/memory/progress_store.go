package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/MegatronPika/question-bank-system/internal/domain"
)

// ProgressStore is an in-memory implementation of app.ProgressRepository.
// States are copied through their JSON form on both load and save, so callers
// never alias the stored value and the store behaves like its persistent
// counterparts.
type ProgressStore struct {
	mu    sync.RWMutex
	users map[string][]byte
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{users: make(map[string][]byte)}
}

func (s *ProgressStore) LoadUser(_ context.Context, userID string) (domain.UserState, error) {
	s.mu.RLock()
	raw, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return domain.NewUserState(), nil
	}
	var state domain.UserState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.UserState{}, fmt.Errorf("decode user state: %w", err)
	}
	state.Progress.Normalize()
	return state, nil
}

func (s *ProgressStore) SaveUser(_ context.Context, userID string, state domain.UserState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode user state: %w", err)
	}
	s.mu.Lock()
	s.users[userID] = raw
	s.mu.Unlock()
	return nil
}
