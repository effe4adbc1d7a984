package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/MegatronPika/question-bank-system/internal/domain"
)

// ProgressStore persists all user state in a single JSON file. Every load
// reads the whole file and every save writes the whole file back via a temp
// file and rename, so a crash mid-write never leaves a torn store.
//
// At rest the store is keyed by user id in three top-level maps:
//
//	{"users": {...}, "wrong_questions": {...}, "exam_records": {...}}
//
// with progress sets flattened to deduplicated sorted sequences.
type ProgressStore struct {
	path string
	mu   sync.Mutex
}

type storeSchema struct {
	Users          map[string]domain.UserProgress  `json:"users"`
	WrongQuestions map[string][]domain.WrongRecord `json:"wrong_questions"`
	ExamRecords    map[string][]domain.ExamRecord  `json:"exam_records"`
}

func newStoreSchema() storeSchema {
	return storeSchema{
		Users:          make(map[string]domain.UserProgress),
		WrongQuestions: make(map[string][]domain.WrongRecord),
		ExamRecords:    make(map[string][]domain.ExamRecord),
	}
}

func NewProgressStore(path string) *ProgressStore {
	return &ProgressStore{path: path}
}

func (s *ProgressStore) LoadUser(_ context.Context, userID string) (domain.UserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schema, err := s.read()
	if err != nil {
		return domain.UserState{}, err
	}

	progress, ok := schema.Users[userID]
	if !ok {
		return domain.NewUserState(), nil
	}
	progress.Normalize()
	return domain.UserState{
		Progress:     progress,
		WrongRecords: schema.WrongQuestions[userID],
		ExamRecords:  schema.ExamRecords[userID],
	}, nil
}

func (s *ProgressStore) SaveUser(_ context.Context, userID string, state domain.UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schema, err := s.read()
	if err != nil {
		return err
	}
	schema.Users[userID] = state.Progress
	schema.WrongQuestions[userID] = state.WrongRecords
	schema.ExamRecords[userID] = state.ExamRecords
	return s.write(schema)
}

func (s *ProgressStore) read() (storeSchema, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newStoreSchema(), nil
		}
		return storeSchema{}, fmt.Errorf("read progress store: %w", err)
	}
	schema := newStoreSchema()
	if err := json.Unmarshal(raw, &schema); err != nil {
		return storeSchema{}, fmt.Errorf("decode progress store: %w", err)
	}
	if schema.Users == nil {
		schema.Users = make(map[string]domain.UserProgress)
	}
	if schema.WrongQuestions == nil {
		schema.WrongQuestions = make(map[string][]domain.WrongRecord)
	}
	if schema.ExamRecords == nil {
		schema.ExamRecords = make(map[string][]domain.ExamRecord)
	}
	return schema, nil
}

func (s *ProgressStore) write(schema storeSchema) error {
	raw, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("encode progress store: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".progress-*.json")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace progress store: %w", err)
	}
	return nil
}
