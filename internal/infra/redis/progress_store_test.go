package redis

import (
	"context"
	"testing"

	"github.com/MegatronPika/question-bank-system/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestProgressStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewProgressStore(newClient(mr))

	state := domain.NewUserState()
	state.Progress.MarkWrong(7)
	state.Progress.MarkAnswered(8)
	if err := store.SaveUser(ctx, "u1", state); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("trainer:user:u1") {
		t.Fatalf("expected redis key to be set")
	}

	restored, err := store.LoadUser(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !restored.Progress.Wrong.Has(7) || !restored.Progress.Answered.Has(8) {
		t.Fatalf("round-trip lost membership: %+v", restored.Progress)
	}
	if !restored.Progress.Answered.Has(7) {
		t.Fatalf("expected wrong id normalized into answered set")
	}
	if restored.Progress.WrongCount[7] != 1 {
		t.Fatalf("expected wrong count 1, got %d", restored.Progress.WrongCount[7])
	}
}

func TestProgressStoreFirstSeenUser(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	state, err := NewProgressStore(newClient(mr)).LoadUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state.Progress.Answered.Len() != 0 || len(state.ExamRecords) != 0 {
		t.Fatalf("expected initialized empty state, got %+v", state)
	}
}
