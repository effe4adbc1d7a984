package app_test

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/MegatronPika/question-bank-system/internal/app"
	"github.com/MegatronPika/question-bank-system/internal/domain"
	"github.com/MegatronPika/question-bank-system/internal/infra/memory"
)

// makeBank builds a catalog with perType questions of each type. Single
// choice ids start at 1, multi choice at 1001, true/false at 2001.
func makeBank(perType int) domain.Bank {
	var questions []domain.Question
	for i := 0; i < perType; i++ {
		questions = append(questions, domain.Question{
			ID:            1 + i,
			Content:       fmt.Sprintf("single %d", i),
			Options:       abcdOptions(),
			Type:          domain.SingleChoice,
			CorrectAnswer: "A",
			Score:         2,
			Analysis:      "pick A",
		})
	}
	for i := 0; i < perType; i++ {
		questions = append(questions, domain.Question{
			ID:            1001 + i,
			Content:       fmt.Sprintf("multi %d", i),
			Options:       abcdOptions(),
			Type:          domain.MultiChoice,
			CorrectAnswer: "A,B",
			Score:         4,
			Analysis:      "pick A and B",
		})
	}
	for i := 0; i < perType; i++ {
		questions = append(questions, domain.Question{
			ID:            2001 + i,
			Content:       fmt.Sprintf("truefalse %d", i),
			Type:          domain.TrueFalse,
			CorrectAnswer: "true",
			Score:         1,
			Analysis:      "it is true",
		})
	}
	return domain.Bank{Questions: questions}
}

func abcdOptions() []domain.Option {
	return []domain.Option{
		{Label: "A", Text: "option a"},
		{Label: "B", Text: "option b"},
		{Label: "C", Text: "option c"},
		{Label: "D", Text: "option d"},
	}
}

// stepClock returns a deterministic clock that advances one second per call.
func stepClock() func() time.Time {
	current := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func newTestService(bank domain.Bank) (*app.TrainerService, *memory.ProgressStore) {
	store := memory.NewProgressStore()
	repo := memory.NewBankRepository(memory.NewStaticBankLoader(bank), time.Minute)
	service := app.NewTrainerServiceWithClock(repo, store, stepClock(), rand.New(rand.NewSource(1)))
	return service, store
}
