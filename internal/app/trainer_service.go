package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/MegatronPika/question-bank-system/internal/domain"
)

// BankRepository loads the question catalog (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context) (domain.Bank, error)
}

// ProgressRepository abstracts per-user persisted state (JSON file, Redis,
// etc). LoadUser returns an initialized empty state for a first-seen user.
type ProgressRepository interface {
	LoadUser(ctx context.Context, userID string) (domain.UserState, error)
	SaveUser(ctx context.Context, userID string, state domain.UserState) error
}

// TrainerService contains the quiz trainer use cases: random practice,
// answer submission, exam lifecycle, and wrong-question review.
type TrainerService struct {
	bank     BankRepository
	progress ProgressRepository

	// mu serializes operations so overlapping requests for the same user
	// cannot interleave their load/save cycles.
	mu  sync.Mutex
	now func() time.Time
	rnd *rand.Rand
}

func NewTrainerService(bank BankRepository, progress ProgressRepository) *TrainerService {
	return NewTrainerServiceWithClock(bank, progress, time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewTrainerServiceWithClock allows deterministic timestamps and shuffles in tests.
func NewTrainerServiceWithClock(bank BankRepository, progress ProgressRepository, now func() time.Time, rnd *rand.Rand) *TrainerService {
	return &TrainerService{bank: bank, progress: progress, now: now, rnd: rnd}
}

// SelectPracticeQuestion picks one question uniformly at random from the
// subset eligible under mode. Selection alone mutates nothing.
func (s *TrainerService) SelectPracticeQuestion(ctx context.Context, userID string, mode domain.PracticeMode) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bank, err := s.bank.GetBank(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	state, err := s.progress.LoadUser(ctx, userID)
	if err != nil {
		return domain.Question{}, err
	}

	var eligible []domain.Question
	switch mode {
	case domain.ModeUnanswered:
		for _, q := range bank.Questions {
			if !state.Progress.Answered.Has(q.ID) {
				eligible = append(eligible, q)
			}
		}
		if len(eligible) == 0 {
			return domain.Question{}, domain.ErrExhaustedPool
		}
	case domain.ModeWrong:
		for _, q := range bank.Questions {
			if state.Progress.Wrong.Has(q.ID) {
				eligible = append(eligible, q)
			}
		}
		if len(eligible) == 0 {
			return domain.Question{}, domain.ErrNoWrongHistory
		}
	default:
		eligible = bank.Questions
		if len(eligible) == 0 {
			return domain.Question{}, domain.ErrBankNotFound
		}
	}

	return eligible[s.rnd.Intn(len(eligible))], nil
}

// SubmitPracticeAnswer evaluates a practice submission, updates the user's
// progress and wrong-question ledger, and persists. The canonical answer and
// analysis are returned regardless of the verdict.
func (s *TrainerService) SubmitPracticeAnswer(ctx context.Context, userID string, questionID int, answer domain.Answer) (domain.PracticeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bank, err := s.bank.GetBank(ctx)
	if err != nil {
		return domain.PracticeResult{}, err
	}
	question, ok := bank.Question(questionID)
	if !ok {
		return domain.PracticeResult{}, domain.ErrQuestionNotFound
	}

	state, err := s.progress.LoadUser(ctx, userID)
	if err != nil {
		return domain.PracticeResult{}, err
	}

	state.Progress.MarkAnswered(questionID)

	correct := Evaluate(question, answer)
	if !correct {
		state.Progress.MarkWrong(questionID)
		state.WrongRecords = append(state.WrongRecords, domain.WrongRecord{
			QuestionID:      questionID,
			UserAnswer:      answer,
			CorrectAnswer:   question.CorrectAnswer,
			Timestamp:       s.now(),
			QuestionContent: question.Content,
			Analysis:        question.Analysis,
			Type:            question.Type,
		})
	}

	if err := s.progress.SaveUser(ctx, userID, state); err != nil {
		return domain.PracticeResult{}, err
	}

	return domain.PracticeResult{
		IsCorrect:     correct,
		CorrectAnswer: question.CorrectAnswer,
		Analysis:      question.Analysis,
	}, nil
}
