package app

import (
	"context"
	"sort"

	"github.com/MegatronPika/question-bank-system/internal/domain"
)

// ListWrongQuestions projects the user's wrong-question ledger into three
// type buckets, each sorted independently by the given key. Read-only.
//
// Sorting by count uses the question's live miss counter, so repeated
// records of one question share a rank and keep their original order.
func (s *TrainerService) ListWrongQuestions(ctx context.Context, userID string, sortBy domain.SortKey) (domain.WrongQuestionReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.progress.LoadUser(ctx, userID)
	if err != nil {
		return domain.WrongQuestionReport{}, err
	}

	buckets := map[domain.QuestionType][]domain.WrongRecord{}
	for _, record := range state.WrongRecords {
		buckets[record.Type] = append(buckets[record.Type], record)
	}
	for _, records := range buckets {
		sortWrongRecords(records, sortBy, state.Progress.WrongCount)
	}

	return domain.WrongQuestionReport{
		SingleChoice: emptyIfNil(buckets[domain.SingleChoice]),
		MultiChoice:  emptyIfNil(buckets[domain.MultiChoice]),
		TrueFalse:    emptyIfNil(buckets[domain.TrueFalse]),
	}, nil
}

func sortWrongRecords(records []domain.WrongRecord, sortBy domain.SortKey, wrongCount map[int]int) {
	switch sortBy {
	case domain.SortByCount:
		sort.SliceStable(records, func(i, j int) bool {
			return wrongCount[records[i].QuestionID] > wrongCount[records[j].QuestionID]
		})
	case domain.SortByID:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].QuestionID < records[j].QuestionID
		})
	default: // most recent miss first
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Timestamp.After(records[j].Timestamp)
		})
	}
}

func emptyIfNil(records []domain.WrongRecord) []domain.WrongRecord {
	if records == nil {
		return []domain.WrongRecord{}
	}
	return records
}
