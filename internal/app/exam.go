package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MegatronPika/question-bank-system/internal/domain"
)

// examQuestionsPerType fixes the exam composition: this many questions are
// drawn from each of the three type partitions.
const examQuestionsPerType = 50

// StartExam assembles a fresh exam (50 single + 50 multi + 50 true/false,
// shuffled) and appends it to the user's record list with status ongoing.
func (s *TrainerService) StartExam(ctx context.Context, userID string) (domain.ExamSheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bank, err := s.bank.GetBank(ctx)
	if err != nil {
		return domain.ExamSheet{}, err
	}

	parts := bank.Partition()
	for _, qt := range []domain.QuestionType{domain.SingleChoice, domain.MultiChoice, domain.TrueFalse} {
		if len(parts[qt]) < examQuestionsPerType {
			return domain.ExamSheet{}, domain.ErrInsufficientBank
		}
	}

	questions := make([]domain.Question, 0, 3*examQuestionsPerType)
	questions = append(questions, s.sample(parts[domain.SingleChoice], examQuestionsPerType)...)
	questions = append(questions, s.sample(parts[domain.MultiChoice], examQuestionsPerType)...)
	questions = append(questions, s.sample(parts[domain.TrueFalse], examQuestionsPerType)...)
	s.rnd.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	state, err := s.progress.LoadUser(ctx, userID)
	if err != nil {
		return domain.ExamSheet{}, err
	}

	start := s.now()
	record := domain.ExamRecord{
		ExamID:    uniqueExamID(start.Format("20060102_150405"), state.ExamRecords),
		StartTime: start,
		Status:    domain.ExamOngoing,
		Questions: questions,
	}
	state.ExamRecords = append(state.ExamRecords, record)

	if err := s.progress.SaveUser(ctx, userID, state); err != nil {
		return domain.ExamSheet{}, err
	}
	return domain.ExamSheet{ExamID: record.ExamID, Questions: questions}, nil
}

// SubmitExam grades an ongoing exam against its fixed question snapshot.
// Answers are keyed by question id rendered as a string; a missing key is an
// empty submission and always incorrect. Completed records are immutable, so
// grading the same exam twice returns ErrExamNotFound and mutates nothing.
func (s *TrainerService) SubmitExam(ctx context.Context, userID, examID string, answers map[string]domain.Answer) (domain.ExamResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.progress.LoadUser(ctx, userID)
	if err != nil {
		return domain.ExamResult{}, err
	}

	recordIdx := -1
	for i := range state.ExamRecords {
		if state.ExamRecords[i].ExamID == examID && state.ExamRecords[i].Status == domain.ExamOngoing {
			recordIdx = i
			break
		}
	}
	if recordIdx == -1 {
		return domain.ExamResult{}, domain.ErrExamNotFound
	}
	record := &state.ExamRecords[recordIdx]

	gradedAt := s.now()
	totalScore := 0
	var wrongAnswers []domain.GradingDetail
	for _, question := range record.Questions {
		answer := answers[strconv.Itoa(question.ID)]
		if Evaluate(question, answer) {
			totalScore += question.Score
			continue
		}
		wrongAnswers = append(wrongAnswers, domain.GradingDetail{
			QuestionID:      question.ID,
			UserAnswer:      answer,
			CorrectAnswer:   question.CorrectAnswer,
			QuestionContent: question.Content,
			Analysis:        question.Analysis,
			Type:            question.Type,
			Score:           question.Score,
		})
		state.Progress.MarkWrong(question.ID)
		state.WrongRecords = append(state.WrongRecords, domain.WrongRecord{
			QuestionID:      question.ID,
			UserAnswer:      answer,
			CorrectAnswer:   question.CorrectAnswer,
			Timestamp:       gradedAt,
			QuestionContent: question.Content,
			Analysis:        question.Analysis,
			Type:            question.Type,
		})
	}

	record.Status = domain.ExamCompleted
	record.EndTime = &gradedAt
	record.TotalScore = totalScore
	record.WrongAnswers = wrongAnswers

	if err := s.progress.SaveUser(ctx, userID, state); err != nil {
		return domain.ExamResult{}, err
	}
	return domain.ExamResult{TotalScore: totalScore, WrongAnswers: wrongAnswers}, nil
}

// sample draws n distinct questions without replacement via a shuffled copy.
func (s *TrainerService) sample(pool []domain.Question, n int) []domain.Question {
	shuffled := make([]domain.Question, len(pool))
	copy(shuffled, pool)
	s.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

// uniqueExamID disambiguates exams started within the same second.
func uniqueExamID(base string, records []domain.ExamRecord) string {
	taken := make(map[string]struct{}, len(records))
	for _, r := range records {
		taken[r.ExamID] = struct{}{}
	}
	id := base
	for n := 2; ; n++ {
		if _, ok := taken[id]; !ok {
			return id
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}
