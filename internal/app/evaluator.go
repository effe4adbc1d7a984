package app

import (
	"strings"

	"github.com/MegatronPika/question-bank-system/internal/domain"
)

// Evaluate returns the correctness verdict for a submitted answer. It is a
// pure function: malformed or absent input degrades to incorrect, never an
// error.
//
// Single-choice and true/false questions compare the submitted string
// exactly. Multi-choice questions compare label sets, so order and
// duplicates in the submission are irrelevant and a partial selection scores
// zero.
func Evaluate(question domain.Question, answer domain.Answer) bool {
	if question.Type == domain.MultiChoice {
		return labelSetsEqual(answer.LabelSet(), splitLabels(question.CorrectAnswer))
	}
	return answer.Kind == domain.AnswerSingle && answer.Value == question.CorrectAnswer
}

func splitLabels(joined string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, label := range strings.Split(joined, ",") {
		set[label] = struct{}{}
	}
	return set
}

func labelSetsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for label := range a {
		if _, ok := b[label]; !ok {
			return false
		}
	}
	return true
}
