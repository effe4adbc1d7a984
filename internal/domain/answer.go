package domain

import (
	"encoding/json"
	"strings"
)

// AnswerKind tags the shape of a submitted answer.
type AnswerKind int

const (
	// AnswerEmpty is the zero value: nothing was submitted.
	AnswerEmpty AnswerKind = iota
	AnswerSingle
	AnswerMultiple
)

// Answer is a tagged submission value: a single label/value, a set of option
// labels, or nothing. It is constructed once at the JSON boundary (clients
// send a string, an array of strings, or null) and consumed uniformly by the
// evaluator. The zero Answer is empty.
type Answer struct {
	Kind   AnswerKind
	Value  string
	Values []string
}

// SingleAnswer wraps a plain string submission. An empty string is treated
// as no submission.
func SingleAnswer(value string) Answer {
	if value == "" {
		return Answer{}
	}
	return Answer{Kind: AnswerSingle, Value: value}
}

// MultipleAnswer wraps a multi-select submission.
func MultipleAnswer(labels ...string) Answer {
	return Answer{Kind: AnswerMultiple, Values: labels}
}

// IsEmpty reports whether nothing was submitted.
func (a Answer) IsEmpty() bool {
	return a.Kind == AnswerEmpty
}

// LabelSet normalizes the submission to a set of option labels. A single
// value becomes a one-element set; duplicates collapse; empty stays empty.
func (a Answer) LabelSet() map[string]struct{} {
	set := make(map[string]struct{})
	switch a.Kind {
	case AnswerSingle:
		set[a.Value] = struct{}{}
	case AnswerMultiple:
		for _, label := range a.Values {
			set[label] = struct{}{}
		}
	}
	return set
}

// String renders the submission the way it is shown in review listings.
func (a Answer) String() string {
	switch a.Kind {
	case AnswerSingle:
		return a.Value
	case AnswerMultiple:
		return strings.Join(a.Values, ",")
	default:
		return ""
	}
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerSingle:
		return json.Marshal(a.Value)
	case AnswerMultiple:
		return json.Marshal(a.Values)
	default:
		return json.Marshal("")
	}
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*a = Answer{}
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var labels []string
		if err := json.Unmarshal(data, &labels); err != nil {
			return err
		}
		*a = MultipleAnswer(labels...)
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*a = SingleAnswer(value)
	return nil
}
