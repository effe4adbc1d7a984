package domain

import "errors"

var (
	// ErrExhaustedPool is returned when every question has been answered and
	// the caller asked for an unanswered one.
	ErrExhaustedPool = errors.New("no remaining unanswered questions")
	// ErrNoWrongHistory is returned when wrong-question practice is requested
	// before any question has been missed.
	ErrNoWrongHistory = errors.New("no wrong-question history")
	// ErrQuestionNotFound indicates a submitted question id is not in the bank.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrExamNotFound indicates no ongoing exam matches the given id.
	ErrExamNotFound = errors.New("exam record not found")
	// ErrInsufficientBank indicates a type partition is too small to assemble
	// an exam.
	ErrInsufficientBank = errors.New("question bank too small for exam assembly")
	// ErrBankNotFound indicates the bank content could not be located.
	ErrBankNotFound = errors.New("question bank not found")
)
