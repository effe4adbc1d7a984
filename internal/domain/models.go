package domain

import "time"

// QuestionType discriminates how a question is answered and graded.
type QuestionType int

const (
	SingleChoice QuestionType = 1
	MultiChoice  QuestionType = 2
	TrueFalse    QuestionType = 3
)

// Option is one selectable choice of a choice-type question.
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question is an immutable catalog entry. For MultiChoice questions
// CorrectAnswer is a comma-joined set of option labels (e.g. "A,C").
type Question struct {
	ID            int          `json:"id"`
	Content       string       `json:"content"`
	Options       []Option     `json:"options,omitempty"`
	Type          QuestionType `json:"type"`
	CorrectAnswer string       `json:"correct_answer"`
	Score         int          `json:"score"`
	Analysis      string       `json:"analysis"`
}

// Bank is the static question catalog, read-only during request handling.
type Bank struct {
	Questions []Question `json:"questions"`
}

// Question looks up a catalog entry by id.
func (b Bank) Question(id int) (Question, bool) {
	for _, q := range b.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Partition splits the catalog by question type, preserving catalog order.
func (b Bank) Partition() map[QuestionType][]Question {
	parts := make(map[QuestionType][]Question, 3)
	for _, q := range b.Questions {
		parts[q.Type] = append(parts[q.Type], q)
	}
	return parts
}

// PracticeMode filters which questions are eligible for random practice.
type PracticeMode string

const (
	ModeAll        PracticeMode = "all"
	ModeUnanswered PracticeMode = "unanswered"
	ModeWrong      PracticeMode = "wrong"
)

// SortKey orders wrong-question review listings.
type SortKey string

const (
	SortByTimestamp SortKey = "timestamp"
	SortByCount     SortKey = "count"
	SortByID        SortKey = "id"
)

// UserProgress tracks which questions a user has seen and missed.
// Wrong membership is sticky: a later correct answer never removes an id.
type UserProgress struct {
	Answered   IDSet       `json:"answered_questions"`
	Wrong      IDSet       `json:"wrong_questions"`
	WrongCount map[int]int `json:"wrong_count"`
}

// NewUserProgress returns an empty, initialized progress record.
func NewUserProgress() UserProgress {
	return UserProgress{
		Answered:   NewIDSet(),
		Wrong:      NewIDSet(),
		WrongCount: make(map[int]int),
	}
}

// MarkAnswered records that the user has answered the question at least once.
func (p *UserProgress) MarkAnswered(id int) {
	p.Answered.Add(id)
}

// MarkWrong records a miss: the id joins both sets and its counter increments.
func (p *UserProgress) MarkWrong(id int) {
	p.Answered.Add(id)
	p.Wrong.Add(id)
	if p.WrongCount == nil {
		p.WrongCount = make(map[int]int)
	}
	p.WrongCount[id]++
}

// Normalize repairs a rehydrated record: nil containers become empty and
// every wrong id is also marked answered.
func (p *UserProgress) Normalize() {
	if p.Answered == nil {
		p.Answered = NewIDSet()
	}
	if p.Wrong == nil {
		p.Wrong = NewIDSet()
	}
	if p.WrongCount == nil {
		p.WrongCount = make(map[int]int)
	}
	for id := range p.Wrong {
		p.Answered.Add(id)
	}
}

// WrongRecord is one append-only ledger entry per incorrect submission.
// Repeats of the same question produce separate records on purpose.
type WrongRecord struct {
	QuestionID      int          `json:"question_id"`
	UserAnswer      Answer       `json:"user_answer"`
	CorrectAnswer   string       `json:"correct_answer"`
	Timestamp       time.Time    `json:"timestamp"`
	QuestionContent string       `json:"question_content"`
	Analysis        string       `json:"analysis"`
	Type            QuestionType `json:"type"`
}

// ExamStatus is a one-way ongoing -> completed transition.
type ExamStatus string

const (
	ExamOngoing   ExamStatus = "ongoing"
	ExamCompleted ExamStatus = "completed"
)

// GradingDetail describes one missed exam question.
type GradingDetail struct {
	QuestionID      int          `json:"question_id"`
	UserAnswer      Answer       `json:"user_answer"`
	CorrectAnswer   string       `json:"correct_answer"`
	QuestionContent string       `json:"question_content"`
	Analysis        string       `json:"analysis"`
	Type            QuestionType `json:"type"`
	Score           int          `json:"score"`
}

// ExamRecord snapshots an exam's composition at creation. Once completed the
// record is immutable history.
type ExamRecord struct {
	ExamID       string          `json:"exam_id"`
	StartTime    time.Time       `json:"start_time"`
	Status       ExamStatus      `json:"status"`
	Questions    []Question      `json:"questions"`
	EndTime      *time.Time      `json:"end_time,omitempty"`
	TotalScore   int             `json:"total_score"`
	WrongAnswers []GradingDetail `json:"wrong_answers,omitempty"`
}

// UserState is everything persisted for one user.
type UserState struct {
	Progress     UserProgress  `json:"progress"`
	WrongRecords []WrongRecord `json:"wrong_records"`
	ExamRecords  []ExamRecord  `json:"exam_records"`
}

// NewUserState returns an initialized empty state for a first-seen user.
func NewUserState() UserState {
	return UserState{Progress: NewUserProgress()}
}

// PracticeResult is the verdict for one practice submission. The correct
// answer and analysis are always revealed, right or wrong.
type PracticeResult struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Analysis      string `json:"analysis"`
}

// ExamSheet is a freshly assembled exam handed to the caller.
type ExamSheet struct {
	ExamID    string     `json:"exam_id"`
	Questions []Question `json:"questions"`
}

// ExamResult is the grading outcome for a completed exam.
type ExamResult struct {
	TotalScore   int             `json:"total_score"`
	WrongAnswers []GradingDetail `json:"wrong_answers"`
}

// WrongQuestionReport buckets a user's ledger by question type.
type WrongQuestionReport struct {
	SingleChoice []WrongRecord `json:"single_choice"`
	MultiChoice  []WrongRecord `json:"multi_choice"`
	TrueFalse    []WrongRecord `json:"true_false"`
}
