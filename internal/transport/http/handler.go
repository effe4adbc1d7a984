package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/MegatronPika/question-bank-system/internal/app"
	"github.com/MegatronPika/question-bank-system/internal/domain"
)

// Handler exposes the trainer use cases over a JSON API. The caller's
// identity comes from the X-User-ID header (or ?user=); authentication
// itself lives outside this service.
type Handler struct {
	service *app.TrainerService
}

func NewHandler(service *app.TrainerService) *Handler {
	return &Handler{service: service}
}

// Register attaches all routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/practice/question", h.PracticeQuestion)
	mux.HandleFunc("/api/practice/answer", h.PracticeAnswer)
	mux.HandleFunc("/api/exam/start", h.StartExam)
	mux.HandleFunc("/api/exam/submit", h.SubmitExam)
	mux.HandleFunc("/api/wrong-questions", h.WrongQuestions)
}

// questionPayload is the client-facing question shape: the correct answer
// and analysis stay server-side until a verdict is returned.
type questionPayload struct {
	ID      int                 `json:"id"`
	Content string              `json:"content"`
	Options []domain.Option     `json:"options,omitempty"`
	Type    domain.QuestionType `json:"type"`
	Score   int                 `json:"score"`
}

func toQuestionPayload(q domain.Question) questionPayload {
	return questionPayload{
		ID:      q.ID,
		Content: q.Content,
		Options: q.Options,
		Type:    q.Type,
		Score:   q.Score,
	}
}

type errorPayload struct {
	Error string `json:"error"`
}

func (h *Handler) PracticeQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Mode domain.PracticeMode `json:"mode"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Mode == "" {
		req.Mode = domain.ModeAll
	}

	question, err := h.service.SelectPracticeQuestion(r.Context(), userID, req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuestionPayload(question))
}

func (h *Handler) PracticeAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		QuestionID int           `json:"question_id"`
		Answer     domain.Answer `json:"answer"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.SubmitPracticeAnswer(r.Context(), userID, req.QuestionID, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) StartExam(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	sheet, err := h.service.StartExam(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := struct {
		ExamID    string            `json:"exam_id"`
		Questions []questionPayload `json:"questions"`
	}{ExamID: sheet.ExamID}
	for _, q := range sheet.Questions {
		payload.Questions = append(payload.Questions, toQuestionPayload(q))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) SubmitExam(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		ExamID  string                   `json:"exam_id"`
		Answers map[string]domain.Answer `json:"answers"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.SubmitExam(r.Context(), userID, req.ExamID, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) WrongQuestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		SortBy domain.SortKey `json:"sort_by"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SortBy == "" {
		req.SortBy = domain.SortByTimestamp
	}

	report, err := h.service.ListWrongQuestions(r.Context(), userID, req.SortBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = r.URL.Query().Get("user")
	}
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "missing user id"})
		return "", false
	}
	return userID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid request body"})
		return false
	}
	return true
}

// writeError maps business failures to 4xx payloads; anything else is an
// infrastructure fault, logged and surfaced generically.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrExamNotFound),
		errors.Is(err, domain.ErrBankNotFound):
		writeJSON(w, http.StatusNotFound, errorPayload{Error: err.Error()})
	case errors.Is(err, domain.ErrExhaustedPool),
		errors.Is(err, domain.ErrNoWrongHistory),
		errors.Is(err, domain.ErrInsufficientBank):
		writeJSON(w, http.StatusConflict, errorPayload{Error: err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}
