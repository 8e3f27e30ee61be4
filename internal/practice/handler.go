package practice

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/ham-prep/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers practice endpoints on the protected subrouter.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/practice/questions", h.GetQuestions).Methods("GET")
	protected.HandleFunc("/practice/answer", h.SubmitAnswer).Methods("POST")
	protected.HandleFunc("/practice/tests", h.SubmitTest).Methods("POST")
	protected.HandleFunc("/practice/stats", h.GetStats).Methods("GET")
}

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(r); !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	examType := models.ExamType(r.URL.Query().Get("exam_type"))
	if !models.ValidExamTypes[examType] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "exam_type must be 'technician', 'general', or 'extra'"})
		return
	}

	count := 10
	if v := r.URL.Query().Get("count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			count = n
		}
	}

	questions, err := h.store.GetStudyQuestions(examType, count)
	if err != nil {
		log.Printf("[practice] GetQuestions error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get questions"})
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}

	for _, q := range questions {
		if err := h.store.IncrementServed(q.ID); err != nil {
			log.Printf("[practice] increment served failed for %s: %v", q.ID, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.QuestionID == "" || req.SelectedAnswer == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "question_id and selected_answer are required"})
		return
	}

	question, err := h.store.GetQuestion(req.QuestionID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question not found"})
		return
	}

	correct := req.SelectedAnswer == question.CorrectAnswer

	if err := h.store.RecordAttempt(userID, question.ID, correct); err != nil {
		log.Printf("[practice] SubmitAnswer record error (user=%d question=%s): %v", userID, question.ID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to record answer"})
		return
	}

	timesCorrect, err := h.store.UpsertMastery(userID, question.ID, correct)
	if err != nil {
		// The attempt row is already in; mastery lags by one answer at worst
		log.Printf("[practice] mastery update failed (user=%d question=%s): %v", userID, question.ID, err)
	}

	writeJSON(w, http.StatusOK, models.AnswerResponse{
		Correct:       correct,
		CorrectAnswer: question.CorrectAnswer,
		Mastered:      timesCorrect >= 2,
	})
}

func (h *Handler) SubmitTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.PracticeTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if !models.ValidExamTypes[req.ExamType] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "exam_type must be 'technician', 'general', or 'extra'"})
		return
	}
	if req.Total <= 0 || req.Score < 0 || req.Score > req.Total {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "score must be between 0 and total"})
		return
	}

	passed := models.Passed(req.Score, req.Total)

	if err := h.store.RecordTestResult(userID, req.ExamType, req.Score, req.Total, passed); err != nil {
		log.Printf("[practice] SubmitTest error (user=%d exam=%s): %v", userID, req.ExamType, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to record test result"})
		return
	}

	writeJSON(w, http.StatusCreated, models.PracticeTestResponse{
		Passed: passed,
		Score:  req.Score,
		Total:  req.Total,
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	examType := models.ExamType(r.URL.Query().Get("exam_type"))
	if !models.ValidExamTypes[examType] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "exam_type must be 'technician', 'general', or 'extra'"})
		return
	}

	stats, err := h.store.GetStats(userID, examType)
	if err != nil {
		log.Printf("[practice] GetStats error (user=%d exam=%s): %v", userID, examType, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get stats"})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
