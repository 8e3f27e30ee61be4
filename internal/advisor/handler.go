package advisor

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ham-prep/backend/internal/models"
)

type Handler struct {
	advisor *Advisor
}

func NewHandler(advisor *Advisor) *Handler {
	return &Handler{advisor: advisor}
}

// RegisterRoutes registers advisor endpoints on the protected subrouter.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/readiness/{examType}/advice", h.GetAdvice).Methods("GET")
}

func (h *Handler) GetAdvice(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	examType := models.ExamType(mux.Vars(r)["examType"])
	if !models.ValidExamTypes[examType] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "exam_type must be 'technician', 'general', or 'extra'"})
		return
	}

	advice, err := h.advisor.StudyAdvice(r.Context(), userID, examType)
	if err != nil {
		log.Printf("[advisor] GetAdvice error (user=%d exam=%s): %v", userID, examType, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate study advice"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"advice": advice})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
