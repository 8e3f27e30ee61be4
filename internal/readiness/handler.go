package readiness

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/ham-prep/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers readiness endpoints on the protected subrouter.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/readiness", h.GetReadiness).Methods("POST")
	protected.HandleFunc("/readiness/{examType}/history", h.GetHistory).Methods("GET")
}

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

// GetReadiness is the one synchronous scoring endpoint. Only auth and
// validation failures surface as errors; everything downstream
// degrades to a best-effort answer.
func (h *Handler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	defer recoverInternal(w)

	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.ReadinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if !models.ValidExamTypes[req.ExamType] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "exam_type must be 'technician', 'general', or 'extra'"})
		return
	}

	out := h.service.GetReadiness(userID, req.ExamType)

	writeJSON(w, http.StatusOK, models.ReadinessResponse{
		Success:           true,
		ReadinessScore:    out.Result.ReadinessScore,
		PassProbability:   out.Result.PassProbability,
		ExpectedExamScore: out.Result.ExpectedExamScore,
		Metrics: models.ReadinessMetricsBlock{
			RecentAccuracy:  out.Metrics.RecentAccuracy,
			OverallAccuracy: out.Metrics.OverallAccuracy,
			Coverage:        out.Metrics.Coverage,
			Mastery:         out.Metrics.Mastery,
			TestsPassed:     out.Metrics.TestsPassed,
			TestsTaken:      out.Metrics.TestsTaken,
		},
		Subelements:   out.Subelements,
		ConfigVersion: out.ConfigVersion,
		Cached:        out.Cached,
	})
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	defer recoverInternal(w)

	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	examType := models.ExamType(mux.Vars(r)["examType"])
	if !models.ValidExamTypes[examType] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "exam_type must be 'technician', 'general', or 'extra'"})
		return
	}

	limit := 30
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 365 {
			limit = n
		}
	}

	snaps, err := h.service.GetHistory(userID, examType, limit)
	if err != nil {
		log.Printf("[readiness] GetHistory error (user=%d exam=%s): %v", userID, examType, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get readiness history"})
		return
	}
	if snaps == nil {
		snaps = []models.ReadinessSnapshot{}
	}

	writeJSON(w, http.StatusOK, models.ReadinessHistoryResponse{
		ExamType:  examType,
		Snapshots: snaps,
	})
}

// recoverInternal turns a panic anywhere in the scoring path into a
// generic internal failure carrying a correlation ID that also lands
// in the log line.
func recoverInternal(w http.ResponseWriter) {
	if rec := recover(); rec != nil {
		ref := uuid.NewString()
		log.Printf("[readiness] unexpected failure ref=%s: %v", ref, rec)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal error (ref: " + ref + ")"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
