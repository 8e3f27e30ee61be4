package models

// ── API Request/Response Types ──────────────────────────

type AnswerRequest struct {
	QuestionID     string `json:"question_id"`
	SelectedAnswer string `json:"selected_answer"`
}

type AnswerResponse struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Mastered      bool   `json:"mastered"`
}

type PracticeTestRequest struct {
	ExamType ExamType `json:"exam_type"`
	Score    int      `json:"score"`
	Total    int      `json:"total"`
}

type PracticeTestResponse struct {
	Passed bool `json:"passed"`
	Score  int  `json:"score"`
	Total  int  `json:"total"`
}

type PracticeStatsResponse struct {
	TotalAttempts   int      `json:"total_attempts"`
	CorrectAttempts int      `json:"correct_attempts"`
	Accuracy        *float64 `json:"accuracy"`
	UniqueQuestions int      `json:"unique_questions"`
	MasteredCount   int      `json:"mastered_count"`
	TestsTaken      int      `json:"tests_taken"`
	TestsPassed     int      `json:"tests_passed"`
}

// PassingThreshold is the fraction of questions that must be answered
// correctly on a real exam (26/35 and 37/50 both round to 74%).
const PassingThreshold = 0.74

// Passed reports whether a score clears the exam passing threshold.
func Passed(score, total int) bool {
	if total <= 0 {
		return false
	}
	return float64(score)/float64(total) >= PassingThreshold
}
