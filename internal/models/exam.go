package models

import "time"

type ExamType string

const (
	ExamTechnician ExamType = "technician"
	ExamGeneral    ExamType = "general"
	ExamExtra      ExamType = "extra"
)

var ValidExamTypes = map[ExamType]bool{
	ExamTechnician: true,
	ExamGeneral:    true,
	ExamExtra:      true,
}

// Prefix returns the question-ID prefix for the exam's pool
// (e.g. all Technician questions are numbered T1A01..T0C13).
func (e ExamType) Prefix() string {
	switch e {
	case ExamTechnician:
		return "T"
	case ExamGeneral:
		return "G"
	case ExamExtra:
		return "E"
	}
	return ""
}

// Subelement is a syllabus subdivision within one exam's question pool.
// ExamQuestions is how many questions from this subelement appear on a
// real exam; it doubles as the topic's weight in readiness scoring.
type Subelement struct {
	Code          string   `json:"code"`
	ExamType      ExamType `json:"exam_type"`
	Name          string   `json:"name"`
	ExamQuestions int      `json:"exam_questions"`
}

type Question struct {
	ID             string    `json:"id"`
	SubelementCode string    `json:"subelement_code"`
	QuestionText   string    `json:"question_text"`
	AnswerA        string    `json:"answer_a"`
	AnswerB        string    `json:"answer_b"`
	AnswerC        string    `json:"answer_c"`
	AnswerD        string    `json:"answer_d"`
	CorrectAnswer  string    `json:"correct_answer"`
	TimesServed    int       `json:"times_served"`
	CreatedAt      time.Time `json:"created_at"`
}

type PracticeAttempt struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	QuestionID  string    `json:"question_id"`
	Correct     bool      `json:"correct"`
	AttemptedAt time.Time `json:"attempted_at"`
}

// QuestionMastery tracks per-question correct counts. A question is
// considered mastered once it has been answered correctly twice.
type QuestionMastery struct {
	UserID       int64     `json:"user_id"`
	QuestionID   string    `json:"question_id"`
	TimesCorrect int       `json:"times_correct"`
	TimesWrong   int       `json:"times_wrong"`
	LastSeenAt   time.Time `json:"last_seen_at"`
}

type PracticeTestResult struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	ExamType ExamType  `json:"exam_type"`
	Score    int       `json:"score"`
	Total    int       `json:"total"`
	Passed   bool      `json:"passed"`
	TakenAt  time.Time `json:"taken_at"`
}
