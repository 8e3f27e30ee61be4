package practice

import (
	"database/sql"
	"fmt"

	"github.com/ham-prep/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetQuestion(questionID string) (*models.Question, error) {
	var q models.Question
	err := s.db.QueryRow(
		`SELECT id, subelement_code, question_text, answer_a, answer_b, answer_c, answer_d,
		        correct_answer, times_served, created_at
		 FROM questions WHERE id = $1`,
		questionID,
	).Scan(&q.ID, &q.SubelementCode, &q.QuestionText, &q.AnswerA, &q.AnswerB, &q.AnswerC,
		&q.AnswerD, &q.CorrectAnswer, &q.TimesServed, &q.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return &q, nil
}

// GetStudyQuestions serves the least-served questions of an exam pool
// so fresh material rotates in evenly.
func (s *Store) GetStudyQuestions(examType models.ExamType, count int) ([]models.Question, error) {
	rows, err := s.db.Query(
		`SELECT q.id, q.subelement_code, q.question_text, q.answer_a, q.answer_b, q.answer_c,
		        q.answer_d, q.correct_answer, q.times_served, q.created_at
		 FROM questions q
		 JOIN subelements se ON se.code = q.subelement_code
		 WHERE se.exam_type = $1
		 ORDER BY q.times_served ASC, q.id
		 LIMIT $2`,
		examType, count,
	)
	if err != nil {
		return nil, fmt.Errorf("get study questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.SubelementCode, &q.QuestionText, &q.AnswerA, &q.AnswerB,
			&q.AnswerC, &q.AnswerD, &q.CorrectAnswer, &q.TimesServed, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) IncrementServed(questionID string) error {
	_, err := s.db.Exec(`UPDATE questions SET times_served = times_served + 1 WHERE id = $1`, questionID)
	return err
}

func (s *Store) RecordAttempt(userID int64, questionID string, correct bool) error {
	_, err := s.db.Exec(
		`INSERT INTO practice_attempts (user_id, question_id, correct) VALUES ($1, $2, $3)`,
		userID, questionID, correct,
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// UpsertMastery bumps the per-question correct/wrong counters and
// returns the updated correct count. Two correct answers mark a
// question mastered, which feeds the readiness engine's mastery ratio.
func (s *Store) UpsertMastery(userID int64, questionID string, correct bool) (int, error) {
	correctInc, wrongInc := 0, 0
	if correct {
		correctInc = 1
	} else {
		wrongInc = 1
	}

	var timesCorrect int
	err := s.db.QueryRow(
		`INSERT INTO question_mastery (user_id, question_id, times_correct, times_wrong, last_seen_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (user_id, question_id)
		 DO UPDATE SET times_correct = question_mastery.times_correct + $3,
		               times_wrong = question_mastery.times_wrong + $4,
		               last_seen_at = NOW()
		 RETURNING times_correct`,
		userID, questionID, correctInc, wrongInc,
	).Scan(&timesCorrect)
	if err != nil {
		return 0, fmt.Errorf("upsert mastery: %w", err)
	}
	return timesCorrect, nil
}

func (s *Store) RecordTestResult(userID int64, examType models.ExamType, score, total int, passed bool) error {
	_, err := s.db.Exec(
		`INSERT INTO practice_test_results (user_id, exam_type, score, total, passed)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, examType, score, total, passed,
	)
	if err != nil {
		return fmt.Errorf("record test result: %w", err)
	}
	return nil
}

func (s *Store) GetStats(userID int64, examType models.ExamType) (*models.PracticeStatsResponse, error) {
	prefix := examType.Prefix() + "%"
	stats := &models.PracticeStatsResponse{}

	var correct int
	err := s.db.QueryRow(
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE correct), COUNT(DISTINCT question_id)
		 FROM practice_attempts
		 WHERE user_id = $1 AND question_id LIKE $2`,
		userID, prefix,
	).Scan(&stats.TotalAttempts, &correct, &stats.UniqueQuestions)
	if err != nil {
		return nil, fmt.Errorf("attempt stats: %w", err)
	}
	stats.CorrectAttempts = correct
	if stats.TotalAttempts > 0 {
		acc := float64(correct) / float64(stats.TotalAttempts)
		stats.Accuracy = &acc
	}

	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM question_mastery
		 WHERE user_id = $1 AND question_id LIKE $2 AND times_correct >= 2`,
		userID, prefix,
	).Scan(&stats.MasteredCount)
	if err != nil {
		return nil, fmt.Errorf("mastery stats: %w", err)
	}

	err = s.db.QueryRow(
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE passed)
		 FROM practice_test_results
		 WHERE user_id = $1 AND exam_type = $2`,
		userID, examType,
	).Scan(&stats.TestsTaken, &stats.TestsPassed)
	if err != nil {
		return nil, fmt.Errorf("test stats: %w", err)
	}

	return stats, nil
}
