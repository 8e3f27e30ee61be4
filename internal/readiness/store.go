package readiness

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ham-prep/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Attempt is the slice of a practice-attempt row the engine needs.
type Attempt struct {
	QuestionID  string
	Correct     bool
	AttemptedAt time.Time
}

// ── Raw history reads ───────────────────────────────────

func (s *Store) GetPoolSize(examType models.ExamType) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*)
		 FROM questions q
		 JOIN subelements se ON se.code = q.subelement_code
		 WHERE se.exam_type = $1`,
		examType,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pool size: %w", err)
	}
	return count, nil
}

// GetAttempts returns all of a user's practice attempts for one exam
// pool, newest first. Callers slice this for recent-window math, so
// the ordering is part of the contract.
func (s *Store) GetAttempts(userID int64, examType models.ExamType) ([]Attempt, error) {
	rows, err := s.db.Query(
		`SELECT question_id, correct, attempted_at
		 FROM practice_attempts
		 WHERE user_id = $1 AND question_id LIKE $2
		 ORDER BY attempted_at DESC, id DESC`,
		userID, examType.Prefix()+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.QuestionID, &a.Correct, &a.AttemptedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func (s *Store) CountMastered(userID int64, examType models.ExamType) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*)
		 FROM question_mastery
		 WHERE user_id = $1 AND question_id LIKE $2 AND times_correct >= 2`,
		userID, examType.Prefix()+"%",
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("mastered count: %w", err)
	}
	return count, nil
}

func (s *Store) GetTestCounts(userID int64, examType models.ExamType) (taken, passed int, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE passed)
		 FROM practice_test_results
		 WHERE user_id = $1 AND exam_type = $2`,
		userID, examType,
	).Scan(&taken, &passed)
	if err != nil {
		return 0, 0, fmt.Errorf("test counts: %w", err)
	}
	return taken, passed, nil
}

// ── Subelement reference reads ──────────────────────────

func (s *Store) GetSubelements(examType models.ExamType) ([]models.Subelement, error) {
	rows, err := s.db.Query(
		`SELECT code, exam_type, name, exam_questions
		 FROM subelements WHERE exam_type = $1 ORDER BY code`,
		examType,
	)
	if err != nil {
		return nil, fmt.Errorf("subelements: %w", err)
	}
	defer rows.Close()

	var subs []models.Subelement
	for rows.Next() {
		var se models.Subelement
		if err := rows.Scan(&se.Code, &se.ExamType, &se.Name, &se.ExamQuestions); err != nil {
			return nil, fmt.Errorf("scan subelement: %w", err)
		}
		subs = append(subs, se)
	}
	return subs, rows.Err()
}

// GetQuestionTopics returns the question ID → subelement code map for
// an exam pool. Per-topic pool sizes fall out of this map, so no
// separate count query is needed.
func (s *Store) GetQuestionTopics(examType models.ExamType) (map[string]string, error) {
	rows, err := s.db.Query(
		`SELECT q.id, q.subelement_code
		 FROM questions q
		 JOIN subelements se ON se.code = q.subelement_code
		 WHERE se.exam_type = $1`,
		examType,
	)
	if err != nil {
		return nil, fmt.Errorf("question topics: %w", err)
	}
	defer rows.Close()

	topics := make(map[string]string)
	for rows.Next() {
		var id, code string
		if err := rows.Scan(&id, &code); err != nil {
			return nil, fmt.Errorf("scan question topic: %w", err)
		}
		topics[id] = code
	}
	return topics, rows.Err()
}

func (s *Store) GetMasteredQuestionIDs(userID int64, examType models.ExamType) (map[string]bool, error) {
	rows, err := s.db.Query(
		`SELECT question_id
		 FROM question_mastery
		 WHERE user_id = $1 AND question_id LIKE $2 AND times_correct >= 2`,
		userID, examType.Prefix()+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("mastered ids: %w", err)
	}
	defer rows.Close()

	mastered := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan mastered id: %w", err)
		}
		mastered[id] = true
	}
	return mastered, rows.Err()
}

// ── Config rows ─────────────────────────────────────────

func (s *Store) GetConfigRows() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM readiness_config`)
	if err != nil {
		return nil, fmt.Errorf("config rows: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan config row: %w", err)
		}
		values[k] = v
	}
	return values, rows.Err()
}

// ── Cache & snapshots ───────────────────────────────────

// CachedResult is the slim view the freshness gate reads: the three
// response scalars plus the timestamp it is gated on.
type CachedResult struct {
	ReadinessScore    float64
	PassProbability   float64
	ExpectedExamScore float64
	ConfigVersion     string
	CalculatedAt      time.Time
}

func (s *Store) GetCachedResult(userID int64, examType models.ExamType) (*CachedResult, error) {
	var c CachedResult
	err := s.db.QueryRow(
		`SELECT readiness_score, pass_probability, expected_exam_score, config_version, calculated_at
		 FROM readiness_cache
		 WHERE user_id = $1 AND exam_type = $2`,
		userID, examType,
	).Scan(&c.ReadinessScore, &c.PassProbability, &c.ExpectedExamScore, &c.ConfigVersion, &c.CalculatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cached result: %w", err)
	}
	return &c, nil
}

func (s *Store) UpsertCache(rec models.ReadinessCacheRecord) error {
	metricsJSON, err := json.Marshal(rec.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	subsJSON, err := json.Marshal(rec.Subelements)
	if err != nil {
		return fmt.Errorf("marshal subelements: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO readiness_cache
		 (user_id, exam_type, readiness_score, pass_probability, expected_exam_score,
		  metrics, subelements, config_version, calculated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id, exam_type)
		 DO UPDATE SET readiness_score = $3, pass_probability = $4, expected_exam_score = $5,
		               metrics = $6, subelements = $7, config_version = $8, calculated_at = $9`,
		rec.UserID, rec.ExamType, rec.ReadinessScore, rec.PassProbability, rec.ExpectedExamScore,
		metricsJSON, subsJSON, rec.ConfigVersion, rec.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert cache: %w", err)
	}
	return nil
}

func (s *Store) UpsertSnapshot(snap models.ReadinessSnapshot) error {
	_, err := s.db.Exec(
		`INSERT INTO readiness_snapshots
		 (user_id, exam_type, snapshot_date, readiness_score, pass_probability,
		  expected_exam_score, total_attempts, unique_questions)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, exam_type, snapshot_date)
		 DO UPDATE SET readiness_score = $4, pass_probability = $5, expected_exam_score = $6,
		               total_attempts = $7, unique_questions = $8`,
		snap.UserID, snap.ExamType, snap.SnapshotDate, snap.ReadinessScore, snap.PassProbability,
		snap.ExpectedExamScore, snap.TotalAttempts, snap.UniqueQuestions,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (s *Store) GetSnapshots(userID int64, examType models.ExamType, limit int) ([]models.ReadinessSnapshot, error) {
	rows, err := s.db.Query(
		`SELECT user_id, exam_type, snapshot_date, readiness_score, pass_probability,
		        expected_exam_score, total_attempts, unique_questions
		 FROM readiness_snapshots
		 WHERE user_id = $1 AND exam_type = $2
		 ORDER BY snapshot_date DESC
		 LIMIT $3`,
		userID, examType, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []models.ReadinessSnapshot
	for rows.Next() {
		var sn models.ReadinessSnapshot
		if err := rows.Scan(&sn.UserID, &sn.ExamType, &sn.SnapshotDate, &sn.ReadinessScore,
			&sn.PassProbability, &sn.ExpectedExamScore, &sn.TotalAttempts, &sn.UniqueQuestions); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, sn)
	}
	return snaps, rows.Err()
}
