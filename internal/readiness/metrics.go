package readiness

import (
	"log"
	"time"

	"github.com/ham-prep/backend/internal/models"
)

// staleDaysDefault is assumed when a user has no attempt history at
// all: no data is treated the same as not having studied in a month.
const staleDaysDefault = 30

// Aggregator reduces a user's raw practice history for one exam to
// the compact metrics record the readiness formula consumes.
type Aggregator struct {
	store *Store
}

func NewAggregator(store *Store) *Aggregator {
	return &Aggregator{store: store}
}

// Gather never fails: each store read that errors is logged and
// replaced by a safe default for just that metric, so a flaky read
// degrades one input instead of the whole response.
func (a *Aggregator) Gather(userID int64, examType models.ExamType, cfg models.ReadinessConfig) models.ReadinessMetrics {
	poolSize, err := a.store.GetPoolSize(examType)
	poolSize = fallback(poolSize, err, 0, userID, examType, "pool size")
	if poolSize == 0 {
		// Nothing else is computable against an empty pool, and
		// dividing by it must never happen. The record stays all
		// zero so no synthetic staleness is persisted with it.
		return models.ReadinessMetrics{}
	}

	attempts, err := a.store.GetAttempts(userID, examType)
	attempts = fallback(attempts, err, nil, userID, examType, "attempts")

	recent := accuracyOf(firstN(attempts, cfg.Thresholds.RecentWindow))
	overall := accuracyOf(attempts)
	unique := uniqueQuestionCount(attempts)

	mastered, err := a.store.CountMastered(userID, examType)
	mastered = fallback(mastered, err, 0, userID, examType, "mastered count")

	taken, passed, err := a.store.GetTestCounts(userID, examType)
	if err != nil {
		log.Printf("[readiness] test counts read failed (user=%d exam=%s): %v, using zero", userID, examType, err)
		taken, passed = 0, 0
	}

	passRate := 0.0
	if taken > 0 {
		passRate = float64(passed) / float64(taken)
	}

	return models.ReadinessMetrics{
		RecentAccuracy:  recent,
		OverallAccuracy: overall,
		Coverage:        float64(unique) / float64(poolSize),
		Mastery:         float64(mastered) / float64(poolSize),
		TestsPassed:     passed,
		TestsTaken:      taken,
		TestPassRate:    passRate,
		DaysSinceStudy:  daysSinceLastStudy(attempts, time.Now().UTC()),
		TotalAttempts:   len(attempts),
		UniqueQuestions: unique,
		PoolSize:        poolSize,
	}
}

// fallback is the uniform fallible-read adapter: it returns val
// unless the read failed, in which case the failure is logged with
// enough context to diagnose later and def is substituted.
func fallback[T any](val T, err error, def T, userID int64, examType models.ExamType, read string) T {
	if err != nil {
		log.Printf("[readiness] %s read failed (user=%d exam=%s): %v, using default", read, userID, examType, err)
		return def
	}
	return val
}

// ── Pure reductions over attempt history ────────────────

// accuracyOf returns nil when there are no attempts: "no data yet" is
// not the same as an accuracy of zero.
func accuracyOf(attempts []Attempt) *float64 {
	if len(attempts) == 0 {
		return nil
	}
	correct := 0
	for _, a := range attempts {
		if a.Correct {
			correct++
		}
	}
	acc := float64(correct) / float64(len(attempts))
	return &acc
}

// firstN slices the newest n attempts. Attempts are stored newest
// first, so this is the recent window.
func firstN(attempts []Attempt, n int) []Attempt {
	if n < 0 {
		n = 0
	}
	if len(attempts) <= n {
		return attempts
	}
	return attempts[:n]
}

func uniqueQuestionCount(attempts []Attempt) int {
	seen := make(map[string]bool, len(attempts))
	for _, a := range attempts {
		seen[a.QuestionID] = true
	}
	return len(seen)
}

func daysSinceLastStudy(attempts []Attempt, now time.Time) float64 {
	if len(attempts) == 0 {
		return staleDaysDefault
	}
	days := now.Sub(attempts[0].AttemptedAt).Hours() / 24
	if days < 0 {
		return 0
	}
	return days
}
