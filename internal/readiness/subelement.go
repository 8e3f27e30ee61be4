package readiness

import (
	"log"

	"github.com/ham-prep/backend/internal/models"
)

// SubelementCalculator produces the per-topic breakdown. It issues a
// fixed number of batched reads regardless of topic or question count
// and does all grouping in memory, so there is no N+1 query pattern
// across the dozens of subelements in a pool.
type SubelementCalculator struct {
	store *Store
}

func NewSubelementCalculator(store *Store) *SubelementCalculator {
	return &SubelementCalculator{store: store}
}

// subelementData is the raw material for the in-memory join: four
// batched reads, nothing else.
type subelementData struct {
	subelements   []models.Subelement
	questionTopic map[string]string // question ID → subelement code
	attempts      []Attempt         // newest first
	mastered      map[string]bool   // question IDs answered correctly twice
}

// CalculateAll returns one metric per subelement of the exam. If any
// of the batched reads fails the whole result is an empty map:
// partially-joined topic data would be inconsistent, and callers
// treat an empty map as "could not compute".
func (c *SubelementCalculator) CalculateAll(userID int64, examType models.ExamType, cfg models.ReadinessConfig) map[string]models.SubelementMetric {
	data, err := c.fetch(userID, examType)
	if err != nil {
		log.Printf("[readiness] subelement fetch failed (user=%d exam=%s): %v", userID, examType, err)
		return map[string]models.SubelementMetric{}
	}
	return computeSubelementMetrics(data, cfg)
}

func (c *SubelementCalculator) fetch(userID int64, examType models.ExamType) (*subelementData, error) {
	subs, err := c.store.GetSubelements(examType)
	if err != nil {
		return nil, err
	}
	topics, err := c.store.GetQuestionTopics(examType)
	if err != nil {
		return nil, err
	}
	attempts, err := c.store.GetAttempts(userID, examType)
	if err != nil {
		return nil, err
	}
	mastered, err := c.store.GetMasteredQuestionIDs(userID, examType)
	if err != nil {
		return nil, err
	}
	return &subelementData{
		subelements:   subs,
		questionTopic: topics,
		attempts:      attempts,
		mastered:      mastered,
	}, nil
}

// computeSubelementMetrics is the pure join-and-fold over the fetched
// data. Each lookup map is built exactly once.
func computeSubelementMetrics(data *subelementData, cfg models.ReadinessConfig) map[string]models.SubelementMetric {
	poolByTopic := make(map[string]int)
	masteredByTopic := make(map[string]int)
	for qid, code := range data.questionTopic {
		poolByTopic[code]++
		if data.mastered[qid] {
			masteredByTopic[code]++
		}
	}

	// Attempts arrive newest first; appending preserves that order
	// within each topic, which the recent-window slice depends on.
	attemptsByTopic := make(map[string][]Attempt)
	uniqueByTopic := make(map[string]map[string]bool)
	for _, a := range data.attempts {
		code, ok := data.questionTopic[a.QuestionID]
		if !ok {
			continue
		}
		attemptsByTopic[code] = append(attemptsByTopic[code], a)
		if uniqueByTopic[code] == nil {
			uniqueByTopic[code] = make(map[string]bool)
		}
		uniqueByTopic[code][a.QuestionID] = true
	}

	result := make(map[string]models.SubelementMetric, len(data.subelements))
	for _, se := range data.subelements {
		attempts := attemptsByTopic[se.Code]
		recent := firstN(attempts, cfg.Thresholds.SubelementRecentWindow)
		poolSize := poolByTopic[se.Code]

		coverage := 0.0
		mastery := 0.0
		if poolSize > 0 {
			coverage = float64(len(uniqueByTopic[se.Code])) / float64(poolSize)
			mastery = float64(masteredByTopic[se.Code]) / float64(poolSize)
		}

		est := blendedAccuracy(len(recent), accuracyOf(recent), accuracyOf(attempts), cfg.Blend)
		beta := coverageBeta(coverage, cfg.CoverageBeta)
		weight := float64(se.ExamQuestions)

		result[se.Code] = models.SubelementMetric{
			Name:              se.Name,
			Accuracy:          accuracyOf(attempts),
			RecentAccuracy:    accuracyOf(recent),
			Coverage:          coverage,
			Mastery:           mastery,
			EstimatedAccuracy: est,
			RiskScore:         weight * (1 - est) * beta,
			ExpectedScore:     weight * est,
			Weight:            se.ExamQuestions,
			PoolSize:          poolSize,
			TotalAttempts:     len(attempts),
			RecentAttempts:    len(recent),
		}
	}
	return result
}

// blendedAccuracy is the confidence blend: with a full recent window
// the recent accuracy stands alone; with too little recent data the
// lifetime accuracy stands alone; in between they mix linearly by how
// much of the window is filled. Nil accuracies count as zero here.
func blendedAccuracy(recentCount int, recent, overall *float64, cfg models.BlendConfig) float64 {
	r := orZero(recent)
	o := orZero(overall)
	switch {
	case recentCount >= cfg.RecentWindow:
		return r
	case recentCount >= cfg.MinRecentForBlend:
		alpha := float64(recentCount) / float64(cfg.RecentWindow)
		return alpha*r + (1-alpha)*o
	default:
		return o
	}
}

// coverageBeta inflates risk for under-practiced topics, where few
// samples understate the true risk, and discounts well-covered ones.
// The high band is boundary-inclusive.
func coverageBeta(coverage float64, cfg models.CoverageBetaConfig) float64 {
	switch {
	case coverage < cfg.LowThreshold:
		return cfg.Low
	case coverage >= cfg.HighThreshold:
		return cfg.High
	default:
		return cfg.Mid
	}
}
