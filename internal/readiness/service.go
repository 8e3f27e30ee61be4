package readiness

import (
	"log"
	"sort"
	"time"

	"github.com/ham-prep/backend/internal/models"
)

// Service orchestrates the scoring pipeline: config, freshness gate,
// metrics aggregation, the readiness formula, the per-subelement
// breakdown, and the cache/snapshot writes.
type Service struct {
	store       *Store
	config      *ConfigProvider
	aggregator  *Aggregator
	subelements *SubelementCalculator
	cache       *Cache
}

func NewService(store *Store) *Service {
	return &Service{
		store:       store,
		config:      NewConfigProvider(store),
		aggregator:  NewAggregator(store),
		subelements: NewSubelementCalculator(store),
		cache:       NewCache(store),
	}
}

// Outcome is everything the handler needs to build a response.
type Outcome struct {
	Result        models.ReadinessResult
	Metrics       models.ReadinessMetrics
	Subelements   map[string]models.SubelementMetric
	ConfigVersion string
	Cached        bool
}

// GetReadiness runs the full pipeline for one user and exam. It never
// returns an error: every internal failure has already degraded to a
// safe default upstream, because a partial readiness estimate is more
// useful to the learner than a hard failure.
func (s *Service) GetReadiness(userID int64, examType models.ExamType) Outcome {
	cfg := s.config.Load()

	// The freshness gate strictly precedes recomputation: at most one
	// recomputation per TTL window per (user, exam) under normal load.
	if cached := s.cache.CheckFresh(userID, examType, cfg.Thresholds.CacheTTLSeconds); cached != nil {
		return Outcome{
			Result: models.ReadinessResult{
				ReadinessScore:    cached.ReadinessScore,
				PassProbability:   cached.PassProbability,
				ExpectedExamScore: cached.ExpectedExamScore,
			},
			ConfigVersion: cached.ConfigVersion,
			Cached:        true,
		}
	}

	metrics := s.aggregator.Gather(userID, examType, cfg)
	result := Calculate(metrics, cfg)

	// Topics are seeded with the pool, so an empty breakdown means
	// the batched reads failed, not that no topics exist. In that
	// case the last cached breakdown stays untouched and its expected
	// score keeps being served.
	subs := s.subelements.CalculateAll(userID, examType, cfg)
	var prior *CachedResult
	if len(subs) == 0 {
		var err error
		if prior, err = s.store.GetCachedResult(userID, examType); err != nil {
			log.Printf("[readiness] prior cache read failed (user=%d exam=%s): %v", userID, examType, err)
			prior = nil
		}
	}
	result, persist := resolveBreakdown(result, subs, prior)
	if !persist {
		return Outcome{
			Result:        result,
			Metrics:       metrics,
			Subelements:   subs,
			ConfigVersion: cfg.Version,
		}
	}

	now := time.Now().UTC()
	s.cache.Upsert(models.ReadinessCacheRecord{
		UserID:            userID,
		ExamType:          examType,
		ReadinessScore:    result.ReadinessScore,
		PassProbability:   result.PassProbability,
		ExpectedExamScore: result.ExpectedExamScore,
		Metrics:           metrics,
		Subelements:       subs,
		ConfigVersion:     cfg.Version,
		CalculatedAt:      now,
	})

	// Daily snapshot rides a detached goroutine; the response does
	// not wait for it.
	s.cache.SaveSnapshot(models.ReadinessSnapshot{
		UserID:            userID,
		ExamType:          examType,
		SnapshotDate:      now.Truncate(24 * time.Hour),
		ReadinessScore:    result.ReadinessScore,
		PassProbability:   result.PassProbability,
		ExpectedExamScore: result.ExpectedExamScore,
		TotalAttempts:     metrics.TotalAttempts,
		UniqueQuestions:   metrics.UniqueQuestions,
	})

	return Outcome{
		Result:        result,
		Metrics:       metrics,
		Subelements:   subs,
		ConfigVersion: cfg.Version,
	}
}

// resolveBreakdown folds the per-topic breakdown into the result.
// With a computed breakdown the expected score is the sum of topic
// contributions and the result should be persisted. With an empty
// breakdown nothing may be written: the prior cached expected score,
// when one exists, is served instead of a zeroed one.
func resolveBreakdown(result models.ReadinessResult, subs map[string]models.SubelementMetric, prior *CachedResult) (models.ReadinessResult, bool) {
	if len(subs) == 0 {
		if prior != nil {
			result.ExpectedExamScore = prior.ExpectedExamScore
		}
		return result, false
	}
	for _, m := range subs {
		result.ExpectedExamScore += m.ExpectedScore
	}
	return result, true
}

func (s *Service) GetHistory(userID int64, examType models.ExamType, limit int) ([]models.ReadinessSnapshot, error) {
	return s.store.GetSnapshots(userID, examType, limit)
}

// RankedSubelement pairs a topic code with its metric for callers
// that need an ordering rather than a map.
type RankedSubelement struct {
	Code string
	models.SubelementMetric
}

// WeakestSubelements returns up to n topics ordered by descending
// risk score. Used by the study advisor.
func (s *Service) WeakestSubelements(userID int64, examType models.ExamType, n int) []RankedSubelement {
	cfg := s.config.Load()
	subs := s.subelements.CalculateAll(userID, examType, cfg)
	return rankByRisk(subs, n)
}

// rankByRisk orders topics by risk, highest first, breaking ties by
// code so equal-risk topics come out in a stable order.
func rankByRisk(subs map[string]models.SubelementMetric, n int) []RankedSubelement {
	ranked := make([]RankedSubelement, 0, len(subs))
	for code, m := range subs {
		ranked = append(ranked, RankedSubelement{Code: code, SubelementMetric: m})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].RiskScore != ranked[j].RiskScore {
			return ranked[i].RiskScore > ranked[j].RiskScore
		}
		return ranked[i].Code < ranked[j].Code
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
