package models

import "time"

// ── Formula configuration ───────────────────────────────

// FormulaWeights are the five factor weights of the readiness score.
// They are a scale convention intended to sum to 100, not an enforced
// constraint.
type FormulaWeights struct {
	RecentAccuracy  float64 `json:"recent_accuracy"`
	OverallAccuracy float64 `json:"overall_accuracy"`
	Coverage        float64 `json:"coverage"`
	Mastery         float64 `json:"mastery"`
	TestPassRate    float64 `json:"test_pass_rate"`
}

// PassProbabilityConfig parameterizes the logistic transform:
// probability is exactly 0.5 when the readiness score equals R0.
type PassProbabilityConfig struct {
	K  float64 `json:"k"`
	R0 float64 `json:"r0"`
}

type RecencyPenaltyConfig struct {
	MaxPenalty float64 `json:"max_penalty"`
	DecayRate  float64 `json:"decay_rate"`
}

// CoverageBetaConfig is a three-band risk multiplier keyed by how much
// of a topic's pool the learner has seen.
type CoverageBetaConfig struct {
	Low           float64 `json:"low"`
	Mid           float64 `json:"mid"`
	High          float64 `json:"high"`
	LowThreshold  float64 `json:"low_threshold"`
	HighThreshold float64 `json:"high_threshold"`
}

// BlendConfig controls how per-topic estimated accuracy mixes recent
// and lifetime performance.
type BlendConfig struct {
	MinRecentForBlend int `json:"min_recent_for_blend"`
	RecentWindow      int `json:"recent_window"`
}

type ThresholdsConfig struct {
	MinAttempts            int `json:"min_attempts"`
	MinSubelementAttempts  int `json:"min_subelement_attempts"`
	RecentWindow           int `json:"recent_window"`
	SubelementRecentWindow int `json:"subelement_recent_window"`
	CacheTTLSeconds        int `json:"cache_ttl_seconds"`
}

// ReadinessConfig is the complete, immutable set of tunable constants
// for the scoring engine. Constructed once per request and passed by
// parameter; never read from global state.
type ReadinessConfig struct {
	Weights         FormulaWeights        `json:"formula_weights"`
	PassProbability PassProbabilityConfig `json:"pass_probability"`
	RecencyPenalty  RecencyPenaltyConfig  `json:"recency_penalty"`
	CoverageBeta    CoverageBetaConfig    `json:"coverage_beta"`
	Blend           BlendConfig           `json:"blend"`
	Thresholds      ThresholdsConfig      `json:"thresholds"`
	Version         string                `json:"version"`
}

// ── Derived metrics ─────────────────────────────────────

// ReadinessMetrics is the per-exam snapshot of a learner's raw
// practice history, reduced to the inputs of the readiness formula.
// Accuracy fields are nil when no attempts exist, which is distinct
// from an accuracy of zero.
type ReadinessMetrics struct {
	RecentAccuracy  *float64 `json:"recent_accuracy"`
	OverallAccuracy *float64 `json:"overall_accuracy"`
	Coverage        float64  `json:"coverage"`
	Mastery         float64  `json:"mastery"`
	TestsPassed     int      `json:"tests_passed"`
	TestsTaken      int      `json:"tests_taken"`
	TestPassRate    float64  `json:"test_pass_rate"`
	DaysSinceStudy  float64  `json:"days_since_study"`
	TotalAttempts   int      `json:"total_attempts"`
	UniqueQuestions int      `json:"unique_questions"`
	PoolSize        int      `json:"pool_size"`
}

// SubelementMetric is the per-topic breakdown used to prioritize
// further study. ExpectedScore is the exam points this topic is
// expected to contribute; RiskScore is the points at risk weighted by
// how much the estimate can be trusted.
type SubelementMetric struct {
	Name              string   `json:"name"`
	Accuracy          *float64 `json:"accuracy"`
	RecentAccuracy    *float64 `json:"recent_accuracy"`
	Coverage          float64  `json:"coverage"`
	Mastery           float64  `json:"mastery"`
	EstimatedAccuracy float64  `json:"estimated_accuracy"`
	RiskScore         float64  `json:"risk_score"`
	ExpectedScore     float64  `json:"expected_score"`
	Weight            int      `json:"weight"`
	PoolSize          int      `json:"pool_size"`
	TotalAttempts     int      `json:"total_attempts"`
	RecentAttempts    int      `json:"recent_attempts"`
}

type ReadinessResult struct {
	ReadinessScore    float64 `json:"readiness_score"`
	PassProbability   float64 `json:"pass_probability"`
	RecencyPenalty    float64 `json:"recency_penalty"`
	ExpectedExamScore float64 `json:"expected_exam_score"`
}

// ── Durable records ─────────────────────────────────────

// ReadinessCacheRecord is the one-row-per-(user, exam) cache of the
// last computed result, freshness-gated on CalculatedAt.
type ReadinessCacheRecord struct {
	UserID            int64                       `json:"user_id"`
	ExamType          ExamType                    `json:"exam_type"`
	ReadinessScore    float64                     `json:"readiness_score"`
	PassProbability   float64                     `json:"pass_probability"`
	ExpectedExamScore float64                     `json:"expected_exam_score"`
	Metrics           ReadinessMetrics            `json:"metrics"`
	Subelements       map[string]SubelementMetric `json:"subelements"`
	ConfigVersion     string                      `json:"config_version"`
	CalculatedAt      time.Time                   `json:"calculated_at"`
}

// ReadinessSnapshot is the once-per-day history row behind trend
// display. Upserted fire-and-forget; never blocks a response.
type ReadinessSnapshot struct {
	UserID            int64     `json:"user_id"`
	ExamType          ExamType  `json:"exam_type"`
	SnapshotDate      time.Time `json:"snapshot_date"`
	ReadinessScore    float64   `json:"readiness_score"`
	PassProbability   float64   `json:"pass_probability"`
	ExpectedExamScore float64   `json:"expected_exam_score"`
	TotalAttempts     int       `json:"total_attempts"`
	UniqueQuestions   int       `json:"unique_questions"`
}

// ── API Request/Response Types ──────────────────────────

type ReadinessRequest struct {
	ExamType ExamType `json:"exam_type"`
}

type ReadinessMetricsBlock struct {
	RecentAccuracy  *float64 `json:"recent_accuracy"`
	OverallAccuracy *float64 `json:"overall_accuracy"`
	Coverage        float64  `json:"coverage"`
	Mastery         float64  `json:"mastery"`
	TestsPassed     int      `json:"tests_passed"`
	TestsTaken      int      `json:"tests_taken"`
}

type ReadinessResponse struct {
	Success           bool                        `json:"success"`
	ReadinessScore    float64                     `json:"readiness_score"`
	PassProbability   float64                     `json:"pass_probability"`
	ExpectedExamScore float64                     `json:"expected_exam_score"`
	Metrics           ReadinessMetricsBlock       `json:"metrics"`
	Subelements       map[string]SubelementMetric `json:"subelements,omitempty"`
	ConfigVersion     string                      `json:"config_version"`
	Cached            bool                        `json:"cached,omitempty"`
}

type ReadinessHistoryResponse struct {
	ExamType  ExamType            `json:"exam_type"`
	Snapshots []ReadinessSnapshot `json:"snapshots"`
}
