package readiness

import (
	"log"
	"strconv"

	"github.com/ham-prep/backend/internal/models"
)

// DefaultConfig returns the embedded reference configuration. The
// five weights sum to 100; pass probability is 50% at a score of 65.
func DefaultConfig() models.ReadinessConfig {
	return models.ReadinessConfig{
		Weights: models.FormulaWeights{
			RecentAccuracy:  35,
			OverallAccuracy: 20,
			Coverage:        15,
			Mastery:         15,
			TestPassRate:    15,
		},
		PassProbability: models.PassProbabilityConfig{
			K:  0.15,
			R0: 65,
		},
		RecencyPenalty: models.RecencyPenaltyConfig{
			MaxPenalty: 10,
			DecayRate:  0.5,
		},
		CoverageBeta: models.CoverageBetaConfig{
			Low:           1.2,
			Mid:           1.0,
			High:          0.9,
			LowThreshold:  0.3,
			HighThreshold: 0.7,
		},
		Blend: models.BlendConfig{
			MinRecentForBlend: 5,
			RecentWindow:      20,
		},
		Thresholds: models.ThresholdsConfig{
			MinAttempts:            10,
			MinSubelementAttempts:  3,
			RecentWindow:           20,
			SubelementRecentWindow: 20,
			CacheTTLSeconds:        30,
		},
		Version: "default-v1",
	}
}

// ConfigProvider loads tunable formula constants from the
// readiness_config table, falling back to the embedded defaults per
// key. Load never fails: a missing or malformed row only costs that
// one value its override.
type ConfigProvider struct {
	store *Store
}

func NewConfigProvider(store *Store) *ConfigProvider {
	return &ConfigProvider{store: store}
}

func (p *ConfigProvider) Load() models.ReadinessConfig {
	rows, err := p.store.GetConfigRows()
	if err != nil {
		log.Printf("[readiness] config store unreachable, using embedded defaults: %v", err)
		return DefaultConfig()
	}
	return configFromRows(rows)
}

// configFromRows layers stored key/value overrides onto the embedded
// defaults. Unknown keys are ignored; unparseable values keep the
// default for that one key.
func configFromRows(rows map[string]string) models.ReadinessConfig {
	cfg := DefaultConfig()
	if len(rows) == 0 {
		return cfg
	}

	floatKey(rows, "formula_weights.recent_accuracy", &cfg.Weights.RecentAccuracy)
	floatKey(rows, "formula_weights.overall_accuracy", &cfg.Weights.OverallAccuracy)
	floatKey(rows, "formula_weights.coverage", &cfg.Weights.Coverage)
	floatKey(rows, "formula_weights.mastery", &cfg.Weights.Mastery)
	floatKey(rows, "formula_weights.test_pass_rate", &cfg.Weights.TestPassRate)

	floatKey(rows, "pass_probability.k", &cfg.PassProbability.K)
	floatKey(rows, "pass_probability.r0", &cfg.PassProbability.R0)

	floatKey(rows, "recency_penalty.max_penalty", &cfg.RecencyPenalty.MaxPenalty)
	floatKey(rows, "recency_penalty.decay_rate", &cfg.RecencyPenalty.DecayRate)

	floatKey(rows, "coverage_beta.low", &cfg.CoverageBeta.Low)
	floatKey(rows, "coverage_beta.mid", &cfg.CoverageBeta.Mid)
	floatKey(rows, "coverage_beta.high", &cfg.CoverageBeta.High)
	floatKey(rows, "coverage_beta.low_threshold", &cfg.CoverageBeta.LowThreshold)
	floatKey(rows, "coverage_beta.high_threshold", &cfg.CoverageBeta.HighThreshold)

	intKey(rows, "blend.min_recent_for_blend", &cfg.Blend.MinRecentForBlend)
	intKey(rows, "blend.recent_window", &cfg.Blend.RecentWindow)

	intKey(rows, "thresholds.min_attempts", &cfg.Thresholds.MinAttempts)
	intKey(rows, "thresholds.min_subelement_attempts", &cfg.Thresholds.MinSubelementAttempts)
	intKey(rows, "thresholds.recent_window", &cfg.Thresholds.RecentWindow)
	intKey(rows, "thresholds.subelement_recent_window", &cfg.Thresholds.SubelementRecentWindow)
	intKey(rows, "thresholds.cache_ttl_seconds", &cfg.Thresholds.CacheTTLSeconds)

	if v, ok := rows["version"]; ok && v != "" {
		cfg.Version = v
	}

	return cfg
}

func floatKey(rows map[string]string, key string, dst *float64) {
	raw, ok := rows[key]
	if !ok {
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("[readiness] config key %q has bad value %q, keeping default %g", key, raw, *dst)
		return
	}
	*dst = v
}

func intKey(rows map[string]string, key string, dst *int) {
	raw, ok := rows[key]
	if !ok {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("[readiness] config key %q has bad value %q, keeping default %d", key, raw, *dst)
		return
	}
	*dst = v
}
