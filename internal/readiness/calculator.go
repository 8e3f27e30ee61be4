package readiness

import (
	"math"

	"github.com/ham-prep/backend/internal/models"
)

// Calculate converts a metrics snapshot into a readiness score and
// pass probability. Pure and deterministic: identical inputs always
// produce identical results.
//
// ExpectedExamScore is left at zero here; the orchestrator fills it
// in from the subelement contributions so there is exactly one
// definition of "expected score".
func Calculate(m models.ReadinessMetrics, cfg models.ReadinessConfig) models.ReadinessResult {
	// A nil accuracy contributes nothing: a user with no history is
	// not rewarded for the factor they have no data on.
	raw := cfg.Weights.RecentAccuracy*orZero(m.RecentAccuracy) +
		cfg.Weights.OverallAccuracy*orZero(m.OverallAccuracy) +
		cfg.Weights.Coverage*m.Coverage +
		cfg.Weights.Mastery*m.Mastery +
		cfg.Weights.TestPassRate*m.TestPassRate

	penalty := recencyPenalty(m.DaysSinceStudy, cfg.RecencyPenalty)
	score := clamp(raw-penalty, 0, 100)

	return models.ReadinessResult{
		ReadinessScore:  score,
		PassProbability: passProbability(score, cfg.PassProbability),
		RecencyPenalty:  penalty,
	}
}

// recencyPenalty ramps linearly with days since last study, capped at
// the configured maximum.
func recencyPenalty(daysSinceStudy float64, cfg models.RecencyPenaltyConfig) float64 {
	if daysSinceStudy < 0 {
		daysSinceStudy = 0
	}
	return math.Min(cfg.MaxPenalty, cfg.DecayRate*daysSinceStudy)
}

// passProbability is the logistic transform of the readiness score,
// calibrated so a score of exactly R0 maps to 0.5.
func passProbability(score float64, cfg models.PassProbabilityConfig) float64 {
	p := 1.0 / (1.0 + math.Exp(-cfg.K*(score-cfg.R0)))
	return clamp(p, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
