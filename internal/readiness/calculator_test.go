package readiness

import (
	"math"
	"testing"

	"github.com/ham-prep/backend/internal/models"
)

func f(v float64) *float64 { return &v }

func TestCalculatePerfectMetrics(t *testing.T) {
	m := models.ReadinessMetrics{
		RecentAccuracy:  f(1.0),
		OverallAccuracy: f(1.0),
		Coverage:        1.0,
		Mastery:         1.0,
		TestPassRate:    1.0,
		DaysSinceStudy:  0,
	}

	got := Calculate(m, DefaultConfig())
	if math.Abs(got.ReadinessScore-100) > 1e-9 {
		t.Errorf("ReadinessScore = %f, want 100", got.ReadinessScore)
	}
	if got.PassProbability <= 0.99 {
		t.Errorf("PassProbability = %f, want > 0.99", got.PassProbability)
	}
	if got.RecencyPenalty != 0 {
		t.Errorf("RecencyPenalty = %f, want 0", got.RecencyPenalty)
	}
}

func TestCalculateZeroMetrics(t *testing.T) {
	// The zero-value record is also what the aggregator returns for
	// an empty question pool, so it must score clean: zero penalty,
	// not a synthetic max-staleness one.
	m := models.ReadinessMetrics{}

	got := Calculate(m, DefaultConfig())
	if got.ReadinessScore != 0 {
		t.Errorf("ReadinessScore = %f, want 0", got.ReadinessScore)
	}
	if got.RecencyPenalty != 0 {
		t.Errorf("RecencyPenalty = %f, want 0", got.RecencyPenalty)
	}
	if got.PassProbability >= 0.01 {
		t.Errorf("PassProbability = %f, want < 0.01", got.PassProbability)
	}
	if math.IsNaN(got.PassProbability) || math.IsNaN(got.ReadinessScore) {
		t.Error("zero metrics must not produce NaN")
	}
}

func TestCalculateWeightedCombination(t *testing.T) {
	m := models.ReadinessMetrics{
		RecentAccuracy:  f(0.8),
		OverallAccuracy: f(0.6),
		Coverage:        0.5,
		Mastery:         0.4,
		TestPassRate:    0.5,
		DaysSinceStudy:  0,
	}

	got := Calculate(m, DefaultConfig())
	if math.Abs(got.ReadinessScore-61) > 1e-9 {
		t.Errorf("ReadinessScore = %f, want 61", got.ReadinessScore)
	}
}

func TestCalculateNilAccuraciesCountAsZero(t *testing.T) {
	// No recent or overall data: only coverage/mastery/tests score
	m := models.ReadinessMetrics{
		Coverage:       1.0,
		Mastery:        1.0,
		TestPassRate:   1.0,
		DaysSinceStudy: 0,
	}

	got := Calculate(m, DefaultConfig())
	if math.Abs(got.ReadinessScore-45) > 1e-9 {
		t.Errorf("ReadinessScore = %f, want 45 (15+15+15)", got.ReadinessScore)
	}
}

func TestRecencyPenalty(t *testing.T) {
	cfg := models.RecencyPenaltyConfig{MaxPenalty: 10, DecayRate: 0.5}

	tests := []struct {
		days float64
		want float64
	}{
		{0, 0},
		{1, 0.5},
		{10, 5},
		{20, 10},  // exactly at the cap
		{100, 10}, // still capped
	}
	for _, tt := range tests {
		got := recencyPenalty(tt.days, cfg)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("recencyPenalty(%f) = %f, want %f", tt.days, got, tt.want)
		}
	}

	// Monotonic non-decreasing
	prev := -1.0
	for days := 0.0; days <= 50; days += 0.5 {
		p := recencyPenalty(days, cfg)
		if p < prev {
			t.Fatalf("penalty decreased at %f days: %f < %f", days, p, prev)
		}
		prev = p
	}
}

func TestCalculateClampsNegative(t *testing.T) {
	// Raw 8.5 minus penalty 10 would be -1.5
	m := models.ReadinessMetrics{
		RecentAccuracy:  f(0.1),
		OverallAccuracy: f(0.1),
		Coverage:        0.1,
		Mastery:         0.1,
		TestPassRate:    0.1,
		DaysSinceStudy:  100,
	}

	got := Calculate(m, DefaultConfig())
	if got.ReadinessScore != 0 {
		t.Errorf("ReadinessScore = %f, want 0 (clamped)", got.ReadinessScore)
	}
}

func TestPassProbabilityMidpoint(t *testing.T) {
	// For any score S, setting r0 = S yields probability 0.5
	for _, score := range []float64{0, 20, 50, 61, 65, 88.5, 100} {
		cfg := models.PassProbabilityConfig{K: 0.15, R0: score}
		got := passProbability(score, cfg)
		if math.Abs(got-0.5) > 0.01 {
			t.Errorf("passProbability(%f, r0=%f) = %f, want ~0.5", score, score, got)
		}
	}
}

func TestCalculateIdempotent(t *testing.T) {
	m := models.ReadinessMetrics{
		RecentAccuracy:  f(0.73),
		OverallAccuracy: f(0.61),
		Coverage:        0.42,
		Mastery:         0.31,
		TestPassRate:    0.5,
		DaysSinceStudy:  3.25,
	}
	cfg := DefaultConfig()

	first := Calculate(m, cfg)
	second := Calculate(m, cfg)
	if first != second {
		t.Errorf("Calculate is not deterministic: %+v vs %+v", first, second)
	}
}
