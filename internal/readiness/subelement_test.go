package readiness

import (
	"math"
	"testing"
	"time"

	"github.com/ham-prep/backend/internal/models"
)

func TestBlendedAccuracy(t *testing.T) {
	cfg := models.BlendConfig{MinRecentForBlend: 5, RecentWindow: 20}

	tests := []struct {
		name        string
		recentCount int
		recent      *float64
		overall     *float64
		want        float64
	}{
		{"full window uses recent only", 20, f(0.9), f(0.5), 0.9},
		{"over window uses recent only", 25, f(0.9), f(0.5), 0.9},
		{"below minimum uses overall only", 4, f(0.9), f(0.5), 0.5},
		{"half window blends evenly", 10, f(0.9), f(0.5), 0.7},
		{"quarter window blends at 0.25", 5, f(0.8), f(0.4), 0.5},
		{"no data at all", 0, nil, nil, 0},
		{"nil recent below minimum", 0, nil, f(0.6), 0.6},
	}
	for _, tt := range tests {
		got := blendedAccuracy(tt.recentCount, tt.recent, tt.overall, cfg)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: blendedAccuracy = %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestCoverageBeta(t *testing.T) {
	cfg := models.CoverageBetaConfig{
		Low: 1.2, Mid: 1.0, High: 0.9,
		LowThreshold: 0.3, HighThreshold: 0.7,
	}

	tests := []struct {
		coverage float64
		want     float64
	}{
		{0.0, 1.2},
		{0.29, 1.2},
		{0.3, 1.0}, // low boundary belongs to the middle band
		{0.5, 1.0},
		{0.69, 1.0},
		{0.7, 0.9}, // high boundary belongs to the high band
		{1.0, 0.9},
	}
	for _, tt := range tests {
		got := coverageBeta(tt.coverage, cfg)
		if got != tt.want {
			t.Errorf("coverageBeta(%f) = %f, want %f", tt.coverage, got, tt.want)
		}
	}
}

// testData fabricates the four batched reads for a single-topic pool
// of ten questions. The first correctFirst attempts are correct.
func testData(attempted []string, correctFirst int, masteredIDs ...string) *subelementData {
	topics := make(map[string]string)
	for _, id := range []string{"T1A01", "T1A02", "T1A03", "T1A04", "T1A05", "T1A06", "T1A07", "T1A08", "T1A09", "T1A10"} {
		topics[id] = "T1"
	}

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	var attempts []Attempt
	for i, id := range attempted {
		attempts = append(attempts, Attempt{
			QuestionID:  id,
			Correct:     i < correctFirst,
			AttemptedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}

	mastered := make(map[string]bool)
	for _, id := range masteredIDs {
		mastered[id] = true
	}

	return &subelementData{
		subelements: []models.Subelement{
			{Code: "T1", ExamType: models.ExamTechnician, Name: "Commission's Rules", ExamQuestions: 6},
		},
		questionTopic: topics,
		attempts:      attempts,
		mastered:      mastered,
	}
}

func TestComputeSubelementMetricsRisk(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name         string
		attempted    []string // one attempt per entry, newest first
		correctFirst int      // how many of those attempts were correct
		wantCoverage float64
		wantExpected float64
		wantRisk     float64
	}{
		{
			// 10 attempts over 2 of 10 questions, 8 correct:
			// accuracy 0.8, coverage 0.2 → beta 1.2, risk 6*0.2*1.2
			name: "low coverage inflates risk",
			attempted: []string{
				"T1A01", "T1A02", "T1A01", "T1A02", "T1A01",
				"T1A02", "T1A01", "T1A02", "T1A01", "T1A02",
			},
			correctFirst: 8,
			wantCoverage: 0.2,
			wantExpected: 4.8,
			wantRisk:     1.44,
		},
		{
			// Same accuracy over 8 of 10 questions: beta drops to 0.9
			name: "high coverage discounts risk",
			attempted: []string{
				"T1A01", "T1A02", "T1A03", "T1A04", "T1A05",
				"T1A06", "T1A07", "T1A08", "T1A01", "T1A02",
			},
			correctFirst: 8,
			wantCoverage: 0.8,
			wantExpected: 4.8,
			wantRisk:     1.08,
		},
	}
	for _, tt := range tests {
		data := testData(tt.attempted, tt.correctFirst)
		got := computeSubelementMetrics(data, cfg)

		m, ok := got["T1"]
		if !ok {
			t.Fatalf("%s: no metric for T1", tt.name)
		}
		if math.Abs(m.Coverage-tt.wantCoverage) > 1e-9 {
			t.Errorf("%s: Coverage = %f, want %f", tt.name, m.Coverage, tt.wantCoverage)
		}
		if math.Abs(m.ExpectedScore-tt.wantExpected) > 1e-9 {
			t.Errorf("%s: ExpectedScore = %f, want %f", tt.name, m.ExpectedScore, tt.wantExpected)
		}
		if math.Abs(m.RiskScore-tt.wantRisk) > 1e-9 {
			t.Errorf("%s: RiskScore = %f, want %f", tt.name, m.RiskScore, tt.wantRisk)
		}
		if m.ExpectedScore > float64(m.Weight) {
			t.Errorf("%s: ExpectedScore %f exceeds weight %d", tt.name, m.ExpectedScore, m.Weight)
		}
	}
}

func TestComputeSubelementMetricsNoAttempts(t *testing.T) {
	data := testData(nil, 0)
	got := computeSubelementMetrics(data, DefaultConfig())

	m := got["T1"]
	if m.Coverage != 0 || m.Mastery != 0 {
		t.Errorf("Coverage/Mastery = %f/%f, want 0/0", m.Coverage, m.Mastery)
	}
	if m.Accuracy != nil || m.RecentAccuracy != nil {
		t.Error("accuracies should be nil when no attempts exist")
	}
	if m.EstimatedAccuracy != 0 {
		t.Errorf("EstimatedAccuracy = %f, want 0", m.EstimatedAccuracy)
	}
	// Untouched topic: full weight at risk, inflated by the low band
	if math.Abs(m.RiskScore-6*1.2) > 1e-9 {
		t.Errorf("RiskScore = %f, want %f", m.RiskScore, 6*1.2)
	}
}

func TestComputeSubelementMetricsMastery(t *testing.T) {
	data := testData([]string{"T1A01", "T1A01", "T1A02"}, 3, "T1A01")
	got := computeSubelementMetrics(data, DefaultConfig())

	m := got["T1"]
	if math.Abs(m.Mastery-0.1) > 1e-9 {
		t.Errorf("Mastery = %f, want 0.1 (1 of 10 mastered)", m.Mastery)
	}
}

func TestComputeSubelementMetricsIgnoresUnknownQuestions(t *testing.T) {
	data := testData([]string{"T1A01"}, 1)
	data.attempts = append(data.attempts, Attempt{QuestionID: "G1A01", Correct: true})

	got := computeSubelementMetrics(data, DefaultConfig())
	if got["T1"].TotalAttempts != 1 {
		t.Errorf("TotalAttempts = %d, want 1 (attempt outside the pool ignored)", got["T1"].TotalAttempts)
	}
}
