package readiness

import (
	"testing"

	"github.com/ham-prep/backend/internal/models"
)

func TestResolveBreakdownSumsContributions(t *testing.T) {
	result := models.ReadinessResult{ReadinessScore: 61}
	subs := map[string]models.SubelementMetric{
		"T1": {ExpectedScore: 4.5},
		"T2": {ExpectedScore: 2.25},
	}

	got, persist := resolveBreakdown(result, subs, nil)
	if !persist {
		t.Error("computed breakdown must be persisted")
	}
	if got.ExpectedExamScore != 6.75 {
		t.Errorf("ExpectedExamScore = %f, want 6.75", got.ExpectedExamScore)
	}
}

func TestResolveBreakdownEmptyKeepsPrior(t *testing.T) {
	// An empty breakdown means the per-topic reads failed. The prior
	// cached expected score must be served and nothing written, so
	// the good cached breakdown is not overwritten with zeroes.
	result := models.ReadinessResult{ReadinessScore: 61}
	prior := &CachedResult{ExpectedExamScore: 27.5}

	got, persist := resolveBreakdown(result, map[string]models.SubelementMetric{}, prior)
	if persist {
		t.Error("empty breakdown must not be persisted")
	}
	if got.ExpectedExamScore != 27.5 {
		t.Errorf("ExpectedExamScore = %f, want cached 27.5", got.ExpectedExamScore)
	}
	if got.ReadinessScore != 61 {
		t.Errorf("ReadinessScore = %f, want 61 (freshly computed score kept)", got.ReadinessScore)
	}
}

func TestResolveBreakdownEmptyWithoutPrior(t *testing.T) {
	got, persist := resolveBreakdown(models.ReadinessResult{}, nil, nil)
	if persist {
		t.Error("empty breakdown must not be persisted")
	}
	if got.ExpectedExamScore != 0 {
		t.Errorf("ExpectedExamScore = %f, want 0 with no cached fallback", got.ExpectedExamScore)
	}
}

func TestRankByRisk(t *testing.T) {
	subs := map[string]models.SubelementMetric{
		"T1": {RiskScore: 2.4},
		"T2": {RiskScore: 5.1},
		"T3": {RiskScore: 0.3},
		"T4": {RiskScore: 5.1},
		"T5": {RiskScore: 1.0},
	}

	got := rankByRisk(subs, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// Equal risk breaks ties by code
	want := []string{"T2", "T4", "T1"}
	for i, code := range want {
		if got[i].Code != code {
			t.Errorf("rank %d = %s, want %s", i, got[i].Code, code)
		}
	}
}

func TestRankByRiskFewerThanRequested(t *testing.T) {
	subs := map[string]models.SubelementMetric{
		"E1": {RiskScore: 1.5},
	}
	if got := rankByRisk(subs, 3); len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
	if got := rankByRisk(nil, 3); len(got) != 0 {
		t.Errorf("nil input: len = %d, want 0", len(got))
	}
}
