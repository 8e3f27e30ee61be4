package advisor

import (
	"strings"
	"testing"

	"github.com/ham-prep/backend/internal/models"
	"github.com/ham-prep/backend/internal/readiness"
)

func TestUserPrompt(t *testing.T) {
	weakest := []readiness.RankedSubelement{
		{
			Code: "T3",
			SubelementMetric: models.SubelementMetric{
				Name:              "Radio wave characteristics",
				RiskScore:         3.6,
				Weight:            3,
				Coverage:          0.25,
				EstimatedAccuracy: 0.4,
				TotalAttempts:     12,
			},
		},
		{
			Code: "T5",
			SubelementMetric: models.SubelementMetric{
				Name:          "Electrical principles",
				RiskScore:     2.1,
				Weight:        4,
				TotalAttempts: 0,
			},
		},
	}

	got := userPrompt(models.ExamTechnician, weakest)

	for _, want := range []string{"technician", "T3", "Radio wave characteristics", "T5", "3.6", "coverage 25%"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestMockClientGenerates(t *testing.T) {
	c := &MockClient{}
	out, err := c.Generate(t.Context(), systemPrompt(), "Exam: technician.")
	if err != nil {
		t.Fatalf("mock generate: %v", err)
	}
	if out == "" {
		t.Error("mock advice should not be empty")
	}
}
