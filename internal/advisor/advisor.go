package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/ham-prep/backend/internal/models"
	"github.com/ham-prep/backend/internal/readiness"
)

// Advisor turns a learner's highest-risk subelements into a short,
// concrete study plan via an LLM. It is strictly additive: readiness
// scoring never depends on it.
type Advisor struct {
	llm       LLMClient
	readiness *readiness.Service
	model     string
}

func NewAdvisor(readinessService *readiness.Service) *Advisor {
	llm, model := NewClient()
	return &Advisor{llm: llm, readiness: readinessService, model: model}
}

const topicLimit = 3

func (a *Advisor) StudyAdvice(ctx context.Context, userID int64, examType models.ExamType) (string, error) {
	weakest := a.readiness.WeakestSubelements(userID, examType, topicLimit)
	if len(weakest) == 0 {
		return "", fmt.Errorf("no subelement data available for %s", examType)
	}

	advice, err := a.llm.Generate(ctx, systemPrompt(), userPrompt(examType, weakest))
	if err != nil {
		return "", fmt.Errorf("generate advice: %w", err)
	}
	return strings.TrimSpace(advice), nil
}

func systemPrompt() string {
	return "You are a study coach for amateur radio licensing exams. " +
		"Given a learner's weakest exam subelements and their practice statistics, " +
		"write a short, specific study plan (at most 150 words). " +
		"Be encouraging but concrete: name the subelements and what to practice."
}

func userPrompt(examType models.ExamType, weakest []readiness.RankedSubelement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Exam: %s. Weakest subelements by expected points at risk:\n", examType)
	for _, se := range weakest {
		fmt.Fprintf(&b, "- %s (%s): %.1f of %d exam points at risk, coverage %.0f%%, estimated accuracy %.0f%%, %d attempts\n",
			se.Code, se.Name, se.RiskScore, se.Weight,
			se.Coverage*100, se.EstimatedAccuracy*100, se.TotalAttempts)
	}
	b.WriteString("Write the study plan.")
	return b.String()
}
