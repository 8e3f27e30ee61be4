package readiness

import (
	"math"
	"testing"
	"time"
)

func TestAccuracyOf(t *testing.T) {
	if got := accuracyOf(nil); got != nil {
		t.Errorf("accuracyOf(nil) = %v, want nil", *got)
	}

	attempts := []Attempt{
		{QuestionID: "T1A01", Correct: true},
		{QuestionID: "T1A02", Correct: false},
		{QuestionID: "T1A03", Correct: true},
		{QuestionID: "T1A04", Correct: true},
	}
	got := accuracyOf(attempts)
	if got == nil {
		t.Fatal("accuracyOf returned nil for non-empty attempts")
	}
	if math.Abs(*got-0.75) > 1e-9 {
		t.Errorf("accuracyOf = %f, want 0.75", *got)
	}
}

func TestFirstN(t *testing.T) {
	attempts := []Attempt{
		{QuestionID: "T1A03"},
		{QuestionID: "T1A02"},
		{QuestionID: "T1A01"},
	}

	if got := firstN(attempts, 2); len(got) != 2 || got[0].QuestionID != "T1A03" {
		t.Errorf("firstN(3, 2) = %v", got)
	}
	if got := firstN(attempts, 10); len(got) != 3 {
		t.Errorf("firstN with n beyond length should return everything, got %d", len(got))
	}
	if got := firstN(attempts, 0); len(got) != 0 {
		t.Errorf("firstN(_, 0) should be empty, got %d", len(got))
	}
	if got := firstN(nil, 5); len(got) != 0 {
		t.Errorf("firstN(nil, 5) should be empty, got %d", len(got))
	}
}

func TestUniqueQuestionCount(t *testing.T) {
	attempts := []Attempt{
		{QuestionID: "T1A01"},
		{QuestionID: "T1A02"},
		{QuestionID: "T1A01"},
		{QuestionID: "T1A01"},
	}
	if got := uniqueQuestionCount(attempts); got != 2 {
		t.Errorf("uniqueQuestionCount = %d, want 2", got)
	}
	if got := uniqueQuestionCount(nil); got != 0 {
		t.Errorf("uniqueQuestionCount(nil) = %d, want 0", got)
	}
}

func TestDaysSinceLastStudy(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	if got := daysSinceLastStudy(nil, now); got != staleDaysDefault {
		t.Errorf("no history = %f, want %f", got, float64(staleDaysDefault))
	}

	attempts := []Attempt{
		{QuestionID: "T1A01", AttemptedAt: now.Add(-72 * time.Hour)},
		{QuestionID: "T1A02", AttemptedAt: now.Add(-240 * time.Hour)},
	}
	if got := daysSinceLastStudy(attempts, now); math.Abs(got-3) > 1e-9 {
		t.Errorf("daysSinceLastStudy = %f, want 3 (newest attempt governs)", got)
	}

	// Clock skew: an attempt timestamped ahead of now never goes negative
	future := []Attempt{{QuestionID: "T1A01", AttemptedAt: now.Add(time.Hour)}}
	if got := daysSinceLastStudy(future, now); got != 0 {
		t.Errorf("future attempt = %f, want 0", got)
	}
}
