package models

import "testing"

func TestPassed(t *testing.T) {
	tests := []struct {
		score, total int
		want         bool
	}{
		{26, 35, true},  // 74.3%, the lowest passing technician score
		{25, 35, false}, // 71.4%
		{35, 35, true},
		{37, 50, true},  // exactly 74% on the extra exam
		{36, 50, false}, // 72%
		{0, 35, false},
		{0, 0, false}, // no questions means no pass
	}
	for _, tt := range tests {
		if got := Passed(tt.score, tt.total); got != tt.want {
			t.Errorf("Passed(%d, %d) = %v, want %v", tt.score, tt.total, got, tt.want)
		}
	}
}

func TestExamTypePrefix(t *testing.T) {
	tests := []struct {
		exam ExamType
		want string
	}{
		{ExamTechnician, "T"},
		{ExamGeneral, "G"},
		{ExamExtra, "E"},
	}
	for _, tt := range tests {
		if got := tt.exam.Prefix(); got != tt.want {
			t.Errorf("%s.Prefix() = %q, want %q", tt.exam, got, tt.want)
		}
	}
}
