package classify

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  Verdict
	}{
		{"exact duplicate", 1.0, VerdictDuplicate},
		{"at dup threshold", 0.8, VerdictDuplicate},
		{"just below dup", 0.79, VerdictVariant},
		{"at review threshold", 0.6, VerdictVariant},
		{"just below review", 0.59, VerdictIndependent},
		{"zero", 0.0, VerdictIndependent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.score, 0.8, 0.6); got != tt.want {
				t.Errorf("Classify(%f) = %s, want %s", tt.score, got, tt.want)
			}
		})
	}
}

func TestClassifyMonotonic(t *testing.T) {
	rank := map[Verdict]int{
		VerdictIndependent: 0,
		VerdictVariant:     1,
		VerdictDuplicate:   2,
	}

	prev := VerdictIndependent
	for score := 0.0; score <= 1.0; score += 0.01 {
		v := Classify(score, 0.8, 0.6)
		if rank[v] < rank[prev] {
			t.Fatalf("verdict regressed from %s to %s at score %f", prev, v, score)
		}
		prev = v
	}
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		verdict Verdict
		want    Action
	}{
		{VerdictDuplicate, ActionRemoveRedundant},
		{VerdictVariant, ActionReviewVariation},
		{VerdictIndependent, ActionNone},
	}

	for _, tt := range tests {
		if got := Recommend(tt.verdict); got != tt.want {
			t.Errorf("Recommend(%s) = %s, want %s", tt.verdict, got, tt.want)
		}
	}
}
