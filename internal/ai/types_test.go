package ai

import "testing"

func TestHackRecommended(t *testing.T) {
	tests := []struct {
		name  string
		hacks []SubstitutionHack
		want  bool
	}{
		{"no hacks", nil, true},
		{"all strong and safe", []SubstitutionHack{
			{Effectiveness: 90, SafetyRisk: RiskNone},
			{Effectiveness: 70, SafetyRisk: RiskLow},
		}, true},
		{"one weak hack", []SubstitutionHack{
			{Effectiveness: 90, SafetyRisk: RiskNone},
			{Effectiveness: 69, SafetyRisk: RiskNone},
		}, false},
		{"one high risk hack", []SubstitutionHack{
			{Effectiveness: 95, SafetyRisk: RiskHigh},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Recipe{Hacks: tt.hacks}
			if got := r.HackRecommended(); got != tt.want {
				t.Errorf("HackRecommended() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecommendHackPath(t *testing.T) {
	fourHacks := make([]SubstitutionHack, 4)
	tests := []struct {
		name   string
		recipe Recipe
		want   bool
	}{
		{"safe and short", Recipe{SafetyScore: 80, Hacks: []SubstitutionHack{{}}}, true},
		{"safe fraction form", Recipe{SafetyScore: 0.8, Hacks: nil}, true},
		{"score too low", Recipe{SafetyScore: 74, Hacks: nil}, false},
		{"too many hacks", Recipe{SafetyScore: 99, Hacks: fourHacks}, false},
		{"boundary 75 with 3", Recipe{SafetyScore: 75, Hacks: fourHacks[:3]}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.recipe.RecommendHackPath(); got != tt.want {
				t.Errorf("RecommendHackPath() = %v, want %v", got, tt.want)
			}
		})
	}
}
