package ai

import "testing"

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"plain percent", 85, 85},
		{"float percent", 85.0, 85},
		{"fraction scales up", 0.85, 85},
		{"basis points scale down", 8500, 85},
		{"percent string", "72%", 72},
		{"string with junk", "85.5% safe", 86},
		{"numeric string", "64", 64},
		// 150 takes the divide-by-100 path and lands on 2. Odd, but kept so
		// previously persisted scores keep meaning the same thing.
		{"one fifty", 150, 2},
		{"nil", nil, 0},
		{"garbage string", "very safe", 0},
		{"negative clamps", -20, 0},
		{"zero", 0, 0},
		{"hundred", 100, 100},
		{"float32", float32(0.5), 50},
		{"int64", int64(97), 97},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeScore(tt.in); got != tt.want {
				t.Errorf("NormalizeScore(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLeadingNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"85", 85, true},
		{"  72% ", 72, true},
		{"-3", -3, true},
		{"+4.5", 4.5, true},
		{"abc", 0, false},
		{"", 0, false},
		{".", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseLeadingNumber(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseLeadingNumber(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
