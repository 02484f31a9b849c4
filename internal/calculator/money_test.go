package calculator

import (
	"math"
	"testing"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.234, 1.23},
		{1.235, 1.24},
		{0.005, 0.01},
		{-0.005, 0},
		{-0.015, -0.01},
		{-1.236, -1.24},
		{99.989999999999995, 99.99},
		{0, 0},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := round2(math.Inf(1)); !math.IsInf(got, 1) {
		t.Errorf("round2(+Inf) = %v, want +Inf", got)
	}
}
