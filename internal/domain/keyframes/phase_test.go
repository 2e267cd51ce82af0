package keyframes

import (
	"testing"

	"github.com/dmolgo/shotscope/internal/types"
)

func TestClassify_Boundaries(t *testing.T) {
	const total = 10.0
	tests := []struct {
		name string
		ts   float64
		want types.Phase
	}{
		{"start", 0, types.PhasePreparation},
		{"just below loading", 0.99, types.PhasePreparation},
		{"loading boundary", 1.0, types.PhaseLoading},
		{"loading body", 2.0, types.PhaseLoading},
		{"release boundary", 2.5, types.PhaseRelease},
		{"release body", 4.0, types.PhaseRelease},
		{"follow-through boundary", 5.5, types.PhaseFollowThrough},
		{"follow-through body", 7.0, types.PhaseFollowThrough},
		{"landing boundary", 8.0, types.PhaseLanding},
		{"end", 10.0, types.PhaseLanding},
		{"past end", 12.0, types.PhaseLanding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.ts, total); got != tt.want {
				t.Fatalf("Classify(%g, %g) = %v, want %v", tt.ts, total, got, tt.want)
			}
		})
	}
}

func TestClassify_ZeroDuration(t *testing.T) {
	if got := Classify(3.0, 0); got != types.PhasePreparation {
		t.Fatalf("expected preparation for unknown duration, got %v", got)
	}
}
