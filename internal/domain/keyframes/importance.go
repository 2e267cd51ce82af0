// Package keyframes holds the smart-keyframe logic: phase classification,
// frame-importance scoring, and phase-diversified selection under a budget.
// Everything here is pure; re-running on the same inputs yields identical
// output.
package keyframes

import "github.com/dmolgo/shotscope/internal/types"

// Weights combines the importance factors. The shipped values are
// empirically chosen and provisional; they come in through configuration.
type Weights struct {
	Timing   float64
	Pose     float64
	Movement float64
	Content  float64
	General  float64
}

func DefaultWeights() Weights {
	return Weights{Timing: 0.5, Pose: 0.25, Movement: 0.10, Content: 0.10, General: 0.05}
}

// Importance computes a frame's 0..1 importance. Frames without both the
// shooter and the ball in view are forced to exactly 0: the product must
// never surface such frames as representative, so this is a hard gate, not
// a soft penalty.
func Importance(timestampSec, totalDurationSec float64, a types.FrameAnalysis, w Weights) float64 {
	if !a.HasPerson || !a.HasBall {
		return 0
	}

	p := 0.0
	if totalDurationSec > 0 {
		p = timestampSec / totalDurationSec
	}

	timing := timingScore(p)
	pose := clamp01(a.PoseQuality)
	movement := a.Movement * 1.5
	if movement > 1 {
		movement = 1
	}
	if movement < 0 {
		movement = 0
	}
	content := 0.0
	if a.HasPerson {
		content += 0.3
	}
	if a.HasBall {
		content += 0.7
	}
	general := clamp01(a.GeneralScore)

	return clamp01(w.Timing*timing + w.Pose*pose + w.Movement*movement + w.Content*content + w.General*general)
}

// timingScore rewards the active shot body and penalizes the clip's dead
// time at both ends.
func timingScore(p float64) float64 {
	switch {
	case p < 0.05:
		return 0.1
	case p < 0.15:
		return 0.8
	case p < 0.25:
		return 1.0
	case p < 0.45:
		return 1.0
	case p < 0.65:
		return 1.0
	case p < 0.85:
		return 0.9
	default:
		return 0.2
	}
}

// ScoreFrames assigns each candidate its phase and importance. Importance is
// written exactly once, here.
func ScoreFrames(frames []types.CandidateFrame, totalDurationSec float64, w Weights) []types.CandidateFrame {
	out := make([]types.CandidateFrame, len(frames))
	copy(out, frames)
	for i := range out {
		out[i].Phase = Classify(out[i].TimestampSec, totalDurationSec)
		out[i].Importance = Importance(out[i].TimestampSec, totalDurationSec, out[i].Analysis, w)
	}
	return out
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
