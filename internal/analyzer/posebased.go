// Package analyzer provides FrameAnalyzer implementations that do not need
// the remote vision service: a pose-series-backed heuristic analyzer and a
// chain that prefers the remote service when it is reachable.
package analyzer

import (
	"context"
	"math"

	"github.com/dmolgo/shotscope/internal/ports"
	"github.com/dmolgo/shotscope/internal/types"
)

// matchToleranceMs bounds how far the nearest pose frame may sit from the
// queried timestamp before the frame counts as unobserved.
const matchToleranceMs = 600

// minUsableKeypoints is how many confident keypoints make a person.
const minUsableKeypoints = 5

// PoseBased derives frame content evidence from the clip's pose series. Ball
// presence is approximated by handling posture (a confident wrist above the
// hip line): the pose model sees no ball, so this is a proxy, good enough to
// gate obviously empty frames while the real detector is external.
type PoseBased struct{}

func NewPoseBased() *PoseBased { return &PoseBased{} }

func (p *PoseBased) Analyze(_ context.Context, _ string, tsSec, _ float64, poses []types.PoseFrame) (types.FrameAnalysis, error) {
	idx := nearestFrame(poses, int(tsSec*1000+0.5))
	if idx < 0 {
		return types.FrameAnalysis{}, nil
	}
	frame := poses[idx]

	usable := 0
	var scoreSum float64
	for _, kp := range frame.Keypoints {
		if kp.Score < types.MinKeypointScore {
			continue
		}
		usable++
		scoreSum += kp.Score
	}
	if usable < minUsableKeypoints {
		return types.FrameAnalysis{}, nil
	}
	quality := clamp01(scoreSum / float64(usable))

	wrist, wristOK := bestWrist(frame)
	hipY, hipOK := hipLine(frame)
	hasBall := wristOK && hipOK && wrist.Y < hipY

	return types.FrameAnalysis{
		HasPerson:    true,
		HasBall:      hasBall,
		PoseQuality:  quality,
		Movement:     wristMovement(poses, idx),
		GeneralScore: quality,
	}, nil
}

func nearestFrame(poses []types.PoseFrame, tMs int) int {
	best, bestDist := -1, matchToleranceMs+1
	for i, f := range poses {
		d := f.TimestampMs - tMs
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// bestWrist prefers the right wrist when it is confidently tracked.
func bestWrist(frame types.PoseFrame) (types.Keypoint, bool) {
	if kp, ok := frame.Keypoint("right_wrist"); ok && kp.Score >= types.MinKeypointScore {
		return kp, true
	}
	if kp, ok := frame.Keypoint("left_wrist"); ok && kp.Score >= types.MinKeypointScore {
		return kp, true
	}
	return types.Keypoint{}, false
}

func hipLine(frame types.PoseFrame) (float64, bool) {
	var sum float64
	n := 0
	for _, name := range []string{"left_hip", "right_hip"} {
		if kp, ok := frame.Keypoint(name); ok && kp.Score >= types.MinKeypointScore {
			sum += kp.Y
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// wristMovement measures normalized wrist displacement against the
// neighboring pose frame. The magnitude is raw; the importance scorer caps
// it.
func wristMovement(poses []types.PoseFrame, idx int) float64 {
	cur, ok := bestWrist(poses[idx])
	if !ok {
		return 0
	}
	neighbor := idx + 1
	if neighbor >= len(poses) {
		neighbor = idx - 1
	}
	if neighbor < 0 {
		return 0
	}
	prev, ok := bestWrist(poses[neighbor])
	if !ok {
		return 0
	}
	return math.Hypot(cur.X-prev.X, cur.Y-prev.Y)
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

var _ ports.FrameAnalyzer = (*PoseBased)(nil)
