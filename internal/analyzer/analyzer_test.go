package analyzer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/dmolgo/shotscope/internal/ports"
	"github.com/dmolgo/shotscope/internal/types"
)

type fakeAnalyzer struct {
	res   types.FrameAnalysis
	err   error
	calls int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string, _, _ float64, _ []types.PoseFrame) (types.FrameAnalysis, error) {
	f.calls++
	return f.res, f.err
}

func TestChain_FallsBackOnError(t *testing.T) {
	remote := &fakeAnalyzer{err: errors.New("service down")}
	fallback := &fakeAnalyzer{res: types.FrameAnalysis{HasPerson: true}}
	c := NewChain(t.Logf).Add("remote", remote).Add("pose", fallback)

	got, err := c.Analyze(context.Background(), "f.jpg", 1, 10, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !got.HasPerson {
		t.Fatalf("expected fallback result, got %+v", got)
	}
	if remote.calls != 1 || fallback.calls != 1 {
		t.Fatalf("expected each strategy tried once, got %d/%d", remote.calls, fallback.calls)
	}
}

func TestChain_AllFailReportsUnobserved(t *testing.T) {
	c := NewChain(nil).
		Add("a", &fakeAnalyzer{err: errors.New("x")}).
		Add("b", &fakeAnalyzer{err: errors.New("y")})

	got, err := c.Analyze(context.Background(), "f.jpg", 1, 10, nil)
	if err != nil {
		t.Fatalf("expected exhausted chain to absorb errors, got %v", err)
	}
	if got != (types.FrameAnalysis{}) {
		t.Fatalf("expected unobserved frame, got %+v", got)
	}
}

// fullBody builds a pose frame with a confidently tracked upper body. The
// wrist sits above the hips, the handling posture the ball proxy keys on.
func fullBody(tMs int, wristY float64) types.PoseFrame {
	return types.PoseFrame{
		TimestampMs: tMs,
		Keypoints: []types.Keypoint{
			{Name: "nose", X: 0.5, Y: 0.1, Score: 0.9},
			{Name: "right_shoulder", X: 0.45, Y: 0.3, Score: 0.9},
			{Name: "left_shoulder", X: 0.55, Y: 0.3, Score: 0.9},
			{Name: "right_wrist", X: 0.5, Y: wristY, Score: 0.9},
			{Name: "right_hip", X: 0.45, Y: 0.6, Score: 0.9},
			{Name: "left_hip", X: 0.55, Y: 0.6, Score: 0.9},
		},
	}
}

func TestPoseBased_PersonAndBall(t *testing.T) {
	poses := []types.PoseFrame{fullBody(900, 0.4), fullBody(1100, 0.5)}

	got, err := NewPoseBased().Analyze(context.Background(), "f.jpg", 1.0, 10, poses)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !got.HasPerson {
		t.Fatalf("expected person from a confident pose, got %+v", got)
	}
	if !got.HasBall {
		t.Fatalf("expected handling posture read as ball, got %+v", got)
	}
	if math.Abs(got.PoseQuality-0.9) > 1e-9 {
		t.Fatalf("expected quality 0.9, got %g", got.PoseQuality)
	}
	if got.Movement <= 0 {
		t.Fatalf("expected wrist displacement, got %g", got.Movement)
	}
}

func TestPoseBased_WristBelowHips(t *testing.T) {
	poses := []types.PoseFrame{fullBody(1000, 0.8)}

	got, err := NewPoseBased().Analyze(context.Background(), "f.jpg", 1.0, 10, poses)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !got.HasPerson || got.HasBall {
		t.Fatalf("expected person without ball, got %+v", got)
	}
}

func TestPoseBased_NoNearbyFrame(t *testing.T) {
	poses := []types.PoseFrame{fullBody(5000, 0.4)}

	got, err := NewPoseBased().Analyze(context.Background(), "f.jpg", 1.0, 10, poses)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.HasPerson {
		t.Fatalf("expected unobserved frame beyond match tolerance, got %+v", got)
	}
}

func TestPoseBased_LowConfidencePose(t *testing.T) {
	frame := fullBody(1000, 0.4)
	for i := range frame.Keypoints {
		frame.Keypoints[i].Score = 0.2
	}

	got, err := NewPoseBased().Analyze(context.Background(), "f.jpg", 1.0, 10, []types.PoseFrame{frame})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.HasPerson {
		t.Fatalf("expected no person from a low-confidence pose, got %+v", got)
	}
}

var _ ports.FrameAnalyzer = (*fakeAnalyzer)(nil)
