// Package ports declares the boundaries between the analysis core and its
// external collaborators. Adapters live under ports/adapters; the usecase
// depends only on these interfaces.
package ports

import (
	"context"

	"github.com/dmolgo/shotscope/internal/types"
)

// Video identifies one input clip. Path is a local file (required by the
// transcoder and the local pose extractor); URL is an addressable copy for
// remote services and may be empty.
type Video struct {
	Path string
	URL  string

	// DurationSec is the probed clip length. 0 means unknown.
	DurationSec float64
}

// SampledFrame is one frame written to disk by the probe.
type SampledFrame struct {
	Index        int
	TimestampSec float64
	Path         string
}

// StandardizeOpts controls video normalization ahead of analysis.
type StandardizeOpts struct {
	MaxSeconds   float64
	TargetHeight int
	TargetFPS    int
	DropAudio    bool
}

// MediaProbe wraps the external transcoder. All methods fail with a
// tool-unavailable error when the binary is missing; callers decide whether
// to degrade or skip.
type MediaProbe interface {
	// Duration reports the clip length in seconds. 0 means unknown, not
	// an instant video.
	Duration(ctx context.Context, inPath string) (float64, error)

	// ExtractFrame writes the frame nearest tsSec as a JPEG.
	ExtractFrame(ctx context.Context, inPath string, tsSec float64, outPath string) error

	// ExtractUniform samples n frames at duration/(n+1) spacing, never the
	// first or last instant.
	ExtractUniform(ctx context.Context, inPath string, n int, outDir string) ([]SampledFrame, error)

	// ExtractBetween samples n frames strictly inside [fromSec, toSec].
	ExtractBetween(ctx context.Context, inPath string, fromSec, toSec float64, n int, outDir string) ([]SampledFrame, error)

	// SceneScores samples the scene-change signal from a downscaled,
	// low-fps rendition of the clip.
	SceneScores(ctx context.Context, inPath string, height, fps int) ([]types.SceneSample, error)

	// Standardize renders a normalized copy of the clip.
	Standardize(ctx context.Context, inPath, outPath string, opts StandardizeOpts) error
}

// PoseSource produces a time-ordered per-frame keypoint series.
type PoseSource interface {
	Estimate(ctx context.Context, video Video, targetFrames int) ([]types.PoseFrame, error)
}

// FrameAnalyzer reports per-frame content evidence (person/ball presence,
// pose quality, motion magnitude). The pose series for the clip is passed so
// pose-backed implementations can answer without their own detector.
type FrameAnalyzer interface {
	Analyze(ctx context.Context, framePath string, tsSec, durationSec float64, poses []types.PoseFrame) (types.FrameAnalysis, error)
}
