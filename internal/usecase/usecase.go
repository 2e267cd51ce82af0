// Package usecase orchestrates one analysis run: per camera angle, probe the
// clip, segment motion, estimate poses, detect releases, then score and
// select smart keyframes. Angles run concurrently and share no mutable
// state; a failed angle yields an empty keyframe set without cancelling its
// siblings.
package usecase

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmolgo/shotscope/internal/domain/keyframes"
	"github.com/dmolgo/shotscope/internal/domain/release"
	"github.com/dmolgo/shotscope/internal/domain/segment"
	"github.com/dmolgo/shotscope/internal/ports"
	"github.com/dmolgo/shotscope/internal/types"
)

// maxConcurrentAngles bounds the worker pool. Work is subprocess- and
// network-bound, one task per camera angle.
const maxConcurrentAngles = 4

type Deps struct {
	Probe    ports.MediaProbe
	Pose     ports.PoseSource
	Analyzer ports.FrameAnalyzer
}

type Usecase struct {
	d    Deps
	logf func(format string, args ...any)
}

func New(d Deps, logf func(format string, args ...any)) Usecase {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return Usecase{d: d, logf: logf}
}

// Params carries the per-run tunables, loaded once and read-only.
type Params struct {
	FrameBudget      int
	CandidatePool    int
	SceneHeight      int
	SceneFPS         int
	PoseTargetFrames int
	Segment          segment.Options
	Release          release.Options
	Importance       keyframes.Weights
	Cutoff           float64
}

// AngleVideo is one camera angle's clip, already materialized on disk.
type AngleVideo struct {
	Name string
	Path string
	URL  string
}

type Input struct {
	Videos []AngleVideo
	OutDir string
	Params Params
}

type Result struct {
	Angles map[string]types.AngleReport
	Stats  types.KeyframeStats
}

func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	reports := make([]types.AngleReport, len(in.Videos))

	sem := make(chan struct{}, maxConcurrentAngles)
	var wg sync.WaitGroup
	for i, v := range in.Videos {
		wg.Add(1)
		go func(i int, v AngleVideo) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			reports[i] = u.analyzeAngle(ctx, v, in.OutDir, in.Params)
		}(i, v)
	}
	wg.Wait()

	res := Result{Angles: make(map[string]types.AngleReport, len(reports))}
	var all []types.SmartKeyframe
	for _, rep := range reports {
		res.Angles[rep.Angle] = rep
		all = append(all, rep.Keyframes...)
	}
	res.Stats = keyframes.Stats(all, in.Params.Cutoff)
	return res, nil
}

func (u Usecase) analyzeAngle(ctx context.Context, v AngleVideo, outDir string, p Params) types.AngleReport {
	rep := types.AngleReport{Angle: v.Name, Keyframes: []types.SmartKeyframe{}}

	duration, err := u.d.Probe.Duration(ctx, v.Path)
	if err != nil {
		u.logf("%s: duration probe failed: %v", v.Name, err)
	}
	rep.Duration = duration

	scenes, err := u.d.Probe.SceneScores(ctx, v.Path, p.SceneHeight, p.SceneFPS)
	if err != nil {
		u.logf("%s: scene sampling failed: %v", v.Name, err)
	}
	rep.Windows = segment.Detect(scenes, duration, p.Segment)
	if len(rep.Windows) == 0 {
		u.logf("%s: no motion windows, treating clip as a single shot", v.Name)
	}

	// The pose chain never errors past its boundary; an empty series just
	// means no release evidence.
	poses, _ := u.d.Pose.Estimate(ctx, ports.Video{Path: v.Path, URL: v.URL, DurationSec: duration}, p.PoseTargetFrames)
	rep.Shots = release.Detect(poses, p.Release)

	angleDir := filepath.Join(outDir, v.Name)
	if err := os.MkdirAll(angleDir, 0o755); err != nil {
		u.logf("%s: mkdir: %v", v.Name, err)
		return rep
	}
	sampled, err := u.sampleCandidates(ctx, v.Path, rep.Windows, p.CandidatePool, angleDir)
	if err != nil {
		// No transcoder, no keyframes for this angle. The run continues;
		// partial results are a valid terminal state.
		u.logf("%s: frame extraction failed: %v", v.Name, err)
		return rep
	}

	effective := duration
	if effective == 0 {
		effective = 30
	}
	effective = math.Max(0.5, math.Min(effective, 30))

	candidates := make([]types.CandidateFrame, 0, len(sampled))
	for _, f := range sampled {
		analysis, err := u.d.Analyzer.Analyze(ctx, f.Path, f.TimestampSec, effective, poses)
		if err != nil {
			u.logf("%s: frame %d analysis failed: %v", v.Name, f.Index, err)
		}
		candidates = append(candidates, types.CandidateFrame{
			Index:        f.Index,
			TimestampSec: f.TimestampSec,
			ImageRef:     f.Path,
			Analysis:     analysis,
		})
	}

	scored := keyframes.ScoreFrames(candidates, effective, p.Importance)
	if selected := keyframes.Select(scored, p.FrameBudget, p.Cutoff); selected != nil {
		rep.Keyframes = selected
	} else {
		u.logf("%s: no frames survived the importance gate", v.Name)
	}
	return rep
}

// sampleCandidates extracts the candidate frame pool. With motion windows
// the pool is spread over them proportionally to their length, focusing the
// budget on actual shot activity; with none the whole clip is sampled
// uniformly.
func (u Usecase) sampleCandidates(ctx context.Context, inPath string, windows []types.ShotWindow, pool int, angleDir string) ([]ports.SampledFrame, error) {
	if len(windows) == 0 {
		return u.d.Probe.ExtractUniform(ctx, inPath, pool, angleDir)
	}

	var total float64
	for _, w := range windows {
		total += w.End - w.Start
	}

	var out []ports.SampledFrame
	for wi, w := range windows {
		n := 1
		if total > 0 {
			n = int(math.Round(float64(pool) * (w.End - w.Start) / total))
			if n < 1 {
				n = 1
			}
		}
		dir := filepath.Join(angleDir, fmt.Sprintf("w%02d", wi))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		frames, err := u.d.Probe.ExtractBetween(ctx, inPath, w.Start, w.End, n, dir)
		if err != nil {
			return nil, err
		}
		for _, f := range frames {
			f.Index = len(out)
			out = append(out, f)
		}
	}
	return out, nil
}
