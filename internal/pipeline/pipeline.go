// Package pipeline wires configuration and adapters into a runnable
// analysis: ffmpeg probe, pose source chain, frame analyzer chain, and the
// per-angle usecase; it writes the run artifacts under a per-run output
// directory.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dmolgo/shotscope/internal/analyzer"
	"github.com/dmolgo/shotscope/internal/config"
	"github.com/dmolgo/shotscope/internal/domain/checklist"
	"github.com/dmolgo/shotscope/internal/domain/keyframes"
	"github.com/dmolgo/shotscope/internal/domain/release"
	"github.com/dmolgo/shotscope/internal/domain/segment"
	"github.com/dmolgo/shotscope/internal/pose"
	"github.com/dmolgo/shotscope/internal/ports"
	"github.com/dmolgo/shotscope/internal/ports/adapters/ffmpeg"
	"github.com/dmolgo/shotscope/internal/ports/adapters/mediapipe"
	"github.com/dmolgo/shotscope/internal/ports/adapters/posesvc"
	"github.com/dmolgo/shotscope/internal/ports/adapters/visionsvc"
	"github.com/dmolgo/shotscope/internal/types"
	"github.com/dmolgo/shotscope/internal/usecase"
)

type Config struct {
	// Videos maps input clips to camera angles (front/back/left/right).
	Videos []usecase.AngleVideo

	// OutDir is the root under which each run writes its artifacts.
	OutDir string

	Settings *config.Config
	Logf     func(format string, args ...any)
}

func (c Config) Validate() error {
	if len(c.Videos) == 0 {
		return errors.New("no input videos")
	}
	for _, v := range c.Videos {
		if v.Name == "" {
			return errors.New("video with empty angle name")
		}
		if _, err := os.Stat(v.Path); err != nil {
			return fmt.Errorf("stat input %s: %w", v.Name, err)
		}
	}
	if c.Settings == nil {
		return errors.New("settings are required")
	}
	return c.Settings.Validate()
}

// Run executes one full analysis and writes report.json plus the selected
// keyframe JPEGs under a fresh run directory.
func Run(ctx context.Context, cfg Config) (types.Report, error) {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	s := cfg.Settings

	probe := ffmpeg.New(s.FFmpegPath)

	poseChain := pose.NewChain(logf)
	if s.Pose.ServiceURL != "" {
		poseChain.Add("remote", posesvc.New(s.Pose.ServiceURL, s.Pose.ServiceToken, time.Duration(s.Pose.RemoteTimeoutSec)*time.Second))
	}
	poseChain.Add("local", mediapipe.New(s.Pose.PythonBin, s.Pose.ScriptPath, time.Duration(s.Pose.LocalTimeoutSec)*time.Second))

	analyzerChain := analyzer.NewChain(logf)
	if s.Analyzer.ServiceURL != "" {
		analyzerChain.Add("remote", visionsvc.New(s.Analyzer.ServiceURL, s.Analyzer.ServiceToken, time.Duration(s.Analyzer.TimeoutSec)*time.Second))
	}
	analyzerChain.Add("pose", analyzer.NewPoseBased())

	runID := uuid.NewString()
	runOutDir := buildRunOutDir(cfg.OutDir, runID, time.Now().UTC())
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return types.Report{}, err
	}
	logf("run %s: output dir %s", runID, runOutDir)

	videos := cfg.Videos
	if s.Standardize.Enabled {
		videos = standardizeInputs(ctx, probe, videos, runOutDir, s.Standardize, logf)
	}

	uc := usecase.New(usecase.Deps{
		Probe:    probe,
		Pose:     poseChain,
		Analyzer: analyzerChain,
	}, logf)

	res, err := uc.Run(ctx, usecase.Input{
		Videos: videos,
		OutDir: runOutDir,
		Params: Params(s),
	})
	if err != nil {
		return types.Report{}, err
	}

	report := types.Report{RunID: runID, Angles: res.Angles, Stats: res.Stats}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return types.Report{}, fmt.Errorf("marshal report: %w", err)
	}
	reportPath := filepath.Join(runOutDir, "report.json")
	if err := os.WriteFile(reportPath, b, 0o644); err != nil {
		return types.Report{}, err
	}
	logf("report written (%d angles, %d keyframes): %s", len(report.Angles), report.Stats.TotalKeyframes, reportPath)
	return report, nil
}

// Params maps the loaded configuration onto the usecase tunables.
func Params(s *config.Config) usecase.Params {
	return usecase.Params{
		FrameBudget:      s.FrameBudget,
		CandidatePool:    s.CandidatePool,
		SceneHeight:      s.Segmenter.SceneHeight,
		SceneFPS:         s.Segmenter.SceneFPS,
		PoseTargetFrames: s.Pose.TargetFrames,
		Segment: segment.Options{
			SmoothWindowSec:  s.Segmenter.SmoothWindowSec,
			PeakSigma:        s.Segmenter.PeakSigma,
			MinSeparationSec: s.Segmenter.MinSeparationSec,
			WindowBeforeSec:  s.Segmenter.WindowBeforeSec,
			WindowAfterSec:   s.Segmenter.WindowAfterSec,
			MergeGapSec:      s.Segmenter.MergeGapSec,
		},
		Release: release.Options{
			MinAmplitude:   s.Release.MinAmplitude,
			MinShoulderGap: s.Release.MinShoulderGap,
			RefractoryMs:   s.Release.RefractoryMs,
			ConfNorm:       s.Release.ConfNorm,
		},
		Importance: keyframes.Weights{
			Timing:   s.Importance.TimingWeight,
			Pose:     s.Importance.PoseWeight,
			Movement: s.Importance.MovementWeight,
			Content:  s.Importance.ContentWeight,
			General:  s.Importance.GeneralWeight,
		},
		Cutoff: s.Importance.Cutoff,
	}
}

// Weights builds the immutable checklist weight snapshot for one run.
func Weights(s *config.Config) *checklist.Weights {
	cats := make([]checklist.WeightCategory, 0, len(s.Checklist.Categories))
	for _, cat := range s.Checklist.Categories {
		wc := checklist.WeightCategory{Name: cat.Name}
		for _, it := range cat.Items {
			wc.Items = append(wc.Items, checklist.ItemWeight{ID: it.ID, Weight: it.Weight})
		}
		cats = append(cats, wc)
	}
	return checklist.NewWeights(cats)
}

// standardizeInputs renders each clip into a duration-capped, normalized
// copy under the run directory. A clip whose transcode fails is analyzed
// raw; the run never stops here.
func standardizeInputs(ctx context.Context, probe *ffmpeg.Adapter, videos []usecase.AngleVideo, runOutDir string, s config.StandardizeConfig, logf func(format string, args ...any)) []usecase.AngleVideo {
	out := make([]usecase.AngleVideo, len(videos))
	copy(out, videos)
	for i, v := range out {
		stdPath := filepath.Join(runOutDir, v.Name+"-std.mp4")
		err := probe.Standardize(ctx, v.Path, stdPath, ports.StandardizeOpts{
			MaxSeconds:   s.MaxSeconds,
			TargetHeight: s.TargetHeight,
			TargetFPS:    s.TargetFPS,
			DropAudio:    s.DropAudio,
		})
		if err != nil {
			logf("%s: standardize failed, analyzing raw clip: %v", v.Name, err)
			continue
		}
		out[i].Path = stdPath
	}
	return out
}

func buildRunOutDir(outRoot, runID string, now time.Time) string {
	ts := now.Format("20060102-150405Z")
	suffix := runID
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return filepath.Join(outRoot, fmt.Sprintf("analysis-%s-%s", ts, suffix))
}
