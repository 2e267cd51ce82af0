// Package ffmpeg adapts the ffmpeg binary to the MediaProbe port: duration
// probing, frame extraction, scene-score sampling, and normalization.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/dmolgo/shotscope/internal/ports"
	"github.com/dmolgo/shotscope/internal/types"
)

const frameHeight = 720

type Adapter struct {
	bin string
}

func New(binPath string) *Adapter {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &Adapter{bin: binPath}
}

var reDuration = regexp.MustCompile(`Duration: (\d+):(\d+):(\d+\.\d+)`)

// Duration parses the "Duration: HH:MM:SS.ms" line out of ffmpeg's
// diagnostic stream. A clip with no recognizable duration reports 0, which
// callers must read as "unknown".
func (a *Adapter) Duration(ctx context.Context, inPath string) (float64, error) {
	out, err := a.runDiagnostic(ctx, "-i", inPath)
	if err != nil {
		return 0, err
	}
	m := reDuration.FindSubmatch(out)
	if m == nil {
		return 0, nil
	}
	hours, _ := strconv.Atoi(string(m[1]))
	minutes, _ := strconv.Atoi(string(m[2]))
	seconds, _ := strconv.ParseFloat(string(m[3]), 64)
	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}

func (a *Adapter) ExtractFrame(ctx context.Context, inPath string, tsSec float64, outPath string) error {
	args := []string{
		"-y",
		"-ss", fmtSeconds(tsSec),
		"-i", inPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-vf", fmt.Sprintf("scale=-2:%d", frameHeight),
		outPath,
	}
	return a.run(ctx, "extract frame", args)
}

// ExtractUniform samples n frames at duration/(n+1) spacing, skipping the
// first and last instants to avoid black frames and UI chrome. An unknown
// duration falls back to an assumed 30s clip, capped the way uploads are.
func (a *Adapter) ExtractUniform(ctx context.Context, inPath string, n int, outDir string) ([]ports.SampledFrame, error) {
	duration, err := a.Duration(ctx, inPath)
	if err != nil {
		return nil, err
	}
	effective := duration
	if effective == 0 {
		effective = 30
	}
	effective = math.Max(0.5, math.Min(effective, 30))
	return a.sampleEvenly(ctx, inPath, 0, effective, n, outDir, "kf")
}

func (a *Adapter) ExtractBetween(ctx context.Context, inPath string, fromSec, toSec float64, n int, outDir string) ([]ports.SampledFrame, error) {
	start := math.Max(0, math.Min(fromSec, toSec))
	end := math.Max(start+0.05, math.Max(fromSec, toSec))
	return a.sampleEvenly(ctx, inPath, start, end, n, outDir, "seg")
}

func (a *Adapter) sampleEvenly(ctx context.Context, inPath string, start, end float64, n int, outDir, prefix string) ([]ports.SampledFrame, error) {
	if n <= 0 {
		return nil, nil
	}
	interval := (end - start) / float64(n+1)
	frames := make([]ports.SampledFrame, 0, n)
	for i := 1; i <= n; i++ {
		ts := start + interval*float64(i)
		outPath := filepath.Join(outDir, fmt.Sprintf("%s_%03d.jpg", prefix, i))
		if err := a.ExtractFrame(ctx, inPath, ts, outPath); err != nil {
			return nil, err
		}
		frames = append(frames, ports.SampledFrame{Index: i - 1, TimestampSec: ts, Path: outPath})
	}
	return frames, nil
}

var reScene = regexp.MustCompile(`pts_time:([0-9]+\.?[0-9]*).*scene:([0-9]+\.?[0-9]*)`)

// SceneScores runs the clip through a downscaled, low-fps scene filter and
// parses per-frame scene-change scores from the diagnostic stream. This is
// the cheap pre-filter feeding the motion segmenter, not a precision signal.
func (a *Adapter) SceneScores(ctx context.Context, inPath string, height, fps int) ([]types.SceneSample, error) {
	vf := fmt.Sprintf("scale=-2:%d,fps=%d,select='gte(scene,0)',showinfo", height, fps)
	out, err := a.runDiagnostic(ctx, "-i", inPath, "-vf", vf, "-f", "null", "-")
	if err != nil {
		return nil, err
	}
	return parseSceneScores(out), nil
}

func parseSceneScores(diag []byte) []types.SceneSample {
	var samples []types.SceneSample
	for _, line := range bytes.Split(diag, []byte("\n")) {
		m := reScene.FindSubmatch(line)
		if m == nil {
			continue
		}
		t, err1 := strconv.ParseFloat(string(m[1]), 64)
		s, err2 := strconv.ParseFloat(string(m[2]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		samples = append(samples, types.SceneSample{TimestampSec: t, Score: s})
	}
	return samples
}

// Standardize renders a duration-capped, height-normalized, faststart MP4.
func (a *Adapter) Standardize(ctx context.Context, inPath, outPath string, opts ports.StandardizeOpts) error {
	if opts.MaxSeconds <= 0 {
		opts.MaxSeconds = 30
	}
	if opts.TargetHeight <= 0 {
		opts.TargetHeight = 720
	}
	if opts.TargetFPS <= 0 {
		opts.TargetFPS = 20
	}
	args := []string{
		"-y",
		"-i", inPath,
		"-t", fmtSeconds(opts.MaxSeconds),
		"-vf", fmt.Sprintf("scale=-2:%d,fps=%d", opts.TargetHeight, opts.TargetFPS),
	}
	if opts.DropAudio {
		args = append(args, "-an")
	} else {
		args = append(args, "-c:a", "aac", "-b:a", "128k")
	}
	args = append(args,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		outPath,
	)
	return a.run(ctx, "standardize", args)
}

func (a *Adapter) run(ctx context.Context, op string, args []string) error {
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("ffmpeg %s: %w", op, ErrToolUnavailable)
		}
		return fmt.Errorf("ffmpeg %s: %w\n%s", op, err, string(b))
	}
	return nil
}

// runDiagnostic tolerates exit status 1: bare `ffmpeg -i` and null-muxer
// probe invocations report via stderr and exit non-zero.
func (a *Adapter) runDiagnostic(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("ffmpeg probe: %w", ErrToolUnavailable)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return b, nil
		}
		return nil, fmt.Errorf("ffmpeg probe: %w\n%s", err, string(b))
	}
	return b, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 2, 64)
}

var _ ports.MediaProbe = (*Adapter)(nil)
