// Package mediapipe adapts the local python keypoint extractor to the
// PoseSource port. It is the second strategy in the pose chain: slower than
// the remote service but with no network dependency.
package mediapipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/dmolgo/shotscope/internal/ports"
	"github.com/dmolgo/shotscope/internal/types"
)

// ErrToolUnavailable means the interpreter or the extractor script is
// missing. The pose chain treats this as "no local strategy", not a failure
// of the run.
var ErrToolUnavailable = errors.New("pose extractor unavailable")

const (
	defaultTimeout = 180 * time.Second
	assumedFPS     = 30
)

type Adapter struct {
	python  string
	script  string
	timeout time.Duration
}

func New(pythonBin, scriptPath string, timeout time.Duration) *Adapter {
	if pythonBin == "" {
		pythonBin = "python3"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Adapter{python: pythonBin, script: scriptPath, timeout: timeout}
}

// FrameRecord mirrors one frame of the script's JSON file. Keypoint
// visibility comes back as "v" and is translated to the core's "score" at
// this boundary.
type FrameRecord struct {
	TimeSec   float64          `json:"time_sec"`
	Keypoints []KeypointRecord `json:"keypoints"`
}

type KeypointRecord struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	V    float64 `json:"v"`
}

type extractorOutput struct {
	Frames []FrameRecord `json:"frames"`
}

func (a *Adapter) Estimate(ctx context.Context, video ports.Video, targetFrames int) ([]types.PoseFrame, error) {
	if video.Path == "" {
		return nil, fmt.Errorf("pose extractor: no local video path")
	}
	if _, err := os.Stat(a.script); err != nil {
		return nil, fmt.Errorf("pose extractor script %s: %w", a.script, ErrToolUnavailable)
	}

	outDir, err := os.MkdirTemp("", "shotscope-pose-")
	if err != nil {
		return nil, fmt.Errorf("pose extractor: %w", err)
	}
	defer os.RemoveAll(outDir)
	outPath := filepath.Join(outDir, "poses.json")

	runCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	args := []string{
		a.script,
		"--video_path", video.Path,
		"--output_path", outPath,
		"--stride", strconv.Itoa(stride(video.DurationSec, targetFrames)),
		"--model_complexity", "0",
		"--min_detection_confidence", "0.4",
		"--min_tracking_confidence", "0.4",
	}
	cmd := exec.CommandContext(runCtx, a.python, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("pose extractor %s: %w", a.python, ErrToolUnavailable)
		}
		return nil, fmt.Errorf("pose extractor failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("pose extractor output: %w", err)
	}
	var out extractorOutput
	if err := json.Unmarshal(jb, &out); err != nil {
		return nil, fmt.Errorf("pose extractor output: %w", err)
	}
	return Translate(out.Frames), nil
}

// stride spreads the target frame count over the clip assuming 30fps. With
// an unknown duration every frame is handed to the model.
func stride(durationSec float64, targetFrames int) int {
	if durationSec <= 0 || targetFrames <= 0 {
		return 1
	}
	s := int(durationSec * assumedFPS / float64(targetFrames))
	if s < 1 {
		return 1
	}
	return s
}

// Translate converts the script's frame records into the core pose series,
// ordered and deduplicated by timestamp.
func Translate(frames []FrameRecord) []types.PoseFrame {
	out := make([]types.PoseFrame, 0, len(frames))
	for _, f := range frames {
		pf := types.PoseFrame{TimestampMs: int(f.TimeSec*1000 + 0.5)}
		for _, kp := range f.Keypoints {
			pf.Keypoints = append(pf.Keypoints, types.Keypoint{Name: kp.Name, X: kp.X, Y: kp.Y, Score: kp.V})
		}
		out = append(out, pf)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimestampMs < out[j].TimestampMs })
	dedup := out[:0]
	lastTs := -1
	for _, f := range out {
		if f.TimestampMs == lastTs {
			continue
		}
		lastTs = f.TimestampMs
		dedup = append(dedup, f)
	}
	return dedup
}

var _ ports.PoseSource = (*Adapter)(nil)
