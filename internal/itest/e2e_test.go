//go:build integration

package itest

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmolgo/shotscope/internal/config"
	"github.com/dmolgo/shotscope/internal/pipeline"
	"github.com/dmolgo/shotscope/internal/types"
	"github.com/dmolgo/shotscope/internal/usecase"
)

// TestE2E runs the whole pipeline against a synthetic motion clip. No pose
// service and no python extractor are configured, so the run exercises the
// degraded path end to end: segmentation and frame extraction still work,
// releases and keyframes may come up empty, and report.json must exist
// either way.
func TestE2E(t *testing.T) {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not installed: %v", bin, err)
		}
	}

	tmp := t.TempDir()
	in := filepath.Join(tmp, "front.mp4")

	// testsrc carries constant motion, enough for the scene filter to see.
	ff := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", "testsrc=size=640x360:rate=20:duration=6",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		in,
	)
	if b, err := ff.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}

	outDir := filepath.Join(tmp, "out")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := pipeline.Config{
		Videos:   []usecase.AngleVideo{{Name: "front", Path: in}},
		OutDir:   outDir,
		Settings: config.New(),
		Logf:     t.Logf,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}

	report, err := pipeline.Run(ctx, cfg)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if report.RunID == "" {
		t.Fatalf("expected a run ID")
	}
	if _, ok := report.Angles["front"]; !ok {
		t.Fatalf("expected front angle in report, got %v", report.Angles)
	}

	runDirs, err := filepath.Glob(filepath.Join(outDir, "analysis-*"))
	if err != nil || len(runDirs) != 1 {
		t.Fatalf("expected one run dir, got %v (%v)", runDirs, err)
	}
	reportPath := filepath.Join(runDirs[0], "report.json")
	b, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("missing report: %v", err)
	}
	var onDisk types.Report
	if err := json.Unmarshal(b, &onDisk); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if onDisk.RunID != report.RunID {
		t.Fatalf("report on disk disagrees with the returned one")
	}

	dur, err := probeDurationSeconds(in)
	if err != nil {
		t.Fatalf("probe fixture: %v", err)
	}
	got := report.Angles["front"].Duration
	if got < dur-0.5 || got > dur+0.5 {
		t.Fatalf("expected probed duration near %g, got %g", dur, got)
	}
}
