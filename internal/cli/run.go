package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmolgo/shotscope/internal/config"
	"github.com/dmolgo/shotscope/internal/domain/checklist"
	"github.com/dmolgo/shotscope/internal/pipeline"
	"github.com/dmolgo/shotscope/internal/types"
	"github.com/dmolgo/shotscope/internal/usecase"
)

func runAnalyze(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out")
	frames, _ := cmd.Flags().GetInt("frames")
	pool, _ := cmd.Flags().GetInt("pool")

	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if frames > 0 {
		settings.FrameBudget = frames
	}
	if pool > 0 {
		settings.CandidatePool = pool
	}

	videos, err := parseAngleArgs(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	cfg := pipeline.Config{
		Videos:   videos,
		OutDir:   outDir,
		Settings: settings,
		Logf:     log.Printf,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	report, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d keyframes across %d angles (%s quality)\n",
		report.RunID, report.Stats.TotalKeyframes, len(report.Angles), report.Stats.SequenceQuality)
	return nil
}

// parseAngleArgs accepts either "angle=path" pairs or bare paths; bare paths
// are assigned the filename stem as the angle name.
func parseAngleArgs(args []string) ([]usecase.AngleVideo, error) {
	videos := make([]usecase.AngleVideo, 0, len(args))
	seen := map[string]bool{}
	for _, a := range args {
		name, path, ok := strings.Cut(a, "=")
		if !ok {
			path = a
			name = strings.TrimSuffix(filepath.Base(a), filepath.Ext(a))
		}
		if name == "" || path == "" {
			return nil, fmt.Errorf("bad input %q: want angle=video.mp4", a)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate angle %q", name)
		}
		seen[name] = true
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		videos = append(videos, usecase.AngleVideo{Name: name, Path: abs})
	}
	return videos, nil
}

func runScore(cmd *cobra.Command, path string) error {
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var payload struct {
		Categories []types.ChecklistCategory `json:"categories"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		return fmt.Errorf("parse checklist: %w", err)
	}

	result := checklist.Score(payload.Categories, pipeline.Weights(settings))

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
