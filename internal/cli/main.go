// Package cli is the command-line entry for shotscope.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "shotscope",
		Short:        "Analyze basketball shot videos and score shooting technique",
		SilenceUsage: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	analyze := &cobra.Command{
		Use:   "analyze <angle=video.mp4> [angle=video.mp4 ...]",
		Short: "Detect shots and select smart keyframes from one or more camera angles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args)
		},
	}
	analyze.Flags().String("out", "out", "Output directory")
	analyze.Flags().Int("frames", 0, "Keyframes per angle (0 = configured default)")

	// Hidden tuning flags (internal)
	analyze.Flags().Int("pool", 0, "Candidate frames sampled per angle")
	_ = analyze.Flags().MarkHidden("pool")

	score := &cobra.Command{
		Use:   "score <checklist.json>",
		Short: "Score a rated technique checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, args[0])
		},
	}

	root.AddCommand(analyze, score)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
