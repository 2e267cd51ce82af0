// Package config defines the run configuration: every empirically-tuned
// constant of the analysis pipeline plus the canonical checklist weight
// table. A Config is loaded once per run and treated as read-only after
// validation; nothing in the pipeline mutates it.
package config

type Config struct {
	// FFmpegPath locates the transcoder binary. Empty means "ffmpeg" on PATH.
	FFmpegPath string `koanf:"ffmpeg_path"`

	// FrameBudget is the smart keyframe set size per angle.
	FrameBudget int `koanf:"frame_budget"`

	// CandidatePool is how many uniformly spaced frames are sampled and
	// scored before selection.
	CandidatePool int `koanf:"candidate_pool"`

	Standardize StandardizeConfig `koanf:"standardize"`

	Segmenter  SegmenterConfig  `koanf:"segmenter"`
	Release    ReleaseConfig    `koanf:"release"`
	Importance ImportanceConfig `koanf:"importance"`
	Pose       PoseConfig       `koanf:"pose"`
	Analyzer   AnalyzerConfig   `koanf:"analyzer"`
	Checklist  ChecklistConfig  `koanf:"checklist"`
}

// StandardizeConfig controls input normalization ahead of analysis. When the
// transcoder is unavailable the raw clip is analyzed as-is.
type StandardizeConfig struct {
	Enabled      bool    `koanf:"enabled"`
	MaxSeconds   float64 `koanf:"max_seconds"`
	TargetHeight int     `koanf:"target_height"`
	TargetFPS    int     `koanf:"target_fps"`
	DropAudio    bool    `koanf:"drop_audio"`
}

// SegmenterConfig tunes motion-based shot segmentation.
type SegmenterConfig struct {
	SceneHeight      int     `koanf:"scene_height"`
	SceneFPS         int     `koanf:"scene_fps"`
	SmoothWindowSec  float64 `koanf:"smooth_window_sec"`
	PeakSigma        float64 `koanf:"peak_sigma"`
	MinSeparationSec float64 `koanf:"min_separation_sec"`
	WindowBeforeSec  float64 `koanf:"window_before_sec"`
	WindowAfterSec   float64 `koanf:"window_after_sec"`
	MergeGapSec      float64 `koanf:"merge_gap_sec"`
}

// ReleaseConfig tunes wrist-trajectory release detection.
type ReleaseConfig struct {
	MinAmplitude   float64 `koanf:"min_amplitude"`
	MinShoulderGap float64 `koanf:"min_shoulder_gap"`
	RefractoryMs   int     `koanf:"refractory_ms"`
	ConfNorm       float64 `koanf:"conf_norm"`
}

// ImportanceConfig carries the frame-importance combination weights and the
// active-shot cutoff. The exact values are provisional, not a contract.
type ImportanceConfig struct {
	TimingWeight   float64 `koanf:"timing_weight"`
	PoseWeight     float64 `koanf:"pose_weight"`
	MovementWeight float64 `koanf:"movement_weight"`
	ContentWeight  float64 `koanf:"content_weight"`
	GeneralWeight  float64 `koanf:"general_weight"`
	Cutoff         float64 `koanf:"cutoff"`
}

// PoseConfig configures the pose source chain: the remote service first,
// then the local subprocess extractor.
type PoseConfig struct {
	ServiceURL      string `koanf:"service_url"`
	ServiceToken    string `koanf:"service_token"`
	TargetFrames    int    `koanf:"target_frames"`
	RemoteTimeoutSec int   `koanf:"remote_timeout_sec"`
	LocalTimeoutSec int    `koanf:"local_timeout_sec"`
	PythonBin       string `koanf:"python_bin"`
	ScriptPath      string `koanf:"script_path"`
}

// AnalyzerConfig configures the remote frame-content analyzer.
type AnalyzerConfig struct {
	ServiceURL   string `koanf:"service_url"`
	ServiceToken string `koanf:"service_token"`
	TimeoutSec   int    `koanf:"timeout_sec"`
}

// ChecklistConfig is the weighted item table for one shot type. The weights
// across all categories must sum to 100; that is verified at load time.
type ChecklistConfig struct {
	Categories []WeightCategory `koanf:"categories"`
}

// WeightCategory is one named group of weighted item IDs.
type WeightCategory struct {
	Name  string       `koanf:"name"`
	Items []WeightItem `koanf:"items"`
}

// WeightItem binds one checklist item ID to its score weight.
type WeightItem struct {
	ID     string  `koanf:"id"`
	Weight float64 `koanf:"weight"`
}

// New returns the built-in defaults: the three-point shot checklist and the
// pipeline tunables as shipped.
func New() *Config {
	return &Config{
		FFmpegPath:    "ffmpeg",
		FrameBudget:   12,
		CandidatePool: 24,
		Standardize: StandardizeConfig{
			Enabled:      true,
			MaxSeconds:   30,
			TargetHeight: 720,
			TargetFPS:    20,
			DropAudio:    true,
		},
		Segmenter: SegmenterConfig{
			SceneHeight:      240,
			SceneFPS:         5,
			SmoothWindowSec:  0.4,
			PeakSigma:        1.9,
			MinSeparationSec: 1.35,
			WindowBeforeSec:  0.6,
			WindowAfterSec:   1.0,
			MergeGapSec:      0.2,
		},
		Release: ReleaseConfig{
			MinAmplitude:   0.03,
			MinShoulderGap: 0.02,
			RefractoryMs:   450,
			ConfNorm:       0.12,
		},
		Importance: ImportanceConfig{
			TimingWeight:   0.5,
			PoseWeight:     0.25,
			MovementWeight: 0.10,
			ContentWeight:  0.10,
			GeneralWeight:  0.05,
			Cutoff:         0.3,
		},
		Pose: PoseConfig{
			TargetFrames:     48,
			RemoteTimeoutSec: 120,
			LocalTimeoutSec:  180,
			PythonBin:        "python3",
			ScriptPath:       "ml/extract_keypoints.py",
		},
		Analyzer: AnalyzerConfig{
			TimeoutSec: 60,
		},
		Checklist: ChecklistConfig{
			Categories: []WeightCategory{
				{
					Name: "fluidity",
					Items: []WeightItem{
						{ID: "one_motion_shot", Weight: 25},
						{ID: "leg_sync", Weight: 25},
					},
				},
				{
					Name: "preparation",
					Items: []WeightItem{
						{ID: "foot_alignment", Weight: 2},
						{ID: "body_alignment", Weight: 2},
						{ID: "wrist_loaded", Weight: 3},
						{ID: "knee_flexion", Weight: 4},
						{ID: "relaxed_shoulders", Weight: 3},
						{ID: "visual_focus", Weight: 2},
					},
				},
				{
					Name: "rise",
					Items: []WeightItem{
						{ID: "guide_hand_rise", Weight: 3},
						{ID: "elbows_tucked", Weight: 2},
						{ID: "path_to_set_point", Weight: 3},
						{ID: "straight_ball_rise", Weight: 3},
						{ID: "set_point", Weight: 2},
						{ID: "release_timing", Weight: 3},
					},
				},
				{
					Name: "release",
					Items: []WeightItem{
						{ID: "guide_hand_release", Weight: 2},
						{ID: "full_arm_extension", Weight: 4},
						{ID: "ball_backspin", Weight: 2},
						{ID: "launch_angle", Weight: 2},
					},
				},
				{
					Name: "follow_through",
					Items: []WeightItem{
						{ID: "balance_hold", Weight: 2},
						{ID: "landing_balance", Weight: 1},
						{ID: "follow_through_hold", Weight: 1},
						{ID: "repeatable_consistency", Weight: 4},
					},
				},
			},
		},
	}
}
