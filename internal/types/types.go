package types

import "fmt"

// Phase is one of the five named stages of a basketball shot motion.
// It is a closed enum: every switch over Phase must handle all five values.
type Phase int

const (
	PhasePreparation Phase = iota
	PhaseLoading
	PhaseRelease
	PhaseFollowThrough
	PhaseLanding
)

// Phases lists all values in motion order.
var Phases = [...]Phase{PhasePreparation, PhaseLoading, PhaseRelease, PhaseFollowThrough, PhaseLanding}

func (p Phase) String() string {
	switch p {
	case PhasePreparation:
		return "preparation"
	case PhaseLoading:
		return "loading"
	case PhaseRelease:
		return "release"
	case PhaseFollowThrough:
		return "follow_through"
	case PhaseLanding:
		return "landing"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	switch string(b) {
	case "preparation":
		*p = PhasePreparation
	case "loading":
		*p = PhaseLoading
	case "release":
		*p = PhaseRelease
	case "follow_through", "follow-through":
		*p = PhaseFollowThrough
	case "landing":
		*p = PhaseLanding
	default:
		return fmt.Errorf("unknown phase %q", string(b))
	}
	return nil
}

// Keypoint is one detected body landmark in normalized [0,1] coordinates.
// Score is detector confidence; samples below the usable threshold must be
// skipped, never read as zero-valued evidence.
type Keypoint struct {
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score"`
}

// MinKeypointScore is the floor under which a keypoint is unusable.
const MinKeypointScore = 0.4

// PoseFrame is one frame of a time-ordered pose series.
type PoseFrame struct {
	TimestampMs int        `json:"tMs"`
	Keypoints   []Keypoint `json:"keypoints"`
}

// Keypoint returns the named keypoint, or false when absent.
func (f PoseFrame) Keypoint(name string) (Keypoint, bool) {
	for _, kp := range f.Keypoints {
		if kp.Name == name {
			return kp, true
		}
	}
	return Keypoint{}, false
}

// SceneSample is one scene-change score sampled from the downscaled video.
type SceneSample struct {
	TimestampSec float64
	Score        float64
}

// ShotWindow is a candidate shot time range in seconds, End > Start.
type ShotWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// ShotEvent is one detected shot, anchored on the release instant.
// ReleaseMs is always populated; optional fields are nil when not inferable.
type ShotEvent struct {
	Index      int      `json:"index"`
	StartMs    int      `json:"startMs"`
	LoadMs     *int     `json:"loadMs,omitempty"`
	ReleaseMs  int      `json:"releaseMs"`
	ApexMs     *int     `json:"apexMs,omitempty"`
	LandingMs  *int     `json:"landingMs,omitempty"`
	EndMs      int      `json:"endMs"`
	Estimated  bool     `json:"estimated"`
	Confidence float64  `json:"confidence"`
	Notes      []string `json:"notes,omitempty"`
}

// FrameAnalysis is the content analyzer's verdict for one frame.
type FrameAnalysis struct {
	HasPerson    bool
	HasBall      bool
	PoseQuality  float64 // [0,1]
	Movement     float64 // raw motion magnitude, capped downstream
	GeneralScore float64 // [0,1]
}

// CandidateFrame is one sampled frame under consideration for the keyframe
// set. Importance is assigned exactly once by the importance scorer.
type CandidateFrame struct {
	Index        int     `json:"index"`
	TimestampSec float64 `json:"timestampSec"`
	Phase        Phase   `json:"phase"`
	Importance   float64 `json:"importance"`
	ImageRef     string  `json:"imageRef,omitempty"`

	Analysis FrameAnalysis `json:"-"`
}

// SmartKeyframe is a selected representative frame with presentation metadata.
type SmartKeyframe struct {
	Index        int     `json:"index"`
	TimestampSec float64 `json:"timestampSec"`
	Phase        Phase   `json:"phase"`
	Importance   float64 `json:"importance"`
	Description  string  `json:"description"`
	ImageRef     string  `json:"imageRef,omitempty"`
}

// ChecklistItem is one weighted technical criterion. Rating is 1..5; a zero
// rating, the NA flag, or an explicit not-evaluable status excludes the item
// from both numerator and denominator of the score.
type ChecklistItem struct {
	ID     string  `json:"id"`
	Rating int     `json:"rating"`
	NA     bool    `json:"na,omitempty"`
	Status string  `json:"status,omitempty"`
	Reason string  `json:"reason,omitempty"`
	Weight float64 `json:"-"`
}

// StatusNotEvaluable marks an item the rater could not observe.
const StatusNotEvaluable = "no_evaluable"

// ChecklistCategory is a named group of items; categories partition the set.
type ChecklistCategory struct {
	Name  string          `json:"category"`
	Items []ChecklistItem `json:"items"`
}

// Confidence reflects what fraction of checklist items were evaluable.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// CategoryScore is the per-category subtotal over evaluable weight mass only.
type CategoryScore struct {
	Name     string  `json:"category"`
	Achieved float64 `json:"achieved"`
	Max      float64 `json:"max"`
}

// ScoreResult is the checklist scorer's final payload.
type ScoreResult struct {
	Score               float64         `json:"score"`
	EvaluableCount      int             `json:"evaluableCount"`
	NonEvaluableCount   int             `json:"nonEvaluableCount"`
	EvaluableWeightSum  float64         `json:"evaluableWeightSum"`
	Confidence          Confidence      `json:"confidence"`
	NonEvaluableReasons []string        `json:"nonEvaluableReasons"`
	Categories          []CategoryScore `json:"categories,omitempty"`
}

// KeyframeStats summarizes one run's selected keyframes across all angles.
type KeyframeStats struct {
	TotalKeyframes    int      `json:"totalKeyframes"`
	PhasesDetected    []string `json:"phasesDetected"`
	AverageImportance float64  `json:"averageImportance"`
	ActiveShotFrames  int      `json:"activeShotFrames"`
	SequenceQuality   string   `json:"sequenceQuality"`
}

// AngleReport is everything the pipeline emits for one camera angle.
type AngleReport struct {
	Angle     string          `json:"angle"`
	Duration  float64         `json:"durationSec"`
	Windows   []ShotWindow    `json:"windows,omitempty"`
	Shots     []ShotEvent     `json:"shots,omitempty"`
	Keyframes []SmartKeyframe `json:"keyframes"`
}

// Report is the run-level artifact handed to the storage collaborator.
type Report struct {
	RunID  string                 `json:"runId"`
	Angles map[string]AngleReport `json:"angles"`
	Stats  KeyframeStats          `json:"stats"`
}
