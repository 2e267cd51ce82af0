package keyframes

import (
	"fmt"
	"math"
	"sort"

	"github.com/dmolgo/shotscope/internal/types"
)

// DefaultCutoff is the importance below which a frame is not part of the
// active shot.
const DefaultCutoff = 0.3

// quotaShare allocates the budget across phases. Release carries the most
// diagnostic value; landing the least.
func quotaShare(p types.Phase) float64 {
	switch p {
	case types.PhasePreparation:
		return 0.15
	case types.PhaseLoading:
		return 0.25
	case types.PhaseRelease:
		return 0.35
	case types.PhaseFollowThrough:
		return 0.20
	case types.PhaseLanding:
		return 0.05
	}
	return 0
}

// Select picks up to budget frames: active frames only, best importance
// first, diversified across phases by quota, backfilled phase-agnostically,
// and finally re-sorted by timestamp so selection order never leaks into
// presentation order. An empty result is a valid outcome that callers must
// handle, not an error.
func Select(frames []types.CandidateFrame, budget int, cutoff float64) []types.SmartKeyframe {
	if budget <= 0 {
		return nil
	}

	var active []types.CandidateFrame
	for _, f := range frames {
		if f.Importance > cutoff {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		return nil
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Importance != active[j].Importance {
			return active[i].Importance > active[j].Importance
		}
		return active[i].TimestampSec < active[j].TimestampSec
	})

	quota := make(map[types.Phase]int, len(types.Phases))
	for _, p := range types.Phases {
		quota[p] = int(math.Ceil(float64(budget) * quotaShare(p)))
	}

	taken := make(map[int]bool, budget)
	counts := make(map[types.Phase]int, len(types.Phases))
	var picked []types.CandidateFrame
	for _, f := range active {
		if len(picked) >= budget {
			break
		}
		if counts[f.Phase] >= quota[f.Phase] {
			continue
		}
		counts[f.Phase]++
		taken[f.Index] = true
		picked = append(picked, f)
	}

	// A starved phase can leave the set short; top up with the next-best
	// frames regardless of phase.
	if len(picked) < budget {
		for _, f := range active {
			if len(picked) >= budget {
				break
			}
			if taken[f.Index] {
				continue
			}
			taken[f.Index] = true
			picked = append(picked, f)
		}
	}

	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].TimestampSec < picked[j].TimestampSec
	})

	out := make([]types.SmartKeyframe, 0, len(picked))
	for _, f := range picked {
		out = append(out, types.SmartKeyframe{
			Index:        f.Index,
			TimestampSec: f.TimestampSec,
			Phase:        f.Phase,
			Importance:   f.Importance,
			Description:  Describe(f),
			ImageRef:     f.ImageRef,
		})
	}
	return out
}

// Describe renders the human-readable keyframe caption.
func Describe(f types.CandidateFrame) string {
	quality := "fair"
	switch {
	case f.Analysis.PoseQuality > 0.7:
		quality = "excellent"
	case f.Analysis.PoseQuality > 0.4:
		quality = "good"
	}
	return fmt.Sprintf("%s (%.1fs) - %s pose", phaseLabel(f.Phase), f.TimestampSec, quality)
}

func phaseLabel(p types.Phase) string {
	switch p {
	case types.PhasePreparation:
		return "Preparation"
	case types.PhaseLoading:
		return "Loading"
	case types.PhaseRelease:
		return "Release"
	case types.PhaseFollowThrough:
		return "Follow-through"
	case types.PhaseLanding:
		return "Landing"
	}
	return p.String()
}

// Stats summarizes a run's selected keyframes for the report payload.
func Stats(frames []types.SmartKeyframe, cutoff float64) types.KeyframeStats {
	stats := types.KeyframeStats{TotalKeyframes: len(frames), SequenceQuality: "low"}
	if len(frames) == 0 {
		return stats
	}

	seen := make(map[types.Phase]bool)
	var sum float64
	for _, f := range frames {
		sum += f.Importance
		if f.Importance > cutoff {
			stats.ActiveShotFrames++
		}
		if !seen[f.Phase] {
			seen[f.Phase] = true
		}
	}
	for _, p := range types.Phases {
		if seen[p] {
			stats.PhasesDetected = append(stats.PhasesDetected, p.String())
		}
	}
	stats.AverageImportance = sum / float64(len(frames))
	switch {
	case stats.AverageImportance > 0.5:
		stats.SequenceQuality = "high"
	case stats.AverageImportance > 0.3:
		stats.SequenceQuality = "medium"
	}
	return stats
}
