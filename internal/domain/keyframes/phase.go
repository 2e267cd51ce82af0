package keyframes

import "github.com/dmolgo/shotscope/internal/types"

// Classify maps a timestamp to its shot phase via the progress ratio.
// Duration-relative: shot length varies widely across camera
// angles and players, so absolute offsets do not transfer.
func Classify(timestampSec, totalDurationSec float64) types.Phase {
	if totalDurationSec <= 0 {
		return types.PhasePreparation
	}
	p := timestampSec / totalDurationSec
	switch {
	case p < 0.10:
		return types.PhasePreparation
	case p < 0.25:
		return types.PhaseLoading
	case p < 0.55:
		return types.PhaseRelease
	case p < 0.80:
		return types.PhaseFollowThrough
	default:
		return types.PhaseLanding
	}
}
