// Package release finds ball-release events in a pose time series by
// wrist-trajectory local-minima analysis. Screen coordinates grow downward,
// so the wrist's highest point is its lowest y.
package release

import (
	"github.com/dmolgo/shotscope/internal/types"
)

type Options struct {
	// MinAmplitude is the smallest wrist dip (normalized units) that counts
	// as a release.
	MinAmplitude float64
	// MinShoulderGap requires the wrist to clear the shoulder line by this
	// much, rejecting dips from dribbling or ball pickup.
	MinShoulderGap float64
	// RefractoryMs drops candidates too close to an accepted release so a
	// single shot is never counted twice.
	RefractoryMs int
	// ConfNorm scales amplitude into [0,1] confidence.
	ConfNorm float64
}

func Defaults() Options {
	return Options{
		MinAmplitude:   0.03,
		MinShoulderGap: 0.02,
		RefractoryMs:   450,
		ConfNorm:       0.12,
	}
}

// fallbackConfidence is assigned when no local minimum clears the amplitude
// bar and the single lowest wrist sample is used instead.
const fallbackConfidence = 0.35

const (
	startOffsetMs = 600
	loadOffsetMs  = 300
	endOffsetMs   = 400
)

type armSample struct {
	tMs       int
	wristY    float64
	shoulderY float64
}

// Detect returns estimated shot events ordered by release time, separated by
// at least the refractory gap.
func Detect(frames []types.PoseFrame, opt Options) []types.ShotEvent {
	samples := collectArmSamples(frames)
	if len(samples) < 5 {
		return nil
	}

	ys := make([]float64, len(samples))
	shoulders := make([]float64, len(samples))
	for i, s := range samples {
		ys[i] = s.wristY
		shoulders[i] = s.shoulderY
	}
	ys = smooth3(ys)
	shoulders = smooth3(shoulders)

	type candidate struct {
		tMs  int
		conf float64
	}
	var candidates []candidate
	for i := 1; i < len(ys)-1; i++ {
		if !(ys[i] < ys[i-1] && ys[i] < ys[i+1]) {
			continue
		}
		if shoulders[i]-ys[i] < opt.MinShoulderGap {
			continue
		}
		amplitude := localAmplitude(ys, i)
		if amplitude < opt.MinAmplitude {
			continue
		}
		conf := amplitude / opt.ConfNorm
		if conf > 1 {
			conf = 1
		}
		candidates = append(candidates, candidate{tMs: samples[i].tMs, conf: conf})
	}

	if len(candidates) == 0 {
		// Single-shot clips often smooth the dip away. Use the overall
		// lowest wrist sample as one low-confidence release.
		minIdx := 0
		for i := range ys {
			if ys[i] < ys[minIdx] {
				minIdx = i
			}
		}
		if shoulders[minIdx]-ys[minIdx] >= opt.MinShoulderGap {
			candidates = append(candidates, candidate{tMs: samples[minIdx].tMs, conf: fallbackConfidence})
		}
	}

	var events []types.ShotEvent
	lastAccepted := -1 << 30
	for _, c := range candidates {
		if c.tMs-lastAccepted < opt.RefractoryMs {
			continue
		}
		lastAccepted = c.tMs
		events = append(events, buildEvent(len(events)+1, c.tMs, c.conf))
	}
	return events
}

// collectArmSamples extracts the wrist/shoulder height series frame by
// frame, preferring the right arm when it is confidently tracked. Frames
// with no usable arm contribute no sample rather than zero-valued evidence.
func collectArmSamples(frames []types.PoseFrame) []armSample {
	var out []armSample
	for _, f := range frames {
		if s, ok := armFromSide(f, "right_wrist", "right_shoulder"); ok {
			out = append(out, armSample{tMs: f.TimestampMs, wristY: s[0], shoulderY: s[1]})
			continue
		}
		if s, ok := armFromSide(f, "left_wrist", "left_shoulder"); ok {
			out = append(out, armSample{tMs: f.TimestampMs, wristY: s[0], shoulderY: s[1]})
		}
	}
	return out
}

func armFromSide(f types.PoseFrame, wristName, shoulderName string) ([2]float64, bool) {
	wrist, ok := f.Keypoint(wristName)
	if !ok || wrist.Score < types.MinKeypointScore {
		return [2]float64{}, false
	}
	shoulder, ok := f.Keypoint(shoulderName)
	if !ok || shoulder.Score < types.MinKeypointScore {
		return [2]float64{}, false
	}
	return [2]float64{wrist.Y, shoulder.Y}, true
}

func smooth3(values []float64) []float64 {
	if len(values) <= 2 {
		return values
	}
	out := make([]float64, len(values))
	for i, v := range values {
		prev, next := v, v
		if i > 0 {
			prev = values[i-1]
		}
		if i < len(values)-1 {
			next = values[i+1]
		}
		out[i] = (prev + v + next) / 3
	}
	return out
}

// localAmplitude measures the dip depth against the shallower of the two
// flanking maxima over a 3-sample horizon.
func localAmplitude(ys []float64, i int) float64 {
	prevMax := maxOf(ys, i-3, i)
	nextMax := maxOf(ys, i+1, i+4)
	m := prevMax
	if nextMax < m {
		m = nextMax
	}
	return m - ys[i]
}

func maxOf(ys []float64, lo, hi int) float64 {
	if lo < 0 {
		lo = 0
	}
	if hi > len(ys) {
		hi = len(ys)
	}
	m := ys[lo]
	for _, v := range ys[lo:hi] {
		if v > m {
			m = v
		}
	}
	return m
}

func buildEvent(index, releaseMs int, conf float64) types.ShotEvent {
	load := releaseMs - loadOffsetMs
	if load < 0 {
		load = 0
	}
	start := releaseMs - startOffsetMs
	if start < 0 {
		start = 0
	}
	return types.ShotEvent{
		Index:      index,
		StartMs:    start,
		LoadMs:     &load,
		ReleaseMs:  releaseMs,
		EndMs:      releaseMs + endOffsetMs,
		Estimated:  true,
		Confidence: conf,
		Notes:      []string{"wrist dip detected (pose)"},
	}
}
