// Package segment finds candidate shot windows by peak detection over a
// smoothed, standardized scene-change signal. This is a cheap pre-filter on
// a downscaled low-fps rendition, not a precision boundary detector.
package segment

import (
	"math"
	"sort"

	"github.com/dmolgo/shotscope/internal/types"
)

type Options struct {
	// SmoothWindowSec is the centered moving-average width.
	SmoothWindowSec float64
	// PeakSigma is the k in the mu + k*sigma acceptance threshold.
	PeakSigma float64
	// MinSeparationSec keeps one shot from producing two peaks.
	MinSeparationSec float64
	// WindowBeforeSec/WindowAfterSec pad each accepted peak into a window.
	WindowBeforeSec float64
	WindowAfterSec  float64
	// MergeGapSec merges windows closer than this gap.
	MergeGapSec float64
}

func Defaults() Options {
	return Options{
		SmoothWindowSec:  0.4,
		PeakSigma:        1.9,
		MinSeparationSec: 1.35,
		WindowBeforeSec:  0.6,
		WindowAfterSec:   1.0,
		MergeGapSec:      0.2,
	}
}

// Detect returns ordered, non-overlapping shot windows. Zero windows is a
// valid result: callers treat it as "single continuous shot, use the whole
// clip".
func Detect(samples []types.SceneSample, durationSec float64, opt Options) []types.ShotWindow {
	if len(samples) < 3 {
		return nil
	}
	ordered := make([]types.SceneSample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TimestampSec < ordered[j].TimestampSec
	})

	scores := make([]float64, len(ordered))
	for i, s := range ordered {
		scores[i] = s.Score
	}
	smoothed := movingAverage(scores, smoothRadius(ordered, opt.SmoothWindowSec))

	mean, stddev := meanStddev(smoothed)
	if stddev == 0 {
		// Flat signal carries no motion evidence.
		return nil
	}
	threshold := mean + opt.PeakSigma*stddev

	var windows []types.ShotWindow
	lastPeak := math.Inf(-1)
	for i := 1; i < len(smoothed)-1; i++ {
		if !(smoothed[i] > smoothed[i-1] && smoothed[i] >= smoothed[i+1]) {
			continue
		}
		if smoothed[i] <= threshold {
			continue
		}
		t := ordered[i].TimestampSec
		if t-lastPeak < opt.MinSeparationSec {
			continue
		}
		lastPeak = t

		w := types.ShotWindow{Start: t - opt.WindowBeforeSec, End: t + opt.WindowAfterSec}
		if w.Start < 0 {
			w.Start = 0
		}
		if durationSec > 0 && w.End > durationSec {
			w.End = durationSec
		}
		if w.End > w.Start {
			windows = append(windows, w)
		}
	}
	return merge(windows, opt.MergeGapSec)
}

// smoothRadius converts the time-domain window into a sample radius using
// the observed sampling interval.
func smoothRadius(samples []types.SceneSample, windowSec float64) int {
	if windowSec <= 0 || len(samples) < 2 {
		return 0
	}
	span := samples[len(samples)-1].TimestampSec - samples[0].TimestampSec
	if span <= 0 {
		return 0
	}
	dt := span / float64(len(samples)-1)
	r := int(windowSec / dt / 2)
	if r < 0 {
		return 0
	}
	return r
}

func movingAverage(values []float64, radius int) []float64 {
	if radius <= 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	for i := range values {
		lo := i - radius
		if lo < 0 {
			lo = 0
		}
		hi := i + radius
		if hi > len(values)-1 {
			hi = len(values) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

func meanStddev(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

func merge(windows []types.ShotWindow, gapSec float64) []types.ShotWindow {
	if len(windows) < 2 {
		return windows
	}
	out := windows[:1]
	for _, w := range windows[1:] {
		last := &out[len(out)-1]
		if w.Start-last.End < gapSec {
			if w.End > last.End {
				last.End = w.End
			}
			continue
		}
		out = append(out, w)
	}
	return out
}
