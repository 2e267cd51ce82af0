// Package checklist turns a partially-observable weighted checklist into a
// defensible 0..100 score with an explicit confidence tier. Items the rater
// could not observe are excluded from both numerator and denominator: missing
// evidence changes which items count, it never drags the score toward zero.
package checklist

import (
	"fmt"
	"math"

	"github.com/dmolgo/shotscope/internal/types"
)

// WeightCategory mirrors one category of the configured weight table.
type WeightCategory struct {
	Name  string
	Items []ItemWeight
}

type ItemWeight struct {
	ID     string
	Weight float64
}

// Weights is an immutable per-run snapshot of the weight table. Build it
// once at configuration load and pass it by parameter; concurrent runs must
// never share a mutable table.
type Weights struct {
	byID       map[string]float64
	categories []WeightCategory
}

func NewWeights(categories []WeightCategory) *Weights {
	byID := make(map[string]float64)
	cats := make([]WeightCategory, len(categories))
	copy(cats, categories)
	for _, cat := range cats {
		for _, it := range cat.Items {
			byID[it.ID] = it.Weight
		}
	}
	return &Weights{byID: byID, categories: cats}
}

// ItemWeight reports the configured weight for an item ID, 0 when unknown.
func (w *Weights) ItemWeight(id string) float64 { return w.byID[id] }

// CategoryNominal is the category's full weight mass.
func (w *Weights) CategoryNominal(name string) float64 {
	for _, cat := range w.categories {
		if cat.Name != name {
			continue
		}
		var sum float64
		for _, it := range cat.Items {
			sum += it.Weight
		}
		return sum
	}
	return 0
}

const (
	highEvaluability   = 0.8
	mediumEvaluability = 0.5
)

// Score computes the global result plus per-category subtotals. A checklist
// with nothing evaluable scores 0 with low confidence; that is a defined
// outcome, not an error.
func Score(categories []types.ChecklistCategory, w *Weights) types.ScoreResult {
	res := types.ScoreResult{
		Confidence:          types.ConfidenceLow,
		NonEvaluableReasons: []string{},
	}

	var numer float64
	for _, cat := range categories {
		catScore := types.CategoryScore{Name: cat.Name, Max: w.CategoryNominal(cat.Name)}
		var catNumer, catDenom float64

		for _, item := range cat.Items {
			weight := w.ItemWeight(item.ID)
			if weight <= 0 {
				continue
			}
			if !evaluable(item) {
				res.NonEvaluableCount++
				res.NonEvaluableReasons = append(res.NonEvaluableReasons, reasonFor(item))
				continue
			}
			percent := clamp(float64(item.Rating)/5*100, 0, 100)
			res.EvaluableCount++
			res.EvaluableWeightSum += weight
			numer += weight * percent
			catNumer += weight * percent
			catDenom += weight
		}

		if catDenom > 0 && catScore.Max > 0 {
			catScore.Achieved = round2(catNumer / catDenom * catScore.Max / 100)
		}
		res.Categories = append(res.Categories, catScore)
	}

	if res.EvaluableWeightSum > 0 {
		res.Score = round2(numer / res.EvaluableWeightSum)
	}

	total := res.EvaluableCount + res.NonEvaluableCount
	if total > 0 {
		ratio := float64(res.EvaluableCount) / float64(total)
		switch {
		case ratio >= highEvaluability:
			res.Confidence = types.ConfidenceHigh
		case ratio >= mediumEvaluability:
			res.Confidence = types.ConfidenceMedium
		}
	}
	return res
}

func evaluable(item types.ChecklistItem) bool {
	return !item.NA && item.Status != types.StatusNotEvaluable && item.Rating > 0
}

// reasonFor records why an item was skipped; the score's meaning depends on
// knowing what was left out.
func reasonFor(item types.ChecklistItem) string {
	if item.Status == types.StatusNotEvaluable {
		reason := item.Reason
		if reason == "" {
			reason = "unspecified"
		}
		return fmt.Sprintf("%s: %s", item.ID, reason)
	}
	return fmt.Sprintf("%s: marked N/A", item.ID)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
