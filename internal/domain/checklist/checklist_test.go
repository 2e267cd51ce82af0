package checklist

import (
	"strings"
	"testing"

	"github.com/dmolgo/shotscope/internal/types"
)

func quadWeights() *Weights {
	return NewWeights([]WeightCategory{
		{Name: "form", Items: []ItemWeight{
			{ID: "a", Weight: 25},
			{ID: "b", Weight: 25},
		}},
		{Name: "finish", Items: []ItemWeight{
			{ID: "c", Weight: 25},
			{ID: "d", Weight: 25},
		}},
	})
}

func rated(id string, rating int) types.ChecklistItem {
	return types.ChecklistItem{ID: id, Rating: rating}
}

func TestScore_AllMax(t *testing.T) {
	cats := []types.ChecklistCategory{
		{Name: "form", Items: []types.ChecklistItem{rated("a", 5), rated("b", 5)}},
		{Name: "finish", Items: []types.ChecklistItem{rated("c", 5), rated("d", 5)}},
	}
	res := Score(cats, quadWeights())
	if res.Score != 100 {
		t.Fatalf("expected 100, got %g", res.Score)
	}
	if res.Confidence != types.ConfidenceHigh {
		t.Fatalf("expected high confidence, got %s", res.Confidence)
	}
	if res.EvaluableCount != 4 || res.NonEvaluableCount != 0 {
		t.Fatalf("expected 4 evaluable, got %d/%d", res.EvaluableCount, res.NonEvaluableCount)
	}
}

func TestScore_AllMin(t *testing.T) {
	cats := []types.ChecklistCategory{
		{Name: "form", Items: []types.ChecklistItem{rated("a", 1), rated("b", 1)}},
		{Name: "finish", Items: []types.ChecklistItem{rated("c", 1), rated("d", 1)}},
	}
	res := Score(cats, quadWeights())
	if res.Score != 20 {
		t.Fatalf("expected 20 for all-ones, got %g", res.Score)
	}
}

func TestScore_NAExcludedFromBothSides(t *testing.T) {
	// One of four equal-weight items is N/A; the other three rate 4.
	// Score must be 80 over the evaluable mass, not dragged down.
	cats := []types.ChecklistCategory{
		{Name: "form", Items: []types.ChecklistItem{
			rated("a", 4),
			{ID: "b", NA: true},
		}},
		{Name: "finish", Items: []types.ChecklistItem{rated("c", 4), rated("d", 4)}},
	}
	res := Score(cats, quadWeights())
	if res.Score != 80 {
		t.Fatalf("expected 80, got %g", res.Score)
	}
	if res.EvaluableWeightSum != 75 {
		t.Fatalf("expected evaluable weight 75, got %g", res.EvaluableWeightSum)
	}
	// 3 of 4 evaluable -> 0.75, below the high tier.
	if res.Confidence != types.ConfidenceMedium {
		t.Fatalf("expected medium confidence, got %s", res.Confidence)
	}
	if len(res.NonEvaluableReasons) != 1 || res.NonEvaluableReasons[0] != "b: marked N/A" {
		t.Fatalf("expected N/A reason for b, got %v", res.NonEvaluableReasons)
	}
}

func TestScore_NotEvaluableReason(t *testing.T) {
	cats := []types.ChecklistCategory{
		{Name: "form", Items: []types.ChecklistItem{
			rated("a", 5),
			{ID: "b", Status: types.StatusNotEvaluable, Reason: "wrist occluded"},
		}},
		{Name: "finish", Items: []types.ChecklistItem{
			rated("c", 5),
			{ID: "d", Status: types.StatusNotEvaluable},
		}},
	}
	res := Score(cats, quadWeights())
	if len(res.NonEvaluableReasons) != 2 {
		t.Fatalf("expected 2 reasons, got %v", res.NonEvaluableReasons)
	}
	if res.NonEvaluableReasons[0] != "b: wrist occluded" {
		t.Fatalf("expected recorded reason, got %q", res.NonEvaluableReasons[0])
	}
	if !strings.HasSuffix(res.NonEvaluableReasons[1], "unspecified") {
		t.Fatalf("expected unspecified placeholder, got %q", res.NonEvaluableReasons[1])
	}
	// 2 of 4 -> 0.5, exactly the medium threshold.
	if res.Confidence != types.ConfidenceMedium {
		t.Fatalf("expected medium confidence, got %s", res.Confidence)
	}
}

func TestScore_NothingEvaluable(t *testing.T) {
	cats := []types.ChecklistCategory{
		{Name: "form", Items: []types.ChecklistItem{
			{ID: "a", NA: true},
			{ID: "b", Status: types.StatusNotEvaluable},
		}},
	}
	res := Score(cats, quadWeights())
	if res.Score != 0 {
		t.Fatalf("expected defined 0 score, got %g", res.Score)
	}
	if res.Confidence != types.ConfidenceLow {
		t.Fatalf("expected low confidence, got %s", res.Confidence)
	}
}

func TestScore_ZeroRatingIsNotEvaluable(t *testing.T) {
	cats := []types.ChecklistCategory{
		{Name: "form", Items: []types.ChecklistItem{rated("a", 0), rated("b", 5)}},
	}
	res := Score(cats, quadWeights())
	if res.EvaluableCount != 1 || res.NonEvaluableCount != 1 {
		t.Fatalf("expected unrated item excluded, got %d/%d", res.EvaluableCount, res.NonEvaluableCount)
	}
	if res.Score != 100 {
		t.Fatalf("expected 100 over the rated item only, got %g", res.Score)
	}
}

func TestScore_UnknownItemIgnored(t *testing.T) {
	cats := []types.ChecklistCategory{
		{Name: "form", Items: []types.ChecklistItem{rated("a", 5), rated("mystery", 1)}},
	}
	res := Score(cats, quadWeights())
	if res.EvaluableCount != 1 {
		t.Fatalf("expected unknown item skipped, got %d evaluable", res.EvaluableCount)
	}
	if res.Score != 100 {
		t.Fatalf("expected 100, got %g", res.Score)
	}
}

func TestScore_RatingClamped(t *testing.T) {
	cats := []types.ChecklistCategory{
		{Name: "form", Items: []types.ChecklistItem{rated("a", 9)}},
	}
	res := Score(cats, quadWeights())
	if res.Score != 100 {
		t.Fatalf("expected out-of-range rating clamped to 100, got %g", res.Score)
	}
}

func TestScore_CategorySubtotals(t *testing.T) {
	cats := []types.ChecklistCategory{
		{Name: "form", Items: []types.ChecklistItem{rated("a", 5), rated("b", 3)}},
		{Name: "finish", Items: []types.ChecklistItem{
			{ID: "c", NA: true},
			{ID: "d", NA: true},
		}},
	}
	res := Score(cats, quadWeights())
	if len(res.Categories) != 2 {
		t.Fatalf("expected 2 category subtotals, got %d", len(res.Categories))
	}
	form := res.Categories[0]
	if form.Max != 50 {
		t.Fatalf("expected form max 50, got %g", form.Max)
	}
	// (25*100 + 25*60) / 50 = 80 percent of a 50-point category.
	if form.Achieved != 40 {
		t.Fatalf("expected form achieved 40, got %g", form.Achieved)
	}
	finish := res.Categories[1]
	if finish.Achieved != 0 || finish.Max != 50 {
		t.Fatalf("expected empty finish subtotal 0/50, got %g/%g", finish.Achieved, finish.Max)
	}
}

func TestWeights_Lookup(t *testing.T) {
	w := quadWeights()
	if got := w.ItemWeight("a"); got != 25 {
		t.Fatalf("expected weight 25, got %g", got)
	}
	if got := w.ItemWeight("nope"); got != 0 {
		t.Fatalf("expected 0 for unknown id, got %g", got)
	}
	if got := w.CategoryNominal("finish"); got != 50 {
		t.Fatalf("expected category mass 50, got %g", got)
	}
	if got := w.CategoryNominal("nope"); got != 0 {
		t.Fatalf("expected 0 for unknown category, got %g", got)
	}
}
