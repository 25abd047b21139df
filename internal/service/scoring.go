package service

import (
	"math"

	"prepdeck/internal/model"
)

// FoldEvaluation folds one validated evaluation into the running aggregates.
// Pure sum/count update: associative and order-independent.
func FoldEvaluation(agg model.RunningAggregates, eval *model.Evaluation) model.RunningAggregates {
	sums := make(map[model.Dimension]float64, len(model.Dimensions))
	for d, v := range agg.DimensionSums {
		sums[d] = v
	}
	for _, d := range model.Dimensions {
		sums[d] += eval.Score(d)
	}
	return model.RunningAggregates{
		DimensionSums: sums,
		OverallSum:    agg.OverallSum + eval.Overall,
		Count:         agg.Count + 1,
	}
}

// SnapshotScores derives the displayable averages from the running aggregates.
// Averages are rounded to one decimal, half away from zero, so client display
// is deterministic across platforms. Strongest/weakest ties go to the
// dimension appearing earlier in the canonical ordering.
func SnapshotScores(agg model.RunningAggregates) model.AggregatedScores {
	scores := model.AggregatedScores{
		Averages: make(map[model.Dimension]float64, len(model.Dimensions)),
		Answered: agg.Count,
	}
	if agg.Count == 0 {
		for _, d := range model.Dimensions {
			scores.Averages[d] = 0
		}
		scores.Strongest = model.Dimensions[0]
		scores.Weakest = model.Dimensions[0]
		return scores
	}

	n := float64(agg.Count)
	strongest, weakest := model.Dimensions[0], model.Dimensions[0]
	var strongestAvg, weakestAvg float64

	for i, d := range model.Dimensions {
		avg := round1(agg.DimensionSums[d] / n)
		scores.Averages[d] = avg
		if i == 0 {
			strongestAvg, weakestAvg = avg, avg
			continue
		}
		if avg > strongestAvg {
			strongest, strongestAvg = d, avg
		}
		if avg < weakestAvg {
			weakest, weakestAvg = d, avg
		}
	}

	scores.OverallAverage = round1(agg.OverallSum / n)
	scores.Strongest = strongest
	scores.Weakest = weakest
	return scores
}

// RankDimensions returns the dimensions ordered by average, best-first or
// worst-first. Equal averages keep the canonical ordering, so ties always
// prefer the earlier canonical dimension regardless of direction.
func RankDimensions(scores model.AggregatedScores, worstFirst bool) []model.Dimension {
	ranked := append([]model.Dimension(nil), model.Dimensions...)
	better := func(a, b model.Dimension) bool {
		if worstFirst {
			return scores.Averages[a] < scores.Averages[b]
		}
		return scores.Averages[a] > scores.Averages[b]
	}
	// Insertion sort with strict comparison keeps canonical order stable on ties.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && better(ranked[j], ranked[j-1]); j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	return ranked
}

// round1 rounds to one decimal, half away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
