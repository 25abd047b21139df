package service

import (
	"testing"

	"prepdeck/internal/model"
)

func evalWithOverall(overall float64) *model.Evaluation {
	return &model.Evaluation{
		Technical:      overall,
		Depth:          overall,
		Clarity:        overall,
		ProblemSolving: overall,
		Communication:  overall,
		Overall:        overall,
	}
}

func TestFoldAndSnapshotOverallAverage(t *testing.T) {
	var agg model.RunningAggregates
	for _, score := range []float64{6, 8, 7} {
		agg = FoldEvaluation(agg, evalWithOverall(score))
	}

	scores := SnapshotScores(agg)
	if scores.OverallAverage != 7.0 {
		t.Fatalf("expected overall average 7.0, got %v", scores.OverallAverage)
	}
	if scores.Answered != 3 {
		t.Fatalf("expected 3 answered, got %d", scores.Answered)
	}
}

func TestSnapshotStrongestWeakestPerDimension(t *testing.T) {
	// Overall scores would suggest otherwise; strongest/weakest must come from
	// the per-dimension averages.
	var agg model.RunningAggregates
	agg = FoldEvaluation(agg, &model.Evaluation{
		Technical: 9, Depth: 3, Clarity: 6, ProblemSolving: 7, Communication: 5,
		Overall: 2,
	})
	agg = FoldEvaluation(agg, &model.Evaluation{
		Technical: 8, Depth: 4, Clarity: 6, ProblemSolving: 7, Communication: 5,
		Overall: 9,
	})

	scores := SnapshotScores(agg)
	if scores.Strongest != model.DimensionTechnical {
		t.Fatalf("expected strongest technical, got %s", scores.Strongest)
	}
	if scores.Weakest != model.DimensionDepth {
		t.Fatalf("expected weakest depth, got %s", scores.Weakest)
	}
}

func TestSnapshotTieBreakPrefersCanonicalOrder(t *testing.T) {
	var agg model.RunningAggregates
	agg = FoldEvaluation(agg, evalWithOverall(7))

	scores := SnapshotScores(agg)
	if scores.Strongest != model.DimensionTechnical {
		t.Fatalf("tie should pick technical as strongest, got %s", scores.Strongest)
	}
	if scores.Weakest != model.DimensionTechnical {
		t.Fatalf("tie should pick technical as weakest, got %s", scores.Weakest)
	}
}

func TestSnapshotRoundsHalfAwayFromZero(t *testing.T) {
	var agg model.RunningAggregates
	// Two answers averaging 7.25 must display as 7.3, not 7.2.
	agg = FoldEvaluation(agg, evalWithOverall(7.0))
	agg = FoldEvaluation(agg, evalWithOverall(7.5))

	scores := SnapshotScores(agg)
	if scores.OverallAverage != 7.3 {
		t.Fatalf("expected 7.3, got %v", scores.OverallAverage)
	}
	if scores.Averages[model.DimensionTechnical] != 7.3 {
		t.Fatalf("expected technical 7.3, got %v", scores.Averages[model.DimensionTechnical])
	}
}

func TestSnapshotEmptyAggregates(t *testing.T) {
	scores := SnapshotScores(model.RunningAggregates{})
	if scores.OverallAverage != 0 || scores.Answered != 0 {
		t.Fatalf("expected zero snapshot, got %+v", scores)
	}
	for _, d := range model.Dimensions {
		if scores.Averages[d] != 0 {
			t.Fatalf("expected zero average for %s", d)
		}
	}
}

func TestFoldIsOrderIndependent(t *testing.T) {
	evals := []*model.Evaluation{
		{Technical: 9, Depth: 3, Clarity: 6, ProblemSolving: 7, Communication: 5, Overall: 6},
		{Technical: 4, Depth: 8, Clarity: 5, ProblemSolving: 6, Communication: 7, Overall: 7},
		{Technical: 7, Depth: 7, Clarity: 7, ProblemSolving: 7, Communication: 7, Overall: 7},
	}

	var forward, backward model.RunningAggregates
	for i := range evals {
		forward = FoldEvaluation(forward, evals[i])
		backward = FoldEvaluation(backward, evals[len(evals)-1-i])
	}

	a, b := SnapshotScores(forward), SnapshotScores(backward)
	if a.OverallAverage != b.OverallAverage || a.Strongest != b.Strongest || a.Weakest != b.Weakest {
		t.Fatalf("fold order changed the snapshot: %+v vs %+v", a, b)
	}
}

func TestRankDimensionsTieBreak(t *testing.T) {
	scores := model.AggregatedScores{
		Averages: map[model.Dimension]float64{
			model.DimensionTechnical:      6,
			model.DimensionDepth:          6,
			model.DimensionClarity:        8,
			model.DimensionProblemSolving: 4,
			model.DimensionCommunication:  4,
		},
	}

	best := RankDimensions(scores, false)
	if best[0] != model.DimensionClarity || best[1] != model.DimensionTechnical {
		t.Fatalf("unexpected best ranking: %v", best)
	}

	worst := RankDimensions(scores, true)
	if worst[0] != model.DimensionProblemSolving || worst[1] != model.DimensionCommunication {
		t.Fatalf("unexpected worst ranking: %v", worst)
	}
}
