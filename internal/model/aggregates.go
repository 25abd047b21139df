package model

// RunningAggregates holds the incremental sums the score aggregator folds
// evaluations into. Order-independent by construction (sum/count), though turn
// ordering is still preserved on the session for history.
type RunningAggregates struct {
	DimensionSums map[Dimension]float64 `json:"dimensionSums,omitempty" bson:"dimensionSums,omitempty"`
	OverallSum    float64               `json:"overallSum" bson:"overallSum"`
	Count         int                   `json:"count" bson:"count"`
}

// AggregatedScores is the derived snapshot of RunningAggregates: per-dimension
// averages rounded to one decimal, plus strongest/weakest dimension.
type AggregatedScores struct {
	Averages       map[Dimension]float64 `json:"averages" bson:"averages"`
	OverallAverage float64               `json:"overallAverage" bson:"overallAverage"`
	Strongest      Dimension             `json:"strongestDimension" bson:"strongestDimension"`
	Weakest        Dimension             `json:"weakestDimension" bson:"weakestDimension"`
	Answered       int                   `json:"questionsAnswered" bson:"questionsAnswered"`
}
