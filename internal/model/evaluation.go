package model

import "fmt"

// Dimension is one of the five scoring axes.
type Dimension string

const (
	DimensionTechnical      Dimension = "technical"
	DimensionDepth          Dimension = "depth"
	DimensionClarity        Dimension = "clarity"
	DimensionProblemSolving Dimension = "problemSolving"
	DimensionCommunication  Dimension = "communication"
)

// Dimensions is the canonical ordering. Ties between dimension averages are broken
// in favor of the dimension that appears earlier in this list.
var Dimensions = []Dimension{
	DimensionTechnical,
	DimensionDepth,
	DimensionClarity,
	DimensionProblemSolving,
	DimensionCommunication,
}

// Evaluation is the evaluator's verdict on a single answer. Scores are 0-10.
// AI-sourced payloads are validated here before they touch session state.
type Evaluation struct {
	Technical      float64  `json:"technical" bson:"technical"`
	Depth          float64  `json:"depth" bson:"depth"`
	Clarity        float64  `json:"clarity" bson:"clarity"`
	ProblemSolving float64  `json:"problemSolving" bson:"problemSolving"`
	Communication  float64  `json:"communication" bson:"communication"`
	Overall        float64  `json:"overall" bson:"overall"`
	Strengths      []string `json:"strengths,omitempty" bson:"strengths,omitempty"`
	Weaknesses     []string `json:"weaknesses,omitempty" bson:"weaknesses,omitempty"`
	Improvements   []string `json:"improvements,omitempty" bson:"improvements,omitempty"`
}

// Score returns the sub-score for the given dimension.
func (e *Evaluation) Score(d Dimension) float64 {
	switch d {
	case DimensionTechnical:
		return e.Technical
	case DimensionDepth:
		return e.Depth
	case DimensionClarity:
		return e.Clarity
	case DimensionProblemSolving:
		return e.ProblemSolving
	case DimensionCommunication:
		return e.Communication
	}
	return 0
}

// Validate checks that every score is within [0, 10].
func (e *Evaluation) Validate() error {
	for _, d := range Dimensions {
		if s := e.Score(d); s < 0 || s > 10 {
			return fmt.Errorf("dimension %s score %.2f out of range [0,10]", d, s)
		}
	}
	if e.Overall < 0 || e.Overall > 10 {
		return fmt.Errorf("overall score %.2f out of range [0,10]", e.Overall)
	}
	return nil
}
