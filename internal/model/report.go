package model

import "time"

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "High"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceLow    ConfidenceLevel = "Low"
)

type HireRecommendation string

const (
	HireYes   HireRecommendation = "Yes"
	HireMaybe HireRecommendation = "Maybe"
	HireNo    HireRecommendation = "No"
)

type HireBand string

const (
	BandStrongHire HireBand = "Strong Hire"
	BandHire       HireBand = "Hire"
	BandBorderline HireBand = "Borderline"
	BandNoHire     HireBand = "No Hire"
)

// FinalReport is the immutable verdict artifact produced exactly once at the
// COMPLETED transition. It is never recomputed after persistence.
type FinalReport struct {
	AverageScore         float64            `json:"averageScore" bson:"averageScore"`
	Scores               AggregatedScores   `json:"scores" bson:"scores"`
	StrongestAreas       []Dimension        `json:"strongestAreas" bson:"strongestAreas"`
	WeakestAreas         []Dimension        `json:"weakestAreas" bson:"weakestAreas"`
	ConfidenceLevel      ConfidenceLevel    `json:"confidenceLevel" bson:"confidenceLevel"`
	HireRecommendation   HireRecommendation `json:"hireRecommendation" bson:"hireRecommendation"`
	HireBand             HireBand           `json:"hireBand" bson:"hireBand"`
	ImprovementRoadmap   []string           `json:"improvementRoadmap" bson:"improvementRoadmap"`
	NextPreparationFocus string             `json:"nextPreparationFocus" bson:"nextPreparationFocus"`
	QuestionsAnswered    int                `json:"questionsAnswered" bson:"questionsAnswered"`
	GeneratedAt          time.Time          `json:"generatedAt" bson:"generatedAt"`
}
