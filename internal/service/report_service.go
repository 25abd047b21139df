package service

import (
	"fmt"
	"strings"
	"time"

	"prepdeck/internal/config"
	"prepdeck/internal/model"
)

// defaultRoadmapTemplates is the built-in preparation advice per dimension,
// overridable via the policy file.
var defaultRoadmapTemplates = map[model.Dimension]string{
	model.DimensionTechnical:      "Review core concepts for your target role and drill implementation questions until explanations come without hesitation.",
	model.DimensionDepth:          "Practice going beyond the surface answer: for each topic, explain the trade-offs, failure modes, and how you would verify your claims.",
	model.DimensionClarity:        "Structure answers as situation, approach, outcome. Record yourself and cut filler until each answer has one clear thread.",
	model.DimensionProblemSolving: "Work through unfamiliar problems out loud, stating assumptions and checking them before committing to a solution.",
	model.DimensionCommunication:  "Rehearse explaining technical decisions to a non-expert listener and invite questions mid-answer instead of monologuing.",
}

// ReportService derives the final verdict from a completed session's
// aggregates. Pure: same aggregates and policy always produce the same report
// (modulo the generation timestamp).
type ReportService struct {
	policy *config.Policy
}

func NewReportService(policy *config.Policy) *ReportService {
	return &ReportService{policy: policy}
}

// Generate builds the final report from the closing score snapshot. Called
// exactly once, at the COMPLETED transition; the result is stored immutably on
// the session and never recomputed.
func (s *ReportService) Generate(scores model.AggregatedScores) *model.FinalReport {
	best := RankDimensions(scores, false)
	worst := RankDimensions(scores, true)

	strongest := []model.Dimension{best[0], best[1]}
	weakest := []model.Dimension{worst[0], worst[1]}

	report := &model.FinalReport{
		AverageScore:       scores.OverallAverage,
		Scores:             scores,
		StrongestAreas:     strongest,
		WeakestAreas:       weakest,
		ConfidenceLevel:    s.confidenceLevel(scores.OverallAverage),
		HireRecommendation: s.hireRecommendation(scores.OverallAverage),
		HireBand:           s.hireBand(scores.OverallAverage),
		QuestionsAnswered:  scores.Answered,
		GeneratedAt:        time.Now().UTC(),
	}
	report.ImprovementRoadmap = s.roadmap(weakest)
	report.NextPreparationFocus = s.preparationFocus(weakest[0])
	return report
}

func (s *ReportService) confidenceLevel(avg float64) model.ConfidenceLevel {
	switch {
	case avg >= s.policy.Report.ConfidenceHigh:
		return model.ConfidenceHigh
	case avg >= s.policy.Report.ConfidenceMedium:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func (s *ReportService) hireRecommendation(avg float64) model.HireRecommendation {
	switch {
	case avg >= s.policy.Report.HireYes:
		return model.HireYes
	case avg >= s.policy.Report.HireMaybe:
		return model.HireMaybe
	default:
		return model.HireNo
	}
}

func (s *ReportService) hireBand(avg float64) model.HireBand {
	switch {
	case avg >= s.policy.Report.BandStrongHire:
		return model.BandStrongHire
	case avg >= s.policy.Report.BandHire:
		return model.BandHire
	case avg >= s.policy.Report.BandBorderline:
		return model.BandBorderline
	default:
		return model.BandNoHire
	}
}

func (s *ReportService) roadmap(weakest []model.Dimension) []string {
	roadmap := make([]string, 0, len(weakest))
	for _, d := range weakest {
		roadmap = append(roadmap, s.templateFor(d))
	}
	return roadmap
}

func (s *ReportService) preparationFocus(weakest model.Dimension) string {
	return fmt.Sprintf("Focus your next preparation sessions on %s: %s",
		humanDimension(weakest), s.templateFor(weakest))
}

func (s *ReportService) templateFor(d model.Dimension) string {
	if s.policy.RoadmapTemplates != nil {
		if tpl, ok := s.policy.RoadmapTemplates[string(d)]; ok && tpl != "" {
			return tpl
		}
	}
	return defaultRoadmapTemplates[d]
}

func humanDimension(d model.Dimension) string {
	if d == model.DimensionProblemSolving {
		return "problem solving"
	}
	return strings.ToLower(string(d))
}
