package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the interview business constants. Thresholds were calibrated
// against the product's scoring rubric and are configuration, not code.
type Policy struct {
	Interview InterviewPolicy `yaml:"interview"`
	Report    ReportPolicy    `yaml:"report"`

	// RoadmapTemplates maps a dimension name to the preparation advice emitted
	// when that dimension ends up among the weakest areas. Missing entries fall
	// back to built-in defaults.
	RoadmapTemplates map[string]string `yaml:"roadmap_templates"`
}

type InterviewPolicy struct {
	// MaxQuestions is the default turn cap for new sessions.
	MaxQuestions int `yaml:"max_questions"`

	// MaxQuestionsLimit caps the per-request override.
	MaxQuestionsLimit int `yaml:"max_questions_limit"`
}

type ReportPolicy struct {
	ConfidenceHigh   float64 `yaml:"confidence_high"`
	ConfidenceMedium float64 `yaml:"confidence_medium"`
	HireYes          float64 `yaml:"hire_yes"`
	HireMaybe        float64 `yaml:"hire_maybe"`
	BandStrongHire   float64 `yaml:"band_strong_hire"`
	BandHire         float64 `yaml:"band_hire"`
	BandBorderline   float64 `yaml:"band_borderline"`
}

// DefaultPolicy returns the built-in policy used when no policy file is given.
func DefaultPolicy() *Policy {
	return &Policy{
		Interview: InterviewPolicy{
			MaxQuestions:      5,
			MaxQuestionsLimit: 20,
		},
		Report: ReportPolicy{
			ConfidenceHigh:   7.5,
			ConfidenceMedium: 5.0,
			HireYes:          7.0,
			HireMaybe:        5.0,
			BandStrongHire:   8.5,
			BandHire:         7.0,
			BandBorderline:   5.0,
		},
	}
}

// LoadPolicy reads a policy file, applying defaults for omitted values.
func LoadPolicy(filename string) (*Policy, error) {
	policy := DefaultPolicy()
	if filename == "" {
		return policy, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading policy file %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("parsing policy file %s: %w", filename, err)
	}

	if err := validatePolicy(policy); err != nil {
		return nil, fmt.Errorf("invalid policy file %s: %w", filename, err)
	}

	return policy, nil
}

func validatePolicy(p *Policy) error {
	if p.Interview.MaxQuestions <= 0 {
		return fmt.Errorf("interview.max_questions must be greater than 0")
	}

	if p.Interview.MaxQuestionsLimit < p.Interview.MaxQuestions {
		return fmt.Errorf("interview.max_questions_limit (%d) must be at least max_questions (%d)",
			p.Interview.MaxQuestionsLimit, p.Interview.MaxQuestions)
	}

	r := p.Report
	if r.ConfidenceMedium > r.ConfidenceHigh {
		return fmt.Errorf("report.confidence_medium (%.1f) must not exceed confidence_high (%.1f)",
			r.ConfidenceMedium, r.ConfidenceHigh)
	}

	if r.HireMaybe > r.HireYes {
		return fmt.Errorf("report.hire_maybe (%.1f) must not exceed hire_yes (%.1f)",
			r.HireMaybe, r.HireYes)
	}

	if r.BandBorderline > r.BandHire || r.BandHire > r.BandStrongHire {
		return fmt.Errorf("report bands must be ordered: borderline <= hire <= strong_hire")
	}

	return nil
}
