package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPolicyWhenNoFile(t *testing.T) {
	policy, err := LoadPolicy("")
	if err != nil {
		t.Fatalf("LoadPolicy failed: %v", err)
	}
	if policy.Interview.MaxQuestions != 5 {
		t.Fatalf("expected default max_questions 5, got %d", policy.Interview.MaxQuestions)
	}
	if policy.Report.ConfidenceHigh != 7.5 || policy.Report.BandStrongHire != 8.5 {
		t.Fatalf("unexpected default thresholds: %+v", policy.Report)
	}
}

func TestLoadPolicyOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := `
interview:
  max_questions: 8
  max_questions_limit: 10
report:
  confidence_high: 8.0
  confidence_medium: 6.0
  hire_yes: 7.0
  hire_maybe: 5.0
  band_strong_hire: 9.0
  band_hire: 7.5
  band_borderline: 5.5
roadmap_templates:
  clarity: "practice structured answers"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	policy, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy failed: %v", err)
	}
	if policy.Interview.MaxQuestions != 8 {
		t.Fatalf("expected max_questions 8, got %d", policy.Interview.MaxQuestions)
	}
	if policy.Report.ConfidenceHigh != 8.0 {
		t.Fatalf("expected confidence_high 8.0, got %v", policy.Report.ConfidenceHigh)
	}
	if policy.RoadmapTemplates["clarity"] != "practice structured answers" {
		t.Fatalf("expected roadmap template override")
	}
}

func TestLoadPolicyRejectsInvalidThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := `
interview:
  max_questions: 0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadPolicy(path); err == nil {
		t.Fatalf("expected validation error for max_questions 0")
	}
}

func TestLoadPolicyMissingFile(t *testing.T) {
	if _, err := LoadPolicy("/nonexistent/policy.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
