package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"prepdeck/internal/config"
	"prepdeck/internal/model"
)

// EvaluatorService scores answers via the Gemini API, with a deterministic
// heuristic fallback when no API key is configured. Payload validation happens
// in the lifecycle manager before scores reach session state.
type EvaluatorService struct {
	config *config.AIConfig
	client *gemini
}

// NewEvaluatorService creates a new evaluator service.
func NewEvaluatorService(cfg *config.AIConfig) *EvaluatorService {
	return &EvaluatorService{
		config: cfg,
		client: newGemini(cfg),
	}
}

var _ Evaluator = (*EvaluatorService)(nil)

// Evaluate scores one answer along the five dimensions.
func (s *EvaluatorService) Evaluate(ctx context.Context, req *EvaluationRequest) (*model.Evaluation, error) {
	if !s.config.IsEnabled() {
		return s.heuristicEvaluate(req), nil
	}

	response, err := s.client.generate(ctx, s.config.Models.Eval, s.buildPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("evaluating answer: %w", err)
	}

	var evaluation model.Evaluation
	if err := json.Unmarshal([]byte(response), &evaluation); err != nil {
		return nil, fmt.Errorf("parsing evaluation: %w", err)
	}
	return &evaluation, nil
}

func (s *EvaluatorService) buildPrompt(req *EvaluationRequest) string {
	voice := ""
	if req.VoiceMeta != nil {
		voice = fmt.Sprintf(`
Voice delivery metrics:
- Duration: %.0f seconds
- Filler words: %d
- Pauses: %d
- Words per minute: %.0f
Factor delivery into the communication score.`,
			req.VoiceMeta.DurationSeconds, req.VoiceMeta.FillerWordCount,
			req.VoiceMeta.PauseCount, req.VoiceMeta.WordsPerMinute)
	}

	history := ""
	if len(req.History) > 0 {
		var sb strings.Builder
		sb.WriteString("\nEarlier answers this interview (for context, do not re-score):\n")
		for _, turn := range req.History {
			sb.WriteString(fmt.Sprintf("- Q%d on %s scored %.1f overall\n",
				turn.Index, turn.Question.Topic, turn.Evaluation.Overall))
		}
		history = sb.String()
	}

	return fmt.Sprintf(`You are evaluating a technical interview answer. Return ONLY valid JSON:
{
  "technical": 0-10,
  "depth": 0-10,
  "clarity": 0-10,
  "problemSolving": 0-10,
  "communication": 0-10,
  "overall": 0-10,
  "strengths": ["..."],
  "weaknesses": ["..."],
  "improvements": ["..."]
}

Question (%s, %s): %s

Candidate's answer: %q
%s%s

Score each dimension independently on 0-10. Overall is your holistic judgment, not an average.`,
		req.Question.Topic, req.Question.Difficulty, req.Question.Question,
		req.AnswerText, voice, history)
}

// heuristicEvaluate is the no-API fallback: scores scale with answer substance
// so development flows still exercise the full aggregation path.
func (s *EvaluatorService) heuristicEvaluate(req *EvaluationRequest) *model.Evaluation {
	words := len(strings.Fields(req.AnswerText))

	base := 4.0
	switch {
	case words >= 120:
		base = 8.0
	case words >= 60:
		base = 7.0
	case words >= 25:
		base = 6.0
	case words >= 10:
		base = 5.0
	}

	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		if v > 10 {
			return 10
		}
		return v
	}

	communication := base
	if req.VoiceMeta != nil {
		if req.VoiceMeta.FillerWordCount > 10 {
			communication -= 1
		}
		if wpm := req.VoiceMeta.WordsPerMinute; wpm >= 110 && wpm <= 170 {
			communication += 0.5
		}
	}

	return &model.Evaluation{
		Technical:      clamp(base),
		Depth:          clamp(base - 0.5),
		Clarity:        clamp(base + 0.5),
		ProblemSolving: clamp(base),
		Communication:  clamp(communication),
		Overall:        clamp(base),
		Strengths:      []string{"Answer addresses the question asked"},
		Weaknesses:     []string{"Automated heuristic evaluation; enable the AI evaluator for real feedback"},
		Improvements:   []string{"Add concrete examples and trade-off discussion"},
	}
}
