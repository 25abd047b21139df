package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"prepdeck/internal/config"
	"prepdeck/internal/model"
)

// GeneratorService produces interview questions via the Gemini API. Without an
// API key it falls back to a deterministic local question bank so the service
// stays usable in development. With a key configured, upstream failures are
// returned to the caller (the lifecycle manager surfaces them as retryable).
type GeneratorService struct {
	config *config.AIConfig
	client *gemini
}

// NewGeneratorService creates a new question generator service.
func NewGeneratorService(cfg *config.AIConfig) *GeneratorService {
	return &GeneratorService{
		config: cfg,
		client: newGemini(cfg),
	}
}

var _ QuestionSource = (*GeneratorService)(nil)

// NextQuestion returns the next question for the session, adapted to the
// running weakest-dimension signal.
func (s *GeneratorService) NextQuestion(ctx context.Context, req *QuestionRequest) (*model.GeneratedQuestion, error) {
	if !s.config.IsEnabled() {
		return s.localQuestion(req), nil
	}

	response, err := s.client.generate(ctx, s.config.Models.Question, s.buildPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("generating question: %w", err)
	}

	var question model.GeneratedQuestion
	if err := json.Unmarshal([]byte(response), &question); err != nil {
		return nil, fmt.Errorf("parsing generated question: %w", err)
	}
	if strings.TrimSpace(question.Question) == "" {
		return nil, fmt.Errorf("question source returned an empty question")
	}
	if question.Difficulty == "" {
		question.Difficulty = model.DifficultyMedium
	}
	return &question, nil
}

func (s *GeneratorService) buildPrompt(req *QuestionRequest) string {
	var history strings.Builder
	for _, turn := range req.History {
		history.WriteString(fmt.Sprintf("- Q%d (%s, %s): %s\n  Overall score: %.1f\n",
			turn.Index, turn.Question.Topic, turn.Question.Difficulty,
			turn.Question.Question, turn.Evaluation.Overall))
	}

	adapt := ""
	if req.WeakestHint != "" {
		adapt = fmt.Sprintf("\nThe candidate's weakest dimension so far is %q. Bias the next question toward probing that dimension, and adjust difficulty to their performance.", req.WeakestHint)
	}

	return fmt.Sprintf(`You are a technical interviewer. Generate the next interview question. Return ONLY valid JSON:
{
  "question": "the question text",
  "topic": "short topic label",
  "difficulty": "easy" or "medium" or "hard"
}

Role: %s
Experience level: %s

Previous questions:
%s%s

Do NOT repeat a topic already covered. Keep the question answerable in a few minutes of speaking.`,
		req.Role, req.ExperienceLevel, history.String(), adapt)
}

// localQuestion is the no-API fallback: cycles a small bank, skewing harder for
// senior candidates and easier when the candidate is struggling.
func (s *GeneratorService) localQuestion(req *QuestionRequest) *model.GeneratedQuestion {
	bank := []model.GeneratedQuestion{
		{Question: "Walk me through a system you designed end to end. What were the hardest trade-offs?", Topic: "system design", Difficulty: model.DifficultyMedium},
		{Question: "How would you debug a service whose latency doubled overnight with no deploy?", Topic: "debugging", Difficulty: model.DifficultyMedium},
		{Question: "Explain how you would make a write-heavy API idempotent.", Topic: "api design", Difficulty: model.DifficultyHard},
		{Question: "What does database indexing cost you, and when would you avoid adding an index?", Topic: "databases", Difficulty: model.DifficultyMedium},
		{Question: "Describe a production incident you handled. What changed afterwards?", Topic: "operations", Difficulty: model.DifficultyEasy},
		{Question: "How do you decide between synchronous calls and a message queue between services?", Topic: "architecture", Difficulty: model.DifficultyMedium},
		{Question: "Explain a race condition you have actually hit and how you fixed it.", Topic: "concurrency", Difficulty: model.DifficultyHard},
	}

	question := bank[len(req.History)%len(bank)]
	if req.ExperienceLevel == model.LevelSenior && question.Difficulty == model.DifficultyEasy {
		question.Difficulty = model.DifficultyMedium
	}
	return &question
}

// gemini is a minimal client for the generateContent endpoint, shared by the
// generator and evaluator services.
type gemini struct {
	config *config.AIConfig
	client *http.Client
}

func newGemini(cfg *config.AIConfig) *gemini {
	return &gemini{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// generate makes a request to the Gemini API and returns the JSON text of the
// first candidate.
func (g *gemini) generate(ctx context.Context, modelName, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", g.config.ModelEndpoint(modelName), g.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}
