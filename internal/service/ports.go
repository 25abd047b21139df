package service

import (
	"context"

	"prepdeck/internal/model"
)

// QuestionSource produces the next interview question. External collaborator;
// failures are retryable upstream errors and never mutate session state.
type QuestionSource interface {
	NextQuestion(ctx context.Context, req *QuestionRequest) (*model.GeneratedQuestion, error)
}

// QuestionRequest carries everything the source needs to adapt difficulty and
// topic, including the running weakest-dimension signal.
type QuestionRequest struct {
	Role            string
	ExperienceLevel model.ExperienceLevel
	History         []model.QuestionTurn
	WeakestHint     model.Dimension // empty until at least one answer is scored
}

// Evaluator scores a single answer. External collaborator; payloads are
// validated before they are folded into aggregates.
type Evaluator interface {
	Evaluate(ctx context.Context, req *EvaluationRequest) (*model.Evaluation, error)
}

// EvaluationRequest carries the current question, the candidate's answer, and
// accumulated history for context.
type EvaluationRequest struct {
	Question   model.GeneratedQuestion
	AnswerText string
	VoiceMeta  *model.VoiceMetadata
	History    []model.QuestionTurn
}

// Entitlements is the payment/subscription lookup, consumed rather than owned.
type Entitlements interface {
	AllowStart(ctx context.Context, userID string) (bool, error)
}

// AllowAllEntitlements grants every start request. Used when no billing
// integration is configured.
type AllowAllEntitlements struct{}

func (AllowAllEntitlements) AllowStart(context.Context, string) (bool, error) {
	return true, nil
}

// Broadcaster pushes lifecycle events to connected clients (avoids import cycle
// with the websocket transport). Purely advisory; correctness never depends on
// a client receiving an event.
type Broadcaster interface {
	PublishToUser(userID string, event string, payload interface{})
}
