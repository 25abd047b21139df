package service

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"prepdeck/internal/apperr"
	"prepdeck/internal/cache"
	"prepdeck/internal/config"
	"prepdeck/internal/metrics"
	"prepdeck/internal/model"
	"prepdeck/internal/repository"
)

// Lifecycle events published to connected clients.
const (
	EventSessionStarted   = "session_started"
	EventAnswerEvaluated  = "answer_evaluated"
	EventSessionCompleted = "session_completed"
	EventSessionAbandoned = "session_abandoned"
)

// InterviewService owns the session state machine:
//
//	NONE -> IN_PROGRESS -> {COMPLETED, ABANDONED}
//
// It is the only mutator of sessions. Per-session and per-user keyed locks
// serialize mutation inside the process; the repository's partial unique index
// closes the concurrent-start race across processes. Every operation performs
// at most one durable write, and only after all upstream calls have succeeded,
// so a failed evaluation or question fetch never leaves a session partially
// mutated.
type InterviewService struct {
	repo         repository.SessionRepo
	sessionCache cache.SessionCache
	questions    QuestionSource
	evaluator    Evaluator
	entitlements Entitlements
	reports      *ReportService
	policy       *config.Policy
	broadcaster  Broadcaster
	metrics      *metrics.Metrics

	mu           sync.Mutex
	sessionLocks map[string]*sync.Mutex
	userLocks    map[string]*sync.Mutex
}

// NewInterviewService creates the lifecycle manager. sessionCache, broadcaster
// and m may be nil.
func NewInterviewService(
	repo repository.SessionRepo,
	sessionCache cache.SessionCache,
	questions QuestionSource,
	evaluator Evaluator,
	entitlements Entitlements,
	reports *ReportService,
	policy *config.Policy,
	m *metrics.Metrics,
) *InterviewService {
	if entitlements == nil {
		entitlements = AllowAllEntitlements{}
	}
	return &InterviewService{
		repo:         repo,
		sessionCache: sessionCache,
		questions:    questions,
		evaluator:    evaluator,
		entitlements: entitlements,
		reports:      reports,
		policy:       policy,
		metrics:      m,
		sessionLocks: make(map[string]*sync.Mutex),
		userLocks:    make(map[string]*sync.Mutex),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events.
func (s *InterviewService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// StartInterviewInput are the parameters for a new session. MaxQuestions of 0
// means the policy default.
type StartInterviewInput struct {
	UserID          string
	Role            string
	ExperienceLevel model.ExperienceLevel
	Mode            model.InterviewMode
	MaxQuestions    int
}

// StartInterviewOutput returns the new session id and the first question.
type StartInterviewOutput struct {
	SessionID     string                   `json:"sessionId"`
	FirstQuestion *model.GeneratedQuestion `json:"firstQuestion"`
	MaxQuestions  int                      `json:"maxQuestions"`
}

// StartInterview creates a session for the user, or fails with CONFLICT if one
// is already in progress. The caller resolves a conflict via resume-or-abandon.
func (s *InterviewService) StartInterview(ctx context.Context, in *StartInterviewInput) (*StartInterviewOutput, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, apperr.New(apperr.KindValidation, "userId is required")
	}
	if strings.TrimSpace(in.Role) == "" {
		return nil, apperr.New(apperr.KindValidation, "role is required")
	}
	if !model.ValidExperienceLevel(in.ExperienceLevel) {
		return nil, apperr.New(apperr.KindValidation, "unknown experience level %q", in.ExperienceLevel)
	}
	if !model.ValidInterviewMode(in.Mode) {
		return nil, apperr.New(apperr.KindValidation, "unknown interview mode %q", in.Mode)
	}

	maxQuestions := in.MaxQuestions
	if maxQuestions == 0 {
		maxQuestions = s.policy.Interview.MaxQuestions
	}
	if maxQuestions < 1 || maxQuestions > s.policy.Interview.MaxQuestionsLimit {
		return nil, apperr.New(apperr.KindValidation, "maxQuestions must be between 1 and %d", s.policy.Interview.MaxQuestionsLimit)
	}

	allowed, err := s.entitlements.AllowStart(ctx, in.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, err, "checking subscription status")
	}
	if !allowed {
		return nil, apperr.New(apperr.KindValidation, "subscription does not permit starting an interview")
	}

	// The user lock makes existence-check plus create atomic within this
	// process; the repository's unique constraint closes the race across
	// processes.
	unlock := s.lock(s.userLocks, in.UserID)
	defer unlock()

	active, err := s.repo.FindActiveByUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, apperr.New(apperr.KindConflict, "an interview is already in progress for this user")
	}

	firstQuestion, err := s.nextQuestion(ctx, in.Role, in.ExperienceLevel, nil, "")
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		ID:              uuid.New().String(),
		UserID:          in.UserID,
		Role:            in.Role,
		ExperienceLevel: in.ExperienceLevel,
		Mode:            in.Mode,
		Status:          model.SessionInProgress,
		MaxQuestions:    maxQuestions,
		Turns:           []model.QuestionTurn{},
		CurrentQuestion: firstQuestion,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.cacheSet(ctx, session)
	if s.metrics != nil {
		s.metrics.IncrementSessionsStarted()
	}
	s.publish(in.UserID, EventSessionStarted, map[string]interface{}{
		"sessionId":    session.ID,
		"maxQuestions": session.MaxQuestions,
	})

	return &StartInterviewOutput{
		SessionID:     session.ID,
		FirstQuestion: firstQuestion,
		MaxQuestions:  maxQuestions,
	}, nil
}

// SubmitAnswerInput carries one answer for the session's pending question.
type SubmitAnswerInput struct {
	SessionID  string
	AnswerText string
	VoiceMeta  *model.VoiceMetadata
}

// SubmitAnswerOutput returns the evaluation and, unless the session just
// completed, the next question. Report is set only on auto-completion.
type SubmitAnswerOutput struct {
	Evaluation     *model.Evaluation        `json:"evaluation"`
	NextQuestion   *model.GeneratedQuestion `json:"nextQuestion,omitempty"`
	ScoringSummary model.AggregatedScores   `json:"scoringSummary"`
	QuestionNumber int                      `json:"questionNumber"`
	Status         model.SessionStatus      `json:"status"`
	Report         *model.FinalReport       `json:"report,omitempty"`
}

// SubmitAnswer evaluates the answer, appends the turn, folds the aggregates,
// and either fetches the next question or completes the session when the turn
// cap is reached. All state changes land in a single durable write.
func (s *InterviewService) SubmitAnswer(ctx context.Context, in *SubmitAnswerInput) (*SubmitAnswerOutput, error) {
	answer := strings.TrimSpace(in.AnswerText)
	if answer == "" {
		return nil, apperr.New(apperr.KindValidation, "answer text must not be empty")
	}

	unlock := s.lock(s.sessionLocks, in.SessionID)
	defer unlock()

	session, err := s.loadForUpdate(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionInProgress {
		return nil, apperr.New(apperr.KindInvalidState, "session is %s and no longer accepts answers", session.Status)
	}
	if session.CurrentQuestion == nil {
		return nil, apperr.New(apperr.KindInvalidState, "session has no pending question")
	}

	question := *session.CurrentQuestion
	evaluation, err := s.evaluate(ctx, &EvaluationRequest{
		Question:   question,
		AnswerText: answer,
		VoiceMeta:  in.VoiceMeta,
		History:    session.Turns,
	})
	if err != nil {
		return nil, err
	}

	turn := model.QuestionTurn{
		Index:      len(session.Turns) + 1,
		Question:   question,
		AnswerText: answer,
		VoiceMeta:  in.VoiceMeta,
		Evaluation: *evaluation,
		AnsweredAt: time.Now().UTC(),
	}
	session.Turns = append(session.Turns, turn)
	session.Aggregates = FoldEvaluation(session.Aggregates, evaluation)
	session.CurrentQuestion = nil

	summary := SnapshotScores(session.Aggregates)

	out := &SubmitAnswerOutput{
		Evaluation:     evaluation,
		ScoringSummary: summary,
		QuestionNumber: turn.Index,
	}

	if len(session.Turns) >= session.MaxQuestions {
		session.Status = model.SessionCompleted
		session.Report = s.reports.Generate(summary)
		out.Report = session.Report
	} else {
		next, err := s.nextQuestion(ctx, session.Role, session.ExperienceLevel, session.Turns, summary.Weakest)
		if err != nil {
			// Nothing was persisted; the whole submission is safely retryable.
			return nil, err
		}
		session.CurrentQuestion = next
		out.NextQuestion = next
	}
	out.Status = session.Status

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}

	s.cacheSet(ctx, session)
	if s.metrics != nil {
		s.metrics.IncrementAnswersEvaluated()
	}
	s.publish(session.UserID, EventAnswerEvaluated, map[string]interface{}{
		"sessionId":      session.ID,
		"questionNumber": turn.Index,
		"overallAverage": summary.OverallAverage,
	})
	if session.Status == model.SessionCompleted {
		s.dropLocks(session.ID, session.UserID)
		if s.metrics != nil {
			s.metrics.IncrementSessionsCompleted()
		}
		s.publish(session.UserID, EventSessionCompleted, map[string]interface{}{"sessionId": session.ID})
	}

	return out, nil
}

// CompleteInterview finishes the session early and generates the report.
// Idempotent: a second call returns the stored report unchanged.
func (s *InterviewService) CompleteInterview(ctx context.Context, sessionID string) (*model.FinalReport, error) {
	unlock := s.lock(s.sessionLocks, sessionID)
	defer unlock()

	session, err := s.loadForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case model.SessionCompleted:
		return session.Report, nil
	case model.SessionAbandoned:
		return nil, apperr.New(apperr.KindInvalidState, "session was abandoned and has no report")
	}

	session.Status = model.SessionCompleted
	session.CurrentQuestion = nil
	session.Report = s.reports.Generate(SnapshotScores(session.Aggregates))

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}

	s.cacheSet(ctx, session)
	s.dropLocks(session.ID, session.UserID)
	if s.metrics != nil {
		s.metrics.IncrementSessionsCompleted()
	}
	s.publish(session.UserID, EventSessionCompleted, map[string]interface{}{"sessionId": session.ID})

	return session.Report, nil
}

// AbandonSession releases the user's active-session slot without a report.
// Idempotent on terminal sessions and never downgrades a COMPLETED one.
func (s *InterviewService) AbandonSession(ctx context.Context, sessionID string) (*model.Session, error) {
	unlock := s.lock(s.sessionLocks, sessionID)
	defer unlock()

	session, err := s.loadForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		return session, nil
	}

	session.Status = model.SessionAbandoned
	session.CurrentQuestion = nil

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}

	s.cacheSet(ctx, session)
	s.dropLocks(session.ID, session.UserID)
	if s.metrics != nil {
		s.metrics.IncrementSessionsAbandoned()
	}
	s.publish(session.UserID, EventSessionAbandoned, map[string]interface{}{"sessionId": session.ID})

	return session, nil
}

// GetActiveSession returns the user's IN_PROGRESS session, or nil. Backs the
// client-side reload guard's resume-or-abandon prompt.
func (s *InterviewService) GetActiveSession(ctx context.Context, userID string) (*model.Session, error) {
	return s.repo.FindActiveByUser(ctx, userID)
}

// GetSession is a read-only fetch including turns, aggregates, and report.
func (s *InterviewService) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if s.sessionCache != nil {
		if cached, err := s.sessionCache.Get(ctx, sessionID); err == nil && cached != nil {
			return cached, nil
		}
	}

	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.New(apperr.KindNotFound, "session %s not found", sessionID)
	}
	s.cacheSet(ctx, session)
	return session, nil
}

// loadForUpdate fetches the session straight from the repository. Mutating
// paths never read the cache: cached copies do not carry the version stamp the
// optimistic update needs.
func (s *InterviewService) loadForUpdate(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.New(apperr.KindNotFound, "session %s not found", sessionID)
	}
	return session, nil
}

func (s *InterviewService) nextQuestion(ctx context.Context, role string, level model.ExperienceLevel, history []model.QuestionTurn, weakest model.Dimension) (*model.GeneratedQuestion, error) {
	question, err := s.questions.NextQuestion(ctx, &QuestionRequest{
		Role:            role,
		ExperienceLevel: level,
		History:         history,
		WeakestHint:     weakest,
	})
	if s.metrics != nil {
		s.metrics.IncrementUpstreamCall(err == nil)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, err, "question source failed")
	}
	if s.metrics != nil {
		s.metrics.IncrementQuestionsAsked()
	}
	return question, nil
}

func (s *InterviewService) evaluate(ctx context.Context, req *EvaluationRequest) (*model.Evaluation, error) {
	evaluation, err := s.evaluator.Evaluate(ctx, req)
	if s.metrics != nil {
		s.metrics.IncrementUpstreamCall(err == nil)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, err, "evaluator failed")
	}
	if err := evaluation.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, err, "evaluator returned an invalid payload")
	}
	return evaluation, nil
}

func (s *InterviewService) lock(locks map[string]*sync.Mutex, key string) func() {
	s.mu.Lock()
	l, ok := locks[key]
	if !ok {
		l = &sync.Mutex{}
		locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// dropLocks removes a terminal session's mutex entries so the lock maps do not
// grow for the life of the process. A waiter still parked on an evicted mutex
// is harmless: session mutators bail on the terminal status check, and a
// racing start still lands on the repository's uniqueness constraint.
func (s *InterviewService) dropLocks(sessionID, userID string) {
	s.mu.Lock()
	delete(s.sessionLocks, sessionID)
	delete(s.userLocks, userID)
	s.mu.Unlock()
}

func (s *InterviewService) cacheSet(ctx context.Context, session *model.Session) {
	if s.sessionCache == nil {
		return
	}
	if err := s.sessionCache.Set(ctx, session); err != nil {
		log.Printf("session cache set failed for %s: %v", session.ID, err)
		// Evict rather than leave a stale copy serving reads until the TTL.
		if err := s.sessionCache.Delete(ctx, session.ID); err != nil {
			log.Printf("session cache delete failed for %s: %v", session.ID, err)
		}
	}
}

func (s *InterviewService) publish(userID, event string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.PublishToUser(userID, event, payload)
	}
}
