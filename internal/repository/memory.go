package repository

import (
	"context"
	"sync"
	"time"

	"prepdeck/internal/apperr"
	"prepdeck/internal/model"
)

// memorySessionRepo is an in-memory SessionRepo for tests and local runs.
// It mirrors the Mongo behavior, including the one-active-session-per-user
// constraint and the optimistic version check.
type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func NewMemorySessionRepo() SessionRepo {
	return &memorySessionRepo{
		sessions: make(map[string]*model.Session),
	}
}

func (r *memorySessionRepo) Create(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sessions {
		if existing.UserID == session.UserID && existing.Status == model.SessionInProgress {
			return apperr.New(apperr.KindConflict, "an interview is already in progress for this user")
		}
	}

	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	session.Version = 1
	r.sessions[session.ID] = cloneSession(session)
	return nil
}

func (r *memorySessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return cloneSession(session), nil
}

func (r *memorySessionRepo) Update(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[session.ID]
	if !ok {
		return apperr.New(apperr.KindStorage, "session %s does not exist", session.ID)
	}
	if stored.Version != session.Version {
		return apperr.New(apperr.KindStorage, "session %s was modified concurrently", session.ID)
	}

	session.Version++
	session.UpdatedAt = time.Now().UTC()
	r.sessions[session.ID] = cloneSession(session)
	return nil
}

func (r *memorySessionRepo) FindActiveByUser(_ context.Context, userID string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		if session.UserID == userID && session.Status == model.SessionInProgress {
			return cloneSession(session), nil
		}
	}
	return nil, nil
}

func cloneSession(s *model.Session) *model.Session {
	clone := *s
	clone.Turns = append([]model.QuestionTurn(nil), s.Turns...)
	if s.Aggregates.DimensionSums != nil {
		sums := make(map[model.Dimension]float64, len(s.Aggregates.DimensionSums))
		for d, v := range s.Aggregates.DimensionSums {
			sums[d] = v
		}
		clone.Aggregates.DimensionSums = sums
	}
	if s.CurrentQuestion != nil {
		q := *s.CurrentQuestion
		clone.CurrentQuestion = &q
	}
	if s.Report != nil {
		report := *s.Report
		clone.Report = &report
	}
	return &clone
}
