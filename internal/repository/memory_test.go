package repository

import (
	"context"
	"testing"

	"prepdeck/internal/apperr"
	"prepdeck/internal/model"
)

func newSession(id, userID string, status model.SessionStatus) *model.Session {
	return &model.Session{
		ID:              id,
		UserID:          userID,
		Role:            "Backend Engineer",
		ExperienceLevel: model.LevelMid,
		Mode:            model.ModeText,
		Status:          status,
		MaxQuestions:    5,
	}
}

func TestMemoryRepoActiveSessionUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepo()

	if err := repo.Create(ctx, newSession("s1", "user-1", model.SessionInProgress)); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	err := repo.Create(ctx, newSession("s2", "user-1", model.SessionInProgress))
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected CONFLICT for second active session, got %v", err)
	}

	// Terminal sessions do not hold the slot.
	if err := repo.Create(ctx, newSession("s3", "user-2", model.SessionInProgress)); err != nil {
		t.Fatalf("other user create failed: %v", err)
	}
}

func TestMemoryRepoFindActiveByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepo()

	if s, err := repo.FindActiveByUser(ctx, "user-1"); err != nil || s != nil {
		t.Fatalf("expected no active session, got %v, %v", s, err)
	}

	if err := repo.Create(ctx, newSession("s1", "user-1", model.SessionInProgress)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	active, err := repo.FindActiveByUser(ctx, "user-1")
	if err != nil || active == nil || active.ID != "s1" {
		t.Fatalf("expected s1 active, got %v, %v", active, err)
	}

	active.Status = model.SessionAbandoned
	if err := repo.Update(ctx, active); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if s, _ := repo.FindActiveByUser(ctx, "user-1"); s != nil {
		t.Fatalf("abandoned session must not be active")
	}
}

func TestMemoryRepoOptimisticVersionCheck(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepo()

	if err := repo.Create(ctx, newSession("s1", "user-1", model.SessionInProgress)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	a, _ := repo.GetByID(ctx, "s1")
	b, _ := repo.GetByID(ctx, "s1")

	if err := repo.Update(ctx, a); err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	if err := repo.Update(ctx, b); !apperr.IsKind(err, apperr.KindStorage) {
		t.Fatalf("stale update must fail, got %v", err)
	}
}

func TestMemoryRepoReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepo()

	session := newSession("s1", "user-1", model.SessionInProgress)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, "s1")
	got.Role = "mutated"

	again, _ := repo.GetByID(ctx, "s1")
	if again.Role != "Backend Engineer" {
		t.Fatalf("repository must not expose internal state to mutation")
	}
}
