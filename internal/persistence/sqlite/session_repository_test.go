package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/community-roster/internal/persistence"
)

func TestSessionRepository_CreateGetRevoke(t *testing.T) {
	store := setupStore(t)
	repo := NewSessionRepository(store)
	ctx := context.Background()

	createTestMember(t, store, "member1")

	now := time.Date(2025, time.January, 20, 8, 0, 0, 0, time.UTC)
	session := persistence.Session{
		ID:        "session1",
		MemberID:  "member1",
		ExpiresAt: now.Add(24 * time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}

	stored, err := repo.CreateSession(ctx, session)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if stored.MemberID != "member1" {
		t.Errorf("Expected member1, got %s", stored.MemberID)
	}
	if stored.RevokedAt != nil {
		t.Errorf("Expected unrevoked session, got %v", stored.RevokedAt)
	}

	revoked, err := repo.RevokeSession(ctx, "session1", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(now.Add(time.Hour)) {
		t.Errorf("Expected revoked_at %s, got %v", now.Add(time.Hour), revoked.RevokedAt)
	}
}

func TestSessionRepository_RevokeMissing(t *testing.T) {
	store := setupStore(t)
	repo := NewSessionRepository(store)

	_, err := repo.RevokeSession(context.Background(), "ghost", time.Now())
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	store := setupStore(t)
	repo := NewSessionRepository(store)
	ctx := context.Background()

	createTestMember(t, store, "member1")

	now := time.Date(2025, time.January, 20, 8, 0, 0, 0, time.UTC)
	expired := persistence.Session{ID: "old", MemberID: "member1", ExpiresAt: now.Add(-time.Hour), CreatedAt: now, UpdatedAt: now}
	active := persistence.Session{ID: "fresh", MemberID: "member1", ExpiresAt: now.Add(time.Hour), CreatedAt: now, UpdatedAt: now}

	for _, s := range []persistence.Session{expired, active} {
		if _, err := repo.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession %s failed: %v", s.ID, err)
		}
	}

	if err := repo.DeleteExpiredSessions(ctx, now); err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}

	if _, err := repo.GetSession(ctx, "old"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected expired session to be pruned, got %v", err)
	}
	if _, err := repo.GetSession(ctx, "fresh"); err != nil {
		t.Fatalf("Expected active session to survive, got %v", err)
	}
}

func TestTemplateRepository_UpsertAndList(t *testing.T) {
	store := setupStore(t)
	repo := NewTemplateRepository(store)
	ctx := context.Background()

	now := time.Date(2025, time.January, 20, 8, 0, 0, 0, time.UTC)
	template := persistence.MessageTemplate{
		Name:      "reminder.cooking",
		Subject:   "Kitchen duty soon",
		Body:      "Hi {{first_name}}, your cooking duty starts at {{starts_at}}.",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := repo.UpsertTemplate(ctx, template); err != nil {
		t.Fatalf("UpsertTemplate failed: %v", err)
	}

	template.Body = "Updated body for {{first_name}}."
	template.UpdatedAt = now.Add(time.Hour)
	if err := repo.UpsertTemplate(ctx, template); err != nil {
		t.Fatalf("UpsertTemplate (replace) failed: %v", err)
	}

	got, err := repo.GetTemplate(ctx, "reminder.cooking")
	if err != nil {
		t.Fatalf("GetTemplate failed: %v", err)
	}
	if got.Body != "Updated body for {{first_name}}." {
		t.Errorf("Expected replaced body, got '%s'", got.Body)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("Expected created_at preserved across upsert, got %s", got.CreatedAt)
	}

	templates, err := repo.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("ListTemplates failed: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("Expected 1 template, got %d", len(templates))
	}
}

func TestTemplateRepository_DeleteMissing(t *testing.T) {
	store := setupStore(t)
	repo := NewTemplateRepository(store)

	if err := repo.DeleteTemplate(context.Background(), "ghost"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}
