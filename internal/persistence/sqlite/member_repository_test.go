package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/community-roster/internal/persistence"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	dir := t.TempDir()
	store, err := Open("file:" + filepath.Join(dir, "roster.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return store
}

func testMember(id, email string, roles ...string) persistence.Member {
	now := time.Date(2025, time.January, 20, 8, 0, 0, 0, time.UTC)
	return persistence.Member{
		ID:           id,
		Email:        email,
		FirstName:    "Hana",
		LastName:     "Kim",
		Gender:       "female",
		University:   "Hanyang University",
		Course:       "Nursing",
		PasswordHash: "hash-" + id,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemberRepository_CreateAndGet(t *testing.T) {
	store := setupStore(t)
	repo := NewMemberRepository(store)
	ctx := context.Background()

	birth := time.Date(1999, time.March, 14, 0, 0, 0, 0, time.UTC)
	member := testMember("member1", "hana@example.com", "chef", "dts")
	member.BirthDate = &birth

	if err := repo.CreateMember(ctx, member); err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	got, err := repo.GetMember(ctx, "member1")
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if got.Email != "hana@example.com" {
		t.Errorf("Expected email 'hana@example.com', got '%s'", got.Email)
	}
	if len(got.Roles) != 2 || got.Roles[0] != "chef" || got.Roles[1] != "dts" {
		t.Errorf("Expected roles [chef dts], got %v", got.Roles)
	}
	if got.BirthDate == nil || !got.BirthDate.Equal(birth) {
		t.Errorf("Expected birth date %s, got %v", birth, got.BirthDate)
	}
}

func TestMemberRepository_GetByEmail_NormalizesCase(t *testing.T) {
	store := setupStore(t)
	repo := NewMemberRepository(store)
	ctx := context.Background()

	if err := repo.CreateMember(ctx, testMember("member1", "Hana@Example.com")); err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	got, err := repo.GetMemberByEmail(ctx, "  HANA@example.COM ")
	if err != nil {
		t.Fatalf("GetMemberByEmail failed: %v", err)
	}
	if got.ID != "member1" {
		t.Errorf("Expected member1, got %s", got.ID)
	}
}

func TestMemberRepository_DuplicateEmail(t *testing.T) {
	store := setupStore(t)
	repo := NewMemberRepository(store)
	ctx := context.Background()

	if err := repo.CreateMember(ctx, testMember("member1", "hana@example.com")); err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	err := repo.CreateMember(ctx, testMember("member2", "hana@example.com"))
	if !errors.Is(err, persistence.ErrAlreadyExists) {
		t.Fatalf("Expected ErrAlreadyExists for duplicate email, got %v", err)
	}
}

func TestMemberRepository_UpdateReplacesRoles(t *testing.T) {
	store := setupStore(t)
	repo := NewMemberRepository(store)
	ctx := context.Background()

	member := testMember("member1", "hana@example.com", "friend")
	if err := repo.CreateMember(ctx, member); err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	member.Roles = []string{"admin", "staff"}
	member.Course = "Theology"
	member.UpdatedAt = member.UpdatedAt.Add(time.Hour)
	if err := repo.UpdateMember(ctx, member); err != nil {
		t.Fatalf("UpdateMember failed: %v", err)
	}

	got, err := repo.GetMember(ctx, "member1")
	if err != nil {
		t.Fatalf("GetMember failed: %v", err)
	}
	if len(got.Roles) != 2 || got.Roles[0] != "admin" || got.Roles[1] != "staff" {
		t.Errorf("Expected roles [admin staff], got %v", got.Roles)
	}
	if got.Course != "Theology" {
		t.Errorf("Expected course 'Theology', got '%s'", got.Course)
	}
}

func TestMemberRepository_UpdateMissing(t *testing.T) {
	store := setupStore(t)
	repo := NewMemberRepository(store)

	err := repo.UpdateMember(context.Background(), testMember("ghost", "ghost@example.com"))
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemberRepository_ListOrdering(t *testing.T) {
	store := setupStore(t)
	repo := NewMemberRepository(store)
	ctx := context.Background()

	first := testMember("member1", "a@example.com")
	first.LastName = "Park"
	second := testMember("member2", "b@example.com")
	second.LastName = "Choi"

	if err := repo.CreateMember(ctx, first); err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}
	if err := repo.CreateMember(ctx, second); err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}

	members, err := repo.ListMembers(ctx)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("Expected 2 members, got %d", len(members))
	}
	if members[0].LastName != "Choi" || members[1].LastName != "Park" {
		t.Errorf("Expected last-name ordering [Choi Park], got [%s %s]", members[0].LastName, members[1].LastName)
	}
}

func TestMemberRepository_DeleteCascadesRoles(t *testing.T) {
	store := setupStore(t)
	repo := NewMemberRepository(store)
	ctx := context.Background()

	if err := repo.CreateMember(ctx, testMember("member1", "hana@example.com", "chef")); err != nil {
		t.Fatalf("CreateMember failed: %v", err)
	}
	if err := repo.DeleteMember(ctx, "member1"); err != nil {
		t.Fatalf("DeleteMember failed: %v", err)
	}

	if _, err := repo.GetMember(ctx, "member1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}

	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM member_roles WHERE member_id = 'member1'`).Scan(&count); err != nil {
		t.Fatalf("counting role rows failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected role rows to cascade, found %d", count)
	}
}
