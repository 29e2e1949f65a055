package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/community-roster/internal/persistence"
)

func createTestMember(t *testing.T, store *Store, id string) {
	t.Helper()
	repo := NewMemberRepository(store)
	if err := repo.CreateMember(context.Background(), testMember(id, id+"@example.com", "friend")); err != nil {
		t.Fatalf("creating member %s failed: %v", id, err)
	}
}

func TestDutyRepository_CreateAndGet(t *testing.T) {
	store := setupStore(t)
	repo := NewDutyRepository(store)
	ctx := context.Background()

	createTestMember(t, store, "creator")
	createTestMember(t, store, "cook1")
	createTestMember(t, store, "cook2")

	date := time.Date(2025, time.January, 22, 0, 0, 0, 0, time.UTC)
	starts := time.Date(2025, time.January, 22, 6, 30, 0, 0, time.UTC)
	notes := "breakfast shift"

	duty := persistence.Duty{
		ID:        "duty1",
		Category:  "cooking",
		Date:      date,
		StartsAt:  &starts,
		Notes:     &notes,
		CreatorID: "creator",
		Assignees: []string{"cook1", "cook2"},
		CreatedAt: starts,
		UpdatedAt: starts,
	}

	if err := repo.CreateDuty(ctx, duty); err != nil {
		t.Fatalf("CreateDuty failed: %v", err)
	}

	got, err := repo.GetDuty(ctx, "duty1")
	if err != nil {
		t.Fatalf("GetDuty failed: %v", err)
	}
	if got.Category != "cooking" {
		t.Errorf("Expected category 'cooking', got '%s'", got.Category)
	}
	if !got.Date.Equal(date) {
		t.Errorf("Expected date %s, got %s", date, got.Date)
	}
	if got.StartsAt == nil || !got.StartsAt.Equal(starts) {
		t.Errorf("Expected starts_at %s, got %v", starts, got.StartsAt)
	}
	if len(got.Assignees) != 2 || got.Assignees[0] != "cook1" || got.Assignees[1] != "cook2" {
		t.Errorf("Expected assignees [cook1 cook2], got %v", got.Assignees)
	}
	if got.Notes == nil || *got.Notes != "breakfast shift" {
		t.Errorf("Expected notes 'breakfast shift', got %v", got.Notes)
	}
}

func TestDutyRepository_UpdateReplacesAssignees(t *testing.T) {
	store := setupStore(t)
	repo := NewDutyRepository(store)
	ctx := context.Background()

	createTestMember(t, store, "creator")
	createTestMember(t, store, "cook1")
	createTestMember(t, store, "cook2")

	date := time.Date(2025, time.January, 22, 0, 0, 0, 0, time.UTC)
	duty := persistence.Duty{
		ID:        "duty1",
		Category:  "cooking",
		Date:      date,
		CreatorID: "creator",
		Assignees: []string{"cook1"},
		CreatedAt: date,
		UpdatedAt: date,
	}
	if err := repo.CreateDuty(ctx, duty); err != nil {
		t.Fatalf("CreateDuty failed: %v", err)
	}

	duty.Assignees = []string{"cook2"}
	duty.Date = date.AddDate(0, 0, 1)
	duty.UpdatedAt = date.Add(time.Hour)
	if err := repo.UpdateDuty(ctx, duty); err != nil {
		t.Fatalf("UpdateDuty failed: %v", err)
	}

	got, err := repo.GetDuty(ctx, "duty1")
	if err != nil {
		t.Fatalf("GetDuty failed: %v", err)
	}
	if len(got.Assignees) != 1 || got.Assignees[0] != "cook2" {
		t.Errorf("Expected assignees [cook2], got %v", got.Assignees)
	}
	if !got.Date.Equal(date.AddDate(0, 0, 1)) {
		t.Errorf("Expected shifted date, got %s", got.Date)
	}
}

func TestDutyRepository_ListFilters(t *testing.T) {
	store := setupStore(t)
	repo := NewDutyRepository(store)
	ctx := context.Background()

	createTestMember(t, store, "creator")
	createTestMember(t, store, "cook1")
	createTestMember(t, store, "worker1")

	monday := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)
	duties := []persistence.Duty{
		{ID: "cook-mon", Category: "cooking", Date: monday, CreatorID: "creator", Assignees: []string{"cook1"}, CreatedAt: monday, UpdatedAt: monday},
		{ID: "cook-wed", Category: "cooking", Date: monday.AddDate(0, 0, 2), CreatorID: "creator", Assignees: []string{"cook1"}, CreatedAt: monday, UpdatedAt: monday},
		{ID: "work-mon", Category: "work_duty", Date: monday, CreatorID: "creator", Assignees: []string{"worker1"}, CreatedAt: monday, UpdatedAt: monday},
		{ID: "cook-next", Category: "cooking", Date: monday.AddDate(0, 0, 8), CreatorID: "creator", Assignees: []string{"cook1"}, CreatedAt: monday, UpdatedAt: monday},
	}
	for _, duty := range duties {
		if err := repo.CreateDuty(ctx, duty); err != nil {
			t.Fatalf("CreateDuty %s failed: %v", duty.ID, err)
		}
	}

	sunday := monday.AddDate(0, 0, 6)
	got, err := repo.ListDuties(ctx, persistence.DutyFilter{
		Category: "cooking",
		From:     &monday,
		To:       &sunday,
	})
	if err != nil {
		t.Fatalf("ListDuties failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 cooking duties inside the week, got %d", len(got))
	}
	if got[0].ID != "cook-mon" || got[1].ID != "cook-wed" {
		t.Errorf("Expected ordering [cook-mon cook-wed], got [%s %s]", got[0].ID, got[1].ID)
	}

	mine, err := repo.ListDuties(ctx, persistence.DutyFilter{MemberID: "worker1"})
	if err != nil {
		t.Fatalf("ListDuties by member failed: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "work-mon" {
		t.Errorf("Expected [work-mon] for worker1, got %v", mine)
	}
}

func TestDutyRepository_DeleteCascadesAssignees(t *testing.T) {
	store := setupStore(t)
	repo := NewDutyRepository(store)
	ctx := context.Background()

	createTestMember(t, store, "creator")
	createTestMember(t, store, "cook1")

	date := time.Date(2025, time.January, 22, 0, 0, 0, 0, time.UTC)
	duty := persistence.Duty{
		ID:        "duty1",
		Category:  "cooking",
		Date:      date,
		CreatorID: "creator",
		Assignees: []string{"cook1"},
		CreatedAt: date,
		UpdatedAt: date,
	}
	if err := repo.CreateDuty(ctx, duty); err != nil {
		t.Fatalf("CreateDuty failed: %v", err)
	}
	if err := repo.DeleteDuty(ctx, "duty1"); err != nil {
		t.Fatalf("DeleteDuty failed: %v", err)
	}

	if _, err := repo.GetDuty(ctx, "duty1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}

	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM duty_assignees WHERE duty_id = 'duty1'`).Scan(&count); err != nil {
		t.Fatalf("counting assignee rows failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected assignee rows to cascade, found %d", count)
	}
}

func TestDutyRepository_DeleteMissing(t *testing.T) {
	store := setupStore(t)
	repo := NewDutyRepository(store)

	if err := repo.DeleteDuty(context.Background(), "ghost"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}
