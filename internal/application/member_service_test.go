package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/community-roster/internal/roster"
)

func newMemberService(repo *fakeMemberRepo) *MemberService {
	svc := NewMemberService(repo, sequentialIDs("member"), fixedClock(time.Date(2025, time.January, 20, 9, 0, 0, 0, time.UTC)), nil)
	svc.hashPassword = func(password string) (string, error) {
		return "hashed:" + password, nil
	}
	return svc
}

func TestMemberServiceCreateMember(t *testing.T) {
	t.Parallel()

	t.Run("creates member with defaults", func(t *testing.T) {
		t.Parallel()

		repo := newFakeMemberRepo()
		svc := newMemberService(repo)

		member, err := svc.CreateMember(context.Background(), CreateMemberParams{
			Principal: adminPrincipal("admin-1"),
			Input: MemberInput{
				Email:     "  Kim.Minji@Example.COM ",
				FirstName: " Minji ",
				LastName:  "Kim",
				Password:  "correct horse",
			},
		})
		if err != nil {
			t.Fatalf("CreateMember returned error: %v", err)
		}
		if member.Email != "kim.minji@example.com" {
			t.Errorf("email = %q, want normalized lowercase", member.Email)
		}
		if member.FirstName != "Minji" {
			t.Errorf("first name = %q, want trimmed", member.FirstName)
		}
		if len(member.Roles) != 1 || member.Roles[0] != roster.RoleFriend {
			t.Errorf("roles = %v, want default friend role", member.Roles)
		}
		if repo.hashes[member.ID] != "hashed:correct horse" {
			t.Errorf("stored hash = %q, want hashed password", repo.hashes[member.ID])
		}
	})

	t.Run("rejects non admin", func(t *testing.T) {
		t.Parallel()

		svc := newMemberService(newFakeMemberRepo())
		_, err := svc.CreateMember(context.Background(), CreateMemberParams{
			Principal: principalWith("staff-1", roster.RoleStaff),
			Input:     MemberInput{Email: "a@example.com", FirstName: "A", LastName: "B", Password: "password1"},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("collects validation errors", func(t *testing.T) {
		t.Parallel()

		svc := newMemberService(newFakeMemberRepo())
		_, err := svc.CreateMember(context.Background(), CreateMemberParams{
			Principal: adminPrincipal("admin-1"),
			Input:     MemberInput{Email: "not-an-email", Password: "short"},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("error = %v, want ValidationError", err)
		}
		for _, field := range []string{"email", "first_name", "last_name", "password"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("missing field error for %q: %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		t.Parallel()

		svc := newMemberService(newFakeMemberRepo())
		_, err := svc.CreateMember(context.Background(), CreateMemberParams{
			Principal: adminPrincipal("admin-1"),
			Input: MemberInput{
				Email:     "a@example.com",
				FirstName: "A",
				LastName:  "B",
				Password:  "password1",
				Roles:     []roster.Role{"janitor"},
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("error = %v, want ValidationError", err)
		}
		if _, ok := vErr.FieldErrors["roles"]; !ok {
			t.Errorf("missing roles field error: %v", vErr.FieldErrors)
		}
	})

	t.Run("surfaces duplicate email", func(t *testing.T) {
		t.Parallel()

		repo := newFakeMemberRepo()
		svc := newMemberService(repo)
		params := CreateMemberParams{
			Principal: adminPrincipal("admin-1"),
			Input:     MemberInput{Email: "dup@example.com", FirstName: "A", LastName: "B", Password: "password1"},
		}
		if _, err := svc.CreateMember(context.Background(), params); err != nil {
			t.Fatalf("first CreateMember returned error: %v", err)
		}
		if _, err := svc.CreateMember(context.Background(), params); !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("second CreateMember error = %v, want ErrAlreadyExists", err)
		}
	})
}

func TestMemberServiceUpdateMember(t *testing.T) {
	t.Parallel()

	seed := func(repo *fakeMemberRepo) Member {
		member := Member{
			ID:        "member-1",
			Email:     "park@example.com",
			FirstName: "Jisoo",
			LastName:  "Park",
			Roles:     []roster.Role{roster.RoleStaff},
		}
		repo.add(member, "hashed:original")
		return member
	}

	t.Run("keeps password when blank", func(t *testing.T) {
		t.Parallel()

		repo := newFakeMemberRepo()
		member := seed(repo)
		svc := newMemberService(repo)

		updated, err := svc.UpdateMember(context.Background(), UpdateMemberParams{
			Principal: adminPrincipal("admin-1"),
			MemberID:  member.ID,
			Input: MemberInput{
				Email:     member.Email,
				FirstName: "Jisoo",
				LastName:  "Park",
				Roles:     []roster.Role{roster.RoleStaff, roster.RoleChef},
			},
		})
		if err != nil {
			t.Fatalf("UpdateMember returned error: %v", err)
		}
		if len(updated.Roles) != 2 {
			t.Errorf("roles = %v, want staff and chef", updated.Roles)
		}
		if repo.hashes[member.ID] != "hashed:original" {
			t.Errorf("hash = %q, want unchanged", repo.hashes[member.ID])
		}
	})

	t.Run("rehashes new password", func(t *testing.T) {
		t.Parallel()

		repo := newFakeMemberRepo()
		member := seed(repo)
		svc := newMemberService(repo)

		_, err := svc.UpdateMember(context.Background(), UpdateMemberParams{
			Principal: adminPrincipal("admin-1"),
			MemberID:  member.ID,
			Input: MemberInput{
				Email:     member.Email,
				FirstName: "Jisoo",
				LastName:  "Park",
				Password:  "fresh password",
			},
		})
		if err != nil {
			t.Fatalf("UpdateMember returned error: %v", err)
		}
		if repo.hashes[member.ID] != "hashed:fresh password" {
			t.Errorf("hash = %q, want rehash", repo.hashes[member.ID])
		}
	})

	t.Run("missing member", func(t *testing.T) {
		t.Parallel()

		svc := newMemberService(newFakeMemberRepo())
		_, err := svc.UpdateMember(context.Background(), UpdateMemberParams{
			Principal: adminPrincipal("admin-1"),
			MemberID:  "ghost",
			Input:     MemberInput{Email: "g@example.com", FirstName: "G", LastName: "H"},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestMemberServiceReads(t *testing.T) {
	t.Parallel()

	repo := newFakeMemberRepo()
	repo.add(Member{ID: "m1", Email: "choi@example.com", FirstName: "Yuna", LastName: "Choi"}, "")
	repo.add(Member{ID: "m2", Email: "park@example.com", FirstName: "Jisoo", LastName: "Park"}, "")
	svc := newMemberService(repo)

	t.Run("list requires admin", func(t *testing.T) {
		t.Parallel()
		if _, err := svc.ListMembers(context.Background(), principalWith("m1", roster.RoleStaff)); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("list orders by name", func(t *testing.T) {
		t.Parallel()
		members, err := svc.ListMembers(context.Background(), adminPrincipal("admin-1"))
		if err != nil {
			t.Fatalf("ListMembers returned error: %v", err)
		}
		if len(members) != 2 || members[0].LastName != "Choi" || members[1].LastName != "Park" {
			t.Fatalf("members = %v, want Choi before Park", members)
		}
	})

	t.Run("members may read themselves only", func(t *testing.T) {
		t.Parallel()
		if _, err := svc.GetMember(context.Background(), principalWith("m1", roster.RoleStaff), "m1"); err != nil {
			t.Fatalf("self read returned error: %v", err)
		}
		if _, err := svc.GetMember(context.Background(), principalWith("m1", roster.RoleStaff), "m2"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("delete requires admin", func(t *testing.T) {
		t.Parallel()
		if err := svc.DeleteMember(context.Background(), principalWith("m1", roster.RoleStaff), "m2"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("error = %v, want ErrUnauthorized", err)
		}
	})
}
