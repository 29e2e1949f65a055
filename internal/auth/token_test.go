package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now()
	claims := TokenClaims{
		SessionID: "session-1",
		MemberID:  "member-1",
		Roles:     []string{"chef", "dts"},
	}

	token, err := NewToken("secret", claims, now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}

	got, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if got.SessionID != "session-1" || got.MemberID != "member-1" {
		t.Errorf("unexpected claims: %+v", got)
	}
	if len(got.Roles) != 2 || got.Roles[0] != "chef" {
		t.Errorf("unexpected roles: %v", got.Roles)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	now := time.Now()
	token, err := NewToken("secret", TokenClaims{SessionID: "s", MemberID: "m"}, now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}

	if _, err := ParseToken("other", token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	token, err := NewToken("secret", TokenClaims{SessionID: "s", MemberID: "m"}, now.Add(-2*time.Hour), now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}

	if _, err := ParseToken("secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestNewToken_RequiresSecretAndIdentity(t *testing.T) {
	t.Parallel()

	now := time.Now()
	if _, err := NewToken("", TokenClaims{SessionID: "s", MemberID: "m"}, now, now.Add(time.Hour)); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("Expected ErrEmptySecret, got %v", err)
	}
	if _, err := NewToken("secret", TokenClaims{}, now, now.Add(time.Hour)); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for missing identity, got %v", err)
	}
}
