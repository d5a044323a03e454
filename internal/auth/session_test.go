package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/mmeshcher/bakeshop-system/internal/model"
)

func TestSessions_IssueAndParse(t *testing.T) {
	sessions := NewSessions("test-secret", time.Hour)

	token, err := sessions.Issue(model.Principal{ID: "cust-1", Kind: model.KindCustomer})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id, kind, err := sessions.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != "cust-1" || kind != model.KindCustomer {
		t.Fatalf("parsed (%q, %q), want (cust-1, customer)", id, kind)
	}
}

func TestSessions_RejectsForeignSignature(t *testing.T) {
	token, err := NewSessions("secret-a", time.Hour).Issue(model.Principal{ID: "own-1", Kind: model.KindOwner})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, _, err = NewSessions("secret-b", time.Hour).Parse(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessions_RejectsExpiredToken(t *testing.T) {
	sessions := NewSessions("test-secret", -time.Minute)

	token, err := sessions.Issue(model.Principal{ID: "cust-1", Kind: model.KindCustomer})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, _, err = sessions.Parse(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSessions_RejectsGarbage(t *testing.T) {
	sessions := NewSessions("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, _, err := sessions.Parse(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestSessions_RejectsIncompletePrincipal(t *testing.T) {
	sessions := NewSessions("test-secret", time.Hour)

	if _, err := sessions.Issue(model.Principal{Kind: model.KindCustomer}); err == nil {
		t.Fatalf("expected error for principal without id")
	}
	if _, err := sessions.Issue(model.Principal{ID: "cust-1", Kind: "ghost"}); err == nil {
		t.Fatalf("expected error for unknown principal kind")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("переулок-7")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "переулок-7" {
		t.Fatalf("hash must not equal the password")
	}

	if err := VerifyPassword(hash, "переулок-7"); err != nil {
		t.Fatalf("verify correct password: %v", err)
	}
	if err := VerifyPassword(hash, "другой"); err == nil {
		t.Fatalf("verify must fail for a wrong password")
	}
}
