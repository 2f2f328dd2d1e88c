package services

import "testing"

func TestGenerateRefreshToken(t *testing.T) {
	token, hash, err := generateRefreshToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(token))
	}
	if hash != hashRefreshToken(token) {
		t.Error("returned hash must match the hash of the raw token")
	}

	token2, _, err := generateRefreshToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == token2 {
		t.Error("expected distinct tokens across calls")
	}
}

func TestHashRefreshToken(t *testing.T) {
	if hashRefreshToken("a") != hashRefreshToken("a") {
		t.Error("hash must be deterministic")
	}
	if hashRefreshToken("a") == hashRefreshToken("b") {
		t.Error("different tokens must not collide on trivial input")
	}
	if got := hashRefreshToken("token"); len(got) != 64 {
		t.Errorf("expected sha256 hex digest of 64 chars, got %d", len(got))
	}
}
