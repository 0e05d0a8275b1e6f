package auth

import "testing"

func TestHashPasswordDefaultsCost(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass", 0)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(hashed, "s3cret-pass"); err != nil {
		t.Fatalf("ComparePassword: %v", err)
	}
	if err := ComparePassword(hashed, "wrong-pass"); err == nil {
		t.Fatalf("wrong password must not verify")
	}
}
