package token

import "testing"

func TestGenerateRandomTokenIsUnique(t *testing.T) {
	a, err := GenerateRandomToken(48)
	if err != nil {
		t.Fatalf("GenerateRandomToken() error: %v", err)
	}
	b, err := GenerateRandomToken(48)
	if err != nil {
		t.Fatalf("GenerateRandomToken() error: %v", err)
	}
	if a == b {
		t.Fatal("two generated tokens must differ")
	}
}

func TestHashSHA256IsDeterministic(t *testing.T) {
	if HashSHA256("abc") != HashSHA256("abc") {
		t.Fatal("same input must hash to the same value")
	}
	if HashSHA256("abc") == HashSHA256("abd") {
		t.Fatal("different inputs must hash to different values")
	}
}
