package password

import "testing"

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := Compare(hash, "s3cret-pass"); err != nil {
		t.Fatalf("Compare() with correct password: %v", err)
	}
	if err := Compare(hash, "wrong-pass"); err == nil {
		t.Fatal("Compare() accepted a wrong password")
	}
}
