package settings

import "testing"

func TestEncryptorRoundTrip(t *testing.T) {
	t.Parallel()

	encryptor, err := NewEncryptor("passphrase")
	if err != nil {
		t.Fatalf("new encryptor: %v", err)
	}

	sealed, err := encryptor.Encrypt("secret-token")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if sealed == "secret-token" {
		t.Fatalf("ciphertext equals plaintext")
	}

	plain, err := encryptor.Decrypt(sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "secret-token" {
		t.Fatalf("expected round trip, got %q", plain)
	}
}

func TestEncryptorEmptyKeyPassesThrough(t *testing.T) {
	t.Parallel()

	encryptor, err := NewEncryptor("")
	if err != nil {
		t.Fatalf("new encryptor: %v", err)
	}

	sealed, err := encryptor.Encrypt("value")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if sealed != "value" {
		t.Fatalf("expected passthrough, got %q", sealed)
	}

	plain, err := encryptor.Decrypt("value")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "value" {
		t.Fatalf("expected passthrough, got %q", plain)
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	t.Parallel()

	encryptor, err := NewEncryptor("passphrase")
	if err != nil {
		t.Fatalf("new encryptor: %v", err)
	}

	if _, err := encryptor.Decrypt("not base64 at all!!"); err == nil {
		t.Fatalf("expected error for invalid ciphertext")
	}
	if _, err := encryptor.Decrypt("c2hvcnQ="); err == nil {
		t.Fatalf("expected error for truncated ciphertext")
	}
}
