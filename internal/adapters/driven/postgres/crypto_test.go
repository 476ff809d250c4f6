package postgres

import (
	"testing"
)

func TestTokenEncryptor_RoundTrip(t *testing.T) {
	key := []byte("01234567890123456789012345678901")

	encryptor, err := NewTokenEncryptor(key)
	if err != nil {
		t.Fatalf("NewTokenEncryptor: %v", err)
	}

	original := tokenMaterial{
		AccessToken:  "act.live-token",
		RefreshToken: "rft.rotating-token",
	}

	blob, err := encryptor.Encrypt(original)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if len(blob) < 1+nonceSize {
		t.Fatalf("blob too short: %d bytes", len(blob))
	}
	if blob[0] != tokenBlobVersion {
		t.Errorf("version byte: got %d, want %d", blob[0], tokenBlobVersion)
	}

	var decrypted tokenMaterial
	if err := encryptor.Decrypt(blob, &decrypted); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	if decrypted.AccessToken != original.AccessToken {
		t.Errorf("AccessToken: got %q, want %q", decrypted.AccessToken, original.AccessToken)
	}
	if decrypted.RefreshToken != original.RefreshToken {
		t.Errorf("RefreshToken: got %q, want %q", decrypted.RefreshToken, original.RefreshToken)
	}
}

func TestTokenEncryptor_InvalidKeySize(t *testing.T) {
	tests := []struct {
		name    string
		keySize int
	}{
		{"too short", 16},
		{"too long", 64},
		{"empty", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, tt.keySize)
			_, err := NewTokenEncryptor(key)
			if err == nil {
				t.Error("expected error for invalid key size")
			}
		})
	}
}

func TestTokenEncryptor_DecryptInvalidBlob(t *testing.T) {
	key := []byte("01234567890123456789012345678901")
	encryptor, _ := NewTokenEncryptor(key)

	tests := []struct {
		name string
		blob []byte
	}{
		{"empty", []byte{}},
		{"too short", []byte{0x01, 0x02}},
		{"wrong version", append([]byte{0x99}, make([]byte, 100)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result tokenMaterial
			err := encryptor.Decrypt(tt.blob, &result)
			if err == nil {
				t.Error("expected error for invalid blob")
			}
		})
	}
}

func TestTokenEncryptor_WrongKey(t *testing.T) {
	key1 := []byte("01234567890123456789012345678901")
	key2 := []byte("10987654321098765432109876543210")

	enc1, _ := NewTokenEncryptor(key1)
	enc2, _ := NewTokenEncryptor(key2)

	blob, err := enc1.Encrypt(tokenMaterial{AccessToken: "act.sealed"})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	var result tokenMaterial
	if err := enc2.Decrypt(blob, &result); err == nil {
		t.Error("expected error when decrypting with wrong key")
	}
}

func TestTokenEncryptor_ContextBinding(t *testing.T) {
	key := []byte("01234567890123456789012345678901")
	encryptor, _ := NewTokenEncryptor(key)

	blob, err := encryptor.Encrypt(tokenMaterial{AccessToken: "act.sealed"})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	// A ciphertext sealed under different additional data must not open,
	// even with the right key.
	foreign := encryptor.gcm.Seal(nil, blob[1:1+nonceSize], []byte(`{"access_token":"x"}`), []byte("other context"))
	forged := append(append([]byte{tokenBlobVersion}, blob[1:1+nonceSize]...), foreign...)

	var result tokenMaterial
	if err := encryptor.Decrypt(forged, &result); err == nil {
		t.Error("expected error for blob sealed under foreign additional data")
	}
}

func TestTokenEncryptor_UniqueNonce(t *testing.T) {
	key := []byte("01234567890123456789012345678901")
	encryptor, _ := NewTokenEncryptor(key)

	blobs := make([][]byte, 10)
	for i := range blobs {
		blob, err := encryptor.Encrypt(tokenMaterial{AccessToken: "same value"})
		if err != nil {
			t.Fatalf("Encrypt %d: %v", i, err)
		}
		blobs[i] = blob
	}

	nonces := make(map[string]bool)
	for i, blob := range blobs {
		nonce := string(blob[1 : 1+nonceSize])
		if nonces[nonce] {
			t.Errorf("duplicate nonce at index %d", i)
		}
		nonces[nonce] = true
	}
}
