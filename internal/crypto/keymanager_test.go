package crypto

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	blob, err := EncryptKey(testKeyHex, "hunter2")
	if err != nil {
		t.Fatalf("EncryptKey() error = %v", err)
	}

	got, err := DecryptKey(blob, "hunter2")
	if err != nil {
		t.Fatalf("DecryptKey() error = %v", err)
	}
	if got != testKeyHex {
		t.Errorf("round trip = %s, want %s", got, testKeyHex)
	}
}

func TestDecryptWrongPassword(t *testing.T) {
	blob, err := EncryptKey(testKeyHex, "hunter2")
	if err != nil {
		t.Fatalf("EncryptKey() error = %v", err)
	}

	if _, err := DecryptKey(blob, "wrong"); err == nil {
		t.Error("DecryptKey() with wrong password succeeded")
	}
}

func TestEncryptKeyValidation(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		password string
	}{
		{"empty password", testKeyHex, ""},
		{"bad hex", "not-hex", "pw"},
		{"short key", "abcd", "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncryptKey(tt.key, tt.password); err == nil {
				t.Error("EncryptKey() succeeded, want error")
			}
		})
	}
}

func TestEncryptKeyStripsPrefix(t *testing.T) {
	blob, err := EncryptKey("0x"+testKeyHex, "pw")
	if err != nil {
		t.Fatalf("EncryptKey() error = %v", err)
	}
	got, err := DecryptKey(blob, "pw")
	if err != nil {
		t.Fatalf("DecryptKey() error = %v", err)
	}
	if got != testKeyHex {
		t.Errorf("got %s, want prefix stripped", got)
	}
}

func TestLoadKeyPrecedence(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "wallet.json")
	blob, err := EncryptKey(testKeyHex, "pw")
	if err != nil {
		t.Fatalf("EncryptKey() error = %v", err)
	}
	if err := os.WriteFile(keyPath, blob, 0o600); err != nil {
		t.Fatalf("writing key file: %v", err)
	}

	t.Run("raw key wins", func(t *testing.T) {
		raw := strings.Repeat("ab", 32)
		got, err := LoadKey(KeyConfig{RawPrivateKey: "0x" + raw, EncryptedKeyPath: keyPath, KeyPassword: "pw"})
		if err != nil {
			t.Fatalf("LoadKey() error = %v", err)
		}
		if got != raw {
			t.Errorf("LoadKey() = %s, want raw key", got)
		}
	})

	t.Run("falls back to file", func(t *testing.T) {
		got, err := LoadKey(KeyConfig{EncryptedKeyPath: keyPath, KeyPassword: "pw"})
		if err != nil {
			t.Fatalf("LoadKey() error = %v", err)
		}
		if got != testKeyHex {
			t.Errorf("LoadKey() = %s, want file key", got)
		}
	})

	t.Run("no source", func(t *testing.T) {
		if _, err := LoadKey(KeyConfig{}); err == nil {
			t.Error("LoadKey() with no source succeeded")
		}
	})
}

func TestGenerateKey(t *testing.T) {
	k1, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	if len(k1) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(k1))
	}
	k2, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	if k1 == k2 {
		t.Error("two generated keys are identical")
	}
}
