package auth

import (
	"strings"
	"testing"
)

func TestGenerateAPIKey(t *testing.T) {
	t.Run("returns three non-empty values", func(t *testing.T) {
		key, hash, prefix, err := GenerateAPIKey()
		if err != nil {
			t.Fatalf("GenerateAPIKey() error: %v", err)
		}
		if key == "" {
			t.Error("GenerateAPIKey() returned empty key")
		}
		if hash == "" {
			t.Error("GenerateAPIKey() returned empty hash")
		}
		if prefix == "" {
			t.Error("GenerateAPIKey() returned empty displayPrefix")
		}
	})

	t.Run("key starts with sr_", func(t *testing.T) {
		key, _, _, err := GenerateAPIKey()
		if err != nil {
			t.Fatalf("GenerateAPIKey() error: %v", err)
		}
		if !strings.HasPrefix(key, APIKeyPrefix+"_") {
			t.Errorf("GenerateAPIKey() key = %q, want prefix %q", key, APIKeyPrefix+"_")
		}
	})

	t.Run("display prefix matches key start and is capped", func(t *testing.T) {
		key, _, displayPrefix, err := GenerateAPIKey()
		if err != nil {
			t.Fatalf("GenerateAPIKey() error: %v", err)
		}
		if !strings.HasPrefix(key, displayPrefix) {
			t.Errorf("key %q does not start with displayPrefix %q", key, displayPrefix)
		}
		if len(displayPrefix) > DisplayPrefixLength {
			t.Errorf("displayPrefix len = %d, want <= %d", len(displayPrefix), DisplayPrefixLength)
		}
	})

	t.Run("two calls produce different keys", func(t *testing.T) {
		key1, _, _, _ := GenerateAPIKey()
		key2, _, _, _ := GenerateAPIKey()
		if key1 == key2 {
			t.Error("GenerateAPIKey() produced identical keys on consecutive calls")
		}
	})
}

func TestValidateAPIKey(t *testing.T) {
	key, hash, _, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey() error: %v", err)
	}

	t.Run("correct key matches its hash", func(t *testing.T) {
		if !ValidateAPIKey(key, hash) {
			t.Error("ValidateAPIKey() rejected the key that produced the hash")
		}
	})

	t.Run("different key does not match", func(t *testing.T) {
		other, _, _, err := GenerateAPIKey()
		if err != nil {
			t.Fatalf("GenerateAPIKey() error: %v", err)
		}
		if ValidateAPIKey(other, hash) {
			t.Error("ValidateAPIKey() accepted an unrelated key")
		}
	})

	t.Run("garbage hash does not match", func(t *testing.T) {
		if ValidateAPIKey(key, "not-a-bcrypt-hash") {
			t.Error("ValidateAPIKey() accepted a garbage hash")
		}
	})
}

func TestKeyDisplayPrefix(t *testing.T) {
	if got := KeyDisplayPrefix("sr_abcdefghijk"); got != "sr_abcdefg" {
		t.Errorf("KeyDisplayPrefix() = %q, want %q", got, "sr_abcdefg")
	}
	if got := KeyDisplayPrefix("short"); got != "short" {
		t.Errorf("KeyDisplayPrefix() = %q, want the input unchanged", got)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid bearer", "Bearer abc123", "abc123", false},
		{"empty header", "", "", true},
		{"missing prefix", "abc123", "", true},
		{"wrong scheme", "Basic abc123", "", true},
		{"empty credential", "Bearer ", "", true},
		{"whitespace credential", "Bearer    ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractBearerToken(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
