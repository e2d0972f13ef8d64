// apikey.go handles API key generation and validation. Keys are long-lived
// bearer credentials for programmatic clients; only a bcrypt hash of the full
// key is stored, so a database leak does not expose usable keys.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// APIKeyPrefix identifies registry API keys in bearer headers.
	APIKeyPrefix = "sr"

	// APIKeyLength is the length of the random part of the API key in bytes
	APIKeyLength = 32

	// DisplayPrefixLength is the number of characters to show in displays,
	// and the lookup key used to narrow stored candidates before the bcrypt
	// comparison.
	DisplayPrefixLength = 10

	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 12
)

// GenerateAPIKey creates a new random API key.
// Returns: full key (to show once), bcrypt hash (to store), display prefix.
func GenerateAPIKey() (key string, hash string, displayPrefix string, err error) {
	randomBytes := make([]byte, APIKeyLength)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	randomPart := base64.RawURLEncoding.EncodeToString(randomBytes)
	fullKey := fmt.Sprintf("%s_%s", APIKeyPrefix, randomPart)

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(fullKey), BcryptCost)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to hash API key: %w", err)
	}

	displayPrefixStr := fullKey
	if len(fullKey) > DisplayPrefixLength {
		displayPrefixStr = fullKey[:DisplayPrefixLength]
	}

	return fullKey, string(hashBytes), displayPrefixStr, nil
}

// ValidateAPIKey checks if a provided key matches the stored hash
func ValidateAPIKey(providedKey, storedHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(providedKey))
	return err == nil
}

// KeyDisplayPrefix returns the lookup prefix for a presented key.
func KeyDisplayPrefix(key string) string {
	if len(key) > DisplayPrefixLength {
		return key[:DisplayPrefixLength]
	}
	return key
}

// ExtractBearerToken extracts the credential from an Authorization header.
// Expected format: "Bearer <jwt-or-api-key>".
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header is empty")
	}

	if !strings.HasPrefix(header, "Bearer ") {
		return "", errors.New("authorization header must start with 'Bearer '")
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", errors.New("credential is empty after Bearer prefix")
	}

	return token, nil
}
