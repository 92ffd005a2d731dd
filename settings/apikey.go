package settings

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "leo"
	keyringUser    = "gemini-api-key"
)

var ErrNoAPIKey = errors.New("no API key configured (run 'leo apikey set' or export GOOGLE_API_KEY)")

// APIKeySource reports where an API key was found.
type APIKeySource string

const (
	SourceKeyring APIKeySource = "keyring"
	SourceEnv     APIKeySource = "env"
	SourceNone    APIKeySource = "none"
)

var apiKeyEnv = []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}

func SetAPIKey(key string) error {
	if key == "" {
		return errors.New("API key cannot be empty")
	}
	if err := keyring.Set(keyringService, keyringUser, key); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}
	return nil
}

// ClearAPIKey removes the stored key. A missing key is not an error.
func ClearAPIKey() error {
	err := keyring.Delete(keyringService, keyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to remove API key: %w", err)
	}
	return nil
}

// APIKey returns the keyring entry, falling back to the environment.
func APIKey() (string, APIKeySource, error) {
	key, err := keyring.Get(keyringService, keyringUser)
	if err == nil && key != "" {
		return key, SourceKeyring, nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		// keyring unavailable (headless session); the environment may still work
		for _, name := range apiKeyEnv {
			if v := os.Getenv(name); v != "" {
				return v, SourceEnv, nil
			}
		}
		return "", SourceNone, fmt.Errorf("failed to read API key: %w", err)
	}

	for _, name := range apiKeyEnv {
		if v := os.Getenv(name); v != "" {
			return v, SourceEnv, nil
		}
	}
	return "", SourceNone, ErrNoAPIKey
}
