// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads source credentials from a directory of plain-text
// files. Each file is one secret: the filename is the key and the trimmed
// contents are the value. Keys the directory does not provide fall back to
// the environment (optionally seeded from a .env file) and then to the OS
// keychain.
//
// Supported keys: openalex-email, semantic-scholar-api-key.
package secrets

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"

	"github.com/pdiddy/scholar-impact/pkg/types"
)

const (
	KeyOpenAlexEmail         = "openalex-email"
	KeySemanticScholarAPIKey = "semantic-scholar-api-key"
)

// EnvPrefix is prepended to the upper-cased key when falling back to the
// environment: semantic-scholar-api-key reads SCHOLAR_IMPACT_SEMANTIC_SCHOLAR_API_KEY.
const EnvPrefix = "SCHOLAR_IMPACT"

// KeyringService is the OS keychain service secrets are stored under; the
// key name is the keychain user.
const KeyringService = "scholar-impact"

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads all files in dir. A missing directory is not an error; Load
// returns an empty set. Unreadable files are logged and skipped.
func Load(dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnvFile adds the KEY=value pairs in path to the process environment.
// Variables already set are kept. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Get returns the value for key from the loaded files, the environment or
// the OS keychain, in that order.
func (s Secrets) Get(key string) string {
	if v := s[key]; v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(EnvVar(key))); v != "" {
		return v
	}
	v, err := keyring.Get(KeyringService, key)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			slog.Debug("keychain lookup failed", "key", key, "error", err)
		}
		return ""
	}
	return strings.TrimSpace(v)
}

// Store saves value for key in the OS keychain.
func Store(key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("empty value for %s", key)
	}
	if err := keyring.Set(KeyringService, key, value); err != nil {
		return fmt.Errorf("saving %s to keychain: %w", key, err)
	}
	return nil
}

// Remove deletes key from the OS keychain. Removing a missing key is not an
// error.
func Remove(key string) error {
	if err := keyring.Delete(KeyringService, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("removing %s from keychain: %w", key, err)
	}
	return nil
}

// EnvVar returns the environment variable consulted for key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// ApplyTo fills credentials in cfg that are not already set.
func (s Secrets) ApplyTo(cfg *types.SourceConfig) {
	if cfg.Email == "" {
		cfg.Email = s.Get(KeyOpenAlexEmail)
	}
	if cfg.SemanticScholarAPIKey == "" {
		cfg.SemanticScholarAPIKey = s.Get(KeySemanticScholarAPIKey)
	}
}
