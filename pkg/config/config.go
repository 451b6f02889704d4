package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CredentialMode selects how the gateway attaches the session credential.
// There is no fallback between the two modes.
type CredentialMode string

const (
	ModeBearer CredentialMode = "bearer"
	ModeCookie CredentialMode = "cookie"
)

type Config struct {
	// BaseURL is the API host, e.g. http://localhost:8080.
	BaseURL string
	// Mode is bearer or cookie.
	Mode CredentialMode
	// Timeout is the transport-level request ceiling.
	Timeout time.Duration
	// AutoLoginOnRegister makes Register behave like the auto-login variant.
	AutoLoginOnRegister bool
	// StorageBackend is "file" or "sqlite".
	StorageBackend string
	// StoragePath is the file path for the chosen backend.
	StoragePath string
}

func Load() Config {
	cfg := Config{
		BaseURL:             "http://localhost:8080",
		Mode:                ModeBearer,
		Timeout:             10 * time.Second,
		AutoLoginOnRegister: true,
		StorageBackend:      "file",
		StoragePath:         defaultStoragePath("session.json"),
	}

	if v := os.Getenv("BLOGHUB_API_BASE"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("BLOGHUB_CREDENTIAL_MODE"); v != "" {
		switch CredentialMode(v) {
		case ModeBearer, ModeCookie:
			cfg.Mode = CredentialMode(v)
		}
	}
	if v := os.Getenv("BLOGHUB_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Timeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("BLOGHUB_REGISTER_AUTOLOGIN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AutoLoginOnRegister = b
		}
	}
	if v := os.Getenv("BLOGHUB_STORAGE"); v == "sqlite" {
		cfg.StorageBackend = "sqlite"
		cfg.StoragePath = defaultStoragePath("session.db")
	}
	if v := os.Getenv("BLOGHUB_STORAGE_PATH"); v != "" {
		cfg.StoragePath = v
	}

	return cfg
}

func defaultStoragePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".bloghub", name)
}
