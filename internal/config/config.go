// Package config provides CLI configuration management through environment
// variables. The core library itself reads no environment and is entirely
// unaffected by this package; only cmd/coffioctl consumes it.
package config

import (
	"os"
	"path/filepath"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"

	"github.com/allisson/coffio/internal/scheme"
)

// Config holds cmd/coffioctl configuration.
type Config struct {
	// Logging
	LogLevel string

	// DefaultScheme is loaded from DEFAULT_SCHEME_TAG. No coffioctl command
	// reads it: add-ikm always uses ikm.DefaultScheme and add-custom-ikm
	// takes its tag from --scheme.
	DefaultScheme scheme.Tag

	// DefaultIkmDurationSeconds is loaded from DEFAULT_IKM_DURATION_SECONDS
	// (ten years by default). No coffioctl command reads it: add-ikm always
	// grants ikm.DefaultDuration and add-custom-ikm takes --duration.
	DefaultIkmDurationSeconds int64

	// DefaultPeriodicitySeconds is loaded from
	// DEFAULT_KEY_CTX_PERIODICITY_SECONDS (one tropical year by default). No
	// coffioctl command reads it: --periodic without --periodicity always
	// uses keyctx.DefaultPeriodicity.
	DefaultPeriodicitySeconds int64

	// IkmListPath is the file cmd/coffioctl reads and writes the ikml-v1
	// serialized IKM list from.
	IkmListPath string
}

// Load loads configuration from environment variables. It first attempts
// to load a .env file by searching recursively from the current directory
// up to the root directory. If no .env file is found, it continues with
// existing environment variables.
func Load() *Config {
	loadDotEnv()

	return &Config{
		LogLevel:                  env.GetString("LOG_LEVEL", "info"),
		DefaultScheme:             scheme.Tag(env.GetInt("DEFAULT_SCHEME_TAG", int(scheme.XChaCha20Poly1305Blake3))),
		DefaultIkmDurationSeconds: int64(env.GetInt("DEFAULT_IKM_DURATION_SECONDS", 315_569_252)),
		DefaultPeriodicitySeconds: int64(env.GetInt("DEFAULT_KEY_CTX_PERIODICITY_SECONDS", 31_556_925)),
		IkmListPath:               env.GetString("IKM_LIST_PATH", "ikm-list.txt"),
	}
}

// loadDotEnv searches for a .env file recursively from the current
// directory up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
