// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SecretKeySize is the decoded length of TTSVAULT_SECRET_KEY in bytes.
const SecretKeySize = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	SecretKey         []byte
	ListenAddr        string
	DBPath            string
	ElevenLabsBaseURL string
	UpstreamTimeout   time.Duration
	AdminTokenSecret  []byte
	NATSURL           string
	AudioBucket       string
}

// HasArchive reports whether an audio archive should be connected at startup.
func (c *Config) HasArchive() bool {
	return c.NATSURL != ""
}

// LoadDotEnv seeds the process environment from a .env file. Variables
// already set in the environment win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables and returns a validated Config.
// TTSVAULT_SECRET_KEY is required and must be 64 hex characters.
// Optional variables with defaults: TTSVAULT_LISTEN_ADDR (127.0.0.1:8080),
// TTSVAULT_DB_PATH (ttsvault.db), TTSVAULT_ELEVENLABS_BASE_URL
// (https://api.elevenlabs.io), TTSVAULT_UPSTREAM_TIMEOUT (0, transport
// default), TTSVAULT_AUDIO_BUCKET (ttsvault-audio). TTSVAULT_ADMIN_TOKEN_SECRET
// and TTSVAULT_NATS_URL are optional and enable the admin guard and audio
// archive respectively.
func Load() (*Config, error) {
	rawKey, ok := os.LookupEnv("TTSVAULT_SECRET_KEY")
	if !ok || strings.TrimSpace(rawKey) == "" {
		return nil, errors.New("TTSVAULT_SECRET_KEY is required")
	}
	secretKey, err := hex.DecodeString(strings.TrimSpace(rawKey))
	if err != nil {
		return nil, fmt.Errorf("TTSVAULT_SECRET_KEY is not valid hex: %w", err)
	}
	if len(secretKey) != SecretKeySize {
		return nil, fmt.Errorf("TTSVAULT_SECRET_KEY must decode to %d bytes, got %d", SecretKeySize, len(secretKey))
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("TTSVAULT_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "ttsvault.db"
	if v, ok := os.LookupEnv("TTSVAULT_DB_PATH"); ok {
		dbPath = v
	}

	baseURL := "https://api.elevenlabs.io"
	if v, ok := os.LookupEnv("TTSVAULT_ELEVENLABS_BASE_URL"); ok && v != "" {
		baseURL = v
	}

	var timeout time.Duration
	if v, ok := os.LookupEnv("TTSVAULT_UPSTREAM_TIMEOUT"); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("TTSVAULT_UPSTREAM_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed < 0 {
			return nil, fmt.Errorf("TTSVAULT_UPSTREAM_TIMEOUT must not be negative, got %s", parsed)
		}
		timeout = parsed
	}

	var adminSecret []byte
	if v := os.Getenv("TTSVAULT_ADMIN_TOKEN_SECRET"); v != "" {
		adminSecret = []byte(v)
	}

	bucket := "ttsvault-audio"
	if v, ok := os.LookupEnv("TTSVAULT_AUDIO_BUCKET"); ok && v != "" {
		bucket = v
	}

	return &Config{
		SecretKey:         secretKey,
		ListenAddr:        listenAddr,
		DBPath:            dbPath,
		ElevenLabsBaseURL: baseURL,
		UpstreamTimeout:   timeout,
		AdminTokenSecret:  adminSecret,
		NATSURL:           os.Getenv("TTSVAULT_NATS_URL"),
		AudioBucket:       bucket,
	}, nil
}
