package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where peachme stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// CORSOrigins is the list of allowed origins for browser clients
	CORSOrigins []string

	// MediaDir is where uploaded videos and extracted audio are staged
	MediaDir string
	// FFmpegPath is the ffmpeg binary used for audio extraction
	FFmpegPath string

	// AI configuration
	AIAPIKey       string // PEACHME_AI_API_KEY
	AIBaseURL      string // PEACHME_AI_BASE_URL (default: https://api.openai.com/v1)
	AIChatModel    string // PEACHME_AI_CHAT_MODEL (default: gpt-4o-mini)
	AIWhisperModel string // PEACHME_AI_WHISPER_MODEL (default: whisper-1)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled reports whether an LLM backend is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from PEACHME_* environment variables.
func (p *Profile) FromEnv() {
	p.AIAPIKey = os.Getenv("PEACHME_AI_API_KEY")
	if p.AIAPIKey == "" {
		// The upstream SDK convention, kept for drop-in deployments.
		p.AIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	p.AIBaseURL = getEnvOrDefault("PEACHME_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIChatModel = getEnvOrDefault("PEACHME_AI_CHAT_MODEL", "gpt-4o-mini")
	p.AIWhisperModel = getEnvOrDefault("PEACHME_AI_WHISPER_MODEL", "whisper-1")
	p.FFmpegPath = getEnvOrDefault("PEACHME_FFMPEG_PATH", "ffmpeg")

	if origins := os.Getenv("PEACHME_CORS_ORIGINS"); origins != "" {
		p.CORSOrigins = splitOrigins(origins)
	}
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "peachme")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/peachme"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("peachme_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.MediaDir == "" {
		p.MediaDir = filepath.Join(dataDir, "media")
	}
	if err := os.MkdirAll(p.MediaDir, 0770); err != nil {
		return errors.Wrapf(err, "unable to create media folder %s", p.MediaDir)
	}

	if p.FFmpegPath == "" {
		p.FFmpegPath = "ffmpeg"
	}
	if len(p.CORSOrigins) == 0 {
		p.CORSOrigins = []string{"http://localhost:3000"}
	}

	return nil
}
