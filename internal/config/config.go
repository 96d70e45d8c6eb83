package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName          = "career-tracker"
	EnvFileName      = "config.env"
	SettingsFileName = "settings.toml"

	ProviderClaude = "claude"
	ProviderGemini = "gemini"

	defaultProvider       = ProviderClaude
	defaultMaxTokens      = 1024
	defaultRequestTimeout = 60 * time.Second
	defaultDBFileName     = "career-tracker.db"
)

// Config holds everything the CLI needs to reach the vision API and the
// local store.
type Config struct {
	Dir             string
	Provider        string
	Model           string
	MaxTokens       int
	RequestTimeout  time.Duration
	DBPath          string
	AnthropicAPIKey string
	GeminiAPIKey    string
}

// Dir returns the application's config directory path, creating it if needed.
func Dir() (string, error) {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	dir := filepath.Join(configBase, AppName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// LoadEnvFile loads environment variables from config.env in dir. Errors are
// ignored since the file may not exist.
func LoadEnvFile(dir string) {
	_ = godotenv.Load(filepath.Join(dir, EnvFileName))
}

// WriteEnvFile stores values in config.env, keeping keys already present.
func WriteEnvFile(dir string, values map[string]string) error {
	path := filepath.Join(dir, EnvFileName)
	existing, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read %s: %w", path, err)
		}
		existing = map[string]string{}
	}
	for k, v := range values {
		existing[k] = v
	}
	if err := godotenv.Write(existing, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Chmod(path, 0600)
}

type settingsFile struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	MaxTokens      int    `toml:"max_tokens"`
	RequestTimeout string `toml:"request_timeout"`
	DBPath         string `toml:"db_path"`
}

// Load reads settings.toml from dir (when present) and applies environment
// overrides on top. Missing values fall back to defaults.
func Load(dir string) (Config, error) {
	cfg := Config{
		Dir:            dir,
		Provider:       defaultProvider,
		MaxTokens:      defaultMaxTokens,
		RequestTimeout: defaultRequestTimeout,
		DBPath:         filepath.Join(dir, defaultDBFileName),
	}

	raw, err := readSettings(filepath.Join(dir, SettingsFileName))
	if err != nil {
		return Config{}, err
	}

	if v := strings.TrimSpace(raw.Provider); v != "" {
		cfg.Provider = strings.ToLower(v)
	}
	cfg.Model = strings.TrimSpace(raw.Model)
	if raw.MaxTokens > 0 {
		cfg.MaxTokens = raw.MaxTokens
	}
	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v := strings.TrimSpace(raw.DBPath); v != "" {
		cfg.DBPath = expandHome(v)
	}

	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if v := os.Getenv("CAREER_TRACKER_PROVIDER"); v != "" {
		cfg.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("CAREER_TRACKER_MODEL"); v != "" {
		cfg.Model = strings.TrimSpace(v)
	}
	if v := os.Getenv("CAREER_TRACKER_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("CAREER_TRACKER_MAX_TOKENS must be a positive integer: %q", v)
		}
		cfg.MaxTokens = n
	}
	if v := os.Getenv("CAREER_TRACKER_DB"); v != "" {
		cfg.DBPath = expandHome(strings.TrimSpace(v))
	}

	return cfg, nil
}

func readSettings(path string) (settingsFile, error) {
	var raw settingsFile
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return raw, nil
		}
		return raw, fmt.Errorf("read settings: %w", err)
	}
	if err := toml.Unmarshal(b, &raw); err != nil {
		return raw, fmt.Errorf("parse settings: %w", err)
	}
	return raw, nil
}

// APIKey returns the key for the selected provider.
func (c Config) APIKey() string {
	if c.Provider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.AnthropicAPIKey
}

// APIKeyEnv returns the environment variable holding the provider's key.
func (c Config) APIKeyEnv() string {
	if c.Provider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}

// Validate reports configuration that makes vision calls impossible.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderClaude, ProviderGemini:
	default:
		return fmt.Errorf("unknown provider %q (use %s or %s)", c.Provider, ProviderClaude, ProviderGemini)
	}
	if c.APIKey() == "" {
		return fmt.Errorf("%s is not set", c.APIKeyEnv())
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
