package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ANTHROPIC_API_KEY", "GEMINI_API_KEY", "CAREER_TRACKER_PROVIDER",
		"CAREER_TRACKER_MODEL", "CAREER_TRACKER_MAX_TOKENS", "CAREER_TRACKER_DB",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ProviderClaude, cfg.Provider)
	assert.Equal(t, defaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, defaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, filepath.Join(dir, defaultDBFileName), cfg.DBPath)
	assert.Empty(t, cfg.Model)
}

func TestLoad_SettingsFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFileName), []byte(`
provider = "  Gemini "
model = "gemini-2.5-pro"
max_tokens = 2048
request_timeout = "90s"
db_path = "/tmp/career.db"
`), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/tmp/career.db", cfg.DBPath)
}

func TestLoad_EnvOverridesSettings(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFileName), []byte(`provider = "gemini"`), 0o600))
	t.Setenv("CAREER_TRACKER_PROVIDER", "claude")
	t.Setenv("CAREER_TRACKER_MAX_TOKENS", "300")
	t.Setenv("CAREER_TRACKER_DB", "/data/tracker.db")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ProviderClaude, cfg.Provider)
	assert.Equal(t, 300, cfg.MaxTokens)
	assert.Equal(t, "/data/tracker.db", cfg.DBPath)
	assert.Equal(t, "sk-ant", cfg.APIKey())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFileName), []byte(`request_timeout = "soon"`), 0o600))
	_, err := Load(dir)
	assert.ErrorContains(t, err, "request_timeout")

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFileName), []byte(`provider = [`), 0o600))
	_, err = Load(dir)
	assert.ErrorContains(t, err, "parse settings")

	t.Setenv("CAREER_TRACKER_MAX_TOKENS", "-1")
	_, err = Load(t.TempDir())
	assert.ErrorContains(t, err, "CAREER_TRACKER_MAX_TOKENS")
}

func TestValidate(t *testing.T) {
	assert.ErrorContains(t, Config{Provider: ProviderClaude}.Validate(), "ANTHROPIC_API_KEY")
	assert.ErrorContains(t, Config{Provider: ProviderGemini, AnthropicAPIKey: "x"}.Validate(), "GEMINI_API_KEY")
	assert.ErrorContains(t, Config{Provider: "openai"}.Validate(), "unknown provider")
	assert.NoError(t, Config{Provider: ProviderGemini, GeminiAPIKey: "g"}.Validate())
}

func TestWriteEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteEnvFile(dir, map[string]string{"ANTHROPIC_API_KEY": "one"}))
	require.NoError(t, WriteEnvFile(dir, map[string]string{"CAREER_TRACKER_PROVIDER": "claude"}))

	values, err := godotenv.Read(filepath.Join(dir, EnvFileName))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"ANTHROPIC_API_KEY":       "one",
		"CAREER_TRACKER_PROVIDER": "claude",
	}, values)

	info, err := os.Stat(filepath.Join(dir, EnvFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
