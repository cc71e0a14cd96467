package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("GEMINI_API_KEY", "")

	require.NoError(t, LoadConfig())

	assert.Equal(t, "8080", AppConfig.HTTPPort)
	assert.Equal(t, "INFO", AppConfig.LogLevel)
	assert.Equal(t, "content", AppConfig.ContentDir)
	assert.Equal(t, "public/uploads", AppConfig.UploadsDir)
	assert.Equal(t, 30, AppConfig.ConversationMaxAgeDays)
	assert.Equal(t, "https://api.github.com/graphql", AppConfig.GitHubGraphQLURL)
	assert.Empty(t, AppConfig.AdminPassword)
	assert.False(t, AppConfig.IsProduction())
	assert.False(t, AppConfig.SMTPConfigured())
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ADMIN_PASSWORD", "s3cret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CHAT_RATE_LIMIT", "12")
	t.Setenv("LOG_LEVEL", "debug")

	require.NoError(t, LoadConfig())

	assert.Equal(t, "9090", AppConfig.HTTPPort)
	assert.Equal(t, "s3cret", AppConfig.AdminPassword)
	assert.Equal(t, 12, AppConfig.ChatRateLimit)
	assert.Equal(t, "DEBUG", AppConfig.LogLevel)
	assert.True(t, AppConfig.IsProduction())
}

func TestLoadConfigReadsYAMLFile(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("SMTP_HOST", "")
	yaml := "CONTENT_DIR: /srv/content\nSMTP_PORT: 465\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "portfolio.yaml"), []byte(yaml), 0o644))

	require.NoError(t, LoadConfig())

	assert.Equal(t, "/srv/content", AppConfig.ContentDir)
	assert.Equal(t, 465, AppConfig.SMTPPort)
}

func TestSetupLoggingFallsBackToInfo(t *testing.T) {
	SetupLogging(Config{LogLevel: "NOPE"})
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())

	SetupLogging(Config{LogLevel: "DEBUG"})
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	SetupLogging(Config{LogLevel: "INFO"})
}
