package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort    string
	LogLevel    string
	Environment string

	AdminPassword string

	GeminiAPIKey  string
	ChatModel     string
	ChatRateLimit int

	ContentDir string
	UploadsDir string

	BlobDatabaseURL string
	BlobBaseURL     string
	BlobToken       string

	SMTPHost            string
	SMTPPort            int
	SMTPUser            string
	SMTPPass            string
	TranscriptRecipient string

	GitHubGraphQLURL string

	ConversationMaxAgeDays int
}

// IsProduction reports whether cookies should be marked Secure and logs
// emitted as JSON.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// SMTPConfigured reports whether every value needed to send a transcript is set.
func (c Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPPort != 0 && c.SMTPUser != "" && c.SMTPPass != "" && c.TranscriptRecipient != ""
}

var AppConfig Config

var defaults = map[string]any{
	"HTTP_PORT":                 "8080",
	"LOG_LEVEL":                 "INFO",
	"APP_ENV":                   "development",
	"CHAT_MODEL":                "gemini-1.5-flash-latest",
	"CHAT_RATE_LIMIT":           0,
	"CONTENT_DIR":               "content",
	"UPLOADS_DIR":               "public/uploads",
	"SMTP_PORT":                 0,
	"GITHUB_GRAPHQL_URL":        "https://api.github.com/graphql",
	"CONVERSATION_MAX_AGE_DAYS": 30,
}

// LoadConfig fills AppConfig from .env, an optional portfolio.yaml in the
// working directory and the process environment, in increasing precedence.
// Missing secrets are not fatal: the admin gate fails closed and the chat
// route reports the missing key per request.
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on environment variables")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigName("portfolio")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	AppConfig = fromViper(v)
	return nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		HTTPPort:               v.GetString("HTTP_PORT"),
		LogLevel:               strings.ToUpper(v.GetString("LOG_LEVEL")),
		Environment:            v.GetString("APP_ENV"),
		AdminPassword:          v.GetString("ADMIN_PASSWORD"),
		GeminiAPIKey:           v.GetString("GEMINI_API_KEY"),
		ChatModel:              v.GetString("CHAT_MODEL"),
		ChatRateLimit:          v.GetInt("CHAT_RATE_LIMIT"),
		ContentDir:             v.GetString("CONTENT_DIR"),
		UploadsDir:             v.GetString("UPLOADS_DIR"),
		BlobDatabaseURL:        v.GetString("BLOB_DATABASE_URL"),
		BlobBaseURL:            v.GetString("BLOB_BASE_URL"),
		BlobToken:              v.GetString("BLOB_TOKEN"),
		SMTPHost:               v.GetString("SMTP_HOST"),
		SMTPPort:               v.GetInt("SMTP_PORT"),
		SMTPUser:               v.GetString("SMTP_USER"),
		SMTPPass:               v.GetString("SMTP_PASS"),
		TranscriptRecipient:    v.GetString("TRANSCRIPT_RECIPIENT_EMAIL"),
		GitHubGraphQLURL:       v.GetString("GITHUB_GRAPHQL_URL"),
		ConversationMaxAgeDays: v.GetInt("CONVERSATION_MAX_AGE_DAYS"),
	}
}

// SetupLogging configures the standard logrus logger for the loaded config.
func SetupLogging(c Config) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if c.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
