package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"portfolio.dev/portfolio-api/internal/utils"
)

const (
	MaxCustomInstructions = 2000
	MaxSuggestedTopics    = 10
	MaxSuggestedQuestions = 5

	DefaultGreeting = "Hi! I'm the portfolio AI assistant. Ask me about skills, projects, or experience."

	chatbotSettingsKey  = "chatbot/settings.json"
	chatbotSettingsFile = "chatbot-settings.json"
	githubSettingsFile  = "settings.json"
)

// DefaultSuggestedQuestions are offered when none are configured.
var DefaultSuggestedQuestions = []string{
	"What are your skills?",
	"Tell me about your experience",
	"Show me your projects",
}

// DefaultChatbotSettings returns a fresh copy of the built-in settings.
func DefaultChatbotSettings() ChatbotSettings {
	return ChatbotSettings{
		CustomInstructions: "",
		SuggestedTopics:    []string{},
		Greeting:           DefaultGreeting,
		SuggestedQuestions: append([]string(nil), DefaultSuggestedQuestions...),
	}
}

// SettingsStore holds the chatbot settings (through the content read-through)
// and the GitHub import settings (local file only).
type SettingsStore struct {
	content *ContentStore

	githubMu sync.Mutex
}

func NewSettingsStore(content *ContentStore) *SettingsStore {
	return &SettingsStore{content: content}
}

// Chatbot returns the stored chatbot settings with defaults filled in. A
// missing document yields the defaults.
func (s *SettingsStore) Chatbot(ctx context.Context) (ChatbotSettings, error) {
	settings := DefaultChatbotSettings()
	data, err := s.content.readDocument(ctx, chatbotSettingsKey, chatbotSettingsFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return settings, nil
		}
		return settings, err
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return DefaultChatbotSettings(), fmt.Errorf("failed to decode chatbot settings: %w", err)
	}
	return withChatbotDefaults(settings), nil
}

// UpdateChatbot validates a partial update and merges its top-level fields
// over the stored settings. A rejected update leaves the store untouched.
func (s *SettingsStore) UpdateChatbot(ctx context.Context, upd ChatbotSettingsUpdate) (ChatbotSettings, error) {
	if err := validateChatbotUpdate(upd); err != nil {
		return ChatbotSettings{}, err
	}

	unlock := s.content.lock(chatbotSettingsKey)
	defer unlock()

	current, err := s.Chatbot(ctx)
	if err != nil {
		return ChatbotSettings{}, err
	}
	if upd.CustomInstructions != nil {
		current.CustomInstructions = *upd.CustomInstructions
	}
	if upd.SuggestedTopics != nil {
		current.SuggestedTopics = *upd.SuggestedTopics
	}
	if upd.Greeting != nil {
		current.Greeting = *upd.Greeting
	}
	if upd.SuggestedQuestions != nil {
		current.SuggestedQuestions = *upd.SuggestedQuestions
	}
	current = withChatbotDefaults(current)

	data, err := marshalPretty(current)
	if err != nil {
		return ChatbotSettings{}, fmt.Errorf("failed to encode chatbot settings: %w", err)
	}
	if err := s.content.writeDocument(ctx, chatbotSettingsKey, chatbotSettingsFile, data); err != nil {
		return ChatbotSettings{}, err
	}
	return current, nil
}

func validateChatbotUpdate(upd ChatbotSettingsUpdate) error {
	if upd.CustomInstructions != nil && utf8.RuneCountInString(*upd.CustomInstructions) > MaxCustomInstructions {
		return Invalidf("customInstructions must be at most %d characters", MaxCustomInstructions)
	}
	if upd.SuggestedTopics != nil && len(*upd.SuggestedTopics) > MaxSuggestedTopics {
		return Invalidf("suggestedTopics must have at most %d entries", MaxSuggestedTopics)
	}
	if upd.SuggestedQuestions != nil && len(*upd.SuggestedQuestions) > MaxSuggestedQuestions {
		return Invalidf("suggestedQuestions must have at most %d entries", MaxSuggestedQuestions)
	}
	return nil
}

func withChatbotDefaults(s ChatbotSettings) ChatbotSettings {
	if s.SuggestedTopics == nil {
		s.SuggestedTopics = []string{}
	}
	if s.Greeting == "" {
		s.Greeting = DefaultGreeting
	}
	if len(s.SuggestedQuestions) == 0 {
		s.SuggestedQuestions = append([]string(nil), DefaultSuggestedQuestions...)
	}
	return s
}

// GitHub returns the stored GitHub settings with the token in clear. A
// missing settings file yields empty settings.
func (s *SettingsStore) GitHub() (GitHubSettings, error) {
	doc, err := s.readSettingsFile()
	if err != nil {
		return GitHubSettings{}, err
	}
	var gh GitHubSettings
	if raw, ok := doc["github"]; ok {
		if err := json.Unmarshal(raw, &gh); err != nil {
			return GitHubSettings{}, fmt.Errorf("failed to decode github settings: %w", err)
		}
	}
	return gh, nil
}

// UpdateGitHub applies a partial update. A token that is empty or still
// carries mask characters is ignored so the stored token survives a form
// re-submit of its masked display.
func (s *SettingsStore) UpdateGitHub(upd GitHubSettingsUpdate) (GitHubSettings, error) {
	s.githubMu.Lock()
	defer s.githubMu.Unlock()

	doc, err := s.readSettingsFile()
	if err != nil {
		return GitHubSettings{}, err
	}
	var gh GitHubSettings
	if raw, ok := doc["github"]; ok {
		if err := json.Unmarshal(raw, &gh); err != nil {
			return GitHubSettings{}, fmt.Errorf("failed to decode github settings: %w", err)
		}
	}

	if upd.Username != nil {
		gh.Username = *upd.Username
	}
	if upd.Token != nil && *upd.Token != "" && !utils.IsMasked(*upd.Token) {
		gh.Token = *upd.Token
	}

	raw, err := json.Marshal(gh)
	if err != nil {
		return GitHubSettings{}, fmt.Errorf("failed to encode github settings: %w", err)
	}
	doc["github"] = raw
	data, err := marshalPretty(doc)
	if err != nil {
		return GitHubSettings{}, fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := writeFileAtomic(s.settingsPath(), data); err != nil {
		return GitHubSettings{}, err
	}
	return gh, nil
}

// Masked returns a copy safe to send to a browser.
func (g GitHubSettings) Masked() GitHubSettings {
	return GitHubSettings{Username: g.Username, Token: utils.MaskToken(g.Token)}
}

func (s *SettingsStore) settingsPath() string {
	return filepath.Join(s.content.Dir(), githubSettingsFile)
}

func (s *SettingsStore) readSettingsFile() (map[string]json.RawMessage, error) {
	doc := map[string]json.RawMessage{}
	data, err := os.ReadFile(s.settingsPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}
	return doc, nil
}
